package resume

import (
	"fmt"
	"strings"
)

// Suggestion produces the canned advice text shown by the content helper.
// It only reads the first experience and education entries.
func Suggestion(d *Document) string {
	company := "your company"
	if len(d.Experience) > 0 && d.Experience[0].Company != "" {
		company = d.Experience[0].Company
	}
	skills := "your field"
	if len(d.Skills) > 0 {
		skills = strings.Join(d.Skills, ", ")
	}
	institution, field := "your school", "your field"
	if len(d.Education) > 0 {
		if d.Education[0].Institution != "" {
			institution = d.Education[0].Institution
		}
		if d.Education[0].Field != "" {
			field = d.Education[0].Field
		}
	}

	return fmt.Sprintf(
		"Based on your experience at %s, I recommend highlighting your skills in %s.\n\n"+
			"Your education at %s in %s is a strong foundation.\n\n"+
			"Consider adding quantifiable achievements to stand out to employers.",
		company, skills, institution, field,
	)
}
