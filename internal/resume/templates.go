package resume

import "errors"

// ErrUnknownTemplate is returned for a template id outside the catalogue.
var ErrUnknownTemplate = errors.New("unknown resume template")

// DefaultTemplateID is selected when the caller names none.
const DefaultTemplateID = "modern"

// Template is a selectable resume layout.
type Template struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPremium bool   `json:"isPremium"`

	accent string
	font   string
}

var templates = []Template{
	{ID: "modern", Name: "Modern", accent: "#2563eb", font: "Inter"},
	{ID: "professional", Name: "Professional", accent: "#1f2937", font: "Georgia"},
	{ID: "creative", Name: "Creative", IsPremium: true, accent: "#db2777", font: "Poppins"},
	{ID: "executive", Name: "Executive", IsPremium: true, accent: "#0f766e", font: "Garamond"},
	{ID: "minimal", Name: "Minimal", accent: "#111827", font: "Helvetica"},
}

// Templates returns the catalogue in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate finds a template by id. An empty id selects the default.
func LookupTemplate(id string) (Template, error) {
	if id == "" {
		id = DefaultTemplateID
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, ErrUnknownTemplate
}
