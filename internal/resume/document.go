// Package resume holds the resume builder document and its editing
// operations.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"locallift/internal/kv"
)

// StorageKey is where a saved document lives in the client namespace.
const StorageKey = "resumeData"

// PDFStorageKey holds the PDFRecord of the latest rendered download.
const PDFStorageKey = "resumePdf"

// PDFRecord points at the latest rendered PDF of a client.
type PDFRecord struct {
	ObjectKey  string `json:"objectKey"`
	TemplateID string `json:"templateId"`
	FileName   string `json:"fileName"`
	CreatedAt  string `json:"createdAt"`
}

// PresentEndDate is written into EndDate while an entry is current.
const PresentEndDate = "Present"

// PersonalInfo is the contact block at the top of the resume.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience is one job entry.
type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Education is one study entry.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Document is the whole resume being edited.
type Document struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []string     `json:"skills"`
	Summary      string       `json:"summary"`
}

// NewDocument returns a blank document with one empty experience and one
// empty education entry.
func NewDocument() *Document {
	return &Document{
		Experience: []Experience{{ID: "exp-1"}},
		Education:  []Education{{ID: "edu-1"}},
		Skills:     []string{},
	}
}

// AddExperience appends a blank experience entry and returns its id.
func (d *Document) AddExperience() string {
	taken := make(map[string]bool, len(d.Experience))
	for _, e := range d.Experience {
		taken[e.ID] = true
	}
	id := nextID("exp", len(d.Experience), taken)
	d.Experience = append(d.Experience, Experience{ID: id})
	return id
}

// AddEducation appends a blank education entry and returns its id.
func (d *Document) AddEducation() string {
	taken := make(map[string]bool, len(d.Education))
	for _, e := range d.Education {
		taken[e.ID] = true
	}
	id := nextID("edu", len(d.Education), taken)
	d.Education = append(d.Education, Education{ID: id})
	return id
}

// RemoveExperience drops the entry with id. Unknown ids are ignored.
func (d *Document) RemoveExperience(id string) {
	kept := make([]Experience, 0, len(d.Experience))
	for _, e := range d.Experience {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	d.Experience = kept
}

// RemoveEducation drops the entry with id. Unknown ids are ignored.
func (d *Document) RemoveEducation(id string) {
	kept := make([]Education, 0, len(d.Education))
	for _, e := range d.Education {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	d.Education = kept
}

// UpdateExperience replaces the fields of the entry whose id matches e.ID.
// It reports whether an entry was found.
func (d *Document) UpdateExperience(e Experience) bool {
	for i := range d.Experience {
		if d.Experience[i].ID == e.ID {
			if e.Current {
				e.EndDate = PresentEndDate
			}
			d.Experience[i] = e
			return true
		}
	}
	return false
}

// UpdateEducation replaces the fields of the entry whose id matches e.ID.
func (d *Document) UpdateEducation(e Education) bool {
	for i := range d.Education {
		if d.Education[i].ID == e.ID {
			if e.Current {
				e.EndDate = PresentEndDate
			}
			d.Education[i] = e
			return true
		}
	}
	return false
}

// SetExperienceCurrent flips the current flag. Marking an entry current
// overwrites its end date with PresentEndDate.
func (d *Document) SetExperienceCurrent(id string, current bool) bool {
	for i := range d.Experience {
		if d.Experience[i].ID == id {
			d.Experience[i].Current = current
			if current {
				d.Experience[i].EndDate = PresentEndDate
			}
			return true
		}
	}
	return false
}

// SetEducationCurrent is SetExperienceCurrent for education entries.
func (d *Document) SetEducationCurrent(id string, current bool) bool {
	for i := range d.Education {
		if d.Education[i].ID == id {
			d.Education[i].Current = current
			if current {
				d.Education[i].EndDate = PresentEndDate
			}
			return true
		}
	}
	return false
}

// SetSkillsCSV replaces the skills with the comma separated values in csv.
func (d *Document) SetSkillsCSV(csv string) {
	skills := make([]string, 0)
	for _, part := range strings.Split(csv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	d.Skills = skills
}

// RemoveSkill deletes the skill at index. Out of range indexes are ignored.
func (d *Document) RemoveSkill(index int) {
	if index < 0 || index >= len(d.Skills) {
		return
	}
	d.Skills = append(d.Skills[:index:index], d.Skills[index+1:]...)
}

// SetSummary replaces the professional summary.
func (d *Document) SetSummary(s string) { d.Summary = s }

// SetPersonalInfo replaces the contact block.
func (d *Document) SetPersonalInfo(p PersonalInfo) { d.PersonalInfo = p }

// Normalize fills nil slices and reapplies the current-entry end date, so a
// document received from a client obeys the same rules as one edited here.
func (d *Document) Normalize() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	for i := range d.Experience {
		if d.Experience[i].Current {
			d.Experience[i].EndDate = PresentEndDate
		}
	}
	for i := range d.Education {
		if d.Education[i].Current {
			d.Education[i].EndDate = PresentEndDate
		}
	}
}

// Save writes the document under StorageKey.
func Save(ctx context.Context, store kv.Store, d *Document) error {
	if err := kv.SetJSON(ctx, store, StorageKey, d); err != nil {
		return fmt.Errorf("save resume: %w", err)
	}
	return nil
}

// Load reads the saved document. A missing record yields a blank document
// and found=false. An unreadable record also yields a blank document along
// with the decode error so callers can report it.
func Load(ctx context.Context, store kv.Store) (doc *Document, found bool, err error) {
	var d Document
	err = kv.GetJSON(ctx, store, StorageKey, &d)
	switch {
	case err == nil:
		d.Normalize()
		return &d, true, nil
	case errors.Is(err, kv.ErrNotFound):
		return NewDocument(), false, nil
	case kv.IsDecodeError(err):
		return NewDocument(), false, err
	default:
		return nil, false, fmt.Errorf("load resume: %w", err)
	}
}

func nextID(prefix string, n int, taken map[string]bool) string {
	for i := n + 1; ; i++ {
		id := prefix + "-" + strconv.Itoa(i)
		if !taken[id] {
			return id
		}
	}
}
