package resume

import (
	"errors"
	"fmt"
)

// Op kinds accepted by Apply.
const (
	OpAddExperience        = "addExperience"
	OpRemoveExperience     = "removeExperience"
	OpUpdateExperience     = "updateExperience"
	OpSetExperienceCurrent = "setExperienceCurrent"
	OpAddEducation         = "addEducation"
	OpRemoveEducation      = "removeEducation"
	OpUpdateEducation      = "updateEducation"
	OpSetEducationCurrent  = "setEducationCurrent"
	OpSetSkills            = "setSkills"
	OpRemoveSkill          = "removeSkill"
	OpSetSummary           = "setSummary"
	OpSetPersonalInfo      = "setPersonalInfo"
)

// ErrUnknownOp is returned by Apply for an unrecognised op kind.
var ErrUnknownOp = errors.New("unknown edit operation")

// Op is one edit. Only the fields relevant to Kind are read.
type Op struct {
	Kind         string        `json:"op"`
	ID           string        `json:"id,omitempty"`
	Current      bool          `json:"current,omitempty"`
	Skills       string        `json:"skills,omitempty"`
	Index        int           `json:"index,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	PersonalInfo *PersonalInfo `json:"personalInfo,omitempty"`
	Experience   *Experience   `json:"experience,omitempty"`
	Education    *Education    `json:"education,omitempty"`
}

// Apply runs ops against d in order. It stops at the first invalid op and
// reports its position; ops applied before it stay applied.
func Apply(d *Document, ops []Op) error {
	for i, op := range ops {
		if err := apply(d, op); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Kind, err)
		}
	}
	return nil
}

func apply(d *Document, op Op) error {
	switch op.Kind {
	case OpAddExperience:
		d.AddExperience()
	case OpRemoveExperience:
		d.RemoveExperience(op.ID)
	case OpUpdateExperience:
		if op.Experience == nil {
			return errors.New("experience is required")
		}
		d.UpdateExperience(*op.Experience)
	case OpSetExperienceCurrent:
		d.SetExperienceCurrent(op.ID, op.Current)
	case OpAddEducation:
		d.AddEducation()
	case OpRemoveEducation:
		d.RemoveEducation(op.ID)
	case OpUpdateEducation:
		if op.Education == nil {
			return errors.New("education is required")
		}
		d.UpdateEducation(*op.Education)
	case OpSetEducationCurrent:
		d.SetEducationCurrent(op.ID, op.Current)
	case OpSetSkills:
		d.SetSkillsCSV(op.Skills)
	case OpRemoveSkill:
		d.RemoveSkill(op.Index)
	case OpSetSummary:
		d.SetSummary(op.Summary)
	case OpSetPersonalInfo:
		if op.PersonalInfo == nil {
			return errors.New("personalInfo is required")
		}
		d.SetPersonalInfo(*op.PersonalInfo)
	default:
		return ErrUnknownOp
	}
	return nil
}
