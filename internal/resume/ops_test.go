package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	d := NewDocument()
	err := Apply(d, []Op{
		{Kind: OpAddExperience},
		{Kind: OpUpdateExperience, Experience: &Experience{ID: "exp-2", Title: "Tutor"}},
		{Kind: OpSetExperienceCurrent, ID: "exp-2", Current: true},
		{Kind: OpRemoveExperience, ID: "exp-1"},
		{Kind: OpAddEducation},
		{Kind: OpSetEducationCurrent, ID: "edu-2", Current: true},
		{Kind: OpSetSkills, Skills: "a, b, c"},
		{Kind: OpRemoveSkill, Index: 0},
		{Kind: OpSetSummary, Summary: "Hello"},
		{Kind: OpSetPersonalInfo, PersonalInfo: &PersonalInfo{FullName: "Kim"}},
	})
	require.NoError(t, err)

	require.Len(t, d.Experience, 1)
	assert.Equal(t, "exp-2", d.Experience[0].ID)
	assert.Equal(t, "Tutor", d.Experience[0].Title)
	assert.Equal(t, PresentEndDate, d.Experience[0].EndDate)
	require.Len(t, d.Education, 2)
	assert.True(t, d.Education[1].Current)
	assert.Equal(t, []string{"b", "c"}, d.Skills)
	assert.Equal(t, "Hello", d.Summary)
	assert.Equal(t, "Kim", d.PersonalInfo.FullName)
}

func TestApply_StopsAtInvalidOp(t *testing.T) {
	d := NewDocument()
	err := Apply(d, []Op{
		{Kind: OpSetSummary, Summary: "kept"},
		{Kind: "explode"},
		{Kind: OpSetSummary, Summary: "never"},
	})
	require.ErrorIs(t, err, ErrUnknownOp)
	assert.Contains(t, err.Error(), "op 1")
	assert.Equal(t, "kept", d.Summary)

	err = Apply(d, []Op{{Kind: OpUpdateEducation}})
	assert.Error(t, err)
}
