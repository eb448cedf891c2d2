package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallift/internal/catalog"
)

func TestApply_EmptyQueryReturnsCatalog(t *testing.T) {
	seed := catalog.Seed()
	for _, q := range []string{"", "   "} {
		res := Apply(seed, Criteria{Query: q})
		assert.Equal(t, seed, res.Resources)
	}
}

func TestApply_QueryFood(t *testing.T) {
	res := Apply(catalog.Seed(), Criteria{Query: "food"})
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "Hackney Food Bank", res.Resources[0].Name)
	assert.Equal(t, 6, res.Total)
	assert.Equal(t, "Showing 1 resources", res.Notice.Description)
}

func TestApply_QueryPartition(t *testing.T) {
	seed := catalog.Seed()
	for _, q := range []string{"FREE", "advice", "east", "Job", "zzz", "e", " hackney", "  ", "hackney "} {
		res := Apply(seed, Criteria{Query: q})
		included := map[string]bool{}
		for _, r := range res.Resources {
			included[r.ID] = true
		}
		lq := strings.ToLower(q)
		for _, r := range seed {
			contains := strings.Contains(strings.ToLower(r.Name), lq) ||
				strings.Contains(strings.ToLower(r.Description), lq) ||
				strings.Contains(strings.ToLower(r.Category), lq)
			assert.Equal(t, contains, included[r.ID], "query %q resource %s", q, r.ID)
		}
	}
}

func TestApply_QueryIsNotTrimmed(t *testing.T) {
	seed := catalog.Seed()
	assert.Empty(t, Apply(seed, Criteria{Query: "  "}).Resources)
	for _, r := range Apply(seed, Criteria{Query: " hackney"}).Resources {
		assert.Contains(t, strings.ToLower(r.Name+"|"+r.Description+"|"+r.Category), " hackney")
	}
	assert.Len(t, Apply(seed, Criteria{Query: ""}).Resources, len(seed))
}

func TestApply_Categories(t *testing.T) {
	seed := catalog.Seed()

	res := Apply(seed, Criteria{Categories: []string{"food bank", "HEALTH"}})
	require.Len(t, res.Resources, 2)
	for _, r := range res.Resources {
		assert.True(t, MatchesCategory(r, []string{"food bank", "HEALTH"}))
	}

	res = Apply(seed, Criteria{Categories: nil})
	assert.Len(t, res.Resources, len(seed))

	res = Apply(seed, Criteria{Categories: []string{" ", ""}})
	assert.Len(t, res.Resources, len(seed), "blank selections are ignored")
}

func TestApply_CombinesCriteria(t *testing.T) {
	res := Apply(catalog.Seed(), Criteria{Query: "free", Categories: []string{"training"}})
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "3", res.Resources[0].ID)
}

func TestApply_Idempotent(t *testing.T) {
	seed := catalog.Seed()
	c := Criteria{Query: "e", Categories: []string{"a"}, Distance: 7}
	first := Apply(seed, c)
	second := Apply(seed, c)
	assert.Equal(t, first, second)

	again := Apply(first.Resources, Criteria{Query: c.Query, Categories: c.Categories})
	assert.Equal(t, first.Resources, again.Resources)
}

func TestApply_DistanceTruncation(t *testing.T) {
	seed := catalog.Seed()

	tests := []struct {
		distance int
		want     int
	}{
		{distance: 0, want: 6},
		{distance: -3, want: 6},
		{distance: 10, want: 6},
		{distance: 25, want: 6},
		{distance: 4, want: 3},
		{distance: 5, want: 3},
		{distance: 1, want: 1},
		{distance: 9, want: 6},
	}
	for _, tt := range tests {
		res := Apply(seed, Criteria{Distance: tt.distance})
		assert.Len(t, res.Resources, tt.want, "distance %d", tt.distance)
	}

	res := Apply(seed, Criteria{Distance: 4})
	assert.Equal(t, seed[:3], res.Resources, "truncation keeps the leading entries")
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	seed := catalog.Seed()
	before := catalog.Seed()
	_ = Apply(seed, Criteria{Query: "food", Distance: 2})
	assert.Equal(t, before, seed)
}

func TestValidatePostcode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "E1 6LP", want: "E1 6LP"},
		{in: "e16lp", want: "E16LP"},
		{in: " sw1a 1aa ", want: "SW1A 1AA"},
		{in: "", wantErr: ErrPostcodeRequired},
		{in: "   ", wantErr: ErrPostcodeRequired},
		{in: "12345", wantErr: ErrPostcodeInvalid},
		{in: "E1  6LP", wantErr: ErrPostcodeInvalid},
	}
	for _, tt := range tests {
		got, err := ValidatePostcode(tt.in)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
