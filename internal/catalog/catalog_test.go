package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_HasSixResources(t *testing.T) {
	seed := Seed()
	require.Len(t, seed, 6)
	assert.Equal(t, "Hackney Food Bank", seed[0].Name)
	assert.Equal(t, "Healthcare", seed[5].Category)
}

func TestCatalog_Get(t *testing.T) {
	c := New(nil)

	r, err := c.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "Digital Skills Training Hub", r.Name)

	_, err = c.Get("99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_AllIsACopy(t *testing.T) {
	c := New(nil)
	all := c.All()
	all[0].Name = "changed"

	r, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Hackney Food Bank", r.Name)
}

func TestCatalog_Categories(t *testing.T) {
	c := New([]Resource{
		{ID: "1", Category: "Food Bank"},
		{ID: "2", Category: "Food Bank"},
		{ID: "3", Category: "Healthcare"},
	})

	assert.Equal(t, []CategoryCount{
		{Name: "Food Bank", Count: 2},
		{Name: "Healthcare", Count: 1},
	}, c.Categories())
}

func TestCatalog_Vote(t *testing.T) {
	c := New(nil)

	r, err := c.Vote("1", VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 33, r.Upvotes)

	r, err = c.Vote("1", VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Downvotes)

	_, err = c.Vote("1", "sideways")
	assert.ErrorIs(t, err, ErrInvalidVote)

	_, err = c.Vote("nope", VoteUp)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 32, Seed()[0].Upvotes, "seed data is never mutated")
}
