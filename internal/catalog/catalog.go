package catalog

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when no resource carries the requested id.
var ErrNotFound = errors.New("resource not found")

// Vote directions accepted by Catalog.Vote.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ErrInvalidVote is returned for a direction other than VoteUp or VoteDown.
var ErrInvalidVote = errors.New("vote must be up or down")

// CategoryCount is one facet entry for the category filter.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog serves the seed list. Vote tallies live only in this value and are
// never written anywhere.
type Catalog struct {
	mu        sync.RWMutex
	resources []Resource
}

// New builds a catalog over resources, or over Seed() when resources is nil.
func New(resources []Resource) *Catalog {
	if resources == nil {
		resources = Seed()
	}
	cp := make([]Resource, len(resources))
	copy(cp, resources)
	return &Catalog{resources: cp}
}

// All returns a snapshot of every resource in seed order.
func (c *Catalog) All() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

// Get returns the resource with id.
func (c *Catalog) Get(id string) (Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return Resource{}, ErrNotFound
}

// Categories counts resources per category, sorted by name.
func (c *Catalog) Categories() []CategoryCount {
	c.mu.RLock()
	counts := make(map[string]int)
	for _, r := range c.resources {
		counts[r.Category]++
	}
	c.mu.RUnlock()

	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Vote bumps the up or down tally of a resource and returns the updated record.
func (c *Catalog) Vote(id, direction string) (Resource, error) {
	if direction != VoteUp && direction != VoteDown {
		return Resource{}, ErrInvalidVote
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.resources {
		if c.resources[i].ID != id {
			continue
		}
		if direction == VoteUp {
			c.resources[i].Upvotes++
		} else {
			c.resources[i].Downvotes++
		}
		return c.resources[i], nil
	}
	return Resource{}, ErrNotFound
}
