package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"locallift/internal/api/middleware"
	"locallift/internal/catalog"
	"locallift/internal/filter"
)

// ResourceHandler serves the resource directory and its filters.
type ResourceHandler struct {
	catalog *catalog.Catalog
}

// NewResourceHandler returns a handler over cat.
func NewResourceHandler(cat *catalog.Catalog) *ResourceHandler {
	return &ResourceHandler{catalog: cat}
}

type locationNotice struct {
	Postcode    string `json:"postcode"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func newLocationNotice(postcode string) locationNotice {
	return locationNotice{
		Postcode:    postcode,
		Title:       "Postcode Updated",
		Description: fmt.Sprintf("Showing resources near %s", postcode),
	}
}

// ListResources filters the catalog by ?q=, ?category= (repeated or comma
// separated), ?distance= and ?postcode=.
func (h *ResourceHandler) ListResources(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := filter.Apply(h.catalog.All(), criteria)
	middleware.LoggerFromContext(c).Debug("resources filtered",
		slog.String("query", criteria.Query),
		slog.Any("categories", criteria.Categories),
		slog.Int("distance", criteria.Distance),
		slog.Int("matched", len(result.Resources)),
	)

	c.JSON(http.StatusOK, gin.H{
		"resources": result.Resources,
		"total":     result.Total,
		"notice":    result.Notice,
		"criteria":  criteria,
		"location":  newLocationNotice(criteria.Postcode),
	})
}

func criteriaFromQuery(c *gin.Context) (filter.Criteria, error) {
	criteria := filter.Criteria{
		Query:    c.Query("q"),
		Distance: filter.MaxDistance,
		Postcode: filter.DefaultPostcode,
	}

	for _, raw := range c.QueryArray("category") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				criteria.Categories = append(criteria.Categories, part)
			}
		}
	}

	if raw := strings.TrimSpace(c.Query("distance")); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			return filter.Criteria{}, errors.New("distance must be a non-negative integer")
		}
		criteria.Distance = d
	}

	if raw, ok := c.GetQuery("postcode"); ok {
		code, err := filter.ValidatePostcode(raw)
		if err != nil {
			return filter.Criteria{}, err
		}
		criteria.Postcode = code
	}
	return criteria, nil
}

// ListCategories returns the category facets with counts.
func (h *ResourceHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}

// GetResource returns one resource.
func (h *ResourceHandler) GetResource(c *gin.Context) {
	r, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		NotFound(c, "resource not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": r})
}

type voteRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// Vote records an up or down vote. Tallies are kept in memory only.
func (h *ResourceHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	r, err := h.catalog.Vote(c.Param("id"), strings.ToLower(strings.TrimSpace(req.Direction)))
	switch {
	case errors.Is(err, catalog.ErrInvalidVote):
		BadRequest(c, err.Error())
		return
	case errors.Is(err, catalog.ErrNotFound):
		NotFound(c, "resource not found")
		return
	case err != nil:
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": r})
}

type postcodeRequest struct {
	Postcode string `json:"postcode"`
}

// ValidatePostcode checks a UK postcode and echoes it normalised.
func (h *ResourceHandler) ValidatePostcode(c *gin.Context) {
	var req postcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	code, err := filter.ValidatePostcode(req.Postcode)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, newLocationNotice(code))
}
