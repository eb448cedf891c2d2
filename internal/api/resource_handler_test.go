package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallift/internal/catalog"
)

type listResponse struct {
	Resources []catalog.Resource `json:"resources"`
	Total     int                `json:"total"`
	Notice    struct {
		Description string `json:"description"`
	} `json:"notice"`
	Location locationNotice `json:"location"`
}

func TestListResources(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name  string
		query string
		ids   []string
	}{
		{"no filters", "", []string{"1", "2", "3", "4", "5", "6"}},
		{"text query", "?q=FOOD", []string{"1"}},
		{"category csv", "?category=food%20bank,job", []string{"1", "2"}},
		{"category repeated", "?category=food%20bank&category=job", []string{"1", "2"}},
		{"distance keeps ceil share", "?distance=5", []string{"1", "2", "3"}},
		{"distance zero is off", "?distance=0", []string{"1", "2", "3", "4", "5", "6"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/v1/resources"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp listResponse
			decode(t, w, &resp)
			var ids []string
			for _, r := range resp.Resources {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.ids, ids)
			assert.Equal(t, 6, resp.Total)
		})
	}
}

func TestListResources_Postcode(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/v1/resources?postcode=sw1a%201aa", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp listResponse
	decode(t, w, &resp)
	assert.Equal(t, "SW1A 1AA", resp.Location.Postcode)
	assert.Equal(t, "Showing resources near SW1A 1AA", resp.Location.Description)

	w = ts.do(http.MethodGet, "/v1/resources?postcode=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/v1/resources?distance=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidatePostcode(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/v1/postcode/validate", "", postcodeRequest{Postcode: " e1 6lp "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var notice locationNotice
	decode(t, w, &notice)
	assert.Equal(t, "E1 6LP", notice.Postcode)
	assert.Equal(t, "Postcode Updated", notice.Title)

	w = ts.do(http.MethodPost, "/v1/postcode/validate", "", postcodeRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResourceAndVote(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/v1/resources/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Resource catalog.Resource `json:"resource"`
	}
	decode(t, w, &got)
	before := got.Resource.Upvotes

	w = ts.do(http.MethodPost, "/v1/resources/1/vote", "", voteRequest{Direction: "UP"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &got)
	assert.Equal(t, before+1, got.Resource.Upvotes)

	w = ts.do(http.MethodPost, "/v1/resources/1/vote", "", voteRequest{Direction: "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/v1/resources/99/vote", "", voteRequest{Direction: "down"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/v1/resources/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategories(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/v1/resources/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Categories []catalog.CategoryCount `json:"categories"`
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Categories)
}
