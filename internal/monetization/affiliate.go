package monetization

import (
	"math/rand/v2"
	"strings"
	"sync"

	"locallift/internal/metrics"
)

// DefaultMaxProducts caps Relevant when the caller passes no limit.
const DefaultMaxProducts = 2

// LinkURL decorates href with the partner reference and tracking params.
func LinkURL(href, partnerID string) string {
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + "ref=" + partnerID + "&utm_source=locallift&utm_medium=affiliate"
}

// Product is an affiliate offer.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Categories  []string `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Link        string   `json:"link"`
}

var products = []Product{
	{
		ID:          "cb001",
		Title:       "Resume Pro Builder",
		Description: "Professional resume templates that get you hired faster",
		Price:       "$27",
		Categories:  []string{"resume", "career", "employment"},
		ImageURL:    "https://placehold.co/600x400/5271ff/ffffff?text=Resume+Pro",
		Link:        "https://hop.clickbank.net/?vendor=resumepro",
	},
	{
		ID:          "cb002",
		Title:       "Job Interview Mastery",
		Description: "Ace any job interview with our proven techniques",
		Price:       "$37",
		Categories:  []string{"interview", "career", "employment"},
		ImageURL:    "https://placehold.co/600x400/27ca80/ffffff?text=Interview+Course",
		Link:        "https://hop.clickbank.net/?vendor=interviewmaster",
	},
	{
		ID:          "cb003",
		Title:       "Financial Freedom Guide",
		Description: "Learn how to manage finances during career transitions",
		Price:       "$19",
		Categories:  []string{"finance", "budgeting", "resources"},
		ImageURL:    "https://placehold.co/600x400/f759ab/ffffff?text=Finance+Guide",
		Link:        "https://hop.clickbank.net/?vendor=financefreedom",
	},
	{
		ID:          "cb004",
		Title:       "Business Skills Masterclass",
		Description: "Essential skills for advancing your career or business",
		Price:       "$47",
		Categories:  []string{"business", "skills", "career"},
		ImageURL:    "https://placehold.co/600x400/ffc658/ffffff?text=Business+Skills",
		Link:        "https://hop.clickbank.net/?vendor=bizskills",
	},
}

// Products returns the affiliate catalogue.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Affiliates selects products and rewrites their links for one partner.
type Affiliates struct {
	partnerID string

	mu      sync.Mutex
	shuffle func(n int, swap func(i, j int))
}

// NewAffiliates builds a selector for partnerID. rnd drives the shuffle used
// when no keywords are given; nil uses the global source. A rnd shared with a
// Picker must be wrapped with Synchronized first.
func NewAffiliates(partnerID string, rnd *rand.Rand) *Affiliates {
	a := &Affiliates{partnerID: partnerID, shuffle: rand.Shuffle}
	if rnd != nil {
		a.shuffle = rnd.Shuffle
	}
	return a
}

// Relevant returns up to max products. With keywords, a product qualifies
// when any of its categories contains any keyword, case-insensitively, and
// catalogue order is kept. Without keywords the catalogue is shuffled.
// Returned links already carry the affiliate parameters.
func (a *Affiliates) Relevant(keywords []string, max int) []Product {
	if max <= 0 {
		max = DefaultMaxProducts
	}

	var picked []Product
	if len(keywords) > 0 {
		for _, p := range products {
			if matchesAny(p.Categories, keywords) {
				picked = append(picked, p)
			}
		}
	} else {
		picked = Products()
		a.mu.Lock()
		a.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
		a.mu.Unlock()
	}

	if len(picked) > max {
		picked = picked[:max]
	}
	out := make([]Product, len(picked))
	for i, p := range picked {
		p.Link = LinkURL(p.Link, a.partnerID)
		out[i] = p
		metrics.AffiliateImpression(p.ID)
	}
	return out
}

func matchesAny(categories, keywords []string) bool {
	for _, c := range categories {
		c = strings.ToLower(c)
		for _, k := range keywords {
			if strings.Contains(c, strings.ToLower(k)) {
				return true
			}
		}
	}
	return false
}
