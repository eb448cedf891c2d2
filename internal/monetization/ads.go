// Package monetization serves the ad, affiliate and premium upsell widgets.
// Every widget stays hidden for premium sessions.
package monetization

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"

	"locallift/internal/metrics"
	"locallift/internal/session"
)

// ErrUnknownAd is returned for an ad id outside the inventory.
var ErrUnknownAd = errors.New("unknown ad")

// Placement is where on the page an ad is rendered.
type Placement string

const (
	PlacementSidebar Placement = "sidebar"
	PlacementBanner  Placement = "banner"
	PlacementInline  Placement = "inline"
)

// ParsePlacement maps s to a Placement, defaulting to the banner.
func ParsePlacement(s string) Placement {
	switch Placement(s) {
	case PlacementSidebar, PlacementInline:
		return Placement(s)
	}
	return PlacementBanner
}

// Ad is one mock advert.
type Ad struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	LinkURL     string `json:"linkUrl"`
	Advertiser  string `json:"advertiser"`
}

var inventory = []Ad{
	{
		ID:          1,
		Title:       "Hiring Now: Digital Marketing Roles",
		Description: "Local agency seeking junior marketers. No experience needed.",
		ImageURL:    "https://placehold.co/600x200/5271ff/ffffff?text=Marketing+Jobs",
		LinkURL:     "#",
		Advertiser:  "Digital Growth Agency",
	},
	{
		ID:          2,
		Title:       "Free CV Workshop This Saturday",
		Description: "Learn how to craft the perfect CV. Online session available.",
		ImageURL:    "https://placehold.co/600x200/27ca80/ffffff?text=CV+Workshop",
		LinkURL:     "#",
		Advertiser:  "Career Connect",
	},
	{
		ID:          3,
		Title:       "Discounted Training Courses",
		Description: "50% off web development and data analysis courses.",
		ImageURL:    "https://placehold.co/600x200/f759ab/ffffff?text=Training+Courses",
		LinkURL:     "#",
		Advertiser:  "TechSkills Academy",
	},
}

// Ads returns the full inventory.
func Ads() []Ad {
	out := make([]Ad, len(inventory))
	copy(out, inventory)
	return out
}

// LookupAd finds an ad by id.
func LookupAd(id int) (Ad, error) {
	for _, a := range inventory {
		if a.ID == id {
			return a, nil
		}
	}
	return Ad{}, ErrUnknownAd
}

// Visible reports whether ads should be shown to s. Anonymous visitors see
// ads; premium sessions never do.
func Visible(s *session.Session) bool {
	return s == nil || !s.IsPremium
}

// Picker chooses ads at random.
type Picker struct {
	mu   sync.Mutex
	intn func(n int) int
}

// NewPicker returns a Picker drawing from rnd, or from the global source
// when rnd is nil. See Synchronized for sharing rnd.
func NewPicker(rnd *rand.Rand) *Picker {
	p := &Picker{intn: rand.IntN}
	if rnd != nil {
		p.intn = rnd.IntN
	}
	return p
}

// Pick returns a random ad and records an impression for placement.
func (p *Picker) Pick(placement Placement) Ad {
	p.mu.Lock()
	i := p.intn(len(inventory))
	p.mu.Unlock()

	ad := inventory[i]
	metrics.AdImpression(strconv.Itoa(ad.ID), string(placement))
	return ad
}

// RecordClick counts a click on the ad with id.
func RecordClick(id int) (Ad, error) {
	ad, err := LookupAd(id)
	if err != nil {
		return Ad{}, err
	}
	metrics.AdClick(strconv.Itoa(ad.ID))
	return ad, nil
}
