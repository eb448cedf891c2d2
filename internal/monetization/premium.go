package monetization

import (
	"context"
	"errors"

	"locallift/internal/metrics"
	"locallift/internal/session"
)

// ErrNotSignedIn is returned when an upgrade is attempted without a session.
var ErrNotSignedIn = errors.New("sign in to upgrade")

// Feature is one line of the premium upsell.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPremium   bool   `json:"isPremium"`
}

// PremiumFeatures lists what an upgrade unlocks.
func PremiumFeatures() []Feature {
	return []Feature{
		{Name: "AI-Optimized Content Suggestions", Description: "Get AI-powered content suggestions to improve your resume", IsPremium: true},
		{Name: "Keyword Optimization", Description: "Automatically match your resume to job descriptions", IsPremium: true},
		{Name: "Unlimited Downloads", Description: "Download your resume in multiple formats without limits", IsPremium: true},
		{Name: "Ad-Free Experience", Description: "Enjoy using the resume builder without advertisements", IsPremium: true},
		{Name: "Custom Templates", Description: "Access to premium professional templates", IsPremium: true},
	}
}

// Upgrade marks the current session premium. Payment is simulated by the
// session's latency; there is no billing backend.
func Upgrade(ctx context.Context, m session.Manager) (*session.Session, error) {
	if m.Current() == nil {
		return nil, ErrNotSignedIn
	}
	s, err := m.Upgrade(ctx)
	if err != nil {
		return nil, err
	}
	metrics.PremiumUpgrade()
	return s, nil
}
