package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adImpressions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ads",
			Name:      "impressions_total",
			Help:      "Ads served to non-premium clients.",
		},
		[]string{"ad_id", "placement"},
	)

	adClicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ads",
			Name:      "clicks_total",
			Help:      "Ad clicks reported by clients.",
		},
		[]string{"ad_id"},
	)

	affiliateImpressions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "affiliate",
			Name:      "impressions_total",
			Help:      "Affiliate products shown.",
		},
		[]string{"product_id"},
	)

	upgrades = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "premium",
			Name:      "upgrades_total",
			Help:      "Sessions upgraded to premium.",
		},
	)
)

// AdImpression counts one ad shown in placement.
func AdImpression(adID, placement string) {
	adImpressions.WithLabelValues(adID, placement).Inc()
}

// AdClick counts one ad click.
func AdClick(adID string) {
	adClicks.WithLabelValues(adID).Inc()
}

// AffiliateImpression counts one affiliate product shown.
func AffiliateImpression(productID string) {
	affiliateImpressions.WithLabelValues(productID).Inc()
}

// PremiumUpgrade counts one upgrade.
func PremiumUpgrade() {
	upgrades.Inc()
}
