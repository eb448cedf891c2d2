package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"locallift/internal/api/middleware"
	"locallift/internal/monetization"
)

const maxAffiliateProducts = 10

// MonetizationHandler serves ads, affiliate offers and the premium pitch.
type MonetizationHandler struct {
	picker     *monetization.Picker
	affiliates *monetization.Affiliates
	script     monetization.AdScriptConfig
}

func NewMonetizationHandler(picker *monetization.Picker, affiliates *monetization.Affiliates, script monetization.AdScriptConfig) *MonetizationHandler {
	return &MonetizationHandler{picker: picker, affiliates: affiliates, script: script}
}

// GetAd picks one ad for ?placement=. Premium sessions get visible=false and
// no ad, and no impression is counted.
func (h *MonetizationHandler) GetAd(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if !monetization.Visible(s) {
		c.JSON(http.StatusOK, gin.H{"visible": false, "ad": nil})
		return
	}
	placement := monetization.ParsePlacement(c.Query("placement"))
	ad := h.picker.Pick(placement)
	c.JSON(http.StatusOK, gin.H{"visible": true, "placement": placement, "ad": ad})
}

// GetAdScript tells the page whether to inject the ad loader.
func (h *MonetizationHandler) GetAdScript(c *gin.Context) {
	effect := monetization.NewScriptEffect(h.script)
	c.JSON(http.StatusOK, effect.Decide(middleware.CurrentSession(c)))
}

func (h *MonetizationHandler) ClickAd(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("adID"))
	if err != nil {
		BadRequest(c, "invalid ad id")
		return
	}
	if _, err := monetization.RecordClick(id); err != nil {
		if errors.Is(err, monetization.ErrUnknownAd) {
			NotFound(c, err.Error())
			return
		}
		Internal(c, "failed to record click")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAffiliates returns offers matching ?keywords= (repeated or comma
// separated), capped by ?max=.
func (h *MonetizationHandler) ListAffiliates(c *gin.Context) {
	if !monetization.Visible(middleware.CurrentSession(c)) {
		c.JSON(http.StatusOK, gin.H{"visible": false, "products": []monetization.Product{}})
		return
	}

	max := 0
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			BadRequest(c, "max must be a non-negative integer")
			return
		}
		max = min(n, maxAffiliateProducts)
	}

	var keywords []string
	for _, raw := range c.QueryArray("keywords") {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"visible": true, "products": h.affiliates.Relevant(keywords, max)})
}

func (h *MonetizationHandler) PremiumFeatures(c *gin.Context) {
	s := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"features":  monetization.PremiumFeatures(),
		"isPremium": s != nil && s.IsPremium,
	})
}
