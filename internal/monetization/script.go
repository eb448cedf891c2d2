package monetization

import (
	"net/url"
	"sync"

	"locallift/internal/session"
)

const adScriptBase = "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"

// AdScriptConfig mirrors the AdSense switchboard.
type AdScriptConfig struct {
	ClientID string `json:"clientId"`
	Enabled  bool   `json:"enabled"`
	TestMode bool   `json:"testMode"`
}

// ScriptURL is the loader URL for the configured client id.
func (c AdScriptConfig) ScriptURL() string {
	return adScriptBase + "?client=" + url.QueryEscape(c.ClientID)
}

// ScriptDecision is what the page should do about the loader script.
type ScriptDecision struct {
	Inject   bool   `json:"inject"`
	URL      string `json:"url,omitempty"`
	TestMode bool   `json:"testMode"`
	Reason   string `json:"reason,omitempty"`
}

// ScriptEffect decides once per page whether the loader script is injected.
// Later calls return the first decision.
type ScriptEffect struct {
	cfg AdScriptConfig

	once     sync.Once
	decision ScriptDecision
}

// NewScriptEffect returns an undecided effect for cfg.
func NewScriptEffect(cfg AdScriptConfig) *ScriptEffect {
	return &ScriptEffect{cfg: cfg}
}

// Decide resolves the effect against s.
func (e *ScriptEffect) Decide(s *session.Session) ScriptDecision {
	e.once.Do(func() {
		e.decision = decideScript(e.cfg, s)
	})
	return e.decision
}

func decideScript(cfg AdScriptConfig, s *session.Session) ScriptDecision {
	d := ScriptDecision{TestMode: cfg.TestMode}
	switch {
	case !cfg.Enabled:
		d.Reason = "ads disabled"
	case !Visible(s):
		d.Reason = "premium session"
	case cfg.ClientID == "":
		d.Reason = "no client id"
	default:
		d.Inject = true
		d.URL = cfg.ScriptURL()
	}
	return d
}
