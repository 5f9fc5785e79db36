package attribution

import (
	"time"

	"rentfunnel/internal/domain"
)

// StateVersion is the envelope version of persisted attribution blobs
const StateVersion = 1

// UTM holds the five campaign tags. Nil means the tag was not present.
type UTM struct {
	Source   *string `json:"utm_source"`
	Medium   *string `json:"utm_medium"`
	Campaign *string `json:"utm_campaign"`
	Content  *string `json:"utm_content"`
	Term     *string `json:"utm_term"`
}

// HasCampaign reports whether the payload carries a source or campaign tag
func (u UTM) HasCampaign() bool {
	return nonEmpty(u.Source) || nonEmpty(u.Campaign)
}

// Attribution explains how one visitor session arrived and how far it got
type Attribution struct {
	Source       domain.Source       `json:"source"`
	UTMSource    *string             `json:"utm_source"`
	UTMMedium    *string             `json:"utm_medium"`
	UTMCampaign  *string             `json:"utm_campaign"`
	UTMContent   *string             `json:"utm_content"`
	UTMTerm      *string             `json:"utm_term"`
	Referrer     *string             `json:"referrer"`
	LandingPage  string              `json:"landing_page"`
	SessionID    string              `json:"session_id"`
	FirstVisit   time.Time           `json:"first_visit"`
	LastVisit    time.Time           `json:"last_visit"`
	CurrentStep  domain.FunnelStep   `json:"current_step"`
	StepsVisited []domain.FunnelStep `json:"steps_visited"`
}

// HasVisited reports whether step is in StepsVisited
func (a *Attribution) HasVisited(step domain.FunnelStep) bool {
	for _, s := range a.StepsVisited {
		if s == step {
			return true
		}
	}
	return false
}

// Snapshot is the subset of an Attribution copied onto a Lead
type Snapshot struct {
	Source      domain.Source `json:"source"`
	UTMSource   *string       `json:"utm_source,omitempty"`
	UTMMedium   *string       `json:"utm_medium,omitempty"`
	UTMCampaign *string       `json:"utm_campaign,omitempty"`
	UTMContent  *string       `json:"utm_content,omitempty"`

	CurrentStep domain.FunnelStep `json:"current_step,omitempty"`
}

// Visit is what the client knows about the current page load
type Visit struct {
	RawQuery    string
	Referrer    string
	LandingPage string
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
