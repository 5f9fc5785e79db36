package attribution

import "rentfunnel/internal/domain"

// TouchRequest describes a page load. Query is the raw query string of the
// landing URL (utm_* parameters are read from it).
type TouchRequest struct {
	Query       string `json:"query"`
	Referrer    string `json:"referrer"`
	LandingPage string `json:"landing_page"`
}

type StepRequest struct {
	Step domain.FunnelStep `json:"step" validate:"required"`
}

// SessionResponse is the attribution plus its funnel position
type SessionResponse struct {
	*Attribution
	StepNumber int    `json:"step_number"`
	StepTotal  int    `json:"step_total"`
	Channel    string `json:"channel"`
}

func toResponse(a *Attribution) SessionResponse {
	n, total := a.CurrentStep.StepNumber()
	return SessionResponse{
		Attribution: a,
		StepNumber:  n,
		StepTotal:   total,
		Channel:     ChannelLabel(a.Source),
	}
}

var channelLabels = map[domain.Source]string{
	domain.SourceInstagramAds:  "Instagram Ads",
	domain.SourceInstagramBio:  "Instagram Bio",
	domain.SourceFacebookAds:   "Facebook Ads",
	domain.SourceGoogleAds:     "Google Ads",
	domain.SourceGoogleOrganic: "Google Organico",
	domain.SourceDirect:        "Diretto",
	domain.SourceReferral:      "Referral",
	domain.SourceWhatsApp:      "WhatsApp",
}

// ChannelLabel is the display name of a source
func ChannelLabel(s domain.Source) string {
	if label, ok := channelLabels[s]; ok {
		return label
	}
	return "Sconosciuto"
}
