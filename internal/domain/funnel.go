package domain

import "strings"

// Source identifies the acquisition channel of a visitor
type Source string

const (
	SourceInstagramAds  Source = "instagram_ads"
	SourceInstagramBio  Source = "instagram_bio"
	SourceFacebookAds   Source = "facebook_ads"
	SourceGoogleAds     Source = "google_ads"
	SourceGoogleOrganic Source = "google_organic"
	SourceDirect        Source = "direct"
	SourceReferral      Source = "referral"
	SourceWhatsApp      Source = "whatsapp"
	SourceUnknown       Source = "unknown"
)

// AllSources lists every acquisition channel in dashboard order
var AllSources = []Source{
	SourceInstagramAds,
	SourceInstagramBio,
	SourceFacebookAds,
	SourceGoogleAds,
	SourceGoogleOrganic,
	SourceDirect,
	SourceReferral,
	SourceWhatsApp,
	SourceUnknown,
}

// ParseSource maps a stored or client-supplied value to a Source.
// Unrecognized values become SourceUnknown.
func ParseSource(s string) Source {
	v := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, src := range AllSources {
		if src == v {
			return v
		}
	}
	return SourceUnknown
}

// FunnelStep is one stage of the conversion funnel
type FunnelStep string

const (
	StepHomepage             FunnelStep = "homepage"
	StepCatalog              FunnelStep = "catalog"
	StepVehicleDetail        FunnelStep = "vehicle_detail"
	StepConfiguratorStart    FunnelStep = "configurator_start"
	StepConfiguratorParams   FunnelStep = "configurator_params"
	StepConfiguratorServices FunnelStep = "configurator_services"
	StepQuoteGenerated       FunnelStep = "quote_generated"
	StepContactForm          FunnelStep = "contact_form"
	StepCheckout             FunnelStep = "checkout"
	StepConversion           FunnelStep = "conversion"

	// Branches outside the main order
	StepCheckoutFail  FunnelStep = "checkout_fail"
	StepWhatsAppClick FunnelStep = "whatsapp_click"
)

// FunnelOrder is the main funnel sequence. Used for display and analytics only.
var FunnelOrder = []FunnelStep{
	StepHomepage,
	StepCatalog,
	StepVehicleDetail,
	StepConfiguratorStart,
	StepConfiguratorParams,
	StepConfiguratorServices,
	StepQuoteGenerated,
	StepContactForm,
	StepCheckout,
	StepConversion,
}

// Index returns the position of the step in FunnelOrder, or -1 for branch steps
func (s FunnelStep) Index() int {
	for i, step := range FunnelOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is a known funnel step
func (s FunnelStep) IsValid() bool {
	return s.Index() >= 0 || s == StepCheckoutFail || s == StepWhatsAppClick
}

// IsAfter reports whether s comes after other in the main order
func (s FunnelStep) IsAfter(other FunnelStep) bool {
	return s.Index() > other.Index()
}

// StepNumber returns the 1-based "step N of M" position. Branch steps return 0.
func (s FunnelStep) StepNumber() (int, int) {
	return s.Index() + 1, len(FunnelOrder)
}
