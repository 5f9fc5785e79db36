package attribution

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentfunnel/internal/domain"
)

const DefaultMaxAge = 30 * time.Minute

var exactSources = map[string]domain.Source{
	"instagram":      domain.SourceInstagramAds,
	"ig":             domain.SourceInstagramAds,
	"instagram_ads":  domain.SourceInstagramAds,
	"instagram_bio":  domain.SourceInstagramBio,
	"facebook":       domain.SourceFacebookAds,
	"fb":             domain.SourceFacebookAds,
	"facebook_ads":   domain.SourceFacebookAds,
	"google":         domain.SourceGoogleAds,
	"google_ads":     domain.SourceGoogleAds,
	"google_organic": domain.SourceGoogleOrganic,
	"organic":        domain.SourceGoogleOrganic,
	"whatsapp":       domain.SourceWhatsApp,
	"referral":       domain.SourceReferral,
	"direct":         domain.SourceDirect,
}

type keywordRule struct {
	keyword string
	source  domain.Source
}

// Checked in order. "facebook" comes first so a tag naming Facebook is
// always a Facebook campaign, whatever else it contains.
var utmKeywords = []keywordRule{
	{"facebook", domain.SourceFacebookAds},
	{"instagram", domain.SourceInstagramAds},
	{"fb", domain.SourceFacebookAds},
	{"google", domain.SourceGoogleAds},
	{"whatsapp", domain.SourceWhatsApp},
}

// Organic traffic from a platform maps to a different value than its ads
var referrerKeywords = []keywordRule{
	{"instagram.com", domain.SourceInstagramBio},
	{"facebook.com", domain.SourceFacebookAds},
	{"fb.com", domain.SourceFacebookAds},
	{"google.", domain.SourceGoogleOrganic},
	{"whatsapp", domain.SourceWhatsApp},
}

// Engine holds the pure attribution rules
type Engine struct {
	// SiteHost is our own host. Referrers on it, or on a subdomain, are
	// internal navigation rather than referrals. Empty means every
	// referrer is external.
	SiteHost string
	MaxAge   time.Duration

	now   func() time.Time
	newID func() string
}

func NewEngine(siteHost string, maxAge time.Duration) *Engine {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Engine{
		SiteHost: strings.ToLower(strings.TrimSpace(siteHost)),
		MaxAge:   maxAge,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock returns a copy of the engine reading time from now
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

// DetectSource classifies a visit. Explicit campaign tags always outrank
// the referrer.
func (e *Engine) DetectSource(utmSource, referrer string) domain.Source {
	if tag := strings.ToLower(strings.TrimSpace(utmSource)); tag != "" {
		if src, ok := exactSources[tag]; ok {
			return src
		}
		for _, rule := range utmKeywords {
			if strings.Contains(tag, rule.keyword) {
				return rule.source
			}
		}
	}

	if ref := strings.ToLower(strings.TrimSpace(referrer)); ref != "" {
		host := referrerHost(ref)
		for _, rule := range referrerKeywords {
			if strings.Contains(host, rule.keyword) {
				return rule.source
			}
		}
		if !e.isSameOrigin(host) {
			return domain.SourceReferral
		}
	}

	return domain.SourceDirect
}

func (e *Engine) isSameOrigin(host string) bool {
	if e.SiteHost == "" || host == "" {
		return false
	}
	return host == e.SiteHost || strings.HasSuffix(host, "."+e.SiteHost)
}

// referrerHost extracts the host, falling back to the raw value for
// referrers that are not absolute URLs
func referrerHost(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Host != "" {
		return u.Hostname()
	}
	if u, err := url.Parse("//" + ref); err == nil && u.Host != "" {
		return u.Hostname()
	}
	return ref
}

// ParseUTM extracts the utm_* parameters from a raw query string
func ParseUTM(rawQuery string) UTM {
	q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return UTM{}
	}
	get := func(key string) *string {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return &v
		}
		return nil
	}
	return UTM{
		Source:   get("utm_source"),
		Medium:   get("utm_medium"),
		Campaign: get("utm_campaign"),
		Content:  get("utm_content"),
		Term:     get("utm_term"),
	}
}

// CreateInitial starts a new session at the homepage
func (e *Engine) CreateInitial(utm UTM, referrer, landingPage string) Attribution {
	now := e.now()
	return Attribution{
		Source:       e.DetectSource(deref(utm.Source), referrer),
		UTMSource:    utm.Source,
		UTMMedium:    utm.Medium,
		UTMCampaign:  utm.Campaign,
		UTMContent:   utm.Content,
		UTMTerm:      utm.Term,
		Referrer:     optional(referrer),
		LandingPage:  landingPage,
		SessionID:    e.newID(),
		FirstVisit:   now,
		LastVisit:    now,
		CurrentStep:  domain.StepHomepage,
		StepsVisited: []domain.FunnelStep{domain.StepHomepage},
	}
}

// Merge re-attributes a live session to a newer campaign. Without a new
// source or campaign tag only LastVisit moves.
func (e *Engine) Merge(existing Attribution, utm UTM, referrer string) Attribution {
	out := existing
	out.StepsVisited = append([]domain.FunnelStep(nil), existing.StepsVisited...)
	out.LastVisit = e.now()
	if !utm.HasCampaign() {
		return out
	}

	out.Source = e.DetectSource(deref(utm.Source), referrer)
	out.UTMSource = prefer(utm.Source, existing.UTMSource)
	out.UTMMedium = prefer(utm.Medium, existing.UTMMedium)
	out.UTMCampaign = prefer(utm.Campaign, existing.UTMCampaign)
	out.UTMContent = prefer(utm.Content, existing.UTMContent)
	out.UTMTerm = prefer(utm.Term, existing.UTMTerm)
	return out
}

// UpdateStep moves the session to step, recording it once
func (e *Engine) UpdateStep(a Attribution, step domain.FunnelStep) Attribution {
	out := a
	out.StepsVisited = append([]domain.FunnelStep(nil), a.StepsVisited...)
	if !out.HasVisited(step) {
		out.StepsVisited = append(out.StepsVisited, step)
	}
	out.CurrentStep = step
	out.LastVisit = e.now()
	return out
}

// IsExpired reports whether the session has been idle for longer than MaxAge
func (e *Engine) IsExpired(a Attribution) bool {
	return e.now().Sub(a.LastVisit) > e.MaxAge
}

// Snap copies the lead-facing part of a
func Snap(a Attribution) Snapshot {
	return Snapshot{
		Source:      a.Source,
		UTMSource:   a.UTMSource,
		UTMMedium:   a.UTMMedium,
		UTMCampaign: a.UTMCampaign,
		UTMContent:  a.UTMContent,
		CurrentStep: a.CurrentStep,
	}
}

// CanoneRanges lists the CanoneRange buckets in ascending order
var CanoneRanges = []string{"0-200", "200-300", "300-400", "400-500", "500-700", "700+"}

// CanoneRange buckets a monthly fee for analytics
func CanoneRange(canone int64) string {
	switch {
	case canone < 200:
		return "0-200"
	case canone < 300:
		return "200-300"
	case canone < 400:
		return "300-400"
	case canone < 500:
		return "400-500"
	case canone < 700:
		return "500-700"
	default:
		return "700+"
	}
}

func prefer(newer, older *string) *string {
	if nonEmpty(newer) {
		return newer
	}
	return older
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
