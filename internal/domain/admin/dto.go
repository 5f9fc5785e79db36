package admin

import (
	"errors"
	"strings"
	"time"

	"rentfunnel/internal/domain"
)

var errInvalidDate = errors.New("dates must be YYYY-MM-DD or RFC3339")

// LeadQuery is the lead list filter, bound from the query string.
// status and source accept repeated or comma-separated values.
type LeadQuery struct {
	Status []string `form:"status"`
	Source []string `form:"source"`
	From   string   `form:"from"`
	To     string   `form:"to"`
	Search string   `form:"search"`
}

// Filters converts the query. A date-only "to" covers the whole day in tz.
func (q *LeadQuery) Filters(tz *time.Location) (domain.LeadFilters, error) {
	f := domain.LeadFilters{Search: strings.TrimSpace(q.Search)}
	for _, s := range splitValues(q.Status) {
		st := domain.LeadStatus(s)
		if !st.IsValid() {
			return f, errors.New("unknown status " + s)
		}
		f.Status = append(f.Status, st)
	}
	for _, s := range splitValues(q.Source) {
		f.Source = append(f.Source, domain.ParseSource(s))
	}

	if q.From != "" {
		t, _, err := parseDate(q.From, tz)
		if err != nil {
			return f, err
		}
		f.DateFrom = &t
	}
	if q.To != "" {
		t, dateOnly, err := parseDate(q.To, tz)
		if err != nil {
			return f, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.DateTo = &t
	}
	return f, nil
}

func parseDate(s string, tz *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, tz); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, errInvalidDate
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified won lost"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type LeadListResponse struct {
	Leads []LeadWithDetails `json:"leads"`
	Total int               `json:"total"`
}
