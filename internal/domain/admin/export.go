package admin

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"rentfunnel/internal/domain"
)

const (
	csvBOM        = "\ufeff"
	csvSeparator  = ";"
	csvDateFormat = "2/1/2006"
)

var csvHeader = []string{
	"ID", "Data", "Nome", "Cognome", "Email", "Telefono", "Azienda",
	"P.IVA", "Veicolo", "Status", "Source", "Campagna", "Messaggio",
}

// ExportCSV renders the filtered leads for spreadsheet import, newest first
func (s *Service) ExportCSV(ctx context.Context, f domain.LeadFilters) ([]byte, error) {
	leads, err := s.ListLeads(ctx, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(csvBOM)
	if err := WriteLeadsCSV(&buf, leads, s.tz); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLeadsCSV writes the header and one row per lead. Data cells are
// always quoted, rows end with "\n" except the last.
func WriteLeadsCSV(w io.Writer, leads []LeadWithDetails, tz *time.Location) error {
	lines := make([]string, 0, len(leads)+1)
	lines = append(lines, strings.Join(csvHeader, csvSeparator))
	for _, l := range leads {
		cells := csvRow(l, tz)
		for i, cell := range cells {
			cells[i] = quoteCell(cell)
		}
		lines = append(lines, strings.Join(cells, csvSeparator))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func csvRow(l LeadWithDetails, tz *time.Location) []string {
	vehicle := ""
	if l.Vehicle != nil {
		vehicle = l.Vehicle.Marca + " " + l.Vehicle.Modello
	}
	return []string{
		l.ID,
		l.CreatedAt.In(tz).Format(csvDateFormat),
		l.Nome,
		l.Cognome,
		l.Email,
		l.Telefono,
		l.Azienda,
		l.PartitaIva,
		vehicle,
		string(l.Status),
		string(l.Source),
		deref(l.UTMCampaign),
		l.Messaggio,
	}
}

func quoteCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
