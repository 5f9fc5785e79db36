package lead

import (
	"strings"
	"unicode/utf8"

	"rentfunnel/internal/pkg/validator"
)

// NormalizePhone rewrites a phone number as +<country><digits>. Italian
// numbers without a prefix get +39.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, "0039"):
		return "+39" + cleaned[4:]
	case strings.HasPrefix(cleaned, "39"):
		return "+39" + cleaned[2:]
	case !strings.HasPrefix(cleaned, "+") && len(cleaned) == 10:
		return "+39" + cleaned
	}
	return cleaned
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func normalizeForm(f Form) Form {
	f.Nome = strings.TrimSpace(f.Nome)
	f.Cognome = strings.TrimSpace(f.Cognome)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Telefono = NormalizePhone(f.Telefono)
	f.Azienda = strings.TrimSpace(f.Azienda)
	f.PartitaIva = strings.TrimSpace(f.PartitaIva)
	f.Messaggio = strings.TrimSpace(f.Messaggio)
	return f
}

const (
	maxNameLen    = 50
	maxCompanyLen = 100
	maxMessageLen = 1000
)

func validateForm(f Form) *FieldError {
	if err := validateName("nome", f.Nome); err != nil {
		return err
	}
	if err := validateName("cognome", f.Cognome); err != nil {
		return err
	}
	if f.Email == "" {
		return fieldError("email", "required")
	}
	if !validEmail(f.Email) {
		return fieldError("email", "invalid email address")
	}
	if err := validatePhone(f.Telefono); err != nil {
		return err
	}
	if utf8.RuneCountInString(f.Azienda) > maxCompanyLen {
		return fieldError("azienda", "too long")
	}
	if f.PartitaIva != "" && !validPartitaIva(f.PartitaIva) {
		return fieldError("partita_iva", "must be 11 digits")
	}
	if utf8.RuneCountInString(f.Messaggio) > maxMessageLen {
		return fieldError("messaggio", "too long")
	}
	if !f.PrivacyAccepted {
		return fieldError("privacy_accepted", "privacy policy must be accepted")
	}
	return nil
}

func validateName(field, v string) *FieldError {
	if v == "" {
		return fieldError(field, "required")
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return fieldError(field, "too long")
	}
	return nil
}

func validatePhone(phone string) *FieldError {
	if phone == "" {
		return fieldError("telefono", "required")
	}
	if strings.LastIndex(phone, "+") > 0 {
		return fieldError("telefono", "invalid phone number")
	}
	if n := countDigits(phone); n < 9 || n > 15 {
		return fieldError("telefono", "must have between 9 and 15 digits")
	}
	return nil
}

func validEmail(email string) bool {
	return validator.Var(email, "email")
}

func validPartitaIva(v string) bool {
	return len(v) == 11 && countDigits(v) == 11
}

// splitName turns "Mario De Rossi" into "Mario", "De Rossi"
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
