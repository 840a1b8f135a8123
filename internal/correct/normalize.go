package correct

import (
	"strings"

	"dataguard/internal/domain"
)

// normalize applies the field's format standardization in place and reports
// whether it changed anything. Which normalizer runs is keyed off the field
// name, matching how the ingestion contract names columns across domains.
func normalize(r *domain.Record, field string) bool {
	if r.IsNull(field) {
		return false
	}
	switch {
	case field == "email":
		return normalizeEmail(r, field)
	case field == "phone":
		return normalizePhone(r, field)
	case field == "state":
		return normalizeState(r, field)
	case strings.HasSuffix(field, "_date") || strings.HasSuffix(field, "_at"):
		return normalizeDate(r, field)
	}
	return false
}

// normalizeEmail lowercases and trims; "Cliente@EMAIL.com " becomes
// "cliente@email.com".
func normalizeEmail(r *domain.Record, field string) bool {
	before := r.String(field)
	after := strings.ToLower(strings.TrimSpace(before))
	if after == before {
		return false
	}
	r.Set(field, after)
	return true
}

// normalizePhone strips formatting down to digits and left-pads with zeros to
// the 11-digit national format; "(11) 98765-4321" becomes "11987654321".
// More than 11 digits cannot be fixed, so the value is left as-is.
func normalizePhone(r *domain.Record, field string) bool {
	before := r.String(field)
	var digits strings.Builder
	for _, c := range before {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	after := digits.String()
	if after == "" || len(after) > 11 {
		return false
	}
	if len(after) < 11 {
		after = strings.Repeat("0", 11-len(after)) + after
	}
	if after == before {
		return false
	}
	r.Set(field, after)
	return true
}

// normalizeState trims and uppercases the two-letter state code.
func normalizeState(r *domain.Record, field string) bool {
	before := r.String(field)
	after := strings.ToUpper(strings.TrimSpace(before))
	if after == before {
		return false
	}
	r.Set(field, after)
	return true
}

// normalizeDate coerces parseable string dates to time.Time so downstream
// consumers see one representation.
func normalizeDate(r *domain.Record, field string) bool {
	if _, isString := r.Fields[field].(string); !isString {
		return false
	}
	t, ok := r.Time(field)
	if !ok {
		return false
	}
	r.Set(field, t)
	return true
}
