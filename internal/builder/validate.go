package builder

import (
	"regexp"
	"sort"
	"strings"
)

// Nepali mobile numbers: eleven digits starting 97 or 98.
var phonePattern = regexp.MustCompile(`^9[78][0-9]{9}$`)

// ValidationError carries every violated field from one validation pass,
// keyed by field name. It is local to the builder and never sent over the
// wire.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Fields[k])
	}
	return b.String()
}

// Validate checks a draft before review. It always runs every check, so the
// caller gets all violations at once rather than one per attempt.
//
// Guest orders (no business reference) must carry contact name, a valid
// phone number and an address. Orders from a signed-in business skip those:
// the business record already holds them.
func Validate(rows []Row, c Contact) error {
	fields := map[string]string{}

	selected := false
	for _, r := range rows {
		if r.Selected() {
			selected = true
			break
		}
	}
	if !selected {
		fields["flavours"] = "select at least one flavour"
	}

	if c.BusinessID == 0 {
		if strings.TrimSpace(c.ContactName) == "" {
			fields["name"] = "name is required"
		}
		if !phonePattern.MatchString(strings.TrimSpace(c.Phone)) {
			fields["phone"] = "phone must be 11 digits starting with 97 or 98"
		}
		if strings.TrimSpace(c.Address) == "" {
			fields["address"] = "address is required"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
