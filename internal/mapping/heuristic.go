package mapping

import (
	"strings"

	"tradeflow/internal/domain"
)

// Normalize lowercases s and strips every character outside [a-z0-9]. Field
// names and data keys go through the same transform so "BillTo_Name" and
// "billtoname" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// subRule pairs a sub-keyword with the data key it selects within a category.
type subRule struct {
	keyword string
	key     string
}

var customerSubRules = []subRule{
	{"name", "customerName"},
	{"address", "customerAddress"},
	{"phone", "customerPhone"},
}

var companySubRules = []subRule{
	{"name", "companyName"},
	{"address", "companyAddress"},
	{"phone", "companyPhone"},
	{"email", "companyEmail"},
}

// HeuristicMap proposes a best-effort mapping from form fields to known data
// keys. Pure and deterministic. An exact normalized-name match against a known
// key wins outright; otherwise ordered keyword rules apply, and fields
// matching nothing are omitted. Unmapped is preferred over wrongly mapped.
func HeuristicMap(fields []domain.FieldDescriptor, knownKeys []string) []domain.FieldMapping {
	normKeys := make([]string, len(knownKeys))
	for i, k := range knownKeys {
		normKeys[i] = Normalize(k)
	}

	var mappings []domain.FieldMapping
	for _, field := range fields {
		norm := Normalize(field.Name)

		key, ok := exactMatch(norm, knownKeys, normKeys)
		if !ok {
			key, ok = keywordMatch(norm)
		}
		if ok {
			mappings = append(mappings, domain.FieldMapping{
				TargetField: field.Name,
				SourceKey:   key,
			})
		}
	}
	return mappings
}

// exactMatch returns the first known key whose normalized form equals the
// normalized field name. The returned key is the caller's verbatim key.
func exactMatch(norm string, knownKeys, normKeys []string) (string, bool) {
	for i, nk := range normKeys {
		if nk != "" && nk == norm {
			return knownKeys[i], true
		}
	}
	return "", false
}

// keywordMatch applies the ordered keyword rules to a normalized field name.
// The first rule that assigns a key wins; a category without a matching
// sub-keyword falls through to the rules below it.
func keywordMatch(norm string) (string, bool) {
	if containsAny(norm, "customer", "client", "billto") {
		if key, ok := firstSubRule(norm, customerSubRules); ok {
			return key, true
		}
	}
	if containsAny(norm, "company", "vendor", "provider") {
		if key, ok := firstSubRule(norm, companySubRules); ok {
			return key, true
		}
	}
	if strings.Contains(norm, "date") {
		return "serviceDate", true
	}
	if strings.Contains(norm, "invoice") || strings.Contains(norm, "est") {
		return "invoiceNumber", true
	}
	switch norm {
	case "total", "grandtotal":
		return "total", true
	case "subtotal":
		return "subtotal", true
	case "tax":
		return "tax", true
	case "notes", "comments":
		return "notes", true
	}
	if strings.Contains(norm, "desc") || strings.Contains(norm, "items") {
		return domain.LineItemsKey, true
	}
	return "", false
}

func firstSubRule(norm string, rules []subRule) (string, bool) {
	for _, r := range rules {
		if strings.Contains(norm, r.keyword) {
			return r.key, true
		}
	}
	return "", false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
