package ussd

import (
	"regexp"
)

// fieldRule describes how one collected field is validated. All free-text
// stages go through this table instead of ad hoc per-flow checks.
type fieldRule struct {
	MinLen   int
	MaxLen   int
	Pattern  *regexp.Regexp // optional, applied after the length bounds
	ErrorKey string         // i18n key for the re-prompt annotation
}

var fieldRules = map[string]fieldRule{
	"name": {
		MinLen:   3,
		MaxLen:   60,
		Pattern:  regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]*$`),
		ErrorKey: "err_name",
	},
	"national_id": {
		MinLen:   6,
		MaxLen:   10,
		Pattern:  regexp.MustCompile(`^[0-9]+$`),
		ErrorKey: "err_national_id",
	},
	"description": {
		MinLen:   5,
		MaxLen:   140,
		ErrorKey: "err_description",
	},
	"ref_code": {
		MinLen:   10,
		MaxLen:   10,
		Pattern:  regexp.MustCompile(`^[A-Z]{3}-[A-Z0-9]{6}$`),
		ErrorKey: "err_refcode",
	},
	"student_name": {
		MinLen:   3,
		MaxLen:   60,
		Pattern:  regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]*$`),
		ErrorKey: "err_name",
	},
	"school": {
		MinLen:   3,
		MaxLen:   80,
		ErrorKey: "err_school",
	},
	"year": {
		MinLen:   1,
		MaxLen:   1,
		Pattern:  regexp.MustCompile(`^[1-8]$`),
		ErrorKey: "err_year",
	},
}

// validateField checks value against the rule for field. Returns the i18n
// error key on failure, empty string on success. Unknown fields pass.
func validateField(field, value string) string {
	rule, ok := fieldRules[field]
	if !ok {
		return ""
	}

	if len(value) < rule.MinLen || len(value) > rule.MaxLen {
		return rule.ErrorKey
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return rule.ErrorKey
	}
	return ""
}
