package workflow

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
)

// FieldRule applies ozzo rules to one field.
type FieldRule struct {
	Field string
	Rules []validation.Rule
}

// Field builds a FieldRule.
func Field(name string, rules ...validation.Rule) FieldRule {
	return FieldRule{Field: name, Rules: rules}
}

// RuleSet is evaluated in declaration order; the first violation wins.
type RuleSet []FieldRule

// Validate checks f and returns ValidationFailed for the first bad field.
func (rs RuleSet) Validate(f Fields) error {
	for _, fr := range rs {
		if err := validation.Validate(f.Get(fr.Field), fr.Rules...); err != nil {
			return apperr.ValidationFailed(fr.Field, err.Error())
		}
	}
	return nil
}

// Mandatory requires a non-blank value.
func Mandatory(field string) validation.Rule {
	return validation.Required.Error(fmt.Sprintf("%s field is mandatory", field))
}

// Mandatories is a shorthand for several mandatory fields in order.
func Mandatories(fields ...string) RuleSet {
	rs := make(RuleSet, 0, len(fields))
	for _, f := range fields {
		rs = append(rs, Field(f, Mandatory(f)))
	}
	return rs
}

// Concat joins rule sets in order.
func Concat(sets ...RuleSet) RuleSet {
	var out RuleSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// AttachmentLimits maps an accepted file field to its maximum count.
type AttachmentLimits map[string]int

// Check rejects unknown file fields and counts above the limit.
func (al AttachmentLimits) Check(files []media.LocalFile) error {
	counts := map[string]int{}
	for _, f := range files {
		max, ok := al[f.Field]
		if !ok {
			return apperr.ValidationFailed(f.Field, fmt.Sprintf("Unexpected file field %s", f.Field))
		}
		counts[f.Field]++
		if counts[f.Field] > max {
			return apperr.ValidationFailed(f.Field, fmt.Sprintf("At most %d file(s) allowed for %s", max, f.Field))
		}
	}
	return nil
}
