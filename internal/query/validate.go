package query

import (
	"errors"
	"fmt"
	"regexp"
)

// fieldName is the accepted shape of field names. It keeps names safe to
// embed in SQLite JSON paths.
var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidField reports whether name can be used as a filter or sort field.
func ValidField(name string) bool {
	return fieldName.MatchString(name)
}

// Validate checks the parameters and returns every problem found, joined.
func (p Params) Validate() error {
	v := &validator{}
	if p.Limit < 0 {
		v.addError("limit must not be negative, got %d", p.Limit)
	}
	if p.Offset < 0 {
		v.addError("offset must not be negative, got %d", p.Offset)
	}

	seen := make(map[string]bool, len(p.Sort))
	for i, k := range p.Sort {
		if !ValidField(k.Field) {
			v.addError("sort[%d]: invalid field %q", i, k.Field)
			continue
		}
		if seen[k.Field] {
			v.addError("sort[%d]: duplicate field %q", i, k.Field)
		}
		seen[k.Field] = true
	}

	if p.Filter != nil {
		v.validatePredicate("filter", p.Filter)
	}
	return errors.Join(v.errs...)
}

// validator accumulates errors during traversal.
type validator struct {
	errs []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) validatePredicate(path string, p Predicate) {
	switch pred := p.(type) {
	case Equals:
		if !ValidField(pred.Field) {
			v.addError("%s: invalid field %q", path, pred.Field)
		}
		if pred.Value == nil {
			v.addError("%s: equals %q has no value", path, pred.Field)
		}
	case Contains:
		if !ValidField(pred.Field) {
			v.addError("%s: invalid field %q", path, pred.Field)
		}
	case And:
		for i, sub := range pred.Predicates {
			subPath := fmt.Sprintf("%s.and[%d]", path, i)
			if sub == nil {
				v.addError("%s: nil predicate", subPath)
				continue
			}
			v.validatePredicate(subPath, sub)
		}
	default:
		v.addError("%s: unsupported predicate type %T", path, p)
	}
}
