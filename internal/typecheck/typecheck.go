// Package typecheck decides whether a raw cell value satisfies a declared
// column type.
package typecheck

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/eykd/tabvet/internal/domain"
)

// numericRegex matches integers, decimals, and scientific notation with an
// optional sign.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// specialFloats are the non-finite literals a general numeric parser accepts.
var specialFloats = map[string]bool{
	"inf": true, "+inf": true, "-inf": true,
	"infinity": true, "+infinity": true, "-infinity": true,
	"nan": true,
}

// Checker implements the type rules for cell values.
//
// Null cells pass for every type: a missing value is a valid member of
// any column type, and nullability is enforced separately.
type Checker struct{}

// Check returns nil when value satisfies t, a wrapped domain.ErrTypeMismatch
// when it does not, and a wrapped domain.ErrUnsupportedType for unknown tags.
func (Checker) Check(value domain.Cell, t domain.ColumnType) error {
	return Check(value, t)
}

// Check is the package-level form of Checker.Check.
func Check(value domain.Cell, t domain.ColumnType) error {
	if !t.Supported() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedType, t)
	}
	if value.Null || t == domain.TypeStr {
		return nil
	}

	s := strings.TrimSpace(value.Value)
	var ok bool
	switch t {
	case domain.TypeInt, domain.TypeFloat:
		// int accepts any numeric literal, fractional ones included.
		ok = IsNumeric(s)
	case domain.TypeDatetime:
		ok = IsDatetime(s)
	}
	if !ok {
		return fmt.Errorf("%w: %q is not %s", domain.ErrTypeMismatch, value.Value, t)
	}
	return nil
}

// IsNumeric reports whether s is a numeric literal.
func IsNumeric(s string) bool {
	if specialFloats[strings.ToLower(s)] {
		return true
	}
	if !numericRegex.MatchString(s) {
		return false
	}
	// Out-of-range literals are still numeric text.
	if _, err := strconv.ParseFloat(s, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	return true
}

// IsDatetime reports whether s parses as a date or date-time in any of the
// common layouts. Ambiguous numeric dates such as 01/02/2006 resolve
// month-first; day-first dates such as 15/01/2024 are retried with day
// and month swapped.
func IsDatetime(s string) bool {
	if s == "" {
		return false
	}
	_, err := dateparse.ParseAny(s, dateparse.RetryAmbiguousDateWithSwap(true))
	return err == nil
}
