package traps

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrUnknownTrapCode is matched (via errors.Is) by every UnknownTrapCodeError.
var ErrUnknownTrapCode = errors.New("unknown trap code")

// UnknownTrapCodeError describes a raw value which is not a defined TrapCode. Reserved gaps in the numbering are
// reported with this error as well.
type UnknownTrapCodeError struct {
	// Raw is the value that failed classification.
	Raw int64
}

// Error returns the error message string, implementing the `error` interface.
func (e *UnknownTrapCodeError) Error() string {
	return fmt.Sprintf("unknown trap code %d", e.Raw)
}

// Is reports whether target is ErrUnknownTrapCode.
func (e *UnknownTrapCodeError) Is(target error) bool {
	return target == ErrUnknownTrapCode
}

// Classify maps a raw value reported by a trap handler or test stub to its TrapCode. Any value outside the table,
// including the reserved gaps, negative values and values that do not fit a TrapCode, returns an
// UnknownTrapCodeError. Classify has no side effects and is safe for concurrent use.
func Classify(raw int64) (TrapCode, error) {
	if raw < 0 || raw > math.MaxUint8 {
		return 0, &UnknownTrapCodeError{Raw: raw}
	}
	code := TrapCode(raw)
	if !code.IsValid() {
		return 0, &UnknownTrapCodeError{Raw: raw}
	}
	return code, nil
}

// AllTrapCodes returns every defined TrapCode in ascending numeric order.
func AllTrapCodes() []TrapCode {
	codes := make([]TrapCode, 0, len(trapCodeTable))
	for code := range trapCodeTable {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// TrapCodesInCategory returns the defined TrapCodes of the given Category in ascending numeric order.
func TrapCodesInCategory(category Category) []TrapCode {
	codes := make([]TrapCode, 0)
	for _, code := range AllTrapCodes() {
		if code.Category() == category {
			codes = append(codes, code)
		}
	}
	return codes
}
