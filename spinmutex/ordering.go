package spinmutex

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOrdering is returned by ParseOrdering for unrecognised names.
var ErrUnknownOrdering = errors.New("spinmutex: unknown ordering")

// Ordering selects the memory-ordering constraints applied to every flag
// operation of a SpinMutex. It is fixed for the lifetime of the mutex.
type Ordering uint8

const (
	// Correct applies acquire on a successful TryAcquire and release on Release.
	Correct Ordering = iota

	// Broken applies no ordering at all: relaxed CAS, relaxed store.
	// Mutual exclusion still holds; visibility of the protected data does not.
	Broken

	numOrderings
)

// String returns the canonical lowercase name.
func (o Ordering) String() string {
	switch o {
	case Correct:
		return "correct"
	case Broken:
		return "broken"
	}
	return "invalid"
}

// Valid reports whether o names a known policy.
func (o Ordering) Valid() bool {
	return o < numOrderings
}

// ParseOrdering accepts "correct"/"acqrel" and "broken"/"relaxed", case-insensitive.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct", "acqrel", "acquire-release":
		return Correct, nil
	case "broken", "relaxed":
		return Broken, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOrdering, s)
}

// MarshalText lets an Ordering be carried through JSON configs and reports.
func (o Ordering) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, ErrUnknownOrdering
	}
	return []byte(o.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (o *Ordering) UnmarshalText(b []byte) error {
	v, err := ParseOrdering(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
