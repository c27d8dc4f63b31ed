package pid

import (
	"fmt"
	"math"
	"strings"
	"unsafe"
)

// Signal is the numeric type of setpoint, input and output.
type Signal interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int | ~float32 | ~float64
}

// signalRange reports the values T can hold and whether T is an integer type.
func signalRange[T Signal]() (lo, hi float64, integer bool) {
	var half T = 1
	half /= 2
	size := unsafe.Sizeof(half)
	if half != 0 {
		if size == 4 {
			return -math.MaxFloat32, math.MaxFloat32, false
		}
		return -math.MaxFloat64, math.MaxFloat64, false
	}
	bits := int(size) * 8
	lo = -math.Ldexp(1, bits-1)
	hi = math.Ldexp(1, bits-1) - 1
	if bits == 64 {
		// 2^63-1 is not a float64; take the largest one below 2^63
		hi = math.Nextafter(math.Ldexp(1, 63), 0)
	}
	return lo, hi, true
}

// FromFloat converts v to T, saturating at the range of T. Integer types
// truncate toward zero; NaN maps to zero.
func FromFloat[T Signal](v float64) T {
	if math.IsNaN(v) {
		return 0
	}
	lo, hi, _ := signalRange[T]()
	return T(clamp(v, lo, hi))
}

// Direction selects the sign convention of the error and rate terms.
type Direction uint8

const (
	Normal Direction = iota
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Normal:
		return "normal"
	case Reverse:
		return "reverse"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// ParseDirection accepts "normal" or "reverse" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "reverse":
		return Reverse, nil
	}
	return Normal, fmt.Errorf("pid: unknown direction %q", s)
}

// Mode selects whether proportional action follows the error or the rate of
// change of the measurement.
type Mode uint8

const (
	OnError Mode = iota
	// OnRate accumulates rate*Kp into the integral instead of applying
	// error*Kp directly. Suited to integrating processes.
	OnRate
)

func (m Mode) String() string {
	switch m {
	case OnError:
		return "on_error"
	case OnRate:
		return "on_rate"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode accepts "on_error" or "on_rate" ("error" and "rate" also work).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on_error", "error":
		return OnError, nil
	case "on_rate", "rate":
		return OnRate, nil
	}
	return OnError, fmt.Errorf("pid: unknown mode %q", s)
}
