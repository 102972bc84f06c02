package internal

import (
	"errors"
	"fmt"
)

// ErrInvalidCycleConfig is returned when a custom cycle is missing its
// duration or unit. Earlier versions of the app silently returned the input
// date in that case, which combined with a drained balance into a renewal
// loop that never advanced; failing loudly lets save-time validation block
// the record and lets the renewal engine skip it.
var ErrInvalidCycleConfig = errors.New("custom cycle requires a positive duration and a valid unit")

// Validate reports whether the cycle is a well-formed configuration.
func (c Cycle) Validate() error {
	switch c.Kind {
	case CycleMonthly, CycleQuarterly, CycleYearly:
		return nil
	case CycleCustom:
		if c.Every < 1 {
			return ErrInvalidCycleConfig
		}
		switch c.Unit {
		case UnitDay, UnitWeek, UnitMonth, UnitYear:
			return nil
		}
		return ErrInvalidCycleConfig
	}
	return fmt.Errorf("unknown billing cycle %q", string(c.Kind))
}

// Advance returns the next billing date one cycle after d. It is a pure
// function: no clock reads, same input always yields the same output.
// Month-based cycles clamp the day-of-month per Date.AddMonths.
func Advance(d Date, c Cycle) (Date, error) {
	switch c.Kind {
	case CycleMonthly:
		return d.AddMonths(1), nil
	case CycleQuarterly:
		return d.AddMonths(3), nil
	case CycleYearly:
		return d.AddYears(1), nil
	case CycleCustom:
		if err := c.Validate(); err != nil {
			return Date{}, err
		}
		switch c.Unit {
		case UnitDay:
			return d.AddDays(c.Every), nil
		case UnitWeek:
			return d.AddDays(7 * c.Every), nil
		case UnitMonth:
			return d.AddMonths(c.Every), nil
		default: // UnitYear, everything else rejected by Validate
			return d.AddYears(c.Every), nil
		}
	}
	return Date{}, fmt.Errorf("unknown billing cycle %q", string(c.Kind))
}
