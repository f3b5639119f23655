package utils

import (
	"fmt"
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------

// ExchangeZone returns the fixed exchange offset. The host timezone is never
// used: deployments run in arbitrary zones and the session windows are
// defined in exchange-local time.
func ExchangeZone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// -----------------------------------------------------------------------------

// IsTradingTime reports whether t falls inside a continuous trading window
// (09:30-11:30 or 13:00-15:00 exchange-local, endpoints inclusive) on a
// weekday. Holidays are handled separately by TradingCalendar.
func IsTradingTime(t time.Time, offsetHours int) bool {
	local := t.In(ExchangeZone(offsetHours))

	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}

	hhmm := local.Hour()*100 + local.Minute()
	return (hhmm >= 930 && hhmm <= 1130) || (hhmm >= 1300 && hhmm <= 1500)
}

// -----------------------------------------------------------------------------

// TradingCalendar supplements the pure session gate with an exchange holiday
// check, falling back to the weekday rule when no calendar is available.
type TradingCalendar struct {
	Calendar    *calendar.Calendar
	Fallback    bool
	OffsetHours int
}

// -----------------------------------------------------------------------------

func NewTradingCalendar(offsetHours int) *TradingCalendar {
	// XSHG (ISO 10383 MIC) covers the Shanghai exchange holiday schedule;
	// Shenzhen shares it.
	cal := calendar.GetCalendar("xshg")
	if cal == nil {
		return &TradingCalendar{Fallback: true, OffsetHours: offsetHours}
	}
	return &TradingCalendar{Calendar: cal, OffsetHours: offsetHours}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether date is a business day on the exchange.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Fallback {
		wd := date.In(ExchangeZone(tc.OffsetHours)).Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date.In(tc.Calendar.Loc))
}
