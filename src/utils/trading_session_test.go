package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const shanghaiOffset = 8

// 2024-01-03 is a Wednesday, 2024-01-06 a Saturday, 2024-01-07 a Sunday.

func TestIsTradingTimeWeekdayWindows(t *testing.T) {
	zone := ExchangeZone(shanghaiOffset)

	at := func(hour, min int) time.Time {
		return time.Date(2024, 1, 3, hour, min, 0, 0, zone)
	}

	assert.True(t, IsTradingTime(at(10, 0), shanghaiOffset))
	assert.True(t, IsTradingTime(at(14, 0), shanghaiOffset))

	// Endpoints are inclusive on both sides of both windows.
	assert.True(t, IsTradingTime(at(9, 30), shanghaiOffset))
	assert.True(t, IsTradingTime(at(11, 30), shanghaiOffset))
	assert.True(t, IsTradingTime(at(13, 0), shanghaiOffset))
	assert.True(t, IsTradingTime(at(15, 0), shanghaiOffset))

	assert.False(t, IsTradingTime(at(9, 29), shanghaiOffset))
	assert.False(t, IsTradingTime(at(11, 31), shanghaiOffset))
	assert.False(t, IsTradingTime(at(12, 0), shanghaiOffset), "lunch break")
	assert.False(t, IsTradingTime(at(15, 1), shanghaiOffset))
	assert.False(t, IsTradingTime(at(8, 0), shanghaiOffset))
	assert.False(t, IsTradingTime(at(20, 0), shanghaiOffset))
}

func TestIsTradingTimeWeekend(t *testing.T) {
	zone := ExchangeZone(shanghaiOffset)

	saturday := time.Date(2024, 1, 6, 10, 0, 0, 0, zone)
	sunday := time.Date(2024, 1, 7, 14, 0, 0, 0, zone)

	assert.False(t, IsTradingTime(saturday, shanghaiOffset))
	assert.False(t, IsTradingTime(sunday, shanghaiOffset))
}

func TestIsTradingTimeNormalizesToExchangeZone(t *testing.T) {
	// 02:00 UTC on a Wednesday is 10:00 in Shanghai: in session no matter
	// what zone the instant is expressed in.
	assert.True(t, IsTradingTime(time.Date(2024, 1, 3, 2, 0, 0, 0, time.UTC), shanghaiOffset))

	// 04:00 UTC is 12:00 Shanghai: lunch break.
	assert.False(t, IsTradingTime(time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC), shanghaiOffset))

	// Friday 23:00 UTC is Saturday 07:00 Shanghai: the weekday must come
	// from the exchange-local date, not the instant's own zone.
	assert.False(t, IsTradingTime(time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC), shanghaiOffset))
}

func TestTradingCalendarWeekdays(t *testing.T) {
	cal := NewTradingCalendar(shanghaiOffset)
	zone := ExchangeZone(shanghaiOffset)

	assert.True(t, cal.IsTradingDay(time.Date(2024, 1, 3, 10, 0, 0, 0, zone)))
	assert.False(t, cal.IsTradingDay(time.Date(2024, 1, 6, 10, 0, 0, 0, zone)))
	assert.False(t, cal.IsTradingDay(time.Date(2024, 1, 7, 10, 0, 0, 0, zone)))
}

func TestTradingCalendarFallback(t *testing.T) {
	cal := &TradingCalendar{Fallback: true, OffsetHours: shanghaiOffset}

	assert.True(t, cal.IsTradingDay(time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsTradingDay(time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)))
}
