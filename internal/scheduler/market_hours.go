package scheduler

import (
	"time"
)

// TradingWindow is a single exchange's regular trading session, expressed
// in its own local time zone and the weekdays it operates.
type TradingWindow struct {
	Location *time.Location
	Open     time.Duration // offset from local midnight
	Close    time.Duration
	Weekdays map[time.Weekday]bool
}

// MarketHours gates ingestion by exchange: a symbol whose home exchange
// is closed can be skipped for a cycle rather than fetched and aggregated
// against stale or absent liquidity. This is a deliberately small subset
// of exchange coverage (no holiday calendars) compared to what a
// production trading desk would carry, since a read-only price feed only
// needs a coarse "is this exchange plausibly open" signal.
type MarketHours struct {
	windows map[string]TradingWindow
}

func weekdaySet(days ...time.Weekday) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

var weekdaysMonFri = weekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

// NewDefaultMarketHours returns a MarketHours seeded with a handful of
// major exchange sessions. Exchange names are matched case-sensitively
// against the key a symbol resolver would attach.
func NewDefaultMarketHours() *MarketHours {
	mustLoc := func(name string) *time.Location {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return time.UTC
		}
		return loc
	}

	return &MarketHours{
		windows: map[string]TradingWindow{
			"NYSE": {
				Location: mustLoc("America/New_York"),
				Open:     9*time.Hour + 30*time.Minute,
				Close:    16 * time.Hour,
				Weekdays: weekdaysMonFri,
			},
			"NASDAQ": {
				Location: mustLoc("America/New_York"),
				Open:     9*time.Hour + 30*time.Minute,
				Close:    16 * time.Hour,
				Weekdays: weekdaysMonFri,
			},
			"LSE": {
				Location: mustLoc("Europe/London"),
				Open:     8 * time.Hour,
				Close:    16*time.Hour + 30*time.Minute,
				Weekdays: weekdaysMonFri,
			},
			"TSX": {
				Location: mustLoc("America/Toronto"),
				Open:     9*time.Hour + 30*time.Minute,
				Close:    16 * time.Hour,
				Weekdays: weekdaysMonFri,
			},
			"ASX": {
				Location: mustLoc("Australia/Sydney"),
				Open:     10 * time.Hour,
				Close:    16 * time.Hour,
				Weekdays: weekdaysMonFri,
			},
		},
	}
}

// IsOpen reports whether the named exchange is inside its regular
// session at the given instant. An unknown exchange name is treated as
// always open, since gating is opt-in rather than a hard requirement on
// every symbol.
func (m *MarketHours) IsOpen(exchange string, at time.Time) bool {
	window, ok := m.windows[exchange]
	if !ok {
		return true
	}

	local := at.In(window.Location)
	if !window.Weekdays[local.Weekday()] {
		return false
	}

	sinceMidnight := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second
	return sinceMidnight >= window.Open && sinceMidnight < window.Close
}
