package commons

import (
	"time"
	_ "time/tzdata" // Asia/Seoul on hosts without zoneinfo
)

// AsiaSeoul is the timezone of the Korean stock market.
var AsiaSeoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Now returns the current time in Asia/Seoul.
func Now() time.Time {
	return time.Now().In(AsiaSeoul)
}

// Unix returns the time of the timestamp in Asia/Seoul.
func Unix(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).In(AsiaSeoul)
}

// Day truncates t to 00:00 of its day in Asia/Seoul.
func Day(t time.Time) time.Time {
	y, m, d := t.In(AsiaSeoul).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, AsiaSeoul)
}
