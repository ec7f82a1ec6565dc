package commons

import (
	"testing"
	"time"
)

func TestTime(t *testing.T) {
	tt := Now()
	if tt.Location() != AsiaSeoul {
		t.Fatalf("Now must be in Asia/Seoul, got %v", tt.Location())
	}

	utc := time.Date(2021, 12, 30, 20, 0, 0, 0, time.UTC)
	day := Day(utc)
	if day.Day() != 31 || day.Hour() != 0 {
		t.Errorf("20:00 UTC is already the next day in Seoul, got %v", day)
	}
	if !Unix(day.Unix()).Equal(day) {
		t.Errorf("Unix round trip failed: %v", Unix(day.Unix()))
	}
}
