package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
var NowUTC = func() time.Time {
	return time.Now().UTC()
}

// SinceMillis reports the elapsed wall time since start in milliseconds.
func SinceMillis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
