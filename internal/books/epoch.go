package books

import (
	"math"
	"time"
)

// AppleEpochOffset is the number of Unix seconds at 2001-01-01T00:00:00Z,
// the reference date the annotation stores count from.
const AppleEpochOffset int64 = 978307200

// TimeFromAppleSeconds converts a store timestamp (seconds since 2001-01-01)
// to a time.Time. Zero and negative-beyond-epoch inputs are treated as
// absent and return the zero time, matching rows that never carried a date.
func TimeFromAppleSeconds(seconds float64) time.Time {
	if seconds == 0 || math.IsNaN(seconds) {
		return time.Time{}
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(AppleEpochOffset+int64(whole), int64(frac*float64(time.Second))).UTC()
}

// AppleSecondsFromTime converts a time.Time back to store seconds. The zero
// time maps to 0. Integer second values round-trip exactly through
// TimeFromAppleSeconds.
func AppleSecondsFromTime(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix()-AppleEpochOffset) + float64(t.Nanosecond())/float64(time.Second)
}
