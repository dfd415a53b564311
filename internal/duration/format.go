package duration

import (
	"strconv"
	"time"
)

// promoteAbove is the largest value kept in a unit before moving to the
// next coarser one.
const promoteAbove = 120

// Format renders d using FormatNanos.
func Format(d time.Duration) string {
	return FormatNanos(int64(d))
}

// FormatNanos renders a nanosecond count.
func FormatNanos(nanos int64) string {
	return fromSeconds(floorDiv(nanos, int64(time.Second)))
}

// FormatMillis renders a millisecond count.
func FormatMillis(millis int64) string {
	return fromSeconds(floorDiv(millis, 1000))
}

func fromSeconds(secs int64) string {
	if secs > promoteAbove {
		return FormatSeconds(secs)
	}
	return strconv.FormatInt(secs, 10) + "s"
}

// FormatSeconds renders a second count in minutes, or hours past 120 minutes.
func FormatSeconds(secs int64) string {
	mins := floorDiv(secs, 60)
	if mins > promoteAbove {
		return FormatMinutes(mins)
	}
	return strconv.FormatInt(mins, 10) + "m"
}

// FormatMinutes renders a minute count in whole hours.
func FormatMinutes(mins int64) string {
	return strconv.FormatInt(floorDiv(mins, 60), 10) + "h"
}

// floorDiv is a/b rounded toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
