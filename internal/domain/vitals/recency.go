package vitals

import (
	"fmt"
	"time"
)

type recencyBucket struct {
	seconds float64
	name    string
}

// Buckets in descending order; the first whose floored count exceeds 1 wins.
var recencyBuckets = []recencyBucket{
	{31536000, "year"},
	{2592000, "month"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
}

// TimeSince renders the elapsed time between past and now as a relative
// string like "3 hours ago". The count is floored before the >1 comparison,
// so a bucket only claims the elapsed time once two full units have passed;
// anything under two minutes old falls through to "Just now".
func TimeSince(past, now time.Time) string {
	elapsed := now.Sub(past).Seconds()
	for _, b := range recencyBuckets {
		if n := int(elapsed / b.seconds); n > 1 {
			return fmt.Sprintf("%d %ss ago", n, b.name)
		}
	}
	return "Just now"
}

// TimeSinceNow evaluates TimeSince against the wall clock.
func TimeSinceNow(past time.Time) string {
	return TimeSince(past, time.Now())
}
