package sqlite

import "time"

// nowMillis is the single place repositories reach for wall-clock time
// when a caller-supplied timestamp isn't available, e.g. Cancel, rather
// than threading a clock through every call.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
