// File: util/timefmt.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package util

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as a human-readable string with the
// coarsest unit that keeps at least one significant digit (e.g. "2.50ms").
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fus", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
