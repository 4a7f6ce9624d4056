// File: util/sizefmt.go
// Package util provides small pretty-printing helpers used by logging and
// debug probes across the library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package util

import "fmt"

var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatSize renders a byte count as a human-readable size (e.g. "1.50 MiB").
func FormatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	val := float64(bytes)
	unit := 0
	for val >= 1024 && unit < len(sizeUnits)-1 {
		val /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", val, sizeUnits[unit])
}
