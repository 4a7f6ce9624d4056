package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	require.Equal(t, "512 B", FormatSize(512))
	require.Equal(t, "1.50 KiB", FormatSize(1536))
	require.Equal(t, "1.00 MiB", FormatSize(1024*1024))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "500ns", FormatDuration(500*time.Nanosecond))
	require.Equal(t, "2.50ms", FormatDuration(2500*time.Microsecond))
	require.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
}
