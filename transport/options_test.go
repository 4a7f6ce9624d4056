package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	require.True(t, o.NoDelay)
	require.Equal(t, 8*1024, o.ReceiveBufferSize)
	require.NotNil(t, o.Logger)
}

func TestApplyFoldsOptionsInOrder(t *testing.T) {
	o := Apply(DefaultOptions(),
		WithSendBufferLimit(1024),
		WithKeepAlive(true),
		WithReceiveTimeout(5*time.Second),
	)
	require.Equal(t, 1024, o.SendBufferLimit)
	require.True(t, o.KeepAlive)
	require.Equal(t, 5*time.Second, o.ReceiveTimeout)
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	base := DefaultOptions()
	o := Apply(base, WithLogger(nil))
	require.Equal(t, base.Logger, o.Logger)
}
