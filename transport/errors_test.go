package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrKindConnectionReset, cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connectionReset")
	require.Contains(t, err.Error(), "boom")
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError(ErrKindTimedOut, nil)
	require.Equal(t, "timedOut", err.Error())
	require.Nil(t, err.Unwrap())
}

func TestErrorKindStringUnknown(t *testing.T) {
	var k ErrorKind = 999
	require.Equal(t, "unknown", k.String())
}
