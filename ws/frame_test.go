package ws

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFrameUnmasked(t *testing.T) {
	wire, err := EncodeFrame(Frame{Fin: true, Opcode: OpText, Payload: []byte("hello")}, false)
	require.NoError(t, err)

	f, err := ReadFrame(bytes.NewReader(wire))
	require.NoError(t, err)
	require.True(t, f.Fin)
	require.Equal(t, OpText, f.Opcode)
	require.Equal(t, "hello", string(f.Payload))
	require.False(t, f.Masked)
}

func TestEncodeFrameMaskedUsesFreshKeyPerFrame(t *testing.T) {
	wire1, err := EncodeFrame(Frame{Fin: true, Opcode: OpBinary, Payload: []byte("same-payload")}, true)
	require.NoError(t, err)
	wire2, err := EncodeFrame(Frame{Fin: true, Opcode: OpBinary, Payload: []byte("same-payload")}, true)
	require.NoError(t, err)
	require.NotEqual(t, wire1, wire2, "masked frames with identical payloads must differ: mask key is per-frame random")

	f, err := ReadFrame(bytes.NewReader(wire1))
	require.NoError(t, err)
	require.True(t, f.Masked)
	require.Equal(t, "same-payload", string(f.Payload))
}

func TestEncodeFrameExtendedLength64Bit(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 70000)
	wire, err := EncodeFrame(Frame{Fin: true, Opcode: OpBinary, Payload: payload}, false)
	require.NoError(t, err)
	f, err := ReadFrame(bytes.NewReader(wire))
	require.NoError(t, err)
	require.Equal(t, payload, f.Payload)
}

func TestFrameParserFeedAcrossPartialReads(t *testing.T) {
	wire, err := EncodeFrame(Frame{Fin: true, Opcode: OpText, Payload: []byte("split-me")}, false)
	require.NoError(t, err)

	var p FrameParser
	frames, err := p.Feed(wire[:3])
	require.NoError(t, err)
	require.Empty(t, frames)

	frames, err = p.Feed(wire[3:])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, "split-me", string(frames[0].Payload))
}

func TestFrameParserFeedMultipleFramesAtOnce(t *testing.T) {
	f1, _ := EncodeFrame(Frame{Fin: true, Opcode: OpText, Payload: []byte("a")}, false)
	f2, _ := EncodeFrame(Frame{Fin: true, Opcode: OpText, Payload: []byte("b")}, false)

	var p FrameParser
	frames, err := p.Feed(append(f1, f2...))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, "a", string(frames[0].Payload))
	require.Equal(t, "b", string(frames[1].Payload))
}

func TestReadFrameRejectsReservedBits(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x70, 0x00}))
	require.Error(t, err)
}
