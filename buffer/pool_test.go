package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolGetReturnsRequestedCapacity(t *testing.T) {
	p := NewPool()
	b := p.Get(100)
	require.GreaterOrEqual(t, cap(b.Data()), 100)
}

func TestPoolPutReusesSizeClass(t *testing.T) {
	p := NewPool()
	b := p.Get(2000)
	class := classFor(cap(b.Data()))
	p.Put(b)

	b2 := p.Get(2000)
	require.Equal(t, class, classFor(cap(b2.Data())))
	require.Equal(t, 0, b2.Size(), "pooled buffer must come back reset")
}

func TestPoolPutNilIsNoop(t *testing.T) {
	p := NewPool()
	require.NotPanics(t, func() { p.Put(nil) })
}

func TestClassForUpperBound(t *testing.T) {
	require.Equal(t, 2*1024, classFor(100))
	require.Equal(t, 4*1024, classFor(3000))
	require.Equal(t, 300000, classFor(300000), "beyond largest class falls back to requested size")
}
