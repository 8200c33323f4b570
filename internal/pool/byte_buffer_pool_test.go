package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb.B)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.B = append(bb.B, "CU1.Flow"...)
	require.Equal(t, []byte("CU1.Flow"), bb.Bytes())

	capBefore := cap(bb.B)
	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, capBefore, cap(bb.B))
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("SufficientCapacity", func(t *testing.T) {
		bb := NewByteBuffer(SnapshotBufferDefaultSize)
		bb.Grow(100)
		require.Equal(t, SnapshotBufferDefaultSize, cap(bb.B))
	})

	t.Run("SmallBuffer", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.B = append(bb.B, make([]byte, 16)...)
		bb.Grow(1)
		require.GreaterOrEqual(t, cap(bb.B), 16+SnapshotBufferDefaultSize)
		require.Equal(t, 16, bb.Len())
	})

	t.Run("LargeBuffer", func(t *testing.T) {
		size := 8 * SnapshotBufferDefaultSize
		bb := NewByteBuffer(size)
		bb.B = append(bb.B, make([]byte, size)...)
		bb.Grow(1)
		require.GreaterOrEqual(t, cap(bb.B), size+size/4)
	})

	t.Run("HugeRequest", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.Grow(SnapshotBufferDefaultSize * 10)
		require.GreaterOrEqual(t, cap(bb.B), SnapshotBufferDefaultSize*10)
	})

	t.Run("PreservesData", func(t *testing.T) {
		bb := NewByteBuffer(4)
		bb.B = append(bb.B, "abcd"...)
		bb.Grow(SnapshotBufferDefaultSize * 2)
		require.Equal(t, []byte("abcd"), bb.Bytes())
	})
}

func TestSnapshotPool(t *testing.T) {
	bb := GetSnapshotBuffer()
	require.NotNil(t, bb)
	require.GreaterOrEqual(t, cap(bb.B), SnapshotBufferDefaultSize)

	bb.B = append(bb.B, "data"...)
	PutSnapshotBuffer(bb)
	require.Equal(t, 0, bb.Len(), "Put should reset the buffer")

	require.NotPanics(t, func() { PutSnapshotBuffer(nil) })
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	big := NewByteBuffer(128)
	big.B = append(big.B, "kept"...)
	p.Put(big)
	require.Equal(t, 4, big.Len(), "oversized buffers are dropped without reset")

	small := p.Get()
	small.B = append(small.B, "x"...)
	p.Put(small)
	require.Equal(t, 0, small.Len())

	unbounded := NewByteBufferPool(16, 0)
	huge := NewByteBuffer(1 << 20)
	huge.B = append(huge.B, "x"...)
	unbounded.Put(huge)
	require.Equal(t, 0, huge.Len())
}

func TestSnapshotPool_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(id byte) {
			defer wg.Done()
			for range 100 {
				bb := GetSnapshotBuffer()
				bb.B = append(bb.B, []byte{id}...)
				if bb.Len() != 1 || bb.B[0] != id {
					t.Errorf("unexpected buffer contents %v", bb.B)
				}
				PutSnapshotBuffer(bb)
			}
		}(byte(i))
	}
	wg.Wait()
}
