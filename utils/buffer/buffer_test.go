package buffer

import (
	"bufio"
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {

	t.Run("WriteRead/Uint64Slice", func(t *testing.T) {
		values := []uint64{0, 1, 32767, math.MaxUint64}

		buf := NewBufferSize(len(values) << 3)

		n, err := WriteUint64Slice(buf, values)
		require.NoError(t, err)
		require.Equal(t, int64(len(values)<<3), n)

		have := make([]uint64, len(values))
		n, err = ReadUint64Slice(buf, have)
		require.NoError(t, err)
		require.Equal(t, int64(len(values)<<3), n)
		require.Equal(t, values, have)
	})

	t.Run("WriteRead/AsUint64/Float64", func(t *testing.T) {
		buf := NewBufferSize(8)
		_, err := WriteAsUint64(buf, 3.2)
		require.NoError(t, err)

		var f float64
		_, err = ReadAsUint64(buf, &f)
		require.NoError(t, err)
		require.Equal(t, 3.2, f)
	})

	t.Run("WriteRead/AsUint8/Bool", func(t *testing.T) {
		buf := NewBufferSize(1)
		_, err := WriteAsUint8(buf, true)
		require.NoError(t, err)

		var b bool
		_, err = ReadAsUint8(buf, &b)
		require.NoError(t, err)
		require.True(t, b)
	})

	t.Run("Write/TooSmall", func(t *testing.T) {
		buf := NewBufferSize(4)
		_, err := WriteUint64(buf, 1)
		require.Error(t, err)
	})

	t.Run("Read/EOF", func(t *testing.T) {
		var c uint64
		_, err := ReadUint64(NewBuffer([]byte{1, 2}), &c)
		require.Error(t, err)
	})

	t.Run("Bufio", func(t *testing.T) {
		var b bytes.Buffer
		w := bufio.NewWriter(&b)
		_, err := WriteUint64(w, 42)
		require.NoError(t, err)
		require.NoError(t, w.Flush())

		var c uint64
		_, err = ReadUint64(bufio.NewReader(&b), &c)
		require.NoError(t, err)
		require.Equal(t, uint64(42), c)
	})
}
