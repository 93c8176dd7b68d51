package buffer

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type binarySerializer interface {
	BinarySize() int
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// RequireSerializerCorrect checks that:
//   - input and output implement binarySerializer
//   - input.WriteTo(io.Writer) writes a number of bytes on the writer equal to input.BinarySize
//   - output.ReadFrom(io.Reader) reads a number of bytes on the reader equal to input.BinarySize
//   - input.WriteTo written bytes are equal to the bytes produced by input.MarshalBinary
//   - all the above WriteTo, ReadFrom, MarshalBinary and UnmarshalBinary do not return an error
//   - output is equal to input after ReadFrom and after UnmarshalBinary
func RequireSerializerCorrect(t *testing.T, input binarySerializer) {

	data := make([]byte, 0, input.BinarySize())

	buf := bytes.NewBuffer(data)

	// Check io.WriterTo
	bytesWritten, err := input.WriteTo(buf)
	require.NoError(t, err)
	require.Equal(t, int64(input.BinarySize()), bytesWritten)

	// Check encoding.BinaryMarshaler
	data2, err := input.MarshalBinary()
	require.NoError(t, err)
	require.True(t, bytes.Equal(buf.Bytes(), data2))

	output := newOf(input)

	// Check io.ReaderFrom
	bytesRead, err := output.ReadFrom(NewBuffer(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, int64(input.BinarySize()), bytesRead)
	require.Equal(t, input, output)

	output = newOf(input)

	// Check encoding.BinaryUnmarshaler
	require.NoError(t, output.UnmarshalBinary(data2))
	require.Equal(t, input, output)
}

// newOf allocates a new zero value of the concrete type behind input.
func newOf(input binarySerializer) binarySerializer {
	return reflect.New(reflect.TypeOf(input).Elem()).Interface().(binarySerializer)
}
