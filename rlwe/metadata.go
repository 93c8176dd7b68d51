package rlwe

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/Pro7ech/minihe/utils/buffer"
)

// MetaData is a struct storing diagnostic metadata of a ciphertext.
// It plays no role in decryption.
type MetaData struct {
	// NoiseVariance is an analytic estimate of the variance of each
	// coefficient of the ciphertext noise, i.e. of c0 + c1*sk - Delta*m.
	// It is set at encryption and updated by the [rlwe.Evaluator].
	NoiseVariance float64
}

// Clone returns a copy of the target.
func (m *MetaData) Clone() *MetaData {
	if m == nil {
		return nil
	}
	mClone := *m
	return &mClone
}

// Equal returns true if the receiver and other carry the same metadata.
func (m *MetaData) Equal(other *MetaData) (res bool) {

	if m == nil && other == nil {
		return true
	}

	if (m != nil && other == nil) || (m == nil && other != nil) {
		return false
	}

	return m.NoiseVariance == other.NoiseVariance
}

// NoiseStd returns the estimated standard deviation of the noise.
func (m MetaData) NoiseStd() float64 {
	return math.Sqrt(m.NoiseVariance)
}

// LogNoise returns the log2 of the estimated standard deviation of the noise.
func (m MetaData) LogNoise() float64 {
	return math.Log2(m.NoiseStd())
}

// BinarySize returns the size in bytes that the object once marshalled into a binary form.
func (m MetaData) BinarySize() int {
	return 8
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
func (m MetaData) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if n, err = buffer.WriteAsUint64(w, m.NoiseVariance); err != nil {
			return n, fmt.Errorf("buffer.WriteAsUint64[float64]: %w", err)
		}

		return n, w.Flush()

	default:
		return m.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
func (m *MetaData) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		if n, err = buffer.ReadAsUint64(r, &m.NoiseVariance); err != nil {
			return n, fmt.Errorf("buffer.ReadAsUint64[float64]: %w", err)
		}

		return

	default:
		return m.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (m MetaData) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(m.BinarySize())
	_, err = m.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (m *MetaData) UnmarshalBinary(p []byte) (err error) {
	_, err = m.ReadFrom(buffer.NewBuffer(p))
	return
}
