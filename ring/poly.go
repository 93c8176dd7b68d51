package ring

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/Pro7ech/minihe/utils/buffer"
)

// Poly is the structure that contains the coefficients of a polynomial,
// ordered by increasing degree.
type Poly []uint64

// NewPoly creates a new zero polynomial with N coefficients.
func NewPoly(N int) Poly {
	return make([]uint64, N)
}

// N returns the number of coefficients of the polynomial.
func (p Poly) N() int {
	return len(p)
}

// Zero sets all coefficients of the target polynomial to 0.
func (p Poly) Zero() {
	clear(p)
}

// Clone returns a deep copy of the polynomial.
func (p Poly) Clone() *Poly {
	pcpy := Poly(slices.Clone([]uint64(p)))
	return &pcpy
}

// Copy copies the coefficients of other on the receiver,
// up to the minimum size between the two.
func (p Poly) Copy(other Poly) {
	copy(p, other)
}

// Equal returns true if the receiver and other have the same coefficients.
func (p Poly) Equal(other *Poly) bool {
	return other != nil && slices.Equal(p, *other)
}

// BinarySize returns the serialized size of the object in bytes.
func (p Poly) BinarySize() int {
	return 8 + 8*len(p)
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/buffer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w (see utils/buffer/buffer.go).
func (p Poly) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteAsUint64[int](w, len(p)); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64Slice(w, p); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/buffer.go),
// it will be wrapped into a bufio.Reader.
func (p *Poly) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var N int
		if inc, err = buffer.ReadAsUint64[int](r, &N); err != nil {
			return n + inc, err
		}

		n += inc

		if N < 0 {
			return n, fmt.Errorf("invalid polynomial size: %d", N)
		}

		if cap(*p) < N {
			*p = make([]uint64, N)
		}

		*p = (*p)[:N]

		if inc, err = buffer.ReadUint64Slice(r, *p); err != nil {
			return n + inc, err
		}

		n += inc

		return

	default:
		return p.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (p Poly) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err = p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (p *Poly) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}
