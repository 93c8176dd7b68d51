package rlwe

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils/buffer"
	"github.com/Pro7ech/minihe/utils/sampling"
	"github.com/Pro7ech/minihe/utils/structs"
)

// Ciphertext is a pair of polynomials (c0, c1) of Z_Q[X]/(PolyMod)
// such that c0 + c1*sk = Delta*m + e for a plaintext m and a small noise e.
type Ciphertext struct {
	*MetaData
	Value structs.Vector[ring.Poly]
}

// NewCiphertext returns a new [rlwe.Ciphertext] with zero values.
func NewCiphertext(params ParameterProvider) (ct *Ciphertext) {
	rQ := params.GetRLWEParameters().RingQ()
	return &Ciphertext{
		MetaData: &MetaData{},
		Value:    structs.Vector[ring.Poly]{rQ.NewPoly(), rQ.NewPoly()},
	}
}

// N returns the ring degree of the ciphertext.
func (ct Ciphertext) N() int {
	if len(ct.Value) == 0 {
		return 0
	}
	return ct.Value[0].N()
}

// Degree returns the degree of the receiver, i.e. len(Value)-1.
func (ct Ciphertext) Degree() int {
	return len(ct.Value) - 1
}

// Clone returns a deep copy of the receiver.
func (ct *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{MetaData: ct.MetaData.Clone(), Value: ct.Value.Clone()}
}

// Copy copies the input element and its metadata on the receiver.
func (ct *Ciphertext) Copy(other *Ciphertext) {

	if ct == other {
		return
	}

	for i := range ct.Value {
		ct.Value[i].Copy(other.Value[i])
	}

	if other.MetaData != nil {
		if ct.MetaData == nil {
			ct.MetaData = &MetaData{}
		}
		*ct.MetaData = *other.MetaData
	} else {
		ct.MetaData = nil
	}
}

// Equal performs a deep equal.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.Value.Equal(other.Value) && ct.MetaData.Equal(other.MetaData)
}

// Randomize populates the receiver with uniform random coefficients in [0, Q).
func (ct *Ciphertext) Randomize(params ParameterProvider, source *sampling.Source) {
	sampler := ring.NewUniformSampler(source, params.GetRLWEParameters().Q())
	for i := range ct.Value {
		sampler.Read(ct.Value[i])
	}
}

// BinarySize returns the serialized size of the object in bytes.
func (ct Ciphertext) BinarySize() (size int) {
	size++
	if ct.MetaData != nil {
		size += ct.MetaData.BinarySize()
	}
	return size + ct.Value.BinarySize()
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w (see utils/buffer/buffer.go).
func (ct Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if ct.MetaData != nil {

			if inc, err = buffer.WriteUint8(w, 1); err != nil {
				return n + inc, err
			}

			n += inc

			if inc, err = ct.MetaData.WriteTo(w); err != nil {
				return n + inc, err
			}

			n += inc

		} else {
			if inc, err = buffer.WriteUint8(w, 0); err != nil {
				return n + inc, err
			}

			n += inc
		}

		if inc, err = ct.Value.WriteTo(w); err != nil {
			return n + inc, err
		}

		return n + inc, err
	default:
		return ct.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var hasMetaData uint8

		if inc, err = buffer.ReadUint8(r, &hasMetaData); err != nil {
			return n + inc, err
		}

		n += inc

		if hasMetaData == 1 {

			if ct.MetaData == nil {
				ct.MetaData = &MetaData{}
			}

			if inc, err = ct.MetaData.ReadFrom(r); err != nil {
				return n + inc, err
			}

			n += inc
		} else {
			ct.MetaData = nil
		}

		if inc, err = ct.Value.ReadFrom(r); err != nil {
			return n + inc, err
		}

		return n + inc, err

	default:
		return ct.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ct Ciphertext) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {
	_, err = ct.ReadFrom(buffer.NewBuffer(p))
	return
}

// checkShape returns an error wrapping [ErrInvalidParameters]
// if the ciphertext does not match the parameters.
func (ct *Ciphertext) checkShape(params Parameters) (err error) {
	if ct == nil {
		return fmt.Errorf("ciphertext is nil: %w", ErrInvalidParameters)
	}
	return checkPolys("ciphertext", params, ct.Value)
}
