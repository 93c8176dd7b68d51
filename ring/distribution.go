package ring

import (
	"bufio"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/Pro7ech/minihe/utils/buffer"
)

const (
	discreteGaussianType = 0
	binaryType           = 1
	uniformType          = 2
	discreteGaussianName = "DiscreteGaussian"
	binaryDistName       = "Binary"
	uniformDistName      = "Uniform"
)

const (
	// DefaultSigma is the default standard deviation of the error distribution.
	DefaultSigma = 2.0
	// DefaultBound is the default bound of the error distribution.
	DefaultBound = 6 * DefaultSigma
)

// DistributionParameters is an interface for distribution
// parameters in the ring.
// There are three implementation of this interface:
//   - DiscreteGaussian for sampling polynomials with discretized
//     gaussian coefficient of given standard deviation and bound.
//   - Binary for sampling polynomials with coefficients in {0, 1}.
//   - Uniform for sampling polynomial with uniformly random
//     coefficients in the ring.
type DistributionParameters interface {
	Equal(DistributionParameters) bool
	mustBeDist()
	BinarySize() int
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	json.Marshaler
	io.WriterTo
	io.ReaderFrom
}

// DiscreteGaussian represents the parameters of a
// discrete Gaussian distribution with standard
// deviation Sigma and bounds [-Bound, Bound].
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// Binary represents the parameters of a distribution with
// coefficients uniformly distributed in {0, 1}.
type Binary struct{}

// Uniform represents the parameters of a uniform distribution
// i.e., with coefficients uniformly distributed in the given ring.
type Uniform struct{}

// Validate returns an error if d cannot be sampled by rejection:
// Sigma and Bound must be non-negative and Bound must be at least
// Sigma when Sigma is non-zero.
func (d DiscreteGaussian) Validate() (err error) {
	switch {
	case !(d.Sigma >= 0) || !(d.Bound >= 0):
		return fmt.Errorf("invalid DiscreteGaussian: Sigma=%v and Bound=%v must be non-negative", d.Sigma, d.Bound)
	case math.IsInf(d.Sigma, 0):
		return fmt.Errorf("invalid DiscreteGaussian: Sigma=%v must be finite", d.Sigma)
	case d.Sigma > 0 && d.Bound < d.Sigma:
		return fmt.Errorf("invalid DiscreteGaussian: Bound=%v < Sigma=%v", d.Bound, d.Sigma)
	}
	return
}

func (d DiscreteGaussian) Equal(other DistributionParameters) bool {
	switch other := other.(type) {
	case *DiscreteGaussian:
		return d.Sigma == other.Sigma && d.Bound == other.Bound
	default:
		return false
	}
}

func (d DiscreteGaussian) BinarySize() int {
	return 17
}

func (d DiscreteGaussian) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64

		if inc, err = buffer.WriteUint8(w, discreteGaussianType); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, d.Sigma); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, d.Bound); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()
	default:
		return d.WriteTo(bufio.NewWriter(w))
	}
}

func (d *DiscreteGaussian) ReadFrom(r io.Reader) (n int64, err error) {
	var dist DistributionParameters
	if dist, n, err = DistributionParametersFromReader(r); err != nil {
		return
	}

	dg, ok := dist.(*DiscreteGaussian)
	if !ok {
		return n, fmt.Errorf("invalid distribution: expected %T but got %T", d, dist)
	}

	*d = *dg
	return
}

func (d DiscreteGaussian) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(d.BinarySize())
	_, err = d.WriteTo(buf)
	return buf.Bytes(), err
}

func (d *DiscreteGaussian) UnmarshalBinary(p []byte) (err error) {
	_, err = d.ReadFrom(buffer.NewBuffer(p))
	return
}

func (d DiscreteGaussian) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"Type":  discreteGaussianName,
		"Sigma": d.Sigma,
		"Bound": d.Bound,
	})
}

func (d DiscreteGaussian) mustBeDist() {}

func (d Binary) Equal(other DistributionParameters) bool {
	_, ok := other.(*Binary)
	return ok
}

func (d Binary) BinarySize() int {
	return 1
}

func (d Binary) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		if n, err = buffer.WriteUint8(w, binaryType); err != nil {
			return
		}
		return n, w.Flush()
	default:
		return d.WriteTo(bufio.NewWriter(w))
	}
}

func (d *Binary) ReadFrom(r io.Reader) (n int64, err error) {
	var dist DistributionParameters
	if dist, n, err = DistributionParametersFromReader(r); err != nil {
		return
	}

	if _, ok := dist.(*Binary); !ok {
		return n, fmt.Errorf("invalid distribution: expected %T but got %T", d, dist)
	}

	return
}

func (d Binary) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(d.BinarySize())
	_, err = d.WriteTo(buf)
	return buf.Bytes(), err
}

func (d *Binary) UnmarshalBinary(p []byte) (err error) {
	_, err = d.ReadFrom(buffer.NewBuffer(p))
	return
}

func (d Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"Type": binaryDistName})
}

func (d Binary) mustBeDist() {}

func (d Uniform) Equal(other DistributionParameters) bool {
	_, ok := other.(*Uniform)
	return ok
}

func (d Uniform) BinarySize() int {
	return 1
}

func (d Uniform) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		if n, err = buffer.WriteUint8(w, uniformType); err != nil {
			return
		}
		return n, w.Flush()
	default:
		return d.WriteTo(bufio.NewWriter(w))
	}
}

func (d *Uniform) ReadFrom(r io.Reader) (n int64, err error) {
	var dist DistributionParameters
	if dist, n, err = DistributionParametersFromReader(r); err != nil {
		return
	}

	if _, ok := dist.(*Uniform); !ok {
		return n, fmt.Errorf("invalid distribution: expected %T but got %T", d, dist)
	}

	return
}

func (d Uniform) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(d.BinarySize())
	_, err = d.WriteTo(buf)
	return buf.Bytes(), err
}

func (d *Uniform) UnmarshalBinary(p []byte) (err error) {
	_, err = d.ReadFrom(buffer.NewBuffer(p))
	return
}

func (d Uniform) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"Type": uniformDistName})
}

func (d Uniform) mustBeDist() {}

// DistributionParametersFromReader reads a [DistributionParameters]
// written with WriteTo from r.
func DistributionParametersFromReader(r io.Reader) (distribution DistributionParameters, n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64

		var Type uint8

		if inc, err = buffer.ReadUint8(r, &Type); err != nil {
			return nil, n + inc, err
		}

		n += inc

		switch Type {
		case discreteGaussianType:

			d := DiscreteGaussian{}

			if inc, err = buffer.ReadAsUint64(r, &d.Sigma); err != nil {
				return nil, n + inc, err
			}

			n += inc

			if inc, err = buffer.ReadAsUint64(r, &d.Bound); err != nil {
				return nil, n + inc, err
			}

			n += inc

			return &d, n, nil

		case binaryType:
			return &Binary{}, n, nil
		case uniformType:
			return &Uniform{}, n, nil
		default:
			return nil, n, fmt.Errorf("invalid distribution Type: expected 0, 1, 2 but got %d", Type)
		}
	default:
		return DistributionParametersFromReader(bufio.NewReader(r))
	}
}

func getFloatFromMap(distDef map[string]interface{}, key string) (float64, error) {
	val, hasVal := distDef[key]
	if !hasVal {
		return 0, fmt.Errorf("map specifies no value for %s", key)
	}
	f, isFloat := val.(float64)
	if !isFloat {
		return 0, fmt.Errorf("value for key %s in map should be of type float", key)
	}
	return f, nil
}

// DistributionParametersFromMap instantiates a [DistributionParameters]
// from its JSON map representation, e.g.
// {"Type":"DiscreteGaussian","Sigma":2,"Bound":12}.
func DistributionParametersFromMap(distDef map[string]interface{}) (DistributionParameters, error) {
	distTypeVal, specified := distDef["Type"]
	if !specified {
		return nil, fmt.Errorf("map specifies no distribution type")
	}
	distTypeStr, isString := distTypeVal.(string)
	if !isString {
		return nil, fmt.Errorf("value for key Type of map should be of type string")
	}
	switch distTypeStr {
	case uniformDistName:
		return &Uniform{}, nil
	case binaryDistName:
		return &Binary{}, nil
	case discreteGaussianName:
		sigma, errSigma := getFloatFromMap(distDef, "Sigma")
		if errSigma != nil {
			return nil, errSigma
		}
		bound, errBound := getFloatFromMap(distDef, "Bound")
		if errBound != nil {
			return nil, errBound
		}
		return &DiscreteGaussian{Sigma: sigma, Bound: bound}, nil
	default:
		return nil, fmt.Errorf("distribution type %s does not exist", distTypeStr)
	}
}
