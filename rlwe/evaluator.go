package rlwe

import (
	"fmt"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils"
)

// Evaluator is a struct that holds the necessary elements to perform
// homomorphic operations between [rlwe.Ciphertext] and plaintext values.
// It does not store any key and does not draw any randomness.
type Evaluator struct {
	params Parameters
	*EvaluatorBuffers
}

// EvaluatorBuffers is a struct storing the read and write buffers of an [rlwe.Evaluator].
type EvaluatorBuffers struct {
	BuffQ ring.Poly
	// BuffProduct stores the 2N-1 coefficients of a product
	// before its reduction by the reduction polynomial.
	BuffProduct []uint64
}

// NewEvaluatorBuffers allocates a new [rlwe.EvaluatorBuffers].
func NewEvaluatorBuffers(p Parameters) *EvaluatorBuffers {
	rQ := p.RingQ()
	return &EvaluatorBuffers{
		BuffQ:       rQ.NewPoly(),
		BuffProduct: make([]uint64, rQ.ProductBufferSize()),
	}
}

// NewEvaluator creates a new [rlwe.Evaluator].
func NewEvaluator(params ParameterProvider) (eval *Evaluator) {
	p := *params.GetRLWEParameters()
	return &Evaluator{
		params:           p,
		EvaluatorBuffers: NewEvaluatorBuffers(p),
	}
}

// GetRLWEParameters returns the underlying [rlwe.Parameters] of the receiver.
func (eval Evaluator) GetRLWEParameters() *Parameters {
	return &eval.params
}

// ShallowCopy creates a shallow copy of the receiver in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// object can be used concurrently.
func (eval Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		params:           eval.params,
		EvaluatorBuffers: NewEvaluatorBuffers(eval.params),
	}
}

// AddPlainNew adds value to ct and returns the result on a new ciphertext.
// See [Evaluator.AddPlain].
func (eval Evaluator) AddPlainNew(ct *Ciphertext, value int64) (opOut *Ciphertext, err error) {
	opOut = NewCiphertext(eval.params)
	return opOut, eval.AddPlain(ct, value, opOut)
}

// AddPlain adds value, reduced modulo T, to ct and writes the result on opOut.
// Only c0 is modified: c0 + Delta*value, c1 is copied unchanged.
// The noise of the ciphertext is left unchanged.
// ct and opOut can be the same ciphertext.
func (eval Evaluator) AddPlain(ct *Ciphertext, value int64, opOut *Ciphertext) (err error) {

	if err = eval.checkUnaryOp(ct, opOut); err != nil {
		return fmt.Errorf("cannot AddPlain: %w", err)
	}

	m := uint64(utils.FloorMod(value, int64(eval.params.T())))

	// m < T and Delta = floor(Q/T) so m*Delta < Q
	eval.params.RingQ().AddScalar(ct.Value[0], m*eval.params.Delta(), opOut.Value[0])
	opOut.Value[1].Copy(ct.Value[1])

	eval.setNoise(ct, opOut, 1)

	return
}

// AddPlaintextNew adds pt to ct and returns the result on a new ciphertext.
// See [Evaluator.AddPlaintext].
func (eval Evaluator) AddPlaintextNew(ct *Ciphertext, pt *Plaintext) (opOut *Ciphertext, err error) {
	opOut = NewCiphertext(eval.params)
	return opOut, eval.AddPlaintext(ct, pt, opOut)
}

// AddPlaintext adds the plaintext polynomial pt of Z_T[X] to ct and writes the result
// on opOut, i.e. (c0 + Delta*pt, c1).
// ct and opOut can be the same ciphertext.
func (eval Evaluator) AddPlaintext(ct *Ciphertext, pt *Plaintext, opOut *Ciphertext) (err error) {

	if err = eval.checkUnaryOp(ct, opOut); err != nil {
		return fmt.Errorf("cannot AddPlaintext: %w", err)
	}

	if err = pt.checkShape(eval.params); err != nil {
		return fmt.Errorf("cannot AddPlaintext: %w", err)
	}

	T, delta := eval.params.T(), eval.params.Delta()
	for i, c := range pt.Value {
		eval.BuffQ[i] = (c % T) * delta
	}

	eval.params.RingQ().Add(ct.Value[0], eval.BuffQ, opOut.Value[0])
	opOut.Value[1].Copy(ct.Value[1])

	eval.setNoise(ct, opOut, 1)

	return
}

// MulPlainNew multiplies ct by value and returns the result on a new ciphertext.
// See [Evaluator.MulPlain].
func (eval Evaluator) MulPlainNew(ct *Ciphertext, value int64) (opOut *Ciphertext, err error) {
	opOut = NewCiphertext(eval.params)
	return opOut, eval.MulPlain(ct, value, opOut)
}

// MulPlain multiplies both components of ct by value, not scaled by Delta,
// and writes the result on opOut.
// value is reduced modulo T to its representative in (-T/2, T/2], which
// yields the same plaintext modulo T with the smallest noise growth.
// The noise of the ciphertext is multiplied by the magnitude of this
// representative: callers must keep it small enough for the noise to stay
// below Q/(2T).
// ct and opOut can be the same ciphertext.
func (eval Evaluator) MulPlain(ct *Ciphertext, value int64, opOut *Ciphertext) (err error) {

	if err = eval.checkUnaryOp(ct, opOut); err != nil {
		return fmt.Errorf("cannot MulPlain: %w", err)
	}

	m, abs := eval.liftCentered(uint64(utils.FloorMod(value, int64(eval.params.T()))))

	rQ := eval.params.RingQ()
	rQ.MulScalar(ct.Value[0], m, opOut.Value[0])
	rQ.MulScalar(ct.Value[1], m, opOut.Value[1])

	eval.setNoise(ct, opOut, float64(abs)*float64(abs))

	return
}

// MulPlaintextNew multiplies ct by pt and returns the result on a new ciphertext.
// See [Evaluator.MulPlaintext].
func (eval Evaluator) MulPlaintextNew(ct *Ciphertext, pt *Plaintext) (opOut *Ciphertext, err error) {
	opOut = NewCiphertext(eval.params)
	return opOut, eval.MulPlaintext(ct, pt, opOut)
}

// MulPlaintext multiplies both components of ct by the plaintext polynomial pt
// of Z_T[X] in the ring Z_Q[X]/(PolyMod), and writes the result on opOut.
// The coefficients of pt are lifted to their representative in (-T/2, T/2].
// ct and opOut can be the same ciphertext.
func (eval Evaluator) MulPlaintext(ct *Ciphertext, pt *Plaintext, opOut *Ciphertext) (err error) {

	if err = eval.checkUnaryOp(ct, opOut); err != nil {
		return fmt.Errorf("cannot MulPlaintext: %w", err)
	}

	if err = pt.checkShape(eval.params); err != nil {
		return fmt.Errorf("cannot MulPlaintext: %w", err)
	}

	var norm2 float64
	for i, c := range pt.Value {
		m, abs := eval.liftCentered(c % eval.params.T())
		eval.BuffQ[i] = m
		norm2 += float64(abs) * float64(abs)
	}

	rQ := eval.params.RingQ()
	rQ.MulPolyWithBuffer(ct.Value[0], eval.BuffQ, eval.BuffProduct, opOut.Value[0])
	rQ.MulPolyWithBuffer(ct.Value[1], eval.BuffQ, eval.BuffProduct, opOut.Value[1])

	eval.setNoise(ct, opOut, norm2)

	return
}

// liftCentered maps m in [0, T) to the representative modulo Q of its
// centered representative in (-T/2, T/2], and returns the magnitude
// of the centered representative.
func (eval Evaluator) liftCentered(m uint64) (mQ, abs uint64) {
	if T := eval.params.T(); m > T>>1 {
		return eval.params.Q() - (T - m), T - m
	}
	return m, m
}

// checkUnaryOp checks that ct and opOut are ciphertexts of degree one
// matching the parameters of the evaluator.
func (eval Evaluator) checkUnaryOp(ct, opOut *Ciphertext) (err error) {

	if err = ct.checkShape(eval.params); err != nil {
		return fmt.Errorf("input: %w", err)
	}

	if err = opOut.checkShape(eval.params); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	return
}

// setNoise sets the noise estimate of opOut to the one of ct multiplied by factor.
func (eval Evaluator) setNoise(ct, opOut *Ciphertext, factor float64) {

	if ct.MetaData == nil {
		opOut.MetaData = nil
		return
	}

	if opOut.MetaData == nil {
		opOut.MetaData = &MetaData{}
	}

	opOut.NoiseVariance = ct.NoiseVariance * factor
}
