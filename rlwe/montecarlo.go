package rlwe

import (
	"fmt"
	"runtime"

	"github.com/Pro7ech/minihe/utils/concurrency"
	"github.com/Pro7ech/minihe/utils/sampling"
)

// Trial is a single experiment of a Monte-Carlo estimation.
// It receives an encryptor, an evaluator and a decryptor that it can use
// exclusively, and a source from which it can draw its own randomness.
// It returns true if the experiment succeeded, e.g. if the decrypted value
// matches the expected one.
type Trial func(enc *Encryptor, eval *Evaluator, dec *Decryptor, source *sampling.Source) (ok bool, err error)

type trialBundle struct {
	enc  *Encryptor
	eval *Evaluator
	dec  *Decryptor
}

// SuccessRate runs the given number of independent trials and returns the
// fraction of them that succeeded.
//
// Trials run concurrently on up to workers goroutines, each owning a shallow copy
// of the encryptor, evaluator and decryptor. If workers is smaller than one,
// runtime.NumCPU() is used. Each trial draws its randomness from a source derived
// from the input source before any trial starts, so that the result only depends
// on the seed of source and not on the scheduling of the goroutines.
//
// The method returns the first error returned by a trial, if any.
func SuccessRate(params ParameterProvider, pk *PublicKey, sk *SecretKey, source *sampling.Source, trials, workers int, trial Trial) (rate float64, err error) {

	if trials < 1 {
		return 0, fmt.Errorf("cannot SuccessRate: trials must be positive but is %d", trials)
	}

	if workers < 1 {
		workers = runtime.NumCPU()
	}

	workers = min(workers, trials)

	enc, err := NewEncryptor(params, pk)
	if err != nil {
		return 0, fmt.Errorf("cannot SuccessRate: %w", err)
	}

	dec, err := NewDecryptor(params, sk)
	if err != nil {
		return 0, fmt.Errorf("cannot SuccessRate: %w", err)
	}

	eval := NewEvaluator(params)

	bundles := make([]trialBundle, workers)
	bundles[0] = trialBundle{enc: enc, eval: eval, dec: dec}
	for i := 1; i < workers; i++ {
		bundles[i] = trialBundle{enc: enc.ShallowCopy(), eval: eval.ShallowCopy(), dec: dec.ShallowCopy()}
	}

	seeds := make([][32]byte, trials)
	for i := range seeds {
		seeds[i] = source.NewSeed()
	}

	results := make([]bool, trials)

	rm := concurrency.NewResourceManager(bundles)

	for i := range trials {
		rm.Run(func(b trialBundle) (err error) {
			s := sampling.NewSource(seeds[i])
			if results[i], err = trial(b.enc.WithSource(s.NewSource()), b.eval, b.dec, s); err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			return
		})
	}

	if err = rm.Wait(); err != nil {
		return 0, fmt.Errorf("cannot SuccessRate: %w", err)
	}

	var success int
	for _, ok := range results {
		if ok {
			success++
		}
	}

	return float64(success) / float64(trials), nil
}
