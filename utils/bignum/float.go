package bignum

import (
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// NewFloat creates a new big.Float element with "prec" bits of precision.
// Accepted types are: string, float64, int, int64, uint64, *big.Int and *big.Float.
func NewFloat(x interface{}, prec uint) (y *big.Float) {

	y = new(big.Float)
	y.SetPrec(prec)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case string:
		y.SetString(x)
	case float64:
		y.SetFloat64(x)
	case int:
		y.SetInt64(int64(x))
	case int64:
		y.SetInt64(x)
	case uint64:
		y.SetUint64(x)
	case *big.Int:
		y.SetInt(x)
	case *big.Float:
		y.Set(x)
	default:
		panic(fmt.Errorf("cannot NewFloat: accepted types are string, float64, int, int64, uint64, *big.Int, *big.Float but is %T", x))
	}

	return
}

// Exp returns e^x with the precision of x.
func Exp(x *big.Float) *big.Float {
	return bigfloat.Exp(x)
}

// Log returns ln(x) with the precision of x.
// x must be strictly positive.
func Log(x *big.Float) *big.Float {
	return bigfloat.Log(x)
}

// Log2 returns log2(x) as a float64.
// The computation is carried with the precision of x, which
// allows values far below the smallest float64 subnormal.
func Log2(x *big.Float) float64 {
	ln2 := Log(NewFloat(2, x.Prec()))
	f, _ := new(big.Float).Quo(Log(x), ln2).Float64()
	return f
}

// Sqrt returns the square root of x with the precision of x.
// x must be non-negative.
func Sqrt(x *big.Float) (y *big.Float) {
	return new(big.Float).SetPrec(x.Prec()).Sqrt(x)
}
