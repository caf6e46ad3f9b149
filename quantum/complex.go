package quantum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// Complex is one amplitude in wire form.
type Complex struct {
	Real float64 `json:"real" msgpack:"real"`
	Imag float64 `json:"imag" msgpack:"imag"`
}

// C builds a Complex from its parts.
func C(re, im float64) Complex { return Complex{Real: re, Imag: im} }

// FromComplex128 converts a native complex value.
func FromComplex128(z complex128) Complex { return Complex{Real: real(z), Imag: imag(z)} }

// Complex128 returns the native complex value.
func (c Complex) Complex128() complex128 { return complex(c.Real, c.Imag) }

// Magnitude returns |c|.
func (c Complex) Magnitude() float64 { return math.Hypot(c.Real, c.Imag) }

// Phase returns arg(c) in (-π, π]. The phase of zero is zero.
func (c Complex) Phase() float64 {
	if c.Real == 0 && c.Imag == 0 {
		return 0
	}
	return math.Atan2(c.Imag, c.Real)
}

// Add returns c + o.
func (c Complex) Add(o Complex) Complex { return Complex{c.Real + o.Real, c.Imag + o.Imag} }

// Scale returns c * s.
func (c Complex) Scale(s float64) Complex { return Complex{c.Real * s, c.Imag * s} }

// UnmarshalJSON accepts {"real":r,"imag":i}, [r, i], or a bare number.
func (c *Complex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = Complex{}
		return nil
	}
	switch b[0] {
	case '{':
		var obj struct {
			Real float64 `json:"real"`
			Imag float64 `json:"imag"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("complex object: %w", err)
		}
		*c = Complex{Real: obj.Real, Imag: obj.Imag}
	case '[':
		var pair []float64
		if err := json.Unmarshal(b, &pair); err != nil {
			return fmt.Errorf("complex pair: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("complex pair: got %d elements, want 2", len(pair))
		}
		*c = Complex{Real: pair[0], Imag: pair[1]}
	default:
		var re float64
		if err := json.Unmarshal(b, &re); err != nil {
			return fmt.Errorf("complex number: %w", err)
		}
		*c = Complex{Real: re}
	}
	return nil
}

// AmplitudeVector is an ordered list of basis-state amplitudes. Index bit k is qubit k.
type AmplitudeVector []Complex

// Complex128s returns the vector as native complex values.
func (v AmplitudeVector) Complex128s() []complex128 {
	out := make([]complex128, len(v))
	for i, c := range v {
		out[i] = c.Complex128()
	}
	return out
}

// FromComplex128s converts native amplitudes.
func FromComplex128s(zs []complex128) AmplitudeVector {
	out := make(AmplitudeVector, len(zs))
	for i, z := range zs {
		out[i] = FromComplex128(z)
	}
	return out
}

// Norm returns the L2 norm of the vector.
func (v AmplitudeVector) Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	return cmplxs.Norm(v.Complex128s(), 2)
}

// Normalized returns a unit-norm copy. A zero vector is returned unchanged.
func (v AmplitudeVector) Normalized() AmplitudeVector {
	zs := v.Complex128s()
	n := cmplxs.Norm(zs, 2)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return append(AmplitudeVector(nil), v...)
	}
	cmplxs.Scale(complex(1/n, 0), zs)
	return FromComplex128s(zs)
}

// Probabilities returns |a_i|^2 for every amplitude.
func (v AmplitudeVector) Probabilities() []float64 {
	out := make([]float64, len(v))
	for i, c := range v {
		z := c.Complex128()
		out[i] = real(z * cmplx.Conj(z))
	}
	return out
}

// WrapPhase maps an angle into [0, 2π).
func WrapPhase(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
