package tensor

import (
	"math"
)

// Add adds src to dst element-wise.
func Add(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// Dot computes the dot product of a and b.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Softmax applies the softmax function to x in place. The maximum is
// subtracted before exponentiation. NaN inputs propagate to the output.
func Softmax(x []float32) {
	if len(x) == 0 {
		return
	}
	maxv := maxOf(x)
	var sum float64
	for i := range x {
		v := math.Exp(float64(x[i] - maxv))
		x[i] = float32(v)
		sum += v
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / sum)
	for i := range x {
		x[i] *= inv
	}
}

// LogSoftmax writes log(softmax(x)) into dst using the log-sum-exp identity,
// so every finite output is <= 0. dst and x may alias.
func LogSoftmax(dst, x []float32) {
	if len(x) == 0 {
		return
	}
	maxv := maxOf(x)
	var sum float64
	for _, v := range x {
		sum += math.Exp(float64(v - maxv))
	}
	lse := float64(maxv) + math.Log(sum)
	for i, v := range x {
		out := float64(v) - lse
		if out > 0 {
			out = 0
		}
		dst[i] = float32(out)
	}
}

// SoftmaxRows applies Softmax to every row of m.
func SoftmaxRows(m *Mat) {
	for i := 0; i < m.R; i++ {
		Softmax(m.Row(i))
	}
}

// Mix writes ratio*a + (1-ratio)*b into dst.
func Mix(dst, a, b []float32, ratio float32) {
	for i := range dst {
		dst[i] = ratio*a[i] + (1-ratio)*b[i]
	}
}

// Finite reports whether every element of x is neither NaN nor Inf.
func Finite(x []float32) bool {
	for _, v := range x {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Sigmoid computes the logistic sigmoid activation.
func Sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}

// Tanh computes the hyperbolic tangent.
func Tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

func maxOf(x []float32) float32 {
	maxv := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > maxv {
			maxv = x[i]
		}
	}
	return maxv
}
