package tensor

import (
	"math"
	"math/rand"
	"testing"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	t.Parallel()
	x := []float32{1000, 1001, 999, -5}
	Softmax(x)
	var sum float64
	for _, v := range x {
		if v < 0 || v > 1 {
			t.Fatalf("probability out of range: %v", x)
		}
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("softmax sum = %f", sum)
	}
	if !(x[1] > x[0] && x[0] > x[2]) {
		t.Fatalf("softmax changed ordering: %v", x)
	}
}

func TestLogSoftmax(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   []float32
	}{
		{"uniform", []float32{0, 0, 0, 0, 0}},
		{"large", []float32{500, 400, 300}},
		{"mixed", []float32{-2, 0.5, 3, -7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := make([]float32, len(tc.in))
			LogSoftmax(out, tc.in)
			probs := append([]float32(nil), tc.in...)
			Softmax(probs)
			var sum float64
			for i, v := range out {
				if v > 0 {
					t.Fatalf("log-probability %f > 0", v)
				}
				sum += math.Exp(float64(v))
				if p := float64(probs[i]); p > 1e-30 && math.Abs(math.Log(p)-float64(v)) > 1e-4 {
					t.Fatalf("index %d: log-softmax %f, log(softmax) %f", i, v, math.Log(p))
				}
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Fatalf("exp(log-softmax) sums to %f", sum)
			}
		})
	}
}

func TestLogSoftmaxUniformValue(t *testing.T) {
	t.Parallel()
	out := make([]float32, 5)
	LogSoftmax(out, []float32{3, 3, 3, 3, 3})
	want := float32(math.Log(1.0 / 5))
	for _, v := range out {
		if math.Abs(float64(v-want)) > 1e-6 {
			t.Fatalf("got %f want %f", v, want)
		}
	}
}

func TestMixAndFinite(t *testing.T) {
	t.Parallel()
	dst := make([]float32, 2)
	Mix(dst, []float32{1, 0}, []float32{0, 1}, 0.25)
	if dst[0] != 0.25 || dst[1] != 0.75 {
		t.Fatalf("unexpected mix %v", dst)
	}
	if !Finite(dst) {
		t.Fatal("expected finite")
	}
	if Finite([]float32{float32(math.NaN())}) || Finite([]float32{float32(math.Inf(1))}) {
		t.Fatal("expected non-finite")
	}
}

func TestCubeLayerView(t *testing.T) {
	t.Parallel()
	c := NewCube(3, 2, 4)
	c.Set(1, 1, 2, 7)
	layer := c.Layer(1)
	if layer.At(1, 2) != 7 {
		t.Fatalf("layer view mismatch: %v", layer.Row(1))
	}
	layer.Set(0, 0, 5)
	if c.At(1, 0, 0) != 5 {
		t.Fatal("layer view does not share storage")
	}
	cl := c.Clone()
	cl.Set(1, 0, 0, 9)
	if c.At(1, 0, 0) != 5 {
		t.Fatal("clone aliases original")
	}
}

func TestFillUniformRange(t *testing.T) {
	t.Parallel()
	data := make([]float32, 1000)
	FillUniform(data, rand.New(rand.NewSource(1)))
	for _, v := range data {
		if v < 0 || v >= 1 {
			t.Fatalf("value %f outside [0,1)", v)
		}
	}
}

func TestIntMatColumns(t *testing.T) {
	t.Parallel()
	m, err := IntMatFromRows([][]int{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("IntMatFromRows: %v", err)
	}
	col := make([]int, 2)
	m.Col(col, 1)
	if col[0] != 2 || col[1] != 5 {
		t.Fatalf("unexpected column %v", col)
	}
	m.SetCol(2, []int{9, 8})
	if m.At(0, 2) != 9 || m.At(1, 2) != 8 {
		t.Fatalf("SetCol failed: %v", m.Data)
	}
	if _, err := IntMatFromRows([][]int{{1}, {1, 2}}); err == nil {
		t.Fatal("expected ragged rows error")
	}
}
