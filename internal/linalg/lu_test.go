package linalg

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSolveMatrix_Identity(t *testing.T) {
	m := NewMatrix(3)
	for i := 0; i < 3; i++ {
		m.Set(i, i, 1)
	}
	x, err := SolveMatrix(m, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("SolveMatrix: %v", err)
	}
	for i, want := range []float64{1, 2, 3} {
		if !approxEqual(x[i], want, 1e-12) {
			t.Fatalf("x[%d] = %v, want %v", i, x[i], want)
		}
	}
}

func TestSolveMatrix_RequiresPivoting(t *testing.T) {
	// Zero in the (0,0) position forces a row swap.
	m := NewMatrix(2)
	m.Set(0, 0, 0)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(1, 1, 1)
	x, err := SolveMatrix(m, []float64{2, 3})
	if err != nil {
		t.Fatalf("SolveMatrix: %v", err)
	}
	if !approxEqual(x[0], 1, 1e-12) || !approxEqual(x[1], 2, 1e-12) {
		t.Fatalf("got %v, want [1 2]", x)
	}
}

func TestDecompose_RejectsSingular(t *testing.T) {
	m := NewMatrix(2)
	m.Set(0, 0, 1)
	m.Set(0, 1, 2)
	m.Set(1, 0, 2)
	m.Set(1, 1, 4)
	if _, err := Decompose(m); err == nil {
		t.Fatal("expected singular matrix error")
	}
}

func TestLU_SolveReuse_MultipleRHS(t *testing.T) {
	m := NewMatrix(2)
	m.Set(0, 0, 2)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(1, 1, 3)
	lu, err := Decompose(m)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}

	x1, err := lu.Solve([]float64{5, 10})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !approxEqual(x1[0], 1, 1e-9) || !approxEqual(x1[1], 3, 1e-9) {
		t.Fatalf("got %v, want [1 3]", x1)
	}

	x2, err := lu.Solve([]float64{3, 3})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !approxEqual(x2[0], 1.2, 1e-9) || !approxEqual(x2[1], 0.6, 1e-9) {
		t.Fatalf("got %v, want [1.2 0.6]", x2)
	}
}

func TestDeterminant(t *testing.T) {
	m := NewMatrix(2)
	m.Set(0, 0, 2)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(1, 1, 3)
	lu, err := Decompose(m)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if !approxEqual(lu.Determinant(), 5, 1e-9) {
		t.Fatalf("got determinant %v, want 5", lu.Determinant())
	}
}
