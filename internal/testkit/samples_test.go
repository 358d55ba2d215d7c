package testkit

import (
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestGenerateIsReproducible(t *testing.T) {
	exp := Experiment{
		Treatment: GroupSpec{Size: 30, Mean: 10, Sigma: 2},
		Control:   GroupSpec{Size: 25, Mean: 5, Sigma: 2},
		Seed:      7,
	}
	a1, b1 := exp.Generate()
	a2, b2 := exp.Generate()

	if len(a1) != 30 || len(b1) != 25 {
		t.Fatalf("Expected sizes 30/25, got %d/%d", len(a1), len(b1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("Treatment differs at %d: %v vs %v", i, a1[i], a2[i])
		}
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("Control differs at %d: %v vs %v", i, b1[i], b2[i])
		}
	}
	if m := stat.Mean(a1, nil); m < 8 || m > 12 {
		t.Errorf("Treatment mean %v too far from 10", m)
	}
}

func TestWithOutliers(t *testing.T) {
	in := []float64{1, 2, 3}
	out := WithOutliers(in, 5, 100)
	if in[0] != 1 {
		t.Error("WithOutliers modified its input")
	}
	for _, v := range out {
		if v != 100 {
			t.Errorf("Expected every value replaced, got %v", out)
		}
	}
}
