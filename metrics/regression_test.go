package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-10

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: []float64{1.0, 2.0, 3.0},
			yPred: []float64{1.0, 2.0, 3.0},
			want:  0.0,
		},
		{
			name:  "constant offset",
			yTrue: []float64{1.0, 2.0, 3.0},
			yPred: []float64{2.0, 3.0, 4.0},
			want:  1.0,
		},
		{
			name:  "mixed errors",
			yTrue: []float64{1.0, 2.0, 3.0, 4.0},
			yPred: []float64{1.5, 2.0, 2.5, 5.0},
			want:  (0.25 + 0.0 + 0.25 + 1.0) / 4.0,
		},
		{
			name:    "empty vector",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
		{
			name:    "length mismatch",
			yTrue:   []float64{1.0, 2.0},
			yPred:   []float64{1.0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var yTrue, yPred *mat.VecDense
			if len(tt.yTrue) > 0 {
				yTrue = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			} else {
				yTrue = &mat.VecDense{}
			}
			if len(tt.yPred) > 0 {
				yPred = mat.NewVecDense(len(tt.yPred), tt.yPred)
			} else {
				yPred = &mat.VecDense{}
			}

			got, err := MSE(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("MSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !almostEqual(got, tt.want) {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{2.0, 3.0, 4.0, 5.0})

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	if !almostEqual(got, 1.0) {
		t.Errorf("RMSE() = %v, want 1.0", got)
	}
}

func TestMAE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.5, 1.5, 3.5, 5.0})

	got, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE() error = %v", err)
	}
	want := (0.5 + 0.5 + 0.5 + 1.0) / 4.0
	if !almostEqual(got, want) {
		t.Errorf("MAE() = %v, want %v", got, want)
	}
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: []float64{1.0, 2.0, 3.0, 4.0},
			yPred: []float64{1.0, 2.0, 3.0, 4.0},
			want:  1.0,
		},
		{
			name:  "mean prediction",
			yTrue: []float64{1.0, 2.0, 3.0, 4.0},
			yPred: []float64{2.5, 2.5, 2.5, 2.5},
			want:  0.0,
		},
		{
			name:    "constant target",
			yTrue:   []float64{2.0, 2.0, 2.0},
			yPred:   []float64{1.0, 2.0, 3.0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yTrue := mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			yPred := mat.NewVecDense(len(tt.yPred), tt.yPred)

			got, err := R2Score(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("R2Score() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !almostEqual(got, tt.want) {
				t.Errorf("R2Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{
			name:  "perfect positive",
			yTrue: []float64{1.0, 2.0, 3.0, 4.0},
			yPred: []float64{2.0, 4.0, 6.0, 8.0},
			want:  1.0,
		},
		{
			name:  "perfect negative",
			yTrue: []float64{1.0, 2.0, 3.0, 4.0},
			yPred: []float64{4.0, 3.0, 2.0, 1.0},
			want:  -1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PearsonCorrelation(tt.yTrue, tt.yPred)
			if err != nil {
				t.Fatalf("PearsonCorrelation() error = %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("PearsonCorrelation() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("length mismatch", func(t *testing.T) {
		if _, err := PearsonCorrelation([]float64{1, 2}, []float64{1}); err == nil {
			t.Error("expected error for length mismatch")
		}
	})
}

func TestSpearmanCorrelation(t *testing.T) {
	t.Run("monotone nonlinear", func(t *testing.T) {
		// x^3 breaks linearity but keeps the ranking.
		yTrue := []float64{1.0, 2.0, 3.0, 4.0, 5.0}
		yPred := []float64{1.0, 8.0, 27.0, 64.0, 125.0}
		got, err := SpearmanCorrelation(yTrue, yPred)
		if err != nil {
			t.Fatalf("SpearmanCorrelation() error = %v", err)
		}
		if !almostEqual(got, 1.0) {
			t.Errorf("SpearmanCorrelation() = %v, want 1.0", got)
		}
	})

	t.Run("reversed order", func(t *testing.T) {
		yTrue := []float64{1.0, 2.0, 3.0}
		yPred := []float64{9.0, 5.0, 1.0}
		got, err := SpearmanCorrelation(yTrue, yPred)
		if err != nil {
			t.Fatalf("SpearmanCorrelation() error = %v", err)
		}
		if !almostEqual(got, -1.0) {
			t.Errorf("SpearmanCorrelation() = %v, want -1.0", got)
		}
	})
}

func TestRanks(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "distinct values",
			in:   []float64{30, 10, 20},
			want: []float64{3, 1, 2},
		},
		{
			name: "ties get the average rank",
			in:   []float64{1, 2, 2, 3},
			want: []float64{1, 2.5, 2.5, 4},
		},
		{
			name: "all equal",
			in:   []float64{5, 5, 5},
			want: []float64{2, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranks(tt.in)
			for i := range tt.want {
				if !almostEqual(got[i], tt.want[i]) {
					t.Errorf("ranks(%v) = %v, want %v", tt.in, got, tt.want)
					break
				}
			}
		})
	}
}
