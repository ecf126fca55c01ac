package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MAE", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += math.Abs(diff)
	}

	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	// yTrueの平均を計算
	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}

// PearsonCorrelation はピアソン相関係数（PCC）を計算する
func PearsonCorrelation(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("PearsonCorrelation", "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("PearsonCorrelation", len(yTrue), len(yPred), 0)
	}
	return stat.Correlation(yTrue, yPred, nil), nil
}

// SpearmanCorrelation はスピアマン順位相関係数（SCC）を計算する。
// 両系列を順位（同順位は平均順位）に変換してからピアソン相関を取る。
func SpearmanCorrelation(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("SpearmanCorrelation", "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("SpearmanCorrelation", len(yTrue), len(yPred), 0)
	}
	return stat.Correlation(ranks(yTrue), ranks(yPred), nil), nil
}

// ranks は値を平均順位に変換する（1始まり、同順位は平均）。
func ranks(xs []float64) []float64 {
	n := len(xs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return xs[order[a]] < xs[order[b]]
	})

	result := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[order[j+1]] == xs[order[i]] {
			j++
		}
		// 順位 i+1..j+1 の平均を同値の全要素に割り当てる
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			result[order[k]] = avg
		}
		i = j + 1
	}
	return result
}
