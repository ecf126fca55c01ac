// Package linear は細胞株と薬剤の特徴量ビューを連結した設計行列に対する
// リッジ回帰のベースラインモデルを提供します。実験ランナーのモデル契約
// （学習・予測・ハイパーパラメータ候補・特徴量ロード）を実装します。
package linear

import (
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/drevalgo/core/model"
	"github.com/YuminosukeSato/drevalgo/core/parallel"
	"github.com/YuminosukeSato/drevalgo/dataset"
	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// LinearRegression は (細胞株, 薬剤) ペアの応答値を予測する線形回帰モデル。
// 両エンティティの全ビューを連結した特徴量に対して、正規方程式
// w = (X^T X + λI)^(-1) X^T y でリッジ回帰を解く。切片は正則化しない。
type LinearRegression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	cellViews []string // 学習時に使用した細胞株ビュー
	drugViews []string // 学習時に使用した薬剤ビュー
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// ModelName は結果ディレクトリとログで使用されるモデル名を返す
func (lr *LinearRegression) ModelName() string {
	return "LinearRegression"
}

// EarlyStopping は早期終了セットを使用しないことを示す
func (lr *LinearRegression) EarlyStopping() bool {
	return false
}

// HyperparameterSet はチューニング対象のリッジ正則化係数のグリッドを返す
func (lr *LinearRegression) HyperparameterSet() []model.Hyperparameters {
	return []model.Hyperparameters{
		{"lambda": 0.0},
		{"lambda": 0.1},
		{"lambda": 1.0},
		{"lambda": 10.0},
		{"lambda": 100.0},
	}
}

// CellLineFeatures は <path>/cell_lines 以下のビューCSVを読み込む
func (lr *LinearRegression) CellLineFeatures(path string) (*dataset.FeatureDataset, error) {
	return dataset.LoadFeatureViews(filepath.Join(path, "cell_lines"))
}

// DrugFeatures は <path>/drugs 以下のビューCSVを読み込む
func (lr *LinearRegression) DrugFeatures(path string) (*dataset.FeatureDataset, error) {
	return dataset.LoadFeatureViews(filepath.Join(path, "drugs"))
}

// Clone は並列チューニング用に未学習のモデルを返す
func (lr *LinearRegression) Clone() model.DRPModel {
	return NewLinearRegression()
}

// Train はモデルを訓練データで学習させる。
// outputEarlyStopping はこのモデルでは使用しない。
func (lr *LinearRegression) Train(cellLineInput, drugInput *dataset.FeatureDataset, output *dataset.ResponseDataset, hyperparameters model.Hyperparameters, outputEarlyStopping *dataset.ResponseDataset) error {
	lr.Reset()

	if output.Len() == 0 {
		return errors.NewModelError("LinearRegression.Train", "empty data", errors.ErrEmptyData)
	}

	lambda, err := lambdaFrom(hyperparameters)
	if err != nil {
		return err
	}

	lr.cellViews = cellLineInput.ViewNames()
	lr.drugViews = drugInput.ViewNames()

	X, err := designMatrix(output.CellLineIDs, output.DrugIDs, cellLineInput, drugInput, lr.cellViews, lr.drugViews)
	if err != nil {
		return err
	}
	r, c := X.Dims()
	lr.NFeatures = c

	// 切片項のために X に 1 の列を追加
	XWithIntercept := mat.NewDense(r, c+1, nil)
	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0) // 切片項
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})

	// 正規方程式を解く: (X^T X + λI)^(-1) X^T y
	var XT mat.Dense
	XT.CloneFrom(XWithIntercept.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XWithIntercept)

	// リッジ項。切片（列0）は正則化しない
	for j := 1; j <= c; j++ {
		XTX.Set(j, j, XTX.At(j, j)+lambda)
	}

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("LinearRegression.Train", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, output.Response[i])
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	weights := mat.NewVecDense(c+1, nil)
	weights.MulVec(&XTXInv, &XTy)

	// 切片と重みを分離
	lr.Intercept = weights.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, weights.AtVec(i+1))
	}

	lr.SetFitted()
	return nil
}

// Predict は (細胞株, 薬剤) ペアごとに1つの予測応答値を返す
func (lr *LinearRegression) Predict(cellLineIDs, drugIDs []string, cellLineInput, drugInput *dataset.FeatureDataset) ([]float64, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	X, err := designMatrix(cellLineIDs, drugIDs, cellLineInput, drugInput, lr.cellViews, lr.drugViews)
	if err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// 予測: y = X * weights + intercept
	predictions := make([]float64, r)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions[i] = pred
	}
	return predictions, nil
}

// designMatrix は行ごとに細胞株ビューと薬剤ビューの特徴量を連結した
// 設計行列を組み立てる
func designMatrix(cellLineIDs, drugIDs []string, cellLineInput, drugInput *dataset.FeatureDataset, cellViews, drugViews []string) (*mat.Dense, error) {
	if len(cellLineIDs) != len(drugIDs) {
		return nil, errors.NewDimensionError("designMatrix", len(cellLineIDs), len(drugIDs), 0)
	}

	var blocks []*mat.Dense
	for _, view := range cellViews {
		m, err := cellLineInput.FeatureMatrix(view, cellLineIDs)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, m)
	}
	for _, view := range drugViews {
		m, err := drugInput.FeatureMatrix(view, drugIDs)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, m)
	}

	total := 0
	for _, b := range blocks {
		_, c := b.Dims()
		total += c
	}

	rows := len(cellLineIDs)
	X := mat.NewDense(rows, total, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		X.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(b)
		offset += c
	}
	return X, nil
}

// lambdaFrom はハイパーパラメータからリッジ正則化係数を取り出す
func lambdaFrom(hyperparameters model.Hyperparameters) (float64, error) {
	raw, ok := hyperparameters["lambda"]
	if !ok {
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.NewValidationError("lambda", "must be numeric", raw)
	}
}
