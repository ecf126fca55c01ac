// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 実験パイプラインの設定エラー・データ整合性エラーを構造化された形で表現し、
// 致命的でない問題（ランダム化テストのスキップなど）は警告として通知します。
package errors

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("drevalgo-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// InconsistentStateWarningなどの運用上の警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	実験パイプラインの警告型
//
// ===========================================================================

// InconsistentStateWarning はランダム化テストで要求されたビューが
// 細胞株・薬剤どちらの特徴量ストアにも存在しない場合に発生する警告です。
// 該当する (テスト名, ビュー) の組み合わせはスキップされ、実験は継続します。
type InconsistentStateWarning struct {
	Test string
	View string
}

func (w *InconsistentStateWarning) Error() string {
	return fmt.Sprintf("view '%s' not found in either feature dataset. Skipping randomization test '%s' for this view.", w.View, w.Test)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *InconsistentStateWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("test", w.Test).
		Str("view", w.View).
		Str("type", "InconsistentStateWarning")
}

// NewInconsistentStateWarning は新しいInconsistentStateWarningを作成します。
func NewInconsistentStateWarning(test, view string) *InconsistentStateWarning {
	return &InconsistentStateWarning{Test: test, View: view}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ConfigurationError は分割モードやランダム化モードなどの設定値が
// 不正な場合のエラーです。計算が始まる前に検出されます。
type ConfigurationError struct {
	Op      string
	Param   string
	Value   interface{}
	Choices []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Choices) > 0 {
		return fmt.Sprintf("drevalgo: %s: unknown %s '%v'. Choose from '%s'", e.Op, e.Param, e.Value, strings.Join(e.Choices, "', '"))
	}
	return fmt.Sprintf("drevalgo: %s: invalid %s '%v'", e.Op, e.Param, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("param", e.Param).
		Interface("value", e.Value).
		Strs("choices", e.Choices).
		Str("type", "ConfigurationError")
}

// NewConfigurationError は新しいConfigurationErrorを作成し、スタックトレースを付与します。
func NewConfigurationError(op, param string, value interface{}, choices ...string) error {
	err := &ConfigurationError{Op: op, Param: param, Value: value, Choices: choices}
	return errors.WithStack(err)
}

// DataIntegrityError は特徴量ストアに存在しない識別子が参照された場合のエラーです。
// 欠損している識別子の完全な集合と、要求総数に対する欠損割合を保持します。
// 訓練前の ReduceTo によるフィルタリングが意図された緩和策であり、
// このエラーは上流のデータ整合性の問題を示します。
type DataIntegrityError struct {
	Op         string
	MissingIDs []string
	Requested  int
}

func (e *DataIntegrityError) Error() string {
	missing := append([]string(nil), e.MissingIDs...)
	sort.Strings(missing)
	return fmt.Sprintf("drevalgo: %s: %d of %d ids are not in the FeatureDataset (%.1f%% missing). Missing ids: %s",
		e.Op, len(e.MissingIDs), e.Requested, e.Proportion()*100, strings.Join(missing, ", "))
}

// Proportion は要求された識別子のうち欠損している割合を返します。
func (e *DataIntegrityError) Proportion() float64 {
	if e.Requested == 0 {
		return 0
	}
	return float64(len(e.MissingIDs)) / float64(e.Requested)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DataIntegrityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("missing_ids", e.MissingIDs).
		Int("requested", e.Requested).
		Float64("proportion_missing", e.Proportion()).
		Str("type", "DataIntegrityError")
}

// NewDataIntegrityError は新しいDataIntegrityErrorを作成し、スタックトレースを付与します。
func NewDataIntegrityError(op string, missingIDs []string, requested int) error {
	err := &DataIntegrityError{Op: op, MissingIDs: missingIDs, Requested: requested}
	return errors.WithStack(err)
}

// NotFittedError はモデルが未学習の状態で `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("drevalgo: %s: this model is not fitted yet. Call Train() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("drevalgo: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は実験設定の検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("drevalgo: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("drevalgo: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は予測モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("drevalgo: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("drevalgo: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
