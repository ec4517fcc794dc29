// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// scikit-learnの例外システムにインスパイアされており、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
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
		log.Printf("wdbc-Warning: %v\n", w)
	}
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、ConvergenceWarningなどのカスタム警告の処理方法を制御できます。
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

// Warn は警告を発生させます。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ConvergenceWarning は最適化アルゴリズムが収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// SchemaMismatchError は入力テーブルが宣言されたスキーマを満たさない場合のエラーです。
// 必須の特徴量列の欠落、パース不能な数値セルなどを示します。
type SchemaMismatchError struct {
	Path    string // 読み込み元（ファイルパスなど）
	Column  string // 問題のある列名（特定できる場合）
	Row     int    // 問題のある行番号（ヘッダを1行目とする。不明なら0）
	Message string
}

func (e *SchemaMismatchError) Error() string {
	switch {
	case e.Column != "" && e.Row > 0:
		return fmt.Sprintf("wdbc: schema mismatch in %s: column %q, row %d: %s", e.Path, e.Column, e.Row, e.Message)
	case e.Column != "":
		return fmt.Sprintf("wdbc: schema mismatch in %s: column %q: %s", e.Path, e.Column, e.Message)
	default:
		return fmt.Sprintf("wdbc: schema mismatch in %s: %s", e.Path, e.Message)
	}
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("column", e.Column).
		Int("row", e.Row).
		Str("message", e.Message).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError は新しいSchemaMismatchErrorを作成し、スタックトレースを付与します。
func NewSchemaMismatchError(path, column string, row int, message string) error {
	err := &SchemaMismatchError{Path: path, Column: column, Row: row, Message: message}
	return errors.WithStack(err)
}

// InvalidLabelError は診断ラベルが認識できない値だった場合のエラーです。
// 暗黙の既定値への変換は行いません。
type InvalidLabelError struct {
	Label string
	Row   int // 問題のある行番号（不明なら0）
}

func (e *InvalidLabelError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("wdbc: invalid diagnosis label %q at row %d (want \"B\" or \"M\")", e.Label, e.Row)
	}
	return fmt.Sprintf("wdbc: invalid diagnosis label %q (want \"B\" or \"M\")", e.Label)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidLabelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("label", e.Label).
		Int("row", e.Row).
		Str("type", "InvalidLabelError")
}

// NewInvalidLabelError は新しいInvalidLabelErrorを作成し、スタックトレースを付与します。
func NewInvalidLabelError(label string, row int) error {
	err := &InvalidLabelError{Label: label, Row: row}
	return errors.WithStack(err)
}

// EmptyPartitionError は空のパーティションが非空を要求する操作に到達した場合のエラーです。
type EmptyPartitionError struct {
	Op        string // 操作名（例: "Evaluate", "Fit"）
	Partition string // "train" または "test"
}

func (e *EmptyPartitionError) Error() string {
	return fmt.Sprintf("wdbc: %s: %s partition is empty", e.Op, e.Partition)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EmptyPartitionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("partition", e.Partition).
		Str("type", "EmptyPartitionError")
}

// NewEmptyPartitionError は新しいEmptyPartitionErrorを作成し、スタックトレースを付与します。
func NewEmptyPartitionError(op, partition string) error {
	err := &EmptyPartitionError{Op: op, Partition: partition}
	return errors.WithStack(err)
}

// LengthMismatchError はスコア列と正解ラベル列の長さが一致しない場合のエラーです。
// 内部整合性の破れを示すため、呼び出し側で回復すべきではありません。
type LengthMismatchError struct {
	Op     string
	Scores int
	Truth  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("wdbc: %s: scores/truth length mismatch: %d vs %d", e.Op, e.Scores, e.Truth)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *LengthMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("scores", e.Scores).
		Int("truth", e.Truth).
		Str("type", "LengthMismatchError")
}

// NewLengthMismatchError は新しいLengthMismatchErrorを作成し、スタックトレースを付与します。
func NewLengthMismatchError(op string, scores, truth int) error {
	err := &LengthMismatchError{Op: op, Scores: scores, Truth: truth}
	return errors.WithStack(err)
}

// DegenerateLabelSetError は正解ラベルが単一クラスのみでAUCが定義できない場合のエラーです。
// プレースホルダ値を返す代わりに失敗します。
type DegenerateLabelSetError struct {
	Op        string
	Positives int
	Negatives int
}

func (e *DegenerateLabelSetError) Error() string {
	return fmt.Sprintf("wdbc: %s: AUC undefined for single-class truth (%d positives, %d negatives)",
		e.Op, e.Positives, e.Negatives)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateLabelSetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("positives", e.Positives).
		Int("negatives", e.Negatives).
		Str("type", "DegenerateLabelSetError")
}

// NewDegenerateLabelSetError は新しいDegenerateLabelSetErrorを作成し、スタックトレースを付与します。
func NewDegenerateLabelSetError(op string, positives, negatives int) error {
	err := &DegenerateLabelSetError{Op: op, Positives: positives, Negatives: negatives}
	return errors.WithStack(err)
}

// NotFittedError はモデルが未学習の状態で `PredictScore` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("wdbc: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
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
	return fmt.Sprintf("wdbc: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
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

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、分割比率に(0,1)の範囲外の値を渡した場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("wdbc: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は分類モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wdbc: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("wdbc: %s: %s", e.Op, e.Kind)
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
)
