package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Transformer は特徴量の変換を行うインターフェース
type Transformer interface {
	// Fit は訓練データから統計情報を学習する
	Fit(X mat.Matrix) error
	// Transform は学習済みの統計情報でデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Scorer はテストデータに対するスコア列を返すインターフェース
// スコアは各行が陽性（悪性）である確率の推定値で、[0,1]に収まる
type Scorer interface {
	// PredictScore は入力行ごとに1つのスコアを返す
	// 返り値の長さと順序は入力行に一致する
	PredictScore(X mat.Matrix) (*mat.VecDense, error)
}
