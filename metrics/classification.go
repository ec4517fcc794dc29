// Package metrics は二値分類の評価指標を提供します。
// 陽性クラスは常に悪性（1）です。
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/errors"
)

// ConfusionMatrix は予測と正解の2×2集計
type ConfusionMatrix struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
}

// Total は集計された観測数を返す
func (c ConfusionMatrix) Total() int {
	return c.TruePositives + c.TrueNegatives + c.FalsePositives + c.FalseNegatives
}

// Accuracy は正解率を返す
func (c ConfusionMatrix) Accuracy() float64 {
	return errors.SafeDivide(float64(c.TruePositives+c.TrueNegatives), float64(c.Total()))
}

// Precision は適合率（陽性予測のうち正しかった割合）を返す
func (c ConfusionMatrix) Precision() float64 {
	return errors.SafeDivide(float64(c.TruePositives), float64(c.TruePositives+c.FalsePositives))
}

// Recall は再現率（実際の陽性のうち検出できた割合、感度）を返す
func (c ConfusionMatrix) Recall() float64 {
	return errors.SafeDivide(float64(c.TruePositives), float64(c.TruePositives+c.FalseNegatives))
}

// Specificity は特異度（実際の陰性のうち正しく棄却できた割合）を返す
func (c ConfusionMatrix) Specificity() float64 {
	return errors.SafeDivide(float64(c.TrueNegatives), float64(c.TrueNegatives+c.FalsePositives))
}

// F1 は適合率と再現率の調和平均を返す
func (c ConfusionMatrix) F1() float64 {
	p := c.Precision()
	r := c.Recall()
	return errors.SafeDivide(2*p*r, p+r)
}

// EvaluationResult は1つのモデル評価の不変な結果
// 作成後に変更されることはなく、モデル間の比較にのみ使われる
type EvaluationResult struct {
	Confusion ConfusionMatrix
	AUC       float64
	Threshold float64
	Samples   int
}

// Evaluate はスコア列と正解ラベル列から混同行列とAUCを計算する
//
// 混同行列は各スコアをthresholdで二値化して集計する（score >= threshold
// で悪性と予測）。AUCは二値化前の生スコアからMann–Whitney U統計量として
// 厳密に計算するため、同じ入力に対して常に同じ値を返す。
//
// エラー:
//   - スコアと正解の長さが異なる場合は LengthMismatchError
//   - どちらかが空の場合は EmptyPartitionError
//   - 正解が単一クラスのみの場合は DegenerateLabelSetError
func Evaluate(scores, truth *mat.VecDense, threshold float64) (*EvaluationResult, error) {
	if scores == nil || truth == nil || scores.Len() == 0 || truth.Len() == 0 {
		return nil, errors.NewEmptyPartitionError("metrics.Evaluate", "test")
	}
	n := scores.Len()
	if truth.Len() != n {
		return nil, errors.NewLengthMismatchError("metrics.Evaluate", n, truth.Len())
	}

	// 入力の検証: 正解は0/1、スコアはNaN/Infを含まない
	positives, negatives := 0, 0
	for i := 0; i < n; i++ {
		switch truth.AtVec(i) {
		case 0:
			negatives++
		case 1:
			positives++
		default:
			return nil, errors.NewValueError("metrics.Evaluate", "truth labels must be binary (0 or 1)")
		}
	}
	if err := errors.CheckNumericalStability("metrics.Evaluate", scores.RawVector().Data); err != nil {
		return nil, err
	}
	if positives == 0 || negatives == 0 {
		return nil, errors.NewDegenerateLabelSetError("metrics.Evaluate", positives, negatives)
	}

	auc := rankAUC(scores, truth, positives, negatives)

	cm := ConfusionMatrix{}
	for i := 0; i < n; i++ {
		predictedPositive := scores.AtVec(i) >= threshold
		actualPositive := truth.AtVec(i) == 1
		switch {
		case predictedPositive && actualPositive:
			cm.TruePositives++
		case predictedPositive && !actualPositive:
			cm.FalsePositives++
		case !predictedPositive && actualPositive:
			cm.FalseNegatives++
		default:
			cm.TrueNegatives++
		}
	}

	return &EvaluationResult{
		Confusion: cm,
		AUC:       auc,
		Threshold: threshold,
		Samples:   n,
	}, nil
}

// AUC はROC曲線下面積を計算する
// 無作為に選んだ陽性例のスコアが無作為に選んだ陰性例のスコアを上回る確率の
// 厳密値（Mann–Whitney U定式化）で、サンプリングせずランク統計量から求める
func AUC(scores, truth *mat.VecDense) (float64, error) {
	if scores == nil || truth == nil || scores.Len() == 0 || truth.Len() == 0 {
		return 0, errors.NewEmptyPartitionError("metrics.AUC", "test")
	}
	n := scores.Len()
	if truth.Len() != n {
		return 0, errors.NewLengthMismatchError("metrics.AUC", n, truth.Len())
	}

	positives, negatives := 0, 0
	for i := 0; i < n; i++ {
		switch truth.AtVec(i) {
		case 0:
			negatives++
		case 1:
			positives++
		default:
			return 0, errors.NewValueError("metrics.AUC", "truth labels must be binary (0 or 1)")
		}
	}
	if positives == 0 || negatives == 0 {
		return 0, errors.NewDegenerateLabelSetError("metrics.AUC", positives, negatives)
	}

	return rankAUC(scores, truth, positives, negatives), nil
}

// rankAUC はミッドランク（同点は平均順位）を用いたMann–Whitney U統計量から
// AUCを計算する。呼び出し側で両クラスの存在が保証されていること。
func rankAUC(scores, truth *mat.VecDense, positives, negatives int) float64 {
	n := scores.Len()

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores.AtVec(order[a]) < scores.AtVec(order[b])
	})

	// 同点グループに平均順位（1始まり）を割り当てる
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores.AtVec(order[j]) == scores.AtVec(order[i]) {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 順位 i+1 .. j の平均
		for k := i; k < j; k++ {
			ranks[order[k]] = avgRank
		}
		i = j
	}

	// 陽性例の順位和からU統計量を求める
	rankSum := 0.0
	for i := 0; i < n; i++ {
		if truth.AtVec(i) == 1 {
			rankSum += ranks[i]
		}
	}
	u := rankSum - float64(positives)*float64(positives+1)/2
	return u / (float64(positives) * float64(negatives))
}
