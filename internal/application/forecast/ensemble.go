package forecast

import (
	"math"
	"sort"
	"time"
)

// Fracción de la cola de la serie reservada para evaluación. El corte es
// cronológico, sin barajar: evaluar con días posteriores a los de
// entrenamiento es lo único honesto en series temporales.
const testFraction = 0.2

// FeatureWeight es una feature con su importancia normalizada.
type FeatureWeight struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// forestModel es el artefacto del ensamble: bosque, scaler y la serie de
// entrenamiento para recomputar lags al pronosticar.
type forestModel struct {
	Start       time.Time
	Values      []float64
	Scaler      *featureScaler
	Forest      *forest
	MAE         float64
	RMSE        float64
	R2          float64
	TopFeatures []FeatureWeight
	TrainedAt   time.Time
}

// fitForest entrena el ensamble sobre la serie diaria: features de
// calendario y de lookback para cada día, split cronológico 80/20,
// estandarización ajustada solo con el tramo de entrenamiento.
func fitForest(values []float64, start, trainedAt time.Time) *forestModel {
	n := len(values)
	rows := make([][]float64, n)
	for t := 0; t < n; t++ {
		rows[t] = featureRow(start, values, t)
	}

	nTest := int(math.Ceil(testFraction * float64(n)))
	cut := n - nTest

	scaler := fitScaler(rows[:cut])
	scaled := scaler.transformAll(rows)

	f := trainForest(scaled[:cut], values[:cut], forestSeed)

	m := &forestModel{
		Start:     start,
		Values:    append([]float64(nil), values...),
		Scaler:    scaler,
		Forest:    f,
		TrainedAt: trainedAt,
	}
	m.MAE, m.RMSE, m.R2 = holdoutMetrics(f, scaled[cut:], values[cut:])
	m.TopFeatures = topFeatures(f.Importances, 5)
	return m
}

// holdoutMetrics evalúa MAE, RMSE y R² sobre el tramo de test.
// Si el test no tiene varianza, R² es 1 con ajuste perfecto y 0 si no:
// el cociente de la definición no está definido y ese es el convenio usual.
func holdoutMetrics(f *forest, x [][]float64, y []float64) (mae, rmse, r2 float64) {
	n := float64(len(y))
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= n

	var absSum, ssRes, ssTot float64
	for i, row := range x {
		r := y[i] - f.predict(row)
		absSum += math.Abs(r)
		ssRes += r * r
		d := y[i] - mean
		ssTot += d * d
	}
	mae = absSum / n
	rmse = math.Sqrt(ssRes / n)
	if ssTot == 0 {
		if ssRes < 1e-9 {
			return mae, rmse, 1
		}
		return mae, rmse, 0
	}
	return mae, rmse, 1 - ssRes/ssTot
}

// topFeatures devuelve las k features de mayor importancia, en orden
// descendente. Empates: gana la feature de índice menor.
func topFeatures(importances []float64, k int) []FeatureWeight {
	all := make([]FeatureWeight, len(importances))
	for i, imp := range importances {
		all[i] = FeatureWeight{Name: featureNames[i], Importance: imp}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Importance > all[b].Importance })
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// forecast proyecta h días de forma recursiva: las features de cada día
// futuro se calculan sobre la serie extendida con las predicciones previas,
// nunca con valores reales que todavía no existen. Negativos van a cero.
func (m *forestModel) forecast(h int) []float64 {
	ext := append([]float64(nil), m.Values...)
	out := make([]float64, 0, h)
	for k := 0; k < h; k++ {
		row := featureRow(m.Start, ext, len(ext))
		pred := math.Max(m.Forest.predict(m.Scaler.transform(row)), 0)
		ext = append(ext, pred)
		out = append(out, pred)
	}
	return out
}

func (m *forestModel) end() time.Time {
	return m.Start.AddDate(0, 0, len(m.Values)-1)
}
