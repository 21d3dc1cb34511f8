package forecast

import (
	"math"
	"time"
)

// Orden fijo de las 13 columnas de features. El orden importa: los artefactos
// serializados guardan el scaler y las importancias por índice.
var featureNames = []string{
	"day_of_week", "day_of_month", "month", "quarter", "year", "is_weekend",
	"lag_1", "lag_7", "lag_14", "lag_30",
	"rolling_mean_7", "rolling_mean_14", "rolling_mean_30",
}

var lagDays = []int{1, 7, 14, 30}
var rollingWindows = []int{7, 14, 30}

// featureRow construye la fila de features del día t de la serie.
// t puede apuntar más allá de values: el llamador extiende values con las
// predicciones previas, de modo que los lags y medias móviles de un día
// futuro solo usan información disponible hasta ese punto.
// El lookback que cae antes del inicio de la serie se rellena con cero.
func featureRow(start time.Time, values []float64, t int) []float64 {
	d := start.AddDate(0, 0, t)
	w := mondayIndex(d.Weekday())

	row := make([]float64, 0, len(featureNames))
	row = append(row,
		float64(w),
		float64(d.Day()),
		float64(int(d.Month())),
		float64((int(d.Month())-1)/3+1),
		float64(d.Year()),
	)
	if w >= 5 {
		row = append(row, 1)
	} else {
		row = append(row, 0)
	}
	for _, lag := range lagDays {
		row = append(row, lagValue(values, t, lag))
	}
	for _, win := range rollingWindows {
		row = append(row, rollingMean(values, t, win))
	}
	return row
}

// lagValue devuelve values[t-lag], o cero si el lag cae antes del inicio.
func lagValue(values []float64, t, lag int) float64 {
	if i := t - lag; i >= 0 && i < len(values) {
		return values[i]
	}
	return 0
}

// rollingMean promedia los win valores anteriores al día t (sin incluir t,
// que en predicción todavía no existe). Ventana incompleta → cero.
func rollingMean(values []float64, t, win int) float64 {
	if t < win || t > len(values) {
		return 0
	}
	var sum float64
	for _, v := range values[t-win : t] {
		sum += v
	}
	return sum / float64(win)
}

// mondayIndex convierte time.Weekday (domingo=0) al índice lunes=0.
func mondayIndex(w time.Weekday) int { return (int(w) + 6) % 7 }

// featureScaler estandariza cada columna a media 0 y desvío 1.
// Campos exportados para la serialización gob del artefacto.
type featureScaler struct {
	Mean  []float64
	Scale []float64
}

// fitScaler ajusta el scaler sobre las filas de entrenamiento.
// Columnas de varianza cero quedan con escala 1 para no dividir por cero.
func fitScaler(rows [][]float64) *featureScaler {
	cols := len(featureNames)
	s := &featureScaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	n := float64(len(rows))
	for j := 0; j < cols; j++ {
		var sum float64
		for _, r := range rows {
			sum += r[j]
		}
		mean := sum / n
		var ss float64
		for _, r := range rows {
			d := r[j] - mean
			ss += d * d
		}
		s.Mean[j] = mean
		s.Scale[j] = sqrtOrOne(ss / n)
	}
	return s
}

func sqrtOrOne(variance float64) float64 {
	if variance <= 0 {
		return 1
	}
	return math.Sqrt(variance)
}

func (s *featureScaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

func (s *featureScaler) transformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.transform(r)
	}
	return out
}
