package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"
)

// Período estacional semanal y cantidad de observaciones que consume la
// doble diferenciación (d=1 regular + D=1 estacional de período 7).
const (
	seasonalPeriod = 7
	diffLoss       = seasonalPeriod + 1
)

// sarimaParams son los coeficientes del modelo (1,1,1)×(1,1,1,7):
// AR y MA regulares, AR y MA estacionales.
type sarimaParams struct {
	Phi    float64
	Theta  float64
	SPhi   float64
	STheta float64
}

// sarimaModel es el artefacto entrenado: coeficientes más la serie de
// entrenamiento, necesaria para arrancar la recursión del pronóstico.
type sarimaModel struct {
	Start     time.Time
	Values    []float64
	Params    sarimaParams
	MAE       float64
	RMSE      float64
	TrainedAt time.Time
}

// fitSARIMA ajusta los coeficientes minimizando la suma condicional de
// cuadrados de los residuos con Nelder-Mead. Los coeficientes fuera de la
// región |c| < 0.99 se descartan con una penalización grande en lugar de
// imponer estacionariedad, igual que un ajuste sin restricciones duras.
func fitSARIMA(values []float64, start, trainedAt time.Time) (*sarimaModel, error) {
	w := doubleDifference(values)

	objective := func(v []float64) float64 {
		for _, c := range v {
			if a := math.Abs(c); a >= 0.99 {
				return 1e12 * a
			}
		}
		e := cssResiduals(w, sarimaParams{v[0], v[1], v[2], v[3]})
		var ss float64
		for _, r := range e {
			ss += r * r
		}
		return ss
	}

	problem := optimize.Problem{Func: objective}
	initial := []float64{0.1, 0.1, 0.1, 0.1}
	result, err := optimize.Minimize(problem, initial, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("minimización CSS: %w", err)
	}
	p := sarimaParams{result.X[0], result.X[1], result.X[2], result.X[3]}

	m := &sarimaModel{
		Start:     start,
		Values:    append([]float64(nil), values...),
		Params:    p,
		TrainedAt: trainedAt,
	}
	m.MAE, m.RMSE = m.inSampleFit(w)
	return m, nil
}

// inSampleFit evalúa el ajuste con predicciones a un paso sobre la muestra.
// Los primeros días que consume la diferenciación quedan fuera.
func (m *sarimaModel) inSampleFit(w []float64) (mae, rmse float64) {
	e := cssResiduals(w, m.Params)
	n := float64(len(e))
	if n == 0 {
		return 0, 0
	}
	var absSum, sqSum float64
	for _, r := range e {
		absSum += math.Abs(r)
		sqSum += r * r
	}
	return absSum / n, math.Sqrt(sqSum / n)
}

// forecast proyecta h días integrando la recursión sobre la serie
// diferenciada; los residuos futuros se toman como cero.
func (m *sarimaModel) forecast(h int) []float64 {
	y := append([]float64(nil), m.Values...)
	w := doubleDifference(y)
	e := cssResiduals(w, m.Params)
	p := m.Params

	out := make([]float64, 0, h)
	for k := 0; k < h; k++ {
		t := len(w)
		pred := p.Phi*w[t-1] + p.Theta*e[t-1] +
			p.SPhi*w[t-seasonalPeriod] + p.STheta*e[t-seasonalPeriod] -
			p.Phi*p.SPhi*w[t-diffLoss] + p.Theta*p.STheta*e[t-diffLoss]
		w = append(w, pred)
		e = append(e, 0)

		// Deshace la doble diferenciación: y[T] = w + y[T-1] + y[T-7] - y[T-8].
		n := len(y)
		next := pred + y[n-1] + y[n-seasonalPeriod] - y[n-diffLoss]
		y = append(y, next)
		out = append(out, math.Max(next, 0))
	}
	return out
}

func (m *sarimaModel) end() time.Time {
	return m.Start.AddDate(0, 0, len(m.Values)-1)
}

// doubleDifference aplica la diferencia regular y la estacional de lag 7:
// w[t] = y[t] - y[t-1] - y[t-7] + y[t-8].
func doubleDifference(y []float64) []float64 {
	w := make([]float64, 0, len(y)-diffLoss)
	for t := diffLoss; t < len(y); t++ {
		w = append(w, y[t]-y[t-1]-y[t-seasonalPeriod]+y[t-diffLoss])
	}
	return w
}

// cssResiduals computa los residuos de la recursión ARMA sobre la serie
// diferenciada, con residuos y observaciones previas al inicio en cero.
func cssResiduals(w []float64, p sarimaParams) []float64 {
	e := make([]float64, len(w))
	for t := range w {
		var pred float64
		if t >= 1 {
			pred += p.Phi*w[t-1] + p.Theta*e[t-1]
		}
		if t >= seasonalPeriod {
			pred += p.SPhi*w[t-seasonalPeriod] + p.STheta*e[t-seasonalPeriod]
		}
		if t >= diffLoss {
			pred += -p.Phi*p.SPhi*w[t-diffLoss] + p.Theta*p.STheta*e[t-diffLoss]
		}
		e[t] = w[t] - pred
	}
	return e
}
