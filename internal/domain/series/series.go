// Package series implementa la serie diaria de demanda: la estructura que
// consumen el análisis de patrones, el pronóstico y el stock de seguridad.
// Invariantes: fechas contiguas (sin huecos de calendario) y estrictamente
// crecientes; los días sin ventas valen 0.
package series

import (
	"time"

	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// DailyPoint es un día de demanda agregada.
type DailyPoint struct {
	Date     time.Time
	Quantity float64
}

// Daily es una serie de demanda diaria con huecos rellenados en cero.
type Daily struct {
	Start  time.Time // primer día calendario (UTC, medianoche)
	Values []float64 // una entrada por día, contigua desde Start
}

// Len devuelve el número de días de la serie.
func (s Daily) Len() int { return len(s.Values) }

// Date devuelve la fecha calendario de la posición i.
func (s Daily) Date(i int) time.Time { return s.Start.AddDate(0, 0, i) }

// End devuelve la fecha del último día (cero si la serie está vacía).
func (s Daily) End() time.Time {
	if len(s.Values) == 0 {
		return time.Time{}
	}
	return s.Date(len(s.Values) - 1)
}

// Total devuelve la suma de demanda de toda la serie.
func (s Daily) Total() float64 {
	var t float64
	for _, v := range s.Values {
		t += v
	}
	return t
}

// Truncate normaliza una fecha a día calendario UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Build agrega puntos (posiblemente varios por día, posiblemente desordenados)
// en una serie diaria contigua desde el primer hasta el último día observado.
// Devuelve ErrInsufficientData si no hay puntos.
func Build(points []DailyPoint) (Daily, error) {
	if len(points) == 0 {
		return Daily{}, domain.ErrInsufficientData
	}

	byDay := make(map[time.Time]float64, len(points))
	var first, last time.Time
	for i, p := range points {
		day := Truncate(p.Date)
		byDay[day] += p.Quantity
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
	}

	n := int(last.Sub(first).Hours()/24) + 1
	s := Daily{Start: first, Values: make([]float64, n)}
	for day, q := range byDay {
		idx := int(day.Sub(first).Hours() / 24)
		s.Values[idx] = q
	}
	return s, nil
}

// BuildRange agrega puntos en una serie contigua sobre un rango fijo [from, to].
// Los días del rango sin observaciones quedan en 0.
func BuildRange(points []DailyPoint, from, to time.Time) (Daily, error) {
	from, to = Truncate(from), Truncate(to)
	if to.Before(from) {
		return Daily{}, domain.ErrInvalidParam
	}
	n := int(to.Sub(from).Hours()/24) + 1
	s := Daily{Start: from, Values: make([]float64, n)}
	for _, p := range points {
		day := Truncate(p.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		idx := int(day.Sub(from).Hours() / 24)
		s.Values[idx] += p.Quantity
	}
	return s, nil
}
