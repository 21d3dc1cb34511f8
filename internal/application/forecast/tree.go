package forecast

import (
	"math/rand"
	"sort"
)

// Hiperparámetros del ensamble, fijos para que el entrenamiento sea
// reproducible entre corridas.
const (
	forestTrees     = 100
	treeMaxDepth    = 10
	minSamplesSplit = 2
	forestSeed      = 42
)

// treeNode es un nodo del árbol de regresión en layout plano. Left y Right
// son índices dentro de regressionTree.Nodes; -1 marca una hoja. El layout
// plano evita punteros nulos, que gob no serializa.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// regressionTree es un árbol CART de regresión con Nodes[0] como raíz.
type regressionTree struct {
	Nodes []treeNode
}

func (t *regressionTree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// forest es un ensamble de árboles bagging: cada árbol entrena sobre una
// muestra bootstrap y la predicción es el promedio del ensamble.
type forest struct {
	Trees       []regressionTree
	Importances []float64 // por índice de feature, normalizadas a suma 1
}

func (f *forest) predict(row []float64) float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(row)
	}
	return sum / float64(len(f.Trees))
}

// trainForest entrena el ensamble con semilla fija. Las importancias
// acumulan la reducción de suma de cuadrados aportada por cada feature.
func trainForest(x [][]float64, y []float64, seed int64) *forest {
	rng := rand.New(rand.NewSource(seed))
	f := &forest{
		Trees:       make([]regressionTree, 0, forestTrees),
		Importances: make([]float64, len(featureNames)),
	}
	n := len(y)
	for t := 0; t < forestTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		b := &treeBuilder{x: x, y: y, importances: f.Importances}
		b.grow(idx, 0)
		f.Trees = append(f.Trees, regressionTree{Nodes: b.nodes})
	}
	var total float64
	for _, v := range f.Importances {
		total += v
	}
	if total > 0 {
		for i := range f.Importances {
			f.Importances[i] /= total
		}
	}
	return f
}

type treeBuilder struct {
	x           [][]float64
	y           []float64
	nodes       []treeNode
	importances []float64
}

// grow construye el subárbol sobre idx y devuelve el índice del nodo creado.
func (b *treeBuilder) grow(idx []int, depth int) int {
	mean, sse := meanSSE(b.y, idx)

	self := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Feature: -1, Left: -1, Right: -1, Value: mean})

	if depth >= treeMaxDepth || len(idx) < minSamplesSplit || sse == 0 {
		return self
	}

	feature, threshold, gain, ok := bestSplit(b.x, b.y, idx, sse)
	if !ok {
		return self
	}
	b.importances[feature] += gain

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.nodes[self].Feature = feature
	b.nodes[self].Threshold = threshold
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self].Left = l
	b.nodes[self].Right = r
	return self
}

// bestSplit busca el corte (feature, umbral) que más reduce la suma de
// cuadrados. Ordena las muestras por cada feature y barre los cortes con
// sumas acumuladas.
func bestSplit(x [][]float64, y []float64, idx []int, parentSSE float64) (feature int, threshold, gain float64, ok bool) {
	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(idx))

	order := make([]int, len(idx))
	for j := 0; j < len(x[idx[0]]); j++ {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool { return x[order[a]][j] < x[order[c]][j] })

		var leftSum, leftSq float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			// Los cortes solo valen entre valores distintos de la feature.
			if x[i][j] == x[order[k+1]][j] {
				continue
			}

			nl := float64(k + 1)
			nr := n - nl
			leftSSE := leftSq - leftSum*leftSum/nl
			rightSum := totalSum - leftSum
			rightSSE := (totalSq - leftSq) - rightSum*rightSum/nr
			if g := parentSSE - leftSSE - rightSSE; g > gain {
				gain = g
				feature = j
				threshold = (x[i][j] + x[order[k+1]][j]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, gain, ok
}

func meanSSE(y []float64, idx []int) (mean, sse float64) {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	mean = sum / float64(len(idx))
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}
