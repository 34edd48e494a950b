package cluster

import (
	"cmp"
	"context"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

// Linkage criteria.
const (
	LinkageWard     = "ward"
	LinkageAverage  = "average"
	LinkageComplete = "complete"
	LinkageSingle   = "single"
)

// Agglomerative is bottom-up hierarchical clustering over euclidean
// distances. It merges the closest pair of clusters until k remain.
type Agglomerative struct {
	Linkage string
}

// NewAgglomerative validates the linkage (ward if empty).
func NewAgglomerative(linkage string) (*Agglomerative, error) {
	switch linkage {
	case "":
		linkage = LinkageWard
	case LinkageWard, LinkageAverage, LinkageComplete, LinkageSingle:
	default:
		return nil, errs.Configuration("cluster.NewAgglomerative", "unknown linkage %q", linkage)
	}
	return &Agglomerative{Linkage: linkage}, nil
}

// Cluster returns one label per vector. With fewer vectors than k every
// vector gets its own label.
//
// Merges are found with the nearest-neighbour chain, which is exact for
// the reducible linkages offered here and needs O(n²) time and a condensed
// n(n-1)/2 distance matrix.
func (a *Agglomerative) Cluster(ctx context.Context, vectors [][]float64, k int) ([]int, error) {
	const op = "cluster.Agglomerative"
	if err := validateK(op, k); err != nil {
		return nil, err
	}
	n := len(vectors)
	if n == 0 {
		return nil, nil
	}
	for i, v := range vectors {
		if len(v) != len(vectors[0]) {
			return nil, errs.Invariant(op, "vector %d has dim %d, want %d", i, len(v), len(vectors[0]))
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, errs.Invariant(op, "vector %d has a non-finite component", i)
			}
		}
	}
	if k >= n {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		return Relabel(ids), nil
	}

	// Ward works on squared distances so that the Lance-Williams update
	// is exact.
	dist := newCondensed(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(vectors[i], vectors[j], 2)
			if a.Linkage == LinkageWard {
				d *= d
			}
			dist.set(i, j, d)
		}
	}

	size := make([]int, n)
	active := make([]bool, n)
	for i := range size {
		size[i] = 1
		active[i] = true
	}

	merges := make([]merge, 0, n-1)
	chain := make([]int, 0, n)
	for len(merges) < n-1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(chain) == 0 {
			for i := range active {
				if active[i] {
					chain = append(chain, i)
					break
				}
			}
		}

		// grow the chain until its top two are mutual nearest neighbours
		var c, prev int
		for {
			c, prev = chain[len(chain)-1], -1
			nn, best := -1, 0.0
			if len(chain) > 1 {
				prev = chain[len(chain)-2]
				nn, best = prev, dist.at(c, prev)
			}
			for m := range active {
				if !active[m] || m == c || m == prev {
					continue
				}
				if d := dist.at(c, m); nn < 0 || d < best {
					nn, best = m, d
				}
			}
			if nn == prev {
				break
			}
			chain = append(chain, nn)
		}
		chain = chain[:len(chain)-2]

		i, j := min(c, prev), max(c, prev)
		dij := dist.at(i, j)
		for m := range active {
			if !active[m] || m == i || m == j {
				continue
			}
			dist.set(i, m, a.update(dist.at(i, m), dist.at(j, m), dij, size[i], size[j], size[m]))
		}
		size[i] += size[j]
		active[j] = false
		merges = append(merges, merge{a: i, b: j, height: dij})
	}

	// The chain emits merges out of order; replaying the n-k lowest ones
	// gives the k-cluster cut of the dendrogram.
	slices.SortStableFunc(merges, func(x, y merge) int { return cmp.Compare(x.height, y.height) })
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, m := range merges[:n-k] {
		parent[find(m.b)] = find(m.a)
	}
	label := make([]int, n)
	for i := range label {
		label[i] = find(i)
	}
	return Relabel(label), nil
}

type merge struct {
	a, b   int
	height float64
}

// condensed is the upper triangle of a symmetric distance matrix.
type condensed struct {
	n int
	d []float64
}

func newCondensed(n int) *condensed {
	return &condensed{n: n, d: make([]float64, n*(n-1)/2)}
}

func (c *condensed) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return c.n*i - i*(i+1)/2 + j - i - 1
}

func (c *condensed) at(i, j int) float64 { return c.d[c.index(i, j)] }

// set stores d, saturating overflowed or undefined distances so that
// comparisons stay ordered.
func (c *condensed) set(i, j int, d float64) {
	if math.IsNaN(d) || d > math.MaxFloat64 {
		d = math.MaxFloat64
	}
	c.d[c.index(i, j)] = d
}

// update is the Lance-Williams recurrence for the distance between the
// merged cluster (i+j) and cluster m.
func (a *Agglomerative) update(dim, djm, dij float64, ni, nj, nm int) float64 {
	switch a.Linkage {
	case LinkageSingle:
		return math.Min(dim, djm)
	case LinkageComplete:
		return math.Max(dim, djm)
	case LinkageAverage:
		fi, fj := float64(ni), float64(nj)
		return (fi*dim + fj*djm) / (fi + fj)
	default:
		fi, fj, fm := float64(ni), float64(nj), float64(nm)
		t := fi + fj + fm
		return ((fi+fm)*dim + (fj+fm)*djm - fm*dij) / t
	}
}
