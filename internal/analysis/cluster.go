package analysis

import (
	"fmt"
	"math"
	"math/rand"
)

type kmeansFit struct {
	k           int
	assignments []int
	centers     [][]float64
	inertia     float64
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func nearest(p []float64, centers [][]float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for c, ctr := range centers {
		if d := sqDist(p, ctr); d < bestD {
			best, bestD = c, d
		}
	}
	return best, bestD
}

// seedCenters picks up to k initial centers with k-means++. It returns fewer
// when the points hold fewer than k distinct positions.
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), points[rng.Intn(len(points))]...))
	dist := make([]float64, len(points))
	for len(centers) < k {
		var total float64
		for i, p := range points {
			_, d := nearest(p, centers)
			dist[i] = d
			total += d
		}
		if total == 0 {
			break
		}
		idx := -1
		target := rng.Float64() * total
		for i, d := range dist {
			if d == 0 {
				continue
			}
			idx = i
			target -= d
			if target <= 0 {
				break
			}
		}
		centers = append(centers, append([]float64(nil), points[idx]...))
	}
	return centers
}

func lloyd(points [][]float64, centers [][]float64, maxIter int) kmeansFit {
	k, dims := len(centers), len(points[0])
	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < maxIter; it++ {
		changed := false
		for i, p := range points {
			c, _ := nearest(p, centers)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			counts[assign[i]]++
			for j, v := range p {
				sums[assign[i]][j] += v
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centers[assign[i]])
	}
	return compact(kmeansFit{k: k, assignments: assign, centers: centers, inertia: inertia})
}

// compact drops clusters no point was assigned to and renumbers the rest.
func compact(fit kmeansFit) kmeansFit {
	counts := make([]int, fit.k)
	for _, c := range fit.assignments {
		counts[c]++
	}
	remap := make([]int, fit.k)
	var centers [][]float64
	for c, n := range counts {
		remap[c] = len(centers)
		if n > 0 {
			centers = append(centers, fit.centers[c])
		}
	}
	if len(centers) == fit.k {
		return fit
	}
	for i, c := range fit.assignments {
		fit.assignments[i] = remap[c]
	}
	fit.k, fit.centers = len(centers), centers
	return fit
}

// distinctRows counts the different vectors among rows.
func distinctRows(rows [][]float64) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[fmt.Sprint(r)] = struct{}{}
	}
	return len(seen)
}

func kmeans(points [][]float64, k int, cfg Config) kmeansFit {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(k)))
	var best kmeansFit
	for r := 0; r < cfg.ClusterRestarts; r++ {
		fit := lloyd(points, seedCenters(points, k, rng), cfg.MaxIterations)
		if r == 0 || fit.inertia < best.inertia {
			best = fit
		}
	}
	return best
}

// Silhouette is the mean over points of (b-a)/max(a,b). Points alone in their
// cluster score 0.
func Silhouette(points [][]float64, assignments []int, k int) float64 {
	if len(points) == 0 {
		return 0
	}
	sizes := make([]int, k)
	for _, c := range assignments {
		sizes[c]++
	}

	var total float64
	for i, p := range points {
		own := assignments[i]
		if sizes[own] < 2 {
			continue
		}
		sums := make([]float64, k)
		for j, q := range points {
			if i == j {
				continue
			}
			sums[assignments[j]] += math.Sqrt(sqDist(p, q))
		}
		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			b = math.Min(b, sums[c]/float64(sizes[c]))
		}
		if math.IsInf(b, 1) {
			continue
		}
		if d := math.Max(a, b); d > 0 {
			total += (b - a) / d
		}
	}
	return total / float64(len(points))
}

// Cluster groups respondent vectors of dimension means. Vectors with a missing
// value are left out. The k with the highest silhouette wins, ties going to
// the smaller k.
func Cluster(vectors [][]float64, names []string, cfg Config) ClusterResult {
	res := ClusterResult{Clusters: []ClusterProfile{}}

	var rows [][]float64
	for _, v := range vectors {
		ok := len(v) == len(names)
		for _, x := range v {
			if math.IsNaN(x) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, v)
		}
	}
	n := len(rows)
	if n == 0 || len(names) == 0 {
		res.Reason = "no usable dimension vectors"
		return res
	}
	if n < cfg.MinClusters+1 {
		res.Reason = fmt.Sprintf("clustering needs at least %d complete respondents", cfg.MinClusters+1)
		return res
	}

	distinct := distinctRows(rows)
	if distinct < cfg.MinClusters {
		res.Reason = fmt.Sprintf("clustering needs at least %d distinct respondent profiles, found %d", cfg.MinClusters, distinct)
		return res
	}

	cols := make([][]float64, len(names))
	for j := range names {
		cols[j] = make([]float64, n)
		for i, r := range rows {
			cols[j][i] = r[j]
		}
	}
	z := Standardize(cols)
	points := make([][]float64, n)
	for i := range points {
		points[i] = make([]float64, len(names))
		for j := range names {
			points[i][j] = z[j][i]
		}
	}

	kMax := min(cfg.MaxClusters, n-1, distinct)
	res.Inertia = make(map[int]float64)
	var best kmeansFit
	bestScore := math.Inf(-1)
	for k := cfg.MinClusters; k <= kMax; k++ {
		fit := kmeans(points, k, cfg)
		if fit.k < cfg.MinClusters {
			continue
		}
		score := Silhouette(points, fit.assignments, fit.k)
		res.Inertia[k] = round3(fit.inertia)
		if score > bestScore {
			best, bestScore = fit, score
		}
	}
	if best.k == 0 {
		res.Reason = "respondent profiles collapse into fewer clusters than the configured minimum"
		return res
	}

	res.Available = true
	res.K = best.k
	res.Silhouette = round3(bestScore)
	res.Assignments = best.assignments
	res.Clusters = profileClusters(rows, names, best)
	return res
}

func profileClusters(rows [][]float64, names []string, fit kmeansFit) []ClusterProfile {
	profiles := make([]ClusterProfile, 0, fit.k)
	for c := 0; c < fit.k; c++ {
		sums := make([]float64, len(names))
		size := 0
		for i, r := range rows {
			if fit.assignments[i] != c {
				continue
			}
			size++
			for j, v := range r {
				sums[j] += v
			}
		}

		p := ClusterProfile{
			Label:      fmt.Sprintf("Cluster_%d", c),
			Size:       size,
			Percentage: round2(float64(size) / float64(len(rows)) * 100),
			Centroid:   make(map[string]float64, len(names)),
		}
		if size > 0 {
			hi, lo := 0, 0
			for j := range names {
				sums[j] /= float64(size)
				p.Centroid[names[j]] = round2(sums[j])
				if sums[j] > sums[hi] {
					hi = j
				}
				if sums[j] < sums[lo] {
					lo = j
				}
			}
			p.Strongest, p.Weakest = names[hi], names[lo]
			p.Profile = fmt.Sprintf("Strong in %s, needs improvement in %s", p.Strongest, p.Weakest)
		}
		profiles = append(profiles, p)
	}
	return profiles
}
