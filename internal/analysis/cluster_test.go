package analysis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoGroups returns ten respondents strong in the first dimension and ten
// strong in the second.
func twoGroups() [][]float64 {
	var out [][]float64
	for i := 0; i < 10; i++ {
		j := float64(i) * 0.05
		out = append(out, []float64{4.5 + j, 1.5 - j})
	}
	for i := 0; i < 10; i++ {
		j := float64(i) * 0.05
		out = append(out, []float64{1.5 + j, 4.5 - j})
	}
	return out
}

func TestCluster(t *testing.T) {
	names := []string{"Leadership", "Engagement"}

	res := Cluster(twoGroups(), names, DefaultConfig())

	require.True(t, res.Available)
	assert.Equal(t, 2, res.K)
	assert.Greater(t, res.Silhouette, 0.8)
	require.Len(t, res.Clusters, 2)

	var profiles []string
	for _, c := range res.Clusters {
		assert.Equal(t, 10, c.Size)
		assert.Equal(t, 50.0, c.Percentage)
		profiles = append(profiles, c.Profile)
	}
	assert.ElementsMatch(t, []string{
		"Strong in Leadership, needs improvement in Engagement",
		"Strong in Engagement, needs improvement in Leadership",
	}, profiles)

	for k := 2; k <= 6; k++ {
		assert.Contains(t, res.Inertia, k)
	}
}

func TestClusterCentroidsInScoreUnits(t *testing.T) {
	res := Cluster(twoGroups(), []string{"Leadership", "Engagement"}, DefaultConfig())
	require.True(t, res.Available)

	for _, c := range res.Clusters {
		if c.Strongest == "Leadership" {
			assert.InDelta(t, 4.725, c.Centroid["Leadership"], 0.01)
			assert.InDelta(t, 1.275, c.Centroid["Engagement"], 0.01)
		}
	}
}

func TestClusterDeterministic(t *testing.T) {
	m, s := surveyData(t, 120, 4)
	dims, _ := s.Resolve(m)
	data := collectDimensions(m, dims)
	vectors := respondentVectors(data)
	names := dimensionNames(data)

	first := Cluster(vectors, names, DefaultConfig())
	second := Cluster(vectors, names, DefaultConfig())

	require.True(t, first.Available)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Clusters, second.Clusters)
	assert.Equal(t, first.Silhouette, second.Silhouette)
}

func TestClusterDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float64
		names   []string
	}{
		{"no vectors", nil, []string{"a"}},
		{"no dimensions", [][]float64{{}, {}}, nil},
		{"only missing values", [][]float64{{nan}, {nan}, {nan}}, []string{"a"}},
		{"fewer respondents than clusters", [][]float64{{1}, {2}}, []string{"a"}},
		{"identical respondents", repeatRows([]float64{3, 4}, 10), []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Cluster(tt.vectors, tt.names, DefaultConfig())
			assert.False(t, res.Available)
			assert.Empty(t, res.Clusters)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func repeatRows(row []float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func TestClusterFewDistinctProfiles(t *testing.T) {
	vectors := append(repeatRows([]float64{1, 2}, 6), repeatRows([]float64{4, 5}, 4)...)

	res := Cluster(vectors, []string{"a", "b"}, DefaultConfig())

	require.True(t, res.Available)
	assert.Equal(t, 2, res.K)
	assert.Equal(t, map[int]float64{2: 0}, res.Inertia)
	require.Len(t, res.Clusters, 2)
	for _, c := range res.Clusters {
		assert.NotZero(t, c.Size)
		assert.NotEmpty(t, c.Profile)
	}
}

func TestSeedCentersStopsAtDistinctPoints(t *testing.T) {
	points := append(repeatRows([]float64{0, 0}, 5), repeatRows([]float64{1, 1}, 5)...)

	centers := seedCenters(points, 4, rand.New(rand.NewSource(1)))

	require.Len(t, centers, 2)
	assert.NotEqual(t, centers[0], centers[1])
}

func TestCompactDropsEmptyClusters(t *testing.T) {
	fit := compact(kmeansFit{
		k:           3,
		assignments: []int{0, 2, 2, 0},
		centers:     [][]float64{{0}, {5}, {9}},
	})

	assert.Equal(t, 2, fit.k)
	assert.Equal(t, []int{0, 1, 1, 0}, fit.assignments)
	assert.Equal(t, [][]float64{{0}, {9}}, fit.centers)
}

func TestSilhouette(t *testing.T) {
	points := [][]float64{{0}, {0.1}, {10}, {10.1}}

	good := Silhouette(points, []int{0, 0, 1, 1}, 2)
	bad := Silhouette(points, []int{0, 1, 0, 1}, 2)

	assert.Greater(t, good, 0.9)
	assert.Less(t, bad, 0.0)
	assert.Equal(t, 0.0, Silhouette(nil, nil, 2))
}
