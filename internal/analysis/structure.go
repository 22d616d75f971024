package analysis

import (
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// Dimension is a named construct measured by a fixed set of items.
type Dimension struct {
	Name  string   `json:"name" yaml:"name"`
	Items []string `json:"items" yaml:"items"`
}

// DimensionStructure is the ordered theoretical model of the instrument.
type DimensionStructure struct {
	dims []Dimension
}

// NewDimensionStructure validates names and item lists. Items may repeat
// across dimensions but not within one.
func NewDimensionStructure(dims []Dimension) (*DimensionStructure, error) {
	if len(dims) == 0 {
		return nil, apperrors.NewUpstreamDataError("dimension structure is empty", nil)
	}

	seen := make(map[string]struct{}, len(dims))
	out := make([]Dimension, 0, len(dims))
	for i, d := range dims {
		if d.Name == "" {
			return nil, apperrors.NewUpstreamDataError("dimension without a name", map[string]interface{}{"position": i})
		}
		if _, dup := seen[d.Name]; dup {
			return nil, apperrors.NewUpstreamDataError("duplicate dimension name", map[string]interface{}{"dimension": d.Name})
		}
		seen[d.Name] = struct{}{}

		if len(d.Items) == 0 {
			return nil, apperrors.NewUpstreamDataError("dimension has no items", map[string]interface{}{"dimension": d.Name})
		}
		items := make(map[string]struct{}, len(d.Items))
		for _, id := range d.Items {
			if id == "" {
				return nil, apperrors.NewUpstreamDataError("empty item identifier", map[string]interface{}{"dimension": d.Name})
			}
			if _, dup := items[id]; dup {
				return nil, apperrors.NewUpstreamDataError("item listed twice in dimension", map[string]interface{}{
					"dimension": d.Name,
					"item":      id,
				})
			}
			items[id] = struct{}{}
		}
		out = append(out, Dimension{Name: d.Name, Items: append([]string(nil), d.Items...)})
	}
	return &DimensionStructure{dims: out}, nil
}

// Dimensions returns a copy of the dimensions in declaration order.
func (s *DimensionStructure) Dimensions() []Dimension {
	out := make([]Dimension, len(s.dims))
	for i, d := range s.dims {
		out[i] = Dimension{Name: d.Name, Items: append([]string(nil), d.Items...)}
	}
	return out
}

// Len returns the number of dimensions.
func (s *DimensionStructure) Len() int { return len(s.dims) }

// Resolve splits the structure into dimensions fully present in m and
// dimensions with at least one absent item.
func (s *DimensionStructure) Resolve(m *ResponseMatrix) ([]Dimension, []SkippedDimension) {
	var scorable []Dimension
	var skipped []SkippedDimension
	for _, d := range s.Dimensions() {
		var missing []string
		for _, id := range d.Items {
			if !m.Has(id) {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			skipped = append(skipped, SkippedDimension{Name: d.Name, MissingItems: missing})
			continue
		}
		scorable = append(scorable, d)
	}
	return scorable, skipped
}

// distinctItems returns every item of dims once, first occurrence order.
func distinctItems(dims []Dimension) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range dims {
		for _, id := range d.Items {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
