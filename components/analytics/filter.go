package analytics

import (
	"math"
	"slices"
)

// ApplyDistributionFilter keeps the entries whose category equals filter. A nil
// filter returns dist unchanged.
func ApplyDistributionFilter(dist []DistributionEntry, filter *int) []DistributionEntry {
	if filter == nil {
		return dist
	}
	want := float64(*filter)
	out := make([]DistributionEntry, 0, 1)
	for _, entry := range dist {
		if entry.Category == want {
			out = append(out, entry)
		}
	}
	return out
}

// Apply narrows both distributions of ds with the active selection.
func (f FilterSelection) Apply(ds ExploratoryDataset) (bedrooms, bathrooms []DistributionEntry) {
	return ApplyDistributionFilter(ds.BedroomDistribution, f.Bedroom),
		ApplyDistributionFilter(ds.BathroomDistribution, f.Bathroom)
}

// FilterOptions lists the whole-number categories of dist, ascending. Only
// those can be matched by an integer filter.
func FilterOptions(dist []DistributionEntry) []int {
	seen := make(map[int]struct{}, len(dist))
	out := make([]int, 0, len(dist))
	for _, entry := range dist {
		if math.Trunc(entry.Category) != entry.Category || math.IsInf(entry.Category, 0) {
			continue
		}
		v := int(entry.Category)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
