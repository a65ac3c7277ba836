package retriever

import "sort"

// SatelliteList holds the catalog numbers of one named list, ascending,
// deduplicated and positive.
type SatelliteList struct {
	Numbers []int
}

// NewSatelliteList normalizes numbers: non-positive placeholders are
// dropped, the rest sorted and deduplicated. The input is not modified.
func NewSatelliteList(numbers []int) SatelliteList {
	sorted := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n > 0 {
			sorted = append(sorted, n)
		}
	}
	sort.Ints(sorted)

	unique := sorted[:0]
	for i, n := range sorted {
		if i > 0 && n == sorted[i-1] {
			continue
		}
		unique = append(unique, n)
	}
	return SatelliteList{Numbers: unique}
}

// Empty reports whether there is nothing to query for the list.
func (l SatelliteList) Empty() bool {
	return len(l.Numbers) == 0
}

// Lists maps list names to their catalog numbers.
type Lists map[string]SatelliteList

// Names returns the list names in ascending order.
func (l Lists) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
