// Package acceleration provides fixed-point acceleration schemes applied to
// exchanged coupling data between non-converged sub-iterations.
package acceleration

import (
	"sort"

	"github.com/cosimlab/tandem/cplscheme"
)

// sortedKeys returns the merged map's keys in deterministic (data id, role)
// order, so the concatenated fixed-point vector is stable across calls.
func sortedKeys(data cplscheme.MergedDataMap) []cplscheme.MergedKey {
	keys := make([]cplscheme.MergedKey, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DataID != keys[j].DataID {
			return keys[i].DataID < keys[j].DataID
		}
		return keys[i].Role < keys[j].Role
	})

	return keys
}

// concatenate builds the fixed-point residual vector spanning all entries,
// current minus previous iteration.
func concatenate(
	data cplscheme.MergedDataMap,
	keys []cplscheme.MergedKey,
) []float64 {
	var residual []float64

	for _, key := range keys {
		d := data[key]
		prev := d.PreviousIteration()
		for i, v := range d.Values {
			residual = append(residual, v-prev[i])
		}
	}

	return residual
}
