// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"math"
	"sort"
)

// Percentile returns p-th percentile (0..100) of values using linear interpolation between
// closest ranks. Interpolated values are rounded to 2 decimal places. p outside of the range
// is clamped to it. Values are not modified.
func Percentile(values []float64, p float64) float64 {
	switch {
	case p < 0 || math.IsNaN(p):
		p = 0
	case p > 100:
		p = 100
	}

	switch len(values) {
	case 0:
		return 0
	case 1:
		return values[0]
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := p / 100 * float64(len(sorted)-1)
	lower := math.Floor(index)
	if index == lower {
		return sorted[int(index)]
	}

	upper := math.Ceil(index)
	weight := index - lower
	result := sorted[int(lower)] + (sorted[int(upper)]-sorted[int(lower)])*weight
	return Round(result, 2)
}
