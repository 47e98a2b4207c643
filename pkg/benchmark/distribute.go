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

package benchmark

import (
	"math"
	"sort"
)

// Weight is a named traffic share in percents.
type Weight struct {
	Name   string
	Weight float64
}

func weightsOf(tests []ApiTestConfig) []Weight {
	weights := make([]Weight, 0, len(tests))
	for _, test := range tests {
		weights = append(weights, Weight{Name: test.Name, Weight: test.Weight})
	}
	return weights
}

// Distribute splits total across weighted names with largest remainder method.
// Every name gets floor of its exact share, then the remainder is handed out one by one
// to names ordered by weight descending (declaration order breaks ties). When weights sum
// slightly above 100, surplus is taken back one by one starting from the lightest name.
// Sum of the result always equals total and zero weight always gets 0.
func Distribute(weights []Weight, total int) (map[string]int, error) {
	if total <= 0 {
		return nil, configurationErrorf("total to distribute must be greater than 0, got %d", total)
	}
	for _, weight := range weights {
		if weight.Weight < 0 || weight.Weight > 100 || math.IsNaN(weight.Weight) {
			return nil, configurationErrorf("weight of %q must be between 0 and 100, got %v", weight.Name, weight.Weight)
		}
	}
	if err := validateWeights(weights, ""); err != nil {
		return nil, err
	}

	distribution := make(map[string]int, len(weights))
	allocated := 0
	for _, weight := range weights {
		share := int(math.Floor(weight.Weight / 100 * float64(total)))
		distribution[weight.Name] = share
		allocated += share
	}

	sorted := make([]Weight, 0, len(weights))
	for _, weight := range weights {
		if weight.Weight > 0 {
			sorted = append(sorted, weight)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	for remainder, i := total-allocated, 0; remainder > 0 && len(sorted) > 0; remainder, i = remainder-1, i+1 {
		distribution[sorted[i%len(sorted)].Name]++
	}

	// Weights summing above 100 may allocate more than total.
	for excess, i := allocated-total, len(sorted)-1; excess > 0 && len(sorted) > 0; i-- {
		if i < 0 {
			i = len(sorted) - 1
		}
		name := sorted[i].Name
		if distribution[name] == 0 {
			continue
		}
		distribution[name]--
		excess--
	}

	return distribution, nil
}

// share returns part of total given by weight, never less than 1.
func share(total int, weight float64) int {
	part := int(math.Floor(float64(total) * weight / 100))
	if part < 1 {
		return 1
	}
	return part
}
