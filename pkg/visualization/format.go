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

package visualization

import (
	"fmt"
)

// FormatNumber shortens large numbers with K and M suffixes.
func FormatNumber(n float64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.2fM", n/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.2fK", n/1000)
	}
	return fmt.Sprintf("%.2f", n)
}

// FormatMilliseconds prints latency given in milliseconds.
func FormatMilliseconds(ms float64) string {
	return fmt.Sprintf("%.2fms", ms)
}

// FormatRate prints fraction as percentage.
func FormatRate(fraction float64) string {
	return FormatPercentage(fraction * 100)
}

// FormatPercentage prints value which already is a percentage.
func FormatPercentage(percentage float64) string {
	return fmt.Sprintf("%.2f%%", percentage)
}

// FormatMegabytes prints bytes as megabytes.
func FormatMegabytes(bytes int64) string {
	return fmt.Sprintf("%.2fMB", float64(bytes)/1024/1024)
}
