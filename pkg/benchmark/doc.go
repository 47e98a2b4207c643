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

// Package benchmark runs configured groups of weighted HTTP test cases with an external
// load generator and aggregates their statistics into one result.
//
// Groups always run one after another in declared order. Cases of a group run
// concurrently (parallel mode) or one by one (sequential mode), each with its share of
// group threads and connections derived from its weight.
package benchmark
