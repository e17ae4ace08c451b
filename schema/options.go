// Copyright 2020-2025 Buf Technologies, Inc.
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

package schema

// TraceOptions is the fully-resolved configuration for a tracing pass
// (§4.3). It lives in package schema, rather than behind the root
// package's functional-option wrapper, so that package internal/tracer
// can depend on it directly without importing the root package.
type TraceOptions struct {
	// AllowNullFields permits a field that is never observed with a
	// non-null value to finalize as Null rather than failing.
	AllowNullFields bool
	// MapAsStruct, when the first evidence for a field is a StartMap
	// whose keys are subsequently stable, finalizes it as a Struct
	// with strategy MapAsStruct instead of a Map. Default true.
	MapAsStruct bool
	// StringDictionaryEncoding finalizes Utf8/LargeUtf8 leaves as
	// Dictionary(U64, LargeUtf8).
	StringDictionaryEncoding bool
	// CoerceNumbers widens mismatched numeric observations of a field
	// instead of failing (see the tracer's merge lattice).
	CoerceNumbers bool
	// GuessDates tests string values against the two accepted
	// timestamp patterns and finalizes matching columns as Date64.
	GuessDates bool
	// AsField, if non-empty, traces a single field's worth of values
	// rather than a sequence of struct records.
	AsField string
}

// DefaultTraceOptions returns the tracer's default configuration:
// MapAsStruct enabled, everything else disabled.
func DefaultTraceOptions() TraceOptions {
	return TraceOptions{MapAsStruct: true}
}
