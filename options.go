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

package serde

import "github.com/colbuild/serde/schema"

// TraceOptions is the fully-resolved configuration for [TraceSchema].
type TraceOptions = schema.TraceOptions

// DefaultTraceOptions returns the tracer's default configuration:
// MapAsStruct enabled, everything else disabled.
func DefaultTraceOptions() TraceOptions { return schema.DefaultTraceOptions() }

// TraceOption configures [TraceSchema] / [TraceSchemaAsField].
type TraceOption struct{ apply func(*TraceOptions) }

// WithAllowNullFields sets [TraceOptions.AllowNullFields].
func WithAllowNullFields(allow bool) TraceOption {
	return TraceOption{func(o *TraceOptions) { o.AllowNullFields = allow }}
}

// WithMapAsStruct sets [TraceOptions.MapAsStruct].
func WithMapAsStruct(enable bool) TraceOption {
	return TraceOption{func(o *TraceOptions) { o.MapAsStruct = enable }}
}

// WithStringDictionaryEncoding sets [TraceOptions.StringDictionaryEncoding].
func WithStringDictionaryEncoding(enable bool) TraceOption {
	return TraceOption{func(o *TraceOptions) { o.StringDictionaryEncoding = enable }}
}

// WithCoerceNumbers sets [TraceOptions.CoerceNumbers].
func WithCoerceNumbers(enable bool) TraceOption {
	return TraceOption{func(o *TraceOptions) { o.CoerceNumbers = enable }}
}

// WithGuessDates sets [TraceOptions.GuessDates].
func WithGuessDates(enable bool) TraceOption {
	return TraceOption{func(o *TraceOptions) { o.GuessDates = enable }}
}

// resolveTraceOptions applies opts over the defaults.
func resolveTraceOptions(opts []TraceOption) TraceOptions {
	o := DefaultTraceOptions()
	for _, opt := range opts {
		if opt.apply != nil {
			opt.apply(&o)
		}
	}
	return o
}

// BuildOptions is the fully-resolved configuration for [BuildColumns] /
// [BuildColumn].
type BuildOptions struct {
	// Context is accepted for the caller's own correlation; the build
	// does not read it, and no [BuildContext] is allocated when it is
	// unset.
	Context *BuildContext
}

// BuildOption configures [BuildColumns] / [BuildColumn].
type BuildOption struct{ apply func(*BuildOptions) }

// WithBuildContext supplies a pre-built [BuildContext].
func WithBuildContext(ctx *BuildContext) BuildOption {
	return BuildOption{func(o *BuildOptions) { o.Context = ctx }}
}

func resolveBuildOptions(opts []BuildOption) BuildOptions {
	var o BuildOptions
	for _, opt := range opts {
		if opt.apply != nil {
			opt.apply(&o)
		}
	}
	return o
}

// DecodeOptions is the fully-resolved configuration for [DecodeColumns].
type DecodeOptions struct {
	// Context is accepted for the caller's own correlation; the decode
	// pass does not read it.
	Context *BuildContext
}

// DecodeOption configures [DecodeColumns].
type DecodeOption struct{ apply func(*DecodeOptions) }

// WithDecodeContext supplies a pre-built [BuildContext] to a decode pass.
func WithDecodeContext(ctx *BuildContext) DecodeOption {
	return DecodeOption{func(o *DecodeOptions) { o.Context = ctx }}
}

func resolveDecodeOptions(opts []DecodeOption) DecodeOptions {
	var o DecodeOptions
	for _, opt := range opts {
		if opt.apply != nil {
			opt.apply(&o)
		}
	}
	return o
}
