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

import "github.com/colbuild/serde/internal/tracer"

// TraceSchema observes records once, inferring the [FieldTree] that
// describes every record's shape. Each item records emits must be a
// well-nested span (a struct, a scalar, a list — whatever shape the
// stream settles on); TraceSchema merges every item's inferred shape
// against the running root, failing with a [SchemaConflictError] if two
// items disagree in a way [TraceOption]s don't reconcile.
func TraceSchema(records RecordStream, opts ...TraceOption) (*FieldTree, error) {
	o := resolveTraceOptions(opts)
	t := tracer.New(o)
	if err := records(t); err != nil {
		return nil, err
	}
	return t.Finalize()
}

// TraceSchemaAsField is [TraceSchema] for a single named field rather
// than a record stream of structs: each item is the field's own value
// directly, and the returned [Field] carries name instead of being
// wrapped in a synthetic outer struct.
func TraceSchemaAsField(records RecordStream, name string, opts ...TraceOption) (*Field, error) {
	o := resolveTraceOptions(opts)
	o.AsField = name
	t := tracer.New(o)
	if err := records(t); err != nil {
		return nil, err
	}
	tree, err := t.Finalize()
	if err != nil {
		return nil, err
	}
	return tree.Root, nil
}
