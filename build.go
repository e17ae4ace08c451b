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

import (
	"fmt"

	"github.com/colbuild/serde/internal/compiler"
	"github.com/colbuild/serde/internal/vm"
)

// BuildColumns compiles tree into a bytecode program (internal/compiler)
// and runs records through it (internal/vm), returning one [Array] per
// top-level field. tree.Root must be a Struct, the shape every record
// stream's items take.
func BuildColumns(tree *FieldTree, records RecordStream, opts ...BuildOption) ([]Array, error) {
	resolveBuildOptions(opts)
	if tree.Root.DataType != Struct {
		return nil, fmt.Errorf("serde: BuildColumns requires a Struct root field, got %s", tree.Root.DataType)
	}

	prog, buf, err := compiler.Compile(tree)
	if err != nil {
		return nil, err
	}
	interp := vm.New(prog, buf)
	if err := records(interp); err != nil {
		return nil, err
	}
	if err := interp.Finalize(); err != nil {
		return nil, err
	}

	arrays := make([]Array, len(tree.Root.Children))
	for i, f := range tree.Root.Children {
		arrays[i] = &builtArray{field: f, buf: buf}
	}
	return arrays, nil
}

// BuildColumn is [BuildColumns] for a single field traced in isolation
// (as from [TraceSchemaAsField]): records still frames each item with
// the usual StartSequence/Item/EndSequence loop, but each item is
// field's own value directly rather than a struct's worth of fields.
func BuildColumn(field *Field, records RecordStream, opts ...BuildOption) (Array, error) {
	resolveBuildOptions(opts)
	tree := &FieldTree{Root: field}

	prog, buf, err := compiler.Compile(tree)
	if err != nil {
		return nil, err
	}
	interp := vm.New(prog, buf)
	if err := records(interp); err != nil {
		return nil, err
	}
	if err := interp.Finalize(); err != nil {
		return nil, err
	}
	return &builtArray{field: field, buf: buf}, nil
}
