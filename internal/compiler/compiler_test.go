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

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colbuild/serde/schema"
)

func field(name string, dt schema.DataType, nullable bool, children ...*schema.Field) *schema.Field {
	return &schema.Field{Name: name, DataType: dt, Nullable: nullable, Children: children}
}

// TestCompileFlatStructAllocatesOneBufferPerLeaf checks that a simple
// two-field struct lowers to a program whose entry is an OuterSeqStart and
// whose leaf fields each own a distinct buffer.
func TestCompileFlatStructAllocatesOneBufferPerLeaf(t *testing.T) {
	root := field("", schema.Struct, false,
		field("a", schema.I32, false),
		field("b", schema.Utf8, true),
	)
	prog, buf, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)
	require.NotNil(t, prog)

	assert.Equal(t, OpOuterSeqStart, prog.Instrs[prog.Entry].Op)
	assert.Len(t, buf.I32, 1)
	assert.Len(t, buf.Utf8, 1)
	assert.Len(t, buf.Bits, 1) // b's validity bit
}

// TestCompileNullableFieldSharesContinuationAcrossBothBranches verifies
// the continuation-passing design: OptionMarker's Next (present path) and
// IfNone (absent path) must both resolve to the same struct-loop pc, since
// either way exactly one field slot is consumed.
func TestCompileNullableFieldSharesContinuationAcrossBothBranches(t *testing.T) {
	root := field("", schema.Struct, false, field("a", schema.I8, true))
	prog, _, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)

	var marker *Instr
	for _, in := range prog.Instrs {
		if in.Op == OpOptionMarker {
			marker = in
		}
	}
	require.NotNil(t, marker)

	// Walk from marker.Next (PushNum) forward; it must land on the same
	// pc as marker.IfNone once the value instruction completes.
	pushPC := -1
	for pc, in := range prog.Instrs {
		if in.Op == OpPushNum {
			pushPC = pc
		}
	}
	require.NotEqual(t, -1, pushPC)
	assert.Equal(t, marker.IfNone, prog.Instrs[pushPC].Next)
}

// TestCompileListAllocatesOffsets32ByDefault checks that a List field
// (not LargeList) gets a 32-bit offsets buffer and that the loop
// instruction's ElemEntry points at the element's compiled entry.
func TestCompileListAllocatesOffsets32ByDefault(t *testing.T) {
	root := field("", schema.Struct, false,
		field("xs", schema.List, false, field("element", schema.Bool, false)),
	)
	prog, buf, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)
	assert.Len(t, buf.Offsets32, 1)
	assert.Empty(t, buf.Offsets64)

	var loop *Instr
	for _, in := range prog.Instrs {
		if in.Op == OpListLoop {
			loop = in
		}
	}
	require.NotNil(t, loop)
	assert.Equal(t, OpPushBool, prog.Instrs[loop.ElemEntry].Op)
}

// TestCompileMapAllocatesKeyStringAndOffsets64 checks Map's layout:
// a key string buffer plus an Offsets64 entry-count buffer, independent
// of the value type's own width.
func TestCompileMapAllocatesKeyStringAndOffsets64(t *testing.T) {
	root := field("", schema.Struct, false,
		field("m", schema.Map, false,
			field("key", schema.Utf8, false),
			field("value", schema.I64, false),
		),
	)
	_, buf, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)
	assert.Len(t, buf.Utf8, 1)
	assert.Len(t, buf.Offsets64, 1)
	assert.Len(t, buf.I64, 1)
}

// TestCompileMapMissingValueChildFails checks the structural precondition
// that Map fields always carry both "key" and "value" children.
func TestCompileMapMissingValueChildFails(t *testing.T) {
	root := field("", schema.Struct, false,
		field("m", schema.Map, false, field("key", schema.Utf8, false)),
	)
	_, _, err := Compile(&schema.FieldTree{Root: root})
	assert.Error(t, err)
}

// TestCompileUnionSharesContinuationAcrossVariants checks that every
// variant of a Union lowers with the union's own cont, so control
// reconverges after any variant's payload without a separate UnionEnd op.
func TestCompileUnionSharesContinuationAcrossVariants(t *testing.T) {
	root := field("", schema.Struct, false,
		field("u", schema.Union, false,
			field("A", schema.I32, false),
			field("B", schema.Utf8, false),
		),
	)
	prog, _, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)

	var start *Instr
	for _, in := range prog.Instrs {
		if in.Op == OpUnionStart {
			start = in
		}
	}
	require.NotNil(t, start)
	require.Len(t, start.VariantEntry, 2)

	aNext := prog.Instrs[start.VariantEntry[0]].Next
	bNext := prog.Instrs[start.VariantEntry[1]].Next
	assert.Equal(t, aNext, bNext)
}

// TestCompileTupleStrategyMarksStructLoopPositional checks that a Struct
// field carrying StrategyTuple compiles with TuplePosition set, so the
// interpreter accepts bare Item events instead of Keys.
func TestCompileTupleStrategyMarksStructLoopPositional(t *testing.T) {
	tuple := field("t", schema.Struct, false,
		field("0", schema.I32, false),
		field("1", schema.Bool, false),
	)
	tuple.Strategy = schema.StrategyTuple
	root := field("", schema.Struct, false, tuple)

	prog, _, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)

	found := false
	for _, in := range prog.Instrs {
		if in.Op == OpStructLoop && in.TuplePosition {
			found = true
		}
	}
	assert.True(t, found)
}

// TestCompileAlwaysNullFieldEmitsTrap checks that a field the tracer
// could never attach evidence to (DataType Null) compiles to a Panic
// instruction rather than silently accepting events.
func TestCompileAlwaysNullFieldEmitsTrap(t *testing.T) {
	root := field("", schema.Struct, false, field("ghost", schema.Null, true))
	prog, _, err := Compile(&schema.FieldTree{Root: root})
	require.NoError(t, err)

	found := false
	for _, in := range prog.Instrs {
		if in.Op == OpPanic {
			found = true
		}
	}
	assert.True(t, found)
}
