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
	"fmt"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

type compiler struct {
	buf    *buffers.Set
	nextID int
	instrs []*Instr
}

func (c *compiler) alloc() buffers.ID {
	id := buffers.ID(c.nextID)
	c.nextID++
	return id
}

// emit appends a placeholder instruction and returns its pc; callers
// fill in the returned *Instr's fields once they know the jump targets
// that depend on instructions compiled after it.
func (c *compiler) emit(op Op) (int, *Instr) {
	in := &Instr{Op: op}
	c.instrs = append(c.instrs, in)
	return len(c.instrs) - 1, in
}

// withPath returns a fresh path with seg appended, never mutating path
// itself (every Instr keeps its own slice once compiled).
func withPath(path []string, seg string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = seg
	return p
}

// Compile lowers tree into a [Program] and the [buffers.Set] it writes
// into, per §4.4. The program drives exactly one streaming pass: feed it
// a RecordStream's events in order, then read the finished buffers out
// of the returned Set.
func Compile(tree *schema.FieldTree) (*Program, *buffers.Set, error) {
	c := &compiler{buf: buffers.NewSet()}

	endPC, _ := c.emit(OpProgramEnd)
	loopPC, loopIn := c.emit(OpOuterSeqLoop)
	startPC, startIn := c.emit(OpOuterSeqStart)
	startIn.Next = loopPC

	itemEntry, _, err := c.lower(tree.Root, loopPC, nil)
	if err != nil {
		return nil, nil, err
	}
	loopIn.Next = endPC
	loopIn.ElemEntry = itemEntry

	return &Program{Instrs: c.instrs, Entry: startPC}, c.buf, nil
}

// lower compiles f, returning the pc of its first instruction and the
// null recipe that zero-fills f's entire representation (its own
// validity bit if nullable, plus every descendant buffer) — the form an
// enclosing nullable ancestor needs when it, not f, receives Null.
func (c *compiler) lower(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	if f.Nullable {
		return c.lowerNullable(f, cont, path)
	}
	return c.lowerValue(f, cont, path)
}

func (c *compiler) lowerNullable(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	nonNull := f.Clone()
	nonNull.Nullable = false
	valueEntry, childRecipe, err := c.lowerValue(nonNull, cont, path)
	if err != nil {
		return 0, nil, err
	}

	validityID := c.alloc()
	c.buf.NewBit(validityID)

	recipe := append([]NullOp{pushBitFalse(validityID)}, childRecipe...)

	markerPC, marker := c.emit(OpOptionMarker)
	marker.ValidityID = validityID
	marker.Recipe = recipe
	marker.IfNone = cont
	marker.Next = valueEntry
	marker.Path = path
	return markerPC, recipe, nil
}

func (c *compiler) lowerValue(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	switch f.DataType {
	case schema.Bool:
		id := c.alloc()
		c.buf.NewBit(id)
		pc, in := c.emit(OpPushBool)
		in.BufID, in.Next, in.Path = id, cont, path
		return pc, []NullOp{pushBitFalse(id)}, nil

	case schema.I8, schema.I16, schema.I32, schema.I64,
		schema.U8, schema.U16, schema.U32, schema.U64, schema.F32, schema.F64:
		id := c.allocNumeric(f.DataType)
		pc, in := c.emit(OpPushNum)
		in.BufID, in.DataType, in.Next, in.Path = id, f.DataType, cont, path
		return pc, []NullOp{pushNumZero(f.DataType, id)}, nil

	case schema.Utf8, schema.LargeUtf8:
		bits := 32
		if f.DataType == schema.LargeUtf8 {
			bits = 64
		}
		id := c.allocString(bits)
		pc, in := c.emit(OpPushStr)
		in.BufID, in.Bits, in.Next, in.Path = id, bits, cont, path
		return pc, []NullOp{pushStrEmpty(id, bits)}, nil

	case schema.Date64:
		id := c.alloc()
		c.buf.NewI64(id)
		pc, in := c.emit(OpPushDateFromStr)
		in.BufID, in.Strategy, in.Next, in.Path = id, f.Strategy, cont, path
		return pc, []NullOp{pushNumZero(schema.I64, id)}, nil

	case schema.Dictionary:
		dictID, idxID := c.alloc(), c.alloc()
		c.buf.NewDictionary(dictID)
		c.buf.NewU64(idxID)
		pc, in := c.emit(OpPushDict)
		in.DictID, in.IdxID, in.Next, in.Path = dictID, idxID, cont, path
		return pc, []NullOp{pushDictDefault(dictID, idxID)}, nil

	case schema.List, schema.LargeList:
		return c.lowerList(f, cont, path)

	case schema.Struct:
		return c.lowerStruct(f, cont, path)

	case schema.Map:
		return c.lowerMap(f, cont, path)

	case schema.Union:
		return c.lowerUnion(f, cont, path)

	case schema.Null:
		id := c.alloc()
		c.buf.NewNullCount(id)
		pc, in := c.emit(OpPanic)
		in.NullCountID = id
		in.Msg = fmt.Sprintf("field %q is always-null; no value event should ever reach it", f.Name)
		in.Path = path
		return pc, []NullOp{pushNullCountInc(id)}, nil

	default:
		return 0, nil, fmt.Errorf("compiler: unsupported data type %s", f.DataType)
	}
}

func (c *compiler) allocNumeric(dt schema.DataType) buffers.ID {
	id := c.alloc()
	switch dt {
	case schema.I8:
		c.buf.NewI8(id)
	case schema.I16:
		c.buf.NewI16(id)
	case schema.I32:
		c.buf.NewI32(id)
	case schema.I64:
		c.buf.NewI64(id)
	case schema.U8:
		c.buf.NewU8(id)
	case schema.U16:
		c.buf.NewU16(id)
	case schema.U32:
		c.buf.NewU32(id)
	case schema.U64:
		c.buf.NewU64(id)
	case schema.F32:
		c.buf.NewF32(id)
	case schema.F64:
		c.buf.NewF64(id)
	}
	return id
}

func (c *compiler) allocString(bits int) buffers.ID {
	id := c.alloc()
	if bits == 64 {
		c.buf.NewLargeUtf8(id)
	} else {
		c.buf.NewUtf8(id)
	}
	return id
}

func (c *compiler) lowerList(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	bits := 32
	if f.DataType == schema.LargeList {
		bits = 64
	}
	offsetsID := c.alloc()
	if bits == 64 {
		c.buf.NewOffsets64(offsetsID)
	} else {
		c.buf.NewOffsets32(offsetsID)
	}

	startPC, startIn := c.emit(OpListStart)
	loopPC, loopIn := c.emit(OpListLoop)
	startIn.Next = loopPC
	startIn.Path = path

	elem := f.Child("element")
	if elem == nil {
		return 0, nil, fmt.Errorf("compiler: list field %q missing element child", f.Name)
	}
	elemEntry, _, err := c.lower(elem, loopPC, withPath(path, "element"))
	if err != nil {
		return 0, nil, err
	}
	loopIn.BufID, loopIn.Bits, loopIn.ElemEntry, loopIn.Next = offsetsID, bits, elemEntry, cont
	loopIn.Path = path

	return startPC, []NullOp{pushOffsetsEmpty(offsetsID, bits)}, nil
}

func (c *compiler) lowerStruct(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	startPC, startIn := c.emit(OpStructStart)
	loopPC, loopIn := c.emit(OpStructLoop)
	startIn.Next = loopPC
	startIn.Path = path

	fields := make(map[string]int, len(f.Children))
	var recipe []NullOp
	for _, child := range f.Children {
		entry, rec, err := c.lower(child, loopPC, withPath(path, child.Name))
		if err != nil {
			return 0, nil, err
		}
		fields[child.Name] = entry
		recipe = append(recipe, rec...)
	}
	loopIn.Fields = fields
	loopIn.Next = cont
	loopIn.TuplePosition = f.Strategy == schema.StrategyTuple
	loopIn.Path = path

	return startPC, recipe, nil
}

func (c *compiler) lowerMap(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	key := f.Child("key")
	val := f.Child("value")
	if key == nil || val == nil {
		return 0, nil, fmt.Errorf("compiler: map field %q missing key/value children", f.Name)
	}
	keyBits := 32
	if key.DataType == schema.LargeUtf8 {
		keyBits = 64
	}
	keyID := c.allocString(keyBits)
	offsetsID := c.alloc()
	c.buf.NewOffsets64(offsetsID)

	startPC, startIn := c.emit(OpMapStart)
	loopPC, loopIn := c.emit(OpMapLoop)
	startIn.Next = loopPC
	startIn.Path = path

	valEntry, _, err := c.lower(val, loopPC, withPath(path, "value"))
	if err != nil {
		return 0, nil, err
	}
	loopIn.KeyBufID = keyID
	loopIn.Bits = keyBits
	loopIn.BufID = offsetsID
	loopIn.ElemEntry = valEntry
	loopIn.Next = cont
	loopIn.Path = path

	return startPC, []NullOp{pushOffsetsEmpty(offsetsID, 64)}, nil
}

func (c *compiler) lowerUnion(f *schema.Field, cont int, path []string) (int, []NullOp, error) {
	typeID := c.alloc()
	c.buf.NewI8(typeID)

	startPC, startIn := c.emit(OpUnionStart)
	startIn.TypeBufID = typeID
	startIn.VariantEntry = make(map[int]int, len(f.Children))
	startIn.Path = path

	var recipe []NullOp
	for idx, variant := range f.Children {
		entry, rec, err := c.lower(variant, cont, withPath(path, variant.Name))
		if err != nil {
			return 0, nil, err
		}
		startIn.VariantEntry[idx] = entry
		recipe = append(recipe, rec...)
	}
	recipe = append([]NullOp{pushI8Zero(typeID)}, recipe...)
	return startPC, recipe, nil
}
