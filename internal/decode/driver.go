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

package decode

import (
	"fmt"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

// ctx carries the same monotonically increasing buffer-id allocator
// internal/compiler and internal/builders each define independently;
// decode needs its own third copy because it walks a tree that was
// already laid out by one of those two packages and must recompute the
// identical id sequence to find each field's data again. The three
// walks only agree because all three visit a field's children in the
// same order (nullable: inner before its validity bit; list: offsets
// before element; struct: children in field order; map: key, then
// offsets, then value; union: type id, then variants in order) — see
// DESIGN.md for why this is safe rather than coincidental.
type ctx struct {
	buf  *buffers.Set
	next int
}

func (c *ctx) alloc() buffers.ID {
	id := buffers.ID(c.next)
	c.next++
	return id
}

// NewDriver lays out tree against buf (which must already have been
// filled by a compiled program or a builder automaton using that exact
// tree) and returns a driver ready to replay it as an event stream.
func NewDriver(tree *schema.FieldTree, buf *buffers.Set) (*Driver, error) {
	c := &ctx{buf: buf}
	root, err := build(c, tree.Root)
	if err != nil {
		return nil, err
	}
	return &Driver{root: root}, nil
}

// Driver replays a filled [buffers.Set] as a well-nested [schema.Event]
// stream, framing every record with StartSequence/Item/EndSequence at
// depth 0, matching the shape [schema.RecordStream] itself produces.
type Driver struct {
	root Cursor
}

// Run pushes the full event stream for every record into sink.
func (d *Driver) Run(sink schema.EventSink) error {
	n := d.root.Len()
	if err := sink.Accept(schema.EvStartSequence); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := sink.Accept(schema.EvItem); err != nil {
			return err
		}
		if err := d.root.Emit(sink); err != nil {
			return err
		}
	}
	return sink.Accept(schema.EvEndSequence)
}

func build(c *ctx, f *schema.Field) (Cursor, error) {
	if f.Nullable {
		return buildNullable(c, f)
	}
	return buildValue(c, f)
}

func buildNullable(c *ctx, f *schema.Field) (Cursor, error) {
	nonNull := f.Clone()
	nonNull.Nullable = false
	inner, err := buildValue(c, nonNull)
	if err != nil {
		return nil, err
	}
	validityID := c.alloc()
	return &nullableCursor{validity: c.buf.Bits[validityID], inner: inner}, nil
}

func buildValue(c *ctx, f *schema.Field) (Cursor, error) {
	switch f.DataType {
	case schema.Bool:
		id := c.alloc()
		return &boolCursor{buf: c.buf.Bits[id]}, nil

	case schema.I8, schema.I16, schema.I32, schema.I64,
		schema.U8, schema.U16, schema.U32, schema.U64, schema.F32, schema.F64:
		id := c.alloc()
		return &numCursor{dt: f.DataType, buf: c.buf, id: id}, nil

	case schema.Utf8:
		id := c.alloc()
		return &strCursor32{s: c.buf.Utf8[id]}, nil

	case schema.LargeUtf8:
		id := c.alloc()
		return &strCursor64{s: c.buf.LargeUtf8[id]}, nil

	case schema.Date64:
		id := c.alloc()
		return &dateCursor{buf: c.buf.I64[id], strategy: f.Strategy}, nil

	case schema.Dictionary:
		dictID, idxID := c.alloc(), c.alloc()
		return &dictCursor{dict: c.buf.Dictionary[dictID], idx: c.buf.U64[idxID]}, nil

	case schema.List, schema.LargeList:
		return buildList(c, f)

	case schema.Struct:
		return buildStruct(c, f)

	case schema.Map:
		return buildMap(c, f)

	case schema.Union:
		return buildUnion(c, f)

	case schema.Null:
		id := c.alloc()
		return &nullOnlyCursor{n: c.buf.NullCounts[id]}, nil

	default:
		return nil, fmt.Errorf("decode: unsupported data type %s", f.DataType)
	}
}

func buildList(c *ctx, f *schema.Field) (Cursor, error) {
	wide := f.DataType == schema.LargeList
	offsetsID := c.alloc()

	elem := f.Child("element")
	if elem == nil {
		return nil, fmt.Errorf("decode: list field %q missing element child", f.Name)
	}
	elemCursor, err := build(c, elem)
	if err != nil {
		return nil, err
	}

	var offs []int64
	if wide {
		offs = c.buf.Offsets64[offsetsID].Data()
	} else {
		offs = widen32(c.buf.Offsets32[offsetsID].Data())
	}
	return &listCursor{offsets: offs, elem: elemCursor}, nil
}

func buildStruct(c *ctx, f *schema.Field) (Cursor, error) {
	fields := make([]structField, 0, len(f.Children))
	for _, child := range f.Children {
		cur, err := build(c, child)
		if err != nil {
			return nil, err
		}
		fields = append(fields, structField{name: child.Name, cursor: cur})
	}
	return &structCursor{fields: fields, tuple: f.Strategy == schema.StrategyTuple}, nil
}

func buildMap(c *ctx, f *schema.Field) (Cursor, error) {
	key := f.Child("key")
	val := f.Child("value")
	if key == nil || val == nil {
		return nil, fmt.Errorf("decode: map field %q missing key/value children", f.Name)
	}
	keyWide := key.DataType == schema.LargeUtf8
	keyID := c.alloc()
	offsetsID := c.alloc()

	valCursor, err := build(c, val)
	if err != nil {
		return nil, err
	}

	mc := &mapCursor{offsets: c.buf.Offsets64[offsetsID].Data(), val: valCursor}
	if keyWide {
		mc.keyL = &strCursor64{s: c.buf.LargeUtf8[keyID]}
	} else {
		mc.key = &strCursor32{s: c.buf.Utf8[keyID]}
	}
	return mc, nil
}

func buildUnion(c *ctx, f *schema.Field) (Cursor, error) {
	typeID := c.alloc()
	variants := make([]Cursor, len(f.Children))
	names := make([]string, len(f.Children))
	for i, variant := range f.Children {
		cur, err := build(c, variant)
		if err != nil {
			return nil, err
		}
		variants[i] = cur
		names[i] = variant.Name
	}
	return &unionCursor{typeIDs: c.buf.I8[typeID], variants: variants, names: names}, nil
}

func widen32(xs []int32) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

// nullOnlyCursor stands in for a field the tracer only ever saw as
// null (always wrapped by a nullableCursor, so its own Emit only ever
// runs against the discard sink, advancing past the filler the null
// recipe wrote without surfacing anything).
type nullOnlyCursor struct {
	n *buffers.NullCount
}

func (c *nullOnlyCursor) Emit(sink schema.EventSink) error { return sink.Accept(schema.EvNull) }
func (c *nullOnlyCursor) Len() int                         { return c.n.Len() }
