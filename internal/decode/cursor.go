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

// Package decode implements §4.7: the reverse path, walking a finished
// [buffers.Set] back into a well-nested [schema.Event] stream. Every
// built column is replayed by a [Cursor] (Emit/Len); [Driver] steps the
// root struct's cursor one record at a time.
package decode

import (
	"time"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

const (
	naiveLayout = "2006-01-02T15:04:05"
	utcLayout   = "2006-01-02T15:04:05Z"
)

// Cursor emits exactly one value's worth of events into sink and
// advances past it; Len reports the total number of values the cursor
// will ever emit (its underlying buffer's length), used once by [Driver]
// to learn the record count from the root struct's first field.
type Cursor interface {
	Emit(sink schema.EventSink) error
	Len() int
}

// discard swallows every event; used to advance a cursor past a value
// (e.g. a null recipe's filler) without surfacing it.
var discard = schema.EventSinkFunc(func(schema.Event) error { return nil })

type boolCursor struct {
	buf *buffers.Bit
	pos int
}

func (c *boolCursor) Emit(sink schema.EventSink) error {
	v := c.buf.Get(c.pos)
	c.pos++
	return sink.Accept(schema.EventBool(v))
}
func (c *boolCursor) Len() int { return c.buf.Len() }

type numCursor struct {
	dt  schema.DataType
	buf *buffers.Set
	id  buffers.ID
	pos int
}

func (c *numCursor) Emit(sink schema.EventSink) error {
	i := c.pos
	c.pos++
	switch c.dt {
	case schema.I8:
		return sink.Accept(schema.EventInt(schema.KindI8, int64(c.buf.I8[c.id].Data()[i])))
	case schema.I16:
		return sink.Accept(schema.EventInt(schema.KindI16, int64(c.buf.I16[c.id].Data()[i])))
	case schema.I32:
		return sink.Accept(schema.EventInt(schema.KindI32, int64(c.buf.I32[c.id].Data()[i])))
	case schema.I64:
		return sink.Accept(schema.EventInt(schema.KindI64, c.buf.I64[c.id].Data()[i]))
	case schema.U8:
		return sink.Accept(schema.EventUint(schema.KindU8, uint64(c.buf.U8[c.id].Data()[i])))
	case schema.U16:
		return sink.Accept(schema.EventUint(schema.KindU16, uint64(c.buf.U16[c.id].Data()[i])))
	case schema.U32:
		return sink.Accept(schema.EventUint(schema.KindU32, uint64(c.buf.U32[c.id].Data()[i])))
	case schema.U64:
		return sink.Accept(schema.EventUint(schema.KindU64, c.buf.U64[c.id].Data()[i]))
	case schema.F32:
		return sink.Accept(schema.EventF32(c.buf.F32[c.id].Data()[i]))
	case schema.F64:
		return sink.Accept(schema.EventF64(c.buf.F64[c.id].Data()[i]))
	default:
		return sink.Accept(schema.EventInt(schema.KindI64, 0))
	}
}
func (c *numCursor) Len() int { return numLen(c.dt, c.buf, c.id) }

func numLen(dt schema.DataType, buf *buffers.Set, id buffers.ID) int {
	switch dt {
	case schema.I8:
		return buf.I8[id].Len()
	case schema.I16:
		return buf.I16[id].Len()
	case schema.I32:
		return buf.I32[id].Len()
	case schema.I64:
		return buf.I64[id].Len()
	case schema.U8:
		return buf.U8[id].Len()
	case schema.U16:
		return buf.U16[id].Len()
	case schema.U32:
		return buf.U32[id].Len()
	case schema.U64:
		return buf.U64[id].Len()
	case schema.F32:
		return buf.F32[id].Len()
	case schema.F64:
		return buf.F64[id].Len()
	default:
		return 0
	}
}

type strCursor32 struct {
	s   *buffers.String[int32]
	pos int
}

func (c *strCursor32) Emit(sink schema.EventSink) error {
	offs := c.s.Offsets.Data()
	start, end := offs[c.pos], offs[c.pos+1]
	c.pos++
	return sink.Accept(schema.EventStr(string(c.s.Data[start:end])))
}
func (c *strCursor32) Len() int { return c.s.Len() }

type strCursor64 struct {
	s   *buffers.String[int64]
	pos int
}

func (c *strCursor64) Emit(sink schema.EventSink) error {
	offs := c.s.Offsets.Data()
	start, end := offs[c.pos], offs[c.pos+1]
	c.pos++
	return sink.Accept(schema.EventStr(string(c.s.Data[start:end])))
}
func (c *strCursor64) Len() int { return c.s.Len() }

type dateCursor struct {
	buf      *buffers.Primitive[int64]
	strategy schema.Strategy
	pos      int
}

func (c *dateCursor) Emit(sink schema.EventSink) error {
	millis := c.buf.Data()[c.pos]
	c.pos++
	layout := naiveLayout
	if c.strategy == schema.StrategyUtcStrAsDate64 {
		layout = utcLayout
	}
	s := time.UnixMilli(millis).UTC().Format(layout)
	return sink.Accept(schema.EventStr(s))
}
func (c *dateCursor) Len() int { return c.buf.Len() }

type dictCursor struct {
	dict *buffers.Dictionary
	idx  *buffers.Primitive[uint64]
	pos  int
}

func (c *dictCursor) Emit(sink schema.EventSink) error {
	i := c.idx.Data()[c.pos]
	c.pos++
	offs := c.dict.Values.Offsets.Data()
	start, end := offs[i], offs[i+1]
	return sink.Accept(schema.EventStr(string(c.dict.Values.Data[start:end])))
}
func (c *dictCursor) Len() int { return c.idx.Len() }

// nullableCursor wraps any Cursor with a validity bit; an absent value
// still advances inner past the filler the null recipe wrote, so
// downstream columns never drift out of lockstep.
type nullableCursor struct {
	validity *buffers.Bit
	inner    Cursor
	pos      int
}

func (c *nullableCursor) Emit(sink schema.EventSink) error {
	present := c.validity.Get(c.pos)
	c.pos++
	if !present {
		if err := c.inner.Emit(discard); err != nil {
			return err
		}
		return sink.Accept(schema.EvNull)
	}
	if err := sink.Accept(schema.EvSome); err != nil {
		return err
	}
	return c.inner.Emit(sink)
}
func (c *nullableCursor) Len() int { return c.validity.Len() }

// listCursor expands one row's worth of elements via its offsets,
// driving one shared element cursor sequentially across every row.
type listCursor struct {
	offsets []int64
	elem    Cursor
	pos     int
}

func (c *listCursor) Emit(sink schema.EventSink) error {
	start, end := c.offsets[c.pos], c.offsets[c.pos+1]
	c.pos++
	if err := sink.Accept(schema.EvStartSequence); err != nil {
		return err
	}
	for i := start; i < end; i++ {
		if err := sink.Accept(schema.EvItem); err != nil {
			return err
		}
		if err := c.elem.Emit(sink); err != nil {
			return err
		}
	}
	return sink.Accept(schema.EvEndSequence)
}
func (c *listCursor) Len() int { return len(c.offsets) - 1 }

type structField struct {
	name   string
	cursor Cursor
}

// structCursor emits StartStruct/Key.../EndStruct, or the Tuple wire
// form (StartTuple/Item.../EndTuple) when its field carries
// schema.StrategyTuple, restoring the original tuple shape rather than
// the Struct-with-numeric-keys form it is stored as.
type structCursor struct {
	fields []structField
	tuple  bool
}

func (c *structCursor) Emit(sink schema.EventSink) error {
	start, end := schema.EvStartStruct, schema.EvEndStruct
	if c.tuple {
		start, end = schema.EvStartTuple, schema.EvEndTuple
	}
	if err := sink.Accept(start); err != nil {
		return err
	}
	for _, f := range c.fields {
		if c.tuple {
			if err := sink.Accept(schema.EvItem); err != nil {
				return err
			}
		} else if err := sink.Accept(schema.EventKey(f.name)); err != nil {
			return err
		}
		if err := f.cursor.Emit(sink); err != nil {
			return err
		}
	}
	return sink.Accept(end)
}
func (c *structCursor) Len() int {
	if len(c.fields) == 0 {
		return 0
	}
	return c.fields[0].cursor.Len()
}

// mapCursor expands one row's entries via its offsets, emitting a
// Key event for each key string followed by its value cursor's emit.
type mapCursor struct {
	offsets []int64
	key     *strCursor32
	keyL    *strCursor64
	val     Cursor
	pos     int
}

func (c *mapCursor) nextKey() string {
	if c.key != nil {
		offs := c.key.s.Offsets.Data()
		start, end := offs[c.key.pos], offs[c.key.pos+1]
		c.key.pos++
		return string(c.key.s.Data[start:end])
	}
	offs := c.keyL.s.Offsets.Data()
	start, end := offs[c.keyL.pos], offs[c.keyL.pos+1]
	c.keyL.pos++
	return string(c.keyL.s.Data[start:end])
}

func (c *mapCursor) Emit(sink schema.EventSink) error {
	start, end := c.offsets[c.pos], c.offsets[c.pos+1]
	c.pos++
	if err := sink.Accept(schema.EvStartMap); err != nil {
		return err
	}
	for i := start; i < end; i++ {
		if err := sink.Accept(schema.EventKey(c.nextKey())); err != nil {
			return err
		}
		if err := c.val.Emit(sink); err != nil {
			return err
		}
	}
	return sink.Accept(schema.EvEndMap)
}
func (c *mapCursor) Len() int { return len(c.offsets) - 1 }

// unionCursor reads the type-id buffer to pick which variant's cursor
// handles each value, emitting Variant(name, index) ahead of it.
type unionCursor struct {
	typeIDs  *buffers.Primitive[int8]
	variants []Cursor
	names    []string
	pos      int
}

func (c *unionCursor) Emit(sink schema.EventSink) error {
	idx := int(c.typeIDs.Data()[c.pos])
	c.pos++
	if idx < 0 || idx >= len(c.variants) {
		return &schema.UnknownVariantError{Index: idx}
	}
	if err := sink.Accept(schema.EventVariant(c.names[idx], idx)); err != nil {
		return err
	}
	return c.variants[idx].Emit(sink)
}
func (c *unionCursor) Len() int { return c.typeIDs.Len() }
