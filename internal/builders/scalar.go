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

package builders

import (
	"time"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

const (
	naiveLayout = "2006-01-02T15:04:05"
	utcLayout   = "2006-01-02T15:04:05Z"
)

// boolBuilder, numBuilder, strBuilder, dateBuilder and dictBuilder are
// all leaf values: every Accept call both consumes and completes them,
// so unlike composite builders they hold no per-record state and could
// in principle be shared across elements; they are still constructed
// fresh per element for symmetry with every other Builder.

type boolBuilder struct {
	id   buffers.ID
	buf  *buffers.Set
	path []string
}

func (b *boolBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if e.Kind != schema.KindBool {
		return false, unexpected(b.path, e.Kind, schema.KindBool)
	}
	b.buf.Bits[b.id].Push(e.Bool())
	return true, nil
}

type numBuilder struct {
	dt   schema.DataType
	id   buffers.ID
	buf  *buffers.Set
	path []string
}

var numKindFor = map[schema.DataType]schema.Kind{
	schema.I8: schema.KindI8, schema.I16: schema.KindI16,
	schema.I32: schema.KindI32, schema.I64: schema.KindI64,
	schema.U8: schema.KindU8, schema.U16: schema.KindU16,
	schema.U32: schema.KindU32, schema.U64: schema.KindU64,
	schema.F32: schema.KindF32, schema.F64: schema.KindF64,
}

func (b *numBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	want := numKindFor[b.dt]
	if e.Kind != want {
		return false, unexpected(b.path, e.Kind, want)
	}
	switch b.dt {
	case schema.I8:
		b.buf.I8[b.id].Push(int8(e.Int()))
	case schema.I16:
		b.buf.I16[b.id].Push(int16(e.Int()))
	case schema.I32:
		b.buf.I32[b.id].Push(int32(e.Int()))
	case schema.I64:
		b.buf.I64[b.id].Push(e.Int())
	case schema.U8:
		b.buf.U8[b.id].Push(uint8(e.Uint()))
	case schema.U16:
		b.buf.U16[b.id].Push(uint16(e.Uint()))
	case schema.U32:
		b.buf.U32[b.id].Push(uint32(e.Uint()))
	case schema.U64:
		b.buf.U64[b.id].Push(e.Uint())
	case schema.F32:
		b.buf.F32[b.id].Push(e.F32)
	case schema.F64:
		b.buf.F64[b.id].Push(e.F64)
	}
	return true, nil
}

type strBuilder struct {
	id   buffers.ID
	bits int
	buf  *buffers.Set
	path []string
}

func (b *strBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if !e.Kind.IsString() {
		return false, unexpected(b.path, e.Kind, schema.KindStr)
	}
	var err error
	if b.bits == 64 {
		err = b.buf.LargeUtf8[b.id].Push(e.Str)
	} else {
		err = b.buf.Utf8[b.id].Push(e.Str)
	}
	if err != nil {
		return false, &schema.IntegerOverflowError{PathError: schema.PathError{Path: b.path}, Width: b.bits}
	}
	return true, nil
}

type dateBuilder struct {
	id       buffers.ID
	strategy schema.Strategy
	buf      *buffers.Set
	path     []string
}

func (b *dateBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if !e.Kind.IsString() {
		return false, unexpected(b.path, e.Kind, schema.KindStr)
	}
	layout := naiveLayout
	if b.strategy == schema.StrategyUtcStrAsDate64 {
		layout = utcLayout
	}
	t, err := time.Parse(layout, e.Str)
	if err != nil {
		return false, &schema.InvalidDateError{PathError: schema.PathError{Path: b.path}, Value: e.Str, Format: string(b.strategy)}
	}
	b.buf.I64[b.id].Push(t.UnixMilli())
	return true, nil
}

type dictBuilder struct {
	dictID buffers.ID
	idxID  buffers.ID
	buf    *buffers.Set
	path   []string
}

func (b *dictBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if !e.Kind.IsString() {
		return false, unexpected(b.path, e.Kind, schema.KindStr)
	}
	idx, err := b.buf.Dictionary[b.dictID].Push(e.Str)
	if err != nil {
		return false, &schema.IntegerOverflowError{PathError: schema.PathError{Path: b.path}, Width: 64}
	}
	b.buf.U64[b.idxID].Push(idx)
	return true, nil
}
