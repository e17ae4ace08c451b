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

// Package builders implements §4.6: the alternative, hand-written
// automaton path for driving a [schema.Event] stream straight into a
// [buffers.Set], without compiling to bytecode first. Where
// internal/compiler and internal/vm split "where does control go next"
// into a precomputed jump table, these builders recurse directly: each
// composite value owns live child [Builder]s and asks them whether they
// finished consuming the current event.
package builders

import (
	"fmt"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

// Builder is one in-progress value. Accept reports done=true once the
// event just given it completed the value — immediately for a leaf,
// on the matching End event for a composite — so the enclosing builder
// knows to stop delegating to it and resume its own state machine.
type Builder interface {
	Accept(e schema.Event) (done bool, err error)
}

// NullOp is one buffer-write step of a null-filling recipe. Builders
// define their own copy of this concept rather than importing
// internal/compiler's: §4.6 is an independently driven path, and the
// two recipe systems have never needed to interoperate (a compiled
// program's Instr.Recipe never runs a builder, and vice versa).
type NullOp func(*buffers.Set) error

func runRecipe(buf *buffers.Set, recipe []NullOp) error {
	for _, op := range recipe {
		if err := op(buf); err != nil {
			return err
		}
	}
	return nil
}

// ctx carries the monotonically increasing buffer-id allocator used
// while laying out one field tree, mirroring the compiler's own
// unexported nextID counter.
type ctx struct {
	buf  *buffers.Set
	next int
}

func (c *ctx) alloc() buffers.ID {
	id := buffers.ID(c.next)
	c.next++
	return id
}

// withPath returns a fresh path with seg appended, this package's own
// copy of internal/tracer's helper of the same name: §4.6 is an
// independently driven path and never shares state with the tracer.
func withPath(path []string, seg string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = seg
	return p
}

func unexpected(path []string, got schema.Kind, want ...schema.Kind) error {
	return &schema.UnexpectedEventError{PathError: schema.PathError{Path: path}, Got: got, Expected: want, At: "builder"}
}

// New lays out f into buf, returning a factory that produces a fresh
// [Builder] for one value of f (carrying its own per-instance state,
// such as a struct's seen-field set) and the null recipe that zero-fills
// f's entire subtree when an enclosing ancestor receives Null instead.
func New(f *schema.Field, buf *buffers.Set) (func() Builder, []NullOp, error) {
	c := &ctx{buf: buf}
	return build(c, f, nil)
}

func build(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	if f.Nullable {
		return buildNullable(c, f, path)
	}
	return buildValue(c, f, path)
}

func buildNullable(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	nonNull := f.Clone()
	nonNull.Nullable = false
	innerNew, childRecipe, err := buildValue(c, nonNull, path)
	if err != nil {
		return nil, nil, err
	}

	validityID := c.alloc()
	c.buf.NewBit(validityID)
	recipe := append([]NullOp{pushBitFalse(validityID)}, childRecipe...)

	factory := func() Builder {
		return &nullableBuilder{inner: innerNew, validityID: validityID, recipe: recipe, buf: c.buf}
	}
	return factory, recipe, nil
}

type nullableBuilder struct {
	inner      func() Builder
	cur        Builder
	validityID buffers.ID
	recipe     []NullOp
	buf        *buffers.Set
}

func (b *nullableBuilder) Accept(e schema.Event) (bool, error) {
	if b.cur != nil {
		done, err := b.cur.Accept(e)
		if err != nil {
			return false, err
		}
		if done {
			b.cur = nil
			return true, nil
		}
		return false, nil
	}
	switch e.ToSelf().Kind {
	case schema.KindSome:
		return false, nil
	case schema.KindNull:
		if err := runRecipe(b.buf, b.recipe); err != nil {
			return false, err
		}
		return true, nil
	default:
		b.buf.Bits[b.validityID].Push(true)
		b.cur = b.inner()
		return b.cur.Accept(e)
	}
}

func buildValue(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	switch f.DataType {
	case schema.Bool:
		id := c.alloc()
		c.buf.NewBit(id)
		return func() Builder { return &boolBuilder{id: id, buf: c.buf, path: path} },
			[]NullOp{pushBitFalse(id)}, nil

	case schema.I8, schema.I16, schema.I32, schema.I64,
		schema.U8, schema.U16, schema.U32, schema.U64, schema.F32, schema.F64:
		id := allocNumeric(c, f.DataType)
		dt := f.DataType
		return func() Builder { return &numBuilder{dt: dt, id: id, buf: c.buf, path: path} },
			[]NullOp{pushNumZero(dt, id)}, nil

	case schema.Utf8, schema.LargeUtf8:
		bits := 32
		if f.DataType == schema.LargeUtf8 {
			bits = 64
		}
		id := allocString(c, bits)
		return func() Builder { return &strBuilder{id: id, bits: bits, buf: c.buf, path: path} },
			[]NullOp{pushStrEmpty(id, bits)}, nil

	case schema.Date64:
		id := c.alloc()
		c.buf.NewI64(id)
		strategy := f.Strategy
		return func() Builder { return &dateBuilder{id: id, strategy: strategy, buf: c.buf, path: path} },
			[]NullOp{pushNumZero(schema.I64, id)}, nil

	case schema.Dictionary:
		dictID, idxID := c.alloc(), c.alloc()
		c.buf.NewDictionary(dictID)
		c.buf.NewU64(idxID)
		return func() Builder { return &dictBuilder{dictID: dictID, idxID: idxID, buf: c.buf, path: path} },
			[]NullOp{pushDictDefault(dictID, idxID)}, nil

	case schema.List, schema.LargeList:
		return buildList(c, f, path)

	case schema.Struct:
		return buildStruct(c, f, path)

	case schema.Map:
		return buildMap(c, f, path)

	case schema.Union:
		return buildUnion(c, f, path)

	case schema.Null:
		id := c.alloc()
		c.buf.NewNullCount(id)
		name := f.Name
		return func() Builder { return &trapBuilder{id: id, buf: c.buf, name: name} },
			[]NullOp{pushNullCountInc(id)}, nil

	default:
		return nil, nil, fmt.Errorf("builders: unsupported data type %s", f.DataType)
	}
}

func allocNumeric(c *ctx, dt schema.DataType) buffers.ID {
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

func allocString(c *ctx, bits int) buffers.ID {
	id := c.alloc()
	if bits == 64 {
		c.buf.NewLargeUtf8(id)
	} else {
		c.buf.NewUtf8(id)
	}
	return id
}

// trapBuilder mirrors internal/compiler's Null-leaf OpPanic: a field the
// tracer never attached any evidence to must never see a real value
// event at build time.
type trapBuilder struct {
	id   buffers.ID
	buf  *buffers.Set
	name string
}

func (b *trapBuilder) Accept(schema.Event) (bool, error) {
	return false, fmt.Errorf("builders: field %q is always-null; no value event should ever reach it", b.name)
}
