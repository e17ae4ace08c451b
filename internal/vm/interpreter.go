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

// Package vm implements §4.5: the single-threaded dispatcher that drives
// a [compiler.Program] from a [schema.Event] stream into a [buffers.Set].
// Every instruction kind is handled by one case of a plain switch
// (Interpreter.step), per §9's explicit preference for that over a
// virtual dispatch table.
package vm

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/internal/compiler"
	"github.com/colbuild/serde/schema"
)

const (
	naiveLayout = "2006-01-02T15:04:05"
	utcLayout   = "2006-01-02T15:04:05Z"
)

// Interpreter runs one [compiler.Program] over one event stream. It
// implements [schema.EventSink].
type Interpreter struct {
	prog *compiler.Program
	buf  *buffers.Set
	pc   int
	err  error
}

// New returns an Interpreter positioned at prog's entry instruction,
// writing into buf.
func New(prog *compiler.Program, buf *buffers.Set) *Interpreter {
	return &Interpreter{prog: prog, buf: buf, pc: prog.Entry}
}

// Accept implements [schema.EventSink].
func (in *Interpreter) Accept(e schema.Event) error {
	if in.err != nil {
		return in.err
	}
	if err := in.run(e); err != nil {
		in.err = err
		return err
	}
	return nil
}

// run drives pc forward by exactly one external event, following any
// chain of delegated (zero-event) transitions the step produces — the
// bytecode analogue of OptionMarker's "delegate the event to the next
// instruction, which then handles it" (§4.4).
func (in *Interpreter) run(e schema.Event) error {
	pc := in.pc
	for {
		next, delegate, err := in.step(pc, e)
		if err != nil {
			return err
		}
		if !delegate {
			in.pc = next
			return nil
		}
		pc = next
	}
}

// Finalize asserts pc == ProgramEnd, per §4.5's finalization rule.
func (in *Interpreter) Finalize() error {
	if in.err != nil {
		return in.err
	}
	if !in.prog.ProgramEndPC(in.pc) {
		stuck := in.prog.Instrs[in.pc]
		return &schema.FinalizationError{PathError: schema.PathError{Path: stuck.Path}, At: opName(stuck.Op)}
	}
	return nil
}

// withPath returns a fresh path with seg appended, mirroring
// internal/tracer's own copy of this helper; this path (like the
// compiler's) is assembled independently rather than shared, since the
// two passes never interoperate.
func withPath(path []string, seg string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = seg
	return p
}

func unexpected(op compiler.Op, path []string, got schema.Kind, want ...schema.Kind) error {
	return &schema.UnexpectedEventError{PathError: schema.PathError{Path: path}, Got: got, Expected: want, At: opName(op)}
}

// step executes exactly one instruction against one event, returning the
// next pc and whether that pc should immediately reprocess the same
// event (delegate) rather than wait for the next one from the stream.
func (in *Interpreter) step(pc int, raw schema.Event) (int, bool, error) {
	instr := in.prog.Instrs[pc]
	e := raw.ToSelf()

	switch instr.Op {
	case compiler.OpProgramEnd:
		return 0, false, fmt.Errorf("serde: event %v received after program end", e.Kind)

	case compiler.OpPanic:
		return 0, false, errors.New(instr.Msg)

	case compiler.OpOuterSeqStart:
		if e.Kind != schema.KindStartSequence {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStartSequence)
		}
		return instr.Next, false, nil

	case compiler.OpOuterSeqLoop:
		switch e.Kind {
		case schema.KindEndSequence:
			return instr.Next, false, nil
		case schema.KindItem:
			return pc, false, nil
		default:
			return instr.ElemEntry, true, nil
		}

	case compiler.OpStructStart:
		if e.Kind != schema.KindStartStruct && e.Kind != schema.KindStartTuple {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStartStruct, schema.KindStartTuple)
		}
		in.prog.Instrs[instr.Next].Pos = 0
		return instr.Next, false, nil

	case compiler.OpStructLoop:
		return in.stepStructLoop(pc, instr, e)

	case compiler.OpListStart:
		if e.Kind != schema.KindStartSequence {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStartSequence)
		}
		in.prog.Instrs[instr.Next].Count = 0
		return instr.Next, false, nil

	case compiler.OpListLoop:
		return in.stepListLoop(pc, instr, e)

	case compiler.OpMapStart:
		if e.Kind != schema.KindStartMap {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStartMap)
		}
		in.prog.Instrs[instr.Next].Count = 0
		return instr.Next, false, nil

	case compiler.OpMapLoop:
		return in.stepMapLoop(pc, instr, e)

	case compiler.OpUnionStart:
		if e.Kind != schema.KindVariant {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindVariant)
		}
		entry, ok := instr.VariantEntry[e.Index]
		if !ok {
			return 0, false, &schema.UnknownVariantError{PathError: schema.PathError{Path: withPath(instr.Path, strconv.Itoa(e.Index))}, Index: e.Index}
		}
		in.buf.I8[instr.TypeBufID].Push(int8(e.Index))
		return entry, false, nil

	case compiler.OpOptionMarker:
		return in.stepOptionMarker(pc, instr, e)

	case compiler.OpPushBool:
		if e.Kind != schema.KindBool {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindBool)
		}
		in.buf.Bits[instr.BufID].Push(e.Bool())
		return instr.Next, false, nil

	case compiler.OpPushNum:
		if err := in.pushNum(instr, e); err != nil {
			return 0, false, err
		}
		return instr.Next, false, nil

	case compiler.OpPushStr:
		if !e.Kind.IsString() {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStr, schema.KindOwnedStr)
		}
		var err error
		if instr.Bits == 64 {
			err = in.buf.LargeUtf8[instr.BufID].Push(e.Str)
		} else {
			err = in.buf.Utf8[instr.BufID].Push(e.Str)
		}
		if err != nil {
			return 0, false, &schema.IntegerOverflowError{PathError: schema.PathError{Path: instr.Path}, Width: instr.Bits}
		}
		return instr.Next, false, nil

	case compiler.OpPushDict:
		if !e.Kind.IsString() {
			return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStr, schema.KindOwnedStr)
		}
		idx, err := in.buf.Dictionary[instr.DictID].Push(e.Str)
		if err != nil {
			return 0, false, &schema.IntegerOverflowError{PathError: schema.PathError{Path: instr.Path}, Width: 64}
		}
		in.buf.U64[instr.IdxID].Push(idx)
		return instr.Next, false, nil

	case compiler.OpPushDateFromStr:
		return in.pushDate(instr, e)

	default:
		return 0, false, fmt.Errorf("serde: unreachable instruction op %d", instr.Op)
	}
}

func (in *Interpreter) stepStructLoop(pc int, instr *compiler.Instr, e schema.Event) (int, bool, error) {
	switch {
	case e.Kind == schema.KindEndStruct || e.Kind == schema.KindEndTuple:
		return instr.Next, false, nil
	case e.Kind.IsKey():
		entry, ok := instr.Fields[e.Str]
		if !ok {
			return 0, false, &schema.UnknownFieldError{PathError: schema.PathError{Path: withPath(instr.Path, e.Str)}, Key: e.Str}
		}
		return entry, false, nil
	case instr.TuplePosition && e.Kind == schema.KindItem:
		return pc, false, nil
	case instr.TuplePosition:
		name := strconv.Itoa(instr.Pos)
		entry, ok := instr.Fields[name]
		if !ok {
			return 0, false, &schema.UnknownFieldError{PathError: schema.PathError{Path: withPath(instr.Path, name)}, Key: name}
		}
		instr.Pos++
		return entry, true, nil
	default:
		return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindKey, schema.KindEndStruct)
	}
}

func (in *Interpreter) stepListLoop(pc int, instr *compiler.Instr, e schema.Event) (int, bool, error) {
	switch e.Kind {
	case schema.KindEndSequence:
		if err := in.pushOffsets(instr.BufID, instr.Bits, instr.Count, instr.Path); err != nil {
			return 0, false, err
		}
		return instr.Next, false, nil
	case schema.KindItem:
		return pc, false, nil
	default:
		instr.Count++
		return instr.ElemEntry, true, nil
	}
}

func (in *Interpreter) stepMapLoop(pc int, instr *compiler.Instr, e schema.Event) (int, bool, error) {
	switch {
	case e.Kind == schema.KindEndMap:
		if err := in.pushOffsets(instr.BufID, 64, instr.Count, instr.Path); err != nil {
			return 0, false, err
		}
		return instr.Next, false, nil
	case e.Kind.IsKey():
		var err error
		if instr.Bits == 64 {
			err = in.buf.LargeUtf8[instr.KeyBufID].Push(e.Str)
		} else {
			err = in.buf.Utf8[instr.KeyBufID].Push(e.Str)
		}
		if err != nil {
			return 0, false, &schema.IntegerOverflowError{PathError: schema.PathError{Path: withPath(instr.Path, "key")}, Width: instr.Bits}
		}
		instr.Count++
		return instr.ElemEntry, false, nil
	default:
		return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindKey, schema.KindEndMap)
	}
}

func (in *Interpreter) pushOffsets(id buffers.ID, bits, n int, path []string) error {
	if bits == 64 {
		if err := in.buf.Offsets64[id].Push(n); err != nil {
			return &schema.IntegerOverflowError{PathError: schema.PathError{Path: path}, Width: 64}
		}
		return nil
	}
	if err := in.buf.Offsets32[id].Push(n); err != nil {
		return &schema.IntegerOverflowError{PathError: schema.PathError{Path: path}, Width: 32}
	}
	return nil
}

// stepOptionMarker implements §4.4's OptionMarker: a Some event is
// consumed in place, waiting at the same pc for the wrapped value's own
// event to follow; Null runs the null recipe and jumps past the whole
// field; anything else is the unwrapped value itself, delegated straight
// through after recording presence.
func (in *Interpreter) stepOptionMarker(pc int, instr *compiler.Instr, e schema.Event) (int, bool, error) {
	switch e.Kind {
	case schema.KindSome:
		return pc, false, nil
	case schema.KindNull:
		for _, op := range instr.Recipe {
			if err := op(in.buf); err != nil {
				return 0, false, err
			}
		}
		return instr.IfNone, false, nil
	default:
		in.buf.Bits[instr.ValidityID].Push(true)
		return instr.Next, true, nil
	}
}

func (in *Interpreter) pushNum(instr *compiler.Instr, e schema.Event) error {
	want := map[schema.DataType]schema.Kind{
		schema.I8: schema.KindI8, schema.I16: schema.KindI16,
		schema.I32: schema.KindI32, schema.I64: schema.KindI64,
		schema.U8: schema.KindU8, schema.U16: schema.KindU16,
		schema.U32: schema.KindU32, schema.U64: schema.KindU64,
		schema.F32: schema.KindF32, schema.F64: schema.KindF64,
	}[instr.DataType]
	if e.Kind != want {
		return unexpected(instr.Op, instr.Path, e.Kind, want)
	}
	switch instr.DataType {
	case schema.I8:
		in.buf.I8[instr.BufID].Push(int8(e.Int()))
	case schema.I16:
		in.buf.I16[instr.BufID].Push(int16(e.Int()))
	case schema.I32:
		in.buf.I32[instr.BufID].Push(int32(e.Int()))
	case schema.I64:
		in.buf.I64[instr.BufID].Push(e.Int())
	case schema.U8:
		in.buf.U8[instr.BufID].Push(uint8(e.Uint()))
	case schema.U16:
		in.buf.U16[instr.BufID].Push(uint16(e.Uint()))
	case schema.U32:
		in.buf.U32[instr.BufID].Push(uint32(e.Uint()))
	case schema.U64:
		in.buf.U64[instr.BufID].Push(e.Uint())
	case schema.F32:
		in.buf.F32[instr.BufID].Push(e.F32)
	case schema.F64:
		in.buf.F64[instr.BufID].Push(e.F64)
	}
	return nil
}

func (in *Interpreter) pushDate(instr *compiler.Instr, e schema.Event) (int, bool, error) {
	if !e.Kind.IsString() {
		return 0, false, unexpected(instr.Op, instr.Path, e.Kind, schema.KindStr, schema.KindOwnedStr)
	}
	layout := naiveLayout
	if instr.Strategy == schema.StrategyUtcStrAsDate64 {
		layout = utcLayout
	}
	t, err := time.Parse(layout, e.Str)
	if err != nil {
		return 0, false, &schema.InvalidDateError{PathError: schema.PathError{Path: instr.Path}, Value: e.Str, Format: string(instr.Strategy)}
	}
	in.buf.I64[instr.BufID].Push(t.UnixMilli())
	return instr.Next, false, nil
}

func opName(op compiler.Op) string {
	names := map[compiler.Op]string{
		compiler.OpProgramEnd:      "ProgramEnd",
		compiler.OpPanic:           "Panic",
		compiler.OpOuterSeqStart:   "OuterSequenceStart",
		compiler.OpOuterSeqLoop:    "OuterSequenceLoop",
		compiler.OpStructStart:     "StructStart",
		compiler.OpStructLoop:      "StructLoop",
		compiler.OpListStart:       "ListStart",
		compiler.OpListLoop:        "ListLoop",
		compiler.OpMapStart:        "MapStart",
		compiler.OpMapLoop:         "MapLoop",
		compiler.OpUnionStart:      "UnionStart",
		compiler.OpOptionMarker:    "OptionMarker",
		compiler.OpPushBool:        "PushBool",
		compiler.OpPushNum:         "PushNum",
		compiler.OpPushStr:         "PushStr",
		compiler.OpPushDict:        "PushDict",
		compiler.OpPushDateFromStr: "PushDateFromStr",
	}
	if n, ok := names[op]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", op)
}
