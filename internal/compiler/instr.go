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

// Package compiler implements §4.4: lowering a finalized [schema.Field]
// tree into a flat [Program] of [Instr], dispatched by a single switch on
// instruction kind rather than a virtual-call table (§9's explicit
// preference), plus the [buffers.Set] the program writes into.
package compiler

import (
	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

// Op tags the behavior a given [Instr] performs. There is exactly one
// concrete op per distinct shape the compiler lowers, collapsed where a
// Start/Item/End trio shares one state machine (e.g. List is two
// instructions, not three: Item is absorbed into the loop).
type Op uint8

const (
	OpProgramEnd Op = iota
	OpPanic
	OpOuterSeqStart
	OpOuterSeqLoop
	OpStructStart
	OpStructLoop
	OpListStart
	OpListLoop
	OpMapStart
	OpMapLoop
	OpUnionStart
	OpOptionMarker
	OpPushBool
	OpPushNum
	OpPushStr
	OpPushDict
	OpPushDateFromStr
)

// NullOp is one step of a precomputed null recipe (§4.4): a single
// buffer write needed to keep a descendant column aligned when the
// subtree it belongs to is absent. Recipes are stored as closures over
// buffer IDs rather than a separate tagged-op enum + side table, since
// nothing in this module ever needs to introspect a recipe's shape after
// it is built — only run it.
type NullOp func(*buffers.Set) error

// Instr is one bytecode instruction. Every field is exported because
// internal/vm's interpreter reads and mutates it directly (Count/Pos are
// per-instance runtime scratch, safe to store inline because execution
// is single-threaded and one [Program] backs exactly one streaming run,
// per §5).
type Instr struct {
	Op Op

	// Next is the instruction to run after this node's value (or, for a
	// loop instruction, the whole composite) is fully consumed.
	Next int
	// IfNone is OptionMarker's jump target on a Null event.
	IfNone int

	// Leaf payload buffers.
	BufID    buffers.ID
	DataType schema.DataType // OpPushNum's concrete width; OpPushDateFromStr ignores
	Strategy schema.Strategy // OpPushDateFromStr's date mode
	Bits     int             // width of an offsets/string buffer (32 or 64)

	// OpOptionMarker.
	ValidityID buffers.ID
	Recipe     []NullOp

	// OpPushDict.
	DictID buffers.ID
	IdxID  buffers.ID

	// OpListStart/OpListLoop, OpMapStart/OpMapLoop: ElemEntry is the
	// element's (or map value's) program entry point; Count is the
	// running item/entry count for the list or map instance currently
	// open at this pc, reset to 0 on Start and consumed by Push at End.
	ElemEntry int
	Count     int

	// OpMapLoop.
	KeyBufID buffers.ID

	// OpStructStart/OpStructLoop.
	Fields        map[string]int
	TuplePosition bool // accept bare positional Item events (strategy=Tuple)
	Pos           int  // next positional index expected when TuplePosition

	// OpUnionStart.
	TypeBufID     buffers.ID
	VariantEntry  map[int]int

	// OpPanic.
	NullCountID buffers.ID
	Msg         string

	// Path is this instruction's field path from the tree root, fixed at
	// compile time and copied verbatim into every error a running
	// instance of it raises.
	Path []string
}
