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

package schema

import "fmt"

// Kind tags the variant carried by an [Event].
type Kind uint8

const (
	KindInvalid Kind = iota

	// Structural.
	KindStartSequence
	KindEndSequence
	KindStartTuple
	KindEndTuple
	KindStartStruct
	KindEndStruct
	KindStartMap
	KindEndMap
	KindItem
	KindKey
	KindOwnedKey

	// Optionality.
	KindSome
	KindNull
	KindDefault

	// Variant (tagged union).
	KindVariant

	// Primitives.
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindStr
	KindOwnedStr
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	KindStartSequence: "StartSequence",
	KindEndSequence:   "EndSequence",
	KindStartTuple:    "StartTuple",
	KindEndTuple:      "EndTuple",
	KindStartStruct:   "StartStruct",
	KindEndStruct:     "EndStruct",
	KindStartMap:      "StartMap",
	KindEndMap:        "EndMap",
	KindItem:          "Item",
	KindKey:           "Key",
	KindOwnedKey:      "OwnedKey",
	KindSome:          "Some",
	KindNull:          "Null",
	KindDefault:       "Default",
	KindVariant:       "Variant",
	KindBool:          "Bool",
	KindI8:            "I8",
	KindI16:           "I16",
	KindI32:           "I32",
	KindI64:           "I64",
	KindU8:            "U8",
	KindU16:           "U16",
	KindU32:           "U32",
	KindU64:           "U64",
	KindF32:           "F32",
	KindF64:           "F64",
	KindStr:           "Str",
	KindOwnedStr:      "OwnedStr",
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsString reports whether k is one of [KindStr] or [KindOwnedStr]. Both
// are semantically equal; OwnedStr exists only so that emitters unable to
// guarantee a stable borrow can still participate in the protocol.
func (k Kind) IsString() bool { return k == KindStr || k == KindOwnedStr }

// IsKey reports whether k is one of [KindKey] or [KindOwnedKey].
func (k Kind) IsKey() bool { return k == KindKey || k == KindOwnedKey }

// Event is a single token in the schema-agnostic record stream.
//
// Event is a flat struct rather than an interface so that streams can be
// built without per-token allocation; Kind selects which of the payload
// fields is meaningful. Str carries Key/OwnedKey/Str/OwnedStr/Variant
// names; Index carries a Variant's discriminant; Num carries every
// numeric primitive, widened to its natural width (Bool uses Num != 0).
type Event struct {
	Kind  Kind
	Str   string
	Index int
	Num   uint64
	F32   float32
	F64   float64
}

// ToSelf normalizes a borrowed event into the canonical form used for
// state-machine pattern matching: OwnedKey folds into Key and OwnedStr
// folds into Str. Both borrowed and owned forms are semantically equal;
// this exists purely so that switches elsewhere only need to match one
// of each pair.
func (e Event) ToSelf() Event {
	switch e.Kind {
	case KindOwnedKey:
		e.Kind = KindKey
	case KindOwnedStr:
		e.Kind = KindStr
	}
	return e
}

// Bool returns the event's boolean payload.
func (e Event) Bool() bool { return e.Num != 0 }

// Int returns the event's payload reinterpreted as a signed integer of
// the declared width (I8/I16/I32/I64).
func (e Event) Int() int64 { return int64(e.Num) }

// Uint returns the event's payload as an unsigned integer of the
// declared width (U8/U16/U32/U64).
func (e Event) Uint() uint64 { return e.Num }

// EventBool constructs a [KindBool] event.
func EventBool(v bool) Event {
	var n uint64
	if v {
		n = 1
	}
	return Event{Kind: KindBool, Num: n}
}

// EventInt constructs a signed-integer event of the given kind (one of
// KindI8, KindI16, KindI32, KindI64).
func EventInt(kind Kind, v int64) Event { return Event{Kind: kind, Num: uint64(v)} }

// EventUint constructs an unsigned-integer event of the given kind (one
// of KindU8, KindU16, KindU32, KindU64).
func EventUint(kind Kind, v uint64) Event { return Event{Kind: kind, Num: v} }

// EventF32 constructs a [KindF32] event.
func EventF32(v float32) Event { return Event{Kind: KindF32, F32: v} }

// EventF64 constructs a [KindF64] event.
func EventF64(v float64) Event { return Event{Kind: KindF64, F64: v} }

// EventStr constructs a [KindStr] event (borrowed semantics; see
// [EventOwnedStr]).
func EventStr(s string) Event { return Event{Kind: KindStr, Str: s} }

// EventOwnedStr constructs a [KindOwnedStr] event.
func EventOwnedStr(s string) Event { return Event{Kind: KindOwnedStr, Str: s} }

// EventKey constructs a [KindKey] event.
func EventKey(s string) Event { return Event{Kind: KindKey, Str: s} }

// EventOwnedKey constructs a [KindOwnedKey] event.
func EventOwnedKey(s string) Event { return Event{Kind: KindOwnedKey, Str: s} }

// EventVariant constructs a [KindVariant] event; it must precede exactly
// one payload event naming the active union member.
func EventVariant(name string, index int) Event {
	return Event{Kind: KindVariant, Str: name, Index: index}
}

// Simple structural events with no payload.
var (
	EvStartSequence = Event{Kind: KindStartSequence}
	EvEndSequence   = Event{Kind: KindEndSequence}
	EvStartTuple    = Event{Kind: KindStartTuple}
	EvEndTuple      = Event{Kind: KindEndTuple}
	EvStartStruct   = Event{Kind: KindStartStruct}
	EvEndStruct     = Event{Kind: KindEndStruct}
	EvStartMap      = Event{Kind: KindStartMap}
	EvEndMap        = Event{Kind: KindEndMap}
	EvItem          = Event{Kind: KindItem}
	EvSome          = Event{Kind: KindSome}
	EvNull          = Event{Kind: KindNull}
	EvDefault       = Event{Kind: KindDefault}
)

// EventSink receives a well-nested event stream. It is implemented by the
// tracer, by the compiled-program interpreter's event pump, and by every
// builder automaton in internal/builders.
type EventSink interface {
	Accept(Event) error
}

// EventSinkFunc adapts a function to an [EventSink].
type EventSinkFunc func(Event) error

// Accept implements [EventSink].
func (f EventSinkFunc) Accept(e Event) error { return f(e) }

// RecordStream is the external emitter contract (§6): given a sink, push
// a well-nested stream of events representing zero or more records onto
// it. A conforming stream is
// `StartSequence (StartStruct fields EndStruct)* EndSequence`, Some
// always precedes the payload of a present optional, Null is terminal
// for that slot, and Variant always precedes exactly one payload event.
type RecordStream func(EventSink) error
