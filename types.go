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

import "github.com/colbuild/serde/schema"

// The data model (§3) lives in package schema so that both this package
// and the internal engine packages (tracer, compiler, vm, builders,
// decode) can depend on it without a package cycle; these aliases are
// the public surface callers outside this module actually use.
type (
	Kind     = schema.Kind
	Event    = schema.Event
	EventSink = schema.EventSink
	EventSinkFunc = schema.EventSinkFunc
	RecordStream  = schema.RecordStream

	DataType = schema.DataType
	Strategy = schema.Strategy
	Field    = schema.Field
	FieldTree = schema.FieldTree

	PathError              = schema.PathError
	SchemaConflictError    = schema.SchemaConflictError
	UnexpectedEventError   = schema.UnexpectedEventError
	UnknownFieldError      = schema.UnknownFieldError
	DuplicateFieldError    = schema.DuplicateFieldError
	MissingFieldError      = schema.MissingFieldError
	IntegerOverflowError   = schema.IntegerOverflowError
	InvalidDateError       = schema.InvalidDateError
	UnknownVariantError    = schema.UnknownVariantError
	FinalizationError      = schema.FinalizationError
	CustomError            = schema.CustomError
)

const (
	KindInvalid       = schema.KindInvalid
	KindStartSequence = schema.KindStartSequence
	KindEndSequence   = schema.KindEndSequence
	KindStartTuple    = schema.KindStartTuple
	KindEndTuple      = schema.KindEndTuple
	KindStartStruct   = schema.KindStartStruct
	KindEndStruct     = schema.KindEndStruct
	KindStartMap      = schema.KindStartMap
	KindEndMap        = schema.KindEndMap
	KindItem          = schema.KindItem
	KindKey           = schema.KindKey
	KindOwnedKey      = schema.KindOwnedKey
	KindSome          = schema.KindSome
	KindNull          = schema.KindNull
	KindDefault       = schema.KindDefault
	KindVariant       = schema.KindVariant
	KindBool          = schema.KindBool
	KindI8            = schema.KindI8
	KindI16           = schema.KindI16
	KindI32           = schema.KindI32
	KindI64           = schema.KindI64
	KindU8            = schema.KindU8
	KindU16           = schema.KindU16
	KindU32           = schema.KindU32
	KindU64           = schema.KindU64
	KindF32           = schema.KindF32
	KindF64           = schema.KindF64
	KindStr           = schema.KindStr
	KindOwnedStr      = schema.KindOwnedStr
)

const (
	Null       = schema.Null
	Bool       = schema.Bool
	I8         = schema.I8
	I16        = schema.I16
	I32        = schema.I32
	I64        = schema.I64
	U8         = schema.U8
	U16        = schema.U16
	U32        = schema.U32
	U64        = schema.U64
	F32        = schema.F32
	F64        = schema.F64
	Utf8       = schema.Utf8
	LargeUtf8  = schema.LargeUtf8
	Date64     = schema.Date64
	List       = schema.List
	LargeList  = schema.LargeList
	Struct     = schema.Struct
	Map        = schema.Map
	Union      = schema.Union
	Dictionary = schema.Dictionary
)

const (
	StrategyNone             = schema.StrategyNone
	StrategyTuple            = schema.StrategyTuple
	StrategyMapAsStruct      = schema.StrategyMapAsStruct
	StrategyNaiveStrAsDate64 = schema.StrategyNaiveStrAsDate64
	StrategyUtcStrAsDate64   = schema.StrategyUtcStrAsDate64
)

// Event constructors re-exported for convenience.
var (
	EventBool      = schema.EventBool
	EventInt       = schema.EventInt
	EventUint      = schema.EventUint
	EventF32       = schema.EventF32
	EventF64       = schema.EventF64
	EventStr       = schema.EventStr
	EventOwnedStr  = schema.EventOwnedStr
	EventKey       = schema.EventKey
	EventOwnedKey  = schema.EventOwnedKey
	EventVariant   = schema.EventVariant
)

// Structural events with no payload, re-exported for convenience.
var (
	EvStartSequence = schema.EvStartSequence
	EvEndSequence   = schema.EvEndSequence
	EvStartTuple    = schema.EvStartTuple
	EvEndTuple      = schema.EvEndTuple
	EvStartStruct   = schema.EvStartStruct
	EvEndStruct     = schema.EvEndStruct
	EvStartMap      = schema.EvStartMap
	EvEndMap        = schema.EvEndMap
	EvItem          = schema.EvItem
	EvSome          = schema.EvSome
	EvNull          = schema.EvNull
	EvDefault       = schema.EvDefault
)
