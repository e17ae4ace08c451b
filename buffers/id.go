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

// Package buffers implements the typed column buffers of §4.1: bit,
// primitive, offset, string and dictionary buffers, plus a flat
// per-program [Set] of them indexed by [ID].
//
// Buffers never panic on an empty read; they only grow. All growth is
// amortized O(1) via ordinary Go slices; nothing here needs to be
// pointer-cast onto wire bytes.
package buffers

// ID identifies one buffer within a [Set]. IDs are assigned by the
// compiler when it lays out a field tree (§4.4) and are stable for the
// lifetime of a [Program]; the interpreter never looks a buffer up by
// name, only by ID.
type ID int

// Kind tags which concrete buffer a [Set] slot holds.
type Kind uint8

const (
	KindBit Kind = iota
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
	KindOffset32
	KindOffset64
	KindUtf8
	KindLargeUtf8
	KindDictionary
	KindNullCount
)
