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

import "github.com/colbuild/serde/buffers"

// Array is the adapter contract a built column satisfies (§6): it names
// the [Field] it was built for and exposes the buffer set that field's
// data lives in. The core never interprets a concrete array type beyond
// these two methods — [DecodeColumns] re-derives every field's buffer
// ids from Field() the same way [BuildColumns] assigned them (see
// internal/decode), rather than Array itself carrying ids directly.
//
// [BuildColumns] and [BuildColumn] are the only producers in this
// module, but a caller fronting a different storage layer can implement
// Array over its own buffers and still drive [DecodeColumns], as long as
// the buffers were laid out by this module's own compiler or builders.
type Array interface {
	Field() *Field
	Buffers() *buffers.Set
}

type builtArray struct {
	field *Field
	buf   *buffers.Set
}

func (a *builtArray) Field() *Field         { return a.field }
func (a *builtArray) Buffers() *buffers.Set { return a.buf }
