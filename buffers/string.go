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

package buffers

// String combines contiguous raw byte data with its offset buffer;
// Push(s) appends s's bytes and then pushes len(s) onto Offsets.
type String[T offsetInt] struct {
	Data    []byte
	Offsets *Offsets[T]
}

// NewUtf8 returns a String buffer backed by 32-bit offsets (data type
// Utf8).
func NewUtf8() *String[int32] {
	return &String[int32]{Offsets: NewOffsets32()}
}

// NewLargeUtf8 returns a String buffer backed by 64-bit offsets (data
// type LargeUtf8).
func NewLargeUtf8() *String[int64] {
	return &String[int64]{Offsets: NewOffsets64()}
}

// Push appends s and advances the offset buffer.
func (s *String[T]) Push(v string) error {
	s.Data = append(s.Data, v...)
	return s.Offsets.Push(len(v))
}

// Len returns the number of strings pushed.
func (s *String[T]) Len() int { return s.Offsets.Len() - 1 }
