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

// Number is the set of Go types backing a fixed-width primitive column.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Primitive is a contiguous fixed-width column buffer.
type Primitive[T Number] struct {
	data []T
}

// Push appends one value.
func (p *Primitive[T]) Push(v T) { p.data = append(p.data, v) }

// Len returns the number of values pushed.
func (p *Primitive[T]) Len() int { return len(p.data) }

// Data returns the raw backing slice.
func (p *Primitive[T]) Data() []T { return p.data }

// NullCount is a single counter used for a column that never observed a
// non-null value; §3's buffer set reserves a dedicated id range for
// these rather than allocating a data buffer nobody writes into.
type NullCount struct {
	n int
}

// Push records one more null.
func (c *NullCount) Push() { c.n++ }

// Len returns the accumulated count.
func (c *NullCount) Len() int { return c.n }
