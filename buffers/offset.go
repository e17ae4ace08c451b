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

import (
	"fmt"
	"math"
)

type offsetInt interface{ ~int32 | ~int64 }

// Offsets is a monotone offset builder seeded with 0 (§4.1). It is
// generic over int32/int64 so List and LargeList share one
// implementation and one overflow check; bits fixes the width for the
// overflow check since that can't be recovered from T alone once it has
// been widened to int64 internally.
type Offsets[T offsetInt] struct {
	data    []T
	running int64
	bits    int
}

func newOffsets[T offsetInt](bits int) *Offsets[T] {
	return &Offsets[T]{data: []T{0}, bits: bits}
}

// NewOffsets32 returns a 32-bit offset builder.
func NewOffsets32() *Offsets[int32] { return newOffsets[int32](32) }

// NewOffsets64 returns a 64-bit offset builder.
func NewOffsets64() *Offsets[int64] { return newOffsets[int64](64) }

// Offsets32 and Offsets64 are the two concrete offset widths named in §3.
type (
	Offsets32 = Offsets[int32]
	Offsets64 = Offsets[int64]
)

// Push appends last+n as the new running total, reporting
// [ErrOffsetOverflow] if widening the result into T would overflow.
func (o *Offsets[T]) Push(n int) error {
	next := o.running + int64(n)
	if o.bits == 32 && (next > math.MaxInt32 || next < math.MinInt32) {
		return fmt.Errorf("%w: width=%d", ErrOffsetOverflow, o.bits)
	}
	o.running = next
	o.data = append(o.data, T(o.running))
	return nil
}

// PushCurrent appends the running total unchanged, i.e. an empty item.
func (o *Offsets[T]) PushCurrent() {
	o.data = append(o.data, T(o.running))
}

// IncCurrent increments the running counter without emitting a new
// offset entry; used while accumulating the length of the item
// currently being built.
func (o *Offsets[T]) IncCurrent(n int) {
	o.running += int64(n)
}

// Len returns the number of offset entries (one more than the number of
// items pushed).
func (o *Offsets[T]) Len() int { return len(o.data) }

// Data returns the raw backing slice.
func (o *Offsets[T]) Data() []T { return o.data }

// ErrOffsetOverflow is returned by [Offsets.Push] when widening a usize
// into the offset buffer's chosen width would overflow it.
var ErrOffsetOverflow = fmt.Errorf("serde/buffers: offset overflow")
