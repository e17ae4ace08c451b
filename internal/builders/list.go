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

package builders

import (
	"fmt"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

func buildList(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	bits := 32
	if f.DataType == schema.LargeList {
		bits = 64
	}
	offsetsID := c.alloc()
	if bits == 64 {
		c.buf.NewOffsets64(offsetsID)
	} else {
		c.buf.NewOffsets32(offsetsID)
	}

	elem := f.Child("element")
	if elem == nil {
		return nil, nil, fmt.Errorf("builders: list field %q missing element child", f.Name)
	}
	elemNew, _, err := build(c, elem, withPath(path, "element"))
	if err != nil {
		return nil, nil, err
	}

	buf := c.buf
	factory := func() Builder {
		return &listBuilder{offsetsID: offsetsID, bits: bits, elemNew: elemNew, buf: buf, path: path}
	}
	return factory, []NullOp{pushOffsetsEmpty(offsetsID, bits)}, nil
}

// listBuilder implements §4.6's "analogous builder for List": a
// StartSequence/(Item? value)*/EndSequence automaton, accepting a bare
// value event with no preceding Item exactly as internal/vm's
// OpListLoop does, since Item is a separator, not a required marker.
type listBuilder struct {
	offsetsID buffers.ID
	bits      int
	elemNew   func() Builder
	path      []string

	buf     *buffers.Set
	started bool
	count   int
	cur     Builder
}

func (b *listBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if !b.started {
		if e.Kind != schema.KindStartSequence {
			return false, unexpected(b.path, e.Kind, schema.KindStartSequence)
		}
		b.started = true
		b.count = 0
		return false, nil
	}
	if b.cur != nil {
		done, err := b.cur.Accept(e)
		if err != nil {
			return false, err
		}
		if done {
			b.cur = nil
			b.count++
		}
		return false, nil
	}
	switch e.Kind {
	case schema.KindEndSequence:
		if err := pushOffsets(b.buf, b.offsetsID, b.bits, b.count, b.path); err != nil {
			return false, err
		}
		b.started = false
		return true, nil
	case schema.KindItem:
		return false, nil
	default:
		b.cur = b.elemNew()
		return false, b.acceptIntoCur(e)
	}
}

func (b *listBuilder) acceptIntoCur(e schema.Event) error {
	done, err := b.cur.Accept(e)
	if err != nil {
		return err
	}
	if done {
		b.cur = nil
		b.count++
	}
	return nil
}

func pushOffsets(buf *buffers.Set, id buffers.ID, bits, n int, path []string) error {
	if bits == 64 {
		if err := buf.Offsets64[id].Push(n); err != nil {
			return &schema.IntegerOverflowError{PathError: schema.PathError{Path: path}, Width: 64}
		}
		return nil
	}
	if err := buf.Offsets32[id].Push(n); err != nil {
		return &schema.IntegerOverflowError{PathError: schema.PathError{Path: path}, Width: 32}
	}
	return nil
}
