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

func buildMap(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	key := f.Child("key")
	val := f.Child("value")
	if key == nil || val == nil {
		return nil, nil, fmt.Errorf("builders: map field %q missing key/value children", f.Name)
	}
	keyBits := 32
	if key.DataType == schema.LargeUtf8 {
		keyBits = 64
	}
	keyID := allocString(c, keyBits)
	offsetsID := c.alloc()
	c.buf.NewOffsets64(offsetsID)

	valNew, _, err := build(c, val, withPath(path, "value"))
	if err != nil {
		return nil, nil, err
	}

	buf := c.buf
	factory := func() Builder {
		return &mapBuilder{keyID: keyID, keyBits: keyBits, offsetsID: offsetsID, valNew: valNew, buf: buf, path: path}
	}
	return factory, []NullOp{pushOffsetsEmpty(offsetsID, 64)}, nil
}

// mapBuilder is §4.6's analogous Map builder: StartMap/(Key value)*/
// EndMap, pushing each key directly (maps, unlike structs, do not
// reject a repeated key — every occurrence is pushed as its own entry)
// and counting entries into an Offsets64 buffer exactly
// as internal/compiler's Map lowering does.
type mapBuilder struct {
	keyID     buffers.ID
	keyBits   int
	offsetsID buffers.ID
	valNew    func() Builder
	path      []string

	buf     *buffers.Set
	started bool
	count   int
	cur     Builder
}

func (b *mapBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if !b.started {
		if e.Kind != schema.KindStartMap {
			return false, unexpected(b.path, e.Kind, schema.KindStartMap)
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
		}
		return false, nil
	}
	switch {
	case e.Kind == schema.KindEndMap:
		if err := pushOffsets(b.buf, b.offsetsID, 64, b.count, b.path); err != nil {
			return false, err
		}
		b.started = false
		return true, nil
	case e.Kind.IsKey():
		var err error
		if b.keyBits == 64 {
			err = b.buf.LargeUtf8[b.keyID].Push(e.Str)
		} else {
			err = b.buf.Utf8[b.keyID].Push(e.Str)
		}
		if err != nil {
			return false, &schema.IntegerOverflowError{PathError: schema.PathError{Path: withPath(b.path, "key")}, Width: b.keyBits}
		}
		b.count++
		b.cur = b.valNew()
		return false, nil
	default:
		return false, unexpected(b.path, e.Kind, schema.KindKey, schema.KindEndMap)
	}
}
