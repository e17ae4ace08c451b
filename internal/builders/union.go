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
	"strconv"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

func buildUnion(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	typeID := c.alloc()
	c.buf.NewI8(typeID)

	variants := make([]func() Builder, len(f.Children))
	var recipe []NullOp
	for idx, variant := range f.Children {
		newVariant, rec, err := build(c, variant, withPath(path, variant.Name))
		if err != nil {
			return nil, nil, err
		}
		variants[idx] = newVariant
		recipe = append(recipe, rec...)
	}
	// Sparse-union null filling: an absent union still zero-fills every
	// variant's own subtree, matching internal/compiler's lowerUnion.
	recipe = append([]NullOp{pushI8Zero(typeID)}, recipe...)

	buf := c.buf
	factory := func() Builder {
		return &unionBuilder{typeID: typeID, variants: variants, buf: buf, path: path}
	}
	return factory, recipe, nil
}

// unionBuilder is §4.6's analogous Union builder: a Variant event picks
// and creates the active variant's child builder, which then owns every
// subsequent event until its own value completes.
type unionBuilder struct {
	typeID   buffers.ID
	variants []func() Builder
	path     []string

	buf *buffers.Set
	cur Builder
}

func (b *unionBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
	if b.cur != nil {
		done, err := b.cur.Accept(e)
		if err != nil {
			return false, err
		}
		if done {
			b.cur = nil
			return true, nil
		}
		return false, nil
	}
	if e.Kind != schema.KindVariant {
		return false, unexpected(b.path, e.Kind, schema.KindVariant)
	}
	if e.Index < 0 || e.Index >= len(b.variants) {
		return false, &schema.UnknownVariantError{PathError: schema.PathError{Path: withPath(b.path, strconv.Itoa(e.Index))}, Index: e.Index}
	}
	b.buf.I8[b.typeID].Push(int8(e.Index))
	b.cur = b.variants[e.Index]()
	return false, nil
}
