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

	"github.com/colbuild/serde/schema"
)

type structField struct {
	name     string
	nullable bool
	newChild func() Builder
}

func buildStruct(c *ctx, f *schema.Field, path []string) (func() Builder, []NullOp, error) {
	fields := make(map[string]*structField, len(f.Children))
	var recipe []NullOp
	for _, child := range f.Children {
		newChild, rec, err := build(c, child, withPath(path, child.Name))
		if err != nil {
			return nil, nil, err
		}
		fields[child.Name] = &structField{name: child.Name, nullable: child.Nullable, newChild: newChild}
		recipe = append(recipe, rec...)
	}
	tuple := f.Strategy == schema.StrategyTuple

	factory := func() Builder {
		return &structBuilder{fields: fields, tuple: tuple, path: path}
	}
	return factory, recipe, nil
}

// structBuilder requires all fields seen before EndStruct unless
// nullable, applied here at EndStruct/EndTuple since this module frames
// records and nested structs with StartStruct/EndStruct throughout
// (internal/tracer, internal/compiler and internal/vm all agree on that
// framing, keeping the keyed-record shape distinct from a literal Map
// field).
type structBuilder struct {
	fields map[string]*structField
	tuple  bool
	path   []string

	started bool
	seen    map[string]bool
	pos     int
	cur     Builder
}

func (b *structBuilder) Accept(e schema.Event) (bool, error) {
	e = e.ToSelf()
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
	if !b.started {
		if e.Kind != schema.KindStartStruct && e.Kind != schema.KindStartTuple {
			return false, unexpected(b.path, e.Kind, schema.KindStartStruct, schema.KindStartTuple)
		}
		b.started = true
		b.seen = make(map[string]bool, len(b.fields))
		b.pos = 0
		return false, nil
	}

	switch {
	case e.Kind == schema.KindEndStruct || e.Kind == schema.KindEndTuple:
		for name, fld := range b.fields {
			if !fld.nullable && !b.seen[name] {
				return false, &schema.MissingFieldError{PathError: schema.PathError{Path: withPath(b.path, name)}, Key: name}
			}
		}
		b.started = false
		return true, nil

	case e.Kind.IsKey():
		fld, ok := b.fields[e.Str]
		if !ok {
			return false, &schema.UnknownFieldError{PathError: schema.PathError{Path: withPath(b.path, e.Str)}, Key: e.Str}
		}
		if b.seen[e.Str] {
			return false, &schema.DuplicateFieldError{PathError: schema.PathError{Path: withPath(b.path, e.Str)}, Key: e.Str}
		}
		b.seen[e.Str] = true
		b.cur = fld.newChild()
		return false, nil

	case b.tuple && e.Kind == schema.KindItem:
		return false, nil

	case b.tuple:
		name := strconv.Itoa(b.pos)
		fld, ok := b.fields[name]
		if !ok {
			return false, &schema.UnknownFieldError{PathError: schema.PathError{Path: withPath(b.path, name)}, Key: name}
		}
		b.seen[name] = true
		b.pos++
		b.cur = fld.newChild()
		done, err := b.cur.Accept(e)
		if err != nil {
			return false, err
		}
		if done {
			b.cur = nil
		}
		return false, nil

	default:
		return false, unexpected(b.path, e.Kind, schema.KindKey, schema.KindEndStruct)
	}
}
