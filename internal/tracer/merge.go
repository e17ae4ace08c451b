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

package tracer

import (
	"errors"
	"fmt"

	"github.com/colbuild/serde/schema"
)

var errDateModeConflict = errors.New("conflicting date formats")

func conflictErr(path []string, reason string) error {
	return &schema.SchemaConflictError{PathError: schema.PathError{Path: append([]string(nil), path...)}, Reason: reason}
}

func withPath(path []string, seg string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = seg
	return p
}

// merge implements the commutative, associative lattice of §4.3. It
// never mutates a or b; every branch returns a freshly cloned node.
func merge(a, b *node, opts schema.TraceOptions, path []string) (*node, error) {
	if a == nil {
		a = unknown()
	}
	if b == nil {
		b = unknown()
	}

	if a.kind == unknownKind {
		return b.clone(), nil
	}
	if b.kind == unknownKind {
		return a.clone(), nil
	}
	if a.kind == nullKind && b.kind == nullKind {
		return &node{kind: nullKind, nullable: true}, nil
	}
	if a.kind == nullKind {
		r := b.clone()
		r.nullable = true
		return r, nil
	}
	if b.kind == nullKind {
		r := a.clone()
		r.nullable = true
		return r, nil
	}

	if a.kind != b.kind {
		return nil, conflictErr(path, fmt.Sprintf("cannot merge %s with %s", a.kind, b.kind))
	}

	nullable := a.nullable || b.nullable

	switch a.kind {
	case primitiveKind:
		return mergePrimitive(a, b, opts, path, nullable)
	case listKind:
		elem, err := merge(a.elem, b.elem, opts, withPath(path, "element"))
		if err != nil {
			return nil, err
		}
		return &node{kind: listKind, elem: elem, nullable: nullable}, nil
	case structKind:
		return mergeStruct(a, b, opts, path, nullable)
	case mapKind:
		return mergeMap(a, b, opts, path, nullable)
	case unionKind:
		return mergeUnion(a, b, opts, path, nullable)
	case tupleKind:
		return mergeTuple(a, b, opts, path, nullable)
	default:
		return nil, conflictErr(path, "unreachable node kind in merge")
	}
}

func mergePrimitive(a, b *node, opts schema.TraceOptions, path []string, nullable bool) (*node, error) {
	dt, err := mergePrimitiveTypes(a.prim, b.prim, opts.CoerceNumbers)
	if err != nil {
		return nil, conflictErr(path, err.Error())
	}
	r := &node{kind: primitiveKind, prim: dt, nullable: nullable}
	if dt.IsString() {
		ds, err := mergeDates(a.dates, b.dates)
		if err != nil {
			return nil, &schema.InvalidDateError{PathError: schema.PathError{Path: append([]string(nil), path...)}, Value: b.dates.sample, Format: string(a.dates.strategy())}
		}
		r.dates = ds
	}
	return r, nil
}

func mergePrimitiveTypes(a, b schema.DataType, coerce bool) (schema.DataType, error) {
	if a == b {
		return a, nil
	}
	if a.IsString() && b.IsString() {
		return schema.LargeUtf8, nil
	}
	if !coerce {
		return 0, fmt.Errorf("incompatible primitive types %s and %s", a, b)
	}
	switch {
	case a.IsUnsignedInt() && b.IsUnsignedInt():
		return schema.U64, nil
	case a.IsSignedInt() && b.IsSignedInt():
		return schema.I64, nil
	case a.IsFloat() && b.IsFloat():
		return schema.F64, nil
	case (a.IsUnsignedInt() && b.IsSignedInt()) || (a.IsSignedInt() && b.IsUnsignedInt()):
		return schema.I64, nil
	case (a.IsSignedInt() || a.IsUnsignedInt()) && b.IsFloat():
		return schema.F64, nil
	case a.IsFloat() && (b.IsSignedInt() || b.IsUnsignedInt()):
		return schema.F64, nil
	default:
		return 0, fmt.Errorf("incompatible primitive types %s and %s", a, b)
	}
}

// mergeStruct unions field names preserving first-seen order; a field
// present on only one side becomes nullable (§4.3).
func mergeStruct(a, b *node, opts schema.TraceOptions, path []string, nullable bool) (*node, error) {
	r := a.clone()
	r.nullable = nullable
	if r.children == nil {
		r.children = map[string]*node{}
	}
	onlyInA := make(map[string]bool, len(r.order))
	for _, name := range r.order {
		onlyInA[name] = true
	}
	for _, name := range b.order {
		bn := b.children[name]
		if an, ok := r.children[name]; ok {
			merged, err := merge(an, bn, opts, withPath(path, name))
			if err != nil {
				return nil, err
			}
			r.children[name] = merged
			delete(onlyInA, name)
		} else {
			cp := bn.clone()
			cp.nullable = true
			r.children[name] = cp
			r.order = append(r.order, name)
		}
	}
	for name := range onlyInA {
		r.children[name].nullable = true
	}
	return r, nil
}

func sameKeySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if !set[k] {
			return false
		}
	}
	return true
}

func mergeMap(a, b *node, opts schema.TraceOptions, path []string, nullable bool) (*node, error) {
	key, err := merge(a.mapKey, b.mapKey, opts, withPath(path, "key"))
	if err != nil {
		return nil, err
	}
	val, err := merge(a.mapValue, b.mapValue, opts, withPath(path, "value"))
	if err != nil {
		return nil, err
	}
	r := &node{kind: mapKind, mapKey: key, mapValue: val, nullable: nullable}

	r.mapStable = a.mapStable && b.mapStable && sameKeySet(a.mapFieldOrder, b.mapFieldOrder)
	if r.mapStable {
		r.mapFieldOrder = append([]string(nil), a.mapFieldOrder...)
		r.mapFields = make(map[string]*node, len(a.mapFields))
		for _, name := range r.mapFieldOrder {
			merged, err := merge(a.mapFields[name], b.mapFields[name], opts, withPath(path, name))
			if err != nil {
				return nil, err
			}
			r.mapFields[name] = merged
		}
	}
	return r, nil
}

// mergeUnion unions variants by name; a variant's index is fixed at
// first sighting and never changes once assigned (§4.3).
func mergeUnion(a, b *node, opts schema.TraceOptions, path []string, nullable bool) (*node, error) {
	r := a.clone()
	r.nullable = nullable
	if r.variants == nil {
		r.variants = map[string]*unionVariant{}
	}
	for _, name := range b.variantOrder {
		bv := b.variants[name]
		if av, ok := r.variants[name]; ok {
			merged, err := merge(av.node, bv.node, opts, withPath(path, name))
			if err != nil {
				return nil, err
			}
			r.variants[name] = &unionVariant{name: name, index: av.index, node: merged}
			continue
		}
		idx := len(r.variantOrder)
		r.variants[name] = &unionVariant{name: name, index: idx, node: bv.node.clone()}
		r.variantOrder = append(r.variantOrder, name)
	}
	return r, nil
}

func mergeTuple(a, b *node, opts schema.TraceOptions, path []string, nullable bool) (*node, error) {
	if len(a.tuple) != len(b.tuple) {
		return nil, conflictErr(path, fmt.Sprintf("tuple length mismatch: %d vs %d", len(a.tuple), len(b.tuple)))
	}
	children := make([]*node, len(a.tuple))
	for i := range a.tuple {
		c, err := merge(a.tuple[i], b.tuple[i], opts, withPath(path, fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return &node{kind: tupleKind, tuple: children, nullable: nullable}, nil
}

// String implements fmt.Stringer for error messages.
func (k kind) String() string {
	switch k {
	case unknownKind:
		return "Unknown"
	case nullKind:
		return "Null"
	case primitiveKind:
		return "Primitive"
	case listKind:
		return "List"
	case structKind:
		return "Struct"
	case mapKind:
		return "Map"
	case unionKind:
		return "Union"
	case tupleKind:
		return "Tuple"
	default:
		return "?"
	}
}
