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
	"fmt"

	"github.com/colbuild/serde/schema"
)

// valueKind tags the payload carried by a decoded [value].
type valueKind uint8

const (
	vNull valueKind = iota
	vDefault
	vBool
	vNumber // I8..F64, tagged by evKind
	vStr
	vList
	vTuple
	vStruct
	vMap
	vUnion
)

// fieldVal is one Key/Value or list-item pairing inside a decoded value.
type fieldVal struct {
	key string
	val value
}

// value is one complete item decoded from a buffered span of the event
// stream: either the value of a single top-level record, or of a single
// field, list element, map entry, tuple slot, or union payload within
// one. Every composite kind mirrors the corresponding node kind in
// node.go; nodeFromValue converts a value into a *node for merging.
type value struct {
	kind valueKind

	evKind schema.Kind // vNumber: which of I8..F64 this is
	num    uint64
	f32    float32
	f64    float64
	str    string // vStr

	items []value // vList, vTuple

	fields []fieldVal // vStruct, in event order

	mapEntries []fieldVal // vMap, in event order

	variantName  string
	variantIndex int
	payload      *value // vUnion
}

// decodeItem parses the single top-level value buffered in evs, which
// must be exactly the span recognized by spanStack (span.go's
// span-tracking state machine run over the same events during Accept).
func decodeItem(evs []schema.Event) (value, error) {
	v, pos, err := decodeOptionalValue(evs, 0)
	if err != nil {
		return value{}, err
	}
	if pos != len(evs) {
		return value{}, fmt.Errorf("tracer: %d trailing event(s) after item", len(evs)-pos)
	}
	return v, nil
}

// decodeOptionalValue consumes the Some/Null/Default wrapper, if present,
// that may precede any value position (struct field, list element, map
// entry, tuple slot, union payload, or top-level item).
func decodeOptionalValue(evs []schema.Event, pos int) (value, int, error) {
	if pos >= len(evs) {
		return value{}, pos, fmt.Errorf("tracer: truncated event stream")
	}
	switch evs[pos].Kind {
	case schema.KindNull:
		return value{kind: vNull}, pos + 1, nil
	case schema.KindDefault:
		return value{kind: vDefault}, pos + 1, nil
	case schema.KindSome:
		return decodeValue(evs, pos+1)
	default:
		return decodeValue(evs, pos)
	}
}

func decodeValue(evs []schema.Event, pos int) (value, int, error) {
	if pos >= len(evs) {
		return value{}, pos, fmt.Errorf("tracer: truncated event stream")
	}
	e := evs[pos].ToSelf()
	switch e.Kind {
	case schema.KindBool:
		return value{kind: vBool, num: e.Num}, pos + 1, nil
	case schema.KindI8, schema.KindI16, schema.KindI32, schema.KindI64,
		schema.KindU8, schema.KindU16, schema.KindU32, schema.KindU64:
		return value{kind: vNumber, evKind: e.Kind, num: e.Num}, pos + 1, nil
	case schema.KindF32:
		return value{kind: vNumber, evKind: e.Kind, f32: e.F32}, pos + 1, nil
	case schema.KindF64:
		return value{kind: vNumber, evKind: e.Kind, f64: e.F64}, pos + 1, nil
	case schema.KindStr:
		return value{kind: vStr, str: e.Str}, pos + 1, nil
	case schema.KindStartSequence:
		return decodeSequenceLike(evs, pos+1, schema.KindEndSequence, vList)
	case schema.KindStartTuple:
		return decodeSequenceLike(evs, pos+1, schema.KindEndTuple, vTuple)
	case schema.KindStartStruct:
		return decodeMapLike(evs, pos+1, schema.KindEndStruct, vStruct)
	case schema.KindStartMap:
		return decodeMapLike(evs, pos+1, schema.KindEndMap, vMap)
	case schema.KindVariant:
		payload, next, err := decodeOptionalValue(evs, pos+1)
		if err != nil {
			return value{}, next, err
		}
		return value{kind: vUnion, variantName: e.Str, variantIndex: e.Index, payload: &payload}, next, nil
	default:
		return value{}, pos, fmt.Errorf("tracer: unexpected event %v where a value was expected", e.Kind)
	}
}

// decodeSequenceLike decodes the (Item? value)* body of a Sequence or
// Tuple up to and including its matching end marker.
func decodeSequenceLike(evs []schema.Event, pos int, end schema.Kind, kind valueKind) (value, int, error) {
	var items []value
	for {
		if pos >= len(evs) {
			return value{}, pos, fmt.Errorf("tracer: truncated event stream")
		}
		if evs[pos].Kind == end {
			return value{kind: kind, items: items}, pos + 1, nil
		}
		if evs[pos].Kind == schema.KindItem {
			pos++
			continue
		}
		v, next, err := decodeOptionalValue(evs, pos)
		if err != nil {
			return value{}, next, err
		}
		items = append(items, v)
		pos = next
	}
}

// decodeMapLike decodes the (Key value)* body of a Struct or Map up to
// and including its matching end marker.
func decodeMapLike(evs []schema.Event, pos int, end schema.Kind, kind valueKind) (value, int, error) {
	var fields []fieldVal
	for {
		if pos >= len(evs) {
			return value{}, pos, fmt.Errorf("tracer: truncated event stream")
		}
		if evs[pos].Kind == end {
			if kind == vMap {
				return value{kind: kind, mapEntries: fields}, pos + 1, nil
			}
			return value{kind: kind, fields: fields}, pos + 1, nil
		}
		keyEv := evs[pos].ToSelf()
		if !keyEv.Kind.IsKey() {
			return value{}, pos, fmt.Errorf("tracer: expected Key, got %v", keyEv.Kind)
		}
		pos++
		v, next, err := decodeOptionalValue(evs, pos)
		if err != nil {
			return value{}, next, err
		}
		fields = append(fields, fieldVal{key: keyEv.Str, val: v})
		pos = next
	}
}

func kindToDataType(k schema.Kind) schema.DataType {
	switch k {
	case schema.KindI8:
		return schema.I8
	case schema.KindI16:
		return schema.I16
	case schema.KindI32:
		return schema.I32
	case schema.KindI64:
		return schema.I64
	case schema.KindU8:
		return schema.U8
	case schema.KindU16:
		return schema.U16
	case schema.KindU32:
		return schema.U32
	case schema.KindU64:
		return schema.U64
	case schema.KindF32:
		return schema.F32
	case schema.KindF64:
		return schema.F64
	default:
		return schema.Null
	}
}

// nodeFromValue builds a fresh partial-evidence node from one decoded
// value, the counterpart of merge for folding a single record's worth of
// evidence in. Composite values fold their children through merge
// immediately, so a List's element type is the merge of every item it
// contains rather than just its first.
func nodeFromValue(v value, opts schema.TraceOptions, path []string) (*node, error) {
	switch v.kind {
	case vNull:
		return &node{kind: nullKind, nullable: true}, nil
	case vDefault:
		// No type evidence is carried by a bare Default token; see
		// DESIGN.md for why this differs from Null (which forces
		// nullable) rather than failing outright.
		return unknown(), nil
	case vBool:
		return &node{kind: primitiveKind, prim: schema.Bool}, nil
	case vNumber:
		return &node{kind: primitiveKind, prim: kindToDataType(v.evKind)}, nil
	case vStr:
		n := &node{kind: primitiveKind, prim: schema.Utf8}
		if opts.GuessDates {
			n.dates = &dateState{}
			if err := n.dates.observe(v.str, path); err != nil {
				return nil, err
			}
		}
		return n, nil
	case vList:
		return nodeFromList(v.items, opts, path)
	case vTuple:
		children := make([]*node, len(v.items))
		for i, it := range v.items {
			c, err := nodeFromValue(it, opts, withPath(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return &node{kind: tupleKind, tuple: children}, nil
	case vStruct:
		return nodeFromStruct(v.fields, opts, path)
	case vMap:
		return nodeFromMap(v.mapEntries, opts, path)
	case vUnion:
		pn, err := nodeFromValue(*v.payload, opts, withPath(path, v.variantName))
		if err != nil {
			return nil, err
		}
		return &node{
			kind:         unionKind,
			variantOrder: []string{v.variantName},
			variants: map[string]*unionVariant{
				v.variantName: {name: v.variantName, index: v.variantIndex, node: pn},
			},
		}, nil
	default:
		return unknown(), nil
	}
}

func nodeFromList(items []value, opts schema.TraceOptions, path []string) (*node, error) {
	elem := unknown()
	elemPath := withPath(path, "element")
	for _, it := range items {
		en, err := nodeFromValue(it, opts, elemPath)
		if err != nil {
			return nil, err
		}
		elem, err = merge(elem, en, opts, elemPath)
		if err != nil {
			return nil, err
		}
	}
	return &node{kind: listKind, elem: elem}, nil
}

func nodeFromStruct(fields []fieldVal, opts schema.TraceOptions, path []string) (*node, error) {
	r := &node{kind: structKind, children: map[string]*node{}}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.key] {
			return nil, &schema.DuplicateFieldError{PathError: schema.PathError{Path: withPath(path, f.key)}, Key: f.key}
		}
		seen[f.key] = true
		fn, err := nodeFromValue(f.val, opts, withPath(path, f.key))
		if err != nil {
			return nil, err
		}
		r.children[f.key] = fn
		r.order = append(r.order, f.key)
	}
	return r, nil
}

func nodeFromMap(entries []fieldVal, opts schema.TraceOptions, path []string) (*node, error) {
	r := &node{
		kind:      mapKind,
		mapKey:    &node{kind: primitiveKind, prim: schema.Utf8},
		mapValue:  unknown(),
		mapStable: true,
		mapFields: map[string]*node{},
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.key] {
			return nil, &schema.DuplicateFieldError{PathError: schema.PathError{Path: withPath(path, e.key)}, Key: e.key}
		}
		seen[e.key] = true
		vn, err := nodeFromValue(e.val, opts, withPath(path, e.key))
		if err != nil {
			return nil, err
		}
		r.mapValue, err = merge(r.mapValue, vn, opts, withPath(path, "value"))
		if err != nil {
			return nil, err
		}
		r.mapFields[e.key] = vn
		r.mapFieldOrder = append(r.mapFieldOrder, e.key)
	}
	return r, nil
}
