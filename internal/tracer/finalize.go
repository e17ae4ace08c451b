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

// finalizeNode converts accumulated evidence into a concrete [schema.Field],
// choosing strategies (dictionary encoding, date guessing, MapAsStruct,
// Tuple) per §4.3's resolution rules. name is the field's own name; path
// is its dotted location used for error reporting.
func finalizeNode(n *node, opts schema.TraceOptions, path []string, name string) (*schema.Field, error) {
	if n == nil {
		n = unknown()
	}
	switch n.kind {
	case unknownKind, nullKind:
		if !opts.AllowNullFields {
			return nil, conflictErr(path, "field was never observed with a value and allow_null_fields is false")
		}
		return &schema.Field{Name: name, DataType: schema.Null, Nullable: true}, nil
	case primitiveKind:
		return finalizePrimitive(n, opts, name), nil
	case listKind:
		elem, err := finalizeNode(n.elem, opts, withPath(path, "element"), "element")
		if err != nil {
			return nil, err
		}
		return &schema.Field{Name: name, DataType: schema.LargeList, Nullable: n.nullable, Children: []*schema.Field{elem}}, nil
	case structKind:
		children := make([]*schema.Field, len(n.order))
		for i, fname := range n.order {
			c, err := finalizeNode(n.children[fname], opts, withPath(path, fname), fname)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return &schema.Field{Name: name, DataType: schema.Struct, Nullable: n.nullable, Children: children}, nil
	case mapKind:
		return finalizeMap(n, opts, path, name)
	case unionKind:
		children := make([]*schema.Field, len(n.variantOrder))
		for i, vname := range n.variantOrder {
			c, err := finalizeNode(n.variants[vname].node, opts, withPath(path, vname), vname)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return &schema.Field{Name: name, DataType: schema.Union, Nullable: n.nullable, Children: children}, nil
	case tupleKind:
		children := make([]*schema.Field, len(n.tuple))
		for i, c := range n.tuple {
			cf, err := finalizeNode(c, opts, withPath(path, fmt.Sprint(i)), fmt.Sprint(i))
			if err != nil {
				return nil, err
			}
			children[i] = cf
		}
		f := &schema.Field{Name: name, DataType: schema.Struct, Nullable: n.nullable, Strategy: schema.StrategyTuple, Children: children}
		return f.ApplyStrategyMetadata(), nil
	default:
		return nil, conflictErr(path, "unreachable node kind in finalize")
	}
}

func finalizePrimitive(n *node, opts schema.TraceOptions, name string) *schema.Field {
	dt := n.prim
	var strategy schema.Strategy
	if dt.IsString() && n.dates != nil {
		strategy = n.dates.strategy()
		if strategy != schema.StrategyNone {
			dt = schema.Date64
		}
	}
	if strategy == schema.StrategyNone && dt.IsString() && opts.StringDictionaryEncoding {
		return &schema.Field{
			Name: name, DataType: schema.Dictionary, Nullable: n.nullable,
			Children: []*schema.Field{
				{Name: "indices", DataType: schema.U64},
				{Name: "values", DataType: schema.LargeUtf8},
			},
		}
	}
	f := &schema.Field{Name: name, DataType: dt, Nullable: n.nullable, Strategy: strategy}
	return f.ApplyStrategyMetadata()
}

func finalizeMap(n *node, opts schema.TraceOptions, path []string, name string) (*schema.Field, error) {
	if opts.MapAsStruct && n.mapStable {
		children := make([]*schema.Field, len(n.mapFieldOrder))
		for i, k := range n.mapFieldOrder {
			c, err := finalizeNode(n.mapFields[k], opts, withPath(path, k), k)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		f := &schema.Field{Name: name, DataType: schema.Struct, Nullable: n.nullable, Strategy: schema.StrategyMapAsStruct, Children: children}
		return f.ApplyStrategyMetadata(), nil
	}
	key, err := finalizeNode(n.mapKey, opts, withPath(path, "key"), "key")
	if err != nil {
		return nil, err
	}
	val, err := finalizeNode(n.mapValue, opts, withPath(path, "value"), "value")
	if err != nil {
		return nil, err
	}
	return &schema.Field{Name: name, DataType: schema.Map, Nullable: n.nullable, Children: []*schema.Field{key, val}}, nil
}
