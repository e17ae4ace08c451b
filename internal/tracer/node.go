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

// Package tracer implements the schema inference engine of §4.3: an
// [EventSink]-shaped observer that folds a stream of sample records into
// a finalized [schema.Field] tree via a commutative, associative merge
// lattice over partial-evidence nodes.
package tracer

import (
	"github.com/tiendc/go-deepcopy"

	"github.com/colbuild/serde/schema"
)

// kind is the state a partial [node] is in, per §4.3.
type kind uint8

const (
	unknownKind kind = iota
	nullKind
	primitiveKind
	listKind
	structKind
	mapKind
	unionKind
	tupleKind
)

// unionVariant is one named, indexed member of a union node.
type unionVariant struct {
	name  string
	index int
	node  *node
}

// node is a partial-evidence tree node, as described by §4.3's list of
// states. Every node also tracks nullable independently of kind, since
// Null∨X sets nullable without constraining kind.
type node struct {
	kind     kind
	nullable bool

	prim schema.DataType // primitiveKind

	elem *node // listKind: the sole "element" child

	order    []string         // structKind: first-seen field order
	children map[string]*node // structKind

	mapKey   *node // mapKind: merged type of every key seen (always Utf8)
	mapValue *node // mapKind: merged type of every value seen, any key

	// mapStable tracks whether every StartMap observed for this field
	// has used exactly the same set of keys, the precondition for the
	// MapAsStruct strategy (§4.3). mapFieldOrder is the first-seen key
	// order, used as the eventual Struct's field order; mapFields are
	// the per-key merged value nodes.
	mapStable     bool
	mapFieldOrder []string
	mapFields     map[string]*node

	variantOrder []string                 // unionKind: first-seen order
	variants     map[string]*unionVariant // unionKind

	tuple []*node // tupleKind

	dates *dateState // primitiveKind+Utf8/LargeUtf8 candidate for guess_dates
}

func unknown() *node { return &node{kind: unknownKind} }

// clone deep-copies n using go-deepcopy; the tracer's merge step clones
// before folding in new evidence so a failed merge (e.g. a
// SchemaConflict partway through a Struct merge) never corrupts the
// tree that was accumulated before the conflicting record arrived.
func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	cp := new(node)
	if err := deepcopy.Copy(cp, n); err != nil {
		// Copy only fails on structurally incompatible src/dst types,
		// which cannot happen when both sides are *node.
		panic("tracer: unreachable deep-copy failure: " + err.Error())
	}
	return cp
}
