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
	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

// RecordsBuilder is §4.6's top-level automaton: it owns one builder per
// top-level field (built here as a single non-nullable struct builder
// over tree.Root, so named-field dispatch, duplicate detection and
// missing-field enforcement are all inherited from structBuilder) and
// frames the outer StartSequence/Item/EndSequence loop a RecordStream
// always emits at depth 0. It implements [schema.EventSink] directly so
// it can be handed straight to a [schema.RecordStream].
type RecordsBuilder struct {
	newRoot func() Builder
	cur     Builder
	started bool
}

// NewRecordsBuilder lays out tree into buf and returns a ready-to-drive
// builder. tree.Root must be a Struct (the shape every top-level record
// stream takes, whether traced or supplied).
func NewRecordsBuilder(tree *schema.FieldTree, buf *buffers.Set) (*RecordsBuilder, error) {
	newRoot, _, err := New(tree.Root, buf)
	if err != nil {
		return nil, err
	}
	return &RecordsBuilder{newRoot: newRoot}, nil
}

// Accept implements [schema.EventSink].
func (r *RecordsBuilder) Accept(e schema.Event) error {
	e = e.ToSelf()
	if r.cur != nil {
		done, err := r.cur.Accept(e)
		if err != nil {
			return err
		}
		if done {
			r.cur = nil
		}
		return nil
	}
	if !r.started {
		if e.Kind != schema.KindStartSequence {
			return unexpected(nil, e.Kind, schema.KindStartSequence)
		}
		r.started = true
		return nil
	}
	switch e.Kind {
	case schema.KindEndSequence:
		r.started = false
		return nil
	case schema.KindItem:
		return nil
	default:
		r.cur = r.newRoot()
		_, err := r.cur.Accept(e)
		return err
	}
}

// Finalize reports whether the outer sequence closed cleanly.
func (r *RecordsBuilder) Finalize() error {
	if r.started || r.cur != nil {
		return &schema.FinalizationError{At: "RecordsBuilder"}
	}
	return nil
}
