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

// Tracer is a [schema.EventSink] that folds a sample-record stream into a
// finalized [schema.FieldTree]. It implements both TraceSchema (root
// accumulates each item's Struct children directly, since items ARE the
// records) and TraceSchemaAsField (root accumulates each item's value
// directly, whatever shape it is) with the same accumulation logic; the
// two differ only in what name Finalize gives the resulting root field.
//
// A Tracer expects its caller to drive it with exactly one
// [schema.RecordStream]: `StartSequence item* EndSequence`, where each
// item is itself a well-nested span recognized independently of its
// shape by spanStack.
type Tracer struct {
	opts schema.TraceOptions

	root *node
	buf  []schema.Event
	span spanStack

	startedOuter  bool
	finishedOuter bool
	err           error
}

// New returns a Tracer configured by opts, ready to [Tracer.Accept] a
// [schema.RecordStream].
func New(opts schema.TraceOptions) *Tracer {
	return &Tracer{opts: opts, root: unknown()}
}

// Accept implements [schema.EventSink].
func (t *Tracer) Accept(e schema.Event) error {
	if t.err != nil {
		return t.err
	}
	if err := t.accept(e); err != nil {
		t.err = err
		return err
	}
	return nil
}

func (t *Tracer) accept(e schema.Event) error {
	if t.finishedOuter {
		return fmt.Errorf("tracer: event %v received after the stream already closed", e.Kind)
	}
	if !t.startedOuter {
		if e.Kind != schema.KindStartSequence {
			return &schema.UnexpectedEventError{Got: e.Kind, Expected: []schema.Kind{schema.KindStartSequence}, At: "tracer outer sequence"}
		}
		t.startedOuter = true
		return nil
	}
	if t.span == nil {
		switch e.Kind {
		case schema.KindEndSequence:
			t.finishedOuter = true
			return nil
		case schema.KindItem:
			return nil
		default:
			t.span = newSpan()
			t.buf = t.buf[:0]
		}
	}

	t.buf = append(t.buf, e)
	done, err := t.span.push(e)
	if err != nil {
		return err
	}
	if done {
		t.span = nil
		return t.finishItem()
	}
	return nil
}

func (t *Tracer) finishItem() error {
	v, err := decodeItem(t.buf)
	if err != nil {
		return err
	}
	itemNode, err := nodeFromValue(v, t.opts, nil)
	if err != nil {
		return err
	}
	merged, err := merge(t.root, itemNode, t.opts, nil)
	if err != nil {
		return err
	}
	t.root = merged
	return nil
}

// Finalize produces the inferred [schema.FieldTree]. It fails if the
// underlying stream never closed (the matching EndSequence was never
// seen) or if accumulation failed at any point.
func (t *Tracer) Finalize() (*schema.FieldTree, error) {
	if t.err != nil {
		return nil, t.err
	}
	if !t.startedOuter || !t.finishedOuter {
		return nil, &schema.FinalizationError{At: "tracer outer sequence"}
	}
	name := ""
	if t.opts.AsField != "" {
		name = t.opts.AsField
	}
	root, err := finalizeNode(t.root, t.opts, nil, name)
	if err != nil {
		return nil, err
	}
	return &schema.FieldTree{Root: root}, nil
}
