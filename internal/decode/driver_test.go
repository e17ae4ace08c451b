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

package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/internal/builders"
	"github.com/colbuild/serde/schema"
)

func field(name string, dt schema.DataType, nullable bool, children ...*schema.Field) *schema.Field {
	return &schema.Field{Name: name, DataType: dt, Nullable: nullable, Children: children}
}

func feed(t *testing.T, sink schema.EventSink, evs ...schema.Event) {
	t.Helper()
	for _, e := range evs {
		require.NoError(t, sink.Accept(e))
	}
}

// recorder collects every event a Driver emits, for comparison against
// the original stream that built the buffers.
type recorder struct {
	evs []schema.Event
}

func (r *recorder) Accept(e schema.Event) error {
	r.evs = append(r.evs, e)
	return nil
}

// TestDriverNullableI8Scenario round-trips the same two records used by
// internal/builders and internal/vm's equivalent forward-path tests.
func TestDriverNullableI8Scenario(t *testing.T) {
	root := field("", schema.Struct, false, field("a", schema.I8, true))
	tree := &schema.FieldTree{Root: root}
	buf := buffersFor(t, tree, schema.EvStartStruct, schema.EventKey("a"), schema.EvSome, schema.EventInt(schema.KindI8, 1), schema.EvEndStruct,
		schema.EvStartStruct, schema.EventKey("a"), schema.EvNull, schema.EvEndStruct)

	d, err := NewDriver(tree, buf)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, d.Run(rec))

	assert.Equal(t, []schema.Event{
		schema.EvStartSequence,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("a"), schema.EvSome, schema.EventInt(schema.KindI8, 1), schema.EvEndStruct,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("a"), schema.EvNull, schema.EvEndStruct,
		schema.EvEndSequence,
	}, rec.evs)
}

// TestDriverListExpandsViaOffsets checks a two-record list field (counts
// 2 and 0) replays with the correct Item framing per record.
func TestDriverListExpandsViaOffsets(t *testing.T) {
	root := field("", schema.Struct, false,
		field("xs", schema.LargeList, false, field("element", schema.Bool, false)),
	)
	tree := &schema.FieldTree{Root: root}
	buf := buffersFor(t, tree,
		schema.EvStartStruct, schema.EventKey("xs"), schema.EvStartSequence,
		schema.EventBool(true), schema.EventBool(false),
		schema.EvEndSequence, schema.EvEndStruct,
		schema.EvStartStruct, schema.EventKey("xs"), schema.EvStartSequence, schema.EvEndSequence, schema.EvEndStruct,
	)

	d, err := NewDriver(tree, buf)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, d.Run(rec))

	assert.Equal(t, []schema.Event{
		schema.EvStartSequence,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("xs"),
		schema.EvStartSequence, schema.EvItem, schema.EventBool(true), schema.EvItem, schema.EventBool(false), schema.EvEndSequence,
		schema.EvEndStruct,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("xs"), schema.EvStartSequence, schema.EvEndSequence, schema.EvEndStruct,
		schema.EvEndSequence,
	}, rec.evs)
}

// TestDriverMapExpandsKeysAndValues checks one record with two map
// entries replays both Key/value pairs.
func TestDriverMapExpandsKeysAndValues(t *testing.T) {
	root := field("", schema.Struct, false,
		field("m", schema.Map, false,
			field("key", schema.Utf8, false),
			field("value", schema.I32, false),
		),
	)
	tree := &schema.FieldTree{Root: root}
	buf := buffersFor(t, tree,
		schema.EvStartStruct, schema.EventKey("m"), schema.EvStartMap,
		schema.EventKey("k1"), schema.EventInt(schema.KindI32, 1),
		schema.EventKey("k2"), schema.EventInt(schema.KindI32, 2),
		schema.EvEndMap, schema.EvEndStruct,
	)

	d, err := NewDriver(tree, buf)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, d.Run(rec))

	assert.Equal(t, []schema.Event{
		schema.EvStartSequence,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("m"), schema.EvStartMap,
		schema.EventKey("k1"), schema.EventInt(schema.KindI32, 1),
		schema.EventKey("k2"), schema.EventInt(schema.KindI32, 2),
		schema.EvEndMap, schema.EvEndStruct,
		schema.EvEndSequence,
	}, rec.evs)
}

// TestDriverUnionDispatchesViaTypeID checks that the variant chosen at
// build time is the one replayed, by name and index.
func TestDriverUnionDispatchesViaTypeID(t *testing.T) {
	root := field("", schema.Struct, false,
		field("u", schema.Union, false,
			field("A", schema.I32, false),
			field("B", schema.Utf8, false),
		),
	)
	tree := &schema.FieldTree{Root: root}
	buf := buffersFor(t, tree,
		schema.EvStartStruct, schema.EventKey("u"), schema.EventVariant("B", 1), schema.EventStr("hi"), schema.EvEndStruct,
	)

	d, err := NewDriver(tree, buf)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, d.Run(rec))

	assert.Equal(t, []schema.Event{
		schema.EvStartSequence,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("u"), schema.EventVariant("B", 1), schema.EventStr("hi"), schema.EvEndStruct,
		schema.EvEndSequence,
	}, rec.evs)
}

// TestDriverTupleStructRestoresTupleWireForm checks a field with
// StrategyTuple replays as StartTuple/Item pairs, not Key-form Struct.
func TestDriverTupleStructRestoresTupleWireForm(t *testing.T) {
	tuple := field("t", schema.Struct, false,
		field("0", schema.I32, false),
		field("1", schema.Bool, false),
	)
	tuple.Strategy = schema.StrategyTuple
	root := field("", schema.Struct, false, tuple)
	tree := &schema.FieldTree{Root: root}
	buf := buffersFor(t, tree,
		schema.EvStartStruct, schema.EventKey("t"), schema.EvStartTuple,
		schema.EvItem, schema.EventInt(schema.KindI32, 7),
		schema.EvItem, schema.EventBool(true),
		schema.EvEndTuple, schema.EvEndStruct,
	)

	d, err := NewDriver(tree, buf)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, d.Run(rec))

	assert.Equal(t, []schema.Event{
		schema.EvStartSequence,
		schema.EvItem,
		schema.EvStartStruct, schema.EventKey("t"), schema.EvStartTuple,
		schema.EvItem, schema.EventInt(schema.KindI32, 7),
		schema.EvItem, schema.EventBool(true),
		schema.EvEndTuple, schema.EvEndStruct,
		schema.EvEndSequence,
	}, rec.evs)
}

// TestDriverDictionaryRestoresOriginalStrings checks a repeated value
// decodes back to its string both times, not just its index.
func TestDriverDictionaryRestoresOriginalStrings(t *testing.T) {
	root := field("", schema.Struct, false, field("d", schema.Dictionary, false))
	tree := &schema.FieldTree{Root: root}
	buf := buffersFor(t, tree,
		schema.EvStartStruct, schema.EventKey("d"), schema.EventStr("a"), schema.EvEndStruct,
		schema.EvStartStruct, schema.EventKey("d"), schema.EventStr("b"), schema.EvEndStruct,
		schema.EvStartStruct, schema.EventKey("d"), schema.EventStr("a"), schema.EvEndStruct,
	)

	d, err := NewDriver(tree, buf)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, d.Run(rec))

	var strs []string
	for _, e := range rec.evs {
		if e.Kind == schema.KindStr {
			strs = append(strs, e.Str)
		}
	}
	assert.Equal(t, []string{"a", "b", "a"}, strs)
}

// buffersFor drives recordEvents (each a flattened one-record StartStruct
// ... EndStruct span, framed here with the outer sequence) through
// internal/builders to produce a filled Set laid out from tree, the same
// way internal/decode expects to find one.
func buffersFor(t *testing.T, tree *schema.FieldTree, recordEvents ...schema.Event) *buffers.Set {
	t.Helper()
	buf := buffers.NewSet()
	rb, err := builders.NewRecordsBuilder(tree, buf)
	require.NoError(t, err)
	feed(t, rb, schema.EvStartSequence)
	feed(t, rb, recordEvents...)
	feed(t, rb, schema.EvEndSequence)
	require.NoError(t, rb.Finalize())
	return buf
}
