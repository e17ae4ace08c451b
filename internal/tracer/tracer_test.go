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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colbuild/serde/schema"
)

func feed(t *testing.T, tr *Tracer, evs ...schema.Event) {
	t.Helper()
	for _, e := range evs {
		require.NoError(t, tr.Accept(e))
	}
}

// TestTraceNullableI8Scenario covers records alternating a present and
// an absent optional i8 field inferring a nullable I8 column.
func TestTraceNullableI8Scenario(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)

	feed(t, tr, schema.EvStartStruct, schema.EventKey("a"), schema.EvSome, schema.EventInt(schema.KindI8, 1), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("a"), schema.EvNull, schema.EvEndStruct)

	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	a := tree.Root.Child("a")
	require.NotNil(t, a)
	assert.Equal(t, schema.I8, a.DataType)
	assert.True(t, a.Nullable)
}

// TestTraceListOfBoolScenario covers scenario 2: a single record with
// field "xs": [true, false] infers LargeList(Bool).
func TestTraceListOfBoolScenario(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("xs"), schema.EvStartSequence)
	feed(t, tr, schema.EventBool(true), schema.EventBool(false))
	feed(t, tr, schema.EvEndSequence, schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	xs := tree.Root.Child("xs")
	require.NotNil(t, xs)
	assert.Equal(t, schema.LargeList, xs.DataType)
	require.Len(t, xs.Children, 1)
	assert.Equal(t, schema.Bool, xs.Children[0].DataType)
}

// TestTraceStringConcatenationScenario covers scenario 3: two records'
// Utf8 values for the same field merge to a single string field.
func TestTraceStringConcatenationScenario(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("s"), schema.EventStr("hello "), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("s"), schema.EventStr("world"), schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	s := tree.Root.Child("s")
	require.NotNil(t, s)
	assert.Equal(t, schema.Utf8, s.DataType)
	assert.False(t, s.Nullable)
}

// TestTraceDictionaryEncodingScenario covers scenario 4: a string field
// traced with dictionary encoding requested finalizes to Dictionary(U64,
// LargeUtf8).
func TestTraceDictionaryEncodingScenario(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("color"), schema.EventStr("red"), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("color"), schema.EventStr("blue"), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("color"), schema.EventStr("red"), schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	opts := schema.DefaultTraceOptions()
	opts.StringDictionaryEncoding = true
	tr2 := New(opts)
	feed(t, tr2, schema.EvStartSequence)
	feed(t, tr2, schema.EvStartStruct, schema.EventKey("color"), schema.EventStr("red"), schema.EvEndStruct)
	feed(t, tr2, schema.EvEndSequence)

	tree, err := tr2.Finalize()
	require.NoError(t, err)
	c := tree.Root.Child("color")
	require.NotNil(t, c)
	assert.Equal(t, schema.Dictionary, c.DataType)
	require.Len(t, c.Children, 2)
	assert.Equal(t, "indices", c.Children[0].Name)
	assert.Equal(t, schema.U64, c.Children[0].DataType)
	assert.Equal(t, "values", c.Children[1].Name)
	assert.Equal(t, schema.LargeUtf8, c.Children[1].DataType)
}

// TestTraceMapAsStructScenario covers scenario 5: a map field whose key
// set stays identical across every record finalizes as a Struct tagged
// with strategy MapAsStruct.
func TestTraceMapAsStructScenario(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)

	feed(t, tr, schema.EvStartStruct, schema.EventKey("m"), schema.EvStartMap,
		schema.EventKey("x"), schema.EventInt(schema.KindI32, 1),
		schema.EventKey("y"), schema.EventInt(schema.KindI32, 2),
		schema.EvEndMap, schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("m"), schema.EvStartMap,
		schema.EventKey("x"), schema.EventInt(schema.KindI32, 3),
		schema.EventKey("y"), schema.EventInt(schema.KindI32, 4),
		schema.EvEndMap, schema.EvEndStruct)

	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	m := tree.Root.Child("m")
	require.NotNil(t, m)
	assert.Equal(t, schema.Struct, m.DataType)
	assert.Equal(t, schema.StrategyMapAsStruct, m.Strategy)
	assert.Equal(t, schema.StrategyMapAsStruct, schema.Strategy(m.Metadata[schema.MetadataStrategyKey]))
	require.Len(t, m.Children, 2)
	assert.Equal(t, "x", m.Children[0].Name)
	assert.Equal(t, "y", m.Children[1].Name)
}

// TestTraceMapUnstableKeysFallsBackToMap covers the MapAsStruct
// precondition failing: a differing key set across records must finalize
// as a plain Map, not a Struct.
func TestTraceMapUnstableKeysFallsBackToMap(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("m"), schema.EvStartMap,
		schema.EventKey("x"), schema.EventInt(schema.KindI32, 1),
		schema.EvEndMap, schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("m"), schema.EvStartMap,
		schema.EventKey("y"), schema.EventInt(schema.KindI32, 2),
		schema.EvEndMap, schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	m := tree.Root.Child("m")
	require.NotNil(t, m)
	assert.Equal(t, schema.Map, m.DataType)
	require.Len(t, m.Children, 2)
	assert.Equal(t, "key", m.Children[0].Name)
	assert.Equal(t, "value", m.Children[1].Name)
}

// TestTraceUnionScenario covers scenario 6: a field whose records carry
// different tagged-union variants infers a Union field with one child per
// variant, in first-seen order.
func TestTraceUnionScenario(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("v"), schema.EventVariant("A", 0), schema.EventInt(schema.KindI32, 1), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("v"), schema.EventVariant("B", 1), schema.EventStr("x"), schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	v := tree.Root.Child("v")
	require.NotNil(t, v)
	assert.Equal(t, schema.Union, v.DataType)
	require.Len(t, v.Children, 2)
	assert.Equal(t, "A", v.Children[0].Name)
	assert.Equal(t, schema.I32, v.Children[0].DataType)
	assert.Equal(t, "B", v.Children[1].Name)
	assert.Equal(t, schema.Utf8, v.Children[1].DataType)
}

func TestTraceAsFieldWrapsSingleField(t *testing.T) {
	opts := schema.DefaultTraceOptions()
	opts.AsField = "total"
	tr := New(opts)
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EventInt(schema.KindI64, 1))
	feed(t, tr, schema.EventInt(schema.KindI64, 2))
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "total", tree.Root.Name)
	assert.Equal(t, schema.I64, tree.Root.DataType)
}

func TestTraceUnobservedFieldFailsWithoutAllowNullFields(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("a"), schema.EvNull, schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	_, err := tr.Finalize()
	var conflict *schema.SchemaConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestTraceUnobservedFieldOKWithAllowNullFields(t *testing.T) {
	opts := schema.DefaultTraceOptions()
	opts.AllowNullFields = true
	tr := New(opts)
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("a"), schema.EvNull, schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	a := tree.Root.Child("a")
	require.NotNil(t, a)
	assert.Equal(t, schema.Null, a.DataType)
}

func TestTraceCoerceNumbersWidensMismatch(t *testing.T) {
	opts := schema.DefaultTraceOptions()
	opts.CoerceNumbers = true
	tr := New(opts)
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("n"), schema.EventInt(schema.KindI32, 1), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("n"), schema.EventInt(schema.KindI64, 2), schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	n := tree.Root.Child("n")
	require.NotNil(t, n)
	assert.Equal(t, schema.I64, n.DataType)
}

func TestTraceMismatchedNumbersFailWithoutCoerceNumbers(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("n"), schema.EventInt(schema.KindI32, 1), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("n"), schema.EventF64(1.5))
	err := tr.Accept(schema.EvEndStruct)
	var conflict *schema.SchemaConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = tr.Finalize()
	require.ErrorAs(t, err, &conflict)
}

func TestTraceGuessDatesCommitsOnFirstMatch(t *testing.T) {
	opts := schema.DefaultTraceOptions()
	opts.GuessDates = true
	tr := New(opts)
	feed(t, tr, schema.EvStartSequence)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("at"), schema.EventStr("2024-01-02T03:04:05"), schema.EvEndStruct)
	feed(t, tr, schema.EvStartStruct, schema.EventKey("at"), schema.EventStr("2024-06-07T08:09:10"), schema.EvEndStruct)
	feed(t, tr, schema.EvEndSequence)

	tree, err := tr.Finalize()
	require.NoError(t, err)
	at := tree.Root.Child("at")
	require.NotNil(t, at)
	assert.Equal(t, schema.Date64, at.DataType)
	assert.Equal(t, schema.StrategyNaiveStrAsDate64, at.Strategy)
}

func TestTraceGuessDatesMismatchFails(t *testing.T) {
	opts := schema.DefaultTraceOptions()
	opts.GuessDates = true
	tr := New(opts)
	require.NoError(t, tr.Accept(schema.EvStartSequence))
	require.NoError(t, tr.Accept(schema.EvStartStruct))
	require.NoError(t, tr.Accept(schema.EventKey("at")))
	require.NoError(t, tr.Accept(schema.EventStr("2024-01-02T03:04:05")))
	require.NoError(t, tr.Accept(schema.EvEndStruct))

	require.NoError(t, tr.Accept(schema.EvStartStruct))
	require.NoError(t, tr.Accept(schema.EventKey("at")))
	require.NoError(t, tr.Accept(schema.EventStr("not a date")))
	err := tr.Accept(schema.EvEndStruct)
	require.Error(t, err)
	var invalid *schema.InvalidDateError
	require.ErrorAs(t, err, &invalid)
}

func TestTraceDuplicateFieldFails(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	require.NoError(t, tr.Accept(schema.EvStartSequence))
	require.NoError(t, tr.Accept(schema.EvStartStruct))
	require.NoError(t, tr.Accept(schema.EventKey("a")))
	require.NoError(t, tr.Accept(schema.EventInt(schema.KindI32, 1)))
	require.NoError(t, tr.Accept(schema.EventKey("a")))
	require.NoError(t, tr.Accept(schema.EventInt(schema.KindI32, 2)))
	err := tr.Accept(schema.EvEndStruct)
	require.Error(t, err)
	var dup *schema.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
}

func TestTraceFinalizeBeforeEndSequenceFails(t *testing.T) {
	tr := New(schema.DefaultTraceOptions())
	require.NoError(t, tr.Accept(schema.EvStartSequence))
	_, err := tr.Finalize()
	var fin *schema.FinalizationError
	require.ErrorAs(t, err, &fin)
}
