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

package buffers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitPushAndGet(t *testing.T) {
	var b Bit
	for _, v := range []bool{true, false, false, true, true} {
		b.Push(v)
	}
	require.Equal(t, 5, b.Len())
	assert.True(t, b.Get(0))
	assert.False(t, b.Get(1))
	assert.False(t, b.Get(2))
	assert.True(t, b.Get(3))
	assert.True(t, b.Get(4))
	assert.Equal(t, 3, b.CountSet())
}

func TestBitGetOutOfRangeDoesNotPanic(t *testing.T) {
	var b Bit
	assert.False(t, b.Get(100))
}

func TestBitGrowsAcrossWords(t *testing.T) {
	var b Bit
	for i := 0; i < 130; i++ {
		b.Push(i%7 == 0)
	}
	require.Equal(t, 130, b.Len())
	for i := 0; i < 130; i++ {
		assert.Equal(t, i%7 == 0, b.Get(i), "bit %d", i)
	}
}

func TestOffsets64ListOfBoolScenario(t *testing.T) {
	// [[true,false], [], [false]].
	off := NewOffsets64()
	require.NoError(t, off.Push(2))
	require.NoError(t, off.Push(0))
	require.NoError(t, off.Push(1))
	assert.Equal(t, []int64{0, 2, 2, 3}, off.Data())
}

func TestOffsetsPushCurrentAndIncCurrent(t *testing.T) {
	off := NewOffsets32()
	off.IncCurrent(3)
	off.IncCurrent(2)
	require.NoError(t, off.Push(0))
	assert.Equal(t, []int32{0, 5}, off.Data())
	off.PushCurrent()
	assert.Equal(t, []int32{0, 5, 5}, off.Data())
}

func TestOffsets32Overflow(t *testing.T) {
	off := NewOffsets32()
	off.IncCurrent(1 << 31)
	err := off.Push(0)
	assert.ErrorIs(t, err, ErrOffsetOverflow)
}

func TestStringBufferConcatenatesAndOffsets(t *testing.T) {
	// d's utf8 buffer ends up "helloworld"
	// with offsets [0,5,10].
	s := NewUtf8()
	require.NoError(t, s.Push("hello"))
	require.NoError(t, s.Push("world"))
	assert.Equal(t, "helloworld", string(s.Data))
	assert.Equal(t, []int32{0, 5, 10}, s.Offsets.Data())
	assert.Equal(t, 2, s.Len())
}

func TestDictionaryScenario(t *testing.T) {
	// Dictionary-encoding a repeating run of strings.
	d := NewDictionary()
	input := []string{"a", "b", "a", "a", "c"}
	var indices []uint64
	for _, v := range input {
		idx, err := d.Push(v)
		require.NoError(t, err)
		indices = append(indices, idx)
	}
	assert.Equal(t, []uint64{0, 1, 0, 0, 2}, indices)
	assert.Equal(t, "abc", string(d.Values.Data))
	assert.Equal(t, 3, d.Len())
}

func TestPrimitiveNullableI8Scenario(t *testing.T) {
	// [Some(0), None, Some(2)].
	var data Primitive[int8]
	var valid Bit
	push := func(v int8, present bool) {
		valid.Push(present)
		if present {
			data.Push(v)
		} else {
			data.Push(0)
		}
	}
	push(0, true)
	push(0, false)
	push(2, true)
	assert.Equal(t, []int8{0, 0, 2}, data.Data())
	assert.True(t, valid.Get(0))
	assert.False(t, valid.Get(1))
	assert.True(t, valid.Get(2))
}
