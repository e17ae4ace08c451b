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

// Dictionary maintains a string -> first-assigned-index mapping plus a
// values buffer for the strings themselves (§4.1). Re-inserting a value
// already present must not touch Values at all, only push the existing
// index onto the indices side (owned by the caller, typically a
// Primitive[uint64]) — this is the detail behind testable property #5.
type Dictionary struct {
	index  map[string]uint64
	Values *String[int64]
}

// NewDictionary returns an empty dictionary buffer backed by a
// LargeUtf8 values buffer, matching the Dictionary(U64, LargeUtf8)
// finalization in §4.3.
func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]uint64), Values: NewLargeUtf8()}
}

// Push interns v, returning its index: the existing index if v was seen
// before, or the next index (after appending v to Values) otherwise.
func (d *Dictionary) Push(v string) (uint64, error) {
	if idx, ok := d.index[v]; ok {
		return idx, nil
	}
	idx := uint64(len(d.index))
	if err := d.Values.Push(v); err != nil {
		return 0, err
	}
	d.index[v] = idx
	return idx, nil
}

// Len returns the number of distinct values interned.
func (d *Dictionary) Len() int { return len(d.index) }
