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

package serde

import (
	"fmt"

	"github.com/colbuild/serde/internal/decode"
)

// DecodeColumns walks arrays back into a well-nested event stream on
// emit, the reverse of [BuildColumns]. arrays must all share the buffer
// set one [BuildColumns] call produced against tree — internal/decode
// re-derives every field's buffer ids from tree directly, so only the
// first array's Buffers() is actually consulted.
func DecodeColumns(tree *FieldTree, arrays []Array, emit EventSink, opts ...DecodeOption) error {
	resolveDecodeOptions(opts)
	if len(arrays) == 0 {
		return fmt.Errorf("serde: DecodeColumns requires at least one array")
	}
	d, err := decode.NewDriver(tree, arrays[0].Buffers())
	if err != nil {
		return err
	}
	return d.Run(emit)
}
