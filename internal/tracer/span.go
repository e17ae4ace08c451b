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

// spanFrame is one level of a spanStack, tracking what kind of event is
// expected next while buffering a single top-level item's worth of
// events out of a push-style [schema.EventSink] stream.
type spanFrame uint8

const (
	// frameValue expects exactly one value: a leaf, a Some/Variant
	// modifier (which keeps this same frame waiting on the payload), or
	// a Start* that becomes a body frame in place.
	frameValue spanFrame = iota
	// frameListBody is inside a Sequence or Tuple, expecting either
	// another item, a no-op Item separator, or the matching End.
	frameListBody
	// frameStructBody is inside a Struct or Map, expecting a Key or the
	// matching End.
	frameStructBody
)

// spanStack recognizes the boundary of one complete, optionally
// Some/Variant-wrapped value out of a flat stream of events fed one at a
// time, without knowing its shape in advance. It is the tracer's
// analogue of the builder automata of internal/builders: both walk the
// same well-nested grammar, but the tracer only needs to know where an
// item ends, not how to act on each token.
type spanStack []spanFrame

// newSpan returns a stack primed to recognize exactly one value.
func newSpan() spanStack { return spanStack{frameValue} }

// push feeds one event to the stack, returning true once the value it
// was primed for is complete (the stack has emptied).
func (s *spanStack) push(e schema.Event) (bool, error) {
	for {
		if len(*s) == 0 {
			return false, fmt.Errorf("tracer: item already complete, unexpected event %v", e.Kind)
		}
		top := (*s)[len(*s)-1]
		switch top {
		case frameValue:
			switch e.Kind {
			case schema.KindSome, schema.KindVariant:
				return false, nil
			case schema.KindStartSequence, schema.KindStartTuple:
				(*s)[len(*s)-1] = frameListBody
				return false, nil
			case schema.KindStartStruct, schema.KindStartMap:
				(*s)[len(*s)-1] = frameStructBody
				return false, nil
			default:
				*s = (*s)[:len(*s)-1]
				return len(*s) == 0, nil
			}
		case frameListBody:
			switch e.Kind {
			case schema.KindEndSequence, schema.KindEndTuple:
				*s = (*s)[:len(*s)-1]
				return len(*s) == 0, nil
			case schema.KindItem:
				return false, nil
			default:
				*s = append(*s, frameValue)
				continue
			}
		case frameStructBody:
			switch e.Kind {
			case schema.KindEndStruct, schema.KindEndMap:
				*s = (*s)[:len(*s)-1]
				return len(*s) == 0, nil
			case schema.KindKey, schema.KindOwnedKey:
				*s = append(*s, frameValue)
				return false, nil
			default:
				return false, fmt.Errorf("tracer: expected Key or End, got %v", e.Kind)
			}
		}
	}
}
