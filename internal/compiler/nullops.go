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

package compiler

import (
	"fmt"

	"github.com/colbuild/serde/buffers"
	"github.com/colbuild/serde/schema"
)

// The pushXxx helpers below build the individual [NullOp] closures a
// null recipe is assembled from (§4.4): each writes exactly the filler
// value one buffer needs when the row it belongs to carries no real
// data, keeping every column the same length as its siblings.

func pushBitFalse(id buffers.ID) NullOp {
	return func(s *buffers.Set) error {
		s.Bits[id].Push(false)
		return nil
	}
}

func pushI8Zero(id buffers.ID) NullOp {
	return func(s *buffers.Set) error {
		s.I8[id].Push(0)
		return nil
	}
}

func pushNumZero(dt schema.DataType, id buffers.ID) NullOp {
	return func(s *buffers.Set) error {
		switch dt {
		case schema.I8:
			s.I8[id].Push(0)
		case schema.I16:
			s.I16[id].Push(0)
		case schema.I32:
			s.I32[id].Push(0)
		case schema.I64:
			s.I64[id].Push(0)
		case schema.U8:
			s.U8[id].Push(0)
		case schema.U16:
			s.U16[id].Push(0)
		case schema.U32:
			s.U32[id].Push(0)
		case schema.U64:
			s.U64[id].Push(0)
		case schema.F32:
			s.F32[id].Push(0)
		case schema.F64:
			s.F64[id].Push(0)
		default:
			return fmt.Errorf("compiler: no zero filler for data type %s", dt)
		}
		return nil
	}
}

func pushStrEmpty(id buffers.ID, bits int) NullOp {
	return func(s *buffers.Set) error {
		if bits == 64 {
			return s.LargeUtf8[id].Push("")
		}
		return s.Utf8[id].Push("")
	}
}

func pushOffsetsEmpty(id buffers.ID, bits int) NullOp {
	return func(s *buffers.Set) error {
		if bits == 64 {
			s.Offsets64[id].PushCurrent()
			return nil
		}
		s.Offsets32[id].PushCurrent()
		return nil
	}
}

func pushDictDefault(dictID, idxID buffers.ID) NullOp {
	return func(s *buffers.Set) error {
		idx, err := s.Dictionary[dictID].Push("")
		if err != nil {
			return err
		}
		s.U64[idxID].Push(idx)
		return nil
	}
}

func pushNullCountInc(id buffers.ID) NullOp {
	return func(s *buffers.Set) error {
		s.NullCounts[id].Push()
		return nil
	}
}
