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

import "github.com/google/uuid"

// BuildContext carries a correlation id for one compile-and-run pass. It
// carries no behavior of its own. [BuildColumns], [BuildColumn] and
// [DecodeColumns] accept one through their options, but they do not
// attach its id to the compiled program or to any error they return.
//
type BuildContext struct {
	ID uuid.UUID
}

// NewBuildContext allocates a [BuildContext] with a fresh id.
func NewBuildContext() *BuildContext {
	return &BuildContext{ID: uuid.New()}
}

func (c *BuildContext) String() string {
	if c == nil {
		return "<no-context>"
	}
	return c.ID.String()
}
