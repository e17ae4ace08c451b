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

package schema

import "fmt"

// PathError is embedded by every error kind below; it names the
// offending field by its dotted path from the root, the structural
// counterpart of carrying a byte offset on every parse error.
type PathError struct {
	Path []string
}

func (e *PathError) pathString() string {
	if len(e.Path) == 0 {
		return "<root>"
	}
	s := e.Path[0]
	for _, p := range e.Path[1:] {
		s += "." + p
	}
	return s
}

// SchemaConflictError reports that the tracer's merge lattice failed to
// reconcile two observations of the same field.
type SchemaConflictError struct {
	PathError
	Reason string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("serde: schema conflict at %s: %s", e.pathString(), e.Reason)
}

// UnexpectedEventError reports that an instruction or builder received
// an event kind it does not handle.
type UnexpectedEventError struct {
	PathError
	Got      Kind
	Expected []Kind
	At       string
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("serde: unexpected event %v; expected one of %v at instruction %s (field %s)",
		e.Got, e.Expected, e.At, e.pathString())
}

// UnknownFieldError reports a record key with no corresponding field.
type UnknownFieldError struct {
	PathError
	Key string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("serde: unknown field %q at %s", e.Key, e.pathString())
}

// DuplicateFieldError reports the same key seen twice within one record.
type DuplicateFieldError struct {
	PathError
	Key string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("serde: duplicate field %q at %s", e.Key, e.pathString())
}

// MissingFieldError reports a non-nullable field absent from a record.
type MissingFieldError struct {
	PathError
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("serde: missing non-nullable field %q at %s", e.Key, e.pathString())
}

// IntegerOverflowError reports an offset buffer whose running total
// exceeds the width it was built with.
type IntegerOverflowError struct {
	PathError
	Width int
}

func (e *IntegerOverflowError) Error() string {
	return fmt.Sprintf("serde: offset overflow widening to %d-bit offsets at %s", e.Width, e.pathString())
}

// InvalidDateError reports a string that failed to parse under the
// date-guessing strategy fixed for its column.
type InvalidDateError struct {
	PathError
	Value  string
	Format string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("serde: value %q does not match date format %s at %s", e.Value, e.Format, e.pathString())
}

// UnknownVariantError reports a union discriminant out of range for its
// field's known variants.
type UnknownVariantError struct {
	PathError
	Index int
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("serde: unknown variant index %d at %s", e.Index, e.pathString())
}

// FinalizationError reports that the event stream ended with the
// interpreter or a builder not in a terminal state.
type FinalizationError struct {
	PathError
	At string
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("serde: unterminated structure at instruction %s (field %s)", e.At, e.pathString())
}

// CustomError wraps a failure from an external collaborator (a
// [RecordStream] or [Array] implementation).
type CustomError struct {
	PathError
	Err error
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("serde: %s: %v", e.pathString(), e.Err)
}

func (e *CustomError) Unwrap() error { return e.Err }
