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

// Package serde converts between a tree-shaped record model and a
// columnar buffer representation.
//
// A [RecordStream] drives an [EventSink] with a well-nested stream of
// [Event] tokens. [TraceSchema] observes such a stream to infer a
// [FieldTree]; [BuildColumns] compiles a field tree into a bytecode
// program (package internal/compiler) and runs it (package internal/vm)
// against a second pass over the same kind of stream to produce
// [Array] values. [DecodeColumns] is the reverse: it walks built arrays
// and emits the same event stream back out.
//
// Callers that want to build columns without compiling a program first
// can drive the hand-written state machines in internal/builders
// directly; both paths write into the same buffer types in package
// buffers.
package serde
