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

// Program is the compiled output of §4.4: a flat, indexed instruction
// array plus the entry point the interpreter starts at. All jump targets
// (Instr.Next, Instr.IfNone, Instr.ElemEntry, Instr.Fields,
// Instr.VariantEntry) are resolved instruction indices into Instrs.
type Program struct {
	Instrs []*Instr
	Entry  int
}

// ProgramEndPC reports whether pc is the program's terminal instruction.
func (p *Program) ProgramEndPC(pc int) bool {
	return pc >= 0 && pc < len(p.Instrs) && p.Instrs[pc].Op == OpProgramEnd
}
