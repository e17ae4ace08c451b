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

import "gopkg.in/yaml.v3"

// fieldDump is the YAML-friendly shadow of Field: DataType and Strategy
// render as their names rather than raw integers/strings, matching how
// a human actually wants to read a traced schema.
type fieldDump struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"`
	Nullable bool              `yaml:"nullable,omitempty"`
	Strategy string            `yaml:"strategy,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
	Children []fieldDump       `yaml:"children,omitempty"`
}

func dumpField(f *Field) fieldDump {
	d := fieldDump{
		Name:     f.Name,
		Type:     f.DataType.String(),
		Nullable: f.Nullable,
		Strategy: string(f.Strategy),
		Metadata: f.Metadata,
	}
	for _, c := range f.Children {
		d.Children = append(d.Children, dumpField(c))
	}
	return d
}

// DebugYAML renders f as a human-readable YAML tree, for logging a
// traced or hand-built schema during development and in test failure
// output. Always available, unlike a build-tag-gated debug log, since a
// one-shot schema dump carries no runtime cost comparable to per-field
// parse tracing.
func (f *Field) DebugYAML() (string, error) {
	b, err := yaml.Marshal(dumpField(f))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DebugYAML renders t's root the same way as [Field.DebugYAML].
func (t *FieldTree) DebugYAML() (string, error) {
	return t.Root.DebugYAML()
}
