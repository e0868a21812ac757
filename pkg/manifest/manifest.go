// Copyright 2026 The Gitian Verify Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package manifest parses gitian build-assert files, the structured
// descriptors of deterministic build outputs that signers sign and that are
// compared across signers to detect reproducibility breaks.
package manifest

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// outManifestKey is the assert-file entry holding the output manifest, the
// part compared across signers.
const outManifestKey = "out_manifest"

// Manifest is the parsed content of one signer's build-assert file.
//
// Equality between manifests is by parsed-value equality of the output
// manifest, not by raw bytes, so formatting differences between otherwise
// identical submissions do not count as reproducibility breaks.
type Manifest struct {
	values      map[string]any
	outManifest any
}

// Load reads and parses an assert file from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assert file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing assert file %q: %w", path, err)
	}
	return m, nil
}

// Parse parses assert-file bytes.
//
// Assert files are YAML. Historically they carry an `!omap` or `!!omap`
// document tag and serialize as a sequence of single-entry mappings; newer
// files are plain mappings. Both forms are accepted by inspecting node kinds
// rather than resolving tags.
func Parse(data []byte) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("assert file is empty")
	}

	values := make(map[string]any)
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.MappingNode:
		if err := decodePairs(doc, values); err != nil {
			return nil, err
		}
	case yaml.SequenceNode:
		// omap style: each sequence item is a single-entry mapping.
		for _, item := range doc.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("unexpected %v node in omap sequence", item.Kind)
			}
			if err := decodePairs(item, values); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("assert file root is neither mapping nor omap sequence")
	}

	out, ok := values[outManifestKey]
	if !ok {
		return nil, fmt.Errorf("assert file has no %s entry", outManifestKey)
	}

	return &Manifest{values: values, outManifest: out}, nil
}

// decodePairs decodes the key/value pairs of a mapping node into values.
func decodePairs(node *yaml.Node, values map[string]any) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("decoding value of %q: %w", key, err)
		}
		values[key] = value
	}
	return nil
}

// OutManifest returns the parsed output manifest value. For gitian assert
// files this is normally a block string of `<digest> <path>` lines.
func (m *Manifest) OutManifest() any {
	return m.outManifest
}

// Value returns an arbitrary top-level assert-file entry, such as
// in_manifest or base_manifests.
func (m *Manifest) Value(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Equal reports whether two manifests have structurally equal output
// manifests. Other assert-file entries (in_manifest, base_manifests) do not
// affect equality.
func (m *Manifest) Equal(other *Manifest) bool {
	if m == nil || other == nil {
		return m == other
	}
	return reflect.DeepEqual(m.outManifest, other.outManifest)
}

// OutManifestText renders the output manifest as text for line diffing.
// String values are returned as-is; anything else is re-serialized as YAML.
func (m *Manifest) OutManifestText() string {
	if s, ok := m.outManifest.(string); ok {
		return s
	}
	data, err := yaml.Marshal(m.outManifest)
	if err != nil {
		return fmt.Sprintf("%v", m.outManifest)
	}
	return string(data)
}

// Entry is one `<digest> <path>` line of an output manifest.
type Entry struct {
	Digest string
	Name   string
}

// Entries parses the output manifest into digest/name pairs. Lines that do
// not have at least two fields are skipped.
func (m *Manifest) Entries() []Entry {
	var entries []Entry
	for _, line := range strings.Split(m.OutManifestText(), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, Entry{
			Digest: fields[0],
			Name:   strings.Join(fields[1:], " "),
		})
	}
	return entries
}
