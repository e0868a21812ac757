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

package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const mappingAssert = `out_manifest: |
  0123abcd  bitcoin-0.21.0-x86_64-linux-gnu.tar.gz
  4567ef01  bitcoin-0.21.0.tar.gz
in_manifest: |
  89ab  src.tar.gz
`

const omapAssert = `--- !!omap
- out_manifest: |
    0123abcd  bitcoin-0.21.0-x86_64-linux-gnu.tar.gz
    4567ef01  bitcoin-0.21.0.tar.gz
- in_manifest: |
    89ab  src.tar.gz
`

func TestParseMapping(t *testing.T) {
	m, err := Parse([]byte(mappingAssert))
	if err != nil {
		t.Fatal(err)
	}

	entries := m.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), entries)
	}
	if entries[0].Digest != "0123abcd" || entries[0].Name != "bitcoin-0.21.0-x86_64-linux-gnu.tar.gz" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if _, ok := m.Value("in_manifest"); !ok {
		t.Error("expected in_manifest entry to be retained")
	}
}

func TestParseOmapSequence(t *testing.T) {
	m, err := Parse([]byte(omapAssert))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Parse([]byte(mappingAssert))
	if err != nil {
		t.Fatal(err)
	}

	if !m.Equal(plain) {
		t.Error("omap and mapping forms of the same content should be equal")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"scalar root", "just a string"},
		{"no out_manifest", "in_manifest: |\n  89ab  src.tar.gz\n"},
		{"invalid yaml", "out_manifest: |bad\n\t:"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.input)); err == nil {
				t.Errorf("expected parse error for %q", tc.input)
			}
		})
	}
}

func TestEqualIgnoresOtherEntries(t *testing.T) {
	a, err := Parse([]byte("out_manifest: |\n  01 f\nin_manifest: |\n  aa x\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte("out_manifest: |\n  01 f\nin_manifest: |\n  bb y\n"))
	if err != nil {
		t.Fatal(err)
	}

	if !a.Equal(b) {
		t.Error("manifests differing only outside out_manifest should be equal")
	}

	c, err := Parse([]byte("out_manifest: |\n  02 f\n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(c) {
		t.Error("manifests with different out_manifest should not be equal")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.assert")
	if err := os.WriteFile(path, []byte(mappingAssert), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Entries()) != 2 {
		t.Errorf("expected 2 entries after Load, got %d", len(m.Entries()))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.assert")); err == nil {
		t.Error("expected error for missing assert file")
	}
}
