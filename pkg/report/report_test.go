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

package report

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/manifest"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/release"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/verify"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func mustParse(t *testing.T, data string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testMatrix(t *testing.T) *release.Matrix {
	t.Helper()
	builds, err := release.BuildsFor("0.21.0")
	if err != nil {
		t.Fatal(err)
	}

	reference := mustParse(t, "out_manifest: |\n  01 bitcoin-0.21.0.tar.gz\n  02 common.tar.gz\n")
	actual := mustParse(t, "out_manifest: |\n  ff bitcoin-0.21.0.tar.gz\n  02 common.tar.gz\n")

	return &release.Matrix{
		Release: "0.21.0",
		Builds:  builds,
		Signers: []string{"alice", "bob", "carol"},
		Results: map[string]map[string]verify.Status{
			"linux": {
				"alice": verify.StatusOK,
				"bob":   verify.StatusMismatch,
				"carol": verify.StatusMissingKey,
			},
			"osx-unsigned": {
				"alice": verify.StatusOK,
				"bob":   verify.StatusInvalidSig,
			},
		},
		MissingKeys: map[verify.MissingKeyID]verify.Missing{
			{Signer: "carol", Fingerprint: "CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"}: verify.MissingGPG | verify.MissingKeysTxt,
			{Signer: "dave", Fingerprint: ""}:                                           verify.MissingKeysTxt,
		},
		Mismatches: map[string][]verify.Mismatch{
			"linux": {{Signer: "bob", Actual: actual, Reference: reference}},
		},
	}
}

func TestTableReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableReporter(&buf).Render(testMatrix(t)); err != nil {
		t.Fatal(err)
	}
	out := stripANSI(buf.String())

	for _, want := range []string{
		"Signer",
		"linux", "osx-unsigned", "win-signed",
		"alice", "bob", "carol",
		"OK", "Mismatch", "No Key", "Bad",
		"Missing keys",
		"CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC  from GPG, from keys.txt",
		"???  from keys.txt",
		"Mismatches",
		"bob (linux):",
		"-01 bitcoin-0.21.0.tar.gz",
		"+ff bitcoin-0.21.0.tar.gz",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// The unchanged line never shows up in the diff section.
	if strings.Contains(out, "-02 common.tar.gz") {
		t.Errorf("diff should only contain changed lines:\n%s", out)
	}
}

func TestTableReporterNotSubmittedDash(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableReporter(&buf).Render(testMatrix(t)); err != nil {
		t.Fatal(err)
	}
	out := stripANSI(buf.String())

	// carol submitted nothing beyond linux, so her row ends in dashes.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "carol") {
			if !strings.Contains(line, "-") {
				t.Errorf("expected dashes for unsubmitted builds: %q", line)
			}
			return
		}
	}
	t.Error("carol row not found")
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testMatrix(t)); err != nil {
		t.Fatal(err)
	}

	var report Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if report.Release != "0.21.0" {
		t.Errorf("release = %q", report.Release)
	}
	if len(report.Builds) != 5 || report.Builds[0] != "linux" {
		t.Errorf("builds = %v", report.Builds)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	results := raw["results"].(map[string]any)
	linux := results["linux"].(map[string]any)
	if linux["alice"] != "ok" || linux["bob"] != "mismatch" {
		t.Errorf("linux results = %v", linux)
	}
	winSigned := results["win-signed"].(map[string]any)
	if winSigned["alice"] != "not_submitted" {
		t.Errorf("win-signed results = %v", winSigned)
	}

	if len(report.MissingKeys) != 2 {
		t.Fatalf("missing keys = %+v", report.MissingKeys)
	}
	carol := report.MissingKeys[0]
	if carol.Signer != "carol" || len(carol.MissingFrom) != 2 {
		t.Errorf("carol record = %+v", carol)
	}

	if len(report.Mismatches) != 1 {
		t.Fatalf("mismatches = %+v", report.Mismatches)
	}
	mismatch := report.Mismatches[0]
	if mismatch.Build != "linux" || mismatch.Signer != "bob" {
		t.Errorf("mismatch = %+v", mismatch)
	}
	if len(mismatch.DigestDiffs) != 1 || mismatch.DigestDiffs[0].Name != "bitcoin-0.21.0.tar.gz" {
		t.Errorf("digest diffs = %+v", mismatch.DigestDiffs)
	}
}
