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
	"sort"
	"strings"
)

// Diff represents the differences between a signer's output manifest and the
// reference output manifest.
type Diff struct {
	// ExtraFiles contains names present in the submission but not in the reference.
	ExtraFiles []string

	// MissingFiles contains names present in the reference but not in the submission.
	MissingFiles []string

	// Mismatches contains files present in both with different digests.
	Mismatches []DigestMismatch
}

// DigestMismatch is a single file whose digest differs between a submission
// and the reference.
type DigestMismatch struct {
	// Name is the file path within the manifest.
	Name string

	// ReferenceDigest is the digest from the reference manifest.
	ReferenceDigest string

	// ActualDigest is the digest from the signer's submission.
	ActualDigest string
}

// IsEmpty returns true if there are no differences.
func (d *Diff) IsEmpty() bool {
	return len(d.ExtraFiles) == 0 && len(d.MissingFiles) == 0 && len(d.Mismatches) == 0
}

// ComputeDiff computes the entry-level differences of a signer's submission
// against the reference manifest. All slices are sorted by name.
func ComputeDiff(actual, reference *Manifest) *Diff {
	diff := &Diff{
		ExtraFiles:   []string{},
		MissingFiles: []string{},
		Mismatches:   []DigestMismatch{},
	}

	actualDigests := make(map[string]string)
	for _, e := range actual.Entries() {
		actualDigests[e.Name] = e.Digest
	}
	referenceDigests := make(map[string]string)
	for _, e := range reference.Entries() {
		referenceDigests[e.Name] = e.Digest
	}

	for name := range actualDigests {
		if _, ok := referenceDigests[name]; !ok {
			diff.ExtraFiles = append(diff.ExtraFiles, name)
		}
	}
	sort.Strings(diff.ExtraFiles)

	for name := range referenceDigests {
		if _, ok := actualDigests[name]; !ok {
			diff.MissingFiles = append(diff.MissingFiles, name)
		}
	}
	sort.Strings(diff.MissingFiles)

	var common []string
	for name := range actualDigests {
		if _, ok := referenceDigests[name]; ok {
			common = append(common, name)
		}
	}
	sort.Strings(common)

	for _, name := range common {
		if actualDigests[name] != referenceDigests[name] {
			diff.Mismatches = append(diff.Mismatches, DigestMismatch{
				Name:            name,
				ReferenceDigest: referenceDigests[name],
				ActualDigest:    actualDigests[name],
			})
		}
	}

	return diff
}

// LinePair is one differing line position in a paired text diff: the
// reference line and the line the submission has in its place.
type LinePair struct {
	Reference string
	Actual    string
}

// DiffLines pairs the output-manifest text of a submission against the
// reference line by line and returns the positions that differ. When one
// text is longer, the shorter side's missing lines compare as empty.
func DiffLines(actual, reference *Manifest) []LinePair {
	actualLines := strings.Split(actual.OutManifestText(), "\n")
	referenceLines := strings.Split(reference.OutManifestText(), "\n")

	n := len(actualLines)
	if len(referenceLines) > n {
		n = len(referenceLines)
	}

	var pairs []LinePair
	for i := 0; i < n; i++ {
		var a, r string
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if i < len(referenceLines) {
			r = referenceLines[i]
		}
		if a != r {
			pairs = append(pairs, LinePair{Reference: r, Actual: a})
		}
	}
	return pairs
}
