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
	"encoding/json"
	"io"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/manifest"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/release"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/verify"
)

// Report is the machine-readable form of a release verification matrix,
// suitable for CI gating.
type Report struct {
	Release string   `json:"release"`
	Builds  []string `json:"builds"`
	Signers []string `json:"signers"`

	// Results maps build name to signer name to status. Every signer has an
	// entry per build, including "not_submitted".
	Results map[string]map[string]verify.Status `json:"results"`

	MissingKeys []MissingKeyRecord `json:"missing_keys,omitempty"`
	Mismatches  []MismatchRecord   `json:"mismatches,omitempty"`
}

// MissingKeyRecord reports one key that could not be fully resolved, and
// which trust sources it was missing from.
type MissingKeyRecord struct {
	Signer      string   `json:"signer"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	MissingFrom []string `json:"missing_from"`
}

// MismatchRecord reports one submission whose manifest diverged from the
// reference, with an entry-level digest diff.
type MismatchRecord struct {
	Build  string `json:"build"`
	Signer string `json:"signer"`

	ExtraFiles   []string       `json:"extra_files,omitempty"`
	MissingFiles []string       `json:"missing_files,omitempty"`
	DigestDiffs  []DigestRecord `json:"digest_diffs,omitempty"`
}

// DigestRecord is one file whose digest differs from the reference.
type DigestRecord struct {
	Name            string `json:"name"`
	ReferenceDigest string `json:"reference_digest"`
	ActualDigest    string `json:"actual_digest"`
}

// NewReport flattens a matrix into its serializable form.
func NewReport(matrix *release.Matrix) *Report {
	report := &Report{
		Release: matrix.Release,
		Builds:  make([]string, 0, len(matrix.Builds)),
		Signers: matrix.Signers,
		Results: make(map[string]map[string]verify.Status, len(matrix.Builds)),
	}
	if report.Signers == nil {
		report.Signers = []string{}
	}

	for _, build := range matrix.Builds {
		report.Builds = append(report.Builds, build.BuildName)
		statuses := make(map[string]verify.Status, len(matrix.Signers))
		for _, signer := range matrix.Signers {
			statuses[signer] = matrix.Status(signer, build.BuildName)
		}
		report.Results[build.BuildName] = statuses
	}

	for _, id := range matrix.MissingKeyIDs() {
		flags := matrix.MissingKeys[id]
		var sources []string
		if flags.Has(verify.MissingGPG) {
			sources = append(sources, "gpg")
		}
		if flags.Has(verify.MissingKeysTxt) {
			sources = append(sources, "keys.txt")
		}
		report.MissingKeys = append(report.MissingKeys, MissingKeyRecord{
			Signer:      id.Signer,
			Fingerprint: id.Fingerprint,
			MissingFrom: sources,
		})
	}

	for _, build := range matrix.Builds {
		for _, mismatch := range matrix.Mismatches[build.BuildName] {
			diff := manifest.ComputeDiff(mismatch.Actual, mismatch.Reference)
			record := MismatchRecord{
				Build:        build.BuildName,
				Signer:       mismatch.Signer,
				ExtraFiles:   diff.ExtraFiles,
				MissingFiles: diff.MissingFiles,
			}
			for _, d := range diff.Mismatches {
				record.DigestDiffs = append(record.DigestDiffs, DigestRecord{
					Name:            d.Name,
					ReferenceDigest: d.ReferenceDigest,
					ActualDigest:    d.ActualDigest,
				})
			}
			report.Mismatches = append(report.Mismatches, record)
		}
	}

	return report
}

// WriteJSON serializes the matrix as indented JSON.
func WriteJSON(out io.Writer, matrix *release.Matrix) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewReport(matrix))
}
