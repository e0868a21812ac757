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

package release

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/logging"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/verify"
)

// Matrix is the aggregate verification outcome of one release: one status
// cell per signer and build variant, plus the merged missing-key records and
// retained mismatches.
type Matrix struct {
	// Release is the version string the matrix was built for.
	Release string

	// Builds are the variants in canonical order, the matrix columns.
	Builds []BuildDescriptor

	// Signers is the union of signer names seen across any build, sorted
	// case-insensitively. The matrix rows.
	Signers []string

	// Results maps build name to per-signer status. Signers absent from a
	// build have no entry; Status reports those as not submitted.
	Results map[string]map[string]verify.Status

	// MissingKeys accumulates missing-key flags across all builds, merged by
	// bitwise OR per (signer, fingerprint).
	MissingKeys map[verify.MissingKeyID]verify.Missing

	// Mismatches maps build name to the retained manifest pairs, ordered by
	// signer name.
	Mismatches map[string][]verify.Mismatch
}

// Status returns the cell for one signer and build, defaulting to
// not-submitted when the signer has no subdirectory for the build.
func (m *Matrix) Status(signer, buildName string) verify.Status {
	if statuses, ok := m.Results[buildName]; ok {
		if status, ok := statuses[signer]; ok {
			return status
		}
	}
	return verify.StatusNotSubmitted
}

// Empty reports whether no signer submitted anything for any build.
func (m *Matrix) Empty() bool {
	return len(m.Signers) == 0
}

// HasFailures reports whether any cell is a mismatch or an invalid
// signature, the conditions a CI gate fails on.
func (m *Matrix) HasFailures() bool {
	for _, statuses := range m.Results {
		for _, status := range statuses {
			if status == verify.StatusMismatch || status == verify.StatusInvalidSig {
				return true
			}
		}
	}
	return false
}

// MissingKeyIDs returns the missing-key record keys sorted by signer name,
// then fingerprint, for deterministic report output.
func (m *Matrix) MissingKeyIDs() []verify.MissingKeyID {
	ids := make([]verify.MissingKeyID, 0, len(m.MissingKeys))
	for id := range m.MissingKeys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Signer != ids[j].Signer {
			return strings.ToLower(ids[i].Signer) < strings.ToLower(ids[j].Signer)
		}
		return ids[i].Fingerprint < ids[j].Fingerprint
	})
	return ids
}

// MatrixBuilderOptions configures a MatrixBuilder.
type MatrixBuilderOptions struct {
	// Validator evaluates one build directory. Required.
	Validator *verify.BuildValidator

	// Directory is the signatures root containing one
	// "<version>-<build name>" subdirectory per build. Required.
	Directory string

	// Logger receives per-build progress at debug level.
	Logger logging.Logger
}

// MatrixBuilder drives build validation across every variant of a release
// and assembles the signer-by-build matrix.
type MatrixBuilder struct {
	validator *verify.BuildValidator
	directory string
	logger    logging.Logger
}

// NewMatrixBuilder constructs a MatrixBuilder.
func NewMatrixBuilder(opts MatrixBuilderOptions) (*MatrixBuilder, error) {
	if opts.Validator == nil {
		return nil, &verify.VerificationError{
			Type:    verify.ErrTypeConfiguration,
			Message: "a build validator is required",
		}
	}
	if opts.Directory == "" {
		return nil, &verify.VerificationError{
			Type:    verify.ErrTypeConfiguration,
			Message: "a signatures directory is required",
		}
	}
	return &MatrixBuilder{
		validator: opts.Validator,
		directory: opts.Directory,
		logger:    logging.EnsureLogger(opts.Logger),
	}, nil
}

// Build validates every build variant of the release and merges the results.
func (b *MatrixBuilder) Build(ctx context.Context, version string) (*Matrix, error) {
	builds, err := BuildsFor(version)
	if err != nil {
		return nil, &verify.VerificationError{
			Type:    verify.ErrTypeConfiguration,
			Message: "deriving build variants",
			Cause:   err,
		}
	}

	matrix := &Matrix{
		Release:     version,
		Builds:      builds,
		Results:     make(map[string]map[string]verify.Status),
		MissingKeys: make(map[verify.MissingKeyID]verify.Missing),
		Mismatches:  make(map[string][]verify.Mismatch),
	}
	signerSet := make(map[string]struct{})

	for _, build := range builds {
		logger := b.logger.WithField("build", build.BuildName)
		logger.Debug("validating build directory %s", build.DirName)

		result, err := b.validator.ValidateBuild(ctx,
			filepath.Join(b.directory, build.DirName),
			build.ManifestName(), build.SignatureName())
		if err != nil {
			return nil, err
		}

		matrix.Results[build.BuildName] = result.Statuses
		for signer := range result.Statuses {
			signerSet[signer] = struct{}{}
		}
		for id, flags := range result.MissingKeys {
			matrix.MissingKeys[id] |= flags
		}
		if len(result.Mismatches) > 0 {
			mismatches := make([]verify.Mismatch, 0, len(result.Mismatches))
			for _, mismatch := range result.Mismatches {
				mismatches = append(mismatches, mismatch)
			}
			sort.Slice(mismatches, func(i, j int) bool {
				return strings.ToLower(mismatches[i].Signer) < strings.ToLower(mismatches[j].Signer)
			})
			matrix.Mismatches[build.BuildName] = mismatches
		}
	}

	matrix.Signers = make([]string, 0, len(signerSet))
	for signer := range signerSet {
		matrix.Signers = append(matrix.Signers, signer)
	}
	sort.Slice(matrix.Signers, func(i, j int) bool {
		return strings.ToLower(matrix.Signers[i]) < strings.ToLower(matrix.Signers[j])
	})

	return matrix, nil
}
