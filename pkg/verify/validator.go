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

package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/interfaces"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/keyreg"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/logging"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/manifest"
)

// MissingKeyID identifies a missing-key record. The fingerprint is part of
// the key: a signer may present different subkeys across builds, and records
// must not collapse by name alone.
type MissingKeyID struct {
	Signer      string
	Fingerprint string
}

// Mismatch retains both manifests of a mismatching submission for diff
// reporting.
type Mismatch struct {
	Signer    string
	Actual    *manifest.Manifest
	Reference *manifest.Manifest
}

// BuildResult is the outcome of validating one build variant across all
// discovered signer submissions.
type BuildResult struct {
	// Statuses maps signer name to verification status. Signers with no
	// subdirectory for the build do not appear.
	Statuses map[string]Status

	// MissingKeys records which trust source each problematic key was
	// missing from.
	MissingKeys map[MissingKeyID]Missing

	// Mismatches maps signer name to the retained manifest pair.
	Mismatches map[string]Mismatch
}

// NewBuildResult returns an empty result.
func NewBuildResult() *BuildResult {
	return &BuildResult{
		Statuses:    make(map[string]Status),
		MissingKeys: make(map[MissingKeyID]Missing),
		Mismatches:  make(map[string]Mismatch),
	}
}

// BuildValidatorOptions configures a BuildValidator.
type BuildValidatorOptions struct {
	// Verifier is the detached-signature verification backend. Required.
	Verifier interfaces.DetachedVerifier

	// Registry is the loaded trust file. Required.
	Registry *keyreg.Registry

	// CompareTo optionally pins the reference signer. When set, that signer's
	// manifest is the reference for every build; when empty, the first
	// trusted, valid, parseable submission in iteration order becomes the
	// reference.
	CompareTo string

	// Logger receives per-signer progress at debug level.
	Logger logging.Logger
}

// BuildValidator evaluates one build variant across all signer submissions:
// signature verification, trust binding, and reference reconciliation.
type BuildValidator struct {
	verifier  interfaces.DetachedVerifier
	registry  *keyreg.Registry
	compareTo string
	logger    logging.Logger
}

// NewBuildValidator constructs a BuildValidator.
func NewBuildValidator(opts BuildValidatorOptions) (*BuildValidator, error) {
	if opts.Verifier == nil {
		return nil, newError(ErrTypeConfiguration, "", "a signature verifier is required", nil)
	}
	if opts.Registry == nil {
		return nil, newError(ErrTypeConfiguration, "", "a key registry is required", nil)
	}
	return &BuildValidator{
		verifier:  opts.Verifier,
		registry:  opts.Registry,
		compareTo: opts.CompareTo,
		logger:    logging.EnsureLogger(opts.Logger),
	}, nil
}

// verdict is the tagged outcome of the cryptographic and trust evaluation
// for one submission, before content comparison.
type verdict struct {
	crypto    interfaces.VerificationResult
	untrusted bool
}

// classify maps a verdict to a status as an ordered chain of guarded cases,
// so the precedence rule stays auditable as a single unit: cryptographic
// failure masks a trust-binding failure, which masks content comparison.
// StatusOK here means "eligible for content comparison".
func classify(v verdict) Status {
	switch {
	case !v.crypto.OK && v.crypto.Error == interfaces.VerifyErrMissingKey:
		return StatusMissingKey
	case !v.crypto.OK && v.crypto.Error == interfaces.VerifyErrExpiredKey:
		return StatusExpiredKey
	case !v.crypto.OK:
		return StatusInvalidSig
	case v.untrusted:
		// A valid signature from a key not bound to the claimed identity is
		// rejected exactly as if the key were unknown; otherwise one signer
		// could sign for another undetected.
		return StatusMissingKey
	default:
		return StatusOK
	}
}

// ValidateBuild evaluates every signer subdirectory of buildDir.
// manifestName and sigName are the expected file names within each signer's
// subdirectory.
//
// A buildDir that does not exist is not an error: nobody has submitted yet,
// and the result is empty. The only fatal conditions are a signature blob
// violating the one-signature precondition, a pinned reference signer
// without a usable manifest, and context cancellation.
func (v *BuildValidator) ValidateBuild(ctx context.Context, buildDir, manifestName, sigName string) (*BuildResult, error) {
	result := NewBuildResult()

	entries, err := os.ReadDir(buildDir)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, newError(ErrTypeIO, buildDir, "reading build directory", err)
	}

	reference, err := v.pinnedReference(buildDir, manifestName)
	if err != nil {
		return nil, err
	}

	// Directory listing order is platform-dependent; sort case-insensitively
	// so the implicit reference choice is portable across filesystems.
	signers := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			signers = append(signers, entry.Name())
		}
	}
	sort.Slice(signers, func(i, j int) bool {
		return strings.ToLower(signers[i]) < strings.ToLower(signers[j])
	})

	for _, signer := range signers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, m, err := v.validateSigner(ctx, buildDir, signer, manifestName, sigName, reference, result)
		if err != nil {
			return nil, err
		}
		result.Statuses[signer] = status
		// The first trusted, valid, parseable manifest becomes the reference
		// for the remaining signers.
		if reference == nil && m != nil {
			reference = m
		}
	}

	return result, nil
}

// pinnedReference loads the configured reference signer's manifest, outside
// the signer loop. Returns nil when no reference signer is pinned.
func (v *BuildValidator) pinnedReference(buildDir, manifestName string) (*manifest.Manifest, error) {
	if v.compareTo == "" {
		return nil, nil
	}
	path := filepath.Join(buildDir, v.compareTo, manifestName)
	m, err := manifest.Load(path)
	if err != nil {
		return nil, newError(ErrTypeConfiguration, path,
			fmt.Sprintf("loading pinned reference manifest of %q", v.compareTo), err)
	}
	return m, nil
}

// validateSigner evaluates a single signer submission. It returns the
// signer's status and, when this submission is eligible to become the
// implicit reference, its parsed manifest.
func (v *BuildValidator) validateSigner(ctx context.Context, buildDir, signer, manifestName, sigName string,
	reference *manifest.Manifest, result *BuildResult) (Status, *manifest.Manifest, error) {
	logger := v.logger.WithField("signer", signer)
	logger.Debug("verifying submission")

	manifestPath := filepath.Join(buildDir, signer, manifestName)
	sigPath := filepath.Join(buildDir, signer, sigName)

	manifestData, err := os.ReadFile(manifestPath)
	if err != nil {
		return StatusNoFile, nil, nil
	}
	sigData, err := os.ReadFile(sigPath)
	if err != nil {
		return StatusNoFile, nil, nil
	}

	crypto, err := v.verifier.VerifyDetached(ctx, sigData, manifestData)
	if err != nil {
		return StatusNotSubmitted, nil, newError(ErrTypePrecondition, sigPath, "verifying detached signature", err)
	}

	// Trust binding: either the signing subkey or its primary key may be the
	// one bound to the signer's name in the trust file.
	name := strings.ToLower(signer)
	untrusted := !v.registry.Contains(crypto.PrimaryFingerprint, name) &&
		!v.registry.Contains(crypto.SigningFingerprint, name)
	if untrusted {
		result.MissingKeys[MissingKeyID{Signer: signer, Fingerprint: crypto.Fingerprint()}] |= MissingKeysTxt
	}
	if !crypto.OK && crypto.Error == interfaces.VerifyErrMissingKey {
		result.MissingKeys[MissingKeyID{Signer: signer, Fingerprint: crypto.Fingerprint()}] |= MissingGPG
	}

	status := classify(verdict{crypto: crypto, untrusted: untrusted})
	if status != StatusOK {
		logger.Debug("submission rejected: %s", status)
		return status, nil, nil
	}

	m, err := manifest.Parse(manifestData)
	if err != nil {
		// A trusted, validly signed but unusable manifest counts as an
		// unusable submission, not as a reproducibility break.
		logger.Warn("unusable assert file %s: %v", manifestPath, err)
		return StatusNoFile, nil, nil
	}

	if reference == nil {
		return StatusOK, m, nil
	}
	if !m.Equal(reference) {
		result.Mismatches[signer] = Mismatch{Signer: signer, Actual: m, Reference: reference}
		return StatusMismatch, nil, nil
	}
	return StatusOK, nil, nil
}
