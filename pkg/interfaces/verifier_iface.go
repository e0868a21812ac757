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

// Package interfaces defines the boundary between the reconciliation engine
// and its cryptographic backend.
package interfaces

import "context"

// VerifyError classifies why a detached signature did not verify.
type VerifyError int

const (
	// VerifyErrNone means the signature verified.
	VerifyErrNone VerifyError = iota
	// VerifyErrMissingKey means the signing key is unknown to the local keyring.
	VerifyErrMissingKey
	// VerifyErrExpiredKey means the signing key is known but expired.
	VerifyErrExpiredKey
	// VerifyErrBad means the mathematical signature check failed.
	VerifyErrBad
)

// String returns a human-readable name for the error class.
func (e VerifyError) String() string {
	switch e {
	case VerifyErrNone:
		return "none"
	case VerifyErrMissingKey:
		return "missing key"
	case VerifyErrExpiredKey:
		return "expired key"
	case VerifyErrBad:
		return "bad signature"
	default:
		return "unknown"
	}
}

// VerificationResult is the classified outcome of verifying one detached
// signature against signed bytes.
type VerificationResult struct {
	// OK reports whether the signature verified cryptographically.
	OK bool

	// PrimaryFingerprint is the uppercase hex fingerprint of the primary key
	// the signing key belongs to. Empty when the key is unknown to the local
	// keyring, since a primary key cannot be resolved without key material.
	PrimaryFingerprint string

	// SigningFingerprint is the uppercase hex fingerprint (or, for old
	// signatures without an issuer-fingerprint subpacket, the 16-digit key ID)
	// of the key that made the signature, taken from the signature metadata.
	// Populated even when the key itself is unknown.
	SigningFingerprint string

	// Error classifies the failure when OK is false. VerifyErrNone when OK.
	Error VerifyError
}

// Fingerprint returns the best available fingerprint for reporting: the
// primary key fingerprint when known, the signing fingerprint otherwise.
func (r VerificationResult) Fingerprint() string {
	if r.PrimaryFingerprint != "" {
		return r.PrimaryFingerprint
	}
	return r.SigningFingerprint
}

// DetachedVerifier verifies one detached signature blob against the bytes it
// claims to sign, classifying the outcome.
//
// This is a low-level interface over the OpenPGP backend: it performs no
// identity binding and no content comparison, both of which belong to the
// build validator. Implementations must operate in an offline trust context
// so results are reproducible independent of network state.
//
// A blob decoding to anything other than exactly one signature violates the
// one-signature-per-assert-file precondition and is reported through the
// error return, not through the VerificationResult.
type DetachedVerifier interface {
	// VerifyDetached verifies sig over signed and classifies the outcome.
	VerifyDetached(ctx context.Context, sig, signed []byte) (VerificationResult, error)
}
