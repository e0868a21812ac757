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

// Package verify evaluates signer submissions for one build variant:
// signature verification, trust binding against the key registry, and
// content reconciliation against a reference manifest.
package verify

import "strings"

// Status is the verification outcome for one signer and one build.
// Exactly one status applies per signer and build cell.
type Status int

const (
	// StatusNotSubmitted means the signer has no subdirectory for the build.
	StatusNotSubmitted Status = iota
	// StatusOK means the signature verified, the key is bound to the signer,
	// and the manifest matches the reference.
	StatusOK
	// StatusNoFile means the manifest or signature file is missing (or the
	// manifest is unusable; see BuildValidator).
	StatusNoFile
	// StatusMissingKey means the signing key is unknown to the local keyring,
	// or is not bound to the claimed signer identity in the trust file.
	StatusMissingKey
	// StatusExpiredKey means the signing key is known but expired.
	StatusExpiredKey
	// StatusInvalidSig means the key is known but the signature check failed.
	StatusInvalidSig
	// StatusMismatch means a correct signature over a manifest that differs
	// from the reference.
	StatusMismatch
)

// String returns the machine-readable name of the status, as used in the
// JSON report.
func (s Status) String() string {
	switch s {
	case StatusNotSubmitted:
		return "not_submitted"
	case StatusOK:
		return "ok"
	case StatusNoFile:
		return "no_file"
	case StatusMissingKey:
		return "missing_key"
	case StatusExpiredKey:
		return "expired_key"
	case StatusInvalidSig:
		return "invalid_sig"
	case StatusMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so statuses serialize as
// their names.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Missing is a bit field recording which trust source a signer's key is
// absent from. Flags combine by bitwise OR and accumulate across builds.
type Missing int

const (
	// MissingGPG means the key is absent from the local keyring.
	MissingGPG Missing = 1 << iota
	// MissingKeysTxt means the (fingerprint, name) pair is absent from the
	// trust file.
	MissingKeysTxt
)

// Has reports whether flag is set.
func (m Missing) Has(flag Missing) bool {
	return m&flag != 0
}

// String describes the missing sources, matching the legacy report wording.
func (m Missing) String() string {
	var parts []string
	if m.Has(MissingGPG) {
		parts = append(parts, "from GPG")
	}
	if m.Has(MissingKeysTxt) {
		parts = append(parts, "from keys.txt")
	}
	return strings.Join(parts, ", ")
}
