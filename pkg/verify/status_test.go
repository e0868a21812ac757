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

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusNotSubmitted, "not_submitted"},
		{StatusOK, "ok"},
		{StatusNoFile, "no_file"},
		{StatusMissingKey, "missing_key"},
		{StatusExpiredKey, "expired_key"},
		{StatusInvalidSig, "invalid_sig"},
		{StatusMismatch, "mismatch"},
		{Status(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.status.String(); got != tc.expected {
			t.Errorf("Status(%d).String() = %q, expected %q", tc.status, got, tc.expected)
		}
	}
}

func TestStatusMarshalText(t *testing.T) {
	text, err := StatusMismatch.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "mismatch" {
		t.Errorf("MarshalText() = %q, expected %q", text, "mismatch")
	}
}

func TestMissingFlags(t *testing.T) {
	var m Missing
	if m.Has(MissingGPG) || m.Has(MissingKeysTxt) {
		t.Error("zero value must have no flags set")
	}

	m |= MissingGPG
	if !m.Has(MissingGPG) || m.Has(MissingKeysTxt) {
		t.Errorf("expected only GPG flag, got %v", m)
	}
	if m.String() != "from GPG" {
		t.Errorf("String() = %q", m.String())
	}

	m |= MissingKeysTxt
	if m.String() != "from GPG, from keys.txt" {
		t.Errorf("String() = %q", m.String())
	}
}

func TestErrorTypeString(t *testing.T) {
	if got := ErrTypeConfiguration.String(); got != "ConfigurationError" {
		t.Errorf("String() = %q", got)
	}
	if got := ErrorType(-1).String(); got != "UnknownError" {
		t.Errorf("String() = %q", got)
	}
}

func TestVerificationErrorFormatting(t *testing.T) {
	err := newError(ErrTypeIO, "/tmp/x", "reading build directory", nil)
	expected := "IOError: reading build directory (path: /tmp/x)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, expected %q", err.Error(), expected)
	}
}
