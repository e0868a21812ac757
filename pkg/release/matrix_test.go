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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/interfaces"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/keyreg"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/verify"
)

const (
	testVersion = "0.21.0"

	fprAlice = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	fprBob   = "BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	fprCarol = "CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"

	manifestOne = "out_manifest: |\n  01 bitcoin-0.21.0.tar.gz\n"
	manifestTwo = "out_manifest: |\n  02 bitcoin-0.21.0.tar.gz\n"
)

type fakeVerifier struct {
	results map[string]interfaces.VerificationResult
}

func (f *fakeVerifier) VerifyDetached(_ context.Context, sig, _ []byte) (interfaces.VerificationResult, error) {
	key := strings.TrimSpace(string(sig))
	res, ok := f.results[key]
	if !ok {
		return interfaces.VerificationResult{}, fmt.Errorf("no fake result for signature %q", key)
	}
	return res, nil
}

func writeSubmission(t *testing.T, root, buildDir, signer, packageName, manifestContent, sigContent string) {
	t.Helper()
	dir := filepath.Join(root, buildDir, signer)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifestName := packageName + "-build.assert"
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(manifestContent), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName+".sig"), []byte(sigContent), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newBuilder(t *testing.T, root string, fv *fakeVerifier, trustLines ...string) *MatrixBuilder {
	t.Helper()
	reg, err := keyreg.Parse(strings.NewReader(strings.Join(trustLines, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	validator, err := verify.NewBuildValidator(verify.BuildValidatorOptions{
		Verifier: fv,
		Registry: reg,
	})
	if err != nil {
		t.Fatal(err)
	}
	builder, err := NewMatrixBuilder(MatrixBuilderOptions{
		Validator: validator,
		Directory: root,
	})
	if err != nil {
		t.Fatal(err)
	}
	return builder
}

func TestBuildMatrix(t *testing.T) {
	root := t.TempDir()
	linuxPkg := "bitcoin-core-linux-0.21"
	osxPkg := "bitcoin-core-osx-0.21"

	// alice submits linux and osx, bob only linux with a diverging manifest.
	writeSubmission(t, root, "0.21.0-linux", "alice", linuxPkg, manifestOne, "sig-alice-linux")
	writeSubmission(t, root, "0.21.0-osx-unsigned", "alice", osxPkg, manifestOne, "sig-alice-osx")
	writeSubmission(t, root, "0.21.0-linux", "bob", linuxPkg, manifestTwo, "sig-bob-linux")

	fv := &fakeVerifier{results: map[string]interfaces.VerificationResult{
		"sig-alice-linux": {OK: true, PrimaryFingerprint: fprAlice, SigningFingerprint: fprAlice},
		"sig-alice-osx":   {OK: true, PrimaryFingerprint: fprAlice, SigningFingerprint: fprAlice},
		"sig-bob-linux":   {OK: true, PrimaryFingerprint: fprBob, SigningFingerprint: fprBob},
	}}

	builder := newBuilder(t, root, fv,
		fprAlice+" comment (alice)",
		fprBob+" comment (bob)",
	)

	matrix, err := builder.Build(context.Background(), testVersion)
	if err != nil {
		t.Fatal(err)
	}

	if matrix.Empty() {
		t.Fatal("matrix should not be empty")
	}
	if len(matrix.Signers) != 2 || matrix.Signers[0] != "alice" || matrix.Signers[1] != "bob" {
		t.Errorf("signers = %v", matrix.Signers)
	}

	if got := matrix.Status("alice", "linux"); got != verify.StatusOK {
		t.Errorf("alice/linux = %v", got)
	}
	if got := matrix.Status("alice", "osx-unsigned"); got != verify.StatusOK {
		t.Errorf("alice/osx-unsigned = %v", got)
	}
	if got := matrix.Status("bob", "linux"); got != verify.StatusMismatch {
		t.Errorf("bob/linux = %v", got)
	}
	if got := matrix.Status("bob", "osx-unsigned"); got != verify.StatusNotSubmitted {
		t.Errorf("bob/osx-unsigned = %v", got)
	}
	if got := matrix.Status("alice", "win-signed"); got != verify.StatusNotSubmitted {
		t.Errorf("alice/win-signed = %v", got)
	}

	if !matrix.HasFailures() {
		t.Error("a mismatch cell should count as a failure")
	}

	mismatches := matrix.Mismatches["linux"]
	if len(mismatches) != 1 || mismatches[0].Signer != "bob" {
		t.Errorf("mismatches = %+v", mismatches)
	}
}

func TestBuildMatrixMergesMissingKeys(t *testing.T) {
	// carol is unknown to the keyring in the linux build and signs validly
	// but unbound in the osx build; the flags accumulate on one record.
	root := t.TempDir()
	writeSubmission(t, root, "0.21.0-linux", "carol", "bitcoin-core-linux-0.21", manifestOne, "sig-carol-linux")
	writeSubmission(t, root, "0.21.0-osx-unsigned", "carol", "bitcoin-core-osx-0.21", manifestOne, "sig-carol-osx")

	fv := &fakeVerifier{results: map[string]interfaces.VerificationResult{
		"sig-carol-linux": {SigningFingerprint: fprCarol, Error: interfaces.VerifyErrMissingKey},
		"sig-carol-osx":   {OK: true, PrimaryFingerprint: fprCarol, SigningFingerprint: fprCarol},
	}}

	builder := newBuilder(t, root, fv) // empty trust file
	matrix, err := builder.Build(context.Background(), testVersion)
	if err != nil {
		t.Fatal(err)
	}

	if got := matrix.Status("carol", "linux"); got != verify.StatusMissingKey {
		t.Errorf("carol/linux = %v", got)
	}
	if got := matrix.Status("carol", "osx-unsigned"); got != verify.StatusMissingKey {
		t.Errorf("carol/osx-unsigned = %v", got)
	}

	flags := matrix.MissingKeys[verify.MissingKeyID{Signer: "carol", Fingerprint: fprCarol}]
	if !flags.Has(verify.MissingGPG) || !flags.Has(verify.MissingKeysTxt) {
		t.Errorf("expected GPG and keys.txt flags merged across builds, got %v", flags)
	}

	ids := matrix.MissingKeyIDs()
	if len(ids) != 1 || ids[0].Signer != "carol" {
		t.Errorf("missing key ids = %v", ids)
	}
}

func TestBuildMatrixEmptyRelease(t *testing.T) {
	builder := newBuilder(t, filepath.Join(t.TempDir(), "gitian.sigs"), &fakeVerifier{})
	matrix, err := builder.Build(context.Background(), testVersion)
	if err != nil {
		t.Fatal(err)
	}
	if !matrix.Empty() {
		t.Errorf("expected empty matrix, got signers %v", matrix.Signers)
	}
	if matrix.HasFailures() {
		t.Error("empty matrix cannot have failures")
	}
}

func TestBuildMatrixMalformedVersion(t *testing.T) {
	builder := newBuilder(t, t.TempDir(), &fakeVerifier{})
	if _, err := builder.Build(context.Background(), "garbage"); err == nil {
		t.Error("expected error for malformed version")
	}
}

func TestNewMatrixBuilderValidation(t *testing.T) {
	if _, err := NewMatrixBuilder(MatrixBuilderOptions{Directory: "x"}); err == nil {
		t.Error("expected error for missing validator")
	}

	reg, err := keyreg.Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	validator, err := verify.NewBuildValidator(verify.BuildValidatorOptions{
		Verifier: &fakeVerifier{},
		Registry: reg,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewMatrixBuilder(MatrixBuilderOptions{Validator: validator}); err == nil {
		t.Error("expected error for missing directory")
	}
}
