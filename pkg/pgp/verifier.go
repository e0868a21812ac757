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

// Package pgp implements the DetachedVerifier interface over the OpenPGP
// backend (ProtonMail/go-crypto).
//
// The verifier operates on a keyring loaded once at construction and never
// fetches keys over the network, so verification results are reproducible
// independent of network state.
package pgp

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/interfaces"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/utils"
)

// Ensure Verifier implements interfaces.DetachedVerifier at compile time.
var _ interfaces.DetachedVerifier = (*Verifier)(nil)

// ErrNotOneSignature reports a detached-signature blob that decodes to
// anything other than exactly one signature. Assert files are signed with a
// single signature; anything else violates the process precondition and is
// fatal rather than a per-signer status.
var ErrNotOneSignature = errors.New("detached signature must contain exactly one signature")

const armorHeader = "-----BEGIN PGP"

// VerifierOptions configures a Verifier.
type VerifierOptions struct {
	// KeyringPath is the path to the local public keyring to verify against,
	// either binary (pubring.gpg export) or ASCII-armored. Required; the
	// keyring is the offline trust context, loaded once at construction.
	KeyringPath string

	// Clock returns the time used for key and signature expiry checks.
	// Defaults to time.Now. Overridable for tests.
	Clock func() time.Time
}

// Verifier verifies detached OpenPGP signatures against a fixed local
// keyring and classifies the outcome.
type Verifier struct {
	keyring openpgp.EntityList
	now     func() time.Time
}

// NewVerifier loads the keyring and constructs a Verifier.
//
// A keyring that cannot be read at all is a startup-time fatal error,
// distinct from the per-signer failures reported through VerificationResult.
func NewVerifier(opts VerifierOptions) (*Verifier, error) {
	if err := utils.ValidateFileExists("keyring", opts.KeyringPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.KeyringPath)
	if err != nil {
		return nil, fmt.Errorf("reading keyring: %w", err)
	}

	var keyring openpgp.EntityList
	if bytes.Contains(data, []byte(armorHeader)) {
		keyring, err = openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	} else {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("loading keyring %q: %w", opts.KeyringPath, err)
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Verifier{keyring: keyring, now: now}, nil
}

// VerifyDetached verifies a detached signature over signed bytes.
//
// Classification follows a fixed order: a key unknown to the keyring reports
// a missing key (with no primary fingerprint, since none can be resolved
// without key material); a known but expired key reports key expiry; a
// failing mathematical check reports a bad signature; otherwise the
// signature verified and both fingerprints are populated.
func (v *Verifier) VerifyDetached(_ context.Context, sig, signed []byte) (interfaces.VerificationResult, error) {
	sigPacket, err := parseSignature(sig)
	if err != nil {
		return interfaces.VerificationResult{}, err
	}

	res := interfaces.VerificationResult{
		SigningFingerprint: issuerFingerprint(sigPacket),
	}

	keys := v.keysForSignature(sigPacket)
	if len(keys) == 0 {
		res.Error = interfaces.VerifyErrMissingKey
		return res, nil
	}

	key := keys[0]
	res.SigningFingerprint = hexFingerprint(key.PublicKey.Fingerprint)
	res.PrimaryFingerprint = hexFingerprint(key.Entity.PrimaryKey.Fingerprint)

	now := v.now()
	if key.SelfSignature != nil && key.PublicKey.KeyExpired(key.SelfSignature, now) {
		res.Error = interfaces.VerifyErrExpiredKey
		return res, nil
	}

	if !sigPacket.Hash.Available() {
		res.Error = interfaces.VerifyErrBad
		return res, nil
	}
	h := sigPacket.Hash.New()
	h.Write(signed)
	if err := key.PublicKey.VerifySignature(h, sigPacket); err != nil {
		res.Error = interfaces.VerifyErrBad
		return res, nil
	}
	if sigPacket.SigExpired(now) {
		res.Error = interfaces.VerifyErrBad
		return res, nil
	}

	res.OK = true
	return res, nil
}

// parseSignature decodes a signature blob (binary or armored) and returns
// its single signature packet. Returns ErrNotOneSignature for zero or
// multiple signatures.
func parseSignature(sig []byte) (*packet.Signature, error) {
	body := io.Reader(bytes.NewReader(sig))
	if strings.HasPrefix(strings.TrimSpace(string(sig)), armorHeader) {
		block, err := armor.Decode(bytes.NewReader(sig))
		if err != nil {
			return nil, fmt.Errorf("decoding armored signature: %w", err)
		}
		body = block.Body
	}

	var signatures []*packet.Signature
	reader := packet.NewReader(body)
	for {
		p, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading signature packet: %w", err)
		}
		if s, ok := p.(*packet.Signature); ok {
			signatures = append(signatures, s)
		}
	}

	if len(signatures) != 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrNotOneSignature, len(signatures))
	}
	return signatures[0], nil
}

// keysForSignature returns the keyring keys matching the signature's issuer.
func (v *Verifier) keysForSignature(sig *packet.Signature) []openpgp.Key {
	switch {
	case sig.IssuerKeyId != nil:
		return v.keyring.KeysById(*sig.IssuerKeyId)
	case len(sig.IssuerFingerprint) >= 8:
		// v6 signatures may carry only the issuer fingerprint; the key ID is
		// its trailing 8 bytes.
		fp := sig.IssuerFingerprint
		return v.keyring.KeysById(binary.BigEndian.Uint64(fp[len(fp)-8:]))
	default:
		return nil
	}
}

// issuerFingerprint extracts the best issuer identifier the signature
// metadata offers: the full fingerprint when the subpacket is present, the
// 16-digit key ID otherwise.
func issuerFingerprint(sig *packet.Signature) string {
	if len(sig.IssuerFingerprint) > 0 {
		return hexFingerprint(sig.IssuerFingerprint)
	}
	if sig.IssuerKeyId != nil {
		return fmt.Sprintf("%016X", *sig.IssuerKeyId)
	}
	return ""
}

func hexFingerprint(fp []byte) string {
	return strings.ToUpper(hex.EncodeToString(fp))
}
