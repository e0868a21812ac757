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

// Package keyreg loads the trust file (keys.txt) that binds signer names to
// the OpenPGP key fingerprints authorized to sign on their behalf.
package keyreg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// keyLine matches `<HEX_FINGERPRINT> <free text> (<name1>, <name2>, ...)`.
// The free text between the fingerprint and the parenthesized alias list is
// ignored. Lines not matching the pattern are skipped.
var keyLine = regexp.MustCompile(`^([0-9A-F]+) .* \((.*)\)`)

// binding is one authorized (fingerprint, signer name) pair. Fingerprints are
// stored uppercase, names lowercase.
type binding struct {
	fingerprint string
	name        string
}

// Registry holds the set of authorized (fingerprint, signer name) pairs from
// a trust file. It is loaded once and read-only thereafter.
type Registry struct {
	bindings map[binding]struct{}
}

// Load reads and parses a trust file from path.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trust file: %w", err)
	}
	defer f.Close()

	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing trust file %q: %w", path, err)
	}
	return reg, nil
}

// Parse reads trust-file lines from r. Every comma-separated alias in a
// line's parenthesized list produces a distinct pair sharing the line's
// fingerprint.
func Parse(r io.Reader) (*Registry, error) {
	reg := &Registry{bindings: make(map[binding]struct{})}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := keyLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		fingerprint := strings.ToUpper(m[1])
		for _, name := range strings.Split(m[2], ",") {
			reg.bindings[binding{
				fingerprint: fingerprint,
				name:        strings.ToLower(strings.TrimSpace(name)),
			}] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Contains reports whether the (fingerprint, name) pair is authorized.
// Both comparisons are case-insensitive. An empty fingerprint never matches.
func (r *Registry) Contains(fingerprint, name string) bool {
	if fingerprint == "" {
		return false
	}
	_, ok := r.bindings[binding{
		fingerprint: strings.ToUpper(fingerprint),
		name:        strings.ToLower(name),
	}]
	return ok
}

// Len returns the number of authorized pairs.
func (r *Registry) Len() int {
	return len(r.bindings)
}
