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

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		version     string
		major       int
		minor       int
		expectError bool
	}{
		{version: "0.21.0", major: 0, minor: 21},
		{version: "0.18.1", major: 0, minor: 18},
		{version: "22.0", major: 22, minor: 0},
		{version: "0.21.0rc5", major: 0, minor: 21},
		{version: "0.19rc1", major: 0, minor: 19},
		{version: "22", expectError: true},
		{version: "", expectError: true},
		{version: "rc1.0", expectError: true},
	}

	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			major, minor, err := ParseVersion(tc.version)
			if tc.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tc.version)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if major != tc.major || minor != tc.minor {
				t.Errorf("ParseVersion(%q) = (%d, %d), expected (%d, %d)",
					tc.version, major, minor, tc.major, tc.minor)
			}
		})
	}
}

func TestBuildsForPackageNaming(t *testing.T) {
	tests := []struct {
		version   string
		buildName string
		expected  string
	}{
		// Prefix boundary at 0.19.
		{"0.18.0", "linux", "bitcoin-linux-0.18"},
		{"0.21.0", "linux", "bitcoin-core-linux-0.21"},
		{"0.19.0", "linux", "bitcoin-core-linux-0.19"},
		{"0.21.0", "osx-unsigned", "bitcoin-core-osx-0.21"},
		{"0.21.0", "win-unsigned", "bitcoin-core-win-0.21"},
		// Codesigner packages never carry a version.
		{"0.21.0", "osx-signed", "bitcoin-dmg-signer"},
		{"0.18.0", "win-signed", "bitcoin-win-signer"},
		{"22.0", "linux", "bitcoin-core-linux-22.0"},
	}

	for _, tc := range tests {
		t.Run(tc.version+"/"+tc.buildName, func(t *testing.T) {
			builds, err := BuildsFor(tc.version)
			if err != nil {
				t.Fatal(err)
			}
			for _, build := range builds {
				if build.BuildName != tc.buildName {
					continue
				}
				if build.PackageName != tc.expected {
					t.Errorf("package name = %q, expected %q", build.PackageName, tc.expected)
				}
				return
			}
			t.Fatalf("build %q not derived for %q", tc.buildName, tc.version)
		})
	}
}

func TestBuildsForOrderAndNames(t *testing.T) {
	builds, err := BuildsFor("0.21.0")
	if err != nil {
		t.Fatal(err)
	}

	expectedOrder := []string{"linux", "osx-unsigned", "win-unsigned", "osx-signed", "win-signed"}
	if len(builds) != len(expectedOrder) {
		t.Fatalf("expected %d builds, got %d", len(expectedOrder), len(builds))
	}
	for i, build := range builds {
		if build.BuildName != expectedOrder[i] {
			t.Errorf("build %d = %q, expected %q", i, build.BuildName, expectedOrder[i])
		}
		if build.DirName != "0.21.0-"+expectedOrder[i] {
			t.Errorf("dir name = %q", build.DirName)
		}
	}

	linux := builds[0]
	if linux.ManifestName() != "bitcoin-core-linux-0.21-build.assert" {
		t.Errorf("manifest name = %q", linux.ManifestName())
	}
	if linux.SignatureName() != "bitcoin-core-linux-0.21-build.assert.sig" {
		t.Errorf("signature name = %q", linux.SignatureName())
	}
}

func TestBuildsForMalformedVersion(t *testing.T) {
	if _, err := BuildsFor("garbage"); err == nil {
		t.Error("expected error for malformed version")
	}
}
