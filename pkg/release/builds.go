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

// Package release derives the build variants of a release version and
// assembles the signer-by-build status matrix.
package release

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildDescriptor names one build variant of a release: the variant name,
// the submissions subdirectory, and the package identifier used in assert
// file names.
type BuildDescriptor struct {
	// BuildName is the variant name, such as "linux" or "osx-unsigned".
	BuildName string

	// DirName is the submissions subdirectory under the signatures root,
	// "<version>-<build name>".
	DirName string

	// PackageName is the base name of the assert file within each signer's
	// subdirectory, without the "-build.assert" suffix.
	PackageName string
}

// ManifestName returns the assert file name for this build.
func (b BuildDescriptor) ManifestName() string {
	return b.PackageName + "-build.assert"
}

// SignatureName returns the detached signature file name for this build.
func (b BuildDescriptor) SignatureName() string {
	return b.ManifestName() + ".sig"
}

// buildTemplates is the canonical ordered list of build variants. The
// "<major>" placeholder expands to "major.minor" of the release, and the
// "bitcoin-core" prefix drops its "-core" for releases before 0.19.
var buildTemplates = []struct {
	name        string
	packageName string
}{
	{"linux", "bitcoin-core-linux-<major>"},
	{"osx-unsigned", "bitcoin-core-osx-<major>"},
	{"win-unsigned", "bitcoin-core-win-<major>"},
	{"osx-signed", "bitcoin-dmg-signer"},
	{"win-signed", "bitcoin-win-signer"},
}

// parseComponent extracts the leading decimal digits of a version component,
// so release candidates like "0.21.0rc5" still resolve major and minor.
func parseComponent(s string) (int, error) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("version component %q has no leading digits", s)
	}
	return strconv.Atoi(s[:end])
}

// ParseVersion extracts the major and minor numbers of a release version
// string.
func ParseVersion(version string) (major, minor int, err error) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("version %q needs at least major.minor components", version)
	}
	if major, err = parseComponent(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("version %q: %w", version, err)
	}
	if minor, err = parseComponent(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("version %q: %w", version, err)
	}
	return major, minor, nil
}

// BuildsFor returns the ordered build variants for a release version.
// Package names use the "bitcoin-core-" prefix from 0.19 on and the older
// "bitcoin-" prefix below that.
func BuildsFor(version string) ([]BuildDescriptor, error) {
	major, minor, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}

	majorMinor := fmt.Sprintf("%d.%d", major, minor)
	legacyPrefix := major == 0 && minor < 19

	builds := make([]BuildDescriptor, 0, len(buildTemplates))
	for _, tmpl := range buildTemplates {
		packageName := strings.ReplaceAll(tmpl.packageName, "<major>", majorMinor)
		if legacyPrefix {
			packageName = strings.Replace(packageName, "bitcoin-core", "bitcoin", 1)
		}
		builds = append(builds, BuildDescriptor{
			BuildName:   tmpl.name,
			DirName:     version + "-" + tmpl.name,
			PackageName: packageName,
		})
	}
	return builds, nil
}
