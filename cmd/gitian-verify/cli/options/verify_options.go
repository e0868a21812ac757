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

package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/utils"
)

// Output format names for the verification report.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// VerifyOptions defines flags for the verify operation.
type VerifyOptions struct {
	// Release is the version to verify, for example "0.21.0rc5".
	Release string
	// Directory is the signatures root (a gitian.sigs checkout).
	Directory string
	// KeysPath is the keys.txt trust file binding signer names to
	// fingerprints.
	KeysPath string
	// KeyringPath is an exported OpenPGP public keyring (binary or armored)
	// holding the signer keys. Verification is offline; keys are never
	// fetched.
	KeyringPath string
	// CompareTo pins the reference signer. Empty picks the first valid one.
	CompareTo string
	// Output selects the report format (table, json).
	Output string
	// Check makes the command exit nonzero when any mismatch or invalid
	// signature is present, for CI gating.
	Check bool
}

var _ FlagAdder = (*VerifyOptions)(nil)

// AddFlags adds the verification flags to the cobra command.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Release, "release", "r", "",
		"release version (for example 0.21.0rc5)")
	_ = cmd.MarkFlagRequired("release")

	cmd.Flags().StringVarP(&o.Directory, "directory", "d", "",
		"signatures directory")
	_ = cmd.MarkFlagDirname("directory")
	_ = cmd.MarkFlagRequired("directory")

	cmd.Flags().StringVarP(&o.KeysPath, "keys", "k", "",
		"path to keys.txt")
	_ = cmd.MarkFlagFilename("keys", "txt")
	_ = cmd.MarkFlagRequired("keys")

	cmd.Flags().StringVar(&o.KeyringPath, "keyring", "",
		"path to an exported OpenPGP public keyring with the signer keys")
	_ = cmd.MarkFlagFilename("keyring")
	_ = cmd.MarkFlagRequired("keyring")

	cmd.Flags().StringVarP(&o.CompareTo, "compare-to", "c", "",
		"compare other manifests to COMPARE_TO's, if not given pick first")

	cmd.Flags().StringVarP(&o.Output, "output", "o", OutputTable,
		"report format (table, json)")

	cmd.Flags().BoolVar(&o.Check, "check", false,
		"exit with status 1 when any mismatch or invalid signature is found")
}

// Validate checks option values that cobra cannot.
func (o *VerifyOptions) Validate() error {
	if err := utils.ValidateFolderExists("directory", o.Directory); err != nil {
		return err
	}
	if err := utils.ValidateFileExists("keys", o.KeysPath); err != nil {
		return err
	}
	if err := utils.ValidateFileExists("keyring", o.KeyringPath); err != nil {
		return err
	}
	if o.Output != OutputTable && o.Output != OutputJSON {
		return fmt.Errorf("invalid output format %q (valid: %s, %s)", o.Output, OutputTable, OutputJSON)
	}
	return nil
}
