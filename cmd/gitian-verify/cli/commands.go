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

// Package cli wires the gitian-verify command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	cobracompletefig "github.com/withfig/autocomplete-tools/integrations/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/cmd/gitian-verify/cli/options"
)

var (
	ro = &options.RootOptions{}
)

// New returns the root command. The root itself runs verification, matching
// the single-purpose legacy tool; version and completion are subcommands.
func New() *cobra.Command {
	var (
		out, stdout *os.File
	)
	vo := &options.VerifyOptions{}

	long := `Verify gitian build signatures for a release.

For each build variant of the release, every signer's detached signature is
checked against the local keyring, the signing key is matched against the
keys.txt trust file, and the signed build manifest is compared to a reference
manifest. The result is a signer-by-build status table, plus sections listing
unresolvable keys and manifest mismatches.`

	cmd := &cobra.Command{
		Use:               "gitian-verify -r RELEASE -d DIRECTORY -k KEYS --keyring KEYRING",
		Short:             "Verify gitian build signatures for a release.",
		Long:              long,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if ro.OutputFile != "" {
				var err error
				out, err = os.Create(ro.OutputFile)
				if err != nil {
					return fmt.Errorf("error creating output file %s: %w", ro.OutputFile, err)
				}
				stdout = os.Stdout
				os.Stdout = out
				cmd.SetOut(out)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if out != nil {
				_ = out.Close()
				os.Stdout = stdout
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd.Context(), vo, cmd.OutOrStdout())
		},
	}
	ro.AddFlags(cmd)
	vo.AddFlags(cmd)

	cmd.AddCommand(version.WithFont("starwars"))
	cmd.AddCommand(cobracompletefig.CreateCompletionSpecCommand())
	return cmd
}
