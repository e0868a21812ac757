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

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/cmd/gitian-verify/cli/options"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/keyreg"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/pgp"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/release"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/report"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/tracing"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/verify"
)

// exitError carries an exit status through the error chain to main.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

func (e *exitError) ExitCode() int {
	return e.code
}

// runVerify builds the release matrix and renders the report.
func runVerify(ctx context.Context, o *options.VerifyOptions, out io.Writer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	logger := ro.NewObservability().Logger

	registry, err := keyreg.Load(o.KeysPath)
	if err != nil {
		return fmt.Errorf("loading trust file: %w", err)
	}
	logger.Debug("loaded %d key bindings from %s", registry.Len(), o.KeysPath)

	verifier, err := pgp.NewVerifier(pgp.VerifierOptions{KeyringPath: o.KeyringPath})
	if err != nil {
		return fmt.Errorf("loading keyring: %w", err)
	}

	validator, err := verify.NewBuildValidator(verify.BuildValidatorOptions{
		Verifier:  verifier,
		Registry:  registry,
		CompareTo: o.CompareTo,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	builder, err := release.NewMatrixBuilder(release.MatrixBuilderOptions{
		Validator: validator,
		Directory: o.Directory,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	attrs := map[string]interface{}{
		"gitian_verify.release":    o.Release,
		"gitian_verify.directory":  o.Directory,
		"gitian_verify.keys":       o.KeysPath,
		"gitian_verify.keyring":    o.KeyringPath,
		"gitian_verify.compare_to": o.CompareTo,
		"gitian_verify.output":     o.Output,
		"gitian_verify.check":      o.Check,
	}
	return tracing.Run(ctx, "Verify", attrs, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, ro.Timeout)
		defer cancel()

		matrix, err := builder.Build(ctx, o.Release)
		if err != nil {
			return err
		}

		if matrix.Empty() {
			return &exitError{
				code: 1,
				msg:  fmt.Sprintf("no build results were found in %s for release %s", o.Directory, o.Release),
			}
		}

		switch o.Output {
		case options.OutputJSON:
			err = report.WriteJSON(out, matrix)
		default:
			err = report.NewTableReporter(out).Render(matrix)
		}
		if err != nil {
			return err
		}

		if o.Check && matrix.HasFailures() {
			return &exitError{code: 1, msg: "verification failures found (mismatch or invalid signature)"}
		}
		return nil
	})
}
