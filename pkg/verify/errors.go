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

import "fmt"

// ErrorType categorizes verification failures.
//
// The per-signer conditions (NotSubmitted through ContentMismatch) are all
// locally recoverable: one signer's failure never aborts evaluation of
// others, and they surface as Status cells rather than returned errors. The
// remaining types cover run-level failures that do abort.
type ErrorType int

const (
	// ErrTypeUnknown indicates an unclassified error.
	ErrTypeUnknown ErrorType = iota

	// ErrTypeNotSubmitted indicates a signer with no submission for a build.
	ErrTypeNotSubmitted

	// ErrTypeNoFile indicates a missing manifest or signature file.
	ErrTypeNoFile

	// ErrTypeKeyUnknownToKeyring indicates a signing key absent from the
	// local keyring.
	ErrTypeKeyUnknownToKeyring

	// ErrTypeKeyNotBoundToIdentity indicates a valid key that the trust file
	// does not bind to the claimed signer name.
	ErrTypeKeyNotBoundToIdentity

	// ErrTypeExpiredKey indicates an expired signing key.
	ErrTypeExpiredKey

	// ErrTypeInvalidSignature indicates a failed signature check.
	ErrTypeInvalidSignature

	// ErrTypeContentMismatch indicates a signed manifest differing from the
	// reference.
	ErrTypeContentMismatch

	// ErrTypeConfiguration indicates an invalid configuration, such as a
	// pinned reference signer without a usable manifest.
	ErrTypeConfiguration

	// ErrTypeIO indicates a file read failure.
	ErrTypeIO

	// ErrTypePrecondition indicates a violated process precondition, such as
	// a signature blob with multiple signatures. This is the sole fatal
	// per-submission condition.
	ErrTypePrecondition
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeNotSubmitted:
		return "NotSubmitted"
	case ErrTypeNoFile:
		return "NoFile"
	case ErrTypeKeyUnknownToKeyring:
		return "KeyUnknownToKeyring"
	case ErrTypeKeyNotBoundToIdentity:
		return "KeyNotBoundToIdentity"
	case ErrTypeExpiredKey:
		return "ExpiredKey"
	case ErrTypeInvalidSignature:
		return "InvalidSignature"
	case ErrTypeContentMismatch:
		return "ContentMismatch"
	case ErrTypeConfiguration:
		return "ConfigurationError"
	case ErrTypeIO:
		return "IOError"
	case ErrTypePrecondition:
		return "PreconditionViolation"
	default:
		return "UnknownError"
	}
}

// VerificationError is a structured error for run-level verification
// failures.
type VerificationError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType

	// Path is the file path or identifier related to the error (optional).
	Path string

	// Message is a human-readable description of what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s (path: %s): %v", e.Type, e.Message, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path: %s)", e.Type, e.Message, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying cause for error chain unwrapping.
func (e *VerificationError) Unwrap() error {
	return e.Cause
}

// newError creates a VerificationError with a path.
func newError(errType ErrorType, path, message string, cause error) *VerificationError {
	return &VerificationError{
		Type:    errType,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}
