/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package errors defines the typed errors of rolx.
//
// There are two error kinds. ValidationError is returned synchronously by
// Bind and Unbind when a player or role is unfit. NoSuchOperationError is
// returned when a call site is created for an operation the sender type does
// not declare; it is raised when the site is resolved, never deferred to the
// first invocation. Both match their kind sentinel and their detailed reason
// with errors.Is.
//
// Internal invariant violations are programming errors and panic.
package errors

import (
	stderrors "errors"
	"fmt"
	"reflect"
)

// Code classifies rolx errors for logs and metrics.
type Code string

const (
	// CodeValidation marks a rejected Bind or Unbind.
	CodeValidation Code = "VALIDATION"
	// CodeNoSuchOperation marks a request for an operation the sender lacks.
	CodeNoSuchOperation Code = "NO_SUCH_OPERATION"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = stderrors.New("rolx: validation failed")
	// ErrNoSuchOperation is matched by every NoSuchOperationError.
	ErrNoSuchOperation = stderrors.New("rolx: no such operation")
)

// Validation reasons.
var (
	ErrNilPlayer    = stderrors.New("player is nil")
	ErrNilRole      = stderrors.New("role is nil")
	ErrNotRole      = stderrors.New("value does not embed apis.RoleBase")
	ErrPlayerIsRole = stderrors.New("player is itself a role")
	ErrSelfBinding  = stderrors.New("player and role are the same object")
	ErrShape        = stderrors.New("disallowed shape")
)

// Operation lookup reasons.
var (
	ErrNotFunc           = stderrors.New("signature is not a func type")
	ErrNoSender          = stderrors.New("signature has no sender parameter")
	ErrVariadicSignature = stderrors.New("signature must not be variadic")
	ErrMissingMethod     = stderrors.New("sender type has no such method")
	ErrSignatureMismatch = stderrors.New("method signature does not match")
	ErrReceiverMismatch  = stderrors.New("receiver is not assignable to sender type")
)

// ValidationError reports why a player or role was rejected.
type ValidationError struct {
	Reason error
	Player any
	Role   any
}

// Validation returns a *ValidationError for the given reason.
func Validation(reason error, player, role any) *ValidationError {
	return &ValidationError{Reason: reason, Player: player, Role: role}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rolx: invalid binding (player %T, role %T): %v", e.Player, e.Role, e.Reason)
}

// Unwrap exposes both the kind sentinel and the reason to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

// Code returns CodeValidation.
func (e *ValidationError) Code() Code { return CodeValidation }

// NoSuchOperationError reports a request the sender type cannot serve.
type NoSuchOperationError struct {
	Operation string
	Signature reflect.Type
	Reason    error
}

// NoSuchOperation returns a *NoSuchOperationError for the given reason.
func NoSuchOperation(name string, sig reflect.Type, reason error) *NoSuchOperationError {
	return &NoSuchOperationError{Operation: name, Signature: sig, Reason: reason}
}

func (e *NoSuchOperationError) Error() string {
	return fmt.Sprintf("rolx: no operation %s%s: %v", e.Operation, sigString(e.Signature), e.Reason)
}

// Unwrap exposes both the kind sentinel and the reason to errors.Is.
func (e *NoSuchOperationError) Unwrap() []error {
	return []error{ErrNoSuchOperation, e.Reason}
}

// Code returns CodeNoSuchOperation.
func (e *NoSuchOperationError) Code() Code { return CodeNoSuchOperation }

// CodeOf returns the Code of err, or "" if err is not a rolx error.
func CodeOf(err error) Code {
	var coded interface{ Code() Code }
	if stderrors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// Shape wraps ErrShape with a description of the offending value.
func Shape(what string, v any) error {
	return fmt.Errorf("%w: %s %T", ErrShape, what, v)
}

func sigString(t reflect.Type) string {
	if t == nil {
		return "(<nil>)"
	}
	s := t.String()
	if len(s) > 4 && s[:4] == "func" {
		return s[4:]
	}
	return " " + s
}
