// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package driver

import "errors"

// Sentinel error kinds, split between bare sentinels and typed errors
// that carry a path or algorithm for the two kinds that need one.
var (
	ErrNotADirectory            = errors.New("driver: not a directory")
	ErrCacheCorrupt             = errors.New("driver: cache corrupt")
	ErrCacheRootMismatch        = errors.New("driver: cache root mismatch")
	ErrStructuralInvariant      = errors.New("driver: structural invariant violated")
	ErrReportDestinationInvalid = errors.New("driver: report destination invalid")
)

// DecodeFailure describes an element that photo.Load rejected; the photo
// layer has already marked the element's PhotoState sticky-error, and the
// driver only logs it and never aborts the run.
type DecodeFailure struct {
	Path string
	Err  error
}

func (e *DecodeFailure) Error() string {
	return "driver: decode failure: " + e.Path + ": " + e.Err.Error()
}

func (e *DecodeFailure) Unwrap() error { return e.Err }

// HashFailure describes a hash computation that failed for a given
// algorithm; like DecodeFailure it is logged per file and is non-fatal.
type HashFailure struct {
	Path string
	Alg  string
	Err  error
}

func (e *HashFailure) Error() string {
	return "driver: hash failure: " + e.Path + " (" + e.Alg + "): " + e.Err.Error()
}

func (e *HashFailure) Unwrap() error { return e.Err }
