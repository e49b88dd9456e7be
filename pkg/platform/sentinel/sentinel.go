package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and document backends return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity or document does not exist in store
// - ErrConflict: key already taken
// - ErrExpired: session has expired
// - ErrUnavailable: backend temporarily or permanently unreachable
// - ErrCorrupt: stored bytes do not decode into the expected shape
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
	ErrCorrupt     = errors.New("corrupt")
)
