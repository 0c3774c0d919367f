package services

import "errors"

// Pipeline error taxonomy. The controller maps these onto HTTP statuses;
// anything not listed here is reported as a generic ingestion failure
// with the cause logged for operators only.
var (
	ErrUnsupportedFormat   = errors.New("unsupported source format")
	ErrInsecureSource      = errors.New("source URL does not use a secure (https) scheme")
	ErrNoCaptionsAvailable = errors.New("video likely lacks captions")
	ErrTranslationFailure  = errors.New("transcript translation failed or returned empty")
	ErrDuplicateSource     = errors.New("source has already been ingested")
	ErrEmptyExtraction     = errors.New("source loaded but produced no usable text")
	ErrNoInput             = errors.New("no valid input provided")
)
