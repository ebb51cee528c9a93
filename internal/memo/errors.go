package memo

import "errors"

// Memo validation errors. A memo that fails any of these checks is treated
// as a cache miss; none of them ever reach a caller of [Memoizer.SetID].
var (
	errMemoNotFound     = errors.New("memo file not found")
	errMemoTooSmall     = errors.New("memo file too small")
	errInvalidMagic     = errors.New("invalid memo magic")
	errVersionMismatch  = errors.New("memo version mismatch")
	errStaleFingerprint = errors.New("source changed since memo was written")
)

// Configuration errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrInvalidMinInit     = errors.New("min_init must be a non-negative duration")
)
