package memo

import "bfmemo/internal/fs"

// Exported constants for testing.
const (
	TestMemoMagic      = memoMagic
	TestMemoVersionNum = memoVersionNum
	TestMemoHeaderSize = memoHeaderSize
)

// Exported errors for testing.
var (
	ErrTestMemoNotFound     = errMemoNotFound
	ErrTestMemoTooSmall     = errMemoTooSmall
	ErrTestInvalidMagic     = errInvalidMagic
	ErrTestVersionMismatch  = errVersionMismatch
	ErrTestStaleFingerprint = errStaleFingerprint
)

// TestFingerprint is an exported view of fingerprint for testing.
type TestFingerprint struct {
	Size       uint64
	MtimeNanos uint64
	HeadHash   uint64
}

// ExportEncodeEnvelope exposes encodeEnvelope for testing with the exported
// fingerprint type.
func ExportEncodeEnvelope(fp TestFingerprint, payload []byte) []byte {
	return encodeEnvelope(fingerprint{
		size:       fp.Size,
		mtimeNanos: fp.MtimeNanos,
		headHash:   fp.HeadHash,
	}, payload)
}

// ExportDecodeEnvelope exposes decodeEnvelope for testing with the exported
// fingerprint type.
func ExportDecodeEnvelope(data []byte) (TestFingerprint, []byte, error) {
	fp, payload, err := decodeEnvelope(data)

	return TestFingerprint{
		Size:       fp.size,
		MtimeNanos: fp.mtimeNanos,
		HeadHash:   fp.headHash,
	}, payload, err
}

// ExportSourceFingerprint exposes sourceFingerprint for testing with the
// exported fingerprint type.
func ExportSourceFingerprint(fsys fs.FS, id string) (TestFingerprint, error) {
	fp, err := sourceFingerprint(fsys, id)

	return TestFingerprint{
		Size:       fp.size,
		MtimeNanos: fp.mtimeNanos,
		HeadHash:   fp.headHash,
	}, err
}

// ExportReadEnvelope exposes readEnvelope for testing.
var ExportReadEnvelope = readEnvelope
