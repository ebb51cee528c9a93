package memo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"bfmemo/internal/fs"
)

// Memo envelope format constants.
//
// Layout: magic(4) | version(2, LE) | size(8) | mtimeNanos(8) | headHash(8)
// followed by the wrapped reader's serialized state. The header is validated
// in full before the payload is ever decoded.
const (
	memoMagic      = "BFMO"
	memoVersionNum = 1
	memoHeaderSize = 30

	// headHashLimit bounds how much of the source is hashed into the
	// fingerprint. Hashing the leading bytes catches same-size in-place
	// rewrites that a size+mtime check alone can miss.
	headHashLimit = 64 * 1024
)

// fingerprint identifies the source content a memo was written from.
// A memo is only trusted while the source still matches its fingerprint.
type fingerprint struct {
	size       uint64
	mtimeNanos uint64
	headHash   uint64
}

// sourceFingerprint computes the current fingerprint of the source file.
func sourceFingerprint(fsys fs.FS, id string) (fingerprint, error) {
	file, err := fsys.Open(id)
	if err != nil {
		return fingerprint{}, fmt.Errorf("opening source: %w", err)
	}

	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fingerprint{}, fmt.Errorf("stat source: %w", err)
	}

	digest := xxhash.New()

	_, err = io.Copy(digest, io.LimitReader(file, headHashLimit))
	if err != nil {
		return fingerprint{}, fmt.Errorf("hashing source: %w", err)
	}

	mtime := info.ModTime().UnixNano()
	if mtime < 0 {
		mtime = 0
	}

	size := info.Size()
	if size < 0 {
		size = 0
	}

	return fingerprint{
		size:       uint64(size),
		mtimeNanos: uint64(mtime),
		headHash:   digest.Sum64(),
	}, nil
}

// encodeEnvelope builds the on-disk memo file bytes.
func encodeEnvelope(fp fingerprint, payload []byte) []byte {
	buf := make([]byte, memoHeaderSize+len(payload))

	copy(buf[0:4], memoMagic)
	binary.LittleEndian.PutUint16(buf[4:6], memoVersionNum)
	binary.LittleEndian.PutUint64(buf[6:14], fp.size)
	binary.LittleEndian.PutUint64(buf[14:22], fp.mtimeNanos)
	binary.LittleEndian.PutUint64(buf[22:30], fp.headHash)
	copy(buf[memoHeaderSize:], payload)

	return buf
}

// decodeEnvelope validates the header and splits a memo file into its
// fingerprint and payload. Returns errMemoTooSmall, errInvalidMagic, or
// errVersionMismatch for untrustworthy envelopes.
func decodeEnvelope(data []byte) (fingerprint, []byte, error) {
	if len(data) < memoHeaderSize {
		return fingerprint{}, nil, errMemoTooSmall
	}

	if string(data[0:4]) != memoMagic {
		return fingerprint{}, nil, errInvalidMagic
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != memoVersionNum {
		return fingerprint{}, nil, errVersionMismatch
	}

	fp := fingerprint{
		size:       binary.LittleEndian.Uint64(data[6:14]),
		mtimeNanos: binary.LittleEndian.Uint64(data[14:22]),
		headHash:   binary.LittleEndian.Uint64(data[22:30]),
	}

	return fp, data[memoHeaderSize:], nil
}

// readEnvelope loads and validates a memo file against the current source.
// Any failure (missing file, short file, wrong magic or version, stale
// fingerprint) is reported as an error; callers treat every error as a miss.
func readEnvelope(fsys fs.FS, memoPath, id string) ([]byte, error) {
	data, err := fsys.ReadFile(memoPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errMemoNotFound
		}

		return nil, fmt.Errorf("reading memo: %w", err)
	}

	fp, payload, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}

	current, err := sourceFingerprint(fsys, id)
	if err != nil {
		return nil, err
	}

	if current != fp {
		return nil, errStaleFingerprint
	}

	return payload, nil
}
