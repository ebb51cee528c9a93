// Package fake implements a synthetic data-source reader whose metadata is
// encoded entirely in its filename.
//
// A fake source is any file with a ".fake" extension. Dimensions are given
// as &key=value pairs after the base name:
//
//	test&sizeX=512&sizeY=512&sizeC=3.fake
//
// The file's contents are ignored, which makes fake sources cheap to create
// in tests while still exercising the full open/snapshot/restore cycle.
package fake

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Ext is the fake format's file extension.
const Ext = ".fake"

// Defaults for dimensions not present in the filename.
const (
	defaultSize      = 20
	defaultCount     = 1
	defaultPixelType = "uint8"
)

// Fake format errors.
var (
	ErrNotFakeFile   = errors.New("not a .fake file")
	ErrMalformedPair = errors.New("malformed key=value pair")
	ErrNothingOpen   = errors.New("no source open")
)

// Metadata is the parsed state of one fake source. Exported fields so the
// whole struct round-trips through gob as a memo payload.
type Metadata struct {
	Name      string
	SizeX     int
	SizeY     int
	SizeZ     int
	SizeC     int
	SizeT     int
	Series    int
	PixelType string
}

// Reader opens fake sources. It implements the memo.Reader contract.
type Reader struct {
	// InitDelay artificially slows SetID. Tests use it to push measured
	// initialization time over or under a memoizer's threshold.
	InitDelay time.Duration

	// InitCalls counts real initializations. Restores do not increment it.
	InitCalls int

	meta *Metadata
}

// NewReader returns an unopened fake reader.
func NewReader() *Reader {
	return &Reader{}
}

// SetID opens the fake source, parsing metadata from its filename.
// The file itself must exist.
func (r *Reader) SetID(ctx context.Context, id string) error {
	r.InitCalls++

	if r.InitDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.InitDelay):
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	_, statErr := os.Stat(id)
	if statErr != nil {
		return fmt.Errorf("stat source: %w", statErr)
	}

	meta, parseErr := ParseName(filepath.Base(id))
	if parseErr != nil {
		return parseErr
	}

	r.meta = meta

	return nil
}

// Snapshot serializes the parsed metadata with gob.
func (r *Reader) Snapshot() ([]byte, error) {
	if r.meta == nil {
		return nil, ErrNothingOpen
	}

	var buf bytes.Buffer

	err := gob.NewEncoder(&buf).Encode(r.meta)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}

	return buf.Bytes(), nil
}

// Restore adopts a previously snapshotted metadata payload.
func (r *Reader) Restore(id string, payload []byte) error {
	var meta Metadata

	err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&meta)
	if err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}

	r.meta = &meta

	return nil
}

// Close releases the parsed state. Safe to call multiple times.
func (r *Reader) Close() error {
	r.meta = nil

	return nil
}

// Metadata returns the parsed state of the open source, or nil when closed.
func (r *Reader) Metadata() *Metadata {
	return r.meta
}

// ParseName parses a fake source filename into its metadata.
// Unknown keys are ignored so newer writers stay readable.
func ParseName(base string) (*Metadata, error) {
	if !strings.HasSuffix(base, Ext) {
		return nil, fmt.Errorf("%w: %s", ErrNotFakeFile, base)
	}

	stem := strings.TrimSuffix(base, Ext)
	parts := strings.Split(stem, "&")

	meta := &Metadata{
		Name:      parts[0],
		SizeX:     defaultSize,
		SizeY:     defaultSize,
		SizeZ:     defaultCount,
		SizeC:     defaultCount,
		SizeT:     defaultCount,
		PixelType: defaultPixelType,
	}

	for _, pair := range parts[1:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPair, pair)
		}

		err := applyPair(meta, key, value)
		if err != nil {
			return nil, err
		}
	}

	return meta, nil
}

func applyPair(meta *Metadata, key, value string) error {
	switch key {
	case "pixelType":
		meta.PixelType = value

		return nil
	case "sizeX", "sizeY", "sizeZ", "sizeC", "sizeT", "series":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s=%s", ErrMalformedPair, key, value)
		}

		switch key {
		case "sizeX":
			meta.SizeX = n
		case "sizeY":
			meta.SizeY = n
		case "sizeZ":
			meta.SizeZ = n
		case "sizeC":
			meta.SizeC = n
		case "sizeT":
			meta.SizeT = n
		case "series":
			meta.Series = n
		}

		return nil
	default:
		// Unknown key: ignore.
		return nil
	}
}
