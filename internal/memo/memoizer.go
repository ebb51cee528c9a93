// Package memo caches the expensive initialization of data-source readers.
//
// Opening a multi-file scientific-image container can take seconds to
// minutes; replaying a captured snapshot of the parsed state takes
// milliseconds. A [Memoizer] wraps a [Reader] and transparently persists its
// initialized state to a hidden memo file, restoring from it on later opens
// as long as the source is unchanged and the memo was written by a
// compatible format version.
//
// Caching is strictly best-effort: every cache-layer failure degrades to
// running the real initialization. The only error a caller ever sees from
// [Memoizer.SetID] is the wrapped reader's own failure.
package memo

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"bfmemo/internal/fs"
)

const dirPerms = 0o755

const filePerms = 0o644

// Reader is the expensive-initialization data source wrapped by a Memoizer.
//
// SetID performs the real (slow) initialization. Snapshot and Restore
// serialize and re-adopt the parsed in-memory state; the memoizer treats the
// payload as opaque bytes.
type Reader interface {
	// SetID opens the source and parses its metadata.
	SetID(ctx context.Context, id string) error

	// Snapshot serializes the reader's initialized state.
	Snapshot() ([]byte, error)

	// Restore adopts previously snapshotted state for the given source,
	// skipping initialization.
	Restore(id string, payload []byte) error

	// Close releases the reader's state and any open handles.
	Close() error
}

// Outcome reports how a SetID call was satisfied.
type Outcome int

const (
	// OutcomeDisabled means no memo location resolved for the source;
	// the real initialization ran and nothing was cached.
	OutcomeDisabled Outcome = iota

	// OutcomeHit means a valid memo was restored and initialization
	// was skipped.
	OutcomeHit

	// OutcomeMiss means a memo location resolved but held no usable memo;
	// the real initialization ran and a memo may have been written.
	OutcomeMiss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// Memoizer wraps a Reader with memo-file caching.
//
// Not safe for concurrent use by multiple goroutines; separate processes
// memoizing the same source are safe because memo writes are atomic
// rename-into-place and stale reads degrade to misses.
type Memoizer struct {
	reader Reader
	cfg    Config
	fsys   fs.FS

	id     string
	opened bool

	outcome Outcome
	saved   bool
	loaded  bool
}

// New returns a Memoizer wrapping reader under the given caching policy.
func New(reader Reader, cfg Config) *Memoizer {
	return NewWithFS(reader, cfg, fs.NewReal())
}

// NewWithFS is New with an explicit filesystem, for tests that inject
// filesystem failures.
func NewWithFS(reader Reader, cfg Config, fsys fs.FS) *Memoizer {
	return &Memoizer{
		reader: reader,
		cfg:    cfg,
		fsys:   fsys,
	}
}

// MemoPath returns the memo file path that would be used for id, without
// performing any I/O side effects. Returns ("", false) when caching is
// disabled for this source (no directory configured, or the configured
// directory does not exist).
func (m *Memoizer) MemoPath(id string) (string, bool) {
	return resolveMemoPath(m.fsys, m.cfg, id)
}

// MemoValid reports whether a trustworthy memo currently exists for id.
func (m *Memoizer) MemoValid(id string) bool {
	memoPath, ok := m.MemoPath(id)
	if !ok {
		return false
	}

	_, err := readEnvelope(m.fsys, memoPath, id)

	return err == nil
}

// SetID opens the source, restoring from a valid memo when one exists and
// otherwise running the wrapped reader's real initialization. On a miss the
// initialization is timed and its result persisted if a memo location
// resolved and the measured time reached Config.MinInit.
//
// The returned error is always the wrapped reader's own failure; cache-layer
// problems are logged and absorbed.
func (m *Memoizer) SetID(ctx context.Context, id string) (Outcome, error) {
	m.outcome = OutcomeDisabled
	m.saved = false
	m.loaded = false
	m.id = ""

	// The wrapped reader may acquire handles even when initialization
	// fails, so Close must release it after any SetID attempt.
	m.opened = true

	memoPath, located := m.MemoPath(id)

	if located {
		m.outcome = OutcomeMiss

		payload, readErr := readEnvelope(m.fsys, memoPath, id)
		if readErr == nil {
			restoreErr := m.reader.Restore(id, payload)
			if restoreErr == nil {
				m.id = id
				m.outcome = OutcomeHit
				m.loaded = true

				log.WithField("memo", memoPath).Debug("restored from memo")

				return OutcomeHit, nil
			}

			// A payload the reader refuses is as good as a corrupt one;
			// fall through to the real initialization.
			log.WithError(restoreErr).WithField("memo", memoPath).Debug("memo restore failed")
		} else {
			log.WithError(readErr).WithField("memo", memoPath).Debug("memo unusable")
		}
	}

	start := time.Now()

	initErr := m.reader.SetID(ctx, id)
	if initErr != nil {
		return m.outcome, fmt.Errorf("initializing %s: %w", id, initErr)
	}

	elapsed := time.Since(start)

	m.id = id

	if located && elapsed >= m.cfg.MinInit {
		m.saveMemo(memoPath, id)
	}

	return m.outcome, nil
}

// saveMemo persists the reader's state to memoPath. Best-effort: every
// failure is logged at warn and swallowed, leaving any previous memo intact.
func (m *Memoizer) saveMemo(memoPath, id string) {
	fp, err := sourceFingerprint(m.fsys, id)
	if err != nil {
		log.WithError(err).WithField("memo", memoPath).Warn("fingerprinting source")

		return
	}

	payload, err := m.reader.Snapshot()
	if err != nil {
		log.WithError(err).WithField("memo", memoPath).Warn("snapshotting reader state")

		return
	}

	// Mirrored memo paths live in subdirectories that may not exist yet.
	err = m.fsys.MkdirAll(filepath.Dir(memoPath), dirPerms)
	if err != nil {
		log.WithError(err).WithField("memo", memoPath).Warn("creating memo directory")

		return
	}

	err = m.fsys.WriteFileAtomic(memoPath, encodeEnvelope(fp, payload), filePerms)
	if err != nil {
		log.WithError(err).WithField("memo", memoPath).Warn("writing memo")

		return
	}

	m.saved = true

	log.WithField("memo", memoPath).Debug("memo written")
}

// Close releases the wrapped reader. Safe to call multiple times; subsequent
// calls are no-ops.
func (m *Memoizer) Close() error {
	if !m.opened {
		return nil
	}

	m.opened = false
	m.id = ""

	closeErr := m.reader.Close()
	if closeErr != nil {
		return fmt.Errorf("closing reader: %w", closeErr)
	}

	return nil
}

// ID returns the currently open source identifier, or "" when closed.
func (m *Memoizer) ID() string {
	return m.id
}

// Outcome returns how the most recent SetID was satisfied.
func (m *Memoizer) Outcome() Outcome {
	return m.outcome
}

// SavedToMemo reports whether the most recent SetID wrote a memo file.
func (m *Memoizer) SavedToMemo() bool {
	return m.saved
}

// LoadedFromMemo reports whether the most recent SetID restored from a memo.
func (m *Memoizer) LoadedFromMemo() bool {
	return m.loaded
}
