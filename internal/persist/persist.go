// Package persist provides crash-safe, whole-account persistence: a
// single gob-encoded snapshot behind a magic-plus-version header, written
// atomically (temp file then rename), the same crash-safety shape the
// teacher's store uses for its per-market JSON files.
package persist

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ashare-paper/internal/journal"
	"ashare-paper/internal/ledger"
	"ashare-paper/internal/orderbook"
	"ashare-paper/pkg/types"
)

// magic identifies the snapshot file format; version lets a future layout
// change be detected instead of silently misread.
var magic = [8]byte{'A', 'S', 'H', 'R', 'S', 'N', 'A', 'P'}

const version uint16 = 1

// snapshot is the full persisted state of one account.
type snapshot struct {
	Ledger  ledger.State
	Orders  []*types.Order
	Journal journal.State
}

// ErrNotFound is returned by Load when no snapshot file exists yet.
var ErrNotFound = fmt.Errorf("persist: no snapshot file")

// Persistor owns the on-disk snapshot file for one account's state.
type Persistor struct {
	path string
	mu   sync.Mutex

	led     *ledger.Ledger
	book    *orderbook.Book
	journal *journal.Journal

	lastWrite time.Time
	logger    *slog.Logger
}

// New builds a Persistor rooted at dataDir/state.gob, creating dataDir if
// it doesn't already exist.
func New(dataDir string, led *ledger.Ledger, book *orderbook.Book, jrnl *journal.Journal, logger *slog.Logger) (*Persistor, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Persistor{
		path:    filepath.Join(dataDir, "state.gob"),
		led:     led,
		book:    book,
		journal: jrnl,
		logger:  logger.With("component", "persist"),
	}, nil
}

// Save atomically writes the current account state to disk: write to a
// .tmp file, then rename over the target so the file is never left
// partially written.
func (p *Persistor) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := snapshot{
		Ledger:  p.led.ExportState(),
		Orders:  p.book.ExportState(),
		Journal: p.journal.ExportState(),
	}

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	var header bytes.Buffer
	header.Write(magic[:])
	binary.Write(&header, binary.BigEndian, version)

	tmp := p.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open snapshot tmp file: %w", err)
	}
	if _, err := f.Write(header.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}
	if _, err := f.Write(body.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot body: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot tmp file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	p.lastWrite = time.Now()
	return nil
}

// Load reads the snapshot file and restores it into the ledger, order
// book, and journal. It returns ErrNotFound if no snapshot exists yet —
// the caller should fall back to fresh-account defaults and call Save to
// establish a baseline.
func (p *Persistor) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) < 10 {
		return fmt.Errorf("snapshot file too short")
	}
	if !bytes.Equal(raw[:8], magic[:]) {
		return fmt.Errorf("snapshot file has an unrecognized header")
	}
	gotVersion := binary.BigEndian.Uint16(raw[8:10])
	if gotVersion != version {
		return fmt.Errorf("snapshot version %d unsupported (want %d)", gotVersion, version)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw[10:])).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	p.led.ImportState(snap.Ledger)
	p.book.ImportState(snap.Orders)
	p.journal.ImportState(snap.Journal)
	p.lastWrite = time.Now()
	return nil
}

// Run starts the background flusher: it wakes every pollInterval and
// writes a fresh snapshot once at least flushInterval has elapsed since
// the last successful write. wg.Done is called on exit.
func (p *Persistor) Run(ctx context.Context, pollInterval, flushInterval time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			due := time.Since(p.lastWrite) >= flushInterval
			p.mu.Unlock()
			if due {
				if err := p.Save(); err != nil {
					p.logger.Warn("periodic snapshot failed", "error", err)
				}
			}
		}
	}
}
