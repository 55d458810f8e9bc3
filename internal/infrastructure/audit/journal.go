// Package audit keeps an in-memory change history per warehouse.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	appctx "varasto/internal/core/context"
	"varasto/internal/domain/warehouse"
)

// Compile-time check that Journal implements warehouse.Journal.
var _ warehouse.Journal = (*Journal)(nil)

// CompressionAlgo specifies the compression algorithm used for a stored payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Defaults used when Config leaves a field at zero.
const (
	DefaultCompressThreshold = 10 * 1024 // bytes
	DefaultMaxEntries        = 1000      // per warehouse
)

// Config configures the journal.
type Config struct {
	// CompressThreshold is the payload size in bytes above which changes are
	// stored zstd-compressed.
	CompressThreshold int

	// MaxEntries bounds the history kept per warehouse; the oldest entries are dropped.
	MaxEntries int
}

// entry is the stored form of a history entry.
type entry struct {
	id                string
	warehouseID       int64
	action            warehouse.Action
	requestID         string
	changes           json.RawMessage
	changesCompressed []byte
	compressionAlgo   CompressionAlgo
	createdAt         time.Time
}

// Journal records warehouse changes in memory.
type Journal struct {
	mu      sync.RWMutex
	entries map[int64][]entry

	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	maxEntries        int
	now               func() time.Time
}

// NewJournal creates a new journal.
func NewJournal(cfg Config) (*Journal, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if cfg.CompressThreshold <= 0 {
		cfg.CompressThreshold = DefaultCompressThreshold
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}

	return &Journal{
		entries:           make(map[int64][]entry),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: cfg.CompressThreshold,
		maxEntries:        cfg.MaxEntries,
		now:               time.Now,
	}, nil
}

// Close releases the zstd decoder.
func (j *Journal) Close() {
	j.decoder.Close()
}

// Record stores a change for a warehouse.
func (j *Journal) Record(ctx context.Context, warehouseID int64, action warehouse.Action, changes map[string]any) error {
	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	e := entry{
		id:              uuid.NewString(),
		warehouseID:     warehouseID,
		action:          action,
		requestID:       appctx.GetRequestID(ctx),
		changes:         changesJSON,
		compressionAlgo: CompressionNone,
		createdAt:       j.now().UTC(),
	}

	// Compress large changes
	if len(changesJSON) > j.compressThreshold {
		e.changesCompressed = j.encoder.EncodeAll(changesJSON, nil)
		e.changes = nil
		e.compressionAlgo = CompressionZstd
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	list := append(j.entries[warehouseID], e)
	if len(list) > j.maxEntries {
		list = append([]entry(nil), list[len(list)-j.maxEntries:]...)
	}
	j.entries[warehouseID] = list
	return nil
}

// History returns up to limit entries for a warehouse, newest first.
func (j *Journal) History(ctx context.Context, warehouseID int64, limit int) ([]warehouse.HistoryEntry, error) {
	j.mu.RLock()
	stored := j.entries[warehouseID]
	if limit <= 0 || limit > len(stored) {
		limit = len(stored)
	}
	picked := make([]entry, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(picked) < limit; i-- {
		picked = append(picked, stored[i])
	}
	j.mu.RUnlock()

	result := make([]warehouse.HistoryEntry, 0, len(picked))
	for _, e := range picked {
		changes := e.changes

		// Decompress if needed
		if e.compressionAlgo == CompressionZstd && len(e.changesCompressed) > 0 {
			decompressed, err := j.decoder.DecodeAll(e.changesCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
			changes = decompressed
		}

		result = append(result, warehouse.HistoryEntry{
			ID:          e.id,
			WarehouseID: e.warehouseID,
			Action:      e.action,
			RequestID:   e.requestID,
			Changes:     changes,
			CreatedAt:   e.createdAt,
		})
	}
	return result, nil
}

// Stats reports how many entries are stored and how many of them are compressed.
func (j *Journal) Stats() (total, compressed int) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, list := range j.entries {
		for _, e := range list {
			total++
			if e.compressionAlgo == CompressionZstd {
				compressed++
			}
		}
	}
	return total, compressed
}
