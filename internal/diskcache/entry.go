// Package diskcache implements the Cache Layer's three cooperating
// caches (compilation metadata, call-graph fragments, project
// metadata): compressed, per-solution, file-per-key storage with size
// and age eviction and hash-based invalidation (spec §4.9).
package diskcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
)

// SchemaVersion is embedded in every entry header; a mismatch
// invalidates the entry (spec §4.9, §6).
const SchemaVersion = 1

// header is the small framed header spec §4.9 requires at the start of
// every cache file: schema version, logical key, timestamps,
// uncompressed size, and an integrity stamp. It is stored as a JSON
// line followed by the compressed payload, so a header read never
// needs to decompress the body.
type header struct {
	SchemaVersion  int       `json:"schema_version"`
	Key            string    `json:"key"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	UncompressedSize int64   `json:"uncompressed_size"`
	CompressedSize   int64   `json:"compressed_size"`
	Integrity        string  `json:"integrity"` // sha256 of the uncompressed payload, hex
}

// Entry is CacheEntry<T> (spec §3) once decoded: the header fields
// only; the decoded value is written into the caller's destination.
type Entry struct {
	Key            string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastAccessedAt time.Time
	UncompressedSize int64
	CompressedSize   int64
}

// Level controls deflate's speed/ratio trade-off; spec §4.9 calls for
// "standard deflate at a configured level."
const Level = flate.DefaultCompression

// KeyHash returns the file-name-safe hash of a logical key (spec §4.9:
// "entries are individual files whose name is a hash of the logical
// key").
func KeyHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// writeEntry encodes value to JSON, compresses it with deflate, and
// writes header+payload to a temp file which is then atomically
// renamed into place (spec §4.9 write path, and the crash-safety
// requirement in §5).
func writeEntry(dir, key string, value interface{}, ttl time.Duration) (*Entry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache value: %w", err)
	}

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, Level)
	if err != nil {
		return nil, fmt.Errorf("init compressor: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, fmt.Errorf("compress cache value: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flush compressor: %w", err)
	}

	sum := sha256.Sum256(raw)
	now := nowFunc()
	h := header{
		SchemaVersion:    SchemaVersion,
		Key:              key,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
		LastAccessedAt:   now,
		UncompressedSize: int64(len(raw)),
		CompressedSize:   int64(compressed.Len()),
		Integrity:        hex.EncodeToString(sum[:]),
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	path := entryPath(dir, key)
	tmp, err := os.CreateTemp(dir, "."+KeyHash(key)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	headerBytes, err := json.Marshal(h)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("encode cache header: %w", err)
	}
	if _, err := tmp.Write(headerBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write cache header: %w", err)
	}
	if _, err := tmp.Write([]byte("\n")); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write cache header delimiter: %w", err)
	}
	if _, err := tmp.Write(compressed.Bytes()); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write cache payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("rename cache file: %w", err)
	}

	return &Entry{
		Key: key, CreatedAt: h.CreatedAt, ExpiresAt: h.ExpiresAt,
		LastAccessedAt: h.LastAccessedAt, UncompressedSize: h.UncompressedSize,
		CompressedSize: h.CompressedSize,
	}, nil
}

// ErrIntegrity is returned when a cache entry's header schema version
// or integrity stamp does not match, per spec §4.9's read path step 2
// and §7's CacheIntegrityError: the entry is treated as a miss and
// deleted by the caller.
var ErrIntegrity = fmt.Errorf("cache entry integrity check failed")

// readEntry reads and validates a cache file's header, then
// decompresses and decodes its payload into dest. The header's
// LastAccessedAt is not bumped on read, here or anywhere else in the
// package: it keeps the value set when the entry was written.
func readEntry(dir, key string, dest interface{}) (*Entry, error) {
	path := entryPath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, ErrIntegrity
	}
	var h header
	if err := json.Unmarshal(data[:nl], &h); err != nil {
		return nil, ErrIntegrity
	}
	if h.SchemaVersion != SchemaVersion || h.Key != key {
		return nil, ErrIntegrity
	}

	payload := data[nl+1:]
	r := flate.NewReader(bytes.NewReader(payload))
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrIntegrity
	}

	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != h.Integrity {
		return nil, ErrIntegrity
	}

	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return nil, ErrIntegrity
		}
	}

	if nowFunc().After(h.ExpiresAt) {
		return nil, os.ErrNotExist
	}

	return &Entry{
		Key: h.Key, CreatedAt: h.CreatedAt, ExpiresAt: h.ExpiresAt,
		LastAccessedAt: h.LastAccessedAt, UncompressedSize: h.UncompressedSize,
		CompressedSize: h.CompressedSize,
	}, nil
}

func entryPath(dir, key string) string {
	return filepath.Join(dir, KeyHash(key)+".cache")
}

// nowFunc is indirected so cache eviction and expiry tests can control
// time without sleeping.
var nowFunc = time.Now
