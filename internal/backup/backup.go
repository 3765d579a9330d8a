// Package backup reads and writes ledger snapshots as JSON files.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

// Version is written into every backup. Read rejects any other version.
const Version = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrMalformed          = errors.New("malformed backup")
)

type file struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	Data      *ledger.Snapshot `json:"data"`
}

type envelope struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// Write encodes snap as an indented JSON backup.
func Write(w io.Writer, snap *ledger.Snapshot, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(file{Version: Version, CreatedAt: now.UTC(), Data: snap}); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	return nil
}

// Read decodes a backup written by Write. It accepts a bare snapshot too. Unknown
// fields and a backup without any collection are rejected, since restoring either
// would wipe the store.
func Read(r io.Reader) (*ledger.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if _, ok := keys["version"]; !ok {
		return decodeSnapshot(raw)
	}

	var env envelope
	if err := strict(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if env.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data", ErrMalformed)
	}

	return decodeSnapshot(env.Data)
}

func decodeSnapshot(raw []byte) (*ledger.Snapshot, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no collections", ErrMalformed)
	}

	var snap ledger.Snapshot
	if err := strict(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return &snap, nil
}

func strict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

// Filename is the name WriteFile uses for a backup taken at now.
func Filename(now time.Time) string {
	return "fiado-backup-" + now.Format("20060102-150405") + ".json"
}

// WriteFile writes snap into dir and returns the path of the new file.
func WriteFile(dir string, snap *ledger.Snapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	path := filepath.Join(dir, Filename(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}

	if err := Write(f, snap, now); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing backup file: %w", err)
	}

	return path, nil
}

// ReadFile reads the backup at path.
func ReadFile(path string) (*ledger.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()

	return Read(f)
}
