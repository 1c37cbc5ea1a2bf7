// Package flatfile provides a single-file JSON Store. The whole ledger
// is one JSON document; writes go to a temporary file in the same
// directory and are renamed into place, so a crash mid-save never
// corrupts the previous snapshot.
package flatfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xraph/loansign/loan"
)

// DefaultFileName is the ledger file name used when only a directory is
// configured.
const DefaultFileName = "loans.json"

// Store persists the ledger as a JSON file on disk.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a store writing to the given file path. The parent
// directory is created on the first save if needed.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger file path.
func (s *Store) Path() string { return s.path }

// Migrate ensures the parent directory exists.
func (s *Store) Migrate(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("flatfile: create directory: %w", err)
		}
	}
	return nil
}

// Load reads the ledger file. A missing file is a first run and loads
// empty.
func (s *Store) Load(ctx context.Context) ([]*loan.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []*loan.Loan{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("flatfile: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []*loan.Loan{}, nil
	}

	var loans []*loan.Loan
	if err := json.Unmarshal(data, &loans); err != nil {
		return nil, fmt.Errorf("flatfile: decode %s: %w", s.path, err)
	}
	return loans, nil
}

// Save writes the ledger atomically: encode, write to a temp file next
// to the target, fsync, rename over the old snapshot.
func (s *Store) Save(ctx context.Context, loans []*loan.Loan) error {
	data, err := json.MarshalIndent(loans, "", "  ")
	if err != nil {
		return fmt.Errorf("flatfile: encode ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("flatfile: create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("flatfile: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("flatfile: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("flatfile: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flatfile: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("flatfile: replace %s: %w", s.path, err)
	}
	return nil
}

// Ping checks that the ledger file location is usable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("flatfile: stat %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; every save already leaves a complete file behind.
func (s *Store) Close() error { return nil }
