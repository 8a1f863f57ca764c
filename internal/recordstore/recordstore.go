// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package recordstore persists all content records to a single
// newline-delimited JSON file, one record per line. The whole file is the
// unit of consistency: updates and deletes rewrite it completely. Access
// is serialized with an advisory flock on a companion lock file, acquired
// with a bounded wait.
//
// LoadAll, WriteAll, and Append each take the lock independently, so a
// read followed by a write is not atomic as a pair. Callers that need a
// read-modify-write to be atomic use Mutate, which holds the lock across
// the whole sequence.
package recordstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flatpress/internal/models"
)

// storeFile is the record file name inside the data directory. The .csv
// extension is historic; the content is newline-delimited JSON.
const storeFile = "submissions.csv"

// DefaultLockTimeout bounds how long an operation waits for the store lock
// before failing with ErrLockTimeout.
const DefaultLockTimeout = 5 * time.Second

// Store is the flat-file record database. Open one per process at startup
// and inject it into the repositories; there is no global instance.
type Store struct {
	path        string
	lockTimeout time.Duration
}

// Open prepares a store rooted in dataDir, creating the directory if
// needed. The store file itself is created lazily on first write.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		path:        filepath.Join(dataDir, storeFile),
		lockTimeout: DefaultLockTimeout,
	}, nil
}

// Path returns the location of the underlying store file.
func (s *Store) Path() string {
	return s.path
}

// LoadAll reads every record from the store file in order, under the store
// lock. A missing file yields an empty slice. Lines that fail to decode
// (malformed JSON or an unknown kind tag) are skipped with a warning;
// one corrupt line never aborts the read.
func (s *Store) LoadAll() ([]models.Record, error) {
	lock, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	return s.loadLocked()
}

// WriteAll truncates the store file and rewrites every record, one JSON
// object per line, preserving the given order. This is the canonical path
// for update and delete.
func (s *Store) WriteAll(records []models.Record) error {
	lock, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	return s.writeLocked(records)
}

// Append adds a single record to the end of the file under the lock. Fast
// path for creating a new record without rewriting the whole store.
func (s *Store) Append(rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	lock, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open store for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Mutate runs fn over the current records while holding the store lock,
// and rewrites the file with fn's result when changed is true. Holding the
// lock across the load and the write closes the read-then-write window
// that separate LoadAll/WriteAll calls would leave open to a concurrent
// admin session. An error from fn aborts without writing.
func (s *Store) Mutate(fn func(records []models.Record) (out []models.Record, changed bool, err error)) error {
	lock, err := acquireLock(s.path, s.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	records, err := s.loadLocked()
	if err != nil {
		return err
	}

	out, changed, err := fn(records)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.writeLocked(out)
}

// loadLocked reads the store file line by line. Caller holds the lock.
func (s *Store) loadLocked() ([]models.Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	var records []models.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec models.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			slog.Warn("skipping unreadable store line",
				"file", s.path,
				"line", lineNo,
				"error", err,
			)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	return records, nil
}

// writeLocked truncates and rewrites the store file. Caller holds the lock.
func (s *Store) writeLocked(records []models.Record) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open store for write: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	return nil
}
