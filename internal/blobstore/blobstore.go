// blobstore.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package blobstore persists binary artifacts by path together with key/value metadata.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no blob exists at a path
var ErrNotFound = errors.New("blob not found")

// Blob is a stored artifact
type Blob struct {
	Path     string
	Data     []byte
	Metadata map[string]string
}

// Store is put-by-path/get-by-path blob storage
type Store interface {
	Put(ctx context.Context, path string, data []byte, meta map[string]string) error
	Get(ctx context.Context, path string) (*Blob, error)
}

// Config configures Open
type Config struct {
	Path     string // directory for badger files; ignored when InMemory
	InMemory bool
	Logger   *zap.Logger
}

// BadgerStore keeps blob bytes and metadata under sibling keys, written in one transaction
type BadgerStore struct {
	db *badger.DB
}

// Open opens (or creates) the badger database
func Open(cfg Config) (*BadgerStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("blob store path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(badgerLogger{cfg.Logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Put stores data and metadata at path, replacing any previous blob
func (s *BadgerStore) Put(ctx context.Context, path string, data []byte, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := cleanPath(path)
	if err != nil {
		return err
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode blob metadata: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(dataKey(path), data); err != nil {
			return fmt.Errorf("failed to write blob %s: %w", path, err)
		}
		if err := txn.Set(metaKey(path), metaJSON); err != nil {
			return fmt.Errorf("failed to write blob metadata %s: %w", path, err)
		}
		return nil
	})
}

// Get loads the blob at path
func (s *BadgerStore) Get(ctx context.Context, path string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	blob := &Blob{Path: path}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(path))
		if err != nil {
			return err
		}
		if blob.Data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get(metaKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &blob.Metadata)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	return blob, nil
}

func cleanPath(path string) (string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("blob path is required")
	}
	return path, nil
}

func dataKey(path string) []byte {
	return []byte("blob:" + path)
}

func metaKey(path string) []byte {
	return []byte("meta:" + path)
}

// badgerLogger adapts zap's sugared logger to badger.Logger
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }
