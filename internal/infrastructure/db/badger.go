// Package db internal/infrastructure/db/badger.go
package db

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// Open opens (or creates) a BadgerDB database in dir
func Open(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	badgerOpts := badger.DefaultOptions(dir)
	badgerOpts.Logger = nil // Disable Badger's default logger

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return badgerDB, nil
}

// OpenInMemory opens a BadgerDB database that lives only in memory
func OpenInMemory() (*badger.DB, error) {
	badgerOpts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	return badgerDB, nil
}
