// Package snapshot persists a registry's owners to BadgerDB and restores
// them at startup, so a process restart does not lose committed state.
//
// Key Namespace:
//
// Data Type   Prefix  Key Format       Value Type
// ================================================
// Owner       "o:"    o:<name>         map[string]any (JSON)
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/nexus/internal/logger"
	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/registry"
)

const prefixOwner = "o:"

func keyOwner(name string) []byte {
	return []byte(prefixOwner + name)
}

// Store persists registry.Registry snapshots to BadgerDB and restores them
// into a manager on startup.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a BadgerDB database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Healthcheck verifies the store is reachable.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error { return nil })
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Persist writes every owner currently in reg to the database, one key per
// owner, keyed by its registered name.
func (s *Store) Persist(reg *registry.Registry) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, snap := range reg.Snapshots() {
			data, err := json.Marshal(snap.Values)
			if err != nil {
				return fmt.Errorf("failed to encode owner %q: %w", snap.Name, err)
			}
			if err := txn.Set(keyOwner(snap.Name), data); err != nil {
				return fmt.Errorf("failed to store owner %q: %w", snap.Name, err)
			}
		}
		return nil
	})
}

// Restore reads every persisted owner back and, for each one still present
// in reg, forces its hooks to the persisted values via mgr.Submit in
// hook.ModeForced. Owners persisted under names no longer registered in reg
// are skipped with a warning rather than treated as an error, since the
// catalog of owners is expected to change across deploys.
func (s *Store) Restore(mgr *manager.Manager, reg *registry.Registry) error {
	start := time.Now()
	restored := 0

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixOwner)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(prefix):])

			owner, ok := reg.Get(name)
			if !ok {
				logger.Warn("skipping snapshot for unregistered owner", "owner", name)
				continue
			}

			var values map[string]any
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &values)
			}); err != nil {
				return fmt.Errorf("failed to decode owner %q: %w", name, err)
			}

			requests := make(map[hook.Handle]any, len(values))
			for key, value := range values {
				h, ok := owner.Hook(key)
				if !ok {
					logger.Warn("skipping unknown hook on restore", "owner", name, "key", key)
					continue
				}
				requests[h] = value
			}
			if len(requests) == 0 {
				continue
			}
			if ok, msg := mgr.Submit(requests, hook.ModeForced); !ok {
				return fmt.Errorf("failed to restore owner %q: %s", name, msg)
			}
			restored++
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("snapshot restore complete",
		"owners_restored", restored,
		"duration", time.Since(start).String(),
	)
	return nil
}
