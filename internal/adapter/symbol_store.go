package adapter

import (
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	m "github.com/mouse-blink/scopefix/internal/model"
)

var bucketAliases = []byte("aliases")

// SymbolStore persists the project-wide alias table between runs, so a
// whole-project `index` pass can feed later single-file conversions.
type SymbolStore interface {
	// Load returns the persisted table, or an empty map when no database
	// exists yet.
	Load() (map[string]m.Resolution, error)

	// Save replaces the persisted table with entries.
	Save(entries map[string]m.Resolution) error
}

// BoltSymbolStore implements SymbolStore backed by bbolt. Writes are
// transactional: a crash mid-write cannot corrupt previously committed data.
// The database is opened per call; the CLI is a one-shot batch tool.
type BoltSymbolStore struct {
	path m.Path
}

// NewBoltSymbolStore creates a store over the database file at path. The
// file is created lazily on first Save.
func NewBoltSymbolStore(path m.Path) *BoltSymbolStore {
	return &BoltSymbolStore{path: path}
}

// Load reads all persisted alias entries.
func (s *BoltSymbolStore) Load() (map[string]m.Resolution, error) {
	entries := make(map[string]m.Resolution)

	if _, err := os.Stat(string(s.path)); os.IsNotExist(err) {
		return entries, nil
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}

	defer func() { _ = db.Close() }()

	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAliases)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			if r, ok := decodeResolution(v); ok {
				entries[string(k)] = r
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load symbol table: %w", err)
	}

	return entries, nil
}

// Save replaces the persisted table with entries.
func (s *BoltSymbolStore) Save(entries map[string]m.Resolution) error {
	db, err := s.open()
	if err != nil {
		return err
	}

	defer func() { _ = db.Close() }()

	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketAliases) != nil {
			if err := tx.DeleteBucket(bucketAliases); err != nil {
				return err
			}
		}

		b, err := tx.CreateBucket(bucketAliases)
		if err != nil {
			return err
		}

		for name, r := range entries {
			if err := b.Put([]byte(name), encodeResolution(r)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("save symbol table: %w", err)
	}

	return nil
}

func (s *BoltSymbolStore) open() (*bolt.DB, error) {
	db, err := bolt.Open(string(s.path), 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open symbol database %s: %w", s.path, err)
	}

	return db, nil
}

func encodeResolution(r m.Resolution) []byte {
	if r == m.ResolutionDelegateAlias {
		return []byte("delegate")
	}

	return []byte("other")
}

func decodeResolution(v []byte) (m.Resolution, bool) {
	switch string(v) {
	case "delegate":
		return m.ResolutionDelegateAlias, true
	case "other":
		return m.ResolutionOtherAlias, true
	default:
		return m.ResolutionUnknown, false
	}
}
