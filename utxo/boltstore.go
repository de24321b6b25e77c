package utxo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/log"
)

var (
	bucketUTXOs     = []byte("utxos")
	bucketWhitelist = []byte("whitelist")
)

// BoltStore is a Store and Whitelist persisted in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

var (
	_ Store     = (*BoltStore)(nil)
	_ Whitelist = (*BoltStore)(nil)
)

// storedRecord is the on-disk form of a Record.
type storedRecord struct {
	Address     string
	Asset       string
	TxID        string
	Vout        uint32
	Value       uint64
	AssetAmount uint64
}

// OpenBoltStore opens or creates the database at dbPath. The parent
// directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("utxo: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("utxo: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUTXOs, bucketWhitelist} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("utxo: create buckets: %w", err)
	}

	log.Store.Debug().Str("path", dbPath).Msg("opened utxo store")
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

func encodeRecord(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(storedRecord{
		Address:     r.Address,
		Asset:       r.Asset.String(),
		TxID:        r.TxID,
		Vout:        r.Vout,
		Value:       r.Value,
		AssetAmount: r.AssetAmount,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	var sr storedRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sr); err != nil {
		return nil, err
	}
	id, err := asset.Parse(sr.Asset)
	if err != nil {
		return nil, err
	}
	return &Record{
		Address:     sr.Address,
		Asset:       id,
		TxID:        sr.TxID,
		Vout:        sr.Vout,
		Value:       sr.Value,
		AssetAmount: sr.AssetAmount,
	}, nil
}

func (s *BoltStore) scan(prefix []byte) ([]*Record, error) {
	var out []*Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketUTXOs).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			r, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("utxo: decode record: %w", err)
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByAddress returns every record owned by address.
func (s *BoltStore) GetByAddress(address string) ([]*Record, error) {
	return s.scan(addressPrefix(address))
}

// GetByAddressAndAsset returns the records of address carrying id.
func (s *BoltStore) GetByAddressAndAsset(address string, id asset.ID) ([]*Record, error) {
	return s.scan(assetPrefix(address, id))
}

// Put stores r. Returns ErrDuplicateRecord if the outpoint is already
// stored under the same address and asset.
func (s *BoltStore) Put(r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := encodeRecord(r)
	if err != nil {
		return fmt.Errorf("utxo: encode record: %w", err)
	}
	k := recordKey(r.Address, r.Asset, r.TxID, r.Vout)

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUTXOs)
		if b.Get(k) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateRecord, r.Outpoint())
		}
		if err := b.Put(k, data); err != nil {
			return fmt.Errorf("utxo: put record: %w", err)
		}
		return nil
	})
}

// Remove deletes a record.
func (s *BoltStore) Remove(address string, id asset.ID, txid string, vout uint32) error {
	k := recordKey(address, id, txid, vout)
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUTXOs)
		if b.Get(k) == nil {
			return fmt.Errorf("%w: %s:%d", ErrRecordNotFound, txid, vout)
		}
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("utxo: delete record: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketUTXOs).Stats().KeyN
		return nil
	})
	return n, err
}

// ---------------------------------------------------------------------------
// Whitelist
// ---------------------------------------------------------------------------

// AllowAsset adds id to the whitelist.
func (s *BoltStore) AllowAsset(id asset.ID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketWhitelist).Put([]byte(id.String()), []byte{1}); err != nil {
			return fmt.Errorf("utxo: put whitelist entry: %w", err)
		}
		return nil
	})
}

// IsAllowed reports whether id is whitelisted.
func (s *BoltStore) IsAllowed(id asset.ID) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketWhitelist).Get([]byte(id.String())) != nil
		return nil
	})
	return ok, err
}

// Allowed returns the whitelisted ids ordered by (block, tx).
func (s *BoltStore) Allowed() ([]asset.ID, error) {
	var ids []asset.ID
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWhitelist).ForEach(func(k, _ []byte) error {
			id, err := asset.Parse(string(k))
			if err != nil {
				return fmt.Errorf("utxo: whitelist key %q: %w", k, err)
			}
			ids = append(ids, id)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortIDs(ids)
	return ids, nil
}
