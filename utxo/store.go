package utxo

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/bitfsorg/libprotostone-go/asset"
)

// Store holds the spendable records of every tracked address. Each call is
// atomic per record.
type Store interface {
	// GetByAddress returns every record owned by address.
	GetByAddress(address string) ([]*Record, error)

	// GetByAddressAndAsset returns the records of address carrying id.
	GetByAddressAndAsset(address string, id asset.ID) ([]*Record, error)

	// Put stores a new record. Returns ErrDuplicateRecord if it exists.
	Put(r *Record) error

	// Remove deletes a record. Returns ErrRecordNotFound if it is absent.
	Remove(address string, id asset.ID, txid string, vout uint32) error

	// Count returns the number of stored records.
	Count() (int, error)
}

// Whitelist tracks the token ids accepted for deposit.
type Whitelist interface {
	AllowAsset(id asset.ID) error
	IsAllowed(id asset.ID) (bool, error)
	Allowed() ([]asset.ID, error)
}

// Records are keyed address 0x00 asset 0x00 txid 0x00 vout(BE), so a
// prefix scan lists one address, or one address and asset, in key order.

func addressPrefix(address string) []byte {
	return append([]byte(address), 0)
}

func assetPrefix(address string, id asset.ID) []byte {
	return append(append(addressPrefix(address), id.String()...), 0)
}

func recordKey(address string, id asset.ID, txid string, vout uint32) []byte {
	k := append(append(assetPrefix(address, id), txid...), 0)
	return binary.BigEndian.AppendUint32(k, vout)
}

// ---------------------------------------------------------------------------
// MemStore
// ---------------------------------------------------------------------------

// MemStore is an in-memory Store and Whitelist.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	allowed map[asset.ID]bool
}

var (
	_ Store     = (*MemStore)(nil)
	_ Whitelist = (*MemStore)(nil)
)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]*Record),
		allowed: make(map[asset.ID]bool),
	}
}

func (s *MemStore) scan(prefix []byte) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.records {
		if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*Record, len(keys))
	for i, k := range keys {
		r := *s.records[k]
		out[i] = &r
	}
	return out
}

// GetByAddress returns every record owned by address.
func (s *MemStore) GetByAddress(address string) ([]*Record, error) {
	return s.scan(addressPrefix(address)), nil
}

// GetByAddressAndAsset returns the records of address carrying id.
func (s *MemStore) GetByAddressAndAsset(address string, id asset.ID) ([]*Record, error) {
	return s.scan(assetPrefix(address, id)), nil
}

// Put stores a copy of r.
func (s *MemStore) Put(r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	k := string(recordKey(r.Address, r.Asset, r.TxID, r.Vout))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[k]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, r.Outpoint())
	}
	c := *r
	s.records[k] = &c
	return nil
}

// Remove deletes a record.
func (s *MemStore) Remove(address string, id asset.ID, txid string, vout uint32) error {
	k := string(recordKey(address, id, txid, vout))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[k]; !ok {
		return fmt.Errorf("%w: %s:%d", ErrRecordNotFound, txid, vout)
	}
	delete(s.records, k)
	return nil
}

// Count returns the number of stored records.
func (s *MemStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// AllowAsset adds id to the whitelist.
func (s *MemStore) AllowAsset(id asset.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowed[id] = true
	return nil
}

// IsAllowed reports whether id is whitelisted.
func (s *MemStore) IsAllowed(id asset.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowed[id], nil
}

// Allowed returns the whitelisted ids in order.
func (s *MemStore) Allowed() ([]asset.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]asset.ID, 0, len(s.allowed))
	for id := range s.allowed {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids, nil
}

func sortIDs(ids []asset.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
