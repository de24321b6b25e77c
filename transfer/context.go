package transfer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/log"
	"github.com/bitfsorg/libprotostone-go/tx"
)

// QueueCapacity is the number of withdraw requests a context holds.
const QueueCapacity = 10

// Derivation labels of the three custody addresses.
const (
	LabelFund  = "fund"
	LabelTopup = "topup"
	LabelFee   = "btc"
)

// Account is an address and the key that spends from it.
type Account struct {
	Address string
	Key     tx.KeyRef
}

// AddressBook names the custody addresses the pipelines spend from.
type AddressBook struct {
	Fund  Account // token balances awaiting withdrawal
	Topup Account // incoming deposits, swept into Fund
	Fee   Account // plain bitcoin that pays fees
}

// KeyDeriver derives a taproot address for a key name and path.
type KeyDeriver interface {
	Address(keyName string, path [][]byte, params *chaincfg.Params) (*btcutil.AddressTaproot, error)
}

// DeriveAddressBook derives the fund and top-up accounts from assetKey and
// the fee account from feeKey.
func DeriveAddressBook(d KeyDeriver, params *chaincfg.Params, assetKey, feeKey string) (AddressBook, error) {
	if d == nil || params == nil {
		return AddressBook{}, ErrNilParam
	}
	account := func(key, label string) (Account, error) {
		ref := tx.KeyRef{Name: key, Path: [][]byte{[]byte(label)}}
		addr, err := d.Address(ref.Name, ref.Path, params)
		if err != nil {
			return Account{}, fmt.Errorf("transfer: derive %s address: %w", label, err)
		}
		return Account{Address: addr.EncodeAddress(), Key: ref}, nil
	}

	var book AddressBook
	var err error
	if book.Fund, err = account(assetKey, LabelFund); err != nil {
		return AddressBook{}, err
	}
	if book.Topup, err = account(assetKey, LabelTopup); err != nil {
		return AddressBook{}, err
	}
	if book.Fee, err = account(feeKey, LabelFee); err != nil {
		return AddressBook{}, err
	}
	return book, nil
}

// Request asks for Amount units of Asset to be sent to Address.
type Request struct {
	ID      string // caller-chosen, unique per request
	Asset   asset.ID
	Amount  uint64
	Address string
}

// Context is the mutable state a Service operates on. One Context serves
// one address book; it is safe for concurrent use, but only one pipeline
// runs on it at a time.
type Context struct {
	book   AddressBook
	events *log.Ring

	mu        sync.Mutex
	running   bool
	pending   string
	queue     []Request
	processed map[string]struct{}
}

// NewContext returns an empty context for book.
func NewContext(book AddressBook) *Context {
	return &Context{
		book:      book,
		events:    log.NewRing(log.DefaultRingSize),
		processed: make(map[string]struct{}),
	}
}

// AddressBook returns the context's custody addresses.
func (c *Context) AddressBook() AddressBook { return c.book }

// Pending returns the txid of the last broadcast transaction that has not
// been seen confirmed, or "".
func (c *Context) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Queue returns a copy of the queued requests in arrival order.
func (c *Context) Queue() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queue)
}

// Processed reports whether request id has been broadcast.
func (c *Context) Processed(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.processed[id]
	return ok
}

// Events returns recent pipeline log entries, oldest first.
func (c *Context) Events(offset, limit int) []log.Entry {
	return c.events.Entries(offset, limit)
}

// logger returns the transfer logger, also recording into the ring.
func (c *Context) logger() zerolog.Logger {
	return log.Transfer.Hook(c.events)
}

func (c *Context) enqueue(r Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.processed[r.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, r.ID)
	}
	for _, q := range c.queue {
		if q.ID == r.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateRequest, r.ID)
		}
	}
	if len(c.queue) >= QueueCapacity {
		return ErrQueueFull
	}
	c.queue = append(c.queue, r)
	return nil
}

// acquire marks a pipeline as running.
func (c *Context) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrBusy
	}
	c.running = true
	return nil
}

func (c *Context) release() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

func (c *Context) setPending(txid string) {
	c.mu.Lock()
	c.pending = txid
	c.mu.Unlock()
}

// clearPending empties the pending slot if it still holds txid.
func (c *Context) clearPending(txid string) {
	c.mu.Lock()
	if c.pending == txid {
		c.pending = ""
	}
	c.mu.Unlock()
}

// complete drops sent requests from the queue and marks them processed.
func (c *Context) complete(sent []Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := make(map[string]struct{}, len(sent))
	for _, r := range sent {
		done[r.ID] = struct{}{}
		c.processed[r.ID] = struct{}{}
	}
	c.queue = slices.DeleteFunc(c.queue, func(r Request) bool {
		_, ok := done[r.ID]
		return ok
	})
}
