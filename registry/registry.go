package registry

import (
	"context"
	"sync"

	logging "github.com/ipfs/go-log/v2"

	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
)

var log = logging.Logger("registry")

// Listener observes wallet announce or withdraw events.
type Listener func(wallet.Wallet)

// Disposer revokes exactly the registration or subscription it was returned
// for. Safe to call more than once, a no-op after the first call.
type Disposer func()

// Registry tracks the live set of announced wallets. Entries are identified
// by the descriptor's content hash, not object identity, so two
// independently constructed wallets with the same metadata collapse into
// one entry. The registry owns its mutable state; consumers only read
// snapshots and subscribe.
type Registry struct {
	lk           sync.Mutex
	order        []types.WalletID
	entries      map[types.WalletID]wallet.Wallet
	nextSub      uint64
	onRegister   map[uint64]Listener
	onUnregister map[uint64]Listener
}

// NewRegistry builds a registry whose lifetime is bound to ctx: when ctx is
// done every entry is withdrawn and every subscription dropped.
func NewRegistry(ctx context.Context) *Registry {
	r := &Registry{
		entries:      make(map[types.WalletID]wallet.Wallet),
		onRegister:   make(map[uint64]Listener),
		onUnregister: make(map[uint64]Listener),
	}
	go func() {
		<-ctx.Done()
		r.teardown()
	}()
	return r
}

// GetAll returns an ordered snapshot of the announced wallets, oldest
// registration first.
func (r *Registry) GetAll() []wallet.Wallet {
	r.lk.Lock()
	defer r.lk.Unlock()
	return r.snapshotLocked()
}

// Get looks up the wallet registered under id.
func (r *Registry) Get(id types.WalletID) (wallet.Wallet, bool) {
	r.lk.Lock()
	defer r.lk.Unlock()
	w, ok := r.entries[id]
	return w, ok
}

// Count reports the number of live entries.
func (r *Registry) Count() int {
	r.lk.Lock()
	defer r.lk.Unlock()
	return len(r.entries)
}

// Register announces w. A repeat announcement with an equal identity hash
// replaces the entry in place without re-notifying listeners; consumers
// holding the old wallet keep a stale-but-valid snapshot. The returned
// disposer withdraws this announcement unless a later one already replaced
// it.
func (r *Registry) Register(w wallet.Wallet) Disposer {
	info := w.Info()
	id := info.ID()

	r.lk.Lock()
	_, known := r.entries[id]
	r.entries[id] = w
	if !known {
		r.order = append(r.order, id)
	}
	listeners := listenersLocked(r.onRegister)
	r.lk.Unlock()

	if known {
		log.Debugf("wallet %s re-announced, entry replaced in place", info.Name)
	} else {
		log.Infof("wallet %s registered", info.Name)
		for _, cb := range listeners {
			cb(w)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.remove(id, w)
		})
	}
}

// RegisterMany announces a batch. The disposer revokes exactly the
// announcements made by this call, not later ones for the same identities.
func (r *Registry) RegisterMany(wallets ...wallet.Wallet) Disposer {
	disposers := make([]Disposer, 0, len(wallets))
	for _, w := range wallets {
		disposers = append(disposers, r.Register(w))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for _, dispose := range disposers {
				dispose()
			}
		})
	}
}

// Unregister withdraws whatever entry currently holds w's identity.
func (r *Registry) Unregister(w wallet.Wallet) {
	r.remove(w.Info().ID(), nil)
}

// OnRegister subscribes cb to announcements. The most recent announcement
// per known wallet identity is replayed to cb before returning, so
// subscribers arriving after the producers observe the same set.
func (r *Registry) OnRegister(cb Listener) Disposer {
	r.lk.Lock()
	id := r.nextSub
	r.nextSub++
	r.onRegister[id] = cb
	replay := r.snapshotLocked()
	r.lk.Unlock()

	for _, w := range replay {
		cb(w)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.lk.Lock()
			delete(r.onRegister, id)
			r.lk.Unlock()
		})
	}
}

// OnUnregister subscribes cb to withdrawals.
func (r *Registry) OnUnregister(cb Listener) Disposer {
	r.lk.Lock()
	id := r.nextSub
	r.nextSub++
	r.onUnregister[id] = cb
	r.lk.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.lk.Lock()
			delete(r.onUnregister, id)
			r.lk.Unlock()
		})
	}
}

// remove drops the entry under id. A non-nil want restricts removal to the
// exact instance that was registered, so a disposer never withdraws a
// replacement announcement.
func (r *Registry) remove(id types.WalletID, want wallet.Wallet) {
	r.lk.Lock()
	current, ok := r.entries[id]
	if ok && want != nil && current != want {
		r.lk.Unlock()
		return
	}
	if ok {
		delete(r.entries, id)
		for i, entryID := range r.order {
			if entryID == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	listeners := listenersLocked(r.onUnregister)
	r.lk.Unlock()

	if !ok {
		return
	}
	log.Infof("wallet %s unregistered", current.Info().Name)
	for _, cb := range listeners {
		cb(current)
	}
}

func (r *Registry) teardown() {
	r.lk.Lock()
	wallets := r.snapshotLocked()
	listeners := listenersLocked(r.onUnregister)
	r.order = nil
	r.entries = make(map[types.WalletID]wallet.Wallet)
	r.onRegister = make(map[uint64]Listener)
	r.onUnregister = make(map[uint64]Listener)
	r.lk.Unlock()

	for _, w := range wallets {
		for _, cb := range listeners {
			cb(w)
		}
	}
	log.Warnf("registry torn down, %d wallets withdrawn", len(wallets))
}

// snapshotLocked assumes r.lk is held.
func (r *Registry) snapshotLocked() []wallet.Wallet {
	wallets := make([]wallet.Wallet, 0, len(r.order))
	for _, id := range r.order {
		wallets = append(wallets, r.entries[id])
	}
	return wallets
}

func listenersLocked(subs map[uint64]Listener) []Listener {
	listeners := make([]Listener, 0, len(subs))
	for _, cb := range subs {
		listeners = append(listeners, cb)
	}
	return listeners
}
