package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
)

type testWallet struct {
	info types.WalletInfo
}

func (t *testWallet) Info() types.WalletInfo  { return t.info }
func (t *testWallet) Account() *types.Account { return nil }

func phantom() *testWallet {
	return &testWallet{info: types.WalletInfo{
		Version:  "1.0.0",
		Name:     "Phantom",
		Icon:     "data:x",
		Chains:   []string{"solana:mainnet"},
		Features: types.Features{},
	}}
}

func solflare() *testWallet {
	return &testWallet{info: types.WalletInfo{
		Version:  "1.0.0",
		Name:     "Solflare",
		Icon:     "data:y",
		Chains:   []string{"solana:mainnet"},
		Features: types.Features{},
	}}
}

func TestRegisterDeduplicates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	// two structurally distinct objects, same identity
	first, second := phantom(), phantom()
	r.Register(first)
	r.Register(second)

	all := r.GetAll()
	require.Len(t, all, 1)
	// replaced in place, the later announcement wins
	require.Same(t, second, all[0].(*testWallet))
}

func TestRegisterNotifiesAndReplays(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	var seen []string
	dispose := r.OnRegister(func(w wallet.Wallet) {
		seen = append(seen, w.Info().Name)
	})
	defer dispose()

	r.Register(phantom())
	r.Register(solflare())
	require.Equal(t, []string{"Phantom", "Solflare"}, seen)

	// a late subscriber observes the retained announcements
	var late []string
	disposeLate := r.OnRegister(func(w wallet.Wallet) {
		late = append(late, w.Info().Name)
	})
	defer disposeLate()
	require.Equal(t, []string{"Phantom", "Solflare"}, late)

	// a repeat announcement does not re-notify
	r.Register(phantom())
	require.Len(t, seen, 2)
}

// A subscriber attaching while announcements are in flight must see every
// wallet exactly once, either replayed or live.
func TestOnRegisterExactlyOnceUnderConcurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	const wallets = 64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < wallets; i++ {
			r.Register(&testWallet{info: types.WalletInfo{
				Version: "1.0.0",
				Name:    "Wallet-" + string(rune('A'+i%26)) + string(rune('0'+i/26)),
				Icon:    "data:x",
				Chains:  []string{"solana:mainnet"},
			}})
		}
	}()

	var lk sync.Mutex
	seen := make(map[types.WalletID]int)
	dispose := r.OnRegister(func(w wallet.Wallet) {
		lk.Lock()
		seen[w.Info().ID()]++
		lk.Unlock()
	})
	defer dispose()

	<-done
	require.Eventually(t, func() bool {
		lk.Lock()
		defer lk.Unlock()
		return len(seen) == wallets
	}, time.Second, time.Millisecond*10)

	lk.Lock()
	defer lk.Unlock()
	for id, count := range seen {
		require.Equal(t, 1, count, "wallet %s delivered %d times", id, count)
	}
}

func TestDisposerIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	count := 0
	dispose := r.OnRegister(func(wallet.Wallet) { count++ })
	dispose()
	dispose()

	r.Register(phantom())
	require.Equal(t, 0, count)
}

func TestUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	var withdrawn []string
	dispose := r.OnUnregister(func(w wallet.Wallet) {
		withdrawn = append(withdrawn, w.Info().Name)
	})
	defer dispose()

	w := phantom()
	r.Register(w)
	r.Register(solflare())
	r.Unregister(w)

	require.Equal(t, []string{"Phantom"}, withdrawn)
	all := r.GetAll()
	require.Len(t, all, 1)
	require.Equal(t, "Solflare", all[0].Info().Name)
}

func TestRegisterDisposerSkipsReplacement(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	first, second := phantom(), phantom()
	dispose := r.Register(first)
	r.Register(second)

	// first's disposer must not withdraw the replacement announcement
	dispose()
	all := r.GetAll()
	require.Len(t, all, 1)
	require.Same(t, second, all[0].(*testWallet))
}

func TestRegisterMany(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx)

	r.Register(solflare())

	dispose := r.RegisterMany(phantom(), &testWallet{info: types.WalletInfo{
		Version: "1.0.0",
		Name:    "Backpack",
		Icon:    "data:z",
		Chains:  []string{"solana:mainnet"},
	}})
	require.Equal(t, 3, r.Count())

	// revokes exactly its own announcements
	dispose()
	dispose()
	all := r.GetAll()
	require.Len(t, all, 1)
	require.Equal(t, "Solflare", all[0].Info().Name)
}

func TestTeardownWithdrawsAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRegistry(ctx)

	var lk sync.Mutex
	var withdrawn []string
	r.OnUnregister(func(w wallet.Wallet) {
		lk.Lock()
		withdrawn = append(withdrawn, w.Info().Name)
		lk.Unlock()
	})
	r.Register(phantom())
	r.Register(solflare())

	cancel()
	require.Eventually(t, func() bool {
		lk.Lock()
		defer lk.Unlock()
		return r.Count() == 0 && len(withdrawn) == 2
	}, time.Second, time.Millisecond*10)
	lk.Lock()
	defer lk.Unlock()
	require.ElementsMatch(t, []string{"Phantom", "Solflare"}, withdrawn)
}
