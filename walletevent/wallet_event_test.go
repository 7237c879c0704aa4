package walletevent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/testhelper"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
)

func setupStream(ctx context.Context, t *testing.T) (*registry.Registry, *WalletEventStream) {
	reg := registry.NewRegistry(ctx)
	stream := NewWalletEventStream(ctx, reg, types.DefaultRequestConfig())
	return reg, stream
}

func startProvider(ctx context.Context, t *testing.T, stream *WalletEventStream, name string) (*testhelper.MemWallet, *WalletEventClient) {
	mem, err := testhelper.NewMemWallet(name, []string{"solana:mainnet"}, 2)
	require.NoError(t, err)
	client := NewWalletEventClient(mem, stream)
	go client.ListenWalletRequest(ctx)
	client.WaitReady(ctx)
	return mem, client
}

func TestListenWalletEvent(t *testing.T) {
	t.Run("announce registers remote wallet", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reg, stream := setupStream(ctx, t)

		_, _ = startProvider(ctx, t, stream, "Phantom")

		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second, time.Millisecond*10)
		remote := reg.GetAll()[0]
		require.Equal(t, "Phantom", wallet.Name(remote))
		require.True(t, wallet.StandardCompatible(remote.Info()))
	})

	t.Run("invalid descriptor rejected", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_, stream := setupStream(ctx, t)

		_, err := stream.ListenWalletEvent(ctx, &WalletRegisterPolicy{Wallet: types.WalletInfo{Name: ""}})
		require.ErrorIs(t, err, types.ErrInvalidArguments)

		_, err = stream.ListenWalletEvent(ctx, nil)
		require.Error(t, err)
	})

	t.Run("repeat announcement deduplicated", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reg, stream := setupStream(ctx, t)

		mem, err := testhelper.NewMemWallet("Phantom", []string{"solana:mainnet"}, 1)
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			client := NewWalletEventClient(mem, stream)
			go client.ListenWalletRequest(ctx)
			client.WaitReady(ctx)
		}

		require.Eventually(t, func() bool {
			count, err := stream.ConnectionCount(ctx)
			require.NoError(t, err)
			return count == 2
		}, time.Second, time.Millisecond*10)
		require.Equal(t, 1, reg.Count())
	})

	t.Run("latest duplicate teardown keeps wallet discoverable", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reg, stream := setupStream(ctx, t)

		mem, err := testhelper.NewMemWallet("Phantom", []string{"solana:mainnet"}, 1)
		require.NoError(t, err)

		first := NewWalletEventClient(mem, stream)
		go first.ListenWalletRequest(ctx)
		first.WaitReady(ctx)

		secondCtx, secondCancel := context.WithCancel(ctx)
		second := NewWalletEventClient(mem, stream)
		go second.ListenWalletRequest(secondCtx)
		second.WaitReady(secondCtx)

		require.Eventually(t, func() bool {
			count, err := stream.ConnectionCount(ctx)
			require.NoError(t, err)
			return count == 2
		}, time.Second, time.Millisecond*10)

		latest, ok := reg.Get(mem.Info().ID())
		require.True(t, ok)

		// dropping the newer connection must not withdraw the wallet; the
		// entry is handed over to the older connection's remote
		secondCancel()
		require.Eventually(t, func() bool {
			cur, ok := reg.Get(mem.Info().ID())
			return ok && cur != latest
		}, time.Second, time.Millisecond*10)

		require.Equal(t, 1, reg.Count())
		remote, ok := reg.Get(mem.Info().ID())
		require.True(t, ok)
		out, err := wallet.Connect(ctx, remote, wallet.ConnectInput{})
		require.NoError(t, err)
		require.NotEmpty(t, out.Accounts)
	})

	t.Run("provider teardown withdraws wallet", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reg, stream := setupStream(ctx, t)

		providerCtx, providerCancel := context.WithCancel(ctx)
		_, _ = startProvider(providerCtx, t, stream, "Phantom")
		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second, time.Millisecond*10)

		providerCancel()
		require.Eventually(t, func() bool { return reg.Count() == 0 }, time.Second, time.Millisecond*10)
	})
}

func TestRemoteWalletOperations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg, stream := setupStream(ctx, t)
	mem, _ := startProvider(ctx, t, stream, "Phantom")

	require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second, time.Millisecond*10)
	remote := reg.GetAll()[0]

	t.Run("connect populates accounts", func(t *testing.T) {
		require.False(t, wallet.Connected(remote))
		out, err := wallet.Connect(ctx, remote, wallet.ConnectInput{})
		require.NoError(t, err)
		require.Len(t, out.Accounts, 2)
		require.True(t, wallet.Connected(remote))
		require.Equal(t, out.Accounts[0].PublicKey, wallet.PublicKey(remote))
	})

	t.Run("sign message round trip", func(t *testing.T) {
		account := *remote.Account()
		out, err := wallet.SignMessage(ctx, remote, wallet.SignMessageInput{
			Account: account,
			Message: []byte("hello hub"),
		})
		require.NoError(t, err)
		sig, err := out.TrySignature()
		require.NoError(t, err)
		require.True(t, testhelper.Verify(account.PublicKey, []byte("hello hub"), sig))
	})

	t.Run("batch sign ordered", func(t *testing.T) {
		account := *remote.Account()
		inputs := []wallet.SignMessageInput{
			{Account: account, Message: []byte("m1")},
			{Account: account, Message: []byte("m2")},
			{Account: account, Message: []byte("m3")},
		}
		outs, err := wallet.SignMessages(ctx, remote, inputs)
		require.NoError(t, err)
		require.Len(t, outs, 3)
		for i, out := range outs {
			require.Equal(t, inputs[i].Message, out.SignedMessage)
		}
	})

	t.Run("sign transaction version gate", func(t *testing.T) {
		account := *remote.Account()
		_, err := wallet.SignTransaction(ctx, remote, wallet.SignTransactionInput{
			Account:     account,
			Transaction: []byte{1, 2, 3},
			Version:     wallet.TransactionVersion("2"),
		})
		require.ErrorIs(t, err, types.ErrUnsupportedTransactionVersion)

		out, err := wallet.SignTransaction(ctx, remote, wallet.SignTransactionInput{
			Account:     account,
			Transaction: []byte{1, 2, 3},
			Version:     wallet.TransactionVersion0,
		})
		require.NoError(t, err)
		require.NotEmpty(t, out.SignedTransaction)
	})

	t.Run("encrypt decrypt round trip", func(t *testing.T) {
		account := *remote.Account()
		enc, err := wallet.Encrypt(ctx, remote, wallet.EncryptInput{
			Account:   account,
			Cipher:    wallet.CipherAes256Gcm,
			PublicKey: account.PublicKey,
			Data:      []byte("secret"),
		})
		require.NoError(t, err)

		dec, err := wallet.Decrypt(ctx, remote, wallet.DecryptInput{
			Account:    account,
			Cipher:     wallet.CipherAes256Gcm,
			PublicKey:  account.PublicKey,
			Nonce:      enc.Nonce,
			Ciphertext: enc.Ciphertext,
		})
		require.NoError(t, err)
		require.Equal(t, []byte("secret"), dec.Cleartext)
	})

	t.Run("provider failure mapped into taxonomy", func(t *testing.T) {
		mem.SetFail(ctx, true)
		defer mem.SetFail(ctx, false)

		account := *remote.Account()
		_, err := wallet.SignMessage(ctx, remote, wallet.SignMessageInput{Account: account, Message: []byte("x")})
		require.ErrorIs(t, err, types.ErrWalletSignMessage)
		require.Contains(t, err.Error(), "mock error")
	})

	t.Run("disconnect clears accounts", func(t *testing.T) {
		require.NoError(t, wallet.Disconnect(ctx, remote))
		require.False(t, wallet.Connected(remote))
		require.Empty(t, remote.Info().Accounts)
	})
}

func TestListWalletInfo(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, stream := setupStream(ctx, t)
	_, _ = startProvider(ctx, t, stream, "Phantom")
	_, _ = startProvider(ctx, t, stream, "Solflare")

	require.Eventually(t, func() bool {
		details, err := stream.ListWalletInfo(ctx)
		require.NoError(t, err)
		return len(details) == 2
	}, time.Second, time.Millisecond*10)

	detail, err := stream.ListWalletInfoByName(ctx, "Phantom")
	require.NoError(t, err)
	require.Equal(t, "Phantom", detail.Wallet.Name)
	require.Len(t, detail.ConnectStates, 1)

	_, err = stream.ListWalletInfoByName(ctx, "Ledger")
	require.Error(t, err)
}
