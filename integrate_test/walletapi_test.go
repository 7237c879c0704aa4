package integrate

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/wallet-hub/cmds"
	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/testhelper"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

func setupDaemon(t *testing.T, ctx context.Context) (string, *registry.Registry) {
	addr, reg := MockMain(ctx, t, defaultTestConfig())
	u, err := url.Parse(addr)
	require.NoError(t, err)
	return fmt.Sprintf("ws://127.0.0.1:%s", u.Port()), reg
}

func startProvider(t *testing.T, ctx context.Context, wsUrl, name string, keys int) (*testhelper.MemWallet, types.WalletID) {
	providerAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
	require.NoError(t, err)
	t.Cleanup(closer)

	mem, err := testhelper.NewMemWallet(name, []string{"solana:mainnet"}, keys)
	require.NoError(t, err)

	provider := walletevent.NewWalletEventClient(mem, providerAPI)
	go provider.ListenWalletRequest(ctx)
	provider.WaitReady(ctx)
	return mem, mem.Info().ID()
}

func TestWalletAPI(t *testing.T) {
	t.Run("wallet announce and list", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, reg := setupDaemon(t, ctx)

		_, id := startProvider(t, ctx, wsUrl, "Phantom", 2)
		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second*5, time.Millisecond*10)

		appAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer closer()

		wallets, err := appAPI.ListWallets(ctx)
		require.NoError(t, err)
		require.Len(t, wallets, 1)
		require.Equal(t, "Phantom", wallets[0].Name)
		require.Equal(t, id, wallets[0].ID())

		detail, err := appAPI.ListWalletInfoByName(ctx, "Phantom")
		require.NoError(t, err)
		require.Len(t, detail.ConnectStates, 1)
	})

	t.Run("wallet repeat announcement deduplicated", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, reg := setupDaemon(t, ctx)

		mem, _ := startProvider(t, ctx, wsUrl, "Phantom", 1)

		// second connection announcing the identical descriptor
		providerAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer closer()
		provider := walletevent.NewWalletEventClient(mem, providerAPI)
		go provider.ListenWalletRequest(ctx)
		provider.WaitReady(ctx)

		appAPI, appCloser, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer appCloser()

		require.Eventually(t, func() bool {
			detail, err := appAPI.ListWalletInfoByName(ctx, "Phantom")
			return err == nil && len(detail.ConnectStates) == 2
		}, time.Second*5, time.Millisecond*10)
		require.Equal(t, 1, reg.Count())
	})

	t.Run("wallet connect sign and verify", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, reg := setupDaemon(t, ctx)

		_, id := startProvider(t, ctx, wsUrl, "Phantom", 2)
		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second*5, time.Millisecond*10)

		appAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer closer()

		connected, err := appAPI.WalletConnect(ctx, id, wallet.ConnectInput{})
		require.NoError(t, err)
		require.Len(t, connected.Accounts, 2)
		account := connected.Accounts[0]

		for i := 0; i < 5; i++ {
			var msg [32]byte
			_, err = rand.Read(msg[:])
			require.NoError(t, err)
			out, err := appAPI.WalletSignMessage(ctx, id, wallet.SignMessageInput{Account: account, Message: msg[:]})
			require.NoError(t, err)
			sig, err := out.TrySignature()
			require.NoError(t, err)
			require.True(t, testhelper.Verify(account.PublicKey, msg[:], sig))
		}

		inputs := []wallet.SignMessageInput{
			{Account: account, Message: []byte("first")},
			{Account: connected.Accounts[1], Message: []byte("second")},
		}
		outs, err := appAPI.WalletSignMessages(ctx, id, inputs)
		require.NoError(t, err)
		require.Len(t, outs, 2)
		require.True(t, testhelper.Verify(account.PublicKey, []byte("first"), outs[0].RawSignature))
		require.True(t, testhelper.Verify(connected.Accounts[1].PublicKey, []byte("second"), outs[1].RawSignature))

		require.NoError(t, appAPI.WalletDisconnect(ctx, id))
	})

	t.Run("wallet sign transaction version gate", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, reg := setupDaemon(t, ctx)

		_, id := startProvider(t, ctx, wsUrl, "Phantom", 1)
		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second*5, time.Millisecond*10)

		appAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer closer()

		connected, err := appAPI.WalletConnect(ctx, id, wallet.ConnectInput{})
		require.NoError(t, err)
		account := connected.Accounts[0]

		out, err := appAPI.WalletSignTransaction(ctx, id, wallet.SignTransactionInput{
			Account:     account,
			Transaction: []byte{1, 2, 3},
			Version:     wallet.TransactionVersionLegacy,
		})
		require.NoError(t, err)
		require.NotEmpty(t, out.SignedTransaction)

		_, err = appAPI.WalletSignTransaction(ctx, id, wallet.SignTransactionInput{
			Account:     account,
			Transaction: []byte{1, 2, 3},
			Version:     "2",
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "transaction version")
	})

	t.Run("wallet encrypt decrypt round trip", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, reg := setupDaemon(t, ctx)

		_, id := startProvider(t, ctx, wsUrl, "Phantom", 1)
		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second*5, time.Millisecond*10)

		appAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer closer()

		connected, err := appAPI.WalletConnect(ctx, id, wallet.ConnectInput{})
		require.NoError(t, err)
		account := connected.Accounts[0]

		cleartext := []byte("sealed for transit")
		enc, err := appAPI.WalletEncrypt(ctx, id, wallet.EncryptInput{
			Account:   account,
			Cipher:    wallet.CipherAes256Gcm,
			PublicKey: account.PublicKey,
			Data:      cleartext,
		})
		require.NoError(t, err)
		require.NotEqual(t, cleartext, enc.Ciphertext)

		dec, err := appAPI.WalletDecrypt(ctx, id, wallet.DecryptInput{
			Account:    account,
			Cipher:     wallet.CipherAes256Gcm,
			PublicKey:  account.PublicKey,
			Nonce:      enc.Nonce,
			Ciphertext: enc.Ciphertext,
		})
		require.NoError(t, err)
		require.Equal(t, cleartext, dec.Cleartext)
	})

	t.Run("wallet provider teardown withdraws", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, reg := setupDaemon(t, ctx)

		providerCtx, providerCancel := context.WithCancel(ctx)
		mem, err := testhelper.NewMemWallet("Phantom", []string{"solana:mainnet"}, 1)
		require.NoError(t, err)
		providerAPI, closer, err := cmds.DialWalletHubClient(providerCtx, wsUrl)
		require.NoError(t, err)
		defer closer()
		provider := walletevent.NewWalletEventClient(mem, providerAPI)
		go provider.ListenWalletRequest(providerCtx)
		provider.WaitReady(providerCtx)
		require.Eventually(t, func() bool { return reg.Count() == 1 }, time.Second*5, time.Millisecond*10)

		providerCancel()
		require.Eventually(t, func() bool { return reg.Count() == 0 }, time.Second*5, time.Millisecond*10)
	})

	t.Run("wallet version", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wsUrl, _ := setupDaemon(t, ctx)

		appAPI, closer, err := cmds.DialWalletHubClient(ctx, wsUrl)
		require.NoError(t, err)
		defer closer()

		ver, err := appAPI.Version(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, ver)
	})
}
