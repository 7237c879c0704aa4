package testhelper

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
)

var _ wallet.Wallet = (*MemWallet)(nil)

// MemWallet is a keypair-backed wallet holding ed25519 keys in memory. It
// exposes the full standard feature set plus the experimental
// encrypt/decrypt pair, and can be flipped into a failing mode to drive
// error paths in tests.
type MemWallet struct {
	lk        sync.Mutex
	name      string
	chains    []string
	keys      map[string]ed25519.PrivateKey
	order     []string
	connected []types.Account
	active    *types.Account
	features  types.Features
	nextSub   uint64
	listeners map[uint64]func(wallet.PropertiesChange)
	fail      bool
}

func NewMemWallet(name string, chains []string, keyCount int) (*MemWallet, error) {
	m := &MemWallet{
		name:      name,
		chains:    chains,
		keys:      make(map[string]ed25519.PrivateKey),
		listeners: make(map[uint64]func(wallet.PropertiesChange)),
	}

	m.features = types.Features{}
	types.AddFeature(m.features, wallet.ConnectFeature{Version: "1.0.0", Connect: m.connect})
	types.AddFeature(m.features, wallet.DisconnectFeature{Version: "1.0.0", Disconnect: m.disconnect})
	types.AddFeature(m.features, wallet.EventsFeature{Version: "1.0.0", On: m.on})
	types.AddFeature(m.features, wallet.SignMessageFeature{Version: "1.0.0", SignMessage: m.signMessage})
	types.AddFeature(m.features, wallet.SignTransactionFeature{
		Version:                      "1.0.0",
		SupportedTransactionVersions: []wallet.TransactionVersion{wallet.TransactionVersionLegacy, wallet.TransactionVersion0},
		SignTransaction:              m.signTransaction,
	})
	types.AddFeature(m.features, wallet.SignAndSendTransactionFeature{
		Version:                      "1.0.0",
		SupportedTransactionVersions: []wallet.TransactionVersion{wallet.TransactionVersionLegacy, wallet.TransactionVersion0},
		SignAndSendTransaction:       m.signAndSendTransaction,
	})
	types.AddFeature(m.features, wallet.EncryptFeature{Version: "1.0.0", Ciphers: []string{wallet.CipherAes256Gcm}, Encrypt: m.encrypt})
	types.AddFeature(m.features, wallet.DecryptFeature{Version: "1.0.0", Ciphers: []string{wallet.CipherAes256Gcm}, Decrypt: m.decrypt})

	for i := 0; i < keyCount; i++ {
		if _, err := m.AddKey(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetFail makes every subsequent operation fail, to exercise error paths.
func (m *MemWallet) SetFail(ctx context.Context, fail bool) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.fail = fail
}

// AddKey generates a fresh ed25519 keypair and returns its base58 address.
func (m *MemWallet) AddKey() (string, error) {
	m.lk.Lock()
	defer m.lk.Unlock()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	addr := base58.Encode(pub)
	m.keys[addr] = priv
	m.order = append(m.order, addr)
	return addr, nil
}

// Addresses lists the wallet's key addresses in creation order.
func (m *MemWallet) Addresses() []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *MemWallet) Info() types.WalletInfo {
	m.lk.Lock()
	defer m.lk.Unlock()
	return types.WalletInfo{
		Version:  types.StandardVersion,
		Name:     m.name,
		Icon:     "data:image/svg+xml;base64,bWVt",
		Chains:   m.chains,
		Features: m.features,
		Accounts: m.connected,
	}
}

func (m *MemWallet) Account() *types.Account {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.active
}

func (m *MemWallet) connect(ctx context.Context, input wallet.ConnectInput) (wallet.ConnectOutput, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return wallet.ConnectOutput{}, types.ErrWalletConnection.WithMessage("mock error")
	}

	accounts := make([]types.Account, 0, len(m.order))
	for _, addr := range m.order {
		accounts = append(accounts, m.accountLocked(addr))
	}
	m.connected = accounts
	if len(accounts) > 0 {
		account := accounts[0]
		m.active = &account
	}
	m.notifyLocked(wallet.PropertiesChange{Accounts: accounts})
	return wallet.ConnectOutput{Accounts: accounts}, nil
}

func (m *MemWallet) disconnect(ctx context.Context) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return types.ErrWalletDisconnection.WithMessage("mock error")
	}
	m.connected = nil
	m.active = nil
	m.notifyLocked(wallet.PropertiesChange{Accounts: []types.Account{}})
	return nil
}

func (m *MemWallet) signMessage(ctx context.Context, input wallet.SignMessageInput) (wallet.SignMessageOutput, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return wallet.SignMessageOutput{}, types.ErrWalletSignMessage.WithMessage("mock error")
	}
	priv, err := m.keyLocked(input.Account.Address)
	if err != nil {
		return wallet.SignMessageOutput{}, err
	}
	return wallet.SignMessageOutput{
		SignedMessage: input.Message,
		RawSignature:  ed25519.Sign(priv, input.Message),
		SignatureType: wallet.SignatureTypeEd25519,
	}, nil
}

func (m *MemWallet) signTransaction(ctx context.Context, input wallet.SignTransactionInput) (wallet.SignTransactionOutput, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return wallet.SignTransactionOutput{}, types.ErrWalletSignTransaction.WithMessage("mock error")
	}
	priv, err := m.keyLocked(input.Account.Address)
	if err != nil {
		return wallet.SignTransactionOutput{}, err
	}
	// signature prepended, the payload itself stays opaque
	sig := ed25519.Sign(priv, input.Transaction)
	return wallet.SignTransactionOutput{SignedTransaction: append(sig, input.Transaction...)}, nil
}

func (m *MemWallet) signAndSendTransaction(ctx context.Context, input wallet.SignAndSendTransactionInput) (wallet.SignAndSendTransactionOutput, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return wallet.SignAndSendTransactionOutput{}, types.ErrWalletSendTransaction.WithMessage("mock error")
	}
	priv, err := m.keyLocked(input.Account.Address)
	if err != nil {
		return wallet.SignAndSendTransactionOutput{}, err
	}
	return wallet.SignAndSendTransactionOutput{Signature: ed25519.Sign(priv, input.Transaction)}, nil
}

func (m *MemWallet) encrypt(ctx context.Context, input wallet.EncryptInput) (wallet.EncryptOutput, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return wallet.EncryptOutput{}, types.ErrWalletEncrypt.WithMessage("mock error")
	}
	aead, err := m.aeadLocked(input.Account.Address, input.PublicKey)
	if err != nil {
		return wallet.EncryptOutput{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return wallet.EncryptOutput{}, types.ErrWalletEncrypt.WithMessage(err.Error())
	}
	return wallet.EncryptOutput{
		Cipher:     wallet.CipherAes256Gcm,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, input.Data, nil),
	}, nil
}

func (m *MemWallet) decrypt(ctx context.Context, input wallet.DecryptInput) (wallet.DecryptOutput, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.fail {
		return wallet.DecryptOutput{}, types.ErrWalletDecrypt.WithMessage("mock error")
	}
	aead, err := m.aeadLocked(input.Account.Address, input.PublicKey)
	if err != nil {
		return wallet.DecryptOutput{}, err
	}
	cleartext, err := aead.Open(nil, input.Nonce, input.Ciphertext, nil)
	if err != nil {
		return wallet.DecryptOutput{}, types.ErrWalletDecrypt.WithMessage(err.Error())
	}
	return wallet.DecryptOutput{Cleartext: cleartext}, nil
}

func (m *MemWallet) on(event string, listener func(wallet.PropertiesChange)) wallet.Disposer {
	if event != wallet.EventChange {
		return func() {}
	}
	m.lk.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = listener
	m.lk.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.lk.Lock()
			delete(m.listeners, id)
			m.lk.Unlock()
		})
	}
}

// Verify checks an ed25519 signature made by one of the wallet's keys.
func Verify(publicKey, message, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, sig)
}

func (m *MemWallet) accountLocked(addr string) types.Account {
	priv := m.keys[addr]
	return types.Account{
		Address:   addr,
		PublicKey: priv.Public().(ed25519.PublicKey),
		Chains:    m.chains,
		Features: []string{
			wallet.SolanaSignMessage,
			wallet.SolanaSignTransaction,
			wallet.SolanaSignAndSendTransaction,
		},
	}
}

func (m *MemWallet) keyLocked(addr string) (ed25519.PrivateKey, error) {
	if addr == "" && m.active != nil {
		addr = m.active.Address
	}
	priv, ok := m.keys[addr]
	if !ok {
		return nil, types.SignerError(fmt.Sprintf("address %s not found", addr))
	}
	return priv, nil
}

// aeadLocked derives a symmetric key from the account's private key and the
// peer public key. Both sides of a test share the MemWallet so the exact
// derivation only has to be stable, not a real ECDH.
func (m *MemWallet) aeadLocked(addr string, peer []byte) (cipher.AEAD, error) {
	priv, err := m.keyLocked(addr)
	if err != nil {
		return nil, err
	}
	secret := sha256.Sum256(append(priv.Seed(), peer...))
	block, err := aes.NewCipher(secret[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *MemWallet) notifyLocked(change wallet.PropertiesChange) {
	listeners := make([]func(wallet.PropertiesChange), 0, len(m.listeners))
	for _, cb := range m.listeners {
		listeners = append(listeners, cb)
	}
	go func() {
		for _, cb := range listeners {
			cb(change)
		}
	}()
}
