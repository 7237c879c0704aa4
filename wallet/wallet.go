package wallet

import (
	"github.com/ipfs-force-community/wallet-hub/types"
)

// Wallet is the core contract every wallet implementation satisfies. The
// descriptor returned by Info is an immutable snapshot; implementations
// publish a new one when their state changes. Everything beyond these two
// methods is derived, never stored twice.
type Wallet interface {
	// Info returns the wallet descriptor, including the capability map the
	// typed feature handles are extracted from.
	Info() types.WalletInfo
	// Account returns the active connected account, nil while disconnected.
	Account() *types.Account
}

func Name(w Wallet) string {
	return w.Info().Name
}

func Icon(w Wallet) string {
	return w.Info().Icon
}

// Connected is true iff an account is present.
func Connected(w Wallet) bool {
	return w.Account() != nil
}

// TryPublicKey returns the public key of the active account, or a
// wallet-account error while disconnected.
func TryPublicKey(w Wallet) ([]byte, error) {
	account := w.Account()
	if account == nil {
		return nil, types.ErrWalletAccount
	}
	return account.PublicKey, nil
}

// PublicKey is the strict twin of TryPublicKey: it panics when the wallet
// is disconnected. For callers that already checked Connected.
func PublicKey(w Wallet) []byte {
	pk, err := TryPublicKey(w)
	if err != nil {
		panic(err)
	}
	return pk
}
