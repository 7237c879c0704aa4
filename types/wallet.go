package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// StandardVersion is the version of the wallet standard implemented by this
// module. Callers must not assume forward compatibility across major
// versions.
const StandardVersion = "1.0.0"

// Account is a read-only data object provided from a wallet to the app,
// authorizing the app to use it. Accounts are immutable snapshots: when a
// wallet's authorization set changes it produces new Account values, it
// never mutates published ones.
type Account struct {
	// Address of the account, corresponding with the public key. Typically
	// a human-readable rendering formatted by the chain's conventions.
	Address string `json:"address"`
	// PublicKey is the raw binary public key.
	PublicKey []byte `json:"publicKey"`
	// Chains supported by the account. Must be a subset of the owning
	// wallet's chains.
	Chains []string `json:"chains"`
	// Features supported by the account. Must be a subset of the names of
	// the owning wallet's features.
	Features []string `json:"features"`
	// Label is an optional user-friendly name for the account.
	Label string `json:"label,omitempty"`
	// Icon is an optional data URI for the account.
	Icon string `json:"icon,omitempty"`
}

// WalletInfo describes a wallet implementation: its metadata and the
// capability map through which it exposes optional features. The descriptor
// is read-only once published.
type WalletInfo struct {
	// Version of the wallet standard implemented by the wallet.
	Version string `json:"version"`
	// Name is the unique, stable, human-displayable identity key of the
	// wallet, used for deduplication and lookup.
	Name string `json:"name"`
	// Icon is a data URI, opaque to the core.
	Icon string `json:"icon"`
	// Chains are canonical namespaced chain identifiers, e.g.
	// "solana:mainnet". CAIP-2 ids are compatible but not required; the
	// core never parses them.
	Chains []string `json:"chains"`
	// Features maps feature names to opaque capability values. It is the
	// superset of every feature any account of this wallet may expose.
	Features Features `json:"features"`
	// Accounts currently authorized for the connected app. Empty until a
	// connect succeeds.
	Accounts []Account `json:"accounts"`
}

// WalletID identifies a logical wallet by content, not object identity. Two
// independently constructed descriptors of the same wallet share an ID.
type WalletID string

// ID computes the identity hash over (name, chains, version, icon). Account
// state and the feature map are excluded on purpose: they mutate over the
// connection lifecycle while the wallet identity stays put.
func (w WalletInfo) ID() WalletID {
	hasher := sha256.New()
	_, _ = hasher.Write([]byte(w.Name))
	_, _ = hasher.Write([]byte{0})
	for _, chain := range w.Chains {
		_, _ = hasher.Write([]byte(chain))
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte(w.Version))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(w.Icon))
	return WalletID(hex.EncodeToString(hasher.Sum(nil)))
}

// Equal reports wallet identity: name, chains, version and icon all equal.
// Consistent with ID by construction.
func (w WalletInfo) Equal(other WalletInfo) bool {
	if w.Name != other.Name || w.Version != other.Version || w.Icon != other.Icon {
		return false
	}
	if len(w.Chains) != len(other.Chains) {
		return false
	}
	for i, chain := range w.Chains {
		if other.Chains[i] != chain {
			return false
		}
	}
	return true
}

// Validate checks the descriptor preconditions for conforming wallets: a
// non-empty name and version, a data-URI icon, and the subset invariant
// between every account and the wallet's chains and feature names.
func (w WalletInfo) Validate() error {
	if w.Name == "" || w.Version == "" {
		return ErrInvalidArguments
	}
	if w.Icon != "" && !strings.HasPrefix(w.Icon, "data:") {
		return ErrUnsupportedIconType
	}
	for _, account := range w.Accounts {
		if err := w.validateAccount(account); err != nil {
			return err
		}
	}
	return nil
}

func (w WalletInfo) validateAccount(account Account) error {
	for _, chain := range account.Chains {
		if !contains(w.Chains, chain) {
			return InvalidIdentifierError("account chain " + chain + " not declared by wallet " + w.Name)
		}
	}
	for _, feature := range account.Features {
		if _, ok := w.Features[feature]; !ok {
			return InvalidIdentifierError("account feature " + feature + " not declared by wallet " + w.Name)
		}
	}
	return nil
}

func contains(list []string, want string) bool {
	for _, have := range list {
		if have == want {
			return true
		}
	}
	return false
}
