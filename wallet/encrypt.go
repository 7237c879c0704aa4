package wallet

import (
	"context"

	"github.com/ipfs-force-community/wallet-hub/types"
)

// Experimental features. Names and shapes may change across minor versions.
const (
	ExperimentalEncrypt = "experimental:encrypt"
	ExperimentalDecrypt = "experimental:decrypt"
)

// Ciphers a wallet may negotiate for the experimental encrypt/decrypt
// features.
const (
	CipherX25519XSalsa20Poly1305 = "x25519-xsalsa20-poly1305"
	CipherAes256Gcm              = "aes-256-gcm"
)

type EncryptInput struct {
	Account types.Account `json:"account"`
	Cipher  string        `json:"cipher"`
	// PublicKey of the intended recipient.
	PublicKey []byte `json:"publicKey"`
	Data      []byte `json:"data"`
}

type EncryptOutput struct {
	Cipher     string `json:"cipher"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type DecryptInput struct {
	Account types.Account `json:"account"`
	Cipher  string        `json:"cipher"`
	// PublicKey of the sender.
	PublicKey  []byte `json:"publicKey"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type DecryptOutput struct {
	Cleartext []byte `json:"cleartext"`
}

type EncryptFeature struct {
	Version string   `json:"version"`
	Ciphers []string `json:"ciphers"`

	Encrypt func(ctx context.Context, input EncryptInput) (EncryptOutput, error) `json:"-"`
}

func (EncryptFeature) FeatureName() string { return ExperimentalEncrypt }

type DecryptFeature struct {
	Version string   `json:"version"`
	Ciphers []string `json:"ciphers"`

	Decrypt func(ctx context.Context, input DecryptInput) (DecryptOutput, error) `json:"-"`
}

func (DecryptFeature) FeatureName() string { return ExperimentalDecrypt }

// Encrypt negotiates the cipher against the feature's advertised list and
// invokes the handle.
func Encrypt(ctx context.Context, w Wallet, input EncryptInput) (EncryptOutput, error) {
	feature, err := types.RequireFeature[EncryptFeature](w.Info().Features, Name(w))
	if err != nil {
		return EncryptOutput{}, err
	}
	if feature.Encrypt == nil {
		return EncryptOutput{}, types.ErrWalletNotReady
	}
	if !cipherSupported(feature.Ciphers, input.Cipher) {
		return EncryptOutput{}, types.ErrWalletEncrypt.WithMessage("cipher " + input.Cipher + " not supported")
	}
	out, err := feature.Encrypt(ctx, input)
	if err != nil {
		return EncryptOutput{}, types.ExternalError(err)
	}
	return out, nil
}

func Decrypt(ctx context.Context, w Wallet, input DecryptInput) (DecryptOutput, error) {
	feature, err := types.RequireFeature[DecryptFeature](w.Info().Features, Name(w))
	if err != nil {
		return DecryptOutput{}, err
	}
	if feature.Decrypt == nil {
		return DecryptOutput{}, types.ErrWalletNotReady
	}
	if !cipherSupported(feature.Ciphers, input.Cipher) {
		return DecryptOutput{}, types.ErrWalletDecrypt.WithMessage("cipher " + input.Cipher + " not supported")
	}
	out, err := feature.Decrypt(ctx, input)
	if err != nil {
		return DecryptOutput{}, types.ExternalError(err)
	}
	return out, nil
}

func cipherSupported(ciphers []string, want string) bool {
	for _, cipher := range ciphers {
		if cipher == want {
			return true
		}
	}
	return false
}
