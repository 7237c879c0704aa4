package api

import (
	"context"

	"github.com/ipfs-force-community/wallet-hub/proxy"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

// IWalletHub is the full rpc surface of the hub daemon: the app-facing
// operations plus the provider-facing event endpoints.
type IWalletHub interface {
	walletevent.IWalletEvent
	walletevent.IWalletEventAPI

	// ListWallets snapshots the descriptors of every announced wallet.
	ListWallets(ctx context.Context) ([]types.WalletInfo, error)

	WalletConnect(ctx context.Context, id types.WalletID, input wallet.ConnectInput) (wallet.ConnectOutput, error)
	WalletDisconnect(ctx context.Context, id types.WalletID) error
	WalletSignMessage(ctx context.Context, id types.WalletID, input wallet.SignMessageInput) (wallet.SignMessageOutput, error)
	WalletSignMessages(ctx context.Context, id types.WalletID, inputs []wallet.SignMessageInput) ([]wallet.SignMessageOutput, error)
	WalletSignTransaction(ctx context.Context, id types.WalletID, input wallet.SignTransactionInput) (wallet.SignTransactionOutput, error)
	WalletSignAndSendTransaction(ctx context.Context, id types.WalletID, input wallet.SignAndSendTransactionInput) (wallet.SignAndSendTransactionOutput, error)
	WalletEncrypt(ctx context.Context, id types.WalletID, input wallet.EncryptInput) (wallet.EncryptOutput, error)
	WalletDecrypt(ctx context.Context, id types.WalletID, input wallet.DecryptInput) (wallet.DecryptOutput, error)

	// RegisterReverse points the builtin reverse proxy for hostKey at address,
	// or unregisters it when address is empty.
	RegisterReverse(ctx context.Context, hostKey proxy.HostKey, address string) error

	Version(ctx context.Context) (string, error)
}
