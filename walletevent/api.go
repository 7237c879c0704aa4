package walletevent

import (
	"context"

	"github.com/ipfs-force-community/wallet-hub/types"
)

type IWalletEvent interface {
	ListWalletInfo(ctx context.Context) ([]*WalletDetail, error)
	ListWalletInfoByName(ctx context.Context, name string) (*WalletDetail, error)
}

// IWalletEventAPI is the provider-facing surface of the stream.
type IWalletEventAPI interface {
	ResponseWalletEvent(ctx context.Context, resp *types.ResponseEvent) error
	ListenWalletEvent(ctx context.Context, policy *WalletRegisterPolicy) (<-chan *types.RequestEvent, error)
}

var _ IWalletEventAPI = (*WalletEventStream)(nil)
var _ IWalletEvent = (*WalletEventStream)(nil)
