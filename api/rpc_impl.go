package api

import (
	"context"
	"fmt"

	"github.com/ipfs-force-community/wallet-hub/proxy"
	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/version"
	"github.com/ipfs-force-community/wallet-hub/wallet"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

var _ IWalletHub = (*WalletHubAPI)(nil)

type WalletHubAPI struct {
	walletevent.IWalletEventAPI

	we    *walletevent.WalletEventStream
	reg   *registry.Registry
	proxy proxy.IProxy
}

func NewWalletHubAPI(we *walletevent.WalletEventStream, reg *registry.Registry, p proxy.IProxy) *WalletHubAPI {
	return &WalletHubAPI{
		IWalletEventAPI: we,
		we:              we,
		reg:             reg,
		proxy:           p,
	}
}

func (h *WalletHubAPI) ListWalletInfo(ctx context.Context) ([]*walletevent.WalletDetail, error) {
	return h.we.ListWalletInfo(ctx)
}

func (h *WalletHubAPI) ListWalletInfoByName(ctx context.Context, name string) (*walletevent.WalletDetail, error) {
	return h.we.ListWalletInfoByName(ctx, name)
}

func (h *WalletHubAPI) ListWallets(ctx context.Context) ([]types.WalletInfo, error) {
	wallets := h.reg.GetAll()
	infos := make([]types.WalletInfo, 0, len(wallets))
	for _, w := range wallets {
		infos = append(infos, w.Info())
	}
	return infos, nil
}

func (h *WalletHubAPI) WalletConnect(ctx context.Context, id types.WalletID, input wallet.ConnectInput) (wallet.ConnectOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return wallet.ConnectOutput{}, err
	}
	return wallet.Connect(ctx, w, input)
}

func (h *WalletHubAPI) WalletDisconnect(ctx context.Context, id types.WalletID) error {
	w, err := h.getWallet(id)
	if err != nil {
		return err
	}
	return wallet.Disconnect(ctx, w)
}

func (h *WalletHubAPI) WalletSignMessage(ctx context.Context, id types.WalletID, input wallet.SignMessageInput) (wallet.SignMessageOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return wallet.SignMessageOutput{}, err
	}
	return wallet.SignMessage(ctx, w, input)
}

func (h *WalletHubAPI) WalletSignMessages(ctx context.Context, id types.WalletID, inputs []wallet.SignMessageInput) ([]wallet.SignMessageOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return nil, err
	}
	return wallet.SignMessages(ctx, w, inputs)
}

func (h *WalletHubAPI) WalletSignTransaction(ctx context.Context, id types.WalletID, input wallet.SignTransactionInput) (wallet.SignTransactionOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return wallet.SignTransactionOutput{}, err
	}
	return wallet.SignTransaction(ctx, w, input)
}

func (h *WalletHubAPI) WalletSignAndSendTransaction(ctx context.Context, id types.WalletID, input wallet.SignAndSendTransactionInput) (wallet.SignAndSendTransactionOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return wallet.SignAndSendTransactionOutput{}, err
	}
	return wallet.SignAndSendTransaction(ctx, w, input)
}

func (h *WalletHubAPI) WalletEncrypt(ctx context.Context, id types.WalletID, input wallet.EncryptInput) (wallet.EncryptOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return wallet.EncryptOutput{}, err
	}
	return wallet.Encrypt(ctx, w, input)
}

func (h *WalletHubAPI) WalletDecrypt(ctx context.Context, id types.WalletID, input wallet.DecryptInput) (wallet.DecryptOutput, error) {
	w, err := h.getWallet(id)
	if err != nil {
		return wallet.DecryptOutput{}, err
	}
	return wallet.Decrypt(ctx, w, input)
}

func (h *WalletHubAPI) RegisterReverse(ctx context.Context, hostKey proxy.HostKey, address string) error {
	if h.proxy == nil {
		return fmt.Errorf("reverse proxy not enabled")
	}
	return h.proxy.RegisterReverseByAddr(hostKey, address)
}

func (h *WalletHubAPI) Version(ctx context.Context) (string, error) {
	return version.UserVersion, nil
}

func (h *WalletHubAPI) getWallet(id types.WalletID) (wallet.Wallet, error) {
	w, ok := h.reg.Get(id)
	if !ok {
		return nil, types.ErrWalletLoad.WithMessage(fmt.Sprintf("wallet %s not registered", id))
	}
	return w, nil
}
