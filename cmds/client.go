package cmds

import (
	"context"
	"net/http"
	"net/url"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/wallet-hub/api"
	"github.com/ipfs-force-community/wallet-hub/proxy"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

// WalletHubClient is the rpc client of a hub daemon. The Internal struct is
// populated by go-jsonrpc; the wrapper methods make the client satisfy
// api.IWalletHub so it can be passed wherever the in-process api is.
type WalletHubClient struct {
	Internal struct {
		ResponseWalletEvent func(ctx context.Context, resp *types.ResponseEvent) error
		ListenWalletEvent   func(ctx context.Context, policy *walletevent.WalletRegisterPolicy) (<-chan *types.RequestEvent, error)

		ListWalletInfo       func(ctx context.Context) ([]*walletevent.WalletDetail, error)
		ListWalletInfoByName func(ctx context.Context, name string) (*walletevent.WalletDetail, error)
		ListWallets          func(ctx context.Context) ([]types.WalletInfo, error)

		WalletConnect                func(ctx context.Context, id types.WalletID, input wallet.ConnectInput) (wallet.ConnectOutput, error)
		WalletDisconnect             func(ctx context.Context, id types.WalletID) error
		WalletSignMessage            func(ctx context.Context, id types.WalletID, input wallet.SignMessageInput) (wallet.SignMessageOutput, error)
		WalletSignMessages           func(ctx context.Context, id types.WalletID, inputs []wallet.SignMessageInput) ([]wallet.SignMessageOutput, error)
		WalletSignTransaction        func(ctx context.Context, id types.WalletID, input wallet.SignTransactionInput) (wallet.SignTransactionOutput, error)
		WalletSignAndSendTransaction func(ctx context.Context, id types.WalletID, input wallet.SignAndSendTransactionInput) (wallet.SignAndSendTransactionOutput, error)
		WalletEncrypt                func(ctx context.Context, id types.WalletID, input wallet.EncryptInput) (wallet.EncryptOutput, error)
		WalletDecrypt                func(ctx context.Context, id types.WalletID, input wallet.DecryptInput) (wallet.DecryptOutput, error)

		RegisterReverse func(ctx context.Context, hostKey proxy.HostKey, address string) error
		Version         func(ctx context.Context) (string, error)
	}
}

var _ api.IWalletHub = (*WalletHubClient)(nil)

func (c *WalletHubClient) ResponseWalletEvent(ctx context.Context, resp *types.ResponseEvent) error {
	return c.Internal.ResponseWalletEvent(ctx, resp)
}

func (c *WalletHubClient) ListenWalletEvent(ctx context.Context, policy *walletevent.WalletRegisterPolicy) (<-chan *types.RequestEvent, error) {
	return c.Internal.ListenWalletEvent(ctx, policy)
}

func (c *WalletHubClient) ListWalletInfo(ctx context.Context) ([]*walletevent.WalletDetail, error) {
	return c.Internal.ListWalletInfo(ctx)
}

func (c *WalletHubClient) ListWalletInfoByName(ctx context.Context, name string) (*walletevent.WalletDetail, error) {
	return c.Internal.ListWalletInfoByName(ctx, name)
}

func (c *WalletHubClient) ListWallets(ctx context.Context) ([]types.WalletInfo, error) {
	return c.Internal.ListWallets(ctx)
}

func (c *WalletHubClient) WalletConnect(ctx context.Context, id types.WalletID, input wallet.ConnectInput) (wallet.ConnectOutput, error) {
	return c.Internal.WalletConnect(ctx, id, input)
}

func (c *WalletHubClient) WalletDisconnect(ctx context.Context, id types.WalletID) error {
	return c.Internal.WalletDisconnect(ctx, id)
}

func (c *WalletHubClient) WalletSignMessage(ctx context.Context, id types.WalletID, input wallet.SignMessageInput) (wallet.SignMessageOutput, error) {
	return c.Internal.WalletSignMessage(ctx, id, input)
}

func (c *WalletHubClient) WalletSignMessages(ctx context.Context, id types.WalletID, inputs []wallet.SignMessageInput) ([]wallet.SignMessageOutput, error) {
	return c.Internal.WalletSignMessages(ctx, id, inputs)
}

func (c *WalletHubClient) WalletSignTransaction(ctx context.Context, id types.WalletID, input wallet.SignTransactionInput) (wallet.SignTransactionOutput, error) {
	return c.Internal.WalletSignTransaction(ctx, id, input)
}

func (c *WalletHubClient) WalletSignAndSendTransaction(ctx context.Context, id types.WalletID, input wallet.SignAndSendTransactionInput) (wallet.SignAndSendTransactionOutput, error) {
	return c.Internal.WalletSignAndSendTransaction(ctx, id, input)
}

func (c *WalletHubClient) WalletEncrypt(ctx context.Context, id types.WalletID, input wallet.EncryptInput) (wallet.EncryptOutput, error) {
	return c.Internal.WalletEncrypt(ctx, id, input)
}

func (c *WalletHubClient) WalletDecrypt(ctx context.Context, id types.WalletID, input wallet.DecryptInput) (wallet.DecryptOutput, error) {
	return c.Internal.WalletDecrypt(ctx, id, input)
}

func (c *WalletHubClient) RegisterReverse(ctx context.Context, hostKey proxy.HostKey, address string) error {
	return c.Internal.RegisterReverse(ctx, hostKey, address)
}

func (c *WalletHubClient) Version(ctx context.Context) (string, error) {
	return c.Internal.Version(ctx)
}

// APINamespace is the jsonrpc namespace the hub registers its api under.
const APINamespace = "WalletHub"

func NewWalletHubClient(cctx *cli.Context) (*WalletHubClient, jsonrpc.ClientCloser, error) {
	return DialWalletHubClient(cctx.Context, cctx.String("listen"))
}

func DialWalletHubClient(ctx context.Context, listen string) (*WalletHubClient, jsonrpc.ClientCloser, error) {
	addr, err := DialArgs(listen)
	if err != nil {
		return nil, nil, err
	}

	var hubClient = &WalletHubClient{}
	closer, err := jsonrpc.NewMergeClient(ctx, addr,
		APINamespace, []interface{}{&hubClient.Internal}, http.Header{})
	if err != nil {
		return nil, nil, err
	}
	return hubClient, closer, nil
}

func DialArgs(addr string) (string, error) {
	ma, err := multiaddr.NewMultiaddr(addr)
	if err == nil {
		_, addr, err := manet.DialArgs(ma)
		if err != nil {
			return "", err
		}

		return "ws://" + addr + "/rpc/v1", nil
	}

	_, err = url.Parse(addr)
	if err != nil {
		return "", err
	}
	return addr + "/rpc/v1", nil
}
