package walletevent

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/wallet-hub/types"
)

// Wire methods dispatched from the hub to a wallet provider.
const (
	MethodInitConnect                  = "InitConnect"
	MethodWalletConnect                = "WalletConnect"
	MethodWalletDisconnect             = "WalletDisconnect"
	MethodWalletSignMessage            = "WalletSignMessage"
	MethodWalletSignTransaction        = "WalletSignTransaction"
	MethodWalletSignAndSendTransaction = "WalletSignAndSendTransaction"
	MethodWalletEncrypt                = "WalletEncrypt"
	MethodWalletDecrypt                = "WalletDecrypt"
)

// WalletRegisterPolicy is the announcement a provider sends when it starts
// listening: the descriptor of the wallet it serves. Feature handles are
// rebuilt hub-side, only the descriptor data crosses the wire.
type WalletRegisterPolicy struct {
	Wallet types.WalletInfo `json:"wallet"`
}

type WalletDetail struct {
	Wallet        types.WalletInfo
	ConnectStates []ConnectState
}

type ConnectState struct {
	ChannelID    uuid.UUID
	IP           string
	RequestCount int
	CreateTime   time.Time
}
