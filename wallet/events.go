package wallet

import (
	"github.com/ipfs-force-community/wallet-hub/types"
)

// StandardEvents is the canonical name of the change-subscription feature.
const StandardEvents = "standard:events"

// EventChange is the only event name defined by the standard.
const EventChange = "change"

// Disposer removes the subscription it was returned for. Safe to call more
// than once, a no-op after the first call.
type Disposer func()

// PropertiesChange lists the descriptor properties that changed. Only the
// changed collections are populated.
type PropertiesChange struct {
	Chains   []string        `json:"chains,omitempty"`
	Features types.Features  `json:"features,omitempty"`
	Accounts []types.Account `json:"accounts,omitempty"`
}

type EventsFeature struct {
	Version string `json:"version"`

	On func(event string, listener func(PropertiesChange)) Disposer `json:"-"`
}

func (EventsFeature) FeatureName() string { return StandardEvents }

// StandardCompatible reports whether info exposes the full standard feature
// set: connect, disconnect and events.
func StandardCompatible(info types.WalletInfo) bool {
	return types.SupportsFeature[ConnectFeature](info.Features) &&
		types.SupportsFeature[DisconnectFeature](info.Features) &&
		types.SupportsFeature[EventsFeature](info.Features)
}
