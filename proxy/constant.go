package proxy

import (
	"errors"
)

// HostKey names one of the two upstreams the hub can front.
type HostKey string

const (
	HostUnknown HostKey = ""
	// HostHub is another wallet-hub instance.
	HostHub HostKey = "HUB"
	// HostNode is a plain chain rpc node fronted together with the hub.
	HostNode HostKey = "NODE"
)

// APINamespaceHeader selects the upstream a request is routed to. Requests
// without the header are served by the local handler.
const APINamespaceHeader = "X-Hub-Api-Namespace"

// The namespace values clients put in the header, matching the jsonrpc
// namespaces of the two upstreams.
const (
	NamespaceHub  = "hub.WalletHub"
	NamespaceNode = "node.SolanaRPC"
)

var (
	ErrUnknownNamespace      = errors.New("unknown api namespace")
	ErrUpstreamNotConfigured = errors.New("upstream not configured")
)
