package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multiaddr"
	maNet "github.com/multiformats/go-multiaddr/net"
)

var log = logging.Logger("proxy")

type IProxy interface {
	RegisterReverseHandler(hostKey HostKey, server http.Handler)
	RegisterReverseByAddr(hostKey HostKey, address string) error
	ProxyMiddleware(next http.Handler) http.Handler
}

// Proxy fronts at most two upstreams, a sibling hub and a chain rpc node,
// selected per request by the api namespace header. Either slot may be
// repointed at runtime through the RegisterReverse rpc.
type Proxy struct {
	lk   sync.Mutex
	hub  http.Handler
	node http.Handler
}

var _ IProxy = (*Proxy)(nil)

func NewProxy() *Proxy {
	return &Proxy{}
}

func (p *Proxy) ProxyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		namespace := r.Header.Get(APINamespaceHeader)
		if namespace == "" {
			next.ServeHTTP(w, r)
			return
		}

		upstream, err := p.upstreamFor(namespace)
		if err != nil {
			log.Errorf("route namespace %q: %s", namespace, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		upstream.ServeHTTP(w, r)
	})
}

// upstreamFor resolves a namespace header value to the configured upstream
// handler.
func (p *Proxy) upstreamFor(namespace string) (http.Handler, error) {
	var hostKey HostKey
	switch namespace {
	case NamespaceHub:
		hostKey = HostHub
	case NamespaceNode:
		hostKey = HostNode
	default:
		return nil, fmt.Errorf("namespace %q: %w", namespace, ErrUnknownNamespace)
	}

	p.lk.Lock()
	defer p.lk.Unlock()
	handler := *p.slotLocked(hostKey)
	if handler == nil {
		return nil, fmt.Errorf("host key %s: %w", hostKey, ErrUpstreamNotConfigured)
	}
	return handler, nil
}

func (p *Proxy) RegisterReverseHandler(hostKey HostKey, server http.Handler) {
	p.lk.Lock()
	defer p.lk.Unlock()

	slot := p.slotLocked(hostKey)
	if slot == nil {
		log.Errorf("no upstream slot for host key %q", hostKey)
		return
	}
	*slot = server
	if server == nil {
		log.Infof("cleared %s upstream", hostKey)
	} else {
		log.Infof("set %s upstream", hostKey)
	}
}

// RegisterReverseByAddr points hostKey at address, accepting a multiaddr or
// a plain url. An empty address clears the slot.
func (p *Proxy) RegisterReverseByAddr(hostKey HostKey, address string) error {
	if address == "" {
		p.RegisterReverseHandler(hostKey, nil)
		return nil
	}

	u, err := parseAddr(address)
	if err != nil {
		return err
	}

	log.Infof("proxy %s to %s", hostKey, u.String())
	p.RegisterReverseHandler(hostKey, NewReverseServer(u))
	return nil
}

// slotLocked assumes p.lk is held; returns nil for an unknown host key.
func (p *Proxy) slotLocked(hostKey HostKey) *http.Handler {
	switch hostKey {
	case HostHub:
		return &p.hub
	case HostNode:
		return &p.node
	default:
		return nil
	}
}

// parseAddr turns a multiaddr or a normal url string into url.URL. A wss or
// https protocol component selects the tls scheme.
func parseAddr(address string) (*url.URL, error) {
	ma, err := multiaddr.NewMultiaddr(address)
	if err != nil {
		return url.Parse(address)
	}

	_, dialAddr, err := maNet.DialArgs(ma)
	if err != nil {
		return nil, fmt.Errorf("dial args for %s: %w", address, err)
	}

	scheme := "http"
	for _, code := range []int{multiaddr.P_WSS, multiaddr.P_HTTPS} {
		if _, err := ma.ValueForProtocol(code); err == nil {
			scheme = "https"
		} else if err != multiaddr.ErrProtocolNotFound {
			return nil, err
		}
	}

	return url.Parse(scheme + "://" + dialAddr)
}
