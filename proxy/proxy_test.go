package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestRouteByNamespace(t *testing.T) {
	t.Run("empty header falls through to local handler", func(t *testing.T) {
		p := NewProxy()
		local := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("local"))
		})

		rec := httptest.NewRecorder()
		p.ProxyMiddleware(local).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rpc/v1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "local", rec.Body.String())
	})

	t.Run("unknown namespace rejected", func(t *testing.T) {
		p := NewProxy()
		_, err := p.upstreamFor("droplet.Market")
		require.ErrorIs(t, err, ErrUnknownNamespace)

		req := httptest.NewRequest(http.MethodGet, "/rpc/v1", nil)
		req.Header.Set(APINamespaceHeader, "droplet.Market")
		rec := httptest.NewRecorder()
		p.ProxyMiddleware(http.NotFoundHandler()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("known namespace without upstream", func(t *testing.T) {
		p := NewProxy()
		for _, namespace := range []string{NamespaceHub, NamespaceNode} {
			_, err := p.upstreamFor(namespace)
			require.NotErrorIs(t, err, ErrUnknownNamespace)
			require.ErrorIs(t, err, ErrUpstreamNotConfigured)
		}
	})
}

func TestRegisterUpstream(t *testing.T) {
	t.Run("set and clear each slot", func(t *testing.T) {
		p := NewProxy()
		backend := http.NotFoundHandler()

		p.RegisterReverseHandler(HostHub, backend)
		_, err := p.upstreamFor(NamespaceHub)
		require.NoError(t, err)
		// the node slot stays empty
		_, err = p.upstreamFor(NamespaceNode)
		require.ErrorIs(t, err, ErrUpstreamNotConfigured)

		p.RegisterReverseHandler(HostHub, nil)
		_, err = p.upstreamFor(NamespaceHub)
		require.ErrorIs(t, err, ErrUpstreamNotConfigured)
	})

	t.Run("clear by empty address", func(t *testing.T) {
		p := NewProxy()
		require.NoError(t, p.RegisterReverseByAddr(HostNode, "http://localhost:8899"))
		_, err := p.upstreamFor(NamespaceNode)
		require.NoError(t, err)

		require.NoError(t, p.RegisterReverseByAddr(HostNode, ""))
		_, err = p.upstreamFor(NamespaceNode)
		require.ErrorIs(t, err, ErrUpstreamNotConfigured)
	})

	t.Run("unknown host key ignored", func(t *testing.T) {
		p := NewProxy()
		p.RegisterReverseHandler(HostUnknown, http.NotFoundHandler())
		_, err := p.upstreamFor(NamespaceHub)
		require.ErrorIs(t, err, ErrUpstreamNotConfigured)
	})
}

func TestParseAddr(t *testing.T) {
	for _, tc := range []struct {
		address string
		want    string
	}{
		{"/ip4/127.0.0.1/tcp/8899", "http://127.0.0.1:8899"},
		{"/dns/hub.example.com/tcp/443/wss", "https://hub.example.com:443"},
		{"http://localhost:8899", "http://localhost:8899"},
	} {
		u, err := parseAddr(tc.address)
		require.NoError(t, err, tc.address)
		require.Equal(t, tc.want, u.String())
	}
}

func TestReverseProxyHTTP(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("node"))
	}))
	defer backend.Close()

	p := NewProxy()
	require.NoError(t, p.RegisterReverseByAddr(HostNode, backend.URL))

	local := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hub"))
	})
	front := httptest.NewServer(p.ProxyMiddleware(local))
	defer front.Close()

	read := func(header string) string {
		req, err := http.NewRequest(http.MethodGet, front.URL, nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set(APINamespaceHeader, header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	require.Equal(t, "hub", read(""))
	require.Equal(t, "node", read(NamespaceNode))
}

func TestReverseProxyWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close() // nolint
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, payload); err != nil {
				return
			}
		}
	}))
	defer backend.Close()

	p := NewProxy()
	require.NoError(t, p.RegisterReverseByAddr(HostNode, backend.URL))

	front := httptest.NewServer(p.ProxyMiddleware(http.NotFoundHandler()))
	defer front.Close()

	header := http.Header{}
	header.Set(APINamespaceHeader, NamespaceNode)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(front.URL, "http"), header)
	require.NoError(t, err)
	defer conn.Close() // nolint

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), payload)
}
