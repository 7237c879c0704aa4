package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// reverseServer forwards plain http through httputil's single-host proxy
// and turns websocket upgrades into a bidirectional message pump against
// the same target.
type reverseServer struct {
	target *url.URL
	httpRP *httputil.ReverseProxy
}

func NewReverseServer(u *url.URL) http.Handler {
	target := *u
	return &reverseServer{
		target: &target,
		httpRP: httputil.NewSingleHostReverseProxy(&target),
	}
}

func (s *reverseServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		s.httpRP.ServeHTTP(w, r)
		return
	}
	s.serveWebsocket(w, r)
}

func (s *reverseServer) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	wsURL := *r.URL
	wsURL.Host = s.target.Host
	if s.target.Scheme == "https" {
		wsURL.Scheme = "wss"
	} else {
		wsURL.Scheme = "ws"
	}

	// forward the client's headers, minus the handshake ones the dialer
	// generates itself
	header := http.Header{}
	for k, v := range r.Header {
		header[k] = v
	}
	for _, h := range []string{"Upgrade", "Connection", "Sec-Websocket-Key", "Sec-Websocket-Version", "Sec-Websocket-Extensions"} {
		header.Del(h)
	}

	remote, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), header)
	if err != nil {
		log.Errorf("dial upstream %s: %s", wsURL.Host, err)
		if resp != nil {
			log.Debugf("upstream handshake status: %s", resp.Status)
		}
		http.Error(w, "dial upstream: "+err.Error(), http.StatusBadGateway)
		return
	}

	client, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("upgrade client connection: %s", err)
		_ = remote.Close()
		return
	}

	// first failed pump wins; closing both ends unblocks the other pump
	errCh := make(chan error, 2)
	go pump(errCh, remote, client)
	go pump(errCh, client, remote)
	if err := <-errCh; err != nil &&
		!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.Debugf("websocket pump stopped: %s", err)
	}
	_ = remote.Close()
	_ = client.Close()
}

func pump(errCh chan<- error, dst, src *websocket.Conn) {
	for {
		messageType, payload, err := src.ReadMessage()
		if err != nil {
			errCh <- err
			return
		}
		if err := dst.WriteMessage(messageType, payload); err != nil {
			errCh <- err
			return
		}
	}
}
