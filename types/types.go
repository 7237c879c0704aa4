package types

import (
	"time"

	"github.com/google/uuid"
)

type CtxKey string

// IPKey carries the remote address the rpc middleware extracted from the
// incoming request.
const IPKey CtxKey = "ip"

// RequestEvent is one operation dispatched from the hub to a wallet
// provider over its event channel.
type RequestEvent struct {
	ID         uuid.UUID `json:"id"`
	Method     string    `json:"method"`
	Payload    []byte    `json:"payload"`
	CreateTime time.Time `json:"createTime"`

	Result chan *ResponseEvent `json:"-"`
}

// ResponseEvent carries the provider's answer for a previously dispatched
// request. Error is the textual rendering of the provider-side failure;
// empty means success.
type ResponseEvent struct {
	ID      uuid.UUID `json:"id"`
	Payload []byte    `json:"payload"`
	Error   string    `json:"error"`
}

// ConnectedCompleted tells a provider which channel the hub assigned to it.
type ConnectedCompleted struct {
	ChannelID uuid.UUID `json:"channelId"`
}

type ChannelInfo struct {
	ChannelID  uuid.UUID
	IP         string
	OutBound   chan *RequestEvent
	CreateTime time.Time
}

func NewChannelInfo(ip string, sendEvents chan *RequestEvent) *ChannelInfo {
	return &ChannelInfo{
		ChannelID:  uuid.New(),
		OutBound:   sendEvents,
		IP:         ip,
		CreateTime: time.Now(),
	}
}

type RequestConfig struct {
	RequestQueueSize int
	RequestTimeout   time.Duration
	ClearInterval    time.Duration
}

func DefaultRequestConfig() *RequestConfig {
	return &RequestConfig{
		RequestQueueSize: 30,
		RequestTimeout:   time.Minute * 5,
		ClearInterval:    time.Minute * 5,
	}
}
