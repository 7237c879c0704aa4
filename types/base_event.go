package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/modern-go/reflect2"
)

var log = logging.Logger("hub_stream")

var ErrCloseChannel = fmt.Errorf("recover send once")

// BaseEventStream correlates requests sent to provider channels with the
// responses the providers push back, and sweeps requests that were never
// answered within the configured timeout.
type BaseEventStream struct {
	reqLk     sync.RWMutex
	idRequest map[uuid.UUID]*RequestEvent
	cfg       *RequestConfig
}

func NewBaseEventStream(ctx context.Context, cfg *RequestConfig) *BaseEventStream {
	baseEventStream := &BaseEventStream{
		reqLk:     sync.RWMutex{},
		idRequest: make(map[uuid.UUID]*RequestEvent),
		cfg:       cfg,
	}
	go baseEventStream.cleanRequests(ctx)
	return baseEventStream
}

// SendRequest dispatches method to the channel and blocks until the
// provider responds or ctx is done. A non-nil result is filled from the
// response payload.
func (e *BaseEventStream) SendRequest(ctx context.Context, channel *ChannelInfo, method string, payload []byte, result interface{}) error {
	if channel == nil {
		return fmt.Errorf("send request must have channel")
	}

	resp, err := e.sendOnce(ctx, channel, method, payload)
	if err != nil {
		return err
	}
	if len(resp.Error) > 0 {
		return errors.New(resp.Error)
	}
	if !reflect2.IsNil(result) {
		return json.Unmarshal(resp.Payload, result)
	}
	return nil
}

func (e *BaseEventStream) sendOnce(ctx context.Context, channel *ChannelInfo, method string, payload []byte) (response *ResponseEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrCloseChannel
		}
	}()

	id := uuid.New()
	resultCh := make(chan *ResponseEvent, 1)
	request := &RequestEvent{
		ID:         id,
		Method:     method,
		Payload:    payload,
		CreateTime: time.Now(),
		Result:     resultCh,
	}
	e.reqLk.Lock()
	e.idRequest[id] = request
	e.reqLk.Unlock()

	select {
	case channel.OutBound <- request: //NOTICE this may panic on a closed channel, caught by the recover above
		log.Debugf("send request %s to %s", method, channel.IP)
	case <-ctx.Done():
		return nil, fmt.Errorf("send request cancel by context %w", ctx.Err())
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("cancel by context %w", ctx.Err())
	case respEvent := <-resultCh:
		return respEvent, nil
	}
}

func (e *BaseEventStream) cleanRequests(ctx context.Context) {
	tm := time.NewTicker(e.cfg.ClearInterval)
	defer tm.Stop()
	for {
		select {
		case <-tm.C:
			e.reqLk.Lock()
			for id, request := range e.idRequest {
				if time.Since(request.CreateTime) > e.cfg.RequestTimeout {
					delete(e.idRequest, id)
					//avoid blocking this channel, the response may race the sweep
					select {
					case request.Result <- &ResponseEvent{
						ID:      id,
						Payload: nil,
						Error:   fmt.Sprintf("timer clean this request due to exceed wait time, create time %s method %s", request.CreateTime, request.Method),
					}:
					default:
					}
				}
			}
			e.reqLk.Unlock()
		case <-ctx.Done():
			log.Warnf("return clean request")
			return
		}
	}
}

// ResponseEvent routes a provider response to whoever is waiting on the
// matching request id.
func (e *BaseEventStream) ResponseEvent(ctx context.Context, resp *ResponseEvent) error {
	e.reqLk.Lock()
	event, ok := e.idRequest[resp.ID]
	if ok {
		delete(e.idRequest, resp.ID)
	}
	e.reqLk.Unlock()
	if !ok {
		return fmt.Errorf("request id %s not exist", resp.ID.String())
	}
	event.Result <- resp
	return nil
}
