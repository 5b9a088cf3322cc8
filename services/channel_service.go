package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaspertech/crowdguard-console/config"
)

// Envelope is the framing used on the monitoring socket: a named event
// plus its raw payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type EventHandler func(data json.RawMessage)

// ChannelService holds the one long-lived connection to the monitoring
// server for the whole session. Components subscribe to named events and
// emit named commands; nobody but session teardown may close it.
type ChannelService struct {
	cfg config.SocketConfig

	mu       sync.RWMutex
	handlers map[string]map[uint64]EventHandler
	nextID   uint64

	send chan Envelope
	done chan struct{}
	once sync.Once
}

// Subscription is the only removal path for a registered handler.
type Subscription struct {
	channel *ChannelService
	event   string
	id      uint64
}

// Cancel unregisters the handler. Once Cancel returns the handler is never
// invoked again.
func (s *Subscription) Cancel() {
	if s == nil || s.channel == nil {
		return
	}
	s.channel.mu.Lock()
	defer s.channel.mu.Unlock()
	if handlers, ok := s.channel.handlers[s.event]; ok {
		delete(handlers, s.id)
		if len(handlers) == 0 {
			delete(s.channel.handlers, s.event)
		}
	}
	s.channel = nil
}

func NewChannelService(cfg config.SocketConfig) *ChannelService {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelService{
		cfg:      cfg,
		handlers: make(map[string]map[uint64]EventHandler),
		send:     make(chan Envelope, buffer),
		done:     make(chan struct{}),
	}
}

// Subscribe registers a handler for a named inbound event. Handlers run on
// the read loop goroutine, so ingestion stays single-threaded.
func (s *ChannelService) Subscribe(event string, handler EventHandler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[event] == nil {
		s.handlers[event] = make(map[uint64]EventHandler)
	}
	s.nextID++
	s.handlers[event][s.nextID] = handler
	return &Subscription{channel: s, event: event, id: s.nextID}
}

// Emit queues an outbound command frame. Delivery is at-most-once: frames
// queued while the connection is down are dropped when the buffer fills.
func (s *ChannelService) Emit(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Channel] Failed to marshal %q payload: %v", event, err)
		return
	}
	select {
	case s.send <- Envelope{Event: event, Data: data}:
	default:
		log.Printf("[Channel] Send buffer full, dropping %q", event)
	}
}

// JoinEntrance subscribes the session to an entrance's alert scope.
func (s *ChannelService) JoinEntrance(entranceID string) {
	if entranceID == "" {
		return
	}
	s.Emit("join-entrance", entranceID)
}

// Connect dials the monitoring socket and starts the read loop. With
// reconnect enabled a failed dial is retried in the background and Connect
// still returns nil; dependent components simply receive no events until
// the connection comes up.
func (s *ChannelService) Connect(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		if !s.cfg.Reconnect {
			return err
		}
		log.Printf("[Channel] Connect failed: %v (will retry)", err)
		go s.run(ctx, nil)
		return nil
	}
	log.Printf("[Channel] Connected to %s", s.cfg.URL)
	go s.run(ctx, conn)
	return nil
}

// Close tears the channel down on session teardown.
func (s *ChannelService) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *ChannelService) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	return conn, err
}

func (s *ChannelService) run(ctx context.Context, conn *websocket.Conn) {
	delay := time.Duration(s.cfg.ReconnectDelaySec) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	for {
		if conn == nil {
			var err error
			conn, err = s.dial(ctx)
			if err != nil {
				log.Printf("[Channel] Reconnect failed: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-s.done:
					return
				case <-time.After(delay):
					continue
				}
			}
			log.Printf("[Channel] Connected to %s", s.cfg.URL)
		}
		s.serve(ctx, conn)
		conn = nil
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}
		if !s.cfg.Reconnect {
			return
		}
	}
}

// serve pumps outbound envelopes and reads inbound frames until the
// connection drops. A drop is degradation, not an error state: the
// pipeline stalls until reconnect.
func (s *ChannelService) serve(ctx context.Context, conn *websocket.Conn) {
	stop := make(chan struct{})
	go func() {
		defer conn.Close()
		for {
			select {
			case env := <-s.send:
				if err := conn.WriteJSON(env); err != nil {
					log.Printf("[Channel] Write failed: %v", err)
					return
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()
	defer close(stop)

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Printf("[Channel] Connection lost: %v", err)
			return
		}
		s.dispatch(env.Event, env.Data)
	}
}

func (s *ChannelService) dispatch(event string, data json.RawMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, handler := range s.handlers[event] {
		handler(data)
	}
}

// DecodePayload unmarshals a socket payload into v. Some sources deliver
// payloads double-encoded as a JSON string containing JSON; both forms
// decode to the same value.
func DecodePayload(raw json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err == nil {
			if err := json.Unmarshal([]byte(inner), v); err == nil {
				return nil
			}
		}
	}
	return json.Unmarshal(trimmed, v)
}
