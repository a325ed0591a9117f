package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/slipstream/helm/internal/activity"
)

const (
	readWait       = 90 * time.Second
	reconnectDelay = 5 * time.Second
)

// envelope mirrors the server's WebSocket message framing.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Subscriber maintains a WebSocket connection to the media server and
// forwards queue snapshot pushes. The transport is not the console's concern
// beyond "a new snapshot arrived": each decoded snapshot is handed to the
// callback synchronously, in arrival order.
type Subscriber struct {
	client  *Client
	logger  zerolog.Logger
	onQueue func(items []activity.QueueItem)
}

// NewSubscriber creates a subscriber that invokes onQueue for every
// queue:state push from the server.
func NewSubscriber(client *Client, logger zerolog.Logger, onQueue func(items []activity.QueueItem)) *Subscriber {
	return &Subscriber{
		client:  client,
		logger:  logger.With().Str("component", "upstream-subscriber").Logger(),
		onQueue: onQueue,
	}
}

// Run connects and consumes messages until the context is cancelled,
// reconnecting with a fixed delay on any failure.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("upstream websocket disconnected, will reconnect")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Subscriber) consume(ctx context.Context) error {
	wsURL, err := s.client.WebSocketURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	if s.client.apiKey != "" {
		header.Set("X-Api-Key", s.client.apiKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.logger.Info().Str("url", wsURL).Msg("connected to upstream websocket")

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(10*time.Second))
	})

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		s.handleMessage(data)
	}
}

func (s *Subscriber) handleMessage(data []byte) {
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debug().Err(err).Msg("ignoring malformed upstream message")
		return
	}

	switch msg.Type {
	case "queue:state":
		var items []activity.QueueItem
		if err := json.Unmarshal(msg.Payload, &items); err != nil {
			s.logger.Warn().Err(err).Msg("failed to decode queue snapshot")
			return
		}
		if s.onQueue != nil {
			s.onQueue(items)
		}
	}
}
