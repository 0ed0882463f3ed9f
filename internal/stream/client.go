// Package stream provides live kline streaming from the futures exchange's
// WebSocket feed.
//
// The REST client answers "what happened"; this package answers "what is
// happening": it maintains a WebSocket connection to the exchange's combined
// stream endpoint and delivers closed klines on a channel as each interval
// completes. The connection lifecycle (dial, keepalive pings, graceful
// shutdown) lives in Client; exchange message handling lives in the
// KlineStreamer.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/karta134033/trade-utils/internal/model"
)

const (
	// defaultPingPeriod is the interval between keepalive pings.
	defaultPingPeriod = 15 * time.Second

	// defaultSendTimeout bounds WebSocket write operations.
	defaultSendTimeout = 5 * time.Second

	// defaultReadLimit caps incoming message size.
	defaultReadLimit = 1 << 20 // 1MB

	// defaultHandshakeTimeout bounds the WebSocket handshake.
	defaultHandshakeTimeout = 10 * time.Second
)

// ErrClientShuttingDown indicates the client is in the process of shutting
// down.
var ErrClientShuttingDown = errors.New("client is shutting down")

// Config defines settings for the WebSocket client.
type Config struct {
	// Endpoint is the WebSocket URL to connect to. Required.
	Endpoint string

	// Handler is called for each incoming WebSocket message. Required.
	Handler func([]byte, chan<- model.Kline) error

	// PingPeriod is the interval between keepalive pings.
	PingPeriod time.Duration

	// SendTimeout is the maximum time allowed for write operations.
	SendTimeout time.Duration
}

// Client wraps a websocket.Conn with lifecycle and message handling logic.
//
// Handled klines are delivered on KlineChan, which is closed when the
// connection is lost or the client shuts down.
type Client struct {
	KlineChan chan model.Kline

	conn       *websocket.Conn
	cfg        Config
	disconnect chan struct{}
	errChan    chan error
	ctx        context.Context
	cancel     context.CancelFunc
	once       sync.Once
	wg         sync.WaitGroup
}

// NewClient dials the endpoint and starts the read and keepalive loops.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint URL is required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("message handler is required")
	}
	if cfg.PingPeriod == 0 {
		cfg.PingPeriod = defaultPingPeriod
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	client := &Client{
		KlineChan:  make(chan model.Kline, 1000),
		cfg:        cfg,
		disconnect: make(chan struct{}),
		errChan:    make(chan error, 1),
		ctx:        ctx,
		cancel:     cancel,
	}

	if err := client.start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start stream client: %w", err)
	}

	return client, nil
}

// start dials the endpoint and launches the background goroutines. The
// connection is set before any goroutine runs, so no further synchronization
// guards it.
func (c *Client) start() error {
	logger := log.With().Str("endpoint", c.cfg.Endpoint).Logger()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: defaultHandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(c.ctx, c.cfg.Endpoint, nil)
	if err != nil {
		if resp != nil {
			logger.Error().Err(err).Int("statusCode", resp.StatusCode).Msg("stream connection failed")
		} else {
			logger.Error().Err(err).Msg("stream connection failed")
		}
		return err
	}
	logger.Info().Msg("stream connected")

	conn.SetReadLimit(defaultReadLimit)
	conn.SetPongHandler(func(string) error {
		deadline := time.Now().Add(c.cfg.PingPeriod * 2)
		if err := conn.SetReadDeadline(deadline); err != nil {
			logger.Warn().Err(err).Msg("failed to set read deadline in pong handler")
		}
		return nil
	})
	c.conn = conn

	c.wg.Add(3)
	go func() {
		defer c.wg.Done()
		c.readLoop()
	}()
	go func() {
		defer c.wg.Done()
		c.pingLoop()
	}()
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.Close()
	}()

	return nil
}

// readLoop reads messages until the connection drops or the context is
// cancelled, delegating each message to the configured handler.
func (c *Client) readLoop() {
	logger := log.With().Str("endpoint", c.cfg.Endpoint).Logger()

	defer func() {
		close(c.disconnect)
		close(c.KlineChan)
		select {
		case c.errChan <- ErrClientShuttingDown:
		default:
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info().Err(err).Msg("stream closed normally")
				} else {
					logger.Error().Err(err).Msg("stream read error")
				}
				select {
				case c.errChan <- err:
				default:
				}
				return
			}

			if err := c.cfg.Handler(data, c.KlineChan); err != nil {
				logger.Error().Err(err).Msg("error handling stream message")
			}
		}
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.SendTimeout)
			if err := c.conn.SetWriteDeadline(deadline); err != nil {
				log.Warn().Err(err).Msg("failed to set write deadline")
				continue
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Msg("stream ping error")
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Close gracefully shuts down the client. Safe to call multiple times.
func (c *Client) Close() {
	c.once.Do(func() {
		logger := log.With().Str("endpoint", c.cfg.Endpoint).Logger()
		c.cancel()

		if err := c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		); err != nil {
			logger.Warn().Err(err).Msg("failed to send close frame")
		}
		if err := c.conn.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing stream connection")
		}

		logger.Info().Msg("stream client shut down")
	})
}

// DisconnectChan returns a channel closed when the connection is lost.
func (c *Client) DisconnectChan() <-chan struct{} {
	return c.disconnect
}

// ErrChan returns a channel carrying the terminal read error, if any.
func (c *Client) ErrChan() <-chan error {
	return c.errChan
}
