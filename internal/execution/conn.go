package execution

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slok/replup/internal/model"
)

const (
	// DefaultStreamURL is the evaluation stream endpoint.
	DefaultStreamURL = "wss://eval.repl.it/ws"
	// DefaultConnectTimeout is the time limit to establish the stream.
	DefaultConnectTimeout = 5 * time.Second

	closeGracePeriod = time.Second
)

// Conn is a message oriented evaluation stream.
type Conn interface {
	ReadMessage() (model.Message, error)
	WriteMessage(msg model.Message) error
	Close() error
}

// Dialer opens evaluation streams.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// WebsocketDialerConfig is the configuration of the websocket dialer.
type WebsocketDialerConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	// Jar is optional, when set the session cookies are sent on the handshake.
	Jar http.CookieJar
}

func (c *WebsocketDialerConfig) defaults() error {
	if c.URL == "" {
		c.URL = DefaultStreamURL
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultConnectTimeout
	}
	return nil
}

type websocketDialer struct {
	url    string
	dialer *websocket.Dialer
}

// NewWebsocketDialer returns a dialer of websocket evaluation streams.
func NewWebsocketDialer(cfg WebsocketDialerConfig) (Dialer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return websocketDialer{
		url: cfg.URL,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			Jar:              cfg.Jar,
		},
	}, nil
}

func (w websocketDialer) Dial(ctx context.Context) (Conn, error) {
	c, resp, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s (HTTP %d): %w", w.url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing %s: %w", w.url, err)
	}
	return &websocketConn{conn: c}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

// ReadMessage returns io.EOF when the server closed the stream cleanly.
func (w *websocketConn) ReadMessage() (model.Message, error) {
	_, frame, err := w.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return model.Message{}, io.EOF
		}
		return model.Message{}, err
	}
	return DecodeMessage(frame)
}

func (w *websocketConn) WriteMessage(msg model.Message) error {
	frame, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, frame)
}

// Close sends a normal closure frame and closes the underlying connection.
func (w *websocketConn) Close() error {
	deadline := time.Now().Add(closeGracePeriod)
	_ = w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return w.conn.Close()
}
