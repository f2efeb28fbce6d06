// Package obs implements a minimal obs-websocket v5 client covering the
// scene, input and transform surface the reconciler needs. Events are
// not subscribed; the daemon owns its scenes and polls nothing.
package obs

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"signage/pkg/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	opHello      = 0
	opIdentify   = 1
	opIdentified = 2
	opRequest    = 6
	opResponse   = 7

	rpcVersion = 1

	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Config holds the connection parameters for an OBS WebSocket server.
type Config struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration
}

// Client is a request/response obs-websocket client. All methods are
// safe for concurrent use; requests are serialized over the single
// connection with a per-call deadline.
type Client struct {
	cfg Config

	mu   sync.Mutex
	conn *websocket.Conn
}

type envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type helloData struct {
	ObsWebSocketVersion string `json:"obsWebSocketVersion"`
	RPCVersion          int    `json:"rpcVersion"`
	Authentication      *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication"`
}

type identifyData struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

type requestData struct {
	RequestType string      `json:"requestType"`
	RequestID   string      `json:"requestId"`
	RequestData interface{} `json:"requestData,omitempty"`
}

type responseData struct {
	RequestType   string `json:"requestType"`
	RequestID     string `json:"requestId"`
	RequestStatus struct {
		Result  bool   `json:"result"`
		Code    int    `json:"code"`
		Comment string `json:"comment"`
	} `json:"requestStatus"`
	ResponseData json.RawMessage `json:"responseData"`
}

// NewClient creates a client for the given OBS WebSocket server. Connect
// must be called before issuing requests.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg}
}

// Connect dials the server and performs the Hello/Identify handshake,
// retrying with a growing delay. It replaces any existing connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err := c.connectOnce(ctx); err != nil {
			lastErr = err
			logging.Warn("OBS", "WebSocket connection attempt %d failed: %v", attempt, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(connectBackoff * time.Duration(attempt)):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("connecting to OBS after %d attempts: %w", connectAttempts, lastErr)
}

// connectOnce performs a single dial + handshake. Caller holds c.mu.
func (c *Client) connectOnce(ctx context.Context) error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := fmt.Sprintf("ws://%s:%d", c.cfg.Host, c.cfg.Port)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", url, err)
	}

	if err := c.identify(conn); err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	logging.Info("OBS", "Connected to obs-websocket at %s", url)
	return nil
}

func (c *Client) identify(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(c.cfg.Timeout))

	var hello envelope
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("reading Hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected Hello (op %d), got op %d", opHello, hello.Op)
	}

	var h helloData
	if err := json.Unmarshal(hello.D, &h); err != nil {
		return fmt.Errorf("decoding Hello: %w", err)
	}

	identify := identifyData{RPCVersion: rpcVersion}
	if h.Authentication != nil {
		if c.cfg.Password == "" {
			return fmt.Errorf("OBS requires authentication but no password is configured")
		}
		identify.Authentication = authResponse(c.cfg.Password, h.Authentication.Salt, h.Authentication.Challenge)
	}

	d, err := json.Marshal(identify)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(envelope{Op: opIdentify, D: d}); err != nil {
		return fmt.Errorf("writing Identify: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.cfg.Timeout))
	var identified envelope
	if err := conn.ReadJSON(&identified); err != nil {
		return fmt.Errorf("reading Identified: %w", err)
	}
	if identified.Op != opIdentified {
		return fmt.Errorf("identification rejected (op %d)", identified.Op)
	}
	return nil
}

// authResponse computes the obs-websocket challenge response:
// base64(sha256(base64(sha256(password + salt)) + challenge)).
func authResponse(password, salt, challenge string) string {
	secretHash := sha256.Sum256([]byte(password + salt))
	secret := base64.StdEncoding.EncodeToString(secretHash[:])
	responseHash := sha256.Sum256([]byte(secret + challenge))
	return base64.StdEncoding.EncodeToString(responseHash[:])
}

// Close shuts the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Recover drops the current connection and reconnects.
func (c *Client) Recover(ctx context.Context) error {
	logging.Info("OBS", "Attempting connection recovery")
	c.Close()
	if err := c.Connect(ctx); err != nil {
		logging.Error("OBS", err, "Recovery failed")
		return err
	}
	logging.Info("OBS", "Recovery successful")
	return nil
}

// call issues one request and decodes its response into out (which may
// be nil). Requests are serialized; responses are correlated by request
// ID so a stale response from an earlier timed-out call is skipped.
func (c *Client) call(ctx context.Context, requestType string, payload interface{}, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("obs request %s: not connected", requestType)
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	id := uuid.NewString()
	req := requestData{RequestType: requestType, RequestID: id, RequestData: payload}
	d, err := json.Marshal(req)
	if err != nil {
		return err
	}

	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(envelope{Op: opRequest, D: d}); err != nil {
		return fmt.Errorf("obs request %s: %w", requestType, err)
	}

	for {
		c.conn.SetReadDeadline(deadline)
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("obs request %s: %w", requestType, err)
		}
		if env.Op != opResponse {
			continue
		}

		var resp responseData
		if err := json.Unmarshal(env.D, &resp); err != nil {
			return fmt.Errorf("obs request %s: decoding response: %w", requestType, err)
		}
		if resp.RequestID != id {
			continue
		}

		if !resp.RequestStatus.Result {
			return fmt.Errorf("obs request %s failed: %s (code %d)", requestType, resp.RequestStatus.Comment, resp.RequestStatus.Code)
		}
		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return fmt.Errorf("obs request %s: decoding response data: %w", requestType, err)
			}
		}
		return nil
	}
}
