// Package ws is the gorilla/websocket implementation of the signaling
// channel.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

// Dialer opens signaling channels against the relay.
type Dialer struct {
	// ReadLimit caps incoming frame size; 0 means no limit.
	ReadLimit int64
	// PingPeriod keeps NATs and proxies from dropping idle channels.
	PingPeriod time.Duration

	dialer *websocket.Dialer
}

func NewDialer(readLimit int64, pingPeriod time.Duration) *Dialer {
	return &Dialer{
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		dialer:     websocket.DefaultDialer,
	}
}

// SignalURL builds the relay endpoint from the http(s) base URL. The
// scheme is the secure variant iff the base is https.
func SignalURL(p core.DialParams) (string, error) {
	base, err := url.Parse(p.Server)
	if err != nil {
		return "", fmt.Errorf("bad server url: %w", err)
	}
	switch base.Scheme {
	case "https", "wss":
		base.Scheme = "wss"
	default:
		base.Scheme = "ws"
	}
	base.Path = "/websocket"
	q := url.Values{}
	q.Set("room", p.Room)
	q.Set("username", p.Identity)
	q.Set("password", p.Password)
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (d *Dialer) Dial(ctx context.Context, p core.DialParams, h core.SignalHandler) (core.SignalConnection, error) {
	u, err := SignalURL(p)
	if err != nil {
		return nil, err
	}
	conn, _, err := d.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial signaling channel: %w", err)
	}
	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}
	c := &wsConn{
		conn: conn,
		send: make(chan core.Frame, 32),
	}
	log.Info().Str("module", "ws").Str("room", p.Room).Str("user", p.Identity).Msg("signaling channel open")
	go c.writePump(d.PingPeriod)
	go c.readPump(h)
	return c, nil
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (c *wsConn) writePump(pingPeriod time.Duration) {
	var ping *time.Ticker
	if pingPeriod > 0 {
		ping = time.NewTicker(pingPeriod)
		defer ping.Stop()
	} else {
		ping = time.NewTicker(time.Hour)
		ping.Stop()
	}
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "ws").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump ping error")
				return
			}
		}
	}
}

func (c *wsConn) readPump(h core.SignalHandler) {
	defer func() {
		c.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			// A locally initiated Close or a normal close frame is not
			// a transport error.
			if c.IsOpen() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().Err(err).Str("module", "ws").Msg("readPump read error")
				h.HandleError(err)
			}
			c.Close()
			h.HandleClose(err)
			return
		}
		h.HandleFrame(data)
	}
}
