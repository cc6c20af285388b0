package feed

import (
	"context"
	"encoding/gob"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	log "github.com/sirupsen/logrus"
)

// Client is one producer connection to a Server. Requests are sent one at a
// time and are never retried.
type Client struct {
	conn    net.Conn
	dec     *gob.Decoder
	enc     *gob.Encoder
	session string
	canvas  string

	mu sync.Mutex
}

type dialConfig struct {
	attempts uint
	delay    time.Duration
	timeout  time.Duration
	log      log.FieldLogger
}

type DialOpt func(*dialConfig)

// WithAttempts sets how many times Dial tries to connect. Zero retries
// until the context is done.
func WithAttempts(n uint) DialOpt {
	return func(c *dialConfig) {
		c.attempts = n
	}
}

// WithRetryDelay is the fixed pause between connection attempts.
func WithRetryDelay(d time.Duration) DialOpt {
	return func(c *dialConfig) {
		c.delay = d
	}
}

func WithDialTimeout(d time.Duration) DialOpt {
	return func(c *dialConfig) {
		c.timeout = d
	}
}

func WithDialLogger(l log.FieldLogger) DialOpt {
	return func(c *dialConfig) {
		c.log = l
	}
}

// Dial connects to the feed server at addr, retrying with a fixed delay.
func Dial(ctx context.Context, addr string, opts ...DialOpt) (*Client, error) {
	cfg := &dialConfig{
		attempts: 4,
		delay:    1500 * time.Millisecond,
		timeout:  5 * time.Second,
		log:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var c *Client
	err := retry.Do(func() error {
		d := net.Dialer{Timeout: cfg.timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		cl := &Client{
			conn: conn,
			dec:  gob.NewDecoder(conn),
			enc:  gob.NewEncoder(conn),
		}
		if err := cl.hello(); err != nil {
			conn.Close()
			return err
		}
		c = cl
		return nil
	},
		retry.Context(ctx),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(cfg.delay),
		retry.Attempts(cfg.attempts),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			cfg.log.WithField("addr", addr).Warnf("dial attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial feed %s: %w", addr, err)
	}
	cfg.log.WithFields(log.Fields{"addr": addr, "session": c.session}).Debug("connected to feed")
	return c, nil
}

func (c *Client) hello() error {
	var msg Message
	if err := c.dec.Decode(&msg); err != nil {
		return err
	}
	h, ok := msg.Body.(Hello)
	if msg.Kind != MsgHello || !ok {
		return fmt.Errorf("expected hello, got %s", msg.Kind)
	}
	c.session, c.canvas = h.Session, h.Canvas
	return nil
}

// Session is the id the server gave this connection.
func (c *Client) Session() string {
	return c.session
}

// Canvas is the name of the remote canvas.
func (c *Client) Canvas() string {
	return c.canvas
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// call sends one request and waits for its reply.
func (c *Client) call(kind MessageKind, body any) (Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enc.Encode(Message{Kind: kind, Body: body}); err != nil {
		return Ack{}, fmt.Errorf("send %s: %w", kind, err)
	}
	var reply Message
	if err := c.dec.Decode(&reply); err != nil {
		return Ack{}, fmt.Errorf("receive %s reply: %w", kind, err)
	}
	switch body := reply.Body.(type) {
	case Ack:
		return body, nil
	case ErrorReply:
		return Ack{}, &RemoteError{Kind: body.Kind, Text: body.Text}
	default:
		return Ack{}, fmt.Errorf("%s: unexpected reply %s", kind, reply.Kind)
	}
}

func (c *Client) AddFigure(name string, rows, cols int) (*FigureHandle, error) {
	ack, err := c.call(MsgAddFigure, AddFigureRequest{Name: name, Rows: rows, Cols: cols})
	if err != nil {
		return nil, err
	}
	return &FigureHandle{client: c, name: name, id: ack.Handle}, nil
}

func (c *Client) Figure(name string) (*FigureHandle, error) {
	ack, err := c.call(MsgFigure, FigureRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return &FigureHandle{client: c, name: name, id: ack.Handle}, nil
}

func (c *Client) RemoveFigure(name string) error {
	_, err := c.call(MsgRemoveFigure, FigureRequest{Name: name})
	return err
}

func (c *Client) Figures() ([]string, error) {
	ack, err := c.call(MsgFigures, nil)
	return ack.Names, err
}

// FigureHandle is the remote counterpart of canvas.FigureHandle.
type FigureHandle struct {
	client *Client
	name   string
	id     HandleID
}

func (h *FigureHandle) Name() string {
	return h.name
}

func (h *FigureHandle) Plot(row, col int) (*PlotHandle, error) {
	ack, err := h.client.call(MsgPlot, PlotRequest{Figure: h.id, Row: row, Col: col})
	if err != nil {
		return nil, err
	}
	return &PlotHandle{client: h.client, id: ack.Handle, row: row, col: col}, nil
}

// PlotHandle is the remote counterpart of canvas.PlotHandle.
type PlotHandle struct {
	client   *Client
	id       HandleID
	row, col int
}

func (p *PlotHandle) Row() int { return p.row }
func (p *PlotHandle) Col() int { return p.col }

func (p *PlotHandle) AddLine(x, y []float64) error {
	_, err := p.client.call(MsgAddLine, LineRequest{Plot: p.id, X: x, Y: y})
	return err
}

func (p *PlotHandle) SetLine(i int, x, y []float64) error {
	_, err := p.client.call(MsgSetLine, LineRequest{Plot: p.id, Index: i, X: x, Y: y})
	return err
}

func (p *PlotHandle) Len() (int, error) {
	ack, err := p.client.call(MsgLen, LenRequest{Plot: p.id})
	return ack.N, err
}
