package feed

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/roffe/plotcanvas/pkg/canvas"
)

// Default bound on the shape of figures added over the feed.
const (
	DefaultMaxRows = 64
	DefaultMaxCols = 64
)

type Server struct {
	canvas           *canvas.Canvas
	log              log.FieldLogger
	maxRows, maxCols int

	sessionMu sync.Mutex
	sessions  map[string]net.Conn
}

type ServerOpt func(*Server)

func WithServerLogger(l log.FieldLogger) ServerOpt {
	return func(s *Server) {
		s.log = l
	}
}

// WithMaxShape bounds the rows and columns of figures producers may add.
// Larger requests fail with ErrBadRequest.
func WithMaxShape(rows, cols int) ServerOpt {
	return func(s *Server) {
		s.maxRows, s.maxCols = max(rows, 1), max(cols, 1)
	}
}

func NewServer(c *canvas.Canvas, opts ...ServerOpt) *Server {
	s := &Server{
		canvas:   c,
		log:      log.StandardLogger(),
		maxRows:  DefaultMaxRows,
		maxCols:  DefaultMaxCols,
		sessions: make(map[string]net.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the number of connected producers.
func (s *Server) Sessions() int {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return len(s.sessions)
}

// Serve accepts producers on ln until ctx is cancelled or ln fails. It
// closes ln and every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.WithField("addr", ln.Addr().String()).Info("feed listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) addSession(id string, conn net.Conn) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessions[id] = conn
}

func (s *Server) removeSession(id string) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	delete(s.sessions, id)
}

// session holds the handles one producer has been given.
type session struct {
	id      string
	next    HandleID
	figures map[HandleID]*canvas.FigureHandle
	plots   map[HandleID]*canvas.PlotHandle
}

func (ss *session) addFigure(fh *canvas.FigureHandle) HandleID {
	ss.next++
	ss.figures[ss.next] = fh
	return ss.next
}

func (ss *session) addPlot(ph *canvas.PlotHandle) HandleID {
	ss.next++
	ss.plots[ss.next] = ph
	return ss.next
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	ss := &session{
		id:      uuid.NewString(),
		figures: make(map[HandleID]*canvas.FigureHandle),
		plots:   make(map[HandleID]*canvas.PlotHandle),
	}
	l := s.log.WithFields(log.Fields{"session": ss.id, "remote": conn.RemoteAddr().String()})
	l.Info("producer connected")
	s.addSession(ss.id, conn)
	defer s.removeSession(ss.id)

	replies := make(chan Message, 10)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return conn.Close()
	})
	g.Go(func() error {
		enc := gob.NewEncoder(conn)
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg := <-replies:
				if err := enc.Encode(msg); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		defer conn.Close()
		replies <- Message{Kind: MsgHello, Body: Hello{Session: ss.id, Canvas: s.canvas.Name()}}
		dec := gob.NewDecoder(conn)
		for {
			var msg Message
			if err := dec.Decode(&msg); err != nil {
				return err
			}
			reply := s.dispatch(ss, &msg)
			if reply.Kind == MsgError {
				l.WithField("request", msg.Kind.String()).Debug(reply.Body.(ErrorReply).Text)
			}
			select {
			case replies <- reply:
			case <-gctx.Done():
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		l.WithError(err).Debug("connection ended")
	}
	l.Info("producer disconnected")
}

func (s *Server) dispatch(ss *session, msg *Message) Message {
	ack, err := s.apply(ss, msg)
	if err != nil {
		return Message{Kind: MsgError, Body: ErrorReply{Kind: errorKind(err), Text: err.Error()}}
	}
	return Message{Kind: MsgAck, Body: ack}
}

func (s *Server) apply(ss *session, msg *Message) (Ack, error) {
	switch msg.Kind {
	case MsgAddFigure:
		req, ok := msg.Body.(AddFigureRequest)
		if !ok {
			return Ack{}, badBody(msg)
		}
		if req.Rows > s.maxRows || req.Cols > s.maxCols {
			return Ack{}, fmt.Errorf("figure %q: shape %dx%d exceeds %dx%d: %w",
				req.Name, req.Rows, req.Cols, s.maxRows, s.maxCols, ErrBadRequest)
		}
		fh, err := s.canvas.AddFigure(req.Name, req.Rows, req.Cols)
		if err != nil {
			return Ack{}, err
		}
		return Ack{Handle: ss.addFigure(fh)}, nil
	case MsgFigure:
		req, ok := msg.Body.(FigureRequest)
		if !ok {
			return Ack{}, badBody(msg)
		}
		fh, err := s.canvas.Figure(req.Name)
		if err != nil {
			return Ack{}, err
		}
		return Ack{Handle: ss.addFigure(fh)}, nil
	case MsgPlot:
		req, ok := msg.Body.(PlotRequest)
		if !ok {
			return Ack{}, badBody(msg)
		}
		fh, ok := ss.figures[req.Figure]
		if !ok {
			return Ack{}, fmt.Errorf("unknown figure handle %d: %w", req.Figure, ErrBadRequest)
		}
		ph, err := fh.Plot(req.Row, req.Col)
		if err != nil {
			return Ack{}, err
		}
		return Ack{Handle: ss.addPlot(ph)}, nil
	case MsgAddLine, MsgSetLine:
		req, ok := msg.Body.(LineRequest)
		if !ok {
			return Ack{}, badBody(msg)
		}
		ph, ok := ss.plots[req.Plot]
		if !ok {
			return Ack{}, fmt.Errorf("unknown plot handle %d: %w", req.Plot, ErrBadRequest)
		}
		if msg.Kind == MsgAddLine {
			return Ack{}, ph.AddLine(req.X, req.Y)
		}
		return Ack{}, ph.SetLine(req.Index, req.X, req.Y)
	case MsgLen:
		req, ok := msg.Body.(LenRequest)
		if !ok {
			return Ack{}, badBody(msg)
		}
		ph, ok := ss.plots[req.Plot]
		if !ok {
			return Ack{}, fmt.Errorf("unknown plot handle %d: %w", req.Plot, ErrBadRequest)
		}
		n, err := ph.Len()
		return Ack{N: n}, err
	case MsgRemoveFigure:
		req, ok := msg.Body.(FigureRequest)
		if !ok {
			return Ack{}, badBody(msg)
		}
		return Ack{}, s.canvas.RemoveFigure(req.Name)
	case MsgFigures:
		names, err := s.canvas.Figures()
		return Ack{Names: names}, err
	default:
		return Ack{}, fmt.Errorf("unexpected %s: %w", msg.Kind, ErrBadRequest)
	}
}

func badBody(msg *Message) error {
	return fmt.Errorf("%s: unexpected body %T: %w", msg.Kind, msg.Body, ErrBadRequest)
}
