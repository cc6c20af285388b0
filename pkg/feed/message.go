// Package feed lets producers in other processes draw on a canvas. A Server
// exposes a canvas over TCP; a Client mirrors the local handle API with
// gob-encoded request and reply messages.
package feed

import (
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/roffe/plotcanvas/pkg/canvas"
)

type MessageKind int

const (
	MsgAck MessageKind = iota
	MsgError
	MsgHello
	MsgAddFigure
	MsgFigure
	MsgPlot
	MsgAddLine
	MsgSetLine
	MsgLen
	MsgRemoveFigure
	MsgFigures
)

func (k MessageKind) String() string {
	switch k {
	case MsgAck:
		return "Ack"
	case MsgError:
		return "Error"
	case MsgHello:
		return "Hello"
	case MsgAddFigure:
		return "AddFigure"
	case MsgFigure:
		return "Figure"
	case MsgPlot:
		return "Plot"
	case MsgAddLine:
		return "AddLine"
	case MsgSetLine:
		return "SetLine"
	case MsgLen:
		return "Len"
	case MsgRemoveFigure:
		return "RemoveFigure"
	case MsgFigures:
		return "Figures"
	default:
		return fmt.Sprintf("Unknown (%d)", k)
	}
}

type Message struct {
	Kind MessageKind
	Body any
}

func (m *Message) String() string {
	return fmt.Sprintf("#%s: %v", m.Kind, m.Body)
}

// HandleID names a handle held by the server for one connection.
type HandleID uint64

type Hello struct {
	Session string
	Canvas  string
}

type AddFigureRequest struct {
	Name       string
	Rows, Cols int
}

type FigureRequest struct {
	Name string
}

type PlotRequest struct {
	Figure   HandleID
	Row, Col int
}

type LineRequest struct {
	Plot  HandleID
	Index int
	X, Y  []float64
}

type LenRequest struct {
	Plot HandleID
}

type Ack struct {
	Handle HandleID
	N      int
	Names  []string
}

type ErrorKind int

const (
	ErrKindOther ErrorKind = iota
	ErrKindNotFound
	ErrKindHandleInvalid
	ErrKindIndexOutOfRange
	ErrKindBadRequest
)

var ErrBadRequest = errors.New("bad request")

type ErrorReply struct {
	Kind ErrorKind
	Text string
}

func errorKind(err error) ErrorKind {
	switch {
	case errors.Is(err, canvas.ErrNotFound):
		return ErrKindNotFound
	case errors.Is(err, canvas.ErrHandleInvalid):
		return ErrKindHandleInvalid
	case errors.Is(err, canvas.ErrIndexOutOfRange):
		return ErrKindIndexOutOfRange
	case errors.Is(err, ErrBadRequest):
		return ErrKindBadRequest
	default:
		return ErrKindOther
	}
}

// RemoteError is an error returned by the server. It unwraps to the matching
// canvas error so errors.Is works the same as against a local canvas.
type RemoteError struct {
	Kind ErrorKind
	Text string
}

func (e *RemoteError) Error() string {
	return e.Text
}

func (e *RemoteError) Unwrap() error {
	switch e.Kind {
	case ErrKindNotFound:
		return canvas.ErrNotFound
	case ErrKindHandleInvalid:
		return canvas.ErrHandleInvalid
	case ErrKindIndexOutOfRange:
		return canvas.ErrIndexOutOfRange
	case ErrKindBadRequest:
		return ErrBadRequest
	}
	return nil
}

func init() {
	gob.Register(Hello{})
	gob.Register(AddFigureRequest{})
	gob.Register(FigureRequest{})
	gob.Register(PlotRequest{})
	gob.Register(LineRequest{})
	gob.Register(LenRequest{})
	gob.Register(Ack{})
	gob.Register(ErrorReply{})
}
