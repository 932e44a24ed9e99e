package wifimib

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/pior/wifimib/mib"
)

// Connection is one link to a firmware peer. Requests on a connection are
// strictly sequential: each Send waits for its confirm before returning.
//
// A Connection is not safe for concurrent use; the pool hands it to one
// caller at a time.
type Connection struct {
	net.Conn
	Reader *bufio.Reader
	Writer *bufio.Writer

	tag uint16
}

// NewConnection wraps an established net.Conn.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		Conn:   conn,
		Reader: bufio.NewReader(conn),
		Writer: bufio.NewWriter(conn),
	}
}

// Send writes req under the next tag of this connection and reads its confirm.
//
// The context bounds both the write and the read: its deadline is applied to
// the socket and its cancellation interrupts a pending exchange. A context
// that ends before anything is written returns its bare error and leaves the
// connection usable. One that ends mid-exchange is a *mib.ConnectionError
// wrapping the context error. A confirm whose signal or tag does not answer
// req is a *mib.FrameError. In both cases the caller must discard the
// connection.
func (c *Connection) Send(ctx context.Context, req *mib.Request) (*mib.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Zero deadline clears a previous one
	deadline, _ := ctx.Deadline()
	if err := c.Conn.SetDeadline(deadline); err != nil {
		return nil, &mib.ConnectionError{Op: "set deadline", Err: err}
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(interrupted)
		c.Conn.SetDeadline(interruptDeadline)
	})
	defer func() {
		// A late interruption must not land on the next exchange
		if !stop() {
			<-interrupted
		}
	}()

	c.tag++
	framed := *req
	framed.Tag = c.tag

	if err := mib.WriteRequest(c.Writer, &framed); err != nil {
		return nil, c.ioError(ctx, "write", err)
	}

	resp, err := mib.ReadResponse(c.Reader)
	if err != nil {
		return nil, c.ioError(ctx, "read", err)
	}

	if resp.Signal != req.Signal.Confirm() || resp.Tag != framed.Tag {
		return nil, &mib.FrameError{
			Message: fmt.Sprintf("%v tag %d does not answer %v tag %d", resp.Signal, resp.Tag, req.Signal, framed.Tag),
		}
	}
	return resp, nil
}

// interruptDeadline is a deadline in the past, failing pending I/O at once.
var interruptDeadline = time.Unix(1, 0)

// ioError reports a failed exchange. When ctx ended the I/O error is only the
// symptom, so the context error is wrapped instead.
func (c *Connection) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &mib.ConnectionError{Op: op, Err: ctxErr}
	}
	return wrapIOError(op, err)
}

// wrapIOError leaves frame errors as they are and marks anything else as a
// broken connection.
func wrapIOError(op string, err error) error {
	var frameErr *mib.FrameError
	if errors.As(err, &frameErr) {
		return err
	}
	return &mib.ConnectionError{Op: op, Err: err}
}

// Ping sends a NoOp request and waits for its confirm.
func (c *Connection) Ping(ctx context.Context) error {
	resp, err := c.Send(ctx, mib.NewNoOpRequest())
	if err != nil {
		return err
	}
	return resp.Err()
}

// dialConnection returns the constructor used by pools to reach addr.
func dialConnection(dialer *net.Dialer, addr string) func(ctx context.Context) (*Connection, error) {
	return func(ctx context.Context) (*Connection, error) {
		netConn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, &mib.ConnectionError{Op: "dial", Err: err}
		}
		return NewConnection(netConn), nil
	}
}

