package database

import (
	"context"
	"errors"
)

// ErrLeaseReleased is returned by Lease.Conn after Release.
var ErrLeaseReleased = errors.New("database lease already released")

// Lease is a request-scoped handle on a connection. The connection is opened
// on the first call to Conn and reused for the rest of the request.
// A Lease belongs to one request and is not safe for concurrent use.
type Lease struct {
	connector *Connector
	conn      *Conn
	released  bool
}

// Lease starts a new request-scoped lease. Nothing is opened until Conn is called.
func (c *Connector) Lease() *Lease {
	return &Lease{connector: c}
}

// Conn returns the lease's connection, opening it on first use
func (l *Lease) Conn(ctx context.Context) (*Conn, error) {
	if l.released {
		return nil, ErrLeaseReleased
	}
	if l.conn != nil {
		return l.conn, nil
	}

	conn, err := l.connector.Open(ctx)
	if err != nil {
		return nil, err
	}
	l.conn = conn
	return conn, nil
}

// Acquired reports whether a connection has been opened
func (l *Lease) Acquired() bool {
	return l.conn != nil
}

// Release closes the connection if one was opened. Only the first call has any effect.
func (l *Lease) Release() error {
	if l.released {
		return nil
	}
	l.released = true

	if l.conn == nil {
		return nil
	}
	conn := l.conn
	l.conn = nil
	return conn.Close()
}
