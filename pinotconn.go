// Package pinotconn is a cursor-style client for the SQL endpoint of an
// Apache Pinot broker.
package pinotconn

import (
	"github.com/Konsultn-Engineering/pinotconn/connector"
	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/query"
	"github.com/Konsultn-Engineering/pinotconn/resultset"
	"github.com/Konsultn-Engineering/pinotconn/rows"
)

type (
	Config          = connector.Config
	ClientOptions   = connector.ClientOptions
	RequestOptions  = connector.RequestOptions
	Connection      = connector.Connection
	AsyncConnection = connector.AsyncConnection
	QueryStatistics = connector.QueryStatistics
	QueryOptions    = query.Options
	Tuple           = rows.Tuple
	ScrollMode      = resultset.ScrollMode
	Error           = dberr.Error
)

const (
	Relative = resultset.Relative
	Absolute = resultset.Absolute
)

// Error kinds, for use with errors.Is.
const (
	ErrBase         = dberr.Base
	ErrInterface    = dberr.Interface
	ErrDatabase     = dberr.Database
	ErrData         = dberr.Data
	ErrOperational  = dberr.Operational
	ErrInternal     = dberr.Internal
	ErrProgramming  = dberr.Programming
	ErrNotSupported = dberr.NotSupported
	ErrValue        = dberr.Value
	ErrIndex        = dberr.Index
)

func Connect(cfg Config, opts ...connector.Option) (*Connection, error) {
	return connector.Connect(cfg, opts...)
}

func ConnectAsync(cfg Config, opts ...connector.Option) *connector.Future[*AsyncConnection] {
	return connector.ConnectAsync(cfg, opts...)
}

// Cursor creates a cursor on conn that builds rows with factory.
func Cursor[T any](conn *Connection, factory rows.RowFactory[T], opts ...connector.CursorOption) (*connector.Cursor[T], error) {
	return connector.NewCursor(conn, factory, opts...)
}
