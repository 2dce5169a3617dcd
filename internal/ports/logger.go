package ports

import "github.com/bcast-labs/bcastgw/pkg/log"

// Logger is the structured logging port. It aliases the pkg/log
// interface so internal packages do not import pkg/log directly.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported for convenience.
var (
	String   = log.String
	Int      = log.Int
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
