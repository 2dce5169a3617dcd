// Package log provides the logging abstraction used by bcastgw components.
//
// It defines a Logger interface that can be implemented by any logging
// library. A zerolog adapter and a no-op logger are provided.
//
// Use the zerolog adapter:
//
//	logger := log.NewZerologAdapter()
//
// Or a no-op logger for tests:
//
//	logger := log.NewNoopLogger()
package log
