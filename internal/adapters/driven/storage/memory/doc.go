// Package memory provides in-memory implementations of driven port
// interfaces, used in tests and as lightweight defaults.
package memory
