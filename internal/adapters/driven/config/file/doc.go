// Package file provides file-based configuration adapters: a TOML config
// store and a prompt store backed by user-editable text files.
package file
