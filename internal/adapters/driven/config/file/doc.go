// Package file provides TOML-backed configuration: a typed config
// loaded from ~/.hearth/config.toml plus a filesystem watcher that
// reapplies retrieval tunables when the file changes.
package file
