package database

import "errors"

// ErrNoSnapshot is returned by a Storage when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot is the durable state of a node.
type Snapshot struct {
	Chain []Block      `json:"chain"`
	Pool  []Submission `json:"pool"`
	Peers []string     `json:"peers"`
}

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading node snapshots.
type Storage interface {
	Save(snapshot Snapshot) error
	Load() (Snapshot, error)
	Close() error
}
