// Package disk implements the ability to read and write node snapshots to
// disk with every block in its own file.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

const (
	poolFile  = "pool.json"
	peersFile = "peers.json"
)

// Disk represents the storage implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// database.Storage interface.
type Disk struct {
	mu      sync.Mutex
	dbPath  string
	written map[uint64]string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	d := Disk{
		dbPath:  dbPath,
		written: make(map[uint64]string),
	}

	return &d, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Save writes the blocks that changed since the last save, removes block
// files past the end of the chain and rewrites the pool and peers files.
func (d *Disk) Save(snapshot database.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, block := range snapshot.Chain {
		fingerprint := block.Fingerprint()
		if d.written[block.Index] == fingerprint {
			continue
		}

		if err := d.writeJSON(d.getPath(block.Index), block); err != nil {
			return err
		}
		d.written[block.Index] = fingerprint
	}

	// Remove blocks left over from a longer chain.
	for index := uint64(len(snapshot.Chain)); ; index++ {
		err := os.Remove(d.getPath(index))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return err
		}
		delete(d.written, index)
	}

	pool := snapshot.Pool
	if pool == nil {
		pool = []database.Submission{}
	}
	if err := d.writeJSON(path.Join(d.dbPath, poolFile), pool); err != nil {
		return err
	}

	peers := snapshot.Peers
	if peers == nil {
		peers = []string{}
	}
	if err := d.writeJSON(path.Join(d.dbPath, peersFile), peers); err != nil {
		return err
	}

	return nil
}

// Load reads the chain, pool and peers back from disk.
func (d *Disk) Load() (database.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var snapshot database.Snapshot

	iter := d.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return database.Snapshot{}, err
		}

		snapshot.Chain = append(snapshot.Chain, block)
		d.written[block.Index] = block.Fingerprint()
	}

	if len(snapshot.Chain) == 0 {
		return database.Snapshot{}, database.ErrNoSnapshot
	}

	pool, err := d.readPool()
	if err != nil {
		return database.Snapshot{}, err
	}
	snapshot.Pool = pool

	peers, err := d.readPeers()
	if err != nil {
		return database.Snapshot{}, err
	}
	snapshot.Peers = peers

	return snapshot, nil
}

// GetBlock searches the chain on disk to locate and return the
// contents of the specified block by index.
func (d *Disk) GetBlock(index uint64) (database.Block, error) {

	// Open the block file for the specified index.
	f, err := os.Open(d.getPath(index))
	if err != nil {
		return database.Block{}, err
	}
	defer f.Close()

	return database.DecodeBlock(f)
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (d *Disk) ForEach() *Iterator {
	return &Iterator{disk: d}
}

// =============================================================================

// getPath forms the path to the specified block.
func (d *Disk) getPath(index uint64) string {
	name := strconv.FormatUint(index, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// writeJSON marshals the value in a human readable format and replaces the
// file with it.
func (d *Disk) writeJSON(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, name)
}

func (d *Disk) readPool() ([]database.Submission, error) {
	f, err := os.Open(path.Join(d.dbPath, poolFile))
	if errors.Is(err, fs.ErrNotExist) {
		return []database.Submission{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return database.DecodeSubmissions(f)
}

func (d *Disk) readPeers() ([]string, error) {
	data, err := os.ReadFile(path.Join(d.dbPath, peersFile))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var peers []string
	if err := json.Unmarshal(data, &peers); err != nil {
		return nil, fmt.Errorf("decoding peers: %w", err)
	}

	return peers, nil
}

// =============================================================================

// Iterator represents the iteration implementation for walking
// through and reading blocks on disk.
type Iterator struct {
	disk    *Disk  // Access to the disk storage API.
	current uint64 // Current block index being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (it *Iterator) Next() (database.Block, error) {
	if it.eoc {
		return database.Block{}, errors.New("end of chain")
	}

	block, err := it.disk.GetBlock(it.current)
	if errors.Is(err, fs.ErrNotExist) {
		it.eoc = true
	}
	it.current++

	return block, err
}

// Done returns the end of chain value.
func (it *Iterator) Done() bool {
	return it.eoc
}
