// Package leveldb implements the ability to read and write node snapshots
// to a LevelDB key value store.
package leveldb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	ldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key prefixes for the records kept in the store.
const (
	prefixBlock = 'B'
	prefixPool  = 'P'
	prefixPeers = 'N'
)

// LevelDB represents the storage implementation for keeping the blocks,
// pool and peers in LevelDB. Blocks are keyed by their big endian index so
// an iterator walks them in chain order. This implements the
// database.Storage interface.
type LevelDB struct {
	mu sync.Mutex
	db *ldb.DB
}

// New opens, or creates, the store at the specified path.
func New(dbPath string) (*LevelDB, error) {
	options := opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := ldb.OpenFile(dbPath, &options)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db}, nil
}

// Close releases the store.
func (l *LevelDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.db.Close()
}

// Save writes the snapshot in a single batch. Blocks past the end of the
// chain are deleted in the same batch.
func (l *LevelDB) Save(snapshot database.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := new(ldb.Batch)

	for _, block := range snapshot.Chain {
		data, err := json.Marshal(block)
		if err != nil {
			return err
		}
		batch.Put(blockKey(block.Index), data)
	}

	iter := l.db.NewIterator(&util.Range{Start: blockKey(uint64(len(snapshot.Chain))), Limit: []byte{prefixBlock + 1}}, nil)
	for iter.Next() {
		batch.Delete(bytes.Clone(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	pool := snapshot.Pool
	if pool == nil {
		pool = []database.Submission{}
	}
	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	batch.Put([]byte{prefixPool}, data)

	peers := snapshot.Peers
	if peers == nil {
		peers = []string{}
	}
	data, err = json.Marshal(peers)
	if err != nil {
		return err
	}
	batch.Put([]byte{prefixPeers}, data)

	return l.db.Write(batch, nil)
}

// Load reads the snapshot back from the store.
func (l *LevelDB) Load() (database.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var snapshot database.Snapshot

	iter := l.db.NewIterator(util.BytesPrefix([]byte{prefixBlock}), nil)
	for iter.Next() {
		block, err := database.DecodeBlock(bytes.NewReader(iter.Value()))
		if err != nil {
			iter.Release()
			return database.Snapshot{}, fmt.Errorf("key %x: %w", iter.Key(), err)
		}
		snapshot.Chain = append(snapshot.Chain, block)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return database.Snapshot{}, err
	}

	if len(snapshot.Chain) == 0 {
		return database.Snapshot{}, database.ErrNoSnapshot
	}

	snapshot.Pool = []database.Submission{}
	data, err := l.get(prefixPool)
	if err != nil {
		return database.Snapshot{}, err
	}
	if data != nil {
		pool, err := database.DecodeSubmissions(bytes.NewReader(data))
		if err != nil {
			return database.Snapshot{}, err
		}
		snapshot.Pool = pool
	}

	snapshot.Peers = []string{}
	data, err = l.get(prefixPeers)
	if err != nil {
		return database.Snapshot{}, err
	}
	if data != nil {
		if err := json.Unmarshal(data, &snapshot.Peers); err != nil {
			return database.Snapshot{}, fmt.Errorf("decoding peers: %w", err)
		}
	}

	return snapshot, nil
}

// =============================================================================

// get returns the value for the single byte key, nil when it doesn't exist.
func (l *LevelDB) get(prefix byte) ([]byte, error) {
	data, err := l.db.Get([]byte{prefix}, nil)
	if errors.Is(err, ldb.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// blockKey forms the key for the block at the specified index.
func blockKey(index uint64) []byte {
	key := make([]byte, 9)
	key[0] = prefixBlock
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}
