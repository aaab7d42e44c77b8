// Package nameservice reads a folder of key files and creates a name
// service lookup for the ledger identities they hold.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of identities for name lookup.
type NameService struct {
	identities map[database.PublicKeyIdentity]string
}

// New constructs a name service with the identities of every .ecdsa file
// found under the root folder. The file name becomes the name.
func New(root string) (*NameService, error) {
	ns := NameService{
		identities: make(map[database.PublicKeyIdentity]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		id := database.PublicKeyToIdentity(privateKey.PublicKey)
		ns.identities[id] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified identity. The identity itself
// is returned when no name is known.
func (ns *NameService) Lookup(id database.PublicKeyIdentity) string {
	name, exists := ns.identities[id]
	if !exists {
		return string(id)
	}
	return name
}

// Resolve returns the identity registered under the specified name.
func (ns *NameService) Resolve(name string) (database.PublicKeyIdentity, bool) {
	for id, n := range ns.identities {
		if n == name {
			return id, true
		}
	}
	return "", false
}

// Copy returns a copy of the map of names and identities.
func (ns *NameService) Copy() map[database.PublicKeyIdentity]string {
	cpy := make(map[database.PublicKeyIdentity]string, len(ns.identities))
	for id, name := range ns.identities {
		cpy[id] = name
	}
	return cpy
}
