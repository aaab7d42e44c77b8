// Package signature provides helper functions for handling the ledger
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ledgerStamp is hashed together with the data being signed so signatures
// produced by this package are always unique to the ledger.
const ledgerStamp = "\x19Ledger Signed Message:\n32"

// =============================================================================

// Hash returns the hex encoded sha256 of the JSON encoding of the value. The
// JSON encoding follows the declared field order of the value, which makes
// the hash reproducible by any node using the same types.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}

	return HashBytes(data)
}

// HashBytes returns the hex encoded sha256 of the data.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the value. The signature is
// deterministic (RFC6979) and returned hex encoded in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Check the signature against the public key before handing it out.
	publicKey := crypto.CompressPubkey(&privateKey.PublicKey)
	if !crypto.VerifySignature(publicKey, data, sig[:crypto.RecoveryIDOffset]) {
		return "", errors.New("invalid signature")
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the hex encoded signature was produced over the value by the
// owner of the hex encoded public key.
func Verify(value any, publicKey string, sig string) error {
	pk, err := hexutil.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}

	if _, err := parsePublicKey(pk); err != nil {
		return err
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}

	if len(sigBytes) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length, got %d, exp %d", len(sigBytes), crypto.SignatureLength)
	}

	// Only one string form of a signature is accepted.
	if sigBytes[crypto.RecoveryIDOffset] > 1 {
		return fmt.Errorf("invalid recovery id %d", sigBytes[crypto.RecoveryIDOffset])
	}

	if sig != hexutil.Encode(sigBytes) {
		return errors.New("signature is not in canonical hex form")
	}

	data, err := stamp(value)
	if err != nil {
		return err
	}

	if !crypto.VerifySignature(pk, data, sigBytes[:crypto.RecoveryIDOffset]) {
		return errors.New("signature does not match public key")
	}

	return nil
}

// PublicKeyString returns the hex encoded compressed form of the public key.
func PublicKeyString(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&pk))
}

// ParsePublicKey converts a hex encoded public key, compressed or not, back
// into an ecdsa public key.
func ParsePublicKey(publicKey string) (*ecdsa.PublicKey, error) {
	pk, err := hexutil.Decode(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}

	return parsePublicKey(pk)
}

// =============================================================================

// parsePublicKey accepts the 33 byte compressed or 65 byte uncompressed
// public key formats.
func parsePublicKey(pk []byte) (*ecdsa.PublicKey, error) {
	switch len(pk) {
	case 33:
		return crypto.DecompressPubkey(pk)
	case 65:
		return crypto.UnmarshalPubkey(pk)
	}

	return nil, fmt.Errorf("invalid public key length %d", len(pk))
}

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(v)

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	data := crypto.Keccak256([]byte(ledgerStamp), txHash)

	return data, nil
}
