package database

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// IssuerIdentity is the reserved origin used for system issued rewards.
// Submissions from this origin carry no signature.
const IssuerIdentity PublicKeyIdentity = "STATION"

// PublicKeyIdentity represents a participant of the ledger. The identity is
// the hex encoded compressed public key of the participant, so anyone holding
// a submission can check its signature without a registry.
type PublicKeyIdentity string

// ToIdentity converts a hex-encoded string to an identity and validates the
// hex-encoded string is formatted correctly. The issuer identity is accepted.
func ToIdentity(hex string) (PublicKeyIdentity, error) {
	id := PublicKeyIdentity(hex)
	if id.IsIssuer() {
		return id, nil
	}

	if has0xPrefix(id) {
		id = "0x" + PublicKeyIdentity(strings.ToLower(string(id[2:])))
	}

	if !id.IsIdentity() {
		return "", errors.New("invalid identity format")
	}

	return id, nil
}

// PublicKeyToIdentity converts the public key to an identity value.
func PublicKeyToIdentity(pk ecdsa.PublicKey) PublicKeyIdentity {
	return PublicKeyIdentity(signature.PublicKeyString(pk))
}

// IsIssuer reports whether the identity is the reserved reward issuer.
func (id PublicKeyIdentity) IsIssuer() bool {
	return id == IssuerIdentity
}

// IsIdentity verifies whether the underlying data represents a valid
// hex-encoded public key in compressed or uncompressed form.
func (id PublicKeyIdentity) IsIdentity() bool {
	const (
		compressedLength   = 33
		uncompressedLength = 65
	)

	if !has0xPrefix(id) {
		return false
	}
	id = id[2:]

	switch len(id) {
	case 2 * compressedLength, 2 * uncompressedLength:
		return isHex(id)
	}

	return false
}

// PublicKey decodes the public key the identity represents.
func (id PublicKeyIdentity) PublicKey() (*ecdsa.PublicKey, error) {
	if !id.IsIdentity() {
		return nil, errors.New("invalid identity format")
	}

	return signature.ParsePublicKey(string(id))
}

// Verify checks the signature was produced over the value by the owner of
// this identity. It fails closed on any decoding problem.
func (id PublicKeyIdentity) Verify(value any, sig string) bool {
	if !id.IsIdentity() {
		return false
	}

	return signature.Verify(value, string(id), sig) == nil
}

// =============================================================================

// has0xPrefix validates the identity starts with a 0x.
func has0xPrefix(id PublicKeyIdentity) bool {
	return len(id) >= 2 && id[0] == '0' && (id[1] == 'x' || id[1] == 'X')
}

// isHex validates whether each byte is a lowercase hexadecimal character.
func isHex(id PublicKeyIdentity) bool {
	if len(id)%2 != 0 {
		return false
	}

	for _, c := range []byte(id) {
		if !('0' <= c && c <= '9') && !('a' <= c && c <= 'f') {
			return false
		}
	}

	return true
}
