package database

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Submission is a signed value transfer between two participants.
type Submission struct {
	Origin    PublicKeyIdentity `json:"origin" validate:"required"` // Participant sending the value.
	Target    PublicKeyIdentity `json:"target" validate:"required"` // Participant receiving the value.
	Countdown float64           `json:"countdown"`                  // Days remaining to the genesis epoch when created.
	Amount    float64           `json:"amount" validate:"gte=0"`    // Value being transferred.
	Signature string            `json:"signature"`                  // Hex signature, empty for issuer rewards.
}

// NewSubmission constructs an unsigned submission.
func NewSubmission(origin PublicKeyIdentity, target PublicKeyIdentity, countdown float64, amount float64) Submission {
	return Submission{
		Origin:    origin,
		Target:    target,
		Countdown: countdown,
		Amount:    amount,
	}
}

// NewReward constructs the issuer reward that closes every mined block.
func NewReward(target PublicKeyIdentity, countdown float64, amount float64) Submission {
	return NewSubmission(IssuerIdentity, target, countdown, amount)
}

// Sign uses the specified private key to sign the submission. The key must
// belong to the origin of the submission.
func (s Submission) Sign(privateKey *ecdsa.PrivateKey) (Submission, error) {
	if PublicKeyToIdentity(privateKey.PublicKey) != s.Origin {
		return Submission{}, errors.New("private key does not belong to the origin")
	}

	sig, err := signature.Sign(s.canonical(), privateKey)
	if err != nil {
		return Submission{}, err
	}

	s.Signature = sig
	return s, nil
}

// Verify checks the signature against the public key held in the origin.
// Issuer rewards are accepted without a signature.
func (s Submission) Verify() error {
	if s.Origin.IsIssuer() {
		return nil
	}

	if !s.Origin.IsIdentity() {
		return fmt.Errorf("invalid origin %q", s.Origin)
	}

	return signature.Verify(s.canonical(), string(s.Origin), s.Signature)
}

// Validate checks the values of the submission are well formed and the
// signature is valid.
func (s Submission) Validate() error {
	if math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) || s.Amount < 0 {
		return fmt.Errorf("invalid amount %v", s.Amount)
	}

	if math.IsNaN(s.Countdown) || math.IsInf(s.Countdown, 0) {
		return fmt.Errorf("invalid countdown %v", s.Countdown)
	}

	if !s.Target.IsIdentity() {
		return fmt.Errorf("invalid target %q", s.Target)
	}

	return s.Verify()
}

// Equals compares all five fields of the submission.
func (s Submission) Equals(other Submission) bool {
	return s.Origin == other.Origin &&
		s.Target == other.Target &&
		s.Countdown == other.Countdown &&
		s.Amount == other.Amount &&
		s.Signature == other.Signature
}

// String implements the fmt.Stringer interface for logging.
func (s Submission) String() string {
	return fmt.Sprintf("%s->%s:%v", short(s.Origin), short(s.Target), s.Amount)
}

// canonical returns the form of the submission used for signing and hashing.
func (s Submission) canonical() canonicalSubmission {
	return canonicalSubmission{
		Origin:    s.Origin,
		Target:    s.Target,
		Countdown: s.Countdown,
		Amount:    s.Amount,
	}
}

// =============================================================================

// canonicalSubmission is the submission without its signature. The field
// order is part of the wire contract.
type canonicalSubmission struct {
	Origin    PublicKeyIdentity `json:"origin"`
	Target    PublicKeyIdentity `json:"target"`
	Countdown float64           `json:"countdown"`
	Amount    float64           `json:"amount"`
}

// canonicalize converts the submissions into their canonical form. The
// result is never nil so it encodes as an empty JSON array.
func canonicalize(subs []Submission) []canonicalSubmission {
	out := make([]canonicalSubmission, len(subs))
	for i, sub := range subs {
		out[i] = sub.canonical()
	}
	return out
}

// CanonicalBytes returns the JSON array of the canonical submissions. This
// is the data the proof of work puzzle is computed over.
func CanonicalBytes(subs []Submission) []byte {
	data, err := json.Marshal(canonicalize(subs))
	if err != nil {
		return []byte("[]")
	}
	return data
}

// short trims an identity for logging.
func short(id PublicKeyIdentity) string {
	if len(id) <= 10 {
		return string(id)
	}
	return string(id[:10])
}
