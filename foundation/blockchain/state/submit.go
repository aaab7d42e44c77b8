package state

import (
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SubmitWalletSubmission accepts a submission from a wallet, adds it to the
// pool and asks the worker to share it with the known peers.
func (s *State) SubmitWalletSubmission(sub database.Submission) error {
	if err := s.Submit(sub); err != nil {
		return err
	}

	s.Worker.SignalShareSubmission(sub)

	return nil
}

// SubmitNodeSubmission accepts a submission relayed by a peer. Relayed
// submissions are not shared again.
func (s *State) SubmitNodeSubmission(sub database.Submission) error {
	return s.Submit(sub)
}

// SignAndSubmit builds a submission from the node identity to the target,
// signs it with the node key and submits it like a wallet would.
func (s *State) SignAndSubmit(target database.PublicKeyIdentity, amount float64) (database.Submission, error) {
	if s.privateKey == nil {
		return database.Submission{}, ErrNoIdentity
	}

	countdown := s.genesis.CountdownAfter(s.db.LatestBlock().Index, time.Now())

	sub, err := database.NewSubmission(s.identity, target, countdown, amount).Sign(s.privateKey)
	if err != nil {
		return database.Submission{}, fmt.Errorf("%w: %s", ErrRejectedSubmission, err)
	}

	if err := s.SubmitWalletSubmission(sub); err != nil {
		return database.Submission{}, err
	}

	return sub, nil
}

// Submit validates the submission and adds it to the end of the pool. The
// origin must hold at least the amount once everything it already has
// pending is taken into account.
func (s *State) Submit(sub database.Submission) error {
	s.evHandler("state: Submit: started: sub[%s]", sub)
	defer s.evHandler("state: Submit: completed")

	// Issuer submissions are only ever created by mining, whatever the amount.
	if sub.Origin.IsIssuer() {
		return fmt.Errorf("%w: issuer submissions are created by mining", ErrRejectedSubmission)
	}

	if err := sub.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrRejectedSubmission, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.db.Balance(s.mempool.Copy(), sub.Origin)
	if balance < sub.Amount {
		return fmt.Errorf("%w: insufficient funds, balance %v, amount %v", ErrRejectedSubmission, balance, sub.Amount)
	}

	n := s.mempool.Append(sub)
	s.evHandler("state: Submit: pool[%d]", n)

	s.persist()

	return nil
}
