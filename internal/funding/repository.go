package funding

import (
	"context"
	"math/big"
	"sync"

	"github.com/google/uuid"
)

// Repository is the persistence collaborator for proposals and donations.
// Implementations must apply funding deltas atomically and flip a
// proposal's status between active and funded as its running total crosses
// the target; cancelled and completed proposals are never reflipped.
type Repository interface {
	ListProposals(ctx context.Context) ([]Proposal, error)
	GetProposal(ctx context.Context, id uuid.UUID) (Proposal, error)
	CreateProposal(ctx context.Context, proposal Proposal) (Proposal, error)

	ListDonations(ctx context.Context) ([]Donation, error)
	ListDonationsByProposal(ctx context.Context, proposalID uuid.UUID) ([]Donation, error)
	CreateDonation(ctx context.Context, donation Donation) (Donation, error)
	UpdateDonationStatus(ctx context.Context, id uuid.UUID, status DonationStatus, transactionID string) error

	// UpdateProposalFunding applies delta (positive or negative, smallest
	// units) to the proposal's running total and returns the updated row.
	UpdateProposalFunding(ctx context.Context, proposalID uuid.UUID, delta *big.Int) (Proposal, error)

	// Subscribe registers a callback invoked after any mutation, so
	// callers can refresh local caches. The returned function removes the
	// subscription.
	Subscribe(fn func()) (unsubscribe func())
}

// notifier is the in-process change fan-out shared by repository
// implementations.
type notifier struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func()
}

func (n *notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscribers == nil {
		n.subscribers = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.subscribers[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subscribers))
	for _, fn := range n.subscribers {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		go fn()
	}
}
