package funding

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory repository used in development and
// tests. State resets on restart.
type MemoryRepository struct {
	notifier

	mu        sync.RWMutex
	proposals map[uuid.UUID]Proposal
	donations map[uuid.UUID]Donation
	now       func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		proposals: make(map[uuid.UUID]Proposal),
		donations: make(map[uuid.UUID]Donation),
		now:       time.Now,
	}
}

// ListProposals returns all proposals, newest first.
func (r *MemoryRepository) ListProposals(ctx context.Context) ([]Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Proposal, 0, len(r.proposals))
	for _, p := range r.proposals {
		out = append(out, copyProposal(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetProposal returns a proposal by id.
func (r *MemoryRepository) GetProposal(ctx context.Context, id uuid.UUID) (Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.proposals[id]
	if !ok {
		return Proposal{}, ErrNotFound
	}
	return copyProposal(p), nil
}

// CreateProposal stores a new proposal with a fresh id and zero funding.
func (r *MemoryRepository) CreateProposal(ctx context.Context, proposal Proposal) (Proposal, error) {
	if err := proposal.Validate(); err != nil {
		return Proposal{}, err
	}

	r.mu.Lock()
	proposal.ID = uuid.New()
	proposal.Status = ProposalActive
	proposal.CurrentFunding = new(big.Int)
	proposal.CreatedAt = r.now()
	r.proposals[proposal.ID] = copyProposal(proposal)
	r.mu.Unlock()

	r.notify()
	return proposal, nil
}

// ListDonations returns all donations, newest first.
func (r *MemoryRepository) ListDonations(ctx context.Context) ([]Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Donation, 0, len(r.donations))
	for _, d := range r.donations {
		out = append(out, copyDonation(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListDonationsByProposal returns a proposal's donations, newest first.
func (r *MemoryRepository) ListDonationsByProposal(ctx context.Context, proposalID uuid.UUID) ([]Donation, error) {
	all, err := r.ListDonations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Donation, 0, len(all))
	for _, d := range all {
		if d.ProposalID == proposalID {
			out = append(out, d)
		}
	}
	return out, nil
}

// CreateDonation stores a new donation record.
func (r *MemoryRepository) CreateDonation(ctx context.Context, donation Donation) (Donation, error) {
	r.mu.Lock()
	if _, ok := r.proposals[donation.ProposalID]; !ok {
		r.mu.Unlock()
		return Donation{}, ErrNotFound
	}
	donation.ID = uuid.New()
	donation.CreatedAt = r.now()
	r.donations[donation.ID] = copyDonation(donation)
	r.mu.Unlock()

	r.notify()
	return donation, nil
}

// UpdateDonationStatus moves a donation to a new status and attaches the
// transaction correlation id, if any.
func (r *MemoryRepository) UpdateDonationStatus(ctx context.Context, id uuid.UUID, status DonationStatus, transactionID string) error {
	r.mu.Lock()
	d, ok := r.donations[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	d.Status = status
	if transactionID != "" {
		d.TransactionID = transactionID
	}
	r.donations[id] = d
	r.mu.Unlock()

	r.notify()
	return nil
}

// UpdateProposalFunding applies a funding delta and flips the proposal
// between active and funded around the target threshold.
func (r *MemoryRepository) UpdateProposalFunding(ctx context.Context, proposalID uuid.UUID, delta *big.Int) (Proposal, error) {
	r.mu.Lock()
	p, ok := r.proposals[proposalID]
	if !ok {
		r.mu.Unlock()
		return Proposal{}, ErrNotFound
	}
	p.CurrentFunding = new(big.Int).Add(p.CurrentFunding, delta)
	if p.Status == ProposalActive || p.Status == ProposalFunded {
		if p.CurrentFunding.Cmp(p.TargetAmount) >= 0 {
			p.Status = ProposalFunded
		} else {
			p.Status = ProposalActive
		}
	}
	r.proposals[proposalID] = p
	updated := copyProposal(p)
	r.mu.Unlock()

	r.notify()
	return updated, nil
}

func copyProposal(p Proposal) Proposal {
	if p.TargetAmount != nil {
		p.TargetAmount = new(big.Int).Set(p.TargetAmount)
	}
	if p.CurrentFunding != nil {
		p.CurrentFunding = new(big.Int).Set(p.CurrentFunding)
	}
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

func copyDonation(d Donation) Donation {
	if d.Amount != nil {
		d.Amount = new(big.Int).Set(d.Amount)
	}
	return d
}
