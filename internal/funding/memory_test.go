package funding

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreator = common.HexToAddress("0xddd0000000000000000000000000000000000004")

func testProposal() Proposal {
	return Proposal{
		Title:        "Community garden",
		Description:  "Raised beds for the neighborhood",
		TargetAmount: big.NewInt(100_000_000), // 100 USDC
		Currency:     "USDC",
		Creator:      testCreator,
		Category:     "community",
		Tags:         []string{"garden"},
	}
}

func TestCreateAndGetProposal(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, ProposalActive, created.Status)
	assert.Equal(t, "0", created.CurrentFunding.String())
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetProposal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	_, err = repo.GetProposal(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProposalValidation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Proposal)
	}{
		{"missing title", func(p *Proposal) { p.Title = "" }},
		{"zero target", func(p *Proposal) { p.TargetAmount = big.NewInt(0) }},
		{"missing currency", func(p *Proposal) { p.Currency = "" }},
		{"missing creator", func(p *Proposal) { p.Creator = common.Address{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProposal()
			tt.mutate(&p)
			_, err := repo.CreateProposal(ctx, p)
			assert.Error(t, err)
		})
	}
}

func TestListProposalsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)
	second, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	list, err := repo.ListProposals(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestUpdateProposalFunding(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	proposal, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	updated, err := repo.UpdateProposalFunding(ctx, proposal.ID, big.NewInt(50_000_000))
	require.NoError(t, err)
	assert.Equal(t, "50000000", updated.CurrentFunding.String())
	assert.Equal(t, ProposalActive, updated.Status)

	// Crossing the target flips the proposal to funded.
	updated, err = repo.UpdateProposalFunding(ctx, proposal.ID, big.NewInt(50_000_000))
	require.NoError(t, err)
	assert.Equal(t, ProposalFunded, updated.Status)

	// Compensating back below the target flips it to active again.
	updated, err = repo.UpdateProposalFunding(ctx, proposal.ID, big.NewInt(-50_000_000))
	require.NoError(t, err)
	assert.Equal(t, "50000000", updated.CurrentFunding.String())
	assert.Equal(t, ProposalActive, updated.Status)

	_, err = repo.UpdateProposalFunding(ctx, uuid.New(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFundingNeverReflipsTerminalStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	proposal, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	repo.mu.Lock()
	p := repo.proposals[proposal.ID]
	p.Status = ProposalCancelled
	repo.proposals[proposal.ID] = p
	repo.mu.Unlock()

	updated, err := repo.UpdateProposalFunding(ctx, proposal.ID, big.NewInt(200_000_000))
	require.NoError(t, err)
	assert.Equal(t, ProposalCancelled, updated.Status)
}

func TestDonationLifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	proposal, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	donation, err := repo.CreateDonation(ctx, Donation{
		ProposalID: proposal.ID,
		Donor:      testCreator,
		Amount:     big.NewInt(10_000_000),
		Currency:   "USDC",
		Status:     DonationPending,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, donation.ID)

	require.NoError(t, repo.UpdateDonationStatus(ctx, donation.ID, DonationConfirmed, "0xcalls"))

	byProposal, err := repo.ListDonationsByProposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Len(t, byProposal, 1)
	assert.Equal(t, DonationConfirmed, byProposal[0].Status)
	assert.Equal(t, "0xcalls", byProposal[0].TransactionID)

	// An empty transaction id keeps the previously attached one.
	require.NoError(t, repo.UpdateDonationStatus(ctx, donation.ID, DonationFailed, ""))
	byProposal, err = repo.ListDonationsByProposal(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xcalls", byProposal[0].TransactionID)

	_, err = repo.CreateDonation(ctx, Donation{ProposalID: uuid.New(), Amount: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.UpdateDonationStatus(ctx, uuid.New(), DonationConfirmed, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeNotifications(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	notified := make(chan struct{}, 8)
	unsubscribe := repo.Subscribe(func() { notified <- struct{}{} })

	_, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	unsubscribe()
	_, err = repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	select {
	case <-notified:
		t.Fatal("unsubscribed callback must not fire")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	proposal, err := repo.CreateProposal(ctx, testProposal())
	require.NoError(t, err)

	proposal.CurrentFunding.SetInt64(999)
	proposal.Tags[0] = "mutated"

	got, err := repo.GetProposal(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, "0", got.CurrentFunding.String())
	assert.Equal(t, "garden", got.Tags[0])
}
