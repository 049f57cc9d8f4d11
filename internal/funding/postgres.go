package funding

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/logger"
)

// PostgresRepository persists proposals and donations in Postgres.
// Monetary columns are NUMERIC(78,0) holding smallest-unit integers.
type PostgresRepository struct {
	notifier

	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRepository creates a repository over an existing pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool:   pool,
		logger: logger.Log,
	}
}

const proposalColumns = `id, title, description, target_amount, current_funding, currency,
	creator, creator_base_name, category, image_url, deadline, tags, status, created_at`

const donationColumns = `id, proposal_id, donor_address, donor_base_name, amount, currency,
	status, transaction_id, message, created_at`

// ListProposals returns all proposals, newest first.
func (r *PostgresRepository) ListProposals(ctx context.Context) ([]Proposal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// GetProposal returns a proposal by id.
func (r *PostgresRepository) GetProposal(ctx context.Context, id uuid.UUID) (Proposal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	p, err := scanProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, ErrNotFound
	}
	return p, err
}

// CreateProposal inserts a new proposal with zero funding.
func (r *PostgresRepository) CreateProposal(ctx context.Context, proposal Proposal) (Proposal, error) {
	if err := proposal.Validate(); err != nil {
		return Proposal{}, err
	}

	proposal.ID = uuid.New()
	proposal.Status = ProposalActive
	proposal.CurrentFunding = new(big.Int)
	proposal.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO proposals (`+proposalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		proposal.ID, proposal.Title, proposal.Description,
		bigToNumeric(proposal.TargetAmount), bigToNumeric(proposal.CurrentFunding),
		proposal.Currency, proposal.Creator.Hex(), proposal.CreatorBaseName,
		proposal.Category, proposal.ImageURL, proposal.Deadline, proposal.Tags,
		string(proposal.Status), proposal.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create proposal",
			zap.String("title", proposal.Title),
			zap.Error(err))
		return Proposal{}, fmt.Errorf("failed to create proposal: %w", err)
	}

	r.notify()
	return proposal, nil
}

// ListDonations returns all donations, newest first.
func (r *PostgresRepository) ListDonations(ctx context.Context) ([]Donation, error) {
	return r.listDonations(ctx, `SELECT `+donationColumns+` FROM donations ORDER BY created_at DESC`)
}

// ListDonationsByProposal returns a proposal's donations, newest first.
func (r *PostgresRepository) ListDonationsByProposal(ctx context.Context, proposalID uuid.UUID) ([]Donation, error) {
	return r.listDonations(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE proposal_id = $1 ORDER BY created_at DESC`,
		proposalID)
}

func (r *PostgresRepository) listDonations(ctx context.Context, query string, args ...interface{}) ([]Donation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

// CreateDonation inserts a new donation record.
func (r *PostgresRepository) CreateDonation(ctx context.Context, donation Donation) (Donation, error) {
	donation.ID = uuid.New()
	donation.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO donations (`+donationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		donation.ID, donation.ProposalID, donation.Donor.Hex(), donation.DonorBaseName,
		bigToNumeric(donation.Amount), donation.Currency, string(donation.Status),
		donation.TransactionID, donation.Message, donation.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create donation",
			zap.String("proposal_id", donation.ProposalID.String()),
			zap.Error(err))
		return Donation{}, fmt.Errorf("failed to create donation: %w", err)
	}

	r.notify()
	return donation, nil
}

// UpdateDonationStatus moves a donation to a new status, keeping any
// previously attached transaction id when none is supplied.
func (r *PostgresRepository) UpdateDonationStatus(ctx context.Context, id uuid.UUID, status DonationStatus, transactionID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE donations
		SET status = $2, transaction_id = COALESCE(NULLIF($3, ''), transaction_id)
		WHERE id = $1`,
		id, string(status), transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update donation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.notify()
	return nil
}

// UpdateProposalFunding applies a funding delta atomically and flips the
// proposal between active and funded around the target threshold.
func (r *PostgresRepository) UpdateProposalFunding(ctx context.Context, proposalID uuid.UUID, delta *big.Int) (Proposal, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE proposals
		SET current_funding = current_funding + $2,
		    status = CASE
		        WHEN status IN ('active', 'funded') AND current_funding + $2 >= target_amount THEN 'funded'
		        WHEN status IN ('active', 'funded') THEN 'active'
		        ELSE status
		    END
		WHERE id = $1
		RETURNING `+proposalColumns,
		proposalID, bigToNumeric(delta),
	)
	p, err := scanProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Proposal{}, ErrNotFound
	}
	if err != nil {
		return Proposal{}, fmt.Errorf("failed to update proposal funding: %w", err)
	}

	r.notify()
	return p, nil
}

func scanProposal(row pgx.Row) (Proposal, error) {
	var (
		p                  Proposal
		target, current    pgtype.Numeric
		creator            string
		creatorBaseName    pgtype.Text
		category, imageURL pgtype.Text
		deadline           pgtype.Timestamptz
		status             string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &target, &current, &p.Currency,
		&creator, &creatorBaseName, &category, &imageURL, &deadline, &p.Tags, &status, &p.CreatedAt)
	if err != nil {
		return Proposal{}, err
	}

	if p.TargetAmount, err = numericToBig(target); err != nil {
		return Proposal{}, err
	}
	if p.CurrentFunding, err = numericToBig(current); err != nil {
		return Proposal{}, err
	}
	p.Creator = common.HexToAddress(creator)
	p.CreatorBaseName = creatorBaseName.String
	p.Category = category.String
	p.ImageURL = imageURL.String
	if deadline.Valid {
		t := deadline.Time
		p.Deadline = &t
	}
	p.Status = ProposalStatus(status)
	return p, nil
}

func scanDonation(row pgx.Row) (Donation, error) {
	var (
		d             Donation
		amount        pgtype.Numeric
		donor         string
		donorBaseName pgtype.Text
		status        string
		txID, message pgtype.Text
	)
	err := row.Scan(&d.ID, &d.ProposalID, &donor, &donorBaseName, &amount, &d.Currency,
		&status, &txID, &message, &d.CreatedAt)
	if err != nil {
		return Donation{}, err
	}

	if d.Amount, err = numericToBig(amount); err != nil {
		return Donation{}, err
	}
	d.Donor = common.HexToAddress(donor)
	d.DonorBaseName = donorBaseName.String
	d.Status = DonationStatus(status)
	d.TransactionID = txID.String
	d.Message = message.String
	return d, nil
}

// bigToNumeric converts a smallest-unit integer to a scale-zero NUMERIC.
func bigToNumeric(v *big.Int) pgtype.Numeric {
	if v == nil {
		v = new(big.Int)
	}
	return pgtype.Numeric{Int: new(big.Int).Set(v), Valid: true}
}

// numericToBig converts a scale-zero NUMERIC back to a big integer.
func numericToBig(n pgtype.Numeric) (*big.Int, error) {
	if !n.Valid || n.Int == nil {
		return new(big.Int), nil
	}
	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		return nil, fmt.Errorf("unexpected fractional numeric value (exp %d)", n.Exp)
	}
	return v, nil
}
