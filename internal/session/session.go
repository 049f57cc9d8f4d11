// Package session manages the connected wallet session: the account
// addresses, their resolved base names, and the permission set known to
// this session. State is persisted in an injected key-value store under a
// fixed namespace key and cleared entirely on disconnect.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/names"
	"github.com/quickfund/quickfund-api/internal/spend"
	"github.com/quickfund/quickfund-api/internal/wallet"
)

// StateKey is the namespace key session state is persisted under.
const StateKey = "quickfund.wallet.session"

// resolveTimeout bounds base-name resolution during connect so identity
// lookups never hold up the session.
const resolveTimeout = 5 * time.Second

// ErrNoValue is returned by a Store when a key has no value.
var ErrNoValue = errors.New("no value for key")

// ErrNotConnected is returned for operations that need a connected session.
var ErrNotConnected = errors.New("wallet not connected")

// Store is the injected key-value persistence collaborator.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// State is the persisted shape of a wallet session.
type State struct {
	Connected          bool           `json:"connected"`
	UniversalAddress   common.Address `json:"universalAddress"`
	SubAccountAddress  common.Address `json:"subAccountAddress"`
	UniversalBaseName  string         `json:"universalBaseName,omitempty"`
	SubAccountBaseName string         `json:"subAccountBaseName,omitempty"`
}

// Manager owns the session lifecycle: init on connect, restore on load,
// teardown on disconnect.
type Manager struct {
	provider    wallet.Provider
	resolver    *names.Client
	permissions *spend.Client
	store       Store
	logger      *zap.Logger

	mu    sync.RWMutex
	state State
}

// NewManager wires the session manager to its collaborators.
func NewManager(provider wallet.Provider, resolver *names.Client, permissions *spend.Client, store Store) *Manager {
	return &Manager{
		provider:    provider,
		resolver:    resolver,
		permissions: permissions,
		store:       store,
		logger:      logger.Log,
	}
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Connect prompts the wallet for its accounts, resolves their base names
// within a bounded interval, repopulates the session's permission set, and
// persists the resulting state.
func (m *Manager) Connect(ctx context.Context) (State, error) {
	accounts, err := wallet.RequestAccounts(ctx, m.provider)
	if err != nil {
		return State{}, fmt.Errorf("wallet connection failed: %w", err)
	}
	if len(accounts) == 0 {
		return State{}, fmt.Errorf("no accounts returned from wallet")
	}

	state := State{
		Connected:        true,
		UniversalAddress: accounts[0],
	}
	if len(accounts) > 1 {
		state.SubAccountAddress = accounts[1]
	}
	state.UniversalBaseName = m.resolveName(ctx, state.UniversalAddress)
	if state.SubAccountAddress != (common.Address{}) {
		state.SubAccountBaseName = m.resolveName(ctx, state.SubAccountAddress)
	}

	m.setState(state)
	if err := m.persist(ctx, state); err != nil {
		m.logger.Warn("Failed to persist session state", zap.Error(err))
	}

	m.refreshPermissions(ctx, state)

	m.logger.Info("Wallet session connected",
		zap.String("universal", state.UniversalAddress.Hex()),
		zap.String("sub_account", state.SubAccountAddress.Hex()))

	return state, nil
}

// Restore loads persisted session state without prompting the wallet and
// refreshes the permission set when a connected session is found.
func (m *Manager) Restore(ctx context.Context) (State, error) {
	data, err := m.store.Get(ctx, StateKey)
	if errors.Is(err, ErrNoValue) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to restore session state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt record is dropped rather than restored half-populated.
		m.logger.Warn("Discarding corrupt session state", zap.Error(err))
		_ = m.store.Delete(ctx, StateKey)
		return State{}, nil
	}

	m.setState(state)
	if state.Connected {
		m.refreshPermissions(ctx, state)
	}
	return state, nil
}

// Teardown disconnects the session, clearing in-memory and persisted
// state along with the local permission set.
func (m *Manager) Teardown(ctx context.Context) error {
	m.setState(State{})
	m.permissions.Store().Replace(nil)

	if err := m.store.Delete(ctx, StateKey); err != nil && !errors.Is(err, ErrNoValue) {
		return fmt.Errorf("failed to clear session state: %w", err)
	}

	m.logger.Info("Wallet session torn down")
	return nil
}

// Accounts returns the connected account pair.
func (m *Manager) Accounts() (universal, sub common.Address, err error) {
	state := m.State()
	if !state.Connected {
		return common.Address{}, common.Address{}, ErrNotConnected
	}
	return state.UniversalAddress, state.SubAccountAddress, nil
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func (m *Manager) persist(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, StateKey, data)
}

// resolveName does a bounded reverse lookup; resolution failures degrade
// to an empty name rather than failing the connect.
func (m *Manager) resolveName(ctx context.Context, address common.Address) string {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	name, err := m.resolver.ReverseResolve(ctx, address)
	if err != nil {
		m.logger.Debug("Base name resolution failed",
			zap.String("address", address.Hex()),
			zap.Error(err))
		return ""
	}
	return name
}

// refreshPermissions repopulates the permission store for the session's
// account pair; failures are logged, not fatal to the session.
func (m *Manager) refreshPermissions(ctx context.Context, state State) {
	if state.SubAccountAddress == (common.Address{}) {
		return
	}
	if _, err := m.permissions.FetchUserPermissions(ctx, state.UniversalAddress, state.SubAccountAddress); err != nil {
		m.logger.Warn("Failed to refresh session permissions", zap.Error(err))
	}
}
