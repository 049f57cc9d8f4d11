// Package names resolves base names to addresses and back against the
// name-service HTTP API. Lookups are cached in memory and bounded so
// identity resolution never blocks core flows indefinitely.
package names

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/logger"
)

const (
	defaultTimeout = 5 * time.Second
	nameSuffix     = ".base"
)

// Client manages communication with the name resolution service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu      sync.RWMutex
	forward map[string]*common.Address // name -> address, nil for known miss
	reverse map[common.Address]string  // address -> name, "" for known miss
}

// NewClient creates a resolver client for the given service URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.Log,
		forward:    make(map[string]*common.Address),
		reverse:    make(map[common.Address]string),
	}
}

type resolveResponse struct {
	Address *common.Address `json:"address"`
	Name    string          `json:"name"`
}

// Resolve maps a base name (or a literal address) to an address. A nil
// result with nil error means no match.
func (c *Client) Resolve(ctx context.Context, input string) (*common.Address, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}
	if common.IsHexAddress(input) {
		addr := common.HexToAddress(input)
		return &addr, nil
	}
	if !strings.HasSuffix(input, nameSuffix) {
		return nil, nil
	}

	c.mu.RLock()
	cached, ok := c.forward[input]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var resp resolveResponse
	found, err := c.get(ctx, "/v1/resolve?name="+url.QueryEscape(input), &resp)
	if err != nil {
		return nil, err
	}
	var result *common.Address
	if found && resp.Address != nil {
		result = resp.Address
	}

	c.mu.Lock()
	c.forward[input] = result
	c.mu.Unlock()

	return result, nil
}

// ReverseResolve maps an address to its primary base name. An empty
// result with nil error means no match.
func (c *Client) ReverseResolve(ctx context.Context, address common.Address) (string, error) {
	c.mu.RLock()
	cached, ok := c.reverse[address]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var resp resolveResponse
	found, err := c.get(ctx, "/v1/reverse?address="+url.QueryEscape(address.Hex()), &resp)
	if err != nil {
		return "", err
	}
	name := ""
	if found {
		name = resp.Name
	}

	c.mu.Lock()
	c.reverse[address] = name
	c.mu.Unlock()

	return name, nil
}

// get performs a bounded GET, reporting found=false on a 404.
func (c *Client) get(ctx context.Context, path string, out interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to build name service request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "name service request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("name service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrap(err, "failed to decode name service response")
	}
	return true, nil
}
