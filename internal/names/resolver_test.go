package names

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickfund/quickfund-api/internal/logger"
)

func init() {
	logger.Init("test")
}

var (
	aliceAddr = common.HexToAddress("0xaaa0000000000000000000000000000000000001")
	bobAddr   = common.HexToAddress("0xbbb0000000000000000000000000000000000002")
)

func newNameService(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/v1/resolve":
			if r.URL.Query().Get("name") == "alice.base" {
				json.NewEncoder(w).Encode(map[string]interface{}{"address": aliceAddr.Hex(), "name": "alice.base"})
				return
			}
			http.NotFound(w, r)
		case "/v1/reverse":
			if common.HexToAddress(r.URL.Query().Get("address")) == aliceAddr {
				json.NewEncoder(w).Encode(map[string]interface{}{"address": aliceAddr.Hex(), "name": "alice.base"})
				return
			}
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestResolve(t *testing.T) {
	server := newNameService(t, nil)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	addr, err := client.Resolve(ctx, "alice.base")
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.Equal(t, aliceAddr, *addr)

	// Mixed case and surrounding space normalize to the same name.
	addr, err = client.Resolve(ctx, "  Alice.Base ")
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.Equal(t, aliceAddr, *addr)

	// Unknown names resolve to no match, not an error.
	addr, err = client.Resolve(ctx, "nobody.base")
	require.NoError(t, err)
	assert.Nil(t, addr)
}

func TestResolveLiteralAddressAndForeignNames(t *testing.T) {
	client := NewClient("http://127.0.0.1:0") // must never be contacted
	ctx := context.Background()

	addr, err := client.Resolve(ctx, aliceAddr.Hex())
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.Equal(t, aliceAddr, *addr)

	addr, err = client.Resolve(ctx, "alice.eth")
	require.NoError(t, err)
	assert.Nil(t, addr)

	addr, err = client.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, addr)
}

func TestResolveCachesLookups(t *testing.T) {
	var hits atomic.Int64
	server := newNameService(t, &hits)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Resolve(ctx, "alice.base")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), hits.Load())

	// Known misses are cached too.
	for i := 0; i < 3; i++ {
		_, err := client.Resolve(ctx, "nobody.base")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), hits.Load())
}

func TestReverseResolve(t *testing.T) {
	var hits atomic.Int64
	server := newNameService(t, &hits)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	name, err := client.ReverseResolve(ctx, aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, "alice.base", name)

	name, err = client.ReverseResolve(ctx, bobAddr)
	require.NoError(t, err)
	assert.Empty(t, name)

	// Both results are served from cache afterwards.
	before := hits.Load()
	_, err = client.ReverseResolve(ctx, aliceAddr)
	require.NoError(t, err)
	_, err = client.ReverseResolve(ctx, bobAddr)
	require.NoError(t, err)
	assert.Equal(t, before, hits.Load())
}

func TestReverseResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	client := NewClient(server.URL)

	_, err := client.ReverseResolve(context.Background(), aliceAddr)
	assert.Error(t, err)
}
