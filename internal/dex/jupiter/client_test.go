// internal/dex/jupiter/client_test.go
package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quantfeed/solswap/internal/swap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL}, zaptest.NewLogger(t))
}

const validQuoteBody = `{
	"inputMint": "So11111111111111111111111111111111111111112",
	"outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"inAmount": "1000000000",
	"outAmount": "500000",
	"otherAmountThreshold": "450000",
	"slippageBps": 1000,
	"priceImpactPct": "0.0123"
}`

func TestQuote(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v6/quote", r.URL.Path)
		gotQuery = map[string]string{
			"inputMint":   r.URL.Query().Get("inputMint"),
			"outputMint":  r.URL.Query().Get("outputMint"),
			"amount":      r.URL.Query().Get("amount"),
			"slippageBps": r.URL.Query().Get("slippageBps"),
		}
		w.Write([]byte(validQuoteBody))
	}))

	quote, err := client.Quote(context.Background(),
		"So11111111111111111111111111111111111111112",
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		1_000_000_000, 1000)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"inputMint":   "So11111111111111111111111111111111111111112",
		"outputMint":  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"amount":      "1000000000",
		"slippageBps": "1000",
	}, gotQuery)

	assert.Equal(t, uint64(1_000_000_000), quote.InAmount.Raw)
	assert.Equal(t, uint64(500_000), quote.OutAmount.Raw)
	assert.Equal(t, uint64(450_000), quote.MinOutAmount.Raw)
	assert.Equal(t, 1000, quote.SlippageBps)
	assert.InDelta(t, 0.0123, quote.PriceImpactPct, 1e-9)
	assert.JSONEq(t, validQuoteBody, string(quote.ProviderPayload))
}

func TestQuoteNoRoute(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode": "COULD_NOT_FIND_ANY_ROUTE", "error": "Could not find any route"}`))
	}))

	_, err := client.Quote(context.Background(), "mintA", "mintB", 1, 50)
	require.Error(t, err)
	assert.Equal(t, swap.KindNoRoute, swap.KindOf(err))
}

func TestQuoteProviderFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"reported error", http.StatusBadRequest, `{"error": "invalid mint"}`},
		{"unknown error code", http.StatusBadRequest, `{"errorCode": "SOMETHING_ELSE"}`},
		{"missing out amount", http.StatusOK, `{"inputMint": "a", "outputMint": "b", "inAmount": "1", "otherAmountThreshold": "1"}`},
		{"missing mints", http.StatusOK, `{"inAmount": "1", "outAmount": "1", "otherAmountThreshold": "1"}`},
		{"non numeric amount", http.StatusOK, `{"inputMint": "a", "outputMint": "b", "inAmount": "xx", "outAmount": "1", "otherAmountThreshold": "1"}`},
		{"server error", http.StatusInternalServerError, `{}`},
		{"garbage body", http.StatusOK, `not json`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))

			_, err := client.Quote(context.Background(), "mintA", "mintB", 1, 50)
			require.Error(t, err)
			assert.Equal(t, swap.KindProvider, swap.KindOf(err))
		})
	}
}

func TestBuild(t *testing.T) {
	rawTx := []byte{1, 2, 3, 4, 5}
	var gotBody map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v6/swap", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{
			"swapTransaction": base64.StdEncoding.EncodeToString(rawTx),
		})
	}))

	quote := &swap.Quote{
		InputMint:       "mintA",
		OutputMint:      "mintB",
		ProviderPayload: json.RawMessage(validQuoteBody),
	}
	tx, err := client.Build(context.Background(), quote, "UserPubkey")
	require.NoError(t, err)
	assert.Equal(t, rawTx, tx)

	assert.Equal(t, "UserPubkey", gotBody["userPublicKey"])
	assert.Equal(t, true, gotBody["wrapAndUnwrapSol"])

	fee, ok := gotBody["prioritizationFeeLamports"].(map[string]interface{})
	require.True(t, ok)
	tier, ok := fee["priorityLevelWithMaxLamports"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2_000_000), tier["maxLamports"])
	assert.Equal(t, false, tier["global"])
	assert.Equal(t, "veryHigh", tier["priorityLevel"])

	// The quote response is posted back verbatim.
	payload, err := json.Marshal(gotBody["quoteResponse"])
	require.NoError(t, err)
	assert.JSONEq(t, validQuoteBody, string(payload))
}

func TestBuildRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "quote expired"}`))
	}))

	_, err := client.Build(context.Background(), &swap.Quote{ProviderPayload: json.RawMessage(`{}`)}, "UserPubkey")
	require.Error(t, err)
	assert.Equal(t, swap.KindProvider, swap.KindOf(err))
}

func TestBuildMissingTransaction(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := client.Build(context.Background(), &swap.Quote{ProviderPayload: json.RawMessage(`{}`)}, "UserPubkey")
	require.Error(t, err)
	assert.Equal(t, swap.KindProvider, swap.KindOf(err))
}

func TestBuildBadBase64(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"swapTransaction": "%%%not-base64%%%"}`))
	}))

	_, err := client.Build(context.Background(), &swap.Quote{ProviderPayload: json.RawMessage(`{}`)}, "UserPubkey")
	require.Error(t, err)
	assert.Equal(t, swap.KindProvider, swap.KindOf(err))
}
