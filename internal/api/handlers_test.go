package api

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

const (
	testAccount = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"
	testNetwork = "Test SDF Network ; September 2015"
)

type stubBuilder struct {
	lastRequest stellar.Request
	intent      stellar.Intent
	buildErr    error
	submitted   []string
	submitErr   error
}

func (s *stubBuilder) Build(_ context.Context, req stellar.Request) (stellar.Intent, error) {
	s.lastRequest = req
	if s.buildErr != nil {
		return stellar.Intent{}, s.buildErr
	}
	intent := s.intent
	intent.Operation = req.Operation()
	return intent, nil
}

func (s *stubBuilder) Submit(_ context.Context, signedXDR string) (stellar.SubmitResult, error) {
	s.submitted = append(s.submitted, signedXDR)
	if s.submitErr != nil {
		return stellar.SubmitResult{}, s.submitErr
	}
	return stellar.SubmitResult{Hash: "abc", Ledger: 7, Successful: true}, nil
}

func (s *stubBuilder) Passphrase() string { return testNetwork }

type stubQuerier struct {
	account   stellar.Account
	page      stellar.TxPage
	lastLimit int
	lastCur   string
	paths     []stellar.Path
	quoteErr  error
	lastQuote [2]stellar.Asset
}

func (s *stubQuerier) GetAccount(_ context.Context, id string) (stellar.Account, error) {
	if id != s.account.ID {
		return stellar.Account{}, &stellar.Error{Kind: stellar.KindAccountNotFound, Message: "account " + id + " not found"}
	}
	return s.account, nil
}

func (s *stubQuerier) GetPools(context.Context, string) ([]stellar.Pool, error) {
	return nil, nil
}

func (s *stubQuerier) GetPool(_ context.Context, id string) (stellar.Pool, error) {
	return stellar.Pool{ID: id, FeeBP: 30}, nil
}

func (s *stubQuerier) GetAccountPools(context.Context, string) ([]stellar.PoolShare, error) {
	return []stellar.PoolShare{}, nil
}

func (s *stubQuerier) TransactionHistory(_ context.Context, _ string, limit int, cursor string) (stellar.TxPage, error) {
	s.lastLimit, s.lastCur = limit, cursor
	return s.page, nil
}

func (s *stubQuerier) Quote(_ context.Context, source, dest stellar.Asset, _ stellar.Amount) (iter.Seq[stellar.Path], error) {
	s.lastQuote = [2]stellar.Asset{source, dest}
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	return slices.Values(s.paths), nil
}

func (s *stubQuerier) Assets(context.Context, string) ([]stellar.AssetRecord, error) {
	return nil, nil
}

func (s *stubQuerier) FundTestnet(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"successful":true}`), nil
}

func newTestServer(b *stubBuilder, q *stubQuerier) *httptest.Server {
	logger, _ := test.NewNullLogger()
	srv := NewServer(Config{}, NewHandler(b, q), logger)
	return httptest.NewServer(srv.Echo())
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubBuilder{}, &stubQuerier{})
	defer srv.Close()

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, testNetwork, body["network"])
}

func TestGetAccount(t *testing.T) {
	q := &stubQuerier{account: stellar.Account{ID: testAccount, Sequence: 12345678901, SubentryCount: 2}}
	srv := newTestServer(&stubBuilder{}, q)
	defer srv.Close()

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/stellar/account/"+testAccount, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, testAccount, body["id"])
	assert.Equal(t, "12345678901", body["sequence"])

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/stellar/account/GOTHER", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "account GOTHER not found", body["error"])
	assert.Equal(t, string(stellar.KindAccountNotFound), body["kind"])
}

func TestGetTransactions(t *testing.T) {
	next := "1006"
	q := &stubQuerier{page: stellar.TxPage{Transactions: []stellar.TxRecord{{ID: "1"}}, NextCursor: &next}}
	srv := newTestServer(&stubBuilder{}, q)
	defer srv.Close()

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/stellar/account/"+testAccount+"/transactions?limit=20&cursor=99", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "1006", body["next_cursor"])
	assert.Equal(t, 20, q.lastLimit)
	assert.Equal(t, "99", q.lastCur)

	q.page.NextCursor = nil
	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/stellar/account/"+testAccount+"/transactions?limit=abc", "")
	assert.Contains(t, body, "next_cursor")
	assert.Nil(t, body["next_cursor"])
	assert.Equal(t, 0, q.lastLimit)
}

func TestBuildEndpoints(t *testing.T) {
	b := &stubBuilder{intent: stellar.Intent{XDR: "AAAA", PoolID: "ff"}}
	srv := newTestServer(b, &stubQuerier{})
	defer srv.Close()

	tests := []struct {
		path string
		body string
		want stellar.Operation
	}{
		{"trustline", `{"publicKey":"G1","assetCode":"USDC","assetIssuer":"G2"}`, stellar.OpTrustline},
		{"pool-trustline", `{"publicKey":"G1","assetA":{"code":"XLM"},"assetB":{"code":"USDC","issuer":"G2"}}`, stellar.OpPoolTrustline},
		{"deposit", `{"publicKey":"G1","poolId":"ff","maxAmountA":10,"maxAmountB":"5"}`, stellar.OpDeposit},
		{"withdraw", `{"publicKey":"G1","poolId":"ff","amount":"1"}`, stellar.OpWithdraw},
		{"swap", `{"publicKey":"G1","sourceAsset":{"code":"XLM"},"destAsset":{"code":"USDC","issuer":"G2"},"amount":100,"slippage":1}`, stellar.OpSwap},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, body := doJSON(t, http.MethodPost, srv.URL+"/api/stellar/build/"+tt.path, tt.body)
			require.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, "AAAA", body["xdr"])
			require.NotNil(t, b.lastRequest)
			assert.Equal(t, tt.want, b.lastRequest.Operation())
			assert.Equal(t, "G1", b.lastRequest.Account())
		})
	}

	swap, ok := b.lastRequest.(stellar.SwapRequest)
	require.True(t, ok)
	assert.Equal(t, stellar.Amount("100"), swap.Amount)
	assert.Equal(t, stellar.Amount("1"), swap.Slippage)
}

func TestBuildSwapResponse(t *testing.T) {
	b := &stubBuilder{intent: stellar.Intent{
		XDR:            "AAAA",
		ExpectedAmount: "95.1234567",
		MinAmount:      "94.1722221",
		Path:           []stellar.PathAsset{},
	}}
	srv := newTestServer(b, &stubQuerier{})
	defer srv.Close()

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/stellar/build/swap", `{"publicKey":"G1","amount":"100"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "95.1234567", body["expectedAmount"])
	assert.Equal(t, "94.1722221", body["minAmount"])
	assert.Equal(t, []any{}, body["path"])
}

func TestBuildErrors(t *testing.T) {
	b := &stubBuilder{buildErr: &stellar.Error{
		Kind:    stellar.KindNoPathFound,
		Message: "No swap path found from XLM to USDC. There may not be enough liquidity or no liquidity pool exists for this pair.",
	}}
	srv := newTestServer(b, &stubQuerier{})
	defer srv.Close()

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/stellar/build/swap", `{"publicKey":"G1"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, string(stellar.KindNoPathFound), body["kind"])
	assert.Contains(t, body["error"], "No swap path found from XLM to USDC")

	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/stellar/build/trustline", `{not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, string(stellar.KindValidation), body["kind"])
}

func TestSubmit(t *testing.T) {
	b := &stubBuilder{}
	srv := newTestServer(b, &stubQuerier{})
	defer srv.Close()

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/stellar/submit", `{"signedXdr":"SIGNED"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "abc", body["hash"])
	assert.Equal(t, []string{"SIGNED"}, b.submitted)

	b.submitErr = &stellar.Error{
		Kind:        stellar.KindSubmissionRejected,
		Message:     "transaction rejected: tx_failed [op_underfunded]",
		ResultCodes: &stellar.ResultCodes{Transaction: "tx_failed", Operations: []string{"op_underfunded"}},
		Extras:      map[string]any{"envelope_xdr": "SIGNED"},
	}
	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/stellar/submit", `{"signedXdr":"SIGNED"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, string(stellar.KindSubmissionRejected), body["kind"])
	assert.Equal(t, map[string]any{
		"transaction": "tx_failed",
		"operations":  []any{"op_underfunded"},
	}, body["result_codes"])
	assert.Equal(t, map[string]any{"envelope_xdr": "SIGNED"}, body["extras"])
}

func TestQuote(t *testing.T) {
	q := &stubQuerier{paths: []stellar.Path{
		{SourceAmount: "100.0000000", DestinationAmount: "95.1234567", Path: []stellar.PathAsset{}},
	}}
	srv := newTestServer(&stubBuilder{}, q)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/stellar/quote?sourceCode=XLM&destCode=USDC&destIssuer=" + testAccount + "&amount=100")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "95.1234567", out[0]["destination_amount"])
	assert.Equal(t, "100.0000000", out[0]["source_amount"])
	assert.True(t, q.lastQuote[0].IsNative())
	assert.Equal(t, testAccount, q.lastQuote[1].Issuer)
}

func TestFundTestnet(t *testing.T) {
	srv := newTestServer(&stubBuilder{}, &stubQuerier{})
	defer srv.Close()

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/stellar/fund-testnet", `{"publicKey":"`+testAccount+`"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["successful"])
}

func TestUnknownRouteKeepsStatus(t *testing.T) {
	srv := newTestServer(&stubBuilder{}, &stubQuerier{})
	defer srv.Close()

	res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/stellar/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
