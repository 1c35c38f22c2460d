package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/OshiSharma1222/starquik/internal/api"
	"github.com/OshiSharma1222/starquik/internal/stellar"
)

// Client talks to the starquik API and turns error bodies back into typed
// stellar errors.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var res api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &res)
	return res, err
}

func (c *Client) Account(ctx context.Context, accountID string) (stellar.Account, error) {
	var res stellar.Account
	err := c.do(ctx, http.MethodGet, "/api/stellar/account/"+url.PathEscape(accountID), nil, nil, &res)
	return res, err
}

func (c *Client) AccountPools(ctx context.Context, accountID string) ([]stellar.PoolShare, error) {
	var res []stellar.PoolShare
	err := c.do(ctx, http.MethodGet, "/api/stellar/account/"+url.PathEscape(accountID)+"/pools", nil, nil, &res)
	return res, err
}

func (c *Client) Transactions(ctx context.Context, accountID string, limit int, cursor string) (stellar.TxPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	var res stellar.TxPage
	err := c.do(ctx, http.MethodGet, "/api/stellar/account/"+url.PathEscape(accountID)+"/transactions", q, nil, &res)
	return res, err
}

func (c *Client) Pools(ctx context.Context, reserves ...string) ([]stellar.Pool, error) {
	q := url.Values{}
	if len(reserves) > 0 {
		q.Set("reserves", strings.Join(reserves, ","))
	}
	var res []stellar.Pool
	err := c.do(ctx, http.MethodGet, "/api/stellar/pools", q, nil, &res)
	return res, err
}

func (c *Client) Pool(ctx context.Context, poolID string) (stellar.Pool, error) {
	var res stellar.Pool
	err := c.do(ctx, http.MethodGet, "/api/stellar/pools/"+url.PathEscape(poolID), nil, nil, &res)
	return res, err
}

func (c *Client) Quote(ctx context.Context, source, dest stellar.Asset, amount string) ([]stellar.Path, error) {
	q := url.Values{}
	q.Set("sourceCode", describeCode(source))
	q.Set("destCode", describeCode(dest))
	q.Set("amount", amount)
	if !source.IsNative() {
		q.Set("sourceIssuer", source.Issuer)
	}
	if !dest.IsNative() {
		q.Set("destIssuer", dest.Issuer)
	}
	var res []stellar.Path
	err := c.do(ctx, http.MethodGet, "/api/stellar/quote", q, nil, &res)
	return res, err
}

func (c *Client) Assets(ctx context.Context, code string) ([]stellar.AssetRecord, error) {
	q := url.Values{}
	if code != "" {
		q.Set("code", code)
	}
	var res []stellar.AssetRecord
	err := c.do(ctx, http.MethodGet, "/api/stellar/assets", q, nil, &res)
	return res, err
}

// Build asks the server for an unsigned envelope for the request.
func (c *Client) Build(ctx context.Context, req stellar.Request) (api.BuildResponse, error) {
	var res api.BuildResponse
	err := c.do(ctx, http.MethodPost, "/api/stellar/build/"+string(req.Operation()), nil, req, &res)
	return res, err
}

func (c *Client) Submit(ctx context.Context, signedXDR string) (stellar.SubmitResult, error) {
	var res stellar.SubmitResult
	err := c.do(ctx, http.MethodPost, "/api/stellar/submit", nil, api.SubmitRequest{SignedXDR: signedXDR}, &res)
	return res, err
}

func (c *Client) FundTestnet(ctx context.Context, accountID string) (json.RawMessage, error) {
	var res json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/stellar/fund-testnet", nil, api.FundRequest{PublicKey: accountID}, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &stellar.Error{Kind: stellar.KindRemoteUnavailable, Message: fmt.Sprintf("api unavailable: %v", err), Err: err}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &stellar.Error{Kind: stellar.KindRemoteUnavailable, Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return decodeError(res.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func describeCode(a stellar.Asset) string {
	if a.IsNative() {
		return "XLM"
	}
	return a.Code
}

func decodeError(status int, raw []byte) error {
	var body api.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return &stellar.Error{
			Kind:    stellar.KindRemoteUnavailable,
			Message: fmt.Sprintf("api returned status %d", status),
		}
	}

	kind := stellar.ParseKind(string(body.Kind))
	if kind == stellar.KindUnknown && status >= http.StatusInternalServerError {
		kind = stellar.KindRemoteUnavailable
	}
	return &stellar.Error{
		Kind:        kind,
		Message:     body.Error,
		ResultCodes: body.ResultCodes,
		Extras:      body.Extras,
	}
}
