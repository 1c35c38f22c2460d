package stellar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/OshiSharma1222/starquik/internal/metrics"
)

const DefaultFriendbotURL = "https://friendbot.stellar.org"

// Faucet funds fresh testnet accounts.
type Faucet interface {
	Fund(ctx context.Context, accountID string) (json.RawMessage, error)
}

// Friendbot is the testnet faucet. Its response body is passed through as is.
type Friendbot struct {
	baseURL string
	http    *http.Client
	metrics *metrics.LedgerMetrics
}

func NewFriendbot(baseURL string, m *metrics.LedgerMetrics) *Friendbot {
	if baseURL == "" {
		baseURL = DefaultFriendbotURL
	}
	return &Friendbot{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		metrics: m,
	}
}

func (f *Friendbot) Fund(ctx context.Context, accountID string) (json.RawMessage, error) {
	if err := validateAccountID(accountID); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?addr="+url.QueryEscape(accountID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build friendbot request: %w", err)
	}

	start := time.Now()
	res, err := f.http.Do(req)
	if err != nil {
		f.metrics.ObserveHorizon("friendbot", start, err)
		return nil, newError(KindRemoteUnavailable, err, "friendbot unavailable: %v", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	f.metrics.ObserveHorizon("friendbot", start, err)
	if err != nil {
		return nil, newError(KindRemoteUnavailable, err, "failed to read friendbot response: %v", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, newError(KindRemoteUnavailable, nil, "friendbot returned status %d with a non-JSON body", res.StatusCode)
	}

	if res.StatusCode >= http.StatusBadRequest {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = gjson.GetBytes(body, "title").String()
		}
		kind := KindValidation
		if res.StatusCode >= http.StatusInternalServerError {
			kind = KindRemoteUnavailable
		}
		e := newError(kind, nil, "friendbot: %s", detail)
		if extras := gjson.GetBytes(body, "extras"); extras.IsObject() {
			if m, ok := extras.Value().(map[string]any); ok {
				e.Extras = m
			}
		}
		return nil, e
	}
	return body, nil
}
