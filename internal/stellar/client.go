package stellar

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"

	"github.com/OshiSharma1222/starquik/internal/metrics"
)

// Ledger is the query/submission service the builders and facade depend on.
type Ledger interface {
	LoadAccount(ctx context.Context, accountID string) (Account, error)
	LiquidityPools(ctx context.Context, reserves []string, limit uint) ([]Pool, error)
	LiquidityPool(ctx context.Context, poolID string) (Pool, error)
	Transactions(ctx context.Context, accountID string, limit uint, cursor string) ([]TxRecord, error)
	StrictSendPaths(ctx context.Context, source Asset, amount string, dest Asset) ([]Path, error)
	Assets(ctx context.Context, code string, limit uint) ([]AssetRecord, error)
	SubmitTransaction(ctx context.Context, envelopeXDR string) (SubmitResult, error)
}

// Client implements Ledger on top of Horizon.
type Client struct {
	horizon *horizonclient.Client
	metrics *metrics.LedgerMetrics
}

// NewClient creates a Horizon-backed ledger client. Calls use the transport's
// default timeouts.
func NewClient(horizonURL string, m *metrics.LedgerMetrics) *Client {
	return &Client{
		horizon: &horizonclient.Client{
			HorizonURL: strings.TrimRight(horizonURL, "/") + "/",
			HTTP:       http.DefaultClient,
		},
		metrics: m,
	}
}

func (c *Client) LoadAccount(ctx context.Context, accountID string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	start := time.Now()
	acc, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	c.metrics.ObserveHorizon("account", start, err)
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return Account{}, newError(KindAccountNotFound, err, "account %s not found", accountID)
		}
		return Account{}, horizonError("load account", err)
	}

	seq, err := acc.GetSequenceNumber()
	if err != nil {
		return Account{}, newError(KindRemoteUnavailable, err, "load account: bad sequence number: %v", err)
	}

	balances := make([]Balance, 0, len(acc.Balances))
	for _, b := range acc.Balances {
		balances = append(balances, Balance{
			Balance:         b.Balance,
			Limit:           b.Limit,
			AssetType:       b.Type,
			AssetCode:       b.Code,
			AssetIssuer:     b.Issuer,
			LiquidityPoolID: b.LiquidityPoolId,
		})
	}

	return Account{
		ID:            acc.AccountID,
		Sequence:      seq,
		Balances:      balances,
		SubentryCount: acc.SubentryCount,
		Thresholds: Thresholds{
			Low:    acc.Thresholds.LowThreshold,
			Medium: acc.Thresholds.MedThreshold,
			High:   acc.Thresholds.HighThreshold,
		},
	}, nil
}

func (c *Client) LiquidityPools(ctx context.Context, reserves []string, limit uint) ([]Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := c.horizon.LiquidityPools(horizonclient.LiquidityPoolsRequest{
		Reserves: reserves,
		Limit:    limit,
	})
	c.metrics.ObserveHorizon("liquidity_pools", start, err)
	if err != nil {
		return nil, horizonError("list liquidity pools", err)
	}

	pools := make([]Pool, 0, len(page.Embedded.Records))
	for _, p := range page.Embedded.Records {
		pools = append(pools, poolFromHorizon(p))
	}
	return pools, nil
}

func (c *Client) LiquidityPool(ctx context.Context, poolID string) (Pool, error) {
	if err := ctx.Err(); err != nil {
		return Pool{}, err
	}

	start := time.Now()
	p, err := c.horizon.LiquidityPoolDetail(horizonclient.LiquidityPoolRequest{LiquidityPoolID: poolID})
	c.metrics.ObserveHorizon("liquidity_pool", start, err)
	if err != nil {
		return Pool{}, horizonError("get liquidity pool "+poolID, err)
	}
	return poolFromHorizon(p), nil
}

func (c *Client) Transactions(ctx context.Context, accountID string, limit uint, cursor string) ([]TxRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := c.horizon.Transactions(horizonclient.TransactionRequest{
		ForAccount: accountID,
		Limit:      limit,
		Cursor:     cursor,
		Order:      horizonclient.OrderDesc,
	})
	c.metrics.ObserveHorizon("transactions", start, err)
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, newError(KindAccountNotFound, err, "account %s not found", accountID)
		}
		return nil, horizonError("list transactions", err)
	}

	records := make([]TxRecord, 0, len(page.Embedded.Records))
	for _, tx := range page.Embedded.Records {
		records = append(records, TxRecord{
			ID:             tx.ID,
			Hash:           tx.Hash,
			CreatedAt:      tx.LedgerCloseTime,
			Successful:     tx.Successful,
			FeeCharged:     feeString(tx.FeeCharged),
			OperationCount: tx.OperationCount,
			SourceAccount:  tx.Account,
			PagingToken:    tx.PT,
		})
	}
	return records, nil
}

func (c *Client) StrictSendPaths(ctx context.Context, source Asset, amount string, dest Asset) ([]Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := horizonclient.StrictSendPathsRequest{
		SourceAmount:      amount,
		DestinationAssets: dest.String(),
	}
	switch {
	case source.IsNative():
		req.SourceAssetType = horizonclient.AssetTypeNative
	case len(source.Code) <= 4:
		req.SourceAssetType = horizonclient.AssetType4
		req.SourceAssetCode = source.Code
		req.SourceAssetIssuer = source.Issuer
	default:
		req.SourceAssetType = horizonclient.AssetType12
		req.SourceAssetCode = source.Code
		req.SourceAssetIssuer = source.Issuer
	}

	start := time.Now()
	page, err := c.horizon.StrictSendPaths(req)
	c.metrics.ObserveHorizon("strict_send_paths", start, err)
	if err != nil {
		return nil, horizonError("strict send paths", err)
	}

	paths := make([]Path, 0, len(page.Embedded.Records))
	for _, p := range page.Embedded.Records {
		hops := make([]PathAsset, 0, len(p.Path))
		for _, a := range p.Path {
			hops = append(hops, PathAsset{Type: a.Type, Code: a.Code, Issuer: a.Issuer})
		}
		paths = append(paths, Path{
			SourceAmount:      p.SourceAmount,
			DestinationAmount: p.DestinationAmount,
			Path:              hops,
		})
	}
	return paths, nil
}

func (c *Client) Assets(ctx context.Context, code string, limit uint) ([]AssetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := c.horizon.Assets(horizonclient.AssetRequest{
		ForAssetCode: code,
		Limit:        limit,
	})
	c.metrics.ObserveHorizon("assets", start, err)
	if err != nil {
		return nil, horizonError("list assets", err)
	}

	assets := make([]AssetRecord, 0, len(page.Embedded.Records))
	for _, a := range page.Embedded.Records {
		assets = append(assets, AssetRecord{
			Type:        a.Type,
			Code:        a.Code,
			Issuer:      a.Issuer,
			PagingToken: a.PT,
		})
	}
	return assets, nil
}

func (c *Client) SubmitTransaction(ctx context.Context, envelopeXDR string) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}

	start := time.Now()
	tx, err := c.horizon.SubmitTransactionXDR(envelopeXDR)
	c.metrics.ObserveHorizon("submit", start, err)
	if err != nil {
		return SubmitResult{}, submissionError(err)
	}

	return SubmitResult{
		Hash:        tx.Hash,
		Ledger:      tx.Ledger,
		Successful:  tx.Successful,
		EnvelopeXDR: tx.EnvelopeXdr,
		ResultXDR:   tx.ResultXdr,
	}, nil
}

func poolFromHorizon(p hProtocol.LiquidityPool) Pool {
	reserves := make([]Reserve, 0, len(p.Reserves))
	for _, r := range p.Reserves {
		reserves = append(reserves, Reserve{Asset: r.Asset, Amount: r.Amount})
	}
	return Pool{
		ID:              p.ID,
		PagingToken:     p.PT,
		FeeBP:           p.FeeBP,
		Type:            p.Type,
		TotalTrustlines: p.TotalTrustlines,
		TotalShares:     p.TotalShares,
		Reserves:        reserves,
	}
}

// horizonError classifies a failed query. Problems Horizon reports itself keep
// their title and detail; anything else means Horizon could not be reached.
func horizonError(op string, err error) error {
	herr := horizonclient.GetError(err)
	if herr == nil {
		return newError(KindRemoteUnavailable, err, "%s: horizon unavailable: %v", op, err)
	}

	msg := herr.Problem.Title
	if herr.Problem.Detail != "" {
		msg += ": " + herr.Problem.Detail
	}

	switch status := herr.Problem.Status; {
	case status == http.StatusNotFound:
		return newError(KindNotFound, err, "%s: %s", op, msg)
	case status >= 400 && status < 500:
		e := newError(KindValidation, err, "%s: %s", op, msg)
		e.Extras = herr.Problem.Extras
		return e
	default:
		return newError(KindRemoteUnavailable, err, "%s: %s", op, msg)
	}
}

// submissionError keeps Horizon's result codes so callers can tell a bad
// sequence from an underfunded account or a missing trustline.
func submissionError(err error) error {
	herr := horizonclient.GetError(err)
	if herr == nil {
		return newError(KindRemoteUnavailable, err, "submit transaction: horizon unavailable: %v", err)
	}

	codes, cerr := herr.ResultCodes()
	if cerr != nil || codes == nil {
		e := newError(KindSubmissionRejected, err, "transaction rejected: %s", herr.Problem.Title)
		if herr.Problem.Status >= http.StatusInternalServerError {
			e.Kind = KindRemoteUnavailable
		}
		e.Extras = herr.Problem.Extras
		return e
	}

	rc := &ResultCodes{
		Transaction:      codes.TransactionCode,
		InnerTransaction: codes.InnerTransactionCode,
		Operations:       codes.OperationCodes,
	}
	return &Error{
		Kind:        KindSubmissionRejected,
		Message:     "transaction rejected: " + rc.String(),
		ResultCodes: rc,
		Extras:      herr.Problem.Extras,
		Err:         err,
	}
}

func (rc *ResultCodes) String() string {
	if rc == nil {
		return ""
	}
	parts := []string{rc.Transaction}
	if rc.InnerTransaction != "" {
		parts = append(parts, rc.InnerTransaction)
	}
	if len(rc.Operations) > 0 {
		parts = append(parts, "["+strings.Join(rc.Operations, ", ")+"]")
	}
	return strings.Join(parts, " ")
}
