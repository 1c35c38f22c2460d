package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

// LiquidityRequest describes a deposit in the caller's asset order. Price
// bounds are quoted as B per A.
type LiquidityRequest struct {
	AssetA     stellar.Asset
	AssetB     stellar.Asset
	MaxAmountA string
	MaxAmountB string
	MinPrice   string
	MaxPrice   string
}

// ProvideLiquidity opts into the pool when the account holds no shares yet,
// waits for the trustline to settle, then deposits. Each step is its own
// attempt; a failed trustline stops the sequence.
func (o *Orchestrator) ProvideLiquidity(ctx context.Context, req LiquidityRequest) ([]Result, error) {
	account := o.signer.PublicKey()

	fee := o.cfg.PoolFeeBP
	if fee == 0 {
		fee = stellar.DefaultPoolFeeBP
	}
	poolID, err := stellar.PoolID(req.AssetA, req.AssetB, fee)
	if err != nil {
		return nil, err
	}

	acc, err := o.backend.Account(ctx, account)
	if err != nil {
		return nil, err
	}

	var results []Result
	if !acc.HoldsPoolShares(poolID) {
		res, err := o.Do(ctx, stellar.PoolTrustlineRequest{
			PublicKey: account,
			AssetA:    req.AssetA,
			AssetB:    req.AssetB,
		})
		results = append(results, res)
		if err != nil {
			return results, err
		}
		if res.PoolID != "" {
			poolID = res.PoolID
		}

		if err := sleep(ctx, o.settlePause()); err != nil {
			return results, err
		}
	}

	deposit, err := depositFor(account, poolID, req)
	if err != nil {
		return results, err
	}
	res, err := o.Do(ctx, deposit)
	results = append(results, res)
	return results, err
}

func (o *Orchestrator) settlePause() time.Duration {
	if o.cfg.SettlePause < 0 {
		return 0
	}
	if o.cfg.SettlePause == 0 {
		return DefaultSettlePause
	}
	return o.cfg.SettlePause
}

// depositFor maps the caller's asset order onto the pool's canonical order.
// When the order flips, the amounts swap and the price bounds invert.
func depositFor(account, poolID string, req LiquidityRequest) (stellar.DepositRequest, error) {
	out := stellar.DepositRequest{
		PublicKey:  account,
		PoolID:     poolID,
		MaxAmountA: stellar.Amount(req.MaxAmountA),
		MaxAmountB: stellar.Amount(req.MaxAmountB),
		MinPrice:   stellar.Amount(req.MinPrice),
		MaxPrice:   stellar.Amount(req.MaxPrice),
	}
	if stellar.Compare(req.AssetA, req.AssetB) <= 0 {
		return out, nil
	}

	out.MaxAmountA, out.MaxAmountB = out.MaxAmountB, out.MaxAmountA
	if req.MinPrice == "" && req.MaxPrice == "" {
		return out, nil
	}
	minPrice, maxPrice, err := invertBounds(req.MinPrice, req.MaxPrice)
	if err != nil {
		return stellar.DepositRequest{}, err
	}
	out.MinPrice, out.MaxPrice = stellar.Amount(minPrice), stellar.Amount(maxPrice)
	return out, nil
}

var (
	smallestPrice = decimal.New(1, -stellar.Precision)
	one           = decimal.NewFromInt(1)
)

// invertBounds turns a [min, max] B-per-A range into the A-per-B range
// [1/max, 1/min], widened outward to ledger precision.
func invertBounds(minPrice, maxPrice string) (string, string, error) {
	var newMin, newMax string
	if maxPrice != "" {
		p, err := decimal.NewFromString(maxPrice)
		if err != nil || !p.IsPositive() {
			return "", "", fmt.Errorf("invalid maxPrice %q", maxPrice)
		}
		inv := one.DivRound(p, stellar.Precision+2).Truncate(stellar.Precision)
		if inv.LessThan(smallestPrice) {
			inv = smallestPrice
		}
		newMin = inv.String()
	}
	if minPrice != "" {
		p, err := decimal.NewFromString(minPrice)
		if err != nil || !p.IsPositive() {
			return "", "", fmt.Errorf("invalid minPrice %q", minPrice)
		}
		newMax = one.DivRound(p, stellar.Precision+2).RoundUp(stellar.Precision).String()
	}
	return newMin, newMax, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
