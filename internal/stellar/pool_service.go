package stellar

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// PoolService builds deposit and withdraw intents for constant-product pools.
type PoolService struct {
	b *builder
}

func NewPoolService(ledger Ledger, cfg BuildConfig) *PoolService {
	return &PoolService{b: newBuilder(ledger, cfg)}
}

// Deposit adds liquidity bounded by maxAmountA/maxAmountB. Missing price
// bounds fall back to the configured defaults.
func (s *PoolService) Deposit(ctx context.Context, req DepositRequest) (Intent, error) {
	if err := checkRequired(req); err != nil {
		return Intent{}, err
	}
	poolID, err := parsePoolID(req.PoolID)
	if err != nil {
		return Intent{}, err
	}
	maxA, err := parseAmount("maxAmountA", req.MaxAmountA, false)
	if err != nil {
		return Intent{}, err
	}
	maxB, err := parseAmount("maxAmountB", req.MaxAmountB, false)
	if err != nil {
		return Intent{}, err
	}

	minPrice, err := parsePrice("minPrice", orDefault(req.MinPrice, s.b.cfg.DepositMinPrice))
	if err != nil {
		return Intent{}, err
	}
	maxPrice, err := parsePrice("maxPrice", orDefault(req.MaxPrice, s.b.cfg.DepositMaxPrice))
	if err != nil {
		return Intent{}, err
	}
	if priceLess(maxPrice, minPrice) {
		return Intent{}, validationError("minPrice must not exceed maxPrice")
	}

	acc, err := s.b.loadAccount(ctx, req.PublicKey)
	if err != nil {
		return Intent{}, err
	}

	return s.b.build(acc, OpDeposit, &txnbuild.LiquidityPoolDeposit{
		LiquidityPoolID: poolID,
		MaxAmountA:      maxA,
		MaxAmountB:      maxB,
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
	})
}

// Withdraw redeems pool shares. Minimums default to zero, which accepts any
// output.
func (s *PoolService) Withdraw(ctx context.Context, req WithdrawRequest) (Intent, error) {
	if err := checkRequired(req); err != nil {
		return Intent{}, err
	}
	poolID, err := parsePoolID(req.PoolID)
	if err != nil {
		return Intent{}, err
	}
	shares, err := parseAmount("amount", req.Amount, false)
	if err != nil {
		return Intent{}, err
	}
	minA, err := parseAmount("minAmountA", Amount(orDefault(req.MinAmountA, "0")), true)
	if err != nil {
		return Intent{}, err
	}
	minB, err := parseAmount("minAmountB", Amount(orDefault(req.MinAmountB, "0")), true)
	if err != nil {
		return Intent{}, err
	}

	acc, err := s.b.loadAccount(ctx, req.PublicKey)
	if err != nil {
		return Intent{}, err
	}

	return s.b.build(acc, OpWithdraw, &txnbuild.LiquidityPoolWithdraw{
		LiquidityPoolID: poolID,
		Amount:          shares,
		MinAmountA:      minA,
		MinAmountB:      minB,
	})
}

func parsePoolID(s string) (txnbuild.LiquidityPoolId, error) {
	var id txnbuild.LiquidityPoolId
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != len(id) {
		return id, validationError("poolId %q must be a 64 character hex string", s)
	}
	copy(id[:], raw)
	return id, nil
}

// derivePoolID hashes the ordered pool parameters with the given fee. The
// fee is an explicit input so pools with a non-default fee resolve too.
func derivePoolID(a, b txnbuild.Asset, feeBP int32) (string, error) {
	xa, err := a.ToXDR()
	if err != nil {
		return "", err
	}
	xb, err := b.ToXDR()
	if err != nil {
		return "", err
	}
	id, err := xdr.NewPoolId(xa, xb, xdr.Int32(feeBP))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:]), nil
}

func priceLess(a, b xdr.Price) bool {
	// a.N/a.D < b.N/b.D without floating point
	return int64(a.N)*int64(b.D) < int64(b.N)*int64(a.D)
}

func orDefault(a Amount, def string) string {
	if a.IsZero() {
		return def
	}
	return a.String()
}
