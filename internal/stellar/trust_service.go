package stellar

import (
	"context"
	"fmt"

	"github.com/stellar/go/txnbuild"
)

// TrustService builds trustline intents for plain assets and pool shares.
type TrustService struct {
	b *builder
}

func NewTrustService(ledger Ledger, cfg BuildConfig) *TrustService {
	return &TrustService{b: newBuilder(ledger, cfg)}
}

// AddTrustline lets the account hold a non-native asset.
func (s *TrustService) AddTrustline(ctx context.Context, req TrustlineRequest) (Intent, error) {
	if err := checkRequired(req); err != nil {
		return Intent{}, err
	}
	asset := Asset{Code: req.AssetCode, Issuer: req.AssetIssuer}
	if asset.IsNative() {
		return Intent{}, newError(KindInvalidAsset, nil, "XLM does not require a trustline")
	}
	if err := asset.Validate(); err != nil {
		return Intent{}, err
	}

	acc, err := s.b.loadAccount(ctx, req.PublicKey)
	if err != nil {
		return Intent{}, err
	}

	line, err := txnbuild.CreditAsset{Code: asset.Code, Issuer: asset.Issuer}.ToChangeTrustAsset()
	if err != nil {
		return Intent{}, newError(KindInvalidAsset, err, "asset %s: %v", asset.Code, err)
	}

	return s.b.build(acc, OpTrustline, &txnbuild.ChangeTrust{
		Line:  line,
		Limit: txnbuild.MaxTrustlineLimit,
	})
}

// AddPoolTrustline opts the account into a constant-product pool's shares.
// The assets are put in canonical order first, so argument order never
// changes the pool id.
func (s *TrustService) AddPoolTrustline(ctx context.Context, req PoolTrustlineRequest) (Intent, error) {
	if err := checkRequired(req); err != nil {
		return Intent{}, err
	}
	a, b := OrderPair(req.AssetA, req.AssetB)
	poolID, params, err := poolParameters(a, b, s.b.cfg.PoolFeeBP)
	if err != nil {
		return Intent{}, err
	}

	acc, err := s.b.loadAccount(ctx, req.PublicKey)
	if err != nil {
		return Intent{}, err
	}

	intent, err := s.b.build(acc, OpPoolTrustline, &txnbuild.ChangeTrust{
		Line:  txnbuild.LiquidityPoolShareChangeTrustAsset{LiquidityPoolParameters: params},
		Limit: txnbuild.MaxTrustlineLimit,
	})
	if err != nil {
		return Intent{}, err
	}
	intent.PoolID = poolID
	return intent, nil
}

// PoolID derives the hex pool id for an unordered asset pair and fee.
func PoolID(a, b Asset, feeBP int32) (string, error) {
	a, b = OrderPair(a, b)
	id, _, err := poolParameters(a, b, feeBP)
	return id, err
}

func poolParameters(a, b Asset, feeBP int32) (string, txnbuild.LiquidityPoolParameters, error) {
	if a.Equal(b) {
		return "", txnbuild.LiquidityPoolParameters{}, newError(KindInvalidAsset, nil, "a pool needs two different assets, got %s twice", describe(a))
	}

	assetA, err := a.toTxnbuild()
	if err != nil {
		return "", txnbuild.LiquidityPoolParameters{}, err
	}
	assetB, err := b.toTxnbuild()
	if err != nil {
		return "", txnbuild.LiquidityPoolParameters{}, err
	}

	params := txnbuild.LiquidityPoolParameters{AssetA: assetA, AssetB: assetB, Fee: feeBP}
	id, err := derivePoolID(assetA, assetB, feeBP)
	if err != nil {
		return "", txnbuild.LiquidityPoolParameters{}, newError(KindInvalidAsset, err, "derive pool id for %s/%s: %v", describe(a), describe(b), err)
	}
	return id, params, nil
}

func describePair(a, b Asset) string {
	return fmt.Sprintf("%s to %s", describe(a), describe(b))
}
