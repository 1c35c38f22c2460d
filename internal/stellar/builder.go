package stellar

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

const (
	DefaultTimeout         = 180 * time.Second
	DefaultDepositMinPrice = "0.0000001"
	DefaultDepositMaxPrice = "100000000"
	DefaultPoolFeeBP       = int32(xdr.LiquidityPoolFeeV18)
)

// BuildConfig holds the parameters shared by every intent.
type BuildConfig struct {
	NetworkPassphrase string
	// BaseFee is the per-operation fee in stroops.
	BaseFee int64
	Timeout time.Duration
	// PoolFeeBP is the constant-product pool fee used to derive pool ids.
	PoolFeeBP int32
	// DepositMinPrice and DepositMaxPrice bound deposits that omit a price range.
	DepositMinPrice string
	DepositMaxPrice string
	DefaultSlippage decimal.Decimal
	Now             func() time.Time
}

func DefaultBuildConfig(networkPassphrase string) BuildConfig {
	return BuildConfig{
		NetworkPassphrase: networkPassphrase,
		BaseFee:           txnbuild.MinBaseFee,
		Timeout:           DefaultTimeout,
		PoolFeeBP:         DefaultPoolFeeBP,
		DepositMinPrice:   DefaultDepositMinPrice,
		DepositMaxPrice:   DefaultDepositMaxPrice,
		DefaultSlippage:   decimal.NewFromInt(1),
		Now:               time.Now,
	}
}

func (c BuildConfig) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// builder turns a fresh account snapshot and a single operation into an
// unsigned envelope. Every intent consumes snapshot sequence + 1.
type builder struct {
	ledger Ledger
	cfg    BuildConfig
}

func newBuilder(ledger Ledger, cfg BuildConfig) *builder {
	return &builder{ledger: ledger, cfg: cfg}
}

func (b *builder) loadAccount(ctx context.Context, accountID string) (Account, error) {
	if err := validateAccountID(accountID); err != nil {
		return Account{}, err
	}
	acc, err := b.ledger.LoadAccount(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

func (b *builder) build(acc Account, op Operation, operation txnbuild.Operation) (Intent, error) {
	source := txnbuild.NewSimpleAccount(acc.ID, acc.Sequence)
	expiresAt := b.cfg.now().Add(b.cfg.Timeout)

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{operation},
		BaseFee:              b.cfg.BaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(0, expiresAt.Unix()),
		},
	})
	if err != nil {
		return Intent{}, newError(KindValidation, err, "build %s transaction: %v", op, err)
	}

	envelope, err := tx.Base64()
	if err != nil {
		return Intent{}, fmt.Errorf("encode %s transaction: %w", op, err)
	}

	return Intent{
		Operation: op,
		Source:    acc.ID,
		Sequence:  tx.SequenceNumber(),
		ExpiresAt: time.Unix(expiresAt.Unix(), 0),
		XDR:       envelope,
	}, nil
}
