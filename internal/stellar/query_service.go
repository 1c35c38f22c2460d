package stellar

import (
	"context"
	"encoding/json"
	"iter"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100
	poolListLimit       = 20
	assetListLimit      = 20
	enrichConcurrency   = 8
)

// QueryService is the read-only facade: account, pool, history and quote
// lookups reshaped for clients.
type QueryService struct {
	ledger Ledger
	faucet Faucet
	logger logrus.FieldLogger
}

func NewQueryService(ledger Ledger, faucet Faucet, logger logrus.FieldLogger) *QueryService {
	return &QueryService{
		ledger: ledger,
		faucet: faucet,
		logger: logger.WithField("pkg", "stellar.query"),
	}
}

func (s *QueryService) GetAccount(ctx context.Context, accountID string) (Account, error) {
	if err := validateAccountID(accountID); err != nil {
		return Account{}, err
	}
	return s.ledger.LoadAccount(ctx, accountID)
}

// GetPools lists up to 20 pools, optionally filtered by a comma separated
// reserve list ("native", "CODE:ISSUER").
func (s *QueryService) GetPools(ctx context.Context, reserves string) ([]Pool, error) {
	var filter []string
	for _, r := range strings.Split(reserves, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		a, err := ParseAsset(r)
		if err != nil {
			return nil, err
		}
		filter = append(filter, a.String())
	}
	return s.ledger.LiquidityPools(ctx, filter, poolListLimit)
}

func (s *QueryService) GetPool(ctx context.Context, poolID string) (Pool, error) {
	if _, err := parsePoolID(poolID); err != nil {
		return Pool{}, err
	}
	return s.ledger.LiquidityPool(ctx, poolID)
}

// GetAccountPools returns the account's pool share balances, each enriched
// with its pool. An enrichment failure leaves that entry without details.
func (s *QueryService) GetAccountPools(ctx context.Context, accountID string) ([]PoolShare, error) {
	acc, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var shares []PoolShare
	for _, b := range acc.Balances {
		if b.IsPoolShare() {
			shares = append(shares, PoolShare{Balance: b})
		}
	}

	var eg errgroup.Group
	eg.SetLimit(enrichConcurrency)
	for i := range shares {
		eg.Go(func() error {
			pool, err := s.ledger.LiquidityPool(ctx, shares[i].LiquidityPoolID)
			if err != nil {
				s.logger.WithError(err).
					WithField("pool_id", shares[i].LiquidityPoolID).
					Warn("failed to load pool details")
				return nil
			}
			shares[i].PoolDetails = &pool
			return nil
		})
	}
	_ = eg.Wait()

	if shares == nil {
		shares = []PoolShare{}
	}
	return shares, nil
}

// ClampHistoryLimit bounds a requested page size to [1, 100]. Zero, which
// is also what an absent or unparsable limit decodes to, means the default.
func ClampHistoryLimit(limit int) uint {
	switch {
	case limit == 0:
		return DefaultHistoryLimit
	case limit < 1:
		return 1
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return uint(limit)
	}
}

// TransactionHistory returns a newest-first page. NextCursor is set only
// when the page came back full.
func (s *QueryService) TransactionHistory(ctx context.Context, accountID string, limit int, cursor string) (TxPage, error) {
	if err := validateAccountID(accountID); err != nil {
		return TxPage{}, err
	}
	n := ClampHistoryLimit(limit)

	records, err := s.ledger.Transactions(ctx, accountID, n, strings.TrimSpace(cursor))
	if err != nil {
		return TxPage{}, err
	}

	page := TxPage{Transactions: records}
	if page.Transactions == nil {
		page.Transactions = []TxRecord{}
	}
	if len(records) > 0 && uint(len(records)) == n {
		next := records[len(records)-1].PagingToken
		page.NextCursor = &next
	}
	return page, nil
}

type quoteRequest struct {
	Source Asset `json:"source"`
	Dest   Asset `json:"dest"`
}

// Quote issues a fresh strict-send search. The returned sequence can be
// ranged once.
func (s *QueryService) Quote(ctx context.Context, source, dest Asset, amount Amount) (iter.Seq[Path], error) {
	if err := checkRequired(quoteRequest{Source: source, Dest: dest}); err != nil {
		return nil, err
	}
	sendAmount, err := parseAmount("amount", amount, false)
	if err != nil {
		return nil, err
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	paths, err := findPaths(ctx, s.ledger, source, sendAmount, dest)
	if err != nil {
		return nil, err
	}
	return onceSeq(paths), nil
}

// Assets lists up to 20 issued assets, optionally filtered by code.
func (s *QueryService) Assets(ctx context.Context, code string) ([]AssetRecord, error) {
	code = strings.TrimSpace(code)
	if code != "" {
		if err := validateCode(code); err != nil {
			return nil, err
		}
	}
	return s.ledger.Assets(ctx, code, assetListLimit)
}

// FundTestnet asks the faucet to create and fund the account.
func (s *QueryService) FundTestnet(ctx context.Context, accountID string) (json.RawMessage, error) {
	if s.faucet == nil {
		return nil, validationError("testnet funding is not available on this network")
	}
	if err := validateAccountID(accountID); err != nil {
		return nil, err
	}
	return s.faucet.Fund(ctx, accountID)
}
