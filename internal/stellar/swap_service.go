package stellar

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"

	"github.com/stellar/go/txnbuild"
)

// SwapService builds strict-send path payments back to the source account.
type SwapService struct {
	b *builder
}

func NewSwapService(ledger Ledger, cfg BuildConfig) *SwapService {
	return &SwapService{b: newBuilder(ledger, cfg)}
}

// Swap searches for a path from the source to the destination asset, takes
// the first (best) one and bounds the received amount by the slippage.
func (s *SwapService) Swap(ctx context.Context, req SwapRequest) (Intent, error) {
	if err := checkRequired(req); err != nil {
		return Intent{}, err
	}
	sendAmount, err := parseAmount("amount", req.Amount, false)
	if err != nil {
		return Intent{}, err
	}
	slippage, err := parseSlippage(req.Slippage, s.b.cfg.DefaultSlippage)
	if err != nil {
		return Intent{}, err
	}
	if err := req.SourceAsset.Validate(); err != nil {
		return Intent{}, err
	}
	if err := req.DestAsset.Validate(); err != nil {
		return Intent{}, err
	}

	acc, err := s.b.loadAccount(ctx, req.PublicKey)
	if err != nil {
		return Intent{}, err
	}

	paths, err := findPaths(ctx, s.b.ledger, req.SourceAsset, sendAmount, req.DestAsset)
	if err != nil {
		return Intent{}, err
	}
	best := paths[0]

	minAmount, err := MinDestAmount(best.DestinationAmount, slippage)
	if err != nil {
		return Intent{}, err
	}

	sendAsset, err := req.SourceAsset.toTxnbuild()
	if err != nil {
		return Intent{}, err
	}
	destAsset, err := req.DestAsset.toTxnbuild()
	if err != nil {
		return Intent{}, err
	}
	hops := make([]txnbuild.Asset, 0, len(best.Path))
	for _, p := range best.Path {
		hop, err := p.Asset().toTxnbuild()
		if err != nil {
			return Intent{}, newError(KindPathSearch, err, "path for %s contains an invalid asset: %v", describePair(req.SourceAsset, req.DestAsset), err)
		}
		hops = append(hops, hop)
	}

	intent, err := s.b.build(acc, OpSwap, &txnbuild.PathPaymentStrictSend{
		SendAsset:   sendAsset,
		SendAmount:  sendAmount,
		Destination: acc.ID,
		DestAsset:   destAsset,
		DestMin:     minAmount,
		Path:        hops,
	})
	if err != nil {
		return Intent{}, err
	}

	intent.ExpectedAmount = best.DestinationAmount
	intent.MinAmount = minAmount
	intent.Path = best.Path
	if intent.Path == nil {
		intent.Path = []PathAsset{}
	}
	return intent, nil
}

// findPaths runs a fresh strict-send search. Failures are rephrased with the
// asset pair so a missing pool reads differently from an outage.
func findPaths(ctx context.Context, ledger Ledger, source Asset, amount string, dest Asset) ([]Path, error) {
	paths, err := ledger.StrictSendPaths(ctx, source, amount, dest)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, newError(KindPathSearch, err,
			"Failed to find swap path: %v. This may be because there is no liquidity pool available for %s.",
			err, describePair(source, dest))
	}
	if len(paths) == 0 {
		return nil, newError(KindNoPathFound, nil,
			"No swap path found from %s. There may not be enough liquidity or no liquidity pool exists for this pair.",
			describePair(source, dest))
	}
	return paths, nil
}

// onceSeq yields paths on the first range only. Later ranges see nothing:
// reserves move, so a quote is re-fetched rather than replayed.
func onceSeq(paths []Path) iter.Seq[Path] {
	var used atomic.Bool
	return func(yield func(Path) bool) {
		if used.Swap(true) {
			return
		}
		for _, p := range paths {
			if !yield(p) {
				return
			}
		}
	}
}
