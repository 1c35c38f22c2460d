package stellar

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/metrics"
)

// Network bundles the builders, the gateway and the query facade for one
// ledger network.
type Network struct {
	Trust   *TrustService
	Pool    *PoolService
	Swap    *SwapService
	Gateway *Gateway
	Query   *QueryService

	passphrase string
	metrics    *metrics.LedgerMetrics
	logger     *logrus.Entry
}

func NewNetwork(
	ledger Ledger,
	faucet Faucet,
	cfg BuildConfig,
	m *metrics.LedgerMetrics,
	logger *logrus.Logger,
) *Network {
	return &Network{
		Trust:      NewTrustService(ledger, cfg),
		Pool:       NewPoolService(ledger, cfg),
		Swap:       NewSwapService(ledger, cfg),
		Gateway:    NewGateway(ledger, m),
		Query:      NewQueryService(ledger, faucet, logger),
		passphrase: cfg.NetworkPassphrase,
		metrics:    m,
		logger:     logger.WithField("pkg", "stellar"),
	}
}

// Passphrase is the network passphrase envelopes are built for.
func (n *Network) Passphrase() string {
	return n.passphrase
}

// Build dispatches an operation request to its builder.
func (n *Network) Build(ctx context.Context, req Request) (Intent, error) {
	start := time.Now()

	var (
		intent Intent
		err    error
	)
	switch r := req.(type) {
	case TrustlineRequest:
		intent, err = n.Trust.AddTrustline(ctx, r)
	case PoolTrustlineRequest:
		intent, err = n.Trust.AddPoolTrustline(ctx, r)
	case DepositRequest:
		intent, err = n.Pool.Deposit(ctx, r)
	case WithdrawRequest:
		intent, err = n.Pool.Withdraw(ctx, r)
	case SwapRequest:
		intent, err = n.Swap.Swap(ctx, r)
	default:
		return Intent{}, validationError("unsupported operation %T", req)
	}

	fields := logrus.Fields{
		"operation": req.Operation(),
		"account":   req.Account(),
		"took":      time.Since(start).String(),
	}
	if err != nil {
		n.metrics.RecordIntent(string(req.Operation()), string(KindOf(err)))
		n.logger.WithFields(fields).WithError(err).Warn("failed to build intent")
		return Intent{}, err
	}

	n.metrics.RecordIntent(string(req.Operation()), "success")
	fields["sequence"] = intent.Sequence
	n.logger.WithFields(fields).Info("intent built")
	return intent, nil
}

// Submit forwards a signed envelope once.
func (n *Network) Submit(ctx context.Context, signedXDR string) (SubmitResult, error) {
	res, err := n.Gateway.Submit(ctx, signedXDR)
	if err != nil {
		n.logger.WithError(err).Warn("submission rejected")
		return SubmitResult{}, err
	}
	n.logger.WithFields(logrus.Fields{
		"hash":   res.Hash,
		"ledger": res.Ledger,
	}).Info("transaction submitted")
	return res, nil
}
