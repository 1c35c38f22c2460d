package stellar

import (
	"context"
	"errors"
	"strings"

	"github.com/stellar/go/txnbuild"

	"github.com/OshiSharma1222/starquik/internal/metrics"
)

// Gateway forwards signed envelopes to the network exactly once.
type Gateway struct {
	ledger  Ledger
	metrics *metrics.LedgerMetrics
}

func NewGateway(ledger Ledger, m *metrics.LedgerMetrics) *Gateway {
	return &Gateway{ledger: ledger, metrics: m}
}

// Submit decodes the envelope locally, then forwards it without retrying.
// A rejection keeps the network's result codes.
func (g *Gateway) Submit(ctx context.Context, signedXDR string) (SubmitResult, error) {
	signedXDR = strings.TrimSpace(signedXDR)
	if err := checkEnvelope(signedXDR); err != nil {
		g.metrics.RecordSubmission(string(KindValidation))
		return SubmitResult{}, err
	}

	res, err := g.ledger.SubmitTransaction(ctx, signedXDR)
	if err != nil {
		g.metrics.RecordSubmission(submissionLabel(err))
		return SubmitResult{}, err
	}
	g.metrics.RecordSubmission("tx_success")
	return res, nil
}

func checkEnvelope(signedXDR string) error {
	if signedXDR == "" {
		return validationError("signedXdr is required")
	}
	generic, err := txnbuild.TransactionFromXDR(signedXDR)
	if err != nil {
		return newError(KindValidation, err, "signedXdr is not a valid transaction envelope: %v", err)
	}

	if tx, ok := generic.Transaction(); ok {
		if len(tx.Signatures()) == 0 {
			return validationError("transaction envelope is not signed")
		}
		return nil
	}
	if fb, ok := generic.FeeBump(); ok {
		if len(fb.Signatures()) == 0 {
			return validationError("fee bump envelope is not signed")
		}
	}
	return nil
}

func submissionLabel(err error) string {
	var e *Error
	if errors.As(err, &e) && e.ResultCodes != nil && e.ResultCodes.Transaction != "" {
		return e.ResultCodes.Transaction
	}
	return string(KindOf(err))
}
