package stellar

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/require"
)

const usdcIssuer = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"

var fixedNow = time.Unix(1_700_000_000, 0)

// fakeLedger keeps accounts in memory and enforces sequence numbers on
// submission the way the network does.
type fakeLedger struct {
	mu sync.Mutex

	accounts map[string]*Account
	pools    map[string]Pool
	poolErrs map[string]error
	txs      []TxRecord
	paths    []Path
	pathErr  error
	assets   []AssetRecord

	loadCalls int
	pathCalls int
	submitted []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts: map[string]*Account{},
		pools:    map[string]Pool{},
		poolErrs: map[string]error{},
	}
}

func (f *fakeLedger) addAccount(id string, seq int64, balances ...Balance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(balances) == 0 {
		balances = []Balance{{Balance: "10000.0000000", AssetType: "native"}}
	}
	f.accounts[id] = &Account{ID: id, Sequence: seq, Balances: balances}
}

func (f *fakeLedger) LoadAccount(_ context.Context, accountID string) (Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	acc, ok := f.accounts[accountID]
	if !ok {
		return Account{}, newError(KindAccountNotFound, nil, "account %s not found", accountID)
	}
	return *acc, nil
}

func (f *fakeLedger) LiquidityPools(_ context.Context, _ []string, limit uint) ([]Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Pool
	for _, p := range f.pools {
		if uint(len(out)) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeLedger) LiquidityPool(_ context.Context, poolID string) (Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.poolErrs[poolID]; err != nil {
		return Pool{}, err
	}
	p, ok := f.pools[poolID]
	if !ok {
		return Pool{}, newError(KindNotFound, nil, "pool %s not found", poolID)
	}
	return p, nil
}

// Transactions pages through txs, which are stored newest first.
func (f *fakeLedger) Transactions(_ context.Context, _ string, limit uint, cursor string) ([]TxRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := 0
	if cursor != "" {
		start = -1
		for i, tx := range f.txs {
			if tx.PagingToken == cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, validationError("unknown cursor %s", cursor)
		}
	}
	end := start + int(limit)
	if end > len(f.txs) {
		end = len(f.txs)
	}
	return append([]TxRecord(nil), f.txs[start:end]...), nil
}

func (f *fakeLedger) StrictSendPaths(_ context.Context, _ Asset, _ string, _ Asset) ([]Path, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pathCalls++
	if f.pathErr != nil {
		return nil, f.pathErr
	}
	return f.paths, nil
}

func (f *fakeLedger) Assets(_ context.Context, code string, limit uint) ([]AssetRecord, error) {
	var out []AssetRecord
	for _, a := range f.assets {
		if code != "" && a.Code != code {
			continue
		}
		if uint(len(out)) == limit {
			break
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeLedger) SubmitTransaction(_ context.Context, envelopeXDR string) (SubmitResult, error) {
	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return SubmitResult{}, err
	}
	tx, ok := generic.Transaction()
	if !ok {
		return SubmitResult{}, fmt.Errorf("fee bumps are not supported")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, envelopeXDR)

	acc, ok := f.accounts[tx.SourceAccount().AccountID]
	if !ok {
		return SubmitResult{}, &Error{
			Kind:        KindSubmissionRejected,
			Message:     "transaction rejected: tx_no_source_account",
			ResultCodes: &ResultCodes{Transaction: "tx_no_source_account"},
		}
	}
	if tx.SequenceNumber() != acc.Sequence+1 {
		return SubmitResult{}, &Error{
			Kind:        KindSubmissionRejected,
			Message:     "transaction rejected: tx_bad_seq",
			ResultCodes: &ResultCodes{Transaction: "tx_bad_seq"},
		}
	}
	acc.Sequence = tx.SequenceNumber()

	hash, err := tx.HashHex(network.TestNetworkPassphrase)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Hash: hash, Ledger: 42, Successful: true, EnvelopeXDR: envelopeXDR}, nil
}

func testBuildConfig() BuildConfig {
	cfg := DefaultBuildConfig(network.TestNetworkPassphrase)
	cfg.Now = func() time.Time { return fixedNow }
	return cfg
}

func testLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func randomAccount(t *testing.T) *keypair.Full {
	t.Helper()
	kp, err := keypair.Random()
	require.NoError(t, err)
	return kp
}

func decodeTx(t *testing.T, envelope string) *txnbuild.Transaction {
	t.Helper()
	generic, err := txnbuild.TransactionFromXDR(envelope)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	return tx
}

func signEnvelope(t *testing.T, envelope string, kp *keypair.Full) string {
	t.Helper()
	tx := decodeTx(t, envelope)
	signed, err := tx.Sign(network.TestNetworkPassphrase, kp)
	require.NoError(t, err)
	out, err := signed.Base64()
	require.NoError(t, err)
	return out
}
