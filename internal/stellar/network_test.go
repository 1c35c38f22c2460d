package stellar

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OshiSharma1222/starquik/internal/metrics"
)

func TestNetwork_BuildDispatch(t *testing.T) {
	ledger := newFakeLedger()
	kp := randomAccount(t)
	ledger.addAccount(kp.Address(), 3)
	ledger.paths = []Path{{SourceAmount: "1.0000000", DestinationAmount: "2.0000000"}}

	logger, hook := test.NewNullLogger()
	n := NewNetwork(ledger, nil, testBuildConfig(), metrics.NewLedgerMetrics(), logger)
	usdc := Asset{Code: "USDC", Issuer: usdcIssuer}
	poolID := testPoolID(t)

	requests := []Request{
		TrustlineRequest{PublicKey: kp.Address(), AssetCode: "USDC", AssetIssuer: usdcIssuer},
		PoolTrustlineRequest{PublicKey: kp.Address(), AssetA: usdc, AssetB: NativeAsset()},
		DepositRequest{PublicKey: kp.Address(), PoolID: poolID, MaxAmountA: "1", MaxAmountB: "1"},
		WithdrawRequest{PublicKey: kp.Address(), PoolID: poolID, Amount: "1"},
		SwapRequest{PublicKey: kp.Address(), SourceAsset: NativeAsset(), DestAsset: usdc, Amount: "1"},
	}

	for _, req := range requests {
		t.Run(string(req.Operation()), func(t *testing.T) {
			hook.Reset()
			intent, err := n.Build(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, req.Operation(), intent.Operation)
			assert.Equal(t, int64(4), intent.Sequence)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.InfoLevel, entry.Level)
			assert.Equal(t, req.Operation(), entry.Data["operation"])
		})
	}
}

func TestNetwork_BuildFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewNetwork(newFakeLedger(), nil, testBuildConfig(), nil, logger)

	_, err := n.Build(context.Background(), TrustlineRequest{
		PublicKey:   randomAccount(t).Address(),
		AssetCode:   "USDC",
		AssetIssuer: usdcIssuer,
	})
	require.ErrorIs(t, err, ErrAccountNotFound)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "failed to build intent", entry.Message)
}
