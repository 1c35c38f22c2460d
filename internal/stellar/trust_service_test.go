package stellar

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTrustline_USDC(t *testing.T) {
	ledger := newFakeLedger()
	kp := randomAccount(t)
	ledger.addAccount(kp.Address(), 100)

	svc := NewTrustService(ledger, testBuildConfig())
	intent, err := svc.AddTrustline(context.Background(), TrustlineRequest{
		PublicKey:   kp.Address(),
		AssetCode:   "USDC",
		AssetIssuer: usdcIssuer,
	})
	require.NoError(t, err)

	assert.Equal(t, OpTrustline, intent.Operation)
	assert.Equal(t, kp.Address(), intent.Source)
	assert.Equal(t, int64(101), intent.Sequence)
	assert.Equal(t, fixedNow.Add(DefaultTimeout).Unix(), intent.ExpiresAt.Unix())

	tx := decodeTx(t, intent.XDR)
	assert.Equal(t, int64(txnbuild.MinBaseFee), tx.BaseFee())
	assert.Equal(t, int64(101), tx.SequenceNumber())
	assert.Equal(t, fixedNow.Add(DefaultTimeout).Unix(), tx.Timebounds().MaxTime)
	assert.Empty(t, tx.Signatures())

	ops := tx.Operations()
	require.Len(t, ops, 1)
	op, ok := ops[0].(*txnbuild.ChangeTrust)
	require.True(t, ok, "expected ChangeTrust, got %T", ops[0])
	assert.Equal(t, "USDC", op.Line.GetCode())
	assert.Equal(t, usdcIssuer, op.Line.GetIssuer())

	// building must not touch the account
	acc, err := ledger.LoadAccount(context.Background(), kp.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(100), acc.Sequence)
}

func TestAddTrustline_Errors(t *testing.T) {
	ledger := newFakeLedger()
	kp := randomAccount(t)
	ledger.addAccount(kp.Address(), 1)
	svc := NewTrustService(ledger, testBuildConfig())

	tests := []struct {
		name string
		req  TrustlineRequest
		want *Error
	}{
		{
			name: "missing issuer",
			req:  TrustlineRequest{PublicKey: kp.Address(), AssetCode: "USDC"},
			want: ErrInvalidAsset,
		},
		{
			name: "native",
			req:  TrustlineRequest{PublicKey: kp.Address(), AssetCode: "XLM"},
			want: ErrInvalidAsset,
		},
		{
			name: "bad issuer",
			req:  TrustlineRequest{PublicKey: kp.Address(), AssetCode: "USDC", AssetIssuer: "GBAD"},
			want: ErrInvalidAsset,
		},
		{
			name: "bad public key",
			req:  TrustlineRequest{PublicKey: "nope", AssetCode: "USDC", AssetIssuer: usdcIssuer},
			want: ErrValidation,
		},
		{
			name: "unknown account",
			req:  TrustlineRequest{PublicKey: randomAccount(t).Address(), AssetCode: "USDC", AssetIssuer: usdcIssuer},
			want: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTrustline(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v (%s)", err, KindOf(err))
		})
	}
}

func TestAddPoolTrustline_OrderIndependent(t *testing.T) {
	ledger := newFakeLedger()
	kp := randomAccount(t)
	ledger.addAccount(kp.Address(), 7)
	svc := NewTrustService(ledger, testBuildConfig())

	usdc := Asset{Code: "USDC", Issuer: usdcIssuer}
	other := Asset{Code: "EURC", Issuer: randomAccount(t).Address()}
	long := Asset{Code: "LONGASSET", Issuer: usdcIssuer}

	pairs := [][2]Asset{
		{NativeAsset(), usdc},
		{usdc, other},
		{long, usdc},
		{long, NativeAsset()},
	}

	for _, pair := range pairs {
		ab, err := svc.AddPoolTrustline(context.Background(), PoolTrustlineRequest{PublicKey: kp.Address(), AssetA: pair[0], AssetB: pair[1]})
		require.NoError(t, err)
		ba, err := svc.AddPoolTrustline(context.Background(), PoolTrustlineRequest{PublicKey: kp.Address(), AssetA: pair[1], AssetB: pair[0]})
		require.NoError(t, err)

		assert.Len(t, ab.PoolID, 64)
		assert.Equal(t, ab.PoolID, ba.PoolID)
		assert.Equal(t, ab.XDR, ba.XDR)

		id, err := PoolID(pair[1], pair[0], int32(txnbuild.LiquidityPoolFeeV18))
		require.NoError(t, err)
		assert.Equal(t, ab.PoolID, id)

		tx := decodeTx(t, ab.XDR)
		require.Len(t, tx.Operations(), 1)
		_, ok := tx.Operations()[0].(*txnbuild.ChangeTrust)
		assert.True(t, ok)
	}
}

func TestAddPoolTrustline_FeeChangesPoolID(t *testing.T) {
	usdc := Asset{Code: "USDC", Issuer: usdcIssuer}
	a, err := PoolID(NativeAsset(), usdc, 30)
	require.NoError(t, err)
	b, err := PoolID(NativeAsset(), usdc, 10)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAddPoolTrustline_IdenticalAssets(t *testing.T) {
	ledger := newFakeLedger()
	kp := randomAccount(t)
	ledger.addAccount(kp.Address(), 1)
	svc := NewTrustService(ledger, testBuildConfig())

	usdc := Asset{Code: "USDC", Issuer: usdcIssuer}
	_, err := svc.AddPoolTrustline(context.Background(), PoolTrustlineRequest{PublicKey: kp.Address(), AssetA: usdc, AssetB: usdc})
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestAddPoolTrustline_MissingAsset(t *testing.T) {
	ledger := newFakeLedger()
	kp := randomAccount(t)
	ledger.addAccount(kp.Address(), 1)
	svc := NewTrustService(ledger, testBuildConfig())

	usdc := Asset{Code: "USDC", Issuer: usdcIssuer}
	_, err := svc.AddPoolTrustline(context.Background(), PoolTrustlineRequest{PublicKey: kp.Address(), AssetA: usdc})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "assetB.code is required")

	_, err = svc.AddPoolTrustline(context.Background(), PoolTrustlineRequest{PublicKey: kp.Address(), AssetB: usdc})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "assetA.code is required")

	assert.Zero(t, ledger.loadCalls)
}
