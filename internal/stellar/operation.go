package stellar

import "time"

// Operation enumerates the write operations an intent can carry.
type Operation string

const (
	OpTrustline     Operation = "trustline"
	OpPoolTrustline Operation = "pool-trustline"
	OpDeposit       Operation = "deposit"
	OpWithdraw      Operation = "withdraw"
	OpSwap          Operation = "swap"
)

// Request is implemented by each operation's request type.
type Request interface {
	Operation() Operation
	Account() string
}

type TrustlineRequest struct {
	PublicKey   string `json:"publicKey" validate:"required"`
	AssetCode   string `json:"assetCode" validate:"required"`
	AssetIssuer string `json:"assetIssuer"`
}

type PoolTrustlineRequest struct {
	PublicKey string `json:"publicKey" validate:"required"`
	AssetA    Asset  `json:"assetA"`
	AssetB    Asset  `json:"assetB"`
}

type DepositRequest struct {
	PublicKey  string `json:"publicKey" validate:"required"`
	PoolID     string `json:"poolId" validate:"required"`
	MaxAmountA Amount `json:"maxAmountA" validate:"required"`
	MaxAmountB Amount `json:"maxAmountB" validate:"required"`
	MinPrice   Amount `json:"minPrice,omitempty"`
	MaxPrice   Amount `json:"maxPrice,omitempty"`
}

type WithdrawRequest struct {
	PublicKey  string `json:"publicKey" validate:"required"`
	PoolID     string `json:"poolId" validate:"required"`
	Amount     Amount `json:"amount" validate:"required"`
	MinAmountA Amount `json:"minAmountA,omitempty"`
	MinAmountB Amount `json:"minAmountB,omitempty"`
}

type SwapRequest struct {
	PublicKey   string `json:"publicKey" validate:"required"`
	SourceAsset Asset  `json:"sourceAsset"`
	DestAsset   Asset  `json:"destAsset"`
	Amount      Amount `json:"amount" validate:"required"`
	Slippage    Amount `json:"slippage,omitempty"`
}

func (TrustlineRequest) Operation() Operation     { return OpTrustline }
func (PoolTrustlineRequest) Operation() Operation { return OpPoolTrustline }
func (DepositRequest) Operation() Operation       { return OpDeposit }
func (WithdrawRequest) Operation() Operation      { return OpWithdraw }
func (SwapRequest) Operation() Operation          { return OpSwap }

func (r TrustlineRequest) Account() string     { return r.PublicKey }
func (r PoolTrustlineRequest) Account() string { return r.PublicKey }
func (r DepositRequest) Account() string       { return r.PublicKey }
func (r WithdrawRequest) Account() string      { return r.PublicKey }
func (r SwapRequest) Account() string          { return r.PublicKey }

// Intent is an unsigned transaction envelope carrying exactly one operation.
type Intent struct {
	Operation Operation
	Source    string
	Sequence  int64
	ExpiresAt time.Time
	XDR       string

	// set by pool-trustline
	PoolID string

	// set by swap
	ExpectedAmount string
	MinAmount      string
	Path           []PathAsset
}
