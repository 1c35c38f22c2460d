package stellar

import (
	"strconv"
	"time"
)

const BalanceTypePoolShares = "liquidity_pool_shares"

// Account is an immutable snapshot of an account as last seen on the ledger.
type Account struct {
	ID            string     `json:"id"`
	Sequence      int64      `json:"sequence,string"`
	Balances      []Balance  `json:"balances"`
	SubentryCount int32      `json:"subentry_count"`
	Thresholds    Thresholds `json:"thresholds"`
}

type Thresholds struct {
	Low    byte `json:"low_threshold"`
	Medium byte `json:"med_threshold"`
	High   byte `json:"high_threshold"`
}

// Balance is one held asset or pool share position.
type Balance struct {
	Balance         string `json:"balance"`
	Limit           string `json:"limit,omitempty"`
	AssetType       string `json:"asset_type"`
	AssetCode       string `json:"asset_code,omitempty"`
	AssetIssuer     string `json:"asset_issuer,omitempty"`
	LiquidityPoolID string `json:"liquidity_pool_id,omitempty"`
}

func (b Balance) IsPoolShare() bool {
	return b.AssetType == BalanceTypePoolShares
}

// HoldsPoolShares reports whether the account already trusts the given pool.
func (a Account) HoldsPoolShares(poolID string) bool {
	for _, b := range a.Balances {
		if b.IsPoolShare() && b.LiquidityPoolID == poolID {
			return true
		}
	}
	return false
}

type Reserve struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type Pool struct {
	ID              string    `json:"id"`
	PagingToken     string    `json:"paging_token,omitempty"`
	FeeBP           uint32    `json:"fee_bp"`
	Type            string    `json:"type"`
	TotalTrustlines uint64    `json:"total_trustlines,string"`
	TotalShares     string    `json:"total_shares"`
	Reserves        []Reserve `json:"reserves"`
}

// PoolShare is an account's share balance, optionally enriched with the pool.
type PoolShare struct {
	Balance
	PoolDetails *Pool `json:"pool_details,omitempty"`
}

// TxRecord is the trimmed history entry returned to clients.
type TxRecord struct {
	ID             string    `json:"id"`
	Hash           string    `json:"hash"`
	CreatedAt      time.Time `json:"created_at"`
	Successful     bool      `json:"successful"`
	FeeCharged     string    `json:"fee_charged"`
	OperationCount int32     `json:"operation_count"`
	SourceAccount  string    `json:"source_account"`
	PagingToken    string    `json:"paging_token"`
}

func feeString(stroops int64) string {
	return strconv.FormatInt(stroops, 10)
}

type TxPage struct {
	Transactions []TxRecord `json:"transactions"`
	NextCursor   *string    `json:"next_cursor"`
}

// Path is one strict-send path search result.
type Path struct {
	SourceAmount      string      `json:"source_amount"`
	DestinationAmount string      `json:"destination_amount"`
	Path              []PathAsset `json:"path"`
}

type AssetRecord struct {
	Type        string `json:"asset_type"`
	Code        string `json:"asset_code"`
	Issuer      string `json:"asset_issuer"`
	PagingToken string `json:"paging_token,omitempty"`
}

// SubmitResult is the network's acceptance record for a submitted envelope.
type SubmitResult struct {
	Hash        string `json:"hash"`
	Ledger      int32  `json:"ledger"`
	Successful  bool   `json:"successful"`
	EnvelopeXDR string `json:"envelope_xdr,omitempty"`
	ResultXDR   string `json:"result_xdr,omitempty"`
}
