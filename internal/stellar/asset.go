package stellar

import (
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
)

const nativeCode = "XLM"

// Asset identifies a ledger asset by code and issuer. The native asset has no issuer.
type Asset struct {
	Code   string `json:"code" validate:"required"`
	Issuer string `json:"issuer,omitempty"`
}

// NativeAsset returns the lumen.
func NativeAsset() Asset {
	return Asset{Code: nativeCode}
}

// IsNative reports whether the asset is the lumen. A missing code is not.
func (a Asset) IsNative() bool {
	return a.Issuer == "" && (a.Code == nativeCode || a.Code == "native")
}

// Equal compares code and issuer exactly.
func (a Asset) Equal(b Asset) bool {
	if a.IsNative() || b.IsNative() {
		return a.IsNative() && b.IsNative()
	}
	return a.Code == b.Code && a.Issuer == b.Issuer
}

func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return a.Code + ":" + a.Issuer
}

// Validate rejects credit assets with a missing issuer or malformed code.
func (a Asset) Validate() error {
	if a.IsNative() {
		return nil
	}
	if err := validateCode(a.Code); err != nil {
		return err
	}
	if a.Issuer == "" {
		return newError(KindInvalidAsset, nil, "asset %s requires an issuer", a.Code)
	}
	if !strkey.IsValidEd25519PublicKey(a.Issuer) {
		return newError(KindInvalidAsset, nil, "asset %s has an invalid issuer %q", a.Code, a.Issuer)
	}
	return nil
}

func validateCode(code string) error {
	if code == "" {
		return validationError("asset code is required")
	}
	if len(code) > 12 {
		return newError(KindInvalidAsset, nil, "asset code %q is longer than 12 characters", code)
	}
	for _, r := range code {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return newError(KindInvalidAsset, nil, "asset code %q must be alphanumeric", code)
		}
	}
	return nil
}

// typeRank follows the network's asset type ordering: native, alphanum4, alphanum12.
func (a Asset) typeRank() int {
	switch {
	case a.IsNative():
		return 0
	case len(a.Code) <= 4:
		return 1
	default:
		return 2
	}
}

// Compare orders assets the way the network orders liquidity pool
// constituents: by asset type, then code, then issuer strkey. This is the
// same comparison the SDK applies before hashing pool parameters.
func Compare(a, b Asset) int {
	if ra, rb := a.typeRank(), b.typeRank(); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if a.IsNative() {
		return 0
	}
	if c := strings.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	return strings.Compare(a.Issuer, b.Issuer)
}

// OrderPair returns the two assets in canonical order.
func OrderPair(a, b Asset) (Asset, Asset) {
	if Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

func (a Asset) toTxnbuild() (txnbuild.Asset, error) {
	if a.IsNative() {
		return txnbuild.NativeAsset{}, nil
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}, nil
}

// ParseAsset accepts "native", "XLM", or "CODE:ISSUER".
func ParseAsset(s string) (Asset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Asset{}, validationError("asset is required")
	}
	if s == "native" || s == nativeCode {
		return NativeAsset(), nil
	}
	code, issuer, ok := strings.Cut(s, ":")
	if !ok {
		return Asset{}, newError(KindInvalidAsset, nil, "asset %q must be native or CODE:ISSUER", s)
	}
	a := Asset{Code: code, Issuer: issuer}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// PathAsset is the Horizon shape of an asset hop in a payment path.
type PathAsset struct {
	Type   string `json:"asset_type"`
	Code   string `json:"asset_code,omitempty"`
	Issuer string `json:"asset_issuer,omitempty"`
}

func (p PathAsset) Asset() Asset {
	if p.Type == "native" {
		return NativeAsset()
	}
	return Asset{Code: p.Code, Issuer: p.Issuer}
}

func validateAccountID(id string) error {
	if id == "" {
		return validationError("publicKey is required")
	}
	if !strkey.IsValidEd25519PublicKey(id) {
		return validationError("invalid public key %q", id)
	}
	return nil
}

func describe(a Asset) string {
	if a.IsNative() {
		return nativeCode
	}
	return a.Code
}
