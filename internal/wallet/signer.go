package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

// Signer holds the private key. It signs an envelope for a network
// passphrase or reports a rejection.
type Signer interface {
	PublicKey() string
	Sign(ctx context.Context, envelopeXDR, passphrase string) (string, error)
}

// Passphrase maps a network name as wallets display it to its passphrase.
func Passphrase(name string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "TESTNET":
		return network.TestNetworkPassphrase, nil
	case "PUBLIC", "MAINNET":
		return network.PublicNetworkPassphrase, nil
	default:
		return "", fmt.Errorf("unknown network %q", name)
	}
}

// KeypairSigner signs with a local secret seed.
type KeypairSigner struct {
	kp *keypair.Full
}

func NewKeypairSigner(seed string) (*KeypairSigner, error) {
	kp, err := keypair.ParseFull(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid secret seed: %w", err)
	}
	return &KeypairSigner{kp: kp}, nil
}

func (s *KeypairSigner) PublicKey() string {
	return s.kp.Address()
}

func (s *KeypairSigner) Sign(ctx context.Context, envelopeXDR, passphrase string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", rejected(err, "signing cancelled")
	}

	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", rejected(err, "cannot decode envelope: %v", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", rejected(nil, "fee bump envelopes are not supported")
	}
	if src := tx.SourceAccount().AccountID; src != s.kp.Address() {
		return "", rejected(nil, "envelope source %s does not match signer %s", src, s.kp.Address())
	}

	signed, err := tx.Sign(passphrase, s.kp)
	if err != nil {
		return "", rejected(err, "failed to sign: %v", err)
	}
	out, err := signed.Base64()
	if err != nil {
		return "", rejected(err, "failed to encode signed envelope: %v", err)
	}
	return out, nil
}

// ConfirmFunc asks the user to approve a signature.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// ConfirmingSigner asks for approval before delegating to the wrapped signer.
type ConfirmingSigner struct {
	next    Signer
	confirm ConfirmFunc
}

func NewConfirmingSigner(next Signer, confirm ConfirmFunc) *ConfirmingSigner {
	return &ConfirmingSigner{next: next, confirm: confirm}
}

func (s *ConfirmingSigner) PublicKey() string {
	return s.next.PublicKey()
}

func (s *ConfirmingSigner) Sign(ctx context.Context, envelopeXDR, passphrase string) (string, error) {
	prompt, err := describeEnvelope(envelopeXDR)
	if err != nil {
		return "", rejected(err, "cannot decode envelope: %v", err)
	}
	ok, err := s.confirm(ctx, prompt)
	if err != nil {
		return "", rejected(err, "confirmation failed: %v", err)
	}
	if !ok {
		return "", rejected(nil, "user declined to sign")
	}
	return s.next.Sign(ctx, envelopeXDR, passphrase)
}

func describeEnvelope(envelopeXDR string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", err
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "fee bump transaction", nil
	}
	ops := make([]string, 0, len(tx.Operations()))
	for _, op := range tx.Operations() {
		ops = append(ops, strings.TrimPrefix(fmt.Sprintf("%T", op), "*txnbuild."))
	}
	return fmt.Sprintf("sign %s from %s (seq %d, fee %d stroops)?",
		strings.Join(ops, ", "), tx.SourceAccount().AccountID, tx.SequenceNumber(), tx.MaxFee()), nil
}

func rejected(err error, format string, args ...any) error {
	return &stellar.Error{Kind: stellar.KindSignerRejected, Message: fmt.Sprintf(format, args...), Err: err}
}
