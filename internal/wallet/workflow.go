package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/OshiSharma1222/starquik/internal/api"
	"github.com/OshiSharma1222/starquik/internal/stellar"
)

// State is the position of one write attempt in the build, sign, submit
// sequence.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateAwaitingSignature
	StateSubmitting
	// terminal states
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateAwaitingSignature:
		return "awaiting_signature"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrAttemptUsed = errors.New("attempt has already been run")

// Backend is the server surface the orchestrator needs.
type Backend interface {
	Build(ctx context.Context, req stellar.Request) (api.BuildResponse, error)
	Submit(ctx context.Context, signedXDR string) (stellar.SubmitResult, error)
	Account(ctx context.Context, accountID string) (stellar.Account, error)
	AccountPools(ctx context.Context, accountID string) ([]stellar.PoolShare, error)
}

// Attempt is a single user-initiated write. It can be run once; a retry
// needs a new attempt and therefore a freshly built envelope.
type Attempt struct {
	ID      string
	Request stellar.Request

	used atomic.Bool

	mu      sync.Mutex
	state   State
	history []State
}

func NewAttempt(req stellar.Request) *Attempt {
	return &Attempt{
		ID:      uuid.NewString(),
		Request: req,
		state:   StateIdle,
		history: []State{StateIdle},
	}
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History lists every state the attempt has passed through.
func (a *Attempt) History() []State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]State(nil), a.history...)
}

func (a *Attempt) set(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
	a.history = append(a.history, s)
}

// Result is the settled outcome of an attempt.
type Result struct {
	AttemptID      string
	Operation      stellar.Operation
	Success        bool
	Hash           string
	Ledger         int32
	PoolID         string
	ExpectedAmount string
	MinAmount      string
	Err            error
}

// Snapshot is the read state refreshed after every settled attempt.
type Snapshot struct {
	Account     stellar.Account
	Pools       []stellar.PoolShare
	RefreshedAt time.Time
	Err         error
}

type Config struct {
	Passphrase string
	// SettlePause separates the two attempts of ProvideLiquidity.
	SettlePause time.Duration
	PoolFeeBP   int32
}

const DefaultSettlePause = 2 * time.Second

// Orchestrator runs write attempts for one signer. Attempts are serialized
// so two envelopes built from the same sequence number are never in flight
// together.
type Orchestrator struct {
	backend  Backend
	signer   Signer
	notifier Notifier
	cfg      Config
	logger   *logrus.Entry

	writeMu sync.Mutex

	snapMu   sync.RWMutex
	snapshot Snapshot
}

func NewOrchestrator(backend Backend, signer Signer, notifier Notifier, cfg Config, logger *logrus.Logger) *Orchestrator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Orchestrator{
		backend:  backend,
		signer:   signer,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.WithField("pkg", "wallet"),
	}
}

// PublicKey is the account the orchestrator acts for.
func (o *Orchestrator) PublicKey() string {
	return o.signer.PublicKey()
}

// Do runs a fresh attempt for req.
func (o *Orchestrator) Do(ctx context.Context, req stellar.Request) (Result, error) {
	return o.Run(ctx, NewAttempt(req))
}

// Run takes the attempt through build, sign and submit, then refreshes the
// read state whatever the outcome.
func (o *Orchestrator) Run(ctx context.Context, a *Attempt) (Result, error) {
	if a.used.Swap(true) {
		return Result{AttemptID: a.ID, Operation: a.Request.Operation(), Err: ErrAttemptUsed}, ErrAttemptUsed
	}

	o.writeMu.Lock()
	res := o.execute(ctx, a)
	if res.Err != nil {
		a.set(StateFailed)
	} else {
		a.set(StateSucceeded)
	}
	o.writeMu.Unlock()

	log := o.logger.WithFields(logrus.Fields{
		"attempt":   a.ID,
		"operation": res.Operation,
	})
	if res.Err != nil {
		log.WithError(res.Err).Warn("attempt failed")
		o.notify(a, LevelError, res.Err.Error())
	} else {
		log.WithField("hash", res.Hash).Info("attempt succeeded")
		o.notify(a, LevelSuccess, successMessage(res))
	}

	o.Refresh(ctx)
	return res, res.Err
}

func (o *Orchestrator) execute(ctx context.Context, a *Attempt) Result {
	op := a.Request.Operation()
	res := Result{AttemptID: a.ID, Operation: op}

	a.set(StateBuilding)
	o.notify(a, LevelLoading, fmt.Sprintf("Building %s transaction...", op))
	built, err := o.backend.Build(ctx, a.Request)
	if err != nil {
		res.Err = err
		return res
	}
	res.PoolID = built.PoolID
	res.ExpectedAmount = built.ExpectedAmount
	res.MinAmount = built.MinAmount

	a.set(StateAwaitingSignature)
	o.notify(a, LevelLoading, "Please confirm in your wallet...")
	signed, err := o.signer.Sign(ctx, built.XDR, o.cfg.Passphrase)
	if err != nil {
		if stellar.KindOf(err) != stellar.KindSignerRejected {
			err = &stellar.Error{Kind: stellar.KindSignerRejected, Message: err.Error(), Err: err}
		}
		res.Err = err
		return res
	}

	a.set(StateSubmitting)
	o.notify(a, LevelLoading, "Submitting transaction...")
	// a submission in flight is not cancelled
	submitted, err := o.backend.Submit(context.WithoutCancel(ctx), signed)
	if err != nil {
		res.Err = err
		return res
	}

	res.Success = true
	res.Hash = submitted.Hash
	res.Ledger = submitted.Ledger
	return res
}

func (o *Orchestrator) notify(a *Attempt, level Level, msg string) {
	o.notifier.Notify(Notification{
		AttemptID: a.ID,
		Operation: a.Request.Operation(),
		Level:     level,
		Message:   msg,
	})
}

func successMessage(res Result) string {
	switch res.Operation {
	case stellar.OpSwap:
		return fmt.Sprintf("Swap submitted, expecting ~%s (minimum %s)", res.ExpectedAmount, res.MinAmount)
	case stellar.OpPoolTrustline:
		return "Pool trustline created for " + res.PoolID
	default:
		return fmt.Sprintf("%s submitted in ledger %d", res.Operation, res.Ledger)
	}
}

// Refresh reloads the account and its pool positions. Failures are kept in
// the snapshot; stale reads are tolerated.
func (o *Orchestrator) Refresh(ctx context.Context) Snapshot {
	account := o.signer.PublicKey()

	var (
		acc   stellar.Account
		pools []stellar.PoolShare
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		acc, err = o.backend.Account(egCtx, account)
		return err
	})
	eg.Go(func() error {
		var err error
		pools, err = o.backend.AccountPools(egCtx, account)
		return err
	})
	err := eg.Wait()

	o.snapMu.Lock()
	defer o.snapMu.Unlock()
	if err != nil {
		o.logger.WithError(err).Warn("failed to refresh account state")
		o.snapshot.Err = err
		return o.snapshot
	}
	o.snapshot = Snapshot{Account: acc, Pools: pools, RefreshedAt: time.Now()}
	return o.snapshot
}

// Snapshot returns the last refreshed read state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snapshot
}
