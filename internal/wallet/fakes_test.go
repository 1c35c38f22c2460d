package wallet

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OshiSharma1222/starquik/internal/api"
	"github.com/OshiSharma1222/starquik/internal/stellar"
)

type fakeBackend struct {
	mu sync.Mutex

	account   stellar.Account
	built     []stellar.Request
	submitted []string
	refreshes int

	buildErr  error
	submitErr error
	poolID    string
	delay     time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeBackend) enter() func() {
	n := f.inFlight.Add(1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeBackend) Build(_ context.Context, req stellar.Request) (api.BuildResponse, error) {
	defer f.enter()()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built = append(f.built, req)
	if f.buildErr != nil {
		return api.BuildResponse{}, f.buildErr
	}
	res := api.BuildResponse{XDR: "unsigned:" + string(req.Operation())}
	if req.Operation() == stellar.OpPoolTrustline {
		res.PoolID = f.poolID
	}
	return res, nil
}

func (f *fakeBackend) Submit(_ context.Context, signedXDR string) (stellar.SubmitResult, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, signedXDR)
	if f.submitErr != nil {
		return stellar.SubmitResult{}, f.submitErr
	}
	return stellar.SubmitResult{Hash: "hash-" + signedXDR, Ledger: 10, Successful: true}, nil
}

func (f *fakeBackend) Account(_ context.Context, _ string) (stellar.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.account, nil
}

func (f *fakeBackend) AccountPools(context.Context, string) ([]stellar.PoolShare, error) {
	return []stellar.PoolShare{}, nil
}

func (f *fakeBackend) snapshot() (built []stellar.Request, submitted []string, refreshes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stellar.Request(nil), f.built...), append([]string(nil), f.submitted...), f.refreshes
}

type fakeSigner struct {
	key    string
	err    error
	signed atomic.Int32
}

func (s *fakeSigner) PublicKey() string { return s.key }

func (s *fakeSigner) Sign(_ context.Context, envelopeXDR, passphrase string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.signed.Add(1)
	return "signed(" + envelopeXDR + "," + passphrase + ")", nil
}

type recordingNotifier struct {
	mu  sync.Mutex
	all []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

func (r *recordingNotifier) levels() []Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Level, 0, len(r.all))
	for _, n := range r.all {
		out = append(out, n.Level)
	}
	return out
}
