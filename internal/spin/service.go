package spin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mateovidal/spinmart-backend/pkg/config"
	pkgerrors "github.com/mateovidal/spinmart-backend/pkg/errors"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
	"github.com/mateovidal/spinmart-backend/pkg/metrics"
	"github.com/mateovidal/spinmart-backend/pkg/vault"
)

type State string

const (
	StateReady    State = "ready"
	StateSpinning State = "spinning"
	StateWon      State = "won"
	StateLost     State = "lost"
	StateClaimed  State = "claimed"
)

// Attempts tracks the draw budget for one session.
type Attempts struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// PendingDiscount is the single drawn-but-unredeemed prize a session may hold.
type PendingDiscount struct {
	Value     int64     `json:"value"`
	Claimed   bool      `json:"claimed"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the machine state handed to the presentation layer.
type Snapshot struct {
	State     State            `json:"state"`
	Attempts  Attempts         `json:"attempts"`
	Pending   *PendingDiscount `json:"pending,omitempty"`
	Outcome   *Outcome         `json:"outcome,omitempty"`
	Dismissed bool             `json:"dismissed"`
	Offered   bool             `json:"offered"`
}

// Service drives the discount game: attempt ledger, draw engine and the
// claim state machine, all persisted through the vault.
type Service interface {
	LoadInitialState(ctx context.Context, sessionID string) (Snapshot, error)
	GetAttempts(ctx context.Context, sessionID string) (Attempts, error)
	Spin(ctx context.Context, sessionID string) (Snapshot, error)
	Claim(ctx context.Context, sessionID string) (Snapshot, error)
	Dismiss(ctx context.Context, sessionID string) error
	Reset(ctx context.Context, sessionID string) error
	HardReset(ctx context.Context, sessionID string) error
	RedeemableDiscount(ctx context.Context, sessionID string) int64
	ClearRedeemed(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	Vault    *vault.Vault
	Config   config.SpinConfig
	Clock    Clock
	Logger   *logger.Logger
	Metrics  *metrics.PromoMetrics
	Winnable []int64
	Segments []int64

	// drawFn is injectable in tests; defaults to Draw.
	drawFn func(winnable, segments []int64) (Outcome, error)
}

type service struct {
	vault    *vault.Vault
	cfg      config.SpinConfig
	clock    Clock
	logg     *logger.Logger
	metrics  *metrics.PromoMetrics
	winnable []int64
	segments []int64
	drawFn   func(winnable, segments []int64) (Outcome, error)

	mu       sync.Mutex
	inflight map[string]Timer
}

// NewService builds the spin service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Vault == nil {
		return nil, fmt.Errorf("vault required")
	}
	if params.Clock == nil {
		params.Clock = NewClock()
	}
	if params.Config.TotalAttempts <= 0 {
		return nil, fmt.Errorf("total attempts must be positive")
	}
	if len(params.Winnable) == 0 {
		params.Winnable = DefaultWinnableValues
	}
	if len(params.Segments) == 0 {
		params.Segments = DefaultDisplaySegments
	}
	for _, value := range params.Winnable {
		if !contains(params.Segments, value) {
			return nil, fmt.Errorf("winnable value %d missing from display segments", value)
		}
	}
	drawFn := params.drawFn
	if drawFn == nil {
		drawFn = Draw
	}
	return &service{
		vault:    params.Vault,
		cfg:      params.Config,
		clock:    params.Clock,
		logg:     params.Logger,
		metrics:  params.Metrics,
		winnable: params.Winnable,
		segments: params.Segments,
		drawFn:   drawFn,
		inflight: map[string]Timer{},
	}, nil
}

func attemptsKey(sessionID string) string { return "spin:attempts:" + sessionID }
func pendingKey(sessionID string) string  { return "spin:pending:" + sessionID }
func claimedKey(sessionID string) string  { return "spin:claimed:" + sessionID }
func dismissKey(sessionID string) string  { return "spin:dismissed:" + sessionID }
func redeemKey(sessionID string) string   { return "spin:redeem:" + sessionID }

// LoadInitialState reconstructs the machine for a fresh mount. The durable
// claimed flag wins over everything else: once set, the game is never
// offered again for this session.
func (s *service) LoadInitialState(ctx context.Context, sessionID string) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	attempts := s.readAttempts(ctx, sessionID)
	dismissed := s.readFlag(ctx, dismissKey(sessionID))

	if s.readFlag(ctx, claimedKey(sessionID)) {
		return Snapshot{State: StateClaimed, Attempts: attempts, Dismissed: dismissed, Offered: false}, nil
	}

	if pending, ok := s.readPending(ctx, sessionID); ok && !pending.Claimed {
		return Snapshot{State: StateWon, Attempts: attempts, Pending: &pending, Dismissed: dismissed, Offered: true}, nil
	}

	if attempts.Remaining == 0 {
		return Snapshot{State: StateLost, Attempts: attempts, Dismissed: dismissed, Offered: true}, nil
	}

	return Snapshot{State: StateReady, Attempts: attempts, Dismissed: dismissed, Offered: true}, nil
}

// GetAttempts returns the current ledger, initializing to a full budget when
// the persisted state is absent or unreadable.
func (s *service) GetAttempts(ctx context.Context, sessionID string) (Attempts, error) {
	if sessionID == "" {
		return Attempts{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.readAttempts(ctx, sessionID), nil
}

// Spin consumes one attempt, draws an outcome and schedules the reveal. An
// unclaimed win still on the table is forfeited first; that forfeiture is
// deliberate, logged and counted.
func (s *service) Spin(ctx context.Context, sessionID string) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	if _, busy := s.inflight[sessionID]; busy {
		s.mu.Unlock()
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "spin already in progress")
	}
	// Reserve the slot before any persistence so a concurrent request on the
	// same session cannot double-decrement.
	s.inflight[sessionID] = nil
	s.mu.Unlock()

	snapshot, err := s.spinLocked(ctx, sessionID)
	if err != nil {
		s.mu.Lock()
		delete(s.inflight, sessionID)
		s.mu.Unlock()
		return Snapshot{}, err
	}
	return snapshot, nil
}

func (s *service) spinLocked(ctx context.Context, sessionID string) (Snapshot, error) {
	if s.readFlag(ctx, claimedKey(sessionID)) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "discount already claimed")
	}

	attempts := s.readAttempts(ctx, sessionID)
	if attempts.Remaining == 0 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeExhausted, "no spin attempts remaining")
	}

	if pending, ok := s.readPending(ctx, sessionID); ok && !pending.Claimed {
		// Spinning again walks away from a win that was never claimed.
		s.logWarn(ctx, sessionID, fmt.Sprintf("forfeiting unclaimed discount of %d", pending.Value))
		s.metrics.IncForfeit()
		if err := s.vault.Clear(ctx, pendingKey(sessionID)); err != nil {
			return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard pending discount")
		}
	}

	attempts.Remaining--
	if attempts.Remaining < 0 {
		attempts.Remaining = 0
	}
	if err := s.vault.Write(ctx, attemptsKey(sessionID), attempts, s.cfg.StateTTL); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist attempts")
	}

	outcome, err := s.drawFn(s.winnable, s.segments)
	if err != nil {
		// The attempt is already spent; a failed draw yields no outcome,
		// never a duplicate grant.
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "draw outcome")
	}

	s.metrics.IncSpin()

	s.mu.Lock()
	s.inflight[sessionID] = s.clock.AfterFunc(s.cfg.RevealDelay, func() {
		s.resolve(sessionID, outcome)
	})
	s.mu.Unlock()

	return Snapshot{
		State:    StateSpinning,
		Attempts: attempts,
		Outcome:  &outcome,
		Offered:  true,
	}, nil
}

// resolve fires when the reveal delay elapses: the outcome becomes the
// session's pending discount.
func (s *service) resolve(sessionID string, outcome Outcome) {
	ctx := context.Background()

	s.mu.Lock()
	delete(s.inflight, sessionID)
	s.mu.Unlock()

	pending := PendingDiscount{
		Value:     outcome.Value,
		Claimed:   false,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.vault.Write(ctx, pendingKey(sessionID), pending, s.cfg.StateTTL); err != nil {
		s.logError(ctx, sessionID, "persist pending discount", err)
		return
	}
	s.metrics.IncWin(outcome.Value)
}

// Claim redeems the pending discount. The second of two racing claims finds
// no unclaimed discount and fails without side effects.
func (s *service) Claim(ctx context.Context, sessionID string) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readFlag(ctx, claimedKey(sessionID)) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "discount already claimed")
	}

	pending, ok := s.readPending(ctx, sessionID)
	if !ok || pending.Claimed {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no discount to claim")
	}

	pending.Claimed = true
	if err := s.vault.Write(ctx, pendingKey(sessionID), pending, s.cfg.StateTTL); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist claimed discount")
	}
	if err := s.vault.Write(ctx, redeemKey(sessionID), pending.Value, s.cfg.StateTTL); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist redeemable value")
	}
	if err := s.vault.Write(ctx, claimedKey(sessionID), true, s.cfg.StateTTL); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist claimed flag")
	}

	s.metrics.IncClaim()

	attempts := s.readAttempts(ctx, sessionID)
	return Snapshot{State: StateClaimed, Attempts: attempts, Pending: &pending, Offered: false}, nil
}

// Dismiss records that the shopper closed the promotion without claiming. A
// won discount stays redeemable.
func (s *service) Dismiss(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.vault.Write(ctx, dismissKey(sessionID), true, s.cfg.StateTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist dismissed flag")
	}
	return nil
}

// Reset restores the spinner data: attempts, pending discount and the
// dismissed flag. The durable claimed flag is left alone, so a session that
// already claimed stays suppressed.
func (s *service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.cancelReveal(sessionID)

	for _, key := range []string{
		attemptsKey(sessionID),
		pendingKey(sessionID),
		dismissKey(sessionID),
		redeemKey(sessionID),
	} {
		if err := s.vault.Clear(ctx, key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear spinner data")
		}
	}
	return nil
}

// HardReset additionally clears the claimed flag. Developer/ops surface only.
func (s *service) HardReset(ctx context.Context, sessionID string) error {
	if err := s.Reset(ctx, sessionID); err != nil {
		return err
	}
	if err := s.vault.Clear(ctx, claimedKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear claimed flag")
	}
	return nil
}

// RedeemableDiscount returns the claimed discount value for checkout, or 0
// when nothing was claimed or the stored value is unusable.
func (s *service) RedeemableDiscount(ctx context.Context, sessionID string) int64 {
	var value int64
	if !s.vault.Read(ctx, redeemKey(sessionID), &value) {
		return 0
	}
	if value < 0 {
		return 0
	}
	return value
}

// ClearRedeemed removes the spent discount after order placement. The
// claimed flag survives so the game is not offered again.
func (s *service) ClearRedeemed(ctx context.Context, sessionID string) error {
	if err := s.vault.Clear(ctx, pendingKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear pending discount")
	}
	if err := s.vault.Clear(ctx, redeemKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear redeemable value")
	}
	return nil
}

func (s *service) cancelReveal(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.inflight[sessionID]; ok {
		if timer != nil {
			timer.Stop()
		}
		delete(s.inflight, sessionID)
	}
}

func (s *service) readAttempts(ctx context.Context, sessionID string) Attempts {
	full := Attempts{Remaining: s.cfg.TotalAttempts, Total: s.cfg.TotalAttempts}

	var stored Attempts
	if !s.vault.Read(ctx, attemptsKey(sessionID), &stored) {
		return full
	}
	// Out-of-range counters mean the blob was tampered with or written by an
	// older build; either way it re-initializes.
	if stored.Total != s.cfg.TotalAttempts || stored.Remaining < 0 || stored.Remaining > stored.Total {
		return full
	}
	return stored
}

func (s *service) readPending(ctx context.Context, sessionID string) (PendingDiscount, bool) {
	var pending PendingDiscount
	if !s.vault.Read(ctx, pendingKey(sessionID), &pending) {
		return PendingDiscount{}, false
	}
	if !contains(s.winnable, pending.Value) {
		return PendingDiscount{}, false
	}
	return pending, true
}

func (s *service) readFlag(ctx context.Context, key string) bool {
	var flag bool
	if !s.vault.Read(ctx, key, &flag) {
		return false
	}
	return flag
}

func (s *service) logWarn(ctx context.Context, sessionID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), msg)
}

func (s *service) logError(ctx context.Context, sessionID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithSessionID(ctx, sessionID), msg, err)
}

func contains(values []int64, target int64) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
