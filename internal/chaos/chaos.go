package chaos

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ismaiel54/fix-counterparty-sim/internal/handler"
	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"go.uber.org/zap"
)

// Chaos provides seeded failure injection on outbound messages
type Chaos struct {
	cfg    Config
	logger *zap.Logger
	rng    *rand.Rand
	mu     sync.Mutex
	start  time.Time
}

// New creates a new Chaos instance. A profile overrides the explicit
// drop and delay settings it names.
func New(cfg *Config, logger *zap.Logger) *Chaos {
	c := &Chaos{
		cfg:    *cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		start:  time.Now(),
	}

	if cfg.Profile != "" {
		dropPct, delayMin, delayMax, err := ParseProfile(cfg.Profile)
		if err != nil {
			logger.Warn("failed to parse chaos profile", zap.Error(err))
		} else {
			if dropPct > 0 {
				c.cfg.DropPct = dropPct
			}
			if delayMin > 0 || delayMax > 0 {
				c.cfg.DelayMsMin = delayMin
				c.cfg.DelayMsMax = delayMax
			}
		}
	}

	return c
}

// EnabledFor checks if chaos applies to a session
func (c *Chaos) EnabledFor(session model.SessionHandle) bool {
	if !c.cfg.Enabled {
		return false
	}

	if c.cfg.WindowMs > 0 && time.Since(c.start).Milliseconds() > int64(c.cfg.WindowMs) {
		return false
	}

	if c.cfg.TargetSession != "" && c.cfg.TargetSession != string(session) {
		return false
	}

	return true
}

// MaybeDelay injects a random delay if chaos is enabled
func (c *Chaos) MaybeDelay(ctx context.Context, session model.SessionHandle, op string) error {
	if !c.EnabledFor(session) {
		return nil
	}

	if c.cfg.DelayMsMin == 0 && c.cfg.DelayMsMax == 0 {
		return nil
	}

	c.mu.Lock()
	delayMs := c.cfg.DelayMsMin
	if c.cfg.DelayMsMax > c.cfg.DelayMsMin {
		delayMs += c.rng.Intn(c.cfg.DelayMsMax - c.cfg.DelayMsMin + 1)
	}
	c.mu.Unlock()

	if delayMs <= 0 {
		return nil
	}

	c.logger.Info("chaos delay injected",
		zap.String("session", string(session)),
		zap.String("op", op),
		zap.Int("delay_ms", delayMs),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(delayMs) * time.Millisecond):
		return nil
	}
}

// MaybeDrop returns true if the message should be dropped
func (c *Chaos) MaybeDrop(session model.SessionHandle, op string) bool {
	if !c.EnabledFor(session) || c.cfg.DropPct == 0 {
		return false
	}

	c.mu.Lock()
	drop := c.rng.Intn(100) < c.cfg.DropPct
	c.mu.Unlock()

	if drop {
		c.logger.Info("chaos drop injected",
			zap.String("session", string(session)),
			zap.String("op", op),
		)
	}

	return drop
}

// Dispatcher delays or drops outbound messages before handing them on. A
// dropped message is reported as a lost session, the same way a real
// disconnect between logon and send surfaces.
type Dispatcher struct {
	next  handler.Dispatcher
	chaos *Chaos
}

// NewDispatcher wraps next with chaos
func NewDispatcher(next handler.Dispatcher, c *Chaos) *Dispatcher {
	return &Dispatcher{next: next, chaos: c}
}

// Send implements handler.Dispatcher
func (d *Dispatcher) Send(session model.SessionHandle, m model.Outbound) error {
	if err := d.chaos.MaybeDelay(context.Background(), session, m.MsgType()); err != nil {
		return err
	}
	if d.chaos.MaybeDrop(session, m.MsgType()) {
		return fmt.Errorf("%w: %s: dropped by chaos", model.ErrSessionNotFound, session)
	}
	return d.next.Send(session, m)
}
