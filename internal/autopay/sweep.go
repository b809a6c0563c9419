package autopay

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepBatchSize = 100

// Payer is the payout path the sweep drives.
type Payer interface {
	SweepOverduePayouts(ctx context.Context, limit int) error
}

// Sweep periodically pays delivered orders whose payout due time passed
// without a timer firing. It is the restart-safety net behind the in-memory
// Scheduler.
type Sweep struct {
	cron  *cron.Cron
	payer Payer
}

func NewSweep(payer Payer, interval time.Duration) (*Sweep, error) {
	s := &Sweep{
		cron:  cron.New(),
		payer: payer,
	}
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule payout sweep: %w", err)
	}
	return s, nil
}

func (s *Sweep) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweep) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweep) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.payer.SweepOverduePayouts(ctx, sweepBatchSize); err != nil {
		zap.L().Error("payout sweep failed", zap.Error(err))
	}
}
