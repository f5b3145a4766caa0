package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const expiryBatchSize = 100

// SessionExpirer cancels sessions whose approval deadline has passed.
// *service.SessionService satisfies it.
type SessionExpirer interface {
	ExpirePending(ctx context.Context, batchSize int) (int, error)
}

// ExpiryJob periodically sweeps pending_approval sessions past their
// approval deadline. Each expiry goes through the ordinary transition path,
// so the audit trail and concurrency rules apply and a session a party acts
// on mid-sweep is simply skipped.
type ExpiryJob struct {
	expirer  SessionExpirer
	interval time.Duration
	done     chan struct{}
}

func NewExpiryJob(expirer SessionExpirer, interval time.Duration) *ExpiryJob {
	return &ExpiryJob{
		expirer:  expirer,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ExpiryJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("expiry job started")
}

func (j *ExpiryJob) Stop() {
	close(j.done)
	log.Info().Msg("expiry job stopped")
}

func (j *ExpiryJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *ExpiryJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.expirer.ExpirePending(ctx, expiryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to expire pending sessions")
	} else if count > 0 {
		log.Info().Int("count", count).Msg("expired pending sessions")
	}
}
