package contest

import (
	"context"
	"time"

	"github.com/codegrid/arena/internal/config"
	"github.com/codegrid/arena/internal/judge"
	"github.com/codegrid/arena/internal/leaderboard"
	"github.com/codegrid/arena/internal/pubsub"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns the submission pipeline: it validates and persists incoming
// submissions, hands them to judging workers, scores the verdicts, and keeps
// the live leaderboard view and realtime events flowing.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	judge  *judge.Client
	broker *pubsub.Broker
	cache  *leaderboard.Cache
	queue  chan judgeJob
}

// judgeJob is one queued submission waiting for a judging worker.
type judgeJob struct {
	submissionID string
}

func NewService(cfg *config.Config, db *gorm.DB, judgeClient *judge.Client, broker *pubsub.Broker) *Service {
	return &Service{
		cfg:    cfg,
		db:     db,
		judge:  judgeClient,
		broker: broker,
		cache:  leaderboard.NewCache(64, 5*time.Second),
		queue:  make(chan judgeJob, 1024),
	}
}

// Run starts the judging worker pool and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	for i := 0; i < s.cfg.Judge.Workers; i++ {
		go s.worker(ctx, i)
	}
	zap.S().Infof("started %d judging workers", s.cfg.Judge.Workers)
	<-ctx.Done()
}

func (s *Service) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.process(ctx, job)
		}
	}
}
