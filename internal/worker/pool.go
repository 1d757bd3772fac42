package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizgame/internal/models"
)

const (
	ScoreQueueKey    = "queue:score-recorded"
	LiveScoreChannel = "scores:live"
)

// Queue pushes score jobs onto the Redis list consumed by Pool.
type Queue struct {
	redis *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{redis: client}
}

func (q *Queue) Enqueue(ctx context.Context, job models.ScoreJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return q.redis.LPush(ctx, ScoreQueueKey, data).Err()
}

type profileRecorder interface {
	RecordGame(ctx context.Context, userID uuid.UUID, score, wrong int) error
}

// Broadcaster fans a message out to live leaderboard listeners.
type Broadcaster interface {
	Publish(ctx context.Context, data []byte) error
}

type RedisBroadcaster struct {
	redis *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{redis: client}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, data []byte) error {
	return b.redis.Publish(ctx, LiveScoreChannel, data).Err()
}

type Pool struct {
	redis       *redis.Client
	profiles    profileRecorder
	broadcaster Broadcaster
	logger      *zap.Logger
	workerCount int
	popTimeout  time.Duration
	wg          sync.WaitGroup
	cancel      context.CancelFunc
}

func NewPool(redisClient *redis.Client, profiles profileRecorder, broadcaster Broadcaster, logger *zap.Logger, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		profiles:    profiles,
		broadcaster: broadcaster,
		logger:      logger,
		workerCount: workerCount,
		popTimeout:  5 * time.Second,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("started score workers", zap.Int("count", p.workerCount))
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.With(zap.Int("worker", id))

	for {
		if ctx.Err() != nil {
			log.Debug("worker shutting down")
			return
		}

		result, err := p.redis.BLPop(ctx, p.popTimeout, ScoreQueueKey).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn("failed to pop job", zap.Error(err))
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.ScoreJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error("failed to parse job", zap.Error(err))
			continue
		}

		if err := p.process(context.WithoutCancel(ctx), job); err != nil {
			log.Error("failed to process score job", zap.String("score_id", job.ScoreID.String()), zap.Error(err))
		}
	}
}

// process updates the player's profile and announces the score. The
// broadcast happens even if the profile update fails.
func (p *Pool) process(ctx context.Context, job models.ScoreJob) error {
	var profileErr error
	if job.UserID != nil {
		if err := p.profiles.RecordGame(ctx, *job.UserID, job.Score, job.Wrong); err != nil {
			profileErr = fmt.Errorf("failed to update profile: %w", err)
		}
	}

	msg, err := json.Marshal(models.WSMessage{Type: "score_recorded", Payload: job})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := p.broadcaster.Publish(ctx, msg); err != nil {
		return errors.Join(profileErr, fmt.Errorf("failed to publish score: %w", err))
	}
	return profileErr
}
