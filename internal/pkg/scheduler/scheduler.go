package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/jasonlvhit/gocron"
)

// jobTimeout ограничивает время выполнения одной задачи
const jobTimeout = time.Minute

// Job - периодическая задача обслуживания
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler запускает задачи обслуживания в фоне
type Scheduler struct {
	cron   *gocron.Scheduler
	logger logger.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped chan bool
}

// New создает планировщик
func New(log logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   gocron.NewScheduler(),
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ErrInvalidJob возвращается для задачи без имени или функции
var ErrInvalidJob = errors.New("scheduled job needs a name and a run function")

// Register добавляет задачу с интервалом не меньше секунды
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return ErrInvalidJob
	}

	if err := s.cron.Every(intervalSeconds(job.Interval)).Seconds().Do(s.runJob, job); err != nil {
		s.logger.Error("Failed to register scheduled job", map[string]interface{}{
			"job":   job.Name,
			"error": err.Error(),
		})
		return fmt.Errorf("failed to register job %s: %w", job.Name, err)
	}

	s.logger.Info("Scheduled job registered", map[string]interface{}{
		"job":      job.Name,
		"interval": job.Interval.String(),
	})
	return nil
}

// Start запускает планировщик; повторный вызов ничего не делает
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped != nil {
		return
	}
	s.stopped = s.cron.Start()
}

// Stop останавливает планировщик и отменяет выполняющиеся задачи
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if s.stopped != nil {
		close(s.stopped)
		s.stopped = nil
	}
	s.cron.Clear()
}

// runJob выполняет задачу с таймаутом и логирует результат
func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("Scheduled job failed", map[string]interface{}{
			"job":   job.Name,
			"error": err.Error(),
		})
		return
	}

	s.logger.Debug("Scheduled job finished", map[string]interface{}{
		"job":         job.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func intervalSeconds(d time.Duration) uint64 {
	seconds := uint64(d / time.Second)
	if seconds == 0 {
		return 1
	}
	return seconds
}
