package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// IdleSweeper drops state that has not been used for longer than idle.
type IdleSweeper interface {
	Sweep(idle time.Duration) int
}

// JobService runs the periodic clean-up of abandoned reservation forms. Limiter, when set, is
// swept on the same schedule.
type JobService struct {
	Store   *FormStore
	Limiter IdleSweeper
	IdleTTL time.Duration
	cron    *cron.Cron
}

func NewJobService(store *FormStore, idleTTL time.Duration) *JobService {
	return &JobService{
		Store:   store,
		IdleTTL: idleTTL,
		cron:    cron.New(),
	}
}

// SweepIdleForms unmounts every form whose session has been idle longer than IdleTTL.
func (s *JobService) SweepIdleForms() int {
	removed := s.Store.Sweep(s.IdleTTL)
	if removed == 0 {
		logrus.Debug("Cron Job: no idle reservation forms found")
		return 0
	}
	logrus.WithFields(logrus.Fields{
		"removed":   removed,
		"remaining": s.Store.Len(),
	}).Info("Cron Job: swept idle reservation forms")
	return removed
}

// Start schedules the sweep with a cron spec such as "@every 1m".
func (s *JobService) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.SweepIdleForms() }); err != nil {
		return fmt.Errorf("cron job: invalid sweep schedule %q: %w", spec, err)
	}
	if s.Limiter != nil {
		if _, err := s.cron.AddFunc(spec, func() { s.Limiter.Sweep(s.IdleTTL) }); err != nil {
			return fmt.Errorf("cron job: invalid sweep schedule %q: %w", spec, err)
		}
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *JobService) Stop() {
	<-s.cron.Stop().Done()
}
