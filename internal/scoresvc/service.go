// Package scoresvc puts the ranking service to work for the outer surfaces:
// it emits events for improved scores, keeps metrics and logs outcomes.
package scoresvc

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/internal/event"
	"github.com/rescuerunner/runnerboard/internal/metrics"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{
	"component": "scoresvc",
})

type EventBus interface {
	EmitEvent(context.Context, string, *event.Event) error
}

type Service struct {
	ranking  *runnerboard.Service
	eventbus EventBus
	metrics  *metrics.Metrics
}

func New(ranking *runnerboard.Service, eventbus EventBus, m *metrics.Metrics) *Service {
	return &Service{
		ranking:  ranking,
		eventbus: eventbus,
		metrics:  m,
	}
}

func (s *Service) Submit(ctx context.Context, sub runnerboard.Submission) (runnerboard.Result, error) {
	logger := log.WithFields(logrus.Fields{
		"identity": sub.Identity,
		"score":    sub.Score.String(),
	})

	res, err := s.ranking.Submit(ctx, sub)
	switch {
	case errors.Is(err, runnerboard.ErrValidation):
		s.metrics.Submission(metrics.OutcomeInvalid)
		logger.WithError(err).Info("submission rejected")
		return res, err
	case err != nil:
		s.metrics.Submission(metrics.OutcomeFailed)
		logger.WithError(err).Error("submission failed")
		return res, err
	}

	s.metrics.Players(res.TotalPlayers)

	logger = logger.WithFields(logrus.Fields{
		"accepted": res.Accepted,
		"rank":     res.Rank,
		"total":    res.TotalPlayers,
	})

	if !res.Accepted {
		s.metrics.Submission(metrics.OutcomeUnchanged)
		logger.Debug("submission did not improve score")
		return res, nil
	}

	s.metrics.Submission(metrics.OutcomeAccepted)
	logger.Debug("score improved")

	// A new entry that ranked below a full board was evicted straight away.
	if res.Rank == 0 {
		logger.Debug("score did not make the board")
		return res, nil
	}

	err = s.eventbus.EmitEvent(ctx, event.KeyChangedScore, &event.Event{
		ChangedScore: &event.ChangedScore{
			Entry:        res.Entry,
			Rank:         res.Rank,
			TotalPlayers: res.TotalPlayers,
		},
	})
	if err != nil {
		logger.WithError(err).Warn("failed to emit score event")
	}

	if res.LeaderChanged {
		err = s.eventbus.EmitEvent(ctx, event.KeyChangedLeader, &event.Event{
			ChangedLeader: &event.ChangedLeader{
				Leader: res.Entry,
			},
		})
		if err != nil {
			logger.WithError(err).Warn("failed to emit leader event")
		}
	}

	return res, nil
}

func (s *Service) Top(ctx context.Context, limit int) (runnerboard.Board, error) {
	board, err := s.ranking.Top(ctx, limit)
	if err != nil {
		log.WithError(err).WithField("limit", limit).Error("top failed")
	}
	return board, err
}

func (s *Service) Standing(ctx context.Context, identity string) (runnerboard.RankedEntry, error) {
	entry, err := s.ranking.Standing(ctx, identity)
	if err != nil && !errors.Is(err, runnerboard.ErrNotFound) && !errors.Is(err, runnerboard.ErrValidation) {
		log.WithError(err).WithField("identity", identity).Error("standing failed")
	}
	return entry, err
}

// Health reports whether the store can be read, along with details for the
// health endpoint.
func (s *Service) Health(ctx context.Context) (details map[string]interface{}, ok bool) {
	details = make(map[string]interface{})

	n, err := s.ranking.Players(ctx)
	if err != nil {
		log.WithError(err).Error("health check failed")
		details["store"] = "unavailable"
		return details, false
	}

	s.metrics.Players(n)
	details["players"] = n
	details["capacity"] = s.ranking.Capacity()
	return details, true
}
