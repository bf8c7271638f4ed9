package survey

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/surveyd/internal/domain"
	"github.com/kailas-cloud/surveyd/internal/domain/analysis"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	"github.com/kailas-cloud/surveyd/internal/logger"
	"github.com/kailas-cloud/surveyd/internal/metrics"
)

// Result is a processed survey with its statistics.
type Result struct {
	ID         string
	Processed  record.Processed
	Statistics stats.Bundle
}

// Service runs the survey pipeline:
// validate → classify → describe → insert → statistics → update.
type Service struct {
	repo      Repository
	describer Describer
}

// New creates a survey service.
func New(repo Repository, describer Describer) *Service {
	return &Service{repo: repo, describer: describer}
}

// Process validates a submission, derives its attributes, stores it and
// attaches statistics. The first failing stage aborts the run and is reported
// as *domain.StageError. Insert and update are separate writes: a failed update
// leaves the inserted record without statistics.
func (s *Service) Process(ctx context.Context, p domsurvey.Payload) (Result, error) {
	ctx, log := logger.WithFields(ctx, zap.String("user_id", p.UserID))
	log.Info("survey received", zap.Int("results", len(p.SurveyResults)))

	res, err := s.process(ctx, log, p)
	if err != nil {
		metrics.SurveysProcessedTotal.WithLabelValues("failure").Inc()
		return Result{}, err
	}
	metrics.SurveysProcessedTotal.WithLabelValues("success").Inc()
	log.Info("returning processed survey", zap.String("id", res.ID))
	return res, nil
}

func (s *Service) process(ctx context.Context, log *zap.Logger, p domsurvey.Payload) (Result, error) {
	var sv domsurvey.Survey
	err := stage(log, domain.StageValidate, func() error {
		var err error
		sv, err = domsurvey.Parse(p)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("survey validated")

	var a analysis.Analysis
	err = stage(log, domain.StageClassify, func() error {
		a = analysis.Classify(sv)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	values := sv.Values()
	var description string
	err = stage(log, domain.StageDescribe, func() error {
		var err error
		description, err = s.describer.Describe(ctx, stats.Mean(values))
		return err
	})
	if err != nil {
		return Result{}, err
	}
	processed := record.NewProcessed(a, description)
	log.Info("survey processed",
		zap.String("overall_analysis", processed.OverallAnalysis),
		zap.String("cat_dog", processed.CatDog),
		zap.String("fur_value", processed.FurValue),
		zap.String("tail_value", processed.TailValue),
	)

	var id string
	err = stage(log, domain.StageInsert, func() error {
		var err error
		id, err = s.repo.Insert(ctx, record.NewDraft(sv, processed))
		return err
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("survey inserted", zap.String("id", id))

	var bundle stats.Bundle
	err = stage(log, domain.StageStatistics, func() error {
		bundle = stats.Summarize(values)
		if !bundle.Finite() {
			return fmt.Errorf("%w: non-finite result %+v", domain.ErrStatistics, bundle)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("statistics calculated",
		zap.Float64("mean", bundle.Mean),
		zap.Float64("median", bundle.Median),
		zap.Float64("std_dev", bundle.StdDev),
	)

	err = stage(log, domain.StageUpdate, func() error {
		return s.repo.UpdateStatistics(ctx, id, bundle)
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("survey statistics updated", zap.String("id", id))

	return Result{ID: id, Processed: processed, Statistics: bundle}, nil
}

// stage times fn, records failures and wraps them with the stage name.
func stage(log *zap.Logger, st domain.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.PipelineStageDuration.WithLabelValues(string(st)).Observe(time.Since(start).Seconds())
	if err == nil {
		return nil
	}

	metrics.PipelineFailuresTotal.WithLabelValues(string(st)).Inc()
	if st == domain.StageValidate {
		log.Warn("survey rejected", zap.String("stage", string(st)), zap.Error(err))
	} else {
		log.Error("survey pipeline failed", zap.String("stage", string(st)), zap.Error(err))
	}
	return domain.NewStageError(st, err)
}
