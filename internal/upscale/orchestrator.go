package upscale

import (
	"context"
	"fmt"
	"time"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/blob"
	"github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/metrics"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/store"
)

// PredictionAPI is the slice of the inference provider the orchestrator needs
type PredictionAPI interface {
	CreatePrediction(ctx context.Context, version, imageURL string) (*Prediction, error)
	GetPrediction(ctx context.Context, id string) (*Prediction, error)
}

// ImageFetcher downloads the finished rendition
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Orchestrator runs one upscale job per created product: submit, poll to a
// terminal state under a bounded budget, relocate the result into blob
// storage, and record the public URL on the product. Every failure path
// leaves the product record unmodified.
type Orchestrator struct {
	api     PredictionAPI
	fetcher ImageFetcher
	blobs   blob.Store
	store   store.Store
	cfg     config.UpscaleConfig
}

// NewOrchestrator creates an upscale orchestrator
func NewOrchestrator(api PredictionAPI, fetcher ImageFetcher, blobs blob.Store, st store.Store, cfg config.UpscaleConfig) *Orchestrator {
	return &Orchestrator{api: api, fetcher: fetcher, blobs: blobs, store: st, cfg: cfg}
}

// HandleProductCreated runs the full job for one product
func (o *Orchestrator) HandleProductCreated(ctx context.Context, p models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	pred, err := o.poll(ctx, p)
	if err != nil {
		switch {
		case err == errors.ErrUpscaleTimeout || ctx.Err() != nil:
			metrics.RecordUpscaleJob("timed_out", time.Since(start))
		default:
			metrics.RecordUpscaleJob("failed", time.Since(start))
		}
		return err
	}

	outputURL, err := pred.OutputURL()
	if err != nil {
		metrics.RecordUpscaleJob("failed", time.Since(start))
		return err
	}

	data, err := o.fetcher.FetchImage(ctx, outputURL)
	if err != nil {
		metrics.RecordUpscaleJob("failed", time.Since(start))
		return fmt.Errorf("fetch upscaled image: %w", err)
	}

	path := blob.UpscaledImagePath(p.ID)
	publicURL, err := o.blobs.Put(ctx, path, data)
	if err != nil {
		metrics.RecordUpscaleJob("failed", time.Since(start))
		return fmt.Errorf("store upscaled image: %w", err)
	}

	err = o.store.UpdateProductFields(ctx, p.ID, models.ProductFields{UpscaledImage: &publicURL})
	if err != nil {
		metrics.RecordUpscaleJob("failed", time.Since(start))
		return fmt.Errorf("record upscaled image: %w", err)
	}

	metrics.RecordUpscaleJob("succeeded", time.Since(start))
	logger.Info("Upscale job finished",
		"product_id", p.ID,
		"prediction_id", pred.ID,
		"upscaled_image", publicURL,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// poll drives the job to a terminal state. A job is only successful when its
// status is succeeded: failed and canceled abort immediately, and the loop
// gives up past the configured poll budget or the context deadline.
func (o *Orchestrator) poll(ctx context.Context, p models.Product) (*Prediction, error) {
	pred, err := o.api.CreatePrediction(ctx, o.cfg.ModelVersion, p.Image)
	if err != nil {
		return nil, fmt.Errorf("submit upscale job: %w", err)
	}

	logger.Debug("Upscale job submitted",
		"product_id", p.ID,
		"prediction_id", pred.ID,
		"status", string(pred.Status),
	)

	polls := 0
	for !pred.Status.Terminal() {
		if polls >= o.cfg.MaxPolls {
			return nil, fmt.Errorf("prediction %s after %d polls: %w", pred.ID, polls, errors.ErrUpscaleTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("prediction %s: %w", pred.ID, errors.ErrUpscaleTimeout)
		case <-time.After(o.cfg.PollInterval):
		}

		pred, err = o.api.GetPrediction(ctx, pred.ID)
		if err != nil {
			return nil, fmt.Errorf("poll upscale job: %w", err)
		}
		polls++
	}

	if pred.Status != StatusSucceeded {
		return nil, fmt.Errorf("prediction %s ended %s (%s): %w",
			pred.ID, pred.Status, pred.Error, errors.ErrUpscaleFailed)
	}

	return pred, nil
}
