// File: cmd/demo/main.go
// One-shot submit-and-wait flow against a live horde. Useful for smoke
// testing the API adapter and the lifecycle without redis or postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"horde-image-client/internal/config"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	hordeapi "horde-image-client/internal/infra/adapters/horde"
	"horde-image-client/internal/infra/adapters/notify"
	"horde-image-client/internal/infra/logging"
	"horde-image-client/internal/infra/sched"
	"horde-image-client/internal/usecase"
)

func main() {
	prompt := flag.String("prompt", "", "generation prompt")
	modelName := flag.String("model", "stable_diffusion", "model to request")
	width := flag.Int("width", 512, "image width")
	height := flag.Int("height", 512, "image height")
	steps := flag.Int("steps", 30, "sampler steps")
	apiKey := flag.String("apikey", "0000000000", "horde api key")
	out := flag.String("out", "result.png", "output file")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline")
	flag.Parse()

	if *prompt == "" {
		log.Fatal("-prompt is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger := logging.New(config.LogConfig{Level: "info", Format: "console"}, true)

	opts := model.DefaultGenerationOptions()
	opts.Prompt = *prompt
	opts.Model = *modelName
	opts.Width = *width
	opts.Height = *height
	opts.Steps = *steps
	if err := opts.Validate(); err != nil {
		log.Fatalf("options: %v", err)
	}
	logger.Info().Float64("kudos", model.EstimateKudos(opts)).Msg("estimated cost")

	horde := hordeapi.NewClient(&config.HordeConfig{
		BaseURL:     "https://stablehorde.net/api/v2",
		APIKey:      *apiKey,
		ClientAgent: "horde-image-client:1.0:demo",
		Timeout:     30 * time.Second,
	})

	jobs := newMemJobRepo()
	results := usecase.NewResultSlot()
	defer results.Release()

	submitUC := usecase.NewSubmitUseCase(jobs, horde, results, logger)
	materializeUC := usecase.NewMaterializeUseCase(horde, jobs, memOptions{opts}, nil, nil, results, logger)
	poller := sched.NewPollWorker(time.Second, 5, jobs, horde, materializeUC.Materialize,
		[]adapter.Notifier{notify.NewConsoleNotifier(logger)}, nil, logger)

	job, err := submitUC.Submit(ctx, opts)
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	poller.Track(job)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for results.Current() == nil {
		select {
		case <-ctx.Done():
			log.Fatalf("deadline reached before completion")
		case <-ticker.C:
			poller.Tick(ctx)
		}
		if _, err := jobs.Current(ctx); err != nil && results.Current() == nil {
			// terminal failure: the record is gone but no result appeared
			log.Fatal("job finished without a result")
		}
	}

	res := results.Current()
	if err := os.WriteFile(*out, res.Image, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("saved %s (%dx%d, seed %s, %0.f kudos, worker %s)\n",
		*out, res.Width, res.Height, res.Seed, res.Kudos, res.WorkerName)
}
