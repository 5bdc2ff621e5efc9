package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"

	dfconfig "github.com/dictaflow/dictaflow/config"
	"github.com/dictaflow/dictaflow/internal/api"
	"github.com/dictaflow/dictaflow/internal/history"
	"github.com/dictaflow/dictaflow/internal/httputil"
	"github.com/dictaflow/dictaflow/internal/paste"
	"github.com/dictaflow/dictaflow/internal/speech/artifacts"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/internal/speech/gating"
	"github.com/dictaflow/dictaflow/internal/speech/registry"
	"github.com/dictaflow/dictaflow/internal/speech/session"
	"github.com/dictaflow/dictaflow/internal/textproc"
	"github.com/dictaflow/dictaflow/internal/transcriber"
	"github.com/dictaflow/dictaflow/pkg/events"
	"github.com/dictaflow/dictaflow/pkg/notify"

	// Register speech backends via init().
	_ "github.com/dictaflow/dictaflow/internal/speech/backends/energy"
	_ "github.com/dictaflow/dictaflow/internal/speech/backends/parakeet"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWithOIDC[dfconfig.DictationConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("dictaflow"),
		frame.WithDatastore(),
		frame.WithRegisterPublisher(eventRef, eventURL),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		log.Fatalf("creating audio dir: %v", err)
	}

	pub := events.NewPublisher(srv.QueueManager(), "dictaflow", eventRef)

	asrProvider, err := registry.ASR.Create(cfg.ASRBackend, map[string]string{
		"threads": fmt.Sprintf("%d", cfg.ASRThreads),
	})
	if err != nil {
		log.Fatalf("creating ASR backend: %v", err)
	}
	vadProvider, err := registry.VAD.Create(cfg.VADBackend, nil)
	if err != nil {
		log.Fatalf("creating VAD backend: %v", err)
	}

	locator := artifacts.NewLocator(cfg.ModelsDir)
	sessions := session.NewManager(asrProvider, vadProvider, locator, session.Config{
		Policy:       session.CachePolicy(cfg.SessionCachePolicy),
		Compute:      engine.ComputeConfig{Threads: cfg.ASRThreads, UseGPU: cfg.UseGPU},
		VADThreshold: float32(cfg.VADThreshold),
	})
	sessions.SetPublisher(pub)
	defer sessions.Cleanup()

	gate := gating.NewController(sessions)

	dictionary := textproc.NewDictionary(cfg.DictionaryPath)
	if err := dictionary.Load(); err != nil {
		log.Fatalf("loading dictionary: %v", err)
	}
	watchDone := make(chan struct{})
	defer close(watchDone)
	if err := pool.Submit(ctx, func() {
		if err := dictionary.WatchAndReload(watchDone); err != nil {
			log.Printf("dictionary watch stopped: %v", err)
		}
	}); err != nil {
		log.Fatalf("starting dictionary watcher: %v", err)
	}

	pipeline := textproc.NewPipeline(textproc.Options{
		FormatParagraphs: cfg.FormatParagraphs,
	}, dictionary)

	dbPool := srv.DatastoreManager().GetPool(ctx, "__default__pool_name__")
	transcripts := history.NewRepository(dbPool)

	orchestrator := transcriber.NewOrchestrator(sessions, gate, pipeline, transcripts, pub, cfg.UseVAD)

	deliverer := paste.NewDeliverer(
		paste.SystemClipboard{},
		paste.SystemTrust{},
		paste.SystemKeyInjector{},
		paste.DesktopNotifier{},
		paste.SystemScheduler,
		pub,
		paste.Options{PreserveClipboard: cfg.PreserveClipboard},
	)

	notifyRepo := notify.NewRepository(dbPool)
	notifyDeliverer := notify.NewDeliverer(notifyRepo, notify.DelivererConfig{
		MaxRetries:        cfg.NotifyMaxRetries,
		TimeoutSec:        cfg.NotifyTimeoutSec,
		BackoffInitialSec: cfg.NotifyBackoffSec,
		BackoffMaxSec:     cfg.NotifyBackoffMax,
		CBFailThreshold:   cfg.CBFailThreshold,
		CBResetTimeoutSec: cfg.CBResetTimeoutSec,
	}, pool, notify.AllowLocalTargets())
	notifySubscriber := &notify.Subscriber{
		Repo:      notifyRepo,
		Deliverer: notifyDeliverer,
		Pool:      pool,
		Workers:   cfg.NotifyWorkers,
	}

	handler := api.NewHandler(orchestrator, transcripts, deliverer, locator, notifyRepo, pub, cfg.AudioDir)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv.Init(ctx,
		frame.WithRegisterSubscriber(eventRef+".notify", eventURL, notifySubscriber),
		frame.WithHTTPHandler(httputil.H2CHandler(mux)),
	)

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}
