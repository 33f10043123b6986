// hh-parser scrapes hh.ru vacancy search results, normalises salaries,
// computes run statistics, reconciles the run against the snapshot database
// and produces an xlsx report per configured search query.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/d9i2r2t1/hh-parser/internal/config"
	"github.com/d9i2r2t1/hh-parser/internal/db"
	"github.com/d9i2r2t1/hh-parser/internal/mailer"
	"github.com/d9i2r2t1/hh-parser/internal/report"
	"github.com/d9i2r2t1/hh-parser/internal/scheduler"
	"github.com/d9i2r2t1/hh-parser/internal/scraper"
	"github.com/d9i2r2t1/hh-parser/internal/store"
	"github.com/d9i2r2t1/hh-parser/internal/worker"
)

const (
	configsFolder = "configs"
	logsFolder    = "logs"
	reportsFolder = "reports"

	// Old run logs are swept on every start.
	logLifetime = 180 * 24 * time.Hour
)

func main() {
	var (
		cfgFlag   = flag.String("cfg", "", "comma-separated config file(s); default: every .yml in ./configs")
		sendEmail = flag.Bool("send-email", false, "mail the report after a successful run")
		progress  = flag.Bool("progress", false, "render a page progress bar while scraping")
	)
	flag.Parse()

	logPath, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	removeOldLogs()

	configs, err := configFiles(*cfgFlag)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	if len(configs) == 0 {
		log.Fatalf("[main] No configuration files found in ./%s", configsFolder)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failed := false
	for _, path := range configs {
		if err := runConfig(ctx, path, *sendEmail, *progress, logPath); err != nil {
			log.Printf("[main] Config %s failed: %v", filepath.Base(path), err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// runConfig executes one configuration: a single run, or a resident cron
// loop when the config carries a schedule. Failures trigger the service
// mail notification with the run log attached.
func runConfig(ctx context.Context, path string, sendEmail, progress bool, logPath string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log.Printf("[main] Running config %s — query %q, area %d, period %d day(s)",
		filepath.Base(path), cfg.Parser.SearchText, cfg.Parser.Area, cfg.Parser.SearchPeriod)

	notify := failureNotifier(cfg, logPath)

	w, cleanup, err := buildWorker(ctx, cfg, sendEmail, progress)
	if err != nil {
		notify(err)
		return err
	}
	defer cleanup()

	if cfg.Schedule == "" {
		if err := w.Run(ctx); err != nil {
			notify(err)
			return err
		}
		return nil
	}

	sched := scheduler.New(w, cfg.Schedule)
	sched.OnError = notify
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("[main] Received %s — shutting down", sig)
	case <-ctx.Done():
	}
	return nil
}

// buildWorker connects the collaborators a run needs. The returned cleanup
// closes the database connections.
func buildWorker(ctx context.Context, cfg *config.Config, sendEmail, progress bool) (*worker.Worker, func(), error) {
	fetcher, err := scraper.NewFetcher(
		cfg.Parser.Area, cfg.Parser.SearchPeriod,
		cfg.Parser.SearchText, cfg.Parser.SearchRegex, progress,
	)
	if err != nil {
		return nil, nil, err
	}

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres.URL())
	if err != nil {
		return nil, nil, err
	}
	st := store.New(pool)
	if err := st.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() { pool.Close() }

	var lock *store.RunLock
	if cfg.Redis.URL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		lock = store.NewRunLock(rdb, cfg.Postgres.Name)
		prevCleanup := cleanup
		cleanup = func() {
			rdb.Close()
			prevCleanup()
		}
	} else {
		log.Println("[main] redis.url not set — running without the run lock; serialize runs externally")
	}

	var reportMailer *mailer.Mailer
	if sendEmail {
		if !cfg.Email.Configured() {
			cleanup()
			return nil, nil, fmt.Errorf("-send-email given but the email block is not configured")
		}
		reportMailer = mailer.New(toMailerConfig(cfg.Email))
	}

	return &worker.Worker{
		Fetcher: fetcher,
		Store:   st,
		Lock:    lock,
		Reports: report.Writer{Folder: reportsFolder},
		Mailer:  reportMailer,
	}, cleanup, nil
}

// failureNotifier returns the callback that mails run failures through the
// service_mail block. Without that block it only logs.
func failureNotifier(cfg *config.Config, logPath string) func(error) {
	return func(runErr error) {
		if !cfg.ServiceMail.Configured() {
			return
		}
		m := mailer.New(toMailerConfig(cfg.ServiceMail))
		if err := m.SendFailure(runErr, logPath); err != nil {
			log.Printf("[main] Failure notification: %v", err)
		}
	}
}

func toMailerConfig(e config.EmailConfig) mailer.Config {
	return mailer.Config{
		Server:   e.Server,
		Port:     e.Port,
		Login:    e.Login,
		Password: e.Password,
		UseSSL:   e.Port == 465,
		From:     e.From,
		To:       e.To,
		Subject:  e.Subject,
	}
}

// configFiles resolves the -cfg flag, falling back to every .yml file under
// the configs folder except the shipped example.
func configFiles(cfgFlag string) ([]string, error) {
	if cfgFlag != "" {
		return strings.Split(cfgFlag, ","), nil
	}

	entries, err := os.ReadDir(configsFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read configs folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yml") || name == "cfg_example.yml" {
			continue
		}
		files = append(files, filepath.Join(configsFolder, name))
	}
	return files, nil
}

// setupLogging tees the standard logger into a timestamped file under
// ./logs so failure mail can attach the full run log.
func setupLogging() (string, error) {
	if err := os.MkdirAll(logsFolder, 0o755); err != nil {
		return "", fmt.Errorf("create logs folder: %w", err)
	}
	path := filepath.Join(logsFolder, time.Now().Format("2006-01-02_15-04-05")+".log")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return path, nil
}

// removeOldLogs sweeps log files past their lifetime. Best effort.
func removeOldLogs() {
	entries, err := os.ReadDir(logsFolder)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-logLifetime)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(logsFolder, e.Name())); err == nil {
			log.Printf("[main] Removed old log %s", e.Name())
		}
	}
}
