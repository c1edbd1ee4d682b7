package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"hg-go/internal/advisor"
	"hg-go/internal/config"
	"hg-go/internal/encryption"
	"hg-go/internal/hg"
	"hg-go/internal/metrics"
	"hg-go/internal/store"
	"hg-go/internal/vault"
)

// maxImageSize bounds the images sent for analysis.
const maxImageSize = 20 << 20

// HGApp is the application layer between the CLI and HGService.
// It constructs all dependencies from config and owns their lifecycle:
// the caller must call Close when done.
type HGApp struct {
	cfg      *config.Config
	store    hg.Store
	vault    hg.Vault
	recorder *metrics.Recorder
	service  *hg.HGService
	logger   hg.Logger
	clock    hg.Clock
	logFile  *os.File
	run      *Run
}

// NewHGApp creates a fully wired HGApp from the given config and resumes the
// persisted session. command names the CLI command being run.
func NewHGApp(ctx context.Context, cfg *config.Config, command string) (*HGApp, error) {
	return newHGApp(ctx, cfg, command, hg.LocalClock{})
}

func newHGApp(ctx context.Context, cfg *config.Config, command string, clock hg.Clock) (*HGApp, error) {
	run := NewRun(command, clock.Now())

	slogger, logFile, err := newLogger(cfg.LogDir, run.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &HGApp{cfg: cfg, logger: logger, clock: clock, logFile: logFile, run: run}
	if err := a.wire(ctx); err != nil {
		a.closeResources()
		return nil, err
	}

	logger.Info("command started", "command", command)
	return a, nil
}

func (a *HGApp) wire(ctx context.Context) error {
	s, err := store.NewStoreFromConfig(a.cfg.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	a.store = s

	if m, ok := s.(store.Migrator); ok {
		if err := m.CheckMigrations(); err != nil {
			return fmt.Errorf("storage schema out of date, run `hg init`: %w", err)
		}
	}

	a.recorder = metrics.NewRecorder()
	gateway := hg.NewGateway(s, a.cfg.Storage.Prefix, a.logger, a.recorder)

	adv, err := advisor.NewAdvisorFromConfig(a.cfg.Advisor, a.logger)
	if err != nil {
		return fmt.Errorf("creating advisor: %w", err)
	}

	if len(a.cfg.Vaults) > 0 {
		v, err := vault.NewVaultFromConfig(ctx, a.cfg.Vaults[0])
		if err != nil {
			return fmt.Errorf("creating vault: %w", err)
		}
		a.vault = v
	}

	sealer, err := encryption.NewSealerFromConfig(a.cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating sealer: %w", err)
	}

	deps := hg.ServiceDeps{
		Gateway: gateway,
		Advisor: adv,
		Vault:   a.vault,
		Sealer:  sealer,
		Goals: hg.Goals{
			CalorieTarget: a.cfg.Tracking.CalorieTarget,
			WaterGoal:     a.cfg.Tracking.WaterGoal,
			HistoryDays:   a.cfg.Tracking.HistoryDays,
		},
		Logger:   a.logger,
		Recorder: a.recorder,
		Clock:    a.clock,
		IDGen:    hg.UUIDGenerator{},
	}
	a.service = hg.NewHGService(deps)

	if err := a.service.Restore(); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	return nil
}

// InitStorage creates or upgrades the storage schema for cfg.
// Stores without a schema need no initialization.
func InitStorage(cfg *config.Config) error {
	s, err := store.NewStoreFromConfig(cfg.Storage, hg.NewNopLogger())
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer s.Close()

	m, ok := s.(store.Migrator)
	if !ok {
		return nil
	}
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrating storage: %w", err)
	}
	return nil
}

// Service returns the wired service.
func (a *HGApp) Service() *hg.HGService { return a.service }

// Session returns the session manager for data mutations.
func (a *HGApp) Session() *hg.SessionManager { return a.service.Session() }

// Config returns the config the app was built from.
func (a *HGApp) Config() *config.Config { return a.cfg }

// Now returns the current time from the app's clock. Water entries and the
// dashboard use it for the local day.
func (a *HGApp) Now() time.Time { return a.clock.Now() }

// Dashboard summarizes the current user's data as of now.
func (a *HGApp) Dashboard() (hg.Dashboard, error) {
	return a.service.Dashboard(a.Now())
}

// Fail records err as the outcome of this run. Close logs it.
func (a *HGApp) Fail(err error) { a.run.Fail(err) }

// ScanImage reads an image file and logs the foods recognized in it.
func (a *HGApp) ScanImage(ctx context.Context, path string) ([]hg.FoodItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if info.Size() > maxImageSize {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", info.Size(), maxImageSize)
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return a.service.ScanFood(ctx, image, http.DetectContentType(image))
}

// AddWater adds ml milliliters to today's total and returns it.
func (a *HGApp) AddWater(ml int) (int, error) {
	if ml <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", ml)
	}
	return a.Session().AdjustWater(ml, a.Now())
}

// RemoveWater subtracts ml milliliters from today's total and returns it.
// The total never drops below zero.
func (a *HGApp) RemoveWater(ml int) (int, error) {
	if ml <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", ml)
	}
	return a.Session().AdjustWater(-ml, a.Now())
}

// ValidateVault checks that the configured vault is reachable.
func (a *HGApp) ValidateVault(ctx context.Context) error {
	if a.vault == nil {
		return errors.New("no vaults configured")
	}
	return a.vault.ValidateSetup(ctx)
}

// Close flushes metrics, closes storage and logs the outcome of the run.
func (a *HGApp) Close() error {
	if a.cfg.Metrics.TextfilePath != "" && a.recorder != nil {
		if err := a.recorder.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
			a.logger.Warn("writing metrics failed", "error", err)
		}
	}

	elapsed := a.run.Elapsed(a.Now()).Truncate(time.Millisecond)
	if a.run.Err != nil {
		a.logger.Error("command failed", "command", a.run.Command, "elapsed", elapsed, "error", a.run.Err)
	} else {
		a.logger.Info("command finished", "command", a.run.Command, "elapsed", elapsed)
	}

	return a.closeResources()
}

func (a *HGApp) closeResources() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
