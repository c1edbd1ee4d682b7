package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hg-go/internal/config"
	"hg-go/internal/hg"
	"hg-go/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig(t.TempDir())
	cfg.Advisor = config.AdvisorConfig{Type: "none"}
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	cfg.Vaults = []config.VaultConfig{{Type: "memory", Name: "mem"}}
	cfg.Metrics.TextfilePath = filepath.Join(cfg.BaseDir, "metrics", "hg.prom")
	return cfg
}

func TestNewHGApp_RequiresInit(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewHGApp(context.Background(), cfg, "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hg init")
}

func TestHGApp_SessionPersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	require.NoError(t, InitStorage(cfg))
	require.NoError(t, InitStorage(cfg), "init is idempotent")

	a, err := NewHGApp(ctx, cfg, "signup")
	require.NoError(t, err)
	user, err := a.Service().Signup("ada@example.com", "Ada")
	require.NoError(t, err)
	total, err := a.AddWater(500)
	require.NoError(t, err)
	assert.Equal(t, 500, total)
	require.NoError(t, a.Close())

	a, err = NewHGApp(ctx, cfg, "water")
	require.NoError(t, err)
	defer a.Close()

	current, err := a.Service().CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, hg.StateReady, a.Session().State())

	total, err = a.RemoveWater(800)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestHGApp_WaterRejectsNonPositive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "memory"

	a, err := NewHGApp(context.Background(), cfg, "water")
	require.NoError(t, err)
	defer a.Close()

	_, err = a.AddWater(0)
	assert.Error(t, err)
	_, err = a.RemoveWater(-5)
	assert.Error(t, err)
}

func TestHGApp_ScanImageWithoutCredential(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Type = "memory"

	a, err := NewHGApp(ctx, cfg, "scan")
	require.NoError(t, err)
	defer a.Close()
	_, err = a.Service().Signup("ada@example.com", "Ada")
	require.NoError(t, err)

	img := filepath.Join(t.TempDir(), "lunch.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nnot really"), 0644))

	_, err = a.ScanImage(ctx, img)
	assert.ErrorIs(t, err, hg.ErrCredentialMissing)

	_, err = a.ScanImage(ctx, filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestHGApp_CloseWritesMetricsAndLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "memory"

	a, err := NewHGApp(context.Background(), cfg, "whoami")
	require.NoError(t, err)
	require.NoError(t, a.ValidateVault(context.Background()))
	require.NoError(t, a.Close())

	metrics, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "hg_storage_reads_total")

	logData, err := os.ReadFile(filepath.Join(cfg.LogDir, "hg.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	assert.Contains(t, lines[len(lines)-1], "command finished")
}

func TestHGApp_WaterAndDashboardShareTheAppClock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "memory"
	clock := testutil.FixedClock()

	a, err := newHGApp(context.Background(), cfg, "water", clock)
	require.NoError(t, err)
	defer a.Close()
	_, err = a.Service().Signup("ada@example.com", "Ada")
	require.NoError(t, err)

	_, err = a.AddWater(900)
	require.NoError(t, err)
	clock.NextDay()
	total, err := a.AddWater(300)
	require.NoError(t, err)
	assert.Equal(t, 300, total)

	d, err := a.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 300, d.WaterToday)
	require.NotEmpty(t, d.WaterHistory)
	yesterday := d.WaterHistory[len(d.WaterHistory)-2]
	assert.Equal(t, hg.DateKey(clock.Now().AddDate(0, 0, -1)), yesterday.Date)
	assert.Equal(t, 900, yesterday.Amount)
}
