package hg_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hg-go/internal/hg"
	"hg-go/internal/testutil"
)

type serviceFixture struct {
	svc     *hg.HGService
	advisor *testutil.FakeAdvisor
	store   *testutil.RecordingStore
	clock   *testutil.StubClock
	vault   hg.Vault
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	g, s := testutil.NewTestGateway()
	f := &serviceFixture{
		advisor: &testutil.FakeAdvisor{},
		store:   s,
		clock:   testutil.FixedClock(),
		vault:   testutil.NewTestVault(),
	}
	f.svc = hg.NewHGService(hg.ServiceDeps{
		Gateway: g,
		Advisor: f.advisor,
		Vault:   f.vault,
		Sealer:  testutil.NewTestSealer(),
		Goals:   hg.DefaultGoals(),
		Clock:   f.clock,
		IDGen:   testutil.NewStubIDGenerator(),
	})
	return f
}

func TestService_SignupLoginLogout(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CurrentUser()
	assert.ErrorIs(t, err, hg.ErrNoUser)

	u, err := f.svc.Signup("asha@example.com", "Asha")
	require.NoError(t, err)
	cur, err := f.svc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, u, cur)
	assert.Equal(t, hg.StateReady, f.svc.Session().State())

	_, err = f.svc.Signup("ASHA@example.com", "Other")
	assert.ErrorIs(t, err, hg.ErrUserAlreadyExists)

	f.svc.Logout()
	_, err = f.svc.CurrentUser()
	assert.ErrorIs(t, err, hg.ErrNoUser)

	_, err = f.svc.Login("ghost@example.com")
	assert.ErrorIs(t, err, hg.ErrUserNotFound)

	again, err := f.svc.Login("asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, again)
	assert.Equal(t, []hg.User{u}, f.svc.Users())
}

func TestService_UserOverviews(t *testing.T) {
	f := newServiceFixture(t)
	assert.Empty(t, f.svc.UserOverviews())

	asha, err := f.svc.Signup("asha@example.com", "Asha")
	require.NoError(t, err)
	_, err = f.svc.Session().AddFoods(hg.FoodItem{Name: "Rice", Calories: 300})
	require.NoError(t, err)
	_, err = f.svc.Session().AdjustWater(250, f.clock.Now())
	require.NoError(t, err)

	ravi, err := f.svc.Signup("ravi@example.com", "Ravi")
	require.NoError(t, err)

	got := f.svc.UserOverviews()
	require.Len(t, got, 2)
	assert.Equal(t, asha, got[0].User)
	assert.Equal(t, []hg.Collection{hg.CollectionFoods, hg.CollectionWater}, got[0].Stored)
	assert.Equal(t, ravi, got[1].User)
	assert.Empty(t, got[1].Stored)
}

func TestService_Dashboard(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Dashboard(f.clock.Now())
	assert.ErrorIs(t, err, hg.ErrNoUser)

	_, err = f.svc.Signup("asha@example.com", "Asha")
	require.NoError(t, err)
	sess := f.svc.Session()
	_, err = sess.AddFoods(hg.FoodItem{Name: "Rice", Calories: 300})
	require.NoError(t, err)
	_, err = sess.AddExercise(hg.ExerciseItem{Type: "Run", Duration: 30, CaloriesBurned: 400})
	require.NoError(t, err)
	for _, delta := range []int{250, 500, -1000} {
		_, err = sess.AdjustWater(delta, f.clock.Now())
		require.NoError(t, err)
	}

	d, err := f.svc.Dashboard(f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, -100.0, d.NetCalories)
	assert.Equal(t, 0, d.WaterToday)
	assert.Len(t, d.WaterHistory, 7)
	assert.Equal(t, hg.TodayLabel, d.WaterHistory[6].Label)
}

func TestService_ScanFood(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ScanFood(ctx, []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, hg.ErrNoUser)

	_, err = f.svc.Signup("asha@example.com", "Asha")
	require.NoError(t, err)

	f.advisor.Items = []hg.AnalyzedFood{
		{Name: "Rice", Calories: 300, Protein: 6, Carbs: 65, Fats: 1, Portion: "1 cup"},
		{Name: "Pickle", Calories: -5, Portion: "1 tsp"},
	}
	added, err := f.svc.ScanFood(ctx, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotEmpty(t, added[0].ID)
	assert.NotEqual(t, added[0].ID, added[1].ID)
	assert.Zero(t, added[1].Calories, "negative estimates clamp to zero")

	data, err := f.svc.Session().Snapshot()
	require.NoError(t, err)
	assert.Len(t, data.Foods, 2)
}

func TestService_ScanFoodFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("analysis error logs nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.Signup("asha@example.com", "Asha")
		require.NoError(t, err)
		f.advisor.Err = errors.New("model overloaded")

		_, err = f.svc.ScanFood(ctx, []byte("img"), "image/png")
		var aerr *hg.AnalysisError
		require.True(t, errors.As(err, &aerr))

		data, _ := f.svc.Session().Snapshot()
		assert.Empty(t, data.Foods)
	})

	t.Run("no credential", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.Signup("asha@example.com", "Asha")
		require.NoError(t, err)
		f.advisor.Off = true

		assert.False(t, f.svc.AIAvailable())
		_, err = f.svc.ScanFood(ctx, []byte("img"), "image/png")
		assert.ErrorIs(t, err, hg.ErrCredentialMissing)
		assert.Zero(t, f.advisor.AnalyzeCalls)

		// The rest of the app keeps working.
		_, err = f.svc.Session().AddFoods(hg.FoodItem{Name: "Rice", Calories: 300})
		assert.NoError(t, err)
	})
}

func TestService_GeneratePlan(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	_, err := f.svc.Signup("asha@example.com", "Asha")
	require.NoError(t, err)

	profile := hg.DefaultProfile("Asha")
	profile.Weight = 88
	require.NoError(t, f.svc.Session().UpdateProfile(profile))

	f.advisor.Plan = &hg.DietPlan{DailyCalories: 1700, Advice: []string{"Drink water"}}
	plan, err := f.svc.GeneratePlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1700.0, plan.DailyCalories)
	assert.Equal(t, profile, f.advisor.LastProfile)

	f.advisor.Err = errors.New("quota exceeded")
	_, err = f.svc.GeneratePlan(ctx)
	var perr *hg.PlanGenerationError
	assert.True(t, errors.As(err, &perr))
}

func TestService_Backup(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.PushBackup(ctx)
	assert.ErrorIs(t, err, hg.ErrNoUser)

	u, err := f.svc.Signup("asha@example.com", "Asha")
	require.NoError(t, err)

	_, err = f.svc.PullBackup(ctx, "pw")
	assert.Error(t, err, "nothing pushed yet")

	_, err = f.svc.Session().AddFoods(hg.FoodItem{Name: "Rice", Calories: 300})
	require.NoError(t, err)
	_, err = f.svc.Session().AdjustWater(750, f.clock.Now())
	require.NoError(t, err)

	version, err := f.svc.PushBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Unix(), version)

	// Diverge locally, then restore.
	f.clock.Advance(time.Hour)
	_, err = f.svc.Session().AddFoods(hg.FoodItem{Name: "Cake", Calories: 500})
	require.NoError(t, err)
	_, err = f.svc.Session().AdjustWater(-750, f.clock.Now())
	require.NoError(t, err)

	snap, err := f.svc.PullBackup(ctx, "pw")
	require.NoError(t, err)
	assert.Equal(t, u, snap.User)

	data, err := f.svc.Session().Snapshot()
	require.NoError(t, err)
	require.Len(t, data.Foods, 1)
	assert.Equal(t, "Rice", data.Foods[0].Name)
	assert.Equal(t, 750, data.Water[hg.DateKey(f.clock.Now())])
	assert.Equal(t, hg.StateReady, f.svc.Session().State())

	// The restore was persisted, not just applied in memory.
	f.svc.Logout()
	_, err = f.svc.Login("asha@example.com")
	require.NoError(t, err)
	data, _ = f.svc.Session().Snapshot()
	assert.Len(t, data.Foods, 1)
}

func TestService_BackupWithoutVault(t *testing.T) {
	g, _ := testutil.NewTestGateway()
	svc := hg.NewHGService(hg.ServiceDeps{Gateway: g, IDGen: testutil.NewStubIDGenerator()})
	_, err := svc.Signup("a@example.com", "A")
	require.NoError(t, err)

	_, err = svc.PushBackup(context.Background())
	assert.Error(t, err)
	assert.Error(t, svc.SetupBackup("pw"))
	assert.False(t, svc.AIAvailable())
}
