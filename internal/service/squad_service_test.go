package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
	"kinetics/internal/repository"
)

type squadEnv struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	taskRepo  *repository.TaskRepository
	squadRepo *repository.SquadRepository
	svc       *SquadService
}

func newSquadEnv(t *testing.T) *squadEnv {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	squadRepo := repository.NewSquadRepository(db)
	return &squadEnv{
		db:        db,
		userRepo:  userRepo,
		taskRepo:  taskRepo,
		squadRepo: squadRepo,
		svc:       NewSquadService(squadRepo, taskRepo, userRepo),
	}
}

func (e *squadEnv) newUser(t *testing.T, telegramID int64, username string) *model.User {
	t.Helper()
	user, err := e.userRepo.UpsertFromTelegram(context.Background(), telegramID, username, "", username)
	require.NoError(t, err)
	return user
}

func (e *squadEnv) completedTask(t *testing.T, userID uint, weight int, day time.Time) {
	t.Helper()
	at := day.Add(11 * time.Hour)
	task := model.Task{UserID: userID, Title: "work", Weight: weight, Date: day, IsCompleted: true, CompletedAt: &at}
	require.NoError(t, e.taskRepo.Create(context.Background(), &task))
}

func TestSquadService_CreateJoinLeave(t *testing.T) {
	env := newSquadEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, 201, "owner")
	friend := env.newUser(t, 202, "friend")

	squad, err := env.svc.CreateSquad(ctx, owner, "ночные-совы", 4, 2, "Europe/Moscow")
	require.NoError(t, err)
	assert.Equal(t, 4, squad.MinThreshold)

	_, err = env.svc.CreateSquad(ctx, owner, "", 1, 0, "")
	assert.Error(t, err, "name is required")

	_, err = env.svc.CreateSquad(ctx, owner, "bad-zone", 1, 0, "Mars/Olympus")
	assert.Error(t, err, "timezone must resolve")

	_, err = env.svc.Join(ctx, friend, "ночные-совы")
	require.NoError(t, err)

	squads, err := env.svc.ListForUser(ctx, friend)
	require.NoError(t, err)
	require.Len(t, squads, 1)

	_, err = env.svc.Leave(ctx, friend, "ночные-совы")
	require.NoError(t, err)

	squads, err = env.svc.ListForUser(ctx, friend)
	require.NoError(t, err)
	assert.Empty(t, squads)
}

func TestSquadService_StatusAggregatesContributions(t *testing.T) {
	env := newSquadEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, 203, "alice")
	bob := env.newUser(t, 204, "bob")

	_, err := env.svc.CreateSquad(ctx, alice, "тяга", 3, 0, "")
	require.NoError(t, err)
	_, err = env.svc.Join(ctx, bob, "тяга")
	require.NoError(t, err)

	now := time.Now()
	today := analytics.StartOfDay(now)
	env.completedTask(t, alice.ID, 4, today)

	status, err := env.svc.Status(ctx, "тяга", now, now)
	require.NoError(t, err)

	assert.Equal(t, 2, status.Day.MemberCount)
	assert.Equal(t, 1, status.Day.ActiveCount)
	assert.Equal(t, 50, status.Day.CompletionPercentage)
	assert.Equal(t, analytics.OutcomeBroken, status.Day.Outcome)
	assert.False(t, status.Day.UsedShield, "shields never apply to today")

	filled := 0
	for _, cell := range status.Day.Cells {
		if cell.Filled {
			filled++
			assert.Equal(t, "@alice", status.Names[cell.UserID])
		}
	}
	assert.Equal(t, 1, filled)
}

func TestSquadService_SettleYesterdayConsumesShield(t *testing.T) {
	env := newSquadEnv(t)
	ctx := context.Background()
	solo := env.newUser(t, 205, "solo")

	squad := model.Squad{OwnerID: solo.ID, Name: "щит", MinThreshold: 3, StreakFreezes: 1}
	require.NoError(t, env.squadRepo.Create(ctx, &squad))

	now := time.Now()
	yesterday := analytics.StartOfDay(now).AddDate(0, 0, -1)
	require.NoError(t, env.squadRepo.AddMember(ctx, squad.ID, solo.ID, yesterday.AddDate(0, 0, -2)))

	// No contributions yesterday: the shield has to cover the day.
	require.NoError(t, env.svc.SettleYesterday(ctx, now))

	stored, err := env.squadRepo.FindByName(ctx, "щит")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.StreakFreezes)

	var logRow model.SquadDayLog
	require.NoError(t, env.db.Where("squad_id = ?", squad.ID).First(&logRow).Error)
	assert.Equal(t, string(analytics.OutcomeCoveredByShield), logRow.Outcome)
	assert.True(t, logRow.UsedShield)

	// A second settle run must not burn anything further.
	require.NoError(t, env.svc.SettleYesterday(ctx, now))
	stored, err = env.squadRepo.FindByName(ctx, "щит")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.StreakFreezes)
}

func TestSquadService_SettleSolidDay(t *testing.T) {
	env := newSquadEnv(t)
	ctx := context.Background()
	solo := env.newUser(t, 206, "steady")

	squad := model.Squad{OwnerID: solo.ID, Name: "стабильность", MinThreshold: 3}
	require.NoError(t, env.squadRepo.Create(ctx, &squad))

	now := time.Now()
	yesterday := analytics.StartOfDay(now).AddDate(0, 0, -1)
	require.NoError(t, env.squadRepo.AddMember(ctx, squad.ID, solo.ID, yesterday.AddDate(0, 0, -2)))
	env.completedTask(t, solo.ID, 5, yesterday)

	require.NoError(t, env.svc.SettleYesterday(ctx, now))

	var logRow model.SquadDayLog
	require.NoError(t, env.db.Where("squad_id = ?", squad.ID).First(&logRow).Error)
	assert.Equal(t, string(analytics.OutcomeSolid), logRow.Outcome)
	assert.False(t, logRow.UsedShield)
}
