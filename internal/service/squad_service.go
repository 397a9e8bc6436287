package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
	"kinetics/internal/repository"
)

// SquadStatus bundles the aggregated day with display names for rendering.
type SquadStatus struct {
	Squad *model.Squad
	Day   analytics.SquadDay
	// Names maps engine member ids to display names.
	Names map[string]string
}

// SquadService wraps squad lifecycle, daily aggregation, and settlement.
type SquadService struct {
	squadRepo *repository.SquadRepository
	taskRepo  *repository.TaskRepository
	userRepo  *repository.UserRepository
}

func NewSquadService(squadRepo *repository.SquadRepository, taskRepo *repository.TaskRepository, userRepo *repository.UserRepository) *SquadService {
	return &SquadService{squadRepo: squadRepo, taskRepo: taskRepo, userRepo: userRepo}
}

// CreateSquad registers a squad and enrolls the creator as its first
// member.
func (s *SquadService) CreateSquad(ctx context.Context, user *model.User, name string, threshold, freezes int, timezone string) (*model.Squad, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("squad name is required")
	}
	if threshold < 1 {
		threshold = 1
	}
	if freezes < 0 {
		freezes = 0
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q", timezone)
		}
	}

	squad := model.Squad{
		Name:          name,
		MinThreshold:  threshold,
		StreakFreezes: freezes,
		OwnerTimezone: timezone,
	}
	if err := s.squadRepo.Create(ctx, &squad); err != nil {
		return nil, err
	}
	if err := s.squadRepo.AddMember(ctx, squad.ID, user.ID, time.Now()); err != nil {
		return nil, err
	}
	return &squad, nil
}

func (s *SquadService) Join(ctx context.Context, user *model.User, name string) (*model.Squad, error) {
	squad, err := s.squadRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if err := s.squadRepo.AddMember(ctx, squad.ID, user.ID, time.Now()); err != nil {
		return nil, err
	}
	return squad, nil
}

func (s *SquadService) Leave(ctx context.Context, user *model.User, name string) (*model.Squad, error) {
	squad, err := s.squadRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if err := s.squadRepo.CloseMember(ctx, squad.ID, user.ID, time.Now()); err != nil {
		return nil, err
	}
	return squad, nil
}

func (s *SquadService) ListForUser(ctx context.Context, user *model.User) ([]model.Squad, error) {
	return s.squadRepo.ListForUser(ctx, user.ID)
}

// EngineSquadsForUser converts the user's squads into the engine view,
// membership history included, for backup export.
func (s *SquadService) EngineSquadsForUser(ctx context.Context, user *model.User) ([]analytics.Squad, error) {
	squads, err := s.squadRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	engine := make([]analytics.Squad, 0, len(squads))
	for _, squad := range squads {
		view := analytics.Squad{
			Name:          squad.Name,
			MinThreshold:  squad.MinThreshold,
			StreakFreezes: squad.StreakFreezes,
			OwnerTimezone: squad.OwnerTimezone,
		}
		for _, member := range squad.Members {
			view.Members = append(view.Members, analytics.MemberRecord{
				UserID:   strconv.FormatUint(uint64(member.UserID), 10),
				JoinedAt: member.JoinedAt,
				LeftAt:   member.LeftAt,
			})
		}
		engine = append(engine, view)
	}
	return engine, nil
}

// Status aggregates one squad's state for the given date.
func (s *SquadService) Status(ctx context.Context, name string, date, now time.Time) (*SquadStatus, error) {
	squad, err := s.squadRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	day, names, err := s.aggregate(ctx, squad, date, now)
	if err != nil {
		return nil, err
	}
	return &SquadStatus{Squad: squad, Day: day, Names: names}, nil
}

// SettleYesterday finalizes the previous day for every squad, recording
// the outcome and consuming a shield where one covered the day. Settling
// is idempotent; days already logged are skipped.
func (s *SquadService) SettleYesterday(ctx context.Context, now time.Time) error {
	squads, err := s.squadRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	yesterday := analytics.StartOfDay(now).AddDate(0, 0, -1)
	for i := range squads {
		squad := &squads[i]
		day, _, err := s.aggregate(ctx, squad, yesterday, now)
		if err != nil {
			return fmt.Errorf("aggregate squad %q: %w", squad.Name, err)
		}
		settled, err := s.squadRepo.SettleDay(ctx, squad.ID, day.DayKey, string(day.Outcome), day.UsedShield)
		if err != nil {
			return fmt.Errorf("settle squad %q: %w", squad.Name, err)
		}
		if settled {
			log.Printf("[info] squad %q settled %s: %s (shield=%v)", squad.Name, day.DayKey, day.Outcome, day.UsedShield)
		}
	}
	return nil
}

// aggregate builds the engine squad view and its contributions for date.
func (s *SquadService) aggregate(ctx context.Context, squad *model.Squad, date, now time.Time) (analytics.SquadDay, map[string]string, error) {
	engineSquad := analytics.Squad{
		Name:          squad.Name,
		MinThreshold:  squad.MinThreshold,
		StreakFreezes: squad.StreakFreezes,
		OwnerTimezone: squad.OwnerTimezone,
	}

	var memberIDs []uint
	for _, member := range squad.Members {
		record := analytics.MemberRecord{
			UserID:   strconv.FormatUint(uint64(member.UserID), 10),
			JoinedAt: member.JoinedAt,
			LeftAt:   member.LeftAt,
		}
		engineSquad.Members = append(engineSquad.Members, record)
		if record.Contains(date) {
			memberIDs = append(memberIDs, member.UserID)
		}
	}

	sums, err := s.taskRepo.CompletedWeightByUser(ctx, memberIDs, analytics.StartOfDay(date))
	if err != nil {
		return analytics.SquadDay{}, nil, err
	}

	contributions := make(map[string]analytics.Contribution, len(memberIDs))
	for _, id := range memberIDs {
		weight := sums[id]
		contributions[strconv.FormatUint(uint64(id), 10)] = analytics.Contribution{
			Weight: weight,
			Met:    weight >= squad.MinThreshold,
		}
	}

	day := analytics.AggregateSquadDay(engineSquad, date, now, contributions, analytics.DefaultSquadParams())

	users, err := s.userRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return analytics.SquadDay{}, nil, err
	}
	names := make(map[string]string, len(users))
	for id, user := range users {
		names[strconv.FormatUint(uint64(id), 10)] = displayName(user)
	}
	return day, names, nil
}

func displayName(user model.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name != "" {
		return name
	}
	return fmt.Sprintf("id%d", user.ID)
}
