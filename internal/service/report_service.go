package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
	"kinetics/internal/repository"
)

// ReportService builds human-readable analytics summaries for the bot.
type ReportService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	entryRepo    *repository.EntryRepository

	recoveryGrace time.Duration
}

func NewReportService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	entryRepo *repository.EntryRepository,
	recoveryGrace time.Duration,
) *ReportService {
	if recoveryGrace <= 0 {
		recoveryGrace = analytics.DefaultRecoveryGraceHours * time.Hour
	}
	return &ReportService{
		taskRepo:      taskRepo,
		categoryRepo:  categoryRepo,
		entryRepo:     entryRepo,
		recoveryGrace: recoveryGrace,
	}
}

// DailySummary renders today's task list plus the streak, recovery, and
// burnout state in one message.
func (s *ReportService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListForDay(ctx, user.ID, analytics.StartOfDay(now))
	if err != nil {
		return "", err
	}

	categories, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	catNames := make(map[uint]string)
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	intention, execution := 0, 0
	builder.WriteString("🔥 <b>Задачи на сегодня</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("— на сегодня задач нет\n")
	} else {
		for _, task := range tasks {
			intention += task.Weight
			if task.IsCompleted {
				execution += task.Weight
			}
			builder.WriteString(formatDayTask(task, catNames))
		}
		builder.WriteString(fmt.Sprintf("\n⚖️ Выполнено: <b>%d</b> из <b>%d</b> очков\n", execution, intention))
	}

	streak := analytics.CurrentStreak(entries, now)
	builder.WriteString(fmt.Sprintf("\n%s Серия: <b>%d дн.</b>\n", streakIcon(streak), streak))

	if window := analytics.FindRecovery(pastEntries(entries, now), now, int(s.recoveryGrace.Hours())); window != nil {
		builder.WriteString(fmt.Sprintf("\n🚑 Серия прервана %s — её ещё можно спасти! Осталось <b>%d ч.</b>\n",
			window.BrokenDate.Format("02.01"), int(s.recoveryGrace.Hours())-window.HoursSinceBreak))
	}

	burnout := analytics.ComputeBurnout(entries, now, analytics.DefaultBurnoutParams())
	if burnout.RiskPercent >= 50 {
		builder.WriteString(fmt.Sprintf("\n🌡 Риск выгорания: <b>%d%%</b> — сбавьте темп\n", burnout.RiskPercent))
	}

	return strings.TrimSpace(builder.String()), nil
}

// StreakReport renders the current and longest streak.
func (s *ReportService) StreakReport(ctx context.Context, user model.User, now time.Time) (string, error) {
	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	current := analytics.CurrentStreak(entries, now)
	from := analytics.StartOfDay(now).AddDate(0, 0, -analytics.MaxHistoryDays)
	longest := analytics.LongestStreak(entries, from, now)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s <b>Серия</b>\n\n", streakIcon(current)))
	builder.WriteString(fmt.Sprintf("Текущая: <b>%d дн.</b>\n", current))
	builder.WriteString(fmt.Sprintf("Рекорд за год: <b>%d дн.</b>", longest))
	if current == 0 {
		builder.WriteString("\n\nСегодня ещё ничего не выполнено. Одна задача вернёт серию в строй.")
	}
	return builder.String(), nil
}

// RecoveryReport explains whether a broken day can still be repaired and
// what it takes.
func (s *ReportService) RecoveryReport(ctx context.Context, user model.User, now time.Time, threshold int) (string, error) {
	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	window := analytics.FindRecovery(pastEntries(entries, now), now, int(s.recoveryGrace.Hours()))
	if window == nil {
		return "🛡 Спасать нечего: либо серия цела, либо пропуск уже не вернуть.", nil
	}

	left := int(s.recoveryGrace.Hours()) - window.HoursSinceBreak
	return fmt.Sprintf(
		"🚑 <b>Окно восстановления</b>\n\nПропущен день %s.\nОсталось <b>%d ч.</b>, чтобы закрыть задачу весом не меньше <b>%d</b> — и день будет засчитан.",
		window.BrokenDate.Format("02.01.2006"), left, threshold), nil
}

// BurnoutReport renders the burnout risk breakdown.
func (s *ReportService) BurnoutReport(ctx context.Context, user model.User, now time.Time) (string, error) {
	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	burnout := analytics.ComputeBurnout(entries, now, analytics.DefaultBurnoutParams())

	var builder strings.Builder
	builder.WriteString("🌡 <b>Риск выгорания</b>\n\n")
	builder.WriteString(fmt.Sprintf("Уровень: <b>%d%%</b> %s\n", burnout.RiskPercent, riskIcon(burnout.RiskPercent)))
	builder.WriteString(fmt.Sprintf("Дней подряд выше нормы: <b>%d</b>\n", burnout.Consecutive))
	builder.WriteString(fmt.Sprintf("Порог перегрузки (p90): <b>%d</b> очков/день\n", burnout.P90))

	switch {
	case burnout.RiskPercent >= 80:
		builder.WriteString("\nВы работаете на износ. Запланируйте лёгкий день.")
	case burnout.RiskPercent >= 50:
		builder.WriteString("\nТемп выше обычного. Следите за нагрузкой.")
	default:
		builder.WriteString("\nНагрузка в норме. Так держать!")
	}
	return builder.String(), nil
}

// HeatmapReport renders the trailing-year activity grid as monospace art,
// one row per weekday.
func (s *ReportService) HeatmapReport(ctx context.Context, user model.User, now time.Time, activeCategories []string, overlay bool) (string, error) {
	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	burnout := analytics.ComputeBurnout(entries, now, analytics.DefaultBurnoutParams())
	points := analytics.ProjectHeatmap(entries, burnout, analytics.HeatmapOptions{
		ActiveCategories: activeCategories,
		Overlay:          overlay,
	})
	byKey := make(map[string]analytics.HeatmapPoint, len(points))
	for _, point := range points {
		byKey[point.DayKey] = point
	}

	grid := analytics.BuildYearGrid(now)

	var builder strings.Builder
	builder.WriteString("🗺 <b>Карта активности за год</b>\n")
	if len(activeCategories) > 0 {
		builder.WriteString(fmt.Sprintf("Категории: %s\n", html.EscapeString(strings.Join(activeCategories, ", "))))
	}
	builder.WriteString("<pre>")
	builder.WriteString(monthStrip(grid))
	builder.WriteByte('\n')
	for row := 0; row < analytics.GridRows; row++ {
		for col := 0; col < analytics.GridCols; col++ {
			cell := grid.Cells[row][col]
			if cell.Padding {
				builder.WriteRune(' ')
				continue
			}
			builder.WriteRune(shadeFor(byKey[analytics.DayKey(cell.Date)]))
		}
		builder.WriteByte('\n')
	}
	builder.WriteString("</pre>")
	builder.WriteString("\n· нет активности  ░▒▓█ — от слабой к ударной")
	return builder.String(), nil
}

// StatsReport renders aggregate stats over the trailing rangeDays days.
func (s *ReportService) StatsReport(ctx context.Context, user model.User, now time.Time, rangeDays int) (string, error) {
	if rangeDays <= 0 {
		rangeDays = 30
	}
	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	from := analytics.StartOfDay(now).AddDate(0, 0, -(rangeDays - 1))
	stats := analytics.ComputeRangeStats(entries, from, now)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📊 <b>Статистика за %d дн.</b>\n\n", rangeDays))
	builder.WriteString(fmt.Sprintf("Задач: <b>%d</b>, выполнено: <b>%d</b>\n", stats.TotalTasks, stats.CompletedTasks))
	builder.WriteString(fmt.Sprintf("Стабильность: <b>%d%%</b>\n", stats.ConsistencyScore))
	builder.WriteString(fmt.Sprintf("Лучшая серия: <b>%d дн.</b>\n", stats.LongestStreak))
	builder.WriteString(fmt.Sprintf("Самый продуктивный день: <b>%s</b>\n", stats.BusiestDay))
	builder.WriteString(fmt.Sprintf("Самый тихий день: <b>%s</b>\n", stats.LeastBusyDay))

	if len(stats.CategoryDistribution) > 0 {
		builder.WriteString("\n🏷 <b>Категории</b>\n")
		for _, share := range stats.CategoryDistribution {
			builder.WriteString(fmt.Sprintf("— %s: %d\n", html.EscapeString(share.Name), share.Value))
		}
	}

	builder.WriteString(fmt.Sprintf("\n🏅 Вы продуктивнее <b>%d%%</b> пользователей", stats.Percentile))
	return strings.TrimSpace(builder.String()), nil
}

func (s *ReportService) loadHistory(ctx context.Context, userID uint, now time.Time) ([]analytics.DayEntry, error) {
	cutoff := analytics.StartOfDay(now).AddDate(0, 0, -analytics.MaxHistoryDays)
	return s.entryRepo.LoadRange(ctx, userID, cutoff)
}

func formatDayTask(task model.Task, catNames map[uint]string) string {
	var sb strings.Builder

	icon := "⬜"
	if task.IsCompleted {
		icon = "✅"
	}
	sb.WriteString(fmt.Sprintf("%s %s · вес %d", icon, html.EscapeString(strings.TrimSpace(task.Title)), task.Weight))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok {
			trimmed := strings.TrimSpace(name)
			if trimmed != "" {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
			}
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}

func streakIcon(streak int) string {
	switch {
	case streak >= 30:
		return "🏆"
	case streak >= 7:
		return "🔥"
	case streak > 0:
		return "✨"
	default:
		return "💤"
	}
}

func riskIcon(percent int) string {
	switch {
	case percent >= 80:
		return "🔴"
	case percent >= 50:
		return "🟡"
	default:
		return "🟢"
	}
}

// monthStrip lays month labels over their grid columns, one header line
// for the year rows below.
func monthStrip(grid analytics.YearGrid) string {
	strip := make([]rune, analytics.GridCols)
	for i := range strip {
		strip[i] = ' '
	}
	for _, month := range grid.Months {
		for i, r := range month.Label {
			col := month.Col + i
			if col >= analytics.GridCols {
				break
			}
			strip[col] = r
		}
	}
	return string(strip)
}

// shadeFor maps a day's performance to a monospace shade. Zero execution
// renders as a dot so gaps stay visible.
func shadeFor(point analytics.HeatmapPoint) rune {
	if point.DayKey == "" || (point.ExecutionVolume == 0 && !point.Ghost) {
		return '·'
	}
	switch score := point.PerformanceScore; {
	case score <= 0.25:
		return '░'
	case score <= 0.5:
		return '▒'
	case score <= 0.75:
		return '▓'
	default:
		return '█'
	}
}
