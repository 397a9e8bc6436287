package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"kinetics/internal/analytics"
	"kinetics/internal/config"
	"kinetics/internal/model"
	"kinetics/internal/repository"
	"kinetics/internal/service"
	"kinetics/internal/transfer"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageWeight
	stageCategory
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbUndoPrefix     = "undo:"
)

const (
	btnSkip         = "⏭️ Пропустить"
	btnConfirm      = "✅ Подтвердить"
	btnCancel       = "↩️ Отмена"
	btnCancelDialog = "⏪ Отменить ввод"

	menuLabelNewTask = "➕ Новая задача"
	menuLabelTasks   = "📋 Задачи"
	menuLabelHeatmap = "🗺 Карта"
	menuLabelStats   = "📊 Статистика"
	menuLabelHelp    = "ℹ️ Помощь"
)

// importSizeLimit caps accepted backup documents.
const importSizeLimit = 2 << 20

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
	actionImport
)

type confirmationRequest struct {
	taskID uint
	action confirmationAction
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api       *tgbotapi.BotAPI
	userRepo  *repository.UserRepository
	entryRepo *repository.EntryRepository
	taskSvc   *service.TaskService
	reportSvc *service.ReportService
	squadSvc  *service.SquadService
	config    *config.Config

	conversations  map[int64]*conversationState
	confirmations  map[int64]confirmationRequest
	pendingImports map[int64][]analytics.DayEntry
	mu             sync.Mutex
}

func New(
	token string,
	userRepo *repository.UserRepository,
	entryRepo *repository.EntryRepository,
	taskSvc *service.TaskService,
	reportSvc *service.ReportService,
	squadSvc *service.SquadService,
	cfg *config.Config,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:            api,
		userRepo:       userRepo,
		entryRepo:      entryRepo,
		taskSvc:        taskSvc,
		reportSvc:      reportSvc,
		squadSvc:       squadSvc,
		config:         cfg,
		conversations:  make(map[int64]*conversationState),
		confirmations:  make(map[int64]confirmationRequest),
		pendingImports: make(map[int64][]analytics.DayEntry),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.Document != nil {
		return b.handleImportDocument(ctx, msg)
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		b.clearPendingImport(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог отменён. Я здесь, чтобы начать заново.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /newtask, чтобы добавить задачу, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "undo":
		return b.handleUndo(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "streak":
		return b.handleStreak(ctx, msg)
	case "recovery":
		return b.handleRecovery(ctx, msg)
	case "burnout":
		return b.handleBurnout(ctx, msg)
	case "heatmap":
		return b.handleHeatmap(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "interval":
		return b.handleInterval(msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "newsquad":
		return b.handleNewSquad(ctx, msg)
	case "join":
		return b.handleJoinSquad(ctx, msg)
	case "leave":
		return b.handleLeaveSquad(ctx, msg)
	case "squad":
		return b.handleSquadStatus(ctx, msg)
	case "squads":
		return b.handleListSquads(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		b.clearPendingImport(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я считаю твою продуктивность: серии, восстановления, риск выгорания.</b>\n\nКоманды:\n"+
			"• /newtask — добавить задачу с весом\n"+
			"• /tasks — задачи на сегодня\n"+
			"• /streak — текущая серия\n"+
			"• /heatmap — карта активности за год\n"+
			"• /stats — статистика за месяц\n"+
			"• /newsquad &lt;имя&gt; — создать отряд\n"+
			"• /help — все команды",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"<b>Задачи</b>\n" +
		"• /newtask — добавить задачу пошагово (название, вес 1–10, категория)\n" +
		"• /tasks — задачи на сегодня, кнопки для выполнения\n" +
		"• /complete &lt;id&gt; — отметить выполненной\n" +
		"• /undo &lt;id&gt; — снять отметку\n" +
		"• /delete &lt;id&gt; — удалить задачу\n\n" +
		"<b>Аналитика</b>\n" +
		"• /streak — текущая и рекордная серия\n" +
		"• /recovery — можно ли ещё спасти пропущенный день\n" +
		"• /burnout — риск выгорания\n" +
		"• /heatmap [категории через запятую] — карта за год\n" +
		"• /stats [дней] — сводка за период\n" +
		"• /report — ежедневный отчёт\n" +
		"• /interval &lt;часы&gt; — как часто присылать отчёт\n\n" +
		"<b>Отряды</b>\n" +
		"• /newsquad &lt;имя&gt; [порог] [щиты] [часовой пояс]\n" +
		"• /join &lt;имя&gt; · /leave &lt;имя&gt;\n" +
		"• /squad &lt;имя&gt; — мозаика дня · /squads — мои отряды\n\n" +
		"<b>Данные</b>\n" +
		"• /export — выгрузить всё в JSON\n" +
		"• пришли JSON-файл — импорт с заменой данных\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым. Как назвать задачу?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageWeight
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚖️ <b>Шаг 2:</b> какой вес у задачи? (1 — мелочь, 10 — подвиг; «Пропустить» = 3)", weightKeyboard())
	case stageWeight:
		if !isSkipInput(text) {
			weight, err := strconv.Atoi(text)
			if err != nil || weight < model.MinWeight || weight > model.MaxWeight {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Вес должен быть числом от 1 до 10 (или «Пропустить»).", weightKeyboard())
			}
			state.input.Weight = weight
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 <b>Шаг 3:</b> выбери категорию или отправь свою (можно «Пропустить»).", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, input service.TaskInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(ctx, user, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось сохранить задачу: %s", escape(err.Error())))
	}

	log.Printf("[info] task created id=%d user=%d weight=%d", task.ID, user.ID, task.Weight)

	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(task.Title))))
	summary.WriteString(fmt.Sprintf("• <b>Вес:</b> %d\n", task.Weight))
	if input.Category != "" {
		summary.WriteString(fmt.Sprintf("• <b>Категория:</b> %s\n", escape(input.Category)))
	}

	reply := tgbotapi.NewMessage(chatID, strings.TrimSpace(summary.String()))
	reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	reply.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(reply); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	log.Printf("[info] list tasks for user=%d", user.ID)
	return b.sendTaskList(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User) error {
	now := time.Now()
	tasks, err := b.taskSvc.ListForDay(ctx, user, now)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить задачи: %s", escape(err.Error())))
	}

	if len(tasks) == 0 {
		return b.sendText(chatID, "На сегодня задач нет. Добавь новую через /newtask — серия сама себя не продлит.")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Задачи на %s</b>\n", now.Format("02.01.2006")))
	builder.WriteString("Нажми на кнопку, чтобы отметить выполнение.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	intention, execution := 0, 0
	for _, task := range tasks {
		intention += task.Weight
		icon := "⬜"
		if task.IsCompleted {
			icon = "✅"
			execution += task.Weight
		}
		builder.WriteString(fmt.Sprintf("%s <b>#%d</b> %s · вес %d\n", icon, task.ID, escape(normalizeTitle(task.Title)), task.Weight))

		var row []tgbotapi.InlineKeyboardButton
		if task.IsCompleted {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("↩️ #%d · %s", task.ID, shortTitle(task.Title, 20)),
				fmt.Sprintf("%s%d", cbUndoPrefix, task.ID)))
		} else {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 20)),
				fmt.Sprintf("%s%d", cbCompletePrefix, task.ID)))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)))
		buttons = append(buttons, row)
	}
	builder.WriteString(fmt.Sprintf("\n⚖️ Выполнено <b>%d</b> из <b>%d</b> очков", execution, intention))

	reply := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := commandTaskID(msg)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /complete 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.completeTaskAndRefresh(ctx, msg.Chat.ID, user, taskID)
}

func (b *Bot) handleUndo(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := commandTaskID(msg)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /undo 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.UncompleteTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "Задача не найдена.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] task reopened id=%d user=%d", task.ID, user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ Задача «%s» снова открыта.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := commandTaskID(msg)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /delete 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "Задача не найдена.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось удалить задачу: %s", escape(err.Error())))
	}

	log.Printf("[info] task deleted id=%d user=%d", task.ID, user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Задача «%s» удалена.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) completeTaskAndRefresh(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	now := time.Now()
	task, window, err := b.taskSvc.CompleteTask(ctx, user, taskID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendTextWithRemove(chatID, "Задача не найдена или уже удалена.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] task completed id=%d user=%d weight=%d recovered=%t", task.ID, user.ID, task.Weight, window != nil)

	info := fmt.Sprintf("✅ Задача «%s» выполнена.", escape(normalizeTitle(task.Title)))
	if window != nil {
		info += fmt.Sprintf("\n\n🚑 <b>Серия спасена!</b> Пропущенный день %s засчитан.", window.BrokenDate.Format("02.01"))
	}
	if err := b.sendTextWithRemove(chatID, info); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message) error {
	return b.sendReport(ctx, msg, func(ctx context.Context, user model.User) (string, error) {
		return b.reportSvc.StreakReport(ctx, user, time.Now())
	})
}

func (b *Bot) handleRecovery(ctx context.Context, msg *tgbotapi.Message) error {
	return b.sendReport(ctx, msg, func(ctx context.Context, user model.User) (string, error) {
		return b.reportSvc.RecoveryReport(ctx, user, time.Now(), b.taskSvc.RecoveryThreshold())
	})
}

func (b *Bot) handleBurnout(ctx context.Context, msg *tgbotapi.Message) error {
	return b.sendReport(ctx, msg, func(ctx context.Context, user model.User) (string, error) {
		return b.reportSvc.BurnoutReport(ctx, user, time.Now())
	})
}

func (b *Bot) handleHeatmap(ctx context.Context, msg *tgbotapi.Message) error {
	var categories []string
	for _, part := range strings.Split(msg.CommandArguments(), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	overlay := len(categories) > 1

	return b.sendReport(ctx, msg, func(ctx context.Context, user model.User) (string, error) {
		return b.reportSvc.HeatmapReport(ctx, user, time.Now(), categories, overlay)
	})
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	rangeDays := 30
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		parsed, err := strconv.Atoi(args)
		if err != nil || parsed < 1 || parsed > analytics.MaxHistoryDays {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Период должен быть числом дней от 1 до %d, например /stats 7", analytics.MaxHistoryDays))
		}
		rangeDays = parsed
	}

	return b.sendReport(ctx, msg, func(ctx context.Context, user model.User) (string, error) {
		return b.reportSvc.StatsReport(ctx, user, time.Now(), rangeDays)
	})
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	return b.sendReport(ctx, msg, func(ctx context.Context, user model.User) (string, error) {
		return b.reportSvc.DailySummary(ctx, user, time.Now())
	})
}

func (b *Bot) sendReport(ctx context.Context, msg *tgbotapi.Message, build func(context.Context, model.User) (string, error)) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := build(ctx, *user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать отчёт: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleInterval(msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		current := "5 часов"
		if b.config != nil && b.config.ReportInterval > 0 {
			current = fmt.Sprintf("%d часов", int(b.config.ReportInterval.Hours()))
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Текущий интервал отчётов: %s. Укажи число часов, например: /interval 4", current))
	}
	hours, err := strconv.Atoi(args)
	if err != nil || hours <= 0 {
		return b.sendText(msg.Chat.ID, "Интервал должен быть положительным числом часов, например /interval 6")
	}
	b.mu.Lock()
	b.config.ReportInterval = time.Duration(hours) * time.Hour
	b.mu.Unlock()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Интервал уведомлений обновлён: каждые %d часов.", hours))
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	now := time.Now()
	cutoff := analytics.StartOfDay(now).AddDate(0, 0, -analytics.MaxHistoryDays)
	entries, err := b.entryRepo.LoadRange(ctx, user.ID, cutoff)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось собрать данные: %s", escape(err.Error())))
	}

	squads, err := b.squadSvc.EngineSquadsForUser(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось собрать отряды: %s", escape(err.Error())))
	}

	data, err := transfer.Export(entries, squads)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать файл: %s", escape(err.Error())))
	}

	log.Printf("[info] export user=%d entries=%d squads=%d bytes=%d", user.ID, len(entries), len(squads), len(data))

	file := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("kinetics_backup_%s.json", now.Format("2006-01-02")),
		Bytes: data,
	}
	doc := tgbotapi.NewDocument(msg.Chat.ID, file)
	doc.Caption = "💾 Резервная копия за последний год. Пришли этот файл обратно, чтобы восстановить данные."
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleImportDocument(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	doc := msg.Document
	if doc.FileSize > importSizeLimit {
		return b.sendText(msg.Chat.ID, "Файл слишком большой для импорта (лимит 2 МБ).")
	}

	data, err := b.downloadDocument(doc.FileID)
	if err != nil {
		log.Printf("download document %s: %v", doc.FileID, err)
		return b.sendText(msg.Chat.ID, "Не удалось скачать файл. Попробуй ещё раз.")
	}

	entries, err := transfer.Parse(data, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Файл не распознан: %s\nДанные не тронуты.", escape(err.Error())))
	}

	taskCount := 0
	for _, entry := range entries {
		taskCount += len(entry.Tasks)
	}

	b.setPendingImport(msg.From.ID, entries)
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionImport})

	text := fmt.Sprintf(
		"📥 В файле <b>%d дн.</b> и <b>%d задач</b>.\n⚠️ Импорт <b>полностью заменит</b> текущие задачи и историю. Продолжить?",
		len(entries), taskCount)
	return b.sendWithReplyMarkup(msg.Chat.ID, text, confirmKeyboard())
}

func (b *Bot) applyPendingImport(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	entries, ok := b.takePendingImport(from.ID)
	if !ok {
		return b.sendTextWithRemove(chatID, "Импортировать нечего: файл не найден. Пришли его ещё раз.")
	}

	if err := b.entryRepo.ReplaceAll(ctx, user.ID, entries); err != nil {
		log.Printf("import for user %d: %v", user.ID, err)
		return b.sendTextWithRemove(chatID, "Импорт не удался, данные остались прежними.")
	}

	log.Printf("[info] import applied user=%d days=%d", user.ID, len(entries))
	return b.sendTextWithRemove(chatID, fmt.Sprintf("✅ Импорт завершён: %d дн. истории на месте.", len(entries)))
}

func (b *Bot) downloadDocument(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch file: status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, importSizeLimit+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > importSizeLimit {
		return nil, fmt.Errorf("file exceeds %d bytes", importSizeLimit)
	}
	return data, nil
}

func (b *Bot) handleNewSquad(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 {
		return b.sendText(msg.Chat.ID, "Укажи имя отряда: /newsquad ночные-совы [порог] [щиты] [часовой пояс]")
	}

	name := fields[0]
	threshold, freezes := 3, 0
	timezone := ""
	if len(fields) > 1 {
		if parsed, err := strconv.Atoi(fields[1]); err == nil && parsed > 0 {
			threshold = parsed
		} else {
			return b.sendText(msg.Chat.ID, "Порог должен быть положительным числом очков.")
		}
	}
	if len(fields) > 2 {
		if parsed, err := strconv.Atoi(fields[2]); err == nil && parsed >= 0 {
			freezes = parsed
		} else {
			return b.sendText(msg.Chat.ID, "Число щитов должно быть неотрицательным.")
		}
	}
	if len(fields) > 3 {
		timezone = fields[3]
	}

	squad, err := b.squadSvc.CreateSquad(ctx, user, name, threshold, freezes, timezone)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось создать отряд: %s", escape(err.Error())))
	}

	log.Printf("[info] squad created id=%d name=%q by user=%d", squad.ID, squad.Name, user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"🤝 Отряд «%s» создан!\nПорог: <b>%d</b> очков в день · щитов: <b>%d</b>.\nЗови друзей: /join %s",
		escape(squad.Name), squad.MinThreshold, squad.StreakFreezes, escape(squad.Name)))
}

func (b *Bot) handleJoinSquad(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Укажи имя отряда: /join ночные-совы")
	}

	squad, err := b.squadSvc.Join(ctx, user, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "Отряд с таким именем не найден.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось вступить: %s", escape(err.Error())))
	}

	log.Printf("[info] user=%d joined squad=%q", user.ID, squad.Name)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🤝 Ты в отряде «%s». С сегодняшнего дня твои очки идут в общий зачёт.", escape(squad.Name)))
}

func (b *Bot) handleLeaveSquad(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Укажи имя отряда: /leave ночные-совы")
	}

	squad, err := b.squadSvc.Leave(ctx, user, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "Отряд с таким именем не найден.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось выйти: %s", escape(err.Error())))
	}

	log.Printf("[info] user=%d left squad=%q", user.ID, squad.Name)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Ты вышел из отряда «%s». История твоего участия сохранена.", escape(squad.Name)))
}

func (b *Bot) handleSquadStatus(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Укажи имя отряда: /squad ночные-совы")
	}

	now := time.Now()
	status, err := b.squadSvc.Status(ctx, name, now, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "Отряд с таким именем не найден.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить статус: %s", escape(err.Error())))
	}

	return b.sendText(msg.Chat.ID, renderSquadStatus(status))
}

func (b *Bot) handleListSquads(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	squads, err := b.squadSvc.ListForUser(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить отряды: %s", escape(err.Error())))
	}
	if len(squads) == 0 {
		return b.sendText(msg.Chat.ID, "Ты пока не состоишь в отрядах. Создай свой: /newsquad имя")
	}

	var builder strings.Builder
	builder.WriteString("🤝 <b>Твои отряды</b>\n")
	for _, squad := range squads {
		builder.WriteString(fmt.Sprintf("• %s · порог %d · щитов %d\n", escape(squad.Name), squad.MinThreshold, squad.StreakFreezes))
	}
	builder.WriteString("\nСтатус дня: /squad имя")
	return b.sendText(msg.Chat.ID, builder.String())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		switch req.action {
		case actionDelete:
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, msg.From, req.taskID)
		case actionImport:
			return b.applyPendingImport(ctx, msg.Chat.ID, msg.From)
		default:
			user, err := b.ensureUser(ctx, msg.From)
			if err != nil {
				return err
			}
			return b.completeTaskAndRefresh(ctx, msg.Chat.ID, user, req.taskID)
		}
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		b.clearPendingImport(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		prompt := "Подтверди или отмени действие."
		if req.action == actionImport {
			prompt = "Подтверди или отмени импорт данных."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	data := cb.Data
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		taskID, err := parseTaskID(data, cbCompletePrefix)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback complete user=%d task=%d", cb.From.ID, taskID)
		user, err := b.ensureUser(ctx, cb.From)
		if err != nil {
			return err
		}
		return b.completeTaskAndRefresh(ctx, cb.Message.Chat.ID, user, taskID)
	case strings.HasPrefix(data, cbUndoPrefix):
		taskID, err := parseTaskID(data, cbUndoPrefix)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback undo user=%d task=%d", cb.From.ID, taskID)
		user, err := b.ensureUser(ctx, cb.From)
		if err != nil {
			return err
		}
		if _, err := b.taskSvc.UncompleteTask(ctx, user, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendTextWithRemove(cb.Message.Chat.ID, "Задача не найдена или уже удалена.")
			}
			return err
		}
		return b.sendTaskList(ctx, cb.Message.Chat.ID, user)
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback delete request user=%d task=%d", cb.From.ID, taskID)
		return b.askDeleteConfirmation(ctx, cb.Message.Chat.ID, cb.From, taskID)
	default:
		return nil
	}
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Задача не найдена.")
		}
		return err
	}

	text := fmt.Sprintf("Удалить задачу «%s» (#%d)?", escape(normalizeTitle(task.Title)), task.ID)
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, action: actionDelete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendTextWithRemove(chatID, "Задача не найдена или уже удалена.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] task deleted id=%d user=%d", task.ID, user.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Задача «%s» удалена.", escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

// SendDailyReports sends a summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reportSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelHeatmap):
		return true, b.handleHeatmap(ctx, msg)
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Главное меню")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) setPendingImport(userID int64, entries []analytics.DayEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingImports[userID] = entries
}

func (b *Bot) takePendingImport(userID int64) ([]analytics.DayEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, ok := b.pendingImports[userID]
	delete(b.pendingImports, userID)
	return entries, ok
}

func (b *Bot) clearPendingImport(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pendingImports, userID)
}

func renderSquadStatus(status *service.SquadStatus) string {
	day := status.Day

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🤝 <b>Отряд «%s»</b>\n", escape(status.Squad.Name)))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", day.DayKey))

	if day.MemberCount == 0 {
		builder.WriteString("В отряде сегодня никого нет.")
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("Закрыли день: <b>%d из %d</b> (%d%%)\n", day.ActiveCount, day.MemberCount, day.CompletionPercentage))
	builder.WriteString(outcomeLine(day) + "\n")
	builder.WriteString(fmt.Sprintf("🛡 Щитов осталось: <b>%d</b>\n\n", status.Squad.StreakFreezes))

	for _, cell := range day.Cells {
		icon := "□"
		switch {
		case cell.Filled:
			icon = "■"
		case cell.Carried:
			icon = "◪"
		}
		name := status.Names[cell.UserID]
		if name == "" {
			name = "id" + cell.UserID
		}
		builder.WriteString(fmt.Sprintf("%s %s · %d очков\n", icon, escape(name), cell.Score))
	}

	return strings.TrimSpace(builder.String())
}

func outcomeLine(day analytics.SquadDay) string {
	switch day.Outcome {
	case analytics.OutcomeSolid:
		return "🟩 День закрыт всеми участниками"
	case analytics.OutcomeCoveredByWhale:
		return "🐳 День вытянули киты отряда"
	case analytics.OutcomeCoveredByShield:
		return "🛡 День спас щит отряда"
	default:
		return "🟥 День пока не закрыт"
	}
}

func commandTaskID(msg *tgbotapi.Message) (uint, error) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return 0, fmt.Errorf("empty task id")
	}
	value, err := strconv.ParseUint(args, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parseTaskID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelHeatmap),
			tgbotapi.NewKeyboardButton(menuLabelStats),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func weightKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("1"),
			tgbotapi.NewKeyboardButton("3"),
			tgbotapi.NewKeyboardButton("5"),
			tgbotapi.NewKeyboardButton("8"),
			tgbotapi.NewKeyboardButton("10"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Учеба"),
			tgbotapi.NewKeyboardButton("Работа"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Спорт"),
			tgbotapi.NewKeyboardButton("Здоровье"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
