package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"time-logger/internal/config"
	"time-logger/internal/model"
	"time-logger/internal/repository"
	"time-logger/internal/service"
	"time-logger/internal/timelog"
)

const (
	cbStopPrefix = "stop:"

	reminderCheckInterval = time.Minute
	reminderDateLayout    = "2006-01-02 15:04"

	// Telegram rejects longer messages.
	maxMessageLen = 4096

	menuLabelRunning    = "⏱ Running"
	menuLabelReport     = "📊 Report"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

// Bot wires the Telegram API to the tracking and report services.
type Bot struct {
	api         *tgbotapi.BotAPI
	userRepo    *repository.UserRepository
	categorySvc *service.CategoryService
	trackingSvc *service.TrackingService
	reportSvc   *service.ReportService
	reminderSvc *service.ReminderService
	scheduler   *service.SchedulerService
	config      *config.Config
	logger      *zap.Logger

	mu          sync.Mutex
	reportEntry cron.EntryID
}

func New(cfg *config.Config, userRepo *repository.UserRepository, categorySvc *service.CategoryService, trackingSvc *service.TrackingService, reportSvc *service.ReportService, reminderSvc *service.ReminderService, scheduler *service.SchedulerService, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:         api,
		userRepo:    userRepo,
		categorySvc: categorySvc,
		trackingSvc: trackingSvc,
		reportSvc:   reportSvc,
		reminderSvc: reminderSvc,
		scheduler:   scheduler,
		config:      cfg,
		logger:      logger,
	}, nil
}

// ScheduleReports registers the periodic report push. REPORT_TIME wins over
// the interval when both are set.
func (b *Bot) ScheduleReports() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		id  cron.EntryID
		err error
	)
	if b.config.ReportTime != "" {
		id, err = b.scheduler.ScheduleDaily(b.config.ReportTime, b.reportJob)
	} else {
		id, err = b.scheduler.ScheduleInterval(b.config.ReportInterval, b.reportJob)
	}
	if err != nil {
		return fmt.Errorf("schedule reports: %w", err)
	}
	b.reportEntry = id
	return nil
}

func (b *Bot) reportJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.SendReports(ctx); err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("send reports", zap.Error(err))
	}
}

// ScheduleReminders registers the job that delivers due reminders.
func (b *Bot) ScheduleReminders() error {
	if _, err := b.scheduler.ScheduleInterval(reminderCheckInterval, b.reminderJob); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	return nil
}

func (b *Bot) reminderJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.SendDueReminders(ctx, time.Now()); err != nil {
		b.logger.Error("send reminders", zap.Error(err))
	}
}

// SendDueReminders delivers every reminder due at now.
func (b *Bot) SendDueReminders(ctx context.Context, now time.Time) error {
	due, err := b.reminderSvc.TakeDue(ctx, now)
	if err != nil {
		return err
	}
	for _, reminder := range due {
		if err := b.sendText(reminder.User.TelegramID, formatReminderAlert(reminder)); err != nil {
			b.logger.Warn("send reminder",
				zap.Uint("reminder_id", reminder.ID),
				zap.Int64("telegram_id", reminder.User.TelegramID),
				zap.Error(err))
		}
	}
	return nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Warn("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Warn("handle message", zap.Error(err))
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		b.logger.Debug("command",
			zap.Int64("from", msg.From.ID),
			zap.String("command", msg.Command()),
			zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	switch strings.TrimSpace(msg.Text) {
	case menuLabelRunning:
		return b.handleRunning(ctx, msg)
	case menuLabelReport:
		return b.handleReport(ctx, msg)
	case menuLabelCategories:
		return b.handleCategories(ctx, msg)
	case menuLabelHelp:
		return b.handleHelp(msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Use /track to start a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "track":
		return b.handleTrack(ctx, msg)
	case "log":
		return b.handleLog(ctx, msg)
	case "stop":
		return b.handleStop(ctx, msg)
	case "running":
		return b.handleRunning(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "chart":
		return b.handleChart(ctx, msg)
	case "interval":
		return b.handleInterval(msg)
	case "remind":
		return b.handleRemind(ctx, msg)
	case "reminders":
		return b.handleReminders(ctx, msg)
	case "forget":
		return b.handleForget(ctx, msg)
	case "pause":
		return b.handlePause(ctx, msg, true)
	case "resume":
		return b.handlePause(ctx, msg, false)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of where your time goes.</b>\n\n%s", escape(name), helpText))
}

const helpText = "Commands:\n" +
	"• /track &lt;category&gt; | [activity |] &lt;task&gt; — start a task\n" +
	"• /log &lt;id&gt; &lt;minutes&gt; — add minutes to a running task\n" +
	"• /stop &lt;id&gt; — finish a task\n" +
	"• /running — running tasks\n" +
	"• /delete &lt;id&gt; — delete a task\n" +
	"• /categories — your categories\n" +
	"• /report [category] — time report\n" +
	"• /chart [category] — chart data as JSON\n" +
	"• /interval [hours] — report interval\n" +
	"• /remind &lt;when&gt; | &lt;text&gt; [| daily/weekly/monthly] — set a reminder\n" +
	"• /reminders — your reminders\n" +
	"• /pause &lt;id&gt;, /resume &lt;id&gt; — pause or resume a reminder\n" +
	"• /forget &lt;id&gt; — delete a reminder"

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Help</b>\n"+helpText)
}

func (b *Bot) handleTrack(ctx context.Context, msg *tgbotapi.Message) error {
	input, err := parseTrackArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.trackingSvc.StartTask(ctx, user, input, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not start the task: %s", escape(err.Error())))
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("▶️ <b>#%d</b> %s started", task.ID, escape(task.Content)))
	if input.Activity != "" {
		text.WriteString(fmt.Sprintf(" · %s", escape(input.Activity)))
	}
	return b.sendText(msg.Chat.ID, text.String())
}

func (b *Bot) handleLog(ctx context.Context, msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /log 12 30")
	}
	taskID, err := parseID(fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Task ID must be a number.")
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Minutes must be a number.")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.trackingSvc.LogTime(ctx, user, taskID, minutes)
	if err != nil {
		return b.sendText(msg.Chat.ID, taskErrorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 <b>#%d</b> %s: %s logged", task.ID, escape(task.Content), readableElapsed(task)))
}

func (b *Bot) handleStop(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task ID: /stop 12")
	}
	return b.stopTask(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) stopTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	task, err := b.trackingSvc.StopTask(ctx, user, taskID, time.Now())
	if err != nil {
		return b.sendText(chatID, taskErrorText(err))
	}
	return b.sendText(chatID, fmt.Sprintf("⏹ <b>#%d</b> %s finished after %s", task.ID, escape(task.Content), readableElapsed(task)))
}

func (b *Bot) handleRunning(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	tasks, err := b.trackingSvc.ListRunning(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not list tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "Nothing is running. Start a task with /track.")
	}

	now := time.Now()
	var builder strings.Builder
	builder.WriteString("⏱ <b>Running tasks</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(formatRunning(task, now))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("⏹ #%d · %s", task.ID, shortTitle(task.Content, 24)), fmt.Sprintf("%s%d", cbStopPrefix, task.ID)),
		))
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task ID: /delete 12")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if err := b.trackingSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendText(msg.Chat.ID, taskErrorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Task #%d deleted.", taskID))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not list categories: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet. They are created by /track.")
	}

	summaries, err := b.categorySummaries(ctx, user)
	if err != nil {
		b.logger.Warn("category summaries", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
	}

	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s", escape(cat.Title)))
		if d, ok := summaries[cat.Title]; ok {
			builder.WriteString(fmt.Sprintf(" — %s", d))
		}
		builder.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

// categorySummaries maps category titles to their readable totals. An empty
// result with no error means the user has no tracked time yet.
func (b *Bot) categorySummaries(ctx context.Context, user *model.User) (map[string]string, error) {
	summaries := make(map[string]string)
	list, err := b.reportSvc.Summaries(ctx, user)
	if errors.Is(err, service.ErrNoData) {
		return summaries, nil
	}
	if err != nil {
		return summaries, err
	}
	for _, s := range list {
		summaries[s.Name] = s.Duration
	}
	return summaries, nil
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	var text string
	if title := strings.TrimSpace(msg.CommandArguments()); title != "" {
		text, err = b.reportSvc.CategoryReport(ctx, user, title)
	} else {
		text, err = b.reportSvc.FullReport(ctx, user)
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, reportErrorText(err))
	}
	return b.sendPlain(msg.Chat.ID, text)
}

func (b *Bot) handleChart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(msg.CommandArguments())
	var raw []byte
	if title != "" {
		raw, err = b.reportSvc.CategoryChart(ctx, user, title)
	} else {
		raw, err = b.reportSvc.OverviewChart(ctx, user)
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, reportErrorText(err))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: chartFileName(title), Bytes: raw})
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleInterval(msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.mu.Lock()
		current := b.config.ReportInterval
		daily := b.config.ReportTime
		b.mu.Unlock()
		if daily != "" {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Reports are sent daily at %s. Set hours to switch: /interval 6", escape(daily)))
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Reports are sent every %d hours. Example: /interval 6", int(current.Hours())))
	}

	hours, err := strconv.Atoi(args)
	if err != nil || hours <= 0 {
		return b.sendText(msg.Chat.ID, "The interval must be a positive number of hours, e.g. /interval 6")
	}

	interval := time.Duration(hours) * time.Hour
	b.mu.Lock()
	next, err := b.scheduler.Reschedule(b.reportEntry, interval, b.reportJob)
	if err == nil {
		b.reportEntry = next
		b.config.ReportInterval = interval
		b.config.ReportTime = ""
	}
	b.mu.Unlock()
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not change the interval: %s", escape(err.Error())))
	}
	b.logger.Info("report interval changed", zap.Int("hours", hours))
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Reports will be sent every %d hours.", hours))
}

func (b *Bot) handleRemind(ctx context.Context, msg *tgbotapi.Message) error {
	now := time.Now()
	input, err := parseRemindArgs(msg.CommandArguments(), now)
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	reminder, err := b.reminderSvc.Add(ctx, user, input, now)
	if err != nil {
		return b.sendText(msg.Chat.ID, reminderErrorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("⏰ <b>#%d</b> I will remind you on %s", reminder.ID, formatReminderLine(*reminder)))
}

func (b *Bot) handleReminders(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	reminders, err := b.reminderSvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not list reminders: %s", escape(err.Error())))
	}
	if len(reminders) == 0 {
		return b.sendText(msg.Chat.ID, "No reminders. Add one with /remind.")
	}

	var builder strings.Builder
	builder.WriteString("⏰ <b>Reminders</b>\n\n")
	for _, reminder := range reminders {
		builder.WriteString(fmt.Sprintf("<b>#%d</b> %s\n", reminder.ID, formatReminderLine(reminder)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleForget(ctx context.Context, msg *tgbotapi.Message) error {
	reminderID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the reminder ID: /forget 3")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if err := b.reminderSvc.Remove(ctx, user, reminderID); err != nil {
		return b.sendText(msg.Chat.ID, reminderErrorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Reminder #%d deleted.", reminderID))
}

func (b *Bot) handlePause(ctx context.Context, msg *tgbotapi.Message, paused bool) error {
	reminderID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Give the reminder ID: /%s 3", msg.Command()))
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if err := b.reminderSvc.SetPaused(ctx, user, reminderID, paused); err != nil {
		return b.sendText(msg.Chat.ID, reminderErrorText(err))
	}
	if paused {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⏸ Reminder #%d paused.", reminderID))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("▶️ Reminder #%d resumed.", reminderID))
}

// SendReports pushes the full report to every known user.
func (b *Bot) SendReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reportSvc.FullReport(ctx, &user)
		if errors.Is(err, service.ErrNoData) {
			continue
		}
		if err != nil {
			b.logger.Warn("build report", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
			continue
		}
		if err := b.sendPlain(user.TelegramID, text); err != nil {
			b.logger.Warn("send report", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	if !strings.HasPrefix(cb.Data, cbStopPrefix) {
		return nil
	}
	taskID, err := parseID(strings.TrimPrefix(cb.Data, cbStopPrefix))
	if err != nil {
		return nil
	}
	return b.stopTask(ctx, cb.Message.Chat.ID, cb.From, taskID)
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

// sendPlain sends report bodies without a parse mode, split to fit the
// message size limit.
func (b *Bot) sendPlain(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ReplyMarkup = mainMenuKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelRunning),
			tgbotapi.NewKeyboardButton(menuLabelReport),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

var errTrackUsage = errors.New("usage: /track category | activity | task")

// parseTrackArgs accepts "task", "category | task" and
// "category | activity | task".
func parseTrackArgs(args string) (service.TrackInput, error) {
	var parts []string
	for _, p := range strings.Split(args, "|") {
		parts = append(parts, strings.TrimSpace(p))
	}

	var input service.TrackInput
	switch len(parts) {
	case 1:
		input.Content = parts[0]
	case 2:
		input.Category, input.Content = parts[0], parts[1]
	case 3:
		input.Category, input.Activity, input.Content = parts[0], parts[1], parts[2]
	default:
		return input, errTrackUsage
	}
	if input.Content == "" {
		return input, errTrackUsage
	}
	return input, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func taskErrorText(err error) string {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "Task not found."
	case errors.Is(err, service.ErrTaskEnded):
		return "That task is already finished."
	case errors.Is(err, service.ErrInvalidMinutes):
		return "Minutes must be a positive number."
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}

func reportErrorText(err error) string {
	var malformed *timelog.MalformedDurationError
	switch {
	case errors.Is(err, service.ErrNoData):
		return "No tracked time found."
	case errors.As(err, &malformed):
		return fmt.Sprintf("Task «%s» has an invalid time value (%s).", escape(malformed.Content), escape(malformed.Text))
	default:
		return fmt.Sprintf("Could not build the report: %s", escape(err.Error()))
	}
}

func reminderErrorText(err error) string {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "Reminder not found."
	case errors.Is(err, service.ErrPastTarget):
		return "That time is already past."
	case errors.Is(err, service.ErrInvalidRepetition):
		return "Repeat must be daily, weekly or monthly."
	case errors.Is(err, service.ErrEmptyContent):
		return "Tell me what to remind you about."
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}

var errRemindUsage = errors.New("usage: /remind 18:30 | text, /remind 2024-05-01 09:00 | text | weekly or /remind 45m | text")

// parseRemindArgs accepts "when | text" with an optional "| repetition".
// When is a duration from now (45m, 2h), a clock time (the next one to
// come) or a full "YYYY-MM-DD HH:MM" date in now's location.
func parseRemindArgs(args string, now time.Time) (service.ReminderInput, error) {
	var parts []string
	for _, p := range strings.Split(args, "|") {
		parts = append(parts, strings.TrimSpace(p))
	}

	var input service.ReminderInput
	switch len(parts) {
	case 2:
		input.Content = parts[1]
	case 3:
		input.Content, input.Repetition = parts[1], parts[2]
	default:
		return input, errRemindUsage
	}
	if input.Content == "" {
		return input, errRemindUsage
	}

	target, err := parseWhen(parts[0], now)
	if err != nil {
		return input, errRemindUsage
	}
	input.Target = target
	return input, nil
}

func parseWhen(raw string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("duration must be positive")
		}
		return now.Add(d), nil
	}
	if t, err := time.ParseInLocation(reminderDateLayout, raw, now.Location()); err == nil {
		return t, nil
	}
	hour, minute, err := config.ParseClock(raw)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func formatReminderLine(reminder model.Reminder) string {
	line := fmt.Sprintf("%s · %s", reminder.TargetDate.Local().Format(reminderDateLayout), escape(reminder.Content))
	if reminder.Repetition != service.RepeatNone {
		line += fmt.Sprintf(" · %s", reminder.Repetition)
	}
	if reminder.IsPaused {
		line += " · paused"
	}
	return line
}

func formatReminderAlert(reminder model.Reminder) string {
	return fmt.Sprintf("⏰ <b>Reminder</b>\n%s", escape(reminder.Content))
}

func readableElapsed(task *model.Task) string {
	minutes, err := strconv.Atoi(strings.TrimSpace(task.TimeElapsed))
	if err != nil {
		return escape(task.TimeElapsed)
	}
	return timelog.Readable.ToReadable(minutes)
}

func formatRunning(task model.Task, now time.Time) string {
	since := int(now.Sub(task.EntryDate) / time.Minute)
	if since < 0 {
		since = 0
	}
	line := fmt.Sprintf("▶️ <b>#%d</b> %s · started %s ago", task.ID, escape(task.Content), timelog.Readable.ToReadable(since))
	if task.IsAltered {
		line += fmt.Sprintf(" · logged %s", readableElapsed(&task))
	}
	return line + "\n"
}

func chartFileName(title string) string {
	if title == "" {
		return "categories.json"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}

// splitMessage cuts text into chunks of at most limit bytes, preferring line
// breaks and never splitting a rune.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(title)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
