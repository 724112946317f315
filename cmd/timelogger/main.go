package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"time-logger/internal/bot"
	"time-logger/internal/config"
	"time-logger/internal/logging"
	"time-logger/internal/repository"
	"time-logger/internal/service"
	"time-logger/internal/timelog"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "timelogger",
	Short:         "Telegram bot that tracks where your time goes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBot,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and the report scheduler",
	RunE:  runBot,
}

var (
	reportTelegramID int64
	reportCategory   string
	reportChart      bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a time report or chart JSON for one user",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().Int64Var(&reportTelegramID, "telegram-id", 0, "Telegram ID of the user")
	reportCmd.Flags().StringVar(&reportCategory, "category", "", "report a single category by exact title")
	reportCmd.Flags().BoolVar(&reportChart, "chart", false, "print bar chart JSON instead of text")
	_ = reportCmd.MarkFlagRequired("telegram-id")

	rootCmd.AddCommand(botCmd, reportCmd)
}

type app struct {
	db          *gorm.DB
	users       *repository.UserRepository
	categorySvc *service.CategoryService
	trackingSvc *service.TrackingService
	reportSvc   *service.ReportService
	reminderSvc *service.ReminderService
}

func newApp() (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	loader := timelog.NewLoader(categoryRepo, activityRepo, taskRepo,
		timelog.WithConcurrency(cfg.LoadConcurrency),
		timelog.WithLogger(logger.Named(logging.ComponentLoader)))

	return &app{
		db:          db,
		users:       userRepo,
		categorySvc: service.NewCategoryService(categoryRepo),
		trackingSvc: service.NewTrackingService(taskRepo, categoryRepo, activityRepo, cfg.DefaultCategory, logger.Named(logging.ComponentTracking)),
		reportSvc:   service.NewReportService(loader, logger.Named(logging.ComponentReport)),
		reminderSvc: service.NewReminderService(reminderRepo, logger.Named(logging.ComponentReminder)),
	}, nil
}

func (a *app) close() {
	sqlDB, err := a.db.DB()
	if err != nil {
		logger.Warn("get sql db", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("close db", zap.Error(err))
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	scheduler := service.NewSchedulerService(time.Local, logger.Named(logging.ComponentScheduler))
	telegramBot, err := bot.New(&cfg, a.users, a.categorySvc, a.trackingSvc, a.reportSvc, a.reminderSvc, scheduler, logger.Named(logging.ComponentBot))
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	if err := telegramBot.ScheduleReports(); err != nil {
		return err
	}
	if err := telegramBot.ScheduleReminders(); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("time logger bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	user, err := a.users.FindByTelegramID(ctx, reportTelegramID)
	if err != nil {
		return err
	}

	var out []byte
	switch {
	case reportChart && reportCategory != "":
		out, err = a.reportSvc.CategoryChart(ctx, user, reportCategory)
	case reportChart:
		out, err = a.reportSvc.OverviewChart(ctx, user)
	case reportCategory != "":
		var text string
		text, err = a.reportSvc.CategoryReport(ctx, user, reportCategory)
		out = []byte(text)
	default:
		var text string
		text, err = a.reportSvc.FullReport(ctx, user)
		out = []byte(text)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
