package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"time-logger/internal/model"
	"time-logger/internal/timelog"
)

// ErrNoData is returned when there is nothing to report for the request.
var ErrNoData = errors.New("no tracked time found")

// ReportService renders time reports and chart payloads. Every call loads a
// fresh aggregate and drops it once rendered.
type ReportService struct {
	loader *timelog.Loader
	logger *zap.Logger
}

func NewReportService(loader *timelog.Loader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{loader: loader, logger: logger}
}

// CategoryReport renders the report of one category.
func (s *ReportService) CategoryReport(ctx context.Context, user *model.User, title string) (string, error) {
	category, err := s.loadOne(ctx, user, title)
	if err != nil {
		return "", err
	}
	return category.String(), nil
}

// FullReport renders every category of the user, separated by blank lines.
func (s *ReportService) FullReport(ctx context.Context, user *model.User) (string, error) {
	categories, err := s.loadAll(ctx, user)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		parts = append(parts, strings.TrimRight(c.String(), "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

// Summaries returns the headline of every category.
func (s *ReportService) Summaries(ctx context.Context, user *model.User) ([]timelog.Summary, error) {
	categories, err := s.loadAll(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]timelog.Summary, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Summary())
	}
	return out, nil
}

// CategoryChart returns the bar chart JSON of one category.
func (s *ReportService) CategoryChart(ctx context.Context, user *model.User, title string) ([]byte, error) {
	category, err := s.loadOne(ctx, user, title)
	if err != nil {
		return nil, err
	}
	return marshalChart(timelog.CategoryChart(category))
}

// OverviewChart returns the bar chart JSON comparing all categories.
func (s *ReportService) OverviewChart(ctx context.Context, user *model.User) ([]byte, error) {
	categories, err := s.loadAll(ctx, user)
	if err != nil {
		return nil, err
	}
	return marshalChart(timelog.CategoriesChart(categories))
}

func (s *ReportService) loadOne(ctx context.Context, user *model.User, title string) (*timelog.Category, error) {
	category, err := s.loader.LoadOne(ctx, user.ID, strings.TrimSpace(title))
	if err != nil {
		s.logger.Error("load category failed", zap.Uint("user_id", user.ID), zap.String("category", title), zap.Error(err))
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", title, ErrNoData)
	}
	return category, nil
}

func (s *ReportService) loadAll(ctx context.Context, user *model.User) ([]*timelog.Category, error) {
	categories, err := s.loader.LoadAll(ctx, user.ID)
	if err != nil {
		s.logger.Error("load categories failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	if categories == nil {
		return nil, ErrNoData
	}
	return categories, nil
}

func marshalChart(data timelog.BarData) ([]byte, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return raw, nil
}
