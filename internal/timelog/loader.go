package timelog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Loader builds Category aggregates from the stores. Fetches may run in
// parallel but results are always assembled in store order, so the output
// matches a sequential load.
type Loader struct {
	categories  CategoryStore
	activities  ActivityStore
	tasks       TaskStore
	concurrency int
	format      DurationFormatter
	logger      *zap.Logger
}

type LoaderOption func(*Loader)

// WithConcurrency bounds the number of in-flight fetches per fan-out.
// Values below 1 make the loader fully sequential.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n < 1 {
			n = 1
		}
		l.concurrency = n
	}
}

func WithFormatter(f DurationFormatter) LoaderOption {
	return func(l *Loader) {
		l.format = f
	}
}

func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLoader(categories CategoryStore, activities ActivityStore, tasks TaskStore, opts ...LoaderOption) *Loader {
	l := &Loader{
		categories:  categories,
		activities:  activities,
		tasks:       tasks,
		concurrency: defaultConcurrency,
		format:      Readable,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll hydrates every category of the user. It returns nil and no error
// when the user has no categories.
func (l *Loader) LoadAll(ctx context.Context, userID uint) ([]*Category, error) {
	records, err := l.categories.CategoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([]*Category, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			category, err := l.hydrate(gctx, rec)
			if err != nil {
				return err
			}
			out[i] = category
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Debug("categories loaded", zap.Uint("user_id", userID), zap.Int("count", len(out)))
	return out, nil
}

// LoadOne hydrates the category whose title matches exactly. It returns nil
// and no error when there is no such category.
func (l *Loader) LoadOne(ctx context.Context, userID uint, title string) (*Category, error) {
	rec, err := l.categories.CategoryByTitle(ctx, userID, title)
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", title, err)
	}
	if rec == nil {
		return nil, nil
	}
	return l.hydrate(ctx, *rec)
}

func (l *Loader) hydrate(ctx context.Context, rec CategoryRecord) (*Category, error) {
	activities, err := l.activities.ActivitiesByCategory(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list activities of category %d: %w", rec.ID, err)
	}

	batches := make([][]TaskRecord, len(activities))
	var direct []TaskRecord

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, activity := range activities {
		i, activity := i, activity
		g.Go(func() error {
			tasks, err := l.tasks.EndedAlteredByActivity(gctx, activity.ID)
			if err != nil {
				return fmt.Errorf("list tasks of activity %d: %w", activity.ID, err)
			}
			batches[i] = tasks
			return nil
		})
	}
	g.Go(func() error {
		tasks, err := l.tasks.AlteredNotEndedByCategory(gctx, rec.ID)
		if err != nil {
			return fmt.Errorf("list tasks of category %d: %w", rec.ID, err)
		}
		direct = tasks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	category := NewCategory(rec.Title, l.format)
	for i, activity := range activities {
		category.AddActivity(activity.Name, true)
		for _, task := range batches[i] {
			minutes, err := parseElapsed(task)
			if err != nil {
				return nil, err
			}
			category.AddTaskToActivity(activity.Name, task.Content, minutes, true)
		}
	}
	for _, task := range direct {
		minutes, err := parseElapsed(task)
		if err != nil {
			return nil, err
		}
		category.AddTaskToCategory(task.Content, minutes, true)
	}

	l.logger.Debug("category hydrated",
		zap.String("category", rec.Title),
		zap.Int("activities", len(activities)),
		zap.Int("direct_tasks", len(direct)))
	return category, nil
}
