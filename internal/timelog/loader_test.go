package timelog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeStore struct {
	mu         sync.Mutex
	categories map[uint][]CategoryRecord
	activities map[uint][]ActivityRecord
	ended      map[uint][]TaskRecord
	running    map[uint][]TaskRecord
	delay      map[uint]time.Duration
	err        error
	calls      []string
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeStore) CategoriesByUser(ctx context.Context, userID uint) ([]CategoryRecord, error) {
	s.record("categories")
	return s.categories[userID], nil
}

func (s *fakeStore) CategoryByTitle(ctx context.Context, userID uint, title string) (*CategoryRecord, error) {
	for _, rec := range s.categories[userID] {
		if rec.Title == title {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ActivitiesByCategory(ctx context.Context, categoryID uint) ([]ActivityRecord, error) {
	s.record("activities")
	if d := s.delay[categoryID]; d > 0 {
		time.Sleep(d)
	}
	return s.activities[categoryID], nil
}

func (s *fakeStore) EndedAlteredByActivity(ctx context.Context, activityID uint) ([]TaskRecord, error) {
	s.record("ended")
	if s.err != nil {
		return nil, s.err
	}
	if d := s.delay[activityID]; d > 0 {
		time.Sleep(d)
	}
	return s.ended[activityID], nil
}

func (s *fakeStore) AlteredNotEndedByCategory(ctx context.Context, categoryID uint) ([]TaskRecord, error) {
	s.record("running")
	return s.running[categoryID], nil
}

func newFixture() *fakeStore {
	return &fakeStore{
		categories: map[uint][]CategoryRecord{
			1: {{ID: 10, Title: "Work"}, {ID: 20, Title: "Health"}},
		},
		activities: map[uint][]ActivityRecord{
			10: {{ID: 100, Name: "Coding"}, {ID: 101, Name: "Meetings"}},
			20: {{ID: 200, Name: "Gym"}},
		},
		ended: map[uint][]TaskRecord{
			100: {{Content: "Fix bug", ElapsedText: "5"}, {Content: "Review", ElapsedText: " 7 "}, {Content: "Fix bug", ElapsedText: "7"}},
			101: {{Content: "Standup", ElapsedText: "15"}},
			200: {{Content: "Run", ElapsedText: "30"}},
		},
		running: map[uint][]TaskRecord{
			10: {{Content: "Email", ElapsedText: "3"}},
		},
	}
}

func newFixtureLoader(s *fakeStore, opts ...LoaderOption) *Loader {
	return NewLoader(s, s, s, opts...)
}

func TestLoadAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newFixture()
	categories, err := newFixtureLoader(s).LoadAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	work := categories[0]
	assert.Equal(t, "Work", work.Title())
	assert.Equal(t, []string{"Coding", "Meetings"}, work.ActivityNames())
	assert.Equal(t, []string{"Fix bug", "Review", "Standup"}, work.ActivitiesNames())
	assert.Equal(t, []int{12, 7, 15}, work.ActivitiesTimes())
	assert.Equal(t, []string{"Email"}, work.TasksNames())
	assert.Equal(t, 37, work.TotalElapsed())

	health := categories[1]
	assert.Equal(t, "Health", health.Title())
	assert.Equal(t, 30, health.TotalElapsedOfActivity("Gym"))
}

func TestLoadAll_NoCategories(t *testing.T) {
	s := newFixture()
	categories, err := newFixtureLoader(s).LoadAll(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, categories)
	assert.Equal(t, []string{"categories"}, s.calls)
}

func TestLoadAll_ParallelKeepsStoreOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newFixture()
	// The first category and activity finish last.
	s.delay = map[uint]time.Duration{10: 30 * time.Millisecond, 100: 20 * time.Millisecond}

	parallel, err := newFixtureLoader(s, WithConcurrency(8)).LoadAll(context.Background(), 1)
	require.NoError(t, err)
	sequential, err := newFixtureLoader(s, WithConcurrency(1)).LoadAll(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].String(), parallel[i].String())
		assert.Equal(t, sequential[i].ActivitiesNames(), parallel[i].ActivitiesNames())
	}
}

func TestLoadAll_KeepsEmptyActivities(t *testing.T) {
	s := newFixture()
	s.activities[20] = append(s.activities[20], ActivityRecord{ID: 201, Name: "Yoga"})

	categories, err := newFixtureLoader(s).LoadAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gym", "Yoga"}, categories[1].ActivityNames())
	assert.Equal(t, 0, categories[1].TotalElapsedOfActivity("Yoga"))
}

func TestLoadAll_DuplicateActivityNamesMerge(t *testing.T) {
	s := newFixture()
	s.activities[20] = append(s.activities[20], ActivityRecord{ID: 202, Name: "Gym"})
	s.ended[202] = []TaskRecord{{Content: "Run", ElapsedText: "10"}, {Content: "Lift", ElapsedText: "20"}}

	categories, err := newFixtureLoader(s).LoadAll(context.Background(), 1)
	require.NoError(t, err)
	health := categories[1]
	assert.Equal(t, []string{"Gym"}, health.ActivityNames())
	assert.Equal(t, []string{"Run", "Lift"}, health.ActivitiesNames())
	assert.Equal(t, []int{40, 20}, health.ActivitiesTimes())
}

func TestLoadAll_MalformedDuration(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newFixture()
	s.ended[200] = []TaskRecord{{Content: "Run", ElapsedText: "half an hour"}}

	categories, err := newFixtureLoader(s).LoadAll(context.Background(), 1)
	assert.Nil(t, categories)

	var malformed *MalformedDurationError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Run", malformed.Content)
	assert.Equal(t, "half an hour", malformed.Text)
	assert.Contains(t, err.Error(), `"Run"`)
}

func TestLoadAll_NegativeDuration(t *testing.T) {
	s := newFixture()
	s.running[10] = []TaskRecord{{Content: "Email", ElapsedText: "-4"}}

	_, err := newFixtureLoader(s).LoadAll(context.Background(), 1)
	var malformed *MalformedDurationError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "-4", malformed.Text)
}

func TestLoadAll_StoreError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	s := newFixture()
	s.err = boom

	_, err := newFixtureLoader(s).LoadAll(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}

func TestLoadOne(t *testing.T) {
	s := newFixture()
	loader := newFixtureLoader(s)

	health, err := loader.LoadOne(context.Background(), 1, "Health")
	require.NoError(t, err)
	require.NotNil(t, health)
	assert.Equal(t, "Category: **Health** - 30m\n\n⥤ Activity: Gym - 30m\n⩶⥤  Task: *Run* - 30m\n", health.String())

	missing, err := loader.LoadOne(context.Background(), 1, "health")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoadOne_SequentialCallOrder(t *testing.T) {
	s := newFixture()
	_, err := newFixtureLoader(s, WithConcurrency(1)).LoadOne(context.Background(), 1, "Work")
	require.NoError(t, err)
	assert.Equal(t, []string{"activities", "ended", "ended", "running"}, s.calls)
}

func TestWithFormatter(t *testing.T) {
	s := newFixture()
	format := FormatterFunc(func(m int) string { return "x" })

	health, err := newFixtureLoader(s, WithFormatter(format)).LoadOne(context.Background(), 1, "Health")
	require.NoError(t, err)
	assert.Equal(t, Summary{Name: "Health", Duration: "x"}, health.Summary())
}
