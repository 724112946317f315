package timelog

import "context"

// CategoryRecord is a category row as the loader needs it.
type CategoryRecord struct {
	ID    uint
	Title string
}

// ActivityRecord is an activity row as the loader needs it.
type ActivityRecord struct {
	ID   uint
	Name string
}

// TaskRecord carries the elapsed minutes as stored, unparsed.
type TaskRecord struct {
	Content     string
	ElapsedText string
}

type CategoryStore interface {
	CategoriesByUser(ctx context.Context, userID uint) ([]CategoryRecord, error)
	// CategoryByTitle returns nil and no error when the user has no category
	// with exactly that title.
	CategoryByTitle(ctx context.Context, userID uint, title string) (*CategoryRecord, error)
}

type ActivityStore interface {
	ActivitiesByCategory(ctx context.Context, categoryID uint) ([]ActivityRecord, error)
}

type TaskStore interface {
	// EndedAlteredByActivity lists finished tasks of an activity.
	EndedAlteredByActivity(ctx context.Context, activityID uint) ([]TaskRecord, error)
	// AlteredNotEndedByCategory lists in-progress tasks attached to the
	// category without an activity.
	AlteredNotEndedByCategory(ctx context.Context, categoryID uint) ([]TaskRecord, error)
}
