package timelog

import (
	"fmt"
	"strings"
)

// Summary pairs a name with its readable duration. The zero value reports a
// lookup miss.
type Summary struct {
	Name     string
	Duration string
}

// IsZero reports whether the summary is the miss sentinel.
func (s Summary) IsZero() bool {
	return s.Name == "" && s.Duration == ""
}

// Category accumulates elapsed time for one category, its activities and the
// tasks attached directly to it. It is built during one load and read
// afterwards; entries are never removed.
type Category struct {
	title      string
	format     DurationFormatter
	activities []string
	byActivity map[string]*TaskList
	tasks      *TaskList
}

// NewCategory returns an empty category. A nil formatter falls back to Readable.
func NewCategory(title string, f DurationFormatter) *Category {
	if f == nil {
		f = Readable
	}
	return &Category{
		title:      title,
		format:     f,
		byActivity: make(map[string]*TaskList),
		tasks:      newTaskList(),
	}
}

func (c *Category) Title() string {
	return c.title
}

// AddActivity returns the task list of the named activity. With aggregate an
// existing activity is reused; without it a colliding name is suffixed with
// the smallest free positive integer and a new activity is created.
func (c *Category) AddActivity(name string, aggregate bool) *TaskList {
	if list, ok := c.byActivity[name]; ok {
		if aggregate {
			return list
		}
		name = freeName(name, c.hasActivity)
	}
	list := newTaskList()
	c.activities = append(c.activities, name)
	c.byActivity[name] = list
	return list
}

func (c *Category) hasActivity(name string) bool {
	_, ok := c.byActivity[name]
	return ok
}

// AddTaskToActivity records elapsed minutes for content under the activity,
// creating the activity when needed.
func (c *Category) AddTaskToActivity(activity, content string, elapsed int, aggregate bool) {
	c.AddActivity(activity, true).add(content, elapsed, aggregate)
}

// AddTaskToCategory records elapsed minutes for a task with no activity.
func (c *Category) AddTaskToCategory(content string, elapsed int, aggregate bool) {
	c.tasks.add(content, elapsed, aggregate)
}

// ActivityNames returns the activities in insertion order.
func (c *Category) ActivityNames() []string {
	out := make([]string, len(c.activities))
	copy(out, c.activities)
	return out
}

// Activity returns the task list of an activity.
func (c *Category) Activity(name string) (*TaskList, bool) {
	list, ok := c.byActivity[name]
	return list, ok
}

// Tasks returns the tasks attached directly to the category.
func (c *Category) Tasks() *TaskList {
	return c.tasks
}

// TotalElapsed sums every task of every activity plus the direct tasks.
func (c *Category) TotalElapsed() int {
	total := c.tasks.Total()
	for _, list := range c.byActivity {
		total += list.Total()
	}
	return total
}

// TotalElapsedOfActivity returns 0 for an unknown activity.
func (c *Category) TotalElapsedOfActivity(name string) int {
	list, ok := c.byActivity[name]
	if !ok {
		return 0
	}
	return list.Total()
}

func (c *Category) Summary() Summary {
	return Summary{Name: c.title, Duration: c.format.ToReadable(c.TotalElapsed())}
}

func (c *Category) SummaryOfActivity(name string) Summary {
	list, ok := c.byActivity[name]
	if !ok {
		return Summary{}
	}
	return Summary{Name: name, Duration: c.format.ToReadable(list.Total())}
}

func (c *Category) SummaryOfTaskActivity(task, activity string) Summary {
	list, ok := c.byActivity[activity]
	if !ok {
		return Summary{}
	}
	v, ok := list.Get(task)
	if !ok {
		return Summary{}
	}
	return Summary{Name: task, Duration: c.format.ToReadable(v)}
}

func (c *Category) SummaryOfTaskCategory(task string) Summary {
	v, ok := c.tasks.Get(task)
	if !ok {
		return Summary{}
	}
	return Summary{Name: task, Duration: c.format.ToReadable(v)}
}

// ActivitiesTimes flattens the elapsed values of all activity tasks, activity
// order first, then task order. It is parallel to ActivitiesNames.
func (c *Category) ActivitiesTimes() []int {
	var out []int
	for _, name := range c.activities {
		out = append(out, c.byActivity[name].Minutes()...)
	}
	return out
}

// ActivitiesNames flattens the task names of all activities.
func (c *Category) ActivitiesNames() []string {
	var out []string
	for _, name := range c.activities {
		out = append(out, c.byActivity[name].Names()...)
	}
	return out
}

func (c *Category) TasksTimes() []int {
	return c.tasks.Minutes()
}

func (c *Category) TasksNames() []string {
	return c.tasks.Names()
}

// String renders the nested report sent to chat.
func (c *Category) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Category: **%s** - %s\n", c.title, c.format.ToReadable(c.TotalElapsed())))
	for _, name := range c.activities {
		list := c.byActivity[name]
		b.WriteString(fmt.Sprintf("\n⥤ Activity: %s - %s\n", name, c.format.ToReadable(list.Total())))
		list.Each(func(content string, minutes int) {
			b.WriteString(fmt.Sprintf("⩶⥤  Task: *%s* - %s\n", content, c.format.ToReadable(minutes)))
		})
	}
	c.tasks.Each(func(content string, minutes int) {
		b.WriteString(fmt.Sprintf("\n⥤ Task: %s - %s\n", content, c.format.ToReadable(minutes)))
	})
	return b.String()
}
