package timelog

import "strconv"

// TaskList maps task names to elapsed minutes and remembers insertion order.
type TaskList struct {
	names   []string
	minutes map[string]int
}

func newTaskList() *TaskList {
	return &TaskList{minutes: make(map[string]int)}
}

// Len returns the number of tasks in the list.
func (l *TaskList) Len() int {
	return len(l.names)
}

// Get returns the elapsed minutes recorded for name.
func (l *TaskList) Get(name string) (int, bool) {
	v, ok := l.minutes[name]
	return v, ok
}

func (l *TaskList) has(name string) bool {
	_, ok := l.minutes[name]
	return ok
}

// Names returns the task names in insertion order.
func (l *TaskList) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Minutes returns the elapsed values in insertion order.
func (l *TaskList) Minutes() []int {
	out := make([]int, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, l.minutes[name])
	}
	return out
}

// Total sums every value in the list.
func (l *TaskList) Total() int {
	total := 0
	for _, v := range l.minutes {
		total += v
	}
	return total
}

// Each calls fn for every task in insertion order.
func (l *TaskList) Each(fn func(name string, minutes int)) {
	for _, name := range l.names {
		fn(name, l.minutes[name])
	}
}

// add records elapsed under name. With aggregate the value is summed into an
// existing entry, otherwise a colliding name gets a numeric suffix.
func (l *TaskList) add(name string, elapsed int, aggregate bool) string {
	if l.has(name) {
		if aggregate {
			l.minutes[name] += elapsed
			return name
		}
		name = freeName(name, l.has)
	}
	l.names = append(l.names, name)
	l.minutes[name] = elapsed
	return name
}

// freeName appends the smallest positive integer that makes name unused.
func freeName(name string, taken func(string) bool) string {
	i := 1
	for taken(name + strconv.Itoa(i)) {
		i++
	}
	return name + strconv.Itoa(i)
}
