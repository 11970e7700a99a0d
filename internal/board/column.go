package board

import "taskboard/internal/model"

// Column is a drop target on the board. ID is the status a dropped task
// takes.
type Column struct {
	ID    model.Status
	Title string
	Color string
}

var Columns = []Column{
	{ID: model.StatusBacklog, Title: "Backlog", Color: "status-backlog"},
	{ID: model.StatusToday, Title: "Today", Color: "status-today"},
	{ID: model.StatusReview, Title: "In Review", Color: "status-review"},
	{ID: model.StatusDone, Title: "Done", Color: "status-done"},
}

// ColumnFor looks up a column by its drop target id.
func ColumnFor(id string) (Column, bool) {
	for _, col := range Columns {
		if string(col.ID) == id {
			return col, true
		}
	}
	return Column{}, false
}

// Bucket partitions tasks by exact status match, keeping source order within
// each column. Tasks whose status is not a column are left out.
func Bucket(tasks []model.Task) map[model.Status][]model.Task {
	buckets := make(map[model.Status][]model.Task, len(Columns))
	for _, col := range Columns {
		buckets[col.ID] = []model.Task{}
	}
	for _, t := range tasks {
		if _, ok := buckets[t.Status]; ok {
			buckets[t.Status] = append(buckets[t.Status], t)
		}
	}
	return buckets
}
