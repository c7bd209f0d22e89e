package services

import (
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// ProjectBoard groups tasks by status. The four canonical columns are always
// present, in fixed order; any other status gets its own column after them in
// first-seen order. Tasks keep their input order inside a column.
func ProjectBoard(tasks []domain.Task) ports.Board {
	columns := make([]ports.BoardColumn, 0, len(domain.CanonicalStatuses))
	index := make(map[domain.TaskStatus]int, len(domain.CanonicalStatuses))
	for _, status := range domain.CanonicalStatuses {
		index[status] = len(columns)
		columns = append(columns, ports.BoardColumn{Status: status, Tasks: []domain.Task{}})
	}

	for _, task := range tasks {
		i, ok := index[task.Status]
		if !ok {
			i = len(columns)
			index[task.Status] = i
			columns = append(columns, ports.BoardColumn{Status: task.Status, Tasks: []domain.Task{}})
		}
		columns[i].Tasks = append(columns[i].Tasks, task)
	}
	return ports.Board{Columns: columns}
}
