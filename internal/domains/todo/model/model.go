package model

import (
	"todoapi/shared/constant"
	"todoapi/shared/model"
)

const (
	TableName  = "todos"
	EntityName = "todo"

	FieldID     = "id"
	FieldTask   = "task"
	FieldIsDone = "is_done"
)

const (
	StatusOpen = 0
	StatusDone = 1
)

// SortableFields are the columns a list request may order by.
var SortableFields = []string{
	FieldTask,
	FieldIsDone,
	constant.FieldCreatedAt,
	constant.FieldUpdatedAt,
}

type Todo struct {
	ID     string `db:"id"`
	Task   string `db:"task"`
	IsDone int    `db:"is_done"`
	model.Metadata
}
