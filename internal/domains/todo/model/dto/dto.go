package dto

import (
	"todoapi/internal/domains/todo/model"
	gDto "todoapi/shared/dto"
	gModel "todoapi/shared/model"
	"todoapi/shared/timezone"

	"github.com/google/uuid"
)

type CreateTodoRequest struct {
	Task   string `json:"task"   validate:"required,notblank,max=255"`
	IsDone *int   `json:"isDone" validate:"required,oneof=0 1"`
}

// ToModel mints the id and both timestamps for a new row.
func (c *CreateTodoRequest) ToModel() model.Todo {
	now := timezone.Now()

	todo := model.Todo{
		ID:   uuid.NewString(),
		Task: c.Task,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if c.IsDone != nil {
		todo.IsDone = *c.IsDone
	}

	return todo
}

// UpdateTodoRequest is a partial update: nil fields are left unchanged.
type UpdateTodoRequest struct {
	Task   *string `db:"task"    json:"task"   validate:"omitnil,notblank,max=255"`
	IsDone *int    `db:"is_done" json:"isDone" validate:"omitnil,oneof=0 1"`
}

func (u *UpdateTodoRequest) IsEmpty() bool {
	return u.Task == nil && u.IsDone == nil
}

// ApplyTo merges the provided fields into todo.
func (u *UpdateTodoRequest) ApplyTo(todo *model.Todo) {
	if u.Task != nil {
		todo.Task = *u.Task
	}

	if u.IsDone != nil {
		todo.IsDone = *u.IsDone
	}
}

type TodoResponse struct {
	ID     string `json:"id"`
	Task   string `json:"task"`
	IsDone int    `json:"isDone"`
	gDto.Metadata
}

func (r *TodoResponse) FromModel(model model.Todo) {
	r.ID = model.ID
	r.Task = model.Task
	r.IsDone = model.IsDone
	r.Metadata.FromModel(model.Metadata)
}

// FromModels converts a list; the result is never nil so it encodes as [].
func FromModels(models []model.Todo) []TodoResponse {
	responses := make([]TodoResponse, len(models))

	for i, mod := range models {
		responses[i].FromModel(mod)
	}

	return responses
}
