package todo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"todoapi/config"
	"todoapi/infras/otel/mocks"
	"todoapi/internal/domains/todo/model"
	"todoapi/internal/domains/todo/service"
	"todoapi/internal/handlers/todo"
	"todoapi/shared/cache"
	gDto "todoapi/shared/dto"
	gRepo "todoapi/shared/repository"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo keeps todos in a map and honours soft deletion.
type memoryRepo struct {
	mu    sync.Mutex
	todos map[string]model.Todo
	order []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{todos: map[string]model.Todo{}}
}

func (r *memoryRepo) live(filter gDto.FilterGroup) (model.Todo, bool) {
	_, args := filter.GetWhereClause()

	id, _ := args[model.FieldID].(string)

	todo, ok := r.todos[id]
	if !ok || todo.DeletedAt != nil {
		return model.Todo{}, false
	}

	return todo, true
}

func (r *memoryRepo) Insert(_ context.Context, todo model.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.todos[todo.ID] = todo
	r.order = append(r.order, todo.ID)

	return nil
}

func (r *memoryRepo) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.live(filter)
	if !ok {
		return model.Todo{}, gRepo.ErrNoRows
	}

	return todo, nil
}

func (r *memoryRepo) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := []model.Todo{}

	for _, id := range r.order {
		if todo := r.todos[id]; todo.DeletedAt == nil {
			todos = append(todos, todo)
		}
	}

	return todos, nil
}

func (r *memoryRepo) Count(ctx context.Context, filter gDto.FilterGroup) (int, error) {
	todos, err := r.GetAll(ctx, gDto.QueryParams{}, filter)

	return len(todos), err
}

func (r *memoryRepo) Update(_ context.Context, req map[string]any, filter gDto.FilterGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.live(filter)
	if !ok {
		return gRepo.ErrNoRows
	}

	if task, ok := req[model.FieldTask].(string); ok {
		todo.Task = task
	}

	if isDone, ok := req[model.FieldIsDone].(int); ok {
		todo.IsDone = isDone
	}

	if updatedAt, ok := req["updated_at"].(time.Time); ok {
		todo.UpdatedAt = updatedAt
	}

	r.todos[todo.ID] = todo

	return nil
}

func (r *memoryRepo) SoftDelete(_ context.Context, filter gDto.FilterGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.live(filter)
	if !ok {
		return gRepo.ErrNoRows
	}

	now := time.Now()
	todo.DeletedAt = &now
	r.todos[todo.ID] = todo

	return nil
}

func TestTodoLifecycle(t *testing.T) {
	ot := mocks.NewOtel()
	svc := service.New(newMemoryRepo(), &config.Config{}, cache.NewRedisCache(nil, ot), ot)
	handler := todo.New(svc, ot)

	router := chi.NewRouter()
	router.Route("/api/v1", handler.Router)

	rec := do(router, http.MethodPost, "/api/v1/todo", `{"task":"water plants","isDone":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "water plants", created["task"])
	assert.InDelta(t, 0, created["isDone"], 0)
	assert.Nil(t, created["deletedAt"])

	rec = do(router, http.MethodGet, "/api/v1/todo/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPut, "/api/v1/todo/"+id, `{"isDone":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "water plants", updated["task"])
	assert.InDelta(t, 1, updated["isDone"], 0)
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	rec = do(router, http.MethodGet, "/api/v1/todo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = do(router, http.MethodDelete, "/api/v1/todo/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/todo/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodDelete, "/api/v1/todo/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPut, "/api/v1/todo/"+id, `{"isDone":0}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/todo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get("X-Total-Count"))
}
