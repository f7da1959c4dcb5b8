package todo_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoapi/infras/otel/mocks"
	"todoapi/internal/domains/todo/model"
	"todoapi/internal/domains/todo/model/dto"
	serviceMocks "todoapi/internal/domains/todo/service/mocks"
	"todoapi/internal/handlers/todo"
	gDto "todoapi/shared/dto"
	"todoapi/shared/failure"
	gModel "todoapi/shared/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const validID = "3b241101-e2bb-4255-8caf-4136c566a962"

func newRouter(t *testing.T) (http.Handler, *serviceMocks.MockTodo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockService := serviceMocks.NewMockTodo(ctrl)

	handler := todo.New(mockService, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/api/v1", handler.Router)

	return router, mockService
}

func sampleTodo() model.Todo {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	return model.Todo{
		ID:       validID,
		Task:     "buy milk",
		IsDone:   0,
		Metadata: gModel.Metadata{CreatedAt: now, UpdatedAt: now},
	}
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body["error"]
}

func TestHandler_GetTodos(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMock  func(mockService *serviceMocks.MockTodo)
		wantStatus int
		wantLen    int
		wantTotal  string
	}{
		{
			name:   "no params lists everything",
			target: "/api/v1/todo",
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					FindAll(gomock.Any(), gDto.QueryParams{}, gomock.Any()).
					DoAndReturn(func(_ any, _ gDto.QueryParams, filter gDto.FilterGroup) ([]model.Todo, int, error) {
						assert.True(t, filter.IsEmpty())

						return []model.Todo{sampleTodo(), sampleTodo()}, 2, nil
					})
			},
			wantStatus: http.StatusOK,
			wantLen:    2,
			wantTotal:  "2",
		},
		{
			name:   "filters and pagination",
			target: "/api/v1/todo?task=Milk&isDone=1&page=2&limit=5&sort_by=created_at&sort_dir=desc",
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					FindAll(gomock.Any(), gDto.QueryParams{Page: 2, Limit: 5, SortBy: "created_at", SortDir: gDto.SortDirDesc}, gomock.Any()).
					DoAndReturn(func(_ any, _ gDto.QueryParams, filter gDto.FilterGroup) ([]model.Todo, int, error) {
						where, args := filter.GetWhereClause()
						assert.Equal(t, `(LOWER(todos.task) LIKE LOWER(:task) ESCAPE '\' AND todos.is_done = :is_done)`, where)
						assert.Equal(t, "%Milk%", args["task"])
						assert.Equal(t, 1, args["is_done"])

						return []model.Todo{}, 7, nil
					})
			},
			wantStatus: http.StatusOK,
			wantLen:    0,
			wantTotal:  "7",
		},
		{
			name:       "invalid isDone",
			target:     "/api/v1/todo?isDone=2",
			setupMock:  func(*serviceMocks.MockTodo) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non numeric isDone",
			target:     "/api/v1/todo?isDone=yes",
			setupMock:  func(*serviceMocks.MockTodo) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "invalid sort column",
			target: "/api/v1/todo?sort_by=password",
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					FindAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, 0, failure.InvalidSortParam)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "service error",
			target: "/api/v1/todo",
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					FindAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, 0, errors.New("database error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockService := newRouter(t)
			tt.setupMock(mockService)

			rec := do(router, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, decodeError(t, rec))

				return
			}

			var body []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body, tt.wantLen)
			assert.Equal(t, tt.wantTotal, rec.Header().Get("X-Total-Count"))
		})
	}
}

func TestHandler_CreateTodo(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(mockService *serviceMocks.MockTodo)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"task":"buy milk","isDone":0}`,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, req dto.CreateTodoRequest) (model.Todo, error) {
						assert.Equal(t, "buy milk", req.Task)
						require.NotNil(t, req.IsDone)
						assert.Equal(t, 0, *req.IsDone)

						return sampleTodo(), nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{name: "missing task", body: `{"isDone":0}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "missing isDone", body: `{"task":"buy milk"}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "isDone out of range", body: `{"task":"buy milk","isDone":5}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "task too long", body: `{"task":"` + strings.Repeat("x", 256) + `","isDone":0}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"task":`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{
			name: "service error",
			body: `{"task":"buy milk","isDone":1}`,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(model.Todo{}, errors.New("database error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockService := newRouter(t)
			tt.setupMock(mockService)

			rec := do(router, http.MethodPost, "/api/v1/todo", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusCreated {
				assert.NotEmpty(t, decodeError(t, rec))

				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, validID, body["id"])
			assert.Equal(t, "buy milk", body["task"])
			assert.Contains(t, body, "createdAt")
			assert.Nil(t, body["deletedAt"])
		})
	}
}

func TestHandler_GetTodoByID(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		setupMock  func(mockService *serviceMocks.MockTodo)
		wantStatus int
		wantError  string
	}{
		{
			name: "found",
			id:   validID,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().FindOneOrFail(gomock.Any(), validID).Return(sampleTodo(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "uppercase id is normalised",
			id:   strings.ToUpper(validID),
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().FindOneOrFail(gomock.Any(), validID).Return(sampleTodo(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not a uuid",
			id:         "123",
			setupMock:  func(*serviceMocks.MockTodo) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Validation failed (uuid is expected)",
		},
		{
			name: "not found",
			id:   validID,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().FindOneOrFail(gomock.Any(), validID).Return(model.Todo{}, failure.NotFound("todo with id x was not found"))
			},
			wantStatus: http.StatusNotFound,
			wantError:  "todo with id x was not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockService := newRouter(t)
			tt.setupMock(mockService)

			rec := do(router, http.MethodGet, "/api/v1/todo/"+tt.id, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec))

				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, validID, body["id"])
		})
	}
}

func TestHandler_UpdateTodo(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		body       string
		setupMock  func(mockService *serviceMocks.MockTodo)
		wantStatus int
	}{
		{
			name: "only isDone",
			id:   validID,
			body: `{"isDone":1}`,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().
					Update(gomock.Any(), validID, gomock.Any()).
					DoAndReturn(func(_ any, _ string, req dto.UpdateTodoRequest) (model.Todo, error) {
						assert.Nil(t, req.Task)
						require.NotNil(t, req.IsDone)

						updated := sampleTodo()
						updated.IsDone = *req.IsDone

						return updated, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "empty object is accepted",
			id:   validID,
			body: `{}`,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().Update(gomock.Any(), validID, dto.UpdateTodoRequest{}).Return(sampleTodo(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "no body merges nothing",
			id:   validID,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().Update(gomock.Any(), validID, dto.UpdateTodoRequest{}).Return(sampleTodo(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{name: "malformed body", id: validID, body: `{"isDone":`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "bad uuid", id: "nope", body: `{"isDone":1}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "isDone out of range", id: validID, body: `{"isDone":3}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{name: "blank task", id: validID, body: `{"task":"  "}`, setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{
			name: "not found",
			id:   validID,
			body: `{"isDone":1}`,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().Update(gomock.Any(), validID, gomock.Any()).Return(model.Todo{}, failure.NotFound("missing"))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockService := newRouter(t)
			tt.setupMock(mockService)

			rec := do(router, http.MethodPut, "/api/v1/todo/"+tt.id, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_DeleteTodo(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		setupMock  func(mockService *serviceMocks.MockTodo)
		wantStatus int
	}{
		{
			name: "deleted",
			id:   validID,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().DeleteByID(gomock.Any(), validID).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{name: "bad uuid", id: "123", setupMock: func(*serviceMocks.MockTodo) {}, wantStatus: http.StatusBadRequest},
		{
			name: "not found",
			id:   validID,
			setupMock: func(mockService *serviceMocks.MockTodo) {
				mockService.EXPECT().DeleteByID(gomock.Any(), validID).Return(failure.NotFound("missing"))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockService := newRouter(t)
			tt.setupMock(mockService)

			rec := do(router, http.MethodDelete, "/api/v1/todo/"+tt.id, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusNoContent {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}
