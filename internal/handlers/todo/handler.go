package todo

import (
	"net/http"
	"strconv"
	"strings"

	"todoapi/infras/otel"
	"todoapi/internal/domains/todo/model"
	"todoapi/internal/domains/todo/model/dto"
	"todoapi/internal/domains/todo/service"
	"todoapi/shared"
	"todoapi/shared/constant"
	gDto "todoapi/shared/dto"
	"todoapi/shared/failure"
	"todoapi/shared/logger"
	"todoapi/shared/validator"
	"todoapi/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const (
	queryParamTask   = "task"
	queryParamIsDone = "isDone"
)

type Handler struct {
	service service.Todo
	otel    otel.Otel
}

func New(service service.Todo, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/todo", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetTodos)
		routerGroup.Post("/", handler.CreateTodo)
		routerGroup.Get("/{id}", handler.GetTodoByID)
		routerGroup.Put("/{id}", handler.UpdateTodo)
		routerGroup.Delete("/{id}", handler.DeleteTodo)
	})
}

// GetTodos lists todos that have not been deleted.
// @Summary List todo items
// @Description List todo items that have not been deleted. Without query parameters every item is returned.
// @Tags Todo
// @Produce json
// @Param task query string false "Case-insensitive substring of the task"
// @Param isDone query int false "Completion flag" Enums(0, 1)
// @Param page query int false "Page number, used together with limit"
// @Param limit query int false "Page size"
// @Param sort_by query string false "Sort column" Enums(task, is_done, created_at, updated_at)
// @Param sort_dir query string false "Sort direction" Enums(ASC, DESC)
// @Success 200 {array} dto.TodoResponse
// @Header 200 {integer} X-Total-Count "Number of matching items"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/v1/todo [get]
func (handler *Handler) GetTodos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTodos")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if task := r.URL.Query().Get(queryParamTask); task != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldTask,
			Operator: gDto.FilterOperatorLike,
			Value:    task,
			Table:    model.TableName,
		})
	}

	isDone, err := shared.ConvertStringToInt(r.URL.Query().Get(queryParamIsDone))
	if err == nil && isDone != nil {
		err = validator.ValidateVar(*isDone, "oneof=0 1")
	}

	if err != nil {
		scope.TraceError(err)
		response.WithError(w, failure.BadRequestFromString(queryParamIsDone+" must be one of 0 1"))

		return
	}

	if isDone != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsDone,
			Operator: gDto.FilterOperatorEq,
			Value:    *isDone,
			Table:    model.TableName,
		})
	}

	todos, total, err := handler.service.FindAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("failed to get todos")

		response.WithError(w, err)

		return
	}

	w.Header().Set(constant.ResponseHeaderTotalCount, strconv.Itoa(total))
	response.WithBody(w, http.StatusOK, dto.FromModels(todos))
}

// CreateTodo handles the creation of a new todo item.
// @Summary Create a todo item
// @Description Create a todo item. Both task and isDone are required.
// @Tags Todo
// @Accept json
// @Produce json
// @Param request body dto.CreateTodoRequest true "Create Todo Request"
// @Success 201 {object} dto.TodoResponse
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/v1/todo [post]
func (handler *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateTodo")
	defer scope.End()

	req := dto.CreateTodoRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	todo, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("failed to create todo")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Todo created " + todo.ID)

	var res dto.TodoResponse
	res.FromModel(todo)

	response.WithBody(w, http.StatusCreated, res)
}

// GetTodoByID retrieves a todo item by its ID.
// @Summary Get a todo item by ID
// @Description Retrieve a todo item that has not been deleted.
// @Tags Todo
// @Produce json
// @Param id path string true "Todo ID" Format(uuid)
// @Success 200 {object} dto.TodoResponse
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/v1/todo/{id} [get]
func (handler *Handler) GetTodoByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTodoByID")
	defer scope.End()

	id, err := pathID(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	todo, err := handler.service.FindOneOrFail(ctx, id)
	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("id", id).Msg("failed to get todo by ID")

		response.WithError(w, err)

		return
	}

	var res dto.TodoResponse
	res.FromModel(todo)

	response.WithBody(w, http.StatusOK, res)
}

// UpdateTodo updates an existing todo item by its ID.
// @Summary Update a todo item by ID
// @Description Merge the provided fields into a todo item. Omitted fields are left unchanged.
// @Tags Todo
// @Accept json
// @Produce json
// @Param id path string true "Todo ID" Format(uuid)
// @Param request body dto.UpdateTodoRequest false "Update Todo Request"
// @Success 200 {object} dto.TodoResponse
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/v1/todo/{id} [put]
func (handler *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTodo")
	defer scope.End()

	id, err := pathID(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.UpdateTodoRequest{}
	if err = validator.ValidateOptional(r.Body, &req); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	todo, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("id", id).Msg("failed to update todo")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Todo updated " + id)

	var res dto.TodoResponse
	res.FromModel(todo)

	response.WithBody(w, http.StatusOK, res)
}

// DeleteTodo soft deletes a todo item by its ID.
// @Summary Delete a todo item by ID
// @Description Mark a todo item as deleted. It disappears from every read afterwards.
// @Tags Todo
// @Param id path string true "Todo ID" Format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/v1/todo/{id} [delete]
func (handler *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteTodo")
	defer scope.End()

	id, err := pathID(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err = handler.service.DeleteByID(ctx, id); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("id", id).Msg("failed to delete todo")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Todo deleted " + id)

	response.WithNoContent(w)
}

func pathID(r *http.Request) (string, error) {
	id := strings.ToLower(chi.URLParam(r, constant.RequestParamID))

	if err := validator.ValidateVar(id, "required,uuid"); err != nil {
		return "", failure.InvalidIDParam
	}

	return id, nil
}
