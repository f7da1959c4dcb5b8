package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoapi/config"
	"todoapi/infras/otel"
	"todoapi/internal/domains/todo/model"
	"todoapi/internal/domains/todo/model/dto"
	"todoapi/internal/domains/todo/repository"
	"todoapi/shared"
	"todoapi/shared/cache"
	"todoapi/shared/constant"
	gDto "todoapi/shared/dto"
	"todoapi/shared/failure"
	"todoapi/shared/logger"
	gRepo "todoapi/shared/repository"

	"golang.org/x/sync/singleflight"
)

type Todo interface {
	FindAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Todo, int, error)
	FindOneOrFail(ctx context.Context, id string) (model.Todo, error)
	Create(ctx context.Context, req dto.CreateTodoRequest) (model.Todo, error)
	Update(ctx context.Context, id string, req dto.UpdateTodoRequest) (model.Todo, error)
	DeleteByID(ctx context.Context, id string) error
}

// cachedTodo is a cache entry. It is only served while Generation matches the
// current generation of the todo.
type cachedTodo struct {
	Generation int64      `json:"generation"`
	Todo       model.Todo `json:"todo"`
}

type serviceImpl struct {
	repo  repository.Todo
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	group singleflight.Group
}

func New(repo repository.Todo, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Todo {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// FindAll returns one page of live todos and the total number matching filter.
func (s *serviceImpl) FindAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (todos []model.Todo, total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FindAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = params.RestrictSort(model.SortableFields...); err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("failed to count todos")

		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	todos, err = s.repo.GetAll(ctx, params, filter)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("failed to get todos")

		return nil, 0, fmt.Errorf("failed to get todos: %w", err)
	}

	scope.SetAttribute("todo.total", total)

	return todos, total, nil
}

// FindOneOrFail returns the live todo with id, or a not found failure.
// Lookups go through the cache; concurrent misses for one id share a single query.
func (s *serviceImpl) FindOneOrFail(ctx context.Context, id string) (todo model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FindOneOrFail")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := cacheKey(id)
	start := time.Now()

	// read before the query: any write that lands after it bumps the generation
	generation, cacheable := s.generation(ctx, id)
	if cacheable {
		var entry cachedTodo

		err = s.cache.Get(ctx, key, &entry)
		if err == nil && entry.Generation == generation {
			scope.AddEvent("cache hit")

			return entry.Todo, nil
		}

		if err != nil && !cache.IsMiss(err) {
			logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("cache unavailable, reading from database")
		}
	}

	result, err, _ := s.group.Do(fmt.Sprintf("%s@%d", key, generation), func() (any, error) {
		return s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	})
	if errors.Is(err, gRepo.ErrNoRows) {
		return model.Todo{}, notFound(id)
	}

	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("id", id).Msg("failed to get todo")

		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}

	todo, _ = result.(model.Todo)

	// a save this late could outlive the generation counter
	if !cacheable || time.Since(start) >= s.ttl() {
		return todo, nil
	}

	entry := cachedTodo{Generation: generation, Todo: todo}
	if saveErr := s.cache.Save(ctx, key, entry, s.cfg.Cache.TTL); saveErr != nil {
		logger.FromContext(ctx).Warn().Err(saveErr).Str("key", key).Msg("failed to cache todo")
	}

	return todo, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateTodoRequest) (todo model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	todo = req.ToModel()

	if err = s.repo.Insert(ctx, todo); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("failed to create todo")

		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	scope.SetAttribute("todo.id", todo.ID)

	return todo, nil
}

// Update merges the provided fields into the live todo with id and persists
// them. updatedAt is bumped even when no field is provided.
func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateTodoRequest) (todo model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	todo, err = s.FindOneOrFail(ctx, id)
	if err != nil {
		return model.Todo{}, err
	}

	req.ApplyTo(&todo)

	updatedFields := shared.TransformFields(req)
	if updatedAt, ok := updatedFields[constant.FieldUpdatedAt].(time.Time); ok {
		todo.UpdatedAt = updatedAt
	}

	err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName))
	if errors.Is(err, gRepo.ErrNoRows) {
		s.invalidate(ctx, id)

		return model.Todo{}, notFound(id)
	}

	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("id", id).Msg("failed to update todo")

		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}

	s.invalidate(ctx, id)

	return todo, nil
}

// DeleteByID soft deletes the live todo with id.
func (s *serviceImpl) DeleteByID(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DeleteByID")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.FindOneOrFail(ctx, id); err != nil {
		return err
	}

	err = s.repo.SoftDelete(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	s.invalidate(ctx, id)

	if errors.Is(err, gRepo.ErrNoRows) {
		return notFound(id)
	}

	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("id", id).Msg("failed to delete todo")

		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

// generation returns the number of writes recorded for id. ok is false when
// the cache cannot be read, in which case nothing may be cached.
func (s *serviceImpl) generation(ctx context.Context, id string) (generation int64, ok bool) {
	err := s.cache.Get(ctx, generationKey(id), &generation)
	if err == nil || cache.IsMiss(err) {
		return generation, true
	}

	logger.FromContext(ctx).Warn().Err(err).Str("id", id).Msg("cache unavailable, reading from database")

	return 0, false
}

// invalidate outdates every cached copy of id, including copies still being
// written by lookups that started before the write.
func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if _, err := s.cache.Incr(ctx, generationKey(id), 2*s.cfg.Cache.TTL); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("id", id).Msg("failed to bump todo generation")
	}

	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("id", id).Msg("failed to evict cached todo")
	}
}

func (s *serviceImpl) ttl() time.Duration {
	return time.Duration(s.cfg.Cache.TTL) * time.Second
}

func cacheKey(id string) string {
	return shared.BuildCacheKey(model.EntityName, id)
}

func generationKey(id string) string {
	return shared.BuildCacheKey(model.EntityName, id, "generation")
}

func notFound(id string) error {
	return failure.NotFound(fmt.Sprintf("%s with id %s was not found", model.EntityName, id)) //nolint:wrapcheck
}
