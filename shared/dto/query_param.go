package dto

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"todoapi/shared/constant"
	"todoapi/shared/failure"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest populates QueryParams from the HTTP request.
// Pass `defaultRequest` as true to fill Page and Limit with defaults when absent;
// with false an absent limit means "no pagination".
//
//	q := &dto.QueryParams{}
//	q.FromRequest(req, false)
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	queryParams := r.URL.Query()

	if page := queryParams.Get(constant.RequestParamPage); page != "" {
		if pageInt, err := strconv.Atoi(page); err == nil && pageInt > 0 {
			q.Page = pageInt
		}
	}

	if limit := queryParams.Get(constant.RequestParamLimit); limit != "" {
		if limitInt, err := strconv.Atoi(limit); err == nil && limitInt > 0 {
			q.Limit = limitInt
		}
	}

	if sortBy := queryParams.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	if sortDir := strings.ToUpper(queryParams.Get(constant.RequestParamSortDir)); sortDir == SortDirAsc || sortDir == SortDirDesc {
		q.SortDir = sortDir
	}

	if defaultRequest {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}

// RestrictSort rejects sort columns outside allowed. SortBy ends up in the
// ORDER BY clause verbatim, so it must never reach the repository unchecked.
// A sort column without a direction defaults to ascending.
func (q *QueryParams) RestrictSort(allowed ...string) error {
	if q.SortBy == "" {
		q.SortDir = ""

		return nil
	}

	if !slices.Contains(allowed, q.SortBy) {
		return failure.InvalidSortParam
	}

	if q.SortDir == "" {
		q.SortDir = SortDirAsc
	}

	return nil
}
