package handler

import (
	"net/url"
	"strconv"

	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/repository"
)

// Query parameter parsing for task listings, shared by the JSON API
// and the web UI. Empty strings mean "no filter" rather than an
// error; anything else malformed yields a structured field error.

func parseStatusParam(v string) (model.Status, *FieldError) {
	if v == "" {
		return "", nil
	}
	status := model.Status(v)
	if !status.Valid() {
		return "", &FieldError{
			Type:  "literal_error",
			Loc:   []string{"query", "status"},
			Msg:   "status must be one of: todo, in_progress, done",
			Input: v,
		}
	}
	return status, nil
}

func parsePriorityParam(v string) (*int, *FieldError) {
	if v == "" {
		return nil, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return nil, &FieldError{
			Type:  "int_parsing",
			Loc:   []string{"query", "priority"},
			Msg:   "Input should be a valid integer, unable to parse string as an integer",
			Input: v,
		}
	}
	return &p, nil
}

func parseOrderByParam(v string) (repository.OrderBy, *FieldError) {
	switch v {
	case "":
		return repository.OrderByCreatedAt, nil
	case "created_at", "priority", "status", "deadline":
		return repository.OrderBy(v), nil
	}
	return "", &FieldError{
		Type:  "literal_error",
		Loc:   []string{"query", "order_by"},
		Msg:   "order_by must be one of: created_at, priority, status, deadline",
		Input: v,
	}
}

func parseOrderDirParam(v string) (repository.OrderDir, *FieldError) {
	switch v {
	case "":
		return repository.OrderDesc, nil
	case "asc", "desc":
		return repository.OrderDir(v), nil
	}
	return "", &FieldError{
		Type:  "literal_error",
		Loc:   []string{"query", "order_dir"},
		Msg:   "order_dir must be 'asc' or 'desc'",
		Input: v,
	}
}

func parseIntParam(v, name string, fallback int) (int, *FieldError) {
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &FieldError{
			Type:  "int_parsing",
			Loc:   []string{"query", name},
			Msg:   "Input should be a valid integer, unable to parse string as an integer",
			Input: v,
		}
	}
	return n, nil
}

// parseListParams parses every list/count parameter, collecting all
// field errors so the caller can report them in one response.
func parseListParams(q url.Values) (repository.TaskFilter, repository.ListOptions, []FieldError) {
	var (
		filter repository.TaskFilter
		opts   repository.ListOptions
		errs   []FieldError
	)

	status, fe := parseStatusParam(q.Get("status"))
	if fe != nil {
		errs = append(errs, *fe)
	}
	filter.Status = status

	priority, fe := parsePriorityParam(q.Get("priority"))
	if fe != nil {
		errs = append(errs, *fe)
	}
	filter.Priority = priority

	filter.Query = q.Get("q")

	limit, fe := parseIntParam(q.Get("limit"), "limit", repository.DefaultLimit)
	if fe != nil {
		errs = append(errs, *fe)
	}
	opts.Limit = limit

	offset, fe := parseIntParam(q.Get("offset"), "offset", 0)
	if fe != nil {
		errs = append(errs, *fe)
	}
	opts.Offset = offset

	orderBy, fe := parseOrderByParam(q.Get("order_by"))
	if fe != nil {
		errs = append(errs, *fe)
	}
	opts.OrderBy = orderBy

	orderDir, fe := parseOrderDirParam(q.Get("order_dir"))
	if fe != nil {
		errs = append(errs, *fe)
	}
	opts.OrderDir = orderDir

	return filter, opts, errs
}
