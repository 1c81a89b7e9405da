package handler

import (
	"net/url"
	"testing"

	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/repository"
)

func TestParseListParamsDefaults(t *testing.T) {
	filter, opts, errs := parseListParams(url.Values{})
	if len(errs) != 0 {
		t.Fatalf("unexpected field errors: %+v", errs)
	}

	if filter.Status != "" || filter.Priority != nil || filter.Query != "" {
		t.Errorf("empty query produced filter %+v", filter)
	}
	if opts.Limit != repository.DefaultLimit {
		t.Errorf("limit = %d, want %d", opts.Limit, repository.DefaultLimit)
	}
	if opts.Offset != 0 {
		t.Errorf("offset = %d, want 0", opts.Offset)
	}
	if opts.OrderBy != repository.OrderByCreatedAt {
		t.Errorf("order_by = %q, want created_at", opts.OrderBy)
	}
	if opts.OrderDir != repository.OrderDesc {
		t.Errorf("order_dir = %q, want desc", opts.OrderDir)
	}
}

func TestParseListParamsEmptyStringsAreNoFilter(t *testing.T) {
	q := url.Values{"status": {""}, "priority": {""}, "q": {""}}
	filter, _, errs := parseListParams(q)
	if len(errs) != 0 {
		t.Fatalf("unexpected field errors: %+v", errs)
	}
	if filter.Status != "" || filter.Priority != nil {
		t.Errorf("empty-string params produced filter %+v", filter)
	}
}

func TestParseListParamsFull(t *testing.T) {
	q := url.Values{
		"status":    {"in_progress"},
		"priority":  {"3"},
		"q":         {"report"},
		"limit":     {"10"},
		"offset":    {"20"},
		"order_by":  {"deadline"},
		"order_dir": {"asc"},
	}

	filter, opts, errs := parseListParams(q)
	if len(errs) != 0 {
		t.Fatalf("unexpected field errors: %+v", errs)
	}
	if filter.Status != model.StatusInProgress {
		t.Errorf("status = %q, want in_progress", filter.Status)
	}
	if filter.Priority == nil || *filter.Priority != 3 {
		t.Errorf("priority = %v, want 3", filter.Priority)
	}
	if filter.Query != "report" {
		t.Errorf("q = %q, want report", filter.Query)
	}
	if opts.Limit != 10 || opts.Offset != 20 {
		t.Errorf("paging = %d/%d, want 10/20", opts.Limit, opts.Offset)
	}
	if opts.OrderBy != repository.OrderByDeadline || opts.OrderDir != repository.OrderAsc {
		t.Errorf("ordering = %q %q, want deadline asc", opts.OrderBy, opts.OrderDir)
	}
}

func TestParseListParamsCollectsAllErrors(t *testing.T) {
	q := url.Values{
		"status":    {"bogus"},
		"priority":  {"high"},
		"limit":     {"ten"},
		"order_by":  {"title"},
		"order_dir": {"up"},
	}

	_, _, errs := parseListParams(q)
	if len(errs) != 5 {
		t.Fatalf("errors = %d, want 5: %+v", len(errs), errs)
	}

	wantLocs := map[string]string{
		"status":    "literal_error",
		"priority":  "int_parsing",
		"limit":     "int_parsing",
		"order_by":  "literal_error",
		"order_dir": "literal_error",
	}
	for _, fe := range errs {
		if len(fe.Loc) != 2 || fe.Loc[0] != "query" {
			t.Errorf("loc = %v, want [query <name>]", fe.Loc)
			continue
		}
		if want, ok := wantLocs[fe.Loc[1]]; !ok || fe.Type != want {
			t.Errorf("param %q error type = %q, want %q", fe.Loc[1], fe.Type, want)
		}
		if fe.Input == nil {
			t.Errorf("param %q error should echo the input", fe.Loc[1])
		}
	}
}
