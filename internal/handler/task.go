package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck-go/internal/middleware"
	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations. Every route
// requires an authenticated identity injected by the auth middleware.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleList handles GET /api/v1/tasks requests. The X-Total-Count
// header carries the total matching count across all pages.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	filter, opts, fieldErrs := parseListParams(r.URL.Query())
	if len(fieldErrs) > 0 {
		writeValidationError(w, r, fieldErrs...)
		return
	}

	page, err := h.service.List(r.Context(), user.ID, filter, opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Total, 10))
	writeJSON(w, http.StatusOK, page.Tasks)
}

// HandleCreate handles POST /api/v1/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.TaskCreate
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/tasks/%d", task.ID))
	writeJSON(w, http.StatusCreated, task)
}

// HandleGet handles GET /api/v1/tasks/{task_id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id, user.ID)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleReplace handles PUT /api/v1/tasks/{task_id} requests. All
// fields except deadline are required; a missing field is rejected
// with per-field 422 details before any storage work.
func (h *TaskHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req model.TaskPut
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrs := missingPutFields(req); len(fieldErrs) > 0 {
		writeValidationError(w, r, fieldErrs...)
		return
	}

	task, err := h.service.Replace(r.Context(), id, user.ID, req)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate handles PATCH /api/v1/tasks/{task_id} requests. Only
// supplied fields change; an explicit null deadline clears it.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	task, err := h.service.Update(r.Context(), id, user.ID, patch)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete handles DELETE /api/v1/tasks/{task_id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, user.ID); err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleBulkDelete handles POST /api/v1/tasks/bulk_delete requests.
func (h *TaskHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.TaskIDList
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.service.BulkDelete(r.Context(), user.ID, req.IDs)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BulkDeleteResponse{Deleted: deleted})
}

// HandleBulkComplete handles POST /api/v1/tasks/bulk_complete
// requests. The count reports rows that actually transitioned to
// done; rows already done are skipped.
func (h *TaskHandler) HandleBulkComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.TaskIDList
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.BulkComplete(r.Context(), user.ID, req.IDs)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BulkCompleteResponse{Updated: updated})
}

// writeTaskError classifies service errors into HTTP responses.
// Not-found covers both absent rows and rows owned by someone else,
// so cross-owner probing learns nothing.
func (h *TaskHandler) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("Task not found"))
	case errors.Is(err, service.ErrTitleRequired):
		writeValidationError(w, r, FieldError{
			Type: "string_too_short", Loc: []string{"body", "title"}, Msg: err.Error(),
		})
	case errors.Is(err, service.ErrPriorityRange):
		writeValidationError(w, r, FieldError{
			Type: "out_of_range", Loc: []string{"body", "priority"}, Msg: err.Error(),
		})
	case errors.Is(err, service.ErrStatusInvalid):
		writeValidationError(w, r, FieldError{
			Type: "literal_error", Loc: []string{"body", "status"}, Msg: err.Error(),
		})
	case errors.Is(err, service.ErrNoIDs):
		writeValidationError(w, r, FieldError{
			Type: "too_short", Loc: []string{"body", "ids"}, Msg: err.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

func missingPutFields(req model.TaskPut) []FieldError {
	var errs []FieldError
	if req.Title == nil {
		errs = append(errs, missingField("title"))
	}
	if req.Status == nil {
		errs = append(errs, missingField("status"))
	}
	if req.Priority == nil {
		errs = append(errs, missingField("priority"))
	}
	return errs
}

func missingField(name string) FieldError {
	return FieldError{Type: "missing", Loc: []string{"body", name}, Msg: "Field required"}
}

// taskID parses the task_id path parameter, writing a 422 on failure.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "task_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeValidationError(w, r, FieldError{
			Type:  "int_parsing",
			Loc:   []string{"path", "task_id"},
			Msg:   "Input should be a valid integer, unable to parse string as an integer",
			Input: raw,
		})
		return 0, false
	}
	return id, true
}
