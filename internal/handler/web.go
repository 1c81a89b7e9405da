package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck-go/internal/middleware"
	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionCookie is the HttpOnly cookie carrying the web session's
// access token.
const SessionCookie = "access_token"

// WebHandler serves the server-rendered HTML interface. Identity
// comes from the session cookie; every mutating form post passes the
// CSRF middleware before reaching these handlers.
type WebHandler struct {
	auth  *service.AuthService
	tasks *service.TaskService
	csrf  middleware.CSRFConfig

	loginTmpl *template.Template
	indexTmpl *template.Template
}

// NewWebHandler creates a WebHandler with its templates parsed.
func NewWebHandler(auth *service.AuthService, tasks *service.TaskService, csrf middleware.CSRFConfig) *WebHandler {
	return &WebHandler{
		auth:      auth,
		tasks:     tasks,
		csrf:      csrf,
		loginTmpl: template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html")),
		indexTmpl: template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/index.html")),
	}
}

type csrfContext struct {
	Token string
	Field string
}

type loginContext struct {
	Error string
	CSRF  csrfContext
}

type indexContext struct {
	User     model.UserPublic
	Tasks    []model.Task
	Total    int64
	Limit    int
	Offset   int
	Status   string
	Priority string
	Q        string
	OrderBy  string
	OrderDir string
	CSRF     csrfContext
}

// HandleLoginForm handles GET /login: renders the form and issues a
// fresh CSRF token as both cookie and hidden field.
func (h *WebHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, "")
}

// HandleLogin handles POST /login. The CSRF middleware runs first, so
// a valid token pair with bad credentials still fails with 401.
func (h *WebHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.renderLogin(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	resp, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		h.renderLogin(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   int(h.auth.TokenExpiry().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout handles POST /logout: clears the session cookie.
func (h *WebHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleIndex handles GET /: the task list with filters, search,
// ordering, and bulk action forms.
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	query := r.URL.Query()
	filter, opts, fieldErrs := parseListParams(query)
	if len(fieldErrs) > 0 {
		writeValidationError(w, r, fieldErrs...)
		return
	}

	page, err := h.tasks.List(r.Context(), user.ID, filter, opts)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx := indexContext{
		User:     user,
		Tasks:    page.Tasks,
		Total:    page.Total,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		Q:        filter.Query,
		OrderBy:  string(opts.OrderBy),
		OrderDir: string(opts.OrderDir),
		CSRF:     h.issueCSRF(w),
	}
	h.render(w, h.indexTmpl, http.StatusOK, ctx)
}

// HandleCreateTask handles POST /ui/tasks form submissions.
func (h *WebHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	req := model.TaskCreate{Title: r.PostFormValue("title")}
	if p, err := strconv.Atoi(r.PostFormValue("priority")); err == nil {
		req.Priority = &p
	}

	// Invalid form input silently returns to the list, matching the
	// progressive-enhancement behavior of plain form posts.
	if _, err := h.tasks.Create(r.Context(), user.ID, req); err != nil {
		slog.Warn("web task create rejected", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDeleteTask handles POST /ui/tasks/{task_id}/delete.
func (h *WebHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if id, err := strconv.ParseInt(chi.URLParam(r, "task_id"), 10, 64); err == nil {
		// Not-found covers foreign rows too; the redirect is the same
		// either way.
		_ = h.tasks.Delete(r.Context(), id, user.ID)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleBulkDelete handles POST /ui/bulk_delete.
func (h *WebHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	h.bulkAction(w, r, func(user model.UserPublic, ids []int64) error {
		_, err := h.tasks.BulkDelete(r.Context(), user.ID, ids)
		return err
	})
}

// HandleBulkComplete handles POST /ui/bulk_complete.
func (h *WebHandler) HandleBulkComplete(w http.ResponseWriter, r *http.Request) {
	h.bulkAction(w, r, func(user model.UserPublic, ids []int64) error {
		_, err := h.tasks.BulkComplete(r.Context(), user.ID, ids)
		return err
	})
}

func (h *WebHandler) bulkAction(w http.ResponseWriter, r *http.Request, apply func(model.UserPublic, []int64) error) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	var ids []int64
	r.ParseForm()
	for _, raw := range r.PostForm["ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	if len(ids) > 0 {
		if err := apply(user, ids); err != nil {
			slog.Warn("web bulk action failed", "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// currentUser resolves the session cookie to a live user.
func (h *WebHandler) currentUser(r *http.Request) (model.UserPublic, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return model.UserPublic{}, false
	}

	user, err := h.auth.ResolveToken(r.Context(), cookie.Value)
	if err != nil {
		return model.UserPublic{}, false
	}
	return user, true
}

// issueCSRF mints a token per render and mirrors it into the cookie
// half of the double-submit pair. The cookie is readable by scripts
// so SPA-style callers can echo it in a header.
func (h *WebHandler) issueCSRF(w http.ResponseWriter) csrfContext {
	token, err := h.csrf.Signer.Issue()
	if err != nil {
		slog.Error("issuing csrf token failed", "error", err)
		return csrfContext{Field: h.csrf.FormField}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.csrf.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.csrf.TokenTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return csrfContext{Token: token, Field: h.csrf.FormField}
}

func (h *WebHandler) renderLogin(w http.ResponseWriter, status int, errMsg string) {
	h.render(w, h.loginTmpl, status, loginContext{Error: errMsg, CSRF: h.issueCSRF(w)})
}

func (h *WebHandler) render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("rendering template failed", "error", err)
	}
}
