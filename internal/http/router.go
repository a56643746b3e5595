// Package http exposes the public submission form, the admin area and the
// scheduling API over plain net/http.
package http

import (
	"net/http"
	"strings"
	"time"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Submissions *SubmissionHandler
	Schedules   *ScheduleHandler
	Exports     *ExportHandler
	Klein       *KleinHandler
	// RequireAdmin wraps every privileged route; nil leaves them open, which
	// only tests should do.
	RequireAdmin func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
	Now          func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	guard := cfg.RequireAdmin
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	guarded := func(h http.HandlerFunc) http.Handler { return guard(h) }

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": now().UTC().Format(time.RFC3339),
		})
	})

	if cfg.Submissions != nil {
		mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Submissions.Submit(w, r)
		})

		mux.Handle("/admin/dashboard", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Submissions.Dashboard(w, r)
		}))
		mux.Handle("/admin/view/", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Submissions.View(w, r, strings.TrimPrefix(r.URL.Path, "/admin/view/"))
		}))
		mux.Handle("/admin/delete/", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Submissions.Delete(w, r, strings.TrimPrefix(r.URL.Path, "/admin/delete/"))
		}))
		mux.Handle("/api/scheduling/submissions", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Submissions.Dashboard(w, r)
		}))
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/admin/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/admin/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.Logout(w, r)
		})
	}

	if cfg.Exports != nil {
		mux.Handle("/admin/export", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Exports.Submissions(w, r)
		}))
		mux.Handle("/admin/scheduling/export", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Exports.Schedule(w, r)
		}))
		mux.Handle("/admin/scheduling/export-app", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Exports.EventApp(w, r)
		}))
	}

	if cfg.Schedules != nil {
		mux.Handle("/api/scheduling/rooms", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.Rooms(w, r)
		}))
		mux.Handle("/api/scheduling/scheduled", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.Scheduled(w, r)
		}))
		mux.Handle("/api/scheduling/unscheduled", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.Unscheduled(w, r)
		}))
		mux.Handle("/api/scheduling/schedule", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedules.Create(w, r)
		}))
		mux.Handle("/api/scheduling/schedule/", guarded(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/scheduling/schedule/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodPatch:
				cfg.Schedules.Patch(w, r, id)
			case http.MethodDelete:
				cfg.Schedules.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodPatch, http.MethodDelete)
			}
		}))
		mux.Handle("/api/scheduling/check-conflict", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedules.CheckConflict(w, r)
		}))
	}

	if cfg.Klein != nil {
		mux.Handle("/api/klein-converter/convert", guarded(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Klein.Convert(w, r)
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
