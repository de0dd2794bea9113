package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/auth"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/ratelimit"
	"github.com/starford/folio/internal/uploads"
)

// Services bundles everything the API routes need.
type Services struct {
	Auth         *auth.Service
	Projects     *portfolio.Projects
	Education    *portfolio.Education
	Skills       *portfolio.Skills
	Technologies *portfolio.Technologies
	Messages     *portfolio.Messages
	Stats        *portfolio.Stats
	PersonalInfo *portfolio.PersonalInfo
	Files        *uploads.Store
	// ContactLimit throttles the public message endpoints. Nil disables it.
	ContactLimit *ratelimit.Limiter
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(s Services) chi.Router {
	projects := &resourceHandler[models.Project, portfolio.ProjectPatch]{
		name: "project", svc: s.Projects, files: s.Files,
		file: &attachment[models.Project, portfolio.ProjectPatch]{
			field:  "image",
			policy: uploads.ProjectImage,
			set:    func(p *portfolio.ProjectPatch, path string) { p.Image = &path },
			get:    func(p models.Project) string { return p.Image },
		},
	}
	education := &resourceHandler[models.Education, portfolio.EducationPatch]{
		name: "education", svc: s.Education, files: s.Files,
		file: &attachment[models.Education, portfolio.EducationPatch]{
			field:  "certificate",
			policy: uploads.Certificate,
			set:    func(p *portfolio.EducationPatch, path string) { p.Certificate = &path },
			get:    func(e models.Education) string { return e.Certificate },
		},
	}
	skills := &resourceHandler[models.Skill, portfolio.SkillPatch]{name: "skill", svc: s.Skills}
	technologies := &resourceHandler[models.Technology, portfolio.TechnologyPatch]{name: "technology", svc: s.Technologies}
	messages := &MessageHandler{svc: s.Messages}
	site := &SiteHandler{stats: s.Stats, personal: s.PersonalInfo}
	account := &AccountHandler{svc: s.Auth, files: s.Files}

	limited := func(next http.Handler) http.Handler { return next }
	if s.ContactLimit != nil {
		limited = s.ContactLimit.Middleware(tooManyRequests)
	}

	r := chi.NewRouter()

	// Public.
	r.Post("/login", account.Login)
	r.Post("/auth/request-password-reset", account.RequestPasswordReset)
	r.Get("/auth/verify-reset-token", account.VerifyResetToken)
	r.Post("/auth/reset-password", account.ResetPassword)

	r.Get("/projects", projects.List)
	r.Get("/projects/{id}", projects.Get)
	r.Get("/public/education", education.List)
	r.Get("/skills", skills.List)
	r.Get("/skills/{id}", skills.Get)
	r.Get("/technologies", technologies.List)
	r.Get("/technologies/{id}", technologies.Get)
	r.Get("/personal-info", site.PersonalInfo)
	r.Get("/stats", site.Stats)
	r.Post("/stats/{counter}", site.Increment)

	r.With(limited).Post("/contact", messages.Contact)
	r.With(limited).Post("/messages", messages.Create)

	// Authenticated.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.Auth.Tokens()))

		r.Get("/auth/verify", account.Verify)
		r.Get("/user/settings", account.Settings)
		r.Put("/user/settings", account.UpdateSettings)
		r.Put("/user/theme", account.UpdateTheme)
		r.Put("/user/password", account.ChangePassword)
		r.Get("/email-templates/password-reset", account.ResetTemplate)
		r.Put("/email-templates/password-reset", account.UpdateResetTemplate)

		r.Post("/projects", projects.Create)
		r.Put("/projects/{id}", projects.Update)
		r.Delete("/projects/{id}", projects.Delete)

		r.Get("/education", education.List)
		r.Post("/education", education.Create)
		r.Get("/education/{id}", education.Get)
		r.Put("/education/{id}", education.Update)
		r.Delete("/education/{id}", education.Delete)

		r.Post("/skills", skills.Create)
		r.Put("/skills/{id}", skills.Update)
		r.Delete("/skills/{id}", skills.Delete)

		r.Post("/technologies", technologies.Create)
		r.Put("/technologies/{id}", technologies.Update)
		r.Delete("/technologies/{id}", technologies.Delete)

		r.Put("/personal-info", site.ReplacePersonalInfo)

		// Fixed paths before /messages/{id}.
		r.Get("/messages", messages.List)
		r.Get("/messages/unread-count", messages.UnreadCount)
		r.Get("/messages/archive", messages.ArchiveYears)
		r.Get("/messages/archive/{year}", messages.Archive)
		r.Get("/messages/{id}", messages.Get)
		r.Put("/messages/{id}/read", messages.MarkRead)
		r.Delete("/messages/{id}", messages.Delete)

		if s.Events != nil {
			r.Get("/events", s.Events.ServeHTTP)
		}
	})

	return r
}
