package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/reportmill/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS)))

	// Forms
	r.Get("/", app.dailyPage)
	r.Get("/weekly", app.weeklyPage)
	r.Get("/settings", app.settingsPage)

	// Buttons post to /action/{name}; the wiring lives in one explicit
	// map instead of being derived from button labels.
	actions := map[string]http.HandlerFunc{
		"save-settings": app.saveSettings,
		"save-daily":    app.saveDaily,
		"clear-daily":   app.clearDaily,
		"send-daily":    app.sendDaily,
		"save-weekly":   app.saveWeekly,
		"clear-weekly":  app.clearWeekly,
		"send-weekly":   app.sendWeekly,
	}
	for name, h := range actions {
		r.Post("/action/"+name, h)
	}

	return r
}
