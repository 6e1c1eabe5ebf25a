package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/reportmill/internal/mailer"
	"github.com/reportmill/internal/model"
	"github.com/reportmill/internal/report"
	"github.com/reportmill/internal/web"
)

type gridColumn struct {
	Name    string
	Label   string
	Entries []string
}

type gridPage struct {
	Columns  []gridColumn
	Weekdays []string
	Notice   string
}

type settingsPageData struct {
	Settings model.Settings
	Notice   string
}

type resultPageData struct {
	Succeeded bool
	Back      string
}

func (app *App) dailyPage(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	firstRun := app.content.Settings.IsEmpty()
	page := app.gridPageData(model.DailyFields, app.content.Daily)
	app.mu.Unlock()

	// Steer to the settings form before anything else on first run.
	if firstRun {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	app.renderPage(w, "daily.html", page)
}

func (app *App) weeklyPage(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	page := app.gridPageData(model.WeeklyFields, app.content.Weekly)
	app.mu.Unlock()

	app.renderPage(w, "weekly.html", page)
}

func (app *App) settingsPage(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	data := settingsPageData{Settings: app.content.Settings}
	app.mu.Unlock()

	if data.Settings.IsEmpty() {
		data.Notice = "Fill in the mail settings before sending reports."
	}
	app.renderPage(w, "settings.html", data)
}

func (app *App) saveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	settings := model.Settings{
		ServerName: r.PostFormValue("server_name"),
		ServerPort: r.PostFormValue("server_port"),
		Sender:     r.PostFormValue("sender"),
		Password:   r.PostFormValue("password"),
		To:         r.PostFormValue("to"),
		Cc:         r.PostFormValue("cc"),
		Name:       r.PostFormValue("name"),
	}

	app.mu.Lock()
	app.content.Settings = settings
	app.reconfigureMailer()
	err := app.store.Save(app.content)
	app.mu.Unlock()

	if err != nil {
		app.logger.Error("settings: save failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) saveDaily(w http.ResponseWriter, r *http.Request) {
	app.updateGrid(w, r, model.DailyFields, func(c *model.Content, grid map[string][]string) {
		c.Daily = grid
	}, "/")
}

func (app *App) saveWeekly(w http.ResponseWriter, r *http.Request) {
	app.updateGrid(w, r, model.WeeklyFields, func(c *model.Content, grid map[string][]string) {
		c.Weekly = grid
	}, "/weekly")
}

func (app *App) clearDaily(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	app.content.Daily = emptyGrid(model.DailyFields)
	err := app.store.Save(app.content)
	app.mu.Unlock()

	app.finishMutation(w, r, err, "/")
}

func (app *App) clearWeekly(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	app.content.Weekly = emptyGrid(model.WeeklyFields)
	err := app.store.Save(app.content)
	app.mu.Unlock()

	app.finishMutation(w, r, err, "/weekly")
}

func (app *App) sendDaily(w http.ResponseWriter, r *http.Request) {
	app.sendReport(w, r, model.DailyFields, "/", "daily", func(c *model.Content, grid map[string][]string) {
		c.Daily = grid
	}, app.filer.SendDaily)
}

func (app *App) sendWeekly(w http.ResponseWriter, r *http.Request) {
	app.sendReport(w, r, model.WeeklyFields, "/weekly", "weekly", func(c *model.Content, grid map[string][]string) {
		c.Weekly = grid
	}, app.filer.SendWeekly)
}

// sendReport stores the submitted grid first, then runs the flow. The user
// sees a single pass/fail page; the failed stage goes to the log.
func (app *App) sendReport(w http.ResponseWriter, r *http.Request, fields []model.Field, back, kind string,
	apply func(*model.Content, map[string][]string), flow func(*model.Content) error,
) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	apply(app.content, parseGrid(r, fields))
	if err := app.store.Save(app.content); err != nil {
		app.logger.Error("send: content save failed", "kind", kind, "err", err)
		app.renderPage(w, "result.html", resultPageData{Succeeded: false, Back: back})
		return
	}

	if err := flow(app.content); err != nil {
		var stageErr *report.StageError
		if errors.As(err, &stageErr) {
			app.logger.Error("send: flow failed", "kind", kind, "stage", stageErr.Stage, "err", stageErr.Err)
		} else {
			app.logger.Error("send: flow failed", "kind", kind, "err", err)
		}
		app.renderPage(w, "result.html", resultPageData{Succeeded: false, Back: back})
		return
	}

	app.logger.Info("send: report delivered", "kind", kind)
	app.renderPage(w, "result.html", resultPageData{Succeeded: true, Back: back})
}

func (app *App) updateGrid(w http.ResponseWriter, r *http.Request, fields []model.Field,
	apply func(*model.Content, map[string][]string), back string,
) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	app.mu.Lock()
	apply(app.content, parseGrid(r, fields))
	err := app.store.Save(app.content)
	app.mu.Unlock()

	app.finishMutation(w, r, err, back)
}

func (app *App) finishMutation(w http.ResponseWriter, r *http.Request, err error, back string) {
	if err != nil {
		app.logger.Error("content: save failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (app *App) reconfigureMailer() {
	if app.mailer != nil {
		app.mailer.Reconfigure(mailer.NewConfigFromSettings(&app.content.Settings))
	}
}

func (app *App) gridPageData(fields []model.Field, grid map[string][]string) gridPage {
	page := gridPage{Weekdays: model.WeekdayLabels[:]}
	for _, f := range fields {
		page.Columns = append(page.Columns, gridColumn{
			Name:    f.Name,
			Label:   f.Label,
			Entries: entriesFor(grid, f.Name),
		})
	}
	return page
}

func (app *App) renderPage(w http.ResponseWriter, name string, data any) {
	if err := web.Templates.ExecuteTemplate(w, name, data); err != nil {
		app.logger.Error("web: template error", "template", name, "err", err)
	}
}

// parseGrid reads field_0..field_4 inputs into positional entry lists.
func parseGrid(r *http.Request, fields []model.Field) map[string][]string {
	grid := make(map[string][]string, len(fields))
	for _, f := range fields {
		entries := make([]string, model.EntriesPerField)
		for i := range entries {
			entries[i] = r.PostFormValue(fmt.Sprintf("%s_%d", f.Name, i))
		}
		grid[f.Name] = entries
	}
	return grid
}

func emptyGrid(fields []model.Field) map[string][]string {
	grid := make(map[string][]string, len(fields))
	for _, f := range fields {
		grid[f.Name] = make([]string, model.EntriesPerField)
	}
	return grid
}

func entriesFor(grid map[string][]string, name string) []string {
	if entries, ok := grid[name]; ok && len(entries) == model.EntriesPerField {
		return entries
	}
	return make([]string, model.EntriesPerField)
}
