package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/reportmill/internal/model"
	"github.com/reportmill/internal/report"
)

type memStore struct {
	saves int
	last  *model.Content
}

func (s *memStore) Load() (*model.Content, error) { return s.last, nil }

func (s *memStore) Save(content *model.Content) error {
	s.saves++
	s.last = content
	return nil
}

type stubFiler struct {
	dailyCalls  int
	weeklyCalls int
	lastContent *model.Content
	err         error
}

func (f *stubFiler) SendDaily(content *model.Content) error {
	f.dailyCalls++
	f.lastContent = content
	return f.err
}

func (f *stubFiler) SendWeekly(content *model.Content) error {
	f.weeklyCalls++
	f.lastContent = content
	return f.err
}

func configuredSettings() model.Settings {
	return model.Settings{
		ServerName: "smtp.example.org",
		ServerPort: "587",
		Sender:     "alice@example.org",
		Password:   "hunter2",
		To:         "boss@example.org",
		Name:       "Alice",
	}
}

func newTestApp(filer *stubFiler) (*App, *memStore) {
	content := model.DefaultContent()
	content.Settings = configuredSettings()
	store := &memStore{last: content}
	return &App{
		logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		store:   store,
		filer:   filer,
		content: content,
	}, store
}

func get(app *App, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)
	return rr
}

func postForm(app *App, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)
	return rr
}

func dailyForm() url.Values {
	form := url.Values{}
	for i := 0; i < model.EntriesPerField; i++ {
		form.Set(fmt.Sprintf("conclusion_%d", i), fmt.Sprintf("done %d", i))
		form.Set(fmt.Sprintf("plan_%d", i), fmt.Sprintf("next %d", i))
	}
	return form
}

func TestDailyPageRedirectsToSettingsOnFirstRun(t *testing.T) {
	app, _ := newTestApp(&stubFiler{})
	app.content.Settings = model.Settings{}

	rr := get(app, "/")

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/settings" {
		t.Errorf("redirected to %q, want /settings", loc)
	}
}

func TestDailyPageShowsGrid(t *testing.T) {
	app, _ := newTestApp(&stubFiler{})
	app.content.Daily = map[string][]string{
		"conclusion": {"finished the thing", "", "", "", ""},
	}

	rr := get(app, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Conclusions", "Plans", "Mon.", "finished the thing"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSettingsPageShowsNoticeWhenEmpty(t *testing.T) {
	app, _ := newTestApp(&stubFiler{})
	app.content.Settings = model.Settings{}

	rr := get(app, "/settings")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Fill in the mail settings") {
		t.Error("expected first-run notice on settings page")
	}
}

func TestSaveSettingsPersists(t *testing.T) {
	app, store := newTestApp(&stubFiler{})

	form := url.Values{}
	form.Set("server_name", "smtp.new.org")
	form.Set("server_port", "2525")
	form.Set("sender", "bob@example.org")
	form.Set("password", "secret")
	form.Set("to", "lead@example.org")
	form.Set("name", "Bob")

	rr := postForm(app, "/action/save-settings", form)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	if app.content.Settings.ServerName != "smtp.new.org" || app.content.Settings.Name != "Bob" {
		t.Errorf("settings not applied: %+v", app.content.Settings)
	}
}

func TestSendDailySucceeds(t *testing.T) {
	filer := &stubFiler{}
	app, store := newTestApp(filer)

	rr := postForm(app, "/action/send-daily", dailyForm())

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Succeeded") {
		t.Error("expected success result page")
	}
	if filer.dailyCalls != 1 {
		t.Fatalf("daily flow called %d times", filer.dailyCalls)
	}
	if got := filer.lastContent.Daily["conclusion"][2]; got != "done 2" {
		t.Errorf("submitted grid not stored, got %q", got)
	}
	if store.saves != 1 {
		t.Errorf("content not flushed before sending, saves = %d", store.saves)
	}
}

func TestSendDailyReportsFailure(t *testing.T) {
	filer := &stubFiler{err: &report.StageError{Stage: report.StageSend, Err: fmt.Errorf("connection refused")}}
	app, _ := newTestApp(filer)

	rr := postForm(app, "/action/send-daily", dailyForm())

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Failed") {
		t.Error("expected failure result page")
	}
}

func TestSendWeeklyInvokesWeeklyFlow(t *testing.T) {
	filer := &stubFiler{}
	app, _ := newTestApp(filer)

	form := url.Values{}
	for i := 0; i < model.EntriesPerField; i++ {
		form.Set(fmt.Sprintf("progress_%d", i), fmt.Sprintf("step %d", i))
	}

	rr := postForm(app, "/action/send-weekly", form)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if filer.weeklyCalls != 1 || filer.dailyCalls != 0 {
		t.Errorf("weekly=%d daily=%d, want 1 and 0", filer.weeklyCalls, filer.dailyCalls)
	}
	if got := filer.lastContent.Weekly["progress"][0]; got != "step 0" {
		t.Errorf("weekly grid not stored, got %q", got)
	}
}

func TestClearDailyEmptiesGrid(t *testing.T) {
	app, store := newTestApp(&stubFiler{})
	app.content.Daily = map[string][]string{
		"conclusion": {"a", "b", "c", "d", "e"},
	}

	rr := postForm(app, "/action/clear-daily", url.Values{})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	for _, entry := range app.content.Daily["conclusion"] {
		if entry != "" {
			t.Fatalf("entry not cleared: %q", entry)
		}
	}
	if store.saves != 1 {
		t.Errorf("cleared grid not persisted")
	}
}

func TestSaveDailyPersistsWithoutSending(t *testing.T) {
	filer := &stubFiler{}
	app, store := newTestApp(filer)

	rr := postForm(app, "/action/save-daily", dailyForm())

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	if filer.dailyCalls != 0 {
		t.Error("save must not trigger a send")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	if got := app.content.Daily["plan"][4]; got != "next 4" {
		t.Errorf("grid not applied: %q", got)
	}
}
