package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/reportmill/internal/model"
)

// Stage tags which half of a flow failed: producing the files or
// delivering them.
type Stage string

const (
	StageRender Stage = "render"
	StageSend   Stage = "send"
)

// StageError wraps a flow failure with the stage it happened in, so the
// shell can log the stage while still showing a single pass/fail result.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// SettingsIncompleteError is returned before any rendering when a send is
// attempted without the settings needed to deliver it.
type SettingsIncompleteError struct {
	Missing []string
}

func (e *SettingsIncompleteError) Error() string {
	return "settings incomplete: " + strings.Join(e.Missing, ", ")
}

// Renderer produces the two report files from their templates.
type Renderer interface {
	RenderDocument(templatePath, outputPath string, ctx map[string][]string) error
	RenderWorkbook(templatePath, outputPath string, ctx map[string]any) error
}

// Sender delivers rendered files as email attachments.
type Sender interface {
	SendReport(subject string, files []string) error
}

// Paths locates the templates and the archive directory.
type Paths struct {
	DailyTemplate  string
	WeeklyTemplate string
	ArchiveDir     string
}

// Filer runs the daily and weekly report flows: build a context, render to
// the archive, send. Rendered files stay in the archive even when the send
// fails; only delivery is reported as failed.
type Filer struct {
	render Renderer
	mail   Sender
	paths  Paths
	now    func() time.Time
}

func NewFiler(r Renderer, mail Sender, paths Paths) *Filer {
	return &Filer{render: r, mail: mail, paths: paths, now: time.Now}
}

// SendDaily renders the daily document into the archive and emails it.
func (f *Filer) SendDaily(content *model.Content) error {
	if err := checkSettings(content.Settings); err != nil {
		return err
	}

	today := f.now()
	path := f.dailyPath(content.Settings.Name, today)
	if err := f.render.RenderDocument(f.paths.DailyTemplate, path, content.Daily); err != nil {
		return &StageError{Stage: StageRender, Err: err}
	}

	subject := subjectFor("daily", content.Settings.Name, today)
	if err := f.mail.SendReport(subject, []string{path}); err != nil {
		return &StageError{Stage: StageSend, Err: err}
	}
	return nil
}

// SendWeekly re-renders the daily document, renders the weekly workbook,
// and ships both, so every weekly send carries the latest daily report too.
func (f *Filer) SendWeekly(content *model.Content) error {
	if err := checkSettings(content.Settings); err != nil {
		return err
	}

	today := f.now()
	dailyPath := f.dailyPath(content.Settings.Name, today)
	if err := f.render.RenderDocument(f.paths.DailyTemplate, dailyPath, content.Daily); err != nil {
		return &StageError{Stage: StageRender, Err: err}
	}

	weeklyPath := f.weeklyPath(content.Settings.Name, today)
	ctx := weeklyContext(content, today)
	if err := f.render.RenderWorkbook(f.paths.WeeklyTemplate, weeklyPath, ctx); err != nil {
		return &StageError{Stage: StageRender, Err: err}
	}

	subject := subjectFor("weekly", content.Settings.Name, today)
	if err := f.mail.SendReport(subject, []string{dailyPath, weeklyPath}); err != nil {
		return &StageError{Stage: StageSend, Err: err}
	}
	return nil
}

func (f *Filer) dailyPath(name string, today time.Time) string {
	return filepath.Join(f.paths.ArchiveDir, fmt.Sprintf("daily-%s-%s.docx", name, CompactDate(today)))
}

func (f *Filer) weeklyPath(name string, today time.Time) string {
	return filepath.Join(f.paths.ArchiveDir, fmt.Sprintf("weekly-%s-%s.xlsx", name, CompactDate(today)))
}

func subjectFor(kind, name string, today time.Time) string {
	return fmt.Sprintf("%s-%s-%s", kind, name, CompactDate(today))
}

// weeklyContext combines the computed dates, the display name, and the
// weekly entry lists. Entry fields shadow computed keys on collision.
func weeklyContext(content *model.Content, today time.Time) map[string]any {
	ctx := map[string]any{
		"today":       ISODate(today),
		"next_friday": ISODate(NextFriday(today)),
		"name":        content.Settings.Name,
		"date":        SlashDate(today),
	}
	for field, entries := range content.Weekly {
		ctx[field] = entries
	}
	return ctx
}

// checkSettings fails fast, with the missing fields named, instead of
// letting an unconfigured send die inside the mailer.
func checkSettings(s model.Settings) error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"server_name", s.ServerName},
		{"server_port", s.ServerPort},
		{"sender", s.Sender},
		{"password", s.Password},
		{"to", s.To},
		{"name", s.Name},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &SettingsIncompleteError{Missing: missing}
	}
	return nil
}
