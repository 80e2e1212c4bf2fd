package orchestrators

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"evenex/internal/domain/calendar"
	eventDomain "evenex/internal/domain/event"
)

// User-facing export messages.
const (
	ExportSuccessMessage = "Calendar event downloaded!"
	ExportFailureMessage = "Failed to download calendar event"
)

// ErrExportPanicked is reported when a collaborator panics during export.
var ErrExportPanicked = errors.New("calendar export panicked")

// FileSaver writes a named artifact to the local destination.
type FileSaver interface {
	Save(name, contentType string, data []byte) (path string, err error)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// ExportCalendarInput carries the event value already held by the caller.
type ExportCalendarInput struct {
	Event    eventDomain.Event
	Origin   string
	Filename string // optional; defaults to the sanitised title
}

// ExportCalendarDeps holds dependencies for ExportCalendar.
type ExportCalendarDeps struct {
	Encoder     *calendar.Encoder
	Saver       FileSaver
	Notifier    Notifier
	DisplayZone *time.Location
}

// ExportResult reports the outcome of a local export.
type ExportResult struct {
	Filename string
	Path     string
	Err      error
}

// OK reports whether the export succeeded.
func (r ExportResult) OK() bool {
	return r.Err == nil
}

// ExecuteExportCalendar encodes an event locally and saves it as a file.
// It never returns an error and never panics; failures surface through the notifier.
// PRE: deps.Encoder, deps.Saver and deps.Notifier are set
// POST: exactly one notification is emitted; result.Err carries the cause on failure
func ExecuteExportCalendar(input ExportCalendarInput, deps ExportCalendarDeps) (result ExportResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("%w: %v", ErrExportPanicked, r)
			slog.Error("calendar_export_failed", "error", result.Err)
			deps.Notifier.Error(ExportFailureMessage)
		}
	}()

	ev := input.Event
	name := input.Filename
	if name == "" {
		name = calendar.Filename("", ev.Title)
	}
	result.Filename = name

	in := buildCalendarInput(ev, ev.ClientLocation(), EventURL(input.Origin, ev), deps.DisplayZone)
	body, err := deps.Encoder.Encode(in)
	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrEncodeFailed, err)
		slog.Error("calendar_export_failed", "stage", "encode", "title", ev.Title, "error", err)
		deps.Notifier.Error(ExportFailureMessage)
		return result
	}

	path, err := deps.Saver.Save(name, calendar.DownloadContentType, []byte(body))
	if err != nil {
		result.Err = fmt.Errorf("save %s: %w", name, err)
		slog.Error("calendar_export_failed", "stage", "save", "file", name, "error", err)
		deps.Notifier.Error(ExportFailureMessage)
		return result
	}

	result.Path = path
	slog.Info("calendar_exported", "file", name, "path", path)
	deps.Notifier.Success(ExportSuccessMessage)
	return result
}
