// evenex is the command-line companion to the event server. It exports an
// event held locally as an .ics file and checks .ics files for conformance.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"github.com/urfave/cli/v2"
	_ "time/tzdata"

	"evenex/internal/adapters/filesave"
	"evenex/internal/adapters/icsverify"
	"evenex/internal/adapters/notify"
	"evenex/internal/application/orchestrators"
	"evenex/internal/domain/calendar"
	eventDomain "evenex/internal/domain/event"
)

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		slog.Error("command_failed", "error", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "evenex",
		Usage:     "Export and verify event calendar files.",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"EVENEX_LOG_LEVEL"}, Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(c.String("log-level"))); err != nil {
				return fmt.Errorf("log-level: %w", err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl})))
			return nil
		},
		Commands: []*cli.Command{
			exportCommand(),
			verifyCommand(),
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write an event (JSON or JSONC) as an .ics file.",
		ArgsUsage: "<event.json|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "origin", EnvVars: []string{"EVENEX_PUBLIC_BASE_URL"}, Usage: "site origin used for the event URL (omitted when empty)"},
			&cli.StringFlag{Name: "out", Value: ".", Usage: "output directory, or - for stdout"},
			&cli.StringFlag{Name: "filename", Usage: "file name (default: derived from the title)"},
			&cli.StringFlag{Name: "timestamp-mode", Value: calendar.TimestampLiteral, EnvVars: []string{"EVENEX_TIMESTAMP_MODE"}, Usage: "literal or utc"},
			&cli.StringFlag{Name: "timezone", Value: "UTC", EnvVars: []string{"EVENEX_TIMEZONE"}, Usage: "IANA zone the event times are rendered in"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("export takes exactly one event file", 2)
			}
			mode := c.String("timestamp-mode")
			if !calendar.ValidTimestampMode(mode) {
				return fmt.Errorf("timestamp-mode must be %q or %q", calendar.TimestampLiteral, calendar.TimestampUTC)
			}
			zone, err := time.LoadLocation(c.String("timezone"))
			if err != nil {
				return fmt.Errorf("timezone: %w", err)
			}
			ev, err := readEvent(c.Args().First(), c.App.Reader)
			if err != nil {
				return err
			}

			var saver orchestrators.FileSaver = filesave.NewDiskSaver(c.String("out"))
			if c.String("out") == "-" {
				saver = filesave.WriterSaver{W: c.App.Writer}
			}

			res := orchestrators.ExecuteExportCalendar(orchestrators.ExportCalendarInput{
				Event:    ev,
				Origin:   c.String("origin"),
				Filename: c.String("filename"),
			}, orchestrators.ExportCalendarDeps{
				Encoder:     calendar.NewEncoder(mode),
				Saver:       saver,
				Notifier:    notify.NewTerminal(c.App.ErrWriter),
				DisplayZone: zone,
			})
			if !res.OK() {
				return cli.Exit("", 1)
			}
			if res.Path != "-" {
				fmt.Fprintln(c.App.ErrWriter, res.Path)
			}
			return nil
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that .ics files hold exactly one complete event.",
		ArgsUsage: "<file.ics>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("verify takes at least one file", 2)
			}
			failed := 0
			for _, path := range c.Args().Slice() {
				data, err := os.ReadFile(path)
				if err == nil {
					var s icsverify.Summary
					if s, err = icsverify.Verify(string(data)); err == nil {
						printSummary(c.App.Writer, path, s)
						continue
					}
				}
				failed++
				fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", path, err)
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d files failed verification", failed, c.NArg()), 1)
			}
			return nil
		},
	}
}

// readEvent loads an event value from path, or from stdin when path is "-".
// Comments and trailing commas are allowed.
func readEvent(path string, stdin io.Reader) (eventDomain.Event, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return eventDomain.Event{}, err
	}
	return decodeEvent(data)
}

func decodeEvent(data []byte) (eventDomain.Event, error) {
	var ev eventDomain.Event
	if err := json.Unmarshal(jsonc.ToJSON(data), &ev); err != nil {
		return ev, fmt.Errorf("parse event: %w", err)
	}
	if strings.TrimSpace(ev.Title) == "" {
		return ev, errors.New("parse event: title is required")
	}
	return ev, nil
}

func printSummary(w io.Writer, path string, s icsverify.Summary) {
	fmt.Fprintf(w, "%s: ok\n", path)
	fmt.Fprintf(w, "  uid:      %s\n", s.UID)
	fmt.Fprintf(w, "  summary:  %s\n", s.Title)
	fmt.Fprintf(w, "  start:    %s\n", s.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "  end:      %s\n", s.End.Format(time.RFC3339))
	if s.Location != "" {
		fmt.Fprintf(w, "  location: %s\n", s.Location)
	}
	if s.URL != "" {
		fmt.Fprintf(w, "  url:      %s\n", s.URL)
	}
}
