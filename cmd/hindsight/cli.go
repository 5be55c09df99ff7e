package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/errors"
	"github.com/hpungsan/hindsight/internal/ops"
	"github.com/hpungsan/hindsight/internal/rpc"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string) *cli.App {
	app := &cli.App{
		Name:    "hindsight",
		Usage:   "Capture and search debugging learnings",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(db, store, cfg, knowledgeDir),
			sessionCmd(db, store, cfg, knowledgeDir),
			searchCmd(db, store, cfg),
			recentCmd(db, cfg),
			serveCmd(db, store, cfg, knowledgeDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(db *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Capture a single debugging experience (or pipe the problem via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "What went wrong"},
			&cli.StringSliceFlag{Name: "step", Aliases: []string{"s"}, Usage: "Investigation step taken (repeatable)"},
			&cli.StringFlag{Name: "solution", Usage: "What fixed the problem"},
			&cli.StringFlag{Name: "outcome", Usage: "What happened after the fix"},
			&cli.StringFlag{Name: "project", Usage: "Project the experience belongs to"},
		},
		Action: func(c *cli.Context) error {
			problem := c.String("problem")
			if problem == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				problem = text
			}

			input := ops.CaptureInput{
				ProblemDescription: problem,
				InvestigationSteps: c.StringSlice("step"),
				SolutionApplied:    c.String("solution"),
				Outcome:            c.String("outcome"),
				ProjectContext:     c.String("project"),
			}

			output, err := ops.Capture(c.Context, db, store, cfg, knowledgeDir, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// sessionCmd creates the session command.
func sessionCmd(db *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Extract learnings from a session transcript (reads transcript from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project the session belongs to"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "debugging", Usage: "Session type: debugging|development|analysis"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewValidation("session transcript must be piped via stdin"))
			}

			content, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			input := ops.CaptureSessionInput{
				SessionContent: content,
				ProjectName:    c.String("project"),
				SessionType:    c.String("type"),
			}
			if tags := c.String("tags"); tags != "" {
				input.Tags = parseTags(tags)
			}

			output, err := ops.CaptureSession(c.Context, db, store, cfg, knowledgeDir, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB, store archon.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search captured learnings",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Restrict results to one project"},
			&cli.IntFlag{Name: "max", Aliases: []string{"m"}, Usage: "Maximum results (default: 10, max: 100)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Query:         strings.Join(c.Args().Slice(), " "),
				ProjectFilter: c.String("project"),
				MaxResults:    c.Int("max"),
			}

			output, err := ops.Search(c.Context, db, store, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// recentCmd creates the recent command.
func recentCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List the most recently captured learnings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Restrict to one project"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum entries (default: 10, max: 100)"},
			&cli.BoolFlag{Name: "verify", Usage: "Check each listed markdown log for the expected section layout"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RecentInput{
				Project: c.String("project"),
				Limit:   c.Int("limit"),
				Verify:  c.Bool("verify"),
			}

			output, err := ops.Recent(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the JSON-RPC HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8757, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := rpc.NewServer(db, store, cfg, knowledgeDir, Version, c.String("bind"), c.Int("port"))
			return rpc.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := err.(*errors.HindsightError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
