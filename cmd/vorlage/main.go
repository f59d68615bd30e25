package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/gutachter/vorlage/docx"
	"github.com/gutachter/vorlage/fs"
	"github.com/gutachter/vorlage/render"
	vslog "github.com/gutachter/vorlage/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Artifact directory holding profiles, specs, and family assignments.
	// Set before calling Run().
	DataDir string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	parser, err := kong.New(cli,
		kong.Name("vorlage"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'vorlage --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(m.DataDir, 0755); err != nil {
		fmt.Fprintf(stderr, "Hint: Set VORLAGE_DIR to use a different artifact directory\n")
		return fmt.Errorf("failed to create data directory %q: %w", m.DataDir, err)
	}

	deps.Profiles = fs.NewProfileStore(m.DataDir)
	deps.Families = fs.NewFamilyStore(m.DataDir)
	deps.Specs = fs.NewSpecStore(m.DataDir)
	deps.Ingestor = vslog.NewLoggingIngestor(docx.NewReader(), deps.Logger)
	deps.Renderer = vslog.NewLoggingRenderer(render.New(deps.Logger), deps.Logger)

	return kongCtx.Run(deps)
}

func defaultDataDir() string {
	if path := os.Getenv("VORLAGE_DIR"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "vorlage_data"
	}
	return filepath.Join(home, ".vorlage")
}
