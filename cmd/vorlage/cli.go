package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/gutachter/vorlage"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Profiles vorlage.ProfileStore
	Families vorlage.FamilyStore
	Specs    vorlage.SpecStore
	Ingestor vorlage.Ingestor
	Renderer vorlage.Renderer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Extract  ExtractCmd  `cmd:"" help:"Analyze a corpus of .docx reports and extract template specs"`
	Render   RenderCmd   `cmd:"" help:"Render a document from a template spec and structured content"`
	Families FamiliesCmd `cmd:"" help:"List extracted template families"`
	Profiles ProfilesCmd `cmd:"" help:"List stored document profiles"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	InputDir    string `arg:"" type:"existingdir" help:"Directory containing the .docx corpus"`
	Config      string `short:"c" help:"Extraction config file (YAML)"`
	Concurrency int    `help:"Concurrent ingestion limit (overrides config)"`
}

// RenderCmd is the "render" subcommand.
type RenderCmd struct {
	Family    string `arg:"" help:"Family ID of the template spec"`
	Content   string `arg:"" type:"existingfile" help:"Structured content file (JSON)"`
	Output    string `arg:"" help:"Output .docx path"`
	Templates string `short:"t" help:"Artifact directory containing templates/ (overrides the data directory)"`
}

// FamiliesCmd is the "families" subcommand.
type FamiliesCmd struct{}

// ProfilesCmd is the "profiles" subcommand.
type ProfilesCmd struct{}
