package main

import (
	"fmt"
	"os"

	"github.com/gutachter/vorlage"
	"github.com/gutachter/vorlage/fs"
)

// Run executes the render command.
func (c *RenderCmd) Run(deps *Dependencies) error {
	specs := deps.Specs
	if c.Templates != "" {
		specs = fs.NewSpecStore(c.Templates)
	}

	spec, err := specs.LoadSpec(deps.Ctx, c.Family)
	if err != nil {
		if vorlage.ErrorCode(err) == vorlage.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "Hint: Run 'vorlage extract' first, or 'vorlage families' to list known families")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}

	data, err := os.ReadFile(c.Content)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	content, err := vorlage.ParseStructuredContent(data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}

	result, err := deps.Renderer.Render(deps.Ctx, spec, content, c.Output)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %s\n", result.OutputPath)
	if result.UnclearCount > 0 {
		fmt.Fprintf(deps.Stdout, "  %d unclear passages highlighted\n", result.UnclearCount)
	}
	for _, section := range result.MissingSections {
		fmt.Fprintf(deps.Stdout, "  section missing: %s\n", section)
	}

	return nil
}
