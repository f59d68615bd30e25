package main

import (
	"fmt"

	"github.com/gutachter/vorlage"
)

// Run executes the profiles command.
func (c *ProfilesCmd) Run(deps *Dependencies) error {
	profiles, err := deps.Profiles.LoadProfiles(deps.Ctx)
	if err != nil {
		if vorlage.ErrorCode(err) == vorlage.ENOTFOUND {
			fmt.Fprintln(deps.Stdout, "No profiles found. Use 'vorlage extract' to analyze a corpus.")
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}

	for _, profile := range profiles {
		fmt.Fprintf(deps.Stdout, "%s  %d paragraphs  extracted %s\n",
			profile.SourceFile,
			len(profile.Paragraphs),
			profile.ExtractedAt.Format("2006-01-02 15:04"),
		)
	}

	return nil
}
