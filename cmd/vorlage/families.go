package main

import (
	"fmt"

	"github.com/gutachter/vorlage"
)

// Run executes the families command.
func (c *FamiliesCmd) Run(deps *Dependencies) error {
	families, err := deps.Families.LoadFamilies(deps.Ctx)
	if err != nil {
		if vorlage.ErrorCode(err) == vorlage.ENOTFOUND {
			fmt.Fprintln(deps.Stdout, "No families found. Use 'vorlage extract' to analyze a corpus.")
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}

	if len(families) == 0 {
		fmt.Fprintln(deps.Stdout, "No families found. Use 'vorlage extract' to analyze a corpus.")
		return nil
	}

	for _, family := range families {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d documents\n", family.FamilyID, family.FamilyName, len(family.Members))
	}

	return nil
}
