package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gutachter/vorlage"
	main "github.com/gutachter/vorlage/cmd/vorlage"
	"github.com/gutachter/vorlage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamiliesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists families with ID, name, and member count", func(t *testing.T) {
		t.Parallel()

		families := &mock.FamilyStore{
			LoadFamiliesFn: func(_ context.Context) ([]vorlage.TemplateFamily, error) {
				return []vorlage.TemplateFamily{
					{
						FamilyID:   "family_00000000000000aa",
						FamilyName: "Gutachten (rente_mueller)",
						Members:    []string{"rente_mueller.docx", "rente_schmidt.docx"},
					},
					{
						FamilyID:   "family_00000000000000bb",
						FamilyName: "Gutachten (gericht_weber)",
						Members:    []string{"gericht_weber.docx"},
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Families: families,
		}

		cmd := &main.FamiliesCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "family_00000000000000aa")
		assert.Contains(t, output, "Gutachten (rente_mueller)")
		assert.Contains(t, output, "2 documents")
		assert.Contains(t, output, "family_00000000000000bb")
		assert.Contains(t, output, "1 documents")
		assert.Empty(t, stderr.String())
	})

	t.Run("shows helpful message when no extraction has run", func(t *testing.T) {
		t.Parallel()

		families := &mock.FamilyStore{
			LoadFamiliesFn: func(_ context.Context) ([]vorlage.TemplateFamily, error) {
				return nil, vorlage.Errorf(vorlage.ENOTFOUND, "no families stored")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Families: families,
		}

		cmd := &main.FamiliesCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No families found")
		assert.Contains(t, stdout.String(), "vorlage extract")
	})

	t.Run("shows helpful message for an empty family list", func(t *testing.T) {
		t.Parallel()

		families := &mock.FamilyStore{
			LoadFamiliesFn: func(_ context.Context) ([]vorlage.TemplateFamily, error) {
				return []vorlage.TemplateFamily{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Families: families,
		}

		cmd := &main.FamiliesCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No families found")
	})

	t.Run("returns error when loading fails", func(t *testing.T) {
		t.Parallel()

		families := &mock.FamilyStore{
			LoadFamiliesFn: func(_ context.Context) ([]vorlage.TemplateFamily, error) {
				return nil, vorlage.Errorf(vorlage.EINTERNAL, "disk error")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Families: families,
		}

		cmd := &main.FamiliesCmd{}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
		assert.Empty(t, stdout.String())
	})
}
