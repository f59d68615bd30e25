package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gutachter/vorlage"
	main "github.com/gutachter/vorlage/cmd/vorlage"
	"github.com/gutachter/vorlage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists profiles with paragraph count and extraction time", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileStore{
			LoadProfilesFn: func(_ context.Context) ([]*vorlage.DocProfile, error) {
				return []*vorlage.DocProfile{
					{
						SourceFile:  "rente_mueller.docx",
						ExtractedAt: time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC),
						Paragraphs:  make([]vorlage.ParagraphRecord, 42),
					},
					{
						SourceFile:  "rente_schmidt.docx",
						ExtractedAt: time.Date(2026, 3, 12, 14, 31, 0, 0, time.UTC),
						Paragraphs:  make([]vorlage.ParagraphRecord, 38),
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
			Profiles: profiles,
		}

		cmd := &main.ProfilesCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "rente_mueller.docx")
		assert.Contains(t, output, "42 paragraphs")
		assert.Contains(t, output, "2026-03-12 14:30")
		assert.Contains(t, output, "rente_schmidt.docx")
		assert.Contains(t, output, "38 paragraphs")
		assert.Empty(t, stderr.String())
	})

	t.Run("shows helpful message when no profiles exist", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileStore{
			LoadProfilesFn: func(_ context.Context) ([]*vorlage.DocProfile, error) {
				return nil, vorlage.Errorf(vorlage.ENOTFOUND, "no profiles stored")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Profiles: profiles,
		}

		cmd := &main.ProfilesCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No profiles found")
		assert.Contains(t, stdout.String(), "vorlage extract")
	})

	t.Run("returns error when loading fails", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileStore{
			LoadProfilesFn: func(_ context.Context) ([]*vorlage.DocProfile, error) {
				return nil, vorlage.Errorf(vorlage.EINTERNAL, "disk error")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Profiles: profiles,
		}

		cmd := &main.ProfilesCmd{}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
		assert.Empty(t, stdout.String())
	})
}
