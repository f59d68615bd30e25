package vorlage_test

import (
	"testing"

	"github.com/gutachter/vorlage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("same style and text yield same fingerprint", func(t *testing.T) {
		t.Parallel()

		a := vorlage.NewFingerprint("Normal", "untersuchung am <DATE>")
		b := vorlage.NewFingerprint("Normal", "untersuchung am <DATE>")

		assert.Equal(t, a, b)
		assert.Equal(t, a.String(), b.String())
	})

	t.Run("style distinguishes fingerprints", func(t *testing.T) {
		t.Parallel()

		a := vorlage.NewFingerprint("Normal", "anamnese")
		b := vorlage.NewFingerprint("Heading 1", "anamnese")

		assert.NotEqual(t, a.String(), b.String())
	})

	t.Run("paragraphs differing only in dates collide", func(t *testing.T) {
		t.Parallel()

		p1 := vorlage.ParagraphRecord{
			Text:  "Untersuchung am 27.11.2025",
			Style: "Normal",
			Norm:  vorlage.Normalize("Untersuchung am 27.11.2025"),
		}
		p2 := vorlage.ParagraphRecord{
			Text:  "Untersuchung am 03.04.2019",
			Style: "Normal",
			Norm:  vorlage.Normalize("Untersuchung am 03.04.2019"),
		}

		assert.Equal(t, p1.Fingerprint(), p2.Fingerprint())
	})
}

func TestStyleRoleMapResolve(t *testing.T) {
	t.Parallel()

	roles := vorlage.StyleRoleMap{
		vorlage.RoleH1:   "Überschrift 1",
		vorlage.RoleBody: "Standard",
	}

	t.Run("resolves mapped role", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Überschrift 1", roles.Resolve(vorlage.RoleH1))
	})

	t.Run("falls back to body mapping", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Standard", roles.Resolve(vorlage.RoleBullet))
	})

	t.Run("empty map falls back to Normal", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Normal", vorlage.StyleRoleMap{}.Resolve(vorlage.RoleH2))
	})
}

func TestTemplateSkeletonValidate(t *testing.T) {
	t.Parallel()

	slot := func(id string) vorlage.SkeletonItem {
		return vorlage.SkeletonItem{
			Type: vorlage.ItemSlot,
			Slot: &vorlage.Slot{SlotID: id, AllowedStyles: []vorlage.StyleRole{vorlage.RoleBody}},
		}
	}
	fixed := func(id string) vorlage.SkeletonItem {
		return vorlage.SkeletonItem{
			Type:  vorlage.ItemFixed,
			Fixed: &vorlage.FixedBlock{ID: id, Paragraphs: []vorlage.FixedParagraph{{Text: "Anamnese", Style: "Heading 1"}}},
		}
	}

	t.Run("accepts alternating fixed and slot items", func(t *testing.T) {
		t.Parallel()

		sk := vorlage.TemplateSkeleton{fixed("anamnese_heading"), slot("anamnese_body"), fixed("diagnosen_heading"), slot("diagnosen_body")}

		require.NoError(t, sk.Validate())
		assert.Equal(t, []string{"anamnese_body", "diagnosen_body"}, sk.SlotIDs())
	})

	t.Run("rejects duplicate slot IDs", func(t *testing.T) {
		t.Parallel()

		sk := vorlage.TemplateSkeleton{slot("anamnese_body"), slot("anamnese_body")}

		err := sk.Validate()
		require.Error(t, err)
		assert.Equal(t, vorlage.ECONFLICT, vorlage.ErrorCode(err))
	})

	t.Run("rejects slot item without slot", func(t *testing.T) {
		t.Parallel()

		sk := vorlage.TemplateSkeleton{{Type: vorlage.ItemSlot}}

		assert.Equal(t, vorlage.EINVALID, vorlage.ErrorCode(sk.Validate()))
	})

	t.Run("rejects unknown item type", func(t *testing.T) {
		t.Parallel()

		sk := vorlage.TemplateSkeleton{{Type: "table"}}

		assert.Equal(t, vorlage.EINVALID, vorlage.ErrorCode(sk.Validate()))
	})
}

func TestTemplateSpec(t *testing.T) {
	t.Parallel()

	spec := &vorlage.TemplateSpec{
		Version:  "1.0",
		FamilyID: "family_0011223344556677",
		Skeleton: vorlage.TemplateSkeleton{
			{Type: vorlage.ItemSlot, Slot: &vorlage.Slot{SlotID: "anamnese_body"}},
		},
	}

	t.Run("validates complete spec", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, spec.Validate())
	})

	t.Run("rejects empty skeleton", func(t *testing.T) {
		t.Parallel()

		bad := &vorlage.TemplateSpec{Version: "1.0", FamilyID: "family_x"}

		assert.Equal(t, vorlage.EINVALID, vorlage.ErrorCode(bad.Validate()))
	})

	t.Run("finds slot by ID", func(t *testing.T) {
		t.Parallel()

		require.NotNil(t, spec.FindSlot("anamnese_body"))
		assert.Nil(t, spec.FindSlot("diagnosen_body"))
	})
}

func TestHeaderFooterText(t *testing.T) {
	t.Parallel()

	t.Run("joins the populated tab stops", func(t *testing.T) {
		t.Parallel()

		h := vorlage.HeaderFooter{Left: "Dr. med. Beispiel", Right: "Gutachten"}

		assert.Equal(t, "Dr. med. Beispiel\t\tGutachten", h.Text())
	})

	t.Run("trims trailing empty stops", func(t *testing.T) {
		t.Parallel()

		h := vorlage.HeaderFooter{Left: "Praxis"}

		assert.Equal(t, "Praxis", h.Text())
	})

	t.Run("empty header has empty text", func(t *testing.T) {
		t.Parallel()

		assert.True(t, vorlage.HeaderFooter{}.Empty())
		assert.Equal(t, "", vorlage.HeaderFooter{}.Text())
	})
}

func TestSlotAllows(t *testing.T) {
	t.Parallel()

	slot := &vorlage.Slot{
		SlotID:        "befunde_body",
		AllowedStyles: []vorlage.StyleRole{vorlage.RoleBody, vorlage.RoleBullet},
	}

	assert.True(t, slot.Allows(vorlage.RoleBody))
	assert.True(t, slot.Allows(vorlage.RoleBullet))
	assert.False(t, slot.Allows(vorlage.RoleH1))
}
