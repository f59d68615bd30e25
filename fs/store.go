// Package fs provides file-based persistence for extraction artifacts:
// cached DocProfiles, cluster assignments, and per-family TemplateSpecs
// with their base style documents. All writes are atomic: content goes to a
// uniquely-named temporary file first and is renamed into place, so
// concurrent runs and crashes never leave torn artifacts.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gutachter/vorlage"
)

// Artifact file and directory names.
const (
	ProfilesDirName  = "doc_profiles"
	TemplatesDirName = "templates"
	FamiliesFileName = "template_families.json"
	SpecFileName     = "template_spec.json"
	BaseTemplateName = "base_template.docx"
)

// marshalArtifact encodes v as two-space indented JSON without HTML
// escaping. Map keys are emitted in sorted order, so output is
// deterministic for identical input.
func marshalArtifact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temporary sibling of path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Ensure ProfileStore implements vorlage.ProfileStore at compile time.
var _ vorlage.ProfileStore = (*ProfileStore)(nil)

// ProfileStore persists DocProfiles as doc_profiles/{stem}.json under a
// base output directory.
type ProfileStore struct {
	dir string
}

// NewProfileStore creates a ProfileStore rooted at baseDir.
func NewProfileStore(baseDir string) *ProfileStore {
	return &ProfileStore{dir: filepath.Join(baseDir, ProfilesDirName)}
}

// SaveProfile writes one profile, keyed by its source file stem.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *vorlage.DocProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	data, err := marshalArtifact(profile)
	if err != nil {
		return fmt.Errorf("marshal profile %q: %w", profile.SourceFile, err)
	}

	stem := strings.TrimSuffix(profile.SourceFile, filepath.Ext(profile.SourceFile))
	return writeFileAtomic(filepath.Join(s.dir, stem+".json"), data)
}

// LoadProfiles reads all persisted profiles, ordered by file name.
func (s *ProfileStore) LoadProfiles(ctx context.Context) ([]*vorlage.DocProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, vorlage.Errorf(vorlage.ENOTFOUND, "no cached profiles at %q", s.dir)
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	profiles := make([]*vorlage.DocProfile, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		var profile vorlage.DocProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile %q: %w", name, err)
		}
		profiles = append(profiles, &profile)
	}
	return profiles, nil
}

// Ensure FamilyStore implements vorlage.FamilyStore at compile time.
var _ vorlage.FamilyStore = (*FamilyStore)(nil)

// FamilyStore persists cluster assignments as template_families.json.
type FamilyStore struct {
	baseDir string
}

// NewFamilyStore creates a FamilyStore rooted at baseDir.
func NewFamilyStore(baseDir string) *FamilyStore {
	return &FamilyStore{baseDir: baseDir}
}

// SaveFamilies writes the cluster assignments, replacing any prior version.
func (s *FamilyStore) SaveFamilies(ctx context.Context, families []vorlage.TemplateFamily) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := marshalArtifact(families)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.baseDir, FamiliesFileName), data)
}

// LoadFamilies reads the persisted cluster assignments.
func (s *FamilyStore) LoadFamilies(ctx context.Context) ([]vorlage.TemplateFamily, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, FamiliesFileName))
	if os.IsNotExist(err) {
		return nil, vorlage.Errorf(vorlage.ENOTFOUND, "no family assignments at %q", s.baseDir)
	}
	if err != nil {
		return nil, err
	}
	var families []vorlage.TemplateFamily
	if err := json.Unmarshal(data, &families); err != nil {
		return nil, fmt.Errorf("unmarshal families: %w", err)
	}
	return families, nil
}

// Ensure SpecStore implements vorlage.SpecStore at compile time.
var _ vorlage.SpecStore = (*SpecStore)(nil)

// SpecStore persists TemplateSpecs under templates/{family_id}/, together
// with the style-only base document. Saving overwrites the prior version of
// the same family.
type SpecStore struct {
	baseDir string
}

// NewSpecStore creates a SpecStore rooted at baseDir.
func NewSpecStore(baseDir string) *SpecStore {
	return &SpecStore{baseDir: baseDir}
}

func (s *SpecStore) familyDir(familyID string) string {
	return filepath.Join(s.baseDir, TemplatesDirName, familyID)
}

// SaveSpec validates and writes the spec plus its base template.
func (s *SpecStore) SaveSpec(ctx context.Context, spec *vorlage.TemplateSpec, baseTemplate []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	data, err := marshalArtifact(spec)
	if err != nil {
		return fmt.Errorf("marshal spec %q: %w", spec.FamilyID, err)
	}

	dir := s.familyDir(spec.FamilyID)
	if err := writeFileAtomic(filepath.Join(dir, SpecFileName), data); err != nil {
		return err
	}
	if len(baseTemplate) > 0 {
		return writeFileAtomic(filepath.Join(dir, BaseTemplateName), baseTemplate)
	}
	return nil
}

// LoadSpec reads one family's spec. Returns ENOTFOUND when the family has
// no persisted template.
func (s *SpecStore) LoadSpec(ctx context.Context, familyID string) (*vorlage.TemplateSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.familyDir(familyID), SpecFileName))
	if os.IsNotExist(err) {
		return nil, vorlage.Errorf(vorlage.ENOTFOUND, "no template spec for family %q", familyID)
	}
	if err != nil {
		return nil, err
	}

	var spec vorlage.TemplateSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec %q: %w", familyID, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ListFamilies returns the family IDs that have persisted specs, sorted.
func (s *SpecStore) ListFamilies(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.baseDir, TemplatesDirName))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
