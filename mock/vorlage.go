// Package mock provides function-field mock implementations of the domain
// interfaces for use in tests.
package mock

import (
	"context"

	"github.com/gutachter/vorlage"
)

// Compile-time interface verification.
var (
	_ vorlage.Ingestor     = (*Ingestor)(nil)
	_ vorlage.ProfileStore = (*ProfileStore)(nil)
	_ vorlage.SpecStore    = (*SpecStore)(nil)
	_ vorlage.FamilyStore  = (*FamilyStore)(nil)
	_ vorlage.Renderer     = (*Renderer)(nil)
)

// Ingestor is a mock implementation of vorlage.Ingestor.
type Ingestor struct {
	IngestFn func(ctx context.Context, path string) (*vorlage.DocProfile, error)
}

func (i *Ingestor) Ingest(ctx context.Context, path string) (*vorlage.DocProfile, error) {
	return i.IngestFn(ctx, path)
}

// ProfileStore is a mock implementation of vorlage.ProfileStore.
type ProfileStore struct {
	SaveProfileFn  func(ctx context.Context, profile *vorlage.DocProfile) error
	LoadProfilesFn func(ctx context.Context) ([]*vorlage.DocProfile, error)
}

func (s *ProfileStore) SaveProfile(ctx context.Context, profile *vorlage.DocProfile) error {
	return s.SaveProfileFn(ctx, profile)
}

func (s *ProfileStore) LoadProfiles(ctx context.Context) ([]*vorlage.DocProfile, error) {
	return s.LoadProfilesFn(ctx)
}

// SpecStore is a mock implementation of vorlage.SpecStore.
type SpecStore struct {
	SaveSpecFn     func(ctx context.Context, spec *vorlage.TemplateSpec, baseTemplate []byte) error
	LoadSpecFn     func(ctx context.Context, familyID string) (*vorlage.TemplateSpec, error)
	ListFamiliesFn func(ctx context.Context) ([]string, error)
}

func (s *SpecStore) SaveSpec(ctx context.Context, spec *vorlage.TemplateSpec, baseTemplate []byte) error {
	return s.SaveSpecFn(ctx, spec, baseTemplate)
}

func (s *SpecStore) LoadSpec(ctx context.Context, familyID string) (*vorlage.TemplateSpec, error) {
	return s.LoadSpecFn(ctx, familyID)
}

func (s *SpecStore) ListFamilies(ctx context.Context) ([]string, error) {
	return s.ListFamiliesFn(ctx)
}

// FamilyStore is a mock implementation of vorlage.FamilyStore.
type FamilyStore struct {
	SaveFamiliesFn func(ctx context.Context, families []vorlage.TemplateFamily) error
	LoadFamiliesFn func(ctx context.Context) ([]vorlage.TemplateFamily, error)
}

func (s *FamilyStore) SaveFamilies(ctx context.Context, families []vorlage.TemplateFamily) error {
	return s.SaveFamiliesFn(ctx, families)
}

func (s *FamilyStore) LoadFamilies(ctx context.Context) ([]vorlage.TemplateFamily, error) {
	return s.LoadFamiliesFn(ctx)
}

// Renderer is a mock implementation of vorlage.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, spec *vorlage.TemplateSpec, content *vorlage.StructuredContent, outputPath string) (*vorlage.RenderResult, error)
}

func (r *Renderer) Render(ctx context.Context, spec *vorlage.TemplateSpec, content *vorlage.StructuredContent, outputPath string) (*vorlage.RenderResult, error) {
	return r.RenderFn(ctx, spec, content, outputPath)
}
