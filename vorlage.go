// Package vorlage extracts reusable structural templates from a corpus of
// German medical expert reports (Gutachten) and renders new documents from
// externally-structured dictation content using those templates.
//
// The offline pipeline ingests .docx files into DocProfiles, detects
// boilerplate paragraphs by corpus-wide fingerprint frequency, clusters
// documents into template families, and emits a persisted TemplateSpec per
// family. The runtime renderer walks a TemplateSkeleton and fills its slots
// from a StructuredContent object, producing one output document per
// dictation.
//
// This package contains domain types, pure functions, and interfaces
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency or concern
// (e.g., docx/, extract/, render/, fs/).
package vorlage
