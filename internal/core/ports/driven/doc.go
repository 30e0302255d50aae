// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Host Interfaces
//
// These stand in for the editing host and are consumed by a single run:
//
//   - DocumentTree: Tree mutation and queries
//   - TagBackend: Persistent, undoable tag writes
//   - Renderer: Text vectorisation, stroking, autocrop, selection focus
//   - ProgressReporter: Progress checkpoints
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - UndoManager: Groups one run into a single undo step
//
// # Application Interfaces
//
//   - Workspace / WorkspaceFactory: A live, editable document
//   - DocumentStore: Snapshot persistence
//   - DocumentCodec: Human-editable import/export format
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
