package interfaces

import "context"

// ArtifactStorage is the sink the generator writes build outputs through.
// The default implementation targets the local filesystem; hosts can supply
// object-store backed implementations for remote publishing.
type ArtifactStorage interface {
	// Write persists data at path, creating parent directories as needed.
	Write(ctx context.Context, path string, data []byte) error
	// Remove deletes the file or directory tree at path. Removing a missing
	// path must be a no-op.
	Remove(ctx context.Context, path string) error
	// Exists reports whether path is present in the store.
	Exists(ctx context.Context, path string) (bool, error)
}
