package save

import "context"

// Repository is a abstract data-store which persists Save.
// Contexts are checked before an operation starts. Once started,
// an operation runs to the end.
type Repository interface {
	// Exist returns whether a save named name exists.
	// It returns false for invalid name or canceled context.
	Exist(ctx context.Context, name string) bool

	// SaveToFile persists s under s.Name, overwriting an existing one.
	SaveToFile(ctx context.Context, s *Save) error

	// LoadFromFile restores a save named name. It returns either
	// a complete Save with nil error or nil with error.
	LoadFromFile(ctx context.Context, name string) (*Save, error)

	// LoadMetadata returns only metadata of a save named name.
	// The compatibility is not checked.
	LoadMetadata(ctx context.Context, name string) (*Metadata, error)

	// List returns summaries of all saves, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Remove deletes a save named name.
	Remove(ctx context.Context, name string) error
}
