package describe

import "context"

// TemplateSource resolves prompt templates by key.
// A missing key must be reported as domain.ErrTemplateNotFound.
type TemplateSource interface {
	Template(ctx context.Context, key string) (string, error)
}
