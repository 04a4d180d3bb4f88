package articles

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-blog/internal/validation"
)

// MetadataValidator checks custom front matter fields against a site-provided
// JSON schema. An empty schema accepts any metadata.
type MetadataValidator struct {
	schema map[string]any
}

// NewMetadataValidator compiles the schema once so repeated article
// validation stays cheap.
func NewMetadataValidator(schema map[string]any) (*MetadataValidator, error) {
	if len(schema) == 0 {
		return &MetadataValidator{}, nil
	}
	if err := validation.ValidateSchema(schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return &MetadataValidator{schema: schema}, nil
}

// Validate checks the article's custom metadata against the schema.
func (v *MetadataValidator) Validate(article *Article) error {
	if v == nil || v.schema == nil || article == nil {
		return nil
	}
	payload, err := normalizePayload(article.Custom)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMetadataInvalid, article.SourcePath, err)
	}
	if err := validation.ValidatePayload(v.schema, payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMetadataInvalid, article.SourcePath, err)
	}
	return nil
}

// normalizePayload round-trips YAML-decoded metadata through JSON so the
// schema validator sees the value types it expects.
func normalizePayload(custom map[string]any) (map[string]any, error) {
	if len(custom) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(custom)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
