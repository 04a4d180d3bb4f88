package articles

import "errors"

var (
	ErrDocumentRequired = errors.New("articles: document is required")
	ErrSlugRequired     = errors.New("articles: slug could not be derived")
	ErrSlugInvalid      = errors.New("articles: slug contains invalid characters")
	ErrDuplicateArticle = errors.New("articles: duplicate locale and slug")
	ErrArticleNotFound  = errors.New("articles: article not found")
	ErrMetadataInvalid  = errors.New("articles: metadata invalid")
)
