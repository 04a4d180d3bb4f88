package schema

import "errors"

// ErrUnsupportedKeyword flags schema documents using keywords outside the
// supported subset.
var ErrUnsupportedKeyword = errors.New("schema: unsupported keyword")
