package document

import "context"

// TextRasterizer stores the document markup verbatim. It is the default
// when no PDF engine is configured; the artifact is still hashed and
// sealed like any other.
type TextRasterizer struct{}

func (TextRasterizer) Rasterize(_ context.Context, markup string) ([]byte, error) {
	return []byte(markup), nil
}
