package itinerary

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Emitter hands a finished document to whatever saves or delivers it.
type Emitter interface {
	Emit(ctx context.Context, doc *Document) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, doc *Document) error

func (f EmitterFunc) Emit(ctx context.Context, doc *Document) error { return f(ctx, doc) }

// FileEmitter writes documents as <Dir>/<Name>.pdf.
type FileEmitter struct {
	Dir string
}

// NewFileEmitter creates a FileEmitter rooted at dir.
func NewFileEmitter(dir string) *FileEmitter {
	return &FileEmitter{Dir: dir}
}

// Path returns the file a document is written to.
func (e *FileEmitter) Path(doc *Document) string {
	return filepath.Join(e.Dir, doc.Name+".pdf")
}

func (e *FileEmitter) Emit(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := RenderPDF(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	path := e.Path(doc)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("itinerary: wrote %s (%d pages)", path, len(doc.Pages))
	return nil
}
