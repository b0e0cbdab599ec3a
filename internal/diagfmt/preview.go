package diagfmt

import (
	"fmt"
	"strings"

	"plainclass/internal/diag"
	"plainclass/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview applies one edit to the whole lines it touches.
func buildFixEditPreview(fs *source.FileSet, edit diag.FixEdit) (fixEditPreview, error) {
	file := fileOf(fs, edit.Span)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found", edit.Span.File)
	}
	sp := edit.Span
	if sp.End < sp.Start || sp.End > file.Len() {
		return fixEditPreview{}, fmt.Errorf("edit span %d..%d out of range", sp.Start, sp.End)
	}

	// удаление с '\n' не должно захватывать следующую строку
	last := sp.End
	if last > sp.Start {
		last--
	}
	blockStart := file.LineStart(sp.Start)
	blockEnd := file.LineEnd(last)
	block := file.Content[blockStart:blockEnd]

	var after strings.Builder
	after.Grow(len(block) + len(edit.NewText))
	after.Write(file.Content[blockStart:sp.Start])
	after.WriteString(edit.NewText)
	after.Write(file.Content[sp.End:blockEnd])

	return fixEditPreview{
		before: previewLines(string(block)),
		after:  previewLines(after.String()),
	}, nil
}

func previewLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
