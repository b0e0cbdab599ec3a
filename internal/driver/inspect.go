package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"plainclass/internal/model"
	"plainclass/internal/transform"
)

// Inspect runs the pipeline on one file without writing anything.
func Inspect(path string, opts transform.Options) (*transform.Result, error) {
	// #nosec G304 -- path comes from the command line
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return transform.Unit(path, src, opts), nil
}

// WriteModel prints the classes of the unit with their options, MRO and
// effective fields.
func WriteModel(w io.Writer, u *model.Unit) error {
	var sb strings.Builder
	for _, c := range u.Classes {
		marker := "class"
		if c.Marked {
			marker = "dataclass"
		}
		fmt.Fprintf(&sb, "%s %s", marker, c.QualName)
		if c.Marked {
			fmt.Fprintf(&sb, " [%s]", c.Options.String())
		}
		sb.WriteString("\n")
		if len(c.MRO) > 0 {
			fmt.Fprintf(&sb, "  mro: %s\n", strings.Join(c.MRO, ", "))
		}
		if c.Failed() {
			fmt.Fprintf(&sb, "  failed: %s\n", c.Failure.Error())
		}
		if !c.Marked || c.Failed() {
			continue
		}
		for _, f := range c.Fields() {
			fmt.Fprintf(&sb, "  %s\n", f.String())
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// DumpModel writes the raw model structures.
func DumpModel(w io.Writer, u *model.Unit) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true, MaxDepth: 6}
	for _, c := range u.Classes {
		cfg.Fdump(w, c)
	}
}
