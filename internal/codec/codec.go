package codec

import (
	"fmt"
	"io"
	"sort"

	"budgettracker/internal/domain"
)

// Exporter writes a statement in one file format
type Exporter interface {
	Export(stmt *domain.Statement, w io.Writer) error
	Format() string
	ContentType() string
}

var exporters = map[string]Exporter{}

func register(e Exporter) {
	exporters[e.Format()] = e
}

func init() {
	register(NewJSONCodec())
	register(NewYAMLCodec())
	register(NewPDFCodec())
}

// ForFormat returns the exporter for format ("json", "yaml" or "pdf")
func ForFormat(format string) (Exporter, error) {
	e, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported export format %q (supported: %v)", domain.ErrInvalidArgument, format, Formats())
	}
	return e, nil
}

// Formats lists the registered export formats
func Formats() []string {
	formats := make([]string, 0, len(exporters))
	for f := range exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Filename suggests a download name for stmt in format
func Filename(stmt *domain.Statement, format string) string {
	return fmt.Sprintf("budget-statement-%s.%s", stmt.GeneratedAt.Format("2006-01-02"), format)
}
