package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"budgettracker/internal/domain"
)

// JSONCodec exports statements as indented JSON
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Export writes stmt as JSON
func (c *JSONCodec) Export(stmt *domain.Statement, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(stmt); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
