package codec

import (
	"fmt"
	"io"

	"budgettracker/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec exports statements as YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlItem flattens decimals to strings so amounts keep their exact digits
type yamlItem struct {
	BudgetItemID  string `yaml:"budgetItemId"`
	CreatedAt     string `yaml:"createdAt"`
	Amount        string `yaml:"amount"`
	Income        bool   `yaml:"income"`
	AttachmentURL string `yaml:"attachmentUrl,omitempty"`
}

type yamlStatement struct {
	UserID      string     `yaml:"userId"`
	GeneratedAt string     `yaml:"generatedAt"`
	Income      string     `yaml:"income"`
	Expense     string     `yaml:"expense"`
	Balance     string     `yaml:"balance"`
	Items       []yamlItem `yaml:"items"`
}

// Export writes stmt as YAML
func (c *YAMLCodec) Export(stmt *domain.Statement, w io.Writer) error {
	ys := yamlStatement{
		UserID:      stmt.UserID,
		GeneratedAt: stmt.GeneratedAt.Format(timeLayout),
		Income:      stmt.Balance.Income.StringFixed(2),
		Expense:     stmt.Balance.Expense.StringFixed(2),
		Balance:     stmt.Balance.Balance.StringFixed(2),
		Items:       make([]yamlItem, 0, len(stmt.Items)),
	}

	for _, item := range stmt.Items {
		ys.Items = append(ys.Items, yamlItem{
			BudgetItemID:  item.BudgetItemID,
			CreatedAt:     item.CreatedAt.Format(timeLayout),
			Amount:        item.Amount.String(),
			Income:        item.Income,
			AttachmentURL: item.AttachmentURL,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(ys); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
