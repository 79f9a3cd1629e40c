package codec

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"budgettracker/internal/domain"
)

const timeLayout = time.RFC3339

// PDFCodec renders statements as a one-table A4 document
type PDFCodec struct{}

// NewPDFCodec creates a new PDF codec
func NewPDFCodec() *PDFCodec {
	return &PDFCodec{}
}

// Format returns the codec format identifier
func (c *PDFCodec) Format() string {
	return "pdf"
}

func (c *PDFCodec) ContentType() string {
	return "application/pdf"
}

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"TYPE", 24, "C"},
	{"DATE", 34, "C"},
	{"AMOUNT", 36, "R"},
	{"ID", 88, "L"},
}

// Export writes stmt as PDF
func (c *PDFCodec) Export(stmt *domain.Statement, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Budget Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "User: "+stmt.UserID)
	pdf.Ln(5)
	pdf.Cell(0, 6, "Generated: "+stmt.GeneratedAt.Format(timeLayout))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 10, "Expense", "1", 0, "C", true, 0, "")
	pdf.CellFormat(62, 10, "Balance", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(60, 10, stmt.Balance.Income.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 10, stmt.Balance.Expense.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(62, 10, stmt.Balance.Balance.StringFixed(2), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		for i, col := range pdfColumns {
			ln := 0
			if i == len(pdfColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 8, col.title, "1", ln, "C", true, 0, "")
		}
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	for _, item := range stmt.Items {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}

		typ := "EXPENSE"
		if item.Income {
			typ = "INCOME"
		}
		cells := []string{
			typ,
			item.CreatedAt.Format("2006-01-02"),
			item.Signed().StringFixed(2),
			item.BudgetItemID,
		}
		for i, col := range pdfColumns {
			ln := 0
			if i == len(pdfColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 8, cells[i], "1", ln, col.align, false, 0, "")
		}
	}

	if len(stmt.Items) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No budget items", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}
