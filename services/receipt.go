package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coursehub/models"

	"github.com/jung-kurt/gofpdf"
)

// GenerateReceipt renders a payment receipt PDF for a paid order and returns
// the path of the generated file
func GenerateReceipt(order *models.Order) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 12, "CourseHub", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 7, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	paidOn := "-"
	if order.PaymentDate != nil {
		paidOn = order.PaymentDate.Format("02 Jan 2006 15:04 MST")
	}

	rows := [][2]string{
		{"Receipt No.", order.Receipt},
		{"Order Date", order.OrderDate.Format("02 Jan 2006 15:04 MST")},
		{"Payment Date", paidOn},
		{"Payment ID", order.RazorpayPaymentID},
		{"Gateway Order ID", order.RazorpayOrderID},
		{"Payment Method", order.PaymentMethod},
	}

	pdf.SetTextColor(33, 37, 41)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Billed to
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Billed To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, order.UserName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, order.UserEmail, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Line item table
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 9, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 9, "Amount (INR)", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	desc := fmt.Sprintf("%s (by %s)", order.CourseTitle, order.InstructorName)
	pdf.CellFormat(120, 9, desc, "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, fmt.Sprintf("%.2f", order.AmountInRupees()), "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 9, "Total Paid", "1", 0, "R", false, 0, "")
	pdf.CellFormat(60, 9, fmt.Sprintf("%.2f", order.AmountInRupees()), "1", 1, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(108, 117, 125)
	pdf.MultiCell(0, 5, "This is a computer generated receipt and does not require a signature. For refund terms, see the refund policy in your account dashboard.", "", "L", false)

	fileName := fmt.Sprintf("receipt_%d_%d.pdf", order.ID, time.Now().Unix())
	outputPath := filepath.Join(os.TempDir(), fileName)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", fmt.Errorf("error generating receipt PDF: %w", err)
	}

	return outputPath, nil
}
