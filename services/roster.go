package services

import (
	"bytes"
	"fmt"

	"coursehub/models"

	"github.com/xuri/excelize/v2"
)

// BuildRosterWorkbook renders the enrolled-students roster of a course as an
// xlsx workbook and returns the serialized bytes
func BuildRosterWorkbook(course *models.Course, entries []models.RosterEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Students"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Student ID", "Name", "Email", "Amount Paid (INR)", "Enrolled On"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "E1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, e := range entries {
		row := i + 2
		values := []interface{}{
			e.StudentID,
			e.StudentName,
			e.StudentEmail,
			e.PaidAmount,
			e.EnrolledAt.Format("02 Jan 2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	// Readable column widths
	_ = f.SetColWidth(sheetName, "B", "C", 30)
	_ = f.SetColWidth(sheetName, "D", "E", 20)

	// Summary sheet with course metadata
	summary := "Summary"
	if _, err := f.NewSheet(summary); err == nil {
		_ = f.SetCellValue(summary, "A1", "Course")
		_ = f.SetCellValue(summary, "B1", course.Title)
		_ = f.SetCellValue(summary, "A2", "Instructor")
		_ = f.SetCellValue(summary, "B2", course.InstructorName)
		_ = f.SetCellValue(summary, "A3", "Enrolled Students")
		_ = f.SetCellValue(summary, "B3", len(entries))
		_ = f.SetCellStyle(summary, "A1", "A3", headerStyle)
		_ = f.SetColWidth(summary, "A", "B", 25)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
