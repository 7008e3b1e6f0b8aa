package appointments

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Appointments"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []string{
	"Time",
	"Participant",
	"NHS number",
	"Date of birth",
	"Age",
	"Status",
	"Last known screening",
}

var exportColumnWidths = []float64{10, 28, 16, 18, 14, 22, 22}

// ExportAppointmentList writes the presented clinic list as one xlsx sheet,
// in the same order and filter as the page.
func ExportAppointmentList(list AppointmentListPresenter) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E8EDEE"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, h := range exportHeader {
		if err := setCell(f, col+1, 1, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeaderCell(), headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}

	for i, w := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, a := range list.Appointments {
		row := i + 2
		last, _ := a.LastKnownScreening["date"].(string)
		values := []any{
			a.StartTime,
			a.Participant.FullName,
			a.Participant.NHSNumber,
			a.Participant.DateOfBirth,
			a.Participant.Age,
			a.CurrentStatus.Text,
			last,
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(exportSheet, cell, v); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

func lastHeaderCell() string {
	cell, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	return cell
}
