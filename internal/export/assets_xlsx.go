package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/xuri/excelize/v2"
)

const (
	assetsSheet = "Assets"

	// XLSXContentType is the media type of the generated workbook.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var assetColumns = []struct {
	title string
	width float64
}{
	{"ID", 8},
	{"Type", 14},
	{"Model", 24},
	{"Serial Number", 22},
	{"Monitor", 18},
	{"Keyboard", 18},
	{"Mouse", 18},
	{"WiFi/LAN IP", 16},
	{"Emp ID", 12},
	{"Holder", 24},
	{"Comments", 40},
	{"Updated At", 22},
}

// AssetsFilename names an inventory export taken at now.
func AssetsFilename(now time.Time) string {
	return fmt.Sprintf("assets-%s.xlsx", now.UTC().Format("20060102-150405"))
}

// AssetsWorkbook renders the inventory as a single-sheet workbook, one row
// per asset in the order given. Unassigned assets leave the holder columns blank.
func AssetsWorkbook(rows []asset.WithOwner) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(assetsSheet)
	if err != nil {
		return nil, fmt.Errorf("export: new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	for i, col := range assetColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(assetsSheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
		if err := f.SetCellValue(assetsSheet, cell(i+1, 1), col.title); err != nil {
			return nil, fmt.Errorf("export: header: %w", err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(assetColumns))
	if err := f.SetCellStyle(assetsSheet, "A1", last+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("export: apply header style: %w", err)
	}
	if err := f.SetPanes(assetsSheet, &excelize.Panes{Freeze: true, Split: false, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("export: freeze header: %w", err)
	}

	for r, a := range rows {
		values := []any{
			a.ID,
			a.Type,
			a.Model,
			a.SerialNumber,
			deref(a.Monitor),
			deref(a.Keyboard),
			deref(a.Mouse),
			deref(a.WifiLanIP),
			deref(a.EmpID),
			holder(a),
			a.Comments,
			a.UpdatedAt.UTC().Format(time.RFC3339),
		}

		if err := f.SetSheetRow(assetsSheet, cell(1, r+2), &values); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", r+2, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}

	return buf, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func holder(a asset.WithOwner) string {
	first, last := deref(a.FirstName), deref(a.LastName)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
