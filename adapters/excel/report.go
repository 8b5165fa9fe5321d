package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"cropwise/models"
)

const (
	historySheet = "Disease History"
	summarySheet = "Summary"
)

var historyHeaders = []string{"Detected At", "Disease", "Cause", "Confidence %", "Severity", "Precautions", "Treatment"}

// BuildDetectionReport renders a crop's detection history and summary as an
// xlsx workbook and returns the serialized bytes
func BuildDetectionReport(cropID string, detections []models.DiseaseDetection, summary models.DetectionSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(historySheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header %s: %w", h, err)
		}
	}

	for rowIdx, d := range detections {
		row := []interface{}{
			d.DetectedAt.Format("2006-01-02 15:04"),
			d.DiseaseName,
			d.Cause,
			d.Confidence,
			d.Severity,
			textOrPlaceholder(d.Precautions),
			textOrPlaceholder(d.Treatment),
		}
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(historySheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", rowIdx+2, err)
			}
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	summaryRows := [][]interface{}{
		{"Crop", cropID},
		{"Detections", summary.Count},
		{"Mean confidence", summary.MeanConfidence},
		{"Median confidence", summary.MedianConfidence},
		{"Min confidence", summary.MinConfidence},
		{"Max confidence", summary.MaxConfidence},
	}
	for severity, count := range summary.SeverityCounts {
		summaryRows = append(summaryRows, []interface{}{"Severity: " + severity, count})
	}
	for rowIdx, row := range summaryRows {
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return nil, fmt.Errorf("write summary row %d: %w", rowIdx+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func textOrPlaceholder(field *string) string {
	if field == nil {
		return models.NoDataPlaceholder
	}
	return *field
}
