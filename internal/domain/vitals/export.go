package vitals

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// exportHeader is the fixed 9-column layout shared by the CSV and XLSX
// exports. Missing fields render as empty strings.
var exportHeader = []string{
	"Date", "BP-Systolic", "BP-Diastolic", "Heart Rate", "Temperature",
	"Oxygen Saturation", "Blood Sugar", "Weight", "Source",
}

func exportRow(r *VitalRecord) []string {
	return []string{
		r.Date.Format(time.RFC3339),
		intStr(r.BPSystolic),
		intStr(r.BPDiastolic),
		intStr(r.HeartRate),
		floatStr(r.Temperature, 1),
		floatStr(r.OxygenSaturation, 0),
		floatStr(r.BloodSugarFasting, 0),
		floatStr(r.Weight, 1),
		string(r.Source),
	}
}

func intStr(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func floatStr(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

// WriteCSV writes the history as CSV with every value quoted.
// encoding/csv only quotes fields that need it, so rows are written by hand
// with CSV-style doubling of embedded quotes.
func WriteCSV(w io.Writer, records []*VitalRecord) error {
	if err := writeQuotedRow(w, exportHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeQuotedRow(w, exportRow(r)); err != nil {
			return err
		}
	}
	return nil
}

func writeQuotedRow(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// JSONExport wraps the exported history.
type JSONExport struct {
	ExportDate   time.Time      `json:"exportDate"`
	TotalRecords int            `json:"totalRecords"`
	Vitals       []*VitalRecord `json:"vitals"`
}

// WriteJSON writes the history wrapped with export metadata.
func WriteJSON(w io.Writer, records []*VitalRecord, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONExport{
		ExportDate:   now,
		TotalRecords: len(records),
		Vitals:       records,
	})
}

// WriteXLSX writes the history as a single-sheet workbook with the same
// columns as the CSV export.
func WriteXLSX(w io.Writer, records []*VitalRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Vitals"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		row := exportRow(r)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}
