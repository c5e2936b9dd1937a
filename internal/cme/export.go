package cme

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DaBoss786/medswipe/internal/profile"
)

// ExportHistory writes the claim history to an xlsx workbook at path,
// one row per claim, for CME audit submissions.
func ExportHistory(rec *profile.Record, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Claim History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	headers := []string{"Claimed At", "Credits", "Certificate Name", "Download URL", "File Name"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, claim := range rec.CMEClaimHistory {
		values := []any{
			claim.Timestamp.Format(time.RFC3339),
			claim.CreditsClaimed,
			claim.Evaluation.FullName,
			claim.DownloadURL,
			claim.PDFFileName,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("claim cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write claim row: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
