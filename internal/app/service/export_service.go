package service

import (
	"context"
	"fmt"
	"gitgud_server/internal/domain/repository"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportService writes the problem catalog as an xlsx workbook. The catalog
// is maintained through offline spreadsheet tooling, so admins periodically
// pull it back out in the same shape.
type ExportService struct {
	problemRepo repository.ProblemRepository
}

func NewExportService(problemRepo repository.ProblemRepository) *ExportService {
	return &ExportService{problemRepo: problemRepo}
}

var exportHeader = []string{"Name", "URL", "Source", "Tags", "Difficulty", "Solved", "Likes", "Dislikes", "Added By", "Date Added"}

const exportSheet = "Problems"

func (s *ExportService) ExportProblems(ctx context.Context, w io.Writer) error {
	problems, err := s.problemRepo.List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("export header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return fmt.Errorf("export header write: %w", err)
		}
	}

	for i, p := range problems {
		difficulty := ""
		if p.Difficulty != nil {
			difficulty = strconv.Itoa(*p.Difficulty)
		}
		row := []interface{}{
			p.Name,
			p.URL,
			string(p.Source),
			strings.Join(p.Tags, ","),
			difficulty,
			p.Solved,
			p.Likes,
			p.Dislikes,
			p.AddedBy,
			p.DateAdded.Format(time.RFC3339),
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export row cell: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, start, &row); err != nil {
			return fmt.Errorf("export row write: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export workbook write: %w", err)
	}
	return nil
}
