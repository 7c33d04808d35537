package xlsxclient

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/core/roster"
	"github.com/jakechorley/duty-rota/pkg/utils/backup"
)

// Workbook is a local .xlsx file used as a roster source or a schedule destination
type Workbook struct {
	Path  string
	Sheet string

	// BackupDir receives the previous schedule before it is overwritten; empty disables backups
	BackupDir string

	now        func() time.Time
	lastBackup string
}

// NewWorkbook binds a workbook path and sheet name
func NewWorkbook(path, sheet, backupDir string) *Workbook {
	return &Workbook{
		Path:      path,
		Sheet:     sheet,
		BackupDir: backupDir,
		now:       time.Now,
	}
}

// Location describes the workbook for logs
func (w *Workbook) Location() string {
	if w.Sheet == "" {
		return w.Path
	}
	return fmt.Sprintf("%s[%s]", w.Path, w.Sheet)
}

// LastBackup is the path the previous schedule was moved to by the last WriteSchedule ("" if none)
func (w *Workbook) LastBackup() string {
	return w.lastBackup
}

// ReadRoster reads and validates the roster. The first sheet is used when none is named.
func (w *Workbook) ReadRoster() ([]model.Person, error) {
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("roster workbook %s has no sheets", w.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	people, err := roster.Parse(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster from %s: %w", w.Location(), err)
	}
	return people, nil
}

// WriteSchedule saves the schedule next to the target, then backs up any existing file and
// moves the new workbook into place. A failed save leaves the existing file where it was.
func (w *Workbook) WriteSchedule(schedule model.Schedule) error {
	w.lastBackup = ""

	f := excelize.NewFile()
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheet = "Schedule"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name schedule sheet: %w", err)
	}

	for i, row := range schedule.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write schedule row %d: %w", i+1, err)
		}
	}

	if dir := filepath.Dir(w.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp := tempPath(w.Path)
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save schedule workbook: %w", err)
	}

	if w.BackupDir != "" {
		now := time.Now
		if w.now != nil {
			now = w.now
		}
		moved, err := backup.Rotate(w.Path, w.BackupDir, now())
		if err != nil {
			os.Remove(tmp)
			return err
		}
		w.lastBackup = moved
	}

	if err := os.Rename(tmp, w.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace schedule workbook: %w", err)
	}
	return nil
}

// tempPath is a hidden sibling of path that keeps the extension excelize expects
func tempPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), "."+base+".tmp"+ext)
}

// ReadSchedule reads back a schedule written by WriteSchedule as raw rows, header first
func (w *Workbook) ReadSchedule() ([][]string, error) {
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule workbook: %w", err)
	}
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheet = "Schedule"
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}
