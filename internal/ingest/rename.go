package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/forest-guardian/landwatch/internal/log"
)

var acquisitionStamp = regexp.MustCompile(`([A-Z]{3})(\d{4})(\d{6})`)

var monthCodes = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4,
	"MAY": 5, "JUN": 6, "JUL": 7, "AUG": 8,
	"SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

type RenameReport struct {
	Renamed map[string]string
	Skipped []string
}

// DateFolderName maps a folder name carrying an acquisition stamp such as
// JUN2025123456 to YYYY-MM-01. Unknown month codes map to January.
func DateFolderName(folder string) (string, bool) {
	m := acquisitionStamp.FindStringSubmatch(folder)
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[2])
	month, ok := monthCodes[strings.ToUpper(m[1])]
	if !ok {
		month = 1
	}
	return fmt.Sprintf("%04d-%02d-01", year, month), true
}

// RenameDateFolders renames stamped folders in targetDir to their date,
// appending _1, _2, ... when the date folder already exists.
func RenameDateFolders(targetDir string) (RenameReport, error) {
	report := RenameReport{Renamed: make(map[string]string)}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return report, fmt.Errorf("failed to read %s: %w", targetDir, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		folder := e.Name()
		name, ok := DateFolderName(folder)
		if !ok {
			log.Warnw("skipped folder without acquisition stamp", "folder", folder)
			report.Skipped = append(report.Skipped, folder)
			continue
		}

		dst := filepath.Join(targetDir, name)
		for counter := 1; exists(dst); counter++ {
			dst = filepath.Join(targetDir, fmt.Sprintf("%s_%d", name, counter))
		}

		if err := os.Rename(filepath.Join(targetDir, folder), dst); err != nil {
			log.Errorw("failed to rename folder", "folder", folder, "error", err)
			report.Skipped = append(report.Skipped, folder)
			continue
		}
		log.Infow("renamed folder", "from", folder, "to", filepath.Base(dst))
		report.Renamed[folder] = filepath.Base(dst)
	}
	return report, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
