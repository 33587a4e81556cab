package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/normalize"
)

const convertTimeout = 600 * time.Second

// DownloadFile fetches fileURL into a fresh temp directory and returns the
// local path. The caller owns cleanup of the directory.
func (p *Pipeline) DownloadFile(ctx context.Context, fileURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s returned status %d", fileURL, resp.StatusCode)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate download id: %w", err)
	}
	dir := filepath.Join(os.TempDir(), id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	name := path.Base(fileURL)
	if name == "" || name == "/" || name == "." {
		name = "download.csv"
	}
	target := filepath.Join(dir, name)

	tmp := target + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close download: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("failed to finalize download: %w", err)
	}

	return target, nil
}

// ReadDataFile parses a downloaded CSV or Excel file into headers and rows,
// skipping any preamble before the detected header row. Excel files are
// converted to CSV first.
func (p *Pipeline) ReadDataFile(ctx context.Context, filePath string) ([]string, [][]string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".xlsx" || ext == ".xls" {
		converted, err := convertExcelToCSV(ctx, filePath)
		if err != nil {
			return nil, nil, err
		}
		filePath = converted
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("data file %s is empty", filepath.Base(filePath))
	}

	headerIdx := normalize.DetectHeaderRow(rows)
	if headerIdx >= len(rows)-1 {
		return rows[headerIdx], nil, nil
	}
	return rows[headerIdx], rows[headerIdx+1:], nil
}

// convertExcelToCSV shells out to unoconv. Headless LibreOffice handles the
// odd multi-sheet exports funders publish better than any pure Go parser.
func convertExcelToCSV(ctx context.Context, filePath string) (string, error) {
	binary, err := exec.LookPath("unoconv")
	if err != nil {
		return "", fmt.Errorf("unoconv not found in PATH: %w", err)
	}

	// the csv lands next to the source file, so the caller's cleanup of the
	// download directory removes both
	outDir := filepath.Dir(filePath)
	outPath := strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".csv"

	cmdCtx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, binary, "-f", "csv", "-o", outPath, filePath)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8")
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("unoconv failed: %w: %s", err, string(output))
	}

	if _, err := os.Stat(outPath); err != nil {
		// unoconv sometimes names the output after the source sheet
		matches, globErr := filepath.Glob(filepath.Join(outDir, "*.csv"))
		if globErr != nil || len(matches) == 0 {
			return "", fmt.Errorf("unoconv produced no csv output for %s", filepath.Base(filePath))
		}
		outPath = matches[0]
	}

	logger.Debug("[Ingest] converted excel file", "file", filepath.Base(filePath))
	return outPath, nil
}
