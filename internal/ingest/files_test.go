package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeUnoconv puts a shell stand-in for unoconv on PATH that copies the
// source file to the requested output path ($4 and $5 from "-f csv -o out in").
func fakeUnoconv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "unoconv")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncp \"$5\" \"$4\"\n"), 0o755); err != nil {
		t.Fatalf("failed to write converter stand-in: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestConvertExcelToCSV_OutputStaysInSourceDir(t *testing.T) {
	fakeUnoconv(t)

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "grants.xlsx")
	csvBody := "App ID,Grant Title,Total Amount\nGNT-1,Venom peptides,100000\n"
	if err := os.WriteFile(srcPath, []byte(csvBody), 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	outPath, err := convertExcelToCSV(context.Background(), srcPath)
	if err != nil {
		t.Fatalf("convertExcelToCSV() error = %v", err)
	}

	if filepath.Dir(outPath) != srcDir {
		t.Fatalf("converted file %s not in source dir %s", outPath, srcDir)
	}
	if !strings.HasSuffix(outPath, "grants.csv") {
		t.Fatalf("unexpected output name: %s", outPath)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected converted file on disk: %v", err)
	}
}

func TestReadDataFile_ExcelConversion(t *testing.T) {
	fakeUnoconv(t)

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "grants.xlsx")
	csvBody := "App ID,Grant Title,Total Amount\n" +
		"GNT-1,Venom peptides,100000\n" +
		"GNT-2,Ion channels,250000\n"
	if err := os.WriteFile(srcPath, []byte(csvBody), 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	pipeline := NewPipeline(NewPipelineParams{})

	headers, rows, err := pipeline.ReadDataFile(context.Background(), srcPath)
	if err != nil {
		t.Fatalf("ReadDataFile() error = %v", err)
	}
	if len(headers) != 3 || headers[1] != "Grant Title" {
		t.Fatalf("unexpected headers: %v", headers)
	}
	if len(rows) != 2 || rows[0][0] != "GNT-1" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		t.Fatalf("failed to list source dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected source and converted file only, got %v", entries)
	}
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a,b\n1,2\n"))
	}))
	t.Cleanup(server.Close)

	pipeline := NewPipeline(NewPipelineParams{HTTPClient: server.Client()})

	localPath, err := pipeline.DownloadFile(context.Background(), server.URL+"/exports/grants.csv")
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(localPath)) })

	if filepath.Base(localPath) != "grants.csv" {
		t.Fatalf("expected name from url, got %s", localPath)
	}
	body, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if string(body) != "a,b\n1,2\n" {
		t.Fatalf("unexpected download body: %q", body)
	}
}
