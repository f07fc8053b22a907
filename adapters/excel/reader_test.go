package excel

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp CSV: %v", err)
	}
	return path
}

func TestReadCSVColumns(t *testing.T) {
	path := writeTempCSV(t, "Target,Spend,Sales\nkw one,AED 10.50,\"1,000.00\"\nkw two,SAR 5,200\n")

	reader := NewDataReader(path)
	data, err := reader.ReadData()
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}

	if data.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", data.RowCount)
	}
	if len(data.Headers) != 3 {
		t.Fatalf("headers = %v, want 3", data.Headers)
	}

	spend := data.Column("Spend")
	if len(spend) != 2 {
		t.Fatalf("Spend column length = %d, want 2", len(spend))
	}
	if spend[0].Text() != "AED 10.50" {
		t.Errorf("Spend[0] = %q, want raw cell preserved", spend[0].Text())
	}
}

func TestReadCSVPadsShortRows(t *testing.T) {
	path := writeTempCSV(t, "A,B,C\n1,2,3\n4,5\n")

	reader := NewDataReader(path)
	data, err := reader.ReadData()
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}

	c := data.Column("C")
	if len(c) != 2 {
		t.Fatalf("C column length = %d, want 2 (padded)", len(c))
	}
	if !c[1].IsMissing {
		t.Errorf("short row cell should be missing, got %v", c[1])
	}
}

func TestReadCSVRejectsDuplicateHeaders(t *testing.T) {
	path := writeTempCSV(t, "Spend,Sales,Spend\n1,2,3\n")

	reader := NewDataReader(path)
	if _, err := reader.ReadData(); err == nil {
		t.Error("expected error for duplicate header")
	}
}

func TestReadCSVRequiresDataRow(t *testing.T) {
	path := writeTempCSV(t, "A,B\n")

	reader := NewDataReader(path)
	if _, err := reader.ReadData(); err == nil {
		t.Error("expected error for header-only file")
	}
}
