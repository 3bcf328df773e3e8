package sqlitekit

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, pageSize int, pageCount int) string {
	t.Helper()
	buf := make([]byte, pageSize*pageCount)
	copy(buf[0:16], magicPrefix[:])
	buf[16] = byte(pageSize >> 8)
	buf[17] = byte(pageSize)
	buf[28], buf[29], buf[30], buf[31] = 0, 0, 0, byte(pageCount)
	buf[56], buf[57], buf[58], buf[59] = 0, 0, 0, 1
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOsReaderReadHeaderAndPage(t *testing.T) {
	path := writeTestFile(t, 512, 3)
	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer r.Close()

	hdr, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if len(hdr) != headerSize {
		t.Fatalf("ReadHeader returned %d bytes, want %d", len(hdr), headerSize)
	}

	page, err := r.ReadPage(1, 512)
	if err != nil {
		t.Fatalf("ReadPage(1): %v", err)
	}
	if len(page) != 512 {
		t.Fatalf("ReadPage(1) returned %d bytes, want 512", len(page))
	}

	page3, err := r.ReadPage(3, 512)
	if err != nil {
		t.Fatalf("ReadPage(3): %v", err)
	}
	if len(page3) != 512 {
		t.Fatalf("ReadPage(3) returned %d bytes, want 512", len(page3))
	}
}

func TestOsReaderShortFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.db")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer r.Close()
	if _, err := r.ReadHeader(); err == nil {
		t.Fatal("expected error reading header from truncated file")
	}
}

func TestOsReaderReadPagePastEndOfFile(t *testing.T) {
	path := writeTestFile(t, 512, 2)
	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer r.Close()
	if _, err := r.ReadPage(10, 512); err == nil {
		t.Fatal("expected error reading page past end of file")
	}
}

func TestOpenFileMissing(t *testing.T) {
	if _, err := OpenFile("/nonexistent/path/to/db"); err == nil {
		t.Fatal("expected error opening missing file")
	}
}
