package sqlitekit

import (
	"errors"
	"testing"
)

type closeRecorder struct {
	name   string
	log    *[]string
	failOn bool
}

func (c *closeRecorder) Close() error {
	*c.log = append(*c.log, c.name)
	if c.failOn {
		return errors.New("boom: " + c.name)
	}
	return nil
}

func TestResourceManagerClosesInLIFOOrder(t *testing.T) {
	var log []string
	rm := NewResourceManager()
	rm.Add(&closeRecorder{name: "a", log: &log})
	rm.Add(&closeRecorder{name: "b", log: &log})
	rm.Add(&closeRecorder{name: "c", log: &log})

	if err := rm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := []string{"c", "b", "a"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestResourceManagerCleanersRunBeforeResourcesLIFO(t *testing.T) {
	var log []string
	rm := NewResourceManager()
	rm.AddCleaner(func() error { log = append(log, "cleaner1"); return nil })
	rm.Add(&closeRecorder{name: "resource1", log: &log})
	rm.AddCleaner(func() error { log = append(log, "cleaner2"); return nil })

	if err := rm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := []string{"cleaner2", "cleaner1", "resource1"}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log = %v, want %v", log, want)
			break
		}
	}
}

func TestResourceManagerReportsFailure(t *testing.T) {
	var log []string
	rm := NewResourceManager()
	rm.Add(&closeRecorder{name: "a", log: &log, failOn: true})
	if err := rm.Close(); err == nil {
		t.Fatal("expected error from failing resource close")
	}
}

func TestDefaultDatabaseConfig(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	if cfg.MaxConcurrency < 1 {
		t.Errorf("MaxConcurrency = %d, want >= 1", cfg.MaxConcurrency)
	}
	if cfg.ValidationMode != ValidationBasic {
		t.Errorf("ValidationMode = %v, want ValidationBasic", cfg.ValidationMode)
	}
}

func TestStrictValidationCatchesOverlappingRegions(t *testing.T) {
	pageSize := 512
	raw := make([]byte, pageSize)
	raw[0] = byte(pageTypeTableLeaf)
	raw[3], raw[4] = 0, 1 // cell_count = 1
	// content_area_start deliberately placed inside the cell pointer array.
	raw[5], raw[6] = 0, 5
	raw[8], raw[9] = 0, 100 // the one cell pointer, pointing somewhere valid

	r := newMemReader(uint32(pageSize))
	r.pages[2] = raw
	nav := newNavigatorWithConfig(r, uint32(pageSize), &DatabaseConfig{ValidationMode: ValidationStrict})
	if _, err := nav.readPage(2); err == nil {
		t.Fatal("expected strict validation to reject overlapping regions")
	}
}
