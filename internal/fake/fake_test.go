package fake_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfmemo/internal/fake"
)

func TestParseNameDefaults(t *testing.T) {
	t.Parallel()

	meta, err := fake.ParseName("test.fake")
	if err != nil {
		t.Fatalf("ParseName failed: %v", err)
	}

	want := &fake.Metadata{
		Name:      "test",
		SizeX:     20,
		SizeY:     20,
		SizeZ:     1,
		SizeC:     1,
		SizeT:     1,
		PixelType: "uint8",
	}

	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNameWithParams(t *testing.T) {
	t.Parallel()

	meta, err := fake.ParseName("scan&sizeX=512&sizeY=256&sizeC=3&pixelType=int16&series=2.fake")
	if err != nil {
		t.Fatalf("ParseName failed: %v", err)
	}

	if meta.Name != "scan" || meta.SizeX != 512 || meta.SizeY != 256 {
		t.Errorf("unexpected dimensions: %+v", meta)
	}

	if meta.SizeC != 3 || meta.PixelType != "int16" || meta.Series != 2 {
		t.Errorf("unexpected channel/type/series: %+v", meta)
	}
}

func TestParseNameIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	meta, err := fake.ParseName("test&color=red&sizeX=64.fake")
	if err != nil {
		t.Fatalf("ParseName failed: %v", err)
	}

	if meta.SizeX != 64 {
		t.Errorf("expected sizeX=64, got %d", meta.SizeX)
	}
}

func TestParseNameErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		want error
	}{
		{"wrong extension", "test.tiff", fake.ErrNotFakeFile},
		{"missing value", "test&sizeX.fake", fake.ErrMalformedPair},
		{"non-numeric size", "test&sizeX=big.fake", fake.ErrMalformedPair},
		{"negative size", "test&sizeY=-1.fake", fake.ErrMalformedPair},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := fake.ParseName(tt.base)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := filepath.Join(dir, "scan&sizeX=100&sizeY=50.fake")

	err := os.WriteFile(id, []byte("x"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	reader := fake.NewReader()

	setErr := reader.SetID(context.Background(), id)
	if setErr != nil {
		t.Fatalf("SetID failed: %v", setErr)
	}

	payload, snapErr := reader.Snapshot()
	if snapErr != nil {
		t.Fatalf("Snapshot failed: %v", snapErr)
	}

	restored := fake.NewReader()

	restoreErr := restored.Restore(id, payload)
	if restoreErr != nil {
		t.Fatalf("Restore failed: %v", restoreErr)
	}

	if diff := cmp.Diff(reader.Metadata(), restored.Metadata()); diff != "" {
		t.Errorf("restored metadata mismatch (-want +got):\n%s", diff)
	}

	if restored.InitCalls != 0 {
		t.Errorf("Restore must not count as initialization, got %d", restored.InitCalls)
	}
}

func TestSnapshotWithoutOpen(t *testing.T) {
	t.Parallel()

	_, err := fake.NewReader().Snapshot()
	if !errors.Is(err, fake.ErrNothingOpen) {
		t.Errorf("expected ErrNothingOpen, got %v", err)
	}
}

func TestSetIDMissingFile(t *testing.T) {
	t.Parallel()

	reader := fake.NewReader()

	err := reader.SetID(context.Background(), filepath.Join(t.TempDir(), "gone.fake"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}

	if reader.InitCalls != 1 {
		t.Errorf("failed init still counts as an attempt, got %d", reader.InitCalls)
	}
}

func TestCloseReleasesState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := filepath.Join(dir, "test.fake")

	err := os.WriteFile(id, []byte("x"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	reader := fake.NewReader()

	setErr := reader.SetID(context.Background(), id)
	if setErr != nil {
		t.Fatal(setErr)
	}

	if reader.Metadata() == nil {
		t.Fatal("expected state after SetID")
	}

	_ = reader.Close()
	_ = reader.Close()

	if reader.Metadata() != nil {
		t.Error("Close should release parsed state")
	}
}
