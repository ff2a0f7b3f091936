package drivers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDriver(t *testing.T) *LocalFSDriver {
	t.Helper()
	driver, err := NewLocalFSDriver(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	return driver
}

func TestLocalFSDriver_SaveAndGet(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	key := "archives/custom_archive_Foo_2025-09-23.json"
	content := []byte(`{"totalShipments":0}`)

	if err := driver.Save(ctx, key, bytes.NewReader(content), "application/json"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Keys with prefixes become plain subdirectories
	fullPath := filepath.Join(driver.BaseDir, "archives", "custom_archive_Foo_2025-09-23.json")
	if _, err := os.Stat(fullPath); err != nil {
		t.Errorf("file not found at expected path: %v", err)
	}

	reader, contentType, err := driver.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer reader.Close()

	if contentType != "application/json" {
		t.Errorf("expected content type application/json, got %s", contentType)
	}
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: got %q", got)
	}

	url, err := driver.GenerateURL(ctx, key, 0)
	if err != nil {
		t.Errorf("GenerateURL failed: %v", err)
	}
	if !strings.HasSuffix(url, key) || !strings.HasPrefix(url, "/files/") {
		t.Errorf("unexpected URL: %s", url)
	}
}

func TestLocalFSDriver_List(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	files := []string{
		"archives/a.json",
		"archives/b.json",
		"quotes/dhl/c.pdf",
	}
	for _, key := range files {
		if err := driver.Save(ctx, key, strings.NewReader("data"), "application/octet-stream"); err != nil {
			t.Fatalf("Save %s failed: %v", key, err)
		}
	}

	infos, err := driver.List(ctx, "archives/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(infos))
	}
	for _, info := range infos {
		if !strings.HasPrefix(info.Key, "archives/") {
			t.Errorf("unexpected key outside prefix: %s", info.Key)
		}
		if strings.HasSuffix(info.Key, ".meta") {
			t.Errorf("meta sidecar leaked into listing: %s", info.Key)
		}
		if info.Size != int64(len("data")) {
			t.Errorf("unexpected size for %s: %d", info.Key, info.Size)
		}
	}

	// Listing a prefix with no files is not an error
	empty, err := driver.List(ctx, "missing/")
	if err != nil {
		t.Fatalf("List on missing prefix failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty listing, got %d entries", len(empty))
	}
}

func TestLocalFSDriver_Rename(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	if err := driver.Save(ctx, "archives/old.json", strings.NewReader("data"), "application/json"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := driver.Rename(ctx, "archives/old.json", "archives/new.json"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if _, _, err := driver.Get(ctx, "archives/old.json"); err == nil {
		t.Error("old key still readable after rename")
	}
	reader, contentType, err := driver.Get(ctx, "archives/new.json")
	if err != nil {
		t.Fatalf("Get after rename failed: %v", err)
	}
	reader.Close()
	if contentType != "application/json" {
		t.Errorf("content type lost in rename: %s", contentType)
	}

	// Renaming onto an existing key is rejected
	if err := driver.Save(ctx, "archives/other.json", strings.NewReader("x"), "application/json"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := driver.Rename(ctx, "archives/new.json", "archives/other.json"); err == nil {
		t.Error("expected rename onto existing key to fail")
	}
}

func TestLocalFSDriver_RejectsTraversal(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "/abs.txt", "a/../../b"} {
		if err := driver.Save(ctx, key, strings.NewReader("x"), "text/plain"); err == nil {
			t.Errorf("expected traversal key %q to be rejected", key)
		}
	}
}

func TestLocalFSDriver_Delete(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	if err := driver.Save(ctx, "quotes/dhl/q.pdf", strings.NewReader("pdf"), "application/pdf"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := driver.Delete(ctx, "quotes/dhl/q.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(driver.BaseDir, "quotes", "dhl", "q.pdf.meta")); !os.IsNotExist(err) {
		t.Error("meta sidecar survived delete")
	}
	if err := driver.Delete(ctx, "quotes/dhl/q.pdf"); err == nil {
		t.Error("expected delete of missing key to fail")
	}
}
