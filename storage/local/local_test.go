package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/speakerkit/storage"
)

func TestStorage_RoundTrip(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Upload(ctx, "uploads/2026/01/02/a.wav", strings.NewReader("abc")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	_ = s.Upload(ctx, "uploads/2026/01/03/b.mp3", strings.NewReader("defg"))
	_ = s.Upload(ctx, "other/c.wav", strings.NewReader("x"))

	ok, err := s.Exists(ctx, "uploads/2026/01/02/a.wav")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}

	rc, err := s.Download(ctx, "uploads/2026/01/02/a.wav")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "abc" {
		t.Errorf("content = %q", data)
	}

	files, err := s.List(ctx, "uploads/")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != "uploads/2026/01/02/a.wav" || files[1].Size != 4 {
		t.Errorf("unexpected listing %+v", files)
	}
	if files[0].ContentType == "" {
		t.Error("expected a content type")
	}

	if err := s.Delete(ctx, "uploads/2026/01/02/a.wav"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "uploads/2026/01/02/a.wav"); err != nil {
		t.Errorf("deleting a missing file: %v", err)
	}
	if ok, _ := s.Exists(ctx, "uploads/2026/01/02/a.wav"); ok {
		t.Error("expected file to be gone")
	}
	if _, err := s.Download(ctx, "missing.wav"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download(missing) = %v, want ErrNotFound", err)
	}
}

func TestStorage_KeysStayInsideBase(t *testing.T) {
	base := t.TempDir()
	s, _ := NewStorage(base)

	p, err := s.resolve("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p, s.basePath) {
		t.Errorf("resolved %q outside %q", p, s.basePath)
	}
	if _, err := s.resolve("/"); err == nil {
		t.Error("expected the base directory itself to be rejected")
	}
}

func TestStorage_ListSkipsUnfinishedUploads(t *testing.T) {
	base := t.TempDir()
	s, _ := NewStorage(base)
	ctx := context.Background()

	if err := s.Upload(ctx, "uploads/a.wav", strings.NewReader("abc")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "uploads", tempPrefix+"123"), []byte("partial"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Upload(ctx, "uploads/a.wav", strings.NewReader("replaced")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	files, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "uploads/a.wav" || files[0].Size != int64(len("replaced")) {
		t.Errorf("unexpected listing %+v", files)
	}
}
