package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/encryption"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/storage"
	"github.com/kbukum/speakerkit/storage/local"
)

func newStager(t *testing.T, cfg storage.Config, archive storage.Storage) *storage.Stager {
	t.Helper()
	if cfg.UploadDir == "" {
		cfg.UploadDir = t.TempDir()
	}
	s, err := storage.NewStager(cfg, archive, nil)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	return s
}

func TestStager_StageAndRelease(t *testing.T) {
	dir := t.TempDir()
	s := newStager(t, storage.Config{UploadDir: dir}, nil)

	u, err := s.Stage(context.Background(), "file", "Meeting.WAV", strings.NewReader("RIFFdata"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if filepath.Dir(u.Path) != dir || filepath.Ext(u.Path) != ".wav" || u.Size != 8 || u.Name != "Meeting.WAV" {
		t.Errorf("unexpected upload %+v", u)
	}
	if data, _ := os.ReadFile(u.Path); string(data) != "RIFFdata" {
		t.Errorf("staged content = %q", data)
	}
	if u.ArchiveKey != "" {
		t.Errorf("no archive configured, got key %q", u.ArchiveKey)
	}

	s.Release(u)
	if _, err := os.Stat(u.Path); !os.IsNotExist(err) {
		t.Error("expected staged file to be removed")
	}
	s.Release(u)
	s.Release(nil)
}

func TestStager_Rejects(t *testing.T) {
	dir := t.TempDir()
	s := newStager(t, storage.Config{UploadDir: dir, MaxFileSize: 4}, nil)
	ctx := context.Background()

	_, err := s.Stage(ctx, "file", "notes.txt", strings.NewReader("x"))
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("extension: expected INVALID_INPUT, got %v", err)
	}
	_, err = s.Stage(ctx, "file", "", strings.NewReader("x"))
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty name: expected INVALID_INPUT, got %v", err)
	}
	_, err = s.Stage(ctx, "file", "big.mp3", bytes.NewReader(make([]byte, 5)))
	if !errors.HasCode(err, errors.ErrCodePayloadTooLarge) {
		t.Errorf("size: expected PAYLOAD_TOO_LARGE, got %v", err)
	}

	if _, err := s.Stage(ctx, "file", "exact.mp3", bytes.NewReader(make([]byte, 4))); err != nil {
		t.Errorf("upload at the limit rejected: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("rejected uploads left files behind: %d entries", len(entries))
	}
}

func TestStager_Archive(t *testing.T) {
	archive, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newStager(t, storage.Config{Archive: storage.ArchiveConfig{Prefix: "raw"}}, archive)
	ctx := context.Background()

	u, err := s.Stage(ctx, "file", "call.flac", strings.NewReader("fLaC"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u.ArchiveKey, "raw/") || !strings.HasSuffix(u.ArchiveKey, u.ID+".flac") {
		t.Errorf("archive key = %q", u.ArchiveKey)
	}

	s.Release(u)
	rc, err := archive.Download(ctx, u.ArchiveKey)
	if err != nil {
		t.Fatalf("archived copy missing: %v", err)
	}
	defer rc.Close()
	if data, _ := io.ReadAll(rc); string(data) != "fLaC" {
		t.Errorf("archived content = %q", data)
	}
}

func TestStager_ArchiveSealed(t *testing.T) {
	const key = "archive passphrase"
	archive, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	s := newStager(t, storage.Config{
		UploadDir: dir,
		Archive: storage.ArchiveConfig{
			EncryptionKey: key,
			Encryption:    encryption.AlgorithmChaCha20,
		},
	}, archive)
	ctx := context.Background()

	audio := bytes.Repeat([]byte("RIFF"), 4096)
	u, err := s.Stage(ctx, "file", "call.wav", bytes.NewReader(audio))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(u.ArchiveKey, u.ID+".wav"+storage.SealedSuffix) {
		t.Fatalf("archive key = %q", u.ArchiveKey)
	}
	s.Release(u)
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("upload dir not cleaned: %d entries", len(entries))
	}

	rc, err := archive.Download(ctx, u.ArchiveKey)
	if err != nil {
		t.Fatalf("archived copy missing: %v", err)
	}
	defer rc.Close()
	sealed, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(sealed, audio[:64]) {
		t.Error("archived copy is not sealed")
	}

	opener, err := encryption.New(key, encryption.AlgorithmChaCha20)
	if err != nil {
		t.Fatal(err)
	}
	var plain bytes.Buffer
	if _, err := opener.Open(&plain, bytes.NewReader(sealed)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(plain.Bytes(), audio) {
		t.Errorf("opened %d bytes, want %d", plain.Len(), len(audio))
	}
}

func TestStager_InvalidEncryption(t *testing.T) {
	archive, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := storage.Config{
		UploadDir: t.TempDir(),
		Archive:   storage.ArchiveConfig{EncryptionKey: "k", Encryption: "rot13"},
	}
	if _, err := storage.NewStager(cfg, archive, nil); err == nil {
		t.Error("expected unknown cipher to be rejected")
	}
}

type failingArchive struct{ storage.Storage }

func (failingArchive) Upload(context.Context, string, io.Reader) error {
	return io.ErrClosedPipe
}

func TestStager_ArchiveFailureIsNotFatal(t *testing.T) {
	s := newStager(t, storage.Config{}, failingArchive{})
	u, err := s.Stage(context.Background(), "file", "a.ogg", strings.NewReader("OggS"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if u.ArchiveKey != "" {
		t.Errorf("failed archive should leave key empty, got %q", u.ArchiveKey)
	}
}

func TestNew_Factory(t *testing.T) {
	base := t.TempDir()
	st, err := storage.New(storage.ArchiveConfig{Provider: storage.ProviderLocal, BasePath: base}, nil)
	if err != nil {
		t.Fatalf("New local: %v", err)
	}
	if _, ok := st.(*local.Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", st)
	}

	if _, err := storage.New(storage.ArchiveConfig{Provider: "ftp"}, nil); err == nil {
		t.Error("expected unsupported provider error")
	}
	if _, err := storage.New(storage.ArchiveConfig{Provider: storage.ProviderS3}, nil); err == nil {
		t.Error("expected missing bucket error")
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg storage.Config
	cfg.ApplyDefaults()
	if cfg.UploadDir != "/app/uploads" || cfg.MaxFileSize != 500*1024*1024 || len(cfg.Extensions) != 6 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Archive.Provider != storage.ProviderLocal || cfg.Archive.Enabled {
		t.Errorf("unexpected archive defaults %+v", cfg.Archive)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	c := storage.NewComponent(storage.Config{
		UploadDir: t.TempDir(),
		Archive:   storage.ArchiveConfig{Enabled: true, BasePath: t.TempDir()},
	}, nil)
	ctx := context.Background()

	if c.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.Stager() == nil {
		t.Fatal("expected stager")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}
	if d := c.Describe(); !strings.Contains(d.Details, "archive=local") {
		t.Errorf("describe = %q", d.Details)
	}
	u, err := c.Stager().Stage(ctx, "file", "a.wav", strings.NewReader("x"))
	if err != nil || u.ArchiveKey == "" {
		t.Errorf("expected archived upload, got %+v, %v", u, err)
	}
}

func seedArchive(t *testing.T, base string, ages map[string]time.Duration) storage.Storage {
	t.Helper()
	st, err := local.NewStorage(base)
	if err != nil {
		t.Fatalf("local.NewStorage: %v", err)
	}
	now := time.Now()
	for key, age := range ages {
		if err := st.Upload(context.Background(), key, strings.NewReader("RIFF")); err != nil {
			t.Fatalf("Upload %s: %v", key, err)
		}
		at := now.Add(-age)
		if err := os.Chtimes(filepath.Join(base, filepath.FromSlash(key)), at, at); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}
	return st
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	st := seedArchive(t, t.TempDir(), map[string]time.Duration{
		"uploads/old.wav":  48 * time.Hour,
		"uploads/new.wav":  time.Minute,
		"exports/old.json": 48 * time.Hour,
	})

	removed, err := storage.Prune(ctx, st, "uploads/", time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	for key, want := range map[string]bool{
		"uploads/old.wav":  false,
		"uploads/new.wav":  true,
		"exports/old.json": true,
	} {
		if ok, _ := st.Exists(ctx, key); ok != want {
			t.Errorf("Exists(%s) = %t, want %t", key, ok, want)
		}
	}
}

func TestComponent_PrunesOnStart(t *testing.T) {
	base := t.TempDir()
	st := seedArchive(t, base, map[string]time.Duration{"uploads/stale.wav": 72 * time.Hour})

	c := storage.NewComponent(storage.Config{
		UploadDir: t.TempDir(),
		Archive:   storage.ArchiveConfig{Enabled: true, BasePath: base, Retention: 24 * time.Hour},
	}, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ok, _ := st.Exists(context.Background(), "uploads/stale.wav"); ok {
		t.Error("stale upload survived startup")
	}
}
