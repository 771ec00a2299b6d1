package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/speakerkit/encryption"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/validation"
)

// Upload is an audio file staged on local disk.
type Upload struct {
	ID string
	// Name is the client-supplied file name.
	Name string
	// Path is the staged local file.
	Path string
	Size int64
	// ArchiveKey is set when a copy was archived.
	ArchiveKey string
}

// SealedSuffix is appended to the key of archived copies sealed with
// ArchiveConfig.EncryptionKey.
const SealedSuffix = ".sealed"

// Stager writes uploads to the staging directory.
type Stager struct {
	dir        string
	maxSize    int64
	extensions []string
	archive    Storage
	sealer     *encryption.Sealer
	prefix     string
	log        *logger.Logger
	now        func() time.Time
}

// NewStager creates the staging directory. archive may be nil; archived
// copies are sealed when cfg.Archive.EncryptionKey is set.
func NewStager(cfg Config, archive Storage, log *logger.Logger) (*Stager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	dir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	var sealer *encryption.Sealer
	if archive != nil && cfg.Archive.EncryptionKey != "" {
		sealer, err = encryption.New(cfg.Archive.EncryptionKey, cfg.Archive.Encryption)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	}
	return &Stager{
		dir:        dir,
		maxSize:    cfg.MaxFileSize,
		extensions: cfg.Extensions,
		archive:    archive,
		sealer:     sealer,
		prefix:     cfg.Archive.Prefix,
		log:        log.WithComponent("stager"),
		now:        time.Now,
	}, nil
}

// MaxFileSize returns the upload limit in bytes.
func (s *Stager) MaxFileSize() int64 { return s.maxSize }

// Extensions returns the accepted file extensions.
func (s *Stager) Extensions() []string { return s.extensions }

// CheckName validates the extension of a client file name.
func (s *Stager) CheckName(field, name string) error {
	if err := validation.New().Extension(field, name, s.extensions).Validate(); err != nil {
		return err
	}
	return nil
}

// Stage copies r to a new file in the staging directory. Uploads above the
// size limit are rejected with PAYLOAD_TOO_LARGE and nothing is left behind.
func (s *Stager) Stage(ctx context.Context, field, name string, r io.Reader) (*Upload, error) {
	if err := s.CheckName(field, name); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(name))
	dst := filepath.Join(s.dir, id+ext)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("stage upload: %w", err))
	}
	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(dst)
		return nil, errors.Internal(fmt.Errorf("stage upload: %w", err))
	case closeErr != nil:
		_ = os.Remove(dst)
		return nil, errors.Internal(fmt.Errorf("stage upload: %w", closeErr))
	case n > s.maxSize:
		_ = os.Remove(dst)
		return nil, errors.PayloadTooLarge(s.maxSize)
	}

	u := &Upload{ID: id, Name: name, Path: dst, Size: n}
	s.log.WithContext(ctx).Debug("upload staged", map[string]interface{}{
		"upload_id": id,
		"filename":  name,
		"bytes":     n,
	})

	if s.archive != nil {
		s.archiveCopy(ctx, u, ext)
	}
	return u, nil
}

// archiveCopy stores the upload under prefix/YYYY/MM/DD/id.ext. Archive
// failures are logged and do not fail the request.
func (s *Stager) archiveCopy(ctx context.Context, u *Upload, ext string) {
	key := path.Join(s.prefix, s.now().UTC().Format("2006/01/02"), u.ID+ext)
	if s.sealer != nil {
		key += SealedSuffix
	}
	err := s.uploadArchive(ctx, key, u)
	if err != nil {
		s.log.WithContext(ctx).Warn("archiving upload failed", map[string]interface{}{
			"upload_id": u.ID,
			"error":     err.Error(),
		})
		return
	}
	u.ArchiveKey = key
}

// uploadArchive sends the staged file, sealing it first into a sibling
// temp file so the backend always gets a seekable body.
func (s *Stager) uploadArchive(ctx context.Context, key string, u *Upload) error {
	src, err := os.Open(u.Path)
	if err != nil {
		return err
	}
	defer src.Close()
	if s.sealer == nil {
		return s.archive.Upload(ctx, key, src)
	}

	sealed, err := os.CreateTemp(s.dir, u.ID+"-*"+SealedSuffix)
	if err != nil {
		return err
	}
	defer func() {
		_ = sealed.Close()
		_ = os.Remove(sealed.Name())
	}()
	if _, err := s.sealer.Seal(sealed, src); err != nil {
		return err
	}
	if _, err := sealed.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return s.archive.Upload(ctx, key, sealed)
}

// Release removes the staged file. It is safe to call with nil.
func (s *Stager) Release(u *Upload) {
	if u == nil {
		return
	}
	if err := os.Remove(u.Path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("removing staged upload failed", map[string]interface{}{
			"upload_id": u.ID,
			"error":     err.Error(),
		})
	}
}
