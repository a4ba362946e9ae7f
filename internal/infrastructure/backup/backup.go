// Package backup snapshots the SQLite store and ships it to object storage.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

const contentType = "application/vnd.sqlite3"

// Uploader stores snapshots in a bucket-like namespace.
type Uploader interface {
	// Upload stores r under objectPath and returns its URI.
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, objectPath string) error
}

type GCSUploader struct {
	Client *storage.Client
	Bucket string
}

func (u *GCSUploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, u.Client, u.Bucket, objectPath, contentType, r)
}

func (u *GCSUploader) List(ctx context.Context, prefix string) ([]string, error) {
	return helpers.ListObjects(ctx, u.Client, u.Bucket, prefix)
}

func (u *GCSUploader) Delete(ctx context.Context, objectPath string) error {
	return helpers.DeleteObject(ctx, u.Client, u.Bucket, objectPath)
}

// Snapshot writes a consistent copy of the store to dst using VACUUM INTO.
// dst must not exist.
func Snapshot(ctx context.Context, db *sqlx.DB, dst string) error {
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}
	return nil
}

type Result struct {
	Object string
	URI    string
	Bytes  int64
	Pruned []string
}

type Service struct {
	DB       *sqlx.DB
	Uploader Uploader
	Prefix   string
	// Keep is how many snapshots to retain after a run; 0 keeps all.
	Keep   int
	Logger *logrus.Logger
	now    func() time.Time
}

func NewService(db *sqlx.DB, uploader Uploader, prefix string, logger *logrus.Logger) *Service {
	return &Service{DB: db, Uploader: uploader, Prefix: prefix, Logger: logger, now: time.Now}
}

func (s *Service) namePrefix() string {
	return path.Join(s.Prefix, "todo-")
}

func (s *Service) objectName() string {
	return s.namePrefix() + s.now().UTC().Format("20060102T150405Z") + ".db"
}

// Run snapshots the store into a temp dir, uploads it and removes the local copy.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	dir, err := os.MkdirTemp("", "todo-backup-")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	local := filepath.Join(dir, "snapshot.db")
	if err := Snapshot(ctx, s.DB, local); err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	object := s.objectName()
	uri, err := s.Uploader.Upload(ctx, object, contentType, f)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", object, err)
	}
	res := &Result{Object: object, URI: uri, Bytes: info.Size()}
	s.Logger.WithFields(logrus.Fields{"object": object, "uri": uri, "bytes": res.Bytes}).Info("backup uploaded")

	// The upload already succeeded; retention failures are only logged.
	pruned, err := s.prune(ctx)
	if err != nil {
		s.Logger.WithError(err).Warn("backup retention failed")
	}
	res.Pruned = pruned
	return res, nil
}

// prune deletes the oldest snapshots beyond Keep. Names embed a UTC
// timestamp, so lexical order is chronological.
func (s *Service) prune(ctx context.Context) ([]string, error) {
	if s.Keep <= 0 {
		return nil, nil
	}
	names, err := s.Uploader.List(ctx, s.namePrefix())
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(names) <= s.Keep {
		return nil, nil
	}
	sort.Strings(names)
	var pruned []string
	for _, name := range names[:len(names)-s.Keep] {
		if err := s.Uploader.Delete(ctx, name); err != nil {
			return pruned, fmt.Errorf("delete %s: %w", name, err)
		}
		pruned = append(pruned, name)
	}
	if len(pruned) > 0 {
		s.Logger.WithField("pruned", len(pruned)).Info("old backups removed")
	}
	return pruned, nil
}
