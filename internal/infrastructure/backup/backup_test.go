package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/schema/schematest"
)

type memUploader struct {
	objects map[string][]byte
	err     error
}

func (m *memUploader) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.objects[objectPath] = b
	return "mem://" + objectPath, nil
}

func (m *memUploader) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memUploader) Delete(_ context.Context, objectPath string) error {
	delete(m.objects, objectPath)
	return nil
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRunUploadsSnapshot(t *testing.T) {
	db := schematest.NewDB(t)
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash, name, created_at) VALUES ('u1', 'a@x.com', 'h', 'A', '2024-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)

	up := &memUploader{objects: map[string][]byte{}}
	svc := NewService(db, up, "backups", quiet())
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/todo-20240506T070809Z.db", res.Object)
	assert.Equal(t, "mem://backups/todo-20240506T070809Z.db", res.URI)

	data := up.objects[res.Object]
	require.NotEmpty(t, data)
	assert.Equal(t, int64(len(data)), res.Bytes)
	assert.True(t, bytes.HasPrefix(data, []byte("SQLite format 3\x00")))
}

func TestRunReportsUploadFailure(t *testing.T) {
	db := schematest.NewDB(t)
	svc := NewService(db, &memUploader{err: errors.New("bucket missing")}, "", quiet())

	_, err := svc.Run(context.Background())
	assert.ErrorContains(t, err, "bucket missing")
}

func TestRunKeepsNewestSnapshots(t *testing.T) {
	db := schematest.NewDB(t)
	up := &memUploader{objects: map[string][]byte{
		"backups/todo-20240101T000000Z.db": nil,
		"backups/todo-20240102T000000Z.db": nil,
		"backups/todo-20240103T000000Z.db": nil,
		"other/todo-20230101T000000Z.db":   nil,
	}}
	svc := NewService(db, up, "backups", quiet())
	svc.Keep = 2
	svc.now = func() time.Time { return time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC) }

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/todo-20240101T000000Z.db", "backups/todo-20240102T000000Z.db"}, res.Pruned)

	left, err := up.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"backups/todo-20240103T000000Z.db",
		"backups/todo-20240104T000000Z.db",
		"other/todo-20230101T000000Z.db",
	}, left)
}
