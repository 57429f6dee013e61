package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-ai/webforge/internal/runner"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) UploadFile(_ context.Context, key string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeS3) DownloadFile(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("file not found: " + key)
	}
	return data, nil
}

func (f *fakeS3) DeleteFile(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeS3) FileExists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(content)
	}
	return out
}

func TestArchiveRoundTrip(t *testing.T) {
	svc := NewService(nil)
	p := &runner.Project{
		ID:   "p1",
		Name: "my app",
		Files: map[string]string{
			"package.json": `{"name":"my-app"}`,
			"src/App.tsx":  "export default () => null",
			"src/main.tsx": "import App from './App'",
		},
	}

	data, err := svc.Archive(p)
	require.NoError(t, err)
	assert.Equal(t, p.Files, unzip(t, data))
}

func TestArchiveIsDeterministic(t *testing.T) {
	svc := NewService(nil)
	p := &runner.Project{
		ID: "p1",
		Files: map[string]string{
			"b.ts": "2", "a.ts": "1", "c.ts": "3",
		},
	}

	first, err := svc.Archive(p)
	require.NoError(t, err)
	second, err := svc.Archive(p)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.ts", "b.ts", "c.ts"}, names, "entries must be in sorted path order")
	assert.Equal(t, unzip(t, first), unzip(t, second))
}

func TestArchiveEmptyProject(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.Archive(&runner.Project{ID: "empty"})
	require.NoError(t, err)
	assert.Empty(t, unzip(t, data))
}

func TestPublishUploadsArchive(t *testing.T) {
	s3 := newFakeS3()
	svc := NewService(s3)
	require.True(t, svc.HasStorage())

	p := &runner.Project{ID: "p1", Files: map[string]string{"index.html": "<h1>hi</h1>"}}
	key, err := svc.Publish(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "projects/p1.zip", key)

	stored, err := s3.DownloadFile(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, p.Files, unzip(t, stored))
}

func TestPublishWithoutStorage(t *testing.T) {
	svc := NewService(nil)
	assert.False(t, svc.HasStorage())

	_, err := svc.Publish(context.Background(), &runner.Project{ID: "p1"})
	assert.ErrorContains(t, err, "object storage not configured")
}

func TestFetchReturnsPublishedArchive(t *testing.T) {
	s3 := newFakeS3()
	svc := NewService(s3)
	ctx := context.Background()

	p := &runner.Project{ID: "p1", Files: map[string]string{"index.html": "<h1>hi</h1>"}}
	_, err := svc.Publish(ctx, p)
	require.NoError(t, err)

	data, ok, err := svc.Fetch(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.Files, unzip(t, data))

	_, ok, err = svc.Fetch(ctx, "never-published")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchWithoutStorage(t *testing.T) {
	svc := NewService(nil)
	_, ok, err := svc.Fetch(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveDeletesArchive(t *testing.T) {
	s3 := newFakeS3()
	svc := NewService(s3)
	ctx := context.Background()

	p := &runner.Project{ID: "p1", Files: map[string]string{"index.html": "x"}}
	key, err := svc.Publish(ctx, p)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "p1"))
	exists, err := s3.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// Removing an absent archive, or with no storage at all, is a no-op.
	assert.NoError(t, svc.Remove(ctx, "p1"))
	assert.NoError(t, NewService(nil).Remove(ctx, "p1"))
}

func TestPublishSurfacesUploadFailure(t *testing.T) {
	s3 := newFakeS3()
	s3.err = errors.New("upload failed: access denied")
	svc := NewService(s3)

	_, err := svc.Publish(context.Background(), &runner.Project{ID: "p1"})
	assert.ErrorContains(t, err, "access denied")
}
