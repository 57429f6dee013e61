// Package export packages a project's files into a zip archive and, when
// object storage is configured, publishes it for download.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/webforge-ai/webforge/internal/runner"
	"github.com/webforge-ai/webforge/internal/storage"
)

// Service archives project file sets. S3 is optional; without it callers
// stream the archive directly.
type Service struct {
	s3 storage.S3Storage
}

func NewService(s3 storage.S3Storage) *Service {
	return &Service{s3: s3}
}

// HasStorage reports whether archives can be published to object storage.
func (s *Service) HasStorage() bool {
	return s.s3 != nil
}

// Archive builds a deterministic zip of the project's files (entries in
// sorted path order).
func (s *Service) Archive(p *runner.Project) ([]byte, error) {
	paths := make([]string, 0, len(p.Files))
	for path := range p.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, path := range paths {
		w, err := zw.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", path, err)
		}
		if _, err := w.Write([]byte(p.Files[path])); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Publish uploads the project's archive and returns its object key.
func (s *Service) Publish(ctx context.Context, p *runner.Project) (string, error) {
	if s.s3 == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	data, err := s.Archive(p)
	if err != nil {
		return "", err
	}
	key := archiveKey(p.ID)
	if err := s.s3.UploadFile(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Fetch retrieves the project's previously published archive. It reports
// false when no archive was published or storage is not configured.
func (s *Service) Fetch(ctx context.Context, projectID string) ([]byte, bool, error) {
	if s.s3 == nil {
		return nil, false, nil
	}
	key := archiveKey(projectID)
	exists, err := s.s3.FileExists(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	data, err := s.s3.DownloadFile(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Remove deletes the project's published archive, if any. Called when the
// project itself is deleted so stored archives don't outlive their project.
func (s *Service) Remove(ctx context.Context, projectID string) error {
	if s.s3 == nil {
		return nil
	}
	key := archiveKey(projectID)
	exists, err := s.s3.FileExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return s.s3.DeleteFile(ctx, key)
}

func archiveKey(projectID string) string {
	return fmt.Sprintf("projects/%s.zip", projectID)
}
