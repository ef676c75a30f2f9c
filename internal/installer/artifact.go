package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"agent-bootstrap/internal/target"
)

// Artifact is a downloaded installer owned by exactly one run.
type Artifact struct {
	URL  string
	Path string
}

// NewArtifact allocates a unique temp path for the descriptor's download.
// An empty tempDir means the system temp directory.
func NewArtifact(tempDir string, d target.Descriptor) Artifact {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	name := fmt.Sprintf("%s_%s%s", d.Name, uuid.NewString(), d.ArtifactExt)
	return Artifact{URL: d.URL, Path: filepath.Join(tempDir, name)}
}

// Verify fails when the artifact is absent or empty, even if the transport reported success.
func (a Artifact) Verify() error {
	info, err := os.Stat(a.Path)
	if err != nil {
		return fmt.Errorf("%w: artifact not found after download: %s", ErrDownload, a.Path)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: artifact is empty: %s", ErrDownload, a.Path)
	}
	return nil
}

// Release removes the artifact. A file that was never created is not an error.
func (a Artifact) Release() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", a.Path, err)
	}
	return nil
}
