package artifacts

import (
	"os"
	"path/filepath"

	"github.com/dictaflow/dictaflow/internal/speech/engine"
)

// Locator resolves on-disk locations of a model version's components
// under a base models directory. Installation and download of the
// artifacts themselves happen outside this core.
type Locator struct {
	baseDir string
}

// NewLocator creates a locator rooted at the given models directory.
func NewLocator(baseDir string) *Locator {
	return &Locator{baseDir: baseDir}
}

// Resolve returns the expected artifact paths for a version. It does
// not check existence; use Available for that.
func (l *Locator) Resolve(v engine.ModelVersion) engine.ModelArtifacts {
	dir := filepath.Join(l.baseDir, v.String())
	return engine.ModelArtifacts{
		Version:    v,
		EncoderDir: filepath.Join(dir, "encoder"),
		DecoderDir: filepath.Join(dir, "decoder"),
		VocabPath:  filepath.Join(dir, "vocab.txt"),
	}
}

// Available reports whether every component of the version is present
// on disk.
func (l *Locator) Available(v engine.ModelVersion) bool {
	a := l.Resolve(v)
	for _, p := range []string{a.EncoderDir, a.DecoderDir, a.VocabPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}
