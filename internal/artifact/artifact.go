// Package artifact loads the descriptor naming an artifact, its scan
// photographs and its shape profile.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openrelic/artifactview/internal/profile"
)

// Artifact describes one scanned artifact. All fields are optional: an
// absent image list suppresses the 3D reconstruction entirely, and an
// absent or malformed profile falls back to the built-in curve.
type Artifact struct {
	// Name is the display name shown in the window title.
	Name string `yaml:"name"`

	// Label is the identification label shown as an overlay.
	Label string `yaml:"label"`

	// Images is the ordered list of scan image URLs or file paths.
	Images []string `yaml:"images"`

	// ProfileText is a JSON text encoding of [radius, height] pairs,
	// parsed defensively.
	ProfileText string `yaml:"profile"`

	// ProfilePoints is the already-parsed form; it wins over ProfileText.
	ProfilePoints [][2]float64 `yaml:"profile_points"`
}

// Load reads an artifact descriptor from a YAML file. Scan image paths
// that are not URLs are resolved relative to the descriptor's directory.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact descriptor: %w", err)
	}

	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing artifact descriptor %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, src := range a.Images {
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") && !filepath.IsAbs(src) {
			a.Images[i] = filepath.Join(base, src)
		}
	}

	return &a, nil
}

// Profile resolves the artifact's cross-section curve: parsed points win,
// then the defensive text parse, then the built-in default. Never fails.
func (a *Artifact) Profile() profile.Profile {
	if len(a.ProfilePoints) > 0 {
		return profile.FromPairs(a.ProfilePoints)
	}
	if a.ProfileText != "" {
		return profile.Parse(a.ProfileText)
	}
	return profile.Default()
}

// Title returns the window title for the artifact.
func (a *Artifact) Title() string {
	if a.Name == "" {
		return "Artifact Viewer"
	}
	return a.Name + " - Artifact Viewer"
}
