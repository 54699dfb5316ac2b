package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// PathSeparator separates node names in a hierarchy path ("Hero/Body/Arm").
const PathSeparator = "/"

// maxNameLength bounds node names and individual path segments.
const maxNameLength = 256

// ValidateNodeName validates a scene node name.
//
// Names are display labels, not identities, so duplicates are allowed. They
// must still be addressable from a hierarchy path:
//   - No empty names
//   - No control characters
//   - No path separators
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScene, "node name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidScene, "node name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "node name %q contains control characters", name)
		}
	}

	if strings.Contains(name, PathSeparator) {
		return New(ErrCodeInvalidScene, "node name %q cannot contain %q", name, PathSeparator)
	}

	return nil
}

// ValidateNodePath validates a slash-separated hierarchy path and returns
// its segments.
func ValidateNodePath(path string) ([]string, error) {
	path = strings.Trim(path, PathSeparator)
	if path == "" {
		return nil, New(ErrCodeInvalidPath, "node path cannot be empty")
	}

	segments := strings.Split(path, PathSeparator)
	for _, seg := range segments {
		if seg == "" {
			return nil, New(ErrCodeInvalidPath, "node path %q contains an empty segment", path)
		}
		if err := ValidateNodeName(seg); err != nil {
			return nil, Wrap(ErrCodeInvalidPath, err, "invalid segment in %q", path)
		}
	}
	return segments, nil
}

// ValidateSceneFilename checks that a scene file has a supported extension.
func ValidateSceneFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "scene filename cannot be empty")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported scene file %q (want .json, .yaml or .yml)", filename)
	}
}
