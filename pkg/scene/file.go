package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
)

// Scene file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileVersion is the scene file schema version written by [Write].
const FileVersion = 1

// File is the serialized form of a scene.
type File struct {
	Version int        `json:"version" yaml:"version"`
	Roots   []NodeSpec `json:"roots" yaml:"roots"`
}

// NodeSpec is the serialized form of a node and its subtree.
type NodeSpec struct {
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string        `json:"name" yaml:"name"`
	Actor    *ActorSpec    `json:"actor,omitempty" yaml:"actor,omitempty"`
	Renderer *RendererSpec `json:"renderer,omitempty" yaml:"renderer,omitempty"`
	Camera   bool          `json:"camera,omitempty" yaml:"camera,omitempty"`
	Children []NodeSpec    `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n NodeSpec) capabilities() int {
	count := 0
	if n.Actor != nil {
		count++
	}
	if n.Renderer != nil {
		count++
	}
	if n.Camera {
		count++
	}
	return count
}

// ActorSpec is the serialized form of an [Actor].
type ActorSpec struct {
	Composition    string             `json:"composition,omitempty" yaml:"composition,omitempty"`
	CompositionMap []CompositionEntry `json:"composition_map,omitempty" yaml:"composition_map,omitempty"`
}

// RendererSpec is the serialized form of a [Renderer].
type RendererSpec struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// FormatFromPath infers the scene format from a file extension.
func FormatFromPath(path string) (string, error) {
	if err := lderrors.ValidateSceneFilename(path); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatJSON, nil
	}
}

// =============================================================================
// Decoding
// =============================================================================

// Read decodes a scene in the given format from r.
//
// Read returns an INVALID_SCENE error if the document is malformed, uses an
// unsupported version, carries an unparsable or duplicate id, or names a
// node with an invalid name. Read does not close r.
func Read(r io.Reader, format string) (*Scene, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, lderrors.Wrap(lderrors.ErrCodeInvalidScene, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, lderrors.Wrap(lderrors.ErrCodeInvalidScene, err, "decode yaml")
		}
	default:
		return nil, lderrors.New(lderrors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	return FromFile(f)
}

// ReadFile reads the scene file at path. The format follows the extension.
func ReadFile(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, lderrors.Wrap(lderrors.ErrCodeFileNotFound, err, "scene file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	return Read(fh, format)
}

// FromFile builds a scene from its serialized form.
func FromFile(f File) (*Scene, error) {
	if f.Version != 0 && f.Version != FileVersion {
		return nil, lderrors.New(lderrors.ErrCodeInvalidScene, "unsupported scene version %d", f.Version)
	}
	s := New()
	for i := range f.Roots {
		if err := s.addSpec(nil, f.Roots[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scene) addSpec(parent *Node, spec NodeSpec) error {
	if err := lderrors.ValidateNodeName(spec.Name); err != nil {
		return err
	}
	if spec.capabilities() > 1 {
		return lderrors.New(lderrors.ErrCodeInvalidScene,
			"node %s: at most one of actor, renderer and camera may be set", spec.Name)
	}

	n := &Node{Name: spec.Name, Camera: spec.Camera}
	if spec.ID != "" {
		id, err := uuid.Parse(spec.ID)
		if err != nil {
			return lderrors.Wrap(lderrors.ErrCodeInvalidScene, err, "node %s: bad id %q", spec.Name, spec.ID)
		}
		n.ID = id
	}
	if spec.Actor != nil {
		n.Actor = &Actor{
			Composition:    spec.Actor.Composition,
			CompositionMap: append([]CompositionEntry(nil), spec.Actor.CompositionMap...),
		}
	}
	if spec.Renderer != nil {
		n.Renderer = NewRenderer(spec.Renderer.Enabled)
	}

	if err := s.Add(parent, n); err != nil {
		return lderrors.Wrap(lderrors.ErrCodeInvalidScene, err, "node %s", spec.Name)
	}
	for i := range spec.Children {
		if err := s.addSpec(n, spec.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Encoding
// =============================================================================

// ToFile converts a scene to its serialized form. Every node carries its id.
func ToFile(s *Scene) File {
	f := File{Version: FileVersion, Roots: make([]NodeSpec, len(s.roots))}
	for i, r := range s.roots {
		f.Roots[i] = specFromNode(r)
	}
	return f
}

func specFromNode(n *Node) NodeSpec {
	spec := NodeSpec{
		ID:     n.ID.String(),
		Name:   n.Name,
		Camera: n.Camera,
	}
	if n.Actor != nil {
		spec.Actor = &ActorSpec{
			Composition:    n.Actor.Composition,
			CompositionMap: append([]CompositionEntry(nil), n.Actor.CompositionMap...),
		}
	}
	if n.Renderer != nil {
		spec.Renderer = &RendererSpec{Enabled: n.Renderer.Enabled()}
	}
	for _, c := range n.children {
		spec.Children = append(spec.Children, specFromNode(c))
	}
	return spec
}

// Write encodes s in the given format to w.
func Write(s *Scene, w io.Writer, format string) error {
	f := ToFile(s)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return lderrors.New(lderrors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
}

// Marshal encodes s in the given format.
func Marshal(s *Scene, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes s to path in the format implied by its extension.
func WriteFile(s *Scene, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(s, format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}
