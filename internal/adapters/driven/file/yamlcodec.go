package file

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// Ensure YAMLCodec implements the interface.
var _ driven.DocumentCodec = (*YAMLCodec)(nil)

// tagTerminator is the NUL the host stores after every tag value.
const tagTerminator = "\x00"

// YAMLCodec reads and writes documents as nested YAML layer lists.
//
//	name: Poster
//	width: 640
//	height: 480
//	next_id: 2
//	layers:
//	  - name: Title
//	    kind: text
//	    text: Hello
//	    bounds: {x: 10, y: 10, width: 120, height: 20}
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML document codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

type yamlDocument struct {
	ID     string      `yaml:"id,omitempty"`
	Name   string      `yaml:"name"`
	Width  int         `yaml:"width"`
	Height int         `yaml:"height"`
	Active int         `yaml:"active,omitempty"`
	NextID int         `yaml:"next_id,omitempty"`
	Layers []yamlLayer `yaml:"layers"`
}

type yamlLayer struct {
	ID     int               `yaml:"id,omitempty"`
	Name   string            `yaml:"name"`
	Kind   string            `yaml:"kind,omitempty"`
	Text   string            `yaml:"text,omitempty"`
	Bounds *yamlRect         `yaml:"bounds,omitempty"`
	Tags   map[string]string `yaml:"tags,omitempty"`
	Raster string            `yaml:"raster,omitempty"`
	Layers []yamlLayer       `yaml:"layers,omitempty"`
}

type yamlRect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Decode parses a YAML document. Layers without an id get fresh IDs above
// the highest given one and below no recorded next_id, so IDs of deleted
// layers are not handed out again.
func (c *YAMLCodec) Decode(r io.Reader) (*domain.DocumentSnapshot, error) {
	var doc yamlDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas size %dx%d", domain.ErrInvalidInput, doc.Width, doc.Height)
	}

	if doc.NextID < 0 {
		return nil, fmt.Errorf("%w: next_id %d", domain.ErrInvalidInput, doc.NextID)
	}

	d := &decoder{seen: make(map[domain.NodeID]bool)}
	d.maxID(doc.Layers)
	if reserved := domain.NodeID(doc.NextID) - 1; reserved > d.next {
		d.next = reserved
	}

	snap := &domain.DocumentSnapshot{
		Document: domain.Document{
			ID:     doc.ID,
			Name:   doc.Name,
			Width:  doc.Width,
			Height: doc.Height,
		},
		Active: domain.NodeID(doc.Active),
	}

	ids, err := d.layers(doc.Layers, domain.NoParent)
	if err != nil {
		return nil, err
	}
	snap.TopLevel = ids
	snap.Nodes = d.nodes
	snap.NextID = d.next + 1

	if snap.Active != domain.NoParent && !d.seen[snap.Active] {
		return nil, fmt.Errorf("%w: active layer %d does not exist", domain.ErrInvalidInput, snap.Active)
	}
	return snap, nil
}

type decoder struct {
	next  domain.NodeID
	nodes []domain.Node
	seen  map[domain.NodeID]bool
}

func (d *decoder) maxID(layers []yamlLayer) {
	for _, l := range layers {
		if domain.NodeID(l.ID) > d.next {
			d.next = domain.NodeID(l.ID)
		}
		d.maxID(l.Layers)
	}
}

func (d *decoder) layers(layers []yamlLayer, parent domain.NodeID) ([]domain.NodeID, error) {
	ids := make([]domain.NodeID, 0, len(layers))
	for _, l := range layers {
		id, err := d.layer(l, parent)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *decoder) layer(l yamlLayer, parent domain.NodeID) (domain.NodeID, error) {
	kind, err := domain.ParseNodeKind(l.Kind)
	if err != nil {
		return 0, fmt.Errorf("%w: layer %q has unknown kind %q", domain.ErrInvalidInput, l.Name, l.Kind)
	}
	if len(l.Layers) > 0 {
		if l.Kind == "" {
			kind = domain.KindGroup
		}
		if kind != domain.KindGroup {
			return 0, fmt.Errorf("%w: %s layer %q cannot have children", domain.ErrInvalidInput, kind, l.Name)
		}
	}

	id := domain.NodeID(l.ID)
	if id == 0 {
		d.next++
		id = d.next
	}
	if id < 0 || d.seen[id] {
		return 0, fmt.Errorf("%w: duplicate or invalid layer id %d", domain.ErrInvalidInput, id)
	}
	d.seen[id] = true

	node := domain.Node{
		ID:     id,
		Name:   l.Name,
		Parent: parent,
		Kind:   kind,
		Text:   l.Text,
	}
	if l.Bounds != nil {
		node.Bounds = image.Rect(l.Bounds.X, l.Bounds.Y, l.Bounds.X+l.Bounds.Width, l.Bounds.Y+l.Bounds.Height)
	}
	if len(l.Tags) > 0 {
		node.Tags = make(map[string]string, len(l.Tags))
		for k, v := range l.Tags {
			node.Tags[k] = v + tagTerminator
		}
	}
	if l.Raster != "" {
		raster, err := decodeRaster(l.Raster, node.Bounds)
		if err != nil {
			return 0, fmt.Errorf("%w: layer %q raster: %v", domain.ErrInvalidInput, l.Name, err)
		}
		node.Raster = raster
		node.Bounds = raster.Rect
	}

	// Reserve the slot so parents precede children.
	idx := len(d.nodes)
	d.nodes = append(d.nodes, node)

	if kind == domain.KindGroup {
		children, err := d.layers(l.Layers, id)
		if err != nil {
			return 0, err
		}
		d.nodes[idx].Children = children
	}
	return id, nil
}

// Encode writes the snapshot as YAML.
func (c *YAMLCodec) Encode(w io.Writer, snapshot *domain.DocumentSnapshot) error {
	byID := make(map[domain.NodeID]domain.Node, len(snapshot.Nodes))
	for _, n := range snapshot.Nodes {
		byID[n.ID] = n
	}

	layers, err := encodeLayers(snapshot.TopLevel, byID)
	if err != nil {
		return err
	}

	doc := yamlDocument{
		ID:     snapshot.Document.ID,
		Name:   snapshot.Document.Name,
		Width:  snapshot.Document.Width,
		Height: snapshot.Document.Height,
		Active: int(snapshot.Active),
		NextID: int(snapshot.NextID),
		Layers: layers,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func encodeLayers(ids []domain.NodeID, byID map[domain.NodeID]domain.Node) ([]yamlLayer, error) {
	layers := make([]yamlLayer, 0, len(ids))
	for _, id := range ids {
		n, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("layer %d: %w", id, domain.ErrNotFound)
		}

		l := yamlLayer{
			ID:   int(n.ID),
			Name: n.Name,
			Kind: n.Kind.String(),
			Text: n.Text,
		}
		if !n.Bounds.Empty() {
			l.Bounds = &yamlRect{X: n.Bounds.Min.X, Y: n.Bounds.Min.Y, Width: n.Bounds.Dx(), Height: n.Bounds.Dy()}
		}
		if len(n.Tags) > 0 {
			l.Tags = make(map[string]string, len(n.Tags))
			for k, v := range n.Tags {
				l.Tags[k] = strings.TrimSuffix(v, tagTerminator)
			}
		}
		if n.Raster != nil {
			raster, err := encodeRaster(n.Raster)
			if err != nil {
				return nil, fmt.Errorf("layer %d raster: %w", id, err)
			}
			l.Raster = raster
		}
		if n.IsGroup() {
			children, err := encodeLayers(n.Children, byID)
			if err != nil {
				return nil, err
			}
			l.Layers = children
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// encodeRaster writes pixels as base64 PNG.
func encodeRaster(img *image.NRGBA) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeRaster reads base64 PNG pixels placed at bounds.Min.
func decodeRaster(s string, bounds image.Rectangle) (*image.NRGBA, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	src := img.Bounds()
	rect := src.Sub(src.Min).Add(bounds.Min)
	out := image.NewNRGBA(rect)
	draw.Draw(out, rect, img, src.Min, draw.Src)
	return out, nil
}
