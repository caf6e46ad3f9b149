package quarkgl

// Material is a minimal surface description.
type Material struct {
	BaseColor Color
	Opacity   uint8 // 0..255. 255 means opaque.
	Wireframe bool  // draw triangle edges instead of filling
}

// LightMode defines minimal lighting options.
type LightMode uint8

const (
	LightOff LightMode = iota
	LightAmbientDirectional
)

// Light is a minimal light setup.
type Light struct {
	Mode      LightMode
	Ambient   Scalar // 0..1
	Dir       Vec3   // direction *towards* the scene
	DirAmount Scalar // 0..1
}

// Mesh is geometry in its node's local space: filled triangles plus unlit
// line segments, both indexing Points.
type Mesh struct {
	Points    []Vec3
	Triangles []uint16
	Lines     []uint16

	Material Material
}

// Label is screen-space text anchored at its node's world origin.
type Label struct {
	Text  string
	Color Color

	// Pixel offset applied after projection.
	DX, DY int
}

// NodeID addresses a node in the scene arena.
type NodeID int32

const (
	// Root is the scene root group. It always exists and cannot be removed.
	Root NodeID = 0
	// InvalidNode is returned when an insert fails.
	InvalidNode NodeID = -1
)

// NodeKind tags the payload of a node.
type NodeKind uint8

const (
	NodeGroup NodeKind = iota
	NodeMesh
	NodeLabel
)

type node struct {
	kind     NodeKind
	parent   NodeID
	children []NodeID
	local    Mat4
	enabled  bool

	mesh  Mesh
	label Label
}

// Scene is a node hierarchy plus camera and light.
type Scene struct {
	Camera Camera
	Light  Light

	nodes []node
	alive []bool
	free  []NodeID
	count int
}

// CreateScene allocates a scene with room for capacity nodes before growing.
func CreateScene(capacity int) *Scene {
	if capacity < 1 {
		capacity = 1
	}
	s := &Scene{
		Camera: Camera{
			Position: V3(0, 0, 3),
			Up:       V3(0, 1, 0),
			FOVY:     1,
			Near:     0.05,
			Far:      100,
		},
		Light: Light{
			Mode:      LightAmbientDirectional,
			Ambient:   Scalar(0.25),
			Dir:       V3(1, 1, 1).Normalize(),
			DirAmount: Scalar(0.75),
		},
		nodes: make([]node, 1, capacity),
		alive: make([]bool, 1, capacity),
	}
	s.nodes[Root] = node{kind: NodeGroup, parent: InvalidNode, local: Identity(), enabled: true}
	s.alive[Root] = true
	return s
}

// Len returns the number of live nodes, excluding the root.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Valid reports whether id refers to a live node.
func (s *Scene) Valid(id NodeID) bool {
	return s != nil && id >= 0 && int(id) < len(s.nodes) && s.alive[id]
}

func (s *Scene) insert(parent NodeID, n node) NodeID {
	if !s.Valid(parent) {
		return InvalidNode
	}
	if n.local == (Mat4{}) {
		n.local = Identity()
	}
	n.parent = parent
	n.enabled = true

	var id NodeID
	if k := len(s.free); k > 0 {
		id = s.free[k-1]
		s.free = s.free[:k-1]
		s.nodes[id] = n
		s.alive[id] = true
	} else {
		id = NodeID(len(s.nodes))
		s.nodes = append(s.nodes, n)
		s.alive = append(s.alive, true)
	}
	s.nodes[parent].children = append(s.nodes[parent].children, id)
	s.count++
	return id
}

// AddGroup attaches an empty transform node under parent.
func (s *Scene) AddGroup(parent NodeID, local Mat4) NodeID {
	return s.insert(parent, node{kind: NodeGroup, local: local})
}

// AddMesh attaches a mesh under parent at the local transform.
func (s *Scene) AddMesh(parent NodeID, local Mat4, m Mesh) NodeID {
	if m.Material.Opacity == 0 {
		m.Material.Opacity = 0xFF
	}
	if m.Material.BaseColor == (Color{}) {
		m.Material.BaseColor = RGB(0xCC, 0xCC, 0xCC)
	}
	return s.insert(parent, node{kind: NodeMesh, local: local, mesh: m})
}

// AddLabel attaches a text label under parent at the local offset.
func (s *Scene) AddLabel(parent NodeID, local Mat4, l Label) NodeID {
	if l.Color == (Color{}) {
		l.Color = RGB(0xFF, 0xFF, 0xFF)
	}
	return s.insert(parent, node{kind: NodeLabel, local: local, label: l})
}

// Remove detaches id from its parent and frees its subtree. It returns the
// number of nodes freed. The root cannot be removed.
func (s *Scene) Remove(id NodeID) int {
	if id == Root || !s.Valid(id) {
		return 0
	}
	p := s.nodes[id].parent
	if s.Valid(p) {
		kids := s.nodes[p].children
		for i, c := range kids {
			if c == id {
				s.nodes[p].children = append(kids[:i], kids[i+1:]...)
				break
			}
		}
	}
	return s.release(id)
}

func (s *Scene) release(id NodeID) int {
	n := 1
	for _, c := range s.nodes[id].children {
		n += s.release(c)
	}
	s.nodes[id] = node{}
	s.alive[id] = false
	s.free = append(s.free, id)
	s.count--
	return n
}

// Kind returns the node kind.
func (s *Scene) Kind(id NodeID) (NodeKind, bool) {
	if !s.Valid(id) {
		return 0, false
	}
	return s.nodes[id].kind, true
}

// Parent returns the parent of id, or InvalidNode.
func (s *Scene) Parent(id NodeID) NodeID {
	if !s.Valid(id) {
		return InvalidNode
	}
	return s.nodes[id].parent
}

// Children returns a copy of the child list.
func (s *Scene) Children(id NodeID) []NodeID {
	if !s.Valid(id) {
		return nil
	}
	return append([]NodeID(nil), s.nodes[id].children...)
}

// Local returns the local transform.
func (s *Scene) Local(id NodeID) Mat4 {
	if !s.Valid(id) {
		return Mat4{}
	}
	return s.nodes[id].local
}

// SetLocal replaces the local transform.
func (s *Scene) SetLocal(id NodeID, m Mat4) {
	if !s.Valid(id) {
		return
	}
	s.nodes[id].local = m
}

// World returns the accumulated transform from the root.
func (s *Scene) World(id NodeID) Mat4 {
	if !s.Valid(id) {
		return Mat4{}
	}
	m := s.nodes[id].local
	for p := s.nodes[id].parent; s.Valid(p); p = s.nodes[p].parent {
		m = s.nodes[p].local.Mul(m)
	}
	return m
}

// SetEnabled shows or hides a node and its subtree.
func (s *Scene) SetEnabled(id NodeID, enabled bool) {
	if !s.Valid(id) {
		return
	}
	s.nodes[id].enabled = enabled
}

// Mesh returns a copy of a mesh node's mesh.
func (s *Scene) Mesh(id NodeID) (Mesh, bool) {
	if !s.Valid(id) || s.nodes[id].kind != NodeMesh {
		return Mesh{}, false
	}
	return s.nodes[id].mesh, true
}

// SetMaterial replaces a mesh node's material.
func (s *Scene) SetMaterial(id NodeID, m Material) {
	if !s.Valid(id) || s.nodes[id].kind != NodeMesh {
		return
	}
	s.nodes[id].mesh.Material = m
}

// Label returns a label node's label.
func (s *Scene) Label(id NodeID) (Label, bool) {
	if !s.Valid(id) || s.nodes[id].kind != NodeLabel {
		return Label{}, false
	}
	return s.nodes[id].label, true
}

// SetLabelText replaces a label's text.
func (s *Scene) SetLabelText(id NodeID, text string) {
	if !s.Valid(id) || s.nodes[id].kind != NodeLabel {
		return
	}
	s.nodes[id].label.Text = text
}

// walk visits enabled nodes depth-first with their world transforms.
func (s *Scene) walk(fn func(id NodeID, n *node, world Mat4)) {
	if s == nil {
		return
	}
	var visit func(id NodeID, parentWorld Mat4)
	visit = func(id NodeID, parentWorld Mat4) {
		n := &s.nodes[id]
		if !n.enabled {
			return
		}
		world := parentWorld.Mul(n.local)
		fn(id, n, world)
		for _, c := range n.children {
			visit(c, world)
		}
	}
	visit(Root, Identity())
}
