package mesh

import (
	"fmt"

	"github.com/rs/xid"
)

// A Registry issues mesh and data identities and resolves them. It is the
// only owner of mesh/data lookup state; there is no package-level registry.
type Registry struct {
	id     string
	nextID int

	meshes        map[int]*Mesh
	data          map[int]*Data
	meshNameIndex map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		id:            xid.New().String(),
		meshes:        make(map[int]*Mesh),
		data:          make(map[int]*Data),
		meshNameIndex: make(map[string]int),
	}
}

// ID returns the run-unique identity of the registry.
func (r *Registry) ID() string {
	return r.id
}

// CreateMesh registers a mesh with the given name and vertex count.
func (r *Registry) CreateMesh(name string, vertexCount int) *Mesh {
	if _, found := r.meshNameIndex[name]; found {
		panic("mesh " + name + " already registered")
	}

	if vertexCount <= 0 {
		panic(fmt.Sprintf("mesh %s must have a positive vertex count", name))
	}

	m := &Mesh{
		id:          r.issueID(),
		name:        name,
		vertexCount: vertexCount,
	}

	r.meshes[m.id] = m
	r.meshNameIndex[name] = m.id

	return m
}

// CreateData registers a data field on the given mesh.
func (r *Registry) CreateData(m *Mesh, name string, dimensions int) *Data {
	if r.meshes[m.id] != m {
		panic("mesh " + m.name + " is not owned by this registry")
	}

	if dimensions <= 0 {
		panic(fmt.Sprintf("data %s must have positive dimensions", name))
	}

	d := &Data{
		id:         r.issueID(),
		name:       name,
		dimensions: dimensions,
	}

	r.data[d.id] = d
	m.dataIDs = append(m.dataIDs, d.id)

	return d
}

// Mesh resolves a mesh id. It returns nil if the id is unknown.
func (r *Registry) Mesh(id int) *Mesh {
	return r.meshes[id]
}

// MeshByName resolves a mesh by its configured name.
func (r *Registry) MeshByName(name string) *Mesh {
	id, found := r.meshNameIndex[name]
	if !found {
		return nil
	}

	return r.meshes[id]
}

// Data resolves a data id. It returns nil if the id is unknown.
func (r *Registry) Data(id int) *Data {
	return r.data[id]
}

func (r *Registry) issueID() int {
	r.nextID++
	return r.nextID
}
