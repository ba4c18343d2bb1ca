// Package mesh defines the identity model for meshes and the data fields
// defined on them. Coupling schemes never hold pointers into mesh-owned
// structures; they hold ids and resolve them through a Registry.
package mesh

// A Data describes one exchanged quantity defined on a mesh. The value
// vector itself lives with the coupling scheme that registered the data.
type Data struct {
	id         int
	name       string
	dimensions int
}

// ID returns the registry-issued identity of the data.
func (d *Data) ID() int {
	return d.id
}

// Name returns the configured name of the data.
func (d *Data) Name() string {
	return d.name
}

// Dimensions returns the number of components per vertex.
func (d *Data) Dimensions() int {
	return d.dimensions
}

// A Mesh groups a set of vertices and the data fields defined on them.
type Mesh struct {
	id          int
	name        string
	vertexCount int
	dataIDs     []int
}

// ID returns the registry-issued identity of the mesh.
func (m *Mesh) ID() int {
	return m.id
}

// Name returns the configured name of the mesh.
func (m *Mesh) Name() string {
	return m.name
}

// VertexCount returns the number of vertices of the mesh.
func (m *Mesh) VertexCount() int {
	return m.vertexCount
}

// DataIDs returns the ids of all data fields defined on the mesh.
func (m *Mesh) DataIDs() []int {
	return m.dataIDs
}

// ValueCount returns the length of a value vector for data with the given
// number of components per vertex.
func (m *Mesh) ValueCount(dimensions int) int {
	return m.vertexCount * dimensions
}
