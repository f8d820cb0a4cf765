package renderer

// Vertex is the single vertex layout shared by every mesh: position then texture coordinate.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
}

// VertexStride is the size of a Vertex in bytes.
const VertexStride = 20

// QuadHalfExtent is half the side length of the map quad.
const QuadHalfExtent = 2

// QuadVertices returns the map quad as two triangles in the XY plane, spanning
// ±QuadHalfExtent with UV (0, 0) at the bottom-left corner.
func QuadVertices() []Vertex {
	const e = QuadHalfExtent
	bl := Vertex{Position: [3]float32{-e, -e, 0}, UV: [2]float32{0, 0}}
	br := Vertex{Position: [3]float32{e, -e, 0}, UV: [2]float32{1, 0}}
	tr := Vertex{Position: [3]float32{e, e, 0}, UV: [2]float32{1, 1}}
	tl := Vertex{Position: [3]float32{-e, e, 0}, UV: [2]float32{0, 1}}
	return []Vertex{bl, br, tr, tr, tl, bl}
}

// cubeCorners are the corners of the unit cube centred on the origin.
var cubeCorners = [8][3]float32{
	{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
}

// cubeFaces lists each face as a counter-clockwise quad seen from outside.
var cubeFaces = [6][4]int{
	{4, 5, 6, 7}, // +z
	{1, 0, 3, 2}, // -z
	{5, 1, 2, 6}, // +x
	{0, 4, 7, 3}, // -x
	{7, 6, 2, 3}, // +y
	{0, 1, 5, 4}, // -y
}

// cubeEdges are the twelve edges as corner index pairs.
var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// CubeVertices returns the unit cube as 36 triangle-list vertices.
func CubeVertices() []Vertex {
	out := make([]Vertex, 0, 36)
	for _, f := range cubeFaces {
		for _, i := range [6]int{0, 1, 2, 2, 3, 0} {
			out = append(out, Vertex{Position: cubeCorners[f[i]]})
		}
	}
	return out
}

// CubeEdgeVertices returns the unit cube outline as 24 line-list vertices.
func CubeEdgeVertices() []Vertex {
	out := make([]Vertex, 0, 24)
	for _, e := range cubeEdges {
		out = append(out, Vertex{Position: cubeCorners[e[0]]}, Vertex{Position: cubeCorners[e[1]]})
	}
	return out
}
