package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/asset"
	"github.com/achilleasa/prism/asset/texture"
	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/shape"
	"github.com/achilleasa/prism/types"
)

// A face vertex references a position and optionally a uv and a normal.
// Missing references are set to -1.
type faceVertex struct {
	v, vt, vn int
}

// A mesh that is still being parsed. Face vertices are de-duplicated so that
// triangles sharing a corner also share a mesh vertex.
type wavefrontMesh struct {
	name       string
	vertices   []shape.Vertex
	triangles  [][3]int32
	vertexMap  map[faceVertex]int32
	hasNormals bool
}

func newWavefrontMesh(name string) *wavefrontMesh {
	return &wavefrontMesh{
		name:      name,
		vertexMap: make(map[faceVertex]int32),
	}
}

// A mesh instance definition; instances are created once all meshes are built.
type wavefrontInstance struct {
	meshIndex int
	transform *types.Transform
}

type wavefrontSceneReader struct {
	logger log.Logger
	ctx    context.Context
	opts   []accel.Option

	// Parsed meshes and instances.
	meshes    []*wavefrontMesh
	instances []wavefrontInstance

	// Alpha masks keyed by mesh index. Masks apply to every instance of a mesh.
	alphaMasks map[int]*texture.Texture

	// Allocated when the scene defines a camera directive.
	camera *scene.Camera

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader(ctx context.Context, opts ...accel.Option) *wavefrontSceneReader {
	if ctx == nil {
		ctx = context.Background()
	}
	return &wavefrontSceneReader{
		logger:     log.New("wavefront scene reader"),
		ctx:        ctx,
		opts:       opts,
		alphaMasks: make(map[int]*texture.Texture),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}
	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	return r.buildScene(), nil
}

// Build the mesh BVHs and assemble the top level group.
func (r *wavefrontSceneReader) buildScene() *scene.Scene {
	start := time.Now()
	sc := &scene.Scene{
		Camera: r.camera,
		Meshes: make([]*shape.TriangleMesh, len(r.meshes)),
	}
	for index, wfMesh := range r.meshes {
		sc.Meshes[index] = shape.NewTriangleMesh(wfMesh.name, wfMesh.vertices, wfMesh.triangles, wfMesh.hasNormals, r.opts...)
	}

	// If no mesh instances are defined, create an instance for each defined mesh
	if len(r.instances) == 0 {
		for index := range sc.Meshes {
			r.instances = append(r.instances, wavefrontInstance{meshIndex: index})
		}
	}

	var shapes []shape.Shape
	for _, inst := range r.instances {
		meshInst := shape.NewInstance(sc.Meshes[inst.meshIndex], inst.transform)
		if mask, exists := r.alphaMasks[inst.meshIndex]; exists {
			meshInst.Alpha = mask
		}
		shapes = append(shapes, meshInst)
	}

	if len(shapes) > 0 {
		sc.Root = shape.NewGroup(shapes, r.opts...)
	}

	r.logger.Noticef("built scene BVH for %d meshes and %d instances in %d ms", len(sc.Meshes), len(shapes), time.Since(start).Nanoseconds()/1e6)
	return sc
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the camera, allocating a default one the first time a camera directive
// is encountered.
func (r *wavefrontSceneReader) sceneCamera() *scene.Camera {
	if r.camera == nil {
		r.camera = scene.NewCamera(scene.DefaultFOV)
	}
	return r.camera
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResourceContext(r.ctx, lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "mtllib", "usemtl":
			r.logger.Debugf("%s:%d ignoring %q directive", res.Path(), lineNum, lineTokens[0])
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			r.meshes = append(r.meshes, newWavefrontMesh(lineTokens[1]))
		case "f":
			// If no object has been defined create a default one
			if len(r.meshes) == 0 {
				r.meshes = append(r.meshes, newWavefrontMesh("default"))
			}

			err = r.parseFace(r.meshes[len(r.meshes)-1], lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_fov":
			fov, err := parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if fov <= 0 || fov >= 180 {
				return r.emitError(res.Path(), lineNum, "camera FOV must be in the (0, 180) range; got %v", fov)
			}
			r.sceneCamera().FOV = fov
		case "camera_eye":
			r.sceneCamera().Position, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_look":
			r.sceneCamera().LookAt, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_up":
			r.sceneCamera().Up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "instance":
			r.verifyLastParsedMesh()
			instance, err := r.parseMeshInstance(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.instances = append(r.instances, instance)
		case "alpha_mask":
			if len(lineTokens) != 3 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 2 arguments: mesh_name texture_file; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			meshIndex := r.findMesh(lineTokens[1])
			if meshIndex == -1 {
				return r.emitError(res.Path(), lineNum, `unknown mesh with name "%s"`, lineTokens[1])
			}

			texRes, err := asset.NewResourceContext(r.ctx, lineTokens[2], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			mask, err := texture.New(texRes)
			texRes.Close()
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.alphaMasks[meshIndex] = mask
		default:
			r.logger.Debugf("%s:%d skipping unsupported directive %q", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	r.verifyLastParsedMesh()
	return nil
}

// Drop the last parsed mesh if it contains no primitives.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.meshes) - 1
	if lastMeshIndex >= 0 && len(r.meshes[lastMeshIndex].triangles) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.meshes[lastMeshIndex].name)
		r.meshes = r.meshes[:lastMeshIndex]
	}
}

// Find a parsed mesh by name. Returns -1 if no mesh matches.
func (r *wavefrontSceneReader) findMesh(name string) int {
	for index, mesh := range r.meshes {
		if mesh.name == name {
			return index
		}
	}
	return -1
}

// Parse mesh instance definition. Definitions use the following format:
// instance mesh_name tX tY tZ rX rY rZ sX sY sZ
// where:
// - tX, tY, tZ : translation vector
// - rX, rY, rZ : rotation angles around each axis in degrees
// - sX, sY, sZ : scale
//
// The instance transformation scales, then rotates (X first, Z last) and
// finally translates the mesh.
func (r *wavefrontSceneReader) parseMeshInstance(lineTokens []string) (wavefrontInstance, error) {
	if len(lineTokens) != 11 {
		return wavefrontInstance{}, fmt.Errorf(`unsupported syntax for "instance"; expected 10 arguments: mesh_name tX tY tZ rX rY rZ sX sY sZ; got %d`, len(lineTokens)-1)
	}

	meshIndex := r.findMesh(lineTokens[1])
	if meshIndex == -1 {
		return wavefrontInstance{}, fmt.Errorf(`unknown mesh with name "%s"`, lineTokens[1])
	}

	var args [9]float32
	for index := range args {
		v, err := strconv.ParseFloat(lineTokens[index+2], 32)
		if err != nil {
			return wavefrontInstance{}, err
		}
		args[index] = float32(v)
	}

	translation := types.XYZ(args[0], args[1], args[2])
	scale := types.XYZ(args[6], args[7], args[8])
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return wavefrontInstance{}, fmt.Errorf("instance scale must be non-zero; got %v", scale)
	}

	// Convert rotation angles to radians
	const degToRad = math.Pi / 180.0
	rotX := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), args[3]*degToRad)
	rotY := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), args[4]*degToRad)
	rotZ := types.QuatFromAxisAngle(types.XYZ(0, 0, 1), args[5]*degToRad)

	transform := types.IdentityTransform().
		Scale(scale).
		Rotate(rotZ.Mul(rotY.Mul(rotX))).
		Translate(translation)

	return wavefrontInstance{meshIndex: meshIndex, transform: transform}, nil
}

// Parse face definition. Each face definition consists of 3 or more
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// Polygons with more than 3 vertices are split into a triangle fan.
func (r *wavefrontSceneReader) parseFace(mesh *wavefrontMesh, lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	corners := make([]faceVertex, len(lineTokens)-1)
	expIndices := 0
	for arg := range corners {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
			if expIndices > 3 {
				return fmt.Errorf("face argument 0 contains %d indices; expected at most 3", expIndices)
			}
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		fv := faceVertex{v: -1, vt: -1, vn: -1}
		var err error
		fv.v, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}

		// Parse UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			fv.vt, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			fv.vn, err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			mesh.hasNormals = true
		}

		corners[arg] = fv
	}

	// Triangulate as a fan around the first vertex
	for i := 1; i < len(corners)-1; i++ {
		mesh.triangles = append(mesh.triangles, [3]int32{
			r.meshVertex(mesh, corners[0]),
			r.meshVertex(mesh, corners[i]),
			r.meshVertex(mesh, corners[i+1]),
		})
	}

	return nil
}

// Get the index of the mesh vertex for a face vertex, appending it to the
// mesh if it has not been used before.
func (r *wavefrontSceneReader) meshVertex(mesh *wavefrontMesh, fv faceVertex) int32 {
	if index, exists := mesh.vertexMap[fv]; exists {
		return index
	}

	vertex := shape.Vertex{Position: r.vertexList[fv.v]}
	if fv.vt >= 0 {
		vertex.UV = r.uvList[fv.vt]
	}
	if fv.vn >= 0 {
		vertex.Normal = r.normalList[fv.vn].Normalize()
	}

	index := int32(len(mesh.vertices))
	mesh.vertices = append(mesh.vertices, vertex)
	mesh.vertexMap[fv] = index
	return index
}

// Given a face coordinate index token and the list of coordinates return the
// offset into the list. Positive indices are relative to the start of the
// file that defines the face; negative indices refer to the end of the list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	switch {
	case index < 0:
		vOffset = coordListLen + int(index)
	case index > 0:
		vOffset = relOffset + int(index-1)
	default:
		return -1, fmt.Errorf("index 0 is not valid")
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
