package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-ase/pkg/math"
)

// maxASEElements bounds declared list sizes so a corrupt count cannot
// trigger a huge allocation.
const maxASEElements = 1 << 24

// maxASEMaterials bounds material and submaterial indices.
const maxASEMaterials = 1 << 16

type aseParser struct {
	lex  *aseLexer
	opts ASEParseOptions
	file *ASEFile
}

func newASEParser(data []byte, opts ASEParseOptions) *aseParser {
	return &aseParser{
		lex:  newASELexer(data),
		opts: opts,
		file: &ASEFile{
			IsASK:         opts.IsASK,
			FrameSpeed:    30,
			TicksPerFrame: 160,
		},
	}
}

func (p *aseParser) warnf(format string, args ...any) {
	p.file.Warnings = append(p.file.Warnings, fmt.Sprintf(format, args...))
}

func (p *aseParser) readName(what string) (string, error) {
	tok, err := p.lex.readValue(what)
	if err != nil {
		return "", err
	}
	return p.opts.Charset.String(tok.text), nil
}

func (p *aseParser) readCount(what string) (int, error) {
	n, err := p.lex.readInt(what)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > maxASEElements {
		return 0, fmt.Errorf("%w: line %d: %s %d out of range", ErrMalformedASE, p.lex.line, what, n)
	}
	return n, nil
}

func (p *aseParser) readIndex(what string) (int, error) {
	return p.readCount(what)
}

// block consumes a '{', then hands every directive to handle until the
// matching '}'. Handlers must consume the directive's arguments.
func (p *aseParser) block(handle func(tok aseToken) error) error {
	open := p.lex.next()
	if open.kind != tokOpen {
		return p.lex.errorf(open, "expected '{', found %s", open.kind)
	}
	for {
		tok := p.lex.next()
		switch tok.kind {
		case tokClose:
			return nil
		case tokEOF:
			return fmt.Errorf("%w: line %d: unterminated block", ErrTruncatedASE, tok.line)
		case tokDirective:
			if err := handle(tok); err != nil {
				return err
			}
		case tokOpen:
			if err := p.lex.skipBlock(); err != nil {
				return err
			}
		}
	}
}

func (p *aseParser) parse() error {
	first := p.lex.next()
	if first.kind != tokDirective || string(first.text) != "3DSMAX_ASCIIEXPORT" {
		return ErrInvalidASEHeader
	}
	if err := p.lex.skipArgs(); err != nil {
		return err
	}

	for {
		tok := p.lex.next()
		switch tok.kind {
		case tokEOF:
			return nil
		case tokDirective:
			if err := p.topLevel(tok); err != nil {
				return err
			}
		case tokOpen:
			if err := p.lex.skipBlock(); err != nil {
				return err
			}
		case tokClose:
			p.warnf("line %d: unbalanced '}'", tok.line)
		}
	}
}

func (p *aseParser) topLevel(tok aseToken) error {
	switch string(tok.text) {
	case "SCENE":
		return p.block(p.sceneDirective)
	case "MATERIAL_LIST":
		return p.materialList()
	case "GEOMOBJECT":
		return p.object(false)
	case "HELPEROBJECT":
		return p.object(true)
	default:
		// COMMENT, CAMERAOBJECT, LIGHTOBJECT, SHAPEOBJECT, GROUP ...
		return p.lex.skipArgs()
	}
}

func (p *aseParser) sceneDirective(tok aseToken) error {
	var err error
	switch string(tok.text) {
	case "SCENE_FIRSTFRAME":
		p.file.FirstFrame, err = p.lex.readUint("first frame")
	case "SCENE_LASTFRAME":
		p.file.LastFrame, err = p.lex.readUint("last frame")
	case "SCENE_FRAMESPEED":
		p.file.FrameSpeed, err = p.lex.readUint("frame speed")
	case "SCENE_TICKSPERFRAME":
		p.file.TicksPerFrame, err = p.lex.readUint("ticks per frame")
	case "SCENE_AMBIENT_STATIC":
		p.file.Ambient, err = p.lex.readVec3("ambient color")
	default:
		err = p.lex.skipArgs()
	}
	return err
}

// placeMaterial stores mat at index idx, filling gaps with blank materials.
func (p *aseParser) placeMaterial(list []*ASEMaterial, idx int, mat *ASEMaterial) []*ASEMaterial {
	switch {
	case idx < len(list):
		p.warnf("material %d defined twice", idx)
		list[idx] = mat
	default:
		if idx > len(list) {
			p.warnf("material %d defined before %d", idx, len(list))
		}
		for len(list) < idx {
			list = append(list, NewASEMaterial(""))
		}
		list = append(list, mat)
	}
	return list
}

func (p *aseParser) materialList() error {
	return p.block(func(tok aseToken) error {
		switch string(tok.text) {
		case "MATERIAL":
			idx, err := p.lex.readInt("material index")
			if err != nil {
				return err
			}
			if idx < 0 || idx >= maxASEMaterials {
				return p.lex.errorf(tok, "material index %d out of range", idx)
			}
			mat, err := p.material()
			if err != nil {
				return err
			}
			p.file.Materials = p.placeMaterial(p.file.Materials, idx, mat)
			return nil
		default:
			return p.lex.skipArgs()
		}
	})
}

func (p *aseParser) material() (*ASEMaterial, error) {
	mat := NewASEMaterial("")
	err := p.block(func(tok aseToken) error {
		var err error
		var f float32
		switch string(tok.text) {
		case "MATERIAL_NAME":
			mat.Name, err = p.readName("material name")
		case "MATERIAL_AMBIENT":
			mat.Ambient, err = p.lex.readVec3("ambient color")
		case "MATERIAL_DIFFUSE":
			mat.Diffuse, err = p.lex.readVec3("diffuse color")
		case "MATERIAL_SPECULAR":
			mat.Specular, err = p.lex.readVec3("specular color")
		case "MATERIAL_SHINE":
			f, err = p.lex.readFloat("shininess")
			mat.SpecularExponent = f * 15
		case "MATERIAL_SHINESTRENGTH":
			mat.ShininessStrength, err = p.lex.readFloat("shininess strength")
		case "MATERIAL_TRANSPARENCY":
			f, err = p.lex.readFloat("transparency")
			mat.Opacity = 1 - f
		case "MATERIAL_SELFILLUM":
			f, err = p.lex.readFloat("self illumination")
			mat.Emissive = [3]float32{f, f, f}
		case "MATERIAL_SHADING":
			var v aseToken
			v, err = p.lex.readValue("shading")
			mat.Shading = parseShading(string(v.text))
		case "MATERIAL_TWOSIDED":
			mat.TwoSided = true
			err = p.lex.skipArgs()
		case "MAP_DIFFUSE":
			err = p.texture(&mat.TexDiffuse)
		case "MAP_SPECULAR":
			err = p.texture(&mat.TexSpecular)
		case "MAP_OPACITY":
			err = p.texture(&mat.TexOpacity)
		case "MAP_SELFILLUM":
			err = p.texture(&mat.TexEmissive)
		case "MAP_AMBIENT":
			err = p.texture(&mat.TexAmbient)
		case "MAP_BUMP":
			err = p.texture(&mat.TexBump)
		case "MAP_SHINE":
			err = p.texture(&mat.TexShininess)
		case "SUBMATERIAL":
			var idx int
			idx, err = p.lex.readInt("submaterial index")
			if err != nil {
				return err
			}
			if idx < 0 || idx >= maxASEMaterials {
				return p.lex.errorf(tok, "submaterial index %d out of range", idx)
			}
			var sub *ASEMaterial
			if sub, err = p.material(); err != nil {
				return err
			}
			mat.Submaterials = p.placeMaterial(mat.Submaterials, idx, sub)
		default:
			err = p.lex.skipArgs()
		}
		return err
	})
	return mat, err
}

func (p *aseParser) texture(tex *ASETexture) error {
	return p.block(func(tok aseToken) error {
		var err error
		switch string(tok.text) {
		case "BITMAP":
			tex.MapName, err = p.readName("bitmap path")
		case "MAP_AMOUNT":
			var f float32
			f, err = p.lex.readFloat("map amount")
			tex.Blend = &f
		case "UVW_U_OFFSET":
			tex.OffsetUV.X, err = p.lex.readFloat("u offset")
		case "UVW_V_OFFSET":
			tex.OffsetUV.Y, err = p.lex.readFloat("v offset")
		case "UVW_U_TILING":
			tex.ScaleUV.X, err = p.lex.readFloat("u tiling")
		case "UVW_V_TILING":
			tex.ScaleUV.Y, err = p.lex.readFloat("v tiling")
		case "UVW_ANGLE":
			tex.Rotation, err = p.lex.readFloat("uvw angle")
		default:
			err = p.lex.skipArgs()
		}
		return err
	})
}

func (p *aseParser) object(helper bool) error {
	mesh := NewASEMesh()
	mesh.IsHelper = helper
	haveTM := false

	err := p.block(func(tok aseToken) error {
		var err error
		switch string(tok.text) {
		case "NODE_NAME":
			mesh.Name, err = p.readName("node name")
		case "NODE_PARENT":
			mesh.Parent, err = p.readName("parent name")
		case "NODE_TM":
			// Only the first NODE_TM belongs to the object itself; a second
			// one describes a target node.
			if haveTM {
				return p.lex.skipArgs()
			}
			haveTM = true
			err = p.nodeTM(mesh)
		case "MESH":
			err = p.mesh(mesh)
		case "TM_ANIMATION":
			err = p.animation(mesh)
		case "MATERIAL_REF":
			mesh.MaterialIndex, err = p.lex.readUint("material reference")
		default:
			err = p.lex.skipArgs()
		}
		return err
	})
	if err != nil {
		return err
	}

	p.file.Meshes = append(p.file.Meshes, mesh)
	return nil
}

func (p *aseParser) nodeTM(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		name := string(tok.text)
		if len(name) == 7 && strings.HasPrefix(name, "TM_ROW") && name[6] >= '0' && name[6] <= '3' {
			r := int(name[6] - '0')
			v, err := p.lex.readVec3("matrix row")
			if err != nil {
				return err
			}
			w := float32(0)
			if r == 3 {
				w = 1
			}
			mesh.Transform.SetRow(r, [4]float32{v[0], v[1], v[2], w})
			return nil
		}
		return p.lex.skipArgs()
	})
}

func (p *aseParser) mesh(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		var err error
		var n int
		switch string(tok.text) {
		case "MESH_NUMVERTEX":
			if n, err = p.readCount("vertex count"); err == nil {
				mesh.Positions = make([][3]float32, n)
			}
		case "MESH_NUMFACES":
			if n, err = p.readCount("face count"); err == nil {
				mesh.Faces = make([]ASEFace, n)
			}
		case "MESH_VERTEX_LIST":
			err = p.vec3List("MESH_VERTEX", &mesh.Positions)
		case "MESH_FACE_LIST":
			err = p.faceList(mesh)
		case "MESH_NUMTVERTEX":
			if n, err = p.readCount("texture vertex count"); err == nil {
				mesh.UVs[0] = make([][3]float32, n)
			}
		case "MESH_TVERTLIST":
			err = p.vec3List("MESH_TVERT", &mesh.UVs[0])
		case "MESH_TFACELIST":
			err = p.uvFaceList(mesh, 0)
		case "MESH_NUMCVERTEX":
			if n, err = p.readCount("color vertex count"); err == nil {
				mesh.Colors = make([][4]float32, n)
			}
		case "MESH_CVERTLIST":
			err = p.colorList(mesh)
		case "MESH_CFACELIST":
			err = p.triples("MESH_CFACE", len(mesh.Faces), func(f int, idx [3]uint32) {
				mesh.Faces[f].ColorIndices = idx
			})
		case "MESH_NORMALS":
			err = p.normals(mesh)
		case "MESH_MAPPINGCHANNEL":
			err = p.mappingChannel(mesh)
		case "MESH_NUMBONE":
			if n, err = p.readCount("bone count"); err == nil {
				mesh.Bones = make([]ASEBone, n)
			}
		case "MESH_BONE_LIST":
			err = p.boneList(mesh)
		case "MESH_BONE_VERTEX_LIST":
			err = p.boneVertexList(mesh)
		default:
			err = p.lex.skipArgs()
		}
		return err
	})
}

// vec3List reads "*<directive> index x y z" entries into list.
func (p *aseParser) vec3List(directive string, list *[][3]float32) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != directive {
			return p.lex.skipArgs()
		}
		idx, err := p.readIndex("element index")
		if err != nil {
			return err
		}
		v, err := p.lex.readVec3("coordinate")
		if err != nil {
			return err
		}
		for len(*list) <= idx {
			*list = append(*list, [3]float32{})
		}
		(*list)[idx] = v
		return p.lex.skipArgs()
	})
}

func (p *aseParser) colorList(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != "MESH_VERTCOL" {
			return p.lex.skipArgs()
		}
		idx, err := p.readIndex("color index")
		if err != nil {
			return err
		}
		c, err := p.lex.readVec3("vertex color")
		if err != nil {
			return err
		}
		for len(mesh.Colors) <= idx {
			mesh.Colors = append(mesh.Colors, [4]float32{})
		}
		mesh.Colors[idx] = [4]float32{c[0], c[1], c[2], 1}
		return p.lex.skipArgs()
	})
}

func (p *aseParser) faceList(mesh *ASEMesh) error {
	cur := -1
	return p.block(func(tok aseToken) error {
		switch string(tok.text) {
		case "MESH_FACE":
			idx, err := p.readIndex("face index")
			if err != nil {
				return err
			}
			face, err := p.faceCorners()
			if err != nil {
				return err
			}
			for len(mesh.Faces) <= idx {
				mesh.Faces = append(mesh.Faces, ASEFace{})
			}
			mesh.Faces[idx].Indices = face
			cur = idx
			return nil
		case "MESH_SMOOTHING":
			groups, err := p.smoothing()
			if err != nil {
				return err
			}
			if cur >= 0 {
				mesh.Faces[cur].SmoothGroup = groups
			}
			return nil
		case "MESH_MTLID":
			id, err := p.lex.readUint("material id")
			if err != nil {
				return err
			}
			if cur >= 0 {
				mesh.Faces[cur].Submaterial = id
			}
			return nil
		default:
			return p.lex.skipArgs()
		}
	})
}

// faceCorners reads "A: i B: j C: k AB: .. BC: .. CA: ..". Labels may be
// glued to their value ("A:0").
func (p *aseParser) faceCorners() ([3]uint32, error) {
	var corners [3]uint32
	for p.lex.peek().kind == tokWord {
		label := p.lex.next()
		key, val, ok := strings.Cut(string(label.text), ":")
		if !ok {
			continue
		}

		var v uint32
		if val == "" {
			n, err := p.lex.readUint("face corner")
			if err != nil {
				return corners, err
			}
			v = n
		} else {
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return corners, p.lex.errorf(label, "invalid face corner %q", label.text)
			}
			v = uint32(n)
		}

		switch strings.ToUpper(key) {
		case "A":
			corners[0] = v
		case "B":
			corners[1] = v
		case "C":
			corners[2] = v
		}
	}
	return corners, nil
}

// smoothing reads a comma separated list of smoothing groups (1..32) and
// returns them as a bit mask. An empty list yields 0.
func (p *aseParser) smoothing() (uint32, error) {
	var groups uint32
	for p.lex.peek().kind == tokWord {
		tok := p.lex.next()
		for _, part := range strings.Split(string(tok.text), ",") {
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, p.lex.errorf(tok, "invalid smoothing group %q", part)
			}
			if n >= 1 && n <= 32 {
				groups |= 1 << (n - 1)
			}
		}
	}
	return groups, nil
}

// triples reads "*<directive> face a b c" entries, ignoring faces past numFaces.
func (p *aseParser) triples(directive string, numFaces int, set func(face int, idx [3]uint32)) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != directive {
			return p.lex.skipArgs()
		}
		f, err := p.readIndex("face index")
		if err != nil {
			return err
		}
		var idx [3]uint32
		for k := range idx {
			if idx[k], err = p.lex.readUint("corner index"); err != nil {
				return err
			}
		}
		if f >= numFaces {
			p.warnf("line %d: %s references face %d of %d", tok.line, directive, f, numFaces)
		} else {
			set(f, idx)
		}
		return p.lex.skipArgs()
	})
}

func (p *aseParser) uvFaceList(mesh *ASEMesh, channel int) error {
	return p.triples("MESH_TFACE", len(mesh.Faces), func(f int, idx [3]uint32) {
		mesh.Faces[f].UVIndices[channel] = idx
	})
}

func (p *aseParser) mappingChannel(mesh *ASEMesh) error {
	n, err := p.lex.readInt("mapping channel")
	if err != nil {
		return err
	}
	channel := n - 1
	if channel < 1 || channel >= MaxUVChannels {
		p.warnf("mapping channel %d ignored, at most %d channels are supported", n, MaxUVChannels)
		return p.lex.skipArgs()
	}

	return p.block(func(tok aseToken) error {
		var err error
		switch string(tok.text) {
		case "MESH_NUMTVERTEX":
			var count int
			if count, err = p.readCount("texture vertex count"); err == nil {
				mesh.UVs[channel] = make([][3]float32, count)
			}
		case "MESH_TVERTLIST":
			err = p.vec3List("MESH_TVERT", &mesh.UVs[channel])
		case "MESH_TFACELIST":
			err = p.uvFaceList(mesh, channel)
		default:
			err = p.lex.skipArgs()
		}
		return err
	})
}

func (p *aseParser) normals(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != "MESH_VERTEXNORMAL" {
			// MESH_FACENORMAL is recomputed when needed.
			return p.lex.skipArgs()
		}
		idx, err := p.readIndex("normal index")
		if err != nil {
			return err
		}
		n, err := p.lex.readVec3("normal")
		if err != nil {
			return err
		}
		if mesh.Normals == nil {
			mesh.Normals = make([][3]float32, len(mesh.Positions))
		}
		for len(mesh.Normals) <= idx {
			mesh.Normals = append(mesh.Normals, [3]float32{})
		}
		mesh.Normals[idx] = n
		return p.lex.skipArgs()
	})
}

func (p *aseParser) boneList(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != "MESH_BONE_NAME" {
			return p.lex.skipArgs()
		}
		idx, err := p.readIndex("bone index")
		if err != nil {
			return err
		}
		name, err := p.readName("bone name")
		if err != nil {
			return err
		}
		if idx >= len(mesh.Bones) {
			p.warnf("line %d: bone index %d out of range (%d bones)", tok.line, idx, len(mesh.Bones))
			return nil
		}
		mesh.Bones[idx].Name = name
		return nil
	})
}

func (p *aseParser) boneVertexList(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != "MESH_BONE_VERTEX" {
			return p.lex.skipArgs()
		}
		idx, err := p.readIndex("vertex index")
		if err != nil {
			return err
		}
		// The vertex position is repeated here; the vertex list wins.
		if _, err := p.lex.readVec3("bone vertex position"); err != nil {
			return err
		}

		var weights []ASEBoneWeight
		for p.lex.peek().kind == tokWord {
			bone, err := p.lex.readInt("bone index")
			if err != nil {
				return err
			}
			w, err := p.lex.readFloat("bone weight")
			if err != nil {
				return err
			}
			switch {
			case bone == -1:
			case bone < 0 || bone >= len(mesh.Bones):
				p.warnf("line %d: bone index %d out of range (%d bones)", tok.line, bone, len(mesh.Bones))
			default:
				weights = append(weights, ASEBoneWeight{Bone: bone, Weight: w})
			}
		}

		for len(mesh.BoneVertices) <= idx {
			mesh.BoneVertices = append(mesh.BoneVertices, nil)
		}
		mesh.BoneVertices[idx] = weights
		return nil
	})
}

func (p *aseParser) animation(mesh *ASEMesh) error {
	return p.block(func(tok aseToken) error {
		switch string(tok.text) {
		case "CONTROL_POS_TRACK":
			return p.positionKeys(mesh, "CONTROL_POS_SAMPLE")
		case "CONTROL_POS_TCB":
			return p.positionKeys(mesh, "CONTROL_TCB_POS_KEY")
		case "CONTROL_POS_BEZIER":
			return p.positionKeys(mesh, "CONTROL_BEZIER_POS_KEY")
		case "CONTROL_ROT_TRACK":
			return p.rotationKeys(mesh, "CONTROL_ROT_SAMPLE")
		case "CONTROL_ROT_TCB":
			return p.rotationKeys(mesh, "CONTROL_TCB_ROT_KEY")
		default:
			return p.lex.skipArgs()
		}
	})
}

func (p *aseParser) positionKeys(mesh *ASEMesh, directive string) error {
	return p.block(func(tok aseToken) error {
		if string(tok.text) != directive {
			return p.lex.skipArgs()
		}
		t, err := p.lex.readFloat("key time")
		if err != nil {
			return err
		}
		v, err := p.lex.readVec3("key position")
		if err != nil {
			return err
		}
		mesh.Anim.PositionKeys = append(mesh.Anim.PositionKeys, ASEVectorKey{Time: float64(t), Value: v})
		return p.lex.skipArgs() // tangents, TCB parameters
	})
}

// rotationKeys reads axis-angle keys. Each key is relative to the previous
// one, so the absolute rotation is the running product.
func (p *aseParser) rotationKeys(mesh *ASEMesh, directive string) error {
	cur := math.QuatIdentity()
	if n := len(mesh.Anim.RotationKeys); n > 0 {
		cur = mesh.Anim.RotationKeys[n-1].Value
	}
	return p.block(func(tok aseToken) error {
		if string(tok.text) != directive {
			return p.lex.skipArgs()
		}
		t, err := p.lex.readFloat("key time")
		if err != nil {
			return err
		}
		axis, err := p.lex.readVec3("rotation axis")
		if err != nil {
			return err
		}
		angle, err := p.lex.readFloat("rotation angle")
		if err != nil {
			return err
		}
		delta := math.QuatFromAxisAngle(math.Vec3{X: axis[0], Y: axis[1], Z: axis[2]}, angle)
		cur = cur.Mul(delta).Normalize()
		mesh.Anim.RotationKeys = append(mesh.Anim.RotationKeys, ASEQuatKey{Time: float64(t), Value: cur})
		return p.lex.skipArgs()
	})
}

// Validate drops data the assembly stage cannot index safely: meshes whose
// faces reference missing vertices are marked Skip, and out-of-range UV
// channels, vertex colors and mismatched normals are discarded. Each problem
// is appended to Warnings and also returned. Validate is idempotent, so a
// parse result can be validated again after it has been edited in code.
func (f *ASEFile) Validate() []string {
	n := len(f.Warnings)
	for _, m := range f.Meshes {
		f.validateMesh(m)
	}
	return f.Warnings[n:]
}

func (f *ASEFile) warnf(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

func (f *ASEFile) validateMesh(m *ASEMesh) {
	if m.IsHelper || m.Skip {
		return
	}
	for i, face := range m.Faces {
		for _, idx := range face.Indices {
			if int(idx) >= len(m.Positions) {
				f.warnf("mesh %q: face %d references vertex %d of %d, mesh skipped", m.Name, i, idx, len(m.Positions))
				m.Skip = true
				return
			}
		}
	}

	for c := range m.UVs {
		if len(m.UVs[c]) == 0 {
			continue
		}
		if !facesIndexWithin(m.Faces, len(m.UVs[c]), func(face *ASEFace) [3]uint32 { return face.UVIndices[c] }) {
			f.warnf("mesh %q: texture faces of channel %d out of range, channel dropped", m.Name, c)
			m.UVs[c] = nil
			continue
		}
		m.UVComponents[c] = 2
		for _, uv := range m.UVs[c] {
			if uv[2] != 0 {
				m.UVComponents[c] = 3
				break
			}
		}
	}

	if len(m.Colors) > 0 && !facesIndexWithin(m.Faces, len(m.Colors), func(face *ASEFace) [3]uint32 { return face.ColorIndices }) {
		f.warnf("mesh %q: color faces out of range, vertex colors dropped", m.Name)
		m.Colors = nil
	}

	if len(m.Normals) > 0 && len(m.Normals) != len(m.Positions) {
		f.warnf("mesh %q: %d normals for %d vertices, normals will be regenerated", m.Name, len(m.Normals), len(m.Positions))
		m.Normals = nil
	}

	if len(m.Bones) == 0 {
		m.BoneVertices = nil
	}
}

func facesIndexWithin(faces []ASEFace, n int, indices func(*ASEFace) [3]uint32) bool {
	for i := range faces {
		for _, idx := range indices(&faces[i]) {
			if int(idx) >= n {
				return false
			}
		}
	}
	return true
}
