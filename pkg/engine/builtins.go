package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/chazu/lignin-terrain/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms terrain-scene Lisp source before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: block-a -> block_a
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Comment conversion: ; line comments -> // line comments
//     zygomys uses // for line comments, not the traditional Lisp ;.
//
// All three transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMaterial wraps a graph.MaterialSpec so it can be passed between builtins.
type sexpMaterial struct {
	spec graph.MaterialSpec
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :texture-index %d :density %.3f)", m.spec.TextureIndex, m.spec.Density)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpPrimitive wraps whichever primitive NodeData a shape builtin produced
// (box, sphere, or cylinder), for consumption by defblock.
type sexpPrimitive struct {
	data graph.NodeData
}

func (p *sexpPrimitive) SexpString(ps *zygo.PrintState) string {
	switch d := p.data.(type) {
	case graph.BoxData:
		return fmt.Sprintf("(box %.0fx%.0fx%.0f)", d.Dimensions.X, d.Dimensions.Y, d.Dimensions.Z)
	case graph.SphereData:
		return fmt.Sprintf("(sphere r=%.1f)", d.Radius)
	case graph.CylinderData:
		return fmt.Sprintf("(cylinder r=%.1f l=%.1f)", d.Radius, d.Length)
	default:
		return "(primitive)"
	}
}
func (p *sexpPrimitive) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt64 extracts an int64 from a Sexp.
func toInt64(s zygo.Sexp) (int64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return int64(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a graph.Axis.
func toAxis(s zygo.Sexp) (graph.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return graph.AxisX, nil
	case "y":
		return graph.AxisY, nil
	case "z":
		return graph.AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toFaceID converts a keyword or string to a graph.FaceID.
func toFaceID(s zygo.Sexp) (graph.FaceID, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected face keyword: %w", err)
	}
	fid := graph.FaceID(name)
	if !graph.ValidFaceIDs[fid] {
		return "", fmt.Errorf("invalid face %q, expected top/bottom/left/right/front/back", name)
	}
	return fid, nil
}

// toSeamKind converts a keyword or string to a graph.SeamKind.
func toSeamKind(s zygo.Sexp) (graph.SeamKind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected seam kind keyword: %w", err)
	}
	switch name {
	case "flat":
		return graph.SeamFlat, nil
	case "stepped":
		return graph.SeamStepped, nil
	case "skirt":
		return graph.SeamSkirt, nil
	case "blend":
		return graph.SeamBlend, nil
	case "overlap":
		return graph.SeamOverlap, nil
	}
	return 0, fmt.Errorf("invalid seam kind %q, expected flat/stepped/skirt/blend/overlap", name)
}

// toAnchorKind converts a keyword or string to a graph.AnchorKind.
func toAnchorKind(s zygo.Sexp) (graph.AnchorKind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected anchor kind keyword: %w", err)
	}
	switch name {
	case "corner":
		return graph.AnchorCorner, nil
	case "edge":
		return graph.AnchorEdge, nil
	case "face":
		return graph.AnchorFace, nil
	case "center":
		return graph.AnchorCenter, nil
	}
	return 0, fmt.Errorf("invalid anchor kind %q, expected corner/edge/face/center", name)
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMaterial extracts a MaterialSpec from a sexpMaterial.
func toMaterial(s zygo.Sexp) (graph.MaterialSpec, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.spec, nil
	}
	return graph.MaterialSpec{}, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Node ID generation
// ---------------------------------------------------------------------------

// nodeCounter provides unique suffixes for anonymous nodes.
var nodeCounter uint64

func nextNodeSuffix() string {
	n := atomic.AddUint64(&nodeCounter, 1)
	return fmt.Sprintf("_anon_%d", n)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all terrain-scene DSL builtins into a zygomys
// environment. The builtins operate on the provided DesignGraph, populating
// it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {

	// -----------------------------------------------------------------------
	// (material :texture-index 3 :density 0.8 :notes "packed dune sand")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := graph.MaterialSpec{}

		if v, ok := pa.kw["texture-index"]; ok {
			i, err := toInt64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: texture-index: %w", err)
			}
			spec.TextureIndex = uint8(i)
		}
		if v, ok := pa.kw["density"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: density: %w", err)
			}
			spec.Density = f
		}
		if v, ok := pa.kw["notes"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: notes: %w", err)
			}
			spec.Notes = s
		}

		return &sexpMaterial{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (box :length 400 :width 200 :height 19 :material sand)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bd := graph.BoxData{PrimKind: graph.PrimBox}

		if v, ok := pa.kw["length"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: length: %w", err)
			}
			bd.Dimensions.X = f
		}
		if v, ok := pa.kw["width"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: width: %w", err)
			}
			bd.Dimensions.Y = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: height: %w", err)
			}
			bd.Dimensions.Z = f
		}
		if v, ok := pa.kw["material"]; ok {
			m, err := toMaterial(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: material: %w", err)
			}
			bd.Material = m
		}

		return &sexpPrimitive{data: bd}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 50 :material rock)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sd := graph.SphereData{PrimKind: graph.PrimSphere}

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			sd.Radius = f
		}
		if v, ok := pa.kw["material"]; ok {
			m, err := toMaterial(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: material: %w", err)
			}
			sd.Material = m
		}

		return &sexpPrimitive{data: sd}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 20 :length 100 :axis :y :material rock)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CylinderData{PrimKind: graph.PrimCylinder, Axis: graph.AxisY}

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			cd.Radius = f
		}
		if v, ok := pa.kw["length"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: length: %w", err)
			}
			cd.Length = f
		}
		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: axis: %w", err)
			}
			cd.Axis = a
		}
		if v, ok := pa.kw["material"]; ok {
			m, err := toMaterial(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: material: %w", err)
			}
			cd.Material = m
		}

		return &sexpPrimitive{data: cd}, nil
	})

	// -----------------------------------------------------------------------
	// (defblock "name" (box ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defblock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defblock requires a name and a shape expression")
		}

		blockName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defblock: name: %w", err)
		}

		prim, ok := args[1].(*sexpPrimitive)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defblock: expected box/sphere/cylinder expression, got %T", args[1])
		}

		id := graph.NewNodeID("defblock", blockName)
		node := &graph.Node{
			ID:   id,
			Kind: graph.NodePrimitive,
			Name: blockName,
			Data: prim.data,
		}
		g.AddNode(node)

		return &sexpNodeRef{id: id, name: blockName}, nil
	})

	// -----------------------------------------------------------------------
	// (block "name")
	// -----------------------------------------------------------------------
	env.AddFunction("block", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("block requires a name argument")
		}

		blockName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("block: name: %w", err)
		}

		n := g.Lookup(blockName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("block: no block named %q", blockName)
		}

		return &sexpNodeRef{id: n.ID, name: blockName}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (block "dune") :at (vec3 0 0 19))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a block reference as first argument")
		}

		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: block: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		// Generate a deterministic ID from the child node name.
		childNode := g.Get(childID)
		idPath := "place/" + nextNodeSuffix()
		if childNode != nil && childNode.Name != "" {
			idPath = "place/" + childNode.Name
		}
		id := graph.NewNodeID(idPath)

		node := &graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		}
		g.AddNode(node)

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (seam :kind :flat :block-a ref :face-a :left :block-b ref :face-b :front
	//       :clearance 0.5 :anchors (list ...))
	//
	// Note: the string-preprocessing pass turns keywords into string keys
	// without converting their hyphens, so the hyphenated spellings below
	// (:block-a, :face-a etc.) are both what a caller types in source and
	// the keys looked up here.
	// -----------------------------------------------------------------------
	env.AddFunction("seam", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sd := graph.SeamData{Kind: graph.SeamFlat}

		if v, ok := pa.kw["kind"]; ok {
			k, err := toSeamKind(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: kind: %w", err)
			}
			sd.Kind = k
		}
		if v, ok := pa.kw["block-a"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: block-a: %w", err)
			}
			sd.BlockA = id
		}
		if v, ok := pa.kw["face-a"]; ok {
			f, err := toFaceID(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: face-a: %w", err)
			}
			sd.FaceA = f
		}
		if v, ok := pa.kw["block-b"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: block-b: %w", err)
			}
			sd.BlockB = id
		}
		if v, ok := pa.kw["face-b"]; ok {
			f, err := toFaceID(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: face-b: %w", err)
			}
			sd.FaceB = f
		}
		if v, ok := pa.kw["clearance"]; ok {
			c, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: clearance: %w", err)
			}
			sd.Clearance = c
		}
		if v, ok := pa.kw["lod-delta"]; ok {
			d, err := toInt64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: lod-delta: %w", err)
			}
			sd.Params = graph.FlatSeamParams{LODDelta: int(d)}
		} else {
			sd.Params = graph.FlatSeamParams{}
		}
		if v, ok := pa.kw["anchors"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seam: anchors: %w", err)
			}
			for _, item := range items {
				aid, err := toNodeRef(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("seam: anchor entry: %w", err)
				}
				sd.Anchors = append(sd.Anchors, aid)
			}
		}

		idPath := "seam/" + nextNodeSuffix()
		id := graph.NewNodeID(idPath)

		node := &graph.Node{
			ID:   id,
			Kind: graph.NodeSeam,
			Data: sd,
		}
		g.AddNode(node)

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (anchor :kind :corner :position (vec3 0 50 0) :snap-radius 8 :seam ref)
	// -----------------------------------------------------------------------
	env.AddFunction("anchor", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		ad := graph.AnchorData{Kind: graph.AnchorCorner}

		if v, ok := pa.kw["kind"]; ok {
			k, err := toAnchorKind(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("anchor: kind: %w", err)
			}
			ad.Kind = k
		}
		if v, ok := pa.kw["position"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("anchor: position: %w", err)
			}
			ad.Position = vec
		}
		if v, ok := pa.kw["snap-radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("anchor: snap-radius: %w", err)
			}
			ad.SnapRadius = f
		}
		if v, ok := pa.kw["seam"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("anchor: seam: %w", err)
			}
			ad.SeamRef = id
		}

		idPath := "anchor/" + nextNodeSuffix()
		id := graph.NewNodeID(idPath)

		node := &graph.Node{
			ID:   id,
			Kind: graph.NodeAnchor,
			Data: ad,
		}
		g.AddNode(node)

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (carve :target ref :face :top :position (vec3 0 0 0) :radius 5 :depth 10)
	// -----------------------------------------------------------------------
	env.AddFunction("carve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CarveData{}

		if v, ok := pa.kw["target"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("carve: target: %w", err)
			}
			cd.TargetBlock = id
		}
		if v, ok := pa.kw["face"]; ok {
			f, err := toFaceID(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("carve: face: %w", err)
			}
			cd.Face = f
		}
		if v, ok := pa.kw["position"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("carve: position: %w", err)
			}
			cd.Position = vec
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("carve: radius: %w", err)
			}
			cd.Radius = f
		}
		if v, ok := pa.kw["depth"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("carve: depth: %w", err)
			}
			cd.Depth = f
		}

		idPath := "carve/" + nextNodeSuffix()
		id := graph.NewNodeID(idPath)

		node := &graph.Node{
			ID:   id,
			Kind: graph.NodeCarve,
			Data: cd,
		}
		g.AddNode(node)

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (scene "name" (place ...) (place ...) (seam ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("scene requires a name argument")
		}

		sceneName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scene: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("scene: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		id := graph.NewNodeID("scene", sceneName)
		node := &graph.Node{
			ID:       id,
			Kind:     graph.NodeScene,
			Name:     sceneName,
			Children: children,
			Data:     graph.SceneData{},
		}
		g.AddNode(node)
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: sceneName}, nil
	})
}
