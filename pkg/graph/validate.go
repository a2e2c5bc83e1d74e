package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs all Tier 1 structural validation checks on the design graph
// and returns a slice of validation errors. An empty slice means the graph is
// valid. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateFaceIDs(g)...)
	errs = append(errs, validateSeamBlocks(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, material)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	// Tier 1: structural validation (existing).
	tier1 := Validate(g)

	// Tier 2: geometric validation.
	tier2Errs, tier2Warnings := validateGeometry(g)

	// Tier 3: material warnings.
	tier3Warnings := validateMaterial(g)

	// Separate Tier 1 findings into errors and warnings.
	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Warnings = append(result.Warnings, tier3Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		// Walk Children edges.
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every NodeID referenced anywhere in the graph
// points to a node that actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		// Check Children references.
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		// Check kind-specific data references.
		switch d := node.Data.(type) {
		case SeamData:
			if !d.BlockA.IsZero() {
				if _, ok := g.Nodes[d.BlockA]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("seam block_a reference %s does not exist", d.BlockA.Short()),
						Severity: SeverityError,
					})
				}
			}
			if !d.BlockB.IsZero() {
				if _, ok := g.Nodes[d.BlockB]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("seam block_b reference %s does not exist", d.BlockB.Short()),
						Severity: SeverityError,
					})
				}
			}
			for _, aid := range d.Anchors {
				if _, ok := g.Nodes[aid]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("seam anchor reference %s does not exist", aid.Short()),
						Severity: SeverityError,
					})
				}
			}

		case CarveData:
			if !d.TargetBlock.IsZero() {
				if _, ok := g.Nodes[d.TargetBlock]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("carve target_block reference %s does not exist", d.TargetBlock.Short()),
						Severity: SeverityError,
					})
				}
			}

		case AnchorData:
			if !d.SeamRef.IsZero() {
				if _, ok := g.Nodes[d.SeamRef]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("anchor seam_ref reference %s does not exist", d.SeamRef.Short()),
						Severity: SeverityError,
					})
				}
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	// Check that every NameIndex entry references an existing node.
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	// Check injectivity: build a reverse map from NodeID to name, looking at
	// actual node Name fields. If two nodes share the same non-empty Name, error.
	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	// Check that each root references an existing node.
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	// Orphan detection: BFS from all roots through Children edges.
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok {
			if !reachable[rid] {
				reachable[rid] = true
				queue = append(queue, rid)
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}

		// Traverse Children edges.
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}

		// Also traverse seam/carve/anchor data references to reach
		// nodes that are only referenced via data fields.
		switch d := node.Data.(type) {
		case SeamData:
			if !d.BlockA.IsZero() && !reachable[d.BlockA] {
				reachable[d.BlockA] = true
				queue = append(queue, d.BlockA)
			}
			if !d.BlockB.IsZero() && !reachable[d.BlockB] {
				reachable[d.BlockB] = true
				queue = append(queue, d.BlockB)
			}
			for _, aid := range d.Anchors {
				if !reachable[aid] {
					reachable[aid] = true
					queue = append(queue, aid)
				}
			}
		case CarveData:
			if !d.TargetBlock.IsZero() && !reachable[d.TargetBlock] {
				reachable[d.TargetBlock] = true
				queue = append(queue, d.TargetBlock)
			}
		case AnchorData:
			if !d.SeamRef.IsZero() && !reachable[d.SeamRef] {
				reachable[d.SeamRef] = true
				queue = append(queue, d.SeamRef)
			}
		}
	}

	// Report any unreachable nodes as warnings.
	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateFaceIDs checks that every FaceID used in SeamData is a valid face
// (top/bottom/left/right/front/back).
func validateFaceIDs(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		if sd, ok := node.Data.(SeamData); ok {
			if !ValidFaceIDs[sd.FaceA] {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("invalid face_a %q", sd.FaceA),
					Severity: SeverityError,
				})
			}
			if !ValidFaceIDs[sd.FaceB] {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("invalid face_b %q", sd.FaceB),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateSeamBlocks checks that seam nodes reference primitive nodes for
// BlockA and BlockB, and that a seam does not reference the same block for
// both (no self-seams).
func validateSeamBlocks(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		sd, ok := node.Data.(SeamData)
		if !ok {
			continue
		}

		// Self-seam check.
		if sd.BlockA == sd.BlockB {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "seam references the same block for both block_a and block_b (self-seam)",
				Severity: SeverityError,
			})
		}

		// BlockA must be a primitive.
		if blockA, ok := g.Nodes[sd.BlockA]; ok {
			if blockA.Kind != NodePrimitive {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("seam block_a %s is %s, not primitive", sd.BlockA.Short(), blockA.Kind),
					Severity: SeverityError,
				})
			}
		}

		// BlockB must be a primitive.
		if blockB, ok := g.Nodes[sd.BlockB]; ok {
			if blockB.Kind != NodePrimitive {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("seam block_b %s is %s, not primitive", sd.BlockB.Short(), blockB.Kind),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}
