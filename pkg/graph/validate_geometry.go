package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2 — Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateNonZeroDimensions(g)...)
	errs = append(errs, validateDuplicateSeams(g)...)

	anchorWarnings := validateAnchorReach(g)
	warnings = append(warnings, anchorWarnings...)

	return errs, warnings
}

// validateNonZeroDimensions checks that every primitive block has positive
// extents (box dimensions, sphere/cylinder radius, cylinder length).
func validateNonZeroDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch bd := node.Data.(type) {
		case BoxData:
			if bd.Dimensions.X <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("box dimension X is %.4f, must be positive", bd.Dimensions.X),
					Severity: SeverityError,
				})
			}
			if bd.Dimensions.Y <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("box dimension Y is %.4f, must be positive", bd.Dimensions.Y),
					Severity: SeverityError,
				})
			}
			if bd.Dimensions.Z <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("box dimension Z is %.4f, must be positive", bd.Dimensions.Z),
					Severity: SeverityError,
				})
			}
		case SphereData:
			if bd.Radius <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("sphere radius is %.4f, must be positive", bd.Radius),
					Severity: SeverityError,
				})
			}
		case CylinderData:
			if bd.Radius <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cylinder radius is %.4f, must be positive", bd.Radius),
					Severity: SeverityError,
				})
			}
			if bd.Length <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cylinder length is %.4f, must be positive", bd.Length),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// seamKey produces a canonical key for a pair of blocks + faces so that
// (A,faceA,B,faceB) and (B,faceB,A,faceA) are treated as the same seam.
type seamKey struct {
	blockLo, blockHi NodeID
	faceLo, faceHi   FaceID
}

func makeSeamKey(blockA NodeID, faceA FaceID, blockB NodeID, faceB FaceID) seamKey {
	// Canonical ordering: compare the raw bytes of the NodeIDs.
	if blockA.String() < blockB.String() {
		return seamKey{blockLo: blockA, blockHi: blockB, faceLo: faceA, faceHi: faceB}
	}
	if blockA.String() > blockB.String() {
		return seamKey{blockLo: blockB, blockHi: blockA, faceLo: faceB, faceHi: faceA}
	}
	// Same block (self-seam, caught by Tier 1), order by face.
	if string(faceA) <= string(faceB) {
		return seamKey{blockLo: blockA, blockHi: blockB, faceLo: faceA, faceHi: faceB}
	}
	return seamKey{blockLo: blockB, blockHi: blockA, faceLo: faceB, faceHi: faceA}
}

// validateDuplicateSeams checks that no two seam nodes connect the same pair
// of blocks on the same faces.
func validateDuplicateSeams(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	seen := make(map[seamKey]NodeID) // first seam node that used this key

	for _, node := range g.Nodes {
		sd, ok := node.Data.(SeamData)
		if !ok {
			continue
		}

		key := makeSeamKey(sd.BlockA, sd.FaceA, sd.BlockB, sd.FaceB)
		if firstID, exists := seen[key]; exists {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("duplicate seam: same block-face pair already seamed by node %s", firstID.Short()),
				Severity: SeverityError,
			})
		} else {
			seen[key] = node.ID
		}
	}

	return errs
}

// blockExtent returns the extent of a primitive block along the axis
// perpendicular to the given face:
//   - top/bottom faces measure extent along Y
//   - left/right faces measure extent along X
//   - front/back faces measure extent along Z
//
// Spheres are isotropic (2*radius on every axis). A cylinder's extent along
// its own axis is its length; on the other two axes it is 2*radius.
func blockExtent(data NodeData, face FaceID) float64 {
	axisOf := func(f FaceID) Axis {
		switch f {
		case FaceTop, FaceBottom:
			return AxisY
		case FaceLeft, FaceRight:
			return AxisX
		default:
			return AxisZ
		}
	}
	axis := axisOf(face)

	switch d := data.(type) {
	case BoxData:
		switch axis {
		case AxisX:
			return d.Dimensions.X
		case AxisY:
			return d.Dimensions.Y
		default:
			return d.Dimensions.Z
		}
	case SphereData:
		return 2 * d.Radius
	case CylinderData:
		if d.Axis == axis {
			return d.Length
		}
		return 2 * d.Radius
	default:
		return 0
	}
}

// validateAnchorReach checks that an anchor's snap radius does not exceed the
// combined extent of both blocks joined by a flat seam; an anchor reaching
// past both blocks is almost certainly a misplaced pin.
func validateAnchorReach(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		sd, ok := node.Data.(SeamData)
		if !ok {
			continue
		}

		if sd.Kind != SeamFlat {
			continue
		}

		blockANode := g.Nodes[sd.BlockA]
		blockBNode := g.Nodes[sd.BlockB]
		if blockANode == nil || blockBNode == nil {
			continue // dangling references handled by Tier 1
		}

		combinedExtent := blockExtent(blockANode.Data, sd.FaceA) + blockExtent(blockBNode.Data, sd.FaceB)

		for _, anchorID := range sd.Anchors {
			aNode := g.Nodes[anchorID]
			if aNode == nil {
				continue
			}
			ad, ok := aNode.Data.(AnchorData)
			if !ok {
				continue
			}
			if ad.SnapRadius > combinedExtent {
				warnings = append(warnings, ValidationWarning{
					NodeID: aNode.ID,
					Message: fmt.Sprintf(
						"anchor snap radius %.1f exceeds combined block extent %.1f at seam %s",
						ad.SnapRadius, combinedExtent, node.ID.Short(),
					),
				})
			}
		}
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3 — Material warnings
// ---------------------------------------------------------------------------

// densityMismatchThreshold is the advisory Density delta above which a flat
// seam between two blocks is flagged: a large jump in material density
// usually means a visible texture pop at the LOD boundary.
const densityMismatchThreshold = 0.5

// validateMaterial runs all Tier 3 material advisory checks.
func validateMaterial(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, validateMaterialMismatchSeam(g)...)
	return warnings
}

// materialOf extracts the MaterialSpec from a primitive block's data.
func materialOf(data NodeData) (MaterialSpec, bool) {
	switch d := data.(type) {
	case BoxData:
		return d.Material, true
	case SphereData:
		return d.Material, true
	case CylinderData:
		return d.Material, true
	default:
		return MaterialSpec{}, false
	}
}

// validateMaterialMismatchSeam warns when a flat seam connects two blocks
// whose material density differs sharply enough to pop visually across the
// LOD boundary.
func validateMaterialMismatchSeam(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		sd, ok := node.Data.(SeamData)
		if !ok {
			continue
		}

		if sd.Kind != SeamFlat {
			continue
		}

		blockANode := g.Nodes[sd.BlockA]
		blockBNode := g.Nodes[sd.BlockB]
		if blockANode == nil || blockBNode == nil {
			continue
		}

		matA, okA := materialOf(blockANode.Data)
		matB, okB := materialOf(blockBNode.Data)
		if !okA || !okB {
			continue
		}

		delta := matA.Density - matB.Density
		if delta < 0 {
			delta = -delta
		}
		if delta > densityMismatchThreshold {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: "flat seam connects blocks with mismatched material density; consider a blend seam or matching materials",
			})
		}
	}

	return warnings
}
