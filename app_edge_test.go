package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
//    (TestE2EEmptySource already exists; this verifies additional invariants.)
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error, 0 meshes.
//    Extends TestE2ESyntaxError to verify error has line > 0 or a message.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Put valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(defblock \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}

	// Verify the error has a non-empty message.
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}

	// The error should ideally have line info > 0 (line 2+).
	// We log regardless, but assert message is present.
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ESyntaxErrorSingleLineMissingParen(t *testing.T) {
	app := NewApp()

	result := app.Evaluate("(+ 1 2")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for missing closing paren")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("error message should not be empty")
	}
}

// ---------------------------------------------------------------------------
// 3. Undefined block reference: (block "nonexistent") in scene -> eval error.
// ---------------------------------------------------------------------------

func TestE2EUndefinedBlockReference(t *testing.T) {
	app := NewApp()

	source := `
(defblock "dune" (box :length 600 :width 300 :height 18))

(scene "desert"
  (place (block "nonexistent") :at (vec3 0 0 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined block reference")
	}

	// The error should mention the missing block name.
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "nonexistent") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected error mentioning 'nonexistent', got: %v", result.Errors)
	}

	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EUndefinedBlockReferenceStandalone(t *testing.T) {
	app := NewApp()

	// Standalone block reference without any defblock.
	source := `(block "ghost")`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for referencing undefined block")
	}

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "ghost") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected error mentioning 'ghost', got: %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// 4. Zero-dimension box: box with length=0 -> error or degenerate mesh.
// ---------------------------------------------------------------------------

func TestE2EZeroDimensionBox(t *testing.T) {
	app := NewApp()

	source := `
(defblock "bad" (box :length 0 :width 100 :height 19))
(scene "test" (place (block "bad")))
`
	result := app.Evaluate(source)

	// The system should either produce an error or produce a (possibly empty)
	// mesh without panicking. Either outcome is acceptable; panicking is not.
	if len(result.Errors) > 0 {
		t.Logf("zero-dimension box produced error (acceptable): %s", result.Errors[0].Message)
		return
	}

	// If no error, the mesh may exist but possibly be empty/degenerate.
	t.Logf("zero-dimension box produced %d meshes (no error)", len(result.Meshes))
}

func TestE2EAllZeroDimensions(t *testing.T) {
	app := NewApp()

	source := `
(defblock "void" (box :length 0 :width 0 :height 0))
(scene "test" (place (block "void")))
`
	result := app.Evaluate(source)

	// Must not panic. Error or empty mesh are both acceptable.
	if len(result.Errors) > 0 {
		t.Logf("all-zero dimensions produced error (acceptable): %s", result.Errors[0].Message)
		return
	}

	t.Logf("all-zero dimensions produced %d meshes (no error)", len(result.Meshes))
}

func TestE2ENegativeDimension(t *testing.T) {
	app := NewApp()

	source := `
(defblock "negative" (box :length -100 :width 100 :height 19))
(scene "test" (place (block "negative")))
`
	result := app.Evaluate(source)

	// Must not panic. Error or mesh are both acceptable.
	if len(result.Errors) > 0 {
		t.Logf("negative dimension produced error (acceptable): %s", result.Errors[0].Message)
		return
	}

	t.Logf("negative dimension produced %d meshes (no error)", len(result.Meshes))
}

// ---------------------------------------------------------------------------
// 5. Rapid evaluation (debounce simulation): no panics, no data races.
//    Run with `go test -race` to detect data races.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// Simulates debounce: rapid sequential calls to Evaluate on the same App.
	// Rapid sequential calls exercise the engine's generation-counter and
	// timeout paths. We verify no panics occur.
	//
	// Note: we call Evaluate sequentially because zygomys has internal
	// global state that is not safe for concurrent sandbox creation. The
	// engine's mutex guards only its generation counter, not evaluation.
	app := NewApp()

	sources := []string{
		`(defblock "a" (box :length 100 :width 50 :height 10)) (scene "s" (place (block "a")))`,
		`(defblock "b" (box :length 200 :width 100 :height 20)) (scene "s" (place (block "b")))`,
		`(+ 1 2)`,
		``,
		`(defblock "c" (sphere :radius 30)) (scene "s" (place (block "c")))`,
		`(defblock "d" (box :length 400 :width 200 :height 18)) (scene "s" (place (block "d")))`,
		`(+ 100 200)`,
		``,
		`(defblock "e" (sphere :radius 50)) (scene "s" (place (block "e")))`,
		`(defblock "f" (box :length 600 :width 300 :height 18)) (scene "s" (place (block "f")))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			result := app.Evaluate(source)
			// Just ensure no panic. Results vary by source.
			_ = result
		}()
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	app := NewApp()

	sources := []string{
		`(defblock "ok" (box :length 100 :width 50 :height 10)) (scene "s" (place (block "ok")))`,
		`(defblock "broken"`,
		``,
		`(block "missing")`,
		`(defblock "also-ok" (box :length 200 :width 100 :height 20)) (scene "s" (place (block "also-ok")))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(defblock "fine" (box :length 300 :width 150 :height 30)) (scene "s" (place (block "fine")))`,
		`(undefined-func 1 2 3)`,
		`(defblock "last" (box :length 400 :width 200 :height 18)) (scene "s" (place (block "last")))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			result := app.Evaluate(source)
			_ = result
		}()
	}
}

// ---------------------------------------------------------------------------
// 6. Large dimensions: very large box -> valid mesh without crash.
// ---------------------------------------------------------------------------

func TestE2ELargeDimensions(t *testing.T) {
	app := NewApp()

	source := `
(defblock "huge" (box :length 10000 :width 10000 :height 19))
(scene "test" (place (block "huge")))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors for large box: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh for large box, got %d", len(result.Meshes))
	}

	m := result.Meshes[0]
	if len(m.Vertices) == 0 {
		t.Error("large box mesh should have vertices")
	}
	if len(m.Normals) == 0 {
		t.Error("large box mesh should have normals")
	}
	if len(m.Indices) == 0 {
		t.Error("large box mesh should have indices")
	}
	if m.PartName != "huge" {
		t.Errorf("expected block name 'huge', got %q", m.PartName)
	}
}

func TestE2EVeryLargeDimensions(t *testing.T) {
	app := NewApp()

	// 100,000 units = extreme scale. Should not crash.
	source := `
(defblock "giant" (box :length 100000 :width 50000 :height 100))
(scene "test" (place (block "giant")))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		// An error for extreme dimensions is acceptable.
		t.Logf("very large dimensions produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices")
	}
}

// ---------------------------------------------------------------------------
// 7. Multiple scenes: two scenes in one source -> meshes from both.
// ---------------------------------------------------------------------------

func TestE2EMultipleScenes(t *testing.T) {
	app := NewApp()

	source := `
(def sand (material :texture-index 3))

(defblock "dune-a"
  (box :length 600 :width 300 :height 18 :material sand))

(defblock "dune-b"
  (box :length 400 :width 200 :height 18 :material sand))

(scene "region-a"
  (place (block "dune-a") :at (vec3 0 0 0)))

(scene "region-b"
  (place (block "dune-b") :at (vec3 700 0 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// Two scenes, each with one block -> 2 meshes.
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes from two scenes, got %d", len(result.Meshes))
	}

	names := make(map[string]bool)
	for _, m := range result.Meshes {
		names[m.PartName] = true
		if len(m.Vertices) == 0 {
			t.Errorf("mesh %q should have vertices", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned", m.PartName)
		}
	}

	if !names["dune-a"] {
		t.Error("missing mesh for dune-a")
	}
	if !names["dune-b"] {
		t.Error("missing mesh for dune-b")
	}
}

func TestE2EMultipleScenesWithSharedBlocks(t *testing.T) {
	app := NewApp()

	source := `
(def sand (material :texture-index 3))

(defblock "panel"
  (box :length 300 :width 200 :height 18 :material sand))

(defblock "rail"
  (box :length 300 :width 50 :height 18 :material sand))

(scene "region-a"
  (place (block "panel") :at (vec3 0 0 0))
  (place (block "rail")  :at (vec3 0 200 0)))

(scene "region-b"
  (place (block "panel") :at (vec3 500 0 0))
  (place (block "rail")  :at (vec3 500 200 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// Two scenes, each placing 2 blocks, so expect 4 meshes total.
	if len(result.Meshes) != 4 {
		t.Fatalf("expected 4 meshes from two scenes sharing blocks, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 8. Block with only defblock, no scene: standalone defblock -> 0 meshes
//    (tessellation only walks graph roots, and a scene is what adds a root).
// ---------------------------------------------------------------------------

func TestE2EStandaloneDefblock(t *testing.T) {
	app := NewApp()

	source := `(defblock "dune" (box :length 600 :width 300 :height 18))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// No scene means no roots, so tessellation produces nothing.
	if len(result.Meshes) != 0 {
		t.Fatalf("expected 0 meshes from a standalone defblock, got %d", len(result.Meshes))
	}
}

func TestE2EMultipleStandaloneDefblocks(t *testing.T) {
	app := NewApp()

	source := `
(defblock "top" (box :length 600 :width 300 :height 18))
(defblock "bottom" (box :length 600 :width 300 :height 18))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// No scene, no roots -> 0 meshes.
	if len(result.Meshes) != 0 {
		t.Fatalf("expected 0 meshes from standalone defblocks with no scene, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 9. Comments only: source that is only comments -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()

	source := `
;; This is a comment
;; Another comment
; And another
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments-only source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for comments-only source, got %d", len(result.Meshes))
	}
}

func TestE2ECommentsWithWhitespace(t *testing.T) {
	app := NewApp()

	source := `
  ;; leading whitespace
  ;; trailing whitespace
  ; tabs	everywhere
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments+whitespace source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 10. Nested expressions: def with arithmetic, then use in box.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := NewApp()

	source := `
(def w (* 2 150))
(defblock "wide-dune"
  (box :length w :width 200 :height 18))
(scene "test" (place (block "wide-dune")))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "wide-dune" {
		t.Errorf("expected block name 'wide-dune', got %q", result.Meshes[0].PartName)
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices")
	}
}

func TestE2EComplexArithmeticExpressions(t *testing.T) {
	app := NewApp()

	source := `
(def base-length 400)
(def margin 19)
(def inner-length (- base-length (* 2 margin)))
(def height 19)

(defblock "inner-block"
  (box :length inner-length :width 200 :height height))
(scene "test" (place (block "inner-block")))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}

	// inner-length = 400 - 2*19 = 362. The mesh should have non-empty geometry.
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices for computed dimensions")
	}
}

func TestE2ENestedDefWithDivision(t *testing.T) {
	app := NewApp()

	source := `
(def total 600)
(def half (/ total 2))
(defblock "half-dune"
  (box :length half :width 200 :height 18))
(scene "test" (place (block "half-dune")))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// Additional edge cases
// ---------------------------------------------------------------------------

func TestE2EWhitespaceOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("   \n\t\n   \n")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for whitespace-only source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for whitespace-only source, got %d", len(result.Meshes))
	}
}

func TestE2EDefblockMissingBody(t *testing.T) {
	app := NewApp()

	// defblock with name but no shape expression.
	source := `(defblock "oops")`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for defblock with no body")
	}
}

func TestE2ESceneNoChildren(t *testing.T) {
	app := NewApp()

	// A scene with just a name and no place/seam children.
	source := `(scene "empty-scene")`
	result := app.Evaluate(source)

	// Should not panic. May produce 0 meshes or an error -- both are acceptable.
	if len(result.Errors) > 0 {
		t.Logf("empty scene produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty scene, got %d", len(result.Meshes))
	}
}

func TestE2EFloatingPointDimensions(t *testing.T) {
	app := NewApp()

	source := `
(defblock "precise" (box :length 123.456 :width 78.9 :height 12.7))
(scene "test" (place (block "precise")))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("floating-point dimension mesh should have vertices")
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := NewApp()

	// Create more blocks than the palette has colors to ensure wrapping works.
	source := `
(def sand (material :texture-index 3))
(defblock "p1" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p2" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p3" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p4" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p5" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p6" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p7" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p8" (box :length 100 :width 50 :height 10 :material sand))
(defblock "p9" (box :length 100 :width 50 :height 10 :material sand))

(scene "many"
  (place (block "p1") :at (vec3 0 0 0))
  (place (block "p2") :at (vec3 110 0 0))
  (place (block "p3") :at (vec3 220 0 0))
  (place (block "p4") :at (vec3 330 0 0))
  (place (block "p5") :at (vec3 440 0 0))
  (place (block "p6") :at (vec3 550 0 0))
  (place (block "p7") :at (vec3 660 0 0))
  (place (block "p8") :at (vec3 770 0 0))
  (place (block "p9") :at (vec3 880 0 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 9 {
		t.Fatalf("expected 9 meshes, got %d", len(result.Meshes))
	}

	// All meshes must have a non-empty color (palette wraps around).
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned (palette wrapping)", m.PartName)
		}
	}
}
