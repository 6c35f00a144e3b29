// Package texeqn renders TeX equations to SVG images for static sites and
// caches them on disk.
//
// # Quick Start
//
// Create a renderer and render an equation found on a page:
//
//	r, err := texeqn.NewRenderer(nil) // defaults: pdflatex, _tmp, assets/texeqn
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := r.Render(ctx, texeqn.Occurrence{
//	    PagePath: "/notes/a",
//	    Content:  "E=mc^2",
//	    Wrapper:  texeqn.InlineWrapper,
//	    Scale:    texeqn.DefaultScale,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(texeqn.ImageMarkup(res, "eq", false))
//
// # Cache
//
// Each image is stored as OutputDir/<key>.svg where the key is the page path
// (with "/" replaced by "_" and " " by "-"), a dash, and the hex MD5 of the
// trimmed equation. The SVG file is the cache: if it exists, Render reads its
// dimensions and runs nothing. Entries are never evicted.
//
// # Toolchain
//
// On a cache miss the renderer writes TmpDir/<key>.tex and runs, in order:
//
//  1. the backend (pdflatex by default) into the scratch directory TmpDir/<key>/
//  2. pdfcrop to trim the page to the equation
//  3. pdf2svg to produce the cached SVG
//
// The first failing step aborts the render with a *ToolError carrying the
// tool's full output. The .tex document and scratch directory are removed
// only after success, so a failed render can be inspected.
//
// Each step runs under a timeout (WithStepTimeout, 60s by default).
// Concurrent renders of the same key run the toolchain once. A caller whose
// context ends stops waiting, and the shared run is killed with its process
// group only when every caller waiting on it has given up. Result.Cached is
// false only for the call that started the run.
//
// # Pages
//
// Expander replaces Liquid-style tags in page text:
//
//	Energy {% ieqn E=mc^2 %} is conserved.
//	{% eqn %}
//	\int_0^1 f(x)\,dx
//	{% endeqn %}
//
// with <span>/<div> wrapped <img> elements sized in pixels.
//
// # Requirements
//
// A TeX distribution providing the backend and pdfcrop, and pdf2svg, must be
// on PATH. Run "texeqn doctor" to check.
package texeqn
