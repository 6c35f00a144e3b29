package texeqn

import "strings"

// documentClass is the class of every generated document.
const documentClass = "minimal"

// BuildDocument returns a standalone tex document for one equation.
// Packages are emitted in the given order; extraHead is copied verbatim
// after them, before the document body.
func BuildDocument(content string, wrapper Wrapper, packages []Package, extraHead string) string {
	var b strings.Builder

	b.WriteString("\\documentclass{" + documentClass + "}\n")
	for _, p := range packages {
		b.WriteString("\\usepackage")
		if p.Option != "" {
			b.WriteString("[" + p.Option + "]")
		}
		b.WriteString("{" + p.Name + "}\n")
	}

	b.WriteString(extraHead)
	b.WriteString("\n\\begin{document}\n")
	b.WriteString(wrapper.Open)
	b.WriteString(content)
	b.WriteString(wrapper.Close)
	b.WriteString("\n\\end{document}\n")

	return b.String()
}
