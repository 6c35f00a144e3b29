package texeqn

import (
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ImageMarkup returns the HTML embedding res: an <img> sized in pixels and
// wrapped in a <span> (inline) or <div> (block) carrying class.
func ImageMarkup(res *Result, class string, block bool) string {
	wrapper := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	if block {
		wrapper.DataAtom, wrapper.Data = atom.Div, "div"
	}

	wrapper.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "width", Val: formatPixels(res.Width)},
			{Key: "height", Val: formatPixels(res.Height)},
			{Key: "src", Val: imageURL(res.Path)},
		},
	})

	var b strings.Builder
	// Render only fails on writer errors; strings.Builder never returns one.
	_ = html.Render(&b, wrapper)
	return b.String()
}

func formatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// imageURL turns an output path relative to the site root into an absolute URL path.
func imageURL(path string) string {
	return "/" + strings.TrimPrefix(filepath.ToSlash(path), "/")
}
