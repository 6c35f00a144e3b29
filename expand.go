package texeqn

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Liquid tag names handled by the Expander.
const (
	InlineTag   = "ieqn"
	BlockTag    = "eqn"
	BlockEndTag = "endeqn"
)

// tagPattern matches {% ieqn body %}, {% eqn %} and {% endeqn %},
// including the {%- -%} whitespace-control forms.
var tagPattern = regexp.MustCompile(`(?s)\{%-?\s*(ieqn|eqn|endeqn)\b(.*?)-?%\}`)

// Expander replaces equation tags in page text with rendered image markup.
type Expander struct {
	renderer *Renderer

	// KeepGoing leaves the tag of a failed occurrence in place and carries on
	// with the rest of the page; all failures are returned joined.
	KeepGoing bool
}

// NewExpander creates an Expander rendering through r.
func NewExpander(r *Renderer) *Expander {
	return &Expander{renderer: r}
}

// tagMatch is one located equation tag (or eqn...endeqn pair).
type tagMatch struct {
	start, end int // byte span in the page text
	content    string
	block      bool
}

// ExpandPage renders every ieqn and eqn tag of text, in document order.
// Text outside the tags is copied unchanged.
func (e *Expander) ExpandPage(ctx context.Context, pagePath, text string) (string, error) {
	matches, err := findTags(text)
	if err != nil {
		return "", fmt.Errorf("page %s: %w", pagePath, err)
	}
	if len(matches) == 0 {
		return text, nil
	}

	cfg := e.renderer.Config()
	var (
		b    strings.Builder
		errs []error
		last int
	)
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		occ := Occurrence{PagePath: pagePath, Content: m.content, Wrapper: InlineWrapper, Scale: cfg.InlineScale}
		class := cfg.InlineClass
		if m.block {
			occ.Wrapper, occ.Scale, class = BlockWrapper, cfg.BlockScale, cfg.BlockClass
		}

		b.WriteString(text[last:m.start])
		last = m.end

		res, err := e.renderer.Render(ctx, occ)
		if err != nil {
			if !e.KeepGoing {
				return "", err
			}
			errs = append(errs, err)
			b.WriteString(text[m.start:m.end])
			continue
		}
		b.WriteString(ImageMarkup(res, class, m.block))
	}
	b.WriteString(text[last:])

	return b.String(), errors.Join(errs...)
}

// findTags locates equation tags and pairs each eqn with its endeqn.
func findTags(text string) ([]tagMatch, error) {
	locs := tagPattern.FindAllStringSubmatchIndex(text, -1)
	matches := make([]tagMatch, 0, len(locs))

	for i := 0; i < len(locs); i++ {
		loc := locs[i]
		switch text[loc[2]:loc[3]] {
		case InlineTag:
			matches = append(matches, tagMatch{
				start:   loc[0],
				end:     loc[1],
				content: text[loc[4]:loc[5]],
			})
		case BlockTag:
			if i+1 >= len(locs) || text[locs[i+1][2]:locs[i+1][3]] != BlockEndTag {
				return nil, fmt.Errorf("%w: %s at offset %d", ErrUnterminatedTag, BlockTag, loc[0])
			}
			end := locs[i+1]
			matches = append(matches, tagMatch{
				start:   loc[0],
				end:     end[1],
				content: text[loc[1]:end[0]],
				block:   true,
			})
			i++
		case BlockEndTag:
			return nil, fmt.Errorf("%w: at offset %d", ErrUnexpectedEndTag, loc[0])
		}
	}
	return matches, nil
}
