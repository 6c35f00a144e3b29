package texeqn

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// dimensionLine is the zero-based line of the SVG carrying the root element
// (pdf2svg writes the XML declaration first).
const dimensionLine = 1

// Sentinel errors for SVG dimension parsing.
var (
	ErrMissingDimension = errors.New("missing dimension attribute")
	ErrShortSVG         = errors.New("svg has fewer lines than expected")
)

var (
	widthAttr  = regexp.MustCompile(`(?:^|\s)width="([0-9]*\.?[0-9]+)[a-z]*"`)
	heightAttr = regexp.MustCompile(`(?:^|\s)height="([0-9]*\.?[0-9]+)[a-z]*"`)
)

// readDimensions returns the unscaled width and height declared by the SVG at path.
func readDimensions(path string) (width, height float64, err error) {
	f, err := os.Open(path) // #nosec G304 -- path derived from the cache key
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for i := 0; i <= dimensionLine; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, 0, err
			}
			return 0, 0, fmt.Errorf("%w: need %d", ErrShortSVG, dimensionLine+1)
		}
	}
	return parseDimensions(sc.Text())
}

// parseDimensions extracts the numeric width and height from an svg start tag.
// Unit suffixes (pt, px) are ignored.
func parseDimensions(line string) (width, height float64, err error) {
	width, err = parseAttr(widthAttr, "width", line)
	if err != nil {
		return 0, 0, err
	}
	height, err = parseAttr(heightAttr, "height", line)
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func parseAttr(re *regexp.Regexp, name, line string) (float64, error) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingDimension, name)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", name, m[1], err)
	}
	return v, nil
}
