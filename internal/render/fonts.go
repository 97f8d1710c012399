package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontSet holds the parsed regular and bold typefaces used by the rasterizer
type FontSet struct {
	Regular *opentype.Font
	Bold    *opentype.Font

	// id is a digest of the font files, so renders with other fonts differ
	id string
}

// LoadFonts parses TTF/OTF files. Empty paths fall back to the Go fonts; a
// missing bold path reuses the regular face.
func LoadFonts(regularPath, boldPath string) (*FontSet, error) {
	h := sha256.New()

	regular, err := parseFont(regularPath, goregular.TTF, h.Write)
	if err != nil {
		return nil, fmt.Errorf("regular font: %w", err)
	}

	bold := regular
	if regularPath == "" || boldPath != "" {
		bold, err = parseFont(boldPath, gobold.TTF, h.Write)
		if err != nil {
			return nil, fmt.Errorf("bold font: %w", err)
		}
	}
	return &FontSet{Regular: regular, Bold: bold, id: hex.EncodeToString(h.Sum(nil))[:16]}, nil
}

func parseFont(path string, builtin []byte, digest func([]byte) (int, error)) (*opentype.Font, error) {
	data := builtin
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	digest(data)
	return opentype.Parse(data)
}

// ID identifies the loaded font files
func (f *FontSet) ID() string {
	return f.id
}

// MissingGlyphs lists the runes of the document's text that the fonts cannot
// draw, in ascending order. Whitespace is ignored.
func (f *FontSet) MissingGlyphs(doc *Document) []rune {
	var buf sfnt.Buffer
	seen := make(map[rune]bool)
	var missing []rune

	for _, t := range doc.Texts {
		src := f.Regular
		if t.Bold {
			src = f.Bold
		}
		for _, r := range t.Value {
			if seen[r] || r == ' ' || r == '\n' || r == '\t' {
				continue
			}
			seen[r] = true
			if idx, err := src.GlyphIndex(&buf, r); err != nil || idx == 0 {
				missing = append(missing, r)
			}
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

type faceKey struct {
	bold bool
	size float64
}

// faceCache is owned by a single rasterization; opentype faces are not safe
// for concurrent use.
type faceCache struct {
	fonts *FontSet
	faces map[faceKey]font.Face
}

func newFaceCache(fonts *FontSet) *faceCache {
	return &faceCache{fonts: fonts, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(bold bool, size float64) (font.Face, error) {
	key := faceKey{bold: bold, size: size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}

	src := c.fonts.Regular
	if bold {
		src = c.fonts.Bold
	}
	// DPI 72 makes Size a pixel size
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	c.faces[key] = f
	return f, nil
}

func (c *faceCache) Close() {
	for _, f := range c.faces {
		f.Close()
	}
}
