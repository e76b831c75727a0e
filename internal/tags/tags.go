// Package tags parses the metadata tags embedded in source file names.
//
// A tagged name looks like "sunset+++by=Alice+++main.jpg": the part before the
// first delimiter is the stem, every following segment is either a boolean
// key ("main") or a key=value pair ("by=Alice"). There is no escaping, so
// values cannot contain the delimiter or '='.
package tags

import (
	"path/filepath"
	"strings"
)

// DefaultDelimiter separates the stem and the tag segments of a file name.
const DefaultDelimiter = "+++"

// Well known tag keys.
const (
	Main    = "main"
	Special = "special"
)

// Kind is the extension family of a source file.
type Kind int

const (
	KindOther Kind = iota
	KindMarkup
	KindHTML
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindHTML:
		return "html"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "other"
	}
}

var kinds = map[string]Kind{
	".md":       KindMarkup,
	".markdown": KindMarkup,
	".html":     KindHTML,
	".htm":      KindHTML,
	".jpg":      KindImage,
	".jpeg":     KindImage,
	".png":      KindImage,
	".gif":      KindImage,
	".webp":     KindImage,
	".mov":      KindVideo,
	".mp4":      KindVideo,
	".m4v":      KindVideo,
}

// Classify returns the extension family of name, ignoring extension case.
func Classify(name string) Kind {
	return kinds[strings.ToLower(filepath.Ext(name))]
}

// RenderedExt maps an input extension to the extension of its published form.
func RenderedExt(ext string) string {
	switch kinds[strings.ToLower(ext)] {
	case KindMarkup, KindHTML:
		return ".html"
	case KindVideo:
		return ".mp4"
	default:
		return ext
	}
}

// Value is a tag value: either a string or a bare presence flag.
type Value struct {
	Str  string
	Flag bool
}

func (v Value) String() string {
	if v.Flag {
		return "true"
	}
	return v.Str
}

// Set holds the tags of one file. Keys are unique.
type Set map[string]Value

// Has reports whether key is present, valued or not.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Get returns the string value of key, or "" for flags and missing keys.
func (s Set) Get(key string) string {
	return s[key].Str
}

// Parser splits tagged file names.
type Parser struct {
	Delimiter string
}

// NewParser returns a parser using delim, or DefaultDelimiter when delim is empty.
func NewParser(delim string) *Parser {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return &Parser{Delimiter: delim}
}

// Parse decomposes base (a file name with extension) into its canonical output
// name and tag set. A name without the delimiter yields an empty set.
func (p *Parser) Parse(base string) (string, Set) {
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if ext == base {
		// dotfiles such as ".DS_Store" have no stem of their own
		name, ext = base, ""
	}

	segments := strings.Split(name, p.Delimiter)
	stem := strings.TrimSpace(segments[0])
	set := Set{}
	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value, valued := strings.Cut(seg, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if valued {
			set[key] = Value{Str: strings.TrimSpace(value)}
		} else {
			set[key] = Value{Flag: true}
		}
	}
	return stem + RenderedExt(ext), set
}

// Stem returns base without tags and without extension.
func (p *Parser) Stem(base string) string {
	name, _ := p.Parse(base)
	if ext := filepath.Ext(name); ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
