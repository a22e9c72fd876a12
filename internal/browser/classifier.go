package browser

import (
	"strings"

	"filedeck/internal/errors"

	"github.com/gobwas/glob"
)

// Kind tags an entry as a directory or an image.
type Kind int

const (
	Directory Kind = iota
	Image
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case Image:
		return "image"
	default:
		return "unknown"
	}
}

// DefaultImageExtensions is the policy table used when none is configured.
var DefaultImageExtensions = []string{".jpeg", ".png"}

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	// Extensions lists image extensions including the leading dot.
	Extensions []string
	// CaseSensitive disables case folding of names and extensions.
	CaseSensitive bool
	// LegacySubstring classifies any name containing an extension as an
	// image, directories included.
	LegacySubstring bool
}

// Classifier maps file names to a Kind without touching the file system.
type Classifier struct {
	patterns []glob.Glob
	opts     ClassifierOptions
}

// NewClassifier compiles the extension policy.
func NewClassifier(opts ClassifierOptions) (*Classifier, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultImageExtensions
	}

	c := &Classifier{opts: opts}
	for _, ext := range opts.Extensions {
		if ext == "" {
			return nil, errors.NewConfigError("empty image extension", "classifier.image_extensions", errors.InvalidConfig, nil)
		}
		if !opts.CaseSensitive {
			ext = strings.ToLower(ext)
		}
		pattern := "*" + glob.QuoteMeta(ext)
		if opts.LegacySubstring {
			pattern += "*"
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewConfigError("invalid image extension", ext, errors.InvalidConfig, err)
		}
		c.patterns = append(c.patterns, g)
	}
	return c, nil
}

// MustClassifier is NewClassifier for static option sets.
func MustClassifier(opts ClassifierOptions) *Classifier {
	c, err := NewClassifier(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns Image when name ends with an image extension (or, in legacy
// mode, contains one) and Directory otherwise.
func (c *Classifier) Classify(name string) Kind {
	if !c.opts.CaseSensitive {
		name = strings.ToLower(name)
	}
	for _, g := range c.patterns {
		if g.Match(name) {
			return Image
		}
	}
	return Directory
}

// ClassifyChild classifies a listed child. Directories stay directories unless
// legacy substring matching is on.
func (c *Classifier) ClassifyChild(name string, isDir bool) Kind {
	if isDir && !c.opts.LegacySubstring {
		return Directory
	}
	return c.Classify(name)
}
