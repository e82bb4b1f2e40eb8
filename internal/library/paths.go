package library

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Translator converts between absolute paths inside the library root and
// the forward-slash relative paths used in public URLs.
type Translator struct {
	root   string
	prefix string
}

// NewTranslator creates a Translator for root. publicPrefix is the URL path
// under which the root is served, e.g. "/videos". A symlinked root is
// resolved to its target so the walk descends into it.
func NewTranslator(root, publicPrefix string) (*Translator, error) {
	resolved, err := ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve library root: %w", err)
	}
	return &Translator{
		root:   resolved,
		prefix: normalizePrefix(publicPrefix),
	}, nil
}

// ResolvePath returns p as an absolute path with symlinks evaluated. Trailing
// components that do not exist yet are kept as given below the deepest
// existing ancestor.
func ResolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return resolveExisting(filepath.Clean(abs)), nil
}

func resolveExisting(abs string) string {
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs
	}
	return filepath.Join(resolveExisting(parent), filepath.Base(abs))
}

func normalizePrefix(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return ""
	}
	return p
}

// Root returns the absolute library root.
func (t *Translator) Root() string {
	return t.root
}

// Prefix returns the public URL prefix without a trailing slash.
func (t *Translator) Prefix() string {
	return t.prefix
}

// ToAbsolute resolves a relative path against the root. Empty, absolute and
// escaping paths fail with ErrInvalidPath.
func (t *Translator) ToAbsolute(rel string) (string, error) {
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}

	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}

	abs := filepath.Join(t.root, filepath.FromSlash(cleaned))
	if !t.contains(abs) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return abs, nil
}

// ToRelative returns the forward-slash path of abs relative to the root.
func (t *Translator) ToRelative(abs string) (string, error) {
	rel, err := filepath.Rel(t.root, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q is not below the library root", ErrInvalidPath, abs)
	}
	return rel, nil
}

func (t *Translator) contains(abs string) bool {
	rel, err := filepath.Rel(t.root, abs)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, "../")
}

// StripPublicPrefix turns a locator previously issued by PublicURL back into
// a relative path. Full URLs (as sent by browsers) are reduced to their
// path first. Issued locators are percent-decoded; bare relative paths and
// locators without the prefix are returned unchanged.
func (t *Translator) StripPublicPrefix(locator string) string {
	if u, err := url.Parse(locator); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		locator = u.EscapedPath()
	}
	if t.prefix == "" {
		if rest, ok := strings.CutPrefix(locator, "/"); ok {
			return unescapePath(rest)
		}
		return locator
	}
	if rest, ok := strings.CutPrefix(locator, t.prefix+"/"); ok {
		return unescapePath(rest)
	}
	return locator
}

// unescapePath decodes p, keeping it as given when it is not valid
// percent-encoding.
func unescapePath(p string) string {
	if dec, err := url.PathUnescape(p); err == nil {
		return dec
	}
	return p
}

// PublicURL returns the externally addressable locator for rel, with each
// segment percent-encoded.
func (t *Translator) PublicURL(rel string) string {
	return t.prefix + "/" + EscapePath(rel)
}

// EscapePath percent-encodes each segment of a forward-slash path.
func EscapePath(rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
