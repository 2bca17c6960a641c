package server

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// handleFile resolves the request path under the configured root and serves a
// file, a directory listing, or a 404. The request path arrives already
// percent-decoded.
func (s *Server) handleFile(c *fiber.Ctx) error {
	fsPath, ok := resolvePath(s.cfg.RootDir, c.Path())
	if !ok {
		return fiber.ErrNotFound
	}

	info, err := os.Stat(fsPath)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return fiber.ErrNotFound
		}
		return fmt.Errorf("stat %s: %w", fsPath, err)
	}

	if info.IsDir() {
		return s.serveDir(c, fsPath)
	}
	if !info.Mode().IsRegular() {
		return fiber.ErrNotFound
	}

	return s.serveFile(c, fsPath, info.Size())
}

// resolvePath maps a decoded URL path onto the filesystem below root. The
// path is rooted and cleaned before joining, so ".." segments collapse
// against the root and can never climb above it.
func resolvePath(root, reqPath string) (string, bool) {
	if strings.ContainsRune(reqPath, 0) {
		return "", false
	}
	clean := path.Clean("/" + reqPath)
	return filepath.Join(root, filepath.FromSlash(clean)), true
}

func (s *Server) serveDir(c *fiber.Ctx, fsPath string) error {
	// Directories need the trailing slash so relative links in listings and
	// reports resolve against the directory, not its parent.
	if p := c.Path(); !strings.HasSuffix(p, "/") {
		return c.Redirect(escapePath(p)+"/", fiber.StatusMovedPermanently)
	}

	for _, index := range []string{"index.html", "index.htm"} {
		candidate := filepath.Join(fsPath, index)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return s.serveFile(c, candidate, info.Size())
		}
	}

	return s.serveListing(c, fsPath)
}

func (s *Server) serveListing(c *fiber.Ctx, fsPath string) error {
	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", fsPath, err)
	}

	title := html.EscapeString(c.Path())

	var b strings.Builder
	b.WriteString("<!DOCTYPE HTML>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Directory listing for " + title + "</title>\n</head>\n<body>\n")
	b.WriteString("<h1>Directory listing for " + title + "</h1>\n<hr>\n<ul>\n")
	for _, entry := range entries {
		name := entry.Name()
		href := url.PathEscape(name)
		if entry.IsDir() {
			name += "/"
			href += "/"
		}
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>\n", href, html.EscapeString(name))
	}
	b.WriteString("</ul>\n<hr>\n</body>\n</html>\n")

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(b.String())
}

func (s *Server) serveFile(c *fiber.Ctx, fsPath string, size int64) error {
	c.Set(fiber.HeaderContentType, s.mimeTypeFor(fsPath))

	if header := c.Get(fiber.HeaderRange); header != "" {
		rng, state := parseRange(header, size)
		switch state {
		case rangeValid:
			f, err := os.Open(fsPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", fsPath, err)
			}
			c.Status(fiber.StatusPartialContent)
			c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
			section := &fileSection{
				SectionReader: io.NewSectionReader(f, rng.start, rng.length()),
				f:             f,
			}
			return c.SendStream(section, int(rng.length()))

		case rangeUnsatisfiable:
			c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", size))
			return c.SendStatus(fiber.StatusRequestedRangeNotSatisfiable)
		}
		// Malformed or multi-part: ignore the header and serve the whole file.
	}

	f, err := os.Open(fsPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", fsPath, err)
	}
	return c.SendStream(f, int(size))
}

// fileSection is a ranged view of an open file that closes the file once the
// transport is done with the body stream.
type fileSection struct {
	*io.SectionReader
	f *os.File
}

func (s *fileSection) Close() error {
	return s.f.Close()
}

type byteRange struct {
	start, end int64 // inclusive
}

func (r byteRange) length() int64 {
	return r.end - r.start + 1
}

type rangeState int

const (
	// rangeIgnore means the header could not be used; serve the full file.
	rangeIgnore rangeState = iota
	rangeValid
	rangeUnsatisfiable
)

// parseRange interprets a single-span byte range header against a resource of
// the given size. Multi-part ranges and syntax errors yield rangeIgnore: a
// player that sends garbage still gets the whole file instead of an error.
func parseRange(header string, size int64) (byteRange, rangeState) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, rangeIgnore
	}
	value := strings.TrimSpace(header[len(prefix):])
	if value == "" || strings.Contains(value, ",") {
		return byteRange{}, rangeIgnore
	}

	startStr, endStr, found := strings.Cut(value, "-")
	if !found {
		return byteRange{}, rangeIgnore
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	// Suffix form: the last n bytes.
	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, rangeIgnore
		}
		if n > size {
			n = size
		}
		if n == 0 {
			return byteRange{}, rangeUnsatisfiable
		}
		return byteRange{start: size - n, end: size - 1}, rangeValid
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, rangeIgnore
	}
	if start >= size {
		return byteRange{}, rangeUnsatisfiable
	}

	end := size - 1
	if endStr != "" {
		e, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || e < start {
			return byteRange{}, rangeIgnore
		}
		if e < end {
			end = e
		}
	}

	return byteRange{start: start, end: end}, rangeValid
}

// escapePath re-encodes a decoded path segment by segment, keeping the
// slashes.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
