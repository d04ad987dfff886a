// Package posts turns a directory of markdown files into renderable blog
// posts. Each file carries a YAML front-matter header followed by the post
// body; view counts are merged in from the metadata store on every read so
// callers always see the current counter value.
package posts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/vmarins/folio/metadata"
)

// Post is a fully assembled blog post: front-matter fields, raw and
// rendered content, and the current view count.
type Post struct {
	Slug        string
	Title       string
	Subtitle    string
	Description string
	Date        string
	Tags        []string
	Ready       bool
	Content     string
	ContentHTML string
	Views       int
	Link        string
}

// frontMatter is the typed schema of the post file header. Ready defaults
// to false, so a post with no header (or no ready key) stays a draft.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Tags        []string `yaml:"tags"`
	Ready       bool     `yaml:"ready"`
}

// Pipeline reads post sources from a directory and assembles Post values.
type Pipeline struct {
	dir  string
	meta *metadata.Store
	md   goldmark.Markdown
}

// NewPipeline creates a Pipeline reading markdown files from dir and view
// counts from meta.
func NewPipeline(dir string, meta *metadata.Store) *Pipeline {
	return &Pipeline{
		dir:  dir,
		meta: meta,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Slugs enumerates the available post slugs (markdown filename stems).
// A missing posts directory yields an empty slice, not an error.
func (p *Pipeline) Slugs() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, ".md"))
	}
	return slugs, nil
}

// Get returns the published post for slug, or nil if no source file exists
// or the post is not marked ready. When trackView is true the view counter
// is incremented and the returned Views reflects the post-increment value.
func (p *Pipeline) Get(slug string, trackView bool) (*Post, error) {
	post, err := p.load(slug)
	if post == nil || err != nil {
		return nil, err
	}
	if !post.Ready {
		return nil, nil
	}

	views, err := p.meta.ViewCount(slug)
	if err != nil {
		return nil, err
	}
	if trackView {
		if err := p.meta.IncrementViews(slug); err != nil {
			return nil, err
		}
		// Read back the authoritative value rather than assuming
		// views+1; a concurrent reader may have raced us.
		views, err = p.meta.ViewCount(slug)
		if err != nil {
			return nil, err
		}
	}
	post.Views = views
	return post, nil
}

// GetAny returns the post for slug regardless of ready status (for the
// admin dashboard). Missing files still yield nil.
func (p *Pipeline) GetAny(slug string) (*Post, error) {
	post, err := p.load(slug)
	if post == nil || err != nil {
		return nil, err
	}
	views, err := p.meta.ViewCount(slug)
	if err != nil {
		return nil, err
	}
	post.Views = views
	return post, nil
}

// load parses and renders the source file for slug without touching the
// metadata store. Returns nil if the file does not exist.
func (p *Pipeline) load(slug string) (*Post, error) {
	raw, err := os.ReadFile(filepath.Join(p.dir, slug+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read post %q: %w", slug, err)
	}

	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, fmt.Errorf("parse front matter of %q: %w", slug, err)
	}

	var buf bytes.Buffer
	if err := p.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render post %q: %w", slug, err)
	}

	return &Post{
		Slug:        slug,
		Title:       fm.Title,
		Subtitle:    fm.Subtitle,
		Description: fm.Description,
		Date:        fm.Date,
		Tags:        fm.Tags,
		Ready:       fm.Ready,
		Content:     string(body),
		ContentHTML: buf.String(),
		Link:        "/blog/" + slug + "/",
	}, nil
}

// List returns all published posts ordered by date descending. View counts
// come from a single bulk read of the counter table.
func (p *Pipeline) List() ([]Post, error) {
	return p.list(false)
}

// ListAll returns every post including drafts, ordered by date descending
// (for the admin dashboard).
func (p *Pipeline) ListAll() ([]Post, error) {
	return p.list(true)
}

func (p *Pipeline) list(includeDrafts bool) ([]Post, error) {
	slugs, err := p.Slugs()
	if err != nil {
		return nil, err
	}
	counts, err := p.meta.AllViewCounts()
	if err != nil {
		return nil, err
	}

	var posts []Post
	for _, slug := range slugs {
		post, err := p.load(slug)
		if err != nil {
			return nil, err
		}
		if post == nil {
			continue
		}
		if !includeDrafts && !post.Ready {
			continue
		}
		post.Views = counts[post.Slug]
		posts = append(posts, *post)
	}

	// Dates are sortable strings, so lexicographic comparison orders them;
	// the stable sort keeps directory order for equal dates.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
	return posts, nil
}
