package posts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmarins/folio/metadata"
)

func setupTestPipeline(t *testing.T) (*Pipeline, *metadata.Store, string) {
	t.Helper()
	dir := t.TempDir()
	postsDir := filepath.Join(dir, "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	meta, err := metadata.NewStore(filepath.Join(dir, "metadata.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { meta.Close() })

	return NewPipeline(postsDir, meta), meta, postsDir
}

func writePost(t *testing.T, dir, slug, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, slug+".md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const readyPost = `---
title: "A"
subtitle: "On testing"
description: "A test post"
date: "2024-01-01"
tags:
  - go
  - blog
ready: true
---

# Hello

Some **bold** text.
`

func TestSlugs(t *testing.T) {
	p, _, dir := setupTestPipeline(t)

	writePost(t, dir, "first", readyPost)
	writePost(t, dir, "second", readyPost)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a post"), 0o644); err != nil {
		t.Fatal(err)
	}

	slugs, err := p.Slugs()
	if err != nil {
		t.Fatalf("Slugs failed: %v", err)
	}
	if len(slugs) != 2 {
		t.Fatalf("len(slugs) = %d, want 2 (non-markdown files excluded)", len(slugs))
	}
	if slugs[0] != "first" || slugs[1] != "second" {
		t.Errorf("slugs = %v, want [first second]", slugs)
	}
}

func TestSlugsMissingDirectory(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	slugs, err := p.Slugs()
	if err != nil {
		t.Fatalf("Slugs on missing dir should not error, got %v", err)
	}
	if len(slugs) != 0 {
		t.Errorf("slugs = %v, want empty", slugs)
	}
}

func TestGetAssemblesPost(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	writePost(t, dir, "a", readyPost)

	post, err := p.Get("a", false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if post == nil {
		t.Fatal("Get returned nil for an existing ready post")
	}
	if post.Slug != "a" {
		t.Errorf("Slug = %q, want a", post.Slug)
	}
	if post.Title != "A" {
		t.Errorf("Title = %q, want A", post.Title)
	}
	if post.Subtitle != "On testing" {
		t.Errorf("Subtitle = %q, want 'On testing'", post.Subtitle)
	}
	if post.Date != "2024-01-01" {
		t.Errorf("Date = %q, want 2024-01-01", post.Date)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go blog]", post.Tags)
	}
	if post.Views != 0 {
		t.Errorf("Views = %d, want 0 for a never-viewed post", post.Views)
	}
	if !strings.Contains(post.ContentHTML, "<strong>bold</strong>") {
		t.Errorf("ContentHTML missing rendered markdown: %q", post.ContentHTML)
	}
	if strings.Contains(post.Content, "ready: true") {
		t.Error("Content should not include the front-matter header")
	}
	if post.Link != "/blog/a/" {
		t.Errorf("Link = %q, want /blog/a/", post.Link)
	}
}

func TestGetMissingFile(t *testing.T) {
	p, _, _ := setupTestPipeline(t)

	post, err := p.Get("nope", false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if post != nil {
		t.Errorf("Get(nope) = %+v, want nil", post)
	}
}

func TestGetHidesDrafts(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	writePost(t, dir, "draft", "---\ntitle: Draft\ndate: \"2024-01-01\"\nready: false\n---\nbody\n")
	writePost(t, dir, "no-flag", "---\ntitle: No Flag\ndate: \"2024-01-01\"\n---\nbody\n")

	for _, slug := range []string{"draft", "no-flag"} {
		post, err := p.Get(slug, false)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", slug, err)
		}
		if post != nil {
			t.Errorf("Get(%s) returned a draft; ready must default to false", slug)
		}
	}

	// The admin variant still sees them.
	post, err := p.GetAny("draft")
	if err != nil {
		t.Fatalf("GetAny failed: %v", err)
	}
	if post == nil || post.Ready {
		t.Errorf("GetAny(draft) = %+v, want unready post", post)
	}
}

func TestGetTrackView(t *testing.T) {
	p, meta, dir := setupTestPipeline(t)
	writePost(t, dir, "hot", readyPost)

	if err := meta.SetViews("hot", 5); err != nil {
		t.Fatal(err)
	}

	post, err := p.Get("hot", true)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if post.Views != 6 {
		t.Errorf("Views = %d, want 6 after tracked view", post.Views)
	}

	views, err := meta.ViewCount("hot")
	if err != nil {
		t.Fatal(err)
	}
	if views != 6 {
		t.Errorf("stored views = %d, want 6", views)
	}
}

func TestGetWithoutTrackViewDoesNotIncrement(t *testing.T) {
	p, meta, dir := setupTestPipeline(t)
	writePost(t, dir, "calm", readyPost)

	if _, err := p.Get("calm", false); err != nil {
		t.Fatal(err)
	}
	views, err := meta.ViewCount("calm")
	if err != nil {
		t.Fatal(err)
	}
	if views != 0 {
		t.Errorf("views = %d, want 0 (untracked read must not increment)", views)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	writePost(t, dir, "january", "---\ntitle: Jan\ndate: \"2024-01-01\"\nready: true\n---\nbody\n")
	writePost(t, dir, "february", "---\ntitle: Feb\ndate: \"2024-02-01\"\nready: true\n---\nbody\n")
	writePost(t, dir, "draft", "---\ntitle: Draft\ndate: \"2024-03-01\"\n---\nbody\n")

	posts, err := p.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2 (draft excluded)", len(posts))
	}
	if posts[0].Slug != "february" || posts[1].Slug != "january" {
		t.Errorf("order = [%s %s], want [february january]", posts[0].Slug, posts[1].Slug)
	}
}

func TestListStableForEqualDates(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	writePost(t, dir, "alpha", "---\ntitle: Alpha\ndate: \"2024-01-01\"\nready: true\n---\nbody\n")
	writePost(t, dir, "beta", "---\ntitle: Beta\ndate: \"2024-01-01\"\nready: true\n---\nbody\n")

	posts, err := p.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	// Equal dates keep directory enumeration order.
	if posts[0].Slug != "alpha" || posts[1].Slug != "beta" {
		t.Errorf("order = [%s %s], want [alpha beta]", posts[0].Slug, posts[1].Slug)
	}
}

func TestListMergesViewCounts(t *testing.T) {
	p, meta, dir := setupTestPipeline(t)
	writePost(t, dir, "seen", readyPost)
	writePost(t, dir, "unseen", "---\ntitle: U\ndate: \"2023-01-01\"\nready: true\n---\nbody\n")

	if err := meta.SetViews("seen", 9); err != nil {
		t.Fatal(err)
	}

	posts, err := p.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	viewsBySlug := map[string]int{}
	for _, post := range posts {
		viewsBySlug[post.Slug] = post.Views
	}
	if viewsBySlug["seen"] != 9 {
		t.Errorf("views[seen] = %d, want 9", viewsBySlug["seen"])
	}
	if viewsBySlug["unseen"] != 0 {
		t.Errorf("views[unseen] = %d, want 0 default", viewsBySlug["unseen"])
	}
}

func TestListIdempotent(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	writePost(t, dir, "one", readyPost)
	writePost(t, dir, "two", "---\ntitle: Two\ndate: \"2023-06-01\"\nready: true\n---\nbody\n")

	first, err := p.List()
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Slug != second[i].Slug || first[i].Views != second[i].Views {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestListAllIncludesDrafts(t *testing.T) {
	p, _, dir := setupTestPipeline(t)
	writePost(t, dir, "live", readyPost)
	writePost(t, dir, "wip", "---\ntitle: WIP\ndate: \"2024-05-01\"\n---\nbody\n")

	posts, err := p.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
}
