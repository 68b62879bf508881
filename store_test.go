package eventsite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eringen/eventsite/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPost(slug, location, date string) Post {
	return Post{
		Slug:      slug,
		Title:     "Title " + slug,
		Location:  location,
		EventDate: date,
		Blocks: []content.Block{
			content.Headline{BlockID: "h-" + slug, Text: "Programm", Level: 2},
			content.Text{BlockID: "t-" + slug, Body: "Wir laden herzlich ein."},
		},
		Published: true,
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestNewStoreIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()
	// Migrations must tolerate columns that already exist.
	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s.Close()
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	post := testPost("sommerfest", "Köln", "2024-06-15")
	post.CoverImage = "/public/uploads/cover.jpg"
	post.Blocks = append(post.Blocks,
		content.Image{BlockID: "i1", URL: "/public/uploads/a.jpg", Alt: "Bühne"},
		content.Video{BlockID: "v1", URL: "https://youtu.be/abc"},
		content.Link{BlockID: "l1", URL: "https://example.de/anmeldung", Label: "Anmelden"},
	)

	if err := s.SavePost(post); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	got, err := s.GetPost("sommerfest")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}

	if got.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Title, post.Title)
	}
	if got.Location != "Köln" {
		t.Errorf("Location = %q, want %q", got.Location, "Köln")
	}
	if got.EventDate != post.EventDate {
		t.Errorf("EventDate = %q, want %q", got.EventDate, post.EventDate)
	}
	if got.CoverImage != post.CoverImage {
		t.Errorf("CoverImage = %q, want %q", got.CoverImage, post.CoverImage)
	}
	if got.Link != "/events/sommerfest/" {
		t.Errorf("Link = %q", got.Link)
	}
	if got.CreatedAt == "" {
		t.Error("CreatedAt should be set")
	}
	if len(got.Blocks) != len(post.Blocks) {
		t.Fatalf("len(Blocks) = %d, want %d", len(got.Blocks), len(post.Blocks))
	}
	for i := range post.Blocks {
		if got.Blocks[i] != post.Blocks[i] {
			t.Errorf("Blocks[%d] = %#v, want %#v", i, got.Blocks[i], post.Blocks[i])
		}
	}
}

func TestSavePostUpdateReplacesBlocks(t *testing.T) {
	s := setupTestStore(t)

	post := testPost("gala", "Berlin", "2024-03-01")
	if err := s.SavePost(post); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	first, _ := s.GetPost("gala")

	post.Title = "Gala 2024"
	post.Blocks = []content.Block{content.Text{BlockID: "only", Body: "Neuer Inhalt"}}
	if err := s.SavePost(post); err != nil {
		t.Fatalf("SavePost update failed: %v", err)
	}

	got, err := s.GetPost("gala")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Gala 2024" {
		t.Errorf("Title = %q, want %q", got.Title, "Gala 2024")
	}
	if len(got.Blocks) != 1 || got.Blocks[0].ID() != "only" {
		t.Errorf("Blocks = %#v, want the single replacement block", got.Blocks)
	}
	if got.CreatedAt != first.CreatedAt {
		t.Errorf("CreatedAt changed on update: %q -> %q", first.CreatedAt, got.CreatedAt)
	}
}

func TestGetPostLegacyBody(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.db.Exec(`INSERT INTO posts (slug, title, event_date, blocks) VALUES ('alt', 'Alt', '2019-01-01', 'Nur Text')`); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost("alt")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if len(got.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(got.Blocks))
	}
	if got.Blocks[0] != (content.Text{BlockID: content.LegacyID, Body: "Nur Text"}) {
		t.Errorf("Blocks[0] = %#v", got.Blocks[0])
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPost("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPostUnpublished(t *testing.T) {
	s := setupTestStore(t)

	post := testPost("draft", "", "2024-01-15")
	post.Published = false
	if err := s.SavePost(post); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	if _, err := s.GetPost("draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost should not return unpublished posts, got %v", err)
	}
	got, err := s.GetPostAny("draft")
	if err != nil {
		t.Fatalf("GetPostAny failed: %v", err)
	}
	if got.Published {
		t.Error("Published should be false")
	}
}

func TestListPostsOrderAndLocation(t *testing.T) {
	s := setupTestStore(t)

	posts := []Post{
		testPost("a", "Köln", "2024-01-01"),
		testPost("b", "Berlin", "2024-03-01"),
		testPost("c", "köln", "2024-02-01"),
	}
	for _, p := range posts {
		if err := s.SavePost(p); err != nil {
			t.Fatalf("SavePost failed: %v", err)
		}
	}

	all, err := s.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(all) != len(want) {
		t.Fatalf("got %d posts, want %d", len(all), len(want))
	}
	for i, slug := range want {
		if all[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, all[i].Slug, slug)
		}
	}

	cologne, err := s.ListPosts(" köln ")
	if err != nil {
		t.Fatalf("ListPosts(location) failed: %v", err)
	}
	if got := slugs(cologne); len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Errorf("ListPosts(köln) = %v, want [c a]", got)
	}
}

func TestListLocations(t *testing.T) {
	s := setupTestStore(t)

	for _, p := range []Post{
		testPost("a", "Köln", "2024-01-01"),
		testPost("b", "Berlin", "2024-03-01"),
		testPost("c", "Köln", "2024-02-01"),
		testPost("d", "", "2024-02-01"),
	} {
		if err := s.SavePost(p); err != nil {
			t.Fatalf("SavePost failed: %v", err)
		}
	}
	draft := testPost("e", "Hamburg", "2024-02-01")
	draft.Published = false
	if err := s.SavePost(draft); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListLocations()
	if err != nil {
		t.Fatalf("ListLocations failed: %v", err)
	}
	want := []string{"Berlin", "Köln"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("locations[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListAllPosts(t *testing.T) {
	s := setupTestStore(t)

	draft := testPost("draft", "", "2024-01-02")
	draft.Published = false
	for _, p := range []Post{testPost("pub", "", "2024-01-01"), draft} {
		if err := s.SavePost(p); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.ListAllPosts()
	if err != nil {
		t.Fatalf("ListAllPosts failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d posts, want 2", len(all))
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SavePost(testPost("gone", "", "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePost("gone"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPostAny("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("post should be deleted, got %v", err)
	}
	if err := s.DeletePost("never-existed"); err != nil {
		t.Errorf("deleting a missing post should not fail: %v", err)
	}
}

func TestInsertPostRejectsDuplicateSlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.InsertPost(ctx, testPost("x", "", "2024-01-01")); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}
	if err := s.InsertPost(ctx, testPost("x", "", "2024-01-01")); err == nil {
		t.Error("expected an error for a duplicate slug")
	}
	ok, err := s.SlugExists(ctx, "x")
	if err != nil || !ok {
		t.Errorf("SlugExists(x) = %v, %v", ok, err)
	}
	ok, err = s.SlugExists(ctx, "y")
	if err != nil || ok {
		t.Errorf("SlugExists(y) = %v, %v", ok, err)
	}
}

func TestLegacyDeletes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	legacy := testPost("alt", "", "2020-01-01")
	legacy.IsLegacy = true
	manual := testPost("manual", "", "2024-01-01")
	manual.Title = "Sommerfest"
	keep := testPost("keep", "", "2024-01-01")
	for _, p := range []Post{legacy, manual, keep} {
		if err := s.InsertPost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.DeleteLegacyPosts(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeleteLegacyPosts = %d, %v; want 1", n, err)
	}
	n, err = s.DeletePostsByTitle(ctx, []string{"Sommerfest", "Unbekannt"})
	if err != nil || n != 1 {
		t.Fatalf("DeletePostsByTitle = %d, %v; want 1", n, err)
	}
	n, err = s.DeletePostsByTitle(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("DeletePostsByTitle(nil) = %d, %v; want 0", n, err)
	}

	all, _ := s.ListAllPosts()
	if len(all) != 1 || all[0].Slug != "keep" {
		t.Errorf("remaining = %v, want [keep]", slugs(all))
	}
}

func TestMediaRecords(t *testing.T) {
	s := setupTestStore(t)

	older := MediaFile{Key: "a.jpg", URL: "/public/uploads/a.jpg", OriginalName: "A.JPG", ContentType: "image/jpeg", Width: 10, Height: 5, Size: 100, UploadedAt: "2024-01-01T00:00:00Z"}
	newer := MediaFile{Key: "b.pdf", URL: "/public/uploads/b.pdf", OriginalName: "b.pdf", ContentType: "application/pdf", Size: 200, UploadedAt: "2024-02-01T00:00:00Z"}
	for _, m := range []MediaFile{older, newer} {
		if err := s.SaveMedia(m); err != nil {
			t.Fatalf("SaveMedia failed: %v", err)
		}
	}

	files, err := s.ListMedia()
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(files) != 2 || files[0] != newer || files[1] != older {
		t.Errorf("ListMedia = %#v", files)
	}

	if err := s.DeleteMedia("a.jpg"); err != nil {
		t.Fatalf("DeleteMedia failed: %v", err)
	}
	files, _ = s.ListMedia()
	if len(files) != 1 {
		t.Errorf("got %d files after delete, want 1", len(files))
	}
}

func slugs(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}
