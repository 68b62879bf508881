package eventsite

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sommerfest 2021", "sommerfest-2021"},
		{"  Grüße aus Köln!  ", "gruesse-aus-koeln"},
		{"Straße & Platz", "strasse-platz"},
		{"Düsseldorf: Netzwerk-Abend", "duesseldorf-netzwerk-abend"},
		{"Café Crème", "cafe-creme"},
		{"---", ""},
		{"", ""},
		{"日本", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.de", nil, "https://example.de/"},
		{"https://example.de", []string{"events", "gala"}, "https://example.de/events/gala/"},
		{"https://example.de/", []string{"events"}, "https://example.de/events/"},
		{"https://example.de/sub", []string{"events", "x"}, "https://example.de/sub/events/x/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", " ", "", " b "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("FilterEmpty = %q", got)
	}
}

func TestRelatedEvents(t *testing.T) {
	posts := []Post{
		{Slug: "a", Location: "Köln"},
		{Slug: "b", Location: "Berlin"},
		{Slug: "c", Location: "köln "},
		{Slug: "d", Location: "Köln"},
	}
	got := RelatedEvents(posts[0], posts, 1)
	if len(got) != 1 || got[0].Slug != "c" {
		t.Errorf("RelatedEvents = %v, want [c]", slugs(got))
	}
	if got := RelatedEvents(Post{Slug: "x"}, posts, 3); len(got) != 0 {
		t.Errorf("posts without location have no related events, got %v", slugs(got))
	}
}
