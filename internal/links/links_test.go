package links

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	directLink = "https://cdna.artstation.com/p/assets/images/images/001/234/567/large/piece.jpg"
	pageLink   = "https://www.artstation.com/artwork/abc123"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  " + directLink + "?token=xyz  ", directLink},
		{pageLink, pageLink},
		{"   ", ""},
		{"plain?a=1?b=2", "plain"},
	}
	for _, tc := range cases {
		if got := Strip(tc.in); got != tc.want {
			t.Errorf("Strip(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		link string
		want Class
	}{
		{directLink, ClassDirectAsset},
		{"https://cdnb.artstation.com/p/assets/images/images/9/large/x.png", ClassDirectAsset},
		{pageLink, ClassIndirectPage},
		{"https://artstation.com/artwork/q", ClassIndirectPage},
		{"https://example.com/image.png", ClassUnknown},
		{"https://www.artstation.com/artwork/", ClassUnknown},
		{"not a link", ClassUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.link); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.link, got, tc.want)
		}
	}
}

func TestPartitionIsExact(t *testing.T) {
	lines := []string{
		directLink + "?watermark=0",
		pageLink,
		"",
		"   ",
		"https://example.com/whatever",
		pageLink + "xyz",
	}
	set := Partition(lines)

	if len(set.Direct) != 1 || set.Direct[0] != directLink {
		t.Errorf("direct = %v", set.Direct)
	}
	if len(set.Pages) != 2 {
		t.Errorf("pages = %v", set.Pages)
	}
	if len(set.Unknown) != 1 {
		t.Errorf("unknown = %v", set.Unknown)
	}
	if set.Total() != 4 {
		t.Errorf("total = %d, want 4 (empty lines discarded)", set.Total())
	}

	// Every link lands in exactly one class.
	seen := map[string]int{}
	for _, group := range [][]string{set.Direct, set.Pages, set.Unknown} {
		for _, link := range group {
			seen[link]++
		}
	}
	for link, count := range seen {
		if count != 1 {
			t.Errorf("link %q classified %d times", link, count)
		}
	}
}

func TestLoadAndRewriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "links.txt")
	input := pageLink + "\n" + "garbage-line\n\n" + directLink + "\n"
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if set.Total() != 3 {
		t.Fatalf("total = %d, want 3", set.Total())
	}

	// Simulate the page link being resolved successfully.
	remaining := append(append([]string{}, set.Unknown...), set.Direct...)
	if err := Rewrite(path, remaining); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Fields(string(data))
	if len(got) != 2 {
		t.Fatalf("rewritten file has %d links, want 2: %q", len(got), string(data))
	}
	if got[0] != "garbage-line" || got[1] != directLink {
		t.Fatalf("rewritten content = %v", got)
	}
}

func TestRewriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := Rewrite(path, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty file, got %q", data)
	}
}
