package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"artfiler/internal/config"
	"artfiler/internal/logging"
	"artfiler/internal/mapping"
	"artfiler/internal/placement"
	"artfiler/internal/services"
	"artfiler/internal/services/gallerydl"
	"artfiler/internal/testsupport"
)

type fakeResolver struct {
	probeErr error
	meta     map[string]gallerydl.Metadata
	metaErr  map[string]error
	urls     map[string][]string
	urlsErr  map[string]error
}

func (r *fakeResolver) Probe(ctx context.Context) error { return r.probeErr }

func (r *fakeResolver) Metadata(ctx context.Context, link string) (gallerydl.Metadata, error) {
	if err := r.metaErr[link]; err != nil {
		return gallerydl.Metadata{}, err
	}
	meta, ok := r.meta[link]
	if !ok {
		return gallerydl.Metadata{}, services.Wrap(services.ErrNotFound, "resolver", "metadata", "no username", nil)
	}
	return meta, nil
}

func (r *fakeResolver) Resolve(ctx context.Context, link string) ([]string, error) {
	if err := r.urlsErr[link]; err != nil {
		return nil, err
	}
	return r.urls[link], nil
}

type fakeFetcher struct {
	content map[string][]byte
	failFor map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, outPath string) error {
	if f.failFor[url] {
		return services.Wrap(services.ErrExternalTool, "transfer", "fetch", "wget failed", nil)
	}
	f.fetched = append(f.fetched, url)
	content, ok := f.content[url]
	if !ok {
		content = []byte(url)
	}
	return os.WriteFile(outPath, content, 0o644)
}

func newTestPipeline(t *testing.T, cfg *config.Config, resolver *fakeResolver, fetcher *fakeFetcher, prompter *testsupport.ScriptedPrompter) *Pipeline {
	t.Helper()
	logger := logging.NewNop()
	authors, err := mapping.Open(cfg.Paths.MappingFile, logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = authors.Close() })
	return New(cfg, logger, resolver, fetcher, placement.New(logger), authors, prompter)
}

func readLinks(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

const pageOne = "https://www.artstation.com/artwork/abc123"

func TestRunSinglePageSingleAsset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(pageOne+"\n"))

	asset := "https://cdna.artstation.com/p/assets/images/images/001/pic.jpg"
	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{pageOne: {Author: "jane", Tags: []string{"ink"}}},
		urls: map[string][]string{pageOne: {asset}},
	}
	fetcher := &fakeFetcher{content: map[string][]byte{asset: []byte("image")}}
	prompter := &testsupport.ScriptedPrompter{Inputs: []string{""}}

	summary, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Downloaded != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	placed := filepath.Join(cfg.Paths.DestinationDir, "jane_"+cfg.Behavior.DownloadPostfix, "pic.jpg")
	if _, err := os.Stat(placed); err != nil {
		t.Fatalf("placed file missing: %v", err)
	}
	if got := readLinks(t, cfg.Paths.LinksFile); len(got) != 0 {
		t.Fatalf("links file not emptied: %v", got)
	}
	if prompter.InputCalls != 1 {
		t.Fatalf("author prompt calls = %d", prompter.InputCalls)
	}
}

func TestRunRoundTripKeepsUnresolved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	pageBad := "https://www.artstation.com/artwork/broken"
	unknown := "https://example.com/mystery"
	lines := strings.Join([]string{pageOne, pageBad, unknown}, "\n") + "\n"
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(lines))

	asset := "https://cdnb.artstation.com/p/assets/images/images/002/pic.png"
	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{
			pageOne: {Author: "jane"},
		},
		metaErr: map[string]error{
			pageBad: services.Wrap(services.ErrExternalTool, "resolver", "metadata", "exit 1", nil),
		},
		urls: map[string][]string{pageOne: {asset}},
	}
	fetcher := &fakeFetcher{}
	prompter := &testsupport.ScriptedPrompter{Inputs: []string{""}}

	summary, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 3 || summary.Downloaded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	remaining := readLinks(t, cfg.Paths.LinksFile)
	if len(remaining) != 2 {
		t.Fatalf("remaining = %v, want failed page and unknown link", remaining)
	}
	want := map[string]bool{pageBad: true, unknown: true}
	for _, link := range remaining {
		if !want[link] {
			t.Fatalf("unexpected remaining link %q", link)
		}
	}
}

func TestRunShortCircuitConsumesDirectLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	direct := "https://cdna.artstation.com/p/assets/images/images/003/full.jpg"
	other := "https://cdna.artstation.com/p/assets/images/images/003/alt.jpg"
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(pageOne+"\n"+direct+"\n"))

	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{pageOne: {Author: "jane"}},
		urls: map[string][]string{pageOne: {direct + "?token=x", other}},
	}
	fetcher := &fakeFetcher{}
	prompter := &testsupport.ScriptedPrompter{Inputs: []string{""}}

	summary, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The matching candidate wins without a multi-select prompt, and the
	// supplied direct link is consumed rather than carried over.
	if prompter.SelectCalls != 0 {
		t.Fatalf("multi-select prompted %d times", prompter.SelectCalls)
	}
	if summary.Downloaded != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if got := readLinks(t, cfg.Paths.LinksFile); len(got) != 0 {
		t.Fatalf("links file not emptied: %v", got)
	}
	if len(fetcher.fetched) != 1 || !strings.HasPrefix(fetcher.fetched[0], direct) {
		t.Fatalf("fetched = %v", fetcher.fetched)
	}
}

func TestRunAmbiguousCandidatesPrompt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(pageOne+"\n"))

	first := "https://cdna.artstation.com/p/assets/images/images/004/a.jpg"
	second := "https://cdna.artstation.com/p/assets/images/images/004/b.jpg"
	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{pageOne: {Author: "jane"}},
		urls: map[string][]string{pageOne: {first, second}},
	}
	fetcher := &fakeFetcher{}
	prompter := &testsupport.ScriptedPrompter{
		Inputs:     []string{""},
		Selections: [][]string{{second}},
	}

	summary, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if prompter.SelectCalls != 1 {
		t.Fatalf("select calls = %d", prompter.SelectCalls)
	}
	if summary.Downloaded != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(fetcher.fetched) != 1 || fetcher.fetched[0] != second {
		t.Fatalf("fetched = %v", fetcher.fetched)
	}
}

func TestRunEmptySelectionDropsLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(pageOne+"\n"))

	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{pageOne: {Author: "jane"}},
		urls: map[string][]string{pageOne: {
			"https://cdna.artstation.com/p/assets/images/images/005/a.jpg",
			"https://cdna.artstation.com/p/assets/images/images/005/b.jpg",
		}},
	}
	fetcher := &fakeFetcher{}
	prompter := &testsupport.ScriptedPrompter{
		Inputs:     []string{""},
		Selections: [][]string{nil},
	}

	summary, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Downloaded != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if got := readLinks(t, cfg.Paths.LinksFile); len(got) != 0 {
		t.Fatalf("declined link should be dropped, got %v", got)
	}
}

func TestRunFetchFailureKeepsLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(pageOne+"\n"))

	asset := "https://cdna.artstation.com/p/assets/images/images/006/pic.jpg"
	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{pageOne: {Author: "jane"}},
		urls: map[string][]string{pageOne: {asset}},
	}
	fetcher := &fakeFetcher{failFor: map[string]bool{asset: true}}
	prompter := &testsupport.ScriptedPrompter{Inputs: []string{""}}

	summary, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if got := readLinks(t, cfg.Paths.LinksFile); len(got) != 1 || got[0] != pageOne {
		t.Fatalf("remaining = %v", got)
	}
}

func TestRunKnownAuthorSkipsPrompt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.LinksFile, []byte(pageOne+"\n"))
	testsupport.WriteFile(t, cfg.Paths.MappingFile, []byte(`{"jane":"janet"}`))

	asset := "https://cdna.artstation.com/p/assets/images/images/007/pic.jpg"
	resolver := &fakeResolver{
		meta: map[string]gallerydl.Metadata{pageOne: {Author: "jane"}},
		urls: map[string][]string{pageOne: {asset}},
	}
	fetcher := &fakeFetcher{}
	prompter := &testsupport.ScriptedPrompter{}

	if _, err := newTestPipeline(t, cfg, resolver, fetcher, prompter).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if prompter.InputCalls != 0 {
		t.Fatalf("mapped author still prompted %d times", prompter.InputCalls)
	}
	placed := filepath.Join(cfg.Paths.DestinationDir, "janet_"+cfg.Behavior.DownloadPostfix, "pic.jpg")
	if _, err := os.Stat(placed); err != nil {
		t.Fatalf("placed file missing: %v", err)
	}
}

func TestRunMissingLinksFileIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := &fakeResolver{}
	prompter := &testsupport.ScriptedPrompter{}

	_, err := newTestPipeline(t, cfg, resolver, &fakeFetcher{}, prompter).Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestAssetFilename(t *testing.T) {
	cases := map[string]string{
		"https://cdna.artstation.com/p/assets/images/images/008/pic.jpg?x=1": "pic.jpg",
		"https://cdna.artstation.com/p/assets/images/images/008/pic.png":     "pic.png",
	}
	for input, want := range cases {
		if got := assetFilename(input); got != want {
			t.Errorf("assetFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
