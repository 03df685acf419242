package gallerydl

import (
	"context"
	"errors"
	"testing"

	"artfiler/internal/services"
	"artfiler/internal/testsupport"
)

func TestMetadataExtractsNestedUsernameAndTags(t *testing.T) {
	blob := `[
		[2, {"category": "artstation", "user": {"username": "artist9", "full_name": "Artist Nine"}}],
		[3, {"title": "piece", "tags": ["ink", "portrait"]}]
	]`
	exec := &testsupport.FakeExecutor{Responses: []testsupport.ExecResponse{{Stdout: blob}}}
	client, err := New("gallery-dl", WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	meta, err := client.Metadata(context.Background(), "https://www.artstation.com/artwork/x")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Author != "artist9" {
		t.Errorf("author = %q", meta.Author)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "ink" {
		t.Errorf("tags = %v", meta.Tags)
	}

	if len(exec.Calls) != 1 {
		t.Fatalf("calls = %d", len(exec.Calls))
	}
	args := exec.Calls[0].Args
	if len(args) != 2 || args[1] != "-j" {
		t.Errorf("args = %v", args)
	}
}

func TestMetadataMissingUsername(t *testing.T) {
	exec := &testsupport.FakeExecutor{Responses: []testsupport.ExecResponse{{Stdout: `{"title": "untitled"}`}}}
	client, _ := New("gallery-dl", WithExecutor(exec))

	_, err := client.Metadata(context.Background(), "link")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMetadataToolFailure(t *testing.T) {
	exec := &testsupport.FakeExecutor{Responses: []testsupport.ExecResponse{{Err: errors.New("exit status 4")}}}
	client, _ := New("gallery-dl", WithExecutor(exec))

	_, err := client.Metadata(context.Background(), "link")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
}

func TestResolveFiltersQualityMarkedLines(t *testing.T) {
	output := "https://cdna.artstation.com/p/full.png\n" +
		"|https://cdna.artstation.com/p/medium.png\n" +
		"\n" +
		"  https://cdna.artstation.com/p/second.png  \n"
	exec := &testsupport.FakeExecutor{Responses: []testsupport.ExecResponse{{Stdout: output}}}
	client, _ := New("gallery-dl", WithExecutor(exec))

	got, err := client.Resolve(context.Background(), "link")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"https://cdna.artstation.com/p/full.png",
		"https://cdna.artstation.com/p/second.png",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProbeWrapsFailure(t *testing.T) {
	exec := &testsupport.FakeExecutor{Responses: []testsupport.ExecResponse{{Err: errors.New("not found")}}}
	client, _ := New("gallery-dl", WithExecutor(exec))

	if err := client.Probe(context.Background()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
