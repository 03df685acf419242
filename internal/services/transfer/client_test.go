package transfer

import (
	"context"
	"errors"
	"testing"

	"artfiler/internal/services"
	"artfiler/internal/testsupport"
)

func TestFetchArgumentOrder(t *testing.T) {
	exec := &testsupport.FakeExecutor{}
	client, err := New("wget", WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	if err := client.Fetch(context.Background(), "https://cdna.artstation.com/p/a.png", "/tmp/stage/a.png"); err != nil {
		t.Fatal(err)
	}
	if len(exec.Calls) != 1 {
		t.Fatalf("calls = %d", len(exec.Calls))
	}
	call := exec.Calls[0]
	if call.Binary != "wget" {
		t.Errorf("binary = %q", call.Binary)
	}
	want := []string{"-O", "/tmp/stage/a.png", "https://cdna.artstation.com/p/a.png"}
	if len(call.Args) != len(want) {
		t.Fatalf("args = %v", call.Args)
	}
	for i := range want {
		if call.Args[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, call.Args[i], want[i])
		}
	}
}

func TestFetchWrapsFailure(t *testing.T) {
	exec := &testsupport.FakeExecutor{Responses: []testsupport.ExecResponse{{Err: errors.New("exit status 8")}}}
	client, _ := New("wget", WithExecutor(exec))

	err := client.Fetch(context.Background(), "url", "out")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
}
