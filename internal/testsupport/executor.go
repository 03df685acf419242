package testsupport

import (
	"context"
	"io"
)

// ExecCall records one invocation of the fake executor.
type ExecCall struct {
	Binary string
	Args   []string
}

// ExecResponse scripts the behavior of one invocation.
type ExecResponse struct {
	Stdout string
	Stderr string
	Err    error
}

// FakeExecutor implements the services.Executor seam with scripted
// responses, consumed in call order. Calls beyond the script succeed with no
// output.
type FakeExecutor struct {
	Responses []ExecResponse
	Calls     []ExecCall

	// OnRun, when set, is invoked for every call after recording; it can
	// create files to simulate tool side effects such as a download.
	OnRun func(call ExecCall) error
}

func (f *FakeExecutor) Run(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) error {
	call := ExecCall{Binary: binary, Args: append([]string{}, args...)}
	f.Calls = append(f.Calls, call)

	if f.OnRun != nil {
		if err := f.OnRun(call); err != nil {
			return err
		}
	}

	if len(f.Responses) == 0 {
		return nil
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	if resp.Stdout != "" && stdout != nil {
		if _, err := io.WriteString(stdout, resp.Stdout); err != nil {
			return err
		}
	}
	if resp.Stderr != "" && stderr != nil {
		if _, err := io.WriteString(stderr, resp.Stderr); err != nil {
			return err
		}
	}
	return resp.Err
}
