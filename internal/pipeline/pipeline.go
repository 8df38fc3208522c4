// Package pipeline runs the external process pairs behind every
// search: an enumerator whose stdout feeds a ranker's stdin. The pipe
// closure order is part of the contract: the parent drops its pipe
// ends once both processes run, so an early-exiting ranker breaks the
// enumerator's pipe and lets it terminate without draining.
package pipeline

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	fzerrors "github.com/fzmcp/fzmcp/internal/errors"
)

// Stage is one external process invocation
type Stage struct {
	Path string
	Args []string
}

func (s Stage) name() string {
	return filepath.Base(s.Path)
}

func (s Stage) command(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, s.Path, s.Args...)
}

// Run pipes producer stdout into consumer stdin and returns consumer
// stdout. Producer exit codes listed in producerOK (default 0 and 1,
// covering "ran fine, found nothing") are success; a producer killed
// by a broken pipe is also success, that is the early-exit contract.
// Consumer exit status is not checked; a ranker that matches nothing
// exits nonzero and that is a normal empty result.
func Run(ctx context.Context, producer, consumer Stage, producerOK ...int) ([]byte, error) {
	if len(producerOK) == 0 {
		producerOK = []int{0, 1}
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fzerrors.NewSubprocess(producer.name(), 0, "", err)
	}

	prod := producer.command(ctx)
	prod.Stdout = pw
	var prodStderr bytes.Buffer
	prod.Stderr = &prodStderr

	cons := consumer.command(ctx)
	cons.Stdin = pr
	var out bytes.Buffer
	cons.Stdout = &out

	if err := prod.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fzerrors.NewSubprocess(producer.name(), 0, "", err)
	}
	if err := cons.Start(); err != nil {
		pw.Close()
		pr.Close()
		_ = prod.Wait()
		return nil, fzerrors.NewSubprocess(consumer.name(), 0, "", err)
	}

	// Both children hold duplicated pipe ends now. Closing ours makes
	// the consumer's exit visible to the producer as EPIPE.
	pw.Close()
	pr.Close()

	prodErr := prod.Wait()
	_ = cons.Wait()

	if prodErr != nil && !producerExitOK(prodErr, producerOK) {
		return nil, fzerrors.NewSubprocess(producer.name(),
			prod.ProcessState.ExitCode(), strings.TrimSpace(prodStderr.String()), prodErr)
	}

	return out.Bytes(), nil
}

// Output runs a single stage to completion and returns its stdout.
// okExit defaults to {0}.
func Output(ctx context.Context, stage Stage, okExit ...int) ([]byte, error) {
	if len(okExit) == 0 {
		okExit = []int{0}
	}

	cmd := stage.command(ctx)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok || !codeIn(exitErr.ExitCode(), okExit) {
			code := 0
			if ok {
				code = exitErr.ExitCode()
			}
			return nil, fzerrors.NewSubprocess(stage.name(), code,
				strings.TrimSpace(stderr.String()), err)
		}
	}

	return out.Bytes(), nil
}

// Filter feeds input to a single stage's stdin and returns its stdout.
// Used for the NUL-framed multiline path where candidate records are
// materialized in memory rather than piped from a live producer.
func Filter(ctx context.Context, stage Stage, input []byte, okExit ...int) ([]byte, error) {
	if len(okExit) == 0 {
		okExit = []int{0, 1, 130}
	}

	cmd := stage.command(ctx)
	cmd.Stdin = bytes.NewReader(input)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok || !codeIn(exitErr.ExitCode(), okExit) {
			code := 0
			if ok {
				code = exitErr.ExitCode()
			}
			return nil, fzerrors.NewSubprocess(stage.name(), code,
				strings.TrimSpace(stderr.String()), err)
		}
	}

	return out.Bytes(), nil
}

func producerExitOK(err error, ok []int) bool {
	exitErr, isExit := err.(*exec.ExitError)
	if !isExit {
		return false
	}
	if codeIn(exitErr.ExitCode(), ok) {
		return true
	}
	// Signal exit: a consumer that stopped reading killed the producer
	// through the pipe. SIGPIPE is the expected mechanism.
	if status, isWait := exitErr.Sys().(syscall.WaitStatus); isWait && status.Signaled() {
		return status.Signal() == syscall.SIGPIPE
	}
	return false
}

func codeIn(code int, ok []int) bool {
	for _, c := range ok {
		if code == c {
			return true
		}
	}
	return false
}
