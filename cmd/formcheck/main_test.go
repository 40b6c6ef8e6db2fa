// File: cmd/formcheck/main_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/observability"
)

func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	t.Run("WritesPanicLog", func(t *testing.T) {
		var written string
		var code int
		osWriteFile = func(name string, data []byte, perm os.FileMode) error {
			assert.Equal(t, panicLogFile, name)
			written = string(data)
			return nil
		}
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("boom")
		}()

		assert.Equal(t, 2, code)
		assert.True(t, strings.HasPrefix(written, "panic: boom"))
		assert.Contains(t, written, "goroutine")
	})

	t.Run("WriteFailureStillExits", func(t *testing.T) {
		var code int
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only fs") }
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("boom")
		}()
		assert.Equal(t, 2, code)
	})

	t.Run("NoPanicNoExit", func(t *testing.T) {
		called := false
		osExit = func(int) { called = true }
		func() { defer handlePanic() }()
		assert.False(t, called)
	})
}

func TestInteractive(t *testing.T) {
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Chdir(t.TempDir())

	in := strings.NewReader("\nversion\nbogus-command\nquit\nversion\n")
	var out bytes.Buffer
	require.NoError(t, interactive(context.Background(), in, &out))

	s := out.String()
	assert.Equal(t, 1, strings.Count(s, "formcheck 0.1.0"), "commands after quit are not run")
	assert.Contains(t, s, `Error: unknown command "bogus-command"`)
	assert.True(t, strings.HasSuffix(s, "Bye.\n"))
}

type statFunc func() (os.FileInfo, error)

func (f statFunc) Stat() (os.FileInfo, error) { return f() }

type modeInfo struct {
	os.FileInfo
	mode os.FileMode
}

func (m modeInfo) Mode() os.FileMode { return m.mode }

func TestIsTerminal(t *testing.T) {
	t.Run("Pipe", func(t *testing.T) {
		r, w, err := os.Pipe()
		require.NoError(t, err)
		defer r.Close()
		defer w.Close()
		assert.False(t, isTerminal(r))
	})

	t.Run("RegularFile", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "stdin")
		require.NoError(t, err)
		defer f.Close()
		assert.False(t, isTerminal(f))
	})

	t.Run("CharDevice", func(t *testing.T) {
		tty := statFunc(func() (os.FileInfo, error) { return modeInfo{mode: os.ModeDevice | os.ModeCharDevice}, nil })
		assert.True(t, isTerminal(tty))
	})

	t.Run("StatError", func(t *testing.T) {
		broken := statFunc(func() (os.FileInfo, error) { return nil, errors.New("bad file descriptor") })
		assert.False(t, isTerminal(broken))
	})
}
