package js

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func run(t *testing.T, r *Runtime, code string) goja.Value {
	t.Helper()
	v, err := r.Execute(code)
	require.NoError(t, err)
	return v
}

func TestRuntime_Execute(t *testing.T) {
	r := NewRuntime(discardLogger())

	assert.Equal(t, int64(3), run(t, r, "1 + 2").ToInteger())

	run(t, r, "var x = 42; function add(a, b) { return a + b; }")
	assert.Equal(t, int64(42), run(t, r, "x").ToInteger())
	assert.Equal(t, int64(7), run(t, r, "add(3, 4)").ToInteger())
}

func TestRuntime_NilLogger(t *testing.T) {
	r := NewRuntime(nil)
	assert.Same(t, slog.Default(), r.Logger())
}

func TestRuntime_ErrorsAreRecorded(t *testing.T) {
	r := NewRuntime(discardLogger())
	var seen []error
	r.SetOnError(func(err error) { seen = append(seen, err) })

	_, err := r.Execute("throw new Error('boom')")
	require.Error(t, err)
	_, err = r.Execute("undefinedFunction()")
	require.Error(t, err)

	assert.Len(t, r.Errors(), 2)
	assert.Len(t, seen, 2)
	assert.Contains(t, r.Errors()[0].Error(), "boom")

	var exc *goja.Exception
	assert.True(t, errors.As(r.Errors()[0], &exc))

	r.ClearErrors()
	assert.Empty(t, r.Errors())

	// the runtime stays usable after errors
	assert.Equal(t, int64(2), run(t, r, "1 + 1").ToInteger())
}

func TestRuntime_ExecuteScript(t *testing.T) {
	r := NewRuntime(discardLogger())

	require.NoError(t, r.ExecuteScript("var y = 5;", "a.js"))
	assert.Error(t, r.ExecuteScript("var = ;", "b.js"))
	require.Len(t, r.Errors(), 1)

	assert.Equal(t, int64(5), run(t, r, "y").ToInteger())
}

func TestRuntime_ConsoleLogsToSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewRuntime(logger)

	run(t, r, `console.log("hello", 1, null, undefined)`)
	assert.Contains(t, buf.String(), `level=INFO msg="hello 1 null undefined" source=console`)

	buf.Reset()
	run(t, r, `console.warn("careful")`)
	assert.Contains(t, buf.String(), "level=WARN msg=careful")

	buf.Reset()
	run(t, r, `console.error("bad")`)
	assert.Contains(t, buf.String(), "level=ERROR msg=bad")

	buf.Reset()
	run(t, r, `console.debug("d"); console.trace("t")`)
	assert.Contains(t, buf.String(), "level=DEBUG msg=d")
	assert.Contains(t, buf.String(), "level=DEBUG msg=t")
}

func TestRuntime_ConsoleAssertAndCount(t *testing.T) {
	var buf bytes.Buffer
	r := NewRuntime(slog.New(slog.NewTextHandler(&buf, nil)))

	run(t, r, `console.assert(true, "never")`)
	assert.Empty(t, buf.String())

	run(t, r, `console.assert(1 === 2, "math")`)
	assert.Contains(t, buf.String(), `msg="Assertion failed: math"`)

	buf.Reset()
	run(t, r, `console.count("x"); console.count("x")`)
	assert.Contains(t, buf.String(), "msg=x source=console count=2")

	buf.Reset()
	run(t, r, `console.countReset("x"); console.count("x")`)
	assert.Contains(t, buf.String(), "count=1")
}
