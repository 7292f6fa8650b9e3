package test

import (
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/ava12/pprt"
)

func fatalf(t *testing.T, message string, params ...any) {
	t.Helper()
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

func Assert(t *testing.T, cond bool, message string, params ...any) {
	t.Helper()
	if !cond {
		fatalf(t, message, params...)
	}
}

func Expect(t *testing.T, cond bool, expected, got any) {
	t.Helper()
	if !cond {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

func ExpectBool(t *testing.T, expected, got bool) {
	t.Helper()
	Expect(t, expected == got, expected, got)
}

func ExpectInt(t *testing.T, expected, got int) {
	t.Helper()
	Expect(t, expected == got, expected, got)
}

// ExpectErrorCode fails unless e is (or wraps) *pprt.Error with given code. Returns the error found.
func ExpectErrorCode(t *testing.T, expected int, e error) *pprt.Error {
	t.Helper()
	var pe *pprt.Error
	if e != nil && errors.As(e, &pe) && pe.Code == expected {
		return pe
	}

	fatalf(t, "expecting error code %d, got %v", expected, e)
	return nil
}
