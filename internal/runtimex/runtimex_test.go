package runtimex

import (
	"errors"
	"testing"
)

func TestPanicOnError(t *testing.T) {
	badfunc := func(in error) (out error) {
		defer func() {
			out = recover().(error)
		}()
		PanicOnError(in, "we expect this assertion to fail")
		return
	}

	t.Run("error is nil", func(t *testing.T) {
		PanicOnError(nil, "this assertion should not fail")
	})

	t.Run("error is not nil", func(t *testing.T) {
		expected := errors.New("mocked error")
		if !errors.Is(badfunc(expected), expected) {
			t.Fatal("not the error we expected")
		}
	})
}

func TestAssert(t *testing.T) {
	badfunc := func(in bool, message string) (out error) {
		defer func() {
			out = recover().(error)
		}()
		Assert(in, message)
		return
	}

	t.Run("assertion is true", func(t *testing.T) {
		Assert(true, "this assertion should not fail")
	})

	t.Run("assertion is false", func(t *testing.T) {
		message := "mocked error"
		err := badfunc(false, message)
		if err == nil || err.Error() != message {
			t.Fatal("not the error we expected", err)
		}
	})
}

func TestTry1(t *testing.T) {
	t.Run("returns the value", func(t *testing.T) {
		if v := Try1(17, nil); v != 17 {
			t.Fatal("unexpected value", v)
		}
	})

	t.Run("panics on error", func(t *testing.T) {
		expected := errors.New("mocked error")
		defer func() {
			err := recover().(error)
			if !errors.Is(err, expected) {
				t.Fatal("not the error we expected", err)
			}
		}()
		Try1(1, expected)
	})
}
