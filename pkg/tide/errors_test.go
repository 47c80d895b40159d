package tide

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_FormatAndUnwrap(t *testing.T) {
	underlying := errors.New("boom")
	err := &Error{Op: "bloc.handle", Kind: KindHandler, Container: "counter#deadbeef", Err: underlying}

	assert.Equal(t, "bloc.handle [handler] container=counter#deadbeef: boom", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestError_FormatWithoutContainer(t *testing.T) {
	err := &Error{Op: "store.Emit", Kind: KindClosed, Err: ErrClosed}
	assert.Equal(t, "store.Emit [closed]: container is closed", err.Error())
}

func TestErrorKind_String(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindClosed, "closed"},
		{KindUnhandled, "unhandled"},
		{KindHandler, "handler"},
		{KindPanic, "panic"},
		{KindObserver, "observer"},
		{ErrorKind(99), "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.kind.String())
	}
}

func TestPanicError_Format(t *testing.T) {
	err := &PanicError{Op: "tide.increment handler", Value: "oops"}
	assert.Equal(t, "panic in tide.increment handler: oops", err.Error())

	bare := &PanicError{Value: 7}
	assert.Equal(t, "panic: 7", bare.Error())
}
