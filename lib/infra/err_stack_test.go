package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{Frame(0), "%s", unknownFile},
		{Frame(0), "%n", unknownFunc},
		{Frame(0), "%d", "0"},
		{Frame(0), "%v", unknownFile + ":0"},
	}

	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, tc.Frame))
	}

	full := fmt.Sprintf("%+s", initPC)
	require.True(t, strings.HasPrefix(full, "github.com/benz9527/xbtree/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(full, "err_stack_test.go"))
}

func TestFrameMarshalText(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xbtree/lib/infra.init "))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, unknownFrame, string(text))
}

func TestErrorStackWrap(t *testing.T) {
	errBase := errors.New("base")

	err := NewErrorStack("first")
	require.Equal(t, "first", err.Error())
	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestErrorStackWrap", fmt.Sprintf("%n", es.Frames()[0]))

	err = WrapErrorStackWithMessage(errBase, "ctx")
	require.Equal(t, "ctx: base", err.Error())
	require.ErrorIs(t, err, errBase)

	err = WrapErrorStack(errBase)
	require.Equal(t, "base", err.Error())
	require.ErrorIs(t, err, errBase)

	again := WrapErrorStack(err)
	require.Same(t, err, again)

	require.NoError(t, WrapErrorStack(nil))
	require.NoError(t, WrapErrorStackWithMessage(nil, "ignored"))
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := WrapErrorStackWithMessage(errors.New("cause"), "wrapped")
	es := err.(ErrorStack)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "wrapped: cause", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]interface{})
	require.True(t, ok)
	require.Len(t, frames, len(es.Frames()))
}
