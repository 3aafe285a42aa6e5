package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCode(t *testing.T) {
	base := FitFailed("gaussian", stderrors.New("optimizer diverged"))
	wrapped := Wrap(base, "condition 42")

	assert.Equal(t, CodeFitFailed, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "condition 42")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithCode(CodeGoFFailed, nil))
}

func TestWithCodeOverrides(t *testing.T) {
	err := WithCode(CodeStabilityFailed, InvalidInput("bad"))
	assert.Equal(t, CodeStabilityFailed, GetCode(err))
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestUnwrapChain(t *testing.T) {
	cause := stderrors.New("boundary estimate")
	err := FitFailed("clayton", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "config", err: ConfigInvalid("bad epsilon"), code: CodeConfigInvalid},
		{name: "database", err: DatabaseError("connection lost"), code: CodeDatabaseError},
		{name: "input", err: InvalidInput("mismatched lengths"), code: CodeInvalidInput},
		{name: "all fits", err: AllFitsFailed("cond-9"), code: CodeAllFitsFailed},
		{name: "not found", err: NotFound("condition report"), code: CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, IsAppError(tt.err))
			assert.Equal(t, tt.code, GetCode(tt.err))
		})
	}
}
