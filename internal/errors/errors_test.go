package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"gorandtest/domain/core"
)

func TestGetCodeClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
		http int
	}{
		{"configuration", core.NewInvalidConfigurationError(core.ErrInvalidWorkers, "zero"), CodeInvalidConfiguration, 2, http.StatusBadRequest},
		{"computation", core.NewComputationError(stderrors.New("boom")), CodeComputationFailure, 3, http.StatusInternalServerError},
		{"division", core.ErrDivisionUndefined, CodeDivisionUndefined, 4, http.StatusInternalServerError},
		{"input", InvalidInput("bad file", stderrors.New("parse")), CodeInvalidInput, 5, http.StatusBadRequest},
		{"not found", NotFound("run"), CodeNotFound, 1, http.StatusNotFound},
		{"plain", stderrors.New("anything"), "UNKNOWN", 1, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.exit, ExitCode(tt.err))
			assert.Equal(t, tt.http, HTTPStatus(tt.err))
		})
	}
	assert.Equal(t, 0, ExitCode(nil))
}

func TestWrapKeepsCodeAndCause(t *testing.T) {
	cause := core.NewComputationError(stderrors.New("statistic failed"))
	wrapped := Wrapf(cause, "run %s", "abc")

	assert.Equal(t, CodeComputationFailure, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, core.ErrComputationFailure)
	assert.True(t, IsAppError(wrapped))
	assert.Contains(t, wrapped.Error(), "run abc")

	outer := fmt.Errorf("cli: %w", wrapped)
	assert.True(t, IsAppError(outer))
	assert.Equal(t, CodeComputationFailure, GetCode(outer))

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, CodeNotFound, GetCode(WithCode(CodeNotFound, stderrors.New("x"))))
}
