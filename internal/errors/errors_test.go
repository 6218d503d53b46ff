package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"gotrial/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestFromDomain_MapsSentinels(t *testing.T) {
	tests := []struct {
		err        error
		wantCode   string
		wantStatus int
	}{
		{core.NewConfigurationError("ratio", "empty"), CodeInvalidConfiguration, http.StatusBadRequest},
		{core.NewEffectSizeError(0), CodeInvalidEffectSize, http.StatusBadRequest},
		{core.NewDropoutRateError(1), CodeInvalidDropoutRate, http.StatusBadRequest},
		{core.NewDesignError("arms", "none"), CodeInvalidDesign, http.StatusBadRequest},
		{core.NewNotFoundError("allocation", "a-1"), CodeNotFound, http.StatusNotFound},
		{fmt.Errorf("enroll: %w", core.ErrAllocationExhausted), CodeExhausted, http.StatusConflict},
		{stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		appErr := FromDomain(tt.err)
		assert.Equal(t, tt.wantCode, appErr.Code, "error %v", tt.err)
		assert.Equal(t, tt.wantStatus, HTTPStatus(appErr.Code))
		assert.True(t, stderrors.Is(appErr, tt.err))
	}
}

func TestWrap_PreservesCodeAndChain(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))

	base := core.NewEffectSizeError(-1)
	wrapped := Wrap(base, "sample size failed")
	assert.Equal(t, CodeInvalidEffectSize, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, core.ErrInvalidEffectSize))

	rewrapped := Wrapf(wrapped, "request %d", 7)
	assert.Equal(t, CodeInvalidEffectSize, GetCode(rewrapped))
	assert.Equal(t, "request 7: sample size failed: "+base.Error(), rewrapped.Error())
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeConfigInvalid, GetCode(ConfigInvalid("PORT missing")))
	assert.Equal(t, CodeInvalidConfiguration, GetCode(core.NewConfigurationError("ratio", "empty")))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.Equal(t, "UNKNOWN", GetCode(nil))
}
