package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"csvdash/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestDataParseError_MatchesCodeAndSentinel(t *testing.T) {
	err := DataParseError(core.NewParseError("line %d: expected %d fields, saw %d", 3, 2, 3))

	assert.Equal(t, CodeDataParse, GetCode(err))
	assert.True(t, core.IsDataParseError(err))
	assert.Contains(t, err.Error(), "line 3")
}

func TestWrap_KeepsCodeThroughChain(t *testing.T) {
	inner := DataParseError(core.ErrDataParse)
	wrapped := fmt.Errorf("upload: %w", Wrap(inner, "ingestion failed"))

	assert.True(t, IsAppError(wrapped))
	assert.True(t, HasCode(wrapped, CodeDataParse))
	assert.True(t, stderrors.Is(wrapped, core.ErrDataParse))
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	err := Wrap(stderrors.New("boom"), "render failed")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "render failed: boom", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad column"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}
