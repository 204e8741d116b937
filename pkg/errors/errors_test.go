package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorIsMatchesCode(t *testing.T) {
	err := Wrap(fmt.Errorf("dial tcp: timeout"), ErrSoftFetchFailure, "related articles")

	assert.True(t, errors.Is(err, New(ErrSoftFetchFailure, "")))
	assert.False(t, errors.Is(err, New(ErrNotFound, "")))
	assert.Equal(t, "[SOFT_FETCH_FAILURE] related articles: dial tcp: timeout", err.Error())
}

func TestCodeOfThroughWrapping(t *testing.T) {
	inner := Newf(ErrNotFound, "no entry for %s", "/missing")
	outer := fmt.Errorf("assemble: %w", inner)

	assert.Equal(t, ErrNotFound, CodeOf(outer))
	assert.True(t, IsNotFound(outer))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrStoreStatus, "unused"))
	assert.Nil(t, Wrapf(nil, ErrStoreStatus, "unused %d", 1))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrMalformedBlock, "unrenderable block").WithDetail("key", "custom_widget")
	assert.Equal(t, "custom_widget", err.Details["key"])
}
