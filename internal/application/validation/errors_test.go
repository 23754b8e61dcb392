package validation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"moncfg-backend/internal/domain/models"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{nil, ""},
		{NewUnresolvedReferenceError(models.GroupKey("G1"), models.HostKey("H1")), KindUnresolvedReference},
		{errors.Wrap(&CircularLinkageError{Path: []string{"A", "A"}}, "link"), KindCircularLinkage},
		{errors.WithMessage(&DuplicateLinkageError{Host: "H", Template: "C"}, "link"), KindDuplicateLinkage},
		{&LinkedToDifferentTemplateError{Host: "H", Template: "A", OtherTemplate: "B"}, KindLinkedToDifferentTemplate},
		{&PermissionDeniedError{Kind: models.KindHost, IDs: []models.ID{1}}, KindPermissionDenied},
		{NewStoreError(errors.New("connection reset"), "insert %s", models.KindItem), KindStoreError},
		{NewValidationError("unsupported version %q", "2.0"), KindInvalidInput},
		{ErrKeyNotSeeded, KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, ErrorKind(tc.err), "%v", tc.err)
	}
}

func TestStoreError_Unwraps(t *testing.T) {
	cause := errors.New("unique violation")
	err := NewStoreError(cause, "insert item")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Cause(err))
	assert.Contains(t, err.Error(), "insert item")
	assert.Nil(t, NewStoreError(nil, "noop"))
}

func TestLinkedToDifferentTemplateError_NamesBothTemplates(t *testing.T) {
	err := &LinkedToDifferentTemplateError{
		Host:          "H1",
		Entity:        models.ItemKey("H1", "k1"),
		Template:      "T2",
		OtherTemplate: "T1",
	}
	assert.Contains(t, err.Error(), "T1")
	assert.Contains(t, err.Error(), "T2")
	assert.Contains(t, err.Error(), "H1")
}
