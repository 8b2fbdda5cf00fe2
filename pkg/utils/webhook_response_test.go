package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: empty body", ErrInvalidPayload), http.StatusBadRequest},
		{ErrMissingReference, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", ErrMalformedReference, "x"), http.StatusBadRequest},
		{ErrDataIntegrity, http.StatusInternalServerError},
		{fmt.Errorf("find: %w: %w", ErrDatabaseError, errors.New("conn refused")), http.StatusInternalServerError},
		{ErrDuplicateRecord, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WebhookStatus(tc.err), "%v", tc.err)
	}
}

func TestWebhookBody(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"received": true}, WebhookBody(nil))
	assert.Equal(t, map[string]interface{}{"error": "invalid webhook payload: empty body"},
		WebhookBody(fmt.Errorf("%w: empty body", ErrInvalidPayload)))
	assert.Equal(t, map[string]interface{}{"error": ErrMalformedReference.Error()},
		WebhookBody(fmt.Errorf("%w: %q", ErrMalformedReference, "bad")))
	assert.Equal(t, map[string]interface{}{"error": "database error"},
		WebhookBody(fmt.Errorf("create: %w: %w", ErrDatabaseError, errors.New("pq: secret detail"))))
	assert.Equal(t, map[string]interface{}{"error": "internal server error"}, WebhookBody(errors.New("panic")))
}

func TestWebhookTokenMatches(t *testing.T) {
	assert.True(t, WebhookTokenMatches("", ""))
	assert.True(t, WebhookTokenMatches("", "anything"))
	assert.True(t, WebhookTokenMatches("abc", "abc"))
	assert.False(t, WebhookTokenMatches("abc", "abd"))
	assert.False(t, WebhookTokenMatches("abc", ""))
}
