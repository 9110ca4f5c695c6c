package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ember-dating/match-service/internal/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, 404},
		{domain.ErrForbidden, 403},
		{domain.ErrSelfAction, 400},
		{domain.ErrInvalidContent, 400},
		{fmt.Errorf("open thread: %w", domain.ErrForbidden), 403},
		{errors.New("mongo: connection reset"), 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, statusFor(tc.err), "err=%v", tc.err)
	}
}
