package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/membership/internal/membership/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrUnknownRole, http.StatusBadRequest},
		{service.ErrEmailTaken, http.StatusBadRequest},
		{service.ErrOTPExpired, http.StatusBadRequest},
		{service.ErrInviteAlreadyUsed, http.StatusBadRequest},
		{service.ErrInvalidTransition, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: suspended", service.ErrAccountInactive), http.StatusUnauthorized},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrMailDelivery, http.StatusInternalServerError},
		{service.ErrTokenConfig, http.StatusInternalServerError},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
