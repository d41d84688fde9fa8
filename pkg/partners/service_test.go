package partners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/models"
)

func registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Name:        "Kavya Iyer",
		CompanyName: "Iyer Commerce Consulting",
		Email:       "kavya@example.com",
		Phone:       "+919876543210",
		Password:    "a-long-password",
		Kind:        "reseller",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Creates partner with hashed password and E.164 phone", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))

		partner, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		assert.Equal(t, domain.KindReseller, partner.Kind)
		assert.Equal(t, domain.RolePartner, partner.Role)
		assert.Equal(t, "+919876543210", partner.Phone)
		assert.NotEqual(t, "a-long-password", partner.PasswordHash)
	})

	t.Run("Success - Local phone numbers get the default region", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))

		req := registerRequest()
		req.Phone = "98765 43210"

		partner, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "+919876543210", partner.Phone)
	})

	t.Run("Failure - Duplicate email is rejected", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))

		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		dup := registerRequest()
		dup.Kind = "referral"
		_, err = svc.Register(ctx, dup)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("Failure - Malformed phone is rejected", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))

		req := registerRequest()
		req.Phone = "not-a-phone"
		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Valid credentials return the partner", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))
		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		partner, err := svc.Authenticate(ctx, "kavya@example.com", "a-long-password")
		require.NoError(t, err)
		assert.Equal(t, "kavya@example.com", partner.Email)
	})

	t.Run("Failure - Wrong password", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))
		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "kavya@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Failure - Unknown email reads as invalid credentials", func(t *testing.T) {
		svc := NewService(database.OpenTest(t))

		_, err := svc.Authenticate(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
