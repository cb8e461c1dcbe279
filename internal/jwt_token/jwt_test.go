package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kyc-ledger/pkg/domain-errors"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", 15*time.Minute)

	t.Run("round trip preserves identity", func(t *testing.T) {
		token, err := svc.GenerateToken("bank-a", RoleBank)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "bank-a", claims.Address)
		assert.Equal(t, RoleBank, claims.Role)
	})

	t.Run("rejects empty address", func(t *testing.T) {
		_, err := svc.GenerateToken("", RoleBank)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := svc.GenerateToken("bank-a", "auditor")
		require.Error(t, err)
	})

	t.Run("rejects token signed with different key", func(t *testing.T) {
		other := NewJWTService("other-key", 15*time.Minute)
		token, err := other.GenerateToken("bank-a", RoleBank)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects expired token", func(t *testing.T) {
		short := NewJWTService("test-signing-key", -time.Minute)
		token, err := short.GenerateToken("bank-a", RoleBank)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
