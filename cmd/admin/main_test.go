package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/store/memstore"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewStore()
	dir := service.NewDirectory(st.Users, zap.NewNop())
	_, _, err := dir.Create(ctx, service.NewUser{Email: "boss@shop.io", Name: "Boss"})
	require.NoError(t, err)

	t.Run("usage", func(t *testing.T) {
		var out bytes.Buffer
		assert.ErrorIs(t, run(ctx, nil, dir, &out), errUsage)
		assert.ErrorIs(t, run(ctx, []string{"promote"}, dir, &out), errUsage)
		assert.ErrorIs(t, run(ctx, []string{"delete", "x"}, dir, &out), errUsage)
	})

	t.Run("promote", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(ctx, []string{"promote", "Boss@Shop.io"}, dir, &out))
		assert.Contains(t, out.String(), "updated")
		ok, err := dir.IsAdmin(ctx, "boss@shop.io")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("seller", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(ctx, []string{"seller", "boss@shop.io"}, dir, &out))
		u, err := dir.Lookup(ctx, "boss@shop.io")
		require.NoError(t, err)
		assert.Equal(t, domain.CategorySeller, u.Category)
		assert.Equal(t, domain.RoleAdmin, u.Role)
	})

	t.Run("unknown email", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{"promote", "ghost@shop.io"}, dir, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost@shop.io")
	})

	t.Run("list", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(ctx, []string{"list"}, dir, &out))
		assert.Contains(t, out.String(), "EMAIL")
		assert.Contains(t, out.String(), "boss@shop.io")
		assert.Contains(t, out.String(), "admin")
	})
}
