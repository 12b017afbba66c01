package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/storage/storagetest"
)

func TestCartLifecycle(t *testing.T) {
	db := storagetest.NewDB(t)
	ctx := context.Background()
	user := storagetest.CreateUser(t, db, "buyer@example.com", model.RoleUser)
	seller := storagetest.CreateUser(t, db, "seller@example.com", model.RoleSeller)
	shirt := storagetest.CreateProduct(t, db, seller.ID, "Shirt", "19.99", 10)
	socks := storagetest.CreateProduct(t, db, seller.ID, "Socks", "4.50", 10)
	svc := NewCartService(db)

	line, err := svc.Add(ctx, user.ID, shirt.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Item.Quantity)

	line, err = svc.Add(ctx, user.ID, shirt.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Item.Quantity, "adding the same product merges lines")

	_, err = svc.Add(ctx, user.ID, socks.ID, 2)
	require.NoError(t, err)

	view, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 5, view.TotalItems)
	assert.Equal(t, "68.97", view.Subtotal.StringFixed(2))

	updated, err := svc.Update(ctx, user.ID, line.Item.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Item.Quantity)
	assert.Equal(t, "19.99", updated.LineTotal().StringFixed(2))

	require.NoError(t, svc.Remove(ctx, user.ID, line.Item.ID))
	view, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, socks.ID, view.Lines[0].Product.ID)

	require.NoError(t, svc.Clear(ctx, user.ID))
	view, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Subtotal.IsZero())
}

func TestCartRejects(t *testing.T) {
	db := storagetest.NewDB(t)
	ctx := context.Background()
	user := storagetest.CreateUser(t, db, "buyer@example.com", model.RoleUser)
	intruder := storagetest.CreateUser(t, db, "intruder@example.com", model.RoleUser)
	seller := storagetest.CreateUser(t, db, "seller@example.com", model.RoleSeller)
	p := storagetest.CreateProduct(t, db, seller.ID, "Shirt", "19.99", 10)
	hidden := storagetest.CreateProduct(t, db, seller.ID, "Retired", "1.00", 10)
	require.NoError(t, db.Model(&hidden).Update("active", false).Error)
	svc := NewCartService(db)

	_, err := svc.Add(ctx, user.ID, p.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Add(ctx, user.ID, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, 999, p.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, user.ID, hidden.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	line, err := svc.Add(ctx, user.ID, p.ID, 1)
	require.NoError(t, err)

	_, err = svc.Update(ctx, user.ID, line.Item.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Update(ctx, intruder.ID, line.Item.ID, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Remove(ctx, intruder.ID, line.Item.ID), ErrNotFound)
	assert.EqualValues(t, 1, storagetest.Count(t, db, &model.CartItem{}, "user_id = ?", user.ID))
}
