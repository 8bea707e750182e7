package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"logistica/models"
)

func TestProductCacheLoadsOnceUntilInvalidated(t *testing.T) {
	calls := 0
	c := NewProductCache(func(ctx context.Context) ([]models.Product, error) {
		calls++
		return []models.Product{{SKU: "X1", Unit: models.UnitITJ}}, nil
	})

	for i := 0; i < 3; i++ {
		products, err := c.All(context.Background())
		if err != nil {
			t.Fatalf("load products: %v", err)
		}
		if len(products) != 1 {
			t.Fatalf("expected 1 product, got %d", len(products))
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 load, got %d", calls)
	}

	c.Invalidate()
	if c.Loaded() {
		t.Fatalf("expected cache to be unloaded after invalidate")
	}
	if _, err := c.All(context.Background()); err != nil {
		t.Fatalf("reload products: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", calls)
	}
}

func TestProductCacheDoesNotCacheFailures(t *testing.T) {
	fail := true
	c := NewProductCache(func(ctx context.Context) ([]models.Product, error) {
		if fail {
			return nil, errors.New("disk gone")
		}
		return []models.Product{}, nil
	})

	if _, err := c.All(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	fail = false
	if _, err := c.All(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestProductCacheReturnsCopies(t *testing.T) {
	c := NewProductCache(func(ctx context.Context) ([]models.Product, error) {
		return []models.Product{{SKU: "X1"}}, nil
	})
	first, _ := c.All(context.Background())
	first[0].SKU = "mutated"

	second, _ := c.All(context.Background())
	if second[0].SKU != "X1" {
		t.Fatalf("cache was mutated through returned slice: %q", second[0].SKU)
	}
}

func TestSessionCacheEviction(t *testing.T) {
	c := NewUserSessionCache()
	now := time.Now()
	c.AddSession(models.Session{ID: "a", UserID: 1, ExpiresAt: now.Add(time.Hour)})
	c.AddSession(models.Session{ID: "b", UserID: 1, ExpiresAt: now.Add(-time.Minute)})
	c.AddSession(models.Session{ID: "c", UserID: 2, ExpiresAt: now.Add(time.Hour)})

	if n := c.DeleteExpired(now); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if n := c.DeleteSessionsByUserID(1); n != 1 {
		t.Fatalf("expected 1 session for user 1, got %d", n)
	}
	if _, ok := c.FindSessionBySessionToken("c"); !ok {
		t.Fatalf("expected session c to remain")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached session, got %d", c.Len())
	}
}
