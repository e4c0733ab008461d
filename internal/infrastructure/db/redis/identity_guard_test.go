package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestIdentityKeys(t *testing.T) {
	cases := []struct {
		email, phone string
		want         []string
	}{
		{"", "", nil},
		{"a@x.com", "", []string{"account:identity:email:a@x.com"}},
		{"", "+5215550000", []string{"account:identity:phone:+5215550000"}},
		{"a@x.com", "+5215550000", []string{"account:identity:email:a@x.com", "account:identity:phone:+5215550000"}},
	}

	for _, tc := range cases {
		got := identityKeys(tc.email, tc.phone)
		if len(got) != len(tc.want) {
			t.Fatalf("(%q,%q): want %v, got %v", tc.email, tc.phone, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("(%q,%q)[%d]: want %q, got %q", tc.email, tc.phone, i, tc.want[i], got[i])
			}
		}
	}
}

type fakeKeyStore struct {
	held    map[string]bool
	failOn  string
	delErr  error
	deleted [][]string
}

func newFakeKeyStore(held ...string) *fakeKeyStore {
	f := &fakeKeyStore{held: make(map[string]bool)}
	for _, k := range held {
		f.held[k] = true
	}
	return f
}

func (f *fakeKeyStore) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if key == f.failOn {
		return redis.NewBoolResult(false, errors.New("connection reset"))
	}
	if f.held[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.held[key] = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeKeyStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.deleted = append(f.deleted, keys)
	if f.delErr != nil {
		return redis.NewIntResult(0, f.delErr)
	}
	var n int64
	for _, k := range keys {
		if f.held[k] {
			delete(f.held, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

const (
	emailKey = "account:identity:email:a@x.com"
	phoneKey = "account:identity:phone:+5215550000"
)

func TestIdentityGuard_Reserve(t *testing.T) {
	store := newFakeKeyStore()
	g := newIdentityGuard(store)

	ok, err := g.Reserve(context.Background(), "a@x.com", "+5215550000")
	if err != nil || !ok {
		t.Fatalf("expected reservation, got ok=%v err=%v", ok, err)
	}
	if !store.held[emailKey] || !store.held[phoneKey] {
		t.Fatalf("both identities must be held, got %v", store.held)
	}

	ok, err = g.Reserve(context.Background(), "a@x.com", "")
	if err != nil || ok {
		t.Fatalf("second reservation must be refused, got ok=%v err=%v", ok, err)
	}
}

func TestIdentityGuard_Reserve_RollsBackWhenPhoneHeld(t *testing.T) {
	store := newFakeKeyStore(phoneKey)
	g := newIdentityGuard(store)

	ok, err := g.Reserve(context.Background(), "a@x.com", "+5215550000")
	if err != nil || ok {
		t.Fatalf("expected refusal, got ok=%v err=%v", ok, err)
	}
	if store.held[emailKey] {
		t.Fatal("email reservation must be dropped")
	}
	if !store.held[phoneKey] {
		t.Fatal("the other request's phone reservation must survive")
	}
}

func TestIdentityGuard_Reserve_RollsBackOnError(t *testing.T) {
	store := newFakeKeyStore()
	store.failOn = phoneKey
	g := newIdentityGuard(store)

	ok, err := g.Reserve(context.Background(), "a@x.com", "+5215550000")
	if err == nil || ok {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
	if store.held[emailKey] {
		t.Fatal("email reservation must be dropped after a failure")
	}
}

func TestIdentityGuard_Release(t *testing.T) {
	store := newFakeKeyStore()
	g := newIdentityGuard(store)
	ctx := context.Background()

	if _, err := g.Reserve(ctx, "a@x.com", "+5215550000"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := g.Release(ctx, "a@x.com", "+5215550000"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(store.held) != 0 {
		t.Fatalf("all keys must be freed, got %v", store.held)
	}

	ok, err := g.Reserve(ctx, "a@x.com", "")
	if err != nil || !ok {
		t.Fatalf("identity must be reservable again, got ok=%v err=%v", ok, err)
	}
}

func TestIdentityGuard_Release_EmptyAndError(t *testing.T) {
	store := newFakeKeyStore()
	g := newIdentityGuard(store)

	if err := g.Release(context.Background(), "", ""); err != nil {
		t.Fatalf("empty release: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("no Del expected for empty identities, got %v", store.deleted)
	}

	store.delErr = errors.New("timeout")
	if err := g.Release(context.Background(), "a@x.com", ""); err == nil {
		t.Fatal("expected release error")
	}
}
