package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheHelper(client, prefix), mr
}

type cachedForm struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCacheHelperSetGet(t *testing.T) {
	helper, _ := newTestHelper(t, "form:")
	ctx := context.Background()

	want := cachedForm{ID: "f1", Name: "Mentor feedback"}
	if err := helper.Set(ctx, "id:f1", want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got cachedForm
	if err := helper.Get(ctx, "id:f1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheHelperGetMissing(t *testing.T) {
	helper, _ := newTestHelper(t, "form:")

	var got cachedForm
	err := helper.Get(context.Background(), "id:absent", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("err = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "form:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:f1", cachedForm{}, time.Minute); err != nil {
		t.Errorf("set without client: %v", err)
	}
	if err := helper.Delete(ctx, "id:f1"); err != nil {
		t.Errorf("delete without client: %v", err)
	}
	var got cachedForm
	if err := helper.Get(ctx, "id:f1", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("get err = %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t, "report:")
	ctx := context.Background()

	keys := []string{"event:e1:rate", "event:e1:answers", "event:e2:rate"}
	for _, k := range keys {
		if err := helper.Set(ctx, k, cachedForm{ID: k}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "event:e1:*"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if mr.Exists("report:event:e1:rate") || mr.Exists("report:event:e1:answers") {
		t.Error("e1 keys should be gone")
	}
	if !mr.Exists("report:event:e2:rate") {
		t.Error("e2 key should survive")
	}
}

func TestCacheOrExecuteFetchesOnMiss(t *testing.T) {
	helper, _ := newTestHelper(t, "event:")
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedForm{ID: "e1", Name: "Spring cohort"}, nil
	}

	var got cachedForm
	if err := helper.CacheOrExecute(ctx, "id:e1", &got, time.Minute, fetch); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if calls != 1 || got.Name != "Spring cohort" {
		t.Fatalf("calls = %d, got = %+v", calls, got)
	}
}
