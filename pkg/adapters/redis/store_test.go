package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/statesim/pkg/adapters/redis"
	"github.com/aretw0/statesim/pkg/domain"
	contract "github.com/aretw0/statesim/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	contract.RunRunStoreContract(t, store)
}

func TestRedisStore_TTLPrunesIndex(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	run := domain.NewRun("expiring", "m", nil, []domain.ReplayStep{{Event: "GO"}})
	if err := store.Save(ctx, run); err != nil {
		t.Fatal(err)
	}

	// Expire the value; the index entry survives until the next List.
	mr.FastForward(2 * time.Minute)

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, r := range runs {
		if r.ID == run.ID {
			t.Error("expired run still listed")
		}
	}

	if _, err := store.Load(ctx, run.ID); err != domain.ErrRunNotFound {
		t.Errorf("Load() = %v, want ErrRunNotFound", err)
	}
}
