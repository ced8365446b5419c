package lua

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestScriptsSharedPerVariant(t *testing.T) {
	const workers = 16
	sets := make([]*Set, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sets[i] = Scripts("shared-test")
		}(i)
	}
	wg.Wait()

	for i, s := range sets {
		if s != sets[0] {
			t.Fatalf("worker %d got a different script set", i)
		}
	}
	if Scripts("other-test") == sets[0] {
		t.Fatal("variants must not share a script set")
	}
}

func TestScriptsRunAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	s := Scripts("run-test")
	sha, err := client.ScriptLoad(ctx, Release).Result()
	if err != nil {
		t.Fatalf("script load: %v", err)
	}
	if sha != s.Release.Hash() {
		t.Fatalf("hash = %s, want %s", s.Release.Hash(), sha)
	}

	if err := mr.Set("k", "owner"); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		script *redis.Script
		args   []interface{}
		want   int64
	}{
		{s.Renew, []interface{}{"intruder", 1000}, 0},
		{s.Renew, []interface{}{"owner", 1000}, 1},
		{s.Release, []interface{}{"intruder"}, 0},
		{s.Release, []interface{}{"owner"}, 1},
		{s.Release, []interface{}{"owner"}, 0},
	} {
		got, err := tc.script.Run(ctx, client, []string{"k"}, tc.args...).Int64()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if got != tc.want {
			t.Fatalf("run with %v = %d, want %d", tc.args, got, tc.want)
		}
	}
	if mr.Exists("k") {
		t.Fatal("key should be deleted by its owner")
	}
}
