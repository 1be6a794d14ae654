package redis

import (
	"bytes"
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestStateStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewStateStore(newClient(mr))

	if _, ok, err := store.Load(context.Background()); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	blob := []byte(`{"players":[{"id":"p1","nickname":"Ann","score":10}]}`)
	if err := store.Save(context.Background(), blob); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("trivia:state") {
		t.Fatalf("expected state key to be set")
	}

	loaded, ok, err := store.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(loaded, blob) {
		t.Fatalf("round trip mismatch: %s", loaded)
	}
}
