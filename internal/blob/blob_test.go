package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	payload := "AnimalID,ExitArm\nM-001,2\n"
	info, err := store.Put(ctx, "runs/r1/day_1.csv", strings.NewReader(payload), PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"run": "r1"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "runs/r1/day_1.csv" || info.Size != int64(len(payload)) {
		t.Fatalf("unexpected info: %+v", info)
	}

	// Create-only semantics.
	if _, err := store.Put(ctx, "runs/r1/day_1.csv", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put to fail")
	}

	got, rc, err := store.Get(ctx, "runs/r1/day_1.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != payload {
		t.Fatalf("payload mismatch: %q", body)
	}
	if got.ContentType != "text/csv" || got.Metadata["run"] != "r1" {
		t.Fatalf("metadata lost: %+v", got)
	}

	if _, _, err := store.Get(ctx, "runs/r1/missing.csv"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	if _, err := store.Put(ctx, "runs/r1/day_2.csv", strings.NewReader("a"), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if _, err := store.Put(ctx, "runs/r2/day_1.csv", strings.NewReader("b"), PutOptions{}); err != nil {
		t.Fatalf("put other run: %v", err)
	}
	infos, err := store.List(ctx, "runs/r1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "runs/r1/day_1.csv" || infos[1].Key != "runs/r1/day_2.csv" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	ok, err := store.Delete(ctx, "runs/r1/day_2.csv")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = store.Delete(ctx, "runs/r1/day_2.csv")
	if err != nil || ok {
		t.Fatalf("second delete should be (false, nil), got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestFilesystemStoreContract(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	testStoreContract(t, store)
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	for _, key := range []string{"", "../escape", "/abs", "a/../../b"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

func TestMemoryStorePresignUnsupported(t *testing.T) {
	if _, err := NewMemory().PresignURL(context.Background(), "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
