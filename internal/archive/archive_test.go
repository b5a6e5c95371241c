package archive

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mazecore/pkg/domain"
)

func sampleRun(id string, createdAt time.Time) domain.ScheduleRun {
	seed := int64(7)
	return domain.ScheduleRun{
		ID:        id,
		CreatedAt: createdAt,
		Config:    domain.ScheduleConfig{LearningDays: 1, ReversalDays: 1, TrialsPerDay: 2, Seed: &seed},
		Animals: []domain.Animal{
			{ID: "M-001", Tag: "L1", Sex: "Male", Genotype: "WT", Cage: "C1"},
		},
		ExitArms: domain.ExitArmMap{"M-001": domain.ArmTwo},
		Days: []domain.DayTable{
			{
				Day:    1,
				Phase:  domain.PhaseLearning,
				Header: []string{"AnimalID", "Tag", "Sex", "Genotype", "Cage", "ExitArm", "T1", "T2"},
				Rows: []domain.Row{
					{
						Animal:    domain.Animal{ID: "M-001", Tag: "L1", Sex: "Male", Genotype: "WT", Cage: "C1"},
						ExitArm:   domain.ArmTwo,
						StartArms: []domain.Arm{domain.ArmOne, domain.ArmThree},
					},
				},
			},
		},
		Fallbacks: 0,
	}
}

func testStoreContract(t *testing.T, store domain.ScheduleStore) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	first := sampleRun("run-b", base.Add(time.Minute))
	second := sampleRun("run-a", base)

	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	// Run IDs are create-only.
	if err := store.SaveRun(ctx, first); err == nil {
		t.Fatalf("expected duplicate save to fail")
	}
	if err := store.SaveRun(ctx, domain.ScheduleRun{}); err == nil {
		t.Fatalf("expected empty id save to fail")
	}

	got, ok, err := store.GetRun(ctx, "run-b")
	if err != nil || !ok {
		t.Fatalf("get run-b: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, first)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%v err=%v", ok, err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		ids := make([]string, 0, len(runs))
		for _, r := range runs {
			ids = append(ids, r.ID)
		}
		t.Fatalf("unexpected listing order: %v", ids)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestSQLiteStoreContract(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() { _ = store.Close() }()
	testStoreContract(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	run := sampleRun("run-1", time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC))
	if err := store.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, ok, err := reopened.GetRun(context.Background(), "run-1")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, run) {
		t.Fatalf("run changed across reopen:\n got %+v\nwant %+v", got, run)
	}
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("MAZECORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MAZECORE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := NewPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("new postgres store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, err := store.DB().ExecContext(ctx, `TRUNCATE runs`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	testStoreContract(t, store)
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Setenv("MAZECORE_ARCHIVE_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	t.Setenv("MAZECORE_ARCHIVE_DRIVER", "sqlite")
	t.Setenv("MAZECORE_ARCHIVE_SQLITE_PATH", filepath.Join(t.TempDir(), "runs.db"))
	store, err = Open(context.Background())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sq, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	} else {
		_ = sq.Close()
	}

	t.Setenv("MAZECORE_ARCHIVE_DRIVER", "bogus")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
