package repository

import (
	"context"
	"reflect"
	"testing"

	repoerrors "deskbridge/internal/infrastructure/errors"
)

func TestSQLiteRepository_RecordAndListRecent(t *testing.T) {
	t.Parallel()
	repo := setupTestRepository(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3, 1} {
		if err := repo.RecordRecent(ctx, id); err != nil {
			t.Fatalf("RecordRecent(%d) failed: %v", id, err)
		}
	}

	got, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	want := []int64{1, 3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListRecent = %v, want %v", got, want)
	}

	got, err = repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("limited ListRecent = %v", got)
	}
}

func TestSQLiteRepository_ListRecentEmpty(t *testing.T) {
	t.Parallel()
	repo := setupTestRepository(t)
	got, err := repo.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSQLiteRepository_RecordRecentValidation(t *testing.T) {
	t.Parallel()
	repo := setupTestRepository(t)
	if err := repo.RecordRecent(context.Background(), 0); !repoerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
