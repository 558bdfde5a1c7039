package firestore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapErrorCategorisesStatusCodes(t *testing.T) {
	cases := []struct {
		code        codes.Code
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{code: codes.NotFound, notFound: true},
		{code: codes.AlreadyExists, conflict: true},
		{code: codes.Aborted, conflict: true},
		{code: codes.Unavailable, unavailable: true},
		{code: codes.PermissionDenied, unavailable: true},
		{code: codes.InvalidArgument},
	}
	for _, tc := range cases {
		err := WrapError("recipes.get", status.Error(tc.code, "boom"))
		var repoErr *Error
		if !errors.As(err, &repoErr) {
			t.Fatalf("%s: expected *Error, got %T", tc.code, err)
		}
		if repoErr.IsNotFound() != tc.notFound || repoErr.IsConflict() != tc.conflict || repoErr.IsUnavailable() != tc.unavailable {
			t.Fatalf("%s: unexpected categories %+v", tc.code, repoErr)
		}
		if tc.code == codes.InvalidArgument && repoErr.Kind() != KindUnknown {
			t.Fatalf("expected unknown kind, got %s", repoErr.Kind())
		}
		if repoErr.Op() != "recipes.get" {
			t.Fatalf("unexpected op %s", repoErr.Op())
		}
	}
}

func TestWrapErrorPassesThroughCancellation(t *testing.T) {
	if err := WrapError("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := WrapError("op", context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WrapError("op", status.Error(codes.DeadlineExceeded, "slow")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWrapErrorKeepsInnermostOp(t *testing.T) {
	inner := WrapError("", status.Error(codes.NotFound, "missing"))
	outer := WrapError("transaction", fmt.Errorf("wrapped: %w", inner))
	var repoErr *Error
	if !errors.As(outer, &repoErr) || repoErr.Op() != "transaction" || !repoErr.IsNotFound() {
		t.Fatalf("unexpected wrapped error %v", outer)
	}
}

func TestBaseRepositoryScopedPaths(t *testing.T) {
	repo := NewBaseRepository[map[string]any](nil, " /users/ ")
	if repo.Collection() != "users" {
		t.Fatalf("unexpected collection %q", repo.Collection())
	}
	scoped := repo.Scoped("users/cook-1/experiences")
	if scoped.Collection() != "users/cook-1/experiences" {
		t.Fatalf("unexpected scoped collection %q", scoped.Collection())
	}

	ctx := context.Background()
	for _, id := range []string{"", "  ", "a/b"} {
		if _, err := scoped.Get(ctx, id); err == nil {
			t.Fatalf("expected invalid id %q to fail", id)
		}
	}
	_, err := scoped.Get(ctx, "exp-1")
	var repoErr *Error
	if !errors.As(err, &repoErr) || repoErr.Op() != "users/cook-1/experiences.collection" {
		t.Fatalf("expected provider error, got %v", err)
	}
	if _, _, err := scoped.Page(ctx, PageSpec[map[string]any]{OrderBy: "cookedAt"}); err == nil {
		t.Fatal("expected page spec without cursor to fail")
	}
}
