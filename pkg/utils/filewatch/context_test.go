package filewatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opst/knitlabel/pkg/utils/filewatch"
)

func waitDone(t *testing.T, ctx context.Context) bool {
	t.Helper()
	deadline := time.After(10 * time.Second)
	if dl, ok := t.Deadline(); ok {
		deadline = time.After(time.Until(dl) - 1*time.Second)
	}
	select {
	case <-ctx.Done():
		return true
	case <-deadline:
		return false
	}
}

func TestUntilModifyContext(t *testing.T) {
	t.Run("when a watched file is written, it cancels context", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(file, []byte("port: 8080\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), file, "")
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		if err := ctx.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := os.WriteFile(file, []byte("port: 8081\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if !waitDone(t, ctx) {
			t.Fatal("context is not canceled")
		}
		if context.Cause(ctx) == nil {
			t.Error("cause is missing")
		}
	})

	t.Run("when a watched file does not exist, it returns error", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel, err := filewatch.UntilModifyContext(
			context.Background(), filepath.Join(dir, "missing"),
		)
		if err == nil {
			cancel()
			t.Fatal("expected error, but got nil")
		}
		if ctx != nil || cancel != nil {
			t.Error("context and cancel should be nil on error")
		}
	})

	t.Run("when cancel is called, context is canceled without file changes", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), dir)
		if err != nil {
			t.Fatal(err)
		}
		cancel()
		if !waitDone(t, ctx) {
			t.Fatal("context is not canceled")
		}
	})
}
