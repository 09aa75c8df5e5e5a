package actor_test

import (
	"sync"
	"testing"

	"github.com/jsamuelsen11/cleanarch/internal/app/actor"
)

func TestSafeRef_GetSet(t *testing.T) {
	t.Parallel()

	ref := actor.NewRef("initial")

	if got := ref.Get(); got != "initial" {
		t.Fatalf("Get() = %q, want %q", got, "initial")
	}

	ref.Set("updated")

	if got := ref.Get(); got != "updated" {
		t.Fatalf("Get() = %q, want %q", got, "updated")
	}
}

func TestSafeRef_Swap(t *testing.T) {
	t.Parallel()

	ref := actor.NewRef(1)

	if prev := ref.Swap(2); prev != 1 {
		t.Fatalf("Swap() previous = %d, want 1", prev)
	}
	if got := ref.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
}

func TestSafeRef_ConcurrentReadWrite(t *testing.T) {
	t.Parallel()

	ref := actor.NewRef(0)

	const writers = 10
	const readers = 20
	var wg sync.WaitGroup

	for i := range writers {
		wg.Go(func() {
			ref.Set(i + 1)
		})
	}

	// Readers just call Get and should never race.
	for range readers {
		wg.Go(func() {
			_ = ref.Get()
		})
	}

	wg.Wait()

	if got := ref.Get(); got < 1 || got > writers {
		t.Errorf("final value = %d, want one of the written values", got)
	}
}
