package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestToggleCategoryIdempotence(t *testing.T) {
	s := &Selection{}

	if !s.ToggleCategory(5) {
		t.Error("First toggle must check the category")
	}
	if !s.HasCategory(5) {
		t.Error("Category 5 must be checked")
	}
	if s.ToggleCategory(5) {
		t.Error("Second toggle must uncheck the category")
	}
	if s.HasCategory(5) {
		t.Error("Category 5 must be unchecked after double toggle")
	}
}

func TestCategoryInsertionOrder(t *testing.T) {
	s := &Selection{}
	for _, id := range []int64{3, 1, 2} {
		s.ToggleCategory(id)
	}
	want := []int64{3, 1, 2}
	for i, id := range s.Categories {
		if id != want[i] {
			t.Fatalf("Expected insertion order %v, got %v", want, s.Categories)
		}
	}

	// Removing from the middle keeps the rest in order.
	s.ToggleCategory(1)
	want = []int64{3, 2}
	for i, id := range s.Categories {
		if id != want[i] {
			t.Fatalf("Expected order %v after removal, got %v", want, s.Categories)
		}
	}
}

func TestToggleIngredientKeepsName(t *testing.T) {
	s := &Selection{}
	s.ToggleIngredient(6, "курица")
	s.ToggleIngredient(7, "картофель")

	if got := s.IngredientNames(); got != "курица, картофель" {
		t.Errorf("Expected joined names, got %q", got)
	}
	ids := s.IngredientIDs()
	if len(ids) != 2 || ids[0] != 6 || ids[1] != 7 {
		t.Errorf("Expected ids [6 7], got %v", ids)
	}

	s.ToggleIngredient(6, "курица")
	if s.HasIngredient(6) {
		t.Error("Ingredient 6 must be unchecked after double toggle")
	}
	if got := s.IngredientNames(); got != "картофель" {
		t.Errorf("Expected remaining name картофель, got %q", got)
	}
}

func TestTracksAreIndependent(t *testing.T) {
	s := &Selection{}
	s.ToggleCategory(1)
	s.ToggleIngredient(5, "яблоко")

	s.ClearCategories()
	if len(s.Categories) != 0 {
		t.Error("Expected categories cleared")
	}
	if !s.HasIngredient(5) {
		t.Error("Clearing categories must not touch ingredients")
	}

	s.ToggleCategory(2)
	s.ClearIngredients()
	if len(s.Ingredients) != 0 {
		t.Error("Expected ingredients cleared")
	}
	if !s.HasCategory(2) {
		t.Error("Clearing ingredients must not touch categories")
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	if _, err := store.Update(ctx, 7, func(s *Selection) { s.ToggleCategory(1) }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.ToggleCategory(99)

	fresh, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fresh.HasCategory(99) {
		t.Error("Mutating a Get result must not affect the stored session")
	}
}

func TestMemoryStoreUnknownChatIsEmpty(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	s, err := store.Get(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(s.Categories) != 0 || len(s.Ingredients) != 0 {
		t.Errorf("Expected empty selection for unknown chat, got %+v", s)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, _ = store.Update(ctx, 7, func(s *Selection) {
		s.ToggleCategory(1)
		s.ToggleIngredient(5, "яблоко")
	})
	if err := store.Clear(ctx, 7); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	s, _ := store.Get(ctx, 7)
	if len(s.Categories) != 0 || len(s.Ingredients) != 0 {
		t.Errorf("Expected empty selection after Clear, got %+v", s)
	}
	if store.Len() != 0 {
		t.Errorf("Expected 0 live sessions, got %d", store.Len())
	}
}

func TestMemoryStoreConcurrentToggles(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	// 100 goroutines each toggle a distinct category once; all must land.
	var wg sync.WaitGroup
	for i := int64(1); i <= 100; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = store.Update(ctx, 7, func(s *Selection) { s.ToggleCategory(id) })
		}(i)
	}
	wg.Wait()

	s, _ := store.Get(ctx, 7)
	if len(s.Categories) != 100 {
		t.Errorf("Expected 100 checked categories, got %d", len(s.Categories))
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	_, _ = store.Update(ctx, 1, func(s *Selection) { s.ToggleCategory(1) })
	_, _ = store.Update(ctx, 2, func(s *Selection) { s.ToggleCategory(1) })

	if evicted := store.Sweep(time.Now()); evicted != 0 {
		t.Errorf("Fresh sessions must survive a sweep, evicted %d", evicted)
	}
	if evicted := store.Sweep(time.Now().Add(2 * time.Minute)); evicted != 2 {
		t.Errorf("Expected 2 evictions past the TTL, got %d", evicted)
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store after sweep, got %d", store.Len())
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("Failed to open badger store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	updated, err := store.Update(ctx, 7, func(s *Selection) {
		s.ToggleCategory(3)
		s.ToggleIngredient(6, "курица")
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.HasCategory(3) || !updated.HasIngredient(6) {
		t.Errorf("Update result missing toggles: %+v", updated)
	}

	got, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.HasCategory(3) {
		t.Error("Expected persisted category 3")
	}
	if got.IngredientNames() != "курица" {
		t.Errorf("Expected persisted ingredient name, got %q", got.IngredientNames())
	}

	if err := store.Clear(ctx, 7); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	cleared, _ := store.Get(ctx, 7)
	if len(cleared.Categories) != 0 || len(cleared.Ingredients) != 0 {
		t.Errorf("Expected empty selection after Clear, got %+v", cleared)
	}
}

func TestBadgerStoreUnknownChatIsEmpty(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("Failed to open badger store: %v", err)
	}
	defer store.Close()

	s, err := store.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(s.Categories) != 0 {
		t.Errorf("Expected empty selection, got %+v", s)
	}
}

func TestBadgerStoreConcurrentToggles(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("Failed to open badger store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := store.Update(ctx, 7, func(s *Selection) { s.ToggleCategory(id) }); err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	s, _ := store.Get(ctx, 7)
	if len(s.Categories) != 50 {
		t.Errorf("Expected 50 checked categories, got %d", len(s.Categories))
	}
}
