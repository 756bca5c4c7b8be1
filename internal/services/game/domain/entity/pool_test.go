package entity

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestPool(t *testing.T) Pool {
	t.Helper()
	pool, err := NewPool("sess-1", "camp-1", "theme-1", testNow)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return pool
}

func TestNewPoolRequiresIDs(t *testing.T) {
	if _, err := NewPool("", "camp-1", "", testNow); !errors.Is(err, apperrors.New(apperrors.CodePoolSessionIDRequired, "")) {
		t.Fatalf("expected session id error, got %v", err)
	}
	if _, err := NewPool("sess-1", " ", "", testNow); !errors.Is(err, apperrors.New(apperrors.CodePoolCampaignIDRequired, "")) {
		t.Fatalf("expected campaign id error, got %v", err)
	}
}

func TestUpsertInsertsAndMerges(t *testing.T) {
	pool := newTestPool(t)

	inserted, err := pool.Upsert(KindCore, CategoryEnemy, Entity{
		ID: "goblin-1", Name: "Goblin Scout", MilestoneID: "m1", ProgressContribution: 40,
	}, testNow)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.CreatedAt.IsZero() || inserted.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps stamped on insert")
	}

	later := testNow.Add(time.Minute)
	merged, err := pool.Upsert(KindCore, CategoryEnemy, Entity{
		ID: "goblin-1", Description: "Scars on the left cheek",
	}, later)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Name != "Goblin Scout" {
		t.Fatalf("expected base name kept, got %q", merged.Name)
	}
	if merged.Description != "Scars on the left cheek" {
		t.Fatal("expected incoming description to win")
	}
	if merged.ProgressContribution != 40 {
		t.Fatal("expected zero incoming contribution to keep base value")
	}
	if !merged.UpdatedAt.Equal(later) {
		t.Fatal("expected UpdatedAt stamped on merge")
	}
	if len(pool.Enemies) != 1 {
		t.Fatalf("expected 1 enemy, got %d", len(pool.Enemies))
	}
	if !pool.LastUpdated.Equal(later) {
		t.Fatal("expected pool LastUpdated stamped")
	}
}

func TestUpsertIdentityFallsBackToName(t *testing.T) {
	pool := newTestPool(t)

	if _, err := pool.Upsert(KindBonus, CategoryTrophy, Entity{Name: "Dragon Scale"}, testNow); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := pool.Upsert(KindBonus, CategoryTrophy, Entity{Name: "Dragon Scale", Description: "Shimmers"}, testNow); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(pool.TrophyItems) != 1 {
		t.Fatalf("expected name-keyed merge, got %d trophies", len(pool.TrophyItems))
	}
}

func TestUpsertRejectsKindMismatch(t *testing.T) {
	pool := newTestPool(t)

	_, err := pool.Upsert(KindBonus, CategoryEnemy, Entity{ID: "e1", Name: "x"}, testNow)
	if !errors.Is(err, apperrors.New(apperrors.CodePoolEntityKindMismatch, "")) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}
}

func TestUpsertRejectsMissingIdentity(t *testing.T) {
	pool := newTestPool(t)

	_, err := pool.Upsert(KindCore, CategoryQuest, Entity{Description: "no id"}, testNow)
	if !errors.Is(err, apperrors.New(apperrors.CodePoolEntityIdentityMissing, "")) {
		t.Fatalf("expected identity error, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	pool := newTestPool(t)
	if _, err := pool.Upsert(KindCore, CategoryNPC, Entity{ID: "npc-1", Name: "Innkeeper"}, testNow); err != nil {
		t.Fatalf("insert: %v", err)
	}

	removed, err := pool.Remove(CategoryNPC, "npc-1", testNow)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Name != "Innkeeper" {
		t.Fatalf("expected removed entity returned, got %q", removed.Name)
	}
	if len(pool.NPCs) != 0 {
		t.Fatal("expected npc collection emptied")
	}

	if _, err := pool.Remove(CategoryNPC, "npc-1", testNow); !errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
}

func TestFindSearchesAllCollections(t *testing.T) {
	pool := newTestPool(t)
	if _, err := pool.Upsert(KindBonus, CategoryMystery, Entity{ID: "shard", Name: "Odd Shard"}, testNow); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, ok := pool.Find("shard")
	if !ok || found.Name != "Odd Shard" {
		t.Fatalf("expected to find shard, got %v %v", found, ok)
	}
	if _, ok := pool.Find("missing"); ok {
		t.Fatal("expected missing entity not found")
	}
}

func TestCoreEntitiesExcludeBonus(t *testing.T) {
	pool := newTestPool(t)
	mustUpsert := func(kind Kind, c Category, e Entity) {
		t.Helper()
		if _, err := pool.Upsert(kind, c, e, testNow); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	mustUpsert(KindCore, CategoryEnemy, Entity{ID: "e1", Name: "a"})
	mustUpsert(KindCore, CategoryQuest, Entity{ID: "q1", Name: "b"})
	mustUpsert(KindBonus, CategoryPractical, Entity{ID: "p1", Name: "c"})

	core := pool.CoreEntities()
	if len(core) != 2 {
		t.Fatalf("expected 2 core entities, got %d", len(core))
	}
	if len(pool.AllEntities()) != 3 {
		t.Fatalf("expected 3 total entities")
	}
}

func TestCategoryKinds(t *testing.T) {
	for _, c := range []Category{CategoryEnemy, CategoryEvent, CategoryNPC, CategoryItem, CategoryQuest} {
		if c.Kind() != KindCore {
			t.Fatalf("expected %s to be core", c)
		}
	}
	for _, c := range []Category{CategoryPractical, CategoryTrophy, CategoryMystery} {
		if c.Kind() != KindBonus {
			t.Fatalf("expected %s to be bonus", c)
		}
	}
}

func TestParseCategoryRejectsUnknown(t *testing.T) {
	if _, err := ParseCategory("artifact"); !errors.Is(err, apperrors.New(apperrors.CodePoolEntityCategoryInvalid, "")) {
		t.Fatalf("expected category error, got %v", err)
	}
	category, err := ParseCategory(" Enemy ")
	if err != nil || category != CategoryEnemy {
		t.Fatalf("expected lenient parse, got %v %v", category, err)
	}
}
