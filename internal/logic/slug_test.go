package logic

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"普通标题", "My New Album", "my-new-album"},
		{"特殊字符", "Rock & Roll: Vol. 2!", "rock-roll-vol-2"},
		{"连续分隔符", "a -- b___c", "a-b-c"},
		{"首尾清理", "  --Hello--  ", "hello"},
		{"全特殊字符", "!!!", ""},
		{"已是slug", "already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncation(t *testing.T) {
	long := strings.Repeat("ab ", 60)
	slug := Slugify(long)
	if len(slug) > 100 {
		t.Errorf("slug length = %d, want <= 100", len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("truncated slug ends with hyphen: %q", slug)
	}
}

func TestGenerateSlugUnique(t *testing.T) {
	db := newTestDB(t)

	slug, err := GenerateSlug(db, "My New Album", 0)
	if err != nil {
		t.Fatalf("GenerateSlug: %v", err)
	}
	if slug != "my-new-album" {
		t.Errorf("slug = %q, want my-new-album", slug)
	}
}

func TestGenerateSlugCollision(t *testing.T) {
	db := newTestDB(t)

	seedProduct(t, db, "My New Album", 10000)

	slug, err := GenerateSlug(db, "My New Album", 0)
	if err != nil {
		t.Fatalf("GenerateSlug: %v", err)
	}
	if slug != "my-new-album-1" {
		t.Errorf("slug = %q, want my-new-album-1", slug)
	}

	second := seedProduct(t, db, "Placeholder", 10000)
	if err := db.Model(second).Update("slug", "my-new-album-1").Error; err != nil {
		t.Fatalf("update slug: %v", err)
	}

	slug, err = GenerateSlug(db, "My New Album", 0)
	if err != nil {
		t.Fatalf("GenerateSlug: %v", err)
	}
	if slug != "my-new-album-2" {
		t.Errorf("slug = %q, want my-new-album-2", slug)
	}
}

func TestGenerateSlugExcludeSelf(t *testing.T) {
	db := newTestDB(t)

	product := seedProduct(t, db, "My New Album", 10000)

	// 排除自身时不算冲突
	slug, err := GenerateSlug(db, "My New Album", product.Id)
	if err != nil {
		t.Fatalf("GenerateSlug: %v", err)
	}
	if slug != "my-new-album" {
		t.Errorf("slug = %q, want my-new-album", slug)
	}
}

func TestGenerateSlugEmptyTitle(t *testing.T) {
	db := newTestDB(t)

	slug, err := GenerateSlug(db, "!!!", 0)
	if err != nil {
		t.Fatalf("GenerateSlug: %v", err)
	}
	if slug != "product" {
		t.Errorf("slug = %q, want product fallback", slug)
	}
}

func TestBackfillSlugs(t *testing.T) {
	db := newTestDB(t)

	withSlug := seedProduct(t, db, "Has Slug", 10000)

	missing := seedProduct(t, db, "Placeholder", 10000)
	if err := db.Model(missing).Update("slug", "").Error; err != nil {
		t.Fatalf("clear slug: %v", err)
	}
	if err := db.Model(missing).Update("product_title", "Needs Slug").Error; err != nil {
		t.Fatalf("rename product: %v", err)
	}

	updated, err := BackfillSlugs(db)
	if err != nil {
		t.Fatalf("BackfillSlugs: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	var check struct{ Slug string }
	db.Table("product").Where("id = ?", missing.Id).Select("slug").Scan(&check)
	if check.Slug != "needs-slug" {
		t.Errorf("backfilled slug = %q, want needs-slug", check.Slug)
	}

	db.Table("product").Where("id = ?", withSlug.Id).Select("slug").Scan(&check)
	if check.Slug != "has-slug" {
		t.Errorf("existing slug changed to %q", check.Slug)
	}

	// 再次执行无事可做
	updated, err = BackfillSlugs(db)
	if err != nil {
		t.Fatalf("BackfillSlugs second run: %v", err)
	}
	if updated != 0 {
		t.Errorf("second run updated = %d, want 0", updated)
	}
}
