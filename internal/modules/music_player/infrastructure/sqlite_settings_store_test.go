package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

func newTestSettingsStore(t *testing.T, path string) *SQLiteSettingsStore {
	t.Helper()

	store, err := NewSQLiteSettingsStore(
		context.Background(),
		path,
		domain.NewGuildSettings(0, 50, 3*time.Minute),
	)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSettingsStore_LoadDefaults(t *testing.T) {
	store := newTestSettingsStore(t, MemoryDatabasePath)

	settings, err := store.Load(context.Background(), snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.GuildID != 1 {
		t.Errorf("expected guild 1, got %d", settings.GuildID)
	}
	if settings.DefaultVolume != 50 {
		t.Errorf("expected volume 50, got %d", settings.DefaultVolume)
	}
	if settings.IdleTimeout != 3*time.Minute {
		t.Errorf("expected 3m, got %v", settings.IdleTimeout)
	}
}

func TestSQLiteSettingsStore_SaveAndLoad(t *testing.T) {
	store := newTestSettingsStore(t, MemoryDatabasePath)
	ctx := context.Background()

	saves := []domain.GuildSettings{
		domain.NewGuildSettings(1, 80, time.Minute),
		domain.NewGuildSettings(1, 120, 5*time.Minute),
	}
	for _, s := range saves {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DefaultVolume != 120 || got.IdleTimeout != 5*time.Minute {
		t.Errorf("expected latest save, got %+v", got)
	}

	other, err := store.Load(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.DefaultVolume != 50 {
		t.Errorf("expected other guild to keep defaults, got %d", other.DefaultVolume)
	}
}

func TestSQLiteSettingsStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "music.db")
	ctx := context.Background()

	first := newTestSettingsStore(t, path)
	if err := first.Save(ctx, domain.NewGuildSettings(9, 70, 2*time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = first.Close()

	second := newTestSettingsStore(t, path)
	got, err := second.Load(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DefaultVolume != 70 {
		t.Errorf("expected volume 70, got %d", got.DefaultVolume)
	}
}
