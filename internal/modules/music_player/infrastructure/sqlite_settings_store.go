package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

var _ ports.SettingsStore = (*SQLiteSettingsStore)(nil)

// MemoryDatabasePath opens a private in-memory database.
const MemoryDatabasePath = ":memory:"

// SQLiteSettingsStore persists per-guild playback settings in SQLite.
type SQLiteSettingsStore struct {
	db       *sql.DB
	defaults domain.GuildSettings
}

// NewSQLiteSettingsStore opens the database at path and creates the settings table.
// Guilds without a stored row get defaults.
func NewSQLiteSettingsStore(
	ctx context.Context,
	path string,
	defaults domain.GuildSettings,
) (*SQLiteSettingsStore, error) {
	dsn := MemoryDatabasePath
	if path != MemoryDatabasePath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_timeout=5000", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryDatabasePath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = db.ExecContext(initCtx, `CREATE TABLE IF NOT EXISTS music_settings (
		guild_id TEXT PRIMARY KEY,
		default_volume INTEGER NOT NULL,
		idle_timeout_seconds INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	return &SQLiteSettingsStore{db: db, defaults: defaults}, nil
}

// Load returns the stored settings for the guild, or the defaults.
func (s *SQLiteSettingsStore) Load(
	ctx context.Context,
	guildID snowflake.ID,
) (domain.GuildSettings, error) {
	var volume int
	var idleSeconds int64

	err := s.db.QueryRowContext(ctx,
		"SELECT default_volume, idle_timeout_seconds FROM music_settings WHERE guild_id = ?",
		guildID.String(),
	).Scan(&volume, &idleSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewGuildSettings(guildID, s.defaults.DefaultVolume, s.defaults.IdleTimeout), nil
	}
	if err != nil {
		return domain.GuildSettings{}, fmt.Errorf("failed to load guild settings: %w", err)
	}

	return domain.NewGuildSettings(guildID, volume, time.Duration(idleSeconds)*time.Second), nil
}

// Save stores the settings for the guild, replacing any previous row.
func (s *SQLiteSettingsStore) Save(ctx context.Context, settings domain.GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO music_settings (guild_id, default_volume, idle_timeout_seconds)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			default_volume = excluded.default_volume,
			idle_timeout_seconds = excluded.idle_timeout_seconds,
			updated_at = CURRENT_TIMESTAMP`,
		settings.GuildID.String(),
		settings.DefaultVolume,
		int64(settings.IdleTimeout/time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to save guild settings: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSettingsStore) Close() error {
	return s.db.Close()
}
