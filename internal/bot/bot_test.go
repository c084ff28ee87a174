package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func noopHandler(*discordgo.Session, *discordgo.InteractionCreate, Responder) error {
	return nil
}

func TestNewBot(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}

	b := NewBot(cfg)

	if b == nil {
		t.Fatal("expected bot to be created, got nil")
	}
	if b.config != cfg {
		t.Error("expected config to be stored")
	}
	if b.ready.Load() {
		t.Error("expected bot not to be ready before Start")
	}
}

func TestBot_InitModules_PassesDependencies(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token", GuildID: "123"}
	b := NewBot(cfg)

	var got ModuleDependencies
	mod := &recordingModule{stubModule: stubModule{name: "music_player"}, deps: &got}
	b.modules = []Module{mod}

	if err := b.initModules(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Config != cfg {
		t.Error("expected module to receive the bot config")
	}
}

func TestBot_InitModules_ReturnsInitError(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	expectedErr := errors.New("lavalink unreachable")
	b.modules = []Module{
		&stubModule{name: "music_player", initErr: expectedErr},
	}

	err := b.initModules()
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_BuildHandlerMap(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	b.modules = []Module{
		&stubModule{
			name: "music_player",
			handlers: map[string]InteractionHandler{
				"play": noopHandler,
				"skip": noopHandler,
			},
		},
		&stubModule{
			name:     "other",
			handlers: map[string]InteractionHandler{"stats": noopHandler},
		},
	}

	b.buildHandlerMap()

	for _, name := range []string{"play", "skip", "stats"} {
		if _, ok := b.handlers[name]; !ok {
			t.Errorf("expected %s handler to be registered", name)
		}
	}
}

func TestBot_CollectCommands(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	b.modules = []Module{
		&stubModule{
			name: "music_player",
			commands: []*discordgo.ApplicationCommand{
				{Name: "play", Description: "Play a track"},
				{Name: "queue", Description: "Show the queue"},
			},
		},
		&stubModule{name: "empty"},
	}

	commands := b.collectCommands()

	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commands))
	}
	if commands[0].Name != "play" || commands[1].Name != "queue" {
		t.Errorf("unexpected command order: %q, %q", commands[0].Name, commands[1].Name)
	}
}

func TestBot_StopShutsDownEveryModuleInReverse(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	busy := errors.New("busy")
	var shutdowns []string
	b.modules = []Module{
		&recordingModule{stubModule: stubModule{name: "first"}, shutdowns: &shutdowns},
		&recordingModule{stubModule: stubModule{name: "second", shutErr: busy}, shutdowns: &shutdowns},
	}

	err := b.Stop(context.Background())

	if !errors.Is(err, busy) {
		t.Errorf("expected %v, got %v", busy, err)
	}
	if len(shutdowns) != 2 || shutdowns[0] != "second" || shutdowns[1] != "first" {
		t.Errorf("expected shutdown order [second first], got %v", shutdowns)
	}
}

// recordingModule records the calls it receives.
type recordingModule struct {
	stubModule
	deps      *ModuleDependencies
	shutdowns *[]string
}

func (m *recordingModule) Init(deps ModuleDependencies) error {
	if m.deps != nil {
		*m.deps = deps
	}
	return m.stubModule.Init(deps)
}

func (m *recordingModule) Shutdown(ctx context.Context) error {
	if m.shutdowns != nil {
		*m.shutdowns = append(*m.shutdowns, m.name)
	}
	return m.stubModule.Shutdown(ctx)
}
