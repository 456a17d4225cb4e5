package discord

import (
	"context"
	"fmt"
	"log"
	"sync"

	"jukebox/internal/config"
	"jukebox/internal/core"
	"jukebox/internal/music/player"
	"jukebox/internal/music/queue"
	"jukebox/internal/music/resolver"
	"jukebox/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// Bot is a Discord bot
type Bot struct {
	dg      *discordgo.Session
	storage *storage.Storage
	cfg     *config.Config
	player  *player.Player

	mu         sync.Mutex
	registered map[string]bool
}

// StartBot starts the Discord bot
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{
		cfg:        cfg,
		storage:    store,
		registered: make(map[string]bool),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

// run starts the Discord bot
func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg
	b.buildPlayer()
	b.registerMusicCommands()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

// buildPlayer wires the playback engine to this session.
func (b *Bot) buildPlayer() {
	res := resolver.New(b.cfg.PlaylistPageSize, b.cfg.PlaylistWorkers)
	b.player = player.New(
		queue.NewRegistry(),
		res,
		&voiceConnector{dg: b.dg},
		&embedNotifier{dg: b.dg},
		b.storage,
	)
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	if b.cfg.InitSlashCommands {
		for _, g := range r.Guilds {
			if err := b.registerCommands(g.ID); err != nil {
				log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
			}
		}
	} else {
		log.Println("[INFO] Registering slash commands skipped")
	}

	log.Printf("[INFO] Discord bot %v is running.", botInfo.Username)
}

// onGuildCreate is called when the bot joins a guild
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)

	if b.cfg.InitSlashCommands {
		if err := b.registerCommands(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
		}
	}
}

// onInteractionCreate is called when an interaction is created
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(cmdName)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", cmdName)
		return
	}

	ctx := &core.SlashInteractionContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
		Player:  b.player,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Println("[ERR] Error running slash command:", err)
		_ = core.RespondEphemeral(s, i, fmt.Sprintf("Error running command: %v", err))
	}
}

// registerCommands registers slash commands with one guild, once per process.
func (b *Bot) registerCommands(guildID string) error {
	b.mu.Lock()
	if b.registered[guildID] {
		b.mu.Unlock()
		return nil
	}
	b.registered[guildID] = true
	b.mu.Unlock()

	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	var wanted []*discordgo.ApplicationCommand
	for _, cmd := range core.AllCommands() {
		if sp, ok := cmd.(core.SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				wanted = append(wanted, def)
			}
		}
	}

	if _, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, wanted); err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	log.Printf("[INFO] [%s] Registered %d slash commands", guildID, len(wanted))
	return nil
}
