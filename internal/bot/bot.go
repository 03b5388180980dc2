package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/metrics"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/samber/lo"
)

// Discord rejects embed field values longer than this.
const maxFieldLen = 1024

type Config struct {
	GuildID        string
	CommandTimeout time.Duration
	// Website, when enabled, also receives every feedback entry.
	Website *WebsiteClient
}

type Bot struct {
	log        Logger
	session    DiscordSession
	engine     *transliteration.Engine
	repo       db.Repository
	translator Translator
	limiter    *RateLimiter
	config     Config
}

// New builds a bot. repo and translator may be nil; feedback is then only
// acknowledged and /translate is not registered.
func New(
	log Logger,
	session DiscordSession,
	engine *transliteration.Engine,
	repo db.Repository,
	translator Translator,
	limiter *RateLimiter,
	config Config,
) *Bot {
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = 30 * time.Second
	}
	if limiter == nil {
		limiter = NewRateLimiter(0, 0)
	}
	return &Bot{
		log:        log,
		session:    session,
		engine:     engine,
		repo:       repo,
		translator: translator,
		limiter:    limiter,
		config:     config,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.limiter.Prune()
		case <-ctx.Done():
			b.log.Info("shutdown signal received")
			b.session.Close()
			b.log.Info("shut down complete")
			return nil
		}
	}
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
		_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), "", []*discordgo.ApplicationCommand{})
		if err != nil {
			b.log.WarnContext(ctx, "failed to clear global commands", "error", err)
		}
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	cmds := b.commands()
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, cmds)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(cmds))
	return nil
}

func (b *Bot) commands() []*discordgo.ApplicationCommand {
	// Discord allows at most 25 choices.
	scripts := lo.Slice(append([]string{"auto"}, b.engine.Scripts()...), 0, 25)
	choices := lo.Map(scripts, func(s string, _ int) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{Name: s, Value: s}
	})

	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        "romanize",
			Description: "Transliterate text into Latin letters",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Text to romanize",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "script",
					Description: "Source script (detected when omitted)",
					Choices:     choices,
				},
			},
		},
		{
			Name:        "scripts",
			Description: "List the supported scripts",
		},
	}
	if b.translator != nil {
		cmds = append(cmds, &discordgo.ApplicationCommand{
			Name:        "translate",
			Description: "Translate text and show its romanization",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Text to translate",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "target",
					Description: "Target language code (default en)",
				},
			},
		})
	}
	return cmds
}

type handlerResult struct {
	Response   string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
	Err        error
}

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(i)
	}
}

func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.CommandTimeout)
	defer cancel()
	cmd := i.ApplicationCommandData().Name

	var result handlerResult
	if !b.limiter.Allow(interactionUserID(i)) {
		result = handlerResult{
			Response:  "You're sending commands too quickly. Try again in a minute.",
			Ephemeral: true,
			Err:       newUserError(errors.New("rate limited")),
		}
	} else {
		switch cmd {
		case "romanize":
			result = b.handleRomanize(ctx, i)
		case "scripts":
			result = b.handleScripts()
		case "translate":
			result = b.handleTranslate(ctx, i)
		default:
			result = handlerResult{Response: "Unknown command.", Ephemeral: true, Err: newUserError(fmt.Errorf("unknown command %q", cmd))}
		}
	}

	b.respond(ctx, i, result)

	label := "ok"
	if result.Err != nil {
		label = "error"
	}
	metrics.BotCommandsTotal.WithLabelValues(cmd, label).Inc()

	if result.Err == nil {
		return
	}
	if _, ok := errors.AsType[*userError](result.Err); ok {
		b.log.WarnContext(ctx, "user error", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	} else {
		b.log.ErrorContext(ctx, "command failed", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	}
}

func (b *Bot) handleRomanize(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	options := i.ApplicationCommandData().Options
	text := getOption(options, "text")
	script := getOption(options, "script")

	if strings.TrimSpace(text) == "" {
		return handlerResult{Response: "Please give me some text to romanize.", Ephemeral: true, Err: newUserError(errors.New("empty text"))}
	}
	if err := transliteration.ValidateInput(text); err != nil {
		return handlerResult{Response: "That text can't be romanized.", Ephemeral: true, Err: newUserError(err)}
	}

	res := b.engine.Transliterate(text, script)
	metrics.TransliterationsTotal.WithLabelValues(metrics.ScriptLabel(res.Script, res.Status == transliteration.StatusOK), string(res.Status), "discord").Inc()

	if b.repo != nil {
		_, err := b.repo.RecordTransliteration(ctx, db.RecordTransliterationParams{
			Original:       res.Original,
			Transliterated: res.Transliterated,
			Script:         res.Script,
			Status:         string(res.Status),
			Source:         "discord",
		})
		if err != nil {
			metrics.HistoryWriteErrors.Inc()
			b.log.WarnContext(ctx, "recording transliteration", "error", err)
		}
	}

	if res.Status == transliteration.StatusUnsupportedScript {
		return handlerResult{
			Response: fmt.Sprintf("I can't romanize %q yet. Supported scripts: %s", res.Script, strings.Join(b.engine.Scripts(), ", ")),
		}
	}
	return handlerResult{
		Embed:      formatRomanizeEmbed(res),
		Components: feedbackButtons(),
	}
}

func (b *Bot) handleScripts() handlerResult {
	var sb strings.Builder
	sb.WriteString("**Supported scripts:**\n")
	for _, t := range b.engine.Registry().Tables() {
		fmt.Fprintf(&sb, "• %s (`%s`)", t.Name(), t.Script())
		if aliases := t.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(&sb, ": also %s", strings.Join(aliases, ", "))
		}
		sb.WriteString("\n")
	}
	return handlerResult{Response: sb.String()}
}

func (b *Bot) handleTranslate(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	if b.translator == nil {
		return handlerResult{Response: "Translation is not enabled on this bot.", Ephemeral: true, Err: newUserError(errors.New("translation disabled"))}
	}
	options := i.ApplicationCommandData().Options
	t, err := b.translator.Translate(ctx, getOption(options, "text"), getOption(options, "target"))
	if errors.Is(err, transliteration.ErrInvalidInput) {
		return handlerResult{Response: "Please give me some text to translate.", Ephemeral: true, Err: newUserError(err)}
	}
	if err != nil {
		return handlerResult{Response: "Translation failed, please try again later.", Ephemeral: true, Err: err}
	}
	return handlerResult{Embed: &discordgo.MessageEmbed{
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Original", Value: truncate(t.Original), Inline: true},
			{Name: "Romanized", Value: truncate(orPlaceholder(t.Transliterated)), Inline: true},
			{Name: "Translation", Value: truncate(t.Translated)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Detected language: " + orPlaceholder(t.DetectedLanguage)},
	}}
}

func (b *Bot) handleComponent(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.CommandTimeout)
	defer cancel()
	customID := i.MessageComponentData().CustomID

	switch customID {
	case "feedback_good":
		b.storeFeedback(ctx, i.Message, "👍")
		b.respond(ctx, i, handlerResult{Response: "Thanks for the feedback!", Ephemeral: true})

	case "feedback_fix":
		err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: "feedback_modal:" + i.Message.ID,
				Title:    "Suggest a Correction",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{
						Components: []discordgo.MessageComponent{
							discordgo.TextInput{
								CustomID:    "correction_text",
								Label:       "What should the romanization be?",
								Style:       discordgo.TextInputParagraph,
								Placeholder: "e.g., नमस्ते should be 'namaste'",
								Required:    true,
								MaxLength:   500,
							},
						},
					},
				},
			},
		})
		if err != nil {
			b.log.ErrorContext(ctx, "failed to open feedback modal", "error", err)
		}
	}
}

func (b *Bot) handleModalSubmit(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.CommandTimeout)
	defer cancel()
	data := i.ModalSubmitData()

	if !strings.HasPrefix(data.CustomID, "feedback_modal:") {
		return
	}

	var correction string
	for _, row := range data.Components {
		if actionsRow, ok := row.(*discordgo.ActionsRow); ok {
			for _, comp := range actionsRow.Components {
				if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == "correction_text" {
					correction = strings.TrimSpace(input.Value)
				}
			}
		}
	}
	if correction == "" {
		b.respond(ctx, i, handlerResult{Response: "The correction was empty, nothing was recorded.", Ephemeral: true})
		return
	}

	b.storeFeedback(ctx, i.Message, correction)
	b.respond(ctx, i, handlerResult{Response: "Thanks! Your correction has been recorded.", Ephemeral: true})
}

// storeFeedback records suggestion against the romanization shown in msg.
func (b *Bot) storeFeedback(ctx context.Context, msg *discordgo.Message, suggestion string) {
	params := db.CreateFeedbackParams{Suggestion: suggestion}
	if msg != nil && len(msg.Embeds) > 0 {
		for _, f := range msg.Embeds[0].Fields {
			switch f.Name {
			case "Original":
				params.Text = f.Value
			case "Romanized":
				params.Transliterated = f.Value
			case "Script":
				params.Script = f.Value
			}
		}
	}
	if b.repo != nil {
		if _, err := b.repo.CreateFeedback(ctx, params); err != nil {
			b.log.ErrorContext(ctx, "failed to store feedback", "error", err)
		}
	}
	err := b.config.Website.SubmitFeedback(ctx, feedbackSubmission{
		Text:           params.Text,
		Script:         params.Script,
		Transliterated: params.Transliterated,
		Suggestion:     params.Suggestion,
	})
	if err != nil {
		b.log.WarnContext(ctx, "failed to forward feedback to website", "error", err)
	}
}

func (b *Bot) respond(ctx context.Context, i *discordgo.InteractionCreate, result handlerResult) {
	data := &discordgo.InteractionResponseData{
		Content:    result.Response,
		Components: result.Components,
	}
	if result.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{result.Embed}
	}
	if result.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to respond to interaction", "error", err)
	}
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func getOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func formatRomanizeEmbed(res transliteration.Result) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Original", Value: truncate(res.Original), Inline: true},
			{Name: "Romanized", Value: truncate(orPlaceholder(res.Transliterated)), Inline: true},
			{Name: "Script", Value: res.Script, Inline: true},
		},
	}
}

func feedbackButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Good ✓", CustomID: "feedback_good", Style: discordgo.SuccessButton},
				discordgo.Button{Label: "Suggest Fix", CustomID: "feedback_fix", Style: discordgo.SecondaryButton},
			},
		},
	}
}

func truncate(s string) string {
	if len(s) <= maxFieldLen {
		return s
	}
	cut := maxFieldLen - len("…")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func orPlaceholder(s string) string {
	if s == "" {
		return "\u200b"
	}
	return s
}
