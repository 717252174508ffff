package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/models"
	"github.com/groupforge/keystone/internal/services/group"
	"github.com/groupforge/keystone/internal/services/wizard"
)

// reminderLead is how long before a scheduled start the ping goes out
const reminderLead = 15 * time.Minute

// defaultMaxCommentLength matches the services' comment bound when the
// composition root does not thread a configured one
const defaultMaxCommentLength = 200

// Bot represents the Discord bot instance
type Bot struct {
	session       *discordgo.Session
	commands      map[string]CommandHandler
	commandIDs    map[string]string // Maps command name to command ID
	groupService  group.Service
	wizardService wizard.Service
	catalog       *catalog.Catalog
	logger        zerolog.Logger
	config        *Config
	maxComment    int

	remindersMu sync.Mutex
	reminders   map[string]*time.Timer
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Group service
	GroupService group.Service

	// Wizard service
	WizardService wizard.Service

	// Catalog drives the wizard's select menus
	Catalog *catalog.Catalog

	// Logger is the structured logger for handler events
	Logger zerolog.Logger

	// MaxCommentLength bounds the note modal; must match the services'
	// configured bound
	MaxCommentLength int
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.GroupService == nil {
		return nil, errors.New("group service cannot be nil")
	}

	if cfg.WizardService == nil {
		return nil, errors.New("wizard service cannot be nil")
	}

	if cfg.Catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents |= discordgo.IntentGuildMessageReactions

	maxComment := cfg.MaxCommentLength
	if maxComment <= 0 {
		maxComment = defaultMaxCommentLength
	}

	bot := &Bot{
		session:       session,
		commands:      make(map[string]CommandHandler),
		commandIDs:    make(map[string]string),
		groupService:  cfg.GroupService,
		wizardService: cfg.WizardService,
		catalog:       cfg.Catalog,
		logger:        cfg.Logger,
		config:        cfg,
		maxComment:    maxComment,
		reminders:     make(map[string]*time.Timer),
	}

	session.AddHandler(bot.handleInteraction)
	session.AddHandler(bot.handleReactionAdd)
	session.AddHandler(bot.handleReactionRemove)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Register the lfg command
	lfgCmd := NewLFGCommand(b)
	if err := b.RegisterCommand(lfgCmd); err != nil {
		return fmt.Errorf("failed to register lfg command: %w", err)
	}

	b.logger.Info().Msg("bot is now running")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	b.remindersMu.Lock()
	for id, timer := range b.reminders {
		timer.Stop()
		delete(b.reminders, id)
	}
	b.remindersMu.Unlock()

	// Remove all commands
	appID := b.config.ApplicationID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn().Err(err).Str("command", cmdName).Msg("failed to delete command")
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	appID := b.config.ApplicationID
	if appID == "" {
		// Fall back to session user ID if application ID is not provided
		appID = b.session.State.User.ID
	}

	// If guild ID is provided, register command for that specific guild.
	// Otherwise, register it globally.
	createdCmd, err := b.session.ApplicationCommandCreate(appID, b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.Info().Str("command", cmd.GetName()).Str("command_id", createdCmd.ID).Msg("registered command")

	return nil
}

// HandleRetired cleans up the channel messages of sessions the reaper
// expired. Wired as the reaper's OnRetired callback.
func (b *Bot) HandleRetired(sessions []*models.Session) {
	for _, sess := range sessions {
		b.cancelReminder(sess.ID)

		if err := b.session.ChannelMessageDelete(sess.ChannelID, sess.ID); err != nil {
			b.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to delete retired session message")
		}
	}
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		// Handle slash commands
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			if err := h.Handle(s, i); err != nil {
				b.logger.Error().Err(err).Str("command", i.ApplicationCommandData().Name).Msg("command failed")
			}
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			b.logger.Error().Err(err).Msg("component interaction failed")
		}
	case discordgo.InteractionModalSubmit:
		if err := b.handleModalSubmit(s, i); err != nil {
			b.logger.Error().Err(err).Msg("modal submit failed")
		}
	}
}

// handleComponentInteraction routes wizard select menus and buttons
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	// The value after the colon is the draft ID for wizard components
	// and the role for claim buttons
	prefix, value := parseComponentID(i.MessageComponentData().CustomID)
	participant := interactionParticipant(i)

	switch prefix {
	case ComponentRoleSelect:
		return b.handleRoleSelect(s, i, value, participant)
	case ComponentActivitySelect:
		return b.handleActivitySelect(s, i, value, participant)
	case ComponentTierSelect:
		return b.handleTierSelect(s, i, value, participant)
	case ButtonScheduleNow:
		return b.handleScheduleNow(s, i, value, participant)
	case ButtonScheduleCustom:
		return b.handleScheduleCustom(s, i, value, participant)
	case ButtonAddNote:
		return RespondWithModal(s, i, componentID(ModalNote, value), "Add a note", noteInput(b.maxComment))
	case ButtonSkipNote:
		return b.handleSkipNote(s, i, value, participant)
	case ButtonClaim:
		return b.handleClaimButton(s, i, value, participant)
	case ButtonLeave:
		return b.handleLeaveButton(s, i, participant)
	default:
		return RespondWithError(s, i, fmt.Sprintf("Unknown component: %s", prefix))
	}
}

// handleModalSubmit routes the wizard's text input modals
func (b *Bot) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	prefix, draftID := parseComponentID(i.ModalSubmitData().CustomID)
	participant := interactionParticipant(i)

	switch prefix {
	case ModalCustomTime:
		return b.handleCustomTimeSubmit(s, i, draftID, participant)
	case ModalNote:
		return b.handleNoteSubmit(s, i, draftID, participant)
	default:
		return RespondWithError(s, i, fmt.Sprintf("Unknown modal: %s", prefix))
	}
}

// handleRoleSelect handles the wizard's role choice
func (b *Bot) handleRoleSelect(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	out, err := b.wizardService.ChooseRole(context.Background(), &wizard.ChooseRoleInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Role:        i.MessageComponentData().Values[0],
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return RespondWithUpdate(s, i,
		draftSummary(out.Draft)+"\nPick the dungeon:",
		activitySelectComponents(draftID, b.catalog))
}

// handleActivitySelect handles the wizard's dungeon choice
func (b *Bot) handleActivitySelect(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	out, err := b.wizardService.ChooseActivity(context.Background(), &wizard.ChooseActivityInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Activity:    i.MessageComponentData().Values[0],
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return RespondWithUpdate(s, i,
		draftSummary(out.Draft)+"\nPick the key level:",
		tierSelectComponents(draftID, b.catalog))
}

// handleTierSelect handles the wizard's key level choice
func (b *Bot) handleTierSelect(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	out, err := b.wizardService.ChooseTier(context.Background(), &wizard.ChooseTierInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Tier:        i.MessageComponentData().Values[0],
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return RespondWithUpdate(s, i,
		draftSummary(out.Draft)+"\nWhen does it start?",
		scheduleComponents(draftID))
}

// handleScheduleNow handles the "start now" button
func (b *Bot) handleScheduleNow(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	out, err := b.wizardService.ChooseSchedule(context.Background(), &wizard.ChooseScheduleInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Choice:      wizard.ScheduleChoiceNow,
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return RespondWithUpdate(s, i,
		draftSummary(out.Draft)+"\nAnything the group should know?",
		noteComponents(draftID))
}

// handleScheduleCustom handles the "pick a time" button
func (b *Bot) handleScheduleCustom(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	_, err := b.wizardService.ChooseSchedule(context.Background(), &wizard.ChooseScheduleInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Choice:      wizard.ScheduleChoiceCustom,
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return RespondWithModal(s, i, componentID(ModalCustomTime, draftID), "Start time", customTimeInput())
}

// handleCustomTimeSubmit handles the free-text start time modal
func (b *Bot) handleCustomTimeSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	out, err := b.wizardService.EnterCustomTime(context.Background(), &wizard.EnterCustomTimeInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Raw:         modalInputValue(i),
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	message := draftSummary(out.Draft)
	if out.Degraded {
		message += "(Couldn't read that as a clock time, keeping it as written.)\n"
	}
	message += "\nAnything the group should know?"

	return RespondWithUpdate(s, i, message, noteComponents(draftID))
}

// handleNoteSubmit handles the note modal and posts the session
func (b *Bot) handleNoteSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	_, err := b.wizardService.SetComment(context.Background(), &wizard.SetCommentInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Comment:     modalInputValue(i),
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return b.publishSession(s, i, draftID, participant)
}

// handleSkipNote skips the note and posts the session
func (b *Bot) handleSkipNote(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	_, err := b.wizardService.SetComment(context.Background(), &wizard.SetCommentInput{
		DraftID:     draftID,
		RequestedBy: participant,
		Skip:        true,
	})
	if err != nil {
		return b.respondWizardError(s, i, err)
	}

	return b.publishSession(s, i, draftID, participant)
}

// publishSession posts the channel message, finalizes the draft under the
// message's ID, and seeds the claim reactions. The message goes out first
// because the session is keyed by its message ID.
func (b *Bot) publishSession(s *discordgo.Session, i *discordgo.InteractionCreate, draftID string, participant models.Participant) error {
	ctx := context.Background()

	msg, err := s.ChannelMessageSend(i.ChannelID, "Setting up the group...")
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Failed to post the group message: %v", err))
	}

	out, err := b.wizardService.Finalize(ctx, &wizard.FinalizeInput{
		DraftID:     draftID,
		RequestedBy: participant,
		MessageID:   msg.ID,
	})
	if err != nil {
		if deleteErr := s.ChannelMessageDelete(i.ChannelID, msg.ID); deleteErr != nil {
			b.logger.Warn().Err(deleteErr).Msg("failed to delete orphaned session message")
		}
		return b.respondWizardError(s, i, err)
	}

	sess := out.Session
	embeds := []*discordgo.MessageEmbed{sessionEmbed(sess)}
	components := claimComponents()
	content := ""
	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    sess.ChannelID,
		ID:         sess.ID,
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		b.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to render session message")
	}

	for _, role := range models.AllRoles {
		if err := s.MessageReactionAdd(sess.ChannelID, sess.ID, roleEmojis[role]); err != nil {
			b.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to seed claim reaction")
		}
	}

	b.armReminder(sess)

	return RespondWithUpdate(s, i, "Group posted! Players can react on the message to claim a spot.", nil)
}

// handleClaimButton handles the role buttons on a session message
func (b *Bot) handleClaimButton(s *discordgo.Session, i *discordgo.InteractionCreate, roleSymbol string, participant models.Participant) error {
	out, err := b.groupService.ClaimRole(context.Background(), &group.ClaimRoleInput{
		SessionID:   i.Message.ID,
		Participant: participant,
		Role:        roleSymbol,
	})
	if err != nil {
		if errors.Is(err, group.ErrSessionNotFound) {
			return RespondWithError(s, i, "This group is gone.")
		}
		return RespondWithError(s, i, fmt.Sprintf("Failed to claim the spot: %v", err))
	}

	if out.Ignored {
		return RespondWithError(s, i, "Unknown role.")
	}

	switch out.Outcome {
	case models.ClaimAssigned:
		return RespondWithEmbedUpdate(s, i, sessionEmbed(out.Session), claimComponents())
	case models.ClaimAlreadyHeld:
		return RespondWithError(s, i, "You already have a spot in this group. Leave it first to switch.")
	default:
		return RespondWithError(s, i, "That spot is taken.")
	}
}

// handleLeaveButton releases whichever role the participant holds
func (b *Bot) handleLeaveButton(s *discordgo.Session, i *discordgo.InteractionCreate, participant models.Participant) error {
	ctx := context.Background()

	got, err := b.groupService.GetSession(ctx, &group.GetSessionInput{
		SessionID: i.Message.ID,
	})
	if err != nil {
		if errors.Is(err, group.ErrSessionNotFound) {
			return RespondWithError(s, i, "This group is gone.")
		}
		return RespondWithError(s, i, fmt.Sprintf("Failed to leave the group: %v", err))
	}

	role, ok := got.Session.Slots.RoleOf(participant.ID)
	if !ok {
		return RespondWithError(s, i, "You don't have a spot in this group.")
	}

	out, err := b.groupService.ReleaseRole(ctx, &group.ReleaseRoleInput{
		SessionID:   i.Message.ID,
		Participant: participant,
		Role:        string(role),
	})
	if err != nil {
		if errors.Is(err, group.ErrSessionNotFound) {
			return RespondWithError(s, i, "This group is gone.")
		}
		return RespondWithError(s, i, fmt.Sprintf("Failed to leave the group: %v", err))
	}

	return RespondWithEmbedUpdate(s, i, sessionEmbed(out.Session), claimComponents())
}

// handleReactionAdd maps role reactions on session messages to claims
func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}

	role, ok := roleForEmoji(r.Emoji.Name)
	if !ok {
		return
	}

	out, err := b.groupService.ClaimRole(context.Background(), &group.ClaimRoleInput{
		SessionID:   r.MessageID,
		Participant: reactionParticipant(r),
		Role:        string(role),
	})
	if err != nil {
		// Reactions on non-session messages are everyday noise
		if !errors.Is(err, group.ErrSessionNotFound) {
			b.logger.Error().Err(err).Str("message_id", r.MessageID).Msg("claim failed")
		}
		return
	}

	if out.Ignored {
		return
	}

	if out.Outcome != models.ClaimAssigned {
		// Undo the reaction so the message mirrors the real slot state
		if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID); err != nil {
			b.logger.Warn().Err(err).Str("message_id", r.MessageID).Msg("failed to undo rejected claim reaction")
		}
		return
	}

	b.refreshSessionMessage(out.Session)
}

// handleReactionRemove maps removed role reactions to releases
func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.UserID == s.State.User.ID {
		return
	}

	role, ok := roleForEmoji(r.Emoji.Name)
	if !ok {
		return
	}

	out, err := b.groupService.ReleaseRole(context.Background(), &group.ReleaseRoleInput{
		SessionID:   r.MessageID,
		Participant: models.Participant{ID: r.UserID},
		Role:        string(role),
	})
	if err != nil {
		if !errors.Is(err, group.ErrSessionNotFound) {
			b.logger.Error().Err(err).Str("message_id", r.MessageID).Msg("release failed")
		}
		return
	}

	if out.Ignored || out.Outcome != models.ReleaseDone {
		return
	}

	b.refreshSessionMessage(out.Session)
}

// refreshSessionMessage re-renders a session's channel message
func (b *Bot) refreshSessionMessage(sess *models.Session) {
	if _, err := b.session.ChannelMessageEditEmbed(sess.ChannelID, sess.ID, sessionEmbed(sess)); err != nil {
		b.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to refresh session message")
	}
}

// armReminder schedules the starts-soon ping for a parsed start time.
// Sessions starting now, unparsed schedules, and starts inside the lead
// window get no reminder.
func (b *Bot) armReminder(sess *models.Session) {
	b.cancelReminder(sess.ID)

	if sess.Schedule.At == nil {
		return
	}

	wait := time.Until(sess.Schedule.At.Add(-reminderLead))
	if wait <= 0 {
		return
	}

	sessionID := sess.ID

	b.remindersMu.Lock()
	b.reminders[sessionID] = time.AfterFunc(wait, func() {
		b.fireReminder(sessionID)
	})
	b.remindersMu.Unlock()
}

// cancelReminder stops a pending reminder, if any
func (b *Bot) cancelReminder(sessionID string) {
	b.remindersMu.Lock()
	defer b.remindersMu.Unlock()

	if timer, ok := b.reminders[sessionID]; ok {
		timer.Stop()
		delete(b.reminders, sessionID)
	}
}

// fireReminder pings the signed-up players that the run starts soon
func (b *Bot) fireReminder(sessionID string) {
	b.remindersMu.Lock()
	delete(b.reminders, sessionID)
	b.remindersMu.Unlock()

	// The session may have been retired or deleted since
	out, err := b.groupService.GetSession(context.Background(), &group.GetSessionInput{
		SessionID: sessionID,
	})
	if err != nil {
		return
	}

	sess := out.Session
	if _, err := b.session.ChannelMessageSend(sess.ChannelID, reminderMessage(sess)); err != nil {
		b.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to send start reminder")
	}
}

// respondWizardError maps wizard errors to user-facing responses
func (b *Bot) respondWizardError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	switch {
	case errors.Is(err, wizard.ErrDraftNotFound):
		return RespondWithUpdate(s, i, "This setup timed out. Run `/lfg create` to start over.", nil)
	case errors.Is(err, wizard.ErrNotDraftOwner):
		return RespondWithError(s, i, "Only the person setting up the group can make these choices.")
	case errors.Is(err, wizard.ErrCommentTooLong):
		return RespondWithError(s, i, fmt.Sprintf("That note is too long, keep it under %d characters.", b.maxComment))
	default:
		return RespondWithError(s, i, fmt.Sprintf("Something went wrong: %v", err))
	}
}

// interactionParticipant extracts the acting user from an interaction
func interactionParticipant(i *discordgo.InteractionCreate) models.Participant {
	if i.Member != nil && i.Member.User != nil {
		name := i.Member.User.Username
		if i.Member.Nick != "" {
			name = i.Member.Nick
		}
		return models.Participant{ID: i.Member.User.ID, Name: name}
	}

	if i.User != nil {
		return models.Participant{ID: i.User.ID, Name: i.User.Username}
	}

	return models.Participant{}
}

// reactionParticipant extracts the reacting user from a reaction event
func reactionParticipant(r *discordgo.MessageReactionAdd) models.Participant {
	if r.Member != nil && r.Member.User != nil {
		name := r.Member.User.Username
		if r.Member.Nick != "" {
			name = r.Member.Nick
		}
		return models.Participant{ID: r.Member.User.ID, Name: name}
	}

	return models.Participant{ID: r.UserID, Name: r.UserID}
}

// modalInputValue pulls the single text input out of a modal submission
func modalInputValue(i *discordgo.InteractionCreate) string {
	for _, component := range i.ModalSubmitData().Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				return input.Value
			}
		}
	}
	return ""
}
