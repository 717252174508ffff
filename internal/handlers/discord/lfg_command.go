package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/groupforge/keystone/internal/services/group"
	"github.com/groupforge/keystone/internal/services/wizard"
)

// LFGCommand handles the /lfg command
type LFGCommand struct {
	BaseCommand
	bot *Bot
}

// NewLFGCommand creates a new lfg command handler
func NewLFGCommand(bot *Bot) *LFGCommand {
	activityChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(bot.catalog.Activities))
	for _, activity := range bot.catalog.Activities {
		activityChoices = append(activityChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  activity,
			Value: activity,
		})
	}

	tierChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(bot.catalog.Tiers))
	for _, tier := range bot.catalog.Tiers {
		tierChoices = append(tierChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  tier,
			Value: tier,
		})
	}

	return &LFGCommand{
		BaseCommand: BaseCommand{
			Name:        "lfg",
			Description: "Dungeon group finder commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Set up a new dungeon group",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the server's top hosts and runners",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "edit",
					Description: "Change your group's details",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "dungeon",
							Description: "New dungeon",
							Choices:     activityChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "tier",
							Description: "New key level",
							Choices:     tierChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "when",
							Description: "New start time, e.g. now, 19:30, tomorrow 8pm",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "note",
							Description: "New note for the group",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Take down your group",
				},
			},
		},
		bot: bot,
	}
}

// Handle processes a Discord interaction for the lfg command
func (c *LFGCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	participant := interactionParticipant(i)

	switch data.Options[0].Name {
	case "create":
		return c.handleCreate(s, i)
	case "leaderboard":
		return c.handleLeaderboard(s, i)
	case "edit":
		return c.handleEdit(s, i, data.Options[0].Options)
	case "cancel":
		return c.handleCancel(s, i, participant.ID)
	default:
		return errors.New("unknown subcommand")
	}
}

// handleCreate starts the creation wizard
func (c *LFGCommand) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	out, err := c.bot.wizardService.StartDraft(context.Background(), &wizard.StartDraftInput{
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
		Creator:   interactionParticipant(i),
	})
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Failed to start the group setup: %v", err))
	}

	return RespondWithEphemeralComponents(s, i,
		"**Setting up a group**\nWhich role will you play?",
		roleSelectComponents(out.Draft.ID))
}

// handleLeaderboard shows the guild's host and runner tallies
func (c *LFGCommand) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	out, err := c.bot.groupService.GetLeaderboard(context.Background(), &group.GetLeaderboardInput{
		GuildID: i.GuildID,
	})
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Failed to get the leaderboard: %v", err))
	}

	return RespondWithEmbed(s, i, leaderboardEmbed(out.Hosts, out.Participants))
}

// handleEdit applies the provided option values to the caller's group
func (c *LFGCommand) handleEdit(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()
	participant := interactionParticipant(i)

	found, err := c.bot.groupService.FindSession(ctx, &group.FindSessionInput{
		ChannelID: i.ChannelID,
		CreatorID: participant.ID,
	})
	if err != nil {
		if errors.Is(err, group.ErrSessionNotFound) {
			return RespondWithError(s, i, "You don't have a group up in this channel.")
		}
		return RespondWithError(s, i, fmt.Sprintf("Failed to find your group: %v", err))
	}

	if len(options) == 0 {
		return RespondWithError(s, i, "Nothing to change. Pass at least one of dungeon, tier, when, or note.")
	}

	sess := found.Session
	sessionID := sess.ID
	scheduleChanged := false

	for _, option := range options {
		switch option.Name {
		case "dungeon":
			out, updateErr := c.bot.groupService.UpdateActivity(ctx, &group.UpdateActivityInput{
				SessionID:   sessionID,
				RequestedBy: participant,
				Activity:    option.StringValue(),
			})
			if updateErr != nil {
				return c.respondEditError(s, i, updateErr)
			}
			sess = out.Session
		case "tier":
			out, updateErr := c.bot.groupService.UpdateTier(ctx, &group.UpdateTierInput{
				SessionID:   sessionID,
				RequestedBy: participant,
				Tier:        option.StringValue(),
			})
			if updateErr != nil {
				return c.respondEditError(s, i, updateErr)
			}
			sess = out.Session
		case "when":
			out, updateErr := c.bot.groupService.UpdateSchedule(ctx, &group.UpdateScheduleInput{
				SessionID:   sessionID,
				RequestedBy: participant,
				RawSchedule: option.StringValue(),
			})
			if updateErr != nil {
				return c.respondEditError(s, i, updateErr)
			}
			sess = out.Session
			scheduleChanged = true
		case "note":
			out, updateErr := c.bot.groupService.UpdateComment(ctx, &group.UpdateCommentInput{
				SessionID:   sessionID,
				RequestedBy: participant,
				Comment:     option.StringValue(),
			})
			if updateErr != nil {
				return c.respondEditError(s, i, updateErr)
			}
			sess = out.Session
		}
	}

	c.bot.refreshSessionMessage(sess)
	if scheduleChanged {
		c.bot.armReminder(sess)
	}

	return RespondWithEphemeralMessage(s, i, "Group updated.")
}

// handleCancel takes down the caller's group
func (c *LFGCommand) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	ctx := context.Background()
	participant := interactionParticipant(i)

	found, err := c.bot.groupService.FindSession(ctx, &group.FindSessionInput{
		ChannelID: i.ChannelID,
		CreatorID: userID,
	})
	if err != nil {
		if errors.Is(err, group.ErrSessionNotFound) {
			return RespondWithError(s, i, "You don't have a group up in this channel.")
		}
		return RespondWithError(s, i, fmt.Sprintf("Failed to find your group: %v", err))
	}

	out, err := c.bot.groupService.DeleteSession(ctx, &group.DeleteSessionInput{
		SessionID:   found.Session.ID,
		RequestedBy: participant,
	})
	if err != nil {
		return c.respondEditError(s, i, err)
	}

	c.bot.cancelReminder(out.Session.ID)
	if err := s.ChannelMessageDelete(out.Session.ChannelID, out.Session.ID); err != nil {
		c.bot.logger.Warn().Err(err).Str("session_id", out.Session.ID).Msg("failed to delete cancelled session message")
	}

	return RespondWithEphemeralMessage(s, i, "Group taken down.")
}

// respondEditError maps group service errors to user-facing responses
func (c *LFGCommand) respondEditError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	switch {
	case errors.Is(err, group.ErrSessionNotFound):
		return RespondWithError(s, i, "That group is gone already.")
	case errors.Is(err, group.ErrUnauthorized):
		return RespondWithError(s, i, "Only the host can change the group.")
	case errors.Is(err, group.ErrCommentTooLong):
		return RespondWithError(s, i, fmt.Sprintf("That note is too long, keep it under %d characters.", c.bot.maxComment))
	default:
		return RespondWithError(s, i, fmt.Sprintf("Failed to update the group: %v", err))
	}
}
