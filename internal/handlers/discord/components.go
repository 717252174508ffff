package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/models"
)

// Wizard component custom ID prefixes. Each component carries the draft
// ID after the colon so the handler can route the click back to its flow.
const (
	ComponentRoleSelect     = "lfg_role"
	ComponentActivitySelect = "lfg_activity"
	ComponentTierSelect     = "lfg_tier"
	ButtonScheduleNow       = "lfg_when_now"
	ButtonScheduleCustom    = "lfg_when_custom"
	ButtonAddNote           = "lfg_note"
	ButtonSkipNote          = "lfg_skip"
	ModalCustomTime         = "lfg_time_modal"
	ModalNote               = "lfg_note_modal"

	// Session message buttons; the claim ID carries the role after the
	// colon, the session is identified by the message the button sits on
	ButtonClaim = "lfg_claim"
	ButtonLeave = "lfg_leave"

	// Text input IDs inside the modals
	InputCustomTime = "lfg_time_input"
	InputNote       = "lfg_note_input"
)

// Role claim reaction emojis, matched against the unicode name Discord
// reports on reaction events
const (
	EmojiTank   = "\U0001F6E1️" // shield
	EmojiHealer = "\U0001F49A"       // green heart
	EmojiDPS    = "⚔️"     // crossed swords
)

// roleEmojis maps roles to their claim reaction, in display order
var roleEmojis = map[models.RoleKind]string{
	models.RoleTank:   EmojiTank,
	models.RoleHealer: EmojiHealer,
	models.RoleDPS:    EmojiDPS,
}

// roleForEmoji maps a reaction emoji name back to a role symbol. Discord
// sometimes strips the variation selector, so both spellings match.
func roleForEmoji(name string) (models.RoleKind, bool) {
	switch strings.TrimSuffix(name, "️") {
	case strings.TrimSuffix(EmojiTank, "️"):
		return models.RoleTank, true
	case EmojiHealer:
		return models.RoleHealer, true
	case strings.TrimSuffix(EmojiDPS, "️"):
		return models.RoleDPS, true
	default:
		return "", false
	}
}

// componentID builds a custom ID carrying the draft the component belongs to
func componentID(prefix, draftID string) string {
	return prefix + ":" + draftID
}

// parseComponentID splits a custom ID into its prefix and draft ID
func parseComponentID(customID string) (prefix, draftID string) {
	prefix, draftID, _ = strings.Cut(customID, ":")
	return prefix, draftID
}

// roleSelectComponents builds the wizard's role choice step
func roleSelectComponents(draftID string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(models.AllRoles))
	for _, role := range models.AllRoles {
		options = append(options, discordgo.SelectMenuOption{
			Label: role.Label(),
			Value: string(role),
			Emoji: &discordgo.ComponentEmoji{Name: roleEmojis[role]},
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    componentID(ComponentRoleSelect, draftID),
					Placeholder: "Which role will you play?",
					Options:     options,
				},
			},
		},
	}
}

// activitySelectComponents builds the wizard's dungeon choice step
func activitySelectComponents(draftID string, c *catalog.Catalog) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(c.Activities))
	for _, activity := range c.Activities {
		options = append(options, discordgo.SelectMenuOption{
			Label: activity,
			Value: activity,
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    componentID(ComponentActivitySelect, draftID),
					Placeholder: "Which dungeon?",
					Options:     options,
				},
			},
		},
	}
}

// tierSelectComponents builds the wizard's key level choice step
func tierSelectComponents(draftID string, c *catalog.Catalog) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(c.Tiers))
	for _, tier := range c.Tiers {
		options = append(options, discordgo.SelectMenuOption{
			Label: tier,
			Value: tier,
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    componentID(ComponentTierSelect, draftID),
					Placeholder: "Which key level?",
					Options:     options,
				},
			},
		},
	}
}

// scheduleComponents builds the wizard's now/custom start time step
func scheduleComponents(draftID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Start now",
					Style:    discordgo.SuccessButton,
					CustomID: componentID(ButtonScheduleNow, draftID),
				},
				discordgo.Button{
					Label:    "Pick a time",
					Style:    discordgo.SecondaryButton,
					CustomID: componentID(ButtonScheduleCustom, draftID),
					Emoji:    &discordgo.ComponentEmoji{Name: "\U0001F552"},
				},
			},
		},
	}
}

// noteComponents builds the wizard's optional comment step
func noteComponents(draftID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Add a note",
					Style:    discordgo.SecondaryButton,
					CustomID: componentID(ButtonAddNote, draftID),
				},
				discordgo.Button{
					Label:    "Post it",
					Style:    discordgo.SuccessButton,
					CustomID: componentID(ButtonSkipNote, draftID),
				},
			},
		},
	}
}

// claimComponents builds the claim/leave buttons on a session message
func claimComponents() []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(models.AllRoles)+1)
	for _, role := range models.AllRoles {
		buttons = append(buttons, discordgo.Button{
			Label:    role.Label(),
			Style:    discordgo.PrimaryButton,
			CustomID: componentID(ButtonClaim, string(role)),
			Emoji:    &discordgo.ComponentEmoji{Name: roleEmojis[role]},
		})
	}

	buttons = append(buttons, discordgo.Button{
		Label:    "Leave",
		Style:    discordgo.SecondaryButton,
		CustomID: componentID(ButtonLeave, ""),
	})

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// customTimeInput is the text input inside the custom time modal
func customTimeInput() discordgo.TextInput {
	return discordgo.TextInput{
		CustomID:    InputCustomTime,
		Label:       "When does the group start?",
		Style:       discordgo.TextInputShort,
		Placeholder: "e.g. 19:30, tomorrow 8pm, after raid",
		Required:    true,
		MaxLength:   100,
	}
}

// noteInput is the text input inside the note modal
func noteInput(maxLength int) discordgo.TextInput {
	return discordgo.TextInput{
		CustomID:    InputNote,
		Label:       "Note for the group",
		Style:       discordgo.TextInputParagraph,
		Placeholder: "e.g. bring lust, chill run, leaver = ban",
		Required:    true,
		MaxLength:   maxLength,
	}
}

// draftSummary renders the selections made so far above the next step's
// components
func draftSummary(draft *models.WizardDraft) string {
	var b strings.Builder

	b.WriteString("**Setting up a group**\n")
	if draft.Role != "" {
		fmt.Fprintf(&b, "%s Playing **%s**\n", roleEmojis[draft.Role], draft.Role.Label())
	}
	if draft.Activity != "" {
		fmt.Fprintf(&b, "Dungeon: **%s**\n", draft.Activity)
	}
	if draft.Tier != "" {
		fmt.Fprintf(&b, "Key level: **%s**\n", draft.Tier)
	}
	if draft.Schedule.Display != "" {
		fmt.Fprintf(&b, "Starts: **%s**\n", draft.Schedule.Display)
	}

	return b.String()
}
