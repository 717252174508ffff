package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/groupforge/keystone/internal/models"
	leaderboardRepo "github.com/groupforge/keystone/internal/repositories/leaderboard"
)

const (
	colorActive = 0x2ecc71
	colorGold   = 0xf1c40f
)

// sessionEmbed renders a session as the channel message players react to
func sessionEmbed(sess *models.Session) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Starts",
			Value:  sess.Schedule.Display,
			Inline: true,
		},
		{
			Name:   "Key level",
			Value:  sess.Tier,
			Inline: true,
		},
	}

	for _, role := range models.AllRoles {
		fields = append(fields, roleField(sess, role))
	}

	description := sess.Comment
	if description == "" {
		description = "React below to claim a spot."
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("LFG: %s", sess.Activity),
		Description: description,
		Color:       colorActive,
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Hosted by %s | %s tank, %s healer, %s dps",
				sess.Creator.Name, EmojiTank, EmojiHealer, EmojiDPS),
		},
	}
}

// roleField renders one role's slots with its holders
func roleField(sess *models.Session, role models.RoleKind) *discordgo.MessageEmbedField {
	holders := sess.Slots.Holders(role)

	value := ""
	for _, p := range holders {
		value += p.Name + "\n"
	}
	if value == "" {
		value = "*open*"
	}

	return &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("%s %s (%d/%d)", roleEmojis[role], role.Label(), len(holders), role.Capacity()),
		Value:  value,
		Inline: true,
	}
}

// leaderboardEmbed renders the guild's host and participant tallies
func leaderboardEmbed(hosts, participants []leaderboardRepo.Entry) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Dungeon Leaderboard",
		Color: colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Top hosts",
				Value:  leaderboardLines(hosts),
				Inline: true,
			},
			{
				Name:   "Top runners",
				Value:  leaderboardLines(participants),
				Inline: true,
			},
		},
	}
}

// leaderboardLines renders ranked entries with medals for the podium
func leaderboardLines(entries []leaderboardRepo.Entry) string {
	if len(entries) == 0 {
		return "*no runs yet*"
	}

	rankEmojis := []string{"\U0001F947", "\U0001F948", "\U0001F949"}

	var b strings.Builder
	for i, entry := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(rankEmojis) {
			rank = rankEmojis[i]
		}
		fmt.Fprintf(&b, "%s **%s**: %d\n", rank, entry.PlayerName, entry.Runs)
	}

	return b.String()
}

// reminderMessage renders the starts-soon ping with everyone signed up
func reminderMessage(sess *models.Session) string {
	var mentions []string
	for _, role := range models.AllRoles {
		for _, p := range sess.Slots.Holders(role) {
			mentions = append(mentions, fmt.Sprintf("<@%s>", p.ID))
		}
	}

	return fmt.Sprintf("⏰ **%s (%s)** starts in 15 minutes! %s",
		sess.Activity, sess.Tier, strings.Join(mentions, " "))
}
