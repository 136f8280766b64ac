package discord

import (
	"log"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"mimic/internal/mimic"
)

// FindUsersByFuzzyName resolves a display name fragment to guild
// members, matching case-insensitively against nickname, global name
// and username. State is consulted first; the members-search API is the
// fallback for guilds whose member list is not cached yet.
func (b *Bot) FindUsersByFuzzyName(guildID, name string) []mimic.Target {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	var matches []mimic.Target
	seen := map[string]bool{}

	if guild, err := b.dg.State.Guild(guildID); err == nil {
		for _, member := range guild.Members {
			if t, ok := memberMatches(member, needle); ok && !seen[t.ID] {
				seen[t.ID] = true
				matches = append(matches, t)
			}
		}
	}

	if len(matches) == 0 {
		members, err := b.dg.GuildMembersSearch(guildID, needle, 10)
		if err != nil {
			log.Println("[WARN] Guild member search failed:", err)
			return matches
		}
		for _, member := range members {
			if t, ok := memberMatches(member, needle); ok && !seen[t.ID] {
				seen[t.ID] = true
				matches = append(matches, t)
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

// FindUserByID resolves a stable user identifier back to a target.
func (b *Bot) FindUserByID(guildID, id string) (mimic.Target, bool) {
	if member, err := b.dg.State.Member(guildID, id); err == nil && member.User != nil {
		return mimic.Target{ID: member.User.ID, Name: displayName(member)}, true
	}

	user, err := b.dg.User(id)
	if err != nil {
		return mimic.Target{}, false
	}
	return mimic.Target{ID: user.ID, Name: user.Username}, true
}

func memberMatches(member *discordgo.Member, needle string) (mimic.Target, bool) {
	if member == nil || member.User == nil {
		return mimic.Target{}, false
	}

	for _, candidate := range []string{member.Nick, member.User.GlobalName, member.User.Username} {
		if candidate != "" && strings.Contains(strings.ToLower(candidate), needle) {
			return mimic.Target{ID: member.User.ID, Name: displayName(member)}, true
		}
	}
	return mimic.Target{}, false
}

func displayName(member *discordgo.Member) string {
	switch {
	case member.Nick != "":
		return member.Nick
	case member.User.GlobalName != "":
		return member.User.GlobalName
	default:
		return member.User.Username
	}
}
