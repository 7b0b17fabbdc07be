package perms

import "github.com/bwmarrin/discordgo"

// Authority levels derived from staff role membership. Never stored.
const (
	LevelNone     = 0
	LevelStaff    = 1
	LevelSenior   = 2
	LevelLead     = 3
	LevelOverseer = 4
)

var tierNames = map[int]string{
	1: "Staff",
	2: "Staff+",
	3: "Staff++",
	4: "Staff+++",
}

func TierName(tier int) string {
	return tierNames[tier]
}

func TierNames() []string {
	return []string{tierNames[1], tierNames[2], tierNames[3], tierNames[4]}
}

// Level returns the highest tier whose recorded role the member holds.
func Level(member *discordgo.Member, tiers map[int]string) int {
	if member == nil || len(tiers) == 0 {
		return LevelNone
	}
	held := make(map[string]struct{}, len(member.Roles))
	for _, roleID := range member.Roles {
		held[roleID] = struct{}{}
	}
	level := LevelNone
	for tier := 1; tier <= 4; tier++ {
		roleID := tiers[tier]
		if roleID == "" {
			continue
		}
		if _, ok := held[roleID]; ok {
			level = tier
		}
	}
	return level
}
