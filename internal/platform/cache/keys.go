package cache

import (
	"strconv"
	"strings"
)

// Cache keys compose a namespace with every parameter that affects the cached
// value. A collision between differently-scoped requests is a correctness
// bug, so all builders funnel through makeKey.

func GlobalLeaderboardKey(language, period string) string {
	return makeKey("leaderboard:global", canonical(language), canonical(period))
}

func ChallengeLeaderboardKey(language string, index int) string {
	return makeKey("leaderboard:challenge", canonical(language), strconv.Itoa(index))
}

func ParticipantsKey(language string, index int) string {
	return makeKey("participants", canonical(language), strconv.Itoa(index))
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func makeKey(parts ...string) string {
	return strings.Join(parts, "|")
}
