package app

import (
	"fmt"
	"math/rand"
	"strings"
)

const maxNicknameLen = 24

// cleanNickname trims and caps a requested nickname, falling back to
// "Player" when nothing usable remains.
func cleanNickname(raw string) string {
	name := strings.TrimSpace(raw)
	if runes := []rune(name); len(runes) > maxNicknameLen {
		name = string(runes[:maxNicknameLen])
	}
	if name == "" {
		return "Player"
	}
	return name
}

var (
	nicknameSuffixes = []string{
		"Slayer", "Rider", "Blade", "Hunter", "Ghost", "Shadow", "Strike", "Storm",
		"Nova", "Vortex", "Fury", "Drift", "Rogue", "Phantom", "Wolf", "Dragon",
		"Reaper", "Flash", "Venom", "Spike", "Burst",
	}
	nicknameModifiers = []string{"", "X", "Pro", "Ultra", "Neo", "Dark", "Night", "Zero", "Alpha", "Omega"}
	nicknameNumbers   = []string{"", "07", "13", "99", "404", "777", "1337"}
)

// suggestNicknames produces n distinct alternatives for a taken base name.
// Each candidate combines the base with a random modifier, suffix, and
// number, and is checked against taken (live nicknames) before being kept.
// The base is trimmed so every candidate fits the nickname cap; a
// suggestion must survive cleanNickname unchanged or the rejoin would
// collide with the taken name all over again.
func suggestNicknames(rnd *rand.Rand, base string, taken func(string) bool, n int) []string {
	suggestions := make([]string, 0, n)
	seen := make(map[string]struct{}, n)

	for attempts := 0; len(suggestions) < n && attempts < 200; attempts++ {
		tail := nicknameModifiers[rnd.Intn(len(nicknameModifiers))] +
			nicknameSuffixes[rnd.Intn(len(nicknameSuffixes))] +
			nicknameNumbers[rnd.Intn(len(nicknameNumbers))]
		candidate := fitNickname(base, tail)
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup || taken(candidate) {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, candidate)
	}

	// Numeric fallback in case the word lists are exhausted against a
	// crowded roster.
	for i := 2; len(suggestions) < n; i++ {
		candidate := fitNickname(base, fmt.Sprintf("%d", i))
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup || taken(candidate) {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, candidate)
	}
	return suggestions
}

// fitNickname appends tail to base, shortening base as needed to honor
// the nickname length cap. The tail always survives intact so candidates
// stay distinct from the base name.
func fitNickname(base, tail string) string {
	room := maxNicknameLen - len([]rune(tail))
	if runes := []rune(base); len(runes) > room {
		base = string(runes[:room])
	}
	return base + tail
}
