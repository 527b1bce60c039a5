package challenge

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Generator produces a fresh prompt and the matcher for its one expected
// answer.
type Generator func(r *rand.Rand) (prompt string, answer Matcher)

var generators = map[string]Generator{
	"base64": generateBase64,
	"rot":    generateRot,
	"hex":    generateHex,
	"sql":    generateSQL,
}

func LookupGenerator(name string) (Generator, bool) {
	g, ok := generators[strings.ToLower(strings.TrimSpace(name))]
	return g, ok
}

var (
	base64Messages = []string{
		"PROTOCOL ACTIVE", "SYSTEM BREACH", "ACCESS GRANTED", "GHOST MODE ON",
		"SECURE CHANNEL", "DATA ENCRYPTED", "STEALTH ENABLED", "PROXY CONNECTED",
	}
	rotMessages = []string{
		"HELLO WORLD", "SECRET CODE", "GHOST HACK", "CYBER PUNK", "DATA MINE", "NETWORK",
	}
	hexWords = []string{
		"HACK", "CODE", "BYTE", "DATA", "LINK", "NODE", "CORE", "GHOST", "CYBER", "SECURE",
	}
)

var phraseNorm = Normalizer{Trim: true, Fold: true, Separators: true}

func pick(r *rand.Rand, items []string) string {
	return items[r.IntN(len(items))]
}

func generateBase64(r *rand.Rand) (string, Matcher) {
	msg := pick(r, base64Messages)
	encoded := base64.StdEncoding.EncodeToString([]byte(msg))
	prompt := fmt.Sprintf("Intercepted transmission:\n\n  %s\n\nDecode the Base64 payload.", encoded)
	return prompt, Exact{Norm: phraseNorm, Value: msg}
}

func generateRot(r *rand.Rand) (string, Matcher) {
	msg := pick(r, rotMessages)
	shift := 1 + r.IntN(25)
	prompt := fmt.Sprintf("Ciphertext recovered from a dead drop:\n\n  %s\n\nEach letter was rotated forward by %d. Recover the plaintext.", rotate(msg, shift), shift)
	return prompt, Exact{Norm: phraseNorm, Value: msg}
}

func generateHex(r *rand.Rand) (string, Matcher) {
	word := pick(r, hexWords)
	encoded := strings.ToUpper(hex.EncodeToString([]byte(word)))
	prompt := fmt.Sprintf("Memory dump fragment:\n\n  %s\n\nConvert the hex bytes to ASCII.", encoded)
	return prompt, Exact{Norm: phraseNorm, Value: word}
}

type sqlTechnique struct {
	name    string
	payload string
}

var (
	sqlUsers      = []string{"admin", "root", "guest"}
	sqlTechniques = []sqlTechnique{
		{name: "numeric tautology", payload: "' OR 1=1--"},
		{name: "string tautology", payload: "' OR 'x'='x"},
		{name: "UNION injection", payload: "' UNION SELECT 1--"},
	}
)

func generateSQL(r *rand.Rand) (string, Matcher) {
	user := pick(r, sqlUsers)
	tech := sqlTechniques[r.IntN(len(sqlTechniques))]
	prompt := fmt.Sprintf(
		"The login form for '%s' runs:\n\n  SELECT * FROM users WHERE name='%s' AND pass='<input>'\n\nCraft a %s payload for the password field.",
		user, user, tech.name,
	)
	return prompt, Contains{
		Norm:  Normalizer{Trim: true, Fold: true, Remove: " "},
		Parts: []string{tech.payload},
	}
}

func rotate(s string, shift int) string {
	shift = ((shift % 26) + 26) % 26
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+rune(shift))%26
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+rune(shift))%26
		default:
			return r
		}
	}, s)
}
