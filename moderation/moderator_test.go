package moderation

import (
	"chat-relay/errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// TestModerator_Censor
// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name: "Leet speak and internal punctuation",
			// B (index 9) . 4 . d . g . € r (index 20) -> 10 characters
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "********* is a ***********",
			words:    []string{"snake", "badger"},
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			words:    []string{"badger"},
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
			words:    []string{"badger"},
		},
		{
			name:     "Nothing to censor",
			input:    "Chat-Relay is amazing",
			expected: "Chat-Relay is amazing",
			words:    nil,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content, "test=%s,", tt.name)
			req.Equal(tt.words, words, "expected=%s,words=%s", tt.expected, words)
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given real noise and not Leet Speak associated
	dictionary := []string{"...", ",,,", "", "badger"}

	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	// Then the sentence is censored
	input := "The badger is safe"
	expected := "The ****** is safe"
	content, words := mod.Censor(input)
	req.Equal(expected, content)
	req.Equal([]string{"badger"}, words)

	// Then real noise is uncensored
	input = "Hello ..."
	expected = "Hello ..."
	content, words = mod.Censor(input)
	req.Equal(expected, content)
	req.Nil(words)
}

func TestModerator_Empty_Dictionary(t *testing.T) {
	req := require.New(t)

	_, err := NewModerator([]string{"...", " "}, replacementChar, slog.Default())

	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestLoadCensoredWords(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	req.NoError(os.WriteFile(filepath.Join(dir, "en.txt"), []byte("badger\r\nsnake\n\n"), 0o644))
	req.NoError(os.WriteFile(filepath.Join(dir, "fr.txt"), []byte("blaireau\nbadger\n"), 0o644))
	req.NoError(os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	// When loading a directory
	data, err := LoadCensoredWords(dir)
	req.NoError(err)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
	req.ElementsMatch([]string{"badger", "snake", "blaireau"}, data.Words)

	// When loading a single file
	data, err = LoadCensoredWords(filepath.Join(dir, "fr.txt"))
	req.NoError(err)
	req.Equal([]string{"fr"}, data.Languages)
	req.ElementsMatch([]string{"blaireau", "badger"}, data.Words)
}

func TestLoadCensoredWords_Empty_File(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "en.txt")
	req.NoError(os.WriteFile(path, []byte("\n  \n"), 0o644))

	_, err := LoadCensoredWords(path)

	req.ErrorIs(err, errors.ErrEmptyWords)
}
