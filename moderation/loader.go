package moderation

import (
	"bufio"
	"bytes"
	"chat-relay/errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CensoredData carries the loaded words and the dictionaries they came from.
type CensoredData struct {
	Words     []string
	Languages []string
}

// LoadCensoredWords reads one word per line from a .txt file, or from every
// .txt file of a directory ("fr.txt" is tracked as language "fr").
func LoadCensoredWords(path string) (*CensoredData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadFS(os.DirFS(filepath.Dir(path)), []string{filepath.Base(path)})
	}

	fsys := os.DirFS(path)
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		names = append(names, entry.Name())
	}
	return loadFS(fsys, names)
}

func loadFS(fsys fs.FS, names []string) (*CensoredData, error) {
	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, name := range names {
		languages = append(languages, strings.TrimSuffix(name, ".txt"))

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		// bufio handles both \n and \r\n line endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err = scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	return &CensoredData{Words: words, Languages: languages}, nil
}
