// Package tokenize provides the pluggable token-counting capability. A
// capability is loaded once at startup; load failure is fatal to the whole
// process, while a per-call failure is recoverable for that text only.
package tokenize

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Capability turns text into a token count.
type Capability interface {
	// Count returns the number of tokens in text. An error applies to this
	// text only; callers fall back to a zero count.
	Count(text string) (int, error)
	// Name identifies the capability in logs and reports.
	Name() string
}

// Load builds a Capability from an identifier. Only local vocabulary files
// (a HuggingFace-style tokenizer.json) are supported; remote hub
// identifiers are rejected here rather than silently word-counted.
func Load(identifier string) (Capability, error) {
	if identifier == "" {
		return WordCount{}, nil
	}
	if !strings.HasSuffix(identifier, ".json") {
		return nil, fmt.Errorf("tokenizer %q: only local tokenizer.json files are supported", identifier)
	}
	return loadVocabFile(identifier)
}

// WordCount is the fallback capability: whitespace-separated word counting.
type WordCount struct{}

func (WordCount) Count(text string) (int, error) { return len(strings.Fields(text)), nil }

func (WordCount) Name() string { return "wordcount" }

// vocabTokenizer counts sub-word tokens by greedy longest-match against a
// fixed vocabulary, splitting on whitespace first. Pieces with no vocabulary
// match at all count as one unknown token per character cluster.
type vocabTokenizer struct {
	name   string
	vocab  map[string]struct{}
	maxLen int
}

// tokenizerFile is the subset of the tokenizer.json layout we read.
type tokenizerFile struct {
	Model struct {
		Vocab map[string]json.RawMessage `json:"vocab"`
	} `json:"model"`
}

func loadVocabFile(path string) (Capability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer %q: %w", path, err)
	}

	var tf tokenizerFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("tokenizer %q: %w", path, err)
	}
	if len(tf.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer %q: no model.vocab entries", path)
	}

	t := &vocabTokenizer{name: path, vocab: make(map[string]struct{}, len(tf.Model.Vocab))}
	for piece := range tf.Model.Vocab {
		// Some vocabularies mark word-initial pieces with a metaspace or
		// byte-level prefix; indexing the stripped form keeps matching
		// byte-compatible with plain text.
		piece = strings.TrimPrefix(piece, "▁")
		piece = strings.TrimPrefix(piece, "Ġ")
		if piece == "" {
			continue
		}
		t.vocab[piece] = struct{}{}
		if len(piece) > t.maxLen {
			t.maxLen = len(piece)
		}
	}
	return t, nil
}

func (t *vocabTokenizer) Name() string { return t.name }

func (t *vocabTokenizer) Count(text string) (int, error) {
	count := 0
	for _, word := range strings.Fields(text) {
		count += t.countWord(word)
	}
	return count, nil
}

// countWord consumes word left to right, always taking the longest
// vocabulary piece at the current position.
func (t *vocabTokenizer) countWord(word string) int {
	count := 0
	for len(word) > 0 {
		n := len(word)
		if n > t.maxLen {
			n = t.maxLen
		}
		matched := 0
		for ; n > 0; n-- {
			if _, ok := t.vocab[word[:n]]; ok {
				matched = n
				break
			}
		}
		if matched == 0 {
			// No piece matches here; count one unknown token per rune.
			_, size := utf8.DecodeRuneInString(word)
			word = word[size:]
			count++
			continue
		}
		word = word[matched:]
		count++
	}
	return count
}
