package game

import (
	"errors"
	"math/rand/v2"
	"strings"
)

var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// DefaultWords are categories the doodle classifier knows, spelled the way
// it reports them.
var DefaultWords = []string{
	"cat", "dog", "tree", "house", "face", "apple", "book", "bow", "candle", "car",
	"cloud", "cup", "door", "envelope", "fish", "guitar", "ice_cream", "key", "ladder",
	"light_bulb", "moon", "mountain", "pants", "pizza", "star", "sun", "umbrella",
}

// Vocabulary is an ordered set of target words. It never changes after
// construction.
type Vocabulary struct {
	words []string
	index map[string]struct{}
}

// NewVocabulary trims words, drops blanks and keeps the first occurrence of
// each duplicate.
func NewVocabulary(words []string) (Vocabulary, error) {
	v := Vocabulary{index: make(map[string]struct{}, len(words))}
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if _, dup := v.index[word]; dup {
			continue
		}
		v.index[word] = struct{}{}
		v.words = append(v.words, word)
	}
	if len(v.words) == 0 {
		return Vocabulary{}, ErrEmptyVocabulary
	}
	return v, nil
}

func DefaultVocabulary() Vocabulary {
	v, _ := NewVocabulary(DefaultWords)
	return v
}

func (v Vocabulary) Len() int { return len(v.words) }

func (v Vocabulary) Words() []string {
	out := make([]string, len(v.words))
	copy(out, v.words)
	return out
}

func (v Vocabulary) Contains(word string) bool {
	_, ok := v.index[word]
	return ok
}

// Pick draws a word uniformly at random. Repeats across rounds are allowed.
func (v Vocabulary) Pick(rng *rand.Rand) string {
	if len(v.words) == 0 {
		return ""
	}
	if rng == nil {
		return v.words[rand.IntN(len(v.words))]
	}
	return v.words[rng.IntN(len(v.words))]
}

// DisplayWord is the human form of a word or classifier label.
func DisplayWord(word string) string {
	return strings.ReplaceAll(word, "_", " ")
}
