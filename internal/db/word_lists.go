package db

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrWordListNotFound = errors.New("word list not found")
	ErrWordListExists   = errors.New("word list already exists")
	ErrEmptyWordList    = errors.New("word list has no words")
)

const uniqueViolation = "23505"

// CreateWordList inserts a new list and fails with ErrWordListExists when the
// name is taken.
func CreateWordList(ctx context.Context, conn *gorm.DB, name string, words []string) error {
	entry, err := newWordList(name, words)
	if err != nil {
		return err
	}
	if err := conn.WithContext(ctx).Create(&entry).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrWordListExists
		}
		return err
	}
	return nil
}

// SaveWordList creates the list or replaces the words of an existing one.
func SaveWordList(ctx context.Context, conn *gorm.DB, name string, words []string) error {
	err := CreateWordList(ctx, conn, name, words)
	if !errors.Is(err, ErrWordListExists) {
		return err
	}
	entry, err := newWordList(name, words)
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).
		Model(&WordList{}).
		Where("name = ?", entry.Name).
		Update("words", entry.Words).Error
}

func LoadWordList(ctx context.Context, conn *gorm.DB, name string) ([]string, error) {
	var entry WordList
	err := conn.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWordListNotFound
	}
	if err != nil {
		return nil, err
	}
	var words []string
	if err := json.Unmarshal(entry.Words, &words); err != nil {
		return nil, fmt.Errorf("decode word list %q: %w", entry.Name, err)
	}
	return words, nil
}

func ListWordLists(ctx context.Context, conn *gorm.DB) ([]string, error) {
	var names []string
	err := conn.WithContext(ctx).Model(&WordList{}).Order("name").Pluck("name", &names).Error
	return names, err
}

func newWordList(name string, words []string) (WordList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return WordList{}, errors.New("word list name is required")
	}
	cleaned := cleanWords(words)
	if len(cleaned) == 0 {
		return WordList{}, ErrEmptyWordList
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return WordList{}, err
	}
	return WordList{Name: name, Words: datatypes.JSON(raw)}, nil
}

func cleanWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

// ReadWordCSV reads "list,word" rows after a header row and groups the words
// by list name.
func ReadWordCSV(path string) (map[string][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	lists := make(map[string][]string)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		list := strings.TrimSpace(row[0])
		word := strings.TrimSpace(row[1])
		if list == "" || word == "" {
			continue
		}
		lists[list] = append(lists[list], word)
	}
	return lists, nil
}

// SortedNames returns the keys of a ReadWordCSV result in order.
func SortedNames(lists map[string][]string) []string {
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
