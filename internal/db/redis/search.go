package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

const vectorScoreField = "__vector_score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Scores are cosine similarities (1 - distance), in [-1, 1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	args := []string{q.IndexName, buildKNNQuery(q.K, q.ExcludeDeleted)}
	args = appendReturn(args, q.ReturnFields, vectorScoreField)
	args = append(args,
		"SORTBY", vectorScoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// SearchKeyword matches the terms as infix substrings of the title field via FT.SEARCH.
// Hits carry no score.
func (s *Store) SearchKeyword(ctx context.Context, q *db.KeywordQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	match, err := buildTitleMatch(q.Terms, q.MatchAll)
	if err != nil {
		return nil, err
	}

	queryStr := match
	if q.ExcludeDeleted {
		queryStr = deletedFilter + " " + match
	}

	args := []string{q.IndexName, queryStr}
	args = appendReturn(args, q.ReturnFields)
	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw)
}

// --- Query building ---

var deletedFilter = "@" + db.FieldDeleted + ":[0 0]"

func buildKNNQuery(k int, excludeDeleted bool) string {
	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB]", k, db.FieldVector)
	if excludeDeleted {
		return fmt.Sprintf("(%s)=>%s", deletedFilter, knnPart)
	}
	return "*=>" + knnPart
}

// buildTitleMatch renders @title:(...) with every word wrapped as an infix
// wildcard. Words are split on the same separators the TEXT tokenizer uses,
// so "t-shirt" becomes (t *shirt*). Multi-word terms require all their
// words; terms are ANDed when matchAll is set and ORed otherwise.
func buildTitleMatch(terms []string, matchAll bool) (string, error) {
	groups := make([]string, 0, len(terms))
	for _, term := range terms {
		words := strings.FieldsFunc(term, isTokenSeparator)
		if len(words) == 0 {
			continue
		}
		parts := make([]string, len(words))
		for i, w := range words {
			// Single-rune words sit below MINPREFIX and match as whole tokens.
			if utf8.RuneCountInString(w) < 2 {
				parts[i] = escapeQuery(w)
				continue
			}
			parts[i] = "*" + escapeQuery(w) + "*"
		}
		group := strings.Join(parts, " ")
		if len(parts) > 1 {
			group = "(" + group + ")"
		}
		groups = append(groups, group)
	}
	if len(groups) == 0 {
		return "", errors.New("at least one non-empty term is required")
	}

	sep := " | "
	if matchAll {
		sep = " "
	}
	return fmt.Sprintf("@%s:(%s)", db.FieldTitle, strings.Join(groups, sep)), nil
}

func isTokenSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func appendReturn(args, fields []string, extra ...string) []string {
	if len(fields) == 0 {
		return args
	}
	args = append(args, "RETURN", strconv.Itoa(len(fields)+len(extra)))
	args = append(args, fields...)
	return append(args, extra...)
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	res, err := parseListResult(raw)
	if err != nil {
		return nil, err
	}

	for i := range res.Entries {
		e := &res.Entries[i]
		if scoreStr, ok := e.Fields[vectorScoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				e.Score = 1.0 - d
			}
			delete(e.Fields, vectorScoreField)
		}
	}
	return res, nil
}

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`,`, `\,`,
	`.`, `\.`,
	`:`, `\:`,
	`&`, `\&`,
	`#`, `\#`,
	`/`, `\/`,
	`?`, `\?`,
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
