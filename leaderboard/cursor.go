// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/scoreboard/models"
)

// Page is one page of a keyset-paginated listing. ContinueToken is nil
// on the last page.
type Page[T any] struct {
	Items         []T
	ContinueToken *string
}

const (
	DefaultPageSize   = 100
	MaxPageSize       = 100
	DefaultLatestSize = 50
)

// ClampLimit applies the listing limit rules: non-positive means the
// default, anything above max is capped.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// sessionCursor is the decoded position of the last row of a page.
type sessionCursor struct {
	null  bool
	score float64
	date  time.Time
	id    int64
}

// Tokens are URL-safe base64 of "<value>|<id>". The value is empty for
// a NULL total score.
func encodeSessionToken(orderBy string, s models.Session) string {
	var value string
	if orderBy == models.OrderByDate {
		value = s.Date.UTC().Format(time.RFC3339Nano)
	} else if s.TotalScore != nil {
		value = strconv.FormatFloat(*s.TotalScore, 'g', -1, 64)
	}
	raw := value + "|" + strconv.FormatInt(s.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeSessionToken(orderBy, token string) (sessionCursor, error) {
	var c sessionCursor
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, invalid("malformed continue token")
	}
	value, idPart, ok := strings.Cut(string(raw), "|")
	if !ok {
		return c, invalid("malformed continue token")
	}
	c.id, err = strconv.ParseInt(idPart, 10, 64)
	if err != nil || c.id <= 0 {
		return c, invalid("malformed continue token")
	}

	if orderBy == models.OrderByDate {
		c.date, err = time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return c, invalid("malformed continue token")
		}
		c.date = c.date.UTC()
		return c, nil
	}

	if value == "" {
		c.null = true
		return c, nil
	}
	c.score, err = strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(c.score) || math.IsInf(c.score, 0) {
		return c, invalid("malformed continue token")
	}
	return c, nil
}

// encodeIDToken and decodeIDToken page by ascending id only.
func encodeIDToken(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

func decodeIDToken(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, invalid("malformed continue token")
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("malformed continue token")
	}
	return id, nil
}

// NormalizeOrderBy maps anything other than "date" to totalScore.
func NormalizeOrderBy(orderBy string) string {
	if orderBy == models.OrderByDate {
		return models.OrderByDate
	}
	return models.OrderByTotalScore
}
