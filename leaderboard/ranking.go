// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/scoreboard/models"
)

// SessionRank returns a session's position in its suite together with
// the suite's score range and session count, all from one snapshot.
//
// Sessions are ordered by total score descending, then id ascending, so
// no two sessions share a rank. Sessions without a total come after all
// scored ones; they count toward the total but not toward min or max.
func (s *Store) SessionRank(ctx context.Context, suiteID, sessionID int64) (models.SessionRank, error) {
	var out models.SessionRank
	err := s.readTx(ctx, "session_rank", func(tx *sql.Tx) error {
		if _, err := loadSuite(ctx, tx, suiteID); err != nil {
			return err
		}
		se, err := sessionInSuite(ctx, tx, suiteID, sessionID)
		if err != nil {
			return err
		}
		out.Session = se

		var ahead int64
		if se.TotalScore != nil {
			err = tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM session
				WHERE suite_id = $1
				  AND (total_score > $2 OR (total_score = $2 AND id < $3))
			`, suiteID, *se.TotalScore, se.ID).Scan(&ahead)
		} else {
			err = tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM session
				WHERE suite_id = $1
				  AND (total_score IS NOT NULL OR id < $2)
			`, suiteID, se.ID).Scan(&ahead)
		}
		if err != nil {
			return fmt.Errorf("failed to count sessions ahead: %w", err)
		}
		out.Rank = ahead + 1

		var minScore, maxScore sql.NullFloat64
		err = tx.QueryRowContext(ctx, `
			SELECT MIN(total_score), MAX(total_score), COUNT(*)
			FROM session
			WHERE suite_id = $1
		`, suiteID).Scan(&minScore, &maxScore, &out.TotalSessions)
		if err != nil {
			return fmt.Errorf("failed to load suite statistics: %w", err)
		}
		out.MinScore = floatPtr(minScore)
		out.MaxScore = floatPtr(maxScore)
		return nil
	})
	if err != nil {
		return models.SessionRank{}, err
	}
	return out, nil
}
