package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/semantle/internal/db"
	"github.com/kailas-cloud/semantle/internal/domain"
)

// InsertSecret stores an assignment and its clues in one transaction.
// Without replace, an existing date or word yields db.ErrKeyExists.
// With replace, whatever held the date is dropped and the word is moved to it.
// Re-committing a word on its own date keeps its solver count.
func (s *Store) InsertSecret(ctx context.Context, a domain.Assignment, clues []string, replace bool) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpSQLTx, Err: err}
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	day := domain.FormatDate(a.Date)
	var id int64

	if replace {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM hot_clues WHERE secret_word_id IN
			   (SELECT id FROM secret_words WHERE game_date = ? OR word = ?)`, day, a.Word); err != nil {
			return &db.Error{Op: db.OpSQLTx, Err: fmt.Errorf("drop clues: %w", err)}
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM secret_words WHERE game_date = ? AND word <> ?`, day, a.Word); err != nil {
			return &db.Error{Op: db.OpSQLTx, Err: fmt.Errorf("drop date: %w", err)}
		}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO secret_words (word, game_date, solver_count) VALUES (?, ?, 0)
			 ON CONFLICT(word) DO UPDATE SET
			   solver_count = CASE WHEN secret_words.game_date = excluded.game_date
			                       THEN secret_words.solver_count ELSE 0 END,
			   game_date = excluded.game_date
			 RETURNING id`, a.Word, day).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO secret_words (word, game_date, solver_count) VALUES (?, ?, 0) RETURNING id`,
			a.Word, day).Scan(&id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return db.ErrKeyExists
		}
		return &db.Error{Op: db.OpSQLTx, Err: fmt.Errorf("insert secret: %w", err)}
	}

	for _, clue := range clues {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO hot_clues (secret_word_id, clue) VALUES (?, ?)`, id, clue); err != nil {
			return &db.Error{Op: db.OpSQLTx, Err: fmt.Errorf("insert clue: %w", err)}
		}
	}

	if err = tx.Commit(); err != nil {
		return &db.Error{Op: db.OpSQLTx, Err: err}
	}
	return nil
}

// SecretByDate returns the assignment for a date or db.ErrKeyNotFound.
func (s *Store) SecretByDate(ctx context.Context, date time.Time) (domain.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT word, game_date, solver_count FROM secret_words WHERE game_date = ?`,
		domain.FormatDate(date))
	return scanAssignment(row)
}

// SecretByWord returns the assignment that used word or db.ErrKeyNotFound.
func (s *Store) SecretByWord(ctx context.Context, word string) (domain.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT word, game_date, solver_count FROM secret_words WHERE word = ?`, word)
	return scanAssignment(row)
}

// LatestDate returns the most recent assigned date; ok is false when nothing is assigned.
func (s *Store) LatestDate(ctx context.Context) (latest time.Time, ok bool, err error) {
	var day sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(game_date) FROM secret_words`).Scan(&day); err != nil {
		return time.Time{}, false, &db.Error{Op: db.OpSQL, Err: err}
	}
	if !day.Valid {
		return time.Time{}, false, nil
	}
	t, err := parseDay(day.String)
	if err != nil {
		return time.Time{}, false, &db.Error{Op: db.OpSQL, Err: err}
	}
	return t, true, nil
}

// ListSecrets returns assignments ordered by date. A non-zero before keeps
// only dates strictly earlier than it.
func (s *Store) ListSecrets(ctx context.Context, before time.Time, desc bool) ([]domain.Assignment, error) {
	query := `SELECT word, game_date, solver_count FROM secret_words`
	var args []any
	if !before.IsZero() {
		query += ` WHERE game_date < ?`
		args = append(args, domain.FormatDate(before))
	}
	if desc {
		query += ` ORDER BY game_date DESC`
	} else {
		query += ` ORDER BY game_date ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSQL, Err: err}
	}
	defer rows.Close()

	var out []domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSQL, Err: err}
	}
	return out, nil
}

// IncrementSolverCount bumps the solver count of a date and returns the new value.
func (s *Store) IncrementSolverCount(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`UPDATE secret_words SET solver_count = solver_count + 1 WHERE game_date = ? RETURNING solver_count`,
		domain.FormatDate(date)).Scan(&count)
	if err != nil {
		return 0, notFound(err)
	}
	return count, nil
}

// Clues returns the clues stored with the secret of a date, in insertion order.
func (s *Store) Clues(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.clue FROM hot_clues c
		 JOIN secret_words w ON w.id = c.secret_word_id
		 WHERE w.game_date = ? ORDER BY c.id`, domain.FormatDate(date))
	if err != nil {
		return nil, &db.Error{Op: db.OpSQL, Err: err}
	}
	defer rows.Close()

	var clues []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, &db.Error{Op: db.OpSQL, Err: err}
		}
		clues = append(clues, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSQL, Err: err}
	}
	return clues, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row scanner) (domain.Assignment, error) {
	var (
		a   domain.Assignment
		day string
	)
	if err := row.Scan(&a.Word, &day, &a.SolverCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Assignment{}, db.ErrKeyNotFound
		}
		return domain.Assignment{}, &db.Error{Op: db.OpSQL, Err: err}
	}
	t, err := parseDay(day)
	if err != nil {
		return domain.Assignment{}, &db.Error{Op: db.OpSQL, Err: err}
	}
	a.Date = t
	return a, nil
}
