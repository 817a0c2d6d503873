package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (item_id, author_id, text, created) VALUES (?, ?, ?, ?)`

	result, err := db.ExecContext(ctx, query,
		comment.ItemID,
		comment.AuthorID,
		comment.Text,
		fmtTime(comment.Created),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id

	return nil
}

func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	query := `SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created
              FROM comments c
              JOIN users u ON u.id = c.author_id
              WHERE c.item_id = ?
              ORDER BY c.created`

	return db.queryComments(ctx, query, itemID)
}

func (db *DB) GetCommentsByItems(ctx context.Context, itemIDs []int64) (map[int64][]models.Comment, error) {
	if len(itemIDs) == 0 {
		return map[int64][]models.Comment{}, nil
	}

	placeholders := strings.Repeat("?,", len(itemIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created
              FROM comments c
              JOIN users u ON u.id = c.author_id
              WHERE c.item_id IN (%s)
              ORDER BY c.created`, placeholders)

	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	comments, err := db.queryComments(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]models.Comment, len(itemIDs))
	for _, comment := range comments {
		grouped[comment.ItemID] = append(grouped[comment.ItemID], comment)
	}

	return grouped, nil
}

func (db *DB) queryComments(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var (
			comment models.Comment
			created string
		)
		err := rows.Scan(&comment.ID, &comment.ItemID, &comment.AuthorID, &comment.AuthorName, &comment.Text, &created)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if comment.Created, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("failed to parse comment date: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}
