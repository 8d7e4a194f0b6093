package repository

import (
	"database/sql"

	"folio/pkg/models"
)

type ForumRepository interface {
	ListPosts(viewerID, limit, offset int) ([]models.Post, error)
	GetPost(postID string, viewerID int) (models.Post, error)
	Replies(postID string, viewerID int) ([]models.Reply, error)
	CreatePost(p models.Post) (models.Post, error)
	CreateReply(rep models.Reply) (models.Reply, error)
	IncrementReplyCount(postID string) error
	DecrementReplyCount(postID string) error
	Tally(subjectID string) (up, down int, err error)
	ViewerVote(userID int, subjectID string) models.Vote
	SaveVote(userID int, subjectID string, direction models.Vote) error
	ClearVote(userID int, subjectID string) error
	UpdateTally(subjectID string, up, down int) error
	SetBestAnswer(postID, replyID string) error
	DeletePost(postID string, userID int) error
	DeleteReply(replyID string, userID int) (postID string, err error)
}

type forumRepository struct {
	db *sql.DB
}

func NewForumRepository(db *sql.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) ListPosts(viewerID, limit, offset int) ([]models.Post, error) {
	rows, err := r.db.Query(`
		SELECT p.id, p.title, p.content, p.author, COALESCE(p.user_id, 0), p.upvotes, p.downvotes,
		       COALESCE(v.direction, 'none'), p.best_answer_id, p.reply_count, p.created_at, p.updated_at
		FROM forum_posts p
		LEFT JOIN forum_votes v ON v.subject_id = p.id AND v.user_id = $3
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.Author, &p.UserID, &p.Upvotes, &p.Downvotes,
			&p.ViewerVote, &p.BestAnswerID, &p.ReplyCount, &p.CreatedAt, &p.UpdatedAt,
		); err == nil {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (r *forumRepository) GetPost(postID string, viewerID int) (models.Post, error) {
	var p models.Post
	err := r.db.QueryRow(`
		SELECT p.id, p.title, p.content, p.author, COALESCE(p.user_id, 0), p.upvotes, p.downvotes,
		       COALESCE(v.direction, 'none'), p.best_answer_id, p.reply_count, p.created_at, p.updated_at
		FROM forum_posts p
		LEFT JOIN forum_votes v ON v.subject_id = p.id AND v.user_id = $2
		WHERE p.id = $1
	`, postID, viewerID).Scan(
		&p.ID, &p.Title, &p.Content, &p.Author, &p.UserID, &p.Upvotes, &p.Downvotes,
		&p.ViewerVote, &p.BestAnswerID, &p.ReplyCount, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *forumRepository) Replies(postID string, viewerID int) ([]models.Reply, error) {
	rows, err := r.db.Query(`
		SELECT rp.id, rp.post_id, rp.parent_reply_id, rp.content, rp.author, COALESCE(rp.user_id, 0),
		       rp.upvotes, rp.downvotes, COALESCE(v.direction, 'none'), rp.is_best_answer,
		       rp.created_at, rp.updated_at
		FROM forum_replies rp
		LEFT JOIN forum_votes v ON v.subject_id = rp.id AND v.user_id = $2
		WHERE rp.post_id = $1
		ORDER BY rp.created_at ASC
	`, postID, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []models.Reply
	for rows.Next() {
		var rep models.Reply
		if err := rows.Scan(
			&rep.ID, &rep.PostID, &rep.ParentReplyID, &rep.Content, &rep.Author, &rep.UserID,
			&rep.Upvotes, &rep.Downvotes, &rep.ViewerVote, &rep.IsBestAnswer,
			&rep.CreatedAt, &rep.UpdatedAt,
		); err == nil {
			replies = append(replies, rep)
		}
	}
	return replies, nil
}

func (r *forumRepository) CreatePost(p models.Post) (models.Post, error) {
	err := r.db.QueryRow(`
		INSERT INTO forum_posts (id, title, content, author, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Content, p.Author, p.UserID).Scan(&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *forumRepository) CreateReply(rep models.Reply) (models.Reply, error) {
	err := r.db.QueryRow(`
		INSERT INTO forum_replies (id, post_id, parent_reply_id, content, author, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, rep.ID, rep.PostID, rep.ParentReplyID, rep.Content, rep.Author, rep.UserID).Scan(&rep.CreatedAt)
	return rep, err
}

func (r *forumRepository) IncrementReplyCount(postID string) error {
	_, err := r.db.Exec(`UPDATE forum_posts SET reply_count = reply_count + 1 WHERE id = $1`, postID)
	return err
}

func (r *forumRepository) DecrementReplyCount(postID string) error {
	_, err := r.db.Exec(`UPDATE forum_posts SET reply_count = GREATEST(reply_count - 1, 0) WHERE id = $1`, postID)
	return err
}

// Tally reads the current counters for a post or a reply; the two id
// spaces are both uuids, so at most one branch matches.
func (r *forumRepository) Tally(subjectID string) (int, int, error) {
	var up, down int
	err := r.db.QueryRow(`
		SELECT upvotes, downvotes FROM forum_posts WHERE id = $1
		UNION ALL
		SELECT upvotes, downvotes FROM forum_replies WHERE id = $1
	`, subjectID).Scan(&up, &down)
	return up, down, err
}

func (r *forumRepository) ViewerVote(userID int, subjectID string) models.Vote {
	var direction models.Vote
	err := r.db.QueryRow(
		`SELECT direction FROM forum_votes WHERE user_id = $1 AND subject_id = $2`,
		userID, subjectID,
	).Scan(&direction)
	if err != nil {
		return models.VoteNone
	}
	return direction
}

func (r *forumRepository) SaveVote(userID int, subjectID string, direction models.Vote) error {
	_, err := r.db.Exec(`
		INSERT INTO forum_votes (user_id, subject_id, direction) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, subject_id) DO UPDATE SET direction = EXCLUDED.direction
	`, userID, subjectID, string(direction))
	return err
}

func (r *forumRepository) ClearVote(userID int, subjectID string) error {
	_, err := r.db.Exec(
		`DELETE FROM forum_votes WHERE user_id = $1 AND subject_id = $2`,
		userID, subjectID,
	)
	return err
}

func (r *forumRepository) UpdateTally(subjectID string, up, down int) error {
	res, err := r.db.Exec(
		`UPDATE forum_posts SET upvotes = $2, downvotes = $3 WHERE id = $1`,
		subjectID, up, down,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	res, err = r.db.Exec(
		`UPDATE forum_replies SET upvotes = $2, downvotes = $3 WHERE id = $1`,
		subjectID, up, down,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetBestAnswer persists the exclusivity invariant the same way the engine
// computes it: the flag is re-derived across the post's whole collection.
func (r *forumRepository) SetBestAnswer(postID, replyID string) error {
	_, err := r.db.Exec(
		`UPDATE forum_posts SET best_answer_id = $2 WHERE id = $1`,
		postID, replyID,
	)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		`UPDATE forum_replies SET is_best_answer = (id = $2) WHERE post_id = $1`,
		postID, replyID,
	)
	return err
}

func (r *forumRepository) DeletePost(postID string, userID int) error {
	var deletedID string
	return r.db.QueryRow(
		`DELETE FROM forum_posts WHERE id = $1 AND user_id = $2 RETURNING id`,
		postID, userID,
	).Scan(&deletedID)
}

func (r *forumRepository) DeleteReply(replyID string, userID int) (string, error) {
	var postID string
	err := r.db.QueryRow(
		`DELETE FROM forum_replies WHERE id = $1 AND user_id = $2 RETURNING post_id`,
		replyID, userID,
	).Scan(&postID)
	return postID, err
}
