package repository

import (
	"database/sql"
	"strings"
	"time"

	"folio/pkg/models"
)

type AuthRepository interface {
	CreateUser(username, hashedPassword string) (models.User, error)
	GetUserByUsername(username string) (models.User, string, error)
	GetUserByID(id int) (models.User, error)
	CreateSession(userID int, refreshToken, userAgent, ip string, expiresAt time.Time) error
	GetSessionByToken(token string) (models.Session, models.User, error)
	UpdateSession(sessionID int, newRefresh string, expiresAt time.Time) error
	DeleteSessionByID(sessionID int) error
	DeleteSessionByToken(token string) error
	DeleteAllSessionsByUserID(userID int) error
	GetActiveSessionsByUserID(userID int) ([]models.Session, error)
}

type authRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(username, hashedPassword string) (models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		`INSERT INTO users (username, password) VALUES ($1, $2)
		 RETURNING id, uuid, username, display_name, created_at`,
		strings.ToLower(username), hashedPassword,
	).Scan(&user.ID, &user.UUID, &user.Username, &user.DisplayName, &user.CreatedAt)
	return user, err
}

func (r *authRepository) GetUserByUsername(username string) (models.User, string, error) {
	var user models.User
	var hashedPw string
	err := r.db.QueryRow(
		`SELECT id, uuid, username, display_name, password, created_at
		 FROM users WHERE username = $1`,
		strings.ToLower(username),
	).Scan(&user.ID, &user.UUID, &user.Username, &user.DisplayName, &hashedPw, &user.CreatedAt)
	return user, hashedPw, err
}

func (r *authRepository) GetUserByID(id int) (models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		`SELECT id, uuid, username, display_name, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.UUID, &user.Username, &user.DisplayName, &user.CreatedAt)
	return user, err
}

func (r *authRepository) CreateSession(userID int, refreshToken, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (user_id, refresh_token, user_agent, ip, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, refreshToken, userAgent, ip, expiresAt,
	)
	return err
}

func (r *authRepository) GetSessionByToken(token string) (models.Session, models.User, error) {
	var session models.Session
	var user models.User
	err := r.db.QueryRow(
		`SELECT s.id, s.user_id, s.refresh_token, s.user_agent, s.ip, s.expires_at, s.created_at,
		        u.id, u.uuid, u.username, u.display_name, u.created_at
		 FROM sessions s
		 JOIN users u ON s.user_id = u.id
		 WHERE s.refresh_token = $1`,
		token,
	).Scan(
		&session.ID, &session.UserID, &session.RefreshToken, &session.UserAgent,
		&session.IP, &session.ExpiresAt, &session.CreatedAt,
		&user.ID, &user.UUID, &user.Username, &user.DisplayName, &user.CreatedAt,
	)
	return session, user, err
}

func (r *authRepository) UpdateSession(sessionID int, newRefresh string, expiresAt time.Time) error {
	_, err := r.db.Exec(
		`UPDATE sessions SET refresh_token = $2, expires_at = $3 WHERE id = $1`,
		sessionID, newRefresh, expiresAt,
	)
	return err
}

func (r *authRepository) DeleteSessionByID(sessionID int) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, sessionID)
	return err
}

func (r *authRepository) DeleteSessionByToken(token string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE refresh_token = $1`, token)
	return err
}

func (r *authRepository) DeleteAllSessionsByUserID(userID int) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *authRepository) GetActiveSessionsByUserID(userID int) ([]models.Session, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, user_agent, ip, expires_at, created_at
		 FROM sessions WHERE user_id = $1 AND expires_at > NOW()
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt); err == nil {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}
