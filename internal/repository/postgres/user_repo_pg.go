package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/feastflow/feastflow-api/internal/domain"
)

const pgUniqueViolation = "23505"

const userColumns = `
        id, name, email, password_hash, password_salt, role,
        bio, phone, location, avatar, experience, response_time,
        min_guests, max_guests, specialties, service_areas, languages,
        certifications, equipment, availability,
        reset_token, reset_expires, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, name, email string, passwordHash, passwordSalt []byte, role string) (*domain.User, error) {
	const query = `
        INSERT INTO users (name, email, password_hash, password_salt, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING` + userColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, name, email, passwordHash, passwordSalt, role)
	var user userRow
	if err := row.StructScan(&user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return user.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE email = $1`
	var user userRow
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return user.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE id = $1`
	var user userRow
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return user.toDomain(), nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE reset_token = $1`
	var user userRow
	if err := r.db.GetContext(ctx, &user, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return user.toDomain(), nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	const query = `
        UPDATE users
        SET reset_token = $2,
            reset_expires = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, token, expiresAt)
	return err
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id int64) error {
	const query = `
        UPDATE users
        SET reset_token = NULL,
            reset_expires = NULL,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            password_salt = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error) {
	const query = `
        UPDATE users
        SET name = COALESCE($2, name),
            bio = COALESCE($3, bio),
            phone = COALESCE($4, phone),
            location = COALESCE($5, location),
            avatar = COALESCE($6, avatar),
            experience = COALESCE($7, experience),
            response_time = COALESCE($8, response_time),
            min_guests = COALESCE($9, min_guests),
            max_guests = COALESCE($10, max_guests),
            specialties = COALESCE($11, specialties),
            service_areas = COALESCE($12, service_areas),
            languages = COALESCE($13, languages),
            certifications = COALESCE($14, certifications),
            equipment = COALESCE($15, equipment),
            availability = COALESCE($16, availability),
            updated_at = NOW()
        WHERE id = $1
        RETURNING` + userColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, id,
		update.Name, update.Bio, update.Phone, update.Location, update.Avatar,
		update.Experience, update.ResponseTime, update.MinGuests, update.MaxGuests,
		encodeList(update.Specialties), encodeList(update.ServiceAreas),
		encodeList(update.Languages), encodeList(update.Certifications),
		encodeList(update.Equipment), encodeRaw(update.Availability))
	var user userRow
	if err := row.StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return user.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	const query = `SELECT` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toDomain())
	}
	return users, nil
}
