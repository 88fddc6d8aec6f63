package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"yamdb/internal/http-api/apperror"
)

// SQLSTATE codes of the integrity violations the schema can raise.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

type violation struct {
	field   string
	message string
}

// constraintViolations maps constraint names from the migrations to the
// request field at fault.
var constraintViolations = map[string]violation{
	"users_username_key":         {"username", "a user with that username already exists"},
	"users_email_key":            {"email", "a user with that email already exists"},
	"users_role_check":           {"role", "unknown role"},
	"users_username_not_me":      {"username", `"me" cannot be used as a username`},
	"categories_slug_key":        {"slug", "a category with this slug already exists"},
	"genres_slug_key":            {"slug", "a genre with this slug already exists"},
	"titles_category_id_fkey":    {"category", "category does not exist"},
	"genre_titles_genre_id_fkey": {"genre", "genre does not exist"},
	"genre_titles_pkey":          {"genre", "duplicate genre"},
	"reviews_title_author_key":   {"non_field_errors", "you have already reviewed this title"},
	"reviews_score_check":        {"score", "must be between 1 and 10"},
	"reviews_title_id_fkey":      {"title_id", "title does not exist"},
	"reviews_author_id_fkey":     {"author", "user does not exist"},
	"comments_review_id_fkey":    {"review_id", "review does not exist"},
	"comments_author_id_fkey":    {"author", "user does not exist"},
}

// translateError converts gorm and postgres errors into apperror values.
// entity names the record in not-found errors.
func translateError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entity)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation, pgCheckViolation, pgForeignKeyViolation:
		if v, ok := constraintViolations[pgErr.ConstraintName]; ok {
			return apperror.NewValidation(v.field, v.message)
		}
		return apperror.NewValidation("non_field_errors", "integrity constraint violated")
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// Pagination is a window over an ordered result set.
type Pagination struct {
	Limit  int
	Offset int
}

func (p Pagination) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}
