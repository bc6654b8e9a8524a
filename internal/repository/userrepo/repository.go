package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// UserRepository acessa a relação de usuários.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria e retorna uma nova instância do Repositório.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save persiste um novo usuário.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO users (id, email, nome, password_hash, role, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		user.ID, user.Email, user.Nome, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, errors.NewDBError("Falha ao inserir usuário", err)
	}

	return user, nil
}

// FindByEmail busca um usuário pelo e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT id, email, nome, password_hash, role, created_at, updated_at
        FROM users WHERE email = $1`

	var user domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(
		&user.ID, &user.Email, &user.Nome, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, errors.NewNotFoundError(fmt.Sprintf("Usuário com email %s não encontrado.", email))
	}
	if err != nil {
		return domain.User{}, errors.NewDBError("Falha ao buscar usuário", err)
	}

	return user, nil
}
