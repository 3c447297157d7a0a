package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"swiftincorp.ng/api/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStorage persists records in the hosted Postgres database. The
// schema is applied on startup from the embedded migrations.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(databaseURL string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &PostgresStorage{db: db}
	if err := storage.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(s.db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func marshalJSON(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalMedia(raw []byte) (*models.Media, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var media models.Media
	if err := json.Unmarshal(raw, &media); err != nil {
		return nil, err
	}
	return &media, nil
}

func (s *PostgresStorage) ListPosts(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT id, title, body, media, created_at, updated_at FROM posts ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		var rawMedia []byte
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &rawMedia, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		if post.Media, err = unmarshalMedia(rawMedia); err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}

func (s *PostgresStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, title, body, media, created_at, updated_at FROM posts WHERE id = $1`

	var post models.Post
	var rawMedia []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&rawMedia,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if post.Media, err = unmarshalMedia(rawMedia); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostgresStorage) SavePost(ctx context.Context, post *models.Post) error {
	media, err := marshalJSON(post.Media)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (id, title, body, media, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE SET title = $2, body = $3, media = $4, updated_at = $6`

	_, err = s.db.ExecContext(ctx, query, post.ID, post.Title, post.Body, media, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeletePost(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

func (s *PostgresStorage) ListSlides(ctx context.Context) ([]*models.Slide, error) {
	query := `SELECT id, caption, media, created_at FROM slides ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slides []*models.Slide
	for rows.Next() {
		var slide models.Slide
		var rawMedia []byte
		if err := rows.Scan(&slide.ID, &slide.Caption, &rawMedia, &slide.CreatedAt); err != nil {
			return nil, err
		}
		if slide.Media, err = unmarshalMedia(rawMedia); err != nil {
			return nil, err
		}
		slides = append(slides, &slide)
	}
	return slides, rows.Err()
}

func (s *PostgresStorage) SaveSlide(ctx context.Context, slide *models.Slide) error {
	media, err := marshalJSON(slide.Media)
	if err != nil {
		return err
	}

	query := `INSERT INTO slides (id, caption, media, created_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE SET caption = $2, media = $3`

	_, err = s.db.ExecContext(ctx, query, slide.ID, slide.Caption, media, slide.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save slide: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteSlide(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM slides WHERE id = $1`, id)
	return err
}

func (s *PostgresStorage) ListServices(ctx context.Context) ([]*models.Service, error) {
	query := `SELECT id, name, description, price, updated_at FROM services ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		var service models.Service
		if err := rows.Scan(&service.ID, &service.Name, &service.Description, &service.Price, &service.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, &service)
	}
	return services, rows.Err()
}

func (s *PostgresStorage) GetService(ctx context.Context, id string) (*models.Service, error) {
	query := `SELECT id, name, description, price, updated_at FROM services WHERE id = $1`

	var service models.Service
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *PostgresStorage) SaveService(ctx context.Context, service *models.Service) error {
	query := `INSERT INTO services (id, name, description, price, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE SET name = $2, description = $3, price = $4, updated_at = $5`

	_, err := s.db.ExecContext(ctx, query, service.ID, service.Name, service.Description, service.Price, service.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

const applicationColumns = `id, email, business_name, service_name, details, status, is_express, payment_ref, created_at, updated_at`

func scanApplication(row interface {
	Scan(dest ...interface{}) error
}) (*models.Application, error) {
	var app models.Application
	var rawDetails []byte
	err := row.Scan(
		&app.ID,
		&app.Email,
		&app.BusinessName,
		&app.ServiceName,
		&rawDetails,
		&app.Status,
		&app.IsExpress,
		&app.PaymentRef,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawDetails) > 0 {
		if err := json.Unmarshal(rawDetails, &app.Details); err != nil {
			return nil, err
		}
	}
	return &app, nil
}

func (s *PostgresStorage) ListApplications(ctx context.Context) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *PostgresStorage) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return app, err
}

func (s *PostgresStorage) FindApplicationByPaymentRef(ctx context.Context, ref string) (*models.Application, error) {
	if ref == "" {
		return nil, nil
	}
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE payment_ref = $1`

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, ref))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return app, err
}

func (s *PostgresStorage) FindApplicationsByEmail(ctx context.Context, email string) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE lower(email) = lower($1) ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *PostgresStorage) SaveApplication(ctx context.Context, app *models.Application) error {
	details, err := marshalJSON(app.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO applications (` + applicationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (id) DO UPDATE SET
	              email = $2, business_name = $3, service_name = $4, details = $5,
	              status = $6, is_express = $7, payment_ref = $8, updated_at = $10`

	_, err = s.db.ExecContext(ctx, query,
		app.ID,
		app.Email,
		app.BusinessName,
		app.ServiceName,
		details,
		app.Status,
		app.IsExpress,
		app.PaymentRef,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetAgentProfile(ctx context.Context) (*models.AgentProfile, error) {
	query := `SELECT id, name, title, bio, phone, email, photo, updated_at FROM agent_profiles ORDER BY updated_at DESC LIMIT 1`

	var profile models.AgentProfile
	var rawPhoto []byte
	err := s.db.QueryRowContext(ctx, query).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Title,
		&profile.Bio,
		&profile.Phone,
		&profile.Email,
		&rawPhoto,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.Photo, err = unmarshalMedia(rawPhoto); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *PostgresStorage) SaveAgentProfile(ctx context.Context, profile *models.AgentProfile) error {
	photo, err := marshalJSON(profile.Photo)
	if err != nil {
		return err
	}

	query := `INSERT INTO agent_profiles (id, name, title, bio, phone, email, photo, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (id) DO UPDATE SET
	              name = $2, title = $3, bio = $4, phone = $5, email = $6, photo = $7, updated_at = $8`

	_, err = s.db.ExecContext(ctx, query,
		profile.ID,
		profile.Name,
		profile.Title,
		profile.Bio,
		profile.Phone,
		profile.Email,
		photo,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save agent profile: %w", err)
	}
	return nil
}

func (s *PostgresStorage) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	query := `INSERT INTO audit_logs (id, actor, action, detail, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.Actor, entry.Action, entry.Detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, actor, action, detail, created_at FROM audit_logs ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

func (s *PostgresStorage) MarkPaymentProcessed(ctx context.Context, reference string) (bool, error) {
	query := `INSERT INTO processed_payments (reference) VALUES ($1) ON CONFLICT (reference) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query, reference)
	if err != nil {
		return false, fmt.Errorf("failed to record payment reference: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
