package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/models"
	"go-jss-crawler/internal/scraper"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var Schema string

type Repository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers reject cached prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool, now: time.Now}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the tables when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// ServerInfo reports the server version and the current database size.
func (r *Repository) ServerInfo(ctx context.Context) (version, size string, err error) {
	if err := r.db.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", "", fmt.Errorf("query failed: %w", err)
	}
	if err := r.db.QueryRow(ctx, "SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&size); err != nil {
		return version, "", fmt.Errorf("size query failed: %w", err)
	}
	return version, size, nil
}

// ---------------- LISTING OPERATIONS ----------------

// SaveListing stores one crawled listing in a single transaction. A listing
// with a known external id replaces the stored posting and its jobs.
func (r *Repository) SaveListing(ctx context.Context, l scraper.Listing) (*models.Posting, error) {
	posting, jobs := ToRows(l, r.now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //no-op after commit

	err = tx.QueryRow(ctx, `
		INSERT INTO companies (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, l.CompanyName).Scan(&posting.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company: %w", err)
	}

	//NULL custom_id never conflicts, so listings without an id always insert
	query := `
		INSERT INTO postings (company_id, title, start_date, end_date, recruitment_link, jss_link, custom_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (custom_id)
		DO UPDATE SET company_id = EXCLUDED.company_id, title = EXCLUDED.title,
			start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
			recruitment_link = EXCLUDED.recruitment_link, jss_link = EXCLUDED.jss_link,
			updated_at = now()
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, query, posting.CompanyID, posting.Title, posting.StartDate, posting.EndDate,
		posting.RecruitmentLink, posting.JSSLink, posting.CustomID).
		Scan(&posting.ID, &posting.CreatedAt, &posting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save posting: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM posting_jobs WHERE posting_id = $1", posting.ID); err != nil {
		return nil, fmt.Errorf("failed to clear jobs: %w", err)
	}

	for i := range jobs {
		job := &jobs[i]
		job.PostingID = posting.ID
		err := tx.QueryRow(ctx,
			"INSERT INTO posting_jobs (posting_id, title, recruitment_type) VALUES ($1, $2, $3) RETURNING id",
			job.PostingID, job.Title, job.RecruitmentType).Scan(&job.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert job: %w", err)
		}

		for j := range job.Prompts {
			prompt := &job.Prompts[j]
			prompt.JobID = job.ID
			err := tx.QueryRow(ctx,
				"INSERT INTO essay_prompts (job_id, question_text, char_limit) VALUES ($1, $2, $3) RETURNING id",
				prompt.JobID, prompt.QuestionText, prompt.CharLimit).Scan(&prompt.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to insert essay prompt: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit listing: %w", err)
	}
	return &posting, nil
}

// ToRows maps a listing onto its posting and job rows. An unparseable start
// date falls back to today; end dates and limits that do not parse are NULL.
func ToRows(l scraper.Listing, today time.Time) (models.Posting, []models.PostingJob) {
	posting := models.Posting{
		Title:           l.PostingTitle,
		StartDate:       startDate(l.StartDate, today),
		EndDate:         endDate(l.EndDate),
		RecruitmentLink: l.ApplyLink,
		JSSLink:         l.Link,
		CustomID:        l.ExternalID,
	}

	jobs := make([]models.PostingJob, 0, len(l.Jobs))
	for _, j := range l.Jobs {
		job := models.PostingJob{
			Title:           j.Title,
			RecruitmentType: j.PostingType,
			Prompts:         make([]models.EssayPrompt, 0, len(j.EssayQuestions)),
		}
		for _, q := range j.EssayQuestions {
			job.Prompts = append(job.Prompts, models.EssayPrompt{
				QuestionText: q.Question,
				CharLimit:    charLimit(q.Limit),
			})
		}
		jobs = append(jobs, job)
	}
	return posting, jobs
}

func startDate(day string, today time.Time) time.Time {
	t, err := filter.ParseDay(day)
	if err != nil {
		y, m, d := today.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return t
}

func endDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := filter.ParseEndDate(*raw)
	if err != nil {
		return nil
	}
	return &t
}

func charLimit(raw *string) *int {
	if raw == nil {
		return nil
	}
	n, err := filter.ParseLimit(*raw)
	if err != nil {
		return nil
	}
	return &n
}
