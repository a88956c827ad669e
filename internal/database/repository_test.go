package database

import (
	"context"
	"os"
	"testing"
	"time"

	"go-jss-crawler/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRows(t *testing.T) {
	today := time.Date(2025, 3, 2, 15, 4, 5, 0, time.Local)

	l := scraper.NewListing("Acme", "", "https://jasoseol.com/recruit/1", "20250301", "101")
	l.EndDate = scraper.Ptr("2025년 3월 16일 14:59")
	l.ApplyLink = scraper.Ptr("https://careers.example.com")
	l.Jobs = []scraper.Job{{
		Title:       scraper.Ptr("백엔드"),
		PostingType: scraper.Ptr("신입"),
		EssayQuestions: []scraper.EssayQuestion{
			{Question: "지원 동기", Limit: scraper.Ptr("(1,000자)")},
			{Question: "자기소개", Limit: scraper.Ptr("자유")},
			{Question: "포부"},
		},
	}}

	posting, jobs := ToRows(l, today)

	assert.Equal(t, "Acme 채용 공고", posting.Title)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), posting.StartDate)
	require.NotNil(t, posting.EndDate)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), *posting.EndDate)
	assert.Equal(t, "https://jasoseol.com/recruit/1", posting.JSSLink)
	assert.Equal(t, "101", scraper.Deref(posting.CustomID))
	assert.Equal(t, "https://careers.example.com", scraper.Deref(posting.RecruitmentLink))

	require.Len(t, jobs, 1)
	assert.Equal(t, "신입", scraper.Deref(jobs[0].RecruitmentType))
	require.Len(t, jobs[0].Prompts, 3)
	require.NotNil(t, jobs[0].Prompts[0].CharLimit)
	assert.Equal(t, 1000, *jobs[0].Prompts[0].CharLimit)
	assert.Nil(t, jobs[0].Prompts[1].CharLimit, "unparseable limit")
	assert.Nil(t, jobs[0].Prompts[2].CharLimit, "missing limit")
}

func TestToRows_Fallbacks(t *testing.T) {
	today := time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC)

	l := scraper.NewListing("Acme", "공채", "https://jasoseol.com/recruit/2", "not-a-day", "")
	l.EndDate = scraper.Ptr("채용시 마감")

	posting, jobs := ToRows(l, today)

	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), posting.StartDate)
	assert.Nil(t, posting.EndDate)
	assert.Nil(t, posting.CustomID)
	assert.Empty(t, jobs)
}

// TestSaveListing runs against a real database when DATABASE_URL is set.
func TestSaveListing(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	repo, err := ConnectDB(ctx, url)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.EnsureSchema(ctx))

	l := scraper.NewListing("Go Test Co", "", "https://jasoseol.com/recruit/test", "20250101", "go-test-"+time.Now().Format("150405.000"))
	l.Jobs = []scraper.Job{{Title: scraper.Ptr("QA"), EssayQuestions: []scraper.EssayQuestion{{Question: "Q1", Limit: scraper.Ptr("(500자)")}}}}

	first, err := repo.SaveListing(ctx, l)
	require.NoError(t, err)

	l.Jobs = nil
	second, err := repo.SaveListing(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same external id updates in place")

	var jobs int
	require.NoError(t, repo.db.QueryRow(ctx, "SELECT count(*) FROM posting_jobs WHERE posting_id = $1", second.ID).Scan(&jobs))
	assert.Zero(t, jobs, "jobs replaced")

	_, err = repo.db.Exec(ctx, "DELETE FROM postings WHERE id = $1", second.ID)
	require.NoError(t, err)
}
