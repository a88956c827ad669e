package jasoseol

import (
	"context"
	"errors"
	"testing"

	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom/domtest"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailURL = "https://jasoseol.com/employment/101"

func enrich(t *testing.T, site *domtest.Site) (scraper.Listing, *domtest.Session, error) {
	t.Helper()
	sess := &domtest.Session{Site: site}
	l := scraper.NewListing("Acme Corp", "", detailURL, "20250101", "101")
	err := NewEnricher(config.Timeouts{}, 0, logger.NewNop()).Enrich(context.Background(), sess, &l)
	return l, sess, err
}

func TestEnrich_AllFields(t *testing.T) {
	site := domtest.NewSite()
	detailPage(site, detailURL, "2025년 1월 10일 23:59", jobSpec{
		title: "백엔드 개발",
		kind:  "신입",
		essays: [][2]string{
			{"지원 동기를 작성해 주세요.", "(700자)"},
			{"입사 후 포부를 작성해 주세요.", "(1,000자)"},
		},
	})

	l, sess, err := enrich(t, site)
	require.NoError(t, err)

	assert.Equal(t, "2025년 1월 10일 23:59", scraper.Deref(l.EndDate))
	assert.Equal(t, "https://careers.example.com/apply", scraper.Deref(l.ApplyLink))
	require.Len(t, l.Jobs, 1)

	job := l.Jobs[0]
	assert.Equal(t, "백엔드 개발", scraper.Deref(job.Title))
	assert.Equal(t, "신입", scraper.Deref(job.PostingType))
	require.Len(t, job.EssayQuestions, 2)
	assert.Equal(t, "지원 동기를 작성해 주세요.", job.EssayQuestions[0].Question)
	assert.Equal(t, "(1,000자)", scraper.Deref(job.EssayQuestions[1].Limit))

	assert.Zero(t, sess.OpenPages(), "detail page closed")
}

func TestEnrich_DegradedFields(t *testing.T) {
	site := domtest.NewSite()
	site.Handle(detailURL, func() *domtest.Element {
		root := domtest.New("")
		//end date block with a placeholder instead of a date
		root.Add(selEndDateBlock, domtest.New("").Add("span",
			domtest.New("접수기간"), domtest.New("~"), domtest.New("채용시 마감"),
		))
		list := domtest.New("")
		list.Add(selJobItem,
			jobItem(jobSpec{title: "디자인"}),
			jobItem(jobSpec{title: "기획", essays: [][2]string{{"자기소개", ""}, {"성장 과정", "(500자)"}}}),
		)
		root.Add(`div.rounded-\[6px\].border-gray-200 > ul`, list)
		return root
	})

	l, sess, err := enrich(t, site)
	require.NoError(t, err)

	assert.Nil(t, l.EndDate, "malformed end date stays empty")
	assert.Nil(t, l.ApplyLink)
	require.Len(t, l.Jobs, 2)
	assert.Nil(t, l.Jobs[0].PostingType)
	assert.Empty(t, l.Jobs[0].EssayQuestions)
	assert.NotNil(t, l.Jobs[0].EssayQuestions)
	require.Len(t, l.Jobs[1].EssayQuestions, 1, "incomplete pair skipped")
	assert.Equal(t, "성장 과정", l.Jobs[1].EssayQuestions[0].Question)
	assert.Zero(t, sess.OpenPages())
}

func TestEnrich_EssayScrollFailureIsTolerated(t *testing.T) {
	site := domtest.NewSite()
	site.Handle(detailURL, func() *domtest.Element {
		li := jobItem(jobSpec{title: "기획", essays: [][2]string{{"지원 동기", "(700자)"}}})
		btn, err := li.Query(selEssayButton)
		require.NoError(t, err)
		btn.(*domtest.Element).ScrollErr = errors.New("element is not attached")

		root := domtest.New("")
		root.Add("ul.shadow2", domtest.New("").Add(selJobItem, li))
		return root
	})

	l, _, err := enrich(t, site)
	require.NoError(t, err)
	require.Len(t, l.Jobs, 1)
	require.Len(t, l.Jobs[0].EssayQuestions, 1, "click still attempted after a failed scroll")
	assert.Equal(t, "지원 동기", l.Jobs[0].EssayQuestions[0].Question)
}

func TestEnrich_EmptyPageKeepsListing(t *testing.T) {
	site := domtest.NewSite()
	site.Handle(detailURL, func() *domtest.Element { return domtest.New("") })

	l, _, err := enrich(t, site)
	require.NoError(t, err)
	assert.Nil(t, l.EndDate)
	assert.Empty(t, l.Jobs)
	assert.NotNil(t, l.Jobs)
}

func TestEnrich_NavigationFailure(t *testing.T) {
	site := domtest.NewSite()
	site.GotoErrs[detailURL] = errors.New("net::ERR_CONNECTION_RESET")

	_, sess, err := enrich(t, site)
	assert.ErrorIs(t, err, ErrDetailNavigation)
	assert.Zero(t, sess.OpenPages(), "page closed on failure too")
}

func TestEnrich_NewPageFailure(t *testing.T) {
	sess := &domtest.Session{Site: domtest.NewSite(), PageErr: errors.New("context closed")}
	l := scraper.NewListing("Acme", "", detailURL, "20250101", "")

	err := NewEnricher(config.Timeouts{}, 0, logger.NewNop()).Enrich(context.Background(), sess, &l)
	assert.ErrorIs(t, err, ErrDetailNavigation)
}

func TestEnrich_RespectsCancelledContext(t *testing.T) {
	site := domtest.NewSite()
	detailPage(site, detailURL, "2025년 1월 10일")
	sess := &domtest.Session{Site: site}
	l := scraper.NewListing("Acme", "", detailURL, "20250101", "")

	e := NewEnricher(config.Timeouts{}, 1, logger.NewNop())
	require.NoError(t, e.Enrich(context.Background(), sess, &l), "first visit uses the burst")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, e.Enrich(ctx, sess, &l))
	assert.Len(t, sess.Pages, 1, "no page opened while waiting for the limiter")
}
