package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"walink/internal/domain"
	"walink/internal/generator"
	"walink/internal/repository"
	"walink/pkg/logger"
	"walink/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newArticleFixture() (*ArticleService, *MockArticleRepository, *MockGenerator) {
	repo := new(MockArticleRepository)
	gen := new(MockGenerator)
	svc := NewArticleService(repo, gen, logger.Discard(), ArticleOptions{})
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, gen
}

func ptr[T any](v T) *T { return &v }

// ==================== CREATE ====================

func TestArticleService_Create_Defaults(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	repo.On("ExistsSlug", ctx, "whatsapp-marketing").Return(false, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Article")).Return(nil)

	article, err := svc.Create(ctx, CreateArticleInput{
		Title:   "WhatsApp Marketing",
		Content: "First paragraph of the post.\n\n## Next\n\nMore text.",
	})

	require.NoError(t, err)
	assert.Equal(t, "whatsapp-marketing", article.Slug)
	assert.Equal(t, domain.StatusDraft, article.Status)
	assert.Equal(t, domain.LangArabic, article.Language)
	assert.Equal(t, "First paragraph of the post.", article.Excerpt)
	assert.Equal(t, 1, article.ReadingTime)
	assert.Nil(t, article.PublishedAt)
	repo.AssertExpectations(t)
}

func TestArticleService_Create_Published(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	repo.On("ExistsSlug", ctx, "launch").Return(false, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	article, err := svc.Create(ctx, CreateArticleInput{
		Title:    "Ignored for slug",
		Slug:     "launch",
		Content:  "Body",
		Excerpt:  "Custom excerpt",
		Status:   domain.StatusPublished,
		Language: domain.LangEnglish,
	})

	require.NoError(t, err)
	assert.Equal(t, "launch", article.Slug)
	assert.Equal(t, "Custom excerpt", article.Excerpt)
	require.NotNil(t, article.PublishedAt)
	assert.Equal(t, fixedNow, *article.PublishedAt)
}

func TestArticleService_Create_ExplicitSlugTaken(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	repo.On("ExistsSlug", ctx, "launch").Return(true, nil)

	article, err := svc.Create(ctx, CreateArticleInput{Title: "Launch", Slug: "launch", Content: "Body"})

	assert.Nil(t, article)
	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestArticleService_Create_DerivedSlugTakenGetsSuffix(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	repo.On("ExistsSlug", ctx, "التسويق-عبر-واتساب").Return(true, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	article, err := svc.Create(ctx, CreateArticleInput{Title: "التسويق عبر واتساب", Content: "نص المقال"})

	require.NoError(t, err)
	assert.Equal(t, "التسويق-عبر-واتساب-1772366400", article.Slug)
}

func TestArticleService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateArticleInput
		wantErr error
	}{
		{name: "missing title", input: CreateArticleInput{Content: "Body"}, wantErr: validator.ErrEmptyTitle},
		{name: "missing content", input: CreateArticleInput{Title: "T"}, wantErr: validator.ErrEmptyContent},
		{name: "bad language", input: CreateArticleInput{Title: "T", Content: "B", Language: "fr"}, wantErr: validator.ErrUnsupportedLang},
		{name: "bad status", input: CreateArticleInput{Title: "T", Content: "B", Status: "archived"}, wantErr: validator.ErrUnsupportedStatus},
		{name: "bad slug", input: CreateArticleInput{Title: "T", Content: "B", Slug: "a/b"}, wantErr: validator.ErrInvalidArticleSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newArticleFixture()

			_, err := svc.Create(context.Background(), tt.input)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// ==================== READ ====================

func TestArticleService_GetBySlug_Published(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	article := domain.NewArticle("Title", "title", "## Section\n\nSome *text*.", domain.LangEnglish)
	article.Publish(fixedNow)
	repo.On("GetBySlug", ctx, "title").Return(article, nil)
	repo.On("IncrementViews", ctx, article.ID).Return(nil)

	view, err := svc.GetBySlug(ctx, "title")

	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ViewCount)
	assert.Contains(t, view.HTML, "<h2")
	assert.Contains(t, view.HTML, "<em>text</em>")
}

func TestArticleService_GetBySlug_DraftIsHidden(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	article := domain.NewArticle("Title", "title", "Body", domain.LangEnglish)
	repo.On("GetBySlug", ctx, "title").Return(article, nil)

	view, err := svc.GetBySlug(ctx, "title")

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestArticleService_GetBySlug_ViewCountFailureIgnored(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	article := domain.NewArticle("Title", "title", "Body", domain.LangEnglish)
	article.Publish(fixedNow)
	repo.On("GetBySlug", ctx, "title").Return(article, nil)
	repo.On("IncrementViews", ctx, article.ID).Return(errors.New("locked"))

	view, err := svc.GetBySlug(ctx, "title")

	require.NoError(t, err)
	assert.Zero(t, view.ViewCount)
}

func TestArticleService_ListPublished_ForcesStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	repo.On("List", ctx, repository.ArticleFilter{
		Status:   domain.StatusPublished,
		Language: domain.LangArabic,
		Limit:    50,
	}).Return([]*domain.Article{}, nil).Once()

	_, err := svc.ListPublished(ctx, ArticleFilter{Status: domain.StatusDraft, Language: domain.LangArabic})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestArticleService_ListAll_Validation(t *testing.T) {
	svc, _, _ := newArticleFixture()

	_, err := svc.ListAll(context.Background(), ArticleFilter{Status: "archived"})
	assert.ErrorIs(t, err, validator.ErrUnsupportedStatus)

	_, err = svc.ListAll(context.Background(), ArticleFilter{Language: "de"})
	assert.ErrorIs(t, err, validator.ErrUnsupportedLang)
}

// ==================== UPDATE ====================

func TestArticleService_Update(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	article := domain.NewArticle("Old", "old", "Old body", domain.LangEnglish)
	article.Excerpt = "Old body"
	repo.On("GetByID", ctx, article.ID).Return(article, nil)
	repo.On("Update", ctx, article).Return(nil)

	updated, err := svc.Update(ctx, article.ID, UpdateArticleInput{
		Title:   ptr("New"),
		Content: ptr("A new first paragraph.\n\nSecond."),
		Status:  ptr(domain.StatusPublished),
	})

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "old", updated.Slug)
	assert.Equal(t, "A new first paragraph.", updated.Excerpt)
	assert.Equal(t, domain.StatusPublished, updated.Status)
	require.NotNil(t, updated.PublishedAt)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestArticleService_Update_Unpublish(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()

	article := domain.NewArticle("Title", "title", "Body", domain.LangEnglish)
	article.Publish(fixedNow.Add(-time.Hour))
	firstPublished := *article.PublishedAt
	repo.On("GetByID", ctx, article.ID).Return(article, nil)
	repo.On("Update", ctx, article).Return(nil)

	updated, err := svc.Update(ctx, article.ID, UpdateArticleInput{Status: ptr(domain.StatusDraft)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, updated.Status)

	updated, err = svc.Update(ctx, article.ID, UpdateArticleInput{Status: ptr(domain.StatusPublished)})
	require.NoError(t, err)
	assert.Equal(t, firstPublished, *updated.PublishedAt)
}

func TestArticleService_Update_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   UpdateArticleInput
		wantErr error
	}{
		{name: "bad status", input: UpdateArticleInput{Status: ptr(domain.ArticleStatus("archived"))}, wantErr: domain.ErrValidation},
		{name: "bad language", input: UpdateArticleInput{Language: ptr(domain.Language("fr"))}, wantErr: domain.ErrValidation},
		{name: "blank title", input: UpdateArticleInput{Title: ptr("  ")}, wantErr: domain.ErrValidation},
		{name: "bad slug", input: UpdateArticleInput{Slug: ptr("has space")}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, repo, _ := newArticleFixture()
			article := domain.NewArticle("Title", "title", "Body", domain.LangEnglish)
			repo.On("GetByID", ctx, article.ID).Return(article, nil)

			_, err := svc.Update(ctx, article.ID, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestArticleService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newArticleFixture()
	repo.On("GetByID", ctx, "missing").Return(nil, domain.NotFoundf("article missing"))

	_, err := svc.Update(ctx, "missing", UpdateArticleInput{Title: ptr("x")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== GENERATE ====================

func TestArticleService_GenerateDraft(t *testing.T) {
	ctx := context.Background()
	svc, repo, gen := newArticleFixture()

	draft := &domain.DraftArticle{
		Title:    "Grow with WhatsApp",
		Slug:     "grow-with-whatsapp",
		Content:  "# Grow with WhatsApp\n\nIntro.",
		Excerpt:  "Intro.",
		Language: domain.LangEnglish,
		Status:   domain.StatusDraft,
		Source:   "openai",
	}
	seo := domain.SEOData{MetaTitle: "Grow", FocusKeyword: "whatsapp"}

	gen.On("Generate", ctx, "growth", domain.LangEnglish).Return(draft, nil)
	gen.On("GenerateSEOData", ctx, "Grow with WhatsApp", "Intro.", domain.LangEnglish).Return(seo)
	repo.On("ExistsSlug", ctx, "grow-with-whatsapp").Return(true, nil)

	got, err := svc.GenerateDraft(ctx, "growth", domain.LangEnglish, true)

	require.NoError(t, err)
	assert.Equal(t, seo, got.SEO)
	assert.Equal(t, "grow-with-whatsapp-1772366400", got.Slug)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	gen.AssertExpectations(t)
}

func TestArticleService_GenerateDraft_WithoutSEO(t *testing.T) {
	ctx := context.Background()
	svc, repo, gen := newArticleFixture()

	draft := &domain.DraftArticle{Title: "T", Slug: "t", Content: "# T", Language: domain.LangArabic}
	gen.On("Generate", ctx, "topic", domain.LangArabic).Return(draft, nil)
	repo.On("ExistsSlug", ctx, "t").Return(false, errors.New("db down"))

	got, err := svc.GenerateDraft(ctx, "topic", domain.LangArabic, false)

	require.NoError(t, err)
	assert.True(t, got.SEO.IsEmpty())
	assert.Equal(t, "t", got.Slug)
	gen.AssertNotCalled(t, "GenerateSEOData", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArticleService_GenerateDraft_TemplateSkipsSEO(t *testing.T) {
	ctx := context.Background()
	svc, repo, gen := newArticleFixture()

	draft := &domain.DraftArticle{Title: "Topic", Slug: "topic", Content: "## Intro", Source: generator.TemplateSource}
	gen.On("Generate", ctx, "Topic", domain.LangEnglish).Return(draft, nil)
	repo.On("ExistsSlug", ctx, "topic").Return(false, nil)

	got, err := svc.GenerateDraft(ctx, "Topic", domain.LangEnglish, true)

	require.NoError(t, err)
	assert.True(t, got.SEO.IsEmpty())
	gen.AssertNotCalled(t, "GenerateSEOData", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// hangingProvider blocks until its context is done
type hangingProvider struct {
	name  string
	calls *atomic.Int32
}

func (p hangingProvider) Name() string { return p.name }

func (p hangingProvider) Generate(ctx context.Context, _, _ string) (string, error) {
	p.calls.Add(1)
	<-ctx.Done()
	return "", ctx.Err()
}

func TestArticleService_GenerateDraft_HangingProvidersStayBounded(t *testing.T) {
	tests := []struct {
		name            string
		perProvider     time.Duration
		generateTimeout time.Duration
		wantCalls       int32
		maxElapsed      time.Duration
	}{
		// three attempts for the article and none for SEO, so well under two chains
		{"per provider timeout only", 50 * time.Millisecond, 0, 3, 290 * time.Millisecond},
		// the overall deadline cuts the first attempt short
		{"overall deadline", time.Second, 80 * time.Millisecond, 1, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := new(atomic.Int32)
			providers := []generator.Provider{
				hangingProvider{"openai", calls},
				hangingProvider{"anthropic", calls},
				hangingProvider{"groq", calls},
			}
			chain := generator.NewChain(providers, tt.perProvider, logger.Discard())

			repo := new(MockArticleRepository)
			repo.On("ExistsSlug", mock.Anything, "whatsapp-tips").Return(false, nil)
			svc := NewArticleService(repo, chain, logger.Discard(), ArticleOptions{GenerateTimeout: tt.generateTimeout})

			start := time.Now()
			draft, err := svc.GenerateDraft(context.Background(), "WhatsApp tips", domain.LangEnglish, true)
			elapsed := time.Since(start)

			require.NoError(t, err)
			assert.Equal(t, generator.TemplateSource, draft.Source)
			assert.Equal(t, "WhatsApp tips", draft.Title)
			assert.True(t, draft.SEO.IsEmpty())
			assert.Equal(t, tt.wantCalls, calls.Load())
			assert.Less(t, elapsed, tt.maxElapsed)
		})
	}
}

func TestArticleService_GenerateDraft_ValidationError(t *testing.T) {
	ctx := context.Background()
	svc, _, gen := newArticleFixture()

	gen.On("Generate", ctx, "", domain.LangArabic).Return(nil, domain.NewValidationError(validator.ErrEmptyTopic))

	_, err := svc.GenerateDraft(ctx, "", domain.LangArabic, true)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
