package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
	"github.com/dimitrije/strata-api/tests/testutil"
)

func TestTemplateService_Integration_ExportApply(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	serializer := content.NewSerializer(tdb.Pool, "http://assets.local")
	entrySvc := services.NewEntryService(tdb.DB, serializer)
	colSvc := services.NewCollectionService(tdb.DB)
	tmplSvc := services.NewTemplateService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	source := fixtures.CreateProject(t, user)
	authors := fixtures.CreateCollection(t, source, "authors")
	fixtures.CreateField(t, authors, "name", models.FieldText)
	articles := fixtures.CreateCollection(t, source, "articles")
	fixtures.CreateField(t, articles, "title", models.FieldText)
	fixtures.CreateField(t, articles, "author", models.FieldRelation,
		testutil.WithOptions(fmt.Sprintf(`{"relation": {"collection": %d, "type": 1}}`, authors.ID)))

	author, err := entrySvc.Create(ctx, authors, "en", map[string]any{"name": "Ada"}, &user.ID)
	require.NoError(t, err)
	_, err = entrySvc.Publish(ctx, author.ID)
	require.NoError(t, err)

	article, err := entrySvc.Create(ctx, articles, "en", map[string]any{
		"title":  "On Engines",
		"author": author.UUID.String(),
	}, &user.ID)
	require.NoError(t, err)
	_, err = entrySvc.Publish(ctx, article.ID)
	require.NoError(t, err)

	tmpl, err := tmplSvc.ExportProject(ctx, source, "Blog Starter", "blog-starter", "A starter blog", true)
	require.NoError(t, err)
	assert.True(t, tmpl.HasDemoData)

	var doc dto.TemplateDocument
	require.NoError(t, json.Unmarshal(tmpl.Data, &doc))
	require.Len(t, doc.Collections, 2)
	require.Len(t, doc.DemoData, 2)

	// Apply into a fresh project; ids must rewire against the new rows.
	target := fixtures.CreateProject(t, user)
	require.NoError(t, tmplSvc.Apply(ctx, target, &doc))

	newArticles, err := colSvc.GetBySlug(ctx, target.ID, "articles")
	require.NoError(t, err)
	entries, err := entrySvc.ListByCollection(ctx, newArticles.ID, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	serialized, err := entrySvc.Serialize(ctx, &entries[0])
	require.NoError(t, err)
	assert.Equal(t, "On Engines", serialized["title"])

	related, ok := serialized["author"].(map[string]any)
	require.True(t, ok, "relation should resolve inside the new project")
	assert.NotEqual(t, author.UUID, related["id"])
	assert.Equal(t, map[string]any{"name": "Ada"}, related["fields"])
}

func TestTemplateService_Integration_SlugConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	tmplSvc := services.NewTemplateService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	project := fixtures.CreateProject(t, user)
	fixtures.CreateCollection(t, project, "pages")

	_, err := tmplSvc.ExportProject(ctx, project, "Site", "site", "", false)
	require.NoError(t, err)

	_, err = tmplSvc.ExportProject(ctx, project, "Site Again", "site", "", false)
	assert.ErrorIs(t, err, services.ErrTemplateSlugTaken)
}

func TestTemplateService_Integration_ApplyCollectionSlugConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	tmplSvc := services.NewTemplateService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	project := fixtures.CreateProject(t, user)
	fixtures.CreateCollection(t, project, "pages")

	doc := &dto.TemplateDocument{
		Slug: "site",
		Name: "Site",
		Collections: []dto.TemplateCollection{
			{Name: "Pages", Slug: "pages"},
		},
	}

	err := tmplSvc.Apply(ctx, project, doc)
	assert.ErrorIs(t, err, services.ErrCollectionSlugTaken)
}
