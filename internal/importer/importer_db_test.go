package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/database/dbtest"
	"yamdb/internal/http-api/models"
)

var dataset = map[string]string{
	"category.csv":    "id,name,slug\n1,Фильм,movie\n2,Книга,book\n",
	"genre.csv":       "id,name,slug\n1,Драма,drama\n2,Комедия,comedy\n",
	"users.csv":       "id,username,email,role,bio,first_name,last_name\n100,bingobongo,bingobongo@yamdb.fake,user,,,\n101,moder,moder@yamdb.fake,moderator,,,\n",
	"titles.csv":      "id,name,year,category\n1,Побег из Шоушенка,1994,1\n2,Крестный отец,1972,1\n",
	"genre_title.csv": "id,title_id,genre_id\n1,1,1\n2,2,1\n3,2,2\n",
	"review.csv":      "id,title_id,text,author,score,pub_date\n1,1,Ничего,100,4,2019-09-24T21:08:21.567Z\n2,1,Хорошо,101,7,2019-09-25T21:08:21.567Z\n",
	"comments.csv":    "id,review_id,text,author,pub_date\n1,1,Согласен,101,2019-09-26T21:08:21.567Z\n",
}

func TestRun_Idempotent(t *testing.T) {
	db := dbtest.Open(t, "yamdb_importer_test")
	ctx := context.Background()

	dir := t.TempDir()
	for name, body := range dataset {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	im := New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := im.Run(ctx, dir)
	require.NoError(t, err)
	require.Len(t, first, len(tables))
	for _, res := range first {
		assert.False(t, res.Skipped, res.File)
		assert.Equal(t, res.Read, res.Inserted, res.File)
	}

	second, err := im.Run(ctx, dir)
	require.NoError(t, err)
	for _, res := range second {
		assert.Positive(t, res.Read, res.File)
		assert.Zero(t, res.Inserted, res.File)
	}

	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.EqualValues(t, 2, reviews)

	// sequences moved past the imported ids
	c := &models.Category{Name: "Музыка", Slug: "music"}
	require.NoError(t, db.Create(c).Error)
	assert.Greater(t, c.ID, int64(2))

	u := &models.User{Username: "fresh", Email: "fresh@yamdb.fake", Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	assert.Greater(t, u.ID, int64(101))
}

func TestRun_RollsBackOnBadFile(t *testing.T) {
	db := dbtest.Open(t, "yamdb_importer_test")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "category.csv"), []byte(dataset["category.csv"]), 0o644))
	// title pointing at a missing category fails the whole load
	require.NoError(t, os.WriteFile(filepath.Join(dir, "titles.csv"), []byte("id,name,year,category\n1,X,2000,9\n"), 0o644))

	_, err := New(db, slog.New(slog.NewTextHandler(io.Discard, nil))).Run(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "titles.csv")

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Zero(t, n)
}
