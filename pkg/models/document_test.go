package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stp-archive/catalog/pkg/docid"
)

func newTestDocument(title string) *Document {
	return &Document{
		Title:        title,
		Author:       "A. Author",
		CreatorEmail: "writer@example.com",
	}
}

func TestDocument_Create_SequencesWithinMonth(t *testing.T) {
	db := setupTest(t)

	now, err := StorageClock(db)
	require.NoError(t, err)
	stub := docid.MonthStub(now)

	for i, title := range []string{"First", "Second", "Third"} {
		doc := newTestDocument(title)
		require.NoError(t, doc.Create(db))
		want, err := docid.Format(stub, i+1)
		require.NoError(t, err)
		assert.Equal(t, want, doc.DocIdentifier)
	}
}

func TestDocument_Create_NewMonthResetsSequence(t *testing.T) {
	db := setupTest(t)

	// A record from a long-gone month must not influence the current stub.
	old := newTestDocument("Archive entry")
	old.DocIdentifier = "stp199901_0042"
	require.NoError(t, db.Create(old).Error)

	doc := newTestDocument("Fresh entry")
	require.NoError(t, doc.Create(db))

	now, err := StorageClock(db)
	require.NoError(t, err)
	want, err := docid.Format(docid.MonthStub(now), 1)
	require.NoError(t, err)
	assert.Equal(t, want, doc.DocIdentifier)
}

func TestDocument_Create_DuplicateTitle(t *testing.T) {
	db := setupTest(t)

	first := newTestDocument("Same title")
	require.NoError(t, first.Create(db))

	second := newTestDocument("Same title")
	err := second.Create(db)
	require.Error(t, err)
	assert.True(t, IsConflictOn(err, "title"))

	var count int64
	require.NoError(t, db.Model(&Document{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDocument_Create_MalformedStoredIdentifier(t *testing.T) {
	db := setupTest(t)

	now, err := StorageClock(db)
	require.NoError(t, err)
	stub := docid.MonthStub(now)

	// Simulate a previously corrupted row sharing the current stub.
	bad := newTestDocument("Corrupted row")
	bad.DocIdentifier = stub + "ABCD"
	require.NoError(t, db.Create(bad).Error)

	doc := newTestDocument("Next entry")
	err = doc.Create(db)
	require.Error(t, err)
	assert.True(t, IsIntegrity(err))
}

func TestDocument_Insert_TranslatesUniqueViolations(t *testing.T) {
	db := setupTest(t)

	first := newTestDocument("Original title")
	require.NoError(t, first.Create(db))

	// A concurrent creation is invisible to the in-transaction count checks,
	// so the unique indexes are what actually stop the losing row. The
	// violation must come back as a retryable conflict, not a raw driver
	// error.
	t.Run("identifier already committed", func(t *testing.T) {
		dup := newTestDocument("Another title")
		dup.DocIdentifier = first.DocIdentifier
		err := dup.insert(db)
		require.Error(t, err)
		assert.True(t, IsConflictOn(err, "doc_identifier"))
	})

	t.Run("title already committed", func(t *testing.T) {
		now, err := StorageClock(db)
		require.NoError(t, err)
		id, err := docid.Format(docid.MonthStub(now), 99)
		require.NoError(t, err)

		dup := newTestDocument("Original title")
		dup.DocIdentifier = id
		err = dup.insert(db)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})
}

func TestDocument_Create_IgnoresRowsWithoutSeparator(t *testing.T) {
	db := setupTest(t)

	now, err := StorageClock(db)
	require.NoError(t, err)
	stub := docid.MonthStub(now)

	// Same month digits but no separator. The stub's underscore must not act
	// as a LIKE wildcard and pick this row into the sequence query.
	bad := newTestDocument("Mangled row")
	bad.DocIdentifier = strings.TrimSuffix(stub, "_") + "1234"
	require.NoError(t, db.Create(bad).Error)

	doc := newTestDocument("Clean entry")
	require.NoError(t, doc.Create(db))

	want, err := docid.Format(stub, 1)
	require.NoError(t, err)
	assert.Equal(t, want, doc.DocIdentifier)
}

func TestDocument_Create_NormalizesURLs(t *testing.T) {
	db := setupTest(t)

	doc := newTestDocument("Normalized")
	doc.CompiledURL = "  example.com "
	doc.SourceURL = "http://x"
	require.NoError(t, doc.Create(db))

	assert.Equal(t, "https://example.com", doc.CompiledURL)
	assert.Equal(t, "http://x", doc.SourceURL)
	assert.Empty(t, doc.Abstract)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare host", input: "example.com", want: "https://example.com"},
		{name: "http untouched", input: "http://x", want: "http://x"},
		{name: "https untouched", input: "https://x", want: "https://x"},
		{name: "empty stays empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
		{name: "trimmed", input: " https://y ", want: "https://y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}

func TestDocument_Create_Validation(t *testing.T) {
	db := setupTest(t)

	t.Run("missing title", func(t *testing.T) {
		doc := newTestDocument("")
		err := doc.Create(db)
		assert.True(t, IsValidation(err))
	})

	t.Run("missing author", func(t *testing.T) {
		doc := newTestDocument("Authorless")
		doc.Author = ""
		err := doc.Create(db)
		assert.True(t, IsValidation(err))
	})

	t.Run("bad creator email", func(t *testing.T) {
		doc := newTestDocument("Bad creator")
		doc.CreatorEmail = "not-an-email"
		err := doc.Create(db)
		assert.True(t, IsValidation(err))
	})
}

func TestDocument_Update_EditableColumnsOnly(t *testing.T) {
	db := setupTest(t)

	doc := newTestDocument("Before")
	require.NoError(t, doc.Create(db))
	originalID := doc.DocIdentifier
	originalCreated := doc.CreatedAt

	err := doc.Update(db, map[string]any{
		"title":          "After",
		"doc_code":       "STP-7",
		"compiled_url":   "updated.example.com",
		"doc_identifier": "stp999912_0001",
		"time_created":   "2001-01-01T00:00:00Z",
		"created_at":     "2001-01-01T00:00:00Z",
		"creator_email":  "intruder@example.com",
	})
	require.NoError(t, err)

	var got Document
	require.NoError(t, got.GetByDocIdentifier(db, originalID))
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "STP-7", got.DocCode)
	assert.Equal(t, "https://updated.example.com", got.CompiledURL)
	assert.Equal(t, originalID, got.DocIdentifier)
	assert.Equal(t, "writer@example.com", got.CreatorEmail)
	assert.WithinDuration(t, originalCreated, got.CreatedAt, time.Second)
}

func TestDocument_Update_DuplicateTitle(t *testing.T) {
	db := setupTest(t)

	first := newTestDocument("First title")
	require.NoError(t, first.Create(db))
	second := newTestDocument("Second title")
	require.NoError(t, second.Create(db))

	err := second.Update(db, map[string]any{"title": "First title"})
	require.Error(t, err)
	assert.True(t, IsConflictOn(err, "title"))
}

func TestDocument_Update_RejectsEmptyTitle(t *testing.T) {
	db := setupTest(t)

	doc := newTestDocument("Keep me")
	require.NoError(t, doc.Create(db))

	err := doc.Update(db, map[string]any{"title": "   "})
	assert.True(t, IsValidation(err))
}

func TestDocument_Delete(t *testing.T) {
	db := setupTest(t)

	doc := newTestDocument("Doomed")
	require.NoError(t, doc.Create(db))
	require.NoError(t, doc.Delete(db))

	var got Document
	err := got.GetByDocIdentifier(db, doc.DocIdentifier)
	assert.True(t, IsNotFound(err))
}

func TestDocument_GetByDocIdentifier_NotFound(t *testing.T) {
	db := setupTest(t)

	var doc Document
	err := doc.GetByDocIdentifier(db, "stp202601_0001")
	assert.True(t, IsNotFound(err))
}

func TestImportDocuments(t *testing.T) {
	t.Run("skips duplicate titles silently", func(t *testing.T) {
		db := setupTest(t)

		existing := newTestDocument("Already there")
		require.NoError(t, existing.Create(db))

		batch := []*Document{
			newTestDocument("Already there"),
			newTestDocument("New one"),
			newTestDocument("Another new one"),
		}
		created, err := ImportDocuments(db, batch)
		require.NoError(t, err)
		assert.Equal(t, 2, created)

		var count int64
		require.NoError(t, db.Model(&Document{}).Count(&count).Error)
		assert.EqualValues(t, 3, count)
	})

	t.Run("assigns sequential identifiers", func(t *testing.T) {
		db := setupTest(t)

		batch := []*Document{
			newTestDocument("One"),
			newTestDocument("Two"),
		}
		_, err := ImportDocuments(db, batch)
		require.NoError(t, err)

		now, err := StorageClock(db)
		require.NoError(t, err)
		stub := docid.MonthStub(now)
		assert.Equal(t, stub+"0001", batch[0].DocIdentifier)
		assert.Equal(t, stub+"0002", batch[1].DocIdentifier)
	})

	t.Run("rolls back the whole batch on failure", func(t *testing.T) {
		db := setupTest(t)

		invalid := newTestDocument("No author")
		invalid.Author = ""
		batch := []*Document{
			newTestDocument("Valid row"),
			invalid,
		}
		_, err := ImportDocuments(db, batch)
		require.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&Document{}).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})
}
