package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/stp-archive/catalog/pkg/docid"
)

// Document is a bibliographic catalog record.
type Document struct {
	// ID is the database-assigned primary key.
	ID uint `gorm:"primaryKey" json:"pk"`

	// CreatedAt and UpdatedAt are server-assigned timestamps.
	CreatedAt time.Time `json:"time_created"`
	UpdatedAt time.Time `json:"time_updated"`

	// DocIdentifier is the unique month-partitioned identifier
	// (e.g. "stp202608_0001"). Assigned at creation, immutable.
	DocIdentifier string `gorm:"uniqueIndex;not null" json:"doc_identifier"`

	// Title is required and unique across all documents. The in-transaction
	// check gives the friendly conflict error; the index is the arbiter when
	// concurrent creations cannot see each other's uncommitted rows.
	Title string `gorm:"uniqueIndex;not null" json:"title"`

	// Author is required.
	Author string `gorm:"not null" json:"author"`

	// DocCode is an optional short classification code.
	DocCode string `json:"doc_code"`

	// CompiledURL and SourceURL are normalized to carry an HTTP scheme.
	CompiledURL string `json:"compiled_url"`
	SourceURL   string `json:"source_url"`

	// Abstract is optional free text.
	Abstract string `gorm:"type:text" json:"abstract"`

	// CreatorEmail is the verified email of the caller that created the
	// document. Immutable. Not a foreign key: creators need not be
	// registered users.
	CreatorEmail string `gorm:"not null;index" json:"creator_email"`
}

// editableDocumentColumns is the whitelist of columns the update path may
// touch. Identifier, creator, and timestamps are deliberately absent.
var editableDocumentColumns = map[string]bool{
	"title":        true,
	"author":       true,
	"doc_code":     true,
	"compiled_url": true,
	"source_url":   true,
	"abstract":     true,
}

func (d *Document) validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Author, validation.Required),
		validation.Field(&d.CreatorEmail, validation.Required, validation.Match(emailRE)),
	); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// NormalizeURL trims whitespace and, for non-empty values without an HTTP
// scheme, prepends "https://". Empty input stays empty.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return "https://" + s
	}
	return s
}

// NormalizeURLs applies URL normalization to both URL fields.
func (d *Document) NormalizeURLs() {
	d.CompiledURL = NormalizeURL(d.CompiledURL)
	d.SourceURL = NormalizeURL(d.SourceURL)
}

// StorageClock returns the storage engine's current time. The identifier
// month stub is derived from this clock, never the process clock, so it stays
// consistent with the auto-assigned creation timestamps.
func StorageClock(db *gorm.DB) (time.Time, error) {
	var raw any
	row := db.Raw("SELECT CURRENT_TIMESTAMP").Row()
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("reading storage clock: %w", err)
	}

	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseClock(v)
	case []byte:
		return parseClock(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected storage clock type %T", raw)
	}
}

// parseClock handles the text timestamp formats returned by sqlite, which
// reports CURRENT_TIMESTAMP as a string.
func parseClock(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable storage clock value %q", s)
}

// nextIdentifier derives the next document identifier inside tx: month stub
// from the storage clock, sequence one past the most recently created
// document sharing that stub, 0001 when the stub is new. The final existence
// check is defensive; with generation running inside the creation transaction
// it should only trip when two transactions race, in which case the caller
// retries.
func nextIdentifier(tx *gorm.DB) (string, error) {
	now, err := StorageClock(tx)
	if err != nil {
		return "", err
	}
	stub := docid.MonthStub(now)

	// The stub's underscore would act as a single-character LIKE wildcard,
	// letting near-miss malformed rows poison the sequence query.
	pattern := strings.ReplaceAll(stub, "_", `\_`) + "%"

	seq := 1
	var last Document
	err = tx.
		Where(`doc_identifier LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC, id DESC").
		First(&last).
		Error
	switch {
	case err == nil:
		prev, perr := docid.Sequence(last.DocIdentifier)
		if perr != nil {
			return "", &IntegrityError{Err: perr}
		}
		seq = prev + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First document of the month.
	default:
		return "", fmt.Errorf("querying latest identifier for stub %q: %w", stub, err)
	}

	id, err := docid.Format(stub, seq)
	if err != nil {
		return "", &IntegrityError{Err: err}
	}

	var count int64
	if err := tx.
		Model(&Document{}).
		Where("doc_identifier = ?", id).
		Count(&count).
		Error; err != nil {
		return "", fmt.Errorf("verifying identifier %q is unused: %w", id, err)
	}
	if count > 0 {
		return "", &ConflictError{Field: "doc_identifier", Value: id}
	}

	return id, nil
}

// insert writes the row, converting unique-index violations into conflict
// errors. Under read-committed isolation two concurrent creations can pass
// the count checks and compute the same identifier because neither sees the
// other's uncommitted row; the unique indexes then reject the loser, and the
// translated conflict lets the caller retry against committed state, where
// the re-run checks give the definitive answer (a fresh identifier, or a
// title conflict).
func (d *Document) insert(tx *gorm.DB) error {
	if err := tx.Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &ConflictError{Field: "doc_identifier", Value: d.DocIdentifier}
		}
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// Create validates the document, normalizes its URLs, and inserts it with a
// freshly generated identifier. Duplicate-title check, identifier generation,
// and the insert run in one transaction; races that slip past the in-
// transaction checks are stopped by the unique indexes and surface as
// retryable conflicts.
func (d *Document) Create(db *gorm.DB) error {
	if err := d.validate(); err != nil {
		return err
	}
	d.NormalizeURLs()

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&Document{}).
			Where("title = ?", d.Title).
			Count(&count).
			Error; err != nil {
			return fmt.Errorf("checking for duplicate title: %w", err)
		}
		if count > 0 {
			return &ConflictError{Field: "title", Value: d.Title}
		}

		id, err := nextIdentifier(tx)
		if err != nil {
			return err
		}
		d.DocIdentifier = id

		return d.insert(tx)
	})
}

// GetByDocIdentifier loads the document with the given identifier.
func (d *Document) GetByDocIdentifier(db *gorm.DB, id string) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.Where("doc_identifier = ?", id).First(d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "document", Key: id}
		}
		return fmt.Errorf("getting document %q: %w", id, err)
	}
	return nil
}

// Update applies the given column values through the editable-columns
// whitelist. Keys outside the whitelist are ignored, so attempts to change
// doc_identifier or timestamps have no effect.
func (d *Document) Update(db *gorm.DB, updates map[string]any) error {
	if err := validation.Validate(d.ID, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}

	filtered := make(map[string]any, len(updates))
	for column, value := range updates {
		if !editableDocumentColumns[column] {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return &ValidationError{
				Err: fmt.Errorf("column %q must be a string", column),
			}
		}
		switch column {
		case "compiled_url", "source_url":
			s = NormalizeURL(s)
		case "title", "author":
			if strings.TrimSpace(s) == "" {
				return &ValidationError{
					Err: fmt.Errorf("column %q cannot be empty", column),
				}
			}
		}
		filtered[column] = s
	}
	if len(filtered) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(d).Updates(filtered).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{
					Field: "title",
					Value: fmt.Sprint(filtered["title"]),
				}
			}
			return fmt.Errorf("updating document %q: %w", d.DocIdentifier, err)
		}
		if err := tx.First(d, d.ID).Error; err != nil {
			return fmt.Errorf("reloading document after update: %w", err)
		}
		return nil
	})
}

// Delete removes the document.
func (d *Document) Delete(db *gorm.DB) error {
	if err := validation.Validate(d.ID, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.Delete(d).Error; err != nil {
		return fmt.Errorf("deleting document %q: %w", d.DocIdentifier, err)
	}
	return nil
}

// GetAllDocuments returns every document, newest first.
func GetAllDocuments(db *gorm.DB) ([]Document, error) {
	var docs []Document
	if err := db.
		Order("created_at DESC, id DESC").
		Find(&docs).
		Error; err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// ImportDocuments inserts a batch of candidate documents in one transaction.
// Candidates whose title already exists are skipped silently; any other
// failure rolls back the whole batch. Returns the number of rows created.
func ImportDocuments(db *gorm.DB, docs []*Document) (int, error) {
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, d := range docs {
			if err := d.validate(); err != nil {
				return err
			}
			d.NormalizeURLs()

			var count int64
			if err := tx.
				Model(&Document{}).
				Where("title = ?", d.Title).
				Count(&count).
				Error; err != nil {
				return fmt.Errorf("checking for duplicate title: %w", err)
			}
			if count > 0 {
				continue
			}

			id, err := nextIdentifier(tx)
			if err != nil {
				return err
			}
			d.DocIdentifier = id

			if err := d.insert(tx); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
