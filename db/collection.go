package db

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/roamstack/attractions-api/types"
)

// Collection is a named set of JSON documents.
type Collection struct {
	db   *Db
	name string
}

func (c *Collection) Name() string {
	return c.name
}

// Find starts a lazily-built query over the collection; nothing is executed
// until Exec is called on the returned query.
func (c *Collection) Find(where ...types.ConditionItem) *Query {
	return &Query{coll: c, where: where}
}

// FindByID retrieves a single document or ErrNotFound.
func (c *Collection) FindByID(ctx context.Context, id string) (map[string]interface{}, error) {
	rs, err := c.db.session.ExecuteIter(ctx,
		"SELECT id, body FROM documents WHERE collection = ? AND id = ?", c.name, id)
	if err != nil {
		return nil, err
	}

	rows := rs.Values()
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return decodeDocument(rows[0])
}

// Insert stores the document and returns its identifier, generating one when
// the document carries none.
func (c *Collection) Insert(ctx context.Context, doc map[string]interface{}) (string, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	body, err := encodeDocument(id, doc)
	if err != nil {
		return "", err
	}

	_, err = c.db.session.Execute(ctx,
		"INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)", c.name, id, body)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return "", ErrConflict
		}
		return "", err
	}
	return id, nil
}

// Update replaces the stored document.
func (c *Collection) Update(ctx context.Context, id string, doc map[string]interface{}) error {
	body, err := encodeDocument(id, doc)
	if err != nil {
		return err
	}

	affected, err := c.db.session.Execute(ctx,
		"UPDATE documents SET body = ? WHERE collection = ? AND id = ?", body, c.name, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Patch merges the given fields into the stored document and returns the
// result. A nil field value removes the key.
func (c *Collection) Patch(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	doc, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for key, value := range fields {
		if value == nil {
			delete(doc, key)
			continue
		}
		doc[key] = value
	}

	if err := c.Update(ctx, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a single document or returns ErrNotFound.
func (c *Collection) Delete(ctx context.Context, id string) error {
	affected, err := c.db.session.Execute(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", c.name, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes every document matching the conditions and returns the
// number removed.
func (c *Collection) DeleteMany(ctx context.Context, where ...types.ConditionItem) (int64, error) {
	query, values := buildDeleteQuery(c.name, where)
	return c.db.session.Execute(ctx, query, values...)
}

// CountDocuments counts the documents matching the conditions.
func (c *Collection) CountDocuments(ctx context.Context, where ...types.ConditionItem) (int, error) {
	query, values := buildCountQuery(c.name, where)
	rs, err := c.db.session.ExecuteIter(ctx, query, values...)
	if err != nil {
		return 0, err
	}

	rows := rs.Values()
	if len(rows) == 0 {
		return 0, nil
	}
	return toInt(rows[0]["total"]), nil
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func decodeDocument(row map[string]interface{}) (map[string]interface{}, error) {
	var body []byte
	switch v := row["body"].(type) {
	case string:
		body = []byte(v)
	case []byte:
		body = v
	}

	doc := make(map[string]interface{})
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if id, ok := row["id"].(string); ok {
		doc["id"] = id
	}
	return doc, nil
}

// encodeDocument serializes a document with its identifier included in the
// body, so that filters on "id" work like any other field. The caller's map
// is not mutated.
func encodeDocument(id string, doc map[string]interface{}) (string, error) {
	copied := make(map[string]interface{}, len(doc)+1)
	for key, value := range doc {
		copied[key] = value
	}
	copied["id"] = id

	body, err := json.Marshal(copied)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
