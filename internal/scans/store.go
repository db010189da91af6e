// Package scans stores assessment history in DefraDB. Every read and
// write is scoped to a single owner; no operation can return another
// user's scans.
package scans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/types"
)

const collection = "ScanRecord"

// ErrInvalidID marks scan IDs that fail validation before any query is
// sent. Callers use it to tell a bad request from a storage failure.
var ErrInvalidID = errors.New("invalid scan id")

// NewID returns a fresh scan ID. Generated before the assessment runs
// so model call records can reference the scan they produced.
func NewID() string {
	return uuid.New().String()
}

var scanFields = []string{
	"_docID",
	"id",
	"owner",
	"created_at",
	"product_name",
	"ingredients",
	"raw_text",
	"serving_size_g",
	"calories",
	"fat_g",
	"sugar_g",
	"sodium_mg",
	"product_summary",
	"nutritional_analysis",
	"assessment",
	"explanation",
}

// Store provides owner-scoped access to scan records.
type Store struct {
	client *defra.Client
}

// NewStore creates a scan record store.
func NewStore(client *defra.Client) *Store {
	return &Store{client: client}
}

// Create persists a completed assessment for the owner and returns the
// stored record with its ID and timestamp. Pass an empty id to have
// one generated.
func (s *Store) Create(ctx context.Context, owner, id string, label types.LabelExtraction, result types.AssessmentResult) (*types.ScanRecord, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if id == "" {
		id = NewID()
	}

	rec := types.ScanRecord{
		ID:        id,
		Owner:     owner,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Label:     label,
		Result:    result,
	}

	if _, err := s.client.Create(ctx, collection, toMap(rec)); err != nil {
		return nil, fmt.Errorf("create scan record: %w", err)
	}
	return &rec, nil
}

// ListQuery narrows a history listing. The zero value lists everything
// the owner has.
type ListQuery struct {
	// Verdicts restricts results to scans with any of these verdicts.
	Verdicts []types.Verdict
	Limit    int
	Offset   int
}

// List returns the owner's scans, newest first.
func (s *Store) List(ctx context.Context, owner string, q ListQuery) ([]types.ScanRecord, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}

	qb := defra.NewQuery(collection).
		Filter("owner", owner).
		Fields(scanFields...).
		OrderBy("created_at", "DESC")
	if len(q.Verdicts) > 0 {
		verdicts := make([]string, len(q.Verdicts))
		for i, v := range q.Verdicts {
			verdicts[i] = string(v)
		}
		qb.FilterIn("assessment", verdicts)
	}
	if q.Limit > 0 {
		qb.Limit(q.Limit)
	}
	if q.Offset > 0 {
		qb.Offset(q.Offset)
	}

	resp, err := qb.Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("graphql error: %s", errMsg)
	}

	records, _, err := parseRecords(resp.Data)
	return records, err
}

// Get returns one of the owner's scans by ID, or nil if it does not
// exist. A scan belonging to a different owner is indistinguishable
// from a missing one.
func (s *Store) Get(ctx context.Context, owner, id string) (*types.ScanRecord, error) {
	rec, _, err := s.get(ctx, owner, id)
	return rec, err
}

// Delete removes one of the owner's scans. Deleting a missing scan is
// not an error.
func (s *Store) Delete(ctx context.Context, owner, id string) error {
	_, docID, err := s.get(ctx, owner, id)
	if err != nil {
		return err
	}
	if docID == "" {
		return nil
	}
	if err := s.client.Delete(ctx, collection, docID); err != nil {
		return fmt.Errorf("delete scan record: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, owner, id string) (*types.ScanRecord, string, error) {
	if owner == "" {
		return nil, "", fmt.Errorf("owner is required")
	}
	if _, err := defra.SafeID(id); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	resp, err := defra.NewQuery(collection).
		Filter("owner", owner).
		Filter("id", id).
		Fields(scanFields...).
		Execute(ctx, s.client)
	if err != nil {
		return nil, "", fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, "", fmt.Errorf("graphql error: %s", errMsg)
	}

	records, docIDs, err := parseRecords(resp.Data)
	if err != nil {
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", nil
	}
	return &records[0], docIDs[0], nil
}

func toMap(rec types.ScanRecord) map[string]any {
	m := map[string]any{
		"id":           rec.ID,
		"owner":        rec.Owner,
		"created_at":   rec.CreatedAt,
		"product_name": rec.Label.ProductName,
		"assessment":   string(rec.Result.Assessment),
		"explanation":  rec.Result.Explanation,
	}

	if rec.Label.Ingredients != "" {
		m["ingredients"] = rec.Label.Ingredients
	}
	if rec.Label.RawText != "" {
		m["raw_text"] = rec.Label.RawText
	}
	putOptional(m, "serving_size_g", rec.Label.ServingSizeG)
	putOptional(m, "calories", rec.Label.Calories)
	putOptional(m, "fat_g", rec.Label.FatG)
	putOptional(m, "sugar_g", rec.Label.SugarG)
	putOptional(m, "sodium_mg", rec.Label.SodiumMg)

	if rec.Result.ProductSummary != "" {
		m["product_summary"] = rec.Result.ProductSummary
	}
	if rec.Result.NutritionalAnalysis != "" {
		m["nutritional_analysis"] = rec.Result.NutritionalAnalysis
	}

	return m
}

func putOptional(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

// parseRecords parses ScanRecord entries plus their DefraDB doc IDs.
func parseRecords(data map[string]any) ([]types.ScanRecord, []string, error) {
	recData, ok := data[collection]
	if !ok {
		return nil, nil, nil
	}

	docs, ok := recData.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected %s type: %T", collection, recData)
	}

	records := make([]types.ScanRecord, 0, len(docs))
	docIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		doc, ok := d.(map[string]any)
		if !ok {
			continue
		}

		rec := types.ScanRecord{}
		docID, _ := doc["_docID"].(string)
		if v, ok := doc["id"].(string); ok {
			rec.ID = v
		}
		if v, ok := doc["owner"].(string); ok {
			rec.Owner = v
		}
		if v, ok := doc["created_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				rec.CreatedAt = t
			}
		}
		if v, ok := doc["product_name"].(string); ok {
			rec.Label.ProductName = v
		}
		if v, ok := doc["ingredients"].(string); ok {
			rec.Label.Ingredients = v
		}
		if v, ok := doc["raw_text"].(string); ok {
			rec.Label.RawText = v
		}
		rec.Label.ServingSizeG = optionalFloat(doc, "serving_size_g")
		rec.Label.Calories = optionalFloat(doc, "calories")
		rec.Label.FatG = optionalFloat(doc, "fat_g")
		rec.Label.SugarG = optionalFloat(doc, "sugar_g")
		rec.Label.SodiumMg = optionalFloat(doc, "sodium_mg")
		if v, ok := doc["product_summary"].(string); ok {
			rec.Result.ProductSummary = v
		}
		if v, ok := doc["nutritional_analysis"].(string); ok {
			rec.Result.NutritionalAnalysis = v
		}
		if v, ok := doc["assessment"].(string); ok {
			rec.Result.Assessment = types.Verdict(v)
		}
		if v, ok := doc["explanation"].(string); ok {
			rec.Result.Explanation = v
		}

		records = append(records, rec)
		docIDs = append(docIDs, docID)
	}

	return records, docIDs, nil
}

func optionalFloat(doc map[string]any, key string) *float64 {
	if v, ok := doc[key].(float64); ok {
		return &v
	}
	return nil
}
