// Package profiles stores one health profile per owner in DefraDB.
package profiles

import (
	"context"
	"fmt"
	"time"

	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/types"
)

const collection = "HealthProfile"

var profileFields = []string{
	"_docID",
	"owner",
	"conditions",
	"detailed_conditions",
	"weight_goal",
	"gender",
	"weight_kg",
	"updated_at",
}

// Store provides owner-scoped access to health profiles.
type Store struct {
	client *defra.Client
}

// NewStore creates a health profile store.
func NewStore(client *defra.Client) *Store {
	return &Store{client: client}
}

// Put validates and saves the owner's profile, replacing any existing one.
func (s *Store) Put(ctx context.Context, owner string, profile types.HealthProfile) error {
	if owner == "" {
		return fmt.Errorf("owner is required")
	}
	if err := types.ValidateProfile(profile); err != nil {
		return err
	}

	input := toMap(owner, profile)
	filter := map[string]any{"owner": map[string]any{"_eq": owner}}

	if _, err := s.client.Upsert(ctx, collection, filter, input, input); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Get returns the owner's profile, or nil if none is stored.
func (s *Store) Get(ctx context.Context, owner string) (*types.HealthProfile, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}

	resp, err := defra.NewQuery(collection).
		Filter("owner", owner).
		Fields(profileFields...).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("graphql error: %s", errMsg)
	}

	return parseProfile(resp.Data)
}

func toMap(owner string, p types.HealthProfile) map[string]any {
	conditions := make([]string, 0, len(p.Conditions))
	for _, c := range p.Conditions {
		conditions = append(conditions, string(c))
	}

	m := map[string]any{
		"owner":      owner,
		"conditions": conditions,
		"updated_at": time.Now().UTC(),
	}
	if p.DetailedConditions != "" {
		m["detailed_conditions"] = p.DetailedConditions
	}
	if p.WeightGoal != "" {
		m["weight_goal"] = string(p.WeightGoal)
	}
	if p.Gender != "" {
		m["gender"] = p.Gender
	}
	if p.WeightKg != nil {
		m["weight_kg"] = *p.WeightKg
	}
	return m
}

func parseProfile(data map[string]any) (*types.HealthProfile, error) {
	profData, ok := data[collection]
	if !ok {
		return nil, nil
	}

	docs, ok := profData.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected %s type: %T", collection, profData)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	doc, ok := docs[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected document type: %T", docs[0])
	}

	p := &types.HealthProfile{}
	if v, ok := doc["conditions"].([]any); ok {
		for _, c := range v {
			if cond, ok := c.(string); ok {
				p.Conditions = append(p.Conditions, types.Condition(cond))
			}
		}
	}
	if v, ok := doc["detailed_conditions"].(string); ok {
		p.DetailedConditions = v
	}
	if v, ok := doc["weight_goal"].(string); ok {
		p.WeightGoal = types.WeightGoal(v)
	}
	if v, ok := doc["gender"].(string); ok {
		p.Gender = v
	}
	if v, ok := doc["weight_kg"].(float64); ok {
		p.WeightKg = &v
	}
	return p, nil
}
