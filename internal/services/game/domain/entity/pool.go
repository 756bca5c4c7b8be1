package entity

import (
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
)

// Pool owns every discoverable entity for one session. Exactly one live pool
// exists per session; it is created lazily on first write and deleted only
// with the owning session.
//
// Revision guards the whole-document write path: the store rejects a save
// whose revision does not follow the stored one, so concurrent mutators fail
// loudly instead of silently losing updates.
type Pool struct {
	SessionID  string `json:"sessionId"`
	CampaignID string `json:"campaignId"`
	ThemeID    string `json:"themeId,omitempty"`

	// Core collections.
	Enemies []Entity `json:"enemies,omitempty"`
	Events  []Entity `json:"events,omitempty"`
	NPCs    []Entity `json:"npcs,omitempty"`
	Items   []Entity `json:"items,omitempty"`
	Quests  []Entity `json:"quests,omitempty"`

	// Bonus collections.
	PracticalRewards []Entity `json:"practicalRewards,omitempty"`
	TrophyItems      []Entity `json:"trophyItems,omitempty"`
	MysteryItems     []Entity `json:"mysteryItems,omitempty"`

	Revision    uint64    `json:"revision"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewPool creates an empty pool for a session.
func NewPool(sessionID, campaignID, themeID string, now time.Time) (Pool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Pool{}, apperrors.New(apperrors.CodePoolSessionIDRequired, "session id is required")
	}
	if strings.TrimSpace(campaignID) == "" {
		return Pool{}, apperrors.New(apperrors.CodePoolCampaignIDRequired, "campaign id is required")
	}
	return Pool{
		SessionID:   strings.TrimSpace(sessionID),
		CampaignID:  strings.TrimSpace(campaignID),
		ThemeID:     strings.TrimSpace(themeID),
		CreatedAt:   now.UTC(),
		LastUpdated: now.UTC(),
	}, nil
}

// collection returns the slice owning a category. The switch is exhaustive
// over the Category enum.
func (p *Pool) collection(c Category) *[]Entity {
	switch c {
	case CategoryEnemy:
		return &p.Enemies
	case CategoryEvent:
		return &p.Events
	case CategoryNPC:
		return &p.NPCs
	case CategoryItem:
		return &p.Items
	case CategoryQuest:
		return &p.Quests
	case CategoryPractical:
		return &p.PracticalRewards
	case CategoryTrophy:
		return &p.TrophyItems
	case CategoryMystery:
		return &p.MysteryItems
	default:
		return nil
	}
}

// Upsert inserts the entity into its category collection, or shallow-merges
// it over an existing entity with the same identity (incoming fields win).
// The kind argument must agree with the category's kind.
func (p *Pool) Upsert(kind Kind, category Category, incoming Entity, now time.Time) (Entity, error) {
	incoming.Category = category
	if err := incoming.Validate(); err != nil {
		return Entity{}, err
	}
	if category.Kind() != kind {
		return Entity{}, apperrors.WithMetadata(apperrors.CodePoolEntityKindMismatch,
			"entity category does not belong to the requested kind",
			map[string]string{"entityType": string(kind), "category": string(category)})
	}

	collection := p.collection(category)
	if collection == nil {
		return Entity{}, apperrors.New(apperrors.CodePoolEntityCategoryInvalid, "unknown entity category")
	}

	now = now.UTC()
	for i, existing := range *collection {
		if existing.Identity() == incoming.Identity() {
			merged := merge(existing, incoming)
			merged.UpdatedAt = now
			(*collection)[i] = merged
			p.LastUpdated = now
			return merged, nil
		}
	}

	incoming.CreatedAt = now
	incoming.UpdatedAt = now
	*collection = append(*collection, incoming)
	p.LastUpdated = now
	return incoming, nil
}

// Remove deletes the entity with the given identity from a category
// collection and returns it. Absent entities surface as NotFound.
func (p *Pool) Remove(category Category, entityID string, now time.Time) (Entity, error) {
	collection := p.collection(category)
	if collection == nil {
		return Entity{}, apperrors.New(apperrors.CodePoolEntityCategoryInvalid, "unknown entity category")
	}
	entityID = strings.TrimSpace(entityID)
	for i, existing := range *collection {
		if existing.Identity() == entityID {
			*collection = append((*collection)[:i], (*collection)[i+1:]...)
			p.LastUpdated = now.UTC()
			return existing, nil
		}
	}
	return Entity{}, apperrors.WithMetadata(apperrors.CodeNotFound, "entity not found in category",
		map[string]string{"entityId": entityID, "category": string(category)})
}

// Find locates an entity by identity across every collection.
func (p *Pool) Find(entityID string) (Entity, bool) {
	entityID = strings.TrimSpace(entityID)
	for _, category := range Categories {
		for _, existing := range *p.collection(category) {
			if existing.Identity() == entityID {
				return existing, true
			}
		}
	}
	return Entity{}, false
}

// CoreEntities returns every milestone-bearing entity in stable category
// order, then insertion order within each category.
func (p *Pool) CoreEntities() []Entity {
	var out []Entity
	for _, category := range Categories {
		if category.Kind() != KindCore {
			continue
		}
		out = append(out, *p.collection(category)...)
	}
	return out
}

// AllEntities returns every entity, core collections first.
func (p *Pool) AllEntities() []Entity {
	var out []Entity
	for _, category := range Categories {
		out = append(out, *p.collection(category)...)
	}
	return out
}
