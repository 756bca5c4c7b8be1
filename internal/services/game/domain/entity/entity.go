// Package entity models the per-session pool of discoverable content.
//
// Entities come in two kinds: core entities advance milestone completion,
// bonus entities are reward and flavor only. Categories are a closed enum so
// every dispatch site can match exhaustively instead of keying off strings.
package entity

import (
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
)

// Kind separates milestone-bearing entities from flavor content.
type Kind string

const (
	KindCore  Kind = "core"
	KindBonus Kind = "bonus"
)

// ParseKind parses a wire-format entity kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.TrimSpace(strings.ToLower(value))) {
	case KindCore:
		return KindCore, nil
	case KindBonus:
		return KindBonus, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeMappingEntityKindInvalid,
			"entity kind must be core or bonus", map[string]string{"entityType": value})
	}
}

// Category identifies the collection an entity belongs to.
type Category string

const (
	CategoryEnemy     Category = "enemy"
	CategoryEvent     Category = "event"
	CategoryNPC       Category = "npc"
	CategoryItem      Category = "item"
	CategoryQuest     Category = "quest"
	CategoryPractical Category = "practical"
	CategoryTrophy    Category = "trophy"
	CategoryMystery   Category = "mystery"
)

// Categories lists every category in stable declaration order.
var Categories = []Category{
	CategoryEnemy,
	CategoryEvent,
	CategoryNPC,
	CategoryItem,
	CategoryQuest,
	CategoryPractical,
	CategoryTrophy,
	CategoryMystery,
}

// ParseCategory parses a wire-format entity category.
func ParseCategory(value string) (Category, error) {
	c := Category(strings.TrimSpace(strings.ToLower(value)))
	switch c {
	case CategoryEnemy, CategoryEvent, CategoryNPC, CategoryItem, CategoryQuest,
		CategoryPractical, CategoryTrophy, CategoryMystery:
		return c, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodePoolEntityCategoryInvalid,
			"unknown entity category", map[string]string{"category": value})
	}
}

// Kind reports whether entities of this category count toward milestones.
func (c Category) Kind() Kind {
	switch c {
	case CategoryEnemy, CategoryEvent, CategoryNPC, CategoryItem, CategoryQuest:
		return KindCore
	case CategoryPractical, CategoryTrophy, CategoryMystery:
		return KindBonus
	default:
		return KindBonus
	}
}

// Rewards describes what discovering an entity grants.
type Rewards struct {
	Experience  int      `json:"experience,omitempty"`
	Items       []string `json:"items,omitempty"`
	Information []string `json:"information,omitempty"`
}

// Entity is one discoverable unit of session content.
type Entity struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`

	// MilestoneID and ProgressContribution are meaningful for core entities
	// only. Contributions of all core entities tied to one milestone are
	// authored to sum to 100; the progress calculator clamps regardless.
	MilestoneID          string `json:"milestoneId,omitempty"`
	ProgressContribution int    `json:"progressContribution,omitempty"`

	Rewards Rewards `json:"rewards,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Identity returns the value that uniquely identifies an entity within its
// category collection: the id, falling back to the name when no id is set.
func (e Entity) Identity() string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	return strings.TrimSpace(e.Name)
}

// Validate checks the fields every pool mutation requires.
func (e Entity) Validate() error {
	if e.Identity() == "" {
		return apperrors.New(apperrors.CodePoolEntityIdentityMissing, "entity id or name is required")
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	return nil
}

// merge applies incoming on top of base, incoming wins per field.
// Zero-valued incoming fields keep the base value, matching the shallow
// merge semantics of pool upserts.
func merge(base, incoming Entity) Entity {
	out := base
	if strings.TrimSpace(incoming.ID) != "" {
		out.ID = incoming.ID
	}
	if strings.TrimSpace(incoming.Name) != "" {
		out.Name = incoming.Name
	}
	if incoming.Description != "" {
		out.Description = incoming.Description
	}
	if incoming.MilestoneID != "" {
		out.MilestoneID = incoming.MilestoneID
	}
	if incoming.ProgressContribution != 0 {
		out.ProgressContribution = incoming.ProgressContribution
	}
	if incoming.Rewards.Experience != 0 {
		out.Rewards.Experience = incoming.Rewards.Experience
	}
	if len(incoming.Rewards.Items) > 0 {
		out.Rewards.Items = incoming.Rewards.Items
	}
	if len(incoming.Rewards.Information) > 0 {
		out.Rewards.Information = incoming.Rewards.Information
	}
	return out
}
