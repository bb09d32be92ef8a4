package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanCategory groups catalog plans by difficulty.
type PlanCategory string

const (
	CategoryBeginner     PlanCategory = "beginner"
	CategoryIntermediate PlanCategory = "intermediate"
	CategoryAdvanced     PlanCategory = "advanced"
	CategorySpecialist   PlanCategory = "specialist"
)

// DefaultSessionDuration is the per-session duration in minutes when a
// plan does not specify one.
const DefaultSessionDuration = 50

// PlanFeature is one bilingual bullet point of a plan's feature list.
type PlanFeature struct {
	TextAr string `bson:"textAr" json:"textAr"`
	TextEn string `bson:"textEn" json:"textEn"`
}

// Plan is a purchasable lesson package. Plans are soft-deleted: delete
// only flips IsActive, existing bookings keep referencing the record.
type Plan struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NameAr           string             `bson:"nameAr" json:"nameAr"`
	NameEn           string             `bson:"nameEn" json:"nameEn"`
	DescriptionAr    string             `bson:"descriptionAr" json:"descriptionAr"`
	DescriptionEn    string             `bson:"descriptionEn" json:"descriptionEn"`
	Price            float64            `bson:"price" json:"price"`
	NumberOfSessions int                `bson:"numberOfSessions" json:"numberOfSessions"`
	Duration         int                `bson:"duration" json:"duration"` // Minutes per session
	Features         []PlanFeature      `bson:"features" json:"features"`
	Category         PlanCategory       `bson:"category" json:"category"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LocalizedPlan is the stable single-language read projection of a Plan.
type LocalizedPlan struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Price            float64      `json:"price"`
	NumberOfSessions int          `json:"numberOfSessions"`
	Duration         int          `json:"duration"`
	Features         []string     `json:"features"`
	Category         PlanCategory `json:"category"`
	IsActive         bool         `json:"isActive"`
	Image            string       `json:"image,omitempty"`
}

// Localize projects the plan into a single language. Localization is a
// read-side concern only; stored data is always bilingual.
func (p *Plan) Localize(lang Language) LocalizedPlan {
	lp := LocalizedPlan{
		ID:               p.ID.Hex(),
		Price:            p.Price,
		NumberOfSessions: p.NumberOfSessions,
		Duration:         p.Duration,
		Category:         p.Category,
		IsActive:         p.IsActive,
		Image:            p.Image,
	}
	switch lang {
	case LanguageArabic:
		lp.Name = p.NameAr
		lp.Description = p.DescriptionAr
		for _, f := range p.Features {
			lp.Features = append(lp.Features, f.TextAr)
		}
	default:
		lp.Name = p.NameEn
		lp.Description = p.DescriptionEn
		for _, f := range p.Features {
			lp.Features = append(lp.Features, f.TextEn)
		}
	}
	return lp
}
