package service

import (
	"context"
	"errors"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanInput carries the bilingual plan fields for create and update.
type PlanInput struct {
	NameAr           string
	NameEn           string
	DescriptionAr    string
	DescriptionEn    string
	Price            float64
	NumberOfSessions int
	Duration         int
	Features         []domain.PlanFeature
	Category         domain.PlanCategory
	Image            string
}

// PlanService manages the plan catalog. Plans are bilingual records;
// reads for trainees are localized, admin reads see both languages.
type PlanService interface {
	Create(ctx context.Context, in PlanInput) (*domain.Plan, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetLocalized(ctx context.Context, id primitive.ObjectID, lang domain.Language) (*domain.LocalizedPlan, error)
	List(ctx context.Context, active *bool) ([]domain.Plan, error)
	ListLocalized(ctx context.Context, lang domain.Language) ([]domain.LocalizedPlan, error)
	Update(ctx context.Context, id primitive.ObjectID, in PlanInput) (*domain.Plan, error)
	// Deactivate soft-deletes: the plan disappears from the catalog but
	// existing bookings keep referencing it.
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type planService struct {
	planRepo repository.PlanRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository) PlanService {
	return &planService{planRepo: planRepo}
}

func (s *planService) Create(ctx context.Context, in PlanInput) (*domain.Plan, error) {
	if in.NameEn == "" && in.NameAr == "" {
		return nil, ErrPlanNameRequired
	}
	if in.NumberOfSessions <= 0 {
		return nil, ErrPlanSessionsRequired
	}

	plan := &domain.Plan{
		NameAr:           in.NameAr,
		NameEn:           in.NameEn,
		DescriptionAr:    in.DescriptionAr,
		DescriptionEn:    in.DescriptionEn,
		Price:            in.Price,
		NumberOfSessions: in.NumberOfSessions,
		Duration:         in.Duration,
		Features:         in.Features,
		Category:         in.Category,
		IsActive:         true,
		Image:            in.Image,
	}

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

func (s *planService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) GetLocalized(ctx context.Context, id primitive.ObjectID, lang domain.Language) (*domain.LocalizedPlan, error) {
	plan, err := s.planRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	lp := plan.Localize(lang)
	return &lp, nil
}

func (s *planService) List(ctx context.Context, active *bool) ([]domain.Plan, error) {
	return s.planRepo.List(ctx, active)
}

// ListLocalized returns the active catalog projected into one language,
// cheapest first.
func (s *planService) ListLocalized(ctx context.Context, lang domain.Language) ([]domain.LocalizedPlan, error) {
	active := true
	plans, err := s.planRepo.List(ctx, &active)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LocalizedPlan, 0, len(plans))
	for i := range plans {
		out = append(out, plans[i].Localize(lang))
	}
	return out, nil
}

func (s *planService) Update(ctx context.Context, id primitive.ObjectID, in PlanInput) (*domain.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.NameAr != "" {
		plan.NameAr = in.NameAr
	}
	if in.NameEn != "" {
		plan.NameEn = in.NameEn
	}
	if in.DescriptionAr != "" {
		plan.DescriptionAr = in.DescriptionAr
	}
	if in.DescriptionEn != "" {
		plan.DescriptionEn = in.DescriptionEn
	}
	if in.Price > 0 {
		plan.Price = in.Price
	}
	if in.NumberOfSessions > 0 {
		plan.NumberOfSessions = in.NumberOfSessions
	}
	if in.Duration > 0 {
		plan.Duration = in.Duration
	}
	if in.Features != nil {
		plan.Features = in.Features
	}
	if in.Category != "" {
		plan.Category = in.Category
	}
	if in.Image != "" {
		plan.Image = in.Image
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	plan.IsActive = false
	return s.planRepo.Update(ctx, plan)
}
