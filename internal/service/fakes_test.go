package service

import (
	"context"
	"sort"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository doubles. They keep values, hand out copies, and
// implement the same not-found semantics as the mongo implementations.

type memUnitOfWork struct{}

func (memUnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	user.ID = id
	r.users[id] = *user
	return id, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (r *memUserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memTrainerRepo struct {
	trainers map[primitive.ObjectID]domain.Trainer
}

func newMemTrainerRepo() *memTrainerRepo {
	return &memTrainerRepo{trainers: make(map[primitive.ObjectID]domain.Trainer)}
}

func (r *memTrainerRepo) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	trainer.ID = id
	if trainer.Status == "" {
		trainer.Status = domain.TrainerPending
	}
	r.trainers[id] = *trainer
	return id, nil
}

func (r *memTrainerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	t, ok := r.trainers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (r *memTrainerRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error) {
	for _, t := range r.trainers {
		if t.UserID == userID {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTrainerRepo) List(ctx context.Context, status *domain.TrainerStatus) ([]domain.Trainer, error) {
	out := []domain.Trainer{}
	for _, t := range r.trainers {
		if status == nil || t.Status == *status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTrainerRepo) Update(ctx context.Context, trainer *domain.Trainer) error {
	if _, ok := r.trainers[trainer.ID]; !ok {
		return repository.ErrNotFound
	}
	r.trainers[trainer.ID] = *trainer
	return nil
}

func (r *memTrainerRepo) AddAssignedTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
	t, ok := r.trainers[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range t.AssignedTrainees {
		if id == traineeID {
			return nil
		}
	}
	t.AssignedTrainees = append(t.AssignedTrainees, traineeID)
	r.trainers[trainerID] = t
	return nil
}

func (r *memTrainerRepo) RemoveAssignedTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
	t, ok := r.trainers[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := t.AssignedTrainees[:0]
	for _, id := range t.AssignedTrainees {
		if id != traineeID {
			kept = append(kept, id)
		}
	}
	t.AssignedTrainees = kept
	r.trainers[trainerID] = t
	return nil
}

func (r *memTrainerRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	for id, t := range r.trainers {
		if t.UserID == userID {
			delete(r.trainers, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memTraineeRepo struct {
	trainees map[primitive.ObjectID]domain.Trainee
}

func newMemTraineeRepo() *memTraineeRepo {
	return &memTraineeRepo{trainees: make(map[primitive.ObjectID]domain.Trainee)}
}

func (r *memTraineeRepo) Create(ctx context.Context, trainee *domain.Trainee) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	trainee.ID = id
	r.trainees[id] = *trainee
	return id, nil
}

func (r *memTraineeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainee, error) {
	t, ok := r.trainees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (r *memTraineeRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainee, error) {
	for _, t := range r.trainees {
		if t.UserID == userID {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTraineeRepo) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Trainee, error) {
	out := []domain.Trainee{}
	for _, id := range ids {
		if t, ok := r.trainees[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTraineeRepo) Update(ctx context.Context, trainee *domain.Trainee) error {
	if _, ok := r.trainees[trainee.ID]; !ok {
		return repository.ErrNotFound
	}
	r.trainees[trainee.ID] = *trainee
	return nil
}

func (r *memTraineeRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	for id, t := range r.trainees {
		if t.UserID == userID {
			delete(r.trainees, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memPlanRepo struct {
	plans map[primitive.ObjectID]domain.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[primitive.ObjectID]domain.Plan)}
}

func (r *memPlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	plan.ID = id
	if plan.Duration <= 0 {
		plan.Duration = domain.DefaultSessionDuration
	}
	r.plans[id] = *plan
	return id, nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *memPlanRepo) GetActiveByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *memPlanRepo) List(ctx context.Context, active *bool) ([]domain.Plan, error) {
	out := []domain.Plan{}
	for _, p := range r.plans {
		if active == nil || p.IsActive == *active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	r.plans[plan.ID] = *plan
	return nil
}

type memBookingRepo struct {
	bookings map[primitive.ObjectID]domain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[primitive.ObjectID]domain.Booking)}
}

func (r *memBookingRepo) Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	booking.ID = id
	if booking.Status == "" {
		booking.Status = domain.BookingPending
	}
	r.bookings[id] = *booking
	return id, nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (r *memBookingRepo) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	out := []domain.Booking{}
	for _, b := range r.bookings {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.TraineeID != nil && b.TraineeID != *filter.TraineeID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *memBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	if _, ok := r.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	r.bookings[booking.ID] = *booking
	return nil
}

type memSessionRepo struct {
	sessions map[primitive.ObjectID]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[primitive.ObjectID]domain.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	session.ID = id
	r.sessions[id] = *session
	return id, nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (r *memSessionRepo) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]domain.Session, error) {
	out := []domain.Session{}
	for _, s := range r.sessions {
		if s.BookingID == bookingID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionOrder < out[j].SessionOrder })
	return out, nil
}

func (r *memSessionRepo) List(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	out := []domain.Session{}
	for _, s := range r.sessions {
		if filter.TrainerID != nil && s.TrainerID != *filter.TrainerID {
			continue
		}
		if filter.TraineeID != nil && s.TraineeID != *filter.TraineeID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.Date != nil {
			y1, m1, d1 := filter.Date.Date()
			y2, m2, d2 := s.ScheduledDate.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *domain.Session) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) UpdateStatusByBooking(ctx context.Context, bookingID primitive.ObjectID, from []domain.SessionStatus, to domain.SessionStatus) error {
	for id, s := range r.sessions {
		if s.BookingID != bookingID {
			continue
		}
		for _, f := range from {
			if s.Status == f {
				s.Status = to
				r.sessions[id] = s
				break
			}
		}
	}
	return nil
}

func (r *memSessionRepo) ReassignTrainerByBooking(ctx context.Context, bookingID primitive.ObjectID, statuses []domain.SessionStatus, trainerID primitive.ObjectID) error {
	for id, s := range r.sessions {
		if s.BookingID != bookingID {
			continue
		}
		for _, st := range statuses {
			if s.Status == st {
				s.TrainerID = trainerID
				r.sessions[id] = s
				break
			}
		}
	}
	return nil
}

// fixture bundles every fake plus the two lifecycle services wired over
// them, ready for a test to seed.
type fixture struct {
	users    *memUserRepo
	trainers *memTrainerRepo
	trainees *memTraineeRepo
	plans    *memPlanRepo
	bookings *memBookingRepo
	sessions *memSessionRepo

	bookingSvc BookingService
	sessionSvc SessionService
	userSvc    UserService
}

func newFixture() *fixture {
	f := &fixture{
		users:    newMemUserRepo(),
		trainers: newMemTrainerRepo(),
		trainees: newMemTraineeRepo(),
		plans:    newMemPlanRepo(),
		bookings: newMemBookingRepo(),
		sessions: newMemSessionRepo(),
	}
	uow := memUnitOfWork{}
	f.bookingSvc = NewBookingService(f.bookings, f.sessions, f.trainers, f.trainees, f.plans, uow)
	f.sessionSvc = NewSessionService(f.sessions, f.bookings, f.trainers, f.trainees, f.plans, uow)
	f.userSvc = NewUserService(f.users, f.trainers, f.trainees, uow)
	return f
}

func (f *fixture) seedPlan(sessions int, price float64) *domain.Plan {
	plan := &domain.Plan{
		NameEn:           "City Driving",
		NameAr:           "قيادة المدينة",
		Price:            price,
		NumberOfSessions: sessions,
		IsActive:         true,
		Category:         domain.CategoryBeginner,
	}
	_, _ = f.plans.Create(context.Background(), plan)
	return plan
}

func (f *fixture) seedTrainer(status domain.TrainerStatus) *domain.Trainer {
	trainer := &domain.Trainer{
		UserID: primitive.NewObjectID(),
		Status: status,
	}
	_, _ = f.trainers.Create(context.Background(), trainer)
	return trainer
}

func (f *fixture) seedTrainee() *domain.Trainee {
	trainee := &domain.Trainee{
		UserID:            primitive.NewObjectID(),
		PreferredLanguage: domain.LanguageEnglish,
	}
	_, _ = f.trainees.Create(context.Background(), trainee)
	return trainee
}

func (f *fixture) seedBooking(trainee *domain.Trainee, plan *domain.Plan, status domain.BookingStatus, trainerID *primitive.ObjectID) *domain.Booking {
	booking := &domain.Booking{
		TraineeID:  trainee.ID,
		PlanID:     plan.ID,
		Status:     status,
		TrainerID:  trainerID,
		TotalPrice: plan.Price,
	}
	_, _ = f.bookings.Create(context.Background(), booking)
	return booking
}

func (f *fixture) seedSession(booking *domain.Booking, order int, status domain.SessionStatus) *domain.Session {
	var trainerID primitive.ObjectID
	if booking.TrainerID != nil {
		trainerID = *booking.TrainerID
	}
	session := &domain.Session{
		BookingID:    booking.ID,
		TraineeID:    booking.TraineeID,
		TrainerID:    trainerID,
		PlanID:       booking.PlanID,
		SessionOrder: order,
		Status:       status,
		StartTime:    "10:00",
		EndTime:      "10:50",
		Duration:     domain.DefaultSessionDuration,
	}
	id, _ := f.sessions.Create(context.Background(), session)
	b, _ := f.bookings.GetByID(context.Background(), booking.ID)
	b.SessionIDs = append(b.SessionIDs, id)
	_ = f.bookings.Update(context.Background(), b)
	booking.SessionIDs = b.SessionIDs
	return session
}
