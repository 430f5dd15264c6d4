package business

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core"
)

var (
	// errors
	ErrEntityNotFound    = errors.New("business entity not found")
	ErrMilestoneNotFound = errors.New("payment milestone not found")
	ErrEntityNameExists  = errors.New("a business entity with this name already exists")
)

// DependencyError is returned when an entity cannot be deleted because payment milestones still refer to it.
type DependencyError struct {
	EntityName string
	Milestones []PaymentMilestone
}

func (err *DependencyError) Error() string {
	return fmt.Sprintf("cannot delete %q: %d payment milestone(s) depend on it", err.EntityName, len(err.Milestones))
}

type (
	Repository interface {
		CheckEntityNameUniqueness(ctx context.Context, name string, excludedIDs ...string) error
		CreateEntity(ctx context.Context, ent Entity) (Entity, error)
		GetEntityByID(ctx context.Context, id string) (Entity, error)
		// FilterEntities applies AND operation on available EntityFilter fields.
		// EntityFilter.Search does a case-insensitive match on Entity.Name or Entity.ContactPerson.
		FilterEntities(ctx context.Context, filter EntityFilter, ordering ...core.DBOrdering) ([]Entity, error)
		UpdateEntity(ctx context.Context, ent Entity) (Entity, error)
		DeleteEntity(ctx context.Context, id string) error

		CreateMilestone(ctx context.Context, m PaymentMilestone) (PaymentMilestone, error)
		GetMilestoneByID(ctx context.Context, id string) (PaymentMilestone, error)
		FilterMilestones(ctx context.Context, filter MilestoneFilter, ordering ...core.DBOrdering) ([]PaymentMilestone, error)
		UpdateMilestone(ctx context.Context, m PaymentMilestone) (PaymentMilestone, error)
		DeleteMilestone(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
		loc  *time.Location
	}
)

// NewService returns a business Service; loc interprets zoneless dates.
func NewService(repo Repository, conf *core.Config) *Service {
	loc := conf.Calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc}
}

func (svc *Service) Location() *time.Location { return svc.loc }

func (svc *Service) checkNameUniqueness(ctx context.Context, name string, excludedIDs ...string) error {
	if err := svc.repo.CheckEntityNameUniqueness(ctx, name, excludedIDs...); err != nil {
		if err == ErrEntityNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Entities

func (svc *Service) CreateEntity(ctx context.Context, ne NewEntity) (Entity, error) {
	if err := svc.checkNameUniqueness(ctx, ne.Name); err != nil {
		return Entity{}, err
	}

	now := time.Now().UTC()
	ent := Entity{
		ID:            uuid.New().String(),
		Name:          ne.Name,
		Category:      ne.Category,
		ContactPerson: nullString(ne.ContactPerson),
		ContactEmail:  nullString(ne.ContactEmail),
		ContractValue: ne.ContractValue,
		StartDate:     svc.nullTime(ne.StartDate),
		EndDate:       svc.nullTime(ne.EndDate),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateEntity(ctx, ent)
}

func (svc *Service) GetEntity(ctx context.Context, id string) (Entity, error) {
	return svc.repo.GetEntityByID(ctx, id)
}

func (svc *Service) QueryEntities(ctx context.Context, filter *EntityFilter, ordering []core.DBOrdering) ([]Entity, error) {
	if filter == nil {
		filter = new(EntityFilter)
	}
	return svc.repo.FilterEntities(ctx, *filter, ordering...)
}

func (svc *Service) UpdateEntity(ctx context.Context, orig Entity, ue UpdateEntity) (Entity, error) {
	if ue.Name != orig.Name {
		if err := svc.checkNameUniqueness(ctx, ue.Name, orig.ID); err != nil {
			return Entity{}, err
		}
	}

	ent := orig
	ent.Name = ue.Name
	ent.Category = ue.Category
	if ue.ContactPerson != nil {
		ent.ContactPerson = nullString(core.CleanString(*ue.ContactPerson))
	}
	if ue.ContactEmail != nil {
		ent.ContactEmail = nullString(*ue.ContactEmail)
	}
	if ue.ContractValue != nil {
		ent.ContractValue = *ue.ContractValue
	}
	ent.StartDate = svc.nullTime(deref(ue.StartDate))
	ent.EndDate = svc.nullTime(deref(ue.EndDate))
	ent.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEntity(ctx, ent)
}

// DeleteEntity deletes an entity without payment milestones.
// A *DependencyError listing the milestones is returned otherwise.
func (svc *Service) DeleteEntity(ctx context.Context, id string) error {
	ent, err := svc.repo.GetEntityByID(ctx, id)
	if err != nil {
		return err
	}
	milestones, err := svc.repo.FilterMilestones(ctx, MilestoneFilter{EntityIDs: []string{id}})
	if err != nil {
		return errors.Wrap(err, "querying entity milestones")
	}
	if len(milestones) > 0 {
		return &DependencyError{EntityName: ent.Name, Milestones: milestones}
	}
	return svc.repo.DeleteEntity(ctx, id)
}

// Milestones

func (svc *Service) CreateMilestone(ctx context.Context, ent Entity, nm NewMilestone) (PaymentMilestone, error) {
	due, err := core.ParseTimestamp(nm.DueDate, svc.loc)
	if err != nil {
		return PaymentMilestone{}, core.NewValidationError(err, core.FieldError{Field: "due_date", Error: err.Error()})
	}

	now := time.Now().UTC()
	m := PaymentMilestone{
		ID:         uuid.New().String(),
		EntityID:   ent.ID,
		Title:      nm.Title,
		Amount:     nm.Amount,
		DueDate:    due.UTC(),
		Status:     nm.Status,
		ReceivedOn: svc.nullTime(nm.ReceivedOn),
		Remarks:    nullString(nm.Remarks),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if m.IsReceived() && !m.ReceivedOn.Valid {
		m.ReceivedOn = null.TimeFrom(now)
	}
	return svc.repo.CreateMilestone(ctx, m)
}

func (svc *Service) GetMilestone(ctx context.Context, id string) (PaymentMilestone, error) {
	return svc.repo.GetMilestoneByID(ctx, id)
}

func (svc *Service) QueryMilestones(ctx context.Context, filter *MilestoneFilter, ordering []core.DBOrdering) ([]PaymentMilestone, error) {
	if filter == nil {
		filter = new(MilestoneFilter)
	}
	return svc.repo.FilterMilestones(ctx, *filter, ordering...)
}

func (svc *Service) UpdateMilestone(ctx context.Context, orig PaymentMilestone, um UpdateMilestone) (PaymentMilestone, error) {
	m := orig
	m.Title = um.Title
	m.Status = um.Status
	if um.Amount != nil {
		m.Amount = *um.Amount
	}
	if um.DueDate != "" {
		due, err := core.ParseTimestamp(um.DueDate, svc.loc)
		if err != nil {
			return PaymentMilestone{}, core.NewValidationError(err, core.FieldError{Field: "due_date", Error: err.Error()})
		}
		m.DueDate = due.UTC()
	}
	if um.ReceivedOn != nil {
		m.ReceivedOn = svc.nullTime(*um.ReceivedOn)
	}
	if um.Remarks != nil {
		m.Remarks = nullString(core.CleanString(*um.Remarks))
	}
	switch {
	case m.IsReceived() && !m.ReceivedOn.Valid:
		m.ReceivedOn = null.TimeFrom(time.Now().UTC())
	case !m.IsReceived():
		m.ReceivedOn = null.Time{}
	}
	m.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMilestone(ctx, m)
}

func (svc *Service) DeleteMilestone(ctx context.Context, id string) error {
	return svc.repo.DeleteMilestone(ctx, id)
}

// nullTime parses an already validated timestamp; empty and invalid values are null.
func (svc *Service) nullTime(s string) null.Time {
	t, err := core.ParseTimestamp(s, svc.loc)
	if err != nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

func nullString(s string) null.String {
	s = strings.TrimSpace(s)
	return null.NewString(s, s != "")
}
