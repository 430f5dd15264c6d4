package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/business"
)

var (
	entityComparators = map[string]comparator[business.Entity]{
		"name":           func(a, b business.Entity) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
		"category":       func(a, b business.Entity) int { return strings.Compare(a.Category, b.Category) },
		"contract_value": func(a, b business.Entity) int { return compareFloats(a.ContractValue, b.ContractValue) },
		"created_at":     func(a, b business.Entity) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}
	milestoneComparators = map[string]comparator[business.PaymentMilestone]{
		"title":      func(a, b business.PaymentMilestone) int { return strings.Compare(a.Title, b.Title) },
		"amount":     func(a, b business.PaymentMilestone) int { return compareFloats(a.Amount, b.Amount) },
		"due_date":   func(a, b business.PaymentMilestone) int { return a.DueDate.Compare(b.DueDate) },
		"status":     func(a, b business.PaymentMilestone) int { return strings.Compare(a.Status, b.Status) },
		"created_at": func(a, b business.PaymentMilestone) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}
)

type businessRepository struct {
	entities   *table[business.Entity]
	milestones *table[business.PaymentMilestone]
}

var _ business.Repository = (*businessRepository)(nil) // interface compliance check

func NewBusinessRepository(db *DB) business.Repository {
	return &businessRepository{entities: db.entity, milestones: db.milestone}
}

func (repo *businessRepository) CheckEntityNameUniqueness(_ context.Context, name string, excludedIDs ...string) error {
	repo.entities.mutex.RLock()
	defer repo.entities.mutex.RUnlock()

	for _, ent := range repo.entities.rows {
		if strings.EqualFold(ent.Name, name) && !contains(excludedIDs, ent.ID) {
			return business.ErrEntityNameExists
		}
	}
	return nil
}

func (repo *businessRepository) CreateEntity(_ context.Context, ent business.Entity) (business.Entity, error) {
	repo.entities.mutex.Lock()
	defer repo.entities.mutex.Unlock()

	repo.entities.rows[ent.ID] = ent
	return ent, nil
}

func (repo *businessRepository) GetEntityByID(_ context.Context, id string) (business.Entity, error) {
	repo.entities.mutex.RLock()
	defer repo.entities.mutex.RUnlock()

	if ent, ok := repo.entities.rows[id]; ok {
		return ent, nil
	}
	return business.Entity{}, business.ErrEntityNotFound
}

func (repo *businessRepository) FilterEntities(
	_ context.Context,
	filter business.EntityFilter,
	ordering ...core.DBOrdering,
) ([]business.Entity, error) {
	repo.entities.mutex.RLock()
	defer repo.entities.mutex.RUnlock()

	entities := make([]business.Entity, 0)
	for _, ent := range repo.entities.rows {
		if filter.Search != "" && !containsFold(ent.Name, filter.Search) && !containsFold(ent.ContactPerson.String, filter.Search) {
			continue
		}
		if filter.Category != "" && ent.Category != filter.Category {
			continue
		}
		entities = append(entities, ent)
	}
	orderBy(entities, ordering, entityComparators, func(a, b business.Entity) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return entities, nil
}

func (repo *businessRepository) UpdateEntity(_ context.Context, ent business.Entity) (business.Entity, error) {
	repo.entities.mutex.Lock()
	defer repo.entities.mutex.Unlock()

	orig, ok := repo.entities.rows[ent.ID]
	if !ok {
		return business.Entity{}, business.ErrEntityNotFound
	}
	ent.CreatedAt = orig.CreatedAt
	repo.entities.rows[ent.ID] = ent
	return ent, nil
}

func (repo *businessRepository) DeleteEntity(_ context.Context, id string) error {
	// entities are always locked before milestones
	repo.entities.mutex.Lock()
	defer repo.entities.mutex.Unlock()
	repo.milestones.mutex.RLock()
	defer repo.milestones.mutex.RUnlock()

	ent, ok := repo.entities.rows[id]
	if !ok {
		return business.ErrEntityNotFound
	}
	// same guarantee as the milestone foreign key
	deps := make([]business.PaymentMilestone, 0)
	for _, m := range repo.milestones.rows {
		if m.EntityID == id {
			deps = append(deps, m)
		}
	}
	if len(deps) > 0 {
		return &business.DependencyError{EntityName: ent.Name, Milestones: deps}
	}
	delete(repo.entities.rows, id)
	return nil
}

func (repo *businessRepository) CreateMilestone(_ context.Context, m business.PaymentMilestone) (business.PaymentMilestone, error) {
	repo.entities.mutex.RLock()
	defer repo.entities.mutex.RUnlock()
	repo.milestones.mutex.Lock()
	defer repo.milestones.mutex.Unlock()

	if _, ok := repo.entities.rows[m.EntityID]; !ok {
		return business.PaymentMilestone{}, business.ErrEntityNotFound
	}
	repo.milestones.rows[m.ID] = m
	return m, nil
}

func (repo *businessRepository) GetMilestoneByID(_ context.Context, id string) (business.PaymentMilestone, error) {
	repo.milestones.mutex.RLock()
	defer repo.milestones.mutex.RUnlock()

	if m, ok := repo.milestones.rows[id]; ok {
		return m, nil
	}
	return business.PaymentMilestone{}, business.ErrMilestoneNotFound
}

func (repo *businessRepository) FilterMilestones(
	_ context.Context,
	filter business.MilestoneFilter,
	ordering ...core.DBOrdering,
) ([]business.PaymentMilestone, error) {
	repo.milestones.mutex.RLock()
	defer repo.milestones.mutex.RUnlock()

	milestones := make([]business.PaymentMilestone, 0)
	for _, m := range repo.milestones.rows {
		if filter.Match(m) {
			milestones = append(milestones, m)
		}
	}
	orderBy(milestones, ordering, milestoneComparators, func(a, b business.PaymentMilestone) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return milestones, nil
}

func (repo *businessRepository) UpdateMilestone(_ context.Context, m business.PaymentMilestone) (business.PaymentMilestone, error) {
	repo.milestones.mutex.Lock()
	defer repo.milestones.mutex.Unlock()

	orig, ok := repo.milestones.rows[m.ID]
	if !ok {
		return business.PaymentMilestone{}, business.ErrMilestoneNotFound
	}
	m.EntityID = orig.EntityID
	m.CreatedAt = orig.CreatedAt
	repo.milestones.rows[m.ID] = m
	return m, nil
}

func (repo *businessRepository) DeleteMilestone(_ context.Context, id string) error {
	repo.milestones.mutex.Lock()
	defer repo.milestones.mutex.Unlock()

	if _, ok := repo.milestones.rows[id]; !ok {
		return business.ErrMilestoneNotFound
	}
	delete(repo.milestones.rows, id)
	return nil
}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}
