package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/business"
)

const (
	entityColumns    = `id, name, category, contact_person, contact_email, contract_value, start_date, end_date, created_at, updated_at`
	milestoneColumns = `id, entity_id, title, amount, due_date, status, received_on, remarks, created_at, updated_at`

	// postgres error codes
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

var (
	entityOrderings = map[string]string{
		"name":           "LOWER(name)",
		"category":       "category",
		"contract_value": "contract_value",
		"created_at":     "created_at",
	}
	milestoneOrderings = map[string]string{
		"title":      "title",
		"amount":     "amount",
		"due_date":   "due_date",
		"status":     "status",
		"created_at": "created_at",
	}
)

type entityRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Category      string      `db:"category"`
	ContactPerson null.String `db:"contact_person"`
	ContactEmail  null.String `db:"contact_email"`
	ContractValue float64     `db:"contract_value"`
	StartDate     null.Time   `db:"start_date"`
	EndDate       null.Time   `db:"end_date"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func newEntityRow(ent business.Entity) entityRow {
	return entityRow{
		ID:            ent.ID,
		Name:          ent.Name,
		Category:      ent.Category,
		ContactPerson: ent.ContactPerson,
		ContactEmail:  ent.ContactEmail,
		ContractValue: ent.ContractValue,
		StartDate:     ent.StartDate,
		EndDate:       ent.EndDate,
		CreatedAt:     ent.CreatedAt.UTC(),
		UpdatedAt:     ent.UpdatedAt.UTC(),
	}
}

func (row entityRow) entity() business.Entity {
	return business.Entity{
		ID:            row.ID,
		Name:          row.Name,
		Category:      row.Category,
		ContactPerson: row.ContactPerson,
		ContactEmail:  row.ContactEmail,
		ContractValue: row.ContractValue,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

type milestoneRow struct {
	ID         string      `db:"id"`
	EntityID   string      `db:"entity_id"`
	Title      string      `db:"title"`
	Amount     float64     `db:"amount"`
	DueDate    time.Time   `db:"due_date"`
	Status     string      `db:"status"`
	ReceivedOn null.Time   `db:"received_on"`
	Remarks    null.String `db:"remarks"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func newMilestoneRow(m business.PaymentMilestone) milestoneRow {
	return milestoneRow{
		ID:         m.ID,
		EntityID:   m.EntityID,
		Title:      m.Title,
		Amount:     m.Amount,
		DueDate:    m.DueDate,
		Status:     m.Status,
		ReceivedOn: m.ReceivedOn,
		Remarks:    m.Remarks,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func (row milestoneRow) milestone() business.PaymentMilestone {
	return business.PaymentMilestone{
		ID:         row.ID,
		EntityID:   row.EntityID,
		Title:      row.Title,
		Amount:     row.Amount,
		DueDate:    row.DueDate,
		Status:     row.Status,
		ReceivedOn: row.ReceivedOn,
		Remarks:    row.Remarks,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type businessRepository struct {
	db *sqlx.DB
}

var _ business.Repository = (*businessRepository)(nil) // interface compliance check

func NewBusinessRepository(db *sqlx.DB) business.Repository {
	return &businessRepository{db: db}
}

func (repo *businessRepository) CheckEntityNameUniqueness(ctx context.Context, name string, excludedIDs ...string) error {
	var cond conditions
	cond.add("LOWER(name) = LOWER(?)", name)
	if len(excludedIDs) > 0 {
		cond.add("NOT (id = ANY(?))", pq.Array(excludedIDs))
	}

	var found bool
	q := `SELECT EXISTS (SELECT 1 FROM business_entity` + cond.where() + `)`
	if err := repo.db.GetContext(ctx, &found, q, cond.args...); err != nil {
		return errors.Wrap(err, "checking entity name uniqueness")
	}
	if found {
		return business.ErrEntityNameExists
	}
	return nil
}

func (repo *businessRepository) CreateEntity(ctx context.Context, ent business.Entity) (business.Entity, error) {
	q := `INSERT INTO business_entity (` + entityColumns + `) VALUES (
		:id, :name, :category, :contact_person, :contact_email, :contract_value, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newEntityRow(ent)); err != nil {
		if pqErrorCode(err) == pgUniqueViolation {
			return business.Entity{}, business.ErrEntityNameExists
		}
		return business.Entity{}, errors.Wrap(err, "inserting entity")
	}
	return repo.GetEntityByID(ctx, ent.ID)
}

func (repo *businessRepository) GetEntityByID(ctx context.Context, id string) (business.Entity, error) {
	var row entityRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+entityColumns+` FROM business_entity WHERE id = $1`, id); err != nil {
		return business.Entity{}, trapNoRowsErr(err, business.ErrEntityNotFound, "getting entity")
	}
	return row.entity(), nil
}

func (repo *businessRepository) FilterEntities(
	ctx context.Context,
	filter business.EntityFilter,
	ordering ...core.DBOrdering,
) ([]business.Entity, error) {
	var cond conditions
	if filter.Search != "" {
		val := likePattern(filter.Search)
		cond.add("name ILIKE ? OR contact_person ILIKE ?", val, val)
	}
	if filter.Category != "" {
		cond.add("category = ?", filter.Category)
	}

	rows := make([]entityRow, 0)
	q := `SELECT ` + entityColumns + ` FROM business_entity` + cond.where() +
		` ORDER BY ` + core.OrderBy(ordering, entityOrderings, "LOWER(name) ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "querying entities")
	}

	entities := make([]business.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, row.entity())
	}
	return entities, nil
}

func (repo *businessRepository) UpdateEntity(ctx context.Context, ent business.Entity) (business.Entity, error) {
	q := `UPDATE business_entity SET
		name = :name, category = :category, contact_person = :contact_person, contact_email = :contact_email,
		contract_value = :contract_value, start_date = :start_date, end_date = :end_date, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newEntityRow(ent))
	if err != nil {
		if pqErrorCode(err) == pgUniqueViolation {
			return business.Entity{}, business.ErrEntityNameExists
		}
		return business.Entity{}, errors.Wrap(err, "updating entity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return business.Entity{}, business.ErrEntityNotFound
	}
	return repo.GetEntityByID(ctx, ent.ID)
}

// DeleteEntity relies on the milestone foreign key to refuse deleting an entity still referenced.
func (repo *businessRepository) DeleteEntity(ctx context.Context, id string) error {
	ent, err := repo.GetEntityByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err = repo.db.ExecContext(ctx, `DELETE FROM business_entity WHERE id = $1`, id); err != nil {
		if pqErrorCode(err) != pgForeignKeyViolation {
			return errors.Wrap(err, "deleting entity")
		}
		deps, ferr := repo.FilterMilestones(ctx, business.MilestoneFilter{EntityIDs: []string{id}})
		if ferr != nil {
			return errors.Wrap(ferr, "listing dependent milestones")
		}
		return &business.DependencyError{EntityName: ent.Name, Milestones: deps}
	}
	return nil
}

func (repo *businessRepository) CreateMilestone(ctx context.Context, m business.PaymentMilestone) (business.PaymentMilestone, error) {
	q := `INSERT INTO payment_milestone (` + milestoneColumns + `) VALUES (
		:id, :entity_id, :title, :amount, :due_date, :status, :received_on, :remarks, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newMilestoneRow(m)); err != nil {
		if pqErrorCode(err) == pgForeignKeyViolation {
			return business.PaymentMilestone{}, business.ErrEntityNotFound
		}
		return business.PaymentMilestone{}, errors.Wrap(err, "inserting milestone")
	}
	return repo.GetMilestoneByID(ctx, m.ID)
}

func (repo *businessRepository) GetMilestoneByID(ctx context.Context, id string) (business.PaymentMilestone, error) {
	var row milestoneRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+milestoneColumns+` FROM payment_milestone WHERE id = $1`, id); err != nil {
		return business.PaymentMilestone{}, trapNoRowsErr(err, business.ErrMilestoneNotFound, "getting milestone")
	}
	return row.milestone(), nil
}

func (repo *businessRepository) FilterMilestones(
	ctx context.Context,
	filter business.MilestoneFilter,
	ordering ...core.DBOrdering,
) ([]business.PaymentMilestone, error) {
	var cond conditions
	if filter.EntityIDs != nil {
		cond.add("entity_id = ANY(?)", pq.Array(filter.EntityIDs))
	}
	if filter.Statuses != nil {
		cond.add("status = ANY(?)", pq.Array(filter.Statuses))
	}
	if !filter.DueFrom.IsZero() {
		cond.add("due_date >= ?", filter.DueFrom)
	}
	if !filter.DueTo.IsZero() {
		cond.add("due_date < ?", filter.DueTo)
	}

	rows := make([]milestoneRow, 0)
	q := `SELECT ` + milestoneColumns + ` FROM payment_milestone` + cond.where() +
		` ORDER BY ` + core.OrderBy(ordering, milestoneOrderings, "due_date ASC, id ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "querying milestones")
	}

	milestones := make([]business.PaymentMilestone, 0, len(rows))
	for _, row := range rows {
		milestones = append(milestones, row.milestone())
	}
	return milestones, nil
}

func (repo *businessRepository) UpdateMilestone(ctx context.Context, m business.PaymentMilestone) (business.PaymentMilestone, error) {
	q := `UPDATE payment_milestone SET
		title = :title, amount = :amount, due_date = :due_date, status = :status,
		received_on = :received_on, remarks = :remarks, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newMilestoneRow(m))
	if err != nil {
		return business.PaymentMilestone{}, errors.Wrap(err, "updating milestone")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return business.PaymentMilestone{}, business.ErrMilestoneNotFound
	}
	return repo.GetMilestoneByID(ctx, m.ID)
}

func (repo *businessRepository) DeleteMilestone(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM payment_milestone WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting milestone")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return business.ErrMilestoneNotFound
	}
	return nil
}
