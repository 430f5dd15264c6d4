package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/business"
)

// topEntities is the number of entities charted before folding the rest into OthersLabel.
const topEntities = 5

type (
	// Amount is a money total along with its display label.
	Amount struct {
		Value float64 `json:"value"`
		Label string  `json:"label"`
	}

	Totals struct {
		ContractValue Amount `json:"contract_value"`
		Received      Amount `json:"received"`
		Pending       Amount `json:"pending"`
		Entities      int    `json:"entities"`
		Milestones    int    `json:"milestones"`
	}

	Finance struct {
		// FiscalYear is the fiscal year the milestones were filtered on, "" for all time.
		FiscalYear          string  `json:"fiscal_year"`
		Totals              Totals  `json:"totals"`
		RevenueByEntity     []Point `json:"revenue_by_entity"`
		RevenueByFiscalYear []Point `json:"revenue_by_fiscal_year"`
		PendingByEntity     []Point `json:"pending_by_entity"`
		MilestonesByStatus  []Point `json:"milestones_by_status"`
	}

	Service struct {
		repo business.Repository
		loc  *time.Location
	}
)

func NewService(repo business.Repository, conf *core.Config) *Service {
	loc := conf.Calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc}
}

// Finance builds the finance dashboard, restricted to the milestones due in fiscal year fy when set.
func (svc *Service) Finance(ctx context.Context, fy string) (Finance, error) {
	var msFilter business.MilestoneFilter
	if fy != "" {
		from, to, err := FiscalYearRange(fy, svc.loc)
		if err != nil {
			return Finance{}, err
		}
		msFilter.DueFrom, msFilter.DueTo = from, to
	}

	var (
		entities   []business.Entity
		milestones []business.PaymentMilestone
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		entities, err = svc.repo.FilterEntities(gctx, business.EntityFilter{})
		return errors.Wrap(err, "querying entities")
	})
	g.Go(func() (err error) {
		milestones, err = svc.repo.FilterMilestones(gctx, msFilter)
		return errors.Wrap(err, "querying milestones")
	})
	if err := g.Wait(); err != nil {
		return Finance{}, err
	}
	return svc.finance(fy, entities, milestones), nil
}

func (svc *Service) finance(fy string, entities []business.Entity, milestones []business.PaymentMilestone) Finance {
	names := make(map[string]string, len(entities))
	var contractValue float64
	for _, ent := range entities {
		names[ent.ID] = ent.Name
		contractValue += SafeNumber(ent.ContractValue)
	}
	entityName := func(m business.PaymentMilestone) string {
		if name, ok := names[m.EntityID]; ok {
			return name
		}
		return OthersLabel
	}
	amount := func(m business.PaymentMilestone) float64 { return m.Amount }

	var received, pending []business.PaymentMilestone
	for _, m := range milestones {
		if m.IsReceived() {
			received = append(received, m)
		} else {
			pending = append(pending, m)
		}
	}

	byYear := SumBy(received, func(m business.PaymentMilestone) string {
		return FiscalYear(svc.receivedOn(m))
	}, amount)
	sort.SliceStable(byYear, func(i, j int) bool { return byYear[i].Label < byYear[j].Label })

	receivedTotal := Total(SumBy(received, entityName, amount))
	pendingTotal := Total(SumBy(pending, entityName, amount))

	return Finance{
		FiscalYear: fy,
		Totals: Totals{
			ContractValue: newAmount(contractValue),
			Received:      newAmount(receivedTotal),
			Pending:       newAmount(pendingTotal),
			Entities:      len(entities),
			Milestones:    len(milestones),
		},
		RevenueByEntity:     TopN(SumBy(received, entityName, amount), topEntities),
		RevenueByFiscalYear: WithShares(byYear),
		PendingByEntity:     TopN(SumBy(pending, entityName, amount), topEntities),
		MilestonesByStatus: WithShares(CountBy(milestones, func(m business.PaymentMilestone) string {
			return m.Status
		})),
	}
}

// receivedOn falls back to the due date for milestones received on an unknown date.
func (svc *Service) receivedOn(m business.PaymentMilestone) time.Time {
	if m.ReceivedOn.Valid {
		return m.ReceivedOn.Time.In(svc.loc)
	}
	return m.DueDate.In(svc.loc)
}

func newAmount(v float64) Amount {
	return Amount{Value: Round(v, 2), Label: FormatAmount(v)}
}
