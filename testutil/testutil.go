// Package testutil holds fixtures shared by the tests of the app packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/calendar"
	"github.com/trezcool/dashboard/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateEvent(
	t *testing.T,
	repo calendar.Repository,
	title, eventType string,
	start, end time.Time,
	createdBy string,
) calendar.Event {
	t.Helper()

	now := time.Now().UTC()
	evt := calendar.Event{
		ID:        uuid.New().String(),
		Title:     title,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		EventType: eventType,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	evt, err := repo.CreateEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}

func CreateEntity(t *testing.T, repo business.Repository, name, category string, contractValue float64) business.Entity {
	t.Helper()

	now := time.Now().UTC()
	ent := business.Entity{
		ID:            uuid.New().String(),
		Name:          name,
		Category:      category,
		ContractValue: contractValue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ent, err := repo.CreateEntity(context.Background(), ent)
	if err != nil {
		t.Fatalf("CreateEntity() failed: %v", err)
	}
	return ent
}

func CreateMilestone(
	t *testing.T,
	repo business.Repository,
	ent business.Entity,
	title string,
	amount float64,
	dueDate time.Time,
	status string,
) business.PaymentMilestone {
	t.Helper()

	now := time.Now().UTC()
	ms := business.PaymentMilestone{
		ID:        uuid.New().String(),
		EntityID:  ent.ID,
		Title:     title,
		Amount:    amount,
		DueDate:   dueDate.UTC(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == business.StatusReceived {
		ms.ReceivedOn = null.TimeFrom(dueDate.UTC())
	}
	ms, err := repo.CreateMilestone(context.Background(), ms)
	if err != nil {
		t.Fatalf("CreateMilestone() failed: %v", err)
	}
	return ms
}
