package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/model"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func workshopInput(mode string, location string, date time.Time) WorkshopInput {
	in := WorkshopInput{
		Title:          strp("Intro to Go"),
		Description:    strp("Hands-on session"),
		Date:           &Date{date},
		Mode:           strp(mode),
		TargetAudience: strp("Students"),
	}
	if location != "" {
		in.Location = strp(location)
	}
	return in
}

// The test clock is 2026-02-01 12:00 UTC.
var (
	future = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	past   = time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
)

func TestCreateWorkshopLocationRule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alumni := e.register(t, "Ana", "a@x.com", "alumni")

	_, err := e.workshops.Create(ctx, alumni, workshopInput(model.ModeOffline, "", future))
	requireCode(t, err, apperrors.ErrValidation)

	w, err := e.workshops.Create(ctx, alumni, workshopInput(model.ModeOnline, "", future))
	require.NoError(t, err)
	require.Equal(t, model.WorkshopUpcoming, w.Status)
	require.Equal(t, 120, w.DurationMinutes)
	require.Equal(t, "Ana", w.Organizer.Name)

	_, err = e.workshops.Create(ctx, alumni, WorkshopInput{Title: strp("x")})
	requireCode(t, err, apperrors.ErrMissingField)
	require.Equal(t, []string{"description", "date", "mode", "targetAudience"}, apperrors.From(err).Details["missingFields"])

	student := e.register(t, "Sam", "s@x.com", "student")
	_, err = e.workshops.Create(ctx, student, workshopInput(model.ModeOnline, "", future))
	requireCode(t, err, apperrors.ErrForbidden)
}

func TestWorkshopRegisterCancelRestoresList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alumni := e.register(t, "Ana", "a@x.com", "alumni")
	early := e.register(t, "Eve", "e@x.com", "student")
	student := e.register(t, "Sam", "s@x.com", "student")

	w, err := e.workshops.Create(ctx, alumni, workshopInput(model.ModeHybrid, "Hall A", future))
	require.NoError(t, err)
	_, err = e.workshops.Register(ctx, early, w.ID)
	require.NoError(t, err)

	before, err := e.workshops.Get(ctx, w.ID)
	require.NoError(t, err)

	after, err := e.workshops.Register(ctx, student, w.ID)
	require.NoError(t, err)
	require.Len(t, after.Registrations, len(before.Registrations)+1)

	_, err = e.workshops.Register(ctx, student, w.ID)
	requireCode(t, err, apperrors.ErrAlreadyRegistered)

	restored, err := e.workshops.CancelRegistration(ctx, student, w.ID)
	require.NoError(t, err)
	require.Equal(t, before.Registrations, restored.Registrations)

	_, err = e.workshops.CancelRegistration(ctx, student, w.ID)
	requireCode(t, err, apperrors.ErrNotRegistered)

	notes, err := e.notifications.List(ctx, alumni)
	require.NoError(t, err)
	require.Len(t, notes.Notifications, 3)
	require.Equal(t, model.NotifyWorkshop, notes.Notifications[0].Type)
	require.Contains(t, notes.Notifications[0].Message, "Sam cancelled")
}

func TestWorkshopRegistrationRequiresUpcoming(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alumni := e.register(t, "Ana", "a@x.com", "alumni")
	student := e.register(t, "Sam", "s@x.com", "student")

	old, err := e.workshops.Create(ctx, alumni, workshopInput(model.ModeOnline, "", past))
	require.NoError(t, err)
	require.Equal(t, model.WorkshopCompleted, old.Status)
	_, err = e.workshops.Register(ctx, student, old.ID)
	requireCode(t, err, apperrors.ErrInvalidState)

	running := workshopInput(model.ModeOnline, "", time.Date(2026, 2, 1, 11, 30, 0, 0, time.UTC))
	w, err := e.workshops.Create(ctx, alumni, running)
	require.NoError(t, err)
	require.Equal(t, model.WorkshopOngoing, w.Status)

	next, err := e.workshops.Create(ctx, alumni, workshopInput(model.ModeOnline, "", future))
	require.NoError(t, err)
	_, err = e.workshops.Update(ctx, alumni, next.ID, WorkshopInput{Status: strp(model.WorkshopCancelled)})
	require.NoError(t, err)
	_, err = e.workshops.Register(ctx, student, next.ID)
	requireCode(t, err, apperrors.ErrInvalidState)
}

func TestWorkshopCapacity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alumni := e.register(t, "Ana", "a@x.com", "alumni")
	s1 := e.register(t, "S1", "s1@x.com", "student")
	s2 := e.register(t, "S2", "s2@x.com", "student")

	in := workshopInput(model.ModeOnline, "", future)
	in.Capacity = intp(1)
	w, err := e.workshops.Create(ctx, alumni, in)
	require.NoError(t, err)

	_, err = e.workshops.Register(ctx, s1, w.ID)
	require.NoError(t, err)
	_, err = e.workshops.Register(ctx, s2, w.ID)
	requireCode(t, err, apperrors.ErrWorkshopFull)
}

func TestWorkshopUpdateAndDeleteOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.register(t, "Ana", "a@x.com", "alumni")
	bob := e.register(t, "Bob", "b@x.com", "alumni")

	w, err := e.workshops.Create(ctx, ana, workshopInput(model.ModeOnline, "", future))
	require.NoError(t, err)

	_, err = e.workshops.Update(ctx, bob, w.ID, WorkshopInput{Title: strp("Hijacked")})
	requireCode(t, err, apperrors.ErrForbidden)
	requireCode(t, e.workshops.Delete(ctx, bob, w.ID), apperrors.ErrForbidden)

	updated, err := e.workshops.Update(ctx, ana, w.ID, WorkshopInput{Title: strp("Advanced Go")})
	require.NoError(t, err)
	require.Equal(t, "Advanced Go", updated.Title)
	require.Equal(t, "Hands-on session", updated.Description, "absent fields are kept")

	_, err = e.workshops.Update(ctx, ana, w.ID, WorkshopInput{Mode: strp(model.ModeOffline)})
	requireCode(t, err, apperrors.ErrValidation)

	require.NoError(t, e.workshops.Delete(ctx, ana, w.ID))
	_, err = e.workshops.Get(ctx, w.ID)
	requireCode(t, err, apperrors.ErrNotFound)
}

func TestWorkshopListings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.register(t, "Ana", "a@x.com", "alumni")
	bob := e.register(t, "Bob", "b@x.com", "alumni")

	_, err := e.workshops.Create(ctx, ana, workshopInput(model.ModeOnline, "", past))
	require.NoError(t, err)
	_, err = e.workshops.Create(ctx, bob, workshopInput(model.ModeOnline, "", future))
	require.NoError(t, err)

	all, err := e.workshops.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, future, all[0].Date, "latest date first")
	require.Equal(t, model.WorkshopUpcoming, all[0].Status)
	require.Equal(t, model.WorkshopCompleted, all[1].Status)

	byAna, err := e.workshops.ListByOrganizer(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, byAna, 1)
	require.Equal(t, ana.ID, byAna[0].OrganizerID)
}
