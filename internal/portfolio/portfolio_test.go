package portfolio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeNotifier struct {
	calls int
	err   error
}

func (n *fakeNotifier) NotifyNewMessage(context.Context, *models.Message) error {
	n.calls++
	return n.err
}

func ptr[T any](v T) *T { return &v }

func validMessage() MessagePatch {
	return MessagePatch{
		Name:    ptr(" Ada "),
		Email:   ptr("ada@example.com"),
		Message: ptr("Hello there"),
	}
}

func TestProjectsCRUD(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	rec := &recorder{}
	svc := NewProjects(store, rec)

	p, err := svc.Create(ctx, ProjectPatch{Title: ptr("Folio"), Description: ptr("CMS")})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{}, p.Technologies)
	assert.False(t, p.CreatedAt.IsZero())

	next, prev, err := svc.Update(ctx, p.ID, ProjectPatch{Featured: ptr(true)})
	require.NoError(t, err)
	assert.True(t, next.Featured)
	assert.False(t, prev.Featured)
	assert.Equal(t, "Folio", next.Title)

	_, err = svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, []string{"project.created", "project.updated", "project.deleted"}, rec.types())
}

func TestProjectsValidation(t *testing.T) {
	ctx := context.Background()
	dir, store := testutil.TestStore(t)
	svc := NewProjects(store, nil)

	_, err := svc.Create(ctx, ProjectPatch{Description: ptr("no title")})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")

	_, statErr := os.Stat(filepath.Join(dir, "projects.json"))
	assert.True(t, os.IsNotExist(statErr), "rejected create must not write")

	p, err := svc.Create(ctx, ProjectPatch{Title: ptr("ok"), Description: ptr("d")})
	require.NoError(t, err)
	_, _, err = svc.Update(ctx, p.ID, ProjectPatch{Title: ptr("")})
	require.True(t, errors.As(err, &verr))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Title)
}

func TestProjectsListOrder(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	svc := NewProjects(store, nil)

	for _, in := range []ProjectPatch{
		{Title: ptr("b"), Description: ptr("d"), Order: ptr(2)},
		{Title: ptr("a"), Description: ptr("d"), Order: ptr(1)},
		{Title: ptr("c"), Description: ptr("d"), Order: ptr(1)},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].Order)
	assert.Equal(t, 1, items[1].Order)
	assert.Equal(t, "b", items[2].Title)
}

func TestSkillsWrappedFile(t *testing.T) {
	ctx := context.Background()
	dir, store := testutil.TestStore(t)
	svc := NewSkills(store, nil)

	_, err := svc.Create(ctx, SkillPatch{Name: ptr("Go"), Category: ptr("backend"), Level: ptr(90)})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "skills.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"skills": [`)

	_, err = svc.Create(ctx, SkillPatch{Name: ptr("Rust"), Category: ptr("backend"), Level: ptr(120)})
	var verr *apperr.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestMessagesCreatePersistsBeforeNotify(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	n := &fakeNotifier{err: errors.New("smtp down")}
	svc := NewMessages(store, n, nil)

	m, err := svc.Create(ctx, validMessage())
	require.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Equal(t, "Ada", m.Name)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "message stays stored when notification fails")
}

func TestMessagesContactNotifiesFirst(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	n := &fakeNotifier{err: errors.New("smtp down")}
	svc := NewMessages(store, n, nil)

	_, err := svc.Contact(ctx, validMessage())
	require.ErrorIs(t, err, apperr.ErrUpstream)
	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	n.err = nil
	_, err = svc.Contact(ctx, validMessage())
	require.NoError(t, err)
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, n.calls)
}

func TestMessagesValidation(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	svc := NewMessages(store, nil, nil)

	in := validMessage()
	in.Email = ptr("not-an-email")
	in.ProjectType = ptr("gardening")
	_, err := svc.Create(ctx, in)
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "projectType")
}

func TestMessagesReadFlow(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	rec := &recorder{}
	svc := NewMessages(store, nil, rec)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	first, err := svc.Create(ctx, validMessage())
	require.NoError(t, err)
	svc.now = func() time.Time { return base.Add(time.Hour) }
	second, err := svc.Create(ctx, validMessage())
	require.NoError(t, err)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID, "newest first")

	n, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	read, err := svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	readAt := *read.ReadAt

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	again, err := svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, again.ReadAt.Equal(readAt))

	n, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Delete(ctx, second.ID)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, second.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, []string{"message.created", "message.created", "message.read", "message.read", "message.deleted"}, rec.types())
}

func TestMessagesArchiveYears(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	svc := NewMessages(store, nil, nil)

	require.NoError(t, ArchiveCollection(store, 2023).Insert(models.Message{Meta: models.Meta{ID: "1"}, Name: "a"}))
	require.NoError(t, ArchiveCollection(store, 2021).Insert(models.Message{Meta: models.Meta{ID: "2"}, Name: "b"}))

	years, err := svc.ArchiveYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2023}, years)

	items, err := svc.Archive(ctx, 2023)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Name)

	items, err = svc.Archive(ctx, 1999)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMessagesMigrate(t *testing.T) {
	ctx := context.Background()
	dir, store := testutil.TestStore(t)
	testutil.WriteFile(t, dir, "messages.json", `[
  {"id": "1", "name": "Old", "email": "old@example.com", "requirements": "a site", "read": true, "createdAt": "2023-05-01T00:00:00Z"},
  {"id": "2", "name": "New", "email": "new@example.com", "message": "hi", "read": false, "readAt": null, "createdAt": "2024-05-01T00:00:00Z", "updatedAt": "2024-05-01T00:00:00Z"}
]
`)
	svc := NewMessages(store, nil, nil)

	n, err := svc.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "a site", m.Message)
	assert.NotNil(t, m.ReadAt)
	assert.False(t, m.UpdatedAt.IsZero())

	n, err = svc.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStatsIncrement(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	svc := NewStats(store)
	svc.now = func() time.Time { return time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC) }

	st, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, st.MonthlyVisitors, 12)

	for _, c := range []string{CounterCVView, CounterCVDownload, CounterVisitor, CounterVisitor} {
		_, err := svc.Increment(ctx, c)
		require.NoError(t, err)
	}
	st, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CVViews)
	assert.Equal(t, 1, st.CVDownloads)
	assert.Equal(t, 2, st.Visitors)
	assert.Equal(t, 2, st.MonthlyVisitors[3])

	_, err = svc.Increment(ctx, "likes")
	var verr *apperr.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPersonalInfoReplace(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	svc := NewPersonalInfo(store, nil)

	info, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, info)

	_, err = svc.Replace(ctx, models.PersonalInfo{"name": "Ada", "title": "Engineer"})
	require.NoError(t, err)
	_, err = svc.Replace(ctx, models.PersonalInfo{"name": "Grace"})
	require.NoError(t, err)

	info, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PersonalInfo{"name": "Grace"}, info)
}

func TestUpdateIfMatch(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestStore(t)
	svc := NewTechnologies(store, nil)

	tech, err := svc.Create(ctx, TechnologyPatch{Name: ptr("Go"), Proficiency: ptr(80)})
	require.NoError(t, err)
	tag, err := ETag(tech)
	require.NoError(t, err)

	_, _, err = svc.UpdateIfMatch(ctx, tech.ID, tag, TechnologyPatch{Proficiency: ptr(90)})
	require.NoError(t, err)

	_, _, err = svc.UpdateIfMatch(ctx, tech.ID, tag, TechnologyPatch{Proficiency: ptr(95)})
	assert.ErrorIs(t, err, apperr.ErrConflict, "stale tag")

	got, err := svc.Get(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Proficiency)
}
