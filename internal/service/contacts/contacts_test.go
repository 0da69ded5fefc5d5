package contacts

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/cache"
	"github.com/nkiryanov/contactbook/internal/models"
	"github.com/nkiryanov/contactbook/internal/testutil"
)

// In-memory contact repo
// Counts ListContacts calls so tests can tell cache hits from recomputes
type fakeContactRepo struct {
	contacts  []models.Contact
	listCalls int
}

func (r *fakeContactRepo) CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	contact.CreatedAt = time.Now()
	r.contacts = append(r.contacts, contact)
	return contact, nil
}

func (r *fakeContactRepo) GetContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) (models.Contact, error) {
	for _, c := range r.contacts {
		if c.OwnerID == ownerID && c.ID == contactID {
			return c, nil
		}
	}
	return models.Contact{}, apperrors.ErrContactNotFound
}

func (r *fakeContactRepo) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	r.listCalls++

	list := make([]models.Contact, 0)
	for _, c := range r.contacts {
		if c.OwnerID == ownerID {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r *fakeContactRepo) UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	for i, c := range r.contacts {
		if c.OwnerID == contact.OwnerID && c.ID == contact.ID {
			contact.CreatedAt = c.CreatedAt
			r.contacts[i] = contact
			return contact, nil
		}
	}
	return models.Contact{}, apperrors.ErrContactNotFound
}

func (r *fakeContactRepo) DeleteContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) error {
	for i, c := range r.contacts {
		if c.OwnerID == ownerID && c.ID == contactID {
			r.contacts = slices.Delete(r.contacts, i, i+1)
			return nil
		}
	}
	return apperrors.ErrContactNotFound
}

func newTestService(t *testing.T) (*ContactsService, *fakeContactRepo) {
	t.Helper()

	_, client := testutil.StartMiniredis(t)
	repo := &fakeContactRepo{}

	s, err := NewService(Config{WindowDays: 7}, repo, cache.New(cache.NewRedis(client), nil))
	require.NoError(t, err, "contacts service should be created without errors")

	// Pin the reference date so results don't depend on the wall clock
	s.nowFn = func() time.Time { return date(2024, time.June, 10) }

	return s, repo
}

func Test_ContactsService(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	t.Run("new service validates deps", func(t *testing.T) {
		_, err := NewService(Config{}, nil, nil)

		require.Error(t, err)
	})

	t.Run("upcoming served from cache", func(t *testing.T) {
		s, repo := newTestService(t)
		_, err := s.CreateContact(t.Context(), models.Contact{
			OwnerID:   owner,
			FirstName: "June",
			Birthdate: date(1990, time.June, 12),
		})
		require.NoError(t, err)

		first, err := s.Upcoming(t.Context(), owner)
		require.NoError(t, err)
		second, err := s.Upcoming(t.Context(), owner)
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.Equal(t, 1, repo.listCalls, "second read should be a cache hit")
	})

	t.Run("mutation invalidates cached report", func(t *testing.T) {
		s, repo := newTestService(t)

		created, err := s.CreateContact(t.Context(), models.Contact{
			OwnerID:   owner,
			FirstName: "June",
			Birthdate: date(1990, time.June, 12),
		})
		require.NoError(t, err)

		got, err := s.Upcoming(t.Context(), owner)
		require.NoError(t, err)
		require.Len(t, got, 1)

		// Move the birthday out of the window
		created.Birthdate = date(1990, time.December, 1)
		_, err = s.UpdateContact(t.Context(), created)
		require.NoError(t, err)

		got, err = s.Upcoming(t.Context(), owner)
		require.NoError(t, err)

		require.Empty(t, got, "stale report must not survive a mutation")
		require.Equal(t, 2, repo.listCalls)
	})

	t.Run("delete invalidates cached report", func(t *testing.T) {
		s, _ := newTestService(t)

		created, err := s.CreateContact(t.Context(), models.Contact{
			OwnerID:   owner,
			FirstName: "June",
			Birthdate: date(1990, time.June, 12),
		})
		require.NoError(t, err)

		got, err := s.Upcoming(t.Context(), owner)
		require.NoError(t, err)
		require.Len(t, got, 1)

		err = s.DeleteContact(t.Context(), owner, created.ID)
		require.NoError(t, err)

		got, err = s.Upcoming(t.Context(), owner)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("reports scoped to owner", func(t *testing.T) {
		s, _ := newTestService(t)
		other := uuid.New()

		_, err := s.CreateContact(t.Context(), models.Contact{
			OwnerID:   owner,
			FirstName: "June",
			Birthdate: date(1990, time.June, 12),
		})
		require.NoError(t, err)

		got, err := s.Upcoming(t.Context(), other)
		require.NoError(t, err)

		require.Empty(t, got, "one owner's contacts must not leak into another's report")
	})

	t.Run("report ordered and filtered by window", func(t *testing.T) {
		s, _ := newTestService(t)

		for _, day := range []int{15, 11, 25} {
			_, err := s.CreateContact(t.Context(), models.Contact{
				OwnerID:   owner,
				FirstName: "June",
				Birthdate: date(1990, time.June, day),
			})
			require.NoError(t, err)
		}

		got, err := s.Upcoming(t.Context(), owner)
		require.NoError(t, err)

		require.Len(t, got, 2, "birthday outside the window should be dropped")
		require.Equal(t, 1, got[0].DaysUntil)
		require.Equal(t, 5, got[1].DaysUntil)
	})
}
