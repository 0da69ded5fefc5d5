package contacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/contactbook/internal/cache"
	"github.com/nkiryanov/contactbook/internal/models"
	"github.com/nkiryanov/contactbook/internal/repository"
)

const (
	defaultWindowDays = 7

	// Well under 24h: even if an invalidation is ever missed, the date in
	// the cache key rotates at midnight and the entry dies by TTL before
	// that, so staleness is bounded
	defaultUpcomingTTL = time.Hour
)

type Config struct {
	// How many days ahead the upcoming birthday report looks
	// If not set than default is used
	WindowDays int

	// Cached report lifetime
	// If not set than default is used
	UpcomingTTL time.Duration
}

// ContactsService owns contact records and the cached birthday report.
//
// Every mutation invalidates the owner's report before returning, so a read
// is stale at most until the next mutation or for UpcomingTTL, whichever
// comes first.
type ContactsService struct {
	contactRepo repository.ContactRepo
	cache       *cache.Cache

	windowDays  int
	upcomingTTL time.Duration

	// nowFn is replaced in tests to pin the reference date
	nowFn func() time.Time
}

func NewService(cfg Config, contactRepo repository.ContactRepo, c *cache.Cache) (*ContactsService, error) {
	if contactRepo == nil || c == nil {
		return nil, errors.New("contact repo and cache must not be nil")
	}

	if cfg.WindowDays == 0 {
		cfg.WindowDays = defaultWindowDays
	}
	if cfg.UpcomingTTL == 0 {
		cfg.UpcomingTTL = defaultUpcomingTTL
	}

	return &ContactsService{
		contactRepo: contactRepo,
		cache:       c,
		windowDays:  cfg.WindowDays,
		upcomingTTL: cfg.UpcomingTTL,
		nowFn:       time.Now,
	}, nil
}

func (s *ContactsService) CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	created, err := s.contactRepo.CreateContact(ctx, contact)
	if err != nil {
		return created, fmt.Errorf("can't create contact. Err: %w", err)
	}

	s.invalidateUpcoming(ctx, contact.OwnerID)
	return created, nil
}

func (s *ContactsService) GetContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) (models.Contact, error) {
	return s.contactRepo.GetContact(ctx, ownerID, contactID)
}

func (s *ContactsService) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	return s.contactRepo.ListContacts(ctx, ownerID)
}

func (s *ContactsService) UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	updated, err := s.contactRepo.UpdateContact(ctx, contact)
	if err != nil {
		return updated, err
	}

	s.invalidateUpcoming(ctx, contact.OwnerID)
	return updated, nil
}

func (s *ContactsService) DeleteContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) error {
	if err := s.contactRepo.DeleteContact(ctx, ownerID, contactID); err != nil {
		return err
	}

	s.invalidateUpcoming(ctx, ownerID)
	return nil
}

// Upcoming returns the owner's birthday report, served cache-aside.
// Recomputing the report is idempotent, so concurrent cold reads may both
// compute it and that is fine.
func (s *ContactsService) Upcoming(ctx context.Context, ownerID uuid.UUID) ([]models.UpcomingBirthday, error) {
	today := s.nowFn()

	return cache.GetOrCompute(ctx, s.cache, s.upcomingKey(ownerID, today), s.upcomingTTL,
		func(ctx context.Context) ([]models.UpcomingBirthday, error) {
			contacts, err := s.contactRepo.ListContacts(ctx, ownerID)
			if err != nil {
				return nil, fmt.Errorf("can't list contacts. Err: %w", err)
			}

			return UpcomingBirthdays(today, s.windowDays, contacts), nil
		},
	)
}

// Key embeds owner and the current date: the report for a given day has its
// own key, so a day boundary rotates the key even without invalidation
func (s *ContactsService) upcomingKey(ownerID uuid.UUID, today time.Time) string {
	return fmt.Sprintf("birthdays:%s:%s", ownerID, today.Format("2006-01-02"))
}

func (s *ContactsService) invalidateUpcoming(ctx context.Context, ownerID uuid.UUID) {
	// Best effort: a failed invalidation only stretches staleness to the
	// TTL bound, it never breaks the data itself
	_ = s.cache.Invalidate(ctx, s.upcomingKey(ownerID, s.nowFn()))
}
