package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/parkinglot-manager/internal/users"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
)

type userRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type lotRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, lot *models.ParkingLot) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Params bundles the seeder dependencies.
type Params struct {
	Config    config.SeedConfig
	Users     userRepository
	Lots      lotRepository
	Passwords passwordHasher
	Logger    *logger.Logger
	Now       func() time.Time
}

// Seeder creates the bootstrap accounts and sample lots. Running it again
// against a seeded store changes nothing.
type Seeder struct {
	cfg       config.SeedConfig
	users     userRepository
	lots      lotRepository
	passwords passwordHasher
	logg      *logger.Logger
	now       func() time.Time
}

func New(p Params) (*Seeder, error) {
	if p.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if p.Lots == nil {
		return nil, fmt.Errorf("parking lot repository is required")
	}
	if p.Passwords == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Seeder{cfg: p.Config, users: p.Users, lots: p.Lots, passwords: p.Passwords, logg: logg, now: now}, nil
}

type account struct {
	username, password, email string
	firstName, lastName       string
	role                      enums.UserRole
}

type sampleLot struct {
	name, location, description string
	capacity, occupied          int
}

var sampleLots = []sampleLot{
	{"Garden Area - Ground Floor", "Garden Area", "Open parking space with green surroundings", 250, 0},
	{"Main Building - Ground Floor", "Main Building", "Multi-level covered parking", 200, 20},
}

func (s *Seeder) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logg.Debug(ctx, "seeding disabled")
		return nil
	}

	accounts := []account{
		{s.cfg.LotManagerUsername, s.cfg.LotManagerPassword, s.cfg.LotManagerEmail, "Lot", "Manager", enums.UserRoleLotManager},
		{s.cfg.AdminUsername, s.cfg.AdminPassword, s.cfg.AdminEmail, "System", "Administrator", enums.UserRoleAdmin},
	}
	for _, acct := range accounts {
		if err := s.ensureAccount(ctx, acct); err != nil {
			return err
		}
	}

	if s.cfg.SampleLots {
		return s.ensureSampleLots(ctx)
	}
	return nil
}

func (s *Seeder) ensureAccount(ctx context.Context, acct account) error {
	if acct.username == "" {
		return nil
	}
	ctx = s.logg.WithUsername(ctx, acct.username)

	exists, err := s.users.ExistsByUsername(ctx, acct.username)
	if err != nil {
		return fmt.Errorf("checking seed user %q: %w", acct.username, err)
	}
	if exists {
		s.logg.Debug(ctx, "seed user already present")
		return nil
	}

	hash, err := s.passwords.Hash(acct.password)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}
	if _, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     acct.username,
		PasswordHash: hash,
		Email:        acct.email,
		FirstName:    acct.firstName,
		LastName:     acct.lastName,
		Role:         acct.role,
	}); err != nil {
		return fmt.Errorf("creating seed user %q: %w", acct.username, err)
	}
	s.logg.Info(s.logg.WithActorRole(ctx, string(acct.role)), "seed user created")
	return nil
}

func (s *Seeder) ensureSampleLots(ctx context.Context) error {
	n, err := s.lots.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting parking lots: %w", err)
	}
	if n > 0 {
		return nil
	}

	now := s.now()
	for _, sample := range sampleLots {
		desc := sample.description
		lot := models.NewParkingLot(sample.name, sample.location, &desc, sample.capacity, now)
		lot.OccupiedSlots = sample.occupied
		if err := s.lots.Create(ctx, &lot); err != nil {
			return fmt.Errorf("creating sample lot %q: %w", sample.name, err)
		}
	}
	s.logg.Info(s.logg.WithField(ctx, "count", len(sampleLots)), "sample parking lots created")
	return nil
}
