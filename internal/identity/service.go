package identity

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    "golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored password hashes.
const PasswordCost = 12

// ErrInvalidCredentials covers unknown email, password-less accounts and wrong
// passwords alike so callers cannot tell them apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrPasswordTooLong is returned by Register for passwords bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// dummyHash is compared against when no stored hash exists, so a failed login
// costs one bcrypt comparison whatever the reason.
var dummyHash = sync.OnceValue(func() []byte {
    hash, err := bcrypt.GenerateFromPassword([]byte("docuhero-no-such-user"), PasswordCost)
    if err != nil {
        panic(err)
    }
    return hash
})

// Service manages identity lifecycle.
type Service struct {
    repo    Repository
    timeout time.Duration
    compare func(hash, password []byte) error
}

// NewService creates a new identity service. A positive timeout bounds every
// store call.
func NewService(repo Repository, timeout time.Duration) *Service {
    return &Service{repo: repo, timeout: timeout, compare: bcrypt.CompareHashAndPassword}
}

// Sync upserts a user asserted by the external identity provider.
func (s *Service) Sync(ctx context.Context, in SyncInput) (User, error) {
    ctx, cancel := s.withTimeout(ctx)
    defer cancel()
    user, err := s.repo.UpsertByFirebaseUID(ctx, in)
    if err != nil {
        return User{}, fmt.Errorf("sync user: %w", err)
    }
    return user, nil
}

// Register creates an ACTIVE password-based user.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
    ctx, cancel := s.withTimeout(ctx)
    defer cancel()

    if _, err := s.repo.FindByEmail(ctx, reg.Email); err == nil {
        return User{}, ErrEmailTaken
    } else if !errors.Is(err, ErrUserNotFound) {
        return User{}, fmt.Errorf("lookup email: %w", err)
    }

    hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), PasswordCost)
    if errors.Is(err, bcrypt.ErrPasswordTooLong) {
        return User{}, ErrPasswordTooLong
    }
    if err != nil {
        return User{}, fmt.Errorf("hash password: %w", err)
    }

    now := time.Now().UTC()
    user := User{
        ID:           uuid.New().String(),
        Email:        reg.Email,
        FirstName:    reg.FirstName,
        LastName:     reg.LastName,
        Role:         reg.Role,
        Status:       StatusActive,
        PasswordHash: hash,
        CreatedAt:    now,
        UpdatedAt:    now,
    }

    if err := s.repo.Create(ctx, user); err != nil {
        if errors.Is(err, ErrEmailTaken) {
            return User{}, ErrEmailTaken
        }
        return User{}, fmt.Errorf("create user: %w", err)
    }

    return user, nil
}

// Authenticate verifies an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
    ctx, cancel := s.withTimeout(ctx)
    defer cancel()

    user, err := s.repo.FindByEmail(ctx, email)
    if err != nil && !errors.Is(err, ErrUserNotFound) {
        return User{}, fmt.Errorf("lookup email: %w", err)
    }

    hash := user.PasswordHash
    if len(hash) == 0 {
        hash = dummyHash()
    }
    if cmpErr := s.compare(hash, []byte(password)); cmpErr != nil || err != nil || len(user.PasswordHash) == 0 {
        return User{}, ErrInvalidCredentials
    }

    return user, nil
}

// Profile loads a user by id.
func (s *Service) Profile(ctx context.Context, id string) (User, error) {
    ctx, cancel := s.withTimeout(ctx)
    defer cancel()
    return s.repo.FindByID(ctx, id)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
    if s.timeout <= 0 {
        return context.WithCancel(ctx)
    }
    return context.WithTimeout(ctx, s.timeout)
}
