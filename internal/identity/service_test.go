package identity

import (
    "context"
    "errors"
    "strings"
    "testing"

    "golang.org/x/crypto/bcrypt"
)

func TestSyncCreatesPendingThenUpdatesProfile(t *testing.T) {
    repo := NewMemoryRepository()
    svc := NewService(repo, 0)
    ctx := context.Background()

    first, err := svc.Sync(ctx, SyncInput{FirebaseUID: "u1", Email: "a@x.com", FirstName: "Ann", LastName: "Lee", Role: RoleEmployee})
    if err != nil {
        t.Fatalf("sync: %v", err)
    }
    if first.Status != StatusPending {
        t.Fatalf("expected PENDING, got %s", first.Status)
    }

    second, err := svc.Sync(ctx, SyncInput{FirebaseUID: "u1", Email: "a@x.com", FirstName: "Anna", LastName: "Lee", Role: RoleAgencyAdmin})
    if err != nil {
        t.Fatalf("resync: %v", err)
    }
    if second.ID != first.ID {
        t.Fatalf("expected same user id, got %s and %s", first.ID, second.ID)
    }
    if second.FirstName != "Anna" {
        t.Fatalf("expected first name updated, got %s", second.FirstName)
    }
    if second.Role != RoleEmployee || second.Status != StatusPending {
        t.Fatalf("role/status must not change on update, got %s/%s", second.Role, second.Status)
    }
}

func TestSyncRejectsEmailOwnedByAnotherUser(t *testing.T) {
    svc := NewService(NewMemoryRepository(), 0)
    ctx := context.Background()

    if _, err := svc.Sync(ctx, SyncInput{FirebaseUID: "u1", Email: "a@x.com", FirstName: "A", LastName: "B", Role: RoleEmployee}); err != nil {
        t.Fatalf("sync: %v", err)
    }
    _, err := svc.Sync(ctx, SyncInput{FirebaseUID: "u2", Email: "a@x.com", FirstName: "C", LastName: "D", Role: RoleEmployee})
    if !errors.Is(err, ErrEmailTaken) {
        t.Fatalf("expected ErrEmailTaken, got %v", err)
    }
}

func TestRegisterAndAuthenticate(t *testing.T) {
    repo := NewMemoryRepository()
    svc := NewService(repo, 0)
    ctx := context.Background()

    user, err := svc.Register(ctx, Registration{Email: "a@x.com", Password: "password1", FirstName: "A", LastName: "B", Role: RoleClient})
    if err != nil {
        t.Fatalf("register: %v", err)
    }
    if user.Status != StatusActive {
        t.Fatalf("expected ACTIVE, got %s", user.Status)
    }
    if cost, err := bcrypt.Cost(user.PasswordHash); err != nil || cost != PasswordCost {
        t.Fatalf("expected bcrypt cost %d, got %d (%v)", PasswordCost, cost, err)
    }

    authed, err := svc.Authenticate(ctx, "a@x.com", "password1")
    if err != nil {
        t.Fatalf("authenticate: %v", err)
    }
    if authed.ID != user.ID {
        t.Fatalf("expected %s, got %s", user.ID, authed.ID)
    }
}

func TestRegisterDuplicateEmailKeepsOriginalPassword(t *testing.T) {
    svc := NewService(NewMemoryRepository(), 0)
    ctx := context.Background()

    if _, err := svc.Register(ctx, Registration{Email: "a@x.com", Password: "password1", FirstName: "A", LastName: "B", Role: RoleClient}); err != nil {
        t.Fatalf("register: %v", err)
    }
    _, err := svc.Register(ctx, Registration{Email: "a@x.com", Password: "password2", FirstName: "A", LastName: "B", Role: RoleClient})
    if !errors.Is(err, ErrEmailTaken) {
        t.Fatalf("expected ErrEmailTaken, got %v", err)
    }
    if _, err := svc.Authenticate(ctx, "a@x.com", "password1"); err != nil {
        t.Fatalf("original password should still work: %v", err)
    }
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
    svc := NewService(NewMemoryRepository(), 0)
    ctx := context.Background()

    if _, err := svc.Register(ctx, Registration{Email: "a@x.com", Password: "password1", FirstName: "A", LastName: "B", Role: RoleClient}); err != nil {
        t.Fatalf("register: %v", err)
    }
    if _, err := svc.Sync(ctx, SyncInput{FirebaseUID: "u1", Email: "fb@x.com", FirstName: "F", LastName: "B", Role: RoleGuardian}); err != nil {
        t.Fatalf("sync: %v", err)
    }

    cases := map[string][2]string{
        "wrong password": {"a@x.com", "nope-nope"},
        "unknown email":  {"missing@x.com", "password1"},
        "no password":    {"fb@x.com", "password1"},
    }
    for name, tc := range cases {
        if _, err := svc.Authenticate(ctx, tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
            t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
        }
    }
}

func TestProfileNotFound(t *testing.T) {
    svc := NewService(NewMemoryRepository(), 0)
    if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
        t.Fatalf("expected ErrUserNotFound, got %v", err)
    }
}

func TestAuthenticateComparesOnEveryFailure(t *testing.T) {
    svc := NewService(NewMemoryRepository(), 0)
    ctx := context.Background()

    if _, err := svc.Register(ctx, Registration{Email: "a@x.com", Password: "password1", FirstName: "A", LastName: "B", Role: RoleClient}); err != nil {
        t.Fatalf("register: %v", err)
    }
    if _, err := svc.Sync(ctx, SyncInput{FirebaseUID: "u1", Email: "fb@x.com", FirstName: "F", LastName: "B", Role: RoleGuardian}); err != nil {
        t.Fatalf("sync: %v", err)
    }

    var compared [][]byte
    svc.compare = func(hash, password []byte) error {
        compared = append(compared, hash)
        return bcrypt.CompareHashAndPassword(hash, password)
    }

    for _, email := range []string{"a@x.com", "missing@x.com", "fb@x.com"} {
        compared = nil
        if _, err := svc.Authenticate(ctx, email, "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
            t.Fatalf("%s: expected ErrInvalidCredentials, got %v", email, err)
        }
        if len(compared) != 1 {
            t.Fatalf("%s: expected one bcrypt comparison, got %d", email, len(compared))
        }
        if cost, err := bcrypt.Cost(compared[0]); err != nil || cost != PasswordCost {
            t.Fatalf("%s: expected comparison at cost %d, got %d (%v)", email, PasswordCost, cost, err)
        }
    }
}

func TestAuthenticateRejectsDummyPasswordForUnknownEmail(t *testing.T) {
    svc := NewService(NewMemoryRepository(), 0)
    svc.compare = func(hash, password []byte) error { return nil }

    if _, err := svc.Authenticate(context.Background(), "missing@x.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
        t.Fatalf("expected ErrInvalidCredentials, got %v", err)
    }
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
    repo := NewMemoryRepository()
    svc := NewService(repo, 0)
    ctx := context.Background()

    _, err := svc.Register(ctx, Registration{Email: "a@x.com", Password: strings.Repeat("p", 73), FirstName: "A", LastName: "B", Role: RoleClient})
    if !errors.Is(err, ErrPasswordTooLong) {
        t.Fatalf("expected ErrPasswordTooLong, got %v", err)
    }
    if _, err := repo.FindByEmail(ctx, "a@x.com"); !errors.Is(err, ErrUserNotFound) {
        t.Fatalf("expected nothing stored, got %v", err)
    }
}
