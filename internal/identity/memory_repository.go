package identity

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"
)

type memoryRepository struct {
    mu    sync.RWMutex
    users map[string]User
}

// NewMemoryRepository builds an in-memory user store for tests and local development.
func NewMemoryRepository() Repository {
    return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) UpsertByFirebaseUID(_ context.Context, in SyncInput) (User, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    now := time.Now().UTC()
    for id, user := range r.users {
        if user.FirebaseUID != in.FirebaseUID {
            continue
        }
        if r.emailTakenLocked(in.Email, id) {
            return User{}, ErrEmailTaken
        }
        user.Email = in.Email
        user.Phone = in.Phone
        user.FirstName = in.FirstName
        user.LastName = in.LastName
        user.UpdatedAt = now
        r.users[id] = user
        return user, nil
    }
    if r.emailTakenLocked(in.Email, "") {
        return User{}, ErrEmailTaken
    }
    user := User{
        ID:          uuid.NewString(),
        FirebaseUID: in.FirebaseUID,
        Email:       in.Email,
        Phone:       in.Phone,
        FirstName:   in.FirstName,
        LastName:    in.LastName,
        Role:        in.Role,
        Status:      StatusPending,
        AgencyID:    in.AgencyID,
        CreatedAt:   now,
        UpdatedAt:   now,
    }
    r.users[user.ID] = user
    return user, nil
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if r.emailTakenLocked(user.Email, "") {
        return ErrEmailTaken
    }
    r.users[user.ID] = user
    return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    for _, user := range r.users {
        if email != "" && user.Email == email {
            return user, nil
        }
    }
    return User{}, ErrUserNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    user, ok := r.users[id]
    if !ok {
        return User{}, ErrUserNotFound
    }
    return user, nil
}

// emailTakenLocked reports whether another user (not exceptID) owns email.
func (r *memoryRepository) emailTakenLocked(email, exceptID string) bool {
    if email == "" {
        return false
    }
    for id, user := range r.users {
        if id != exceptID && user.Email == email {
            return true
        }
    }
    return false
}
