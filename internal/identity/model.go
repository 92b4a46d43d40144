package identity

import "time"

// Role labels a user's function within an agency.
type Role = string

const (
    RoleAgencyAdmin Role = "AGENCY_ADMIN"
    RoleEmployee    Role = "EMPLOYEE"
    RoleGuardian    Role = "GUARDIAN"
    RoleCaseManager Role = "CASE_MANAGER"
    RoleClient      Role = "CLIENT"
    RoleProvider    Role = "PROVIDER"
    RoleSupervisor  Role = "SUPERVISOR"
)

const (
    StatusPending = "PENDING"
    StatusActive  = "ACTIVE"
)

// User is a person known to the gateway, either synced from Firebase or
// registered with a password.
type User struct {
    ID           string    `json:"id"`
    FirebaseUID  string    `json:"firebaseUid,omitempty"`
    Email        string    `json:"email,omitempty"`
    Phone        string    `json:"phone,omitempty"`
    FirstName    string    `json:"firstName"`
    LastName     string    `json:"lastName"`
    Role         Role      `json:"role"`
    Status       string    `json:"status"`
    AgencyID     string    `json:"agencyId,omitempty"`
    PasswordHash []byte    `json:"-"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity returns the label embedded in tokens: email, else phone.
func (u User) Identity() string {
    if u.Email != "" {
        return u.Email
    }
    return u.Phone
}

// SyncInput carries profile fields asserted by the external identity provider.
type SyncInput struct {
    FirebaseUID string
    Email       string
    Phone       string
    FirstName   string
    LastName    string
    Role        Role
    AgencyID    string
}

// Registration is a self-hosted signup request.
type Registration struct {
    Email     string
    Password  string
    FirstName string
    LastName  string
    Role      Role
}
