package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koweyli/vantage-console/internal/logger"
	"github.com/koweyli/vantage-console/internal/metrics"
	"github.com/koweyli/vantage-console/internal/models"
)

const usersDocument = "users"

// The bootstrap admin (seeded on first start) is protected from deletion.
const (
	BootstrapAdminID       = 1
	BootstrapAdminUsername = "admin"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// usersDoc is the on-disk shape of users.json.
type usersDoc struct {
	Users       map[string]*models.User `json:"users"`
	IDCounter   int                     `json:"userIdCounter"`
	LastUpdated string                  `json:"lastUpdated,omitempty"`
}

// UserStore owns the username-keyed user map and mirrors it to the
// snapshotter on every mutation. Snapshot failures are logged, never
// propagated: the in-memory state is already updated and the operation is
// considered successful.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	next  int
	snap  Snapshotter
}

// NewUserStore loads the persisted user map or seeds the default accounts
// when no snapshot exists. The id counter is always recomputed from the
// loaded records so stale counters in old snapshots cannot cause collisions.
func NewUserStore(snap Snapshotter) (*UserStore, error) {
	s := &UserStore{snap: snap}

	var doc usersDoc
	err := snap.Load(usersDocument, &doc)
	switch {
	case err == nil && len(doc.Users) > 0:
		s.users = doc.Users
	case err == nil || err == ErrNoSnapshot:
		s.users = seedUsers()
		logger.Log().Info("no user snapshot found, seeding default accounts")
	default:
		return nil, fmt.Errorf("load users: %w", err)
	}

	maxID := 0
	for _, u := range s.users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	s.next = maxID + 1
	return s, nil
}

func seedUsers() map[string]*models.User {
	return map[string]*models.User{
		"admin": {
			ID: 1, Username: "admin", Password: "admin123", Email: "admin@example.com",
			Permissions: []string{"admin"}, Status: models.StatusActive, RegisteredAt: "2023-01-01",
			Profile: &models.Profile{FullName: "System Administrator", Phone: "13800138001",
				Bio: "Administrator account responsible for overall system management", LastPasswordChange: "2024-01-15"},
		},
		"user": {
			ID: 2, Username: "user", Password: "user123", Email: "user@example.com",
			Permissions: []string{}, Status: models.StatusActive, RegisteredAt: "2023-01-01",
			Profile: &models.Profile{FullName: "Standard User", Phone: "13800138002",
				Bio: "Regular user account", LastPasswordChange: "2024-01-10"},
		},
		"guest": {
			ID: 3, Username: "guest", Password: "21693", Email: "guest@example.com",
			Permissions: []string{"admin"}, Status: models.StatusActive, RegisteredAt: "2023-01-01",
			Profile: &models.Profile{FullName: "Guest User", Phone: "13800138003",
				Bio: "Guest account with administrator capabilities", TwoFactorEnabled: true, LastPasswordChange: "2024-01-20"},
		},
	}
}

// persist mirrors the full map to durable storage. Failure is non-fatal.
func (s *UserStore) persist() {
	doc := usersDoc{
		Users:       s.users,
		IDCounter:   s.next,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.snap.Save(usersDocument, doc); err != nil {
		metrics.IncSnapshotFailure()
		logger.WithError(err).Warn("user snapshot failed, in-memory state may be lost on restart")
	}
}

// Flush re-persists the current state and reports the outcome. Used by the
// snapshot scheduler and by graceful shutdown.
func (s *UserStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := usersDoc{
		Users:       s.users,
		IDCounter:   s.next,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	return s.snap.Save(usersDocument, doc)
}

// CreateUser carries the fields accepted by Create. Permissions and Status
// are optional; zero values get defaults.
type CreateUser struct {
	Username    string
	Email       string
	Password    string
	Permissions []string
	Status      string
}

// Create validates, assigns the next id and inserts a new record with a
// default profile.
func (s *UserStore) Create(req CreateUser) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !emailPattern.MatchString(req.Email) {
		return models.User{}, ErrInvalidEmail
	}
	for _, u := range s.users {
		if u.Username == req.Username {
			return models.User{}, ErrUsernameTaken
		}
	}
	for _, u := range s.users {
		if u.Email == req.Email {
			return models.User{}, ErrEmailTaken
		}
	}

	today := time.Now().UTC().Format("2006-01-02")
	perms := req.Permissions
	if perms == nil {
		perms = []string{}
	}
	status := req.Status
	if status == "" {
		status = models.StatusActive
	}

	u := &models.User{
		ID:           s.next,
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Permissions:  perms,
		Status:       status,
		RegisteredAt: today,
		Profile:      &models.Profile{LastPasswordChange: today},
	}
	s.next++
	s.users[u.Username] = u
	s.persist()
	return *u, nil
}

// UserUpdate lists the fields an admin update may touch. Nil pointers mean
// "leave unchanged".
type UserUpdate struct {
	Username    *string
	Email       *string
	Permissions *[]string
	Status      *string
}

// Update applies a selective merge. Renames remap the map key; username and
// email conflicts are re-checked against every other record.
func (s *UserStore) Update(id int, upd UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, u := s.findByID(id)
	if u == nil {
		return models.User{}, ErrUserNotFound
	}

	if upd.Username != nil && *upd.Username != u.Username {
		for _, other := range s.users {
			if other.Username == *upd.Username && other.ID != id {
				return models.User{}, ErrUsernameTaken
			}
		}
	}
	if upd.Email != nil && *upd.Email != u.Email {
		if !emailPattern.MatchString(*upd.Email) {
			return models.User{}, ErrInvalidEmail
		}
		for _, other := range s.users {
			if other.Email == *upd.Email && other.ID != id {
				return models.User{}, ErrEmailTaken
			}
		}
	}

	oldUsername := u.Username
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Permissions != nil {
		perms := *upd.Permissions
		if perms == nil {
			perms = []string{}
		}
		u.Permissions = perms
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}

	if u.Username != oldUsername {
		delete(s.users, key)
		s.users[u.Username] = u
	}
	s.persist()
	return *u, nil
}

// Delete removes a record and returns it along with the remaining count. The
// bootstrap admin is protected. The caller is responsible for cascading the
// route-permission removal.
func (s *UserStore) Delete(id int) (models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, u := s.findByID(id)
	if u == nil {
		return models.User{}, 0, ErrUserNotFound
	}
	if u.ID == BootstrapAdminID && u.Username == BootstrapAdminUsername {
		return models.User{}, 0, ErrProtectedUser
	}

	deleted := *u
	delete(s.users, key)
	s.persist()
	return deleted, len(s.users), nil
}

// ChangePassword overwrites the password after an exact match of the current
// one, and stamps the profile's last-change date.
func (s *UserStore) ChangePassword(id int, current, next string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, u := s.findByID(id)
	if u == nil {
		return "", ErrUserNotFound
	}
	if u.Password != current {
		return "", ErrWrongPassword
	}

	u.Password = next
	p := u.EnsureProfile()
	p.LastPasswordChange = time.Now().UTC().Format("2006-01-02")
	s.persist()
	return p.LastPasswordChange, nil
}

// ProfileUpdate lists the profile fields an owner may change. Email conflicts
// are re-checked like in Update.
type ProfileUpdate struct {
	Email            *string
	FullName         *string
	Phone            *string
	Bio              *string
	TwoFactorEnabled *bool
}

// UpdateProfile merges profile fields in place.
func (s *UserStore) UpdateProfile(id int, upd ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, u := s.findByID(id)
	if u == nil {
		return models.User{}, ErrUserNotFound
	}

	if upd.Email != nil && *upd.Email != u.Email {
		if !emailPattern.MatchString(*upd.Email) {
			return models.User{}, ErrInvalidEmail
		}
		for _, other := range s.users {
			if other.Email == *upd.Email && other.ID != id {
				return models.User{}, ErrEmailTaken
			}
		}
		u.Email = *upd.Email
	}

	p := u.EnsureProfile()
	if upd.FullName != nil {
		p.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	if upd.TwoFactorEnabled != nil {
		p.TwoFactorEnabled = *upd.TwoFactorEnabled
	}

	s.persist()
	return *u, nil
}

// SetAvatar overwrites the stored avatar URL and returns the previous one so
// the handler can clean up a locally stored file.
func (s *UserStore) SetAvatar(id int, url string) (previous string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, u := s.findByID(id)
	if u == nil {
		return "", ErrUserNotFound
	}
	p := u.EnsureProfile()
	previous = p.AvatarURL
	p.AvatarURL = url
	s.persist()
	return previous, nil
}

// FindByID returns a copy of the record with the given id.
func (s *UserStore) FindByID(id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, u := s.findByID(id)
	if u == nil {
		return models.User{}, ErrUserNotFound
	}
	return *u, nil
}

// FindByUsername returns a copy of the record with the given username.
func (s *UserStore) FindByUsername(username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// List returns the credential-free projection of every record, ordered by id.
func (s *UserStore) List() []models.PublicUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PublicUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of stored records.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// findByID must be called with the lock held.
func (s *UserStore) findByID(id int) (string, *models.User) {
	for key, u := range s.users {
		if u.ID == id {
			return key, u
		}
	}
	return "", nil
}

// ValidatePassword applies the registration password rules.
func ValidatePassword(password, confirm string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalid)
	}
	if confirm != password {
		return fmt.Errorf("%w: passwords do not match", ErrInvalid)
	}
	return nil
}

// ValidateRequired reports the first missing field from the given name/value
// pairs.
func ValidateRequired(fields map[string]string) error {
	missing := make([]string, 0, len(fields))
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: missing required fields: %s", ErrInvalid, strings.Join(missing, ", "))
}
