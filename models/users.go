package models

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/bcrypt"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

const (
	usersTable = "users"

	RoleAdmin  = cms.RoleAdmin
	RoleMember = "member"
)

type User struct {
	Username     string
	Email        string
	Role         string
	PasswordHash string
	ID           int64
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserInput is the editable part of a user. An empty Password on update
// keeps the current one.
type UserInput struct {
	Username string `form:"username" validate:"required,min=3,max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"omitempty,min=8,max=72"`
	Role     string `form:"role" validate:"omitempty,oneof=admin member"`
}

// Users reads and writes the users table.
type Users struct {
	db   *database.Manager
	cost int
}

// UsersOption configures Users.
type UsersOption func(*Users)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) UsersOption {
	return func(s *Users) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func NewUsers(db *database.Manager, opts ...UsersOption) *Users {
	s := &Users{db: db, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Users) All(ctx context.Context) ([]User, error) {
	rows, err := s.db.Read(ctx, usersTable, database.AllColumns(), nil)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Users) ByID(ctx context.Context, id int64) (User, error) {
	return s.first(ctx, database.Where("id", id))
}

func (s *Users) ByEmail(ctx context.Context, email string) (User, error) {
	return s.first(ctx, database.Where("email", normalizeEmail(email)))
}

func (s *Users) first(ctx context.Context, where database.Conditions) (User, error) {
	rows, err := s.db.Read(ctx, usersTable, database.AllColumns(), where)
	if err != nil {
		return User{}, err
	}
	if len(rows) == 0 {
		return User{}, ErrNotFound
	}
	return userFromRow(rows[0]), nil
}

// Create stores a new user with a bcrypt password hash.
func (s *Users) Create(ctx context.Context, in UserInput) (User, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return User{}, err
	}
	if in.Password == "" {
		return User{}, invalid("password is required")
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	row, err := s.db.Create(ctx, usersTable, database.
		Set("username", in.Username).
		Set("password", hash).
		Set("email", in.Email).
		Set("role", in.Role))
	if err != nil {
		return User{}, writeError(err, "create user")
	}
	return userFromRow(row), nil
}

func (s *Users) Update(ctx context.Context, id int64, in UserInput) (User, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return User{}, err
	}
	values := database.
		Set("username", in.Username).
		Set("email", in.Email).
		Set("role", in.Role)
	if in.Password != "" {
		hash, err := s.hash(in.Password)
		if err != nil {
			return User{}, err
		}
		values = values.Set("password", hash)
	}
	rows, err := s.db.Update(ctx, usersTable, values, database.Where("id", id))
	if err != nil {
		return User{}, writeError(err, "update user")
	}
	if len(rows) == 0 {
		return User{}, ErrNotFound
	}
	return userFromRow(rows[0]), nil
}

// Delete removes a user; their articles and sessions go with them.
func (s *Users) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Delete(ctx, usersTable, database.Where("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *Users) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.ByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Resolve loads the session user for the access check. A deleted user
// resolves to nil.
func (s *Users) Resolve(ctx context.Context, id int64) (*cms.User, error) {
	u, err := s.ByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cms.User{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}, nil
}

func (s *Users) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

func (in UserInput) normalize() UserInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = RoleMember
	}
	return in
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userFromRow(row database.Row) User {
	return User{
		ID:           row.Int64("id"),
		Username:     row.String("username"),
		Email:        row.String("email"),
		Role:         row.String("role"),
		PasswordHash: row.String("password"),
	}
}
