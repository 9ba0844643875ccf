package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"farm-market-api/internal/core/auth"
	"farm-market-api/internal/domain"
	"farm-market-api/pkg/utils"
)

type UserService struct {
	repo domain.UserRepository
	jwt  *auth.JWTer
	log  *zap.Logger
}

func NewUserService(repo domain.UserRepository, jwt *auth.JWTer, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, jwt: jwt, log: log}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Gender    string
	Address   string
	BirthDate *time.Time
}

func (s *UserService) Register(in RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, &domain.ValidationError{Field: "username"}
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, &domain.ValidationError{Field: "email"}
	}
	if in.Password == "" {
		return nil, &domain.ValidationError{Field: "password"}
	}
	if exists, err := s.repo.FindByEmail(email); err != nil {
		return nil, err
	} else if exists != nil {
		return nil, ErrEmailTaken
	}
	// 注册永远只发普通角色；admin 只能在库里直接提
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     in.Username,
		Email:        email,
		PasswordHash: utils.HashPassword(in.Password),
		Role:         auth.RoleUser,
		Gender:       in.Gender,
		Address:      in.Address,
		BirthDate:    in.BirthDate,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("id", u.ID))
	return u, nil
}

// Login 校验密码、刷 lastLogin、签发 token
func (s *UserService) Login(email, password string) (string, *domain.User, error) {
	u, err := s.repo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	now := time.Now()
	u.LastLogin = &now
	if err := s.repo.Update(u); err != nil {
		return "", nil, err
	}
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

func (s *UserService) Me(id string) (*domain.User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type ProfileInput struct {
	Username  string
	Gender    string
	Address   string
	BirthDate *time.Time
	Profile   string
}

func (s *UserService) UpdateProfile(id string, in ProfileInput) (*domain.User, error) {
	u, err := s.Me(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Username) != "" {
		u.Username = in.Username
	}
	if in.Gender != "" {
		u.Gender = in.Gender
	}
	if in.Address != "" {
		u.Address = in.Address
	}
	if in.BirthDate != nil {
		u.BirthDate = in.BirthDate
	}
	if in.Profile != "" {
		u.Profile = in.Profile
	}
	if err := s.repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}
