package service

import (
	"context"
	"errors"

	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/repository"
	"yamdb/internal/api/validation"

	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context, search string, page dto.Pagination) ([]models.User, int64, error)
	Create(ctx context.Context, req dto.UserCreateRequest) (*models.User, error)
	Get(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, req dto.UserUpdateRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User, req dto.ProfileUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, username string) error
	CreateSuperuser(ctx context.Context, username, email string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, search string, page dto.Pagination) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, page.Offset(), page.PageSize)
}

func (s *userService) Create(ctx context.Context, req dto.UserCreateRequest) (*models.User, error) {
	if err := s.checkUnique(ctx, 0, req.Username, req.Email); err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, fieldError(validation.NonFieldErrors, "A user with that username or email already exists.")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UserUpdateRequest) (*models.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, req)
}

// UpdateProfile lets a user edit themselves; the role is never touched.
func (s *userService) UpdateProfile(ctx context.Context, user *models.User, req dto.ProfileUpdateRequest) (*models.User, error) {
	return s.apply(ctx, user, req.AsUserUpdate())
}

func (s *userService) apply(ctx context.Context, user *models.User, req dto.UserUpdateRequest) (*models.User, error) {
	username, email := user.Username, user.Email
	if req.Username != nil {
		username = *req.Username
	}
	if req.Email != nil {
		email = *req.Email
	}
	if err := s.checkUnique(ctx, user.ID, username, email); err != nil {
		return nil, err
	}

	updated := *user
	updated.Username = username
	updated.Email = email
	if req.FirstName != nil {
		updated.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		updated.LastName = *req.LastName
	}
	if req.Bio != nil {
		updated.Bio = *req.Bio
	}
	if req.Role != nil {
		updated.Role = models.Role(*req.Role)
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if isDuplicate(err) {
			return nil, fieldError(validation.NonFieldErrors, "A user with that username or email already exists.")
		}
		return nil, err
	}
	return &updated, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	return notFound(s.userRepo.Delete(ctx, user.ID))
}

// CreateSuperuser makes an admin account that can obtain a token through the
// normal signup flow.
func (s *userService) CreateSuperuser(ctx context.Context, username, email string) (*models.User, error) {
	problems := validation.Errors{}
	if err := validation.CheckUsername(username); err != nil {
		problems.Add("username", err.Error())
	}
	if email == "" {
		problems.Add("email", "This field is required.")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	if err := s.checkUnique(ctx, 0, username, email); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// checkUnique rejects a username or email owned by a user other than selfID.
func (s *userService) checkUnique(ctx context.Context, selfID uint, username, email string) error {
	problems := validation.Errors{}

	if other, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		if other.ID != selfID {
			problems.Add("username", "A user with that username already exists.")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if other, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if other.ID != selfID {
			problems.Add("email", "A user with that email already exists.")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}
