package auth

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/models"
)

// DefaultUserRoles grants roles to well known usernames when they register.
var DefaultUserRoles = map[string][]string{
	"admin": {models.RoleAdmin, models.RoleTriviaAdmin},
}

// Result is returned by a successful login.
type Result struct {
	Token string
	User  *models.User
}

type Service struct {
	db           *gorm.DB
	recorder     *audit.Recorder
	signer       *Signer
	throttle     *Throttle
	defaultRoles map[string][]string
}

func NewService(db *gorm.DB, recorder *audit.Recorder, signer *Signer, throttle *Throttle, defaultRoles map[string][]string) *Service {
	if defaultRoles == nil {
		defaultRoles = DefaultUserRoles
	}

	return &Service{
		db:           db,
		recorder:     recorder,
		signer:       signer,
		throttle:     throttle,
		defaultRoles: defaultRoles,
	}
}

func (s *Service) Signer() *Signer {
	return s.signer
}

// Authenticate checks credentials and returns a signed token. Failed
// attempts are counted against the session of ctx.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Result, error) {
	session := SessionFromContext(ctx)
	if err := s.throttle.Allow(session); err != nil {
		return nil, err
	}

	user := &models.User{}
	res := s.db.WithContext(ctx).Preload("Roles").Where("username = ?", username).Limit(1).Find(user)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 || !CheckPassword(user.Password, password) {
		s.throttle.Failure(session)
		log.WithField("session", session).Debug("failed login attempt")
		return nil, ErrUnauthorized
	}

	s.throttle.Success(session)

	token, err := s.signer.Sign(Identity{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.RoleNames(),
	})
	if err != nil {
		return nil, err
	}

	return &Result{Token: token, User: user}, nil
}

var (
	ErrUsernameTaken      = errors.New("username is taken")
	ErrMissingCredentials = errors.New("username and password are required")
)

// Register creates a user and logs them in.
func (s *Service) Register(ctx context.Context, username, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       models.NewID(models.TypeUser),
		Username: username,
		Password: hash,
	}

	err = s.recorder.Transaction(ctx, s.db, func(tx *audit.Tx) error {
		var taken int64
		if err := tx.DB().Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUsernameTaken
		}

		if names := s.defaultRoles[username]; len(names) > 0 {
			if err := tx.DB().Where("name IN ?", names).Find(&user.Roles).Error; err != nil {
				return err
			}
		}

		return tx.Create(user)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"user": user.ID, "roles": user.RoleNames()}).Info("registered user")

	return s.Authenticate(ctx, username, password)
}

// CurrentUser loads the user of the request identity.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	id, err := Require(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	res := s.db.WithContext(ctx).Preload("Roles").Where("id = ?", id.UserID).Limit(1).Find(user)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUnauthorized
	}

	return user, nil
}
