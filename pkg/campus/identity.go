package campus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultCampusEmailDomain = "fitmat.edu"
	defaultStartingBalance   = 1000
	defaultStudentAge        = 18
)

// IdentityService resolves and registers accounts. It is not a real
// authentication system: Authenticate succeeds on e-mail match alone.
type IdentityService struct {
	store           Store
	nowFn           func() int64
	idFn            func() string
	emailDomain     string
	startingBalance int64
	logger          OperationLogger
}

// IdentityOption configures an IdentityService instance.
type IdentityOption func(*IdentityService)

// WithCampusEmailDomain overrides the e-mail domain new accounts must use.
func WithCampusEmailDomain(domain string) IdentityOption {
	return func(service *IdentityService) {
		service.emailDomain = strings.ToLower(strings.TrimSpace(domain))
	}
}

// WithStartingBalance overrides the token balance granted at signup.
func WithStartingBalance(balance int64) IdentityOption {
	return func(service *IdentityService) {
		service.startingBalance = balance
	}
}

// WithIdentityOperationLogger wires a logger receiving every operation.
func WithIdentityOperationLogger(logger OperationLogger) IdentityOption {
	return func(service *IdentityService) {
		service.logger = logger
	}
}

// WithIdentityIDGenerator overrides user id generation (tests).
func WithIdentityIDGenerator(idFn func() string) IdentityOption {
	return func(service *IdentityService) {
		service.idFn = idFn
	}
}

// NewIdentityService wires an IdentityService.
func NewIdentityService(store Store, now func() int64, options ...IdentityOption) (*IdentityService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &IdentityService{
		store:           store,
		nowFn:           now,
		idFn:            uuid.NewString,
		emailDomain:     defaultCampusEmailDomain,
		startingBalance: defaultStartingBalance,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// Register creates a verified student account with the starting balance.
// The e-mail must belong to the campus domain and be unused; uniqueness is
// double-checked by the store's index.
func (service *IdentityService) Register(ctx context.Context, name string, email Email, studentID string) (User, error) {
	var created User
	operationError := func() error {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" {
			return fmt.Errorf("%w: empty value", ErrInvalidName)
		}
		if email.Domain() != service.emailDomain {
			return fmt.Errorf("%w: must use a @%s address", ErrInvalidEmail, service.emailDomain)
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if _, err := transactionStore.GetUserByEmail(ctx, email); err == nil {
				return ErrEmailTaken
			} else if !isUnknownUser(err) {
				return err
			}
			userID, err := NewUserID(userIDPrefix + service.idFn())
			if err != nil {
				return err
			}
			user := User{
				ID:             userID,
				Name:           trimmedName,
				Email:          email,
				StudentID:      strings.TrimSpace(studentID),
				Role:           RoleStudent,
				Balance:        service.startingBalance,
				Age:            defaultStudentAge,
				Verified:       true,
				CreatedUnixUTC: service.nowFn(),
			}
			if err := transactionStore.CreateUser(ctx, user); err != nil {
				return err
			}
			created = user
			return nil
		})
	}()
	emitOperation(ctx, service.logger, OperationLog{
		Operation: operationRegister,
		UserID:    created.ID,
		SubjectID: email.String(),
		Error:     operationError,
	})
	if operationError != nil {
		return User{}, operationError
	}
	return created, nil
}

// Authenticate resolves the account for an e-mail address. No password is
// verified against stored credentials; a match is a login.
func (service *IdentityService) Authenticate(ctx context.Context, email Email) (User, error) {
	user, operationError := service.store.GetUserByEmail(ctx, email)
	emitOperation(ctx, service.logger, OperationLog{
		Operation: operationAuthenticate,
		UserID:    user.ID,
		SubjectID: email.String(),
		Error:     operationError,
	})
	if operationError != nil {
		return User{}, operationError
	}
	return user, nil
}

// User resolves an account by id (session lookups).
func (service *IdentityService) User(ctx context.Context, userID UserID) (User, error) {
	return service.store.GetUser(ctx, userID)
}

func isUnknownUser(err error) bool {
	return errors.Is(err, ErrUnknownUser)
}
