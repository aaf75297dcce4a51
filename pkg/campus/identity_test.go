package campus

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestIdentityService(test *testing.T, store *stubStore, options ...IdentityOption) *IdentityService {
	test.Helper()
	options = append([]IdentityOption{WithIdentityIDGenerator(func() string { return "fixed" })}, options...)
	service, err := NewIdentityService(store, func() int64 { return 42 }, options...)
	if err != nil {
		test.Fatalf("service init failed: %v", err)
	}
	return service
}

func TestRegisterCreatesVerifiedStudent(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := newTestIdentityService(test, store)

	user, err := service.Register(context.Background(), "  Jane Doe  ", mustEmail(test, "jane.doe@fitmat.edu"), " S12345 ")
	if err != nil {
		test.Fatalf("register failed: %v", err)
	}
	if user.ID.String() != "u_fixed" {
		test.Fatalf("expected user id u_fixed, got %q", user.ID.String())
	}
	if user.Name != "Jane Doe" || user.StudentID != "S12345" {
		test.Fatalf("expected trimmed fields, got %+v", user)
	}
	if user.Role != RoleStudent || !user.Verified || user.Age != 18 {
		test.Fatalf("unexpected account defaults: %+v", user)
	}
	if user.Balance != 1000 {
		test.Fatalf("expected starting balance 1000, got %d", user.Balance)
	}
	if user.CreatedUnixUTC != 42 {
		test.Fatalf("expected creation time 42, got %d", user.CreatedUnixUTC)
	}
	if _, ok := store.users["u_fixed"]; !ok {
		test.Fatalf("expected user persisted")
	}
}

func TestRegisterHonorsOverrides(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := newTestIdentityService(test, store,
		WithCampusEmailDomain("Example.ORG"),
		WithStartingBalance(250),
	)

	user, err := service.Register(context.Background(), "Sam", mustEmail(test, "sam@example.org"), "")
	if err != nil {
		test.Fatalf("register failed: %v", err)
	}
	if user.Balance != 250 {
		test.Fatalf("expected balance 250, got %d", user.Balance)
	}
}

func TestRegisterRejectsForeignDomain(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := newTestIdentityService(test, store)

	_, err := service.Register(context.Background(), "Jane", mustEmail(test, "jane@gmail.com"), "")
	if !errors.Is(err, ErrInvalidEmail) {
		test.Fatalf(errorMismatchFmt, ErrInvalidEmail, err)
	}
	if !strings.Contains(err.Error(), "fitmat.edu") {
		test.Fatalf("expected domain hint in error, got %q", err.Error())
	}
}

func TestRegisterRejectsEmptyName(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := newTestIdentityService(test, store)

	_, err := service.Register(context.Background(), "   ", mustEmail(test, "jane@fitmat.edu"), "")
	if !errors.Is(err, ErrInvalidName) {
		test.Fatalf(errorMismatchFmt, ErrInvalidName, err)
	}
}

func TestRegisterRejectsTakenEmail(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
	service := newTestIdentityService(test, store)

	_, err := service.Register(context.Background(), "Jane", mustEmail(test, stubUserEmailValue), "")
	if !errors.Is(err, ErrEmailTaken) {
		test.Fatalf(errorMismatchFmt, ErrEmailTaken, err)
	}
}

func TestRegisterReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.getUserByEmailError = errStoreFailure
	service := newTestIdentityService(test, store)

	_, err := service.Register(context.Background(), "Jane", mustEmail(test, "jane@fitmat.edu"), "")
	if !errors.Is(err, errStoreFailure) {
		test.Fatalf(errorMismatchFmt, errStoreFailure, err)
	}
}

func TestAuthenticateMatchesEmail(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	seeded := seedStubUser(test, store, stubUserIDValue, stubUserEmailValue, 1500)
	service := newTestIdentityService(test, store)

	user, err := service.Authenticate(context.Background(), seeded.Email)
	if err != nil {
		test.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != seeded.ID {
		test.Fatalf("expected user %q, got %q", seeded.ID.String(), user.ID.String())
	}
}

func TestAuthenticateUnknownEmail(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := newTestIdentityService(test, store)

	_, err := service.Authenticate(context.Background(), mustEmail(test, "nobody@fitmat.edu"))
	if !errors.Is(err, ErrUnknownUser) {
		test.Fatalf(errorMismatchFmt, ErrUnknownUser, err)
	}
}
