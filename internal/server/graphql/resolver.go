package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/mkarpis/accountd/internal/logging"
	"github.com/mkarpis/accountd/internal/server/models"
	"github.com/mkarpis/accountd/internal/server/services"
)

// RootResolver dispatches every query and mutation to the account service.
type RootResolver struct {
	accounts *services.AccountService
	logger   logging.Logger
}

func NewRootResolver(accounts *services.AccountService, logger logging.Logger) *RootResolver {
	return &RootResolver{
		accounts: accounts,
		logger:   logger.With("module", "graphql"),
	}
}

// NewSchema parses the SDL against a fresh root resolver.
func NewSchema(accounts *services.AccountService, logger logging.Logger) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, NewRootResolver(accounts, logger))
}

type createUserInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

type updateUserInput struct {
	ID           graphql.ID
	FirstName    *string
	LastName     *string
	Organization *string
	BadgeNumber  *int32
}

// userResolver wraps a redacted user record. The password hash has no field
// here, so it can never be serialized outward.
type userResolver struct {
	u *models.User
}

func (r *userResolver) ID() graphql.ID { return graphql.ID(r.u.ID) }

func (r *userResolver) Email() string { return r.u.Email }

func (r *userResolver) FirstName() *string { return optionalString(r.u.FirstName) }

func (r *userResolver) LastName() *string { return optionalString(r.u.LastName) }

func (r *userResolver) Organization() *string { return optionalString(r.u.Organization) }

func (r *userResolver) BadgeNumber() *int32 {
	if r.u.BadgeNumber == 0 {
		return nil
	}
	n := r.u.BadgeNumber
	return &n
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type authPayloadResolver struct {
	token string
	user  *models.User
}

func (r *authPayloadResolver) Token() string { return r.token }

func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.user} }

func (r *RootResolver) CreateUser(ctx context.Context, args struct{ Input createUserInput }) (*authPayloadResolver, error) {
	r.logger.Info(ctx, "creating user", "email", args.Input.Email)

	res, err := r.accounts.Create(ctx, args.Input.Email, args.Input.Password, args.Input.ConfirmPassword)
	if err != nil {
		r.logger.Warn(ctx, "create user failed", "email", args.Input.Email, "error", err.Error())
		return nil, toAPIError(err)
	}

	return &authPayloadResolver{token: res.Token, user: res.User}, nil
}

func (r *RootResolver) AuthenticateUser(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authPayloadResolver, error) {
	r.logger.Info(ctx, "authenticating user", "email", args.Email)

	res, err := r.accounts.Authenticate(ctx, args.Email, args.Password)
	if err != nil {
		r.logger.Warn(ctx, "authentication failed", "email", args.Email, "error", err.Error())
		return nil, toAPIError(err)
	}

	return &authPayloadResolver{token: res.Token, user: res.User}, nil
}

func (r *RootResolver) VerifyToken(ctx context.Context, args struct{ Token string }) (*userResolver, error) {
	user, err := r.accounts.VerifyToken(ctx, args.Token)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &userResolver{u: user}, nil
}

func (r *RootResolver) ReadUser(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	user, err := r.accounts.Read(ctx, string(args.ID))
	if err != nil {
		return nil, toAPIError(err)
	}

	return &userResolver{u: user}, nil
}

func (r *RootResolver) UpdateUser(ctx context.Context, args struct{ Input updateUserInput }) (*userResolver, error) {
	r.logger.Info(ctx, "updating user", "id", string(args.Input.ID))

	user, err := r.accounts.Update(ctx, string(args.Input.ID), services.UpdateParams{
		FirstName:    args.Input.FirstName,
		LastName:     args.Input.LastName,
		Organization: args.Input.Organization,
		BadgeNumber:  args.Input.BadgeNumber,
	})
	if err != nil {
		return nil, toAPIError(err)
	}

	return &userResolver{u: user}, nil
}

func (r *RootResolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	r.logger.Info(ctx, "deleting user", "id", string(args.ID))

	snapshot, err := r.accounts.Delete(ctx, string(args.ID))
	if err != nil {
		return nil, toAPIError(err)
	}

	return &userResolver{u: snapshot}, nil
}
