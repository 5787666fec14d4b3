package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/tenant"
	"github.com/hms/hms/internal/domain/user"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

// nonRevealingMessage is returned for every forgot-password request
// that reaches an active tenant, whether or not the account exists.
const nonRevealingMessage = "If the account exists, a reset link has been sent."

type TenantDirectory interface {
	GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error)
}

type StoreResolver interface {
	Resolve(ctx context.Context, tenantID string) (*pgxpool.Pool, error)
}

// ResetMailer delivers the reset link. Implemented by
// notification.Mailer; delivery failures are logged, never surfaced.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, tenantDomain, token string) error
}

type ForgotInput struct {
	TenantDomain    string `json:"tenantDomain"`
	UsernameOrEmail string `json:"usernameOrEmail"`
}

type ResetInput struct {
	TenantDomain string `json:"tenantDomain"`
	Token        string `json:"token"`
	NewPassword  string `json:"newPassword"`
}

type ChangeInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type Service struct {
	tenants TenantDirectory
	stores  StoreResolver
	users   user.Repository
	tokens  TokenRepository
	history HistoryRepository
	mailer  ResetMailer
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(tenants TenantDirectory, stores StoreResolver, users user.Repository, tokens TokenRepository, history HistoryRepository, mailer ResetMailer, logger zerolog.Logger) *Service {
	return &Service{
		tenants: tenants,
		stores:  stores,
		users:   users,
		tokens:  tokens,
		history: history,
		mailer:  mailer,
		logger:  logger,
		now:     time.Now,
	}
}

// ForgotPassword mints a single-use reset token for the account, when it
// exists, and emails the link. The response never discloses whether the
// account was found.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotInput) (map[string]string, error) {
	if in.TenantDomain == "" || in.UsernameOrEmail == "" {
		return nil, apperr.E(apperr.KindValidation, "tenantDomain and usernameOrEmail are required")
	}

	t, err := s.tenants.GetByDomain(ctx, in.TenantDomain)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, apperr.E(apperr.KindForbidden, "Hospital is not active")
	}

	pool, err := s.stores.Resolve(ctx, t.ID.String())
	if err != nil {
		return nil, fmt.Errorf("forgot password resolve store: %w", err)
	}
	storeCtx := db.WithPool(ctx, pool)

	u, err := s.users.GetByUsernameOrEmail(storeCtx, strings.TrimSpace(in.UsernameOrEmail))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return map[string]string{"message": nonRevealingMessage}, nil
		}
		return nil, fmt.Errorf("forgot password user lookup: %w", err)
	}

	token := &ResetToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TenantID:  t.ID.String(),
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}
	if err := s.tokens.Create(storeCtx, token); err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, t.Domain, token.Token); err != nil {
		s.logger.Error().Err(err).
			Str("tenant_id", t.ID.String()).
			Str("username", u.Username).
			Msg("reset email delivery failed")
	}

	s.logger.Info().
		Str("tenant_id", t.ID.String()).
		Str("username", u.Username).
		Msg("password reset token created")

	return map[string]string{"message": nonRevealingMessage}, nil
}

// ResetPassword redeems a reset token. The token must be unused,
// unexpired and minted for the same tenant; redemption also clears a
// pending forced password change and unlocks PASSWORD_EXPIRED accounts.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) (map[string]string, error) {
	if in.TenantDomain == "" || in.Token == "" || in.NewPassword == "" {
		return nil, apperr.E(apperr.KindValidation, "tenantDomain, token, and newPassword are required")
	}

	t, err := s.tenants.GetByDomain(ctx, in.TenantDomain)
	if err != nil {
		return nil, err
	}

	pool, err := s.stores.Resolve(ctx, t.ID.String())
	if err != nil {
		return nil, fmt.Errorf("reset password resolve store: %w", err)
	}
	storeCtx := db.WithPool(ctx, pool)

	token, err := s.tokens.GetByToken(storeCtx, in.Token)
	if err != nil {
		return nil, err
	}
	if !token.Valid(t.ID.String(), s.now()) {
		return nil, apperr.E(apperr.KindValidation, "Invalid or expired reset token")
	}

	u, err := s.users.GetByID(storeCtx, token.UserID.String())
	if err != nil {
		return nil, err
	}

	if err := s.checkNewPassword(storeCtx, u, in.NewPassword); err != nil {
		return nil, err
	}
	// Consume the token before touching the account: under concurrent
	// redemption only the request that wins the used=FALSE guard may
	// rotate the password.
	if err := s.tokens.MarkUsed(storeCtx, token); err != nil {
		return nil, err
	}
	if err := s.applyNewPassword(storeCtx, u, in.NewPassword); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", t.ID.String()).
		Str("username", u.Username).
		Msg("password reset completed")

	return map[string]string{"message": "Password has been reset successfully"}, nil
}

// ChangePassword rotates the password of an authenticated user after
// verifying the old one. Runs behind the tenant middleware, so the
// store pool is already on ctx.
func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangeInput) (map[string]string, error) {
	if in.OldPassword == "" || in.NewPassword == "" {
		return nil, apperr.E(apperr.KindValidation, "oldPassword and newPassword are required")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(u.PasswordHash, in.OldPassword) {
		return nil, apperr.E(apperr.KindValidation, "Old password is incorrect")
	}

	if err := s.rotatePassword(ctx, u, in.NewPassword); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", u.Username).Msg("password changed")
	return map[string]string{"message": "Password changed successfully"}, nil
}

// rotatePassword applies the policy and history checks, archives the
// outgoing hash and stores the new one. The account comes out ACTIVE
// with forcePasswordChange cleared.
func (s *Service) rotatePassword(ctx context.Context, u *user.User, newPassword string) error {
	if err := s.checkNewPassword(ctx, u, newPassword); err != nil {
		return err
	}
	return s.applyNewPassword(ctx, u, newPassword)
}

// checkNewPassword runs the policy and history checks without mutating
// anything, so callers can sequence side effects after it.
func (s *Service) checkNewPassword(ctx context.Context, u *user.User, newPassword string) error {
	if err := user.ValidatePassword(newPassword); err != nil {
		return err
	}

	recent, err := s.history.Recent(ctx, u.ID, HistoryLimit)
	if err != nil {
		return fmt.Errorf("load password history: %w", err)
	}
	for _, hash := range append([]string{u.PasswordHash}, recent...) {
		if hash == "" {
			continue
		}
		if user.CheckPassword(hash, newPassword) {
			return apperr.E(apperr.KindValidation,
				fmt.Sprintf("New password must not match your last %d passwords", HistoryLimit))
		}
	}
	return nil
}

func (s *Service) applyNewPassword(ctx context.Context, u *user.User, newPassword string) error {
	if err := s.history.Add(ctx, u.ID, u.PasswordHash, HistoryLimit); err != nil {
		return fmt.Errorf("archive password hash: %w", err)
	}

	hash, err := user.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	u.PasswordHash = hash
	u.Status = user.StatusActive
	u.ForcePasswordChange = false
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}
	return nil
}
