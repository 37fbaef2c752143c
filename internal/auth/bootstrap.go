package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/idgen"
	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
)

// BootstrapAdmin creates the configured admin account with role Admin and a
// synthetic email if no user with that username exists yet (spec.md §4.6).
// Safe to call on every startup: a no-op once the admin exists.
func BootstrapAdmin(ctx context.Context, users store.UserStore, adminUsername, adminPassword string) error {
	exists, err := users.UsernameExists(ctx, adminUsername)
	if err != nil {
		return errs.Storage("users.exists", err)
	}
	if exists {
		return nil
	}

	hash, salt, err := security.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	now := uint64(time.Now().Unix())
	email := fmt.Sprintf("%s@lair-chat.local", adminUsername)
	admin := &types.User{
		ID:           idgen.New(),
		Username:     adminUsername,
		Email:        &email,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
		Role:         types.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return errs.Storage("users.create", err)
	}
	logging.L().Info("bootstrapped admin account")
	return nil
}
