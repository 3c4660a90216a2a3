// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/deskauth/pkg/errutil"
)

var tracer = otel.Tracer("deskauth/auth")

// Service provides the authentication operations invoked by the host. It owns no
// state of its own; the current login lives in the SessionStore.
type Service struct {
	policy   PasswordPolicy
	hasher   PasswordHasher
	sessions *SessionStore
	logger   *slog.Logger
}

// NewAuthService creates a new Service that logs to slog.Default().
func NewAuthService(policy PasswordPolicy, hasher PasswordHasher, sessions *SessionStore) (*Service, error) {
	return NewAuthServiceWithLogger(policy, hasher, sessions, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service with an explicit logger.
func NewAuthServiceWithLogger(policy PasswordPolicy, hasher PasswordHasher, sessions *SessionStore, logger *slog.Logger) (*Service, error) {
	if hasher == nil {
		return nil, oops.Code(CodeInvalidConfig).Errorf("password hasher is required")
	}
	if sessions == nil {
		return nil, oops.Code(CodeInvalidConfig).Errorf("session store is required")
	}
	if logger == nil {
		return nil, oops.Code(CodeInvalidConfig).Errorf("logger is required")
	}
	return &Service{
		policy:   policy,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Register validates the username and password and returns the credential hash
// for the caller to store. No account record is created and no id is assigned.
//
// Validation failures are reported on the result. The only error is
// AUTH_HASHING_FAILED.
func (s *Service) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()

	if strings.TrimSpace(username) == "" {
		return s.reject(ctx, span, OperationRegister, ReasonEmptyUsername, "Username cannot be empty"), nil
	}

	if res := s.policy.Validate(password); !res.Valid() {
		recordPolicyRejection(res.Reason)
		return s.reject(ctx, span, OperationRegister, res.Reason, res.Message), nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.fail(ctx, span, OperationRegister, err)
		return nil, oops.Code(CodeHashingFailed).
			With("operation", "hash password").
			Wrap(err)
	}

	recordOperation(OperationRegister, StatusSuccess)
	s.logger.InfoContext(ctx, "credential registered",
		"event", OperationRegister,
		"username", username,
	)

	return &AuthResult{
		Success:        true,
		Message:        MessageRegistered,
		CredentialHash: hash,
	}, nil
}

// VerifyCredential reports whether password matches the stored hash. A wrong
// password is (false, nil); a hash that does not parse is AUTH_MALFORMED_HASH.
func (s *Service) VerifyCredential(ctx context.Context, password, hash string) (bool, error) {
	ctx, span := tracer.Start(ctx, "auth.verify")
	defer span.End()

	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		s.fail(ctx, span, OperationVerify, err)
		return false, err
	}

	span.SetAttributes(attribute.Bool("auth.match", ok))
	if ok {
		recordOperation(OperationVerify, StatusSuccess)
	} else {
		recordOperation(OperationVerify, StatusRejected)
	}
	return ok, nil
}

// Login makes the given account the current session identity, replacing any
// previous one. The caller is trusted to have verified the credential; use
// LoginWithCredential to have the check enforced.
func (s *Service) Login(ctx context.Context, username string, id int64) *AuthResult {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()

	return s.login(ctx, span, OperationLogin, username, id)
}

// LoginWithCredential verifies password against hash and logs the account in
// only on a match. A mismatch yields ReasonInvalidCredentials and leaves the
// session untouched. AUTH_MALFORMED_HASH is returned as an error.
func (s *Service) LoginWithCredential(ctx context.Context, username string, id int64, password, hash string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.login_with_credential")
	defer span.End()

	if strings.TrimSpace(username) == "" {
		return s.reject(ctx, span, OperationLoginWithCredential, ReasonEmptyUsername, "Username cannot be empty"), nil
	}

	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		s.fail(ctx, span, OperationLoginWithCredential, err)
		return nil, err
	}
	if !ok {
		return s.reject(ctx, span, OperationLoginWithCredential, ReasonInvalidCredentials, "Invalid username or password"), nil
	}

	return s.login(ctx, span, OperationLoginWithCredential, username, id), nil
}

func (s *Service) login(ctx context.Context, span trace.Span, operation, username string, id int64) *AuthResult {
	if strings.TrimSpace(username) == "" {
		return s.reject(ctx, span, operation, ReasonEmptyUsername, "Username cannot be empty")
	}

	identity := NewIdentity(id, username)
	s.sessions.Login(identity)

	span.SetAttributes(attribute.Int64("auth.user_id", id))
	recordOperation(operation, StatusSuccess)
	s.logger.InfoContext(ctx, "session started",
		"event", operation,
		"user_id", id,
		"username", username,
	)

	return &AuthResult{
		Success:  true,
		Message:  MessageLoggedIn,
		Identity: &identity,
	}
}

// Logout clears the current session. It always succeeds.
func (s *Service) Logout(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "auth.logout")
	defer span.End()

	prev, wasAuthenticated := s.sessions.Clear()

	recordOperation(OperationLogout, StatusSuccess)
	if wasAuthenticated {
		s.logger.InfoContext(ctx, "session ended",
			"event", OperationLogout,
			"user_id", prev.ID,
			"username", prev.Username,
		)
	}
}

// WhoAmI returns a copy of the current identity, or false when anonymous.
func (s *Service) WhoAmI(ctx context.Context) (Identity, bool) {
	_, span := tracer.Start(ctx, "auth.whoami")
	defer span.End()

	recordOperation(OperationWhoAmI, StatusSuccess)
	return s.sessions.GetCurrent()
}

// NeedsRehash reports whether a stored hash should be replaced by a fresh Hash
// of the same password, e.g. after the cost parameters were raised.
func (s *Service) NeedsRehash(hash string) bool {
	return s.hasher.NeedsRehash(hash)
}

func (s *Service) reject(ctx context.Context, span trace.Span, operation string, reason Reason, message string) *AuthResult {
	span.SetAttributes(attribute.String("auth.reason", reason.String()))
	recordOperation(operation, StatusRejected)
	s.logger.InfoContext(ctx, "request rejected",
		"event", operation,
		"reason", reason.String(),
	)
	return failed(reason, message)
}

func (s *Service) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	recordOperation(operation, StatusError)
	errutil.LogErrorContext(ctx, s.logger.With("event", operation), "auth operation failed", err)
}
