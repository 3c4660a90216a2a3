// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/holomush/deskauth/internal/auth"
)

// Command names installed by RegisterAuthHandlers.
const (
	CommandRegister         = "register"
	CommandVerifyCredential = "verify_credential"
	CommandLogin            = "login"
	CommandLogout           = "logout"
	CommandWhoAmI           = "whoami"
)

type registerArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyArgs struct {
	Password string `json:"password"`
	Hash     string `json:"hash"`
}

// VerifyResult is the result of verify_credential.
type VerifyResult struct {
	Match       bool `json:"match"`
	NeedsRehash bool `json:"needs_rehash"`
}

type loginArgs struct {
	Username string  `json:"username"`
	ID       *int64  `json:"id"`
	Password *string `json:"password,omitempty"`
	Hash     *string `json:"hash,omitempty"`
}

// SessionResult is the result of logout and whoami.
type SessionResult struct {
	State    string         `json:"state"`
	Identity *auth.Identity `json:"identity,omitempty"`
}

// RegisterAuthHandlers installs the auth commands on d, backed by svc.
func RegisterAuthHandlers(d *Dispatcher, svc *auth.Service) error {
	handlers := map[string]HandlerFunc{
		CommandRegister:         registerHandler(svc),
		CommandVerifyCredential: verifyHandler(svc),
		CommandLogin:            loginHandler(svc),
		CommandLogout:           logoutHandler(svc),
		CommandWhoAmI:           whoamiHandler(svc),
	}
	for name, h := range handlers {
		if err := d.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// decodeArgs strictly decodes args into v; empty args decode as {}.
func decodeArgs(cmd string, args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrInvalidArgs(cmd, err.Error())
	}
	return nil
}

func registerHandler(svc *auth.Service) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args registerArgs
		if err := decodeArgs(CommandRegister, raw, &args); err != nil {
			return nil, err
		}
		result, err := svc.Register(ctx, args.Username, args.Password)
		if err != nil {
			return nil, err //nolint:wrapcheck // auth errors carry their own codes
		}
		return result, nil
	}
}

func verifyHandler(svc *auth.Service) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args verifyArgs
		if err := decodeArgs(CommandVerifyCredential, raw, &args); err != nil {
			return nil, err
		}
		match, err := svc.VerifyCredential(ctx, args.Password, args.Hash)
		if err != nil {
			return nil, err //nolint:wrapcheck // auth errors carry their own codes
		}
		return VerifyResult{Match: match, NeedsRehash: match && svc.NeedsRehash(args.Hash)}, nil
	}
}

func loginHandler(svc *auth.Service) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args loginArgs
		if err := decodeArgs(CommandLogin, raw, &args); err != nil {
			return nil, err
		}
		if args.ID == nil {
			return nil, ErrInvalidArgs(CommandLogin, "id is required")
		}

		switch {
		case args.Password == nil && args.Hash == nil:
			return svc.Login(ctx, args.Username, *args.ID), nil
		case args.Password != nil && args.Hash != nil:
			result, err := svc.LoginWithCredential(ctx, args.Username, *args.ID, *args.Password, *args.Hash)
			if err != nil {
				return nil, err //nolint:wrapcheck // auth errors carry their own codes
			}
			return result, nil
		default:
			return nil, ErrInvalidArgs(CommandLogin, "password and hash must be given together")
		}
	}
}

func logoutHandler(svc *auth.Service) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		if err := decodeArgs(CommandLogout, raw, &struct{}{}); err != nil {
			return nil, err
		}
		svc.Logout(ctx)
		return SessionResult{State: auth.StateAnonymous.String()}, nil
	}
}

func whoamiHandler(svc *auth.Service) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		if err := decodeArgs(CommandWhoAmI, raw, &struct{}{}); err != nil {
			return nil, err
		}
		identity, ok := svc.WhoAmI(ctx)
		if !ok {
			return SessionResult{State: auth.StateAnonymous.String()}, nil
		}
		return SessionResult{State: auth.StateAuthenticated.String(), Identity: &identity}, nil
	}
}
