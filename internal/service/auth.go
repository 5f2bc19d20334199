package service

import (
	"context"
	"errors"

	"outdoor-furniture/internal/core/auth"
)

// ErrUnknownUser 邮箱不在目录里，拒绝签发
var ErrUnknownUser = errors.New("unknown user")

type TokenIssuer struct {
	jwt *auth.JWTer
	dir *Directory
}

func NewTokenIssuer(j *auth.JWTer, dir *Directory) *TokenIssuer {
	return &TokenIssuer{jwt: j, dir: dir}
}

func (s *TokenIssuer) Issue(ctx context.Context, email string) (string, error) {
	u, err := s.dir.Lookup(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUnknownUser
	}
	return s.jwt.Issue(u.Email)
}
