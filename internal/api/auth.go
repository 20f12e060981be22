package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
)

// DTO эндпойнтов аутентификации. Формы зеркалят REST-контракт бэкенда.

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Signup регистрирует пользователя и возвращает выданную пару токенов.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*models.TokenPair, error) {
	const op = "api.Signup"

	var out tokenPairResponse
	if err := c.do(ctx, http.MethodPost, "/signup/", "", signupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Access == "" || out.Refresh == "" {
		return nil, fmt.Errorf("%s: %w: empty token pair", op, ErrMalformedResponse)
	}

	return &models.TokenPair{AccessToken: out.Access, RefreshToken: out.Refresh}, nil
}

// Login выполняет вход по email+пароль и возвращает пару токенов.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "api.Login"

	var out tokenPairResponse
	if err := c.do(ctx, http.MethodPost, "/login/", "", loginRequest{
		Email:    email,
		Password: password,
	}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Access == "" || out.Refresh == "" {
		return nil, fmt.Errorf("%s: %w: empty token pair", op, ErrMalformedResponse)
	}

	return &models.TokenPair{AccessToken: out.Access, RefreshToken: out.Refresh}, nil
}

// Refresh обменивает refresh-токен на новый access-токен.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "api.Refresh"

	var out refreshResponse
	if err := c.do(ctx, http.MethodPost, "/token/refresh/", "", refreshRequest{
		Refresh: refreshToken,
	}, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if out.Access == "" {
		return "", fmt.Errorf("%s: %w: empty access token", op, ErrMalformedResponse)
	}

	return out.Access, nil
}
