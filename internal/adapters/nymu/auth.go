package nymu

import (
	"context"
	"net/http"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

// Login autentica com email e senha e devolve o token e o usuário
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	resp, err := Request[LoginResponse](ctx, c, http.MethodPost, PathLogin, LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	if resp.Result == nil || resp.Result.Token == "" {
		return nil, malformed(PathLogin, "token ausente", nil)
	}
	if resp.Result.User == nil {
		return nil, malformed(PathLogin, "usuário ausente", nil)
	}

	return &ports.LoginResult{
		Token: resp.Result.Token,
		User:  decodeLoginUser(resp.Result.User),
	}, nil
}

// ValidateCode confirma o código de verificação enviado por email
func (c *Client) ValidateCode(ctx context.Context, email, code string) (*ports.ActionResult, error) {
	resp, err := Request[ActionResponse](ctx, c, http.MethodPost, PathValidateCode, ValidateCodeRequest{
		Email: email,
		Code:  code,
	})
	if err != nil {
		return nil, err
	}
	return &ports.ActionResult{Success: resp.Success, Message: resp.Message}, nil
}

// Register cadastra um novo usuário
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*ports.RegisterResult, error) {
	resp, err := Request[RegisterResponse](ctx, c, http.MethodPost, PathRegister, RegisterRequest{
		Email:    reg.Email,
		Password: reg.Password,
		CPF:      reg.CPF,
		Code:     reg.Code,
	})
	if err != nil {
		return nil, err
	}

	result := &ports.RegisterResult{Success: resp.Success, Message: resp.Message}
	if resp.User != nil {
		result.User = decodeLoginUser(resp.User)
	}
	return result, nil
}

// UpdateProfile atualiza os dados do usuário autenticado.
// A foto devolvida é convertida em URL absoluta quando vier como caminho relativo.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*ports.ProfileResult, error) {
	resp, err := Request[ProfileResponse](ctx, c, http.MethodPut, PathUpdateProfile, UpdateProfileRequest{
		Nome:     update.Nome,
		Telefone: update.Telefone,
		Foto:     update.Foto,
	}, WithAuth())
	if err != nil {
		return nil, err
	}

	if resp.User == nil {
		return nil, malformed(PathUpdateProfile, "usuário ausente", nil)
	}

	return &ports.ProfileResult{
		User:    decodeProfileUser(c.BaseURL(), resp.User),
		Message: resp.Message,
	}, nil
}

// ChangePassword troca a senha do usuário autenticado
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) (*ports.ActionResult, error) {
	resp, err := Request[ActionResponse](ctx, c, http.MethodPost, PathChangePassword, ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, WithAuth())
	if err != nil {
		return nil, err
	}
	return &ports.ActionResult{Success: resp.Success, Message: resp.Message}, nil
}
