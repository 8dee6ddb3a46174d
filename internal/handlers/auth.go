package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnani/nymu-app/client/internal/domain"
)

// userJSON segue a convenção do backend: "nome" e "foto"
type userJSON struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nome     string `json:"nome,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Telefone string `json:"telefone,omitempty"`
	Foto     string `json:"foto,omitempty"`
}

func toUserJSON(u domain.User) userJSON {
	return userJSON{
		ID:       u.ID,
		Email:    u.Email,
		Nome:     u.Name,
		CPF:      u.CPF,
		Telefone: u.Telefone,
		Foto:     u.Avatar,
	}
}

// Login autentica e devolve {result: {token, user}}
// Endpoint: POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.bindJSON(c, &req) {
		return
	}

	token, user, err := h.store.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": gin.H{
			"token": token,
			"user":  toUserJSON(user),
		},
	})
}

// ValidateCode confirma o código enviado por email
// Endpoint: POST /auth/validateCode
func (h *Handler) ValidateCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.store.ValidateCode(req.Email, req.Code); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Código validado com sucesso"})
}

// Register cadastra um usuário
// Endpoint: POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		CPF      string `json:"cpf"`
		Code     string `json:"code"`
	}
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.store.Register(req.Email, req.Password, req.CPF, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Cadastro realizado com sucesso",
		"user":    toUserJSON(user),
	})
}

// UpdateProfile altera os dados do perfil
// Endpoint: PUT /auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		Nome     *string `json:"nome"`
		Telefone *string `json:"telefone"`
		Foto     *string `json:"foto"`
	}
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.store.UpdateProfile(owner(c), domain.ProfileUpdate{
		Nome:     req.Nome,
		Telefone: req.Telefone,
		Foto:     req.Foto,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserJSON(user), "message": "Perfil atualizado com sucesso"})
}

// ChangePassword troca a senha do usuário autenticado
// Endpoint: POST /auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.store.ChangePassword(owner(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Senha alterada com sucesso"})
}
