package handlers

import (
	"net/http"

	"github.com/lifecarechoice/leadgate/internal/antiforgery"
	"github.com/lifecarechoice/leadgate/internal/middleware"
	"github.com/lifecarechoice/leadgate/internal/models"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
)

// TokenHandler serves anti-forgery token issuance.
type TokenHandler struct {
	tokens   *antiforgery.TokenStore
	ipConfig *pkghttp.IPConfig
}

func NewTokenHandler(tokens *antiforgery.TokenStore, ipConfig *pkghttp.IPConfig) *TokenHandler {
	return &TokenHandler{tokens: tokens, ipConfig: ipConfig}
}

// TokenResponse is the issuance payload. ExpiresIn is seconds.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// Issue mints a token bound to the requesting client. The response must
// never be cached by an intermediary.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	token, err := h.tokens.Issue(r.Context(), clientIP)
	if err != nil {
		middleware.SetErrorCode(r, models.CodeInternalError)
		pkghttp.WriteInternalError(w)
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	pkghttp.WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresIn: int(h.tokens.TTL().Seconds()),
	})
}
