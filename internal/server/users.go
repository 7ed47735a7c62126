package server

import (
	"errors"
	"net/http"

	"github.com/and161185/paytrack/internal/errs"
	"github.com/and161185/paytrack/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func (srv *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		srv.writeError(w, err)
		return
	}
	if err := model.Validate(creds); err != nil {
		srv.writeError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}

	if err := srv.storage.CreateUser(r.Context(), creds.Login, string(hash)); err != nil {
		srv.writeError(w, err)
		return
	}

	user, _, err := srv.storage.GetUserByLogin(r.Context(), creds.Login)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	srv.issueToken(w, user)
}

func (srv *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		srv.writeError(w, err)
		return
	}
	if err := model.Validate(creds); err != nil {
		srv.writeError(w, err)
		return
	}

	user, hash, err := srv.storage.GetUserByLogin(r.Context(), creds.Login)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		srv.writeError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	srv.issueToken(w, user)
}

func (srv *Server) issueToken(w http.ResponseWriter, user model.User) {
	token, err := srv.deps.TokenManager.GenerateToken(user.ID)
	if err != nil {
		srv.deps.Logger.Errorf("generate token for user %d: %v", user.ID, err)
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}
