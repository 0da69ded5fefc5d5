package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/handlers/render"
	"github.com/nkiryanov/contactbook/internal/logger"
	"github.com/nkiryanov/contactbook/internal/models"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func tokenPairResponse(pair models.TokenPair) tokenPair {
	return tokenPair{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	}
}

func handleRegister(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=3"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type response struct {
		Message string `json:"message"`

		// Verification token is delivered out-of-band (mail service is an
		// external collaborator); it is returned here for the caller that
		// owns the delivery
		VerificationToken string `json:"verification_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, verify, err := auth.Register(r.Context(), data.Username, data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("can't register user", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		l.Info("user registered", "user_id", user.ID)
		render.JSONWithStatus(w, response{
			Message:           "User registered, confirm your email",
			VerificationToken: verify.Value,
		}, http.StatusCreated)
	})
}

func handleVerifyEmail(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Token string `json:"token" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := auth.VerifyEmail(r.Context(), data.Token)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenInvalid):
				render.ServiceError(w, "Verification token is invalid", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Verification token is invalid", http.StatusBadRequest)
			default:
				l.Error("can't verify user", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		l.Info("user verified", "user_id", user.ID)
		render.JSON(w, response{Message: "Email verified, you may login now"})
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := auth.Login(r.Context(), data.Login, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Incorrect login or password", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrAccountNotVerified):
				render.ServiceError(w, "Email is not verified yet, check your inbox", http.StatusForbidden)
			default:
				l.Error("can't login user", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, tokenPairResponse(pair))
	})
}

func handleTokenRefresh(auth authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := auth.Refresh(r.Context(), data.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
				render.ServiceError(w, "Refresh token is invalid", http.StatusUnauthorized)
			default:
				l.Error("can't refresh tokens", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, tokenPairResponse(pair))
	})
}

func handleLogout(auth authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = auth.Logout(r.Context(), data.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenInvalid):
				render.ServiceError(w, "Refresh token is invalid", http.StatusUnauthorized)
			default:
				l.Error("can't logout user", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
