package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/serializers"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// REST user messages.
const (
	MsgUserRegistered    = "User registered successfully"
	MsgUserExists        = "User already exists"
	MsgUserLoggedOut     = "User logged out successfully."
	MsgUserFetched       = "User fetched successfully"
	MsgPasswordChanged   = "Password changed successfully"
	MsgWrongOldPassword  = "Old password is incorrect."
	MsgInvalidCredential = "Unable to log in with provided credentials."
	MsgTooManyAttempts   = "Too many login attempts. Please try again later."
	msgActionRegistering = "creating user"
	msgActionLoggingIn   = "logging in"
	msgActionLoggingOut  = "logging out"
	msgActionProfile     = "fetching user"
	msgActionPassword    = "changing password"
)

// UsersAPIController serves registration, token login and the account
// endpoints of the REST surface.
type UsersAPIController struct {
	service     *auth.Service
	permissions PermissionLister
	validator   *validation.Validator
	auditor     *audit.Service
}

// NewUsersAPIController creates the REST user controller. auditor may be nil.
func NewUsersAPIController(service *auth.Service, permissions PermissionLister, v *validation.Validator, auditor *audit.Service) *UsersAPIController {
	return &UsersAPIController{
		service:     service,
		permissions: permissions,
		validator:   v,
		auditor:     auditor,
	}
}

// decode reads the JSON body into dst.
func decode(c *gin.Context, dst any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// Register handles POST /rest/register/ and answers with a fresh token.
func (uc *UsersAPIController) Register(c *gin.Context) {
	var req serializers.RegisterRequest
	if err := decode(c, &req); err != nil {
		respondBadRequest(c, err, errorWhile(msgActionRegistering))
		return
	}
	if err := req.Validate(uc.validator); err != nil {
		respondBadRequest(c, err, errorWhile(msgActionRegistering))
		return
	}

	user := req.User()
	token, err := uc.service.Register(user, req.Password, true)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondError(c, http.StatusBadRequest, MsgUserExists, errorWhile(msgActionRegistering))
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			respondError(c, http.StatusBadRequest, validation.Errors{"password": err.Error()}, errorWhile(msgActionRegistering))
		default:
			respondInternalError(c, err, msgActionRegistering)
		}
		return
	}

	if uc.auditor != nil {
		uc.auditor.LogRegister(user, audit.RequestFromContext(c))
	}
	respondData(c, http.StatusCreated, serializers.TokenResponse{Token: token}, MsgUserRegistered)
}

// Login handles POST /restUserLogin/. A successful login replaces any
// token the user already had.
func (uc *UsersAPIController) Login(c *gin.Context) {
	var req serializers.LoginRequest
	if err := decode(c, &req); err != nil {
		respondBadRequest(c, err, errorWhile(msgActionLoggingIn))
		return
	}
	if err := req.Validate(uc.validator); err != nil {
		respondBadRequest(c, err, errorWhile(msgActionLoggingIn))
		return
	}

	email := req.Identifier()
	meta := audit.RequestFromContext(c)
	user, err := uc.service.Authenticate(c.ClientIP(), email, req.Password)
	if err != nil {
		if uc.auditor != nil {
			uc.auditor.LogAuth(0, "token_login", email, meta, err)
		}
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			respondError(c, http.StatusTooManyRequests, MsgTooManyAttempts, errorWhile(msgActionLoggingIn))
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(c, http.StatusBadRequest, MsgInvalidCredential, errorWhile(msgActionLoggingIn))
		default:
			respondInternalError(c, err, msgActionLoggingIn)
		}
		return
	}

	token, err := uc.service.IssueToken(user.ID)
	if err != nil {
		respondInternalError(c, err, msgActionLoggingIn)
		return
	}

	if uc.auditor != nil {
		uc.auditor.LogAuth(user.ID, "token_login", email, meta, nil)
	}
	c.JSON(http.StatusOK, serializers.TokenResponse{Token: token})
}

// Logout handles DELETE /rest/userLogout/ by deleting the caller's token.
func (uc *UsersAPIController) Logout(c *gin.Context) {
	user := auth.GetUser(c)
	if err := uc.service.RevokeToken(user.ID); err != nil {
		respondInternalError(c, err, msgActionLoggingOut)
		return
	}

	if uc.auditor != nil {
		uc.auditor.LogAuth(user.ID, "token_logout", user.Email, audit.RequestFromContext(c), nil)
	}
	respondData(c, http.StatusOK, MsgUserLoggedOut, MsgUserLoggedOut)
}

// Me handles GET /rest/user/me/.
func (uc *UsersAPIController) Me(c *gin.Context) {
	userID := auth.GetUserID(c)
	user, err := uc.service.GetUser(userID)
	if err != nil {
		respondInternalError(c, err, msgActionProfile)
		return
	}

	perms, err := uc.permissions.UserPermissions(userID)
	if err != nil {
		respondInternalError(c, err, msgActionProfile)
		return
	}
	respondData(c, http.StatusOK, serializers.NewUserResponse(user, perms), MsgUserFetched)
}

// ChangePassword handles POST /rest/user/password/. The caller's token is
// revoked, so the client has to log in again.
func (uc *UsersAPIController) ChangePassword(c *gin.Context) {
	var req serializers.ChangePasswordRequest
	if err := decode(c, &req); err != nil {
		respondBadRequest(c, err, errorWhile(msgActionPassword))
		return
	}
	if err := req.Validate(uc.validator); err != nil {
		respondBadRequest(c, err, errorWhile(msgActionPassword))
		return
	}

	user := auth.GetUser(c)
	err := uc.service.ChangePassword(user.ID, req.OldPassword, req.NewPassword)
	if uc.auditor != nil {
		uc.auditor.LogAuth(user.ID, "password_change", user.Email, audit.RequestFromContext(c), err)
	}
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			respondError(c, http.StatusBadRequest, validation.Errors{"old_password": MsgWrongOldPassword}, errorWhile(msgActionPassword))
			return
		}
		respondInternalError(c, err, msgActionPassword)
		return
	}
	respondData(c, http.StatusOK, gin.H{}, MsgPasswordChanged)
}
