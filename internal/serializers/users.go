package serializers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// PhoneNumber accepts both a JSON string and a JSON integer.
type PhoneNumber string

func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PhoneNumber(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("phone_number: %w", err)
	}
	*p = PhoneNumber(n.String())
	return nil
}

type RegisterRequest struct {
	FirstName   string      `json:"first_name" validate:"required,max=25"`
	LastName    string      `json:"last_name" validate:"required,max=25"`
	Email       string      `json:"email" validate:"required,email,max=75"`
	Password    string      `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber PhoneNumber `json:"phone_number" validate:"required,digits,max=15"`
	UserType    string      `json:"user_type" validate:"required,user_type"`
}

func (r *RegisterRequest) Validate(v *validation.Validator) error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	return v.Validate(r)
}

// User builds the account described by the request. API accounts are
// staff accounts; the password is hashed by the caller.
func (r *RegisterRequest) User() *entities.User {
	u := &entities.User{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: string(r.PhoneNumber),
		UserType:    entities.UserType(r.UserType),
		IsActive:    true,
		IsStaff:     true,
	}
	u.Username = u.FullName()
	return u
}

// LoginRequest carries the login email under "username", the field token
// clients send, or under "email".
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Username"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate(v *validation.Validator) error {
	return v.Validate(r)
}

// Identifier returns the login email.
func (r *LoginRequest) Identifier() string {
	if r.Username != "" {
		return strings.TrimSpace(r.Username)
	}
	return strings.TrimSpace(r.Email)
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	PhoneNumber string   `json:"phone_number"`
	UserType    string   `json:"user_type"`
	IsSuperuser bool     `json:"is_superuser"`
	Groups      []string `json:"groups"`
	Permissions []string `json:"permissions"`
}

func NewUserResponse(u *entities.User, perms []entities.Permission) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		UserType:    string(u.UserType),
		IsSuperuser: u.IsSuperuser,
		Groups:      []string{},
		Permissions: []string{},
	}
	for _, g := range u.Groups {
		resp.Groups = append(resp.Groups, g.Name)
	}
	for _, p := range perms {
		resp.Permissions = append(resp.Permissions, p.Codename)
	}
	return resp
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,nefield=OldPassword"`
}

func (r *ChangePasswordRequest) Validate(v *validation.Validator) error {
	return v.Validate(r)
}
