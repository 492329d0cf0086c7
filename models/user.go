package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// User roles. Editors can manage content; admins can additionally
// manage users.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username             string             `bson:"username" json:"username"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password" json:"-"`
	Role                 string             `bson:"role" json:"role"`
	LastLogin            *time.Time         `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	ResetPasswordToken   string             `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time         `bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"created_at" json:"createdAt"`
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}
