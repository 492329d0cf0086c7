package controllers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/btnpop/btnpop-api/config"
	"github.com/btnpop/btnpop-api/middleware"
	"github.com/btnpop/btnpop-api/models"
)

type registerInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID.Hex(),
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	}
}

// ---------------- REGISTER ----------------
// Register creates an admin or editor account. Admin-only route.
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input registerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": middleware.FieldErrors(err)})
			return
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := col.FindOne(ctx, bson.M{"$or": bson.A{
			bson.M{"email": input.Email},
			bson.M{"username": input.Username},
		}}).Err()
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}

		hashed, err := models.HashPassword(input.Password)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("hash password")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
			return
		}

		role := input.Role
		if role == "" {
			role = models.RoleEditor
		}

		user := models.User{
			ID:        primitive.NewObjectID(),
			Username:  input.Username,
			Email:     input.Email,
			Password:  hashed,
			Role:      role,
			CreatedAt: time.Now(),
		}

		if _, err := col.InsertOne(ctx, user); err != nil {
			cfg.Logger.Error().Err(err).Msg("create user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
			return
		}

		token, err := middleware.GenerateToken(cfg, &user)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("sign token")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"token":   token,
			"user":    userResponse(&user),
		})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": middleware.FieldErrors(err)})
			return
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := col.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}

		if !user.ComparePassword(input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}

		now := time.Now()
		if _, err := col.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"last_login": now}}); err != nil {
			cfg.Logger.Warn().Err(err).Msg("update last login")
		}

		token, err := middleware.GenerateToken(cfg, &user)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("sign token")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user":    userResponse(&user),
		})
	}
}

// ---------------- ME ----------------
func CurrentUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := cfg.Collection("users").FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// ---------------- LIST USERS ----------------
func ListUsers(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := cfg.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("list users")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		users := []models.User{}
		if err := cursor.All(ctx, &users); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode users")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

// ---------------- UPDATE USER ----------------
// UpdateUser lets users edit their own account; only admins may touch
// other accounts or change roles.
func UpdateUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
			return
		}

		requesterRole := c.GetString("role")
		if c.GetString("user_id") != oid.Hex() && requesterRole != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}

		var input struct {
			Username string `json:"username"`
			Email    string `json:"email" binding:"omitempty,email"`
			Role     string `json:"role" binding:"omitempty,oneof=admin editor"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": middleware.FieldErrors(err)})
			return
		}

		update := bson.M{}
		if input.Username != "" {
			update["username"] = input.Username
		}
		if input.Email != "" {
			update["email"] = input.Email
		}
		if input.Role != "" && requesterRole == models.RoleAdmin {
			update["role"] = input.Role
		}
		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		col := cfg.Collection("users")
		res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("update user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		var updated models.User
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&updated); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// ---------------- DELETE USER ----------------
func DeleteUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("users").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("delete user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}

// ---------------- FORGOT PASSWORD ----------------
// ForgotPassword issues a reset token valid for one hour. The response
// is the same whether or not the email exists.
func ForgotPassword(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
			return
		}

		uniform := gin.H{"message": "If your email exists in our system, you will receive a reset link shortly."}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := col.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
			c.JSON(http.StatusOK, uniform)
			return
		}

		rawToken, err := randomToken()
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("generate reset token")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing password reset request"})
			return
		}

		// Only the hash is stored; the raw token travels in the email.
		expires := time.Now().Add(time.Hour)
		update := bson.M{"$set": bson.M{
			"reset_password_token":   hashToken(rawToken),
			"reset_password_expires": expires,
		}}
		if _, err := col.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
			cfg.Logger.Error().Err(err).Msg("store reset token")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing password reset request"})
			return
		}

		resetURL := fmt.Sprintf("%s/reset-password/%s", cfg.FrontendURL, rawToken)
		if err := cfg.Mailer.SendPasswordReset(user.Email, user.Username, resetURL); err != nil {
			cfg.Logger.Error().Err(err).Str("email", user.Email).Msg("send reset email")
		}

		c.JSON(http.StatusOK, uniform)
	}
}

// ---------------- RESET PASSWORD ----------------
func ResetPassword(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Password        string `json:"password" binding:"required,min=8"`
			ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": middleware.FieldErrors(err)})
			return
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		err := col.FindOne(ctx, bson.M{
			"reset_password_token":   hashToken(c.Param("token")),
			"reset_password_expires": bson.M{"$gt": time.Now()},
		}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password reset token is invalid or has expired"})
			return
		}

		hashed, err := models.HashPassword(input.Password)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("hash password")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error resetting password"})
			return
		}

		update := bson.M{
			"$set":   bson.M{"password": hashed},
			"$unset": bson.M{"reset_password_token": "", "reset_password_expires": ""},
		}
		if _, err := col.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
			cfg.Logger.Error().Err(err).Msg("reset password")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error resetting password"})
			return
		}

		token, err := middleware.GenerateToken(cfg, &user)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("sign token")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error resetting password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Password has been reset successfully",
			"token":   token,
			"user":    userResponse(&user),
		})
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
