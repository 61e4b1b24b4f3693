package handler

import (
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/models"
	"chatapp/backend/internal/storage"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type signupRequest struct {
	FullName        string `json:"fullName" binding:"required"`
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Gender          string `json:"gender" binding:"required,oneof=male female"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// generateJWT issues a signed token whose subject is the user id.
func generateJWT(userID string, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    config.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(config.JWTTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// parseJWT validates tokenString and returns the user id it was issued for.
func parseJWT(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.JWTIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// avatarURL returns a placeholder profile picture for a new user.
func avatarURL(gender, username string) string {
	kind := "boy"
	if gender == "female" {
		kind = "girl"
	}
	return "https://avatar.iran.liara.run/public/" + kind + "?username=" + url.QueryEscape(username)
}

func (h *Handler) setAuthCookie(c *gin.Context, userID string) error {
	token, err := generateJWT(userID, []byte(h.Config.JWTSecret))
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(config.JWTCookieName, token, int(config.JWTTTL.Seconds()), "/", "", h.Config.IsProduction(), true)
	return nil
}

// Signup creates an account and logs the new user in.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fullName, username, password, confirmPassword and gender are required"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords don't match"})
		return
	}
	if len(req.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	user := &models.User{
		Username:   req.Username,
		FullName:   strings.TrimSpace(req.FullName),
		Password:   string(hash),
		Gender:     req.Gender,
		ProfilePic: avatarURL(req.Gender, req.Username),
	}
	err = h.Storage.CreateUser(c.Request.Context(), user)
	if errors.Is(err, storage.ErrDuplicate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if err := h.setAuthCookie(c, user.ID); err != nil {
		log.Printf("ERROR: Failed to issue token for %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	log.Printf("INFO: User %s signed up", user.Username)
	c.JSON(http.StatusCreated, user)
}

// Login checks the credentials and sets the auth cookie.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.Storage.GetUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("ERROR: Failed to load user %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	if err := h.setAuthCookie(c, user.ID); err != nil {
		log.Printf("ERROR: Failed to issue token for %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout clears the auth cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(config.JWTCookieName, "", -1, "/", "", h.Config.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
