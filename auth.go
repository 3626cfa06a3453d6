package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pfa/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken         = errors.New("Email already registered")
	errInvalidCredentials = errors.New("Invalid credentials")
	errInvalidToken       = errors.New("Invalid token")
	errTokenRevoked       = errors.New("refresh token already revoked")
	errBadEmail           = errors.New("a valid email is required")
	errWeakPassword       = fmt.Errorf("password too short (min %d)", minPasswordLen)
)

const minPasswordLen = 6

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errBadEmail
	}
	if len(password) < minPasswordLen { // basic password policy
		return errWeakPassword
	}
	return nil
}

// RegisterUser creates a user with a bcrypt-hashed password.
func RegisterUser(email, fullName, password string) (models.User, error) {
	email = normalizeEmail(email)
	if err := validateRegistration(email, password); err != nil {
		return models.User{}, err
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return models.User{}, errEmailTaken
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{Email: email, HashedPassword: hashedPassword}
	if name := strings.TrimSpace(fullName); name != "" {
		user.Name = &name
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return models.User{}, errEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks an email/password pair.
func Authenticate(email, password string) (models.User, error) {
	var user models.User
	if err := db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return models.User{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// issueAccessToken signs an HS256 token whose subject is the user id.
func issueAccessToken(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(jwtSecret)
}

// parseAccessToken validates tokenString and returns the user id in sub.
func parseAccessToken(tokenString string) (uint, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidToken
	}
	return uint(id), nil
}

func hashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashRefreshToken(token), ExpiresAt: time.Now().Add(cfg.RefreshTTL)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", hashRefreshToken(token)).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// revokeRefreshToken marks rt revoked. Only one caller can win for a given
// token; the others get errTokenRevoked.
func revokeRefreshToken(rt *models.RefreshToken) error {
	now := time.Now()
	res := db.Model(&models.RefreshToken{}).Where("id = ? AND revoked = ?", rt.ID, false).
		Updates(map[string]any{"revoked": true, "revoked_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errTokenRevoked
	}
	return nil
}
