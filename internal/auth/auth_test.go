package auth

import (
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/onlyskins/onlyskins/internal/config"
	"github.com/onlyskins/onlyskins/internal/models"
)

func testService() *Service {
	return NewService(nil, &config.JWTConfig{
		Secret:      "test-secret-key",
		TokenExpiry: 24 * time.Hour,
		Issuer:      "onlyskins",
	}, nil, "http://localhost:3000")
}

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleCreator,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService()
	user := testUser()

	token, expiresAt, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("token should not be empty")
	}

	if remaining := time.Until(expiresAt); remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Errorf("token expiry should be about 24h out, got %v", remaining)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("user_id = %q, want %q", claims.UserID, user.ID.String())
	}
	if claims.Username != user.Username {
		t.Errorf("username = %q, want %q", claims.Username, user.Username)
	}
	if claims.Role != string(user.Role) {
		t.Errorf("role = %q, want %q", claims.Role, user.Role)
	}
	if claims.Subject != "access" {
		t.Errorf("subject = %q, want access", claims.Subject)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := testService()
	token, _, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	other := NewService(nil, &config.JWTConfig{
		Secret:      "a-different-secret",
		TokenExpiry: 24 * time.Hour,
		Issuer:      "onlyskins",
	}, nil, "http://localhost:3000")

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := testService()
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Error("garbage token should not validate")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := argon2id.CreateHash("hunter2!", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	match, err := argon2id.ComparePasswordAndHash("hunter2!", hash)
	if err != nil || !match {
		t.Error("correct password should match its hash")
	}

	match, err = argon2id.ComparePasswordAndHash("hunter3!", hash)
	if err != nil || match {
		t.Error("wrong password should not match")
	}
}

func TestGenerateResetToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := generateResetToken()
		if err != nil {
			t.Fatalf("failed to generate reset token: %v", err)
		}
		if len(token) != 64 {
			t.Fatalf("token should be 64 hex chars, got %d", len(token))
		}
		if seen[token] {
			t.Fatal("reset tokens must not repeat")
		}
		seen[token] = true
	}
}

func TestUserRoleValidation(t *testing.T) {
	if !models.RoleCreator.Valid() || !models.RoleSubscriber.Valid() {
		t.Error("creator and subscriber are valid roles")
	}
	if models.UserRole("admin").Valid() {
		t.Error("unknown roles should not validate")
	}
}
