package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"scom-asset-api/internal/auth"
	"scom-asset-api/internal/models"
	"scom-asset-api/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// loginUser handles user authentication
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	var user models.User
	var roles pq.StringArray

	err := s.DB.QueryRowContext(r.Context(), `
		SELECT user_id, full_name, email, password_hash, roles, is_active, created_at, updated_at
		FROM users WHERE email = $1 AND is_active = true`, req.Email).Scan(
		&user.UserID, &user.FullName, &user.Email, &user.PasswordHash,
		&roles, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	user.Roles = roles

	token, err := s.JWTManager.GenerateToken(user.UserID, user.FullName, user.Roles)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  user.Redacted(),
	})
}

// createUser handles user creation. Route is admin-gated, so role assignment
// here is always by an IT Admin.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Full name, email and password are required", http.StatusBadRequest)
		return
	}
	if !rbac.ValidateLabels(req.Roles) {
		http.Error(w, "Invalid roles provided", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		UserID:   uuid.NewString(),
		FullName: req.FullName,
		Email:    req.Email,
		Roles:    req.Roles,
		IsActive: true,
	}

	err = s.DB.QueryRowContext(r.Context(), `
		INSERT INTO users (user_id, full_name, email, roles, is_active, password_hash)
		VALUES ($1, $2, $3, $4, true, $5)
		RETURNING created_at, updated_at`,
		user.UserID, user.FullName, user.Email, pq.Array(user.Roles), string(hashedPassword)).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "User with this email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user.Redacted())
}

// listUsers handles user listing
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT user_id, full_name, email, roles, is_active, created_at, updated_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var roles pq.StringArray
		if err := rows.Scan(&user.UserID, &user.FullName, &user.Email, &roles,
			&user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			http.Error(w, "Failed to scan user", http.StatusInternalServerError)
			return
		}
		user.Roles = roles
		users = append(users, user.Redacted())
	}
	if err := rows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// getUser handles getting a specific user
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var user models.User
	var roles pq.StringArray

	err := s.DB.QueryRowContext(r.Context(), `
		SELECT user_id, full_name, email, roles, is_active, created_at, updated_at
		FROM users WHERE user_id = $1`, id).Scan(
		&user.UserID, &user.FullName, &user.Email, &roles,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	user.Roles = roles

	writeJSON(w, http.StatusOK, user.Redacted())
}

// updateUser handles user updates. Role changes only come through this
// admin-gated route.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Roles != nil && !rbac.ValidateLabels(req.Roles) {
		http.Error(w, "Invalid roles provided", http.StatusBadRequest)
		return
	}

	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.FullName != nil {
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", argIndex))
		args = append(args, *req.FullName)
		argIndex++
	}
	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, *req.Email)
		argIndex++
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}
		setParts = append(setParts, fmt.Sprintf("password_hash = $%d", argIndex))
		args = append(args, string(hashed))
		argIndex++
	}
	if req.Roles != nil {
		setParts = append(setParts, fmt.Sprintf("roles = $%d", argIndex))
		args = append(args, pq.Array(req.Roles))
		argIndex++
	}
	if req.IsActive != nil {
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *req.IsActive)
		argIndex++
	}

	if len(setParts) == 0 {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}

	setParts = append(setParts, "updated_at = now()")
	updateQuery := fmt.Sprintf(`
		UPDATE users SET %s WHERE user_id = $%d
		RETURNING user_id, full_name, email, roles, is_active, created_at, updated_at`,
		strings.Join(setParts, ", "), argIndex)
	args = append(args, id)

	var user models.User
	var roles pq.StringArray

	err := s.DB.QueryRowContext(r.Context(), updateQuery, args...).Scan(
		&user.UserID, &user.FullName, &user.Email, &roles,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "User with this email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	user.Roles = roles

	writeJSON(w, http.StatusOK, user.Redacted())
}

// deleteUser handles user deletion. Self-deletion and deleting a custodian of
// assets are both refused.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if id == auth.UserIDFromContext(r.Context()) {
		http.Error(w, "Cannot delete your own account", http.StatusBadRequest)
		return
	}

	var custodyCount int
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM assets WHERE custodian_id = $1`, id).Scan(&custodyCount)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if custodyCount > 0 {
		http.Error(w, "Cannot delete a user who is custodian of assets", http.StatusConflict)
		return
	}

	result, err := s.DB.ExecContext(r.Context(), `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	log.Printf("user %s deleted by %s", id, auth.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// getUserProfile handles getting current user's profile
func (s *Server) getUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "User ID not found in context", http.StatusInternalServerError)
		return
	}

	var user models.User
	var roles pq.StringArray

	err := s.DB.QueryRowContext(r.Context(), `
		SELECT user_id, full_name, email, roles, is_active, created_at, updated_at
		FROM users WHERE user_id = $1`, userID).Scan(
		&user.UserID, &user.FullName, &user.Email, &roles,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	user.Roles = roles

	writeJSON(w, http.StatusOK, user.Redacted())
}

// changePassword handles password changes
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "User ID not found in context", http.StatusInternalServerError)
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		http.Error(w, "Current password and new password are required", http.StatusBadRequest)
		return
	}

	var currentPasswordHash string
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT password_hash FROM users WHERE user_id = $1`, userID).Scan(&currentPasswordHash)
	if err == sql.ErrNoRows {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentPasswordHash), []byte(req.CurrentPassword)); err != nil {
		http.Error(w, "Current password is incorrect", http.StatusBadRequest)
		return
	}

	newPasswordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash new password", http.StatusInternalServerError)
		return
	}

	_, err = s.DB.ExecContext(r.Context(),
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE user_id = $2`,
		string(newPasswordHash), userID)
	if err != nil {
		http.Error(w, "Failed to update password", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
