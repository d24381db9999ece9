package fakebackend

import (
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (b *Backend) tokenResponse(c echo.Context, status int, userID int64, message string) error {
	return c.JSON(status, map[string]any{
		"message": message,
		"refresh": b.sign(userID, "refresh", b.refreshTTL),
		"access":  b.sign(userID, "access", b.accessTTL),
	})
}

func (b *Backend) login(c echo.Context) error {
	var in credentials
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	fields := map[string][]string{}
	required(fields, "email", in.Email == "")
	required(fields, "password", in.Password == "")
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}

	b.mu.RLock()
	var found *userRecord
	for _, u := range b.users {
		if strings.EqualFold(u.Email, in.Email) {
			found = u
			break
		}
	}
	b.mu.RUnlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(in.Password)) != nil {
		return c.JSON(http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid credentials"}})
	}
	return b.tokenResponse(c, http.StatusOK, found.ID, "Login successful")
}

func (b *Backend) register(c echo.Context) error {
	var in credentials
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	fields := map[string][]string{}
	required(fields, "email", in.Email == "")
	required(fields, "full_name", in.FullName == "")
	required(fields, "password", in.Password == "")

	b.mu.Lock()
	if in.Email != "" && b.emailTaken(in.Email, 0) {
		fields["email"] = append(fields["email"], "user with this email already exists.")
	}
	if len(fields) > 0 {
		b.mu.Unlock()
		return c.JSON(http.StatusBadRequest, fields)
	}
	u := b.insertUser(in.Email, in.FullName, in.Password, users.RolePatient)
	b.insertPatient(patients.Patient{UserID: u.ID, FullName: u.FullName, Email: u.Email})
	b.mu.Unlock()

	return b.tokenResponse(c, http.StatusCreated, u.ID, "Registered and patient record created")
}

func (b *Backend) emailTaken(email string, except int64) bool {
	for _, u := range b.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (b *Backend) listUsers(c echo.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]users.User, 0, len(b.users))
	for _, id := range slices.Sorted(maps.Keys(b.users)) {
		out = append(out, b.users[id].User)
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) getUser(c echo.Context) error {
	id, ok := pathID(c)
	b.mu.RLock()
	u, found := b.users[id]
	b.mu.RUnlock()
	if !ok || !found {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "No User matches the given query."})
	}
	return c.JSON(http.StatusOK, u.User)
}

func (b *Backend) validateUser(in users.UserInput, id int64, create bool) map[string][]string {
	fields := map[string][]string{}
	required(fields, "email", in.Email == "")
	required(fields, "full_name", in.FullName == "")
	if create {
		required(fields, "password", in.Password == "")
	}
	if in.Role != "" && !in.Role.Valid() {
		fields["role"] = append(fields["role"], `"`+string(in.Role)+`" is not a valid choice.`)
	}
	if in.Email != "" && b.emailTaken(in.Email, id) {
		fields["email"] = append(fields["email"], "user with this email already exists.")
	}
	return fields
}

func (b *Backend) createUser(c echo.Context) error {
	var in users.UserInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if fields := b.validateUser(in, 0, true); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}
	if in.Role == "" {
		in.Role = users.RolePatient
	}
	return c.JSON(http.StatusCreated, b.insertUser(in.Email, in.FullName, in.Password, in.Role))
}

func (b *Backend) updateUser(c echo.Context) error {
	id, ok := pathID(c)
	var in users.UserInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, found := b.users[id]
	if !ok || !found {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "No User matches the given query."})
	}
	if fields := b.validateUser(in, id, false); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}
	u.Email, u.FullName = in.Email, in.FullName
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		u.hash = hash
	}
	return c.JSON(http.StatusOK, u.User)
}

func (b *Backend) deleteUser(c echo.Context) error {
	id, ok := pathID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.users[id]; !ok || !found {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "No User matches the given query."})
	}
	delete(b.users, id)
	return c.NoContent(http.StatusNoContent)
}
