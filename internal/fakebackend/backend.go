// Package fakebackend is an in-memory stand-in for the hospital services and
// the triage chatbot, served over HTTP for tests. It answers with the same
// paths, token format and error shapes as the real backend.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-hospital-client/appointments"
	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/records"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 24 * time.Hour
)

// Request is one call the backend received.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

type userRecord struct {
	users.User
	hash []byte
}

type failure struct {
	status int
	body   any
}

type Backend struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu            sync.RWMutex
	nextID        int64
	users         map[int64]*userRecord
	doctors       map[int64]*doctors.Doctor
	patients      map[int64]*patients.Patient
	appointments  map[int64]*appointments.Appointment
	records       map[int64]*records.MedicalRecord
	conversations map[string]*conversation
	requests      []Request
	failures      map[string]failure

	echo *echo.Echo
}

type Option func(*Backend)

func WithAccessTTL(d time.Duration) Option {
	return func(b *Backend) { b.accessTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

func WithSecret(secret string) Option {
	return func(b *Backend) { b.secret = []byte(secret) }
}

func New(opts ...Option) *Backend {
	b := &Backend{
		secret:        []byte("fake-backend-secret"),
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
		now:           time.Now,
		users:         make(map[int64]*userRecord),
		doctors:       make(map[int64]*doctors.Doctor),
		patients:      make(map[int64]*patients.Patient),
		appointments:  make(map[int64]*appointments.Appointment),
		records:       make(map[int64]*records.MedicalRecord),
		conversations: make(map[string]*conversation),
		failures:      make(map[string]failure),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.echo = b.routes()
	return b
}

// NewServer starts b on a local listener. Callers close the server.
func NewServer(opts ...Option) (*Backend, *httptest.Server) {
	b := New(opts...)
	return b, httptest.NewServer(b)
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.echo.ServeHTTP(w, r)
}

func (b *Backend) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover(), b.record, b.injectFailures)

	e.POST("/api/auth/login/", b.login)
	e.POST("/api/auth/register/", b.register)

	api := e.Group("/api", b.requireAuth)
	api.GET("/auth/users/", b.listUsers)
	api.POST("/auth/users/", b.createUser)
	api.GET("/auth/users/:id/", b.getUser)
	api.PUT("/auth/users/:id/", b.updateUser)
	api.DELETE("/auth/users/:id/", b.deleteUser)

	api.GET("/doctor/", b.listDoctors)
	api.POST("/doctor/", b.createDoctor)
	api.GET("/doctor/:id/", b.getDoctor)
	api.PUT("/doctor/:id/", b.updateDoctor)
	api.DELETE("/doctor/:id/", b.deleteDoctor)
	api.GET("/doctor/user/:id/", b.doctorByUser)
	api.GET("/doctor/specialization/:name/", b.doctorsBySpecialization)

	api.GET("/patient/", b.listPatients)
	api.POST("/patient/", b.createPatient)
	api.GET("/patient/search/", b.searchPatients)
	api.GET("/patient/:id/", b.getPatient)
	api.PUT("/patient/:id/", b.updatePatient)
	api.DELETE("/patient/:id/", b.deletePatient)
	api.GET("/patient/user/:id/", b.patientByUser)

	api.GET("/appointment/", b.listAppointments)
	api.POST("/appointment/", b.createAppointment)
	api.GET("/appointment/:id/", b.getAppointment)
	api.PATCH("/appointment/:id/", b.patchAppointment)
	api.GET("/appointment/patient/:id/", b.appointmentsByPatient)
	api.GET("/appointment/doctor/:id/", b.appointmentsByDoctor)

	api.GET("/medical-records/", b.listRecords)
	api.POST("/medical-records/", b.createRecord)
	api.GET("/medical-records/:id/", b.getRecord)
	api.GET("/medical-records/patient/:id/", b.recordsByPatient)
	api.GET("/medical-records/doctor/:id/", b.recordsByDoctor)

	e.POST("/chatbot/start", b.chatStart)
	e.POST("/chatbot/respond", b.chatRespond)
	return e
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get(echo.HeaderAuthorization),
		})
		b.mu.Unlock()
		return next(c)
	}
}

func (b *Backend) injectFailures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		b.mu.RLock()
		f, ok := b.failures[r.Method+" "+r.URL.Path]
		b.mu.RUnlock()
		if ok {
			return c.JSON(f.status, f.body)
		}
		return next(c)
	}
}

// requireAuth accepts any unexpired access token this backend signed.
func (b *Backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		}
		if _, err := b.verify(raw); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
		}
		return next(c)
	}
}

// IssueToken signs an access token for userID expiring ttl from now.
func (b *Backend) IssueToken(userID int64, ttl time.Duration) string {
	return b.sign(userID, "access", ttl)
}

func (b *Backend) sign(userID int64, tokenType string, ttl time.Duration) string {
	now := b.now()
	claims := jwtlib.MapClaims{
		"token_type": tokenType,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
		"jti":        strings.ReplaceAll(uuid.NewString(), "-", ""),
		"user_id":    userID,
	}
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return s
}

func (b *Backend) verify(raw string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
		return b.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithTimeFunc(b.now))
	if err != nil {
		return nil, err
	}
	if claims["token_type"] != "access" {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Fail makes every method+path request answer status with body until
// cleared with Recover.
func (b *Backend) Fail(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

func (b *Backend) Recover(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+path)
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Request{}, b.requests...)
}

func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// CountRequests counts received requests with the given method and path.
func (b *Backend) CountRequests(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// AddUser creates an account. Patient accounts also get a patient record,
// doctor accounts a doctor record, the way the backend provisions them.
func (b *Backend) AddUser(email, fullName, password string, role users.RoleType) users.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.insertUser(email, fullName, password, role)
	switch role {
	case users.RolePatient:
		b.insertPatient(patients.Patient{UserID: u.ID, FullName: fullName, Email: email})
	case users.RoleDoctor:
		b.insertDoctor(doctors.Doctor{UserID: u.ID, FullName: fullName, Specialization: "Cardiology"})
	case users.RoleAdmin:
	}
	return u
}

// AddUserOnly creates an account without any linked record.
func (b *Backend) AddUserOnly(email, fullName, password string, role users.RoleType) users.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insertUser(email, fullName, password, role)
}

func (b *Backend) AddDoctor(d doctors.Doctor) doctors.Doctor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.insertDoctor(d)
}

func (b *Backend) AddPatient(p patients.Patient) patients.Patient {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.insertPatient(p)
}

func (b *Backend) AddAppointment(a appointments.Appointment) appointments.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.insertAppointment(a)
}

func (b *Backend) DoctorForUser(userID int64) (doctors.Doctor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, d := range b.doctors {
		if d.UserID == userID {
			return *d, true
		}
	}
	return doctors.Doctor{}, false
}

func (b *Backend) PatientForUser(userID int64) (patients.Patient, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.patients {
		if p.UserID == userID {
			return *p, true
		}
	}
	return patients.Patient{}, false
}

func (b *Backend) Appointment(id int64) (appointments.Appointment, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.appointments[id]
	if !ok {
		return appointments.Appointment{}, false
	}
	return *a, true
}

func (b *Backend) Records() []records.MedicalRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]records.MedicalRecord, 0, len(b.records))
	for _, r := range sortedValues(b.records) {
		out = append(out, *r)
	}
	return out
}

// caller holds b.mu for all insert helpers

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) stamp() utils.Timestamp {
	return utils.Timestamp{Time: b.now().UTC()}
}

func (b *Backend) insertUser(email, fullName, password string, role users.RoleType) users.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &userRecord{User: users.User{ID: b.id(), Email: email, FullName: fullName, Role: role}, hash: hash}
	b.users[u.ID] = u
	return u.User
}

func (b *Backend) insertDoctor(d doctors.Doctor) *doctors.Doctor {
	d.ID = b.id()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = b.stamp()
	}
	b.doctors[d.ID] = &d
	return &d
}

func (b *Backend) insertPatient(p patients.Patient) *patients.Patient {
	p.ID = b.id()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = b.stamp()
	}
	b.patients[p.ID] = &p
	return &p
}

func (b *Backend) insertAppointment(a appointments.Appointment) *appointments.Appointment {
	a.ID = b.id()
	if a.Status == "" {
		a.Status = appointments.StatusPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = b.stamp()
	}
	b.appointments[a.ID] = &a
	return &a
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func required(fields map[string][]string, name string, missing bool) {
	if missing {
		fields[name] = append(fields[name], "This field is required.")
	}
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": what + " not found"})
}
