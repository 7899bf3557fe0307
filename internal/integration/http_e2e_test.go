//go:build integration || !unit

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"golang.org/x/crypto/bcrypt"

	server "stayhub/internal/adapters/http_server"
	"stayhub/internal/adapters/jwtauth"
	"stayhub/internal/adapters/rediscache"
	"stayhub/internal/app"
	mysqlrepo "stayhub/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

type apiEnv struct {
	ts *httptest.Server
	db *sql.DB
}

func startAPI(t *testing.T) *apiEnv {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=stayhub",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/stayhub?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	mr := miniredis.RunT(t)
	cache := rediscache.New(mr.Addr(), "", 0)
	repo := mysqlrepo.New(db)
	tokens := jwtauth.New("e2e-secret", time.Hour)

	catalog := app.NewCatalogService(repo, cache, 5*time.Minute)
	auth := app.NewAuthService(repo, tokens, bcrypt.MinCost)
	bookings := app.NewBookingService(repo)
	reviews := app.NewReviewService(repo, catalog)

	srv := server.New()
	srv.MountHandlers(server.NewHandlers(auth, catalog, bookings, reviews, tokens, 1000))

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &apiEnv{ts: ts, db: db}
}

type apiReply struct {
	status  int
	success bool
	errCode string
	data    json.RawMessage
}

func (e *apiEnv) call(t *testing.T, method, path, token string, body any) apiReply {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *string         `json:"error"`
	}
	raw, _ := io.ReadAll(res.Body)
	_ = json.Unmarshal(raw, &env)
	out := apiReply{status: res.StatusCode, success: env.Success, data: env.Data}
	if env.Error != nil {
		out.errCode = *env.Error
	}
	return out
}

func (e *apiEnv) id(t *testing.T, r apiReply) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(r.data, &v); err != nil {
		t.Fatalf("decode id: %v (%s)", err, r.data)
	}
	return v.ID
}

func TestHTTP_EndToEnd_BookingLifecycle(t *testing.T) {
	e := startAPI(t)

	r := e.call(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Omar", "email": "omar@example.com", "password": "sup3r-secret", "role": "owner",
	})
	if r.status != http.StatusCreated {
		t.Fatalf("owner signup: %d %s", r.status, r.errCode)
	}
	r = e.call(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "omar@example.com", "password": "sup3r-secret",
	})
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(r.data, &login); err != nil || login.Token == "" {
		t.Fatalf("owner login: %d %s", r.status, r.data)
	}
	ownerTok := login.Token

	r = e.call(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "sup3r-secret",
	})
	custID := e.id(t, r)
	r = e.call(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "sup3r-secret",
	})
	if err := json.Unmarshal(r.data, &login); err != nil {
		t.Fatalf("customer login: %v", err)
	}
	custTok := login.Token

	r = e.call(t, http.MethodPost, "/hotels", ownerTok, map[string]any{
		"name": "Harbor View", "description": "by the water", "city": "Lisbon", "country": "Portugal",
		"amenities": []string{"wifi", "pool"},
	})
	if r.status != http.StatusCreated {
		t.Fatalf("create hotel: %d %s", r.status, r.errCode)
	}
	hotelID := e.id(t, r)

	r = e.call(t, http.MethodPost, "/hotels/"+hotelID+"/rooms", ownerTok, map[string]any{
		"roomNumber": "101", "roomType": "double", "maxOccupancy": 2, "pricePerNight": 120.50,
	})
	if r.status != http.StatusCreated {
		t.Fatalf("create room: %d %s", r.status, r.errCode)
	}
	roomID := e.id(t, r)

	checkIn := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")
	checkOut := time.Now().UTC().AddDate(0, 0, 13).Format("2006-01-02")
	r = e.call(t, http.MethodPost, "/bookings", custTok, map[string]any{
		"roomId": roomID, "checkInDate": checkIn, "checkOutDate": checkOut, "guests": 2,
	})
	if r.status != http.StatusCreated {
		t.Fatalf("booking: %d %s", r.status, r.errCode)
	}
	bookingID := e.id(t, r)
	var bk struct {
		TotalPrice float64 `json:"totalPrice"`
	}
	if err := json.Unmarshal(r.data, &bk); err != nil || bk.TotalPrice != 361.50 {
		t.Fatalf("total price: %v %s", err, r.data)
	}

	r = e.call(t, http.MethodPost, "/bookings", custTok, map[string]any{
		"roomId": roomID, "checkInDate": checkIn, "checkOutDate": checkOut, "guests": 2,
	})
	if r.status != http.StatusBadRequest || r.errCode != "ROOM_NOT_AVAILABLE" {
		t.Fatalf("overlap: %d %s", r.status, r.errCode)
	}

	r = e.call(t, http.MethodPut, "/bookings/"+bookingID+"/cancel", custTok, nil)
	if r.status != http.StatusOK {
		t.Fatalf("cancel: %d %s", r.status, r.errCode)
	}

	// reviews need a finished stay, which the API will not book; seed one
	past := time.Now().UTC().AddDate(0, 0, -5).Format("2006-01-02")
	pastOut := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	pastID := uuid.NewString()
	if _, err := e.db.Exec(
		`INSERT INTO bookings (id, room_id, hotel_id, user_id, check_in_date, check_out_date, guests, total_price, status)
		 VALUES (?, ?, ?, ?, ?, ?, 2, 361.50, 'confirmed')`,
		pastID, roomID, hotelID, custID, past, pastOut,
	); err != nil {
		t.Fatalf("seed past booking: %v", err)
	}

	r = e.call(t, http.MethodPost, "/reviews", custTok, map[string]any{
		"bookingId": pastID, "rating": 5, "comment": "spotless",
	})
	if r.status != http.StatusCreated {
		t.Fatalf("review: %d %s", r.status, r.errCode)
	}

	r = e.call(t, http.MethodGet, "/hotels/"+hotelID, "", nil)
	var detail struct {
		Rating       float64 `json:"rating"`
		TotalReviews int     `json:"totalReviews"`
		Rooms        []any   `json:"rooms"`
	}
	if err := json.Unmarshal(r.data, &detail); err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Rating != 5 || detail.TotalReviews != 1 || len(detail.Rooms) != 1 {
		t.Fatalf("detail after review: %s", r.data)
	}

	r = e.call(t, http.MethodGet, "/hotels?city=Lisbon&minRating=4", "", nil)
	var results []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(r.data, &results); err != nil || len(results) != 1 || results[0].ID != hotelID {
		t.Fatalf("search: %v %s", err, r.data)
	}
}
