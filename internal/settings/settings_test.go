package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

var settingsColumns = []string{"head_title", "meta_description", "meta_keywords", "meta_author", "web_title", "web_subtitle", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet mock expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	want := Settings{
		HeadTitle:       "Courses LMS",
		MetaDescription: "Default description",
		MetaKeywords:    "Default,Keywords",
		MetaAuthor:      "Default Author",
		WebTitle:        "Courses LMS",
		WebSubtitle:     "Learning made easy",
	}
	if d != want {
		t.Errorf("Defaults() = %+v, want %+v", d, want)
	}
}

func TestStoreGet(t *testing.T) {
	mock := newMock(t)
	updated := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT head_title, meta_description`).
		WillReturnRows(pgxmock.NewRows(settingsColumns).
			AddRow("Academy", "Learn things", "go,courses", "Team", "Academy", "", updated))

	got, err := NewStore(mock).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HeadTitle != "Academy" || got.MetaKeywords != "go,courses" {
		t.Errorf("unexpected settings %+v", got)
	}
	if got.WebSubtitle != "Learning made easy" {
		t.Errorf("blank field should fall back to default, got %q", got.WebSubtitle)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("expected updated_at %v, got %v", updated, got.UpdatedAt)
	}
}

func TestStoreGet_NoRowReturnsDefaults(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT head_title, meta_description`).WillReturnError(pgx.ErrNoRows)

	got, err := NewStore(mock).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Defaults() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestStoreCurrent_FallsBackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT head_title, meta_description`).WillReturnError(errors.New("connection reset"))

	if got := NewStore(mock).Current(context.Background()); got != Defaults() {
		t.Errorf("expected defaults on error, got %+v", got)
	}
}

func TestStoreCurrent_NilStore(t *testing.T) {
	var s *Store
	if got := s.Current(context.Background()); got != Defaults() {
		t.Errorf("expected defaults for nil store, got %+v", got)
	}
}

func TestHandlerGet(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT head_title, meta_description`).
		WillReturnRows(pgxmock.NewRows(settingsColumns).
			AddRow("Academy", "d", "k", "a", "w", "s", time.Now()))

	rec := httptest.NewRecorder()
	NewHandler(NewStore(mock)).Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.HeadTitle != "Academy" {
		t.Errorf("unexpected head title %q", got.HeadTitle)
	}
}

func TestHandlerGet_DBError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT head_title, meta_description`).WillReturnError(errors.New("boom"))

	rec := httptest.NewRecorder()
	NewHandler(NewStore(mock)).Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandlerUpdate_TrimsAndSaves(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO seo_settings`).
		WithArgs("Academy", "Learn Go", "go,courses", "Team", "Courses LMS", "Learning made easy").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	body := `{"headTitle":"  Academy ","metaDescription":"Learn Go","metaKeywords":"go,courses","metaAuthor":"Team","webTitle":"","webSubtitle":"   "}`
	rec := httptest.NewRecorder()
	NewHandler(NewStore(mock)).Update(rec, httptest.NewRequest(http.MethodPut, "/api/admin/settings", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.HeadTitle != "Academy" || got.WebTitle != "Courses LMS" {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestHandlerUpdate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"invalid JSON", `{"headTitle":`, "invalid request body"},
		{"head title too long", `{"headTitle":"` + strings.Repeat("t", 201) + `"}`, "head title must be 200 characters or fewer"},
		{"subtitle too long", `{"webSubtitle":"` + strings.Repeat("s", 301) + `"}`, "web subtitle must be 300 characters or fewer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			rec := httptest.NewRecorder()

			NewHandler(NewStore(mock)).Update(rec, httptest.NewRequest(http.MethodPut, "/api/admin/settings", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}
