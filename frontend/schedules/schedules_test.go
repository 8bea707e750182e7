package schedules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	sessioncontext "logistica/frontend/shared/context"
	"logistica/infrastructure/apperr"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func openTestService(t *testing.T) *Service {
	t.Helper()
	store, err := jsonstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := NewService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestParseSchedulesDropsRowsAndDefaultsStatus(t *testing.T) {
	data := []byte("Data;NFD;Cliente;Volumes;Status\n" +
		"14/03/2025;1001;Loja A;3;\n" +
		";1002;Loja B;1;Recebido\n" +
		"14/03/2025;1003;;2;\n" +
		"15/03/2025;1004;Loja C;x;recebido\n")

	got, err := ParseSchedules(data, fixedNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(got))
	}
	if got[0].Status != models.StatusScheduled || got[0].NFVolume != 3 {
		t.Fatalf("unexpected first schedule: %+v", got[0])
	}
	if got[1].Status != models.StatusReceived || got[1].NFVolume != 0 {
		t.Fatalf("unexpected second schedule: %+v", got[1])
	}
	if got[0].ID != "1741944600000-0" || got[1].ID != "1741944600000-1" {
		t.Fatalf("unexpected ids %q %q", got[0].ID, got[1].ID)
	}
}

func TestParseSchedulesRequiresClientHeader(t *testing.T) {
	_, err := ParseSchedules([]byte("Data;NFD\n14/03/2025;1\n"), fixedNow)
	if !errors.Is(err, apperr.ErrMissingHeader) || !strings.Contains(err.Error(), "Cliente") {
		t.Fatalf("expected missing Cliente header, got %v", err)
	}
}

func TestImportAppendsWithoutTouchingExisting(t *testing.T) {
	ctx := context.Background()
	svc := openTestService(t)

	first := []byte("Data;NFD;Cliente\n01/03/2025;500;Loja A\n02/03/2025;501;Loja B\n")
	if _, err := svc.Import(ctx, 1, "a.csv", first); err != nil {
		t.Fatalf("first import: %v", err)
	}
	before, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second := []byte("Data,NFD,Cliente\n03/03/2025,500,Loja A\n03/03/2025,502,Loja C\n04/03/2025,503,Loja D\n")
	result, err := svc.Import(ctx, 1, "b.csv", second)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.Imported != 3 || result.Total != 5 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !reflect.DeepEqual(result.Duplicates, []string{"500"}) {
		t.Fatalf("expected NFD 500 flagged, got %v", result.Duplicates)
	}

	after, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(after) != len(before)+3 {
		t.Fatalf("expected %d records, got %d", len(before)+3, len(after))
	}
	for i := range before {
		if !reflect.DeepEqual(before[i], after[i]) {
			t.Fatalf("record %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestSplitNFDs(t *testing.T) {
	got := SplitNFDs(" 100, 101\n102\r\n\n101;103 ")
	want := []string{"100", "101", "102", "103"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCreateFansOutAndAsksBeforeDuplicating(t *testing.T) {
	ctx := context.Background()
	svc := openTestService(t)

	created, err := svc.Create(ctx, 1, Draft{Date: "2025-03-14", Client: "Loja A", NFDs: "10,11", NFVolume: 2}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 2 || created[0].NFD != "10" || created[1].NFD != "11" {
		t.Fatalf("unexpected fan-out %+v", created)
	}
	if created[0].Date != "14/03/2025" || created[0].Status != models.StatusScheduled {
		t.Fatalf("unexpected schedule %+v", created[0])
	}

	_, err = svc.Create(ctx, 1, Draft{Date: "14/03/2025", Client: "Loja A", NFDs: "11\n12"}, false)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	all, _ := svc.All(ctx)
	if len(all) != 2 {
		t.Fatalf("conflict must not persist, got %d records", len(all))
	}

	if _, err := svc.Create(ctx, 1, Draft{Date: "14/03/2025", Client: "Loja A", NFDs: "11\n12"}, true); err != nil {
		t.Fatalf("confirmed create: %v", err)
	}
	all, _ = svc.All(ctx)
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}
}

func TestCreateValidation(t *testing.T) {
	svc := openTestService(t)
	cases := []Draft{
		{Client: "A", NFDs: "1"},
		{Date: "01/01/2025", NFDs: "1"},
		{Date: "01/01/2025", Client: "A", NFDs: " , "},
		{Date: "01/01/2025", Client: "A", NFDs: "1", NFVolume: -1},
	}
	for _, d := range cases {
		if _, err := svc.Create(context.Background(), 1, d, false); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", d, err)
		}
	}
}

func TestUpdateStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := openTestService(t)
	created, err := svc.Create(ctx, 1, Draft{Date: "14/03/2025", Client: "Loja", NFDs: "77"}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created[0].ID

	if err := svc.UpdateStatus(ctx, 1, id, "Voando", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if err := svc.UpdateStatus(ctx, 1, id, models.StatusCancelled, " Doca 2 "); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Find(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != models.StatusCancelled || got.StorageDest != "Doca 2" {
		t.Fatalf("unexpected schedule %+v", got)
	}

	if err := svc.Delete(ctx, 1, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, 1, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScheduleCreateCommandHandler_DuplicateRendersConfirmation(t *testing.T) {
	svc := openTestService(t)
	if _, err := svc.Create(context.Background(), 1, Draft{Date: "14/03/2025", Client: "Loja", NFDs: "900"}, false); err != nil {
		t.Fatalf("seed: %v", err)
	}

	form := url.Values{"date": {"14/03/2025"}, "client": {"Loja"}, "nfds": {"900"}}
	req := httptest.NewRequest(http.MethodPost, "/app/agendamentos", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), models.Session{
		UserID: 3,
		User:   models.User{ID: 3, Username: "ana", Role: "user"},
	}))
	rr := httptest.NewRecorder()
	ScheduleCreateCommandHandler(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `name="confirm" value="1"`) || !strings.Contains(body, "900") {
		t.Fatalf("expected confirmation form, got %s", body)
	}
}

func TestScheduleDeleteCommandHandler_UnknownIDRedirectsError(t *testing.T) {
	svc := openTestService(t)

	req := httptest.NewRequest(http.MethodPost, "/app/agendamentos/nope/excluir", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	ScheduleDeleteCommandHandler(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/app/agendamentos?error=") {
		t.Fatalf("unexpected redirect %q", loc)
	}
}
