package reports

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"logistica/frontend/products"
	"logistica/frontend/schedules"
	"logistica/models"
)

type fakeProducts []models.Product

func (f fakeProducts) All(context.Context) ([]models.Product, error) { return f, nil }

type fakeSchedules []models.ReturnSchedule

func (f fakeSchedules) List(_ context.Context, filter schedules.Filter) ([]models.ReturnSchedule, error) {
	return schedules.FilterSchedules(f, filter), nil
}

type fakeAllocations []models.AllocationEntry

func (f fakeAllocations) Entries(context.Context) ([]models.AllocationEntry, error) { return f, nil }

var sampleSchedules = fakeSchedules{
	{ID: "1", Date: "14/03/2025", Carrier: "Trans", NFD: "1001", Client: "Loja Centro", NFVolume: 5, Status: models.StatusReceived, Received: true},
	{ID: "2", Date: "15/03/2025", NFD: "2002", Client: "Loja Norte", NFVolume: 2, Status: models.StatusScheduled},
}

func testHandlers() Handlers {
	return Handlers{
		Products: fakeProducts{
			{SKU: "A1", Description: "Caixa", Category: "Cat", NetWeight: 1.5, Dimensions: "1x2x3", Unit: "ITJ"},
			{SKU: "B1", Description: "Pote", Category: "Cat", Dimensions: "0x0x0", Unit: "JVL"},
		},
		Schedules: sampleSchedules,
		Allocations: fakeAllocations{
			{ID: "a", NFD: "1001", SKU: "A1", Building: 3, Level: 2, AllocatedVolume: 4, AllocatedBy: "ana", CreatedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)},
		},
	}
}

func TestSchedulesCSVRoundTripsThroughImporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSchedulesCSV(&buf, sampleSchedules))

	got, err := schedules.ParseSchedules(buf.Bytes(), time.Now())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1001", got[0].NFD)
	assert.Equal(t, "Loja Centro", got[0].Client)
	assert.Equal(t, 5, got[0].NFVolume)
	assert.Equal(t, models.StatusReceived, got[0].Status)
	assert.Equal(t, models.StatusScheduled, got[1].Status)
}

func TestSchedulesXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSchedulesXLSX(&buf, sampleSchedules))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(schedulesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "NFD", rows[0][4])
	assert.Equal(t, "2002", rows[2][4])
	assert.Equal(t, "5", rows[1][10])
}

func TestAllocationsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAllocationsCSV(&buf, testHandlers().Allocations.(fakeAllocations)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "R08-P03-N2;3;2;1001;A1;4;ana;"))
}

func TestProductsCSVHandlerFiltersUnit(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandlers().ProductsCSVHandler()(rec, httptest.NewRequest(http.MethodGet, "/app/relatorios/produtos.csv?unit=itj", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Cad_ITJ-")

	got, err := products.ParseProducts(rec.Body.Bytes(), "ITJ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A1", got[0].SKU)
	assert.Equal(t, "1x2x3", got[0].Dimensions)
	assert.InDelta(t, 1.5, got[0].NetWeight, 0.0001)
}

func TestSchedulesHandlersApplyFilter(t *testing.T) {
	h := testHandlers()

	rec := httptest.NewRecorder()
	h.SchedulesCSVHandler()(rec, httptest.NewRequest(http.MethodGet, "/app/relatorios/agendamentos.csv?status=Agendado", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2002")
	assert.NotContains(t, body, "1001")

	rec = httptest.NewRecorder()
	h.SchedulesXLSXHandler()(rec, httptest.NewRequest(http.MethodGet, "/app/relatorios/agendamentos.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
