package products

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistica/infrastructure/apperr"
	"logistica/infrastructure/jsonstore"
	"logistica/models"
)

func newTestService(t *testing.T) (*Service, *jsonstore.Store) {
	t.Helper()
	store, err := jsonstore.Open(t.TempDir())
	require.NoError(t, err)
	return NewService(store, nil), store
}

func skus(products []models.Product, unit string) []string {
	var out []string
	for _, p := range products {
		if p.Unit == unit {
			out = append(out, p.SKU)
		}
	}
	return out
}

func TestImportReplacesOnlyUploadedUnit(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Import(ctx, 1, []Upload{
		{Unit: "ITJ", Data: []byte("SKU;Descrição\nI1;Um\nI2;Dois\n")},
		{Unit: "JVL", Data: []byte("SKU;Descrição\nJ1;Um\nJ2;Dois\n")},
	})
	require.NoError(t, err)

	jvlBefore, err := jsonstore.Load[models.Product](ctx, store, jsonstore.Products)
	require.NoError(t, err)

	results, err := svc.Import(ctx, 1, []Upload{{Unit: "ITJ", Data: []byte("SKU;Descrição\nI2;Dois novo\nI3;Três\n")}})
	require.NoError(t, err)
	assert.Equal(t, []UnitResult{{Unit: "ITJ", Imported: 2, Replaced: 2}}, results)

	after, err := jsonstore.Load[models.Product](ctx, store, jsonstore.Products)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"I2", "I3"}, skus(after, "ITJ"))

	var jvlOld, jvlNew []models.Product
	for _, p := range jvlBefore {
		if p.Unit == "JVL" {
			jvlOld = append(jvlOld, p)
		}
	}
	for _, p := range after {
		if p.Unit == "JVL" {
			jvlNew = append(jvlNew, p)
		}
	}
	assert.Equal(t, jvlOld, jvlNew)
}

func TestImportMissingHeaderPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Import(ctx, 1, []Upload{{Unit: "ITJ", Data: []byte("SKU;Descrição\nI1;Um\n")}})
	require.NoError(t, err)
	before, err := os.ReadFile(store.Path(jsonstore.Products))
	require.NoError(t, err)

	_, err = svc.Import(ctx, 1, []Upload{
		{Unit: "ITJ", Data: []byte("SKU;Descrição\nI9;Novo\n")},
		{Unit: "JVL", Data: []byte("Codigo;Nome\nJ1;Sem cabeçalho\n")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMissingHeader)

	after, err := os.ReadFile(store.Path(jsonstore.Products))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportStoresNonFiniteCellsAsZero(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	results, err := svc.Import(ctx, 1, []Upload{
		{Unit: "JVL", Data: []byte("SKU;Descrição\nJ1;Um\n")},
		{Unit: "ITJ", Data: []byte("SKU;Descrição;Peso Bruto;Volume;Altura;Qtd\nX1;Produto;NaN;-Infinity;inf;10,0\n")},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	stored, err := jsonstore.Load[models.Product](ctx, store, jsonstore.Products)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	var x1 models.Product
	for _, p := range stored {
		if p.SKU == "X1" {
			x1 = p
		}
	}
	assert.Equal(t, "ITJ", x1.Unit)
	assert.Equal(t, 0.0, x1.GrossWeight)
	assert.Equal(t, 0.0, x1.Volume)
	assert.Equal(t, "0x0x0", x1.Dimensions)
	assert.Equal(t, 10, x1.Quantity)
}

func TestImportRejectsEmptyAndDuplicateUploads(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Import(context.Background(), 1, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Import(context.Background(), 1, []Upload{
		{Unit: "itj", Data: []byte("SKU;Descrição\nA;B\n")},
		{Unit: "ITJ", Data: []byte("SKU;Descrição\nC;D\n")},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestImportInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.Import(ctx, 1, []Upload{{Unit: "JVL", Data: []byte("SKU;Descrição\nJ1;Um\n")}})
	require.NoError(t, err)

	all, err = svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"J1"}, skus(all, "JVL"))
}

func TestLoaderBootstrapsFromUnitFiles(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "Cad_ITJ.csv"), []byte("SKU;Descrição\nB1;Boot\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "Cad_JVL.csv"), []byte("Nada;Aqui\n1;2\n"), 0o644))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, skus(all, "ITJ"))
	assert.Empty(t, skus(all, "JVL"))

	// the first write keeps the bootstrap records of units it does not touch
	_, err = svc.Import(ctx, 1, []Upload{{Unit: "JVL", Data: []byte("SKU;Descrição\nJ1;Um\n")}})
	require.NoError(t, err)
	stored, err := jsonstore.Load[models.Product](ctx, store, jsonstore.Products)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, skus(stored, "ITJ"))
	assert.Equal(t, []string{"J1"}, skus(stored, "JVL"))
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	p := models.Product{SKU: "N1", Description: "Novo", Unit: "ITJ"}
	require.NoError(t, svc.Create(ctx, 1, p))

	err := svc.Create(ctx, 1, p)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// same SKU in the other unit is a different product
	require.NoError(t, svc.Create(ctx, 1, models.Product{SKU: "N1", Description: "Outro", Unit: "JVL"}))

	require.NoError(t, svc.Update(ctx, 1, "ITJ", "N1", models.Product{Description: "Editado", Quantity: 7}))
	got, err := svc.Find(ctx, "ITJ", "N1")
	require.NoError(t, err)
	assert.Equal(t, "Editado", got.Description)
	assert.Equal(t, 7, got.Quantity)

	require.NoError(t, svc.Delete(ctx, 1, "ITJ", "N1"))
	_, err = svc.Find(ctx, "ITJ", "N1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 1, "ITJ", "N1"), apperr.ErrNotFound)

	_, err = svc.Find(ctx, "JVL", "N1")
	assert.NoError(t, err)
}

func TestCreateValidates(t *testing.T) {
	svc, _ := newTestService(t)

	assert.ErrorIs(t, svc.Create(context.Background(), 1, models.Product{Description: "x", Unit: "ITJ"}), apperr.ErrValidation)
	assert.ErrorIs(t, svc.Create(context.Background(), 1, models.Product{SKU: "x", Unit: "ITJ"}), apperr.ErrValidation)
	assert.ErrorIs(t, svc.Create(context.Background(), 1, models.Product{SKU: "x", Description: "y", Unit: "POA"}), apperr.ErrValidation)
}

func TestListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var b strings.Builder
	b.WriteString("SKU;Descrição;Classificação;Embalagem;EAN\n")
	for i := 0; i < 45; i++ {
		class := "A"
		if i%3 == 0 {
			class = "B"
		}
		fmt.Fprintf(&b, "S%02d;Produto %d;%s;CX;789%04d\n", i, i, class, i)
	}
	_, err := svc.Import(ctx, 1, []Upload{{Unit: "ITJ", Data: []byte(b.String())}})
	require.NoError(t, err)

	res, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 45, res.Total)
	assert.Equal(t, 3, res.Pages)
	assert.Len(t, res.Items, PageSize)
	assert.Equal(t, []string{"A", "B"}, res.Options.Classifications)

	res, err = svc.List(ctx, Filter{Page: 3})
	require.NoError(t, err)
	assert.Len(t, res.Items, 5)

	res, err = svc.List(ctx, Filter{Page: 99, Classification: "B"})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Total)
	assert.Equal(t, 1, res.Page)

	res, err = svc.List(ctx, Filter{Query: "7890044"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "S44", res.Items[0].SKU)

	res, err = svc.List(ctx, Filter{Query: "produto 1", Unit: "JVL"})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}
