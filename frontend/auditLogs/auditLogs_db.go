package auditlogs

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"logistica/infrastructure/sqlite"
)

// LoadPageData reads one page of audit entries, newest first, plus the most
// recent import and export runs. Entries with user_id 0 were written by the
// CLI.
func LoadPageData(ctx context.Context, db *sqlite.DB, f Filter) (PageData, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	data := PageData{
		Filter:  f,
		Rows:    make([]LogRow, 0),
		Imports: make([]RunRow, 0),
		Exports: make([]RunRow, 0),
	}

	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if a := strings.TrimSpace(f.Action); a != "" {
		where = append(where, "al.action LIKE ?")
		args = append(args, a+"%")
	}
	if e := strings.TrimSpace(f.EntityType); e != "" {
		where = append(where, "al.entity_type = ?")
		args = append(args, e)
	}
	if u := strings.TrimSpace(f.Username); u != "" {
		where = append(where, "LOWER(u.username) = ?")
		args = append(args, strings.ToLower(u))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewRaw(`SELECT COUNT(*) FROM audit_logs al LEFT JOIN users u ON u.id = al.user_id`+clause, args...).
			Scan(ctx, &data.Total); err != nil {
			return err
		}

		type row struct {
			CreatedAt  string `bun:"created_at_br"`
			Actor      string `bun:"actor"`
			Action     string `bun:"action"`
			EntityType string `bun:"entity_type"`
			EntityID   string `bun:"entity_id"`
			BeforeJSON string `bun:"before_json"`
			AfterJSON  string `bun:"after_json"`
		}
		rows := make([]row, 0)
		pageArgs := append(append([]any{}, args...), PageSize, (f.Page-1)*PageSize)
		if err := tx.NewRaw(`
SELECT
	COALESCE(strftime('%d/%m/%Y %H:%M', al.created_at), '') AS created_at_br,
	COALESCE(u.username, '') AS actor,
	al.action,
	al.entity_type,
	COALESCE(al.entity_id, '') AS entity_id,
	COALESCE(al.before_json, '') AS before_json,
	COALESCE(al.after_json, '') AS after_json
FROM audit_logs al
LEFT JOIN users u ON u.id = al.user_id`+clause+`
ORDER BY al.created_at DESC, al.id DESC
LIMIT ? OFFSET ?`, pageArgs...).Scan(ctx, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			data.Rows = append(data.Rows, LogRow{
				CreatedAt:  strings.TrimSpace(r.CreatedAt),
				Actor:      defaultActor(r.Actor),
				Action:     strings.TrimSpace(r.Action),
				EntityType: strings.TrimSpace(r.EntityType),
				EntityID:   strings.TrimSpace(r.EntityID),
				BeforeJSON: strings.TrimSpace(r.BeforeJSON),
				AfterJSON:  strings.TrimSpace(r.AfterJSON),
			})
		}

		if err := tx.NewRaw(`SELECT DISTINCT entity_type FROM audit_logs ORDER BY entity_type`).
			Scan(ctx, &data.EntityTypes); err != nil {
			return err
		}

		type run struct {
			CreatedAt string `bun:"created_at_br"`
			Actor     string `bun:"actor"`
			Kind      string `bun:"kind"`
			Unit      string `bun:"unit"`
			FileName  string `bun:"file_name"`
			Records   int    `bun:"record_count"`
		}
		imports := make([]run, 0)
		if err := tx.NewRaw(`
SELECT COALESCE(strftime('%d/%m/%Y %H:%M', ir.created_at), '') AS created_at_br,
       COALESCE(u.username, '') AS actor, ir.kind, ir.unit, ir.file_name, ir.record_count
FROM import_runs ir
LEFT JOIN users u ON u.id = ir.user_id
ORDER BY ir.created_at DESC, ir.id DESC
LIMIT 20`).Scan(ctx, &imports); err != nil {
			return err
		}
		for _, r := range imports {
			data.Imports = append(data.Imports, RunRow{CreatedAt: r.CreatedAt, Actor: defaultActor(r.Actor), Kind: r.Kind, Unit: r.Unit, FileName: r.FileName, Records: r.Records})
		}

		exports := make([]run, 0)
		if err := tx.NewRaw(`
SELECT COALESCE(strftime('%d/%m/%Y %H:%M', er.created_at), '') AS created_at_br,
       COALESCE(u.username, '') AS actor, er.export_type AS kind, '' AS unit, '' AS file_name, 0 AS record_count
FROM export_runs er
LEFT JOIN users u ON u.id = er.user_id
ORDER BY er.created_at DESC, er.id DESC
LIMIT 20`).Scan(ctx, &exports); err != nil {
			return err
		}
		for _, r := range exports {
			data.Exports = append(data.Exports, RunRow{CreatedAt: r.CreatedAt, Actor: defaultActor(r.Actor), Kind: r.Kind})
		}
		return nil
	})
	if err != nil {
		return PageData{}, err
	}

	data.Pages = (data.Total + PageSize - 1) / PageSize
	if data.Pages == 0 {
		data.Pages = 1
	}
	return data, nil
}

func defaultActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "sistema"
	}
	return actor
}
