package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"logistica/frontend/products"
	"logistica/frontend/schedules"
	"logistica/infrastructure/audit"
	"logistica/models"
)

func newImportCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import CSV files into the data directory",
	}
	cmd.AddCommand(newImportProductsCmd(load), newImportSchedulesCmd(load))
	return cmd
}

func newImportProductsCmd(load configLoader) *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "products FILE",
		Short: "Replace one unit's product catalog from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit = strings.ToUpper(strings.TrimSpace(unit))
			if unit == "" {
				unit = unitFromFileName(args[0])
			}
			if !products.ValidUnit(unit) {
				return fmt.Errorf("unit must be one of %s", strings.Join(models.Units, ", "))
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			db, store, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := products.NewService(store, audit.NewService(db))
			results, err := svc.Import(cmd.Context(), audit.SystemUserID, []products.Upload{
				{Unit: unit, FileName: filepath.Base(args[0]), Data: data},
			})
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d produtos importados (%d substituídos)\n", res.Unit, res.Imported, res.Replaced)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "unit code (ITJ or JVL); guessed from Cad_<UNIT>.csv when omitted")
	return cmd
}

func newImportSchedulesCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "schedules FILE",
		Short: "Append return schedules from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			db, store, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := schedules.NewService(store, audit.NewService(db))
			res, err := svc.Import(cmd.Context(), audit.SystemUserID, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d agendamentos importados (total %d)\n", res.Imported, res.Total)
			if len(res.Duplicates) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "NFDs duplicadas: %s\n", strings.Join(res.Duplicates, ", "))
			}
			return nil
		},
	}
}

// unitFromFileName reads the unit out of names like Cad_ITJ.csv.
func unitFromFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if i := strings.LastIndex(base, "_"); i >= 0 {
		return strings.ToUpper(base[i+1:])
	}
	return ""
}
